package ingest

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"finmodeler/pkg/core/validate"
	"finmodeler/pkg/models"
)

// HTMLOptions supplies the metadata an HTML statement table does not carry.
type HTMLOptions struct {
	CompanyName string
	Ticker      string
	PeriodEnd   time.Time
	Currency    models.Currency
}

// lineMatcher maps a statement line to the label keywords that identify it.
// Exclusions disambiguate lines like "total assets" vs "total current
// assets"; first match wins, so order within a row scan does not matter
// but a row feeds at most one line.
type lineMatcher struct {
	field    string
	keywords []string
	excludes []string
}

var lineMatchers = []lineMatcher{
	{"revenue", []string{"total revenue", "net sales", "total net sales", "revenue"}, []string{"cost", "deferred"}},
	{"cost_of_revenue", []string{"cost of revenue", "cost of sales", "cost of goods sold"}, nil},
	{"gross_profit", []string{"gross profit", "gross margin"}, nil},
	{"operating_income", []string{"operating income", "income from operations"}, []string{"non-operating"}},
	{"depreciation", []string{"depreciation and amortization", "depreciation"}, []string{"accumulated"}},
	{"net_income", []string{"net income", "net earnings"}, []string{"per share"}},
	{"cash_and_equivalents", []string{"cash and cash equivalents", "cash and equivalents"}, []string{"restricted", "change", "beginning", "end of"}},
	{"accounts_receivable", []string{"accounts receivable", "trade receivables"}, nil},
	{"inventory", []string{"inventories", "inventory"}, nil},
	{"total_current_assets", []string{"total current assets"}, nil},
	{"ppe_net", []string{"property, plant and equipment, net", "property and equipment, net"}, []string{"gross"}},
	{"total_assets", []string{"total assets"}, []string{"current", "liabilities"}},
	{"accounts_payable", []string{"accounts payable"}, nil},
	{"total_current_liabilities", []string{"total current liabilities"}, nil},
	{"long_term_debt", []string{"long-term debt", "long term debt"}, []string{"current portion"}},
	{"total_liabilities", []string{"total liabilities"}, []string{"equity", "stockholders", "current"}},
	{"retained_earnings", []string{"retained earnings", "accumulated deficit"}, nil},
	{"total_equity", []string{"total shareholders' equity", "total stockholders' equity", "total equity"}, []string{"liabilities"}},
	{"cash_from_operations", []string{"cash provided by operating", "cash from operating", "cash used in operating"}, nil},
	{"capex", []string{"purchases of property", "capital expenditures", "payments for acquisition of property"}, nil},
	{"cash_from_investing", []string{"cash provided by investing", "cash from investing", "cash used in investing"}, nil},
	{"dividends_paid", []string{"dividends paid", "payments of dividends"}, nil},
	{"cash_from_financing", []string{"cash provided by financing", "cash from financing", "cash used in financing"}, nil},
	{"net_change_in_cash", []string{"net change in cash", "increase (decrease) in cash", "decrease in cash", "increase in cash"}, nil},
}

var numberPattern = regexp.MustCompile(`^\(?\$?\s*-?[\d,]+(?:\.\d+)?\)?$`)

// ParseHTMLStatements extracts a single-period statement triple from the
// tables of an HTML filing excerpt. The first numeric column after each
// recognized label is taken as the period value.
func ParseHTMLStatements(r io.Reader, opts HTMLOptions) (*models.FinancialStatements, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if opts.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("parse html: period end date is required")
	}

	values := make(map[string]float64)

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(cells.First().Text()))
		if label == "" {
			return
		}

		field, ok := matchLine(label)
		if !ok {
			return
		}
		if _, seen := values[field]; seen {
			return // keep the first occurrence (current period column)
		}

		cells.Slice(1, cells.Length()).EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			v, ok := parseAmount(cell.Text())
			if !ok {
				return true
			}
			values[field] = v
			return false
		})
	})

	if len(values) == 0 {
		return nil, fmt.Errorf("parse html: no recognizable statement lines found")
	}

	period := assemblePeriod(values, opts.PeriodEnd)
	if err := validate.CheckPeriod(&period); err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return &models.FinancialStatements{
		CompanyName:        opts.CompanyName,
		Ticker:             opts.Ticker,
		FiscalYear:         opts.PeriodEnd.Year(),
		ReportType:         models.Form10K,
		AccountingStandard: models.StandardGAAP,
		Currency:           opts.Currency,
		Periods:            []models.PeriodStatements{period},
	}, nil
}

func matchLine(label string) (string, bool) {
	for _, m := range lineMatchers {
		excluded := false
		for _, ex := range m.excludes {
			if strings.Contains(label, ex) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		for _, kw := range m.keywords {
			if strings.Contains(label, kw) {
				return m.field, true
			}
		}
	}
	return "", false
}

// parseAmount handles filing-table number formats: thousands separators,
// currency symbols, and parentheses for negatives.
func parseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "—" || s == "-" {
		return 0, false
	}
	if !numberPattern.MatchString(s) {
		return 0, false
	}

	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Trim(s, "()")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// assemblePeriod builds the triple, deriving subtotals the table omitted.
func assemblePeriod(v map[string]float64, periodEnd time.Time) models.PeriodStatements {
	periodStart := periodEnd.AddDate(-1, 0, 0).AddDate(0, 0, 1)

	revenue := v["revenue"]
	cogs := v["cost_of_revenue"]
	gross := v["gross_profit"]
	if gross == 0 && revenue != 0 && cogs != 0 {
		gross = revenue - cogs
	}
	if cogs == 0 && revenue != 0 && gross != 0 {
		cogs = revenue - gross
	}

	totalEquity := v["total_equity"]
	if totalEquity == 0 && v["total_assets"] != 0 && v["total_liabilities"] != 0 {
		totalEquity = v["total_assets"] - v["total_liabilities"]
	}

	return models.PeriodStatements{
		Income: models.IncomeStatement{
			PeriodStart:              periodStart,
			PeriodEnd:                periodEnd,
			Revenue:                  revenue,
			CostOfRevenue:            cogs,
			GrossProfit:              gross,
			OperatingExpenses:        gross - v["operating_income"],
			OperatingIncome:          v["operating_income"],
			DepreciationAmortization: v["depreciation"],
			NetIncome:                v["net_income"],
		},
		Balance: models.BalanceSheet{
			PeriodEnd:               periodEnd,
			CashAndEquivalents:      v["cash_and_equivalents"],
			AccountsReceivable:      v["accounts_receivable"],
			Inventory:               v["inventory"],
			TotalCurrentAssets:      v["total_current_assets"],
			PPENet:                  v["ppe_net"],
			TotalAssets:             v["total_assets"],
			AccountsPayable:         v["accounts_payable"],
			TotalCurrentLiabilities: v["total_current_liabilities"],
			LongTermDebt:            v["long_term_debt"],
			TotalLiabilities:        v["total_liabilities"],
			RetainedEarnings:        v["retained_earnings"],
			TotalShareholdersEquity: totalEquity,
		},
		CashFlow: models.CashFlowStatement{
			PeriodStart:              periodStart,
			PeriodEnd:                periodEnd,
			NetIncome:                v["net_income"],
			DepreciationAmortization: v["depreciation"],
			CashFromOperations:       v["cash_from_operations"],
			CapitalExpenditures:      v["capex"],
			CashFromInvesting:        v["cash_from_investing"],
			DividendsPaid:            v["dividends_paid"],
			CashFromFinancing:        v["cash_from_financing"],
			NetChangeInCash:          v["net_change_in_cash"],
		},
	}
}
