// Package models defines the validated statement records shared by the
// modeling core. All monetary figures are signed float64 in a single
// consistent currency; percentages are fractions (0.08, not 8).
package models

import (
	"time"
)

// AccountingStandard identifies the reporting framework of the source filing.
type AccountingStandard string

const (
	StandardGAAP AccountingStandard = "US_GAAP"
	StandardIFRS AccountingStandard = "IFRS"
)

// ReportType identifies the filing the statements were extracted from.
type ReportType string

const (
	Form10K     ReportType = "10-K"
	Form10Q     ReportType = "10-Q"
	IFRSAnnual  ReportType = "IFRS_ANNUAL"
	ManualEntry ReportType = "MANUAL"
)

// Currency is the ISO code all figures are denominated in.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	KZT Currency = "KZT"
)

// IncomeStatement holds one fiscal period's income statement line items.
// Expenses are carried as positive magnitudes; the sign convention matches
// the upstream extraction pipeline.
type IncomeStatement struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	Revenue           float64 `json:"revenue"`
	CostOfRevenue     float64 `json:"cost_of_revenue"`
	GrossProfit       float64 `json:"gross_profit"`
	OperatingExpenses float64 `json:"operating_expenses"`
	OperatingIncome   float64 `json:"operating_income"`

	DepreciationAmortization float64 `json:"depreciation_amortization"`
	InterestExpense          float64 `json:"interest_expense"` // negative = expense
	IncomeBeforeTax          float64 `json:"income_before_tax"`
	TaxRate                  float64 `json:"tax_rate"`
	IncomeTaxExpense         float64 `json:"income_tax_expense"`
	NetIncome                float64 `json:"net_income"`

	DividendsPaid            float64 `json:"dividends_paid"` // may instead live on the cash flow
	SharesOutstandingDiluted float64 `json:"shares_outstanding_diluted"`
	DilutedEPS               float64 `json:"diluted_eps"`
}

// BalanceSheet holds one period-end snapshot.
type BalanceSheet struct {
	PeriodEnd time.Time `json:"period_end"`

	// Assets
	CashAndEquivalents    float64 `json:"cash_and_equivalents"`
	AccountsReceivable    float64 `json:"accounts_receivable"`
	Inventory             float64 `json:"inventory"`
	OtherCurrentAssets    float64 `json:"other_current_assets"`
	TotalCurrentAssets    float64 `json:"total_current_assets"`
	PPENet                float64 `json:"ppe_net"`
	OtherNonCurrentAssets float64 `json:"other_noncurrent_assets"`
	TotalAssets           float64 `json:"total_assets"`

	// Liabilities
	AccountsPayable            float64 `json:"accounts_payable"`
	ShortTermDebt              float64 `json:"short_term_debt"`
	OtherCurrentLiabilities    float64 `json:"other_current_liabilities"`
	TotalCurrentLiabilities    float64 `json:"total_current_liabilities"`
	LongTermDebt               float64 `json:"long_term_debt"`
	OtherNonCurrentLiabilities float64 `json:"other_noncurrent_liabilities"`
	TotalLiabilities           float64 `json:"total_liabilities"`

	// Equity
	CommonStock             float64 `json:"common_stock"`
	RetainedEarnings        float64 `json:"retained_earnings"`
	OtherEquity             float64 `json:"other_equity"` // AOCI, treasury, reconciliation plug target
	TotalShareholdersEquity float64 `json:"total_shareholders_equity"`
}

// CashFlowStatement holds one period's cash flows. Section totals are
// signed: outflows (capex, dividends) are negative.
type CashFlowStatement struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	NetIncome                float64 `json:"net_income"`
	DepreciationAmortization float64 `json:"depreciation_amortization"`
	ChangesInWorkingCapital  float64 `json:"changes_in_working_capital"`
	CashFromOperations       float64 `json:"cash_from_operations"`

	CapitalExpenditures float64 `json:"capital_expenditures"` // signed sub-line, negative
	CashFromInvesting   float64 `json:"cash_from_investing"`

	DividendsPaid     float64 `json:"dividends_paid"` // negative
	NetDebtIssuance   float64 `json:"net_debt_issuance"`
	CashFromFinancing float64 `json:"cash_from_financing"`

	NetChangeInCash       float64 `json:"net_change_in_cash"`
	CashBeginningOfPeriod float64 `json:"cash_beginning_of_period"`
	CashEndOfPeriod       float64 `json:"cash_end_of_period"`
}

// PeriodStatements is the aligned triple for one fiscal period.
type PeriodStatements struct {
	Income   IncomeStatement   `json:"income_statement"`
	Balance  BalanceSheet      `json:"balance_sheet"`
	CashFlow CashFlowStatement `json:"cash_flow_statement"`
}

// PeriodEnd returns the canonical period identifier (the balance sheet date).
func (p *PeriodStatements) PeriodEnd() time.Time {
	return p.Balance.PeriodEnd
}

// FinancialStatements bundles all extracted periods for one entity.
// Produced by the external extraction/classification pipeline; the modeling
// core consumes it read-only.
type FinancialStatements struct {
	CompanyName        string             `json:"company_name"`
	Ticker             string             `json:"ticker"`
	FiscalYear         int                `json:"fiscal_year"`
	ReportType         ReportType         `json:"report_type"`
	AccountingStandard AccountingStandard `json:"accounting_standard"`
	Currency           Currency           `json:"currency"`

	Periods []PeriodStatements `json:"periods"`
}
