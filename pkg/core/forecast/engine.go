package forecast

import (
	"fmt"

	"finmodeler/pkg/core/calc"
	"finmodeler/pkg/core/model"
	"finmodeler/pkg/core/validate"
	"finmodeler/pkg/models"
)

// ForecastResult is the historical model plus the projected period
// sequence for one scenario. Produced fresh per scenario and never merged
// back into the historical model.
type ForecastResult struct {
	Model       *model.LinkedModel `json:"model"`
	Assumptions AssumptionSet      `json:"assumptions"`
	Years       int                `json:"years"`

	Periods  []models.PeriodStatements `json:"periods"`
	Ratios   []models.RatioSet         `json:"ratios"`
	Plugs    []models.PlugRecord       `json:"plugs,omitempty"`
	Statuses []model.PeriodStatus      `json:"statuses"`

	IsBalanced bool `json:"is_balanced"`
}

// Forecast projects years future periods from the model's last historical
// period. Each projected period depends only on the immediately preceding
// period's closing balances and the constant assumption set, so the
// recursion is strictly first-order. Forecast is a pure function of its
// inputs: the model is read, never written, which makes concurrent
// scenario evaluation safe without locks.
func Forecast(m *model.LinkedModel, years int, assumptions AssumptionSet) (*ForecastResult, error) {
	if m == nil || len(m.Periods) == 0 {
		return nil, fmt.Errorf("forecast: model has no historical periods")
	}
	if years < 1 {
		return nil, fmt.Errorf("forecast: years must be >= 1, got %d", years)
	}
	if err := assumptions.Validate(); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	result := &ForecastResult{
		Model:       m,
		Assumptions: assumptions,
		Years:       years,
		IsBalanced:  true,
	}

	seed := m.LastPeriod()

	// D&A has no explicit driver: it is held at the seed period's ratio to
	// revenue, which keeps the projection deterministic.
	daRatio := 0.0
	if seed.Income.Revenue != 0 {
		da := seed.Income.DepreciationAmortization
		if da == 0 {
			da = seed.CashFlow.DepreciationAmortization
		}
		daRatio = da / seed.Income.Revenue
	}

	prev := seed
	for year := 1; year <= years; year++ {
		projected := projectPeriod(prev, assumptions, daRatio)

		// The same closed-form balancer used on historical periods
		// guarantees the balance-sheet identity and discloses any plug.
		eps := validate.DefaultTolerance(projected.Balance.TotalAssets)
		outcome := model.Balance(prev, projected, eps)

		status := model.PeriodStatus{
			PeriodEnd: outcome.Period.PeriodEnd(),
			Outcome:   model.OutcomeClean,
			Balanced:  outcome.Balanced,
		}
		if len(outcome.Plugs) > 0 {
			status.Outcome = model.OutcomeAutoBalanced
		}
		if !outcome.Balanced {
			status.Outcome = model.OutcomeUnresolved
			status.Residual = outcome.Residual
			result.IsBalanced = false
		}

		result.Periods = append(result.Periods, outcome.Period)
		result.Plugs = append(result.Plugs, outcome.Plugs...)
		result.Statuses = append(result.Statuses, status)
		prev = &result.Periods[len(result.Periods)-1]
	}

	result.Ratios = calc.ComputeAllRatios(result.Periods)
	return result, nil
}

// projectPeriod derives one future period from the prior period's closing
// balances. Cash is the balancing plug: it closes at
// cash(t-1) + CFO + CFI + CFF by construction.
func projectPeriod(prev *models.PeriodStatements, a AssumptionSet, daRatio float64) models.PeriodStatements {
	periodEnd := prev.PeriodEnd().AddDate(1, 0, 0)
	periodStart := prev.PeriodEnd().AddDate(0, 0, 1)

	// Income statement drivers.
	revenue := prev.Income.Revenue * (1 + a.RevenueGrowthRate)
	grossProfit := revenue * a.GrossMargin
	cogs := revenue - grossProfit
	operatingIncome := revenue * a.OperatingMargin
	operatingExpenses := grossProfit - operatingIncome
	da := revenue * daRatio
	taxExpense := operatingIncome * a.TaxRate
	netIncome := operatingIncome - taxExpense
	dividends := netIncome * a.DividendPayoutRatio

	shares := prev.Income.SharesOutstandingDiluted
	eps := 0.0
	if shares > 0 {
		eps = netIncome / shares
	}

	// Working capital from day ratios.
	receivables := revenue / calc.DaysPerYear * a.DaysSalesOutstanding
	inventory := cogs / calc.DaysPerYear * a.DaysInventoryOutstanding
	payables := cogs / calc.DaysPerYear * a.DaysPayableOutstanding

	prevWC := prev.Balance.AccountsReceivable + prev.Balance.Inventory - prev.Balance.AccountsPayable
	wcChange := (receivables + inventory - payables) - prevWC

	// Cash flows.
	cfo := netIncome + da - wcChange
	capex := revenue * a.CapexPercentOfRevenue
	cfi := -capex
	cff := -dividends + a.NetDebtChange

	// Balance sheet roll-forwards. Lines without drivers carry forward.
	ppeNet := prev.Balance.PPENet + capex - da
	otherCA := prev.Balance.OtherCurrentAssets
	otherNCA := prev.Balance.OtherNonCurrentAssets
	otherCL := prev.Balance.OtherCurrentLiabilities
	shortTermDebt := prev.Balance.ShortTermDebt
	longTermDebt := prev.Balance.LongTermDebt + a.NetDebtChange
	otherNCL := prev.Balance.OtherNonCurrentLiabilities
	commonStock := prev.Balance.CommonStock
	otherEquity := prev.Balance.OtherEquity
	retainedEarnings := prev.Balance.RetainedEarnings + netIncome - dividends

	// Cash closes the roll-forward; totals derive from components.
	cash := prev.Balance.CashAndEquivalents + cfo + cfi + cff
	totalCurrentAssets := cash + receivables + inventory + otherCA
	totalAssets := totalCurrentAssets + ppeNet + otherNCA
	totalCurrentLiabilities := payables + shortTermDebt + otherCL
	totalLiabilities := totalCurrentLiabilities + longTermDebt + otherNCL
	totalEquity := commonStock + retainedEarnings + otherEquity

	return models.PeriodStatements{
		Income: models.IncomeStatement{
			PeriodStart:              periodStart,
			PeriodEnd:                periodEnd,
			Revenue:                  revenue,
			CostOfRevenue:            cogs,
			GrossProfit:              grossProfit,
			OperatingExpenses:        operatingExpenses,
			OperatingIncome:          operatingIncome,
			DepreciationAmortization: da,
			IncomeBeforeTax:          operatingIncome,
			TaxRate:                  a.TaxRate,
			IncomeTaxExpense:         taxExpense,
			NetIncome:                netIncome,
			DividendsPaid:            dividends,
			SharesOutstandingDiluted: shares,
			DilutedEPS:               eps,
		},
		Balance: models.BalanceSheet{
			PeriodEnd:                  periodEnd,
			CashAndEquivalents:         cash,
			AccountsReceivable:         receivables,
			Inventory:                  inventory,
			OtherCurrentAssets:         otherCA,
			TotalCurrentAssets:         totalCurrentAssets,
			PPENet:                     ppeNet,
			OtherNonCurrentAssets:      otherNCA,
			TotalAssets:                totalAssets,
			AccountsPayable:            payables,
			ShortTermDebt:              shortTermDebt,
			OtherCurrentLiabilities:    otherCL,
			TotalCurrentLiabilities:    totalCurrentLiabilities,
			LongTermDebt:               longTermDebt,
			OtherNonCurrentLiabilities: otherNCL,
			TotalLiabilities:           totalLiabilities,
			CommonStock:                commonStock,
			RetainedEarnings:           retainedEarnings,
			OtherEquity:                otherEquity,
			TotalShareholdersEquity:    totalEquity,
		},
		CashFlow: models.CashFlowStatement{
			PeriodStart:              periodStart,
			PeriodEnd:                periodEnd,
			NetIncome:                netIncome,
			DepreciationAmortization: da,
			ChangesInWorkingCapital:  -wcChange,
			CashFromOperations:       cfo,
			CapitalExpenditures:      cfi,
			CashFromInvesting:        cfi,
			DividendsPaid:            -dividends,
			NetDebtIssuance:          a.NetDebtChange,
			CashFromFinancing:        cff,
			NetChangeInCash:          cash - prev.Balance.CashAndEquivalents,
			CashBeginningOfPeriod:    prev.Balance.CashAndEquivalents,
			CashEndOfPeriod:          cash,
		},
	}
}
