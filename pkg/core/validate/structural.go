package validate

import (
	"fmt"
	"math"

	"finmodeler/pkg/models"
)

// CheckStructure verifies that a statement bundle is structurally usable:
// at least one period, numeric fields finite, dates present and monotonic
// within each period. Structural problems are fatal and abort the build
// with no partial result.
func CheckStructure(fs *models.FinancialStatements) error {
	if fs == nil {
		return fmt.Errorf("statements: nil input")
	}
	if len(fs.Periods) == 0 {
		return fmt.Errorf("statements: no periods supplied")
	}

	for i := range fs.Periods {
		if err := CheckPeriod(&fs.Periods[i]); err != nil {
			return fmt.Errorf("period %d: %w", i, err)
		}
	}
	return nil
}

// CheckPeriod validates a single statement triple.
func CheckPeriod(p *models.PeriodStatements) error {
	if p.Balance.PeriodEnd.IsZero() {
		return fmt.Errorf("balance sheet missing period_end date")
	}
	if p.Income.PeriodEnd.IsZero() {
		return fmt.Errorf("income statement missing period_end date")
	}
	if !p.Income.PeriodStart.IsZero() && !p.Income.PeriodStart.Before(p.Income.PeriodEnd) {
		return fmt.Errorf("income statement dates not monotonic: start %s >= end %s",
			p.Income.PeriodStart.Format("2006-01-02"), p.Income.PeriodEnd.Format("2006-01-02"))
	}
	if !p.CashFlow.PeriodStart.IsZero() && !p.CashFlow.PeriodEnd.IsZero() &&
		!p.CashFlow.PeriodStart.Before(p.CashFlow.PeriodEnd) {
		return fmt.Errorf("cash flow dates not monotonic: start %s >= end %s",
			p.CashFlow.PeriodStart.Format("2006-01-02"), p.CashFlow.PeriodEnd.Format("2006-01-02"))
	}
	if !p.Income.PeriodEnd.Equal(p.Balance.PeriodEnd) {
		return fmt.Errorf("income statement period_end %s does not match balance sheet %s",
			p.Income.PeriodEnd.Format("2006-01-02"), p.Balance.PeriodEnd.Format("2006-01-02"))
	}

	for name, v := range map[string]float64{
		"revenue":                   p.Income.Revenue,
		"net_income":                p.Income.NetIncome,
		"cash_and_equivalents":      p.Balance.CashAndEquivalents,
		"total_assets":              p.Balance.TotalAssets,
		"total_liabilities":         p.Balance.TotalLiabilities,
		"total_shareholders_equity": p.Balance.TotalShareholdersEquity,
		"cash_from_operations":      p.CashFlow.CashFromOperations,
		"cash_from_investing":       p.CashFlow.CashFromInvesting,
		"cash_from_financing":       p.CashFlow.CashFromFinancing,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("field %s is not a finite number", name)
		}
	}
	return nil
}
