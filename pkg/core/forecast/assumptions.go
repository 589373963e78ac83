// Package forecast projects a LinkedModel forward under parameterized
// driver assumptions, one period at a time, keeping every projected period
// balanced through the same closed-form plug used on historical data.
package forecast

import (
	"fmt"
)

// Canonical scenario names. Anything else is a custom scenario the caller
// constructed directly; the engine treats every scenario identically.
const (
	ScenarioBase = "base"
	ScenarioBull = "bull"
	ScenarioBear = "bear"
)

// Fixed perturbations applied to a base set to derive bull/bear scenarios.
// Keeping these as constants makes scenario comparisons reproducible from
// one base input.
const (
	scenarioGrowthShift = 0.03 // +/- 3pp revenue growth
	scenarioMarginShift = 0.02 // +/- 2pp gross and operating margin
)

// AssumptionSet is a named bundle of forward-looking drivers forming one
// scenario. Rates and margins are fractions (0.08, not 8); day ratios are
// calendar days. Value semantics keep sets immutable: derivation copies,
// never mutates.
type AssumptionSet struct {
	Name string `json:"name"`

	RevenueGrowthRate        float64 `json:"revenue_growth_rate"`
	GrossMargin              float64 `json:"gross_margin"`
	OperatingMargin          float64 `json:"operating_margin"`
	TaxRate                  float64 `json:"tax_rate"`
	CapexPercentOfRevenue    float64 `json:"capex_percent_of_revenue"`
	DaysSalesOutstanding     float64 `json:"days_sales_outstanding"`
	DaysInventoryOutstanding float64 `json:"days_inventory_outstanding"`
	DaysPayableOutstanding   float64 `json:"days_payable_outstanding"`
	DividendPayoutRatio      float64 `json:"dividend_payout_ratio"`

	// NetDebtChange is an absolute per-period financing flow, default zero.
	NetDebtChange float64 `json:"net_debt_change"`
}

// Validate rejects structurally invalid drivers before any period is
// computed; a failing set never produces a partial forecast.
func (a AssumptionSet) Validate() error {
	if a.RevenueGrowthRate <= -1 {
		return fmt.Errorf("assumptions %q: revenue_growth_rate %.4f must be > -1", a.Name, a.RevenueGrowthRate)
	}
	if a.GrossMargin < -1 || a.GrossMargin > 1 {
		return fmt.Errorf("assumptions %q: gross_margin %.4f outside [-1, 1]", a.Name, a.GrossMargin)
	}
	if a.OperatingMargin < -1 || a.OperatingMargin > 1 {
		return fmt.Errorf("assumptions %q: operating_margin %.4f outside [-1, 1]", a.Name, a.OperatingMargin)
	}
	if a.TaxRate < 0 || a.TaxRate >= 1 {
		return fmt.Errorf("assumptions %q: tax_rate %.4f outside [0, 1)", a.Name, a.TaxRate)
	}
	if a.CapexPercentOfRevenue < 0 {
		return fmt.Errorf("assumptions %q: capex_percent_of_revenue %.4f must be >= 0", a.Name, a.CapexPercentOfRevenue)
	}
	if a.DaysSalesOutstanding < 0 || a.DaysInventoryOutstanding < 0 || a.DaysPayableOutstanding < 0 {
		return fmt.Errorf("assumptions %q: working-capital day ratios must be >= 0", a.Name)
	}
	if a.DividendPayoutRatio < 0 || a.DividendPayoutRatio > 1 {
		return fmt.Errorf("assumptions %q: dividend_payout_ratio %.4f outside [0, 1]", a.Name, a.DividendPayoutRatio)
	}
	return nil
}

// Derive produces a named scenario from a base set by applying the fixed
// perturbation. The base set is never modified. Unknown scenario names are
// an error; custom scenarios should be built directly instead.
func Derive(base AssumptionSet, scenario string) (AssumptionSet, error) {
	derived := base
	derived.Name = scenario

	switch scenario {
	case ScenarioBase:
		// identity copy
	case ScenarioBull:
		derived.RevenueGrowthRate += scenarioGrowthShift
		derived.GrossMargin = clampMargin(derived.GrossMargin + scenarioMarginShift)
		derived.OperatingMargin = clampMargin(derived.OperatingMargin + scenarioMarginShift)
	case ScenarioBear:
		derived.RevenueGrowthRate -= scenarioGrowthShift
		derived.GrossMargin = clampMargin(derived.GrossMargin - scenarioMarginShift)
		derived.OperatingMargin = clampMargin(derived.OperatingMargin - scenarioMarginShift)
	default:
		return AssumptionSet{}, fmt.Errorf("unknown derived scenario %q", scenario)
	}

	if err := derived.Validate(); err != nil {
		return AssumptionSet{}, err
	}
	return derived, nil
}

func clampMargin(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
