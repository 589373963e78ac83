// Package calc provides deterministic derived-ratio calculations over
// validated statement triples. Undefined ratios (zero denominators) are
// represented as nil, never as Inf or NaN.
package calc

import (
	"finmodeler/pkg/models"
)

// DaysPerYear is the fixed day-count convention for working-capital ratios.
const DaysPerYear = 365.0

// ComputeRatios derives the per-period ratio set from one statement triple.
func ComputeRatios(p *models.PeriodStatements) models.RatioSet {
	is := p.Income
	bs := p.Balance

	return models.RatioSet{
		PeriodEnd: p.PeriodEnd(),

		GrossMargin:     safeDiv(is.GrossProfit, is.Revenue),
		OperatingMargin: safeDiv(is.OperatingIncome, is.Revenue),
		NetMargin:       safeDiv(is.NetIncome, is.Revenue),

		CurrentRatio: safeDiv(bs.TotalCurrentAssets, bs.TotalCurrentLiabilities),

		DaysSalesOutstanding:     scaleDiv(bs.AccountsReceivable, is.Revenue, DaysPerYear),
		DaysInventoryOutstanding: scaleDiv(bs.Inventory, is.CostOfRevenue, DaysPerYear),
		DaysPayableOutstanding:   scaleDiv(bs.AccountsPayable, is.CostOfRevenue, DaysPerYear),

		AssetTurnover:  safeDiv(is.Revenue, bs.TotalAssets),
		ReturnOnEquity: safeDiv(is.NetIncome, bs.TotalShareholdersEquity),
	}
}

// ComputeAllRatios derives ratio sets for an ordered period sequence.
func ComputeAllRatios(periods []models.PeriodStatements) []models.RatioSet {
	ratios := make([]models.RatioSet, 0, len(periods))
	for i := range periods {
		ratios = append(ratios, ComputeRatios(&periods[i]))
	}
	return ratios
}

// safeDiv returns numerator/denominator, or nil when the denominator is zero.
func safeDiv(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := numerator / denominator
	return &v
}

// scaleDiv is safeDiv with a post-multiplier, used for day-count ratios.
func scaleDiv(numerator, denominator, scale float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := numerator / denominator * scale
	return &v
}
