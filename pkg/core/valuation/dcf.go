// Package valuation derives a discounted-cash-flow value from a forecast.
package valuation

import (
	"fmt"

	"finmodeler/pkg/core/forecast"
)

// DCFInput encapsulates the inputs for a two-stage DCF over a projected
// period sequence.
type DCFInput struct {
	Forecast          *forecast.ForecastResult
	WACC              float64 // discount rate, fraction
	TerminalGrowth    float64 // perpetuity growth, fraction
	SharesOutstanding float64
	NetDebt           float64
}

// DCFResult holds the valuation outputs.
type DCFResult struct {
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
	SharePrice      float64 `json:"share_price"`
	PVForecastFCF   float64 `json:"pv_forecast_fcf"`
	PVTerminal      float64 `json:"pv_terminal"`
}

// CalculateDCF performs a standard two-stage DCF: explicit-period free
// cash flows discounted at WACC plus a Gordon-growth terminal value off
// the final projected year.
func CalculateDCF(input DCFInput) (DCFResult, error) {
	if input.Forecast == nil || len(input.Forecast.Periods) == 0 {
		return DCFResult{}, fmt.Errorf("dcf: forecast has no projected periods")
	}
	if input.WACC <= input.TerminalGrowth {
		return DCFResult{}, fmt.Errorf("dcf: wacc %.4f must exceed terminal growth %.4f",
			input.WACC, input.TerminalGrowth)
	}

	var result DCFResult
	discount := 1.0
	finalFCF := 0.0

	for i := range input.Forecast.Periods {
		cf := &input.Forecast.Periods[i].CashFlow

		// Unlevered FCF: operating cash flow plus signed capex. The model
		// carries no interest line, so no unlevering adjustment is needed.
		fcf := cf.CashFromOperations + cf.CapitalExpenditures

		discount /= 1.0 + input.WACC
		result.PVForecastFCF += fcf * discount
		finalFCF = fcf
	}

	terminalFCF := finalFCF * (1 + input.TerminalGrowth)
	terminalValue := terminalFCF / (input.WACC - input.TerminalGrowth)
	result.PVTerminal = terminalValue * discount

	result.EnterpriseValue = result.PVForecastFCF + result.PVTerminal
	result.EquityValue = result.EnterpriseValue - input.NetDebt
	if input.SharesOutstanding > 0 {
		result.SharePrice = result.EquityValue / input.SharesOutstanding
	}
	return result, nil
}
