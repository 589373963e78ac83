package models

import (
	"time"
)

// PlugCategory classifies a balancing adjustment so downstream reporting
// can disclose it.
type PlugCategory string

const (
	CashPlug   PlugCategory = "cash_plug"
	EquityPlug PlugCategory = "equity_plug"
)

// PlugRecord documents a single balancing adjustment. Plugs are always
// disclosed, never hidden.
type PlugRecord struct {
	PeriodEnd  time.Time    `json:"period_end"`
	Category   PlugCategory `json:"category"`
	Amount     float64      `json:"amount"`
	TargetLine string       `json:"target_line"`
}

// RatioSet holds the derived per-period ratios. A nil field means the ratio
// is undefined for that period (e.g. a margin on zero revenue), distinct
// from zero, and never NaN.
type RatioSet struct {
	PeriodEnd time.Time `json:"period_end"`

	GrossMargin     *float64 `json:"gross_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	NetMargin       *float64 `json:"net_margin"`

	CurrentRatio *float64 `json:"current_ratio"`

	DaysSalesOutstanding     *float64 `json:"days_sales_outstanding"`
	DaysInventoryOutstanding *float64 `json:"days_inventory_outstanding"`
	DaysPayableOutstanding   *float64 `json:"days_payable_outstanding"`

	AssetTurnover  *float64 `json:"asset_turnover"`
	ReturnOnEquity *float64 `json:"return_on_equity"`
}
