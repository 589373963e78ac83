package model

import (
	"finmodeler/pkg/models"
)

// SummaryMetrics condenses the latest historical period for display layers.
type SummaryMetrics struct {
	Company    string          `json:"company"`
	Ticker     string          `json:"ticker"`
	Currency   models.Currency `json:"currency"`
	FiscalYear int             `json:"fiscal_year"`

	Revenue     float64 `json:"revenue"`
	NetIncome   float64 `json:"net_income"`
	TotalAssets float64 `json:"total_assets"`

	NetMargin      *float64 `json:"net_margin"`
	ReturnOnEquity *float64 `json:"return_on_equity"`

	Periods    int  `json:"periods"`
	IsBalanced bool `json:"is_balanced"`
}

// Summarize extracts headline metrics from the most recent period.
func Summarize(m *LinkedModel) SummaryMetrics {
	s := SummaryMetrics{
		Company:    m.CompanyName,
		Ticker:     m.Ticker,
		Currency:   m.Currency,
		Periods:    len(m.Periods),
		IsBalanced: m.IsBalanced,
	}

	last := m.LastPeriod()
	if last == nil {
		return s
	}

	s.FiscalYear = last.PeriodEnd().Year()
	s.Revenue = last.Income.Revenue
	s.NetIncome = last.Income.NetIncome
	s.TotalAssets = last.Balance.TotalAssets

	if len(m.Ratios) > 0 {
		latest := m.Ratios[len(m.Ratios)-1]
		s.NetMargin = latest.NetMargin
		s.ReturnOnEquity = latest.ReturnOnEquity
	}
	return s
}
