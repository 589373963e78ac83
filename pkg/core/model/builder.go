package model

import (
	"fmt"
	"sort"
	"time"

	"finmodeler/pkg/core/calc"
	"finmodeler/pkg/core/validate"
	"finmodeler/pkg/models"
)

// Annual periods must be spaced roughly one fiscal year apart for the
// roll-forward identities (and any forecast seeded from them) to be valid.
const (
	minPeriodGapDays = 300
	maxPeriodGapDays = 440
)

// PeriodOutcome records how a historical period was resolved.
type PeriodOutcome string

const (
	OutcomeClean        PeriodOutcome = "validated_clean"
	OutcomeAutoBalanced PeriodOutcome = "auto_balanced"
	OutcomeUnresolved   PeriodOutcome = "unresolved"
)

// PeriodStatus is the per-period resolution summary.
type PeriodStatus struct {
	PeriodEnd time.Time     `json:"period_end"`
	Outcome   PeriodOutcome `json:"outcome"`
	Balanced  bool          `json:"balanced"`
	Residual  float64       `json:"residual,omitempty"`
}

// LinkedModel is the validated, fully connected historical record.
// The builder constructs and returns it; callers treat it as read-only,
// which makes concurrent scenario forecasts over one model safe.
type LinkedModel struct {
	CompanyName string          `json:"company_name"`
	Ticker      string          `json:"ticker"`
	Currency    models.Currency `json:"currency"`

	Periods  []models.PeriodStatements  `json:"periods"`
	Ratios   []models.RatioSet          `json:"ratios"`
	Linkages []*validate.LinkageReport  `json:"linkages"`
	Statuses []PeriodStatus             `json:"statuses"`
	Plugs    []models.PlugRecord        `json:"plugs,omitempty"`
	Warnings []string                   `json:"warnings,omitempty"`

	IsBalanced bool `json:"is_balanced"`
}

// LastPeriod returns the most recent historical period, the seed for any
// forecast.
func (m *LinkedModel) LastPeriod() *models.PeriodStatements {
	if len(m.Periods) == 0 {
		return nil
	}
	return &m.Periods[len(m.Periods)-1]
}

// Build validates, balances and links the supplied historical statements.
// Periods are sorted by end date; duplicate or non-contiguous periods are
// structural errors. A tolerance of zero selects the per-period default.
//
// Reconciliation failures never abort the build: unresolved periods are
// marked unbalanced and the whole model is still returned so callers can
// decide whether to proceed.
func Build(fs *models.FinancialStatements, tolerance float64) (*LinkedModel, error) {
	if err := validate.CheckStructure(fs); err != nil {
		return nil, err
	}

	periods := make([]models.PeriodStatements, len(fs.Periods))
	copy(periods, fs.Periods)
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].PeriodEnd().Before(periods[j].PeriodEnd())
	})

	for i := 1; i < len(periods); i++ {
		gap := periods[i].PeriodEnd().Sub(periods[i-1].PeriodEnd())
		days := gap.Hours() / 24
		if days == 0 {
			return nil, fmt.Errorf("duplicate period end date %s",
				periods[i].PeriodEnd().Format("2006-01-02"))
		}
		if days < minPeriodGapDays || days > maxPeriodGapDays {
			return nil, fmt.Errorf("periods %s and %s are not contiguous annual periods (%.0f days apart)",
				periods[i-1].PeriodEnd().Format("2006-01-02"),
				periods[i].PeriodEnd().Format("2006-01-02"), days)
		}
	}

	m := &LinkedModel{
		CompanyName: fs.CompanyName,
		Ticker:      fs.Ticker,
		Currency:    fs.Currency,
		Periods:     periods,
		IsBalanced:  true,
	}

	var prev *models.PeriodStatements
	for i := range m.Periods {
		curr := &m.Periods[i]

		eps := tolerance
		if eps <= 0 {
			eps = validate.DefaultTolerance(curr.Balance.TotalAssets)
		}

		report := validate.ValidateLinkages(prev, curr, eps)
		status := PeriodStatus{PeriodEnd: curr.PeriodEnd(), Outcome: OutcomeClean, Balanced: true}

		if !report.AllPassed {
			outcome := Balance(prev, *curr, eps)
			m.Periods[i] = outcome.Period
			curr = &m.Periods[i]
			m.Plugs = append(m.Plugs, outcome.Plugs...)

			if outcome.Balanced {
				status.Outcome = OutcomeAutoBalanced
			} else {
				status.Outcome = OutcomeUnresolved
				status.Balanced = false
				status.Residual = outcome.Residual
				m.IsBalanced = false
			}
			// Report the post-balance state so listed discrepancies describe
			// what the model actually contains.
			report = validate.ValidateLinkages(prev, curr, eps)
		}

		for _, w := range report.AdvisoryWarnings {
			m.Warnings = append(m.Warnings,
				fmt.Sprintf("%s: %s (advisory)", curr.PeriodEnd().Format("2006-01-02"), w))
		}

		m.Linkages = append(m.Linkages, report)
		m.Statuses = append(m.Statuses, status)
		prev = curr
	}

	m.Ratios = calc.ComputeAllRatios(m.Periods)
	return m, nil
}
