// Package validate implements cross-statement linkage validation and
// structural input checks for the three-statement model.
//
// Linkage failures are data, not errors: every check returns a pass/fail
// status with the signed discrepancy so callers can decide how to react.
// Only structurally invalid input (missing fields, non-monotonic dates)
// produces an error.
package validate

import (
	"math"
	"time"

	"finmodeler/pkg/models"
)

// CheckStatus is the outcome of a single identity check.
type CheckStatus string

const (
	CheckPassed        CheckStatus = "PASSED"
	CheckFailed        CheckStatus = "FAILED"
	CheckNotApplicable CheckStatus = "NOT_APPLICABLE" // first period, no predecessor
)

// IdentityCheck holds the evaluation of one accounting identity.
type IdentityCheck struct {
	Name        string      `json:"name"`
	Status      CheckStatus `json:"status"`
	Expected    float64     `json:"expected"`
	Actual      float64     `json:"actual"`
	Discrepancy float64     `json:"discrepancy"` // signed: actual - expected
	Tolerance   float64     `json:"tolerance"`
	Advisory    bool        `json:"advisory,omitempty"`
	Note        string      `json:"note,omitempty"`
}

// LinkageReport contains all identity checks for one period.
type LinkageReport struct {
	PeriodEnd time.Time `json:"period_end"`

	BalanceSheetIdentity  *IdentityCheck `json:"balance_sheet_identity"`  // A = L + E
	RetainedEarningsRoll  *IdentityCheck `json:"retained_earnings_roll"`  // RE(t) = RE(t-1) + NI - Div
	CashRollForward       *IdentityCheck `json:"cash_roll_forward"`       // Cash(t) = Cash(t-1) + CFO + CFI + CFF
	PPERollForward        *IdentityCheck `json:"ppe_roll_forward"`        // advisory
	AllPassed             bool           `json:"all_passed"`
	FailedChecks          []string       `json:"failed_checks,omitempty"`
	AdvisoryWarnings      []string       `json:"advisory_warnings,omitempty"`
}

// DefaultTolerance returns the absolute tolerance epsilon for a period:
// the smaller of 0.1% of total assets and a fixed currency ceiling, with a
// floor of one currency unit so exactly-stated small entities still pass.
func DefaultTolerance(totalAssets float64) float64 {
	const fixedCeiling = 1_000_000.0
	eps := math.Min(0.001*math.Abs(totalAssets), fixedCeiling)
	if eps < 1.0 {
		eps = 1.0
	}
	return eps
}

// ValidateLinkages evaluates the four cross-statement identities for curr.
// prev may be nil for the first historical period, in which case the
// roll-forward checks (2-4) report NOT_APPLICABLE rather than failing.
func ValidateLinkages(prev, curr *models.PeriodStatements, tolerance float64) *LinkageReport {
	report := &LinkageReport{
		PeriodEnd: curr.PeriodEnd(),
		AllPassed: true,
	}

	report.BalanceSheetIdentity = checkBalanceSheetIdentity(&curr.Balance, tolerance)
	report.RetainedEarningsRoll = checkRetainedEarningsRoll(prev, curr, tolerance)
	report.CashRollForward = checkCashRollForward(prev, curr, tolerance)
	report.PPERollForward = checkPPERollForward(prev, curr, tolerance)

	for _, check := range []*IdentityCheck{
		report.BalanceSheetIdentity,
		report.RetainedEarningsRoll,
		report.CashRollForward,
		report.PPERollForward,
	} {
		if check.Status != CheckFailed {
			continue
		}
		if check.Advisory {
			report.AdvisoryWarnings = append(report.AdvisoryWarnings, check.Name)
			continue
		}
		report.AllPassed = false
		report.FailedChecks = append(report.FailedChecks, check.Name)
	}

	return report
}

// checkBalanceSheetIdentity verifies A = L + E within tolerance.
func checkBalanceSheetIdentity(bs *models.BalanceSheet, tolerance float64) *IdentityCheck {
	expected := bs.TotalLiabilities + bs.TotalShareholdersEquity
	actual := bs.TotalAssets
	diff := actual - expected

	status := CheckPassed
	if math.Abs(diff) > tolerance {
		status = CheckFailed
	}

	return &IdentityCheck{
		Name:        "total_assets = total_liabilities + total_equity",
		Status:      status,
		Expected:    expected,
		Actual:      actual,
		Discrepancy: diff,
		Tolerance:   tolerance,
	}
}

// checkRetainedEarningsRoll verifies RE(t) = RE(t-1) + NI(t) - Div(t).
func checkRetainedEarningsRoll(prev, curr *models.PeriodStatements, tolerance float64) *IdentityCheck {
	check := &IdentityCheck{
		Name:      "retained_earnings roll-forward",
		Tolerance: tolerance,
	}
	if prev == nil {
		check.Status = CheckNotApplicable
		check.Note = "first historical period has no predecessor"
		return check
	}

	expected := prev.Balance.RetainedEarnings + curr.Income.NetIncome - dividendsPaid(curr)
	actual := curr.Balance.RetainedEarnings
	check.Expected = expected
	check.Actual = actual
	check.Discrepancy = actual - expected

	if math.Abs(check.Discrepancy) > tolerance {
		check.Status = CheckFailed
		check.Note = "variance may reflect buybacks, OCI, or stock compensation recorded against equity"
	} else {
		check.Status = CheckPassed
	}
	return check
}

// checkCashRollForward verifies Cash(t) = Cash(t-1) + CFO + CFI + CFF.
func checkCashRollForward(prev, curr *models.PeriodStatements, tolerance float64) *IdentityCheck {
	check := &IdentityCheck{
		Name:      "cash roll-forward",
		Tolerance: tolerance,
	}
	if prev == nil {
		check.Status = CheckNotApplicable
		check.Note = "first historical period has no predecessor"
		return check
	}

	cf := curr.CashFlow
	expected := prev.Balance.CashAndEquivalents + cf.CashFromOperations + cf.CashFromInvesting + cf.CashFromFinancing
	actual := curr.Balance.CashAndEquivalents
	check.Expected = expected
	check.Actual = actual
	check.Discrepancy = actual - expected

	if math.Abs(check.Discrepancy) > tolerance {
		check.Status = CheckFailed
	} else {
		check.Status = CheckPassed
	}
	return check
}

// checkPPERollForward verifies PPE(t) ≈ PPE(t-1) + |capex| - D&A.
// Advisory only: acquisitions and disposals legitimately break it.
func checkPPERollForward(prev, curr *models.PeriodStatements, tolerance float64) *IdentityCheck {
	check := &IdentityCheck{
		Name:      "ppe roll-forward",
		Tolerance: tolerance,
		Advisory:  true,
	}
	if prev == nil {
		check.Status = CheckNotApplicable
		check.Note = "first historical period has no predecessor"
		return check
	}

	da := curr.Income.DepreciationAmortization
	if da == 0 {
		da = curr.CashFlow.DepreciationAmortization
	}
	expected := prev.Balance.PPENet + math.Abs(curr.CashFlow.CapitalExpenditures) - da
	actual := curr.Balance.PPENet
	check.Expected = expected
	check.Actual = actual
	check.Discrepancy = actual - expected

	if math.Abs(check.Discrepancy) > tolerance {
		check.Status = CheckFailed
		check.Note = "unmodeled acquisitions or disposals may explain the variance"
	} else {
		check.Status = CheckPassed
	}
	return check
}

// dividendsPaid resolves dividends from the income statement or, failing
// that, the cash flow financing section. Sign follows the source field's
// convention (IS carries the payout as-is, CF carries it as an outflow),
// so a negative payout flow under a loss period keeps its sign.
func dividendsPaid(p *models.PeriodStatements) float64 {
	if p.Income.DividendsPaid != 0 {
		return p.Income.DividendsPaid
	}
	return -p.CashFlow.DividendsPaid
}
