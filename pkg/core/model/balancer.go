// Package model builds the validated, internally consistent three-statement
// model: it orchestrates linkage validation and closed-form auto-balancing
// across historical periods and assembles the immutable LinkedModel.
package model

import (
	"math"

	"finmodeler/pkg/core/validate"
	"finmodeler/pkg/models"
)

// HardCeilingFraction is the largest residual, as a fraction of total
// assets, that the balancer will absorb with an equity plug. Anything
// beyond it is surfaced as unbalanced rather than cosmetically forced.
const HardCeilingFraction = 0.05

// BalanceOutcome is the result of one balancing pass.
type BalanceOutcome struct {
	Period   models.PeriodStatements `json:"period"`
	Plugs    []models.PlugRecord     `json:"plugs,omitempty"`
	Balanced bool                    `json:"balanced"`
	Residual float64                 `json:"residual"` // A - (L+E) left unplugged
}

// Balance reconciles curr against the cash roll-forward and balance sheet
// identities. The adjustment is computed in closed form: first the cash
// line is set so the roll-forward holds exactly, then any remaining
// balance-sheet residual within the hard ceiling is absorbed by an equity
// reconciliation plug. Re-running Balance on its own output produces no
// further change and no new plug.
//
// prev may be nil for the first historical period; the cash roll-forward
// step is then skipped and only the balance-sheet identity is enforced.
func Balance(prev *models.PeriodStatements, curr models.PeriodStatements, tolerance float64) BalanceOutcome {
	if tolerance <= 0 {
		tolerance = validate.DefaultTolerance(curr.Balance.TotalAssets)
	}

	outcome := BalanceOutcome{Period: curr}
	bs := &outcome.Period.Balance
	cf := &outcome.Period.CashFlow

	bsGap := bs.TotalAssets - (bs.TotalLiabilities + bs.TotalShareholdersEquity)
	cashGap := 0.0
	if prev != nil {
		target := prev.Balance.CashAndEquivalents + cf.CashFromOperations + cf.CashFromInvesting + cf.CashFromFinancing
		cashGap = target - bs.CashAndEquivalents
	}

	// Already consistent: return unchanged, no plug.
	if math.Abs(bsGap) <= tolerance && math.Abs(cashGap) <= tolerance {
		outcome.Balanced = true
		return outcome
	}

	// Step 1: cash plug. Set cash(t) = cash(t-1) + CFO + CFI + CFF exactly
	// and propagate the delta through the asset subtotals and the cash flow
	// summary lines.
	if prev != nil && math.Abs(cashGap) > tolerance {
		bs.CashAndEquivalents += cashGap
		bs.TotalCurrentAssets += cashGap
		bs.TotalAssets += cashGap

		cf.CashBeginningOfPeriod = prev.Balance.CashAndEquivalents
		cf.CashEndOfPeriod = bs.CashAndEquivalents
		cf.NetChangeInCash = cf.CashEndOfPeriod - cf.CashBeginningOfPeriod

		outcome.Plugs = append(outcome.Plugs, models.PlugRecord{
			PeriodEnd:  curr.PeriodEnd(),
			Category:   models.CashPlug,
			Amount:     cashGap,
			TargetLine: "cash_and_equivalents",
		})
	}

	// Step 2: re-check the balance sheet identity after the cash delta.
	residual := bs.TotalAssets - (bs.TotalLiabilities + bs.TotalShareholdersEquity)
	if math.Abs(residual) <= tolerance {
		outcome.Balanced = true
		return outcome
	}

	// Step 3: residual within the hard ceiling is absorbed by the equity
	// reconciliation line; beyond it the period stays unbalanced.
	ceiling := HardCeilingFraction * math.Abs(bs.TotalAssets)
	if math.Abs(residual) > ceiling {
		outcome.Balanced = false
		outcome.Residual = residual
		return outcome
	}

	bs.OtherEquity += residual
	bs.TotalShareholdersEquity += residual
	outcome.Plugs = append(outcome.Plugs, models.PlugRecord{
		PeriodEnd:  curr.PeriodEnd(),
		Category:   models.EquityPlug,
		Amount:     residual,
		TargetLine: "other_equity",
	})
	outcome.Balanced = true
	return outcome
}
