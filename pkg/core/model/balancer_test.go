package model

import (
	"math"
	"testing"
	"time"

	"finmodeler/pkg/models"
)

// balancedPair returns two consecutive annual periods where every identity
// holds exactly, so any reconciliation the balancer performs is caused by
// the tampering a test applies.
func balancedPair() (models.PeriodStatements, models.PeriodStatements) {
	prevEnd := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	currEnd := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	prev := models.PeriodStatements{
		Income: models.IncomeStatement{
			PeriodStart: prevEnd.AddDate(-1, 0, 1), PeriodEnd: prevEnd,
			Revenue: 1000, CostOfRevenue: 600, GrossProfit: 400,
			OperatingIncome: 200, DepreciationAmortization: 50,
			NetIncome: 158, DividendsPaid: 20,
		},
		Balance: models.BalanceSheet{
			PeriodEnd:          prevEnd,
			CashAndEquivalents: 100, AccountsReceivable: 110, Inventory: 82,
			OtherCurrentAssets: 8, TotalCurrentAssets: 300,
			PPENet: 400, OtherNonCurrentAssets: 100, TotalAssets: 800,
			AccountsPayable: 49, OtherCurrentLiabilities: 51,
			TotalCurrentLiabilities: 100, LongTermDebt: 200, TotalLiabilities: 300,
			CommonStock: 100, RetainedEarnings: 380, OtherEquity: 20,
			TotalShareholdersEquity: 500,
		},
		CashFlow: models.CashFlowStatement{
			PeriodStart: prevEnd.AddDate(-1, 0, 1), PeriodEnd: prevEnd,
			NetIncome:   158, DepreciationAmortization: 50,
			CashFromOperations: 200, CapitalExpenditures: -80, CashFromInvesting: -80,
			DividendsPaid: -20, CashFromFinancing: -20,
			NetChangeInCash: 100, CashEndOfPeriod: 100,
		},
	}

	curr := models.PeriodStatements{
		Income: models.IncomeStatement{
			PeriodStart: currEnd.AddDate(-1, 0, 1), PeriodEnd: currEnd,
			Revenue: 1100, CostOfRevenue: 660, GrossProfit: 440,
			OperatingIncome: 220, DepreciationAmortization: 55,
			NetIncome: 173.8, DividendsPaid: 17.38,
		},
		Balance: models.BalanceSheet{
			PeriodEnd:          currEnd,
			CashAndEquivalents: 210.42, AccountsReceivable: 120, Inventory: 90,
			OtherCurrentAssets: 8, TotalCurrentAssets: 428.42,
			PPENet: 433, OtherNonCurrentAssets: 100, TotalAssets: 961.42,
			AccountsPayable: 54, OtherCurrentLiabilities: 51,
			TotalCurrentLiabilities: 105, LongTermDebt: 200, TotalLiabilities: 305,
			CommonStock: 100, RetainedEarnings: 536.42, OtherEquity: 20,
			TotalShareholdersEquity: 656.42,
		},
		CashFlow: models.CashFlowStatement{
			PeriodStart: currEnd.AddDate(-1, 0, 1), PeriodEnd: currEnd,
			NetIncome:   173.8, DepreciationAmortization: 55,
			CashFromOperations: 215.8, CapitalExpenditures: -88, CashFromInvesting: -88,
			DividendsPaid: -17.38, CashFromFinancing: -17.38,
			NetChangeInCash: 110.42, CashBeginningOfPeriod: 100, CashEndOfPeriod: 210.42,
		},
	}
	return prev, curr
}

func TestBalance_ConsistentPeriodUnchanged(t *testing.T) {
	prev, curr := balancedPair()

	outcome := Balance(&prev, curr, 1.0)

	if !outcome.Balanced {
		t.Error("Expected a consistent period to be reported balanced")
	}
	if len(outcome.Plugs) != 0 {
		t.Errorf("Expected no plugs on consistent input, got %d", len(outcome.Plugs))
	}
	if outcome.Period.Balance.CashAndEquivalents != curr.Balance.CashAndEquivalents {
		t.Errorf("Cash changed on consistent input: %.2f -> %.2f",
			curr.Balance.CashAndEquivalents, outcome.Period.Balance.CashAndEquivalents)
	}

	t.Logf("✓ Consistent period returned unchanged, no plug emitted")
}

func TestBalance_CashPlug(t *testing.T) {
	prev, curr := balancedPair()
	curr.Balance.CashAndEquivalents += 30 // misstated cash line
	curr.Balance.TotalCurrentAssets += 30
	curr.Balance.TotalAssets += 30

	outcome := Balance(&prev, curr, 1.0)

	if !outcome.Balanced {
		t.Fatalf("Expected cash plug to balance, residual %.2f", outcome.Residual)
	}
	bs := outcome.Period.Balance
	if math.Abs(bs.CashAndEquivalents-210.42) > 1e-9 {
		t.Errorf("Expected cash restored to 210.42, got %.2f", bs.CashAndEquivalents)
	}
	if math.Abs(bs.TotalAssets-961.42) > 1e-9 {
		t.Errorf("Expected total assets 961.42, got %.2f", bs.TotalAssets)
	}
	if len(outcome.Plugs) != 1 || outcome.Plugs[0].Category != models.CashPlug {
		t.Fatalf("Expected exactly one cash plug, got %+v", outcome.Plugs)
	}
	if math.Abs(outcome.Plugs[0].Amount+30) > 1e-9 {
		t.Errorf("Expected plug amount -30, got %.2f", outcome.Plugs[0].Amount)
	}

	cf := outcome.Period.CashFlow
	if cf.CashEndOfPeriod != bs.CashAndEquivalents {
		t.Errorf("Cash flow end %.2f out of sync with balance sheet %.2f",
			cf.CashEndOfPeriod, bs.CashAndEquivalents)
	}
	if math.Abs(cf.NetChangeInCash-(cf.CashEndOfPeriod-cf.CashBeginningOfPeriod)) > 1e-9 {
		t.Errorf("Net change %.2f inconsistent with begin/end", cf.NetChangeInCash)
	}

	t.Logf("✓ Cash plug %.2f restored the roll-forward exactly", outcome.Plugs[0].Amount)
}

func TestBalance_EquityPlug(t *testing.T) {
	prev, curr := balancedPair()
	curr.Balance.OtherEquity -= 10 // unexplained equity shortfall
	curr.Balance.TotalShareholdersEquity -= 10

	outcome := Balance(&prev, curr, 1.0)

	if !outcome.Balanced {
		t.Fatalf("Expected equity plug to balance, residual %.2f", outcome.Residual)
	}
	if len(outcome.Plugs) != 1 || outcome.Plugs[0].Category != models.EquityPlug {
		t.Fatalf("Expected exactly one equity plug, got %+v", outcome.Plugs)
	}
	if math.Abs(outcome.Plugs[0].Amount-10) > 1e-9 {
		t.Errorf("Expected plug amount +10, got %.2f", outcome.Plugs[0].Amount)
	}
	bs := outcome.Period.Balance
	if math.Abs(bs.TotalAssets-(bs.TotalLiabilities+bs.TotalShareholdersEquity)) > 1e-9 {
		t.Error("Balance sheet identity does not hold after equity plug")
	}

	t.Logf("✓ Residual %.2f absorbed into other_equity", outcome.Plugs[0].Amount)
}

func TestBalance_Idempotent(t *testing.T) {
	prev, curr := balancedPair()
	curr.Balance.CashAndEquivalents += 30
	curr.Balance.TotalCurrentAssets += 30
	curr.Balance.TotalAssets += 30
	curr.Balance.OtherEquity -= 10
	curr.Balance.TotalShareholdersEquity -= 10

	first := Balance(&prev, curr, 1.0)
	if !first.Balanced || len(first.Plugs) == 0 {
		t.Fatalf("First pass should plug and balance, got %+v", first)
	}

	second := Balance(&prev, first.Period, 1.0)
	if !second.Balanced {
		t.Error("Second pass should report balanced")
	}
	if len(second.Plugs) != 0 {
		t.Errorf("Second pass emitted %d plugs, want 0", len(second.Plugs))
	}
	if second.Period.Balance != first.Period.Balance {
		t.Error("Second pass modified an already balanced period")
	}

	t.Logf("✓ Re-balancing balanced output is a no-op (%d plugs on first pass)", len(first.Plugs))
}

func TestBalance_ResidualBeyondCeilingStaysUnbalanced(t *testing.T) {
	prev, curr := balancedPair()
	curr.Balance.TotalAssets += 100 // far beyond 5% of total assets

	outcome := Balance(&prev, curr, 1.0)

	if outcome.Balanced {
		t.Error("Expected period to stay unbalanced beyond the hard ceiling")
	}
	if math.Abs(outcome.Residual-100) > 1e-9 {
		t.Errorf("Expected residual 100 surfaced, got %.2f", outcome.Residual)
	}
	if len(outcome.Plugs) != 0 {
		t.Errorf("No plug may be applied beyond the ceiling, got %+v", outcome.Plugs)
	}
	if outcome.Period.Balance.OtherEquity != curr.Balance.OtherEquity {
		t.Error("Equity must not be adjusted beyond the ceiling")
	}

	t.Logf("✓ Residual %.2f exceeds ceiling, surfaced instead of forced", outcome.Residual)
}

func TestBalance_FirstPeriodSkipsCashStep(t *testing.T) {
	_, curr := balancedPair()
	curr.Balance.OtherEquity -= 10
	curr.Balance.TotalShareholdersEquity -= 10

	outcome := Balance(nil, curr, 1.0)

	if !outcome.Balanced {
		t.Fatalf("Expected first period to balance via equity plug, residual %.2f", outcome.Residual)
	}
	if len(outcome.Plugs) != 1 || outcome.Plugs[0].Category != models.EquityPlug {
		t.Fatalf("Expected a single equity plug without a cash step, got %+v", outcome.Plugs)
	}

	t.Logf("✓ First period balanced without a cash roll-forward target")
}
