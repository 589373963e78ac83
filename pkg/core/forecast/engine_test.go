package forecast

import (
	"math"
	"reflect"
	"testing"
	"time"

	"finmodeler/pkg/core/model"
	"finmodeler/pkg/models"
)

// seedModel builds a one-period history with round driver inputs:
// revenue 1B, COGS 600M, cash 100M, working capital implied by the
// base day ratios. Retained earnings close the balance sheet identity.
func seedModel(t *testing.T, seedDA float64) *model.LinkedModel {
	t.Helper()

	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	revenue := 1e9
	cogs := 6e8
	cash := 100e6
	ar := revenue / 365 * 40
	inv := cogs / 365 * 50
	ap := cogs / 365 * 30

	tca := cash + ar + inv
	ppe := 400e6
	ta := tca + ppe
	ltd := 200e6
	tl := ap + ltd
	tse := ta - tl
	cs := 100e6

	fs := &models.FinancialStatements{
		CompanyName: "Seed Corp",
		Ticker:      "SEED",
		FiscalYear:  2024,
		Currency:    models.USD,
		Periods: []models.PeriodStatements{{
			Income: models.IncomeStatement{
				PeriodStart: start, PeriodEnd: end,
				Revenue: revenue, CostOfRevenue: cogs, GrossProfit: revenue - cogs,
				OperatingIncome:          2e8,
				DepreciationAmortization: seedDA,
				NetIncome:                1.5e8,
				SharesOutstandingDiluted: 10e6,
			},
			Balance: models.BalanceSheet{
				PeriodEnd:          end,
				CashAndEquivalents: cash, AccountsReceivable: ar, Inventory: inv,
				TotalCurrentAssets: tca, PPENet: ppe, TotalAssets: ta,
				AccountsPayable: ap, TotalCurrentLiabilities: ap,
				LongTermDebt: ltd, TotalLiabilities: tl,
				CommonStock: cs, RetainedEarnings: tse - cs,
				TotalShareholdersEquity: tse,
			},
			CashFlow: models.CashFlowStatement{
				PeriodStart: start, PeriodEnd: end,
				NetIncome: 1.5e8, DepreciationAmortization: seedDA,
				CashFromOperations: 1.8e8, CashFromInvesting: -1e8,
				CashFromFinancing: -5e7, CashEndOfPeriod: cash,
			},
		}},
	}

	m, err := model.Build(fs, 0)
	if err != nil {
		t.Fatalf("seed model build: %v", err)
	}
	return m
}

func TestForecast_DriverArithmetic(t *testing.T) {
	m := seedModel(t, 0)

	result, err := Forecast(m, 1, baseAssumptions())
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(result.Periods) != 1 {
		t.Fatalf("Expected 1 projected period, got %d", len(result.Periods))
	}
	p := result.Periods[0]

	approx := func(name string, got, want float64) {
		if math.Abs(got-want) > math.Abs(want)*1e-9+1e-3 {
			t.Errorf("%s: want %.2f, got %.2f", name, want, got)
		}
	}

	approx("revenue", p.Income.Revenue, 1.1e9)
	approx("gross profit", p.Income.GrossProfit, 4.4e8)
	approx("cost of revenue", p.Income.CostOfRevenue, 6.6e8)
	approx("operating income", p.Income.OperatingIncome, 2.2e8)
	approx("tax expense", p.Income.IncomeTaxExpense, 46.2e6)
	approx("net income", p.Income.NetIncome, 173.8e6)
	approx("dividends", p.Income.DividendsPaid, 17.38e6)
	approx("diluted EPS", p.Income.DilutedEPS, 17.38)

	approx("receivables", p.Balance.AccountsReceivable, 1.1e9/365*40)
	approx("inventory", p.Balance.Inventory, 6.6e8/365*50)
	approx("payables", p.Balance.AccountsPayable, 6.6e8/365*30)
	approx("capex", -p.CashFlow.CapitalExpenditures, 88e6)

	// Cash closes the roll-forward from the seed period.
	seed := m.LastPeriod()
	wantCash := seed.Balance.CashAndEquivalents +
		p.CashFlow.CashFromOperations + p.CashFlow.CashFromInvesting + p.CashFlow.CashFromFinancing
	approx("cash", p.Balance.CashAndEquivalents, wantCash)

	t.Logf("✓ Year 1: revenue $%.0fM, NI $%.1fM, cash $%.1fM",
		p.Income.Revenue/1e6, p.Income.NetIncome/1e6, p.Balance.CashAndEquivalents/1e6)
}

func TestForecast_ProjectedPeriodsBalance(t *testing.T) {
	m := seedModel(t, 50e6)

	result, err := Forecast(m, 5, baseAssumptions())
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	if !result.IsBalanced {
		t.Error("Expected every projected period balanced")
	}
	if len(result.Plugs) != 0 {
		t.Errorf("Closed-form projection needed %d plugs, want 0: %+v", len(result.Plugs), result.Plugs)
	}

	prev := m.LastPeriod()
	for i := range result.Periods {
		p := &result.Periods[i]
		bs := p.Balance
		if gap := bs.TotalAssets - (bs.TotalLiabilities + bs.TotalShareholdersEquity); math.Abs(gap) > 1e-3 {
			t.Errorf("Year %d: balance sheet gap %.6f", i+1, gap)
		}
		wantCash := prev.Balance.CashAndEquivalents +
			p.CashFlow.CashFromOperations + p.CashFlow.CashFromInvesting + p.CashFlow.CashFromFinancing
		if math.Abs(bs.CashAndEquivalents-wantCash) > 1e-3 {
			t.Errorf("Year %d: cash roll-forward off by %.6f", i+1, bs.CashAndEquivalents-wantCash)
		}
		wantRE := prev.Balance.RetainedEarnings + p.Income.NetIncome - p.Income.DividendsPaid
		if math.Abs(bs.RetainedEarnings-wantRE) > 1e-3 {
			t.Errorf("Year %d: RE roll-forward off by %.6f", i+1, bs.RetainedEarnings-wantRE)
		}
		prev = p
	}

	t.Logf("✓ 5 projected years, all identities hold with no plug")
}

func TestForecast_CompoundGrowth(t *testing.T) {
	m := seedModel(t, 0)

	result, err := Forecast(m, 5, baseAssumptions())
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	for i, p := range result.Periods {
		want := 1e9 * math.Pow(1.10, float64(i+1))
		if math.Abs(p.Income.Revenue-want) > want*1e-9 {
			t.Errorf("Year %d revenue: want %.2f, got %.2f", i+1, want, p.Income.Revenue)
		}
	}

	t.Logf("✓ Revenue compounds at 10%% for 5 years (final $%.0fM)",
		result.Periods[4].Income.Revenue/1e6)
}

func TestForecast_PeriodDatesAdvanceAnnually(t *testing.T) {
	m := seedModel(t, 0)

	result, err := Forecast(m, 3, baseAssumptions())
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	for i, p := range result.Periods {
		want := time.Date(2025+i, 12, 31, 0, 0, 0, 0, time.UTC)
		if !p.PeriodEnd().Equal(want) {
			t.Errorf("Year %d: want end %s, got %s", i+1,
				want.Format("2006-01-02"), p.PeriodEnd().Format("2006-01-02"))
		}
	}

	t.Logf("✓ Projected period ends advance one fiscal year at a time")
}

func TestForecast_DepreciationRatioCarriedFromSeed(t *testing.T) {
	m := seedModel(t, 50e6) // 5% of seed revenue

	result, err := Forecast(m, 2, baseAssumptions())
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	for i, p := range result.Periods {
		want := p.Income.Revenue * 0.05
		if math.Abs(p.Income.DepreciationAmortization-want) > 1e-3 {
			t.Errorf("Year %d D&A: want %.2f, got %.2f", i+1, want, p.Income.DepreciationAmortization)
		}
	}

	t.Logf("✓ D&A held at the seed ratio to revenue")
}

func TestForecast_FirstOrderRecursion(t *testing.T) {
	m := seedModel(t, 50e6)

	short, err := Forecast(m, 3, baseAssumptions())
	if err != nil {
		t.Fatalf("Forecast 3y: %v", err)
	}
	long, err := Forecast(m, 5, baseAssumptions())
	if err != nil {
		t.Fatalf("Forecast 5y: %v", err)
	}

	if !reflect.DeepEqual(short.Periods, long.Periods[:3]) {
		t.Error("Extending the horizon changed earlier projected periods")
	}

	t.Logf("✓ Period t depends only on period t-1: horizons are prefix-stable")
}

func TestForecast_Reproducible(t *testing.T) {
	m := seedModel(t, 50e6)

	a, err := Forecast(m, 5, baseAssumptions())
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	b, err := Forecast(m, 5, baseAssumptions())
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	if !reflect.DeepEqual(a.Periods, b.Periods) || !reflect.DeepEqual(a.Ratios, b.Ratios) {
		t.Error("Identical inputs produced different projections")
	}

	t.Logf("✓ Same model and assumptions reproduce bit-identical output")
}

func TestForecast_InvalidInputs(t *testing.T) {
	m := seedModel(t, 0)

	if _, err := Forecast(m, 0, baseAssumptions()); err == nil {
		t.Error("Expected error for zero-year horizon")
	}
	if _, err := Forecast(nil, 5, baseAssumptions()); err == nil {
		t.Error("Expected error for nil model")
	}

	bad := baseAssumptions()
	bad.TaxRate = 1.5
	if _, err := Forecast(m, 5, bad); err == nil {
		t.Error("Expected error for invalid assumption set")
	}

	t.Logf("✓ Invalid horizon, model, and drivers fail fast with no partial forecast")
}
