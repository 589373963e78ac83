package ingest

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"finmodeler/pkg/core/model"
)

func TestLoadStatements_JSON(t *testing.T) {
	fs, err := LoadStatements(filepath.Join("testdata", "statements_acme.json"))
	if err != nil {
		t.Fatalf("LoadStatements: %v", err)
	}

	if fs.CompanyName != "Acme Industrial" || fs.Ticker != "ACME" {
		t.Errorf("Unexpected identity: %s (%s)", fs.CompanyName, fs.Ticker)
	}
	if len(fs.Periods) != 2 {
		t.Fatalf("Expected 2 periods, got %d", len(fs.Periods))
	}
	if fs.Periods[1].Income.Revenue != 1100 {
		t.Errorf("Expected FY2024 revenue 1100, got %.1f", fs.Periods[1].Income.Revenue)
	}

	t.Logf("✓ Loaded %d periods for %s", len(fs.Periods), fs.CompanyName)
}

func TestLoadStatements_FeedsCleanModel(t *testing.T) {
	fs, err := LoadStatements(filepath.Join("testdata", "statements_acme.json"))
	if err != nil {
		t.Fatalf("LoadStatements: %v", err)
	}

	m, err := model.Build(fs, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !m.IsBalanced {
		t.Error("Fixture statements should link without plugs")
	}
	if len(m.Plugs) != 0 {
		t.Errorf("Expected no plugs, got %+v", m.Plugs)
	}

	t.Logf("✓ File fixture links into a balanced model")
}

func TestParseStatements_HJSON(t *testing.T) {
	input := `{
  # minimal hand-entered bundle
  company_name: "Testco"
  currency: "USD"
  periods: [
    {
      income_statement: {
        period_start: "2024-01-01T00:00:00Z"
        period_end: "2024-12-31T00:00:00Z"
        revenue: 500
        net_income: 50
      }
      balance_sheet: {
        period_end: "2024-12-31T00:00:00Z"
        cash_and_equivalents: 40
        total_assets: 300
        total_liabilities: 100
        total_shareholders_equity: 200
      }
      cash_flow_statement: {
        period_start: "2024-01-01T00:00:00Z"
        period_end: "2024-12-31T00:00:00Z"
        cash_from_operations: 60
      }
    }
  ]
}`

	fs, err := ParseStatements([]byte(input))
	if err != nil {
		t.Fatalf("ParseStatements: %v", err)
	}
	if fs.CompanyName != "Testco" || fs.Periods[0].Income.Revenue != 500 {
		t.Errorf("Unexpected result: %+v", fs)
	}

	t.Logf("✓ HJSON bundle with comments parsed and validated")
}

func TestParseStatements_RejectsStructurallyInvalid(t *testing.T) {
	// Valid JSON, but the period has no dates.
	input := `{"company_name": "Broken", "periods": [{"income_statement": {"revenue": 100}}]}`

	if _, err := ParseStatements([]byte(input)); err == nil {
		t.Error("Expected structural validation error")
	}

	t.Logf("✓ Structurally invalid statements rejected at the boundary")
}

func TestLoadAssumptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assumptions.json")
	content := `{"name": "base", "revenue_growth_rate": 0.08, "gross_margin": 0.42}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	var got struct {
		Name              string  `json:"name"`
		RevenueGrowthRate float64 `json:"revenue_growth_rate"`
		GrossMargin       float64 `json:"gross_margin"`
	}
	if err := LoadAssumptions(path, &got); err != nil {
		t.Fatalf("LoadAssumptions: %v", err)
	}
	if got.Name != "base" || math.Abs(got.RevenueGrowthRate-0.08) > 1e-12 {
		t.Errorf("Unexpected result: %+v", got)
	}

	t.Logf("✓ Assumption file loaded: %s at %.0f%% growth", got.Name, got.RevenueGrowthRate*100)
}
