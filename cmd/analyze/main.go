package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"finmodeler/pkg/core/forecast"
	"finmodeler/pkg/core/ingest"
	"finmodeler/pkg/core/model"
	"finmodeler/pkg/core/report"
	"finmodeler/pkg/core/store"
	"finmodeler/pkg/core/valuation"
)

// Config drives one analysis run: the base assumption set, the scenarios
// derived from it, and the valuation parameters.
type Config struct {
	Years     int      `yaml:"years"`
	Scenarios []string `yaml:"scenarios"`

	Base struct {
		RevenueGrowthRate        float64 `yaml:"revenue_growth_rate"`
		GrossMargin              float64 `yaml:"gross_margin"`
		OperatingMargin          float64 `yaml:"operating_margin"`
		TaxRate                  float64 `yaml:"tax_rate"`
		CapexPercentOfRevenue    float64 `yaml:"capex_percent_of_revenue"`
		DaysSalesOutstanding     float64 `yaml:"days_sales_outstanding"`
		DaysInventoryOutstanding float64 `yaml:"days_inventory_outstanding"`
		DaysPayableOutstanding   float64 `yaml:"days_payable_outstanding"`
		DividendPayoutRatio      float64 `yaml:"dividend_payout_ratio"`
		NetDebtChange            float64 `yaml:"net_debt_change"`
	} `yaml:"base"`

	Valuation struct {
		WACC           float64 `yaml:"wacc"`
		TerminalGrowth float64 `yaml:"terminal_growth"`
	} `yaml:"valuation"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{Years: 5, Scenarios: []string{forecast.ScenarioBase}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) baseAssumptions() forecast.AssumptionSet {
	return forecast.AssumptionSet{
		Name:                     forecast.ScenarioBase,
		RevenueGrowthRate:        c.Base.RevenueGrowthRate,
		GrossMargin:              c.Base.GrossMargin,
		OperatingMargin:          c.Base.OperatingMargin,
		TaxRate:                  c.Base.TaxRate,
		CapexPercentOfRevenue:    c.Base.CapexPercentOfRevenue,
		DaysSalesOutstanding:     c.Base.DaysSalesOutstanding,
		DaysInventoryOutstanding: c.Base.DaysInventoryOutstanding,
		DaysPayableOutstanding:   c.Base.DaysPayableOutstanding,
		DividendPayoutRatio:      c.Base.DividendPayoutRatio,
		NetDebtChange:            c.Base.NetDebtChange,
	}
}

func main() {
	inputPath := flag.String("input", "", "statements file (JSON or HJSON)")
	configPath := flag.String("config", "config/scenarios.yaml", "scenario config file")
	outputDir := flag.String("out", "output", "output directory")
	save := flag.Bool("save", false, "persist the run to the store")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, assuming environment variables are set")
	}

	if *inputPath == "" {
		log.Fatal("usage: analyze -input statements.json [-config config/scenarios.yaml] [-out output]")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log.Printf("loading statements from %s", *inputPath)
	statements, err := ingest.LoadStatements(*inputPath)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}
	log.Printf("loaded %d periods for %s", len(statements.Periods), statements.CompanyName)

	log.Println("building linked 3-statement model")
	linked, err := model.Build(statements, 0)
	if err != nil {
		log.Fatalf("model build: %v", err)
	}
	if linked.IsBalanced {
		log.Println("model linked and balanced")
	} else {
		log.Printf("model has unresolved periods; %d plugs applied, %d warnings",
			len(linked.Plugs), len(linked.Warnings))
	}

	base := cfg.baseAssumptions()

	// Scenarios are independent pure-function calls over the immutable
	// model, so they run concurrently.
	results := make([]*forecast.ForecastResult, len(cfg.Scenarios))
	errs := make([]error, len(cfg.Scenarios))
	var wg sync.WaitGroup
	for i, name := range cfg.Scenarios {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			assumptions, err := forecast.Derive(base, name)
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = forecast.Forecast(linked, cfg.Years, assumptions)
		}(i, name)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			log.Fatalf("scenario %s: %v", cfg.Scenarios[i], err)
		}
	}
	log.Printf("projected %d scenarios over %d years", len(results), cfg.Years)

	gen := report.NewGenerator(linked, results)
	if cfg.Valuation.WACC > 0 {
		shares := linked.LastPeriod().Income.SharesOutstandingDiluted
		netDebt := linked.LastPeriod().Balance.LongTermDebt +
			linked.LastPeriod().Balance.ShortTermDebt -
			linked.LastPeriod().Balance.CashAndEquivalents
		for _, fc := range results {
			dcf, err := valuation.CalculateDCF(valuation.DCFInput{
				Forecast:          fc,
				WACC:              cfg.Valuation.WACC,
				TerminalGrowth:    cfg.Valuation.TerminalGrowth,
				SharesOutstanding: shares,
				NetDebt:           netDebt,
			})
			if err != nil {
				log.Fatalf("valuation %s: %v", fc.Assumptions.Name, err)
			}
			gen.Valuations[fc.Assumptions.Name] = dcf
		}
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("output dir: %v", err)
	}
	slug := strings.ReplaceAll(linked.CompanyName, " ", "_")

	mdPath := filepath.Join(*outputDir, fmt.Sprintf("analysis_%s.md", slug))
	markdown := gen.Markdown()
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		log.Fatalf("write report: %v", err)
	}
	log.Printf("report written to %s", mdPath)

	html, err := gen.HTML()
	if err != nil {
		log.Fatalf("render html: %v", err)
	}
	htmlPath := filepath.Join(*outputDir, fmt.Sprintf("analysis_%s.html", slug))
	if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
		log.Fatalf("write html: %v", err)
	}
	log.Printf("html written to %s", htmlPath)

	if *save {
		ctx := context.Background()
		if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
			if err := store.InitDB(ctx, dbURL); err != nil {
				log.Fatalf("store: %v", err)
			}
			defer store.Close()
		}
		runStore := store.NewRunStore(store.GetPool(), "")
		run := store.NewRun(linked, results)
		if err := runStore.Save(ctx, run); err != nil {
			log.Fatalf("save run: %v", err)
		}
		log.Printf("run %s saved", run.ID)
	}

	summary := model.Summarize(linked)
	log.Printf("company: %s, fiscal year %d, revenue %.0f, net income %.0f",
		summary.Company, summary.FiscalYear, summary.Revenue, summary.NetIncome)
}
