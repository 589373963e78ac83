// Package report renders a LinkedModel and its scenario forecasts into a
// markdown analysis report, with HTML conversion for display layers.
// Applied plugs and unresolved discrepancies are always disclosed.
package report

import (
	"fmt"
	"strings"

	"finmodeler/pkg/core/forecast"
	"finmodeler/pkg/core/model"
	"finmodeler/pkg/core/utils"
	"finmodeler/pkg/core/valuation"
	"finmodeler/pkg/models"
)

// Generator assembles one report from a model and its scenario runs.
type Generator struct {
	Model      *model.LinkedModel
	Forecasts  []*forecast.ForecastResult
	Valuations map[string]valuation.DCFResult // keyed by scenario name, optional
}

// NewGenerator creates a report generator. Forecasts may be empty if only
// the historical model is being reported.
func NewGenerator(m *model.LinkedModel, forecasts []*forecast.ForecastResult) *Generator {
	return &Generator{
		Model:      m,
		Forecasts:  forecasts,
		Valuations: make(map[string]valuation.DCFResult),
	}
}

// Markdown renders the full report.
func (g *Generator) Markdown() string {
	var b strings.Builder

	summary := model.Summarize(g.Model)
	fmt.Fprintf(&b, "# Financial Analysis: %s", g.Model.CompanyName)
	if g.Model.Ticker != "" {
		fmt.Fprintf(&b, " (%s)", g.Model.Ticker)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "- Fiscal year: %d\n", summary.FiscalYear)
	fmt.Fprintf(&b, "- Revenue: %s\n", amount(summary.Revenue))
	fmt.Fprintf(&b, "- Net income: %s\n", amount(summary.NetIncome))
	fmt.Fprintf(&b, "- Net margin: %s\n", percent(summary.NetMargin))
	fmt.Fprintf(&b, "- Return on equity: %s\n", percent(summary.ReturnOnEquity))
	fmt.Fprintf(&b, "- Model balanced: %v\n\n", g.Model.IsBalanced)

	g.writeHistory(&b)
	g.writePlugs(&b, "Historical balancing adjustments", g.Model.Plugs)
	g.writeWarnings(&b)

	for _, fc := range g.Forecasts {
		g.writeForecast(&b, fc)
	}

	return b.String()
}

// HTML renders the report as HTML via goldmark.
func (g *Generator) HTML() (string, error) {
	return utils.RenderHTML(g.Markdown())
}

func (g *Generator) writeHistory(b *strings.Builder) {
	b.WriteString("## Historical model\n\n")
	b.WriteString("| Period | Revenue | Net income | Total assets | Cash | Status |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for i := range g.Model.Periods {
		p := &g.Model.Periods[i]
		status := g.Model.Statuses[i]
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
			p.PeriodEnd().Format("2006-01-02"),
			amount(p.Income.Revenue),
			amount(p.Income.NetIncome),
			amount(p.Balance.TotalAssets),
			amount(p.Balance.CashAndEquivalents),
			status.Outcome)
	}
	b.WriteString("\n")

	b.WriteString("### Ratios\n\n")
	b.WriteString("| Period | Gross margin | Op margin | Net margin | Current ratio | DSO | DIO | DPO |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, r := range g.Model.Ratios {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.PeriodEnd.Format("2006-01-02"),
			percent(r.GrossMargin), percent(r.OperatingMargin), percent(r.NetMargin),
			number(r.CurrentRatio), number(r.DaysSalesOutstanding),
			number(r.DaysInventoryOutstanding), number(r.DaysPayableOutstanding))
	}
	b.WriteString("\n")
}

func (g *Generator) writeForecast(b *strings.Builder, fc *forecast.ForecastResult) {
	fmt.Fprintf(b, "## Forecast: %s scenario (%d years)\n\n", fc.Assumptions.Name, fc.Years)
	fmt.Fprintf(b, "Drivers: growth %.1f%%, gross margin %.1f%%, operating margin %.1f%%, tax %.1f%%, capex %.1f%% of revenue, DSO %.0f / DIO %.0f / DPO %.0f, payout %.0f%%.\n\n",
		fc.Assumptions.RevenueGrowthRate*100,
		fc.Assumptions.GrossMargin*100,
		fc.Assumptions.OperatingMargin*100,
		fc.Assumptions.TaxRate*100,
		fc.Assumptions.CapexPercentOfRevenue*100,
		fc.Assumptions.DaysSalesOutstanding,
		fc.Assumptions.DaysInventoryOutstanding,
		fc.Assumptions.DaysPayableOutstanding,
		fc.Assumptions.DividendPayoutRatio*100)

	b.WriteString("| Period | Revenue | Operating income | Net income | Cash | Total assets | Balanced |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for i := range fc.Periods {
		p := &fc.Periods[i]
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %v |\n",
			p.PeriodEnd().Format("2006-01-02"),
			amount(p.Income.Revenue),
			amount(p.Income.OperatingIncome),
			amount(p.Income.NetIncome),
			amount(p.Balance.CashAndEquivalents),
			amount(p.Balance.TotalAssets),
			fc.Statuses[i].Balanced)
	}
	b.WriteString("\n")

	g.writePlugs(b, fmt.Sprintf("Balancing adjustments (%s)", fc.Assumptions.Name), fc.Plugs)

	if dcf, ok := g.Valuations[fc.Assumptions.Name]; ok {
		fmt.Fprintf(b, "### Valuation (%s)\n\n", fc.Assumptions.Name)
		fmt.Fprintf(b, "- Enterprise value: %s\n", amount(dcf.EnterpriseValue))
		fmt.Fprintf(b, "- Equity value: %s\n", amount(dcf.EquityValue))
		if dcf.SharePrice != 0 {
			fmt.Fprintf(b, "- Implied share price: %.2f\n", dcf.SharePrice)
		}
		b.WriteString("\n")
	}
}

func (g *Generator) writePlugs(b *strings.Builder, title string, plugs []models.PlugRecord) {
	if len(plugs) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	b.WriteString("| Period | Category | Target line | Amount |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, plug := range plugs {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			plug.PeriodEnd.Format("2006-01-02"), plug.Category, plug.TargetLine, amount(plug.Amount))
	}
	b.WriteString("\n")
}

func (g *Generator) writeWarnings(b *strings.Builder) {
	if len(g.Model.Warnings) == 0 {
		return
	}
	b.WriteString("### Warnings\n\n")
	for _, w := range g.Model.Warnings {
		fmt.Fprintf(b, "- %s\n", w)
	}
	b.WriteString("\n")
}

// amount formats a monetary value in millions.
func amount(v float64) string {
	return fmt.Sprintf("%.1fM", v/1e6)
}

// percent formats an optional fraction; undefined ratios render as n/a.
func percent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func number(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}
