package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/spice-insights/internal/budget"
	"github.com/Veraticus/spice-insights/internal/classification"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/optimize"
	"github.com/Veraticus/spice-insights/internal/pattern"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

// weekdays in display order.
var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers(headers...)
}

// sections joins non-empty blocks with blank lines and writes them.
func sections(w io.Writer, blocks ...string) error {
	kept := blocks[:0]
	for _, b := range blocks {
		if b != "" {
			kept = append(kept, b)
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(kept, "\n\n"))
	return err
}

// RenderCategorization prints the method summary and every categorized transaction.
func RenderCategorization(w io.Writer, result *classification.Result) error {
	s := result.Summary
	summary := fmt.Sprintf("%d transactions: %d learned, %d rules, %d fallback, %d unclassified",
		s.Total(), s.UserLearned, s.RuleBased, s.FallbackClassified, s.Unclassified)

	if len(result.Transactions) == 0 {
		return sections(w, FormatTitle("Categorization"), FormatInfo("No transactions to categorize"))
	}

	t := newTable("Date", "Merchant", "Amount", "Category", "Method", "Confidence")
	for _, ct := range result.Transactions {
		date := "-"
		if ct.HasDate() {
			date = ct.Date.Format("2006-01-02")
		}
		category := ct.Category
		if ct.Subcategory != "" {
			category += " / " + ct.Subcategory
		}
		t.Row(date, ct.MerchantIdentifier(), money(ct.Amount), category,
			string(ct.Method), fmt.Sprintf("%.2f", ct.Confidence))
	}

	return sections(w, FormatTitle("Categorization"), t.String(), SubtleStyle.Render(summary))
}

// RenderAnalysis prints recurring expenses, seasonal spikes, anomalies and
// weekday habits.
func RenderAnalysis(w io.Writer, result *pattern.Result) error {
	window := SubtitleStyle.Render(fmt.Sprintf("Window %s to %s",
		result.WindowStart.Format("2006-01-02"), result.WindowEnd.Format("2006-01-02")))
	if result.SkippedUndated > 0 {
		window += "\n" + FormatWarning(fmt.Sprintf("%d undated transactions skipped", result.SkippedUndated))
	}

	recurring := FormatInfo("No recurring expenses found")
	if len(result.RecurringExpenses) > 0 {
		t := newTable("Merchant", "Category", "Frequency", "Average", "Count", "Confidence")
		for _, r := range result.RecurringExpenses {
			t.Row(r.MerchantPattern, r.Category, string(r.Frequency), money(r.AverageAmount),
				fmt.Sprint(r.TransactionCount), fmt.Sprintf("%.2f", r.ConfidenceScore))
		}
		recurring = BoldStyle.Render("Recurring expenses") + "\n" + t.String()
	}

	var seasonal string
	if len(result.SeasonalTrends) > 0 {
		t := newTable("Category", "Peak month", "Peak", "Monthly average")
		for _, s := range result.SeasonalTrends {
			t.Row(s.Category, s.PeakMonth, money(s.PeakAmount), money(s.AverageMonthly))
		}
		seasonal = BoldStyle.Render("Seasonal spikes") + "\n" + t.String()
	}

	var anomalies string
	if len(result.Anomalies) > 0 {
		t := newTable("Date", "Merchant", "Category", "Amount", "Expected", "Std devs", "Severity")
		for _, a := range result.Anomalies {
			t.Row(a.Date.Format("2006-01-02"), a.MerchantName, a.Category, money(a.Amount),
				money(a.ExpectedAmount), fmt.Sprintf("%.1f", a.StdDeviations),
				SeverityStyle(a.Severity).Render(string(a.Severity)))
		}
		anomalies = BoldStyle.Render("Anomalies") + "\n" + t.String()
	}

	b := result.Behavior
	var habits string
	if b.TransactionCount > 0 {
		t := newTable("Weekday", "Spend")
		for _, day := range weekdays {
			if amount, ok := b.SpendByWeekday[day]; ok {
				t.Row(day, money(amount))
			}
		}
		habits = BoldStyle.Render("Spending habits") + "\n" + t.String() + "\n" +
			fmt.Sprintf("Top day %s (%s), weekend share %s, average %s over %d expenses",
				b.TopWeekday, money(b.TopWeekdayAmount), percent(b.WeekendRatio*100),
				money(b.AverageAmount), b.TransactionCount)
	}

	return sections(w, FormatTitle(ChartIcon+" Spending patterns"), window, recurring, seasonal, anomalies, habits)
}

// RenderSubscriptions prints detected subscriptions and related opportunities.
func RenderSubscriptions(w io.Writer, result *subscription.Result) error {
	if len(result.Subscriptions) == 0 {
		return sections(w, FormatTitle("Subscriptions"), FormatInfo("No subscriptions detected"))
	}

	t := newTable("Service", "Type", "Frequency", "Monthly", "Charges", "Last charge")
	for _, s := range result.Subscriptions {
		t.Row(s.MerchantName, s.ServiceType, string(s.Frequency), money(s.MonthlyCost),
			fmt.Sprint(s.TransactionCount), s.LastChargeDate.Format("2006-01-02"))
	}

	total := BoldStyle.Render("Total monthly: " + money(result.TotalMonthly))

	return sections(w, FormatTitle("Subscriptions"), t.String(), total,
		opportunitiesBlock(result.Opportunities))
}

// RenderRecommendations prints ranked optimization opportunities.
func RenderRecommendations(w io.Writer, result *optimize.Result) error {
	if len(result.Opportunities) == 0 {
		return sections(w, FormatTitle(MoneyIcon+" Recommendations"), FormatInfo("No savings opportunities found"))
	}

	total := SuccessStyle.Render("Potential monthly savings: " + money(result.TotalPotentialSavings))
	return sections(w, FormatTitle(MoneyIcon+" Recommendations"), opportunitiesBlock(result.Opportunities), total)
}

func opportunitiesBlock(opportunities []model.OptimizationOpportunity) string {
	if len(opportunities) == 0 {
		return ""
	}
	t := newTable("Opportunity", "Savings/mo", "Fit", "Difficulty", "Confidence")
	for _, o := range opportunities {
		t.Row(o.Description, money(o.PotentialMonthlySavings), fmt.Sprintf("%.2f", o.PersonalityFit),
			string(o.ImplementationDifficulty), fmt.Sprintf("%.2f", o.ConfidenceScore))
	}
	return t.String()
}

// RenderBudget prints budget status, alerts and optional variance analysis.
func RenderBudget(w io.Writer, result *budget.AlertResult) error {
	if len(result.Categories) == 0 {
		return sections(w, FormatTitle("Budgets"), FormatInfo("No budgets set. Try: spice budget set <category> <limit>"))
	}

	t := newTable("Category", "Limit", "Spent", "Used", "Remaining", "State")
	for _, c := range result.Categories {
		t.Row(c.CategoryName, money(c.MonthlyLimit), money(c.CurrentSpent), percent(c.PercentageUsed),
			money(c.RemainingBudget), StateStyle(c.State).Render(string(c.State)))
	}

	var alerts []string
	for _, a := range result.Alerts {
		line := SeverityStyle(a.Severity).Render(WarningIcon + " " + a.PersonalityAwareMessage)
		alerts = append(alerts, line)
	}

	return sections(w, FormatTitle("Budgets"), t.String(), strings.Join(alerts, "\n"),
		varianceBlock(result.Variance))
}

func varianceBlock(report *budget.VarianceReport) string {
	if report == nil {
		return ""
	}

	var lines []string
	for _, v := range report.OverBudget {
		lines = append(lines, ErrorStyle.Render(fmt.Sprintf("%s is over by %s (%s)",
			v.CategoryName, money(v.Variance), percent(v.PercentageUsed))))
	}
	for _, v := range report.UnderBudget {
		lines = append(lines, SubtleStyle.Render(fmt.Sprintf("%s has used only %s",
			v.CategoryName, percent(v.PercentageUsed))))
	}

	for _, s := range report.Suggestions {
		lines = append(lines, InfoStyle.Render(fmt.Sprintf("Move %s from %s to %s",
			money(s.Amount), s.FromCategory, s.ToCategory)))
	}
	if report.UncoveredOverage > 0 {
		lines = append(lines, WarningStyle.Render("Uncovered overage: "+money(report.UncoveredOverage)))
	}

	if len(lines) == 0 {
		return ""
	}
	return BoldStyle.Render("Variance") + "\n" + strings.Join(lines, "\n")
}

// RenderCorrections lists stored merchant corrections.
func RenderCorrections(w io.Writer, corrections []model.Correction) error {
	if len(corrections) == 0 {
		return sections(w, FormatTitle("Corrections"), FormatInfo("No corrections recorded yet"))
	}

	t := newTable("Merchant", "Category", "Source", "Uses", "Updated")
	for _, c := range corrections {
		t.Row(c.MerchantKey, c.Category, string(c.Source),
			fmt.Sprintf("%d", c.UseCount), c.LastUpdated.Format("2006-01-02"))
	}
	return sections(w, FormatTitle("Corrections"), t.String())
}
