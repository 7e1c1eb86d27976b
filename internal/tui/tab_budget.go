package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/budget"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) updateBudgetKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.budget.move(1, len(a.state.BudgetCategories))
	case "k", "up":
		a.budget.move(-1, len(a.state.BudgetCategories))
	case "s", "enter":
		if len(a.state.BudgetCategories) == 0 {
			return a, nil, true
		}
		c := a.state.BudgetCategories[a.budget.cursor]
		a.tx = &transactionValues{Kind: model.Expense, Category: c.Name}
		cmd := a.openForm(formTransaction, newTransactionForm(a.tx, a.state))
		return a, cmd, true
	case "a":
		a.category = &categoryValues{}
		cmd := a.openForm(formCategory, newCategoryForm(a.category))
		return a, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderBudgetTab(cw int) string {
	t := theme.Active
	bs := a.summary.Budget
	var b strings.Builder

	remainingColor := components.LevelColor(bs.Level)
	if len(bs.OverBudget) > 0 {
		remainingColor = t.Danger
	}
	metrics := []components.Metric{
		{Label: "Allocated", Value: a.money(bs.Allocated), Note: fmt.Sprintf("%d categories", len(a.state.BudgetCategories))},
		{Label: "Spent", Value: a.money(bs.Spent), Note: cli.FormatPercent(bs.PercentSpent) + " of budget"},
		{Label: "Remaining", Value: a.money(bs.Remaining), Color: remainingColor},
	}
	if limit := a.cfg.Budget.MonthlyLimit; limit != nil {
		lim := decimal.NewFromFloat(*limit)
		level, pct := budget.Status(lim, a.summary.MonthExpenses)
		metrics = append(metrics, components.Metric{
			Label: "Monthly Limit",
			Value: a.money(lim),
			Note:  cli.FormatPercent(pct) + " used this month",
			Color: components.LevelColor(level),
		})
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Categories", a.renderCategories(components.CardInnerWidth(cw)), cw))
	return b.String()
}

func (a App) renderCategories(innerW int) string {
	t := theme.Active
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.state.BudgetCategories) == 0 {
		return dimStyle.Render("No categories yet. Press a to add one.")
	}

	const labelW, amountsW = 20, 26
	barW := max(innerW-2-labelW-amountsW-8, 10)

	var b strings.Builder
	for i, c := range a.state.BudgetCategories {
		bg := t.Surface
		marker := "  "
		if i == a.budget.cursor {
			bg = t.SurfaceBright
			marker = "▸ "
		}
		level, pct := budget.CategoryStatus(c)
		pf, _ := pct.Float64()

		label := c.Name
		if c.Icon != "" {
			label = c.Icon + " " + c.Name
		}
		amounts := a.money(c.Spent) + " / " + a.money(c.Allocated)

		line := lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg).Render(marker) +
			components.BudgetBar(label, pf, level, labelW, barW) +
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg).Render(fmt.Sprintf("%*s", amountsW, amounts))
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	legend := lipgloss.NewStyle().Background(t.Surface)
	b.WriteString(legend.Foreground(components.LevelColor(budget.Good)).Render("● on track  "))
	b.WriteString(legend.Foreground(components.LevelColor(budget.Warning)).Render("● 75%+  "))
	b.WriteString(legend.Foreground(components.LevelColor(budget.Danger)).Render("● 90%+"))
	b.WriteString(dimStyle.Render("     [s]pend  [a]dd category"))
	return b.String()
}
