package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/amortize"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const recentTransactions = 5

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	u := a.state.User
	sum := a.summary
	var b strings.Builder

	// Row 1: headline figures
	greeting := "Hello"
	if u.Name != "" {
		greeting = "Hello, " + u.Name
	}
	netFlow := u.MonthlyIncome.Sub(u.MonthlyExpenses)
	metrics := []components.Metric{
		{Label: "Total Balance", Value: a.balance(u.TotalBalance), Note: greeting},
		{Label: "Monthly Income", Value: a.money(u.MonthlyIncome), Color: t.Good,
			Note: "net " + a.money(netFlow) + "/mo"},
		{Label: "Monthly Expenses", Value: a.money(u.MonthlyExpenses), Color: t.Danger},
		{Label: "Total Debt", Value: a.money(sum.TotalDebt),
			Note: fmt.Sprintf("%d active · EMI %s", sum.ActiveLoans, a.money(sum.MonthlyEMI))},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: upcoming payments, budget, savings
	var cards []string
	var widths []int
	if a.isCompactLayout() {
		widths = []int{cw, cw, cw}
	} else {
		widths = components.LayoutRow(cw, 3)
	}
	cards = append(cards,
		components.ContentCard("Upcoming Payments", a.renderUpcoming(components.CardInnerWidth(widths[0])), widths[0]),
		components.ContentCard("Budget This Month", a.renderBudgetGlance(components.CardInnerWidth(widths[1])), widths[1]),
		components.ContentCard("Savings Goals", a.renderSavingsGlance(components.CardInnerWidth(widths[2])), widths[2]),
	)
	if a.isCompactLayout() {
		b.WriteString(strings.Join(cards, "\n"))
	} else {
		b.WriteString(components.CardRow(cards))
	}
	b.WriteString("\n")

	// Row 3: recent activity
	b.WriteString(components.ContentCard("Recent Transactions", a.renderRecent(components.CardInnerWidth(cw)), cw))
	return b.String()
}

func (a App) renderUpcoming(innerW int) string {
	t := theme.Active
	now := a.clock()
	sum := a.summary

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	overdueStyle := lipgloss.NewStyle().Foreground(t.Danger).Background(t.Surface).Bold(true)
	soonStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	if len(sum.Overdue) == 0 && len(sum.DueSoon) == 0 {
		return dimStyle.Render(fmt.Sprintf("Nothing due in the next %d days", a.cfg.General.DueSoonDays))
	}

	line := func(l model.Loan, style lipgloss.Style) string {
		left := truncStr(l.Bank+" · "+l.Type, innerW/2)
		right := a.money(l.Account.MonthlyPayment) + " " + cli.FormatDue(l.Account.NextDueDate, now)
		gap := max(innerW-lipgloss.Width(left)-lipgloss.Width(right), 1)
		return nameStyle.Render(left) + dimStyle.Render(strings.Repeat(" ", gap)) + style.Render(right)
	}

	var lines []string
	for _, l := range sum.Overdue {
		lines = append(lines, line(l, overdueStyle))
	}
	for _, l := range sum.DueSoon {
		lines = append(lines, line(l, soonStyle))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderBudgetGlance(innerW int) string {
	t := theme.Active
	bs := a.summary.Budget

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	if bs.Allocated.IsZero() {
		return labelStyle.Render("No budget categories yet")
	}

	pct, _ := bs.PercentSpent.Float64()
	var b strings.Builder
	b.WriteString(components.BudgetBar("Spent", pct, bs.Level, 6, max(innerW-13, 8)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Spent     ") + valueStyle.Render(a.money(bs.Spent)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Allocated ") + valueStyle.Render(a.money(bs.Allocated)))
	b.WriteString("\n")
	remaining := lipgloss.NewStyle().Foreground(components.LevelColor(bs.Level)).Background(t.Surface)
	b.WriteString(labelStyle.Render("Remaining ") + remaining.Render(a.money(bs.Remaining)))
	return b.String()
}

func (a App) renderSavingsGlance(innerW int) string {
	t := theme.Active
	sum := a.summary

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	if len(a.state.SavingsGoals) == 0 {
		return labelStyle.Render("No savings goals yet")
	}

	pct, _ := sum.SavingsProgress.Float64()
	var b strings.Builder
	b.WriteString(components.ProgressBar(pct/100, max(innerW-5, 8)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Saved   ") + valueStyle.Render(a.balance(sum.SavingsCurrent)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Target  ") + valueStyle.Render(a.money(sum.SavingsTarget)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%d goals", len(a.state.SavingsGoals))))
	return b.String()
}

func (a App) renderRecent(innerW int) string {
	t := theme.Active

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	inStyle := lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface)
	outStyle := lipgloss.NewStyle().Foreground(t.Danger).Background(t.Surface)

	txs := a.state.Transactions
	if len(txs) == 0 {
		return dimStyle.Render("No transactions yet. Press t to add one.")
	}
	txs = txs[:min(len(txs), recentTransactions)]

	const dateW, amountW = 12, 14
	catW := min(18, innerW/4)
	descW := max(innerW-dateW-catW-amountW, 10)

	var lines []string
	for _, tx := range txs {
		sign, style := "+", inStyle
		if tx.Kind == model.Expense {
			sign, style = "-", outStyle
		}
		lines = append(lines,
			mutedStyle.Render(fmt.Sprintf("%-*s", dateW, cli.FormatDate(tx.Date)))+
				textStyle.Render(fmt.Sprintf("%-*s", descW, truncStr(tx.Description, descW-1)))+
				mutedStyle.Render(fmt.Sprintf("%-*s", catW, truncStr(tx.Category, catW-1)))+
				style.Render(fmt.Sprintf("%*s", amountW, sign+a.money(tx.Amount))))
	}

	monthly := fmt.Sprintf("This month: in %s · out %s", a.money(a.summary.MonthIncome), a.money(a.summary.MonthExpenses))
	if a.summary.InterestRemaining.IsPositive() {
		monthly += fmt.Sprintf(" · interest left on loans %s", a.money(a.summary.InterestRemaining))
	}
	lines = append(lines, "", dimStyle.Render(monthly))
	return strings.Join(lines, "\n")
}

// loanProgress returns the repaid share of a loan in [0, 1].
func loanProgress(l model.Loan) float64 {
	p, _ := amortize.Progress(l.Account).Float64()
	return p / 100
}
