package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/amortize"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// loansState tracks the loans tab: the selected loan and the last EMI
// calculation.
type loansState struct {
	listState
	calc *calcResult
}

type calcResult struct {
	terms    amortize.LoanTerms
	result   amortize.Result
	schedule []amortize.Installment
}

func (l *loansState) calculate(v calculatorValues, places int32) error {
	terms, err := v.terms()
	if err != nil {
		return err
	}
	res, err := amortize.ComputeWithPrecision(terms, places)
	if err != nil {
		return err
	}
	rows, err := amortize.Schedule(terms, time.Time{}, places)
	if err != nil {
		return err
	}
	l.calc = &calcResult{terms: terms, result: res, schedule: rows}
	return nil
}

func (a App) selectedLoan() (model.Loan, bool) {
	if len(a.state.Loans) == 0 {
		return model.Loan{}, false
	}
	return a.state.Loans[a.loans.cursor], true
}

func (a App) updateLoansKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.loans.move(1, len(a.state.Loans))
	case "k", "up":
		a.loans.move(-1, len(a.state.Loans))
	case "p", "enter":
		l, ok := a.selectedLoan()
		if !ok {
			return a, nil, true
		}
		if l.Status == model.LoanPaid {
			a.status.Message, a.status.IsError = l.Type+" is already paid off", true
			return a, nil, true
		}
		a.payment = &paymentValues{}
		cmd := a.openForm(formPayment, newPaymentForm(a.payment, l, a.money))
		return a, cmd, true
	case "e":
		a.calculator = &calculatorValues{}
		cmd := a.openForm(formCalculator, newCalculatorForm(a.calculator))
		return a, cmd, true
	case "a":
		a.newLoan = &loanValues{}
		cmd := a.openForm(formLoan, newLoanForm(a.newLoan))
		return a, cmd, true
	case "esc":
		a.loans.calc = nil
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderLoansTab(cw int) string {
	sum := a.summary
	var b strings.Builder

	metrics := []components.Metric{
		{Label: "Outstanding", Value: a.money(sum.TotalDebt), Note: fmt.Sprintf("%d active loans", sum.ActiveLoans)},
		{Label: "Monthly EMI", Value: a.money(sum.MonthlyEMI)},
		{Label: "Average Rate", Value: cli.FormatRate(sum.AverageRate), Note: "weighted by balance"},
		{Label: "Interest Remaining", Value: a.money(sum.InterestRemaining), Color: theme.Active.Warning},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	var listW, detailW int
	if a.isCompactLayout() {
		listW, detailW = cw, cw
	} else {
		ws := components.LayoutRow(cw, 2)
		listW, detailW = ws[0], ws[1]
	}

	list := components.ContentCard("Loans", a.renderLoanList(components.CardInnerWidth(listW)), listW)
	detail := a.renderLoanDetail(detailW)
	if a.isCompactLayout() {
		b.WriteString(list + "\n" + detail)
	} else {
		b.WriteString(components.CardRow([]string{list, detail}))
	}

	if a.loans.calc != nil {
		b.WriteString("\n")
		b.WriteString(a.renderCalculator(cw))
	}
	return b.String()
}

func (a App) renderLoanList(innerW int) string {
	t := theme.Active
	now := a.clock()

	if len(a.state.Loans) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("No loans tracked. Press a to add one, e for the EMI calculator.")
	}

	var b strings.Builder
	for i, l := range a.state.Loans {
		bg := t.Surface
		marker := "  "
		if i == a.loans.cursor {
			bg = t.SurfaceBright
			marker = "▸ "
		}
		nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg).Bold(i == a.loans.cursor)
		mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
		markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg)

		left := markerStyle.Render(marker) + nameStyle.Render(truncStr(l.Type, 18)) +
			mutedStyle.Render(" · "+truncStr(l.Bank, 14))
		right := a.renderLoanStatus(l, now, bg) + mutedStyle.Render(" "+a.money(l.Account.CurrentBalance))
		gap := max(innerW-lipgloss.Width(left)-lipgloss.Width(right), 1)

		b.WriteString(left + lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", gap)) + right)
		if i < len(a.state.Loans)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
		Render("[p]ay  [e]mi calculator  [a]dd loan"))
	return b.String()
}

func (a App) renderLoanStatus(l model.Loan, now time.Time, bg lipgloss.Color) string {
	t := theme.Active
	color, label := t.Good, "active"
	switch {
	case l.Status == model.LoanPaid:
		color, label = t.TextDim, "paid"
	case l.Status == model.LoanOverdue || amortize.Overdue(l.Account, now):
		color, label = t.Danger, "overdue"
	case amortize.DueSoon(l.Account, now, a.dueWindow()):
		color, label = t.Warning, "due soon"
	}
	return lipgloss.NewStyle().Foreground(color).Background(bg).Render(label)
}

func (a App) renderLoanDetail(w int) string {
	t := theme.Active
	l, ok := a.selectedLoan()
	if !ok {
		return components.ContentCard("Details", "", w)
	}
	acct := l.Account
	innerW := components.CardInnerWidth(w)
	now := a.clock()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	rows := [][2]string{
		{"Lender", l.Bank},
		{"Status", a.renderLoanStatus(l, now, t.Surface)},
		{"Balance", a.money(acct.CurrentBalance) + " of " + a.money(acct.OriginalAmount)},
		{"EMI", a.money(acct.MonthlyPayment)},
		{"Rate", cli.FormatRate(acct.AnnualRatePercent)},
		{"Remaining", cli.FormatMonths(acct.RemainingMonths)},
		{"Next due", cli.FormatDate(acct.NextDueDate) + " (" + cli.FormatDue(acct.NextDueDate, now) + ")"},
		{"Interest left", a.money(amortize.InterestRemaining(acct))},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", r[0])))
		b.WriteString(valueStyle.Render(r[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Repaid  "))
	b.WriteString(components.ProgressBar(loanProgress(l), max(innerW-13, 8)))

	if proj := a.loanProjection(l); len(proj) > 0 {
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("Balance by year if paid on schedule"))
		b.WriteString("\n")
		b.WriteString(components.Sparkline(proj, t.Info))
	}
	return components.ContentCard(l.Type, b.String(), w)
}

// loanProjection lists the balance left at the end of each remaining
// year of a loan's schedule.
func (a App) loanProjection(l model.Loan) []float64 {
	acct := l.Account
	if l.Status == model.LoanPaid || acct.RemainingMonths <= 0 || !acct.CurrentBalance.IsPositive() {
		return nil
	}
	rows, err := amortize.Schedule(amortize.LoanTerms{
		Principal:         acct.CurrentBalance,
		AnnualRatePercent: acct.AnnualRatePercent,
		TermMonths:        acct.RemainingMonths,
	}, acct.NextDueDate, a.cfg.General.Precision)
	if err != nil {
		return nil
	}

	start, _ := acct.CurrentBalance.Float64()
	points := []float64{start}
	for i, r := range rows {
		if (i+1)%12 == 0 || i == len(rows)-1 {
			v, _ := r.Remaining.Float64()
			points = append(points, v)
		}
	}
	return points
}

func (a App) renderCalculator(cw int) string {
	t := theme.Active
	c := a.loans.calc
	innerW := components.CardInnerWidth(cw)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s  %s%s  %s%s\n",
		labelStyle.Render("Monthly EMI "), valueStyle.Render(a.money(c.result.MonthlyPayment)),
		labelStyle.Render("Total payment "), valueStyle.Render(a.money(c.result.TotalPayment)),
		labelStyle.Render("Total interest "), valueStyle.Render(a.money(c.result.TotalInterest)),
	)

	// Principal and interest paid per year
	var stacks []components.Stack
	for i := 0; i < len(c.schedule); i += 12 {
		var principal, interest float64
		for _, r := range c.schedule[i:min(i+12, len(c.schedule))] {
			p, _ := r.Principal.Float64()
			in, _ := r.Interest.Float64()
			principal += p
			interest += in
		}
		stacks = append(stacks, components.Stack{
			Label: fmt.Sprintf("Y%d", i/12+1),
			Parts: []float64{principal, interest},
		})
	}
	b.WriteString("\n")
	b.WriteString(components.StackedBars(stacks, []lipgloss.Color{t.Info, t.Warning}, innerW))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.Info).Background(t.Surface).Render("█ principal  "))
	b.WriteString(lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface).Render("█ interest"))
	b.WriteString(dimStyle.Render("   [e] recalculate  [esc] close"))

	title := fmt.Sprintf("EMI Calculator · %s at %s for %s",
		a.money(c.terms.Principal), cli.FormatRate(c.terms.AnnualRatePercent), cli.FormatMonths(c.terms.TermMonths))
	return components.ContentCard(title, b.String(), cw)
}
