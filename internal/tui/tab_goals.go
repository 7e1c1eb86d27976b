package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/budget"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// The goals cursor runs over the savings goals, then the courses.

func (a App) updateGoalsKey(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.state.SavingsGoals) + len(a.state.Courses)
	switch key {
	case "j", "down":
		a.goals.move(1, n)
	case "k", "up":
		a.goals.move(-1, n)
	case "n":
		a.goal = &goalValues{}
		cmd := a.openForm(formGoal, newGoalForm(a.goal))
		return a, cmd, true
	case "c", "enter":
		if n == 0 {
			return a, nil, true
		}
		if i := a.goals.cursor; i < len(a.state.SavingsGoals) {
			a.contrib = &contributionValues{}
			cmd := a.openForm(formContribution, newContributionForm(a.contrib, a.state.SavingsGoals[i]))
			return a, cmd, true
		}
		course := a.state.Courses[a.goals.cursor-len(a.state.SavingsGoals)]
		if course.Completed {
			a.status.Message, a.status.IsError = course.Title+" is already complete", false
			return a, nil, true
		}
		act, err := ledger.ContinueCourse(a.state, course.ID)
		if err != nil {
			a.status.Message, a.status.IsError = err.Error(), true
			return a, nil, true
		}
		return a, a.dispatch("Progress saved: "+course.Title, act), true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderGoalsTab(cw int) string {
	var b strings.Builder
	b.WriteString(components.ContentCard("Savings Goals", a.renderGoalList(components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Learning", a.renderCourses(components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Progress", a.renderLearningStats(), cw))
		return b.String()
	}

	ws := components.LayoutRow(cw, 3)
	left := ws[0] + ws[1]
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Learning", a.renderCourses(components.CardInnerWidth(left)), left),
		components.ContentCard("Progress", a.renderLearningStats(), ws[2]),
	}))
	return b.String()
}

func (a App) renderGoalList(innerW int) string {
	t := theme.Active
	now := a.clock()
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.state.SavingsGoals) == 0 {
		return dimStyle.Render("No savings goals yet. Press n to add one.")
	}

	const nameW, amountsW = 20, 28
	barW := max(innerW-2-nameW-amountsW-6, 10)

	var b strings.Builder
	for i, g := range a.state.SavingsGoals {
		bg := t.Surface
		marker := "  "
		if i == a.goals.cursor {
			bg = t.SurfaceBright
			marker = "▸ "
		}
		nameColor := t.TextPrimary
		if budget.GoalReached(g) {
			nameColor = t.Good
		}
		pct, _ := budget.GoalProgress(g).Float64()

		amounts := a.balance(g.Current) + " / " + a.money(g.Target)
		b.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg).Render(marker))
		b.WriteString(lipgloss.NewStyle().Foreground(nameColor).Background(bg).
			Render(fmt.Sprintf("%-*s", nameW, truncStr(g.Name, nameW-1))))
		b.WriteString(components.ProgressBar(pct/100, barW))
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg).
			Render(fmt.Sprintf("%*s", amountsW, amounts)))
		if !g.Deadline.IsZero() {
			b.WriteString(dimStyle.Render("  " + cli.FormatDue(g.Deadline, now)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("[enter] contribute  [n]ew goal"))
	return b.String()
}

func (a App) renderCourses(innerW int) string {
	t := theme.Active
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.state.Courses) == 0 {
		return dimStyle.Render("No courses available")
	}

	const titleW, modulesW = 26, 10
	barW := max(innerW-2-titleW-modulesW-6, 10)

	var b strings.Builder
	for i, c := range a.state.Courses {
		idx := len(a.state.SavingsGoals) + i
		bg := t.Surface
		marker := "  "
		if idx == a.goals.cursor {
			bg = t.SurfaceBright
			marker = "▸ "
		}
		titleColor := t.TextPrimary
		if c.Completed {
			titleColor = t.Good
		}
		b.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg).Render(marker))
		b.WriteString(lipgloss.NewStyle().Foreground(titleColor).Background(bg).
			Render(fmt.Sprintf("%-*s", titleW, truncStr(c.Title, titleW-1))))
		b.WriteString(components.ProgressBar(float64(c.Progress)/100, barW))
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg).
			Render(fmt.Sprintf("%*s", modulesW, fmt.Sprintf("%d/%d", c.CompletedModules, c.Modules))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("[enter] continue course (+%d%%)", ledger.CourseStep)))
	return b.String()
}

func (a App) renderLearningStats() string {
	t := theme.Active
	st := a.state.Stats

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	rows := [][2]string{
		{"Courses done", cli.FormatNumber(int64(st.CoursesCompleted))},
		{"Hours", fmt.Sprintf("%.1f", st.TotalHours)},
		{"Streak", fmt.Sprintf("%d days", st.StreakDays)},
		{"Points", cli.FormatNumber(int64(st.Points))},
		{"Badges", cli.FormatNumber(int64(len(a.state.Achievements)))},
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = labelStyle.Render(fmt.Sprintf("%-14s", r[0])) + valueStyle.Render(r[1])
	}
	return strings.Join(lines, "\n")
}
