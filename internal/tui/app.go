// Package tui provides the interactive Bubble Tea dashboard for fintrack.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StateMsg carries the ledger state after a dispatched change.
type StateMsg struct {
	State ledger.State
	Info  string
	Err   error
}

const (
	tabDashboard = iota
	tabLoans
	tabBudget
	tabGoals
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	tickInterval = 30 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	ledger *ledger.Store
	cfg    config.Config
	log    *zap.Logger
	clock  func() time.Time

	// Snapshot of the ledger, refreshed after every dispatch
	state   ledger.State
	summary ledger.Summary

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    components.Status

	// Per-tab state
	loans    loansState
	budget   listState
	goals    listState
	settings settingsState

	// Modal huh form; values are bound through pointers held here
	form       *huh.Form
	formKind   formKind
	onboarding *OnboardingValues
	payment    *paymentValues
	calculator *calculatorValues
	newLoan    *loanValues
	tx         *transactionValues
	category   *categoryValues
	goal       *goalValues
	contrib    *contributionValues
}

// listState is a cursor over a list.
type listState struct {
	cursor int
}

func (l *listState) move(delta, n int) {
	l.cursor = min(max(l.cursor+delta, 0), max(n-1, 0))
}

// NewApp creates the dashboard over st. The onboarding form opens first
// when the user has not completed it.
func NewApp(st *ledger.Store, cfg config.Config, log *zap.Logger) App {
	if log == nil {
		log = zap.NewNop()
	}
	theme.SetActive(cfg.Appearance.Theme)

	a := App{
		ledger: st,
		cfg:    cfg,
		log:    log,
		clock:  time.Now,
		state:  st.State(),
		status: components.Status{Backend: cfg.Storage.Backend},
	}
	a.recompute()

	if !a.state.OnboardingComplete {
		a.onboarding = &OnboardingValues{Name: cfg.General.Name}
		a.formKind = formOnboarding
		a.form = NewOnboardingForm(a.onboarding)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion, tickCmd(), a.refreshStatusCmd()}
	if a.form != nil {
		cmds = append(cmds, a.form.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) recompute() {
	a.summary = ledger.Summarize(a.state, a.clock(), a.dueWindow())
	a.loans.move(0, len(a.state.Loans))
	a.budget.move(0, len(a.state.BudgetCategories))
	a.goals.move(0, len(a.state.SavingsGoals)+len(a.state.Courses))
}

func (a App) dueWindow() time.Duration {
	return time.Duration(a.cfg.General.DueSoonDays) * 24 * time.Hour
}

func (a App) money(d decimal.Decimal) string {
	return cli.Money(d, a.cfg.General.Currency, a.cfg.General.Precision)
}

// balance formats a personal balance, honoring the hide-balance toggle.
func (a App) balance(d decimal.Decimal) string {
	return cli.MoneyOrMask(d, a.cfg.General.Currency, a.cfg.General.Precision, a.state.User.ShowBalance)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth())
		}
		return a, nil

	case tea.MouseMsg:
		if a.form != nil || a.showHelp {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case StateMsg:
		if msg.Err != nil {
			a.log.Warn("action failed", zap.Error(msg.Err))
			a.status.Message, a.status.IsError = msg.Err.Error(), true
			return a, nil
		}
		a.state = msg.State
		a.recompute()
		if msg.Info != "" {
			a.log.Info(msg.Info)
			a.status.Message, a.status.IsError = msg.Info, false
		}
		return a, nil

	case tickMsg:
		a.recompute()
		return a, tea.Batch(tickCmd(), a.refreshStatusCmd())
	}

	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.form != nil {
		if key == "esc" {
			a.closeForm()
			return a, nil
		}
		return a.updateForm(msg)
	}

	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabLoans:
		if m, cmd, ok := a.updateLoansKey(key); ok {
			return m, cmd
		}
	case tabBudget:
		if m, cmd, ok := a.updateBudgetKey(key); ok {
			return m, cmd
		}
	case tabGoals:
		if m, cmd, ok := a.updateGoalsKey(key); ok {
			return m, cmd
		}
	case tabSettings:
		switch key {
		case "j", "down":
			a.settings.cursor = min(a.settings.cursor+1, settingsFieldCount-1)
			return a, nil
		case "k", "up":
			a.settings.cursor = max(a.settings.cursor-1, 0)
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "h":
		return a, a.dispatch("", ledger.ToggleBalanceVisibility{})
	case "t":
		a.tx = &transactionValues{}
		cmd := a.openForm(formTransaction, newTransactionForm(a.tx, a.state))
		return a, cmd
	case "r":
		st, err := a.ledger.Reload()
		if err != nil {
			a.log.Warn("reload failed", zap.Error(err))
			a.status.Message, a.status.IsError = err.Error(), true
			return a, nil
		}
		a.state = st
		a.recompute()
		a.status.Message, a.status.IsError = "Reloaded", false
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabLoans:
		a.loans.move(delta, len(a.state.Loans))
	case tabBudget:
		a.budget.move(delta, len(a.state.BudgetCategories))
	case tabGoals:
		a.goals.move(delta, len(a.state.SavingsGoals)+len(a.state.Courses))
	}
}

// ─── Forms ──────────────────────────────────────────────────────

func (a App) formWidth() int {
	return min(max(a.width-8, 40), 80)
}

func (a *App) openForm(kind formKind, f *huh.Form) tea.Cmd {
	a.formKind = kind
	a.form = f
	if a.width > 0 {
		a.form = a.form.WithWidth(a.formWidth())
	}
	return a.form.Init()
}

func (a *App) closeForm() {
	a.form = nil
	a.formKind = formNone
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind := a.formKind
		a.closeForm()
		cmd := a.submitForm(kind)
		return a, cmd
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

// submitForm turns the answers of a completed form into ledger actions.
func (a *App) submitForm(kind formKind) tea.Cmd {
	now := a.clock()

	var (
		actions []ledger.Action
		info    string
		err     error
	)
	switch kind {
	case formOnboarding:
		var u model.User
		if u, err = a.onboarding.Profile(); err == nil {
			a.applyOnboardingConfig()
			actions = []ledger.Action{ledger.CompleteOnboarding{Profile: u}}
			info = "Welcome, " + u.Name
		}
	case formPayment:
		if actions, err = a.payment.actions(a.state); err == nil {
			info = "Payment recorded"
		}
	case formCalculator:
		err = a.loans.calculate(*a.calculator, a.cfg.General.Precision)
		if err == nil {
			a.activeTab = tabLoans
		}
	case formLoan:
		var l model.Loan
		if l, err = a.newLoan.loan(now); err == nil {
			actions = []ledger.Action{ledger.AddLoan{Loan: l}}
			info = fmt.Sprintf("Added %s, EMI %s", l.Type, a.money(l.Account.MonthlyPayment))
		}
	case formTransaction:
		var tx model.Transaction
		if tx, err = a.tx.transaction(now); err == nil {
			actions = ledger.TransactionActions(a.state, tx)
			info = fmt.Sprintf("Recorded %s of %s", tx.Kind, a.money(tx.Amount))
		}
	case formCategory:
		var c model.BudgetCategory
		if c, err = a.category.category(); err == nil {
			actions = []ledger.Action{ledger.AddBudgetCategory{Category: c}}
			info = "Added category " + c.Name
		}
	case formGoal:
		var g model.SavingsGoal
		if g, err = a.goal.goal(); err == nil {
			actions = []ledger.Action{ledger.AddSavingsGoal{Goal: g}}
			info = "Added goal " + g.Name
		}
	case formContribution:
		var act ledger.Action
		if act, err = a.contrib.action(); err == nil {
			actions = []ledger.Action{act}
			info = "Contribution added"
		}
	}

	if err != nil {
		a.status.Message, a.status.IsError = err.Error(), true
		return nil
	}
	if len(actions) == 0 {
		return nil
	}
	return a.dispatch(info, actions...)
}

// applyOnboardingConfig stores the chosen name and theme (best-effort).
func (a *App) applyOnboardingConfig() {
	a.cfg.General.Name = strings.TrimSpace(a.onboarding.Name)
	if theme.Valid(a.onboarding.Theme) {
		a.cfg.Appearance.Theme = a.onboarding.Theme
		theme.SetActive(a.onboarding.Theme)
	}
	if err := config.Save(a.cfg); err != nil {
		a.log.Warn("saving config after onboarding", zap.Error(err))
	}
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// dispatch applies actions to the ledger in the background.
func (a App) dispatch(info string, actions ...ledger.Action) tea.Cmd {
	st := a.ledger
	return func() tea.Msg {
		s, err := st.DispatchAll(actions...)
		return StateMsg{State: s, Info: info, Err: err}
	}
}

// refreshStatusCmd flags overdue loans once their due date passes.
func (a App) refreshStatusCmd() tea.Cmd {
	now := a.clock()
	if !ledger.StaleLoanStatus(a.state, now) {
		return nil
	}
	return a.dispatch("", ledger.RefreshLoanStatus{Now: now})
}

// ─── View ───────────────────────────────────────────────────────

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.formKind == formOnboarding && a.form != nil {
		return a.viewOverlay(a.form.View())
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fintrack needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

// viewOverlay centers body in an accent-bordered card.
func (a App) viewOverlay(body string) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(body)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Info).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"d l b g x", "Jump to tab"},
			{"← → Tab", "Previous / Next tab"},
			{"j k", "Move through lists"},
		}},
		{"Anywhere", [][2]string{
			{"t", "Record a transaction"},
			{"h", "Hide / show balances"},
			{"r", "Reload from storage"},
			{"Esc", "Close form"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
		{"Loans", [][2]string{
			{"p", "Pay selected loan"},
			{"e", "EMI calculator"},
			{"a", "Add a loan"},
		}},
		{"Budget & Goals", [][2]string{
			{"s", "Spend from category"},
			{"a", "Add category"},
			{"Enter", "Contribute / continue course"},
			{"n", "New savings goal"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return a.viewOverlay(b.String())
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.status)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.form != nil:
		content = "\n" + components.ContentCard("", a.form.View(), min(cw, a.formWidth()+4))
	case a.activeTab == tabDashboard:
		content = a.renderDashboardTab(cw)
	case a.activeTab == tabLoans:
		content = a.renderLoansTab(cw)
	case a.activeTab == tabBudget:
		content = a.renderBudgetTab(cw)
	case a.activeTab == tabGoals:
		content = a.renderGoalsTab(cw)
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the widths RenderTabBar draws.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
