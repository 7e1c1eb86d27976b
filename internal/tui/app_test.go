package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/store"
)

func testApp(t *testing.T) App {
	t.Helper()
	seed := ledger.Sample()
	seed.OnboardingComplete = true

	st, err := ledger.Open(store.NewMemory(), zap.NewNop(), seed)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.BackendMemory

	a := NewApp(st, cfg, zap.NewNop())
	a.clock = func() time.Time { return time.Date(2024, 7, 20, 9, 0, 0, 0, time.UTC) }
	a.recompute()
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewAppOpensOnboarding(t *testing.T) {
	st, err := ledger.Open(store.NewMemory(), zap.NewNop(), ledger.Sample())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	a := NewApp(st, config.DefaultConfig(), nil)
	if a.form == nil || a.formKind != formOnboarding {
		t.Fatalf("formKind = %v, want onboarding form open", a.formKind)
	}

	a = testApp(t)
	if a.form != nil {
		t.Error("onboarded user should land on the dashboard")
	}
}

func TestTabKeys(t *testing.T) {
	a := testApp(t)
	for _, tc := range []struct {
		key  rune
		want int
	}{
		{'l', tabLoans},
		{'b', tabBudget},
		{'g', tabGoals},
		{'x', tabSettings},
		{'d', tabDashboard},
	} {
		m, _ := a.Update(keyRune(tc.key))
		a = m.(App)
		if a.activeTab != tc.want {
			t.Errorf("key %q: activeTab = %d, want %d", tc.key, a.activeTab, tc.want)
		}
	}

	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.(App).activeTab; got != tabSettings {
		t.Errorf("left from dashboard = %d, want settings", got)
	}
}

func TestToggleBalanceRoundTrip(t *testing.T) {
	a := testApp(t)
	m, cmd := a.Update(keyRune('h'))
	if cmd == nil {
		t.Fatal("expected a dispatch command")
	}
	msg, ok := cmd().(StateMsg)
	if !ok {
		t.Fatalf("command returned %T, want StateMsg", cmd())
	}
	if msg.Err != nil {
		t.Fatalf("dispatch: %v", msg.Err)
	}

	m, _ = m.Update(msg)
	a = m.(App)
	if a.state.User.ShowBalance {
		t.Error("balance still visible after toggle")
	}
	if got := a.balance(decimal.NewFromInt(245680)); strings.Contains(got, "245") {
		t.Errorf("hidden balance rendered as %q", got)
	}
}

func TestStateMsgErrorSetsStatus(t *testing.T) {
	a := testApp(t)
	m, _ := a.Update(StateMsg{Err: ledger.ErrNotFound})
	a = m.(App)
	if !a.status.IsError || a.status.Message == "" {
		t.Errorf("status = %+v, want error message", a.status)
	}
}

func TestPaymentValuesActions(t *testing.T) {
	s := ledger.Sample()

	v := paymentValues{loanID: "1", Kind: ledger.PayExtra, Amount: "5,000"}
	acts, err := v.actions(s)
	if err != nil {
		t.Fatalf("actions: %v", err)
	}
	if len(acts) != 1 {
		t.Fatalf("got %d actions, want 1", len(acts))
	}
	pay, ok := acts[0].(ledger.MakeLoanPayment)
	if !ok || !pay.Amount.Equal(decimal.NewFromInt(5000)) || pay.Scheduled {
		t.Errorf("action = %#v, want unscheduled payment of 5000", acts[0])
	}

	v = paymentValues{loanID: "1", Kind: ledger.PayExtra, Amount: "abc"}
	if _, err := v.actions(s); err == nil {
		t.Error("expected error for bad amount")
	}

	v = paymentValues{loanID: "1", Kind: ledger.PayOff}
	acts, err = v.actions(s)
	if err != nil {
		t.Fatalf("payoff actions: %v", err)
	}
	if len(acts) != 2 {
		t.Errorf("payoff produced %d actions, want 2", len(acts))
	}
}

func TestCalculatorSubmitShowsResult(t *testing.T) {
	a := testApp(t)
	a.calculator = &calculatorValues{Principal: "500000", Rate: "12.5", Months: "28"}
	if cmd := a.submitForm(formCalculator); cmd != nil {
		t.Error("calculator should not dispatch")
	}
	if a.activeTab != tabLoans || a.loans.calc == nil {
		t.Fatalf("calculator result not shown (tab=%d)", a.activeTab)
	}
	if got := a.loans.calc.result.MonthlyPayment; !got.Equal(decimal.NewFromInt(20680)) {
		t.Errorf("EMI = %s, want 20680", got)
	}
	if len(a.loans.calc.schedule) != 28 {
		t.Errorf("schedule rows = %d, want 28", len(a.loans.calc.schedule))
	}
}

func TestLoanPaymentFormOpensForActiveLoan(t *testing.T) {
	a := testApp(t)
	a.activeTab = tabLoans
	m, _ := a.Update(keyRune('p'))
	a = m.(App)
	if a.formKind != formPayment || a.payment == nil || a.payment.loanID != "1" {
		t.Fatalf("payment form not opened for loan 1 (kind=%v)", a.formKind)
	}

	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(App).form != nil {
		t.Error("esc should close the form")
	}
}

func TestViewRendersTabs(t *testing.T) {
	a := testApp(t)
	cases := map[int]string{
		tabDashboard: "Recent Transactions",
		tabLoans:     "HDFC Bank",
		tabBudget:    "Food & Dining",
		tabGoals:     "Emergency Fund",
		tabSettings:  "Storage backend",
	}
	for tab, want := range cases {
		a.activeTab = tab
		if out := a.View(); !strings.Contains(out, want) {
			t.Errorf("tab %d view missing %q", tab, want)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := testApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if out := m.(App).View(); !strings.Contains(out, "too narrow") {
		t.Error("narrow terminal should show the width warning")
	}
}

func TestApplySetting(t *testing.T) {
	cfg := config.DefaultConfig()

	got, err := applySetting(cfg, settingsFieldPrecision, "2")
	if err != nil || got.General.Precision != 2 {
		t.Errorf("precision: got %d, err %v", got.General.Precision, err)
	}
	if _, err := applySetting(cfg, settingsFieldPrecision, "9"); err == nil {
		t.Error("precision 9 should fail validation")
	}
	if _, err := applySetting(cfg, settingsFieldTheme, "nope"); err == nil {
		t.Error("unknown theme should fail")
	}
	if _, err := applySetting(cfg, settingsFieldLogLevel, "loud"); err == nil {
		t.Error("unknown log level should fail")
	}

	got, err = applySetting(cfg, settingsFieldLimit, "40,000")
	if err != nil || got.Budget.MonthlyLimit == nil || *got.Budget.MonthlyLimit != 40000 {
		t.Errorf("limit: got %v, err %v", got.Budget.MonthlyLimit, err)
	}
	got, err = applySetting(got, settingsFieldLimit, "")
	if err != nil || got.Budget.MonthlyLimit != nil {
		t.Errorf("empty limit should clear, got %v", got.Budget.MonthlyLimit)
	}
}

func TestBudgetTabOverspent(t *testing.T) {
	a := testApp(t)
	food := a.state.BudgetCategories[0]
	food.Spent = decimal.NewFromInt(12000)
	s, err := a.ledger.Dispatch(ledger.UpdateBudgetCategory{Category: food})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	m, _ := a.Update(StateMsg{State: s})
	a = m.(App)

	if len(a.summary.Budget.OverBudget) != 2 || !a.summary.Budget.Remaining.IsNegative() {
		t.Fatalf("budget summary = %+v, want two overspent categories", a.summary.Budget)
	}
	a.activeTab = tabBudget
	out := a.View()
	for _, want := range []string{"Remaining", "-₹2,400", "₹12,000 / ₹8,000", "Transportation"} {
		if !strings.Contains(out, want) {
			t.Errorf("budget view missing %q", want)
		}
	}
}

func TestParseMonthsLimit(t *testing.T) {
	if _, err := parseMonths("600"); err != nil {
		t.Errorf("parseMonths(600) = %v", err)
	}
	for _, in := range []string{"601", "1099511627776", "0", "x"} {
		if _, err := parseMonths(in); err == nil {
			t.Errorf("parseMonths(%q) accepted", in)
		}
	}
}
