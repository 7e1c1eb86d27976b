package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/amortize"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
)

type formKind int

const (
	formNone formKind = iota
	formOnboarding
	formPayment
	formCalculator
	formLoan
	formTransaction
	formCategory
	formGoal
	formContribution
)

// Professions offered during onboarding.
var Professions = []string{
	"Student", "Software Engineer", "Designer", "Marketing", "Finance",
	"Healthcare", "Education", "Business Owner", "Freelancer", "Other",
}

// FinancialGoals offered during onboarding.
var FinancialGoals = []string{
	"Build Emergency Fund", "Save for Vacation", "Buy a House", "Start Investing",
	"Pay Off Debt", "Retirement Planning", "Start a Business", "Education Fund",
}

var loanTypes = []string{"Personal Loan", "Student Loan", "Home Loan", "Car Loan", "Education Loan", "Credit Card", "Other"}

func validAmount(s string) error {
	_, err := cli.ParseAmount(s)
	return err
}

func validOptionalAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validAmount(s)
}

func validRate(s string) error {
	_, err := parseRate(s)
	return err
}

func validMonths(s string) error {
	_, err := parseMonths(s)
	return err
}

func validDate(s string) error {
	_, err := cli.ParseDate(s)
	return err
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func parseRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a rate", s)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("rate must not be negative")
	}
	return d, nil
}

func parseMonths(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a positive number of months", s)
	}
	if n > amortize.MaxTermMonths {
		return 0, fmt.Errorf("term is limited to %d months", amortize.MaxTermMonths)
	}
	return n, nil
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

// ─── Onboarding ─────────────────────────────────────────────────

// OnboardingValues collects the first-run profile.
type OnboardingValues struct {
	Name       string
	Age        string
	Profession string
	Income     string
	Savings    string
	Goals      []string
	Theme      string
}

// NewOnboardingForm builds the first-run form. Answers are written to v.
func NewOnboardingForm(v *OnboardingValues) *huh.Form {
	if v.Theme == "" {
		v.Theme = theme.Active.Name
	}
	return newForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fintrack").
				Description("Track loans, budgets and savings goals from the terminal.\nA few questions and you're set."),
			huh.NewInput().Title("Full name").Value(&v.Name).Validate(required("name")),
			huh.NewInput().Title("Age").Value(&v.Age).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				n, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil || n < 0 || n > 130 {
					return errors.New("enter an age between 0 and 130")
				}
				return nil
			}),
			huh.NewSelect[string]().Title("Profession").Options(huh.NewOptions(Professions...)...).Value(&v.Profession),
		),
		huh.NewGroup(
			huh.NewInput().Title("Monthly income").Placeholder("65000").Value(&v.Income).Validate(validOptionalAmount),
			huh.NewInput().Title("Current savings").Placeholder("50000").Value(&v.Savings).Validate(validOptionalAmount),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("Financial goals").Options(huh.NewOptions(FinancialGoals...)...).Value(&v.Goals),
			huh.NewSelect[string]().Title("Color theme").Options(huh.NewOptions(theme.Names()...)...).Value(&v.Theme),
		),
	)
}

// Profile converts the answers into a user record.
func (v OnboardingValues) Profile() (model.User, error) {
	u := model.User{
		Name:           strings.TrimSpace(v.Name),
		Profession:     v.Profession,
		FinancialGoals: v.Goals,
	}
	if s := strings.TrimSpace(v.Age); s != "" {
		age, err := strconv.Atoi(s)
		if err != nil {
			return u, fmt.Errorf("age: %w", err)
		}
		u.Age = age
	}
	var err error
	if u.MonthlyIncome, err = optionalAmount(v.Income); err != nil {
		return u, fmt.Errorf("monthly income: %w", err)
	}
	if u.CurrentSavings, err = optionalAmount(v.Savings); err != nil {
		return u, fmt.Errorf("current savings: %w", err)
	}
	return u, nil
}

func optionalAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return cli.ParseAmount(s)
}

// ─── Loans ──────────────────────────────────────────────────────

type paymentValues struct {
	loanID string
	Kind   ledger.PaymentKind
	Amount string
}

func newPaymentForm(v *paymentValues, loan model.Loan, money func(decimal.Decimal) string) *huh.Form {
	v.loanID = loan.ID
	v.Kind = ledger.PayInstallment
	opts := []huh.Option[ledger.PaymentKind]{
		huh.NewOption("Monthly installment ("+money(loan.Account.MonthlyPayment)+")", ledger.PayInstallment),
		huh.NewOption("Extra payment", ledger.PayExtra),
		huh.NewOption("Pay off ("+money(loan.Account.CurrentBalance)+")", ledger.PayOff),
	}
	return newForm(
		huh.NewGroup(
			huh.NewSelect[ledger.PaymentKind]().
				Title(fmt.Sprintf("Pay %s · %s", loan.Type, loan.Bank)).
				Options(opts...).
				Value(&v.Kind),
		),
		huh.NewGroup(
			huh.NewInput().Title("Extra amount").Value(&v.Amount).Validate(validAmount),
		).WithHideFunc(func() bool { return v.Kind != ledger.PayExtra }),
	)
}

func (v paymentValues) actions(s ledger.State) ([]ledger.Action, error) {
	amount := decimal.Zero
	if v.Kind == ledger.PayExtra {
		var err error
		if amount, err = cli.ParseAmount(v.Amount); err != nil {
			return nil, err
		}
	}
	return ledger.PaymentActions(s, v.loanID, v.Kind, amount)
}

type calculatorValues struct {
	Principal string
	Rate      string
	Months    string
}

func newCalculatorForm(v *calculatorValues) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewNote().Title("EMI calculator"),
			huh.NewInput().Title("Loan amount").Placeholder("500000").Value(&v.Principal).Validate(validAmount),
			huh.NewInput().Title("Interest rate (% p.a.)").Placeholder("12.5").Value(&v.Rate).Validate(validRate),
			huh.NewInput().Title("Tenure (months)").Placeholder("28").Value(&v.Months).Validate(validMonths),
		),
	)
}

func (v calculatorValues) terms() (amortize.LoanTerms, error) {
	var (
		t   amortize.LoanTerms
		err error
	)
	if t.Principal, err = cli.ParseAmount(v.Principal); err != nil {
		return t, err
	}
	if t.AnnualRatePercent, err = parseRate(v.Rate); err != nil {
		return t, err
	}
	if t.TermMonths, err = parseMonths(v.Months); err != nil {
		return t, err
	}
	return t, t.Validate()
}

type loanValues struct {
	calculatorValues
	Type     string
	Bank     string
	FirstDue string
}

func newLoanForm(v *loanValues) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Loan type").Options(huh.NewOptions(loanTypes...)...).Value(&v.Type),
			huh.NewInput().Title("Lender").Value(&v.Bank).Validate(required("lender")),
			huh.NewInput().Title("First due date").Placeholder("YYYY-MM-DD, blank for a month from today").
				Value(&v.FirstDue).Validate(validDate),
		),
		huh.NewGroup(
			huh.NewInput().Title("Loan amount").Value(&v.Principal).Validate(validAmount),
			huh.NewInput().Title("Interest rate (% p.a.)").Value(&v.Rate).Validate(validRate),
			huh.NewInput().Title("Tenure (months)").Value(&v.Months).Validate(validMonths),
		),
	)
}

func (v loanValues) loan(now time.Time) (model.Loan, error) {
	terms, err := v.terms()
	if err != nil {
		return model.Loan{}, err
	}
	due, err := cli.ParseDate(v.FirstDue)
	if err != nil {
		return model.Loan{}, err
	}
	if due.IsZero() {
		y, m, d := now.Date()
		due = amortize.AddMonth(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}
	return model.NewLoan(v.Type, strings.TrimSpace(v.Bank), terms, due)
}

// ─── Budget and transactions ────────────────────────────────────

type transactionValues struct {
	Kind        model.TransactionKind
	Amount      string
	Description string
	Category    string
}

// categoryOptions lists the budget categories first, then the suggested
// categories that are not already budgeted.
func categoryOptions(s ledger.State, kind model.TransactionKind) []string {
	var names []string
	suggested := model.IncomeCategories
	if kind == model.Expense {
		for _, c := range s.BudgetCategories {
			names = append(names, c.Name)
		}
		suggested = model.ExpenseCategories
	}
	for _, c := range suggested {
		dup := false
		for _, n := range names {
			if strings.EqualFold(n, c) {
				dup = true
				break
			}
		}
		if !dup {
			names = append(names, c)
		}
	}
	return names
}

func newTransactionForm(v *transactionValues, s ledger.State) *huh.Form {
	if v.Kind == "" {
		v.Kind = model.Expense
	}
	return newForm(
		huh.NewGroup(
			huh.NewSelect[model.TransactionKind]().Title("Type").
				Options(huh.NewOption("Expense", model.Expense), huh.NewOption("Income", model.Income)).
				Value(&v.Kind),
			huh.NewInput().Title("Amount").Value(&v.Amount).Validate(validAmount),
			huh.NewInput().Title("Description").Value(&v.Description).Validate(required("description")),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Category").
				OptionsFunc(func() []huh.Option[string] {
					return huh.NewOptions(categoryOptions(s, v.Kind)...)
				}, &v.Kind).
				Value(&v.Category),
		),
	)
}

func (v transactionValues) transaction(now time.Time) (model.Transaction, error) {
	amount, err := cli.ParseAmount(v.Amount)
	if err != nil {
		return model.Transaction{}, err
	}
	tx := model.Transaction{
		ID:          model.NewID(),
		Kind:        v.Kind,
		Amount:      amount,
		Description: strings.TrimSpace(v.Description),
		Category:    v.Category,
		Date:        now,
	}
	return tx, model.Validate(tx)
}

type categoryValues struct {
	Name      string
	Allocated string
	Icon      string
}

func newCategoryForm(v *categoryValues) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewInput().Title("Category name").Value(&v.Name).Validate(required("name")),
			huh.NewInput().Title("Monthly allocation").Value(&v.Allocated).Validate(validAmount),
			huh.NewInput().Title("Icon (optional)").Value(&v.Icon).CharLimit(4),
		),
	)
}

func (v categoryValues) category() (model.BudgetCategory, error) {
	allocated, err := cli.ParseAmount(v.Allocated)
	if err != nil {
		return model.BudgetCategory{}, err
	}
	c := model.BudgetCategory{
		ID:        model.NewID(),
		Name:      strings.TrimSpace(v.Name),
		Allocated: allocated,
		Icon:      strings.TrimSpace(v.Icon),
	}
	return c, model.Validate(c)
}

// ─── Goals ──────────────────────────────────────────────────────

type goalValues struct {
	Name     string
	Target   string
	Deadline string
}

func newGoalForm(v *goalValues) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewInput().Title("Goal").Placeholder("Emergency Fund").Value(&v.Name).Validate(required("goal name")),
			huh.NewInput().Title("Target amount").Value(&v.Target).Validate(validAmount),
			huh.NewInput().Title("Deadline (optional)").Placeholder("YYYY-MM-DD").Value(&v.Deadline).Validate(validDate),
		),
	)
}

func (v goalValues) goal() (model.SavingsGoal, error) {
	target, err := cli.ParseAmount(v.Target)
	if err != nil {
		return model.SavingsGoal{}, err
	}
	deadline, err := cli.ParseDate(v.Deadline)
	if err != nil {
		return model.SavingsGoal{}, err
	}
	g := model.SavingsGoal{
		ID:       model.NewID(),
		Name:     strings.TrimSpace(v.Name),
		Target:   target,
		Deadline: deadline,
	}
	return g, model.Validate(g)
}

type contributionValues struct {
	goalID string
	Amount string
}

func newContributionForm(v *contributionValues, g model.SavingsGoal) *huh.Form {
	v.goalID = g.ID
	return newForm(
		huh.NewGroup(
			huh.NewInput().Title("Add to " + g.Name).Value(&v.Amount).Validate(validAmount),
		),
	)
}

func (v contributionValues) action() (ledger.Action, error) {
	amount, err := cli.ParseAmount(v.Amount)
	if err != nil {
		return nil, err
	}
	return ledger.ContributeToGoal{GoalID: v.goalID, Amount: amount}, nil
}
