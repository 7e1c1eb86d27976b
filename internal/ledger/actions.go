package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
)

// Action is a named state transition. The set of actions is closed; only
// the types in this file implement it.
type Action interface {
	// keys lists the storage keys the action may change.
	keys() []string
}

// ToggleBalanceVisibility flips whether balances are shown or masked.
type ToggleBalanceVisibility struct{}

// AddTransaction records a transaction at the head of the list. Budgets
// and user totals are left alone.
type AddTransaction struct {
	Transaction model.Transaction
}

// AddBudgetCategory appends a new category.
type AddBudgetCategory struct {
	Category model.BudgetCategory
}

// UpdateBudgetCategory replaces the category with the same ID.
type UpdateBudgetCategory struct {
	Category model.BudgetCategory
}

// UpdateCourseProgress sets a course's progress, clamped to [0,100].
type UpdateCourseProgress struct {
	CourseID string
	Progress int
}

// UserPatch lists the profile fields to overwrite; nil fields are kept.
type UserPatch struct {
	Name            *string
	Age             *int
	Profession      *string
	TotalBalance    *decimal.Decimal
	MonthlyIncome   *decimal.Decimal
	MonthlyExpenses *decimal.Decimal
	CurrentSavings  *decimal.Decimal
	FinancialGoals  []string
}

// SetUserData merges a patch into the user profile.
type SetUserData struct {
	Patch UserPatch
}

// AddLoan starts tracking a loan.
type AddLoan struct {
	Loan model.Loan
}

// MakeLoanPayment applies a payment to a loan's balance. Scheduled
// payments also advance the due date by one month.
type MakeLoanPayment struct {
	LoanID    string
	Amount    decimal.Decimal
	Scheduled bool
}

// MarkLoanPaid closes a loan whose balance has reached zero.
type MarkLoanPaid struct {
	LoanID string
}

// RefreshLoanStatus flags active loans past their due date as overdue and
// clears the flag once the due date has moved on.
type RefreshLoanStatus struct {
	Now time.Time
}

// AddSavingsGoal starts tracking a savings goal.
type AddSavingsGoal struct {
	Goal model.SavingsGoal
}

// ContributeToGoal adds money to a savings goal.
type ContributeToGoal struct {
	GoalID string
	Amount decimal.Decimal
}

// CompleteOnboarding stores the profile collected on first run and marks
// onboarding as done.
type CompleteOnboarding struct {
	Profile model.User
}

func (ToggleBalanceVisibility) keys() []string { return []string{store.KeyUser} }
func (AddTransaction) keys() []string          { return []string{store.KeyTransactions} }
func (AddBudgetCategory) keys() []string       { return []string{store.KeyBudgetCategories} }
func (UpdateBudgetCategory) keys() []string    { return []string{store.KeyBudgetCategories} }
func (UpdateCourseProgress) keys() []string    { return []string{store.KeyCourses, store.KeyUserStats} }
func (SetUserData) keys() []string             { return []string{store.KeyUser} }
func (AddLoan) keys() []string                 { return []string{store.KeyLoans} }
func (MakeLoanPayment) keys() []string         { return []string{store.KeyLoans} }
func (MarkLoanPaid) keys() []string            { return []string{store.KeyLoans} }
func (RefreshLoanStatus) keys() []string       { return []string{store.KeyLoans} }
func (AddSavingsGoal) keys() []string          { return []string{store.KeySavingsGoals} }
func (ContributeToGoal) keys() []string        { return []string{store.KeySavingsGoals} }
func (CompleteOnboarding) keys() []string {
	return []string{store.KeyUser, store.KeyOnboardingComplete}
}
