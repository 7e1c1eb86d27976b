// Package model defines the personal-finance records tracked by fintrack.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/amortize"
)

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanActive  LoanStatus = "active"
	LoanPaid    LoanStatus = "paid"
	LoanOverdue LoanStatus = "overdue"
)

// Loan is a tracked debt together with its repayment account.
type Loan struct {
	ID      string           `json:"id" validate:"required"`
	Type    string           `json:"type" validate:"required,max=64"`
	Bank    string           `json:"bank" validate:"max=64"`
	Status  LoanStatus       `json:"status" validate:"oneof=active paid overdue"`
	Account amortize.Account `json:"account"`
}

// Validate checks the record tags and the repayment account.
func (l Loan) Validate() error {
	if err := Validate(l); err != nil {
		return err
	}
	if err := l.Account.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

// NewLoan opens an active loan for terms with the installment computed from
// them. The first installment falls due on firstDue.
func NewLoan(kind, bank string, terms amortize.LoanTerms, firstDue time.Time) (Loan, error) {
	res, err := amortize.Compute(terms)
	if err != nil {
		return Loan{}, err
	}

	l := Loan{
		ID:     NewID(),
		Type:   kind,
		Bank:   bank,
		Status: LoanActive,
		Account: amortize.Account{
			OriginalAmount:    terms.Principal,
			CurrentBalance:    terms.Principal,
			MonthlyPayment:    res.MonthlyPayment,
			AnnualRatePercent: terms.AnnualRatePercent,
			RemainingMonths:   terms.TermMonths,
			NextDueDate:       firstDue,
		},
	}
	return l, l.Validate()
}

// TransactionKind separates money in from money out.
type TransactionKind string

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

// Suggested categories offered when recording a transaction.
var (
	IncomeCategories  = []string{"Salary", "Freelance", "Business", "Investment", "Other"}
	ExpenseCategories = []string{"Food", "Transport", "Entertainment", "Shopping", "Bills", "Health", "Other"}
)

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          string          `json:"id" validate:"required"`
	Kind        TransactionKind `json:"type" validate:"oneof=income expense"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"required,max=200"`
	Category    string          `json:"category" validate:"required,max=64"`
	Date        time.Time       `json:"date" validate:"required"`
}

// BudgetCategory is a monthly spending envelope.
type BudgetCategory struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required,max=64"`
	Allocated decimal.Decimal `json:"allocated" validate:"gt=0"`
	Spent     decimal.Decimal `json:"spent" validate:"gte=0"`
	Icon      string          `json:"icon,omitempty"`
}

// SavingsGoal tracks progress toward a target amount.
type SavingsGoal struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required,max=64"`
	Target   decimal.Decimal `json:"target" validate:"gt=0"`
	Current  decimal.Decimal `json:"current" validate:"gte=0"`
	Deadline time.Time       `json:"deadline"`
}

// Course is a financial-education course and the user's progress in it.
type Course struct {
	ID               string `json:"id" validate:"required"`
	Title            string `json:"title" validate:"required"`
	Progress         int    `json:"progress" validate:"gte=0,lte=100"`
	Completed        bool   `json:"completed"`
	Modules          int    `json:"modules" validate:"gte=0"`
	CompletedModules int    `json:"completed_modules" validate:"gte=0,ltefield=Modules"`
}

// User holds the profile collected during onboarding and the headline
// balances shown on the dashboard.
type User struct {
	Name            string          `json:"name"`
	Age             int             `json:"age,omitempty" validate:"gte=0,lte=130"`
	Profession      string          `json:"profession,omitempty"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	MonthlyIncome   decimal.Decimal `json:"monthly_income" validate:"gte=0"`
	MonthlyExpenses decimal.Decimal `json:"monthly_expenses" validate:"gte=0"`
	CurrentSavings  decimal.Decimal `json:"current_savings" validate:"gte=0"`
	FinancialGoals  []string        `json:"financial_goals,omitempty"`
	ShowBalance     bool            `json:"show_balance"`
}

// Stats are the learning counters shown alongside courses.
type Stats struct {
	CoursesCompleted int     `json:"courses_completed"`
	TotalHours       float64 `json:"total_hours"`
	StreakDays       int     `json:"streak_days"`
	Points           int     `json:"points"`
}
