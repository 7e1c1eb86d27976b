// Package ledger holds the application state and the transitions allowed
// on it. State changes only through Reduce, which never mutates its input.
package ledger

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/amortize"
	"github.com/theirongolddev/fintrack/internal/model"
)

// State is everything fintrack tracks for one user.
type State struct {
	User               model.User             `json:"user"`
	Transactions       []model.Transaction    `json:"transactions"`
	BudgetCategories   []model.BudgetCategory `json:"budget_categories"`
	Loans              []model.Loan           `json:"loans"`
	SavingsGoals       []model.SavingsGoal    `json:"savings_goals"`
	Courses            []model.Course         `json:"courses"`
	Achievements       []string               `json:"achievements"`
	Stats              model.Stats            `json:"stats"`
	OnboardingComplete bool                   `json:"onboarding_complete"`
}

// Clone returns a copy of s that shares no slices with it.
func (s State) Clone() State {
	out := s
	out.User.FinancialGoals = slices.Clone(s.User.FinancialGoals)
	out.Transactions = slices.Clone(s.Transactions)
	out.BudgetCategories = slices.Clone(s.BudgetCategories)
	out.Loans = slices.Clone(s.Loans)
	out.SavingsGoals = slices.Clone(s.SavingsGoals)
	out.Courses = slices.Clone(s.Courses)
	out.Achievements = slices.Clone(s.Achievements)
	return out
}

// Loan returns the loan with the given ID.
func (s State) Loan(id string) (model.Loan, bool) {
	i := slices.IndexFunc(s.Loans, func(l model.Loan) bool { return l.ID == id })
	if i < 0 {
		return model.Loan{}, false
	}
	return s.Loans[i], true
}

// Empty returns a blank state for a user who has not onboarded yet.
func Empty() State {
	return State{User: model.User{ShowBalance: true}}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// Sample returns the demo state shown before any data has been saved.
func Sample() State {
	return State{
		User: model.User{
			Name:            "Arjun",
			TotalBalance:    money(245680),
			MonthlyIncome:   money(65000),
			MonthlyExpenses: money(18340),
			ShowBalance:     true,
		},
		Transactions: []model.Transaction{
			{ID: "1", Kind: model.Expense, Amount: money(425), Description: "Food Delivery", Category: "Food", Date: date(2024, 1, 15)},
			{ID: "2", Kind: model.Income, Amount: money(12000), Description: "Freelance Payment", Category: "Freelance", Date: date(2024, 1, 14)},
			{ID: "3", Kind: model.Expense, Amount: money(180), Description: "Uber Ride", Category: "Transport", Date: date(2024, 1, 13)},
			{ID: "4", Kind: model.Expense, Amount: money(799), Description: "Netflix Subscription", Category: "Entertainment", Date: date(2024, 1, 12)},
		},
		BudgetCategories: []model.BudgetCategory{
			{ID: "1", Name: "Food & Dining", Allocated: money(8000), Spent: money(6500), Icon: "🍽"},
			{ID: "2", Name: "Transportation", Allocated: money(3000), Spent: money(3200), Icon: "🚗"},
			{ID: "3", Name: "Entertainment", Allocated: money(2000), Spent: money(1800), Icon: "🎬"},
			{ID: "4", Name: "Shopping", Allocated: money(5000), Spent: money(4200), Icon: "🛍"},
			{ID: "5", Name: "Bills & Utilities", Allocated: money(4000), Spent: money(3800), Icon: "💡"},
			{ID: "6", Name: "Health & Fitness", Allocated: money(2500), Spent: money(1900), Icon: "⚕"},
		},
		Loans: []model.Loan{
			{
				ID: "1", Type: "Personal Loan", Bank: "HDFC Bank", Status: model.LoanActive,
				Account: amortize.Account{
					OriginalAmount:    money(200000),
					CurrentBalance:    money(145000),
					MonthlyPayment:    money(12500),
					AnnualRatePercent: decimal.RequireFromString("10.5"),
					RemainingMonths:   14,
					NextDueDate:       date(2024, 7, 25),
				},
			},
			{
				ID: "2", Type: "Student Loan", Bank: "SBI", Status: model.LoanActive,
				Account: amortize.Account{
					OriginalAmount:    money(500000),
					CurrentBalance:    money(380000),
					MonthlyPayment:    money(8200),
					AnnualRatePercent: decimal.RequireFromString("8.5"),
					RemainingMonths:   56,
					NextDueDate:       date(2024, 7, 28),
				},
			},
		},
		SavingsGoals: []model.SavingsGoal{
			{ID: "1", Name: "Emergency Fund", Target: money(50000), Current: money(34000)},
			{ID: "2", Name: "Vacation", Target: money(25000), Current: money(15000)},
			{ID: "3", Name: "Laptop", Target: money(80000), Current: money(45000)},
		},
		Courses: []model.Course{
			{ID: "1", Title: "Budgeting Basics", Progress: 75, Modules: 6, CompletedModules: 4},
			{ID: "2", Title: "Investment Fundamentals", Progress: 30, Modules: 8, CompletedModules: 2},
			{ID: "3", Title: "Credit Score Mastery", Progress: 100, Completed: true, Modules: 4, CompletedModules: 4},
		},
		Achievements: []string{"first-course", "quiz-master", "budgeting-pro", "credit-expert"},
		Stats: model.Stats{
			CoursesCompleted: 3,
			TotalHours:       12.5,
			StreakDays:       7,
			Points:           2450,
		},
	}
}
