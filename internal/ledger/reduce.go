package ledger

import (
	"errors"
	"fmt"
	"slices"

	"github.com/theirongolddev/fintrack/internal/amortize"
	"github.com/theirongolddev/fintrack/internal/model"
)

var (
	// ErrNotFound is returned when an action names an unknown record.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when adding a record whose ID is taken.
	ErrDuplicate = errors.New("duplicate id")
	// ErrLoanClosed is returned when paying a loan already marked paid.
	ErrLoanClosed = errors.New("loan already paid")
	// ErrOutstandingBalance is returned when closing a loan that still has a balance.
	ErrOutstandingBalance = errors.New("loan has an outstanding balance")
	// ErrUnknownAction is returned for actions Reduce does not handle.
	ErrUnknownAction = errors.New("unknown action")
)

// Reduce applies a to s and returns the resulting state. On error the
// input state is returned unchanged. s itself is never modified.
func Reduce(s State, a Action) (State, error) {
	next, err := reduce(s.Clone(), a)
	if err != nil {
		return s, err
	}
	return next, nil
}

func reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case ToggleBalanceVisibility:
		s.User.ShowBalance = !s.User.ShowBalance

	case AddTransaction:
		if err := model.Validate(a.Transaction); err != nil {
			return s, fmt.Errorf("adding transaction: %w", err)
		}
		s.Transactions = slices.Insert(s.Transactions, 0, a.Transaction)

	case AddBudgetCategory:
		if err := model.Validate(a.Category); err != nil {
			return s, fmt.Errorf("adding budget category: %w", err)
		}
		if indexByID(s.BudgetCategories, a.Category.ID, categoryID) >= 0 {
			return s, fmt.Errorf("budget category %s: %w", a.Category.ID, ErrDuplicate)
		}
		s.BudgetCategories = append(s.BudgetCategories, a.Category)

	case UpdateBudgetCategory:
		if err := model.Validate(a.Category); err != nil {
			return s, fmt.Errorf("updating budget category: %w", err)
		}
		i := indexByID(s.BudgetCategories, a.Category.ID, categoryID)
		if i < 0 {
			return s, fmt.Errorf("budget category %s: %w", a.Category.ID, ErrNotFound)
		}
		s.BudgetCategories[i] = a.Category

	case UpdateCourseProgress:
		i := indexByID(s.Courses, a.CourseID, courseID)
		if i < 0 {
			return s, fmt.Errorf("course %s: %w", a.CourseID, ErrNotFound)
		}
		c := &s.Courses[i]
		c.Progress = min(max(a.Progress, 0), 100)
		if c.Progress == 100 && !c.Completed {
			c.Completed = true
			c.CompletedModules = c.Modules
			s.Stats.CoursesCompleted++
		}

	case SetUserData:
		u := applyPatch(s.User, a.Patch)
		if err := model.Validate(u); err != nil {
			return s, fmt.Errorf("updating user: %w", err)
		}
		s.User = u

	case AddLoan:
		if err := a.Loan.Validate(); err != nil {
			return s, fmt.Errorf("adding loan: %w", err)
		}
		if indexByID(s.Loans, a.Loan.ID, loanID) >= 0 {
			return s, fmt.Errorf("loan %s: %w", a.Loan.ID, ErrDuplicate)
		}
		s.Loans = append(s.Loans, a.Loan)

	case MakeLoanPayment:
		i := indexByID(s.Loans, a.LoanID, loanID)
		if i < 0 {
			return s, fmt.Errorf("loan %s: %w", a.LoanID, ErrNotFound)
		}
		l := &s.Loans[i]
		if l.Status == model.LoanPaid {
			return s, fmt.Errorf("loan %s: %w", a.LoanID, ErrLoanClosed)
		}
		acct, err := amortize.ApplyPayment(l.Account, a.Amount, a.Scheduled)
		if err != nil {
			return s, fmt.Errorf("paying loan %s: %w", a.LoanID, err)
		}
		l.Account = acct

	case MarkLoanPaid:
		i := indexByID(s.Loans, a.LoanID, loanID)
		if i < 0 {
			return s, fmt.Errorf("loan %s: %w", a.LoanID, ErrNotFound)
		}
		l := &s.Loans[i]
		if !l.Account.CurrentBalance.IsZero() {
			return s, fmt.Errorf("loan %s: %w", a.LoanID, ErrOutstandingBalance)
		}
		l.Status = model.LoanPaid
		l.Account.RemainingMonths = 0

	case RefreshLoanStatus:
		for i := range s.Loans {
			l := &s.Loans[i]
			switch {
			case l.Status == model.LoanActive && amortize.Overdue(l.Account, a.Now):
				l.Status = model.LoanOverdue
			case l.Status == model.LoanOverdue && !amortize.Overdue(l.Account, a.Now):
				l.Status = model.LoanActive
			}
		}

	case AddSavingsGoal:
		if err := model.Validate(a.Goal); err != nil {
			return s, fmt.Errorf("adding savings goal: %w", err)
		}
		if indexByID(s.SavingsGoals, a.Goal.ID, goalID) >= 0 {
			return s, fmt.Errorf("savings goal %s: %w", a.Goal.ID, ErrDuplicate)
		}
		s.SavingsGoals = append(s.SavingsGoals, a.Goal)

	case ContributeToGoal:
		if !a.Amount.IsPositive() {
			return s, fmt.Errorf("contribution %s must be positive: %w", a.Amount, amortize.ErrInvalidInput)
		}
		i := indexByID(s.SavingsGoals, a.GoalID, goalID)
		if i < 0 {
			return s, fmt.Errorf("savings goal %s: %w", a.GoalID, ErrNotFound)
		}
		g := &s.SavingsGoals[i]
		g.Current = g.Current.Add(a.Amount)

	case CompleteOnboarding:
		p := a.Profile
		u := s.User
		u.Name = p.Name
		u.Age = p.Age
		u.Profession = p.Profession
		u.MonthlyIncome = p.MonthlyIncome
		u.CurrentSavings = p.CurrentSavings
		u.FinancialGoals = slices.Clone(p.FinancialGoals)
		if u.TotalBalance.IsZero() {
			u.TotalBalance = p.CurrentSavings
		}
		if err := model.Validate(u); err != nil {
			return s, fmt.Errorf("completing onboarding: %w", err)
		}
		s.User = u
		s.OnboardingComplete = true

	default:
		return s, fmt.Errorf("%T: %w", a, ErrUnknownAction)
	}
	return s, nil
}

func applyPatch(u model.User, p UserPatch) model.User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Profession != nil {
		u.Profession = *p.Profession
	}
	if p.TotalBalance != nil {
		u.TotalBalance = *p.TotalBalance
	}
	if p.MonthlyIncome != nil {
		u.MonthlyIncome = *p.MonthlyIncome
	}
	if p.MonthlyExpenses != nil {
		u.MonthlyExpenses = *p.MonthlyExpenses
	}
	if p.CurrentSavings != nil {
		u.CurrentSavings = *p.CurrentSavings
	}
	if p.FinancialGoals != nil {
		u.FinancialGoals = slices.Clone(p.FinancialGoals)
	}
	return u
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	return slices.IndexFunc(items, func(v T) bool { return idOf(v) == id })
}

func loanID(l model.Loan) string               { return l.ID }
func goalID(g model.SavingsGoal) string        { return g.ID }
func courseID(c model.Course) string           { return c.ID }
func categoryID(c model.BudgetCategory) string { return c.ID }
