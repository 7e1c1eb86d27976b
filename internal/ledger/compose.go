package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/amortize"
	"github.com/theirongolddev/fintrack/internal/model"
)

// PaymentKind selects how a loan payment is applied.
type PaymentKind string

const (
	// PayInstallment pays the monthly installment and advances the due date.
	PayInstallment PaymentKind = "emi"
	// PayExtra prepays principal without moving the due date.
	PayExtra PaymentKind = "extra"
	// PayOff clears the balance and closes the loan.
	PayOff PaymentKind = "full"
)

// PaymentKinds lists the kinds in menu order.
var PaymentKinds = []PaymentKind{PayInstallment, PayExtra, PayOff}

// ParsePaymentKind accepts "emi", "extra" or "full".
func ParsePaymentKind(s string) (PaymentKind, error) {
	for _, k := range PaymentKinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown payment type %q (want emi, extra or full)", s)
}

// PaymentActions builds the actions for paying loanID. amount is only read
// for PayExtra; installments pay the loan's EMI (or the balance, whichever
// is smaller) and payoffs pay the balance.
func PaymentActions(s State, loanID string, kind PaymentKind, amount decimal.Decimal) ([]Action, error) {
	l, ok := s.Loan(loanID)
	if !ok {
		return nil, fmt.Errorf("loan %s: %w", loanID, ErrNotFound)
	}
	if l.Status == model.LoanPaid {
		return nil, fmt.Errorf("loan %s: %w", loanID, ErrLoanClosed)
	}
	balance := l.Account.CurrentBalance

	switch kind {
	case PayInstallment:
		emi := l.Account.MonthlyPayment
		if !emi.IsPositive() || emi.GreaterThan(balance) {
			emi = balance
		}
		return []Action{MakeLoanPayment{LoanID: loanID, Amount: emi, Scheduled: true}}, nil
	case PayExtra:
		return []Action{MakeLoanPayment{LoanID: loanID, Amount: amount}}, nil
	case PayOff:
		if balance.IsZero() {
			return []Action{MarkLoanPaid{LoanID: loanID}}, nil
		}
		return []Action{
			MakeLoanPayment{LoanID: loanID, Amount: balance},
			MarkLoanPaid{LoanID: loanID},
		}, nil
	}
	return nil, fmt.Errorf("payment type %q: %w", kind, ErrUnknownAction)
}

// TransactionActions records tx. An expense whose category names a budget
// category (case-insensitively) also adds to that category's spending.
func TransactionActions(s State, tx model.Transaction) []Action {
	actions := []Action{AddTransaction{Transaction: tx}}
	if tx.Kind != model.Expense {
		return actions
	}
	for _, c := range s.BudgetCategories {
		if strings.EqualFold(c.Name, tx.Category) {
			c.Spent = c.Spent.Add(tx.Amount)
			actions = append(actions, UpdateBudgetCategory{Category: c})
			break
		}
	}
	return actions
}

// StaleLoanStatus reports whether RefreshLoanStatus at now would change
// any loan.
func StaleLoanStatus(s State, now time.Time) bool {
	for _, l := range s.Loans {
		overdue := amortize.Overdue(l.Account, now)
		if (l.Status == model.LoanActive && overdue) || (l.Status == model.LoanOverdue && !overdue) {
			return true
		}
	}
	return false
}

// CourseStep is how far "continue" moves a course forward.
const CourseStep = 25

// ContinueCourse advances a course by CourseStep percent.
func ContinueCourse(s State, courseID string) (Action, error) {
	for _, c := range s.Courses {
		if c.ID == courseID {
			return UpdateCourseProgress{CourseID: courseID, Progress: c.Progress + CourseStep}, nil
		}
	}
	return nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
}
