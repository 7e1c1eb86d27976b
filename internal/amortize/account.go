package amortize

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account is the outstanding state of a single loan. It changes only through
// ApplyPayment.
type Account struct {
	OriginalAmount    decimal.Decimal `json:"original_amount"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	RemainingMonths   int             `json:"remaining_months"`
	NextDueDate       time.Time       `json:"next_due_date"`
}

// Validate checks the account invariants.
func (a Account) Validate() error {
	switch {
	case !a.OriginalAmount.IsPositive():
		return fmt.Errorf("%w: original amount must be positive", ErrInvalidInput)
	case a.CurrentBalance.IsNegative():
		return fmt.Errorf("%w: balance must not be negative", ErrInvalidInput)
	case a.CurrentBalance.GreaterThan(a.OriginalAmount):
		return fmt.Errorf("%w: balance %s exceeds original amount %s",
			ErrInvalidInput, a.CurrentBalance, a.OriginalAmount)
	case a.MonthlyPayment.IsNegative():
		return fmt.Errorf("%w: monthly payment must not be negative", ErrInvalidInput)
	case a.AnnualRatePercent.IsNegative():
		return fmt.Errorf("%w: rate must not be negative", ErrInvalidInput)
	case a.RemainingMonths < 0:
		return fmt.Errorf("%w: remaining months must not be negative", ErrInvalidInput)
	}
	return nil
}

// ApplyPayment returns a copy of acct with amount taken off the balance.
// Overpayment is absorbed: the balance floors at zero and no error is
// raised. A scheduled installment also moves the due date forward one
// calendar month and counts down RemainingMonths. Reaching a zero balance
// does not close the loan; that decision belongs to the caller.
func ApplyPayment(acct Account, amount decimal.Decimal, scheduled bool) (Account, error) {
	if !amount.IsPositive() {
		return acct, fmt.Errorf("%w: payment amount must be positive, got %s", ErrInvalidInput, amount)
	}

	next := acct
	next.CurrentBalance = decimal.Max(decimal.Zero, acct.CurrentBalance.Sub(amount))

	if scheduled {
		next.NextDueDate = AddMonth(acct.NextDueDate)
		if next.RemainingMonths > 0 {
			next.RemainingMonths--
		}
	}
	return next, nil
}

// Progress returns the repaid share of the original amount as a percentage
// in [0, 100].
func Progress(acct Account) decimal.Decimal {
	if !acct.OriginalAmount.IsPositive() {
		return decimal.Zero
	}
	paid := acct.OriginalAmount.Sub(acct.CurrentBalance)
	return clamp(paid.Div(acct.OriginalAmount).Mul(hundred), decimal.Zero, hundred)
}

// InterestRemaining estimates the interest still owed if every remaining
// installment is paid as scheduled.
func InterestRemaining(acct Account) decimal.Decimal {
	owed := acct.MonthlyPayment.Mul(decimal.NewFromInt(int64(acct.RemainingMonths)))
	return decimal.Max(decimal.Zero, owed.Sub(acct.CurrentBalance))
}

// DueSoon reports whether the next installment falls due within window of
// now. Past-due installments count as due soon.
func DueSoon(acct Account, now time.Time, window time.Duration) bool {
	if acct.NextDueDate.IsZero() || acct.CurrentBalance.IsZero() {
		return false
	}
	return !acct.NextDueDate.After(now.Add(window))
}

// Overdue reports whether the due date has passed with a balance still owed.
func Overdue(acct Account, now time.Time) bool {
	if acct.NextDueDate.IsZero() || acct.CurrentBalance.IsZero() {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return acct.NextDueDate.Before(today)
}
