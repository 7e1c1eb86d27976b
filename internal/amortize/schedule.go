package amortize

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one row of a repayment schedule.
type Installment struct {
	Period    int             `json:"period"`
	DueDate   time.Time       `json:"due_date"`
	Payment   decimal.Decimal `json:"payment"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Schedule splits every installment of terms into interest and principal.
// Amounts are rounded to places; the final row absorbs the rounding
// remainder so the balance ends at exactly zero. Due dates start at
// firstDue and keep its day of month, clamped to shorter months.
func Schedule(terms LoanTerms, firstDue time.Time, places int32) ([]Installment, error) {
	res, err := ComputeWithPrecision(terms, places)
	if err != nil {
		return nil, err
	}

	r := terms.MonthlyRate()
	remaining := terms.Principal
	rows := make([]Installment, 0, terms.TermMonths)

	for period := 1; period <= terms.TermMonths; period++ {
		interest := roundHalfUp(remaining.Mul(r), places)
		principal := res.MonthlyPayment.Sub(interest)
		if period == terms.TermMonths || principal.GreaterThan(remaining) {
			principal = remaining
		}
		remaining = remaining.Sub(principal)

		due := time.Time{}
		if !firstDue.IsZero() {
			due = AddMonths(firstDue, period-1)
		}

		rows = append(rows, Installment{
			Period:    period,
			DueDate:   due,
			Payment:   principal.Add(interest),
			Principal: principal,
			Interest:  interest,
			Remaining: remaining,
		})
	}
	return rows, nil
}

// AddMonth moves t forward one calendar month, keeping the day of month
// where possible: Jan 31 becomes Feb 28 (or 29). The zero time is returned
// unchanged.
func AddMonth(t time.Time) time.Time {
	return AddMonths(t, 1)
}

// AddMonths is AddMonth applied n times from the same anchor day, so
// Jan 31 plus two months is Mar 31 rather than Mar 28.
func AddMonths(t time.Time, n int) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
