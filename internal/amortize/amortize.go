// Package amortize computes fixed-rate, fixed-term loan installments and
// applies payments against outstanding balances. Every function is pure:
// inputs are never mutated and no state is kept between calls.
package amortize

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for non-positive principal or term, negative
// rate, or a non-positive payment amount.
var ErrInvalidInput = errors.New("invalid input")

// WholeUnits is the rounding precision used by Compute.
const WholeUnits int32 = 0

// Upper bounds on loan terms. Larger values are rejected as ErrInvalidInput
// rather than computed.
const (
	MaxTermMonths  = 600  // 50 years
	MaxRatePercent = 1000 // per year
)

// powPrecision bounds the digits carried through (1+r)^n.
const powPrecision int32 = 28

var (
	one          = decimal.NewFromInt(1)
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
	maxRate      = decimal.NewFromInt(MaxRatePercent)
)

// LoanTerms is the immutable input to an amortization.
type LoanTerms struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TermMonths        int
}

// Result holds the installment figures derived from LoanTerms.
type Result struct {
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalPayment   decimal.Decimal `json:"total_payment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
}

// Validate reports whether the terms can be amortized.
func (t LoanTerms) Validate() error {
	switch {
	case !t.Principal.IsPositive():
		return fmt.Errorf("%w: principal must be positive, got %s", ErrInvalidInput, t.Principal)
	case t.TermMonths <= 0:
		return fmt.Errorf("%w: term must be at least one month, got %d", ErrInvalidInput, t.TermMonths)
	case t.TermMonths > MaxTermMonths:
		return fmt.Errorf("%w: term must be at most %d months, got %d", ErrInvalidInput, MaxTermMonths, t.TermMonths)
	case t.AnnualRatePercent.IsNegative():
		return fmt.Errorf("%w: rate must not be negative, got %s", ErrInvalidInput, t.AnnualRatePercent)
	case t.AnnualRatePercent.GreaterThan(maxRate):
		return fmt.Errorf("%w: rate must be at most %d%%, got %s", ErrInvalidInput, MaxRatePercent, t.AnnualRatePercent)
	}
	return nil
}

// MonthlyRate converts the annual percentage into a per-month fraction.
func (t LoanTerms) MonthlyRate() decimal.Decimal {
	return t.AnnualRatePercent.Div(hundred).Div(monthsInYear)
}

// Compute returns the installment figures rounded to whole currency units.
func Compute(terms LoanTerms) (Result, error) {
	return ComputeWithPrecision(terms, WholeUnits)
}

// ComputeWithPrecision is Compute with an explicit number of decimal places.
// Each figure is rounded half-up from its unrounded value. When the
// principal is already expressed in units of the precision,
// TotalInterest == TotalPayment - Principal holds exactly; a finer principal
// keeps a rounded, non-negative interest instead. An installment below half
// a unit rounds to zero.
func ComputeWithPrecision(terms LoanTerms, places int32) (Result, error) {
	if err := terms.Validate(); err != nil {
		return Result{}, err
	}

	payment := rawPayment(terms)
	total := payment.Mul(decimal.NewFromInt(int64(terms.TermMonths)))

	res := Result{
		MonthlyPayment: roundHalfUp(payment, places),
		TotalPayment:   roundHalfUp(total, places),
	}
	res.TotalInterest = decimal.Max(roundHalfUp(total.Sub(terms.Principal), places), decimal.Zero)
	return res, nil
}

// rawPayment is the unrounded installment. Terms must already be valid.
func rawPayment(terms LoanTerms) decimal.Decimal {
	n := decimal.NewFromInt(int64(terms.TermMonths))
	r := terms.MonthlyRate()
	if r.IsZero() {
		return terms.Principal.Div(n)
	}

	f := compound(r, terms.TermMonths)
	return terms.Principal.Mul(r).Mul(f).Div(f.Sub(one))
}

// compound returns (1+r)^n by repeated squaring.
func compound(r decimal.Decimal, n int) decimal.Decimal {
	base := one.Add(r)
	acc := one
	for n > 0 {
		if n&1 == 1 {
			acc = acc.Mul(base).Round(powPrecision)
		}
		base = base.Mul(base).Round(powPrecision)
		n >>= 1
	}
	return acc
}

// roundHalfUp rounds to places. decimal.Round rounds half away from zero,
// which is half-up for the non-negative amounts handled here.
func roundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

func clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}
