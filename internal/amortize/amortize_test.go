package amortize

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func terms(t *testing.T, principal, rate string, months int) LoanTerms {
	t.Helper()
	return LoanTerms{
		Principal:         dec(t, principal),
		AnnualRatePercent: dec(t, rate),
		TermMonths:        months,
	}
}

func TestCompute_KnownLoans(t *testing.T) {
	tests := []struct {
		name         string
		terms        LoanTerms
		wantMonthly  string
		wantTotal    string
		wantInterest string
	}{
		{
			name:         "short personal loan",
			terms:        terms(t, "500000", "12.5", 28),
			wantMonthly:  "20680",
			wantTotal:    "579038",
			wantInterest: "79038",
		},
		{
			name:         "two year loan",
			terms:        terms(t, "10000", "12", 24),
			wantMonthly:  "471",
			wantTotal:    "11298",
			wantInterest: "1298",
		},
		{
			name:         "total rounds up from .9998",
			terms:        terms(t, "200000", "10.5", 24),
			wantMonthly:  "9275",
			wantTotal:    "222605",
			wantInterest: "22605",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.terms)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if !got.MonthlyPayment.Equal(dec(t, tt.wantMonthly)) {
				t.Errorf("MonthlyPayment = %s, want %s", got.MonthlyPayment, tt.wantMonthly)
			}
			if !got.TotalPayment.Equal(dec(t, tt.wantTotal)) {
				t.Errorf("TotalPayment = %s, want %s", got.TotalPayment, tt.wantTotal)
			}
			if !got.TotalInterest.Equal(dec(t, tt.wantInterest)) {
				t.Errorf("TotalInterest = %s, want %s", got.TotalInterest, tt.wantInterest)
			}
		})
	}
}

func TestCompute_ZeroRate(t *testing.T) {
	got, err := Compute(terms(t, "100000", "0", 10))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !got.MonthlyPayment.Equal(dec(t, "10000")) {
		t.Errorf("MonthlyPayment = %s, want 10000", got.MonthlyPayment)
	}
	if !got.TotalPayment.Equal(dec(t, "100000")) {
		t.Errorf("TotalPayment = %s, want 100000", got.TotalPayment)
	}
	if !got.TotalInterest.IsZero() {
		t.Errorf("TotalInterest = %s, want 0", got.TotalInterest)
	}
}

func TestComputeWithPrecision_Cents(t *testing.T) {
	got, err := ComputeWithPrecision(terms(t, "100000", "5", 360), 2)
	if err != nil {
		t.Fatalf("ComputeWithPrecision() error = %v", err)
	}
	if !got.MonthlyPayment.Equal(dec(t, "536.82")) {
		t.Errorf("MonthlyPayment = %s, want 536.82", got.MonthlyPayment)
	}
	if !got.TotalPayment.Equal(dec(t, "193255.78")) {
		t.Errorf("TotalPayment = %s, want 193255.78", got.TotalPayment)
	}
}

func TestCompute_Properties(t *testing.T) {
	principals := []string{"1000", "50000", "250000.50", "1000000"}
	rates := []string{"0", "0.5", "7.25", "18", "36"}
	months := []int{1, 6, 12, 60, 240}

	for _, p := range principals {
		for _, r := range rates {
			for _, n := range months {
				lt := terms(t, p, r, n)
				got, err := Compute(lt)
				if err != nil {
					t.Fatalf("Compute(%s, %s, %d) error = %v", p, r, n, err)
				}
				if !got.MonthlyPayment.IsPositive() {
					t.Errorf("Compute(%s, %s, %d) monthly = %s, want > 0", p, r, n, got.MonthlyPayment)
				}
				if got.TotalPayment.LessThan(lt.Principal.Round(0)) {
					t.Errorf("Compute(%s, %s, %d) total = %s, want >= principal", p, r, n, got.TotalPayment)
				}
				if got.TotalInterest.IsNegative() || !got.TotalInterest.Equal(got.TotalInterest.Round(0)) {
					t.Errorf("Compute(%s, %s, %d) interest = %s, want a non-negative whole amount", p, r, n, got.TotalInterest)
				}
				if lt.Principal.Equal(lt.Principal.Round(0)) && !got.TotalInterest.Equal(got.TotalPayment.Sub(lt.Principal)) {
					t.Errorf("Compute(%s, %s, %d) interest %s != total %s - principal %s",
						p, r, n, got.TotalInterest, got.TotalPayment, lt.Principal)
				}
			}
		}
	}
}

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		terms LoanTerms
	}{
		{"zero principal", terms(t, "0", "10", 12)},
		{"negative principal", terms(t, "-5", "10", 12)},
		{"zero term", terms(t, "1000", "10", 0)},
		{"negative term", terms(t, "1000", "10", -3)},
		{"negative rate", terms(t, "1000", "-1", 12)},
		{"term over fifty years", terms(t, "1000", "10", MaxTermMonths+1)},
		{"huge term", terms(t, "1000", "10", 1<<30)},
		{"rate over limit", terms(t, "1000", "1000.01", 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.terms)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Compute() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSchedule_EndsAtZero(t *testing.T) {
	lt := terms(t, "100000", "5", 360)
	rows, err := Schedule(lt, mustDate(t, "2025-01-31"), 2)
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if len(rows) != 360 {
		t.Fatalf("len(rows) = %d, want 360", len(rows))
	}

	first := rows[0]
	if !first.Interest.Equal(dec(t, "416.67")) {
		t.Errorf("first interest = %s, want 416.67", first.Interest)
	}
	if !first.Payment.Equal(dec(t, "536.82")) {
		t.Errorf("first payment = %s, want 536.82", first.Payment)
	}

	last := rows[len(rows)-1]
	if !last.Remaining.IsZero() {
		t.Errorf("final remaining = %s, want 0", last.Remaining)
	}

	sum := decimal.Zero
	for _, r := range rows {
		if r.Remaining.IsNegative() {
			t.Fatalf("period %d remaining = %s, want >= 0", r.Period, r.Remaining)
		}
		sum = sum.Add(r.Principal)
	}
	if !sum.Equal(lt.Principal) {
		t.Errorf("principal column sums to %s, want %s", sum, lt.Principal)
	}

	if got := rows[1].DueDate; !got.Equal(mustDate(t, "2025-02-28")) {
		t.Errorf("period 2 due = %s, want 2025-02-28", got.Format("2006-01-02"))
	}
	if got := rows[2].DueDate; !got.Equal(mustDate(t, "2025-03-31")) {
		t.Errorf("period 3 due = %s, want 2025-03-31", got.Format("2006-01-02"))
	}
}

func TestSchedule_ZeroRateRemainder(t *testing.T) {
	rows, err := Schedule(terms(t, "1000", "0", 3), mustDate(t, "2025-06-15"), 0)
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	want := []string{"333", "333", "334"}
	for i, r := range rows {
		if !r.Payment.Equal(dec(t, want[i])) {
			t.Errorf("period %d payment = %s, want %s", r.Period, r.Payment, want[i])
		}
		if !r.Interest.IsZero() {
			t.Errorf("period %d interest = %s, want 0", r.Period, r.Interest)
		}
	}
}

func TestSchedule_InvalidTerms(t *testing.T) {
	if _, err := Schedule(terms(t, "1000", "5", 0), mustDate(t, "2025-01-01"), 2); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Schedule() error = %v, want ErrInvalidInput", err)
	}
}

func TestCompute_Limits(t *testing.T) {
	got, err := Compute(terms(t, "100000", "1000", MaxTermMonths))
	if err != nil {
		t.Fatalf("Compute at limits: %v", err)
	}
	if !got.MonthlyPayment.IsPositive() {
		t.Errorf("monthly = %s, want > 0", got.MonthlyPayment)
	}

	if _, err := Schedule(terms(t, "1000", "10", MaxTermMonths+1), time.Time{}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Schedule over limit: err = %v, want ErrInvalidInput", err)
	}
}

func TestCompute_FractionalPrincipal(t *testing.T) {
	got, err := Compute(terms(t, "1000.4", "0", 1))
	if err != nil {
		t.Fatal(err)
	}
	if !got.MonthlyPayment.Equal(dec(t, "1000")) || !got.TotalPayment.Equal(dec(t, "1000")) {
		t.Errorf("got %+v, want payment and total of 1000", got)
	}
	if !got.TotalInterest.IsZero() {
		t.Errorf("interest = %s, want 0 for an interest-free loan", got.TotalInterest)
	}

	cents, err := ComputeWithPrecision(terms(t, "1000.4", "0", 1), 2)
	if err != nil {
		t.Fatal(err)
	}
	if !cents.TotalPayment.Equal(dec(t, "1000.4")) || !cents.TotalInterest.IsZero() {
		t.Errorf("cents = %+v, want total 1000.40 and no interest", cents)
	}
}

func TestCompute_TinyInstallmentRoundsToZero(t *testing.T) {
	got, err := Compute(terms(t, "1", "0", 3))
	if err != nil {
		t.Fatal(err)
	}
	if !got.MonthlyPayment.IsZero() {
		t.Errorf("monthly = %s, want 0 (0.33 rounds down)", got.MonthlyPayment)
	}
	if !got.TotalPayment.Equal(dec(t, "1")) || !got.TotalInterest.IsZero() {
		t.Errorf("got %+v, want total 1 and no interest", got)
	}

	cents, err := ComputeWithPrecision(terms(t, "1", "0", 3), 2)
	if err != nil {
		t.Fatal(err)
	}
	if !cents.MonthlyPayment.Equal(dec(t, "0.33")) {
		t.Errorf("monthly in cents = %s, want 0.33", cents.MonthlyPayment)
	}
}
