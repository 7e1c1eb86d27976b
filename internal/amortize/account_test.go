package amortize

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func sampleAccount(t *testing.T) Account {
	t.Helper()
	return Account{
		OriginalAmount:    dec(t, "50000"),
		CurrentBalance:    dec(t, "35000"),
		MonthlyPayment:    dec(t, "3500"),
		AnnualRatePercent: dec(t, "18"),
		RemainingMonths:   12,
		NextDueDate:       mustDate(t, "2024-07-30"),
	}
}

func TestApplyPayment_Overpayment(t *testing.T) {
	acct := sampleAccount(t)

	got, err := ApplyPayment(acct, dec(t, "50000"), false)
	if err != nil {
		t.Fatalf("ApplyPayment() error = %v", err)
	}
	if !got.CurrentBalance.IsZero() {
		t.Errorf("CurrentBalance = %s, want 0", got.CurrentBalance)
	}
	if !got.NextDueDate.Equal(acct.NextDueDate) {
		t.Errorf("NextDueDate moved on an unscheduled payment: %s", got.NextDueDate)
	}
	if got.RemainingMonths != acct.RemainingMonths {
		t.Errorf("RemainingMonths = %d, want %d", got.RemainingMonths, acct.RemainingMonths)
	}
}

func TestApplyPayment_DoesNotMutateInput(t *testing.T) {
	acct := sampleAccount(t)
	before := acct

	if _, err := ApplyPayment(acct, dec(t, "3500"), true); err != nil {
		t.Fatalf("ApplyPayment() error = %v", err)
	}
	if !acct.CurrentBalance.Equal(before.CurrentBalance) || !acct.NextDueDate.Equal(before.NextDueDate) ||
		acct.RemainingMonths != before.RemainingMonths {
		t.Fatal("ApplyPayment mutated its input")
	}
}

func TestApplyPayment_ScheduledAdvancesDueDate(t *testing.T) {
	acct := sampleAccount(t)

	got, err := ApplyPayment(acct, dec(t, "3500"), true)
	if err != nil {
		t.Fatalf("ApplyPayment() error = %v", err)
	}
	if !got.CurrentBalance.Equal(dec(t, "31500")) {
		t.Errorf("CurrentBalance = %s, want 31500", got.CurrentBalance)
	}
	if want := mustDate(t, "2024-08-30"); !got.NextDueDate.Equal(want) {
		t.Errorf("NextDueDate = %s, want %s", got.NextDueDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
	if got.RemainingMonths != 11 {
		t.Errorf("RemainingMonths = %d, want 11", got.RemainingMonths)
	}
}

func TestApplyPayment_RemainingMonthsFloorsAtZero(t *testing.T) {
	acct := sampleAccount(t)
	acct.RemainingMonths = 0

	got, err := ApplyPayment(acct, dec(t, "100"), true)
	if err != nil {
		t.Fatalf("ApplyPayment() error = %v", err)
	}
	if got.RemainingMonths != 0 {
		t.Errorf("RemainingMonths = %d, want 0", got.RemainingMonths)
	}
}

func TestApplyPayment_BalanceNeverNegative(t *testing.T) {
	acct := sampleAccount(t)
	for _, amt := range []string{"0.01", "1", "34999.99", "35000", "35000.01", "1000000"} {
		got, err := ApplyPayment(acct, dec(t, amt), false)
		if err != nil {
			t.Fatalf("ApplyPayment(%s) error = %v", amt, err)
		}
		if got.CurrentBalance.IsNegative() {
			t.Errorf("ApplyPayment(%s) balance = %s, want >= 0", amt, got.CurrentBalance)
		}
		if dec(t, amt).GreaterThanOrEqual(acct.CurrentBalance) && !got.CurrentBalance.IsZero() {
			t.Errorf("ApplyPayment(%s) balance = %s, want 0", amt, got.CurrentBalance)
		}
	}
}

func TestApplyPayment_RejectsNonPositive(t *testing.T) {
	acct := sampleAccount(t)
	for _, amt := range []string{"0", "-10"} {
		got, err := ApplyPayment(acct, dec(t, amt), true)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ApplyPayment(%s) error = %v, want ErrInvalidInput", amt, err)
		}
		if !got.CurrentBalance.Equal(acct.CurrentBalance) {
			t.Errorf("ApplyPayment(%s) changed balance to %s", amt, got.CurrentBalance)
		}
	}
}

func TestAddMonth_ClampsToMonthLength(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-01-31", "2024-02-29"},
		{"2025-01-31", "2025-02-28"},
		{"2024-03-31", "2024-04-30"},
		{"2024-12-15", "2025-01-15"},
		{"2024-07-25", "2024-08-25"},
	}
	for _, tt := range tests {
		got := AddMonth(mustDate(t, tt.in))
		if want := mustDate(t, tt.want); !got.Equal(want) {
			t.Errorf("AddMonth(%s) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
	}

	if got := AddMonth(time.Time{}); !got.IsZero() {
		t.Errorf("AddMonth(zero) = %s, want zero time", got)
	}
}

func TestProgress(t *testing.T) {
	acct := sampleAccount(t)
	if got := Progress(acct); !got.Equal(dec(t, "30")) {
		t.Errorf("Progress = %s, want 30", got)
	}

	// Decreasing the balance never lowers progress.
	prev := decimal.Zero
	for _, bal := range []string{"60000", "50000", "35000", "10000", "0", "-5"} {
		acct.CurrentBalance = dec(t, bal)
		got := Progress(acct)
		if got.LessThan(decimal.Zero) || got.GreaterThan(dec(t, "100")) {
			t.Errorf("Progress(balance=%s) = %s, outside [0,100]", bal, got)
		}
		if got.LessThan(prev) {
			t.Errorf("Progress(balance=%s) = %s dropped below %s", bal, got, prev)
		}
		prev = got
	}

	acct.OriginalAmount = decimal.Zero
	if got := Progress(acct); !got.IsZero() {
		t.Errorf("Progress with zero original = %s, want 0", got)
	}
}

func TestInterestRemaining(t *testing.T) {
	acct := sampleAccount(t)
	// 3500 * 12 - 35000
	if got := InterestRemaining(acct); !got.Equal(dec(t, "7000")) {
		t.Errorf("InterestRemaining = %s, want 7000", got)
	}

	acct.RemainingMonths = 1
	if got := InterestRemaining(acct); !got.IsZero() {
		t.Errorf("InterestRemaining = %s, want 0", got)
	}
}

func TestDueSoonAndOverdue(t *testing.T) {
	acct := sampleAccount(t)
	week := 7 * 24 * time.Hour

	if !DueSoon(acct, mustDate(t, "2024-07-25"), week) {
		t.Error("DueSoon 5 days out = false, want true")
	}
	if DueSoon(acct, mustDate(t, "2024-07-01"), week) {
		t.Error("DueSoon 29 days out = true, want false")
	}
	if Overdue(acct, mustDate(t, "2024-07-30")) {
		t.Error("Overdue on the due date = true, want false")
	}
	if !Overdue(acct, mustDate(t, "2024-07-31")) {
		t.Error("Overdue the day after = false, want true")
	}

	acct.CurrentBalance = decimal.Zero
	if DueSoon(acct, mustDate(t, "2024-07-29"), week) || Overdue(acct, mustDate(t, "2024-08-30")) {
		t.Error("settled account reported as due")
	}
}

func TestAccountValidate(t *testing.T) {
	acct := sampleAccount(t)
	if err := acct.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	acct.CurrentBalance = dec(t, "60000")
	if err := acct.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
	}
}
