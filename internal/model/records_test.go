package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/amortize"
)

func TestNewLoan(t *testing.T) {
	terms := amortize.LoanTerms{
		Principal:         decimal.NewFromInt(500000),
		AnnualRatePercent: decimal.RequireFromString("12.5"),
		TermMonths:        28,
	}
	due := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)

	l, err := NewLoan("Personal Loan", "HDFC Bank", terms, due)
	if err != nil {
		t.Fatalf("NewLoan() error = %v", err)
	}
	if l.ID == "" {
		t.Error("ID is empty")
	}
	if l.Status != LoanActive {
		t.Errorf("Status = %q, want %q", l.Status, LoanActive)
	}
	if !l.Account.MonthlyPayment.Equal(decimal.NewFromInt(20680)) {
		t.Errorf("MonthlyPayment = %s, want 20680", l.Account.MonthlyPayment)
	}
	if !l.Account.CurrentBalance.Equal(terms.Principal) {
		t.Errorf("CurrentBalance = %s, want %s", l.Account.CurrentBalance, terms.Principal)
	}
	if l.Account.RemainingMonths != 28 || !l.Account.NextDueDate.Equal(due) {
		t.Errorf("Account = %+v", l.Account)
	}

	other, err := NewLoan("Car Loan", "SBI", terms, due)
	if err != nil {
		t.Fatalf("NewLoan() error = %v", err)
	}
	if other.ID == l.ID {
		t.Error("two loans share an ID")
	}
}

func TestNewLoan_InvalidTerms(t *testing.T) {
	_, err := NewLoan("Loan", "", amortize.LoanTerms{TermMonths: 12}, time.Time{})
	if !errors.Is(err, amortize.ErrInvalidInput) {
		t.Fatalf("NewLoan() error = %v, want ErrInvalidInput", err)
	}
}

func TestLoanValidate_Account(t *testing.T) {
	l := Loan{
		ID:     NewID(),
		Type:   "Home Loan",
		Status: LoanActive,
		Account: amortize.Account{
			OriginalAmount: decimal.NewFromInt(1000),
			CurrentBalance: decimal.NewFromInt(2000),
		},
	}
	err := l.Validate()
	if !errors.Is(err, ErrInvalidRecord) || !errors.Is(err, amortize.ErrInvalidInput) {
		t.Fatalf("Validate() = %v, want ErrInvalidRecord wrapping ErrInvalidInput", err)
	}
}

func TestValidate_Transaction(t *testing.T) {
	valid := Transaction{
		ID:          NewID(),
		Kind:        Expense,
		Amount:      decimal.RequireFromString("1250.50"),
		Description: "Groceries",
		Category:    "Food",
		Date:        time.Now(),
	}
	if err := Validate(valid); err != nil {
		t.Fatalf("Validate(valid) = %v", err)
	}

	tests := []struct {
		name  string
		edit  func(*Transaction)
		field string
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-3) }, "amount"},
		{"unknown kind", func(tx *Transaction) { tx.Kind = "transfer" }, "type"},
		{"no description", func(tx *Transaction) { tx.Description = "" }, "description"},
		{"no date", func(tx *Transaction) { tx.Date = time.Time{} }, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.edit(&tx)
			err := Validate(tx)
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("Validate() = %v, want ErrInvalidRecord", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name field %q", err, tt.field)
			}
		})
	}
}

func TestValidate_Course(t *testing.T) {
	c := Course{ID: NewID(), Title: "Budgeting Basics", Progress: 40, Modules: 5, CompletedModules: 2}
	if err := Validate(c); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	c.Progress = 120
	if err := Validate(c); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("progress 120: Validate() = %v, want ErrInvalidRecord", err)
	}

	c.Progress = 40
	c.CompletedModules = 6
	if err := Validate(c); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("completed > modules: Validate() = %v, want ErrInvalidRecord", err)
	}
}

func TestValidate_BudgetAndGoal(t *testing.T) {
	cat := BudgetCategory{ID: NewID(), Name: "Food", Allocated: decimal.NewFromInt(15000), Spent: decimal.Zero}
	if err := Validate(cat); err != nil {
		t.Fatalf("Validate(category) = %v", err)
	}
	cat.Allocated = decimal.Zero
	if err := Validate(cat); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("zero allocation: Validate() = %v, want ErrInvalidRecord", err)
	}

	goal := SavingsGoal{ID: NewID(), Name: "Emergency Fund", Target: decimal.NewFromInt(100000)}
	if err := Validate(goal); err != nil {
		t.Fatalf("Validate(goal) = %v", err)
	}
	goal.Current = decimal.NewFromInt(-1)
	if err := Validate(goal); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("negative saved: Validate() = %v, want ErrInvalidRecord", err)
	}
}
