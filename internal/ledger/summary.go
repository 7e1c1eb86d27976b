package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/amortize"
	"github.com/theirongolddev/fintrack/internal/budget"
	"github.com/theirongolddev/fintrack/internal/model"
)

// Summary is the dashboard view of a State.
type Summary struct {
	ActiveLoans       int
	TotalDebt         decimal.Decimal
	MonthlyEMI        decimal.Decimal
	AverageRate       decimal.Decimal // balance-weighted, percent per year
	InterestRemaining decimal.Decimal
	DueSoon           []model.Loan
	Overdue           []model.Loan

	Budget budget.Summary

	SavingsCurrent  decimal.Decimal
	SavingsTarget   decimal.Decimal
	SavingsProgress decimal.Decimal

	MonthIncome   decimal.Decimal
	MonthExpenses decimal.Decimal
}

// Summarize computes the dashboard figures for s as of now. Loans due
// within window are listed in DueSoon.
func Summarize(s State, now time.Time, window time.Duration) Summary {
	var sum Summary
	weighted := decimal.Zero

	for _, l := range s.Loans {
		if l.Status == model.LoanPaid {
			continue
		}
		a := l.Account
		sum.ActiveLoans++
		sum.TotalDebt = sum.TotalDebt.Add(a.CurrentBalance)
		sum.MonthlyEMI = sum.MonthlyEMI.Add(a.MonthlyPayment)
		sum.InterestRemaining = sum.InterestRemaining.Add(amortize.InterestRemaining(a))
		weighted = weighted.Add(a.AnnualRatePercent.Mul(a.CurrentBalance))

		switch {
		case amortize.Overdue(a, now):
			sum.Overdue = append(sum.Overdue, l)
		case amortize.DueSoon(a, now, window):
			sum.DueSoon = append(sum.DueSoon, l)
		}
	}
	if sum.TotalDebt.IsPositive() {
		sum.AverageRate = weighted.Div(sum.TotalDebt).Round(2)
	}

	sum.Budget = budget.Overview(s.BudgetCategories)

	for _, g := range s.SavingsGoals {
		sum.SavingsCurrent = sum.SavingsCurrent.Add(g.Current)
		sum.SavingsTarget = sum.SavingsTarget.Add(g.Target)
	}
	sum.SavingsProgress = budget.GoalProgress(model.SavingsGoal{
		Target:  sum.SavingsTarget,
		Current: sum.SavingsCurrent,
	})

	y, m, _ := now.Date()
	for _, tx := range s.Transactions {
		if ty, tm, _ := tx.Date.Date(); ty != y || tm != m {
			continue
		}
		switch tx.Kind {
		case model.Income:
			sum.MonthIncome = sum.MonthIncome.Add(tx.Amount)
		case model.Expense:
			sum.MonthExpenses = sum.MonthExpenses.Add(tx.Amount)
		}
	}
	return sum
}
