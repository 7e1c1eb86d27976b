// Package budget computes spending health for budget categories and
// progress toward savings goals.
package budget

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/model"
)

// Level grades how much of an allocation has been spent.
type Level string

const (
	Good    Level = "good"
	Warning Level = "warning"
	Danger  Level = "danger"
)

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(75)
	dangerThreshold  = decimal.NewFromInt(90)
)

// Percent returns part as a percentage of whole, or zero when whole is not
// positive. The result is not clamped; overspending yields more than 100.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Status grades spending against an allocation and returns the percentage
// spent alongside the level.
func Status(allocated, spent decimal.Decimal) (Level, decimal.Decimal) {
	pct := Percent(spent, allocated)
	switch {
	case pct.GreaterThanOrEqual(dangerThreshold):
		return Danger, pct
	case pct.GreaterThanOrEqual(warningThreshold):
		return Warning, pct
	default:
		return Good, pct
	}
}

// CategoryStatus is Status for a single category.
func CategoryStatus(c model.BudgetCategory) (Level, decimal.Decimal) {
	return Status(c.Allocated, c.Spent)
}

// Summary totals a set of categories.
type Summary struct {
	Allocated    decimal.Decimal `json:"allocated"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	PercentSpent decimal.Decimal `json:"percent_spent"`
	Level        Level           `json:"level"`
	OverBudget   []string        `json:"over_budget,omitempty"`
}

// Overview sums allocations and spending across categories. Remaining may
// be negative when spending exceeds the total allocation.
func Overview(categories []model.BudgetCategory) Summary {
	var s Summary
	for _, c := range categories {
		s.Allocated = s.Allocated.Add(c.Allocated)
		s.Spent = s.Spent.Add(c.Spent)
		if c.Spent.GreaterThan(c.Allocated) {
			s.OverBudget = append(s.OverBudget, c.Name)
		}
	}
	s.Remaining = s.Allocated.Sub(s.Spent)
	s.Level, s.PercentSpent = Status(s.Allocated, s.Spent)
	return s
}

// GoalProgress returns the saved share of a goal's target in [0,100].
func GoalProgress(g model.SavingsGoal) decimal.Decimal {
	pct := Percent(g.Current, g.Target)
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// GoalReached reports whether a goal's target has been met.
func GoalReached(g model.SavingsGoal) bool {
	return g.Target.IsPositive() && g.Current.GreaterThanOrEqual(g.Target)
}
