// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Mask replaces amounts while balances are hidden.
const Mask = "••••••"

// Money formats an amount with the currency symbol, thousands separators
// and exactly places fractional digits.
// e.g., (1234567.5, "₹", 0) -> "₹1,234,568"; (-42.5, "$", 2) -> "-$42.50"
func Money(d decimal.Decimal, symbol string, places int32) string {
	d = d.Round(places)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole := d.Truncate(0)
	s := sign + symbol + humanize.BigComma(whole.BigInt())
	if places > 0 {
		frac := d.Sub(whole).StringFixed(places)
		s += frac[strings.IndexByte(frac, '.'):]
	}
	return s
}

// MoneyOrMask formats an amount, or returns Mask when hidden.
func MoneyOrMask(d decimal.Decimal, symbol string, places int32, show bool) string {
	if !show {
		return symbol + Mask
	}
	return Money(d, symbol, places)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-100 percentage with one decimal.
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(1) + "%"
}

// FormatRate formats an annual interest rate.
func FormatRate(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "% p.a."
}

// FormatDate renders a calendar date, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}

// FormatDue describes a due date relative to now.
// e.g., "in 5 days", "today", "3 days overdue"
func FormatDue(due, now time.Time) string {
	if due.IsZero() {
		return "-"
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	dy, dm, dd := due.Date()
	day := time.Date(dy, dm, dd, 0, 0, 0, 0, now.Location())

	switch days := int(day.Sub(today).Hours() / 24); {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days > 1:
		return fmt.Sprintf("in %d days", days)
	default:
		return humanize.RelTime(day, today, "overdue", "")
	}
}

// FormatMonths renders a month count as years and months.
// e.g., 28 -> "2y 4m", 6 -> "6m"
func FormatMonths(n int) string {
	if n <= 0 {
		return "0m"
	}
	years, months := n/12, n%12
	switch {
	case years == 0:
		return fmt.Sprintf("%dm", months)
	case months == 0:
		return fmt.Sprintf("%dy", years)
	default:
		return fmt.Sprintf("%dy %dm", years, months)
	}
}

// ParseAmount reads a positive amount typed by a user. Grouping commas,
// underscores and spaces are ignored.
// e.g., "1,45,000" -> 145000
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(",", "", "_", "", " ", "").Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", d)
	}
	return d, nil
}

// ParseDate reads a YYYY-MM-DD date. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	return t, nil
}
