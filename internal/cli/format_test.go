package cli

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in     string
		symbol string
		places int32
		want   string
	}{
		{"245680", "₹", 0, "₹245,680"},
		{"1234567.5", "₹", 0, "₹1,234,568"},
		{"999", "$", 0, "$999"},
		{"-42.5", "$", 2, "-$42.50"},
		{"536.8216", "$", 2, "$536.82"},
		{"1000000.05", "€", 2, "€1,000,000.05"},
		{"0", "₹", 0, "₹0"},
	}
	for _, tt := range tests {
		got := Money(decimal.RequireFromString(tt.in), tt.symbol, tt.places)
		if got != tt.want {
			t.Errorf("Money(%s, %q, %d) = %q, want %q", tt.in, tt.symbol, tt.places, got, tt.want)
		}
	}
}

func TestMoneyOrMask(t *testing.T) {
	d := decimal.NewFromInt(5000)
	if got := MoneyOrMask(d, "₹", 0, false); got != "₹"+Mask {
		t.Errorf("hidden = %q", got)
	}
	if got := MoneyOrMask(d, "₹", 0, true); got != "₹5,000" {
		t.Errorf("shown = %q", got)
	}
}

func TestFormatDue(t *testing.T) {
	now := time.Date(2024, 7, 20, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		due  time.Time
		want string
	}{
		{time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC), "today"},
		{time.Date(2024, 7, 21, 0, 0, 0, 0, time.UTC), "tomorrow"},
		{time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC), "in 5 days"},
		{time.Date(2024, 7, 17, 0, 0, 0, 0, time.UTC), "3 days overdue"},
		{time.Time{}, "-"},
	}
	for _, tt := range tests {
		if got := FormatDue(tt.due, now); got != tt.want {
			t.Errorf("FormatDue(%s) = %q, want %q", tt.due.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestFormatMonths(t *testing.T) {
	tests := map[int]string{0: "0m", 6: "6m", 12: "1y", 28: "2y 4m", -3: "0m"}
	for in, want := range tests {
		if got := FormatMonths(in); got != want {
			t.Errorf("FormatMonths(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatPercentAndNumber(t *testing.T) {
	if got := FormatPercent(decimal.RequireFromString("83.3333")); got != "83.3%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatNumber(-1234567); got != "-1,234,567" {
		t.Errorf("FormatNumber = %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1,45,000", "145000", false},
		{" 12_500.50 ", "12500.5", false},
		{"0", "", true},
		{"-5", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-07-25")
	if err != nil || !got.Equal(time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDate = %v, %v", got, err)
	}
	if got, err := ParseDate(""); err != nil || !got.IsZero() {
		t.Errorf("ParseDate(empty) = %v, %v", got, err)
	}
	if _, err := ParseDate("25/07/2024"); err == nil {
		t.Error("ParseDate accepted 25/07/2024")
	}
}
