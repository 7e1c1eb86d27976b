package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderTable_AlignsMultibyteCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Loan", "Balance", "EMI"},
		Rows: [][]string{
			{"Personal Loan", "₹1,45,000", "₹12,500"},
			{"---"},
			{"Total", "₹5,25,000", "₹20,700"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	want := lipgloss.Width(lines[0])
	for i, l := range lines {
		if w := lipgloss.Width(l); w != want {
			t.Errorf("line %d width = %d, want %d: %q", i, w, want, l)
		}
	}
	if !strings.Contains(out, "Personal Loan") || !strings.Contains(out, "₹20,700") {
		t.Errorf("table missing cells:\n%s", out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("RenderTable(empty) = %q, want empty", got)
	}
}

func TestRenderProgressBar(t *testing.T) {
	for _, pct := range []float64{-10, 0, 30, 100, 250} {
		bar := RenderProgressBar(pct, 20)
		if w := lipgloss.Width(bar); w != 20 {
			t.Errorf("RenderProgressBar(%v) width = %d, want 20", pct, w)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	got := RenderSparkline([]float64{100, 50, 0})
	if got != "█▄▁" {
		t.Errorf("RenderSparkline = %q, want █▄▁", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("RenderSparkline(nil) not empty")
	}
}
