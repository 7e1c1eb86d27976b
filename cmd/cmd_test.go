package cmd

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/amortize"
	"github.com/theirongolddev/fintrack/internal/daemon"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
)

func TestParseTerms(t *testing.T) {
	terms, err := parseTerms("5,00,000", "12.5", 28)
	if err != nil {
		t.Fatalf("parseTerms: %v", err)
	}
	if !terms.Principal.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("principal = %s, want 500000", terms.Principal)
	}
	if !terms.AnnualRatePercent.Equal(decimal.RequireFromString("12.5")) || terms.TermMonths != 28 {
		t.Errorf("terms = %+v", terms)
	}

	if _, err := parseTerms("500000", "abc", 28); err == nil {
		t.Error("expected error for non-numeric rate")
	}
	if _, err := parseTerms("500000", "12.5", 0); !errors.Is(err, amortize.ErrInvalidInput) {
		t.Errorf("zero months: err = %v, want ErrInvalidInput", err)
	}
	if _, err := parseTerms("500000", "12.5", 1<<30); !errors.Is(err, amortize.ErrInvalidInput) {
		t.Errorf("huge term: err = %v, want ErrInvalidInput", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    model.TransactionKind
		wantErr bool
	}{
		{"income", model.Income, false},
		{"Expense", model.Expense, false},
		{"transfer", "", true},
	}
	for _, tt := range tests {
		got, err := parseKind(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseKind(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestBuildTransactionDefaultsToToday(t *testing.T) {
	nowFunc = func() time.Time { return time.Date(2024, 7, 20, 18, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = time.Now })

	tx, err := buildTransaction(model.Expense, "425", " Food ", "Lunch", "")
	if err != nil {
		t.Fatalf("buildTransaction: %v", err)
	}
	if want := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC); !tx.Date.Equal(want) {
		t.Errorf("date = %v, want %v", tx.Date, want)
	}
	if tx.Category != "Food" || tx.ID == "" {
		t.Errorf("tx = %+v", tx)
	}

	if _, err := buildTransaction(model.Expense, "-5", "Food", "Lunch", ""); err == nil {
		t.Error("expected error for negative amount")
	}
	if _, err := buildTransaction(model.Expense, "5", "Food", "", ""); err == nil {
		t.Error("expected error for missing description")
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret("supersecretpw"); got != "su...pw" {
		t.Errorf("maskSecret = %q", got)
	}
	if got := maskSecret("short"); got != "****" {
		t.Errorf("maskSecret(short) = %q", got)
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--interval", "30s", "--detach=true"})
	if want := []string{"daemon", "--interval", "30s"}; !slices.Equal(got, want) {
		t.Errorf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestRuntimeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrackd.json")
	if err := ensureDaemonNotRunning(path); err != nil {
		t.Fatalf("missing runtime file: %v", err)
	}

	in := daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      "127.0.0.1:9999",
		Backend:   "sqlite",
		StartedAt: time.Date(2024, 7, 20, 9, 0, 0, 0, time.UTC),
	}
	if err := writeRuntime(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := readRuntime(path)
	if err != nil {
		t.Fatalf("readRuntime: %v", err)
	}
	if out.PID != in.PID || out.Addr != in.Addr || !out.StartedAt.Equal(in.StartedAt) {
		t.Errorf("runtime = %+v, want %+v", out, in)
	}
	if err := ensureDaemonNotRunning(path); err == nil {
		t.Error("expected error while our own pid is alive")
	}

	if err := os.WriteFile(path, []byte(`{"pid": 0}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readRuntime(path); err == nil {
		t.Error("expected error for zero pid")
	}
	if err := ensureDaemonNotRunning(path); err != nil {
		t.Fatalf("stale runtime file: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale runtime file not removed: %v", err)
	}
}

func TestFetchDaemonStatus(t *testing.T) {
	st, err := ledger.Open(store.NewMemory(), zap.NewNop(), ledger.Sample())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(daemon.New(daemon.Config{Backend: "memory"}, st, nil).Handler())
	defer srv.Close()

	got, err := fetchDaemonStatus(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("fetchDaemonStatus: %v", err)
	}
	if got.Backend != "memory" || got.PollCount != 0 {
		t.Errorf("status = %+v", got)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()
	if _, err := fetchDaemonStatus(strings.TrimPrefix(broken.URL, "http://")); err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("err = %v, want HTTP 500", err)
	}
}
