package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/store"
)

func newTestService(t *testing.T) (*Service, *ledger.Store, *time.Time) {
	t.Helper()
	st, err := ledger.Open(store.NewMemory(), zap.NewNop(), ledger.Sample())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	now := time.Date(2024, 7, 20, 9, 0, 0, 0, time.UTC)
	s := New(Config{Backend: "memory", Interval: 10 * time.Second, EventsBuffer: 50}, st, nil)
	s.clock = func() time.Time { return now }
	return s, st, &now
}

func eventTypes(events []Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		TotalDebt:      decimal.NewFromInt(525000),
		BudgetSpent:    decimal.NewFromInt(21400),
		SavingsCurrent: decimal.NewFromInt(94000),
		Transactions:   4,
	}
	curr := Snapshot{
		TotalDebt:      decimal.NewFromInt(512500),
		BudgetSpent:    decimal.NewFromInt(21750),
		SavingsCurrent: decimal.NewFromInt(94000),
		Transactions:   5,
		OverdueLoans:   1,
	}

	delta := diffSnapshots(prev, curr)
	if !delta.TotalDebt.Equal(decimal.NewFromInt(-12500)) {
		t.Fatalf("TotalDebt delta = %s, want -12500", delta.TotalDebt)
	}
	if !delta.BudgetSpent.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("BudgetSpent delta = %s, want 350", delta.BudgetSpent)
	}
	if delta.Transactions != 1 || delta.OverdueLoans != 1 {
		t.Fatalf("delta = %+v", delta)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	}, nil, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnceRemindsOncePerDueDate(t *testing.T) {
	s, _, _ := newTestService(t)

	s.pollOnce()
	got := eventTypes(s.events)
	if len(got) != 2 || got[0] != EventSnapshot || got[1] != EventPaymentDue {
		t.Fatalf("first poll events = %v, want [snapshot payment_due]", got)
	}
	if r := s.events[1].Reminder; r == nil || r.LoanID != "1" || r.Bank != "HDFC Bank" {
		t.Fatalf("reminder = %+v, want HDFC loan 1", r)
	}

	s.pollOnce()
	if len(s.events) != 2 {
		t.Fatalf("second poll added events: %v", eventTypes(s.events))
	}
	if s.pollCount != 2 {
		t.Errorf("pollCount = %d, want 2", s.pollCount)
	}
}

func TestPollOncePublishesDeltaAndOverdue(t *testing.T) {
	s, st, now := newTestService(t)
	s.pollOnce()

	if _, err := st.Dispatch(ledger.ContributeToGoal{GoalID: "1", Amount: decimal.NewFromInt(1000)}); err != nil {
		t.Fatal(err)
	}
	s.pollOnce()
	last := s.events[len(s.events)-1]
	if last.Type != EventSummaryDelta || last.Delta == nil || !last.Delta.SavingsCurrent.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("last event = %+v, want savings delta of 1000", last)
	}

	// Past the due date the loan turns overdue and a second reminder fires.
	*now = time.Date(2024, 7, 26, 9, 0, 0, 0, time.UTC)
	s.pollOnce()

	l, _ := st.State().Loan("1")
	if l.Status != "overdue" {
		t.Errorf("loan 1 status = %s, want overdue", l.Status)
	}
	var overdue *Reminder
	for _, ev := range s.events {
		if ev.Type == EventPaymentOverdue {
			overdue = ev.Reminder
		}
	}
	if overdue == nil || overdue.LoanID != "1" {
		t.Errorf("events = %v, want payment_overdue for loan 1", eventTypes(s.events))
	}
	if s.snapshot.OverdueLoans != 1 {
		t.Errorf("snapshot overdue = %d, want 1", s.snapshot.OverdueLoans)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s, _, _ := newTestService(t)
	s.pollOnce()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}

	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Backend != "memory" || st.PollCount != 1 || st.Summary.ActiveLoans != 2 {
		t.Errorf("status = %+v", st)
	}
	if !st.Summary.TotalDebt.Equal(decimal.NewFromInt(525000)) {
		t.Errorf("total debt = %s, want 525000", st.Summary.TotalDebt)
	}
	if st.EventCount != 2 {
		t.Errorf("event count = %d, want 2", st.EventCount)
	}
}
