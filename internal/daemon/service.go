// Package daemon provides the long-running payment reminder service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
)

// Event types.
const (
	EventSnapshot       = "snapshot"
	EventSummaryDelta   = "summary_delta"
	EventPaymentDue     = "payment_due"
	EventPaymentOverdue = "payment_overdue"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Backend      string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	DueWindow    time.Duration
}

// Snapshot is a compact view of the ledger for status/event payloads.
type Snapshot struct {
	At              time.Time       `json:"at"`
	ActiveLoans     int             `json:"active_loans"`
	OverdueLoans    int             `json:"overdue_loans"`
	DueSoonLoans    int             `json:"due_soon_loans"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
	MonthlyEMI      decimal.Decimal `json:"monthly_emi"`
	BudgetAllocated decimal.Decimal `json:"budget_allocated"`
	BudgetSpent     decimal.Decimal `json:"budget_spent"`
	SavingsCurrent  decimal.Decimal `json:"savings_current"`
	Transactions    int             `json:"transactions"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	TotalDebt      decimal.Decimal `json:"total_debt"`
	BudgetSpent    decimal.Decimal `json:"budget_spent"`
	SavingsCurrent decimal.Decimal `json:"savings_current"`
	Transactions   int             `json:"transactions"`
	OverdueLoans   int             `json:"overdue_loans"`
}

func (d Delta) isZero() bool {
	return d.TotalDebt.IsZero() &&
		d.BudgetSpent.IsZero() &&
		d.SavingsCurrent.IsZero() &&
		d.Transactions == 0 &&
		d.OverdueLoans == 0
}

// Reminder describes an upcoming or missed installment.
type Reminder struct {
	LoanID  string          `json:"loan_id"`
	Loan    string          `json:"loan"`
	Bank    string          `json:"bank"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

// Event is emitted whenever the ledger changes or a payment needs attention.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     *Delta    `json:"delta,omitempty"`
	Reminder  *Reminder `json:"reminder,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Backend         string    `json:"backend"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	ledger *ledger.Store
	log    *zap.Logger
	clock  func() time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event
	reminded    map[string]string // loan ID -> last reminder key

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service watching st.
func New(cfg Config, st *ledger.Store, log *zap.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.DueWindow <= 0 {
		cfg.DueWindow = 7 * 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		ledger:    st,
		log:       log,
		clock:     time.Now,
		startedAt: time.Now(),
		reminded:  make(map[string]string),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// pollOnce reloads the ledger, flags overdue loans and publishes what
// changed since the previous poll.
func (s *Service) pollOnce() {
	now := s.clock()

	state, err := s.ledger.Reload()
	if err == nil && ledger.StaleLoanStatus(state, now) {
		state, err = s.ledger.Dispatch(ledger.RefreshLoanStatus{Now: now})
	}
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("daemon poll failed", zap.Error(err))
		return
	}

	sum := ledger.Summarize(state, now, s.cfg.DueWindow)
	snap := snapshotFromSummary(state, sum, now)

	var events []Event

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		events = append(events, s.newEvent(EventSnapshot, now, snap))
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		ev := s.newEvent(EventSummaryDelta, now, snap)
		ev.Delta = &delta
		events = append(events, ev)
	}

	for _, l := range sum.Overdue {
		if ev, ok := s.remind(EventPaymentOverdue, l, now, snap); ok {
			events = append(events, ev)
		}
	}
	for _, l := range sum.DueSoon {
		if ev, ok := s.remind(EventPaymentDue, l, now, snap); ok {
			events = append(events, ev)
		}
	}
	s.mu.Unlock()

	for _, ev := range events {
		if ev.Reminder != nil {
			s.log.Info("payment reminder",
				zap.String("type", ev.Type),
				zap.String("loan_id", ev.Reminder.LoanID),
				zap.Time("due", ev.Reminder.DueDate),
			)
		}
		s.publishEvent(ev)
	}
}

// newEvent assigns the next event ID. Callers hold s.mu.
func (s *Service) newEvent(typ string, at time.Time, snap Snapshot) Event {
	s.nextEventID++
	return Event{ID: s.nextEventID, Type: typ, Timestamp: at, Snapshot: snap}
}

// remind returns a reminder event for l unless one was already sent for
// the same due date and type. Callers hold s.mu.
func (s *Service) remind(typ string, l model.Loan, at time.Time, snap Snapshot) (Event, bool) {
	key := typ + "@" + l.Account.NextDueDate.Format(time.DateOnly)
	if s.reminded[l.ID] == key {
		return Event{}, false
	}
	s.reminded[l.ID] = key

	ev := s.newEvent(typ, at, snap)
	ev.Reminder = &Reminder{
		LoanID:  l.ID,
		Loan:    l.Type,
		Bank:    l.Bank,
		Amount:  l.Account.MonthlyPayment,
		DueDate: l.Account.NextDueDate,
	}
	return ev, true
}

func snapshotFromSummary(state ledger.State, sum ledger.Summary, at time.Time) Snapshot {
	return Snapshot{
		At:              at,
		ActiveLoans:     sum.ActiveLoans,
		OverdueLoans:    len(sum.Overdue),
		DueSoonLoans:    len(sum.DueSoon),
		TotalDebt:       sum.TotalDebt,
		MonthlyEMI:      sum.MonthlyEMI,
		BudgetAllocated: sum.Budget.Allocated,
		BudgetSpent:     sum.Budget.Spent,
		SavingsCurrent:  sum.SavingsCurrent,
		Transactions:    len(state.Transactions),
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		TotalDebt:      curr.TotalDebt.Sub(prev.TotalDebt),
		BudgetSpent:    curr.BudgetSpent.Sub(prev.BudgetSpent),
		SavingsCurrent: curr.SavingsCurrent.Sub(prev.SavingsCurrent),
		Transactions:   curr.Transactions - prev.Transactions,
		OverdueLoans:   curr.OverdueLoans - prev.OverdueLoans,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Backend:         s.cfg.Backend,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, Event{
		Type:      EventSnapshot,
		Timestamp: s.clock(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
