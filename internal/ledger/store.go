package ledger

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/store"
)

// Store owns the current State, applies actions through Reduce and writes
// every successful change through to a storage adapter. It is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	state   State
	adapter store.Adapter
	log     *zap.Logger
}

// Open loads state from a, falling back to seed for every key that has
// never been saved.
func Open(a store.Adapter, log *zap.Logger, seed State) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s, err := load(a, seed)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	return &Store{state: s, adapter: a, log: log}, nil
}

func load(a store.Adapter, seed State) (State, error) {
	var (
		s   State
		err error
	)
	if s.User, err = store.LoadOr(a, store.KeyUser, seed.User); err != nil {
		return s, err
	}
	if s.Transactions, err = store.LoadOr(a, store.KeyTransactions, seed.Transactions); err != nil {
		return s, err
	}
	if s.BudgetCategories, err = store.LoadOr(a, store.KeyBudgetCategories, seed.BudgetCategories); err != nil {
		return s, err
	}
	if s.Loans, err = store.LoadOr(a, store.KeyLoans, seed.Loans); err != nil {
		return s, err
	}
	if s.SavingsGoals, err = store.LoadOr(a, store.KeySavingsGoals, seed.SavingsGoals); err != nil {
		return s, err
	}
	if s.Courses, err = store.LoadOr(a, store.KeyCourses, seed.Courses); err != nil {
		return s, err
	}
	if s.Achievements, err = store.LoadOr(a, store.KeyAchievements, seed.Achievements); err != nil {
		return s, err
	}
	if s.Stats, err = store.LoadOr(a, store.KeyUserStats, seed.Stats); err != nil {
		return s, err
	}
	if s.OnboardingComplete, err = store.LoadOr(a, store.KeyOnboardingComplete, seed.OnboardingComplete); err != nil {
		return s, err
	}
	return s.Clone(), nil
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Dispatch applies a and persists the keys it touched. A failed write is
// logged and the in-memory state still advances.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.state, a)
	if err != nil {
		s.log.Debug("action rejected", zap.String("action", fmt.Sprintf("%T", a)), zap.Error(err))
		return s.state.Clone(), err
	}
	s.state = next

	if err := store.SaveAll(s.adapter, entries(next, a.keys())); err != nil {
		s.log.Warn("persisting state failed",
			zap.String("action", fmt.Sprintf("%T", a)),
			zap.Strings("keys", a.keys()),
			zap.Error(err),
		)
	}
	return next.Clone(), nil
}

// DispatchAll applies actions in order as one change: if any is rejected
// none take effect. The union of their keys is persisted once.
func (s *Store) DispatchAll(actions ...Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	var keys []string
	for _, a := range actions {
		var err error
		if next, err = Reduce(next, a); err != nil {
			s.log.Debug("action rejected", zap.String("action", fmt.Sprintf("%T", a)), zap.Error(err))
			return s.state.Clone(), err
		}
		for _, k := range a.keys() {
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	s.state = next

	if err := store.SaveAll(s.adapter, entries(next, keys)); err != nil {
		s.log.Warn("persisting state failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return next.Clone(), nil
}

// Reload re-reads persisted state, picking up writes made by other
// processes. Keys that were never saved keep their current value.
func (s *Store) Reload() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := load(s.adapter, s.state)
	if err != nil {
		return s.state.Clone(), fmt.Errorf("reloading state: %w", err)
	}
	s.state = next
	return next.Clone(), nil
}

// Save writes the whole state through to the adapter.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.SaveAll(s.adapter, entries(s.state, store.AllKeys))
}

// Reset clears persisted data and replaces the state with seed.
func (s *Store) Reset(seed State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := store.Clear(s.adapter); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	s.state = seed.Clone()
	s.log.Info("state reset", zap.Bool("onboarding_complete", seed.OnboardingComplete))
	return nil
}

// Close releases the underlying adapter.
func (s *Store) Close() error {
	return s.adapter.Close()
}

func entries(s State, keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		switch k {
		case store.KeyUser:
			out[k] = s.User
		case store.KeyTransactions:
			out[k] = s.Transactions
		case store.KeyBudgetCategories:
			out[k] = s.BudgetCategories
		case store.KeyLoans:
			out[k] = s.Loans
		case store.KeySavingsGoals:
			out[k] = s.SavingsGoals
		case store.KeyCourses:
			out[k] = s.Courses
		case store.KeyAchievements:
			out[k] = s.Achievements
		case store.KeyUserStats:
			out[k] = s.Stats
		case store.KeyOnboardingComplete:
			out[k] = s.OnboardingComplete
		}
	}
	return out
}
