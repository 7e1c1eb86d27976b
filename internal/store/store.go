// Package store persists fintrack state as JSON values under string keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/theirongolddev/fintrack/internal/config"
)

// Keys under which the ledger persists its slices of state.
const (
	KeyUser               = "user"
	KeyTransactions       = "transactions"
	KeyBudgetCategories   = "budget_categories"
	KeyLoans              = "loans"
	KeyCourses            = "courses"
	KeyAchievements       = "achievements"
	KeySavingsGoals       = "savings_goals"
	KeyUserStats          = "user_stats"
	KeyOnboardingComplete = "onboarding_complete"
)

// AllKeys lists every key fintrack writes.
var AllKeys = []string{
	KeyUser,
	KeyTransactions,
	KeyBudgetCategories,
	KeyLoans,
	KeyCourses,
	KeyAchievements,
	KeySavingsGoals,
	KeyUserStats,
	KeyOnboardingComplete,
}

// ErrClosed is returned by adapters used after Close.
var ErrClosed = errors.New("store closed")

// Adapter loads and saves JSON-encodable values by key.
type Adapter interface {
	// Load decodes the value stored at key into v and reports whether the
	// key was present. A missing key leaves v untouched.
	Load(key string, v any) (bool, error)
	Save(key string, v any) error
	Delete(key string) error
	Close() error
}

// batchSaver is implemented by adapters that can write several keys
// atomically.
type batchSaver interface {
	saveBatch(entries map[string][]byte) error
}

// LoadOr returns the value stored at key, or def when the key is absent.
func LoadOr[T any](a Adapter, key string, def T) (T, error) {
	var v T
	ok, err := a.Load(key, &v)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// SaveAll writes every entry, atomically when the adapter supports it.
func SaveAll(a Adapter, entries map[string]any) error {
	encoded := make(map[string][]byte, len(entries))
	for k, v := range entries {
		data, err := encode(k, v)
		if err != nil {
			return err
		}
		encoded[k] = data
	}

	if b, ok := a.(batchSaver); ok {
		return b.saveBatch(encoded)
	}
	for k, v := range entries {
		if err := a.Save(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes every fintrack key.
func Clear(a Adapter) error {
	for _, k := range AllKeys {
		if err := a.Delete(k); err != nil {
			return fmt.Errorf("deleting %s: %w", k, err)
		}
	}
	return nil
}

// Open returns the adapter selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (Adapter, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		return OpenSQLite(cfg.DBPath())
	case config.BackendRedis:
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func encode(key string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}
	return data, nil
}

func decode(key string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}
