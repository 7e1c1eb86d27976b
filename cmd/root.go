// Package cmd implements the fintrack CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/logging"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagNoPersist bool
	flagQuiet     bool
	flagBackend   string
)

const openTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Personal finance tracker",
	Long:  "Track loans, EMIs, budgets, savings goals and transactions from the terminal.",
	RunE:  runSummary,

	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoPersist, "no-persist", false, "Keep changes in memory only")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend override (sqlite, redis, memory)")
}

// session is what every data command works with: the loaded config, the
// logger and the ledger over the configured storage.
type session struct {
	cfg    config.Config
	log    *zap.Logger
	ledger *ledger.Store
}

func (s *session) Close() {
	if err := s.ledger.Close(); err != nil {
		s.log.Warn("closing storage", zap.Error(err))
	}
	_ = s.log.Sync()
}

func (s *session) money(d decimal.Decimal) string {
	return cli.Money(d, s.cfg.General.Currency, s.cfg.General.Precision)
}

// loadConfig reads the config file and applies the storage flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagBackend != "" {
		cfg.Storage.Backend = flagBackend
	}
	if flagNoPersist {
		cfg.Storage.Backend = config.BackendMemory
	}
	return cfg, cfg.Validate()
}

// openSession is the shared loading path used by all data commands. When
// the configured storage cannot be opened it falls back to memory so read
// commands still work.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.NewOrNop(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	adapter, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		log.Warn("storage unavailable", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Storage unavailable (%v), changes will not be saved\n", err)
		}
		cfg.Storage.Backend = config.BackendMemory
		adapter = store.NewMemory()
	}

	st, err := ledger.Open(adapter, log, ledger.Sample())
	if err != nil {
		_ = adapter.Close()
		return nil, err
	}

	now := time.Now()
	if ledger.StaleLoanStatus(st.State(), now) {
		if _, err := st.Dispatch(ledger.RefreshLoanStatus{Now: now}); err != nil {
			log.Warn("refreshing loan status", zap.Error(err))
		}
	}

	log.Debug("session opened", zap.String("backend", cfg.Storage.Backend))
	return &session{cfg: cfg, log: log, ledger: st}, nil
}

// dispatch applies actions as one change and reports rejections as errors.
func (s *session) dispatch(actions ...ledger.Action) (ledger.State, error) {
	st, err := s.ledger.DispatchAll(actions...)
	if err != nil {
		s.log.Info("command rejected", zap.Error(err))
		return st, err
	}
	return st, nil
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
