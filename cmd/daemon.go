package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/daemon"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Backend   string    `json:"backend"`
}

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonRuntime      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background payment reminder daemon with HTTP/SSE endpoints",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	defaultRuntime := filepath.Join(config.DataDir(), "fintrackd.json")
	defaultLog := filepath.Join(config.DataDir(), "fintrackd.out")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "127.0.0.1:8787", "HTTP listen address")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", time.Minute, "Polling interval")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonRuntime, "runtime-file", defaultRuntime, "File recording the running daemon's pid and address")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Output file for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}
	if flagDaemonDetach {
		return startDaemonDetached()
	}
	return runDaemonForeground()
}

func startDaemonDetached() error {
	if err := ensureDaemonNotRunning(flagDaemonRuntime); err != nil {
		return err
	}
	for _, dir := range []string{filepath.Dir(flagDaemonRuntime), filepath.Dir(flagDaemonLogFile)} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	//nolint:gosec // output path is configured by the local user
	out, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon output: %w", err)
	}
	defer func() { _ = out.Close() }()

	child := exec.Command(exe, append(filterDetachArg(os.Args[1:]), "--child")...) //nolint:gosec // re-executes this binary
	child.Stdout, child.Stderr = out, out
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title: "Reminder Daemon Started",
		Rows: [][]string{
			{"PID", strconv.Itoa(child.Process.Pid)},
			{"Status", "http://" + flagDaemonAddr + "/v1/status"},
			{"Runtime", flagDaemonRuntime},
			{"Output", flagDaemonLogFile},
		},
	}))
	return nil
}

func runDaemonForeground() error {
	if err := ensureDaemonNotRunning(flagDaemonRuntime); err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := os.MkdirAll(filepath.Dir(flagDaemonRuntime), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	if err := writeRuntime(flagDaemonRuntime, daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      flagDaemonAddr,
		StartedAt: time.Now(),
		Backend:   s.cfg.Storage.Backend,
	}); err != nil {
		return fmt.Errorf("write runtime file: %w", err)
	}
	defer func() { _ = os.Remove(flagDaemonRuntime) }()

	svc := daemon.New(daemon.Config{
		Backend:      s.cfg.Storage.Backend,
		Interval:     flagDaemonInterval,
		Addr:         flagDaemonAddr,
		EventsBuffer: flagDaemonEventsBuffer,
		DueWindow:    time.Duration(s.cfg.General.DueSoonDays) * 24 * time.Hour,
	}, s.ledger, s.log)

	s.log.Info("daemon starting",
		zap.String("addr", flagDaemonAddr),
		zap.Duration("interval", flagDaemonInterval),
		zap.String("backend", s.cfg.Storage.Backend),
	)
	fmt.Printf("  fintrack daemon listening on http://%s\n", flagDaemonAddr)
	fmt.Printf("  Checking %s storage every %s\n", s.cfg.Storage.Backend, flagDaemonInterval)
	fmt.Printf("  Stop with: fintrack daemon stop\n")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	rt, err := readRuntime(flagDaemonRuntime)
	if err != nil {
		fmt.Println("  Daemon: not running")
		return nil
	}
	if !processAlive(rt.PID) {
		fmt.Printf("  Daemon: stale runtime file (pid %d not alive)\n", rt.PID)
		return nil
	}

	rows := [][]string{
		{"PID", strconv.Itoa(rt.PID)},
		{"Address", "http://" + rt.Addr},
		{"Uptime", time.Since(rt.StartedAt).Round(time.Second).String()},
	}
	st, err := fetchDaemonStatus(rt.Addr)
	if err != nil {
		rows = append(rows, []string{"API", err.Error()})
	} else {
		lastPoll := "pending"
		if !st.LastPollAt.IsZero() {
			lastPoll = st.LastPollAt.Local().Format(time.RFC3339)
		}
		rows = append(rows,
			[]string{"Backend", st.Backend},
			[]string{"Polls", fmt.Sprintf("%d (last %s)", st.PollCount, lastPoll)},
			[]string{"---"},
			[]string{"Active Loans", strconv.Itoa(st.Summary.ActiveLoans)},
			[]string{"Due Soon", strconv.Itoa(st.Summary.DueSoonLoans)},
			[]string{"Overdue", strconv.Itoa(st.Summary.OverdueLoans)},
			[]string{"Total Debt", st.Summary.TotalDebt.StringFixed(2)},
			[]string{"Events", strconv.Itoa(st.EventCount)},
		)
		if st.LastError != "" {
			rows = append(rows, []string{"Last Error", st.LastError})
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{Title: "Reminder Daemon", Rows: rows}))
	return nil
}

// fetchDaemonStatus asks a running daemon for its /v1/status payload.
func fetchDaemonStatus(addr string) (daemon.Status, error) {
	var st daemon.Status
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status check
	if err != nil {
		return st, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response: %w", err)
	}
	return st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	rt, err := readRuntime(flagDaemonRuntime)
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(rt.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	for deadline := time.Now().Add(8 * time.Second); time.Now().Before(deadline); time.Sleep(150 * time.Millisecond) {
		if !processAlive(rt.PID) {
			_ = os.Remove(flagDaemonRuntime)
			fmt.Printf("  Stopped daemon (pid %d)\n", rt.PID)
			return nil
		}
	}
	return fmt.Errorf("daemon (pid %d) did not exit in time", rt.PID)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ensureDaemonNotRunning fails when the runtime file names a live process
// and clears it otherwise.
func ensureDaemonNotRunning(path string) error {
	st, err := readRuntime(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err == nil && processAlive(st.PID):
		return fmt.Errorf("daemon already running (pid %d, %s)", st.PID, st.Addr)
	}
	_ = os.Remove(path)
	return nil
}

func writeRuntime(path string, st daemonRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readRuntime(path string) (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // runtime path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parsing %s: %w", path, err)
	}
	if st.PID <= 0 {
		return st, fmt.Errorf("invalid pid in %s", path)
	}
	return st, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
