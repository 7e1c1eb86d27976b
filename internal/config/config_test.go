package config

import (
	"os"
	"path/filepath"
	"testing"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{"STORAGE_BACKEND", "CURRENCY", "PRECISION", "DUE_SOON_DAYS", "MONTHLY_LIMIT", "LOG_LEVEL"} {
		t.Setenv(EnvPrefix+k, "")
	}
	return dir
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	useTempConfig(t)

	if Exists() {
		t.Fatal("Exists() = true before any save")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.Storage.Backend != def.Storage.Backend || cfg.General.DueSoonDays != 7 {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := useTempConfig(t)

	cfg := DefaultConfig()
	cfg.General.Name = "Arjun"
	cfg.General.Precision = 2
	cfg.Storage.Backend = BackendMemory
	limit := 45000.0
	cfg.Budget.MonthlyLimit = &limit

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if want := filepath.Join(dir, "fintrack", "config.toml"); Path() != want {
		t.Errorf("Path() = %s, want %s", Path(), want)
	}
	if !Exists() {
		t.Fatal("Exists() = false after save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.General.Name != "Arjun" || got.General.Precision != 2 || got.Storage.Backend != BackendMemory {
		t.Errorf("Load() = %+v", got)
	}
	if got.Budget.MonthlyLimit == nil || *got.Budget.MonthlyLimit != 45000 {
		t.Errorf("MonthlyLimit = %v, want 45000", got.Budget.MonthlyLimit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	useTempConfig(t)
	t.Setenv(EnvPrefix+"STORAGE_BACKEND", "redis")
	t.Setenv(EnvPrefix+"DUE_SOON_DAYS", "3")
	t.Setenv(EnvPrefix+"CURRENCY", "$")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Backend != BackendRedis {
		t.Errorf("Backend = %q, want redis", cfg.Storage.Backend)
	}
	if cfg.General.DueSoonDays != 3 {
		t.Errorf("DueSoonDays = %d, want 3", cfg.General.DueSoonDays)
	}
	if cfg.General.Currency != "$" {
		t.Errorf("Currency = %q, want $", cfg.General.Currency)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	useTempConfig(t)

	t.Setenv(EnvPrefix+"PRECISION", "two")
	if _, err := Load(); err == nil {
		t.Error("Load() with non-numeric precision succeeded")
	}

	t.Setenv(EnvPrefix+"PRECISION", "")
	t.Setenv(EnvPrefix+"STORAGE_BACKEND", "postgres")
	if _, err := Load(); err == nil {
		t.Error("Load() with unknown backend succeeded")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	useTempConfig(t)
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(), []byte("[general\nname = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("Load() of malformed TOML succeeded")
	}
}

func TestStoragePaths(t *testing.T) {
	useTempConfig(t)

	var sc StorageConfig
	if got := sc.DBPath(); filepath.Base(got) != "fintrack.db" {
		t.Errorf("DBPath() = %s", got)
	}
	sc.Path = "/tmp/custom.db"
	if got := sc.DBPath(); got != "/tmp/custom.db" {
		t.Errorf("DBPath() = %s, want configured path", got)
	}
}
