// Package config loads and saves the fintrack TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FINTRACK_"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all fintrack configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Storage    StorageConfig    `toml:"storage"`
	Budget     BudgetConfig     `toml:"budget"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds display and reminder preferences.
type GeneralConfig struct {
	Name        string `toml:"name,omitempty"`
	Currency    string `toml:"currency"`
	Precision   int32  `toml:"precision"`
	DueSoonDays int    `toml:"due_soon_days"`
}

// StorageConfig selects and addresses the persistence backend.
type StorageConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path,omitempty"`
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	KeyPrefix     string `toml:"key_prefix,omitempty"`
}

// BudgetConfig holds the overall monthly spending limit.
type BudgetConfig struct {
	MonthlyLimit *float64 `toml:"monthly_limit,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig controls the structured log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency:    "₹",
			Precision:   0,
			DueSoonDays: 7,
		},
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			RedisAddr: "localhost:6379",
			KeyPrefix: "fintrack:",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fintrack")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant directory for the database and logs.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fintrack")
}

// DBPath returns the SQLite database location, honoring the configured path.
func (c StorageConfig) DBPath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(DataDir(), "fintrack.db")
}

// LogPath returns the log file location, honoring the configured path.
func (c LogConfig) LogPath() string {
	if c.File != "" {
		return c.File
	}
	return filepath.Join(DataDir(), "fintrack.log")
}

// Load reads the config file, returning defaults if it doesn't exist.
// A .env file in the working directory is loaded first, then FINTRACK_*
// environment variables override file values.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Validate rejects settings the rest of the program cannot honor.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.General.Precision < 0 || c.General.Precision > 4 {
		return fmt.Errorf("precision %d out of range 0-4", c.General.Precision)
	}
	if c.General.DueSoonDays < 0 {
		return fmt.Errorf("due_soon_days must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.General.Name, "NAME")
	setString(&cfg.General.Currency, "CURRENCY")
	setString(&cfg.Storage.Backend, "STORAGE_BACKEND")
	setString(&cfg.Storage.Path, "STORAGE_PATH")
	setString(&cfg.Storage.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Storage.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.Appearance.Theme, "THEME")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.File, "LOG_FILE")

	if v, ok := lookup("PRECISION"); ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("parsing %sPRECISION: %w", EnvPrefix, err)
		}
		cfg.General.Precision = int32(n)
	}
	if v, ok := lookup("DUE_SOON_DAYS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %sDUE_SOON_DAYS: %w", EnvPrefix, err)
		}
		cfg.General.DueSoonDays = n
	}
	if v, ok := lookup("REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %sREDIS_DB: %w", EnvPrefix, err)
		}
		cfg.Storage.RedisDB = n
	}
	if v, ok := lookup("MONTHLY_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing %sMONTHLY_LIMIT: %w", EnvPrefix, err)
		}
		cfg.Budget.MonthlyLimit = &f
	}
	return nil
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}
