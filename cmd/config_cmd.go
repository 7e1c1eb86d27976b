package cmd

import (
	"fmt"

	"github.com/theirongolddev/fintrack/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.Name != "" {
		fmt.Printf("    Name:          %s\n", cfg.General.Name)
	}
	fmt.Printf("    Currency:      %s\n", cfg.General.Currency)
	fmt.Printf("    Precision:     %d\n", cfg.General.Precision)
	fmt.Printf("    Due-soon days: %d\n", cfg.General.DueSoonDays)
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Backend: %s\n", cfg.Storage.Backend)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		fmt.Printf("    Path:    %s\n", cfg.Storage.DBPath())
	case config.BackendRedis:
		fmt.Printf("    Address: %s (db %d)\n", cfg.Storage.RedisAddr, cfg.Storage.RedisDB)
		if cfg.Storage.RedisPassword != "" {
			fmt.Printf("    Password: %s\n", maskSecret(cfg.Storage.RedisPassword))
		}
		fmt.Printf("    Prefix:  %s\n", cfg.Storage.KeyPrefix)
	}
	fmt.Println()

	fmt.Println("  [Budget]")
	if cfg.Budget.MonthlyLimit != nil {
		fmt.Printf("    Monthly limit: %s%.0f\n", cfg.General.Currency, *cfg.Budget.MonthlyLimit)
	} else {
		fmt.Println("    Monthly limit: not set")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Printf("    File:  %s\n", cfg.Log.LogPath())

	return nil
}

func maskSecret(s string) string {
	if len(s) > 8 {
		return s[:2] + "..." + s[len(s)-2:]
	}
	return "****"
}
