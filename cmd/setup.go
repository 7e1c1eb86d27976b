package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/tui"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	state := s.ledger.State()
	v := &tui.OnboardingValues{
		Name:  s.cfg.General.Name,
		Theme: s.cfg.Appearance.Theme,
	}
	if state.OnboardingComplete {
		v.Name = state.User.Name
	}

	fmt.Println()
	fmt.Println("  Welcome to fintrack!")
	fmt.Println()

	if err := tui.NewOnboardingForm(v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled. Nothing was changed.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	profile, err := v.Profile()
	if err != nil {
		return err
	}
	if _, err := s.dispatch(ledger.CompleteOnboarding{Profile: profile}); err != nil {
		return err
	}

	s.cfg.General.Name = strings.TrimSpace(v.Name)
	if theme.Valid(v.Theme) {
		s.cfg.Appearance.Theme = v.Theme
	}
	if err := config.Save(s.cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `fintrack setup` anytime to update your profile.")
	fmt.Println()
	return nil
}
