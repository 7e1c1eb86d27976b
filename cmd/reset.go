package cmd

import (
	"fmt"

	"github.com/theirongolddev/fintrack/internal/ledger"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagResetYes   bool
	flagResetEmpty bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all saved data",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Do not ask for confirmation")
	resetCmd.Flags().BoolVar(&flagResetEmpty, "empty", false, "Start from an empty ledger instead of the sample data")
	rootCmd.AddCommand(resetCmd)
}

func runReset(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if !flagResetYes {
		confirm := false
		err := huh.NewConfirm().
			Title("Delete all fintrack data?").
			Description(fmt.Sprintf("Clears every record in the %s store.", s.cfg.Storage.Backend)).
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirm).
			Run()
		if err != nil || !confirm {
			fmt.Println("  Nothing was deleted.")
			return nil
		}
	}

	seed := ledger.Sample()
	if flagResetEmpty {
		seed = ledger.Empty()
	}
	if err := s.ledger.Reset(seed); err != nil {
		return err
	}
	if flagResetEmpty {
		// Persist the empty state so the sample data does not reappear.
		if err := s.ledger.Save(); err != nil {
			return fmt.Errorf("saving empty state: %w", err)
		}
	}
	fmt.Println("\n  All data deleted. Run `fintrack setup` to start again.")
	fmt.Println()
	return nil
}
