package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Balances, debt, budget and savings at a glance",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	state := s.ledger.State()
	if !state.OnboardingComplete && !flagQuiet {
		fmt.Println("\n  Showing sample data. Run `fintrack setup` to enter your own.")
	}

	now := time.Now()
	sum := ledger.Summarize(state, now, time.Duration(s.cfg.General.DueSoonDays)*24*time.Hour)
	u := state.User
	balance := func(v string) string {
		if !u.ShowBalance {
			return cli.Mask
		}
		return v
	}

	title := "FINTRACK"
	if u.Name != "" {
		title += "  " + u.Name
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	rows := [][]string{
		{"Total Balance", balance(s.money(u.TotalBalance))},
		{"Monthly Income", s.money(u.MonthlyIncome)},
		{"Monthly Expenses", s.money(u.MonthlyExpenses)},
		{"---"},
		{"Active Loans", formatNumber(int64(sum.ActiveLoans))},
		{"Total Debt", s.money(sum.TotalDebt)},
		{"Monthly EMI", s.money(sum.MonthlyEMI)},
		{"Average Rate", cli.FormatRate(sum.AverageRate)},
		{"Interest Remaining", s.money(sum.InterestRemaining)},
		{"---"},
		{"Budget Spent", fmt.Sprintf("%s of %s (%s)",
			s.money(sum.Budget.Spent), s.money(sum.Budget.Allocated), cli.FormatPercent(sum.Budget.PercentSpent))},
		{"Budget Remaining", cli.RenderLevel(string(sum.Budget.Level), s.money(sum.Budget.Remaining))},
		{"Saved Toward Goals", fmt.Sprintf("%s of %s (%s)",
			balance(s.money(sum.SavingsCurrent)), s.money(sum.SavingsTarget), cli.FormatPercent(sum.SavingsProgress))},
		{"---"},
		{"This Month In", s.money(sum.MonthIncome)},
		{"This Month Out", s.money(sum.MonthExpenses)},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(sum.Overdue)+len(sum.DueSoon) > 0 {
		fmt.Println()
		for _, l := range sum.Overdue {
			fmt.Println(cli.RenderLevel("danger", fmt.Sprintf("  %s · %s  %s overdue since %s",
				l.Bank, l.Type, s.money(l.Account.MonthlyPayment), cli.FormatDate(l.Account.NextDueDate))))
		}
		for _, l := range sum.DueSoon {
			fmt.Println(cli.RenderLevel("warning", fmt.Sprintf("  %s · %s  %s %s",
				l.Bank, l.Type, s.money(l.Account.MonthlyPayment), cli.FormatDue(l.Account.NextDueDate, now))))
		}
	}
	return nil
}
