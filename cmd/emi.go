package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/fintrack/internal/amortize"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagPrincipal string
	flagRate      string
	flagMonths    int
	flagSchedule  bool
	flagPrecision int32
	flagFirstDue  string
)

var emiCmd = &cobra.Command{
	Use:   "emi",
	Short: "Calculate the monthly installment for a loan",
	Example: `  fintrack emi --principal 500000 --rate 12.5 --months 28
  fintrack emi --principal 500000 --rate 12.5 --months 28 --schedule --first-due 2024-08-05`,
	RunE: runEMI,
}

func init() {
	emiCmd.Flags().StringVar(&flagPrincipal, "principal", "", "Loan amount")
	emiCmd.Flags().StringVar(&flagRate, "rate", "", "Annual interest rate in percent")
	emiCmd.Flags().IntVar(&flagMonths, "months", 0, "Tenure in months")
	emiCmd.Flags().BoolVar(&flagSchedule, "schedule", false, "Print the month-by-month repayment schedule")
	emiCmd.Flags().Int32Var(&flagPrecision, "precision", -1, "Decimal places (default from config)")
	emiCmd.Flags().StringVar(&flagFirstDue, "first-due", "", "First due date for the schedule (YYYY-MM-DD)")
	_ = emiCmd.MarkFlagRequired("principal")
	_ = emiCmd.MarkFlagRequired("rate")
	_ = emiCmd.MarkFlagRequired("months")
	rootCmd.AddCommand(emiCmd)
}

func runEMI(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	places := cfg.General.Precision
	if flagPrecision >= 0 {
		places = flagPrecision
	}

	terms, err := parseTerms(flagPrincipal, flagRate, flagMonths)
	if err != nil {
		return err
	}
	res, err := amortize.ComputeWithPrecision(terms, places)
	if err != nil {
		return err
	}
	money := func(d decimal.Decimal) string { return cli.Money(d, cfg.General.Currency, places) }

	fmt.Println()
	fmt.Println(cli.RenderTitle("EMI CALCULATOR"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Loan", "Amount"},
		Rows: [][]string{
			{"Principal", money(terms.Principal)},
			{"Rate", cli.FormatRate(terms.AnnualRatePercent)},
			{"Tenure", cli.FormatMonths(terms.TermMonths)},
			{"---"},
			{"Monthly EMI", money(res.MonthlyPayment)},
			{"Total Payment", money(res.TotalPayment)},
			{"Total Interest", money(res.TotalInterest)},
		},
	}))

	if !flagSchedule {
		return nil
	}

	firstDue, err := cli.ParseDate(flagFirstDue)
	if err != nil {
		return err
	}
	if firstDue.IsZero() {
		y, m, d := time.Now().Date()
		firstDue = amortize.AddMonth(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}
	rows, err := amortize.Schedule(terms, firstDue, places)
	if err != nil {
		return err
	}

	table := cli.Table{
		Title:   "Repayment Schedule",
		Headers: []string{"#", "Due", "Payment", "Principal", "Interest", "Balance"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", r.Period),
			cli.FormatDate(r.DueDate),
			money(r.Payment),
			money(r.Principal),
			money(r.Interest),
			money(r.Remaining),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(table))
	return nil
}

// parseTerms reads loan terms from command flags.
func parseTerms(principal, rate string, months int) (amortize.LoanTerms, error) {
	p, err := cli.ParseAmount(principal)
	if err != nil {
		return amortize.LoanTerms{}, fmt.Errorf("--principal: %w", err)
	}
	r, err := decimal.NewFromString(rate)
	if err != nil {
		return amortize.LoanTerms{}, fmt.Errorf("--rate: %q is not a number", rate)
	}
	terms := amortize.LoanTerms{Principal: p, AnnualRatePercent: r, TermMonths: months}
	return terms, terms.Validate()
}
