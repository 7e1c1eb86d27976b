package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/amortize"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagLoanType   string
	flagLoanBank   string
	flagPayType    string
	flagPayAmount  string
	flagLoanStatus string
)

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "List loans and their repayment status",
	RunE:  runLoans,
}

var loansAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Track a new loan",
	Example: `  fintrack loans add --type "Car Loan" --bank ICICI --principal 600000 --rate 9.2 --months 60`,
	RunE:    runLoansAdd,
}

var loansPayCmd = &cobra.Command{
	Use:   "pay <id>",
	Short: "Record a payment against a loan",
	Example: `  fintrack loans pay 1                     # monthly installment
  fintrack loans pay 1 --type extra --amount 20000
  fintrack loans pay 1 --type full`,
	Args: cobra.ExactArgs(1),
	RunE: runLoansPay,
}

var loansCloseCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Mark a fully repaid loan as paid",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoansClose,
}

func init() {
	loansCmd.Flags().StringVar(&flagLoanStatus, "status", "", "Only show loans with this status (active, overdue, paid)")

	loansAddCmd.Flags().StringVar(&flagLoanType, "type", "Personal Loan", "Loan type")
	loansAddCmd.Flags().StringVar(&flagLoanBank, "bank", "", "Lender")
	loansAddCmd.Flags().StringVar(&flagPrincipal, "principal", "", "Loan amount")
	loansAddCmd.Flags().StringVar(&flagRate, "rate", "", "Annual interest rate in percent")
	loansAddCmd.Flags().IntVar(&flagMonths, "months", 0, "Tenure in months")
	loansAddCmd.Flags().StringVar(&flagFirstDue, "first-due", "", "First due date (YYYY-MM-DD, default a month from today)")
	_ = loansAddCmd.MarkFlagRequired("bank")
	_ = loansAddCmd.MarkFlagRequired("principal")
	_ = loansAddCmd.MarkFlagRequired("rate")
	_ = loansAddCmd.MarkFlagRequired("months")

	loansPayCmd.Flags().StringVar(&flagPayType, "type", string(ledger.PayInstallment), "Payment type: emi, extra or full")
	loansPayCmd.Flags().StringVar(&flagPayAmount, "amount", "", "Amount for an extra payment")

	loansCmd.AddCommand(loansAddCmd, loansPayCmd, loansCloseCmd)
	rootCmd.AddCommand(loansCmd)
}

func runLoans(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	state := s.ledger.State()
	now := time.Now()

	var loans []model.Loan
	for _, l := range state.Loans {
		if flagLoanStatus == "" || strings.EqualFold(string(l.Status), flagLoanStatus) {
			loans = append(loans, l)
		}
	}
	if len(loans) == 0 {
		fmt.Println("\n  No loans found. Add one with `fintrack loans add`.")
		return nil
	}

	table := cli.Table{
		Headers: []string{"ID", "Loan", "Lender", "Balance", "EMI", "Rate", "Left", "Next Due", "Repaid"},
	}
	for _, l := range loans {
		acct := l.Account
		due := cli.FormatDate(acct.NextDueDate)
		switch {
		case l.Status == model.LoanPaid:
			due = "-"
		case l.Status == model.LoanOverdue:
			due = cli.RenderLevel("danger", due)
		case amortize.DueSoon(acct, now, time.Duration(s.cfg.General.DueSoonDays)*24*time.Hour):
			due = cli.RenderLevel("warning", due)
		}
		pct, _ := amortize.Progress(acct).Float64()
		table.Rows = append(table.Rows, []string{
			l.ID,
			l.Type,
			l.Bank,
			s.money(acct.CurrentBalance),
			s.money(acct.MonthlyPayment),
			cli.FormatRate(acct.AnnualRatePercent),
			cli.FormatMonths(acct.RemainingMonths),
			due,
			cli.RenderProgressBar(pct, 10) + fmt.Sprintf(" %3.0f%%", pct),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("LOANS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(table))
	return nil
}

func runLoansAdd(_ *cobra.Command, _ []string) error {
	terms, err := parseTerms(flagPrincipal, flagRate, flagMonths)
	if err != nil {
		return err
	}
	due, err := cli.ParseDate(flagFirstDue)
	if err != nil {
		return err
	}
	if due.IsZero() {
		y, m, d := time.Now().Date()
		due = amortize.AddMonth(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}
	loan, err := model.NewLoan(flagLoanType, strings.TrimSpace(flagLoanBank), terms, due)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.dispatch(ledger.AddLoan{Loan: loan}); err != nil {
		return err
	}
	fmt.Printf("\n  Added %s from %s (id %s)\n", loan.Type, loan.Bank, loan.ID)
	fmt.Printf("  EMI %s for %s, first due %s\n\n",
		s.money(loan.Account.MonthlyPayment), cli.FormatMonths(terms.TermMonths), cli.FormatDate(due))
	return nil
}

func runLoansPay(_ *cobra.Command, args []string) error {
	kind, err := ledger.ParsePaymentKind(flagPayType)
	if err != nil {
		return err
	}
	amount := decimal.Zero
	if kind == ledger.PayExtra {
		if amount, err = cli.ParseAmount(flagPayAmount); err != nil {
			return fmt.Errorf("--amount: %w", err)
		}
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	actions, err := ledger.PaymentActions(s.ledger.State(), args[0], kind, amount)
	if err != nil {
		return err
	}
	state, err := s.dispatch(actions...)
	if err != nil {
		return err
	}

	l, _ := state.Loan(args[0])
	fmt.Printf("\n  Payment recorded on %s · %s\n", l.Bank, l.Type)
	if l.Status == model.LoanPaid {
		fmt.Println(cli.RenderLevel("good", "  Loan closed. Congratulations!"))
		fmt.Println()
		return nil
	}
	fmt.Printf("  Balance %s, %s left, next due %s\n\n",
		s.money(l.Account.CurrentBalance), cli.FormatMonths(l.Account.RemainingMonths), cli.FormatDate(l.Account.NextDueDate))
	return nil
}

func runLoansClose(_ *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.dispatch(ledger.MarkLoanPaid{LoanID: args[0]}); err != nil {
		if errors.Is(err, ledger.ErrOutstandingBalance) {
			return fmt.Errorf("%w; pay it off with `fintrack loans pay %s --type full`", err, args[0])
		}
		return err
	}
	fmt.Printf("\n  Loan %s marked as paid\n\n", args[0])
	return nil
}
