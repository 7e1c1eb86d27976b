package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagTxKind        string
	flagTxAmount      string
	flagTxCategory    string
	flagTxDescription string
	flagTxDate        string
	flagTxLimit       int
	flagTxListKind    string
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record and list income and expenses",
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Example: `  fintrack tx add --type expense --amount 425 --category Food --description "Food delivery"
  fintrack tx add --type income --amount 12000 --category Freelance --description "Logo project"`,
	RunE: runTxAdd,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent transactions",
	RunE:  runTxList,
}

func init() {
	txAddCmd.Flags().StringVar(&flagTxKind, "type", string(model.Expense), "income or expense")
	txAddCmd.Flags().StringVar(&flagTxAmount, "amount", "", "Amount")
	txAddCmd.Flags().StringVar(&flagTxCategory, "category", "", "Category")
	txAddCmd.Flags().StringVar(&flagTxDescription, "description", "", "Description")
	txAddCmd.Flags().StringVar(&flagTxDate, "date", "", "Date (YYYY-MM-DD, default today)")
	_ = txAddCmd.MarkFlagRequired("amount")
	_ = txAddCmd.MarkFlagRequired("category")
	_ = txAddCmd.MarkFlagRequired("description")

	txListCmd.Flags().IntVarP(&flagTxLimit, "limit", "l", 20, "Number of transactions to show (0 for all)")
	txListCmd.Flags().StringVar(&flagTxListKind, "type", "", "Only show income or expense")

	txCmd.AddCommand(txAddCmd, txListCmd)
	rootCmd.AddCommand(txCmd)
}

// buildTransaction validates command input into a new transaction.
func buildTransaction(kind model.TransactionKind, amount, category, description, date string) (model.Transaction, error) {
	amt, err := cli.ParseAmount(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("--amount: %w", err)
	}
	when, err := cli.ParseDate(date)
	if err != nil {
		return model.Transaction{}, err
	}
	if when.IsZero() {
		y, m, d := nowFunc().Date()
		when = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	tx := model.Transaction{
		ID:          model.NewID(),
		Kind:        kind,
		Amount:      amt,
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		Date:        when,
	}
	return tx, model.Validate(tx)
}

func parseKind(s string) (model.TransactionKind, error) {
	switch k := model.TransactionKind(strings.ToLower(s)); k {
	case model.Income, model.Expense:
		return k, nil
	}
	return "", fmt.Errorf("unknown transaction type %q (want income or expense)", s)
}

func runTxAdd(_ *cobra.Command, _ []string) error {
	kind, err := parseKind(flagTxKind)
	if err != nil {
		return err
	}
	tx, err := buildTransaction(kind, flagTxAmount, flagTxCategory, flagTxDescription, flagTxDate)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	actions := ledger.TransactionActions(s.ledger.State(), tx)
	if _, err := s.dispatch(actions...); err != nil {
		return err
	}
	fmt.Printf("\n  Recorded %s of %s (%s)\n", tx.Kind, s.money(tx.Amount), tx.Category)
	if len(actions) > 1 {
		fmt.Printf("  Counted against the %s budget\n", tx.Category)
	}
	fmt.Println()
	return nil
}

func runTxList(_ *cobra.Command, _ []string) error {
	var kind model.TransactionKind
	if flagTxListKind != "" {
		var err error
		if kind, err = parseKind(flagTxListKind); err != nil {
			return err
		}
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	table := cli.Table{
		Headers: []string{"Date", "Description", "Category", "Amount"},
	}
	for _, tx := range s.ledger.State().Transactions {
		if kind != "" && tx.Kind != kind {
			continue
		}
		if flagTxLimit > 0 && len(table.Rows) >= flagTxLimit {
			break
		}
		amount := "+" + s.money(tx.Amount)
		level := "good"
		if tx.Kind == model.Expense {
			amount, level = "-"+s.money(tx.Amount), "danger"
		}
		table.Rows = append(table.Rows, []string{
			cli.FormatDate(tx.Date),
			tx.Description,
			tx.Category,
			cli.RenderLevel(level, amount),
		})
	}

	if len(table.Rows) == 0 {
		fmt.Println("\n  No transactions yet. Add one with `fintrack tx add`.")
		return nil
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("TRANSACTIONS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(table))
	return nil
}
