package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/budget"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagCategoryName string
	flagAllocated    string
	flagIcon         string
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show spending against each budget category",
	RunE:  runBudget,
}

var budgetAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a budget category",
	Example: `  fintrack budget add --name Groceries --allocated 6000 --icon 🛒`,
	RunE:    runBudgetAdd,
}

var budgetSpendCmd = &cobra.Command{
	Use:     "spend <category>",
	Short:   "Record an expense against a budget category",
	Example: `  fintrack budget spend "Food & Dining" --amount 350 --description Lunch`,
	Args:    cobra.ExactArgs(1),
	RunE:    runBudgetSpend,
}

func init() {
	budgetAddCmd.Flags().StringVar(&flagCategoryName, "name", "", "Category name")
	budgetAddCmd.Flags().StringVar(&flagAllocated, "allocated", "", "Monthly allocation")
	budgetAddCmd.Flags().StringVar(&flagIcon, "icon", "", "Icon shown next to the name")
	_ = budgetAddCmd.MarkFlagRequired("name")
	_ = budgetAddCmd.MarkFlagRequired("allocated")

	budgetSpendCmd.Flags().StringVar(&flagTxAmount, "amount", "", "Amount spent")
	budgetSpendCmd.Flags().StringVar(&flagTxDescription, "description", "", "What it was for")
	budgetSpendCmd.Flags().StringVar(&flagTxDate, "date", "", "Date (YYYY-MM-DD, default today)")
	_ = budgetSpendCmd.MarkFlagRequired("amount")

	budgetCmd.AddCommand(budgetAddCmd, budgetSpendCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	state := s.ledger.State()
	if len(state.BudgetCategories) == 0 {
		fmt.Println("\n  No budget categories. Add one with `fintrack budget add`.")
		return nil
	}

	table := cli.Table{
		Headers: []string{"Category", "Spent", "Allocated", "Remaining", "Used"},
	}
	for _, c := range state.BudgetCategories {
		level, pct := budget.CategoryStatus(c)
		pf, _ := pct.Float64()
		name := c.Name
		if c.Icon != "" {
			name = c.Icon + " " + c.Name
		}
		table.Rows = append(table.Rows, []string{
			name,
			s.money(c.Spent),
			s.money(c.Allocated),
			cli.RenderLevel(string(level), s.money(c.Allocated.Sub(c.Spent))),
			cli.RenderProgressBar(pf, 12) + " " + cli.RenderLevel(string(level), cli.FormatPercent(pct)),
		})
	}

	o := budget.Overview(state.BudgetCategories)
	table.Rows = append(table.Rows,
		[]string{"---"},
		[]string{"Total", s.money(o.Spent), s.money(o.Allocated),
			cli.RenderLevel(string(o.Level), s.money(o.Remaining)), cli.FormatPercent(o.PercentSpent)},
	)

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET"))
	fmt.Println()
	fmt.Print(cli.RenderTable(table))

	if limit := s.cfg.Budget.MonthlyLimit; limit != nil {
		sum := ledger.Summarize(state, nowFunc(), 0)
		level, pct := budget.Status(decimal.NewFromFloat(*limit), sum.MonthExpenses)
		fmt.Printf("\n  Monthly limit %s: %s spent this month (%s)\n",
			s.money(decimal.NewFromFloat(*limit)), s.money(sum.MonthExpenses),
			cli.RenderLevel(string(level), cli.FormatPercent(pct)))
	}
	return nil
}

func runBudgetAdd(_ *cobra.Command, _ []string) error {
	allocated, err := cli.ParseAmount(flagAllocated)
	if err != nil {
		return fmt.Errorf("--allocated: %w", err)
	}
	c := model.BudgetCategory{
		ID:        model.NewID(),
		Name:      strings.TrimSpace(flagCategoryName),
		Allocated: allocated,
		Icon:      strings.TrimSpace(flagIcon),
	}
	if err := model.Validate(c); err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	for _, existing := range s.ledger.State().BudgetCategories {
		if strings.EqualFold(existing.Name, c.Name) {
			return fmt.Errorf("category %q already exists", existing.Name)
		}
	}
	if _, err := s.dispatch(ledger.AddBudgetCategory{Category: c}); err != nil {
		return err
	}
	fmt.Printf("\n  Added %s with %s a month\n\n", c.Name, s.money(c.Allocated))
	return nil
}

func runBudgetSpend(_ *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var category model.BudgetCategory
	found := false
	for _, c := range s.ledger.State().BudgetCategories {
		if strings.EqualFold(c.Name, args[0]) {
			category, found = c, true
			break
		}
	}
	if !found {
		return fmt.Errorf("budget category %q: %w", args[0], ledger.ErrNotFound)
	}

	desc := flagTxDescription
	if desc == "" {
		desc = category.Name
	}
	tx, err := buildTransaction(model.Expense, flagTxAmount, category.Name, desc, flagTxDate)
	if err != nil {
		return err
	}
	state, err := s.dispatch(ledger.TransactionActions(s.ledger.State(), tx)...)
	if err != nil {
		return err
	}

	for _, c := range state.BudgetCategories {
		if c.ID == category.ID {
			level, pct := budget.CategoryStatus(c)
			fmt.Printf("\n  Spent %s on %s: %s of %s used (%s)\n\n",
				s.money(tx.Amount), c.Name, s.money(c.Spent), s.money(c.Allocated),
				cli.RenderLevel(string(level), cli.FormatPercent(pct)))
		}
	}
	return nil
}
