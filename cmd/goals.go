package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/budget"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagGoalName     string
	flagGoalTarget   string
	flagGoalDeadline string
	flagGoalAmount   string
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show savings goals and learning progress",
	RunE:  runGoals,
}

var goalsAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a savings goal",
	Example: `  fintrack goals add --name "New Bike" --target 90000 --deadline 2025-03-31`,
	RunE:    runGoalsAdd,
}

var goalsContributeCmd = &cobra.Command{
	Use:   "contribute <id>",
	Short: "Add money to a savings goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsContribute,
}

var goalsLearnCmd = &cobra.Command{
	Use:   "learn <course-id>",
	Short: "Continue a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsLearn,
}

func init() {
	goalsAddCmd.Flags().StringVar(&flagGoalName, "name", "", "Goal name")
	goalsAddCmd.Flags().StringVar(&flagGoalTarget, "target", "", "Target amount")
	goalsAddCmd.Flags().StringVar(&flagGoalDeadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	_ = goalsAddCmd.MarkFlagRequired("name")
	_ = goalsAddCmd.MarkFlagRequired("target")

	goalsContributeCmd.Flags().StringVar(&flagGoalAmount, "amount", "", "Amount to add")
	_ = goalsContributeCmd.MarkFlagRequired("amount")

	goalsCmd.AddCommand(goalsAddCmd, goalsContributeCmd, goalsLearnCmd)
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	state := s.ledger.State()
	now := nowFunc()

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS GOALS"))
	fmt.Println()

	if len(state.SavingsGoals) == 0 {
		fmt.Println("  No savings goals. Add one with `fintrack goals add`.")
	} else {
		table := cli.Table{
			Headers: []string{"ID", "Goal", "Saved", "Target", "Progress", "Deadline"},
		}
		for _, g := range state.SavingsGoals {
			pct := budget.GoalProgress(g)
			pf, _ := pct.Float64()
			saved := s.money(g.Current)
			if !state.User.ShowBalance {
				saved = cli.Mask
			}
			deadline := "-"
			if !g.Deadline.IsZero() {
				deadline = cli.FormatDate(g.Deadline) + " (" + cli.FormatDue(g.Deadline, now) + ")"
			}
			progress := cli.RenderProgressBar(pf, 12) + " " + cli.FormatPercent(pct)
			if budget.GoalReached(g) {
				progress = cli.RenderLevel("good", progress)
			}
			table.Rows = append(table.Rows, []string{g.ID, g.Name, saved, s.money(g.Target), progress, deadline})
		}
		fmt.Print(cli.RenderTable(table))
	}

	if len(state.Courses) > 0 {
		table := cli.Table{
			Title:   "Learning",
			Headers: []string{"ID", "Course", "Modules", "Progress"},
		}
		for _, c := range state.Courses {
			progress := cli.RenderProgressBar(float64(c.Progress), 12) + fmt.Sprintf(" %d%%", c.Progress)
			if c.Completed {
				progress = cli.RenderLevel("good", progress)
			}
			table.Rows = append(table.Rows, []string{
				c.ID, c.Title, fmt.Sprintf("%d/%d", c.CompletedModules, c.Modules), progress,
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(table))

		st := state.Stats
		fmt.Printf("\n  %d courses done · %.1f hours · %d-day streak · %s points · %d badges\n",
			st.CoursesCompleted, st.TotalHours, st.StreakDays, formatNumber(int64(st.Points)), len(state.Achievements))
	}
	return nil
}

func runGoalsAdd(_ *cobra.Command, _ []string) error {
	target, err := cli.ParseAmount(flagGoalTarget)
	if err != nil {
		return fmt.Errorf("--target: %w", err)
	}
	deadline, err := cli.ParseDate(flagGoalDeadline)
	if err != nil {
		return err
	}
	g := model.SavingsGoal{
		ID:       model.NewID(),
		Name:     strings.TrimSpace(flagGoalName),
		Target:   target,
		Deadline: deadline,
	}
	if err := model.Validate(g); err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.dispatch(ledger.AddSavingsGoal{Goal: g}); err != nil {
		return err
	}
	fmt.Printf("\n  Added goal %s: %s (id %s)\n\n", g.Name, s.money(g.Target), g.ID)
	return nil
}

func runGoalsContribute(_ *cobra.Command, args []string) error {
	amount, err := cli.ParseAmount(flagGoalAmount)
	if err != nil {
		return fmt.Errorf("--amount: %w", err)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	state, err := s.dispatch(ledger.ContributeToGoal{GoalID: args[0], Amount: amount})
	if err != nil {
		return err
	}
	for _, g := range state.SavingsGoals {
		if g.ID != args[0] {
			continue
		}
		fmt.Printf("\n  %s: %s of %s (%s)\n", g.Name, s.money(g.Current), s.money(g.Target),
			cli.FormatPercent(budget.GoalProgress(g)))
		if budget.GoalReached(g) {
			fmt.Println(cli.RenderLevel("good", "  Goal reached!"))
		}
		fmt.Println()
	}
	return nil
}

func runGoalsLearn(_ *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	act, err := ledger.ContinueCourse(s.ledger.State(), args[0])
	if err != nil {
		return err
	}
	state, err := s.dispatch(act)
	if err != nil {
		return err
	}
	for _, c := range state.Courses {
		if c.ID == args[0] {
			fmt.Printf("\n  %s: %d%% (%d/%d modules)\n\n", c.Title, c.Progress, c.CompletedModules, c.Modules)
		}
	}
	return nil
}
