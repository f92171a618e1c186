package cmd

import (
	"fmt"
	"io"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/spf13/cobra"
)

var gradeCmd = &cobra.Command{
	Use:   "grade [trade-id]",
	Short: "Grade journal trades A through F",
	Long: `Grade every closed trade on profitability, duration and setup, then
print the grade distribution. With a trade ID only that trade is graded,
scored against the rest of the journal.

Examples:
  tradestats grade
  tradestats grade 01HQ3Z8K4M2N6P7R9S0T1V2W3X`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGrade,
}

func init() {
	rootCmd.AddCommand(gradeCmd)
}

func runGrade(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTrades(cmd.Context())
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	scorer := analytics.NewPerformanceScorer(trades)
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		rec, err := j.GetTrade(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get trade: %w", err)
		}
		if !rec.IsClosed() {
			return fmt.Errorf("trade %s is still open", rec.TradeID)
		}
		printGrade(out, scorer.GradeTrade(rec))
		return nil
	}

	grades := scorer.GradeAll()
	for _, g := range grades {
		printGrade(out, g)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Grade Distribution")
	dist := analytics.GradeDistribution(grades)
	for _, letter := range analytics.Grades {
		c := dist[letter]
		fmt.Fprintf(out, "  %s: %3d (%5.1f%%)\n", letter, c.Count, c.Pct)
	}
	return nil
}

func printGrade(w io.Writer, g analytics.TradeGrade) {
	fmt.Fprintf(w, "%-4s %6.1f  %s\n", g.Grade, g.Score, g.Summary)
	for _, f := range g.Feedback {
		fmt.Fprintf(w, "       - %s\n", f)
	}
}
