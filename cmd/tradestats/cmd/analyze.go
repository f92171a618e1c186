package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradestats/journal"
	"github.com/rustyeddy/tradestats/report"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file.csv]",
	Short: "Analyze journal performance",
	Long: `Run statistics, drawdown, time pattern and scoring analysis.

Trades come from the journal unless a CSV file is given, in which case it is
parsed directly and nothing is written to the journal.

Examples:
  tradestats analyze
  tradestats analyze --from 2024-01-01 --to 2024-03-31 --format org -o q1.org
  tradestats analyze history.csv --format json --grades`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeFormat string
	analyzeOutput string
	analyzeFrom   string
	analyzeTo     string
	analyzeGrades bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "output format: text, org or json")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the report to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "first close day to include (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "last close day to include (YYYY-MM-DD)")
	analyzeCmd.Flags().BoolVar(&analyzeGrades, "grades", false, "include per-trade grades")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	trades, source, err := loadTrades(cmd, args)
	if err != nil {
		return err
	}

	balance, err := cfg.Balance()
	if err != nil {
		return err
	}
	topts, err := cfg.TimeOptions()
	if err != nil {
		return err
	}

	run := report.New(trades, report.Options{
		Source:         source,
		InitialBalance: balance,
		TimeOptions:    topts,
		IncludeGrades:  analyzeGrades,
	})
	log.Info().
		Str("run_id", run.RunID).
		Int("trades", run.Stats.TotalTrades).
		Str("grade", run.Score.LetterGrade).
		Msg("analysis complete")

	if analyzeOutput != "" {
		if err := run.WriteFile(analyzeOutput, analyzeFormat); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Report written: %s\n", analyzeOutput)
		return nil
	}
	return run.Write(cmd.OutOrStdout(), analyzeFormat)
}

// loadTrades reads from a CSV file when one is named, otherwise from the
// journal, limited to the --from/--to close range.
func loadTrades(cmd *cobra.Command, args []string) ([]journal.TradeRecord, string, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, "", err
	}
	start, end, ranged, err := closeRange(loc)
	if err != nil {
		return nil, "", err
	}

	if len(args) == 1 {
		im := journal.NewCSVImporter(
			journal.WithColumnMapping(cfg.Import.ColumnMapping),
			journal.WithLocation(loc),
			journal.WithLogger(log),
		)
		trades, err := im.ImportFile(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("import %s: %w", args[0], err)
		}
		if ranged {
			trades = closedBetween(trades, start, end)
		}
		return trades, args[0], nil
	}

	j, err := openJournal()
	if err != nil {
		return nil, "", err
	}
	defer j.Close()

	var trades []journal.TradeRecord
	if ranged {
		trades, err = j.ListTradesClosedBetween(cmd.Context(), start, end)
	} else {
		trades, err = j.ListTrades(cmd.Context())
	}
	if err != nil {
		return nil, "", fmt.Errorf("query trades: %w", err)
	}
	return trades, cfg.Journal.DBPath, nil
}

// closeRange turns --from/--to into a half-open [start, end) range.
func closeRange(loc *time.Location) (start, end time.Time, ranged bool, err error) {
	if analyzeFrom == "" && analyzeTo == "" {
		return start, end, false, nil
	}

	start = time.Unix(0, 0).UTC()
	end = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	if analyzeFrom != "" {
		if start, _, err = dayBounds(loc, analyzeFrom); err != nil {
			return start, end, false, fmt.Errorf("--from: %w", err)
		}
	}
	if analyzeTo != "" {
		if _, end, err = dayBounds(loc, analyzeTo); err != nil {
			return start, end, false, fmt.Errorf("--to: %w", err)
		}
	}
	if !end.After(start) {
		return start, end, false, fmt.Errorf("--to %s is before --from %s", analyzeTo, analyzeFrom)
	}
	return start, end, true, nil
}

// closedBetween keeps trades closed in [start, end) for file input.
func closedBetween(trades []journal.TradeRecord, start, end time.Time) []journal.TradeRecord {
	var out []journal.TradeRecord
	for _, t := range trades {
		if t.IsClosed() && !t.CloseTime.Before(start) && t.CloseTime.Before(end) {
			out = append(out, t)
		}
	}
	return out
}
