package cmd

import (
	"fmt"

	"github.com/rustyeddy/tradestats/journal"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>...",
	Short: "Import trades from broker CSV exports",
	Long: `Parse one or more CSV exports and upsert the trades into the journal.

Column headers are matched case-insensitively against common aliases
(e.g. "Ticket", "Open Time", "Net P/L"). Extra names can be mapped in the
config file under import.column_mapping. Rows without a ticket are keyed
by file name and row number ("jan-3"), so ticket-less files do not
overwrite each other.

Examples:
  tradestats import history.csv
  tradestats import --dry-run -d ./journal.sqlite jan.csv feb.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var importDryRun bool

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse files without writing to the journal")
}

func runImport(cmd *cobra.Command, args []string) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	im := journal.NewCSVImporter(
		journal.WithColumnMapping(cfg.Import.ColumnMapping),
		journal.WithLocation(loc),
		journal.WithLogger(log),
	)

	var trades []journal.TradeRecord
	for _, path := range args {
		recs, err := im.ImportFile(path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		log.Info().Str("file", path).Int("trades", len(recs)).Msg("parsed")
		trades = append(trades, recs...)
	}

	out := cmd.OutOrStdout()
	if importDryRun {
		fmt.Fprintf(out, "✓ Parsed %d trades (dry run, nothing written)\n", len(trades))
		return nil
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	if err := j.UpsertTrades(cmd.Context(), trades); err != nil {
		return fmt.Errorf("save trades: %w", err)
	}

	fmt.Fprintf(out, "✓ Imported %d trades into %s\n", len(trades), cfg.Journal.DBPath)
	return nil
}
