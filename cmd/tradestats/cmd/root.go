package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/tradestats/config"
	"github.com/rustyeddy/tradestats/journal"
	"github.com/rustyeddy/tradestats/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradestats",
	Short: "Performance analytics for a trade journal",
	Long: `Tradestats imports closed trades into a SQLite journal and analyzes them.

It provides tools for:
  - Importing broker CSV exports with flexible column names
  - Win rate, profit factor, expectancy and streak statistics
  - Equity curve and drawdown period tracking
  - Hour, weekday, month and trading session breakdowns
  - Scoring overall performance and grading individual trades

Complete documentation is available at https://github.com/rustyeddy/tradestats`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile  string
	dbPath   string
	logLevel string

	cfg *config.Config
	log zerolog.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to SQLite journal DB (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
}

// setup loads .env, the config file and the logger before any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.Journal.DBPath = dbPath
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	cfg = c

	log = logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	return nil
}

func openJournal() (journal.Store, error) {
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	log.Debug().Str("db", cfg.Journal.DBPath).Msg("journal opened")
	return j, nil
}
