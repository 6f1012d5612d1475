/*
main.go - Application entry point

PURPOSE:
  Initializes the timesheet engine and dispatches to subcommands.
  Handles configuration, dependency injection, and clean teardown.

COMMANDS:
  serve    Run the HTTP API server (graceful shutdown on SIGINT/SIGTERM)
  seed     Load demo companies and timesheets from a YAML file
  export   Write one timesheet as an .xlsx workbook

GLOBAL FLAGS:
  --config  Path to TOML config file (default: config.toml; missing
            file falls back to built-in defaults)
  --db      SQLite database path, overrides the config file.
            Use ":memory:" for an in-memory database.

EXAMPLES:
  ./timesheetd serve
  ./timesheetd serve --db=":memory:"
  ./timesheetd seed --file=fixtures/demo.yaml
  ./timesheetd export --timesheet=<id> --out=april.xlsx

SEE ALSO:
  - commands.go: Subcommand implementations
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/timesheet-engine/config"
	"github.com/warp/timesheet-engine/store/sqlite"
	"github.com/warp/timesheet-engine/timesheet"
)

var (
	configPath string
	dbOverride string

	cfg     *config.Config
	db      *sqlite.Store
	service *timesheet.Service
)

var rootCmd = &cobra.Command{
	Use:   "timesheetd",
	Short: "Monthly timesheet engine for cleaning companies",
	Long: `Timesheetd resolves recurring weekly and biweekly hour patterns into
monthly timesheets. Hours are always computed from the current company
patterns; nothing is snapshotted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbOverride != "" {
			cfg.DatabasePath = dbOverride
		}
		db, err = sqlite.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		service = timesheet.NewService(db)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
