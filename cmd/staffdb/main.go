package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/staffdb/internal/config"
	"github.com/saltyorg/staffdb/internal/database"
	"github.com/saltyorg/staffdb/internal/logging"
	"github.com/saltyorg/staffdb/internal/review"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultDBPath = "./staffdb.db"

// CLI flags
var (
	dbPath      string
	logFile     string
	logToFile   bool
	verbosity   int
	busyTimeout time.Duration
)

// app holds the handles opened for the running command.
var app struct {
	db      *database.DB
	loader  *config.Loader
	reviews *review.Manager
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "staffdb",
		Short:             "staffdb - employee records and performance reviews",
		Long:              `staffdb manages departments, employees and their performance reviews in a SQLite database.`,
		SilenceUsage:      true,
		PersistentPreRunE: openStore,
		PersistentPostRun: closeStore,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&dbPath, "db", "d", defaultDBPath, "SQLite database path (or set DB_PATH env var)")
	flags.StringVar(&logFile, "log-file", "", "Also write logs to this rotating file")
	flags.BoolVar(&logToFile, "log-to-file", false, "Also write logs to "+logging.DefaultLogFilePath+" next to the database (ignored with --log-file)")
	flags.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	flags.DurationVar(&busyTimeout, "busy-timeout", config.DefaultStoreOptions().BusyTimeout, "How long to wait on a locked database")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			// Overrides the root hooks so no database is opened.
			PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
			PersistentPostRun: func(*cobra.Command, []string) {},
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "staffdb %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
		newMigrateCmd(),
		newDepartmentCmd(),
		newEmployeeCmd(),
		newSettingsCmd(),
		newReviewCmd(),
		newMaintainCmd(),
	)

	return rootCmd
}

func openStore(cmd *cobra.Command, args []string) error {
	// Post-run hooks are skipped when a command fails.
	closeStore(cmd, args)

	if dbPath == defaultDBPath {
		if envDB := os.Getenv("DB_PATH"); envDB != "" {
			dbPath = envDB
		}
	}

	level := logging.LevelForVerbosity(verbosity)
	logging.Console(level)

	opts := config.DefaultStoreOptions()
	opts.BusyTimeout = busyTimeout

	db, err := database.New(dbPath, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	app.db = db
	app.loader = config.NewLoader(db)
	app.reviews = review.NewManager(db)

	// Rotation limits live in the settings table, so file output can only be
	// configured once the database is open.
	switch {
	case logFile != "":
		logging.Apply(level, app.loader, logFile)
	case logToFile:
		logging.Apply(level, app.loader, logging.FilePathForDB(app.db.Path()))
	}

	log.Debug().Str("database", dbPath).Str("command", cmd.CommandPath()).Msg("Store opened")
	return nil
}

func closeStore(*cobra.Command, []string) {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}
	app.db = nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the schema and seed default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.db.Migrate(); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}
			if err := app.reviews.CreateTable(); err != nil {
				return err
			}
			if err := app.db.InitializeDefaults(); err != nil {
				return fmt.Errorf("failed to initialize settings: %w", err)
			}
			version, err := app.db.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}
