package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/contactbook/internal/config"
	"github.com/saltyorg/contactbook/internal/database"
	"github.com/saltyorg/contactbook/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	envFile   string
	verbosity int
)

// settings is resolved once per invocation by setup
var settings *config.Settings

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "contactbook",
		Short: "Contactbook - Contact manager",
		Long: `Contactbook manages a table of contacts (first name, last name, phone, email)
in a MySQL, PostgreSQL or SQLite database.

Run without a command to open the terminal UI. Connection settings are read
from the environment and from the --env-file (DB_DRIVER, DB_HOST, DB_USER,
DB_PASSWORD, DB_NAME, DB_TABLE).`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runUI,
	}

	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", config.DefaultEnvFile, "Path to the .env file with connection settings")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.AddCommand(
		newUICmd(),
		newServeCmd(),
		newAddCmd(),
		newListCmd(),
		newGetCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newAPIKeyCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// no settings or logging needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "contactbook %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// setup loads settings and configures logging. Only the HTTP server logs to
// the console; every other command writes to the log file so its output stays clean.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := loaded.Logging.Validate(); err != nil {
		return err
	}
	settings = loaded

	level := logging.LevelFromVerbosity(verbosity, settings.Logging.Level)
	logging.Apply(level, settings.Logging, cmd.Name() == "serve")

	log.Debug().
		Str("command", cmd.Name()).
		Str("env_file", envFile).
		Str("driver", settings.Database.Driver).
		Msg("Settings loaded")
	return nil
}

// withRepository opens the store for a single command and closes it afterwards
func withRepository(ctx context.Context, fn func(ctx context.Context, contacts *database.ContactRepository) error) error {
	db, err := database.Open(ctx, settings.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	return fn(ctx, database.NewContactRepository(db))
}
