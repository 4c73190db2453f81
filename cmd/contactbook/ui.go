package main

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/contactbook/internal/config"
	"github.com/saltyorg/contactbook/internal/ui"
)

func newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE:  runUI,
	}
}

func runUI(cmd *cobra.Command, args []string) error {
	var current atomic.Pointer[config.Settings]
	current.Store(settings)

	ctrl := ui.NewController(func() config.Database {
		return current.Load().Database
	})
	app := ui.NewApp(ctrl)

	// Edits to the env file apply on the next Connect
	watcher, err := config.Watch(envFile, func(s *config.Settings) {
		current.Store(s)
		app.SettingsReloaded()
	})
	if err != nil {
		log.Warn().Err(err).Str("env_file", envFile).Msg("Failed to watch env file")
	} else {
		defer watcher.Stop()
	}

	log.Info().Str("version", version).Msg("Starting terminal UI")
	if err := app.Run(); err != nil {
		return err
	}
	log.Info().Msg("Terminal UI stopped")
	return nil
}
