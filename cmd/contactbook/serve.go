package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/contactbook/internal/auth"
	"github.com/saltyorg/contactbook/internal/database"
	"github.com/saltyorg/contactbook/internal/maintenance"
	"github.com/saltyorg/contactbook/internal/web"
	"github.com/saltyorg/contactbook/internal/web/handlers"
)

// serve flags
var (
	port        int
	bind        string
	allowSubnet string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the contacts over a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (required, or set PORT env var)")
	cmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	cmd.Flags().StringVarP(&allowSubnet, "allow-subnet", "a", "", "CIDR subnet allowed to connect (e.g., 192.168.1.0/24)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	// Check for PORT env var if flag not set
	if port == 0 {
		if envPort := os.Getenv("PORT"); envPort != "" {
			if _, err := fmt.Sscanf(envPort, "%d", &port); err != nil {
				return fmt.Errorf("invalid PORT environment variable %q: %w", envPort, err)
			}
		}
	}
	if port == 0 {
		return fmt.Errorf("--port flag or PORT environment variable is required")
	}

	// Validate bind address if provided
	if bind != "" {
		if ip := net.ParseIP(bind); ip == nil {
			return fmt.Errorf("invalid bind address: %s", bind)
		}
	}

	// Validate and parse allow-subnet if provided
	var allowedNet *net.IPNet
	if allowSubnet != "" {
		_, parsedNet, err := net.ParseCIDR(allowSubnet)
		if err != nil {
			return fmt.Errorf("invalid allow-subnet CIDR: %s", allowSubnet)
		}
		allowedNet = parsedNet
	}

	if settings.APIKeyHash != "" {
		if err := auth.ValidateHash(settings.APIKeyHash); err != nil {
			return fmt.Errorf("invalid API_KEY_HASH: %w", err)
		}
	} else {
		log.Warn().Msg("API_KEY_HASH is not set, the contacts API is unauthenticated. Generate one with 'contactbook apikey'.")
	}

	// Warn if binding to all interfaces without an allow list
	if (bind == "" || bind == "0.0.0.0" || bind == "::") && allowSubnet == "" {
		log.Warn().Msg("Server is accessible from all interfaces without subnet restrictions. Consider using --bind or --allow-subnet for security.")
	}

	log.Info().
		Str("version", version).
		Int("port", port).
		Str("bind", bind).
		Str("allow_subnet", allowSubnet).
		Str("driver", settings.Database.Driver).
		Msg("Starting Contactbook")

	db, err := database.Open(cmd.Context(), settings.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	scheduler := maintenance.New(db)
	if started, err := scheduler.Start(settings.MaintenanceSchedule); err != nil {
		return err
	} else if !started {
		log.Debug().Msg("Maintenance scheduler not started (no schedule configured)")
	}
	defer scheduler.Stop()

	server := web.NewServer(db, web.Options{
		Port:       port,
		Bind:       bind,
		AllowedNet: allowedNet,
		APIKeyHash: settings.APIKeyHash,
		Version:    handlers.VersionInfo{Version: version, Commit: commit, Date: date},
		Scheduler:  scheduler,
	})

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info().Msg("Contactbook stopped")
	return nil
}
