package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saltyorg/contactbook/internal/auth"
)

func newAPIKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apikey",
		Short: "Generate an API key for the HTTP server",
		Long: `Generate a random API key and its bcrypt hash. Put the hash in API_KEY_HASH
and send the key as "Authorization: Bearer <key>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, hash, err := auth.NewAPIKey()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API key:      %s\n", key)
			fmt.Fprintf(out, "API_KEY_HASH=%s\n", hash)
			return nil
		},
	}
}
