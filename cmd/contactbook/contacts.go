package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saltyorg/contactbook/internal/database"
)

// contact field flags shared by add and update
var (
	firstName string
	lastName  string
	phone     string
	email     string
	asJSON    bool
)

func addContactFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&firstName, "first", "", "First name")
	cmd.Flags().StringVar(&lastName, "last", "", "Last name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd.Context(), func(ctx context.Context, contacts *database.ContactRepository) error {
				contact, err := contacts.Add(ctx, firstName, lastName, phone, email)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added contact %d\n", contact.ID)
				return nil
			})
		},
	}
	addContactFlags(cmd)
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("last")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all contacts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd.Context(), func(ctx context.Context, contacts *database.ContactRepository) error {
				all, err := contacts.List(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), all)
				}
				return writeTable(cmd.OutOrStdout(), all)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRepository(cmd.Context(), func(ctx context.Context, contacts *database.ContactRepository) error {
				contact, err := contacts.Find(ctx, id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), contact)
				}
				return writeTable(cmd.OutOrStdout(), []database.Contact{*contact})
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update the given fields of a contact",
		Long: `Update only the fields passed as flags. Fields not given are left unchanged;
an empty value clears phone or email (e.g. --phone "").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			changes := changesFromFlags(cmd)
			return withRepository(cmd.Context(), func(ctx context.Context, contacts *database.ContactRepository) error {
				rows, err := contacts.Update(ctx, id, changes)
				if err != nil {
					return err
				}
				if rows == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No changes")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated contact %d\n", id)
				return nil
			})
		},
	}
	addContactFlags(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a contact",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withRepository(cmd.Context(), func(ctx context.Context, contacts *database.ContactRepository) error {
				rows, err := contacts.Delete(ctx, id)
				if err != nil {
					return err
				}
				if rows == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No contact with ID %d\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted contact %d\n", id)
				return nil
			})
		},
	}
}

// changesFromFlags includes only the flags given on the command line, so an
// explicit empty value is distinguishable from an absent one
func changesFromFlags(cmd *cobra.Command) database.ContactChanges {
	var changes database.ContactChanges
	if cmd.Flags().Changed("first") {
		changes.FirstName = &firstName
	}
	if cmd.Flags().Changed("last") {
		changes.LastName = &lastName
	}
	if cmd.Flags().Changed("phone") {
		changes.Phone = &phone
	}
	if cmd.Flags().Changed("email") {
		changes.Email = &email
	}
	return changes
}

var errInvalidID = errors.New("contact ID must be a positive integer")

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, arg)
	}
	return id, nil
}

func writeTable(w io.Writer, contacts []database.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFIRST NAME\tLAST NAME\tPHONE\tEMAIL")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.FirstName, c.LastName, c.Phone, c.Email)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
