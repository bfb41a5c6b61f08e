package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rpggio/gantry/internal/config"
	"github.com/rpggio/gantry/internal/domain/person"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			db, err := openDB(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := db.MigrationVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
			return nil
		},
	}
}

func newPersonCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Manage people",
	}

	var email, name string
	register := &cobra.Command{
		Use:   "register",
		Short: "Create a profile and print its first API key",
		Long: `Create a profile and print its first API key.

Pending invites for the email are redeemed: the new person joins every
project of the people who invited them.

Examples:
  gantry person register --email alice@example.com --name "Alice Smith"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, closeApp, err := openApp(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer closeApp()

			p, err := a.People.Register(ctx, person.RegisterRequest{Email: email, FullName: name})
			if err != nil {
				return err
			}
			key, err := a.Keys.Create(ctx, p.ID, "cli")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "person:  %s\n", p.ID)
			fmt.Fprintf(out, "email:   %s\n", p.Email)
			fmt.Fprintf(out, "api key: %s\n", key)
			return nil
		},
	}
	register.Flags().StringVar(&email, "email", "", "Email address (required)")
	register.Flags().StringVar(&name, "name", "", "Full name")
	_ = register.MarkFlagRequired("email")

	var limit int
	search := &cobra.Command{
		Use:   "search [query]",
		Short: "Find people by name or email",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, closeApp, err := openApp(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer closeApp()

			var query string
			if len(args) == 1 {
				query = args[0]
			}
			people, err := a.People.Search(ctx, query, limit)
			if err != nil {
				return err
			}
			if len(people) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No people found.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
			for _, p := range people {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.DisplayName(), p.Email)
			}
			return tw.Flush()
		},
	}
	search.Flags().IntVar(&limit, "limit", 20, "Maximum results")

	cmd.AddCommand(register, search)
	return cmd
}

func newAPIKeyCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}

	var description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Issue a new API key for the --as person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, closeApp, err := openApp(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer closeApp()

			p, err := resolvePerson(ctx, a.People, e.as)
			if err != nil {
				return err
			}
			key, err := a.Keys.Create(ctx, p.ID, description)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "cli", "Label stored with the key")

	revoke := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke every API key of the --as person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, closeApp, err := openApp(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer closeApp()

			p, err := resolvePerson(ctx, a.People, e.as)
			if err != nil {
				return err
			}
			if err := a.Keys.Revoke(ctx, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked keys of %s\n", p.Email)
			return nil
		},
	}

	cmd.AddCommand(create, revoke)
	return cmd
}

func newConfigCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "List the environment variables gantry reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := config.Description()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
