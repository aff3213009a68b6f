package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Tyrowin/webhooker/internal/security"
	"github.com/Tyrowin/webhooker/internal/server"
	"github.com/Tyrowin/webhooker/internal/store"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := server.LoadConfig()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			st, err := store.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer st.Close()

			version, err := store.Migrate(ctx, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
}

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <secret>",
		Short: "Print the stored credential for a secret",
		Long:  `Derive the credential for <secret> with the configured salt and hash parameters.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig()
			if err != nil {
				return err
			}
			hasher, err := security.NewHasher(cfg.Salt, cfg.HashParams())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hasher.Derive(args[0]))
			return nil
		},
	}
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage identities",
	}
	cmd.AddCommand(userAddCmd())
	return cmd
}

func userAddCmd() *cobra.Command {
	var (
		password  string
		superuser bool
		disabled  bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("--password is required")
			}
			cfg, err := server.LoadConfig()
			if err != nil {
				return err
			}
			hasher, err := security.NewHasher(cfg.Salt, cfg.HashParams())
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			st, err := store.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer st.Close()
			if _, err := store.Migrate(ctx, st); err != nil {
				return err
			}

			identity := &store.Identity{
				Name:         args[0],
				Superuser:    superuser,
				Disabled:     disabled,
				PasswordHash: hasher.Derive(password),
			}
			if err := st.CreateIdentity(ctx, identity); err != nil {
				return fmt.Errorf("create identity %q: %w", identity.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created identity %q with id %d\n", identity.Name, identity.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for the identity")
	cmd.Flags().BoolVar(&superuser, "superuser", false, "Grant access to every user's hooks")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the identity disabled")

	return cmd
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, version)
				return
			}
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", commit)
			fmt.Fprintf(out, "Built:      %s\n", date)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}
