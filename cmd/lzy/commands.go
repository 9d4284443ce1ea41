package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/lzy/internal/adapter/repository/postgres"
	"github.com/vadimbarashkov/lzy/internal/app"
	"github.com/vadimbarashkov/lzy/internal/config"
	"github.com/vadimbarashkov/lzy/internal/usecase"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "lzy",
		Short:        "lzy shortens URLs",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config (defaults to $CONFIG_PATH)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newDomainsCmd(opts),
	)

	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			logger := app.NewLogger(cfg)

			if err := app.Run(cmd.Context(), cfg, logger); err != nil {
				logger.Error("server stopped", slog.Any("err", err))
				return err
			}

			logger.Info("server stopped")
			return nil
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			if err := app.Migrate(cfg); err != nil {
				return err
			}

			app.NewLogger(cfg).Info("migrations applied")
			return nil
		},
	}
}

func newDomainsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "Manage domains that cannot be shortened",
	}

	// withDomains runs fn against a DomainUseCase backed by the configured database.
	withDomains := func(fn func(cmd *cobra.Command, uc *usecase.DomainUseCase, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			db, err := app.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			return fn(cmd, usecase.NewDomainUseCase(postgres.NewForbiddenDomainRepository(db)), args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add DOMAIN...",
			Short: "Forbid shortening URLs on the given domains",
			Args:  cobra.MinimumNArgs(1),
			RunE: withDomains(func(cmd *cobra.Command, uc *usecase.DomainUseCase, args []string) error {
				for _, arg := range args {
					d, err := uc.Forbid(cmd.Context(), arg)
					if err != nil {
						return fmt.Errorf("forbid %s: %w", arg, err)
					}
					cmd.Printf("forbidden %s\n", d.Domain)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List forbidden domains",
			Args:  cobra.NoArgs,
			RunE: withDomains(func(cmd *cobra.Command, uc *usecase.DomainUseCase, _ []string) error {
				domains, err := uc.List(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "DOMAIN\tADDED")
				for _, d := range domains {
					fmt.Fprintf(w, "%s\t%s\n", d.Domain, d.CreatedAt.UTC().Format(time.RFC3339))
				}
				return w.Flush()
			}),
		},
		&cobra.Command{
			Use:   "remove DOMAIN...",
			Short: "Allow shortening URLs on the given domains again",
			Args:  cobra.MinimumNArgs(1),
			RunE: withDomains(func(cmd *cobra.Command, uc *usecase.DomainUseCase, args []string) error {
				for _, arg := range args {
					if err := uc.Allow(cmd.Context(), arg); err != nil {
						return fmt.Errorf("allow %s: %w", arg, err)
					}
					cmd.Printf("allowed %s\n", arg)
				}
				return nil
			}),
		},
	)

	return cmd
}
