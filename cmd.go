package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"WooWithTypesense/internal/config"
	"WooWithTypesense/internal/database"
	"WooWithTypesense/internal/version"
	"WooWithTypesense/pkg/logging"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "woowithtypesense",
		Short:         "Mirror a WooCommerce store into Typesense",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.SetPath(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to config.ini")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server and background workers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				a, err := newApp(config.GetConfig())
				if err != nil {
					return err
				}
				defer a.Close()
				return a.Serve(ctx)
			},
		},
		&cobra.Command{
			Use:       "sync [products|menus|taxonomies|site-info|all]",
			Short:     "Run one sync and print the result",
			Args:      cobra.MaximumNArgs(1),
			ValidArgs: []string{"products", "menus", "taxonomies", "site-info", "all"},
			RunE: func(cmd *cobra.Command, args []string) error {
				target := "all"
				if len(args) == 1 {
					target = args[0]
				}
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				a, err := newApp(config.GetConfig())
				if err != nil {
					return err
				}
				defer a.Close()

				result, err := a.sync.Sync(ctx, target)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			},
		},
		&cobra.Command{
			Use:   "initdb",
			Short: "Create the local database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.GetConfig()
				db, err := database.Connect(cfg.DBSQLITE.DB)
				if err != nil {
					return err
				}
				defer db.Close()
				v, err := database.CurrentVersion(db)
				if err != nil {
					return err
				}
				logging.GetLogger().Infof("%s schema version %d", cfg.DBSQLITE.DB, v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.NAME, version.GetVersion().String())
			},
		},
	)
	return root
}
