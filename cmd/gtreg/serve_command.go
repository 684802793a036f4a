package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"gtreg/internal/config"
	"gtreg/internal/httpapi"
	"gtreg/internal/logging"
	"gtreg/internal/preflight"
	"gtreg/internal/store"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP ingestion API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if b := strings.TrimSpace(bind); b != "" {
				cfg.Paths.APIBind = b
			}
			if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
				return fmt.Errorf("preflight failed: %s: %s", failed[0].Name, failed[0].Detail)
			}

			return ctx.withStore(cmd.Context(), func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				srv := httpapi.New(cfg, st, logger)
				if err := srv.Start(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", srv.Addr())
				<-cmd.Context().Done()
				srv.Stop()
				logger.Info("api server stopped", logging.String("address", srv.Addr()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override the configured listen address (host:port)")
	return cmd
}
