package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cutmark/internal/api"
	"cutmark/internal/history"
	"cutmark/internal/logging"
	"cutmark/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cut detection HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.configAndLogger()
			if err != nil {
				return err
			}
			if value := strings.TrimSpace(bind); value != "" {
				cfg.Server.Bind = value
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if failed := preflight.Failed(preflight.RunAll(signalCtx, cfg)); len(failed) > 0 {
				for _, r := range failed {
					logger.Error("preflight check failed",
						logging.String("check", r.Name),
						logging.String("detail", r.Detail),
					)
				}
				return fmt.Errorf("preflight: %d check(s) failed; run `cutmark doctor` for details", len(failed))
			}
			for _, status := range preflight.CheckSystemDeps(cfg) {
				if !status.Available {
					logging.WarnWithContext(logger, "decoder binary unavailable", "dependency_missing",
						logging.String("dependency", status.Name),
						logging.String("detail", status.Detail),
						logging.String(logging.FieldImpact, "uploads will fail with an error event"),
					)
				}
			}

			var opts []api.Option
			if cfg.History.Enabled {
				store, err := history.Open(cfg.History.Path)
				if err != nil {
					return fmt.Errorf("open history: %w", err)
				}
				defer store.Close()
				opts = append(opts, api.WithHistory(store))
			}

			srv, err := api.NewServer(cfg, logger, opts...)
			if err != nil {
				return err
			}
			if err := srv.Start(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", srv.Addr())

			<-signalCtx.Done()
			srv.Stop()
			logger.Info("cutmark server shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}
