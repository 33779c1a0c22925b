package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cutmark/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var checkServer bool
	var serverURL string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check decoder binaries, writable directories and the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			problems := 0

			fmt.Fprintln(out, "Dependencies")
			statuses := preflight.CheckSystemDeps(cfg)
			versions := preflight.DecoderVersions(cmd.Context(), statuses)
			for _, status := range statuses {
				switch {
				case status.Available:
					fmt.Fprintln(out, renderStatusLine(status.Name, statusOK, versions[status.Name], colorize))
				case status.Optional:
					fmt.Fprintln(out, renderStatusLine(status.Name, statusWarn, status.Detail, colorize))
				default:
					problems++
					fmt.Fprintln(out, renderStatusLine(status.Name, statusError, status.Detail, colorize))
				}
			}

			fmt.Fprintln(out, "Storage")
			for _, r := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					problems++
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if checkServer || strings.TrimSpace(serverURL) != "" {
				fmt.Fprintln(out, "Server")
				var r preflight.Result
				if url := strings.TrimSpace(serverURL); url != "" {
					r = preflight.CheckServer(cmd.Context(), url)
				} else {
					r = preflight.CheckServerFromConfig(cmd.Context(), cfg)
				}
				kind := statusOK
				if !r.Passed {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if problems > 0 {
				return fmt.Errorf("doctor: %d problem(s) found", problems)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkServer, "server", false, "Also probe the API at server.bind")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "Probe the API at this base URL")
	return cmd
}
