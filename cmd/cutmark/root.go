package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	root := &cobra.Command{
		Use:           "cutmark",
		Short:         "Cut detection and figure tooling for baseball match videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	persistent := root.PersistentFlags()
	persistent.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path (env CUTMARK_CONFIG)")
	persistent.StringVar(&flags.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	persistent.StringVar(&flags.logFormat, "log-format", "", "Override logging.format (console, json)")

	root.AddCommand(
		newServeCommand(ctx),
		newDetectCommand(ctx),
		newDocsCommand(ctx),
		newPlotCommand(ctx),
		newHistoryCommand(ctx),
		newDoctorCommand(ctx),
		newConfigCommand(ctx),
	)
	return root
}
