package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cutmark/internal/docs"
)

func newDocsCommand(ctx *commandContext) *cobra.Command {
	docsCmd := &cobra.Command{
		Use:   "docs",
		Short: "Documentation utilities",
	}

	var strict bool
	convert := &cobra.Command{
		Use:   "convert <file.md>...",
		Short: "Convert markdown files to HTML pages next to their sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := ctx.configAndLogger()
			if err != nil {
				return err
			}
			failures := docs.NewConverter(logger).ConvertAll(args, cmd.OutOrStdout())
			if strict && failures > 0 {
				return fmt.Errorf("docs convert: %d of %d file(s) failed", failures, len(args))
			}
			return nil
		},
	}
	convert.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any file fails to convert")

	docsCmd.AddCommand(convert)
	return docsCmd
}
