// Command md2html converts markdown documentation files into standalone HTML
// pages next to their sources.
//
//	md2html file1.md [file2.md ...]
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cutmark/internal/docs"
	"cutmark/internal/logging"
)

const usage = "Usage: md2html <file1.md> <file2.md> ..."

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra reads os.Args when SetArgs receives nil.
		args = []string{}
	}
	exitCode := 0
	cmd := &cobra.Command{
		Use:                   "md2html <file1.md> [file2.md ...]",
		Short:                 "Convert markdown files to HTML",
		DisableFlagParsing:    true,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		SilenceErrors:         true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), usage)
				exitCode = 1
				return nil
			}
			// Partial failures are printed per file and do not change the exit code.
			docs.NewConverter(logging.NewNop()).ConvertAll(args, cmd.OutOrStdout())
			return nil
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return exitCode
}
