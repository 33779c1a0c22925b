package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cutmark/internal/api"
	"cutmark/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded analyses",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))

	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.History.Enabled {
		return errors.New("history is disabled (set history.enabled = true)")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				records, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				items := make([]api.AnalysisSummary, 0, len(records))
				for _, r := range records {
					items = append(items, api.FromAnalysis(r))
				}
				if jsonOutput {
					return writeJSON(cmd, items)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No analyses recorded")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						shortID(item.ID),
						item.CreatedTime().Local().Format("2006-01-02 15:04"),
						item.FileName,
						item.Status,
						numbers.Sprintf("%d", item.TotalFrames),
						fmt.Sprintf("%d", item.TotalCuts),
						fmt.Sprintf("%.1f", item.Threshold),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Created", "File", "Status", "Frames", "Cuts", "Threshold"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of analyses to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one analysis and its bookmarks (id or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				record, err := store.Get(cmd.Context(), args[0])
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf("analysis %q not found", args[0])
				}
				if err != nil {
					return err
				}
				detail := api.FromAnalysisDetail(*record)
				if jsonOutput {
					return writeJSON(cmd, detail)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:           %s\n", detail.ID)
				fmt.Fprintf(out, "File:         %s\n", detail.FileName)
				fmt.Fprintf(out, "Status:       %s\n", detail.Status)
				if detail.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:        %s\n", detail.ErrorMessage)
				}
				fmt.Fprintf(out, "Created:      %s\n", detail.CreatedTime().Local().Format(time.RFC1123))
				fmt.Fprintf(out, "Threshold:    %.1f (min interval %.2fs)\n", detail.Threshold, detail.MinInterval)
				fmt.Fprint(out, numbers.Sprintf("Frames:       %d decoded of %d at %.2f fps\n", detail.Decoded, detail.TotalFrames, detail.FPS))
				fmt.Fprintf(out, "Duration:     %s\n", formatTimecode(detail.Duration))
				fmt.Fprintf(out, "Elapsed:      %s\n", time.Duration(detail.ElapsedMS)*time.Millisecond)
				if len(detail.Bookmarks) == 0 {
					fmt.Fprintln(out, "No cuts detected")
					return nil
				}
				rows := make([][]string, 0, len(detail.Bookmarks))
				for i, b := range detail.Bookmarks {
					rows = append(rows, []string{fmt.Sprintf("%d", i+1), fmt.Sprintf("%.3f", b.Time), formatTimecode(b.Time)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Seconds", "Timecode"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")
	return cmd
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete an analysis and its bookmarks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				record, err := store.Get(cmd.Context(), args[0])
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf("analysis %q not found", args[0])
				}
				if err != nil {
					return err
				}
				if err := store.Delete(cmd.Context(), record.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed analysis %s\n", record.ID)
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
