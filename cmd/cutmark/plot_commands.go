package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cutmark/internal/plots"
)

// plotFlags are shared by every renderer subcommand.
type plotFlags struct {
	title        string
	output       string
	analysisPath string
}

func (f *plotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Figure title")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output HTML path (default under plots.results_dir)")
	cmd.Flags().StringVar(&f.analysisPath, "analysis", "", "JSON file with purpose/expectation/evaluation/highlights to append")
}

func (f *plotFlags) options() (plots.Options, error) {
	opts := plots.Options{Title: f.title, Output: f.output}
	if strings.TrimSpace(f.analysisPath) != "" {
		var analysis plots.Analysis
		if err := readJSONFile(f.analysisPath, &analysis); err != nil {
			return opts, err
		}
		opts.Analysis = &analysis
	}
	return opts, nil
}

func newPlotCommand(ctx *commandContext) *cobra.Command {
	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Render fields and analysis notes to standalone HTML figures",
	}

	plotCmd.AddCommand(newPlotDemoCommand(ctx))
	plotCmd.AddCommand(newPlotVelocityCommand(ctx))
	plotCmd.AddCommand(newPlotErrorCommand(ctx))
	plotCmd.AddCommand(newPlotPheromoneCommand(ctx))
	plotCmd.AddCommand(newPlotBinaryCommand(ctx))
	plotCmd.AddCommand(newPlotAnnotateCommand(ctx))

	return plotCmd
}

func (c *commandContext) renderer() (*plots.Renderer, error) {
	cfg, logger, err := c.configAndLogger()
	if err != nil {
		return nil, err
	}
	return plots.NewRenderer(cfg.Plots, logger), nil
}

func newPlotVelocityCommand(ctx *commandContext) *cobra.Command {
	var flags plotFlags
	cmd := &cobra.Command{
		Use:   "velocity <field.json>",
		Short: "Render a velocity field ({\"vx\": [[...]], \"vy\": [[...]]})",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ctx.renderer()
			if err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}
			var v plots.Vector
			if err := readJSONFile(args[0], &v); err != nil {
				return err
			}
			fig, err := r.VelocityField(v, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", fig.Path)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newPlotErrorCommand(ctx *commandContext) *cobra.Command {
	var flags plotFlags
	cmd := &cobra.Command{
		Use:   "error <truth.json> <pred.json>",
		Short: "Compare a predicted velocity field against the true one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ctx.renderer()
			if err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}
			var truth, pred plots.Vector
			if err := readJSONFile(args[0], &truth); err != nil {
				return err
			}
			if err := readJSONFile(args[1], &pred); err != nil {
				return err
			}
			fig, l2, err := r.ErrorComparison(truth, pred, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Relative L2 error: %.4f\n", l2)
			fmt.Fprintf(out, "Wrote %s\n", fig.Path)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newPlotPheromoneCommand(ctx *commandContext) *cobra.Command {
	var flags plotFlags
	cmd := &cobra.Command{
		Use:   "pheromone <field.json>",
		Short: "Render a pheromone concentration field ([[...]])",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ctx.renderer()
			if err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}
			var tau plots.Field
			if err := readJSONFile(args[0], &tau); err != nil {
				return err
			}
			fig, err := r.PheromoneField(tau, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", fig.Path)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newPlotBinaryCommand(ctx *commandContext) *cobra.Command {
	var flags plotFlags
	cmd := &cobra.Command{
		Use:   "binary <field.json>",
		Short: "Render a 0/1 image and report its coverage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ctx.renderer()
			if err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}
			var b plots.Field
			if err := readJSONFile(args[0], &b); err != nil {
				return err
			}
			fig, coverage, err := r.BinaryImage(b, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Coverage: %.2f%%\n", coverage*100)
			fmt.Fprintf(out, "Wrote %s\n", fig.Path)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newPlotDemoCommand(ctx *commandContext) *cobra.Command {
	var (
		nx, ny    int
		re, t     float64
		sigma     float64
		seed      uint64
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render every figure from an analytic Taylor-Green vortex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if nx <= 0 || ny <= 0 {
				return fmt.Errorf("grid size must be positive, got %dx%d", nx, ny)
			}
			r, err := ctx.renderer()
			if err != nil {
				return err
			}
			truth := plots.TaylorGreen(nx, ny, re, t)
			pred := plots.Perturb(truth, sigma, seed)
			tau := plots.Normalize(truth.Magnitude())
			mask := plots.Threshold(tau, threshold)

			out := cmd.OutOrStdout()
			var paths []string
			fig, err := r.VelocityField(truth, plots.Options{})
			if err != nil {
				return err
			}
			paths = append(paths, fig.Path)
			fig, l2, err := r.ErrorComparison(truth, pred, plots.Options{})
			if err != nil {
				return err
			}
			paths = append(paths, fig.Path)
			if fig, err = r.PheromoneField(tau, plots.Options{}); err != nil {
				return err
			}
			paths = append(paths, fig.Path)
			fig, coverage, err := r.BinaryImage(mask, plots.Options{})
			if err != nil {
				return err
			}
			paths = append(paths, fig.Path)

			fmt.Fprintf(out, "Relative L2 error: %.4f\n", l2)
			fmt.Fprintf(out, "Coverage: %.2f%%\n", coverage*100)
			for _, p := range paths {
				fmt.Fprintf(out, "Wrote %s\n", p)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&nx, "nx", 64, "Grid columns")
	cmd.Flags().IntVar(&ny, "ny", 64, "Grid rows")
	cmd.Flags().Float64Var(&re, "re", 100, "Reynolds number")
	cmd.Flags().Float64Var(&t, "time", 1, "Simulation time")
	cmd.Flags().Float64Var(&sigma, "sigma", 0.05, "Noise added to the predicted field")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Noise seed")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "Level above which the binary mask is set")
	return cmd
}

func newPlotAnnotateCommand(ctx *commandContext) *cobra.Command {
	var (
		analysisPath string
		analysis     plots.Analysis
	)
	cmd := &cobra.Command{
		Use:   "annotate <page.html>",
		Short: "Append an analysis note to an existing HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ctx.renderer()
			if err != nil {
				return err
			}
			note := analysis
			if strings.TrimSpace(analysisPath) != "" {
				if err := readJSONFile(analysisPath, &note); err != nil {
					return err
				}
			}
			return r.AddAnalysis(args[0], note)
		},
	}
	cmd.Flags().StringVar(&analysisPath, "analysis", "", "JSON file with the note (overrides the flags below)")
	cmd.Flags().StringVar(&analysis.Purpose, "purpose", "", "Purpose of the figure")
	cmd.Flags().StringVar(&analysis.Expectation, "expectation", "", "Expected outcome")
	cmd.Flags().StringVar(&analysis.Evaluation, "evaluation", "", "Evaluation criteria")
	cmd.Flags().StringArrayVar(&analysis.Highlights, "highlight", nil, "Result highlight (repeatable)")
	cmd.Flags().StringVar(&analysis.SummaryTitle, "summary-title", "", "Summary heading")
	return cmd
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
