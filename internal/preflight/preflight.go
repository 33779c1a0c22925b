package preflight

import (
	"context"

	"cutmark/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for every directory the server
// writes into. Disabled features are skipped.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Upload temp directory", cfg.Server.TempDir),
		CheckDirectoryAccess("Results directory", cfg.Plots.ResultsDir),
	}
	if cfg.History.Enabled {
		results = append(results, CheckHistory(ctx, cfg.History.Path))
	}
	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}
	return results
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
