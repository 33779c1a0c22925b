package preflight

import (
	"context"
	"fmt"
	"net"
	"strings"

	"cutmark/internal/config"
	"cutmark/internal/deps"
)

// CheckServerFromConfig probes the API at the configured bind address.
// Wildcard hosts are dialled on loopback.
func CheckServerFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "API server"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	host, port, err := net.SplitHostPort(strings.TrimSpace(cfg.Server.Bind))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid bind %q", cfg.Server.Bind)}
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return CheckServer(ctx, "http://"+net.JoinHostPort(host, port))
}

// DecoderVersions reports the version line of each available decoder binary.
func DecoderVersions(ctx context.Context, statuses []deps.Status) map[string]string {
	versions := make(map[string]string, len(statuses))
	for _, status := range statuses {
		if !status.Available {
			continue
		}
		version, err := deps.Version(ctx, status.Command)
		if err != nil {
			versions[status.Name] = "unknown"
			continue
		}
		versions[status.Name] = version
	}
	return versions
}
