// Package main hosts the cutmark CLI entrypoint and command graph.
//
// The Cobra command tree runs the HTTP API, scans videos locally or against
// a running server, converts markdown documentation, renders figures, and
// inspects the analysis history. Configuration resolution and logger setup
// live in the shared command context so subcommands only deal with their
// own flags and output.
package main
