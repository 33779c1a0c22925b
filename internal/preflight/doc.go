// Package preflight provides readiness checks for the filesystem paths,
// decoder binaries, and API endpoint that cutmark depends on.
//
// The server runs RunAll before it starts listening and refuses to start
// when a directory it writes into is unusable. The "cutmark doctor" command
// uses the individual checks to print a health table.
package preflight
