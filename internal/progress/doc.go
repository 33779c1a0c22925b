// Package progress defines the cut detection event stream.
//
// A stream carries an optional start event, any number of progress events and
// exactly one terminal event (result or error). Events are encoded as
// newline-delimited JSON objects tagged by a "type" field. Writer enforces the
// ordering on the producing side and flushes each line when the destination
// supports it; Read enforces the terminal-event contract on the consuming side
// so a dropped connection is distinguishable from a finished scan.
package progress
