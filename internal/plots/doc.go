// Package plots renders flow-field figures and analysis annotations to
// standalone interactive HTML pages.
//
// Fields are row-major 2-D arrays (rows are y). Each renderer validates its
// inputs, lays out one or more go-echarts charts on a page, writes the page
// under the configured results directory unless an explicit path is given,
// and optionally appends an analysis block to the written file.
//
// AddAnalysis edits an existing page in place under an advisory lock on the
// file, so concurrent annotators of the same page do not lose updates.
package plots
