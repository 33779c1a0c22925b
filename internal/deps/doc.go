// Package deps checks that the external executables cutmark shells out to
// are installed and resolvable on PATH.
package deps
