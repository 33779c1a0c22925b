// Package textutil provides filename helpers for client-supplied upload
// names.
package textutil
