// Package docs converts markdown documentation into standalone HTML pages
// sharing one stylesheet and navigation bar.
package docs
