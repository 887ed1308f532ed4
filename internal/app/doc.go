// Package app loads configuration and assembles the dependency graph for
// the CLI surface.
package app
