// Package main is the entry point for the nodefleet CLI.
//
// nodefleet reconciles a named cluster of cloud instances toward a desired
// count: it resumes stopped instances, creates missing ones with a single
// designated head, and tears clusters down again including their volumes.
//
// Commands: run, stop, terminate, query, info, version.
//
// For detailed usage information, run:
//
//	nodefleet --help
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/imamik/nodefleet/cmd/nodefleet/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.HiRedString(err.Error()))
		os.Exit(1)
	}
}
