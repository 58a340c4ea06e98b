// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command intl-codemod rewrites React sources to use react-intl and
// extracts the message catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// globalOptions hold flags shared by every subcommand.
type globalOptions struct {
	configPath   string
	maxKeyLength int
	exclude      string
	logLevel     string
	logJSON      bool
	traceOut     string
	metricsOut   string
}

// runOptions hold flags for run and catalog.
type runOptions struct {
	catalogOut string
	dryRun     bool
	diff       bool
	watch      bool
	cacheDir   string
	workers    int
	assumeYes  bool
	failFast   bool
	format     string
}

// serveOptions hold flags for serve.
type serveOptions struct {
	addr  string
	rps   float64
	burst int
	debug bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	ro := &runOptions{}

	root := &cobra.Command{
		Use:   "intl-codemod [paths...]",
		Short: "Rewrite React sources to use react-intl",
		Long: `intl-codemod finds user-visible text in JavaScript and TypeScript
React sources, replaces it with react-intl lookups and collects the
extracted messages into a catalog.

With no subcommand it behaves like "run".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunCommand(cmd, args, g, ro)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (default: discovered .intlcodemodrc.yaml)")
	pf.IntVar(&g.maxKeyLength, "max-key-length", 0, "Maximum catalog key length (default from config)")
	pf.StringVar(&g.exclude, "exclude", "", "Regular expression for paths to skip (default from config)")
	pf.StringVar(&g.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.BoolVar(&g.logJSON, "log-json", false, "Log as JSON")
	pf.StringVar(&g.traceOut, "trace-out", "", "Write OpenTelemetry spans to this file")
	pf.StringVar(&g.metricsOut, "metrics-out", "", "Write Prometheus metrics to this textfile on exit")

	addRunFlags(root, ro)

	run := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Rewrite sources in place and optionally write the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunCommand(cmd, args, g, ro)
		},
	}
	addRunFlags(run, ro)

	cat := &cobra.Command{
		Use:   "catalog [paths...]",
		Short: "Print the catalog extracted from paths without touching them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogCommand(cmd, args, g, ro)
		},
	}
	cat.Flags().StringVar(&ro.format, "format", "json", "Output format: json or yaml")
	cat.Flags().IntVar(&ro.workers, "workers", 0, "Parallel workers (default GOMAXPROCS)")

	so := &serveOptions{}
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transform and catalog operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeCommand(cmd, g, so)
		},
	}
	serve.Flags().StringVar(&so.addr, "addr", ":8080", "Listen address")
	serve.Flags().Float64Var(&so.rps, "rps", 50, "Requests per second allowed on /v1 (0 disables)")
	serve.Flags().IntVar(&so.burst, "burst", 100, "Rate limiter burst")
	serve.Flags().BoolVar(&so.debug, "debug", false, "Log every request")

	root.AddCommand(run, cat, serve)
	return root
}

func addRunFlags(cmd *cobra.Command, ro *runOptions) {
	f := cmd.Flags()
	f.StringVar(&ro.catalogOut, "catalog-out", "", "Merge the extracted catalog into this .json or .yaml file")
	f.BoolVar(&ro.dryRun, "dry-run", false, "Transform without writing files")
	f.BoolVar(&ro.diff, "diff", false, "Print a unified diff of every changed file")
	f.BoolVar(&ro.watch, "watch", false, "Keep running and re-transform files as they change")
	f.StringVar(&ro.cacheDir, "cache-dir", "", "Remember unchanged files in this directory")
	f.IntVar(&ro.workers, "workers", 0, "Parallel workers (default GOMAXPROCS)")
	f.BoolVarP(&ro.assumeYes, "yes", "y", false, "Do not ask before rewriting files")
	f.BoolVar(&ro.failFast, "fail-fast", false, "Stop at the first file that fails")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
