// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shamrt/ast-react-intl/services/codemod"
	"github.com/shamrt/ast-react-intl/services/codemod/catalog"
	"github.com/shamrt/ast-react-intl/services/codemod/files"
)

// collectPaths expands args (default ".") into the sorted, de-duplicated
// source files the filter accepts.
func collectPaths(filter *files.Filter, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	seen := make(map[string]struct{})
	var out []string
	for _, arg := range args {
		found, err := filter.List(arg)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func runRunCommand(cmd *cobra.Command, args []string, g *globalOptions, ro *runOptions) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, cmd.ErrOrStderr(), g, ro.cacheDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(context.WithoutCancel(ctx), g); cerr != nil && err == nil {
			err = cerr
		}
	}()

	out := cmd.OutOrStdout()
	tty := isTerminal(out)

	paths, err := collectPaths(s.transformer.Filter(), args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(out, "No source files found.")
		return nil
	}

	if !ro.dryRun && !ro.assumeYes && tty {
		ok, err := confirmRewrite(len(paths))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	runner := &codemod.Runner{
		Transformer: s.transformer,
		Workers:     ro.workers,
		DryRun:      ro.dryRun,
		FailFast:    ro.failFast,
		Logger:      s.logger,
	}
	sum, runErr := runner.Run(ctx, paths)
	report(out, s.logger, sum, ro, tty)
	if err := saveCatalog(out, s.logger, s.transformer, ro); err != nil {
		return err
	}

	if !ro.watch {
		return runErr
	}

	w, err := codemod.NewWatcher(runner, 0)
	if err != nil {
		return err
	}
	for _, arg := range orDot(args) {
		if err := w.Add(arg); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, "Watching for changes. Press Ctrl+C to stop.")
	return w.Run(ctx, func(sum codemod.Summary, _ error) {
		report(out, s.logger, sum, ro, tty)
		if err := saveCatalog(out, s.logger, s.transformer, ro); err != nil {
			s.logger.Warn("catalog write failed", slog.String("error", err.Error()))
		}
	})
}

func orDot(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// report prints diffs when asked and the batch summary.
func report(out io.Writer, logger *slog.Logger, sum codemod.Summary, ro *runOptions, tty bool) {
	if ro.diff {
		for _, fr := range sum.Files {
			if !fr.Result.Changed {
				continue
			}
			d, err := codemod.Diff(fr.Path, fr.Original, fr.Result.Source)
			if err != nil {
				logger.Warn("diff failed", slog.String("file", fr.Path), slog.String("error", err.Error()))
			}
			fmt.Fprint(out, d.Text)
		}
	}
	printSummary(out, sum, ro.dryRun, tty)
}

// saveCatalog merges the transformer's catalog into --catalog-out. Dry
// runs write nothing.
func saveCatalog(out io.Writer, logger *slog.Logger, t *codemod.Transformer, ro *runOptions) error {
	if ro.catalogOut == "" || ro.dryRun {
		return nil
	}
	res, err := catalog.WriteFile(ro.catalogOut, t.Catalog())
	if err != nil {
		return err
	}
	logger.Info("catalog written",
		slog.String("path", res.Path),
		slog.Int("total", res.Total),
		slog.Int("added", res.Added),
		slog.Int("updated", res.Updated))
	fmt.Fprintf(out, "Catalog %s: %d entries (%d added, %d updated)\n", res.Path, res.Total, res.Added, res.Updated)
	return nil
}

func runCatalogCommand(cmd *cobra.Command, args []string, g *globalOptions, ro *runOptions) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	format := catalog.Format(ro.format)
	if format != catalog.FormatJSON && format != catalog.FormatYAML {
		return fmt.Errorf("%w: %q", catalog.ErrUnsupportedFormat, ro.format)
	}

	s, err := openSession(ctx, cmd.ErrOrStderr(), g, "")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(context.WithoutCancel(ctx), g); cerr != nil && err == nil {
			err = cerr
		}
	}()

	paths, err := collectPaths(s.transformer.Filter(), args)
	if err != nil {
		return err
	}
	runner := &codemod.Runner{Transformer: s.transformer, Workers: ro.workers, DryRun: true, Logger: s.logger}
	_, runErr := runner.Run(ctx, paths)

	data, err := catalog.Encode(s.transformer.Catalog(), format)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}
	return runErr
}
