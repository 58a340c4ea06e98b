// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package codemod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/shamrt/ast-react-intl/services/codemod/catalog"
)

// FileResult is what happened to one file in a batch.
type FileResult struct {
	Path string

	// Original is the file content before the transform.
	Original string

	Result Result

	// Written is true when the rewritten source was saved.
	Written bool

	// Skipped is true when the batch was canceled before the file ran.
	Skipped bool

	Err error
}

// Summary aggregates a batch run.
type Summary struct {
	RunID    string
	Files    []FileResult
	Changed  int
	Failed   int
	Skipped  int
	Phrases  int
	Duration time.Duration
}

// Runner transforms many files in parallel.
//
// Description:
//
//	Every file gets its own accumulator. After all workers finish, the
//	accumulators are merged into the Transformer's in input order, so the
//	catalog does not depend on scheduling or worker count. A failing file
//	is logged and reported; the rest of the batch continues unless
//	FailFast is set.
type Runner struct {
	Transformer *Transformer

	// Workers bounds concurrency. Zero means GOMAXPROCS.
	Workers int

	// DryRun transforms without writing files.
	DryRun bool

	// FailFast cancels the batch at the first file error.
	FailFast bool

	Logger *slog.Logger
}

// Run transforms paths and returns the per-file results. The error joins
// every file error, or is the first one when FailFast is set.
func (r *Runner) Run(ctx context.Context, paths []string) (Summary, error) {
	runID := uuid.NewString()
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("run_id", runID))

	ctx, span := tracer.Start(ctx, "codemod.Runner.Run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("files", len(paths)),
			attribute.Bool("dry_run", r.DryRun),
		),
	)
	defer span.End()

	start := time.Now()
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger.Info("batch started", slog.Int("files", len(paths)), slog.Int("workers", workers), slog.Bool("dry_run", r.DryRun))

	results := make([]FileResult, len(paths))
	accs := make([]*catalog.Accumulator, len(paths))
	maxKeyLength := r.Transformer.acc.MaxKeyLength()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = FileResult{Path: path, Skipped: true}
				return nil
			}
			acc := catalog.NewAccumulator(maxKeyLength)
			res := r.processFile(gctx, r.Transformer.withAccumulator(acc), path)
			results[i] = res
			if res.Err != nil {
				logger.Warn("file failed", slog.String("file", path), slog.String("error", res.Err.Error()))
				if r.FailFast {
					return res.Err
				}
				return nil
			}
			accs[i] = acc
			return nil
		})
	}
	firstErr := g.Wait()

	sum := Summary{RunID: runID, Files: results}
	var errs []error
	before := r.Transformer.acc.Len()
	for i, res := range results {
		r.Transformer.acc.Merge(accs[i])
		switch {
		case res.Skipped:
			sum.Skipped++
		case res.Err != nil:
			sum.Failed++
			errs = append(errs, res.Err)
		case res.Result.Changed:
			sum.Changed++
		}
	}
	sum.Phrases = r.Transformer.acc.Len() - before
	sum.Duration = time.Since(start)
	recordPhrases(sum.Phrases)

	span.SetAttributes(
		attribute.Int("changed", sum.Changed),
		attribute.Int("failed", sum.Failed),
		attribute.Int("phrases", sum.Phrases),
	)
	logger.Info("batch finished",
		slog.Int("files", len(paths)),
		slog.Int("changed", sum.Changed),
		slog.Int("failed", sum.Failed),
		slog.Int("skipped", sum.Skipped),
		slog.Int("phrases", sum.Phrases),
		slog.Duration("duration", sum.Duration),
	)

	err := errors.Join(errs...)
	if r.FailFast && firstErr != nil {
		err = firstErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch had failures")
	}
	return sum, err
}

func (r *Runner) processFile(ctx context.Context, t *Transformer, path string) FileResult {
	fr := FileResult{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		fr.Err = fmt.Errorf("stat %s: %w", path, err)
		return fr
	}
	content, err := os.ReadFile(path)
	if err != nil {
		fr.Err = fmt.Errorf("read %s: %w", path, err)
		return fr
	}
	fr.Original = string(content)

	res, err := t.Transform(ctx, content, path)
	fr.Result = res
	if err != nil {
		fr.Err = err
		return fr
	}
	if !res.Changed || r.DryRun {
		return fr
	}
	if err := os.WriteFile(path, []byte(res.Source), info.Mode().Perm()); err != nil {
		fr.Err = fmt.Errorf("write %s: %w", path, err)
		return fr
	}
	fr.Written = true
	return fr
}
