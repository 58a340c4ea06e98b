// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package codemod rewrites React source files so user-visible text goes
// through react-intl lookups, and collects the extracted catalog.
package codemod

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/shamrt/ast-react-intl/services/codemod/ast"
	"github.com/shamrt/ast-react-intl/services/codemod/cache"
	"github.com/shamrt/ast-react-intl/services/codemod/catalog"
	"github.com/shamrt/ast-react-intl/services/codemod/config"
	"github.com/shamrt/ast-react-intl/services/codemod/files"
	"github.com/shamrt/ast-react-intl/services/codemod/markup"
	"github.com/shamrt/ast-react-intl/services/codemod/rewrite"
	"github.com/shamrt/ast-react-intl/services/codemod/scope"
)

// Result is the outcome of one Transform.
type Result struct {
	// Source is the rewritten text, or the input when Changed is false.
	Source string

	// Changed is false when the file was left untouched.
	Changed bool

	// Report counts rewrites per site.
	Report rewrite.Report
}

// TransformerOption configures a Transformer.
type TransformerOption func(*Transformer)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) TransformerOption {
	return func(t *Transformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithCache enables the skip-cache for unchanged content.
func WithCache(store *cache.Store) TransformerOption {
	return func(t *Transformer) {
		t.cache = store
	}
}

// WithParserOptions passes options through to the parser.
func WithParserOptions(opts ...ast.ParserOption) TransformerOption {
	return func(t *Transformer) {
		t.parserOpts = append(t.parserOpts, opts...)
	}
}

// Transformer rewrites one file at a time and owns the extraction state
// for everything it rewrites.
//
// Description:
//
//	Transform parses the file, runs the rewrite engine, puts the accessor
//	and imports in scope, and prints the tree. Files whose path looks like
//	a test, files with nothing to rewrite, and files the skip-cache knows
//	are unchanged come back with Changed=false.
//
// Thread Safety:
//
//	Safe for concurrent use. Extraction state is serialized by the
//	accumulator; concurrent Transforms append in completion order.
type Transformer struct {
	cfg        *config.Config
	parser     *ast.Parser
	parserOpts []ast.ParserOption
	engine     *rewrite.Engine
	injector   *scope.Injector
	acc        *catalog.Accumulator
	filter     *files.Filter
	printOpts  markup.PrintOptions
	logger     *slog.Logger
	cache      *cache.Store
	configHash []byte
}

// NewTransformer builds a Transformer for cfg (config.Default() when nil).
func NewTransformer(cfg *config.Config, opts ...TransformerOption) (*Transformer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	t := &Transformer{
		cfg:    cfg,
		acc:    catalog.NewAccumulator(cfg.MaxKeyLength),
		logger: slog.Default(),
		printOpts: markup.PrintOptions{
			Quote:          cfg.Print.QuoteRune(),
			TrailingComma:  cfg.Print.TrailingComma,
			LineTerminator: cfg.Print.LineTerminator,
		},
	}
	for _, opt := range opts {
		opt(t)
	}

	engine, err := rewrite.New(cfg, t.acc)
	if err != nil {
		return nil, fmt.Errorf("codemod.NewTransformer: %w", err)
	}
	filter, err := files.NewFilter(cfg.ExcludePattern, cfg.Extensions)
	if err != nil {
		return nil, fmt.Errorf("codemod.NewTransformer: %w", err)
	}
	hash, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("codemod.NewTransformer: hash config: %w", err)
	}

	t.engine = engine
	t.filter = filter
	t.injector = scope.New(cfg)
	t.parser = ast.NewParser(append([]ast.ParserOption{ast.WithLogger(t.logger)}, t.parserOpts...)...)
	t.configHash = hash
	return t, nil
}

// Config returns the configuration the Transformer was built with.
func (t *Transformer) Config() *config.Config { return t.cfg }

// Filter returns the source file filter derived from the configuration.
func (t *Transformer) Filter() *files.Filter { return t.filter }

// withAccumulator returns a Transformer sharing everything with t except
// the extraction state.
func (t *Transformer) withAccumulator(acc *catalog.Accumulator) *Transformer {
	cp := *t
	cp.acc = acc
	cp.engine = t.engine.WithAccumulator(acc)
	return &cp
}

// Transform rewrites contents, the source of the file at path.
//
// Description:
//
//	Returns Changed=false with the input as Source when nothing was
//	rewritten. Parse failures return the input unchanged and an error
//	wrapping ast.ErrSyntax, ast.ErrFileTooLarge, ast.ErrInvalidContent or
//	ast.ErrUnsupportedLanguage.
func (t *Transformer) Transform(ctx context.Context, contents []byte, path string) (Result, error) {
	ctx, span := tracer.Start(ctx, "codemod.Transform",
		trace.WithAttributes(
			attribute.String("file", path),
			attribute.Int("size_bytes", len(contents)),
		),
	)
	defer span.End()

	start := time.Now()
	unchanged := Result{Source: string(contents)}

	if t.filter.IsTestFile(path) {
		recordFile(outcomeSkipped, time.Since(start))
		span.SetAttributes(attribute.String("outcome", outcomeSkipped))
		return unchanged, nil
	}

	var fingerprint string
	if t.cache != nil {
		fingerprint = cache.Fingerprint(contents, t.configHash)
		hit, err := t.cache.IsUnchanged(ctx, fingerprint)
		if err != nil {
			t.logger.Warn("skip cache lookup failed", slog.String("file", path), slog.String("error", err.Error()))
		}
		recordCacheLookup(hit)
		if hit {
			recordFile(outcomeCached, time.Since(start))
			span.SetAttributes(attribute.String("outcome", outcomeCached))
			return unchanged, nil
		}
	}

	prog, err := t.parser.Parse(ctx, contents, path)
	if err != nil {
		recordFile(outcomeError, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return unchanged, fmt.Errorf("transform %s: %w", path, err)
	}

	report := t.engine.Rewrite(prog)
	if !report.Rewrote() {
		if t.cache != nil {
			if err := t.cache.MarkUnchanged(ctx, fingerprint); err != nil {
				t.logger.Warn("skip cache save failed", slog.String("file", path), slog.String("error", err.Error()))
			}
		}
		recordFile(outcomeUnchanged, time.Since(start))
		span.SetAttributes(attribute.String("outcome", outcomeUnchanged))
		return unchanged, nil
	}

	injected := t.injector.Apply(prog, report.ComponentLookups > 0, report.CallLookups > 0)
	out := markup.Print(prog, t.printOpts)

	recordRewrites(report)
	recordFile(outcomeRewritten, time.Since(start))
	span.SetAttributes(
		attribute.String("outcome", outcomeRewritten),
		attribute.Int("rewrites.content", report.Content),
		attribute.Int("rewrites.attribute", report.Attributes),
		attribute.Int("rewrites.conditional", report.Conditionals),
		attribute.Int("rewrites.call", report.Calls),
		attribute.Int("accessors_injected", injected.Functions),
	)
	t.logger.Debug("rewrote file",
		slog.String("file", path),
		slog.Int("content", report.Content),
		slog.Int("attributes", report.Attributes),
		slog.Int("conditionals", report.Conditionals),
		slog.Int("calls", report.Calls),
	)

	return Result{Source: out, Changed: out != string(contents), Report: report}, nil
}

// ExtractedPhrases returns every phrase extracted since the last clear.
func (t *Transformer) ExtractedPhrases() []string { return t.acc.Phrases() }

// Catalog returns a copy of the key to text catalog.
func (t *Transformer) Catalog() map[string]string { return t.acc.Catalog() }

// ClearExtractionState forgets all extracted phrases and catalog entries.
func (t *Transformer) ClearExtractionState() { t.acc.Clear() }

// SetMaxKeyLength changes the key length for later extractions. Values
// below 1 are ignored.
func (t *Transformer) SetMaxKeyLength(n int) { t.acc.SetMaxKeyLength(n) }

// Accumulator exposes the extraction state.
func (t *Transformer) Accumulator() *catalog.Accumulator { return t.acc }
