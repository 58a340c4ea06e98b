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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/shamrt/ast-react-intl/services/codemod"
	"github.com/shamrt/ast-react-intl/services/codemod/cache"
	"github.com/shamrt/ast-react-intl/services/codemod/config"
)

// parseLogLevel maps a --log-level value to a slog level.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// setupLogging installs the default logger writing to w.
func setupLogging(w io.Writer, g *globalOptions) (*slog.Logger, error) {
	level, err := parseLogLevel(g.logLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if g.logJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

// setupTracing exports spans to path when set. The returned function
// flushes and closes the exporter.
func setupTracing(path string) (func(context.Context) error, error) {
	if path == "" {
		return func(context.Context) error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(f), stdouttrace.WithPrettyPrint())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), f.Close())
	}, nil
}

// writeMetrics writes the default registry to path in the textfile
// collector format.
func writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// loadConfig reads --config, or the discovered project config, and
// applies flag overrides to a copy.
func loadConfig(ctx context.Context, g *globalOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(ctx, g.configPath)
	} else {
		cfg, err = config.Get(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := *cfg
	if g.maxKeyLength > 0 {
		out.MaxKeyLength = g.maxKeyLength
	}
	if g.exclude != "" {
		out.ExcludePattern = g.exclude
	}
	return &out, nil
}

// session is the state shared by run, catalog and serve.
type session struct {
	logger      *slog.Logger
	transformer *codemod.Transformer
	store       *cache.Store
	shutdown    func(context.Context) error
}

func (s *session) close(ctx context.Context, g *globalOptions) error {
	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.shutdown != nil {
		errs = append(errs, s.shutdown(ctx))
	}
	errs = append(errs, writeMetrics(g.metricsOut))
	return errors.Join(errs...)
}

// openSession sets up logging, tracing, config, the optional skip-cache
// and the Transformer.
func openSession(ctx context.Context, stderr io.Writer, g *globalOptions, cacheDir string) (*session, error) {
	logger, err := setupLogging(stderr, g)
	if err != nil {
		return nil, err
	}
	s := &session{logger: logger}
	if s.shutdown, err = setupTracing(g.traceOut); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(ctx, g)
	if err != nil {
		_ = s.close(ctx, g)
		return nil, err
	}

	opts := []codemod.TransformerOption{codemod.WithLogger(logger)}
	if cacheDir != "" {
		store, err := cache.Open(cacheDir, cache.WithLogger(logger))
		if err != nil {
			_ = s.close(ctx, g)
			return nil, err
		}
		s.store = store
		opts = append(opts, codemod.WithCache(store))
	}

	if s.transformer, err = codemod.NewTransformer(cfg, opts...); err != nil {
		_ = s.close(ctx, g)
		return nil, err
	}
	return s, nil
}
