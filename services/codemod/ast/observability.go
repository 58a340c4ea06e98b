// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/shamrt/ast-react-intl/services/codemod/ast")

var (
	// parseDurationSeconds measures parse plus conversion time.
	// Labels: language (javascript, typescript, tsx), status (ok, error)
	parseDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "intl_codemod",
		Subsystem: "parser",
		Name:      "duration_seconds",
		Help:      "Time spent parsing and converting a source file",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"language", "status"})

	// parseTotal counts parse attempts.
	// Labels: language, status
	parseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intl_codemod",
		Subsystem: "parser",
		Name:      "parses_total",
		Help:      "Total parse attempts by language and status",
	}, []string{"language", "status"})
)

func startParseSpan(ctx context.Context, language, filePath string, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ast.Parse",
		trace.WithAttributes(
			attribute.String("language", language),
			attribute.String("file", filePath),
			attribute.Int("size_bytes", size),
		),
	)
}

func setParseSpanResult(span trace.Span, topLevelNodes int) {
	span.SetAttributes(attribute.Int("top_level_nodes", topLevelNodes))
}

func recordParseMetrics(language string, d time.Duration, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	parseDurationSeconds.WithLabelValues(language, status).Observe(d.Seconds())
	parseTotal.WithLabelValues(language, status).Inc()
}
