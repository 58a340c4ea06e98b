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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"

	"github.com/shamrt/ast-react-intl/services/codemod/rewrite"
)

var tracer = otel.Tracer("github.com/shamrt/ast-react-intl/services/codemod")

// File outcomes used as metric labels and span attributes.
const (
	outcomeRewritten = "rewritten"
	outcomeUnchanged = "unchanged"
	outcomeSkipped   = "skipped"
	outcomeCached    = "cached"
	outcomeError     = "error"
)

var (
	// filesTotal counts transformed files.
	// Labels: outcome (rewritten, unchanged, skipped, cached, error)
	filesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intl_codemod",
		Name:      "files_total",
		Help:      "Files passed to Transform by outcome",
	}, []string{"outcome"})

	// rewritesTotal counts replaced text by site.
	// Labels: site (content, attribute, conditional, call)
	rewritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intl_codemod",
		Name:      "rewrites_total",
		Help:      "Text replaced with lookups by rewrite site",
	}, []string{"site"})

	phrasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "intl_codemod",
		Name:      "phrases_total",
		Help:      "Phrases merged into a batch catalog",
	})

	transformDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "intl_codemod",
		Name:      "transform_duration_seconds",
		Help:      "Time spent in Transform by outcome",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"outcome"})

	// cacheLookupsTotal counts skip-cache lookups.
	// Labels: result (hit, miss)
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intl_codemod",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Skip-cache lookups by result",
	}, []string{"result"})
)

func recordFile(outcome string, d time.Duration) {
	filesTotal.WithLabelValues(outcome).Inc()
	transformDurationSeconds.WithLabelValues(outcome).Observe(d.Seconds())
}

func recordRewrites(r rewrite.Report) {
	for _, site := range rewrite.Sites {
		if n := r.BySite(site); n > 0 {
			rewritesTotal.WithLabelValues(string(site)).Add(float64(n))
		}
	}
}

func recordCacheLookup(hit bool) {
	if hit {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}

func recordPhrases(n int) {
	phrasesTotal.Add(float64(n))
}
