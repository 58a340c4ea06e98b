// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

// RegisterRoutes registers the /codemod endpoints on rg.
//
// Endpoints:
//
//	GET    /v1/codemod/health    - Health check
//	POST   /v1/codemod/transform - Rewrite one source file
//	GET    /v1/codemod/catalog   - Extracted catalog and phrases
//	DELETE /v1/codemod/catalog   - Clear extraction state
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	codemod := rg.Group("/codemod")
	{
		codemod.GET("/health", handlers.HandleHealth)
		codemod.POST("/transform", handlers.HandleTransform)
		codemod.GET("/catalog", handlers.HandleCatalog)
		codemod.DELETE("/catalog", handlers.HandleClearCatalog)
	}
}

// Options configures NewRouter.
type Options struct {
	// RequestsPerSecond limits /v1 requests. Zero disables the limit.
	RequestsPerSecond float64

	// Burst is the limiter bucket size. Values below 1 become 1.
	Burst int

	// Debug enables gin's request logger.
	Debug bool
}

// NewRouter builds the gin engine: recovery, otel tracing, the optional
// rate limit on /v1, the codemod routes and /metrics.
func NewRouter(handlers *Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("intl-codemod"))
	if opts.Debug {
		router.Use(gin.Logger())
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	if opts.RequestsPerSecond > 0 {
		burst := max(opts.Burst, 1)
		v1.Use(RateLimitMiddleware(rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)))
	}
	RegisterRoutes(v1, handlers)
	return router
}

// RateLimitMiddleware rejects requests over limiter's rate with 429.
//
// Thread Safety: This middleware is safe for concurrent use.
func RateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := limiter.Reserve()
		if !r.OK() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded", Code: "RATE_LIMITED"})
			return
		}
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			c.Header("Retry-After", retryAfter(delay))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded", Code: "RATE_LIMITED"})
			return
		}
		c.Next()
	}
}

// retryAfter rounds d up to whole seconds.
func retryAfter(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	return strconv.Itoa(max(secs, 1))
}
