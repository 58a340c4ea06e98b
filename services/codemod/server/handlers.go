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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/shamrt/ast-react-intl/services/codemod"
	"github.com/shamrt/ast-react-intl/services/codemod/ast"
	"github.com/shamrt/ast-react-intl/services/codemod/rewrite"
)

// Handlers serves codemod requests against one Transformer, so the
// catalog accumulates across requests until it is cleared.
//
// Thread Safety: Safe for concurrent use.
type Handlers struct {
	transformer *codemod.Transformer
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewHandlers returns handlers for t. A nil logger uses slog.Default().
func NewHandlers(t *codemod.Transformer, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{transformer: t, validate: validator.New(), logger: logger}
}

// HandleHealth handles GET /v1/codemod/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleTransform handles POST /v1/codemod/transform.
//
// Response:
//
//	200 OK: TransformResponse
//	400 Bad Request: malformed body, invalid fields, bad content or language
//	413 Request Entity Too Large: source over the parser limit
//	422 Unprocessable Entity: source does not parse
func (h *Handlers) HandleTransform(c *gin.Context) {
	var req TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}

	res, err := h.transformer.Transform(c.Request.Context(), []byte(req.Source), req.Path)
	if err != nil {
		status, code := transformErrorStatus(err)
		h.logger.Info("transform rejected",
			slog.String("path", req.Path),
			slog.String("code", code),
			slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	rewrites := make(map[string]int, len(rewrite.Sites))
	for _, site := range rewrite.Sites {
		rewrites[string(site)] = res.Report.BySite(site)
	}
	c.JSON(http.StatusOK, TransformResponse{
		Source:   res.Source,
		Changed:  res.Changed,
		Rewrites: rewrites,
	})
}

func transformErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ast.ErrSyntax):
		return http.StatusUnprocessableEntity, "SYNTAX_ERROR"
	case errors.Is(err, ast.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	case errors.Is(err, ast.ErrInvalidContent):
		return http.StatusBadRequest, "INVALID_CONTENT"
	case errors.Is(err, ast.ErrUnsupportedLanguage):
		return http.StatusBadRequest, "UNSUPPORTED_LANGUAGE"
	}
	return http.StatusInternalServerError, "TRANSFORM_FAILED"
}

// HandleCatalog handles GET /v1/codemod/catalog.
func (h *Handlers) HandleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, CatalogResponse{
		Entries: h.transformer.Catalog(),
		Phrases: h.transformer.ExtractedPhrases(),
	})
}

// HandleClearCatalog handles DELETE /v1/codemod/catalog.
func (h *Handlers) HandleClearCatalog(c *gin.Context) {
	h.transformer.ClearExtractionState()
	c.Status(http.StatusNoContent)
}
