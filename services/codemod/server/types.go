// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes the codemod over HTTP.
package server

// TransformRequest is the body of POST /v1/codemod/transform.
type TransformRequest struct {
	// Path selects the grammar and the test-file check. It is not read.
	Path string `json:"path" validate:"required,max=4096"`

	Source string `json:"source" validate:"max=10485760"`
}

// TransformResponse is returned by POST /v1/codemod/transform.
type TransformResponse struct {
	Source   string         `json:"source"`
	Changed  bool           `json:"changed"`
	Rewrites map[string]int `json:"rewrites"`
}

// CatalogResponse is returned by GET /v1/codemod/catalog.
type CatalogResponse struct {
	Entries map[string]string `json:"entries"`
	Phrases []string          `json:"phrases"`
}

// HealthResponse is returned by GET /v1/codemod/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
