// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for catalog paths that are neither
// JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Format is a catalog file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the catalog format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Encode renders entries as a flat key to text document. JSON output has
// sorted keys, two-space indent and a trailing newline.
func Encode(entries map[string]string, format Format) ([]byte, error) {
	if entries == nil {
		entries = map[string]string{}
	}
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return nil, fmt.Errorf("encode json catalog: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("encode yaml catalog: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Decode parses a flat catalog document.
func Decode(data []byte, format Format) (map[string]string, error) {
	entries := make(map[string]string)
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &entries)
	case FormatYAML:
		err = yaml.Unmarshal(data, &entries)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s catalog: %w", format, err)
	}
	return entries, nil
}

// ReadFile loads a catalog file. A missing file yields an empty catalog.
func ReadFile(path string) (map[string]string, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Decode(data, format)
}

// MergeEntries returns existing overlaid with extracted: keys extracted in
// this run take the new text, every other existing key is kept.
func MergeEntries(existing, extracted map[string]string) map[string]string {
	out := make(map[string]string, len(existing)+len(extracted))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range extracted {
		out[k] = v
	}
	return out
}

// WriteResult describes what WriteFile did.
type WriteResult struct {
	Path    string
	Total   int
	Added   int
	Updated int
}

// WriteFile merges extracted into the catalog at path and writes it back,
// creating parent directories as needed.
func WriteFile(path string, extracted map[string]string) (WriteResult, error) {
	format, err := FormatFor(path)
	if err != nil {
		return WriteResult{}, err
	}
	existing, err := ReadFile(path)
	if err != nil {
		return WriteResult{}, err
	}

	res := WriteResult{Path: path}
	for k, v := range extracted {
		prev, ok := existing[k]
		switch {
		case !ok:
			res.Added++
		case prev != v:
			res.Updated++
		}
	}
	merged := MergeEntries(existing, extracted)
	res.Total = len(merged)

	data, err := Encode(merged, format)
	if err != nil {
		return WriteResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("create catalog directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WriteResult{}, fmt.Errorf("write catalog: %w", err)
	}
	return res, nil
}
