// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package files finds the source files the codemod should process.
package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// DefaultExcludePattern matches test and spec files by suffix or
// __tests__ directory.
const DefaultExcludePattern = `(/__tests__/.*|(\.|/)(test|spec))\.(js|jsx|ts|tsx)?$`

// DefaultExtensions are the source extensions processed by default.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

var defaultExclude = regexp.MustCompile(DefaultExcludePattern)

// Filter selects source files by extension and excludes test files.
//
// Thread Safety: Immutable; safe for concurrent use.
type Filter struct {
	exclude    *regexp.Regexp
	extensions map[string]struct{}
}

// NewFilter compiles excludePattern (DefaultExcludePattern when empty)
// and accepts files with one of extensions (DefaultExtensions when empty).
func NewFilter(excludePattern string, extensions []string) (*Filter, error) {
	exclude := defaultExclude
	if excludePattern != "" {
		re, err := regexp.Compile(excludePattern)
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern: %w", err)
		}
		exclude = re
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	f := &Filter{exclude: exclude, extensions: make(map[string]struct{}, len(extensions))}
	for _, ext := range extensions {
		f.extensions[strings.ToLower(ext)] = struct{}{}
	}
	return f, nil
}

// DefaultFilter returns a Filter using the default pattern and extensions.
func DefaultFilter() *Filter {
	f, _ := NewFilter("", nil)
	return f
}

// IsTestFile reports whether path matches the exclude pattern.
func (f *Filter) IsTestFile(path string) bool {
	return f.exclude.MatchString(filepath.ToSlash(path))
}

// HasSourceExtension reports whether path has an accepted extension.
func (f *Filter) HasSourceExtension(path string) bool {
	_, ok := f.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Include reports whether path should be transformed.
func (f *Filter) Include(path string) bool {
	return f.HasSourceExtension(path) && !f.IsTestFile(path)
}

// List returns the files under root accepted by the filter, sorted.
// root may be a single file. Dependency and hidden directories
// (node_modules, vendor, .git ...) are skipped.
func (f *Filter) List(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("list source files: %w", err)
	}
	if !info.IsDir() {
		if f.Include(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var out []string
	err = filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			if path != root && IgnoredDir(de.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if f.Include(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list source files: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

// IgnoredDir reports whether a directory named name is never searched.
func IgnoredDir(name string) bool {
	return name == "node_modules" || name == "vendor" || strings.HasPrefix(name, ".")
}

// ListSourceFiles lists the source files under rootPath, excluding paths
// matching excludePattern (DefaultExcludePattern when empty).
func ListSourceFiles(rootPath, excludePattern string) ([]string, error) {
	f, err := NewFilter(excludePattern, nil)
	if err != nil {
		return nil, err
	}
	return f.List(rootPath)
}

// IsTestFile reports whether path matches DefaultExcludePattern.
func IsTestFile(path string) bool {
	return defaultExclude.MatchString(filepath.ToSlash(path))
}
