// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxKeyLength != 40 {
		t.Errorf("MaxKeyLength = %d, want 40", cfg.MaxKeyLength)
	}
	if cfg.ContentForm != ContentFormComponent {
		t.Errorf("ContentForm = %q", cfg.ContentForm)
	}
	if cfg.Intl.ImportSource != "react-intl" || cfg.Intl.Hook != "useIntl" || cfg.Intl.Accessor != "intl" {
		t.Errorf("Intl = %+v", cfg.Intl)
	}
	if cfg.Print.QuoteRune() != '\'' || cfg.Print.LineTerminator != "\n" || cfg.Print.TrailingComma {
		t.Errorf("Print = %+v", cfg.Print)
	}
	if !contains(cfg.DenylistedAttributeNames, "type") {
		t.Error("type should be a denylisted attribute name")
	}
	if !contains(cfg.DenylistedCallCallees, "classNames") {
		t.Error("classNames should be a denylisted callee")
	}
	if cfg.ExcludePattern == "" || !strings.Contains(cfg.ExcludePattern, "__tests__") {
		t.Errorf("ExcludePattern = %q", cfg.ExcludePattern)
	}
}

func TestLoad_Override(t *testing.T) {
	override := []byte(`
max_key_length: 24
denylisted_call_callees: [track]
content_form: call
print:
  quote: double
  trailing_comma: true
`)
	cfg, err := Load(context.Background(), override)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxKeyLength != 24 {
		t.Errorf("MaxKeyLength = %d", cfg.MaxKeyLength)
	}
	if len(cfg.DenylistedCallCallees) != 1 || cfg.DenylistedCallCallees[0] != "track" {
		t.Errorf("DenylistedCallCallees = %v, want override to replace the list", cfg.DenylistedCallCallees)
	}
	if cfg.ContentForm != ContentFormCall {
		t.Errorf("ContentForm = %q", cfg.ContentForm)
	}
	if cfg.Print.QuoteRune() != '"' || !cfg.Print.TrailingComma {
		t.Errorf("Print = %+v", cfg.Print)
	}
	if cfg.Print.LineTerminator != "\n" {
		t.Errorf("LineTerminator = %q, want default kept", cfg.Print.LineTerminator)
	}
	if !contains(cfg.DenylistedAttributeNames, "className") {
		t.Error("keys absent from the override should keep their defaults")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"key length too large", "max_key_length: 500"},
		{"negative key length", "max_key_length: -1"},
		{"bad content form", "content_form: template"},
		{"bad quote", "print: {quote: backtick}"},
		{"bad line terminator", "print: {line_terminator: ';'}"},
		{"bad pattern", "text_attribute_patterns: ['(']"},
		{"bad exclude", "exclude_pattern: '['"},
		{"bad accessor", "intl: {import_source: react-intl, hook: useIntl, accessor: 'my intl', method: formatMessage, component: FormattedMessage}"},
		{"bad extension", "extensions: [js]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), []byte(tt.yaml))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(context.Background(), []byte("max_key_length: [oops"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_TooLarge(t *testing.T) {
	_, err := Load(context.Background(), make([]byte, MaxConfigFileSize+1))
	if err == nil {
		t.Fatal("expected size error")
	}
}

func TestDiscoverAndLoadFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, ".intlcodemodrc.yaml")
	if err := os.WriteFile(path, []byte("emit_ids: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, ok := Discover(nested)
	if !ok || found != path {
		t.Fatalf("Discover = %q, %v; want %q", found, ok, path)
	}

	cfg, err := LoadFile(context.Background(), found)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !cfg.EmitIDs {
		t.Error("EmitIDs = false, want true from project file")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGet_MemoisedAndReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Error("Get returned different instances without Reset")
	}

	Reset()
	third, err := Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if third == first {
		t.Error("Reset did not drop the cached config")
	}
}

func TestGet_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	if _, err := Get(nil); err == nil {
		t.Fatal("expected error for nil ctx")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
