// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTestFile(t *testing.T) {
	tests := map[string]bool{
		"src/App.test.js":             true,
		"src/App.spec.tsx":            true,
		"src/__tests__/App.js":        true,
		"src/components/test.js":      true,
		"src/App.js":                  false,
		"src/Contest.tsx":             false,
		"src/latest.ts":               false,
		`src\__tests__\Windows.jsx`:   filepath.Separator == '\\',
		"src/components/Spec/Form.js": false,
	}
	for path, want := range tests {
		assert.Equal(t, want, IsTestFile(path), path)
	}
}

func TestFilter_Include(t *testing.T) {
	f := DefaultFilter()
	assert.True(t, f.Include("a/b/Button.jsx"))
	assert.True(t, f.Include("a/b/Button.TSX"))
	assert.False(t, f.Include("a/b/styles.css"))
	assert.False(t, f.Include("a/b/Button.test.tsx"))
}

func TestNewFilter_Invalid(t *testing.T) {
	_, err := NewFilter("[", nil)
	assert.Error(t, err)
}

func TestListSourceFiles(t *testing.T) {
	root := t.TempDir()
	write := func(rel string) {
		t.Helper()
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	write("src/App.js")
	write("src/components/Button.tsx")
	write("src/components/Button.test.tsx")
	write("src/__tests__/App.js")
	write("src/util.ts")
	write("src/styles.css")
	write("node_modules/lib/index.js")
	write(".cache/out.js")
	write("vendor/x.js")

	got, err := ListSourceFiles(root, "")
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "src", "App.js"),
		filepath.Join(root, "src", "components", "Button.tsx"),
		filepath.Join(root, "src", "util.ts"),
	}
	assert.Equal(t, want, got)

	custom, err := ListSourceFiles(root, `util\.ts$`)
	require.NoError(t, err)
	assert.Contains(t, custom, filepath.Join(root, "src", "components", "Button.test.tsx"))
	assert.NotContains(t, custom, filepath.Join(root, "src", "util.ts"))
}

func TestList_SingleFile(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "One.jsx")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	got, err := DefaultFilter().List(p)
	require.NoError(t, err)
	assert.Equal(t, []string{p}, got)

	_, err = DefaultFilter().List(filepath.Join(root, "missing"))
	assert.Error(t, err)
}
