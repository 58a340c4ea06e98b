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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_RewritesChangedFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "Late.jsx")

	r := &Runner{Transformer: newTransformer(t), Workers: 1}
	w, err := NewWatcher(r, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan Summary, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(s Summary, _ error) { batches <- s })
	}()

	require.NoError(t, os.WriteFile(path, []byte("export default () => <p>Written later on</p>;\n"), 0o644))

	select {
	case sum := <-batches:
		require.Len(t, sum.Files, 1)
		assert.Equal(t, path, sum.Files[0].Path)
		assert.True(t, sum.Files[0].Written)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch after writing a watched file")
	}

	cancel()
	require.NoError(t, <-done)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "<FormattedMessage defaultMessage='Written later on' />")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, err := NewWatcher(&Runner{Transformer: newTransformer(t)}, 0)
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.Equal(t, DefaultDebounce, w.debounce)
	require.NoError(t, w.Add(dir))

	w.pending[filepath.Join(dir, "a.jsx")] = time.Now().Add(-time.Second)
	w.pending[filepath.Join(dir, "b.jsx")] = time.Now()
	assert.Equal(t, []string{filepath.Join(dir, "a.jsx")}, w.settled(time.Now()))
	assert.Len(t, w.pending, 1)
}
