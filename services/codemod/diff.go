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
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	godiff "github.com/sourcegraph/go-diff/diff"
)

// DiffContextLines is the number of unchanged lines around each hunk.
const DiffContextLines = 3

// DiffStat counts changed lines in a unified diff.
type DiffStat struct {
	Added   int
	Changed int
	Deleted int
}

// FileDiff is a unified diff of one transformed file.
type FileDiff struct {
	Path string
	Text string
	Stat DiffStat
}

// Diff returns the unified diff between before and after. An empty Text
// means the two are identical.
func Diff(path, before, after string) (FileDiff, error) {
	fd := FileDiff{Path: path}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  DiffContextLines,
	})
	if err != nil {
		return fd, fmt.Errorf("diff %s: %w", path, err)
	}
	if text == "" {
		return fd, nil
	}
	fd.Text = text

	parsed, err := godiff.ParseFileDiff([]byte(text))
	if err != nil {
		return fd, fmt.Errorf("parse diff %s: %w", path, err)
	}
	st := parsed.Stat()
	fd.Stat = DiffStat{Added: int(st.Added), Changed: int(st.Changed), Deleted: int(st.Deleted)}
	return fd, nil
}
