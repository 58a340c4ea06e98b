// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/shamrt/ast-react-intl/services/codemod"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// confirmRewrite asks before files are rewritten in place.
func confirmRewrite(n int) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Rewrite up to %d files in place?", n)).
		Description("Use --dry-run --diff to preview, or --yes to skip this prompt.").
		Affirmative("Rewrite").
		Negative("Cancel").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return ok, nil
}

// printSummary writes the batch outcome, styled when tty is set.
func printSummary(out io.Writer, sum codemod.Summary, dryRun, tty bool) {
	style := func(s lipgloss.Style, text string) string {
		if !tty {
			return text
		}
		return s.Render(text)
	}

	verb := "rewritten"
	if dryRun {
		verb = "would change"
	}
	fmt.Fprintln(out, style(titleStyle, "intl-codemod summary"))
	fmt.Fprintf(out, "  files:    %d\n", len(sum.Files))
	fmt.Fprintf(out, "  %-9s %s\n", "changed:", style(changedStyle, fmt.Sprintf("%d %s", sum.Changed, verb)))
	if sum.Failed > 0 {
		fmt.Fprintf(out, "  %-9s %s\n", "failed:", style(failedStyle, fmt.Sprint(sum.Failed)))
		for _, fr := range sum.Files {
			if fr.Err != nil {
				fmt.Fprintf(out, "    %s\n", style(failedStyle, fr.Err.Error()))
			}
		}
	}
	if sum.Skipped > 0 {
		fmt.Fprintf(out, "  skipped:  %d\n", sum.Skipped)
	}
	fmt.Fprintf(out, "  phrases:  %d\n", sum.Phrases)
	fmt.Fprintln(out, style(mutedStyle, fmt.Sprintf("  run %s in %s", sum.RunID, sum.Duration.Round(time.Millisecond))))
}
