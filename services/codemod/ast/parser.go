// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast parses JavaScript and TypeScript sources into the markup
// tree using tree-sitter.
package ast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/shamrt/ast-react-intl/services/codemod/markup"
)

const (
	// DefaultMaxFileSize is the largest source the parser accepts.
	DefaultMaxFileSize int64 = 10 * 1024 * 1024

	// WarnFileSize is the size above which a warning is logged.
	WarnFileSize = 1024 * 1024
)

var (
	// ErrFileTooLarge is returned when content exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent is returned for content that is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrSyntax is returned when the source has syntax errors. Rewriting a
	// partially parsed file could corrupt it, so such files are skipped.
	ErrSyntax = errors.New("syntax error")

	// ErrUnsupportedLanguage is returned for unknown file extensions.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMaxFileSize sets the maximum file size the parser will accept.
//
// Example:
//
//	parser := NewParser(WithMaxFileSize(5 * 1024 * 1024)) // 5MB limit
func WithMaxFileSize(bytes int64) ParserOption {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// WithLogger sets the logger used for parse warnings.
func WithLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Parser turns source text into a markup.Program.
//
// Description:
//
//	Parser picks a tree-sitter grammar from the file extension (tsx for
//	.tsx, typescript for .ts/.mts/.cts, javascript with JSX otherwise) and
//	converts the syntax tree into the markup model, keeping every byte of
//	the source either in a modelled node or in a gap chunk.
//
// Thread Safety:
//
//	Parser instances are safe for concurrent use. Each Parse call creates
//	its own tree-sitter parser.
type Parser struct {
	maxFileSize int64
	logger      *slog.Logger
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		maxFileSize: DefaultMaxFileSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LanguageFor returns the grammar and language name for a file path.
func LanguageFor(filePath string) (*sitter.Language, string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".tsx":
		return tsx.GetLanguage(), "tsx", nil
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage(), "typescript", nil
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage(), "javascript", nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filePath)
}

// Parse converts content into a markup tree.
//
// Description:
//
//	Validates size and encoding, parses with tree-sitter and converts the
//	result. Printing the returned Program without changes reproduces
//	content exactly.
//
// Inputs:
//   - ctx: Context for cancellation. Checked before and after parsing.
//   - content: Source bytes. Must be valid UTF-8.
//   - filePath: Used to pick the grammar and for error reporting.
//
// Outputs:
//   - *markup.Program: The converted tree. Never nil on success.
//   - error: ErrFileTooLarge, ErrInvalidContent, ErrSyntax,
//     ErrUnsupportedLanguage or a context error.
//
// Thread Safety:
//
//	This method is safe for concurrent use.
func (p *Parser) Parse(ctx context.Context, content []byte, filePath string) (*markup.Program, error) {
	lang, langName, err := LanguageFor(filePath)
	if err != nil {
		return nil, err
	}

	ctx, span := startParseSpan(ctx, langName, filePath, len(content))
	defer span.End()

	start := time.Now()

	if err := ctx.Err(); err != nil {
		recordParseMetrics(langName, time.Since(start), false)
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}

	if int64(len(content)) > p.maxFileSize {
		recordParseMetrics(langName, time.Since(start), false)
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}

	if len(content) > WarnFileSize {
		p.logger.Warn("parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		recordParseMetrics(langName, time.Since(start), false)
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordParseMetrics(langName, time.Since(start), false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		recordParseMetrics(langName, time.Since(start), false)
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", err)
	}

	root := tree.RootNode()
	if root == nil {
		recordParseMetrics(langName, time.Since(start), false)
		return nil, fmt.Errorf("%w: tree-sitter returned nil root node", ErrSyntax)
	}
	if root.HasError() {
		location := firstErrorLocation(root)
		retry, ok := p.reparseBareAmpersands(ctx, parser, content)
		if !ok {
			recordParseMetrics(langName, time.Since(start), false)
			return nil, fmt.Errorf("%w: %s", ErrSyntax, location)
		}
		defer retry.Close()
		p.logger.Debug("parsed after masking bare ampersands",
			slog.String("file", filePath),
			slog.String("first_error", location))
		root = retry.RootNode()
	}

	prog := Convert(root, content)

	setParseSpanResult(span, len(prog.Body))
	recordParseMetrics(langName, time.Since(start), true)
	return prog, nil
}

// reparseBareAmpersands parses content again with every bare '&' masked.
// JSX text accepts a lone '&' but the grammar only lexes character
// references there. The mask is one byte wide, so the new tree's offsets
// still index the original content. It reports false when nothing was
// masked or the second tree still has errors.
func (p *Parser) reparseBareAmpersands(ctx context.Context, parser *sitter.Parser, content []byte) (*sitter.Tree, bool) {
	masked := maskBareAmpersands(content)
	if masked == nil {
		return nil, false
	}
	tree, err := parser.ParseCtx(ctx, nil, masked)
	if err != nil {
		return nil, false
	}
	if root := tree.RootNode(); root == nil || root.HasError() {
		tree.Close()
		return nil, false
	}
	return tree, true
}

// maskBareAmpersands returns a copy of content with each '&' that stands
// alone between whitespace or tag brackets replaced by '_', or nil when
// there is none. A masked operator like "a & b" stays a syntax error.
func maskBareAmpersands(content []byte) []byte {
	var out []byte
	for i, c := range content {
		if c != '&' {
			continue
		}
		before := i == 0 || strings.IndexByte(" \t\r\n>", content[i-1]) >= 0
		after := i == len(content)-1 || strings.IndexByte(" \t\r\n<", content[i+1]) >= 0
		if !before || !after {
			continue
		}
		if out == nil {
			out = append([]byte(nil), content...)
		}
		out[i] = '_'
	}
	return out
}

// firstErrorLocation describes where the first ERROR or MISSING node is.
func firstErrorLocation(n *sitter.Node) string {
	if n.Type() == "ERROR" || n.IsMissing() {
		pt := n.StartPoint()
		return fmt.Sprintf("line %d, column %d", pt.Row+1, pt.Column+1)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.HasError() {
			return firstErrorLocation(child)
		}
	}
	pt := n.StartPoint()
	return fmt.Sprintf("line %d, column %d", pt.Row+1, pt.Column+1)
}
