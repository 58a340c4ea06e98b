// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scope puts the localization accessor in scope for generated
// lookups: it declares the accessor in the exported component and
// imports what the generated code uses.
package scope

import (
	"slices"
	"strings"

	"github.com/shamrt/ast-react-intl/services/codemod/config"
	"github.com/shamrt/ast-react-intl/services/codemod/markup"
)

// Injector adds accessor declarations and imports.
//
// Thread Safety: Immutable; safe for concurrent use on distinct trees.
type Injector struct {
	intl config.IntlConfig
	nl   string
}

// New returns an Injector for the configured localization API.
func New(cfg *config.Config) *Injector {
	nl := cfg.Print.LineTerminator
	if nl == "" {
		nl = "\n"
	}
	return &Injector{intl: cfg.Intl, nl: nl}
}

// Result reports what Apply changed.
type Result struct {
	// Functions is the number of functions that received an accessor.
	Functions int

	// ImportChanged is true when an import was added or extended.
	ImportChanged bool
}

// Apply declares the accessor in the exported functions when needAccessor
// is set, and imports the component and/or hook that were used.
func (i *Injector) Apply(prog *markup.Program, needComponent, needAccessor bool) Result {
	var res Result
	var names []string
	if needComponent {
		names = append(names, i.intl.Component)
	}
	if needAccessor {
		names = append(names, i.intl.Hook)
		aliases := i.hookAliases(prog)
		for _, fn := range ExportedFunctions(prog) {
			if i.EnsureAccessor(fn, aliases...) {
				res.Functions++
			}
		}
	}
	if len(names) > 0 {
		res.ImportChanged = i.EnsureImport(prog, names...)
	}
	return res
}

// ExportedFunctions resolves the functions behind the default export.
//
// Description:
//
//	An inline function export resolves to itself. An identifier export
//	resolves to every function with that name in the file. A call export
//	(export default withRouter(Page)) resolves each identifier or inline
//	function argument, recursing into call arguments.
func ExportedFunctions(prog *markup.Program) []*markup.Function {
	for _, n := range prog.Body {
		exp, ok := n.(*markup.ExportDefault)
		if !ok {
			continue
		}
		return resolve(prog, exp.Declaration)
	}
	return nil
}

func resolve(prog *markup.Program, decl markup.Node) []*markup.Function {
	switch d := markup.Unparen(decl).(type) {
	case *markup.Function:
		return []*markup.Function{d}
	case *markup.Identifier:
		return functionsNamed(prog, d.Name)
	case *markup.Call:
		var out []*markup.Function
		for _, arg := range d.Args {
			switch a := markup.Unparen(arg).(type) {
			case *markup.Identifier, *markup.Function, *markup.Call:
				out = append(out, resolve(prog, a)...)
			}
		}
		return out
	}
	return nil
}

func functionsNamed(prog *markup.Program, name string) []*markup.Function {
	var out []*markup.Function
	markup.Inspect(prog, func(n, _ markup.Node) bool {
		if fn, ok := n.(*markup.Function); ok && fn.Name == name {
			out = append(out, fn)
		}
		return true
	})
	return out
}

// hookAliases returns the local names the hook is imported under from
// the configured source, other than its own name.
func (i *Injector) hookAliases(prog *markup.Program) []string {
	var out []string
	for _, n := range prog.Body {
		if imp, ok := n.(*markup.Import); ok && imp.Source == i.intl.ImportSource && !imp.TypeOnly {
			out = append(out, imp.Aliases(i.intl.Hook)...)
		}
	}
	return out
}

// HasHookCall reports whether n contains a call to the accessor hook,
// either by its own name or by one of aliases.
func (i *Injector) HasHookCall(n markup.Node, aliases ...string) bool {
	found := false
	markup.Inspect(n, func(n, _ markup.Node) bool {
		if found {
			return false
		}
		if call, ok := n.(*markup.Call); ok {
			if id, ok := call.Callee.(*markup.Identifier); ok && (id.Name == i.intl.Hook || slices.Contains(aliases, id.Name)) {
				found = true
			}
		}
		return !found
	})
	return found
}

// Declaration returns a new `const intl = useIntl();` statement.
func (i *Injector) Declaration() markup.Node {
	return &markup.Raw{Parts: []markup.Node{
		&markup.Chunk{Text: "const " + i.intl.Accessor + " = "},
		&markup.Call{Callee: &markup.Identifier{Name: i.intl.Hook}},
		&markup.Chunk{Text: ";"},
	}}
}

// EnsureAccessor prepends the accessor declaration to fn's body unless it
// already calls the hook under its name or one of aliases. An expression
// body is wrapped in a block with an explicit return. It reports whether
// fn changed.
func (i *Injector) EnsureAccessor(fn *markup.Function, aliases ...string) bool {
	if fn.Body == nil || i.HasHookCall(fn.Body, aliases...) {
		return false
	}
	if block, ok := fn.Body.(*markup.Block); ok {
		block.Parts = append(i.blockPrefix(block, fn.Indent), block.Parts...)
		return true
	}
	inner := fn.Indent + "  "
	fn.Body = &markup.Block{
		Open: "{",
		Parts: []markup.Node{
			&markup.Chunk{Text: i.nl + inner},
			i.Declaration(),
			&markup.Chunk{Text: i.nl + inner + "return "},
			fn.Body,
			&markup.Chunk{Text: ";" + i.nl + fn.Indent},
		},
		Close: "}",
	}
	return true
}

// blockPrefix returns the nodes to insert at the start of block: the
// line break and indentation of the first statement, then the
// declaration.
func (i *Injector) blockPrefix(block *markup.Block, indent string) []markup.Node {
	decl := i.Declaration()
	if len(block.Parts) == 0 {
		return []markup.Node{
			&markup.Chunk{Text: i.nl + indent + "  "},
			decl,
			&markup.Chunk{Text: i.nl + indent},
		}
	}
	lead := ""
	if ch, ok := block.Parts[0].(*markup.Chunk); ok {
		lead = ch.Text[:len(ch.Text)-len(strings.TrimLeft(ch.Text, " \t\r\n"))]
	}
	idx := strings.LastIndexByte(lead, '\n')
	if idx < 0 {
		return []markup.Node{&markup.Chunk{Text: " "}, decl}
	}
	if idx > 0 && lead[idx-1] == '\r' {
		idx--
	}
	return []markup.Node{&markup.Chunk{Text: lead[idx:]}, decl}
}

// EnsureImport makes names importable from the configured source: an
// existing named import is extended without duplicates, otherwise a new
// import goes after the last import, or at the top of the file. It
// reports whether the program changed.
func (i *Injector) EnsureImport(prog *markup.Program, names ...string) bool {
	lastImport := -1
	for idx, n := range prog.Body {
		imp, ok := n.(*markup.Import)
		if !ok {
			continue
		}
		lastImport = idx
		if imp.Source != i.intl.ImportSource || imp.TypeOnly || imp.Namespace != "" {
			continue
		}
		changed := false
		for _, name := range names {
			if !imp.HasNamed(name) {
				imp.Named = append(imp.Named, markup.ImportSpec{Name: name})
				changed = true
			}
		}
		if changed {
			imp.Modified = true
		}
		return changed
	}

	imp := &markup.Import{Source: i.intl.ImportSource, Modified: true}
	for _, name := range names {
		imp.Named = append(imp.Named, markup.ImportSpec{Name: name})
	}

	if lastImport >= 0 {
		prog.Body = insert(prog.Body, lastImport+1, &markup.Chunk{Text: i.nl}, imp)
		return true
	}
	at := firstStatement(prog.Body)
	if at < len(prog.Body) && isDirective(prog.Body[at]) {
		prog.Body = insert(prog.Body, at+1, &markup.Chunk{Text: i.nl}, imp)
		return true
	}
	if at == len(prog.Body) {
		prog.Body = append(prog.Body, imp, &markup.Chunk{Text: i.nl})
		return true
	}
	prog.Body = insert(prog.Body, at, imp, &markup.Chunk{Text: i.nl + i.nl})
	return true
}

// firstStatement skips leading comments and whitespace.
func firstStatement(body []markup.Node) int {
	for idx, n := range body {
		if _, ok := n.(*markup.Chunk); !ok {
			return idx
		}
	}
	return len(body)
}

// isDirective reports whether n is a prologue like 'use client';.
func isDirective(n markup.Node) bool {
	r, ok := n.(*markup.Raw)
	if !ok || len(r.Parts) == 0 {
		return false
	}
	_, ok = r.Parts[0].(*markup.String)
	return ok
}

func insert(body []markup.Node, at int, nodes ...markup.Node) []markup.Node {
	out := make([]markup.Node, 0, len(body)+len(nodes))
	out = append(out, body[:at]...)
	out = append(out, nodes...)
	return append(out, body[at:]...)
}
