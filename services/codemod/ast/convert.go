// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/shamrt/ast-react-intl/services/codemod/markup"
)

// Convert builds a markup.Program from a tree-sitter root node. Every
// byte of content ends up in a modelled node or a gap Chunk.
func Convert(root *sitter.Node, content []byte) *markup.Program {
	c := &converter{src: content}
	var body []markup.Node
	if root.StartByte() > 0 {
		body = appendPart(body, &markup.Chunk{Text: c.text(0, root.StartByte())})
	}
	body = c.parts(body, children(root), root.StartByte(), root.EndByte())
	if int(root.EndByte()) < len(content) {
		body = appendPart(body, &markup.Chunk{Text: c.text(root.EndByte(), uint32(len(content)))})
	}
	return &markup.Program{Body: body}
}

type converter struct {
	src []byte
}

func (c *converter) text(start, end uint32) string {
	if end <= start {
		return ""
	}
	return string(c.src[start:end])
}

func (c *converter) src0(n *sitter.Node) string {
	return c.text(n.StartByte(), n.EndByte())
}

func children(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// namedChildren returns named children that are not comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, child := range children(n) {
		if child.IsNamed() && child.Type() != "comment" {
			out = append(out, child)
		}
	}
	return out
}

func hasToken(n *sitter.Node, token string) bool {
	for _, child := range children(n) {
		if !child.IsNamed() && child.Type() == token {
			return true
		}
	}
	return false
}

// appendPart appends n, merging adjacent chunks.
func appendPart(parts []markup.Node, n markup.Node) []markup.Node {
	if ch, ok := n.(*markup.Chunk); ok {
		if ch.Text == "" {
			return parts
		}
		if len(parts) > 0 {
			if prev, ok := parts[len(parts)-1].(*markup.Chunk); ok {
				parts[len(parts)-1] = &markup.Chunk{Text: prev.Text + ch.Text}
				return parts
			}
		}
	}
	return append(parts, n)
}

// parts converts kids, filling the source between them with chunks, and
// covers exactly [from, to).
func (c *converter) parts(out []markup.Node, kids []*sitter.Node, from, to uint32) []markup.Node {
	pos := from
	for _, kid := range kids {
		if kid.StartByte() > pos {
			out = appendPart(out, &markup.Chunk{Text: c.text(pos, kid.StartByte())})
		}
		out = appendPart(out, c.convert(kid))
		pos = kid.EndByte()
	}
	if to > pos {
		out = appendPart(out, &markup.Chunk{Text: c.text(pos, to)})
	}
	return out
}

func (c *converter) convert(n *sitter.Node) markup.Node {
	switch n.Type() {
	case "jsx_element", "jsx_fragment":
		return c.element(n)
	case "jsx_self_closing_element":
		return c.openingTag(n, true)
	case "jsx_expression":
		return c.slot(n)
	case "ternary_expression":
		return c.conditional(n)
	case "call_expression":
		return c.call(n)
	case "member_expression":
		return c.member(n)
	case "identifier":
		return &markup.Identifier{Name: c.src0(n)}
	case "string":
		return &markup.String{Value: decodeString(c.src0(n)), Raw: c.src0(n)}
	case "object":
		return c.object(n)
	case "function_declaration", "function_expression", "function", "arrow_function",
		"generator_function_declaration", "generator_function":
		return c.function(n)
	case "statement_block":
		return c.block(n)
	case "import_statement":
		return c.importStatement(n)
	case "export_statement":
		if hasToken(n, "default") {
			return c.exportDefault(n)
		}
	case "variable_declarator":
		return c.declarator(n)
	}
	return c.raw(n)
}

func (c *converter) raw(n *sitter.Node) markup.Node {
	if n.ChildCount() == 0 {
		return &markup.Chunk{Text: c.src0(n)}
	}
	parts := c.parts(nil, children(n), n.StartByte(), n.EndByte())
	if len(parts) == 1 {
		if ch, ok := parts[0].(*markup.Chunk); ok {
			return ch
		}
	}
	return &markup.Raw{Parts: parts}
}

// =============================================================================
// JSX
// =============================================================================

func (c *converter) element(n *sitter.Node) markup.Node {
	kids := children(n)
	if len(kids) == 0 {
		return c.raw(n)
	}

	var el *markup.Element
	var open, close *sitter.Node
	first, last := kids[0], kids[len(kids)-1]
	if first.Type() == "jsx_opening_element" {
		open = first
		el = c.openingTag(first, false)
	}
	if last.Type() == "jsx_closing_element" && last != first {
		close = last
	}

	bodyStart, bodyEnd := n.StartByte(), n.EndByte()
	inner := kids
	switch {
	case el != nil:
		bodyStart = open.EndByte()
		inner = inner[1:]
	default:
		// Older grammars model <>...</> as jsx_fragment with bare tokens.
		el = &markup.Element{}
		openEnd := fragmentOpenEnd(kids)
		if openEnd == 0 {
			return c.raw(n)
		}
		el.OpenHead = c.text(n.StartByte(), kids[0].EndByte())
		el.OpenGaps = []string{c.text(kids[0].EndByte(), kids[openEnd].EndByte())}
		bodyStart = kids[openEnd].EndByte()
		inner = inner[openEnd+1:]
	}
	if close != nil {
		bodyEnd = close.StartByte()
		el.CloseTag = c.src0(close)
		if len(inner) > 0 && inner[len(inner)-1] == close {
			inner = inner[:len(inner)-1]
		}
	} else if el.Name == "" && len(inner) >= 3 {
		// Fragment closing tokens: "<" "/" ">".
		closeStart := inner[len(inner)-3].StartByte()
		el.CloseTag = c.text(closeStart, n.EndByte())
		bodyEnd = closeStart
		inner = inner[:len(inner)-3]
	}

	el.Children = c.elementChildren(inner, bodyStart, bodyEnd)
	return el
}

func fragmentOpenEnd(kids []*sitter.Node) int {
	if len(kids) < 2 || kids[0].Type() != "<" {
		return 0
	}
	if kids[1].Type() == ">" {
		return 1
	}
	return 0
}

func (c *converter) elementChildren(kids []*sitter.Node, from, to uint32) []markup.Node {
	var out []markup.Node
	appendText := func(s string) {
		if s == "" {
			return
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*markup.Text); ok {
				prev.Raw += s
				prev.Value = markup.DecodeEntities(prev.Raw)
				return
			}
		}
		out = append(out, &markup.Text{Value: markup.DecodeEntities(s), Raw: s})
	}

	pos := from
	for _, kid := range kids {
		if kid.StartByte() < pos {
			continue
		}
		appendText(c.text(pos, kid.StartByte()))
		switch kid.Type() {
		case "jsx_element", "jsx_fragment", "jsx_self_closing_element", "jsx_expression":
			out = append(out, c.convert(kid))
		default:
			appendText(c.src0(kid))
		}
		pos = kid.EndByte()
	}
	if to > pos {
		appendText(c.text(pos, to))
	}
	return out
}

// openingTag converts a jsx_opening_element or jsx_self_closing_element.
// For an opening element the returned Element has no children yet.
func (c *converter) openingTag(n *sitter.Node, selfClosing bool) *markup.Element {
	el := &markup.Element{SelfClosing: selfClosing}

	headEnd := n.StartByte() + 1
	var attrNodes []*sitter.Node
	for _, kid := range namedChildren(n) {
		switch kid.Type() {
		case "jsx_attribute":
			attrNodes = append(attrNodes, kid)
		case "jsx_expression":
			attrNodes = append(attrNodes, kid)
		case "type_arguments":
		default:
			if el.Name == "" && len(attrNodes) == 0 {
				el.Name = c.src0(kid)
				headEnd = kid.EndByte()
			}
		}
	}
	el.OpenHead = c.text(n.StartByte(), headEnd)

	pos := headEnd
	for _, a := range attrNodes {
		el.OpenGaps = append(el.OpenGaps, c.text(pos, a.StartByte()))
		el.Attrs = append(el.Attrs, c.attribute(a))
		pos = a.EndByte()
	}
	el.OpenGaps = append(el.OpenGaps, c.text(pos, n.EndByte()))
	return el
}

func (c *converter) attribute(n *sitter.Node) *markup.Attribute {
	if n.Type() == "jsx_expression" {
		return &markup.Attribute{Value: c.slot(n)}
	}
	kids := children(n)
	attr := &markup.Attribute{Name: c.src0(kids[0])}
	if len(kids) == 1 {
		return attr
	}
	value := kids[len(kids)-1]
	attr.Sep = c.text(kids[0].EndByte(), value.StartByte())
	if value.Type() == "string" {
		raw := c.src0(value)
		attr.Value = &markup.String{Value: markup.DecodeEntities(unquote(raw)), Raw: raw, JSX: true}
	} else {
		attr.Value = c.convert(value)
	}
	return attr
}

func (c *converter) slot(n *sitter.Node) markup.Node {
	named := namedChildren(n)
	if len(named) == 0 {
		return &markup.ExpressionSlot{Lead: c.src0(n)}
	}
	expr := named[0]
	return &markup.ExpressionSlot{
		Expr:  c.convert(expr),
		Lead:  c.text(n.StartByte(), expr.StartByte()),
		Trail: c.text(expr.EndByte(), n.EndByte()),
	}
}

// =============================================================================
// Expressions
// =============================================================================

func (c *converter) conditional(n *sitter.Node) markup.Node {
	test := n.ChildByFieldName("condition")
	cons := n.ChildByFieldName("consequence")
	alt := n.ChildByFieldName("alternative")
	if test == nil || cons == nil || alt == nil {
		return c.raw(n)
	}
	return &markup.Conditional{
		Test:       c.convert(test),
		Consequent: c.convert(cons),
		Alternate:  c.convert(alt),
		Gaps: []string{
			c.text(test.EndByte(), cons.StartByte()),
			c.text(cons.EndByte(), alt.StartByte()),
		},
	}
}

func (c *converter) call(n *sitter.Node) markup.Node {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fn == nil || args == nil || args.Type() != "arguments" {
		return c.raw(n)
	}
	call := &markup.Call{Callee: c.convert(fn)}
	pos := fn.EndByte()
	for _, arg := range namedChildren(args) {
		call.Seps = append(call.Seps, c.text(pos, arg.StartByte()))
		call.Args = append(call.Args, c.convert(arg))
		pos = arg.EndByte()
	}
	call.Seps = append(call.Seps, c.text(pos, n.EndByte()))
	return call
}

func (c *converter) member(n *sitter.Node) markup.Node {
	obj := n.ChildByFieldName("object")
	prop := n.ChildByFieldName("property")
	if obj == nil || prop == nil {
		return c.raw(n)
	}
	return &markup.Member{
		Object:   c.convert(obj),
		Property: c.src0(prop),
		Dot:      c.text(obj.EndByte(), prop.StartByte()),
	}
}

func (c *converter) object(n *sitter.Node) markup.Node {
	obj := &markup.Object{}
	pos := n.StartByte()
	for _, kid := range namedChildren(n) {
		obj.Seps = append(obj.Seps, c.text(pos, kid.StartByte()))
		if kid.Type() == "pair" {
			obj.Properties = append(obj.Properties, c.pair(kid))
		} else {
			obj.Properties = append(obj.Properties, c.convert(kid))
		}
		pos = kid.EndByte()
	}
	obj.Seps = append(obj.Seps, c.text(pos, n.EndByte()))
	return obj
}

func (c *converter) pair(n *sitter.Node) markup.Node {
	key := n.ChildByFieldName("key")
	value := n.ChildByFieldName("value")
	if key == nil || value == nil {
		return c.raw(n)
	}
	prop := &markup.Property{
		KeySrc: c.src0(key),
		Sep:    c.text(key.EndByte(), value.StartByte()),
		Value:  c.convert(value),
	}
	switch key.Type() {
	case "property_identifier", "identifier", "number":
		prop.Key = prop.KeySrc
	case "string":
		prop.Key = decodeString(prop.KeySrc)
	}
	return prop
}

// =============================================================================
// Functions and statements
// =============================================================================

func (c *converter) function(n *sitter.Node) markup.Node {
	body := n.ChildByFieldName("body")
	if body == nil {
		return c.raw(n)
	}
	fn := &markup.Function{
		Head:   c.text(n.StartByte(), body.StartByte()),
		Body:   c.convert(body),
		Arrow:  n.Type() == "arrow_function",
		Indent: c.lineIndent(n.StartByte()),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = c.src0(name)
	}
	if tail := c.text(body.EndByte(), n.EndByte()); tail != "" {
		return &markup.Raw{Parts: []markup.Node{fn, &markup.Chunk{Text: tail}}}
	}
	return fn
}

func (c *converter) lineIndent(at uint32) string {
	start := at
	for start > 0 && c.src[start-1] != '\n' {
		start--
	}
	end := start
	for end < at && (c.src[end] == ' ' || c.src[end] == '\t') {
		end++
	}
	return string(c.src[start:end])
}

func (c *converter) block(n *sitter.Node) markup.Node {
	kids := children(n)
	if len(kids) < 2 || kids[0].Type() != "{" || kids[len(kids)-1].Type() != "}" {
		return c.raw(n)
	}
	open, close := kids[0], kids[len(kids)-1]
	return &markup.Block{
		Open:  c.text(n.StartByte(), open.EndByte()),
		Parts: c.parts(nil, kids[1:len(kids)-1], open.EndByte(), close.StartByte()),
		Close: c.text(close.StartByte(), n.EndByte()),
	}
}

func (c *converter) declarator(n *sitter.Node) markup.Node {
	converted := c.raw(n)
	name := n.ChildByFieldName("name")
	if name == nil || name.Type() != "identifier" {
		return converted
	}
	if r, ok := converted.(*markup.Raw); ok {
		for _, part := range r.Parts {
			if fn, ok := part.(*markup.Function); ok && fn.Name == "" {
				fn.Name = c.src0(name)
			}
		}
	}
	return converted
}

func (c *converter) exportDefault(n *sitter.Node) markup.Node {
	decl := n.ChildByFieldName("declaration")
	if decl == nil {
		decl = n.ChildByFieldName("value")
	}
	if decl == nil {
		named := namedChildren(n)
		if len(named) == 0 {
			return c.raw(n)
		}
		decl = named[len(named)-1]
	}
	return &markup.ExportDefault{
		Prefix:      c.text(n.StartByte(), decl.StartByte()),
		Declaration: c.convert(decl),
		Suffix:      c.text(decl.EndByte(), n.EndByte()),
	}
}

func (c *converter) importStatement(n *sitter.Node) markup.Node {
	imp := &markup.Import{Src: c.src0(n)}
	for _, kid := range children(n) {
		switch kid.Type() {
		case "type":
			imp.TypeOnly = true
		case "string":
			imp.Source = decodeString(c.src0(kid))
		case "import_clause":
			c.importClause(kid, imp)
		}
	}
	return imp
}

func (c *converter) importClause(n *sitter.Node, imp *markup.Import) {
	for _, kid := range namedChildren(n) {
		switch kid.Type() {
		case "identifier":
			imp.Default = c.src0(kid)
		case "namespace_import":
			for _, id := range namedChildren(kid) {
				if id.Type() == "identifier" {
					imp.Namespace = c.src0(id)
				}
			}
		case "named_imports":
			for _, spec := range namedChildren(kid) {
				if spec.Type() != "import_specifier" {
					continue
				}
				name := spec.ChildByFieldName("name")
				if name == nil {
					continue
				}
				s := markup.ImportSpec{Name: c.src0(name)}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					s.Alias = c.src0(alias)
				}
				imp.Named = append(imp.Named, s)
			}
		}
	}
}

// =============================================================================
// String literals
// =============================================================================

func unquote(raw string) string {
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// decodeString returns the value of a JavaScript string literal.
func decodeString(raw string) string {
	s := unquote(raw)
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i+1 >= len(s) {
			b.WriteByte(ch)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			if r, n, ok := hexRune(s[i+1:], 2); ok {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteByte('x')
			}
		case 'u':
			if r, n, ok := unicodeEscape(s[i+1:]); ok {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteByte('u')
			}
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func unicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		r, _, ok := hexRune(s[1:end], end-1)
		return r, end + 1, ok
	}
	r, n, ok := hexRune(s, 4)
	if !ok {
		return 0, 0, false
	}
	// Surrogate pair.
	if r >= 0xD800 && r < 0xDC00 && strings.HasPrefix(s[n:], `\u`) {
		if lo, m, ok := hexRune(s[n+2:], 4); ok && lo >= 0xDC00 && lo < 0xE000 {
			return (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000, n + 2 + m, true
		}
	}
	return r, n, true
}

func hexRune(s string, digits int) (rune, int, bool) {
	if len(s) < digits || digits == 0 {
		return 0, 0, false
	}
	var r rune
	for i := 0; i < digits; i++ {
		ch := s[i]
		var v byte
		switch {
		case ch >= '0' && ch <= '9':
			v = ch - '0'
		case ch >= 'a' && ch <= 'f':
			v = ch - 'a' + 10
		case ch >= 'A' && ch <= 'F':
			v = ch - 'A' + 10
		default:
			return 0, 0, false
		}
		r = r<<4 | rune(v)
	}
	return r, digits, true
}
