// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package markup

import (
	"html"
	"regexp"
	"strings"
)

// PrintOptions control the text generated for new or reshaped nodes.
// Source reproduced from gaps is never reformatted.
type PrintOptions struct {
	// Quote is the preferred string quote, '\'' or '"'.
	Quote rune

	// TrailingComma adds a comma after the last entry of generated
	// multi-line object literals.
	TrailingComma bool

	// LineTerminator separates generated lines. Defaults to "\n".
	LineTerminator string
}

// DefaultPrintOptions returns single quotes, no trailing commas and "\n".
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{Quote: '\'', LineTerminator: "\n"}
}

// Print renders n as source text.
func Print(n Node, opts PrintOptions) string {
	if opts.Quote != '"' {
		opts.Quote = '\''
	}
	if opts.LineTerminator == "" {
		opts.LineTerminator = "\n"
	}
	p := &printer{opts: opts}
	p.print(n)
	return p.b.String()
}

type printer struct {
	b    strings.Builder
	opts PrintOptions
}

func gap(gaps []string, i int, def string) string {
	if i < len(gaps) {
		return gaps[i]
	}
	return def
}

func (p *printer) print(n Node) {
	switch n := n.(type) {
	case nil:
	case *Program:
		p.printAll(n.Body)
	case *Chunk:
		p.b.WriteString(n.Text)
	case *Raw:
		p.printAll(n.Parts)
	case *Text:
		if n.Raw != "" {
			p.b.WriteString(n.Raw)
		} else {
			p.b.WriteString(n.Value)
		}
	case *Element:
		p.printElement(n)
	case *Attribute:
		p.b.WriteString(n.Name)
		if n.Value != nil {
			if n.Name != "" {
				p.b.WriteString(orDefault(n.Sep, "="))
			}
			p.print(n.Value)
		}
	case *ExpressionSlot:
		if n.Lead == "" && n.Trail == "" {
			p.b.WriteString("{")
			p.print(n.Expr)
			p.b.WriteString("}")
			return
		}
		p.b.WriteString(n.Lead)
		p.print(n.Expr)
		p.b.WriteString(n.Trail)
	case *Conditional:
		p.print(n.Test)
		p.b.WriteString(gap(n.Gaps, 0, " ? "))
		p.print(n.Consequent)
		p.b.WriteString(gap(n.Gaps, 1, " : "))
		p.print(n.Alternate)
	case *Call:
		p.print(n.Callee)
		p.printList(n.Args, n.Seps, "(", ")")
	case *Identifier:
		p.b.WriteString(n.Name)
	case *Member:
		p.print(n.Object)
		p.b.WriteString(orDefault(n.Dot, "."))
		p.b.WriteString(n.Property)
	case *String:
		if n.Raw != "" {
			p.b.WriteString(n.Raw)
		} else if n.JSX {
			p.b.WriteString(p.jsxAttrValue(n.Value))
		} else {
			p.b.WriteString(QuoteJS(n.Value, p.opts.Quote))
		}
	case *Object:
		p.printList(n.Properties, n.Seps, "{ ", " }")
	case *Property:
		if n.KeySrc != "" {
			p.b.WriteString(n.KeySrc)
		} else {
			p.b.WriteString(p.propertyKey(n.Key))
		}
		p.b.WriteString(orDefault(n.Sep, ": "))
		p.print(n.Value)
	case *Function:
		p.b.WriteString(n.Head)
		p.print(n.Body)
	case *Block:
		p.b.WriteString(orDefault(n.Open, "{"))
		p.printAll(n.Parts)
		p.b.WriteString(orDefault(n.Close, "}"))
	case *Import:
		if !n.Modified && n.Src != "" {
			p.b.WriteString(n.Src)
			return
		}
		p.printImport(n)
	case *ExportDefault:
		p.b.WriteString(n.Prefix)
		p.print(n.Declaration)
		p.b.WriteString(n.Suffix)
	case *Lookup:
		if n.Form == LookupComponent {
			p.printComponentLookup(n)
		} else {
			p.printCallLookup(n)
		}
	}
}

func (p *printer) printAll(nodes []Node) {
	for _, n := range nodes {
		p.print(n)
	}
}

func (p *printer) printList(items []Node, seps []string, open, close string) {
	if len(seps) != len(items)+1 {
		seps = nil
	}
	if len(items) == 0 {
		p.b.WriteString(gap(seps, 0, strings.TrimSpace(open)+strings.TrimSpace(close)))
		return
	}
	p.b.WriteString(gap(seps, 0, open))
	for i, item := range items {
		if i > 0 {
			p.b.WriteString(gap(seps, i, ", "))
		}
		p.print(item)
	}
	p.b.WriteString(gap(seps, len(items), close))
}

func (p *printer) printElement(e *Element) {
	p.b.WriteString(orDefault(e.OpenHead, "<"+e.Name))
	gaps := e.OpenGaps
	if len(gaps) != len(e.Attrs)+1 {
		gaps = nil
	}
	for i, a := range e.Attrs {
		p.b.WriteString(gap(gaps, i, " "))
		p.print(a)
	}
	tail := ">"
	if e.SelfClosing {
		tail = " />"
	}
	p.b.WriteString(gap(gaps, len(e.Attrs), tail))
	if e.SelfClosing {
		return
	}
	p.printAll(e.Children)
	p.b.WriteString(orDefault(e.CloseTag, "</"+e.Name+">"))
}

func (p *printer) printImport(n *Import) {
	p.b.WriteString("import ")
	if n.TypeOnly {
		p.b.WriteString("type ")
	}
	var clause []string
	if n.Default != "" {
		clause = append(clause, n.Default)
	}
	if n.Namespace != "" {
		clause = append(clause, "* as "+n.Namespace)
	}
	if len(n.Named) > 0 {
		specs := make([]string, 0, len(n.Named))
		for _, s := range n.Named {
			if s.Alias != "" && s.Alias != s.Name {
				specs = append(specs, s.Name+" as "+s.Alias)
			} else {
				specs = append(specs, s.Name)
			}
		}
		clause = append(clause, "{ "+strings.Join(specs, ", ")+" }")
	}
	if len(clause) > 0 {
		p.b.WriteString(strings.Join(clause, ", "))
		p.b.WriteString(" from ")
	}
	p.b.WriteString(QuoteJS(n.Source, p.opts.Quote))
	p.b.WriteString(";")
}

func (p *printer) printCallLookup(n *Lookup) {
	d := n.Descriptor
	indent := p.currentIndent()
	p.b.WriteString(n.Accessor)
	p.b.WriteString(".")
	p.b.WriteString(n.Method)
	p.b.WriteString("(")
	p.printEntries(indent, p.descriptorEntries(d))
	if len(d.Params) > 0 {
		p.b.WriteString(", ")
		p.printParams(indent, d.Params)
	}
	p.b.WriteString(")")
}

func (p *printer) printComponentLookup(n *Lookup) {
	d := n.Descriptor
	p.b.WriteString("<")
	p.b.WriteString(n.Component)
	if d.ID != "" {
		p.b.WriteString(" id=" + p.jsxAttrValue(d.ID))
	}
	p.b.WriteString(" defaultMessage=" + p.jsxAttrValue(d.DefaultMessage))
	if d.Description != "" {
		p.b.WriteString(" description=" + p.jsxAttrValue(d.Description))
	}
	if len(d.Params) > 0 {
		indent := p.currentIndent()
		p.b.WriteString(" values={")
		p.printParams(indent, d.Params)
		p.b.WriteString("}")
	}
	p.b.WriteString(" />")
}

type entry struct {
	key   string
	value func()
}

func (p *printer) descriptorEntries(d Descriptor) []entry {
	str := func(s string) func() {
		return func() { p.b.WriteString(QuoteJS(s, p.opts.Quote)) }
	}
	var out []entry
	if d.ID != "" {
		out = append(out, entry{"id", str(d.ID)})
	}
	out = append(out, entry{"defaultMessage", str(d.DefaultMessage)})
	if d.Description != "" {
		out = append(out, entry{"description", str(d.Description)})
	}
	return out
}

func (p *printer) printParams(indent string, params []Param) {
	entries := make([]entry, 0, len(params))
	for _, prm := range params {
		v := prm.Value
		entries = append(entries, entry{prm.Name, func() { p.print(v) }})
	}
	p.printEntries(indent, entries)
}

// printEntries writes a multi-line object literal whose entries are
// indented one level past indent.
func (p *printer) printEntries(indent string, entries []entry) {
	nl := p.opts.LineTerminator
	p.b.WriteString("{")
	for i, e := range entries {
		p.b.WriteString(nl)
		p.b.WriteString(indent + "  ")
		p.b.WriteString(p.propertyKey(e.key))
		p.b.WriteString(": ")
		e.value()
		if i < len(entries)-1 || p.opts.TrailingComma {
			p.b.WriteString(",")
		}
	}
	p.b.WriteString(nl)
	p.b.WriteString(indent)
	p.b.WriteString("}")
}

// currentIndent returns the leading whitespace of the line being written.
func (p *printer) currentIndent() string {
	s := p.b.String()
	start := strings.LastIndexByte(s, '\n') + 1
	end := start
	for end < len(s) && (s[end] == ' ' || s[end] == '\t') {
		end++
	}
	return s[start:end]
}

func (p *printer) propertyKey(key string) string {
	if IsIdentifierName(key) {
		return key
	}
	return QuoteJS(key, p.opts.Quote)
}

// jsxAttrValue quotes s as a JSX attribute value. JSX attribute strings
// have no escapes and decode character references, so a value holding
// both quote characters or something that reads as a reference is emitted
// as an expression slot instead.
func (p *printer) jsxAttrValue(s string) string {
	q := p.opts.Quote
	other := '"'
	if q == '"' {
		other = '\''
	}
	switch {
	case DecodeEntities(s) != s:
	case !strings.ContainsRune(s, q) && !strings.ContainsAny(s, "\n\r"):
		return string(q) + s + string(q)
	case !strings.ContainsRune(s, other) && !strings.ContainsAny(s, "\n\r"):
		return string(other) + s + string(other)
	}
	return "{" + QuoteJS(s, q) + "}"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// QuoteJS returns s as a JavaScript string literal using quote.
func QuoteJS(s string, quote rune) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteRune(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		case quote:
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}

// characterRef matches the references JSX decodes in text and attribute
// strings. Unlike HTML, the trailing ';' is required.
var characterRef = regexp.MustCompile(`&(?:#[xX][0-9a-fA-F]+|#[0-9]+|[A-Za-z][A-Za-z0-9]*);`)

// DecodeEntities replaces the character references in JSX text or a JSX
// attribute string with the characters they stand for. Unknown names are
// left as written.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return characterRef.ReplaceAllStringFunc(s, html.UnescapeString)
}

// IsIdentifierName reports whether s can be used unquoted as a property key.
func IsIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
