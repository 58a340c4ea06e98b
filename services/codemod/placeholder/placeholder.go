// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package placeholder turns a run of markup content into a message
// template with named placeholders and the bindings that fill them.
package placeholder

import (
	"strconv"
	"strings"

	"github.com/shamrt/ast-react-intl/services/codemod/markup"
)

// ChunksParam is the parameter name of generated tag wrapper functions.
const ChunksParam = "chunks"

// Result is the output of Build.
type Result struct {
	// Template is the message text with {name} tokens for expressions and
	// <tagN>...</tagN> pairs for nested elements, whitespace collapsed.
	Template string

	// Params binds every placeholder name in Template, in template order
	// with each tag binding followed by the bindings of its contents.
	Params []markup.Param

	// HasRealText is true when any literal in the input, nested elements
	// included, holds non-whitespace text.
	HasRealText bool

	// HasOwnText is true when a literal directly in the input, not inside
	// a nested element, holds non-whitespace text.
	HasOwnText bool
}

// Build walks nodes depth-first and returns the template and bindings.
//
// Literal text (Text nodes, string literals, and expression slots holding
// a string literal) is copied into the template. Other expressions become
// {name}: an identifier's name, a member access's property, or a
// positional argN. Nested elements become <tagN>...</tagN> bound to a
// wrapper function that reproduces the element around its content.
// Empty expression slots are dropped. Build never fails; unsupported
// nodes are treated as opaque expressions.
func Build(nodes []markup.Node) Result {
	b := &builder{bound: make(map[string]string)}
	template, own := b.build(nodes)
	return Result{
		Template:    template,
		Params:      b.params,
		HasRealText: b.realText,
		HasOwnText:  own,
	}
}

type builder struct {
	params   []markup.Param
	bound    map[string]string
	args     int
	realText bool
}

func (b *builder) build(nodes []markup.Node) (string, bool) {
	var sb strings.Builder
	own := false
	literal := func(s string) {
		sb.WriteString(s)
		if strings.TrimSpace(s) != "" {
			own = true
			b.realText = true
		}
	}
	for i, n := range nodes {
		switch n := n.(type) {
		case *markup.Text:
			literal(n.Value)
		case *markup.String:
			literal(n.Value)
		case *markup.ExpressionSlot:
			if n.Expr == nil {
				continue
			}
			if s, ok := markup.Unparen(n.Expr).(*markup.String); ok {
				literal(s.Value)
				continue
			}
			sb.WriteString("{" + b.bindExpr(n.Expr) + "}")
		case *markup.Element:
			name := b.unique(tagBase(n) + strconv.Itoa(i))
			b.params = append(b.params, markup.Param{Name: name, Value: wrapper(n)})
			inner := ""
			if !n.SelfClosing {
				inner, _ = b.build(n.Children)
			}
			sb.WriteString("<" + name + ">" + inner + "</" + name + ">")
		default:
			sb.WriteString("{" + b.bindExpr(n) + "}")
		}
	}
	return strings.Join(strings.Fields(sb.String()), " "), own
}

// bindExpr returns the placeholder name for expr, reusing an existing
// binding when the same expression was already bound under that name.
func (b *builder) bindExpr(expr markup.Node) string {
	src := markup.Print(expr, markup.DefaultPrintOptions())
	name := ExprName(expr)
	if name != "" {
		if prev, ok := b.bound[name]; ok {
			if prev == src {
				return name
			}
			name = ""
		}
	}
	if name == "" {
		name = b.unique("arg" + strconv.Itoa(b.args))
		b.args++
	}
	b.bound[name] = src
	b.params = append(b.params, markup.Param{Name: name, Value: expr})
	return name
}

func (b *builder) unique(name string) string {
	if _, taken := b.bound[name]; !taken {
		b.bound[name] = ""
		return name
	}
	for k := 2; ; k++ {
		candidate := name + "_" + strconv.Itoa(k)
		if _, taken := b.bound[candidate]; !taken {
			b.bound[candidate] = ""
			return candidate
		}
	}
}

// ExprName derives a placeholder name from an expression: identifiers
// use their name and member accesses their property. Anything else
// returns "".
func ExprName(expr markup.Node) string {
	switch e := markup.Unparen(expr).(type) {
	case *markup.Identifier:
		return e.Name
	case *markup.Member:
		if markup.IsIdentifierName(e.Property) {
			return e.Property
		}
	}
	return ""
}

func tagBase(e *markup.Element) string {
	if markup.IsIdentifierName(e.Name) {
		return e.Name
	}
	return "tag"
}

// wrapper builds (chunks) => <Tag attrs>{chunks}</Tag> for e, or
// () => <Tag attrs /> when e is self-closing.
func wrapper(e *markup.Element) markup.Node {
	if e.SelfClosing {
		return &markup.Function{Head: "() => ", Body: e, Arrow: true}
	}
	body := &markup.Element{
		Name:     e.Name,
		Attrs:    e.Attrs,
		OpenHead: e.OpenHead,
		OpenGaps: e.OpenGaps,
		CloseTag: e.CloseTag,
		Children: []markup.Node{
			&markup.ExpressionSlot{Expr: &markup.Identifier{Name: ChunksParam}},
		},
	}
	return &markup.Function{Head: "(" + ChunksParam + ") => ", Body: body, Arrow: true}
}
