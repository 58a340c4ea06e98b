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

// Children returns the direct child nodes of n in source order.
//
// Attributes of an element come before its children. Params of a Lookup
// are returned so rewrites reach into tag wrappers produced earlier.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Program:
		return n.Body
	case *Raw:
		return n.Parts
	case *Element:
		out := make([]Node, 0, len(n.Attrs)+len(n.Children))
		for _, a := range n.Attrs {
			out = append(out, a)
		}
		return append(out, n.Children...)
	case *Attribute:
		if n.Value != nil {
			return []Node{n.Value}
		}
	case *ExpressionSlot:
		if n.Expr != nil {
			return []Node{n.Expr}
		}
	case *Conditional:
		return []Node{n.Test, n.Consequent, n.Alternate}
	case *Call:
		return append([]Node{n.Callee}, n.Args...)
	case *Member:
		return []Node{n.Object}
	case *Object:
		return n.Properties
	case *Property:
		if n.Value != nil {
			return []Node{n.Value}
		}
	case *Function:
		if n.Body != nil {
			return []Node{n.Body}
		}
	case *Block:
		return n.Parts
	case *ExportDefault:
		if n.Declaration != nil {
			return []Node{n.Declaration}
		}
	case *Lookup:
		out := make([]Node, 0, len(n.Descriptor.Params))
		for _, p := range n.Descriptor.Params {
			out = append(out, p.Value)
		}
		return out
	}
	return nil
}

// Inspect traverses the tree rooted at root in depth-first pre-order,
// calling fn with each node and its parent (nil for root). If fn returns
// false the node's children are skipped. Children are read after fn
// returns, so fn may replace them.
func Inspect(root Node, fn func(n, parent Node) bool) {
	inspect(root, nil, fn)
}

func inspect(n, parent Node, fn func(n, parent Node) bool) {
	if n == nil || !fn(n, parent) {
		return
	}
	for _, c := range Children(n) {
		inspect(c, n, fn)
	}
}

// Unparen strips parenthesized-expression wrappers. The adapter keeps
// parentheses as a Raw of "(", expr, ")".
func Unparen(n Node) Node {
	for {
		r, ok := n.(*Raw)
		if !ok {
			return n
		}
		inner := parenInner(r)
		if inner == nil {
			return n
		}
		n = inner
	}
}

func parenInner(r *Raw) Node {
	var inner Node
	var open, close bool
	for _, p := range r.Parts {
		c, ok := p.(*Chunk)
		if !ok {
			if inner != nil {
				return nil
			}
			inner = p
			continue
		}
		for _, ch := range c.Text {
			switch {
			case ch == '(' && inner == nil && !open:
				open = true
			case ch == ')' && inner != nil && !close:
				close = true
			case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			default:
				return nil
			}
		}
	}
	if !open || !close {
		return nil
	}
	return inner
}
