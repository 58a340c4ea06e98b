// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rewrite replaces translatable text in a markup tree with
// message lookups.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shamrt/ast-react-intl/services/codemod/catalog"
	"github.com/shamrt/ast-react-intl/services/codemod/classify"
	"github.com/shamrt/ast-react-intl/services/codemod/config"
	"github.com/shamrt/ast-react-intl/services/codemod/keygen"
	"github.com/shamrt/ast-react-intl/services/codemod/markup"
	"github.com/shamrt/ast-react-intl/services/codemod/placeholder"
)

// Site names one of the four places text is rewritten.
type Site string

const (
	SiteContent     Site = "content"
	SiteAttribute   Site = "attribute"
	SiteConditional Site = "conditional"
	SiteCall        Site = "call"
)

// Sites lists the rewrite sites in the order they run.
var Sites = []Site{SiteContent, SiteAttribute, SiteConditional, SiteCall}

// Report counts what one Rewrite did.
type Report struct {
	Content      int
	Attributes   int
	Conditionals int
	Calls        int

	// ComponentLookups and CallLookups count generated lookups by form.
	ComponentLookups int
	CallLookups      int
}

// Rewrote reports whether any site changed the tree.
func (r Report) Rewrote() bool {
	return r.Content+r.Attributes+r.Conditionals+r.Calls > 0
}

// BySite returns the rewrite count for site.
func (r Report) BySite(site Site) int {
	switch site {
	case SiteContent:
		return r.Content
	case SiteAttribute:
		return r.Attributes
	case SiteConditional:
		return r.Conditionals
	case SiteCall:
		return r.Calls
	}
	return 0
}

// Engine applies the rewrite sites to markup trees.
//
// Description:
//
//	Sites run in a fixed order (content, attributes, conditionals, call
//	arguments) over the same tree; each sees the changes made by the ones
//	before it. Every lookup created is recorded in the Accumulator.
//
// Thread Safety:
//
//	An Engine may be shared across goroutines as long as each Rewrite
//	call gets its own tree. The Accumulator serializes its own writes.
type Engine struct {
	classifier  *classify.Classifier
	acc         *catalog.Accumulator
	intl        config.IntlConfig
	contentForm markup.LookupForm
	emitIDs     bool
	description string
}

// RulesFromConfig maps configuration onto classifier rules.
func RulesFromConfig(cfg *config.Config) classify.Rules {
	return classify.Rules{
		DenylistedAttributeNames: cfg.DenylistedAttributeNames,
		DenylistedCallees:        cfg.DenylistedCallCallees,
		IgnoredAttributePatterns: cfg.IgnoredAttributePatterns,
		TextAttributePatterns:    cfg.TextAttributePatterns,
		SVGElements:              cfg.SVGElementNames,
		ValidationMethod:         cfg.ValidationMethod,
	}
}

// New builds an Engine recording into acc.
func New(cfg *config.Config, acc *catalog.Accumulator) (*Engine, error) {
	classifier, err := classify.New(RulesFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("rewrite.New: %w", err)
	}
	form := markup.LookupComponent
	if cfg.ContentForm == config.ContentFormCall {
		form = markup.LookupCall
	}
	return &Engine{
		classifier:  classifier,
		acc:         acc,
		intl:        cfg.Intl,
		contentForm: form,
		emitIDs:     cfg.EmitIDs,
		description: cfg.Description,
	}, nil
}

// WithAccumulator returns a copy of e recording into acc.
func (e *Engine) WithAccumulator(acc *catalog.Accumulator) *Engine {
	cp := *e
	cp.acc = acc
	return &cp
}

// Rewrite runs every site over root in order and mutates it in place.
func (e *Engine) Rewrite(root markup.Node) Report {
	var r Report
	r.Content = e.RewriteContent(root, &r)
	r.Attributes = e.RewriteAttributes(root, &r)
	r.Conditionals = e.RewriteConditionals(root, &r)
	r.Calls = e.RewriteCallArguments(root, &r)
	return r
}

var placeholderToken = regexp.MustCompile(`\{[^{}]*\}|</?[A-Za-z_$][\w$-]*>`)

// keyText drops placeholder tokens and tag markers so keys derive from
// the literal words only.
func keyText(template string) string {
	return placeholderToken.ReplaceAllString(template, " ")
}

// lookup records res in the accumulator and builds the lookup node.
func (e *Engine) lookup(form markup.LookupForm, res placeholder.Result, r *Report) *markup.Lookup {
	message := keygen.DeriveValue(res.Template)
	d := markup.Descriptor{
		DefaultMessage: message,
		Description:    e.description,
		Params:         res.Params,
	}
	if e.acc != nil {
		if rec, ok := e.acc.Add(message, keyText(message)); ok && e.emitIDs {
			d.ID = rec.Key
		}
	} else if e.emitIDs {
		d.ID = keygen.DeriveKey(keyText(message), keygen.DefaultMaxKeyLength)
	}

	if r != nil {
		if form == markup.LookupComponent {
			r.ComponentLookups++
		} else {
			r.CallLookups++
		}
	}
	return &markup.Lookup{
		Form:       form,
		Descriptor: d,
		Accessor:   e.intl.Accessor,
		Method:     e.intl.Method,
		Component:  e.intl.Component,
	}
}

// literalLookup builds a call lookup for a single string literal, or nil
// when it has no text.
func (e *Engine) literalLookup(s *markup.String, r *Report) *markup.Lookup {
	res := placeholder.Build([]markup.Node{s})
	if res.Template == "" {
		return nil
	}
	return e.lookup(markup.LookupCall, res, r)
}

// stringValue unwraps parentheses and returns the literal, if any.
func stringValue(n markup.Node) (*markup.String, bool) {
	if n == nil {
		return nil, false
	}
	s, ok := markup.Unparen(n).(*markup.String)
	return s, ok
}

// =============================================================================
// Site 1: element content
// =============================================================================

// RewriteContent replaces the children of every element holding literal
// text of its own with a single lookup. Nested elements and expressions
// become placeholders. It returns the number of elements rewritten.
func (e *Engine) RewriteContent(root markup.Node, r *Report) int {
	count := 0
	markup.Inspect(root, func(n, _ markup.Node) bool {
		el, ok := n.(*markup.Element)
		if !ok || el.SelfClosing {
			return true
		}
		res := placeholder.Build(el.Children)
		if !res.HasRealText || !res.HasOwnText || res.Template == "" {
			return true
		}

		lookup := e.lookup(e.contentForm, res, r)
		var node markup.Node = lookup
		if lookup.Form == markup.LookupCall {
			node = &markup.ExpressionSlot{Expr: lookup}
		}
		el.Children = wrapWhitespace(el.Children, node)
		count++
		return true
	})
	return count
}

// wrapWhitespace keeps the line breaks and indentation around the
// original content so the element keeps its layout.
func wrapWhitespace(old []markup.Node, node markup.Node) []markup.Node {
	out := make([]markup.Node, 0, 3)
	if first, ok := old[0].(*markup.Text); ok {
		lead := first.Value[:len(first.Value)-len(strings.TrimLeft(first.Value, " \t\r\n"))]
		if strings.Contains(lead, "\n") {
			out = append(out, &markup.Text{Value: lead})
		}
	}
	out = append(out, node)
	if last, ok := old[len(old)-1].(*markup.Text); ok {
		trail := last.Value[len(strings.TrimRight(last.Value, " \t\r\n")):]
		if strings.Contains(trail, "\n") {
			out = append(out, &markup.Text{Value: trail})
		}
	}
	return out
}

// =============================================================================
// Site 2: attributes
// =============================================================================

// RewriteAttributes replaces literal attribute values, and string literals
// in attribute expression slots, that classify as text. Attributes of SVG
// elements are left alone. It returns the number of attributes rewritten.
func (e *Engine) RewriteAttributes(root markup.Node, r *Report) int {
	count := 0
	markup.Inspect(root, func(n, _ markup.Node) bool {
		el, ok := n.(*markup.Element)
		if !ok || el.IsFragment() || e.classifier.IsSVGElement(el.Name) {
			return true
		}
		for _, attr := range el.Attrs {
			if attr.Name == "" || attr.Value == nil {
				continue
			}
			switch v := attr.Value.(type) {
			case *markup.String:
				if !e.classifier.IsTranslatableAttribute(attr.Name, v.Value) {
					continue
				}
				if l := e.literalLookup(v, r); l != nil {
					attr.Value = &markup.ExpressionSlot{Expr: l}
					count++
				}
			case *markup.ExpressionSlot:
				s, ok := stringValue(v.Expr)
				if !ok || !e.classifier.IsTranslatableAttribute(attr.Name, s.Value) {
					continue
				}
				if l := e.literalLookup(s, r); l != nil {
					v.Expr = l
					count++
				}
			}
		}
		return true
	})
	return count
}

// =============================================================================
// Site 3: conditionals
// =============================================================================

// RewriteConditionals rewrites string-literal branches of ternaries that
// sit directly in element content or in a text-like attribute. Each
// branch is handled on its own. It returns the number of branches
// rewritten.
func (e *Engine) RewriteConditionals(root markup.Node, r *Report) int {
	count := 0
	markup.Inspect(root, func(n, parent markup.Node) bool {
		slot, ok := n.(*markup.ExpressionSlot)
		if !ok || slot.Expr == nil || !e.conditionalParent(parent) {
			return true
		}
		cond, ok := markup.Unparen(slot.Expr).(*markup.Conditional)
		if !ok {
			return true
		}
		for _, branch := range []*markup.Node{&cond.Consequent, &cond.Alternate} {
			s, ok := stringValue(*branch)
			if !ok || !classify.HasText(s.Value) {
				continue
			}
			if l := e.literalLookup(s, r); l != nil {
				*branch = l
				count++
			}
		}
		return true
	})
	return count
}

func (e *Engine) conditionalParent(parent markup.Node) bool {
	switch p := parent.(type) {
	case *markup.Element:
		return true
	case *markup.Attribute:
		return p.Name != "" &&
			!e.classifier.IsDenylistedAttribute(p.Name) &&
			e.classifier.LooksLikeTextAttribute(p.Name)
	}
	return false
}

// =============================================================================
// Site 4: call arguments
// =============================================================================

// RewriteCallArguments rewrites string arguments, and string values of
// object arguments, of eligible calls. It returns the number of values
// rewritten.
func (e *Engine) RewriteCallArguments(root markup.Node, r *Report) int {
	count := 0
	markup.Inspect(root, func(n, _ markup.Node) bool {
		call, ok := n.(*markup.Call)
		if !ok || !e.classifier.IsEligibleCall(call) {
			return true
		}
		validation := e.classifier.IsValidationCall(call.Callee)
		for i, arg := range call.Args {
			switch v := markup.Unparen(arg).(type) {
			case *markup.String:
				if !e.classifier.IsTranslatableArgument(v.Value, validation) {
					continue
				}
				if l := e.literalLookup(v, r); l != nil {
					call.Args[i] = l
					count++
				}
			case *markup.Object:
				for _, p := range v.Properties {
					prop, ok := p.(*markup.Property)
					if !ok {
						continue
					}
					s, ok := prop.Value.(*markup.String)
					if !ok || !e.classifier.IsTranslatableProperty(prop.Key, s.Value) {
						continue
					}
					if l := e.literalLookup(s, r); l != nil {
						prop.Value = l
						count++
					}
				}
			}
		}
		return true
	})
	return count
}
