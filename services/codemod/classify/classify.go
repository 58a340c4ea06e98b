// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package classify decides which strings, attributes and calls hold
// translatable text.
package classify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shamrt/ast-react-intl/services/codemod/markup"
)

// Rules are the inputs a Classifier is built from. They normally come
// from the codemod configuration.
type Rules struct {
	// DenylistedAttributeNames are attribute names never rewritten.
	DenylistedAttributeNames []string

	// DenylistedCallees are function names whose arguments are never
	// rewritten.
	DenylistedCallees []string

	// IgnoredAttributePatterns match attribute names that never hold
	// translatable text (style, href, localization machinery ...).
	IgnoredAttributePatterns []string

	// TextAttributePatterns match attribute names that usually hold text.
	TextAttributePatterns []string

	// SVGElements are element names whose attributes are left alone.
	SVGElements []string

	// ValidationMethod is the member name that makes a method call
	// eligible despite a member callee, as in yup.string().required('...').
	ValidationMethod string
}

// Classifier holds compiled Rules. It is immutable and safe for
// concurrent use.
type Classifier struct {
	deniedAttrs   map[string]struct{}
	deniedCallees map[string]struct{}
	svg           map[string]struct{}
	ignored       []*regexp.Regexp
	textual       []*regexp.Regexp
	validation    string
}

// New compiles rules into a Classifier.
func New(rules Rules) (*Classifier, error) {
	c := &Classifier{
		deniedAttrs:   toSet(rules.DenylistedAttributeNames),
		deniedCallees: toSet(rules.DenylistedCallees),
		svg:           toSet(rules.SVGElements),
		validation:    rules.ValidationMethod,
	}
	var err error
	if c.ignored, err = compileAll(rules.IgnoredAttributePatterns); err != nil {
		return nil, fmt.Errorf("ignored attribute patterns: %w", err)
	}
	if c.textual, err = compileAll(rules.TextAttributePatterns); err != nil {
		return nil, fmt.Errorf("text attribute patterns: %w", err)
	}
	return c, nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// LooksLikeText reports whether a literal reads as prose. A string with
// an internal space does; single tokens (identifiers, CSS classes, camel
// case) do not.
func LooksLikeText(s string) bool {
	return strings.ContainsFunc(strings.TrimSpace(s), unicode.IsSpace)
}

// HasText reports whether s holds anything besides whitespace.
func HasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsDenylistedAttribute reports whether name is in the attribute denylist
// or matches an ignored pattern.
func (c *Classifier) IsDenylistedAttribute(name string) bool {
	if _, ok := c.deniedAttrs[name]; ok {
		return true
	}
	return matchAny(c.ignored, name)
}

// LooksLikeTextAttribute reports whether name is an attribute that
// usually carries text, such as title, label or placeholder.
func (c *Classifier) LooksLikeTextAttribute(name string) bool {
	return matchAny(c.textual, name)
}

// IsTranslatableAttribute reports whether an attribute with a literal
// value should be rewritten. value must be the literal's content; nested
// expressions are never eligible here.
func (c *Classifier) IsTranslatableAttribute(name, value string) bool {
	if name == "" || c.IsDenylistedAttribute(name) || !HasText(value) {
		return false
	}
	return c.LooksLikeTextAttribute(name) || LooksLikeText(value)
}

// IsTranslatableCallee reports whether calls to name may be rewritten.
func (c *Classifier) IsTranslatableCallee(name string) bool {
	if name == "" || name == "import" {
		return false
	}
	_, denied := c.deniedCallees[name]
	return !denied
}

// IsSVGElement reports whether attributes of the named element are
// exempt from rewriting.
func (c *Classifier) IsSVGElement(name string) bool {
	_, ok := c.svg[name]
	return ok
}

// IsValidationCall reports whether callee is a member chain ending in
// the validation method (schema.required('...')).
func (c *Classifier) IsValidationCall(callee markup.Node) bool {
	m, ok := callee.(*markup.Member)
	return ok && c.validation != "" && m.Property == c.validation
}

// IsEligibleCall reports whether a call's arguments may be rewritten:
// the callee is a translatable identifier or a validation method, and at
// least one argument is eligible.
func (c *Classifier) IsEligibleCall(call *markup.Call) bool {
	switch callee := call.Callee.(type) {
	case *markup.Identifier:
		if !c.IsTranslatableCallee(callee.Name) {
			return false
		}
	case *markup.Member:
		if !c.IsValidationCall(callee) {
			return false
		}
	default:
		return false
	}
	for _, arg := range call.Args {
		if c.IsEligibleCallArgument(arg) {
			return true
		}
	}
	return false
}

// IsEligibleCallArgument reports whether arg is a string literal or an
// object literal with at least one string-literal property value.
func (c *Classifier) IsEligibleCallArgument(arg markup.Node) bool {
	switch arg := arg.(type) {
	case *markup.String:
		return true
	case *markup.Object:
		for _, p := range arg.Properties {
			if prop, ok := p.(*markup.Property); ok {
				if _, ok := prop.Value.(*markup.String); ok {
					return true
				}
			}
		}
	}
	return false
}

// IsTranslatableArgument reports whether a string argument of an eligible
// call should be rewritten. Arguments of validation calls always are.
func (c *Classifier) IsTranslatableArgument(value string, validation bool) bool {
	if !HasText(value) {
		return false
	}
	return validation || LooksLikeText(value)
}

// IsTranslatableProperty reports whether a string-valued object property
// of an eligible call argument should be rewritten.
func (c *Classifier) IsTranslatableProperty(key, value string) bool {
	if key == "" || c.IsDenylistedAttribute(key) || !HasText(value) {
		return false
	}
	return c.LooksLikeTextAttribute(key) || LooksLikeText(value)
}
