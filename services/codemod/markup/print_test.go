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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteJS(t *testing.T) {
	tests := []struct {
		in    string
		quote rune
		want  string
	}{
		{"plain", '\'', `'plain'`},
		{"it's", '\'', `'it\'s'`},
		{"it's", '"', `"it's"`},
		{`say "hi"`, '"', `"say \"hi\""`},
		{"a\\b", '\'', `'a\\b'`},
		{"line\nbreak\ttab", '\'', `'line\nbreak\ttab'`},
		{"a\u2028b", '\'', `'a\u2028b'`},
	}
	for _, tt := range tests {
		if got := QuoteJS(tt.in, tt.quote); got != tt.want {
			t.Errorf("QuoteJS(%q, %q) = %s, want %s", tt.in, tt.quote, got, tt.want)
		}
	}
}

func TestIsIdentifierName(t *testing.T) {
	for _, s := range []string{"a", "_x", "$el", "Link3", "chunks"} {
		assert.True(t, IsIdentifierName(s), s)
	}
	for _, s := range []string{"", "3d", "data-id", "two words"} {
		assert.False(t, IsIdentifierName(s), s)
	}
}

func callLookup(params ...Param) *Lookup {
	return &Lookup{
		Form:       LookupCall,
		Descriptor: Descriptor{DefaultMessage: "Hello {name}", Params: params},
		Accessor:   "intl",
		Method:     "formatMessage",
		Component:  "FormattedMessage",
	}
}

func TestPrint_CallLookup(t *testing.T) {
	prog := &Program{Body: []Node{
		&Chunk{Text: "  const s = "},
		callLookup(Param{Name: "name", Value: &Identifier{Name: "name"}}),
		&Chunk{Text: ";"},
	}}

	got := Print(prog, DefaultPrintOptions())

	assert.Equal(t, "  const s = intl.formatMessage({\n"+
		"    defaultMessage: 'Hello {name}'\n"+
		"  }, {\n"+
		"    name: name\n"+
		"  });", got)
}

func TestPrint_Options(t *testing.T) {
	opts := PrintOptions{Quote: '"', TrailingComma: true, LineTerminator: "\r\n"}
	l := callLookup()
	l.Descriptor.ID = "hello"

	got := Print(l, opts)

	assert.Equal(t, "intl.formatMessage({\r\n"+
		"  id: \"hello\",\r\n"+
		"  defaultMessage: \"Hello {name}\",\r\n"+
		"})", got)
}

func TestPrint_ComponentLookup(t *testing.T) {
	l := &Lookup{
		Form: LookupComponent,
		Descriptor: Descriptor{
			DefaultMessage: "Don't <b0>stop</b0>",
			Description:    "Footer",
			Params: []Param{{
				Name:  "b0",
				Value: &Function{Head: "(chunks) => ", Body: &Element{Name: "b", Children: []Node{&ExpressionSlot{Expr: &Identifier{Name: "chunks"}}}}},
			}},
		},
		Component: "FormattedMessage",
	}

	got := Print(l, DefaultPrintOptions())

	assert.Equal(t, `<FormattedMessage defaultMessage="Don't <b0>stop</b0>" description='Footer' values={{`+"\n"+
		`  b0: (chunks) => <b>{chunks}</b>`+"\n"+
		`}} />`, got)
}

func TestPrint_JSXAttrValueFallsBackToExpression(t *testing.T) {
	s := &String{Value: `both ' and "`, JSX: true}
	assert.Equal(t, `{'both \' and "'}`, Print(s, DefaultPrintOptions()))

	multi := &String{Value: "two\nlines", JSX: true}
	assert.Equal(t, `{'two\nlines'}`, Print(multi, DefaultPrintOptions()))
}

func TestDecodeEntities(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Terms &amp; conditions", "Terms & conditions"},
		{"a&nbsp;b", "a\u00a0b"},
		{"&#169; &#xA9; &copy;", "\u00a9 \u00a9 \u00a9"},
		{"Say & go", "Say & go"},
		{"&copyright", "&copyright"},
		{"&unknown;", "&unknown;"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DecodeEntities(tt.in), tt.in)
	}
}

func TestPrint_CharacterReferences(t *testing.T) {
	txt := &Text{Value: "a & b", Raw: "a &amp; b"}
	assert.Equal(t, "a &amp; b", Print(txt, DefaultPrintOptions()))
	assert.Equal(t, "a & b", Print(&Text{Value: "a & b"}, DefaultPrintOptions()))

	bare := &String{Value: "Tom & Jerry", JSX: true}
	assert.Equal(t, "'Tom & Jerry'", Print(bare, DefaultPrintOptions()))

	legacy := &String{Value: "&copyright", JSX: true}
	assert.Equal(t, "'&copyright'", Print(legacy, DefaultPrintOptions()))

	ref := &String{Value: "Use &copy; here", JSX: true}
	assert.Equal(t, "{'Use &copy; here'}", Print(ref, DefaultPrintOptions()))
}

func TestPrint_Import(t *testing.T) {
	tests := []struct {
		name string
		imp  *Import
		want string
	}{
		{"unmodified keeps source", &Import{Source: "react", Default: "React", Src: `import React from "react"`}, `import React from "react"`},
		{"named", &Import{Source: "react-intl", Named: []ImportSpec{{Name: "useIntl"}, {Name: "FormattedMessage", Alias: "FM"}}, Modified: true},
			"import { useIntl, FormattedMessage as FM } from 'react-intl';"},
		{"default and named", &Import{Source: "x", Default: "X", Named: []ImportSpec{{Name: "y"}}, Modified: true}, "import X, { y } from 'x';"},
		{"type only", &Import{Source: "t", TypeOnly: true, Named: []ImportSpec{{Name: "T"}}, Modified: true}, "import type { T } from 't';"},
		{"side effect", &Import{Source: "./styles.css", Modified: true}, "import './styles.css';"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Print(tt.imp, DefaultPrintOptions()))
		})
	}
}

func TestPrint_GeneratedNodesUseDefaults(t *testing.T) {
	el := &Element{
		Name:  "input",
		Attrs: []*Attribute{{Name: "title", Value: &ExpressionSlot{Expr: &String{Value: "Hi"}}}, {Value: &Identifier{Name: "...rest"}}},
		SelfClosing: true,
	}
	call := &Call{Callee: &Member{Object: &Identifier{Name: "a"}, Property: "b"}, Args: []Node{&String{Value: "x"}, &Object{Properties: []Node{&Property{Key: "data-id", Value: &Identifier{Name: "v"}}}}}}
	cond := &Conditional{Test: &Identifier{Name: "ok"}, Consequent: &String{Value: "y"}, Alternate: &String{Value: "n"}}

	assert.Equal(t, "<input title={'Hi'} ...rest />", Print(el, DefaultPrintOptions()))
	assert.Equal(t, "a.b('x', { 'data-id': v })", Print(call, DefaultPrintOptions()))
	assert.Equal(t, "ok ? 'y' : 'n'", Print(cond, DefaultPrintOptions()))
	assert.Equal(t, "f()", Print(&Call{Callee: &Identifier{Name: "f"}}, DefaultPrintOptions()))
}

func TestInspect_ParentsAndSkip(t *testing.T) {
	inner := &Text{Value: "x"}
	el := &Element{Name: "p", Attrs: []*Attribute{{Name: "title", Value: &String{Value: "t"}}}, Children: []Node{inner}}
	root := &Program{Body: []Node{el}}

	parents := map[Node]Node{}
	Inspect(root, func(n, parent Node) bool {
		parents[n] = parent
		return true
	})
	assert.Equal(t, Node(el), parents[inner])
	assert.Nil(t, parents[root])

	var seen int
	Inspect(root, func(n, _ Node) bool {
		seen++
		_, isEl := n.(*Element)
		return !isEl
	})
	assert.Equal(t, 2, seen)
}

func TestUnparen(t *testing.T) {
	s := &String{Value: "x"}
	wrapped := &Raw{Parts: []Node{&Chunk{Text: "("}, &Raw{Parts: []Node{&Chunk{Text: "( "}, s, &Chunk{Text: " )"}}}, &Chunk{Text: ")"}}}
	assert.Same(t, s, Unparen(wrapped))

	call := &Raw{Parts: []Node{&Identifier{Name: "f"}, &Chunk{Text: "("}, s, &Chunk{Text: ")"}}}
	assert.Same(t, Node(call), Unparen(call))
}
