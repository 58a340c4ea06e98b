// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package placeholder

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shamrt/ast-react-intl/services/codemod/markup"
)

func text(s string) *markup.Text { return &markup.Text{Value: s} }

func slot(expr markup.Node) *markup.ExpressionSlot { return &markup.ExpressionSlot{Expr: expr} }

func ident(name string) *markup.Identifier { return &markup.Identifier{Name: name} }

func call(name string) *markup.Call { return &markup.Call{Callee: ident(name)} }

func paramNames(params []markup.Param) []string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	return names
}

func printed(n markup.Node) string { return markup.Print(n, markup.DefaultPrintOptions()) }

func TestBuild_PositionalArgument(t *testing.T) {
	value := call("getValue")
	got := Build([]markup.Node{text("My text "), slot(value)})

	if got.Template != "My text {arg0}" {
		t.Fatalf("Template = %q", got.Template)
	}
	if len(got.Params) != 1 || got.Params[0].Name != "arg0" || got.Params[0].Value != value {
		t.Fatalf("Params = %+v", got.Params)
	}
	if !got.HasRealText || !got.HasOwnText {
		t.Errorf("HasRealText=%v HasOwnText=%v, want both true", got.HasRealText, got.HasOwnText)
	}
}

func TestBuild_NamedArguments(t *testing.T) {
	member := &markup.Member{Object: ident("user"), Property: "name"}
	got := Build([]markup.Node{
		text("Hello "), slot(member), text(", you have "), slot(ident("count")), text(" items"),
	})
	if want := "Hello {name}, you have {count} items"; got.Template != want {
		t.Fatalf("Template = %q, want %q", got.Template, want)
	}
	if diff := cmp.Diff([]string{"name", "count"}, paramNames(got.Params)); diff != "" {
		t.Errorf("param names mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_NestedElements(t *testing.T) {
	span := &markup.Element{Name: "span", Children: []markup.Node{text("Other text")}}
	link := &markup.Element{
		Name:     "Link",
		Attrs:    []*markup.Attribute{{Name: "to", Value: &markup.String{Value: "/", Raw: `"/"`, JSX: true}}},
		Children: []markup.Node{text("Link")},
	}
	got := Build([]markup.Node{
		text("My simple "), slot(ident("number")), text(" text "), span,
		text(" Even more text "), link, text(" Further text"),
	})

	want := "My simple {number} text <span3>Other text</span3> Even more text <Link5>Link</Link5> Further text"
	if got.Template != want {
		t.Fatalf("Template = %q\nwant       %q", got.Template, want)
	}
	if diff := cmp.Diff([]string{"number", "span3", "Link5"}, paramNames(got.Params)); diff != "" {
		t.Fatalf("param names mismatch (-want +got):\n%s", diff)
	}
	if got := printed(got.Params[1].Value); got != "(chunks) => <span>{chunks}</span>" {
		t.Errorf("span wrapper = %q", got)
	}
	if got := printed(got.Params[2].Value); got != `(chunks) => <Link to="/">{chunks}</Link>` {
		t.Errorf("link wrapper = %q", got)
	}
}

func TestBuild_TagBindingPrecedesInnerBindings(t *testing.T) {
	strong := &markup.Element{Name: "strong", Children: []markup.Node{slot(ident("who"))}}
	got := Build([]markup.Node{text("Ask "), strong})
	if got.Template != "Ask <strong1>{who}</strong1>" {
		t.Fatalf("Template = %q", got.Template)
	}
	if diff := cmp.Diff([]string{"strong1", "who"}, paramNames(got.Params)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestBuild_SelfClosingAndFragment(t *testing.T) {
	br := &markup.Element{Name: "br", SelfClosing: true}
	frag := &markup.Element{Children: []markup.Node{text("inside")}}
	got := Build([]markup.Node{text("Line one"), br, text("Line two "), frag})

	if want := "Line one<br1></br1>Line two <tag3>inside</tag3>"; got.Template != want {
		t.Fatalf("Template = %q, want %q", got.Template, want)
	}
	if got := printed(got.Params[0].Value); got != "() => <br />" {
		t.Errorf("br wrapper = %q", got)
	}
	if got := printed(got.Params[1].Value); got != "(chunks) => <>{chunks}</>" {
		t.Errorf("fragment wrapper = %q", got)
	}
}

func TestBuild_RealTextOnlyNested(t *testing.T) {
	b := &markup.Element{Name: "b", Children: []markup.Node{text("Bold")}}
	got := Build([]markup.Node{text("\n  "), b, text("\n")})
	if !got.HasRealText {
		t.Error("HasRealText = false, want true for nested text")
	}
	if got.HasOwnText {
		t.Error("HasOwnText = true, want false")
	}
}

func TestBuild_WhitespaceAndDynamicOnly(t *testing.T) {
	tests := []struct {
		name  string
		nodes []markup.Node
	}{
		{"empty", nil},
		{"whitespace", []markup.Node{text("  \n\t ")}},
		{"dynamic only", []markup.Node{text("\n  "), slot(ident("children")), text("\n")}},
		{"empty slot", []markup.Node{&markup.ExpressionSlot{Lead: "{/* note */}"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.nodes)
			if got.HasRealText {
				t.Errorf("HasRealText = true for %q", got.Template)
			}
		})
	}
}

func TestBuild_StringSlotIsLiteral(t *testing.T) {
	got := Build([]markup.Node{slot(&markup.String{Value: "Hello there"})})
	if got.Template != "Hello there" || len(got.Params) != 0 || !got.HasOwnText {
		t.Fatalf("got %+v", got)
	}
}

func TestBuild_CollapsesWhitespace(t *testing.T) {
	got := Build([]markup.Node{text("\n    My   simple\n    text\n  ")})
	if got.Template != "My simple text" {
		t.Fatalf("Template = %q", got.Template)
	}
}

func TestBuild_NameCollisions(t *testing.T) {
	a := &markup.Member{Object: ident("a"), Property: "name"}
	b := &markup.Member{Object: ident("b"), Property: "name"}
	got := Build([]markup.Node{
		text("From "), slot(a), text(" to "), slot(b), text(" and "), slot(ident("name")),
	})
	if want := "From {name} to {arg0} and {arg1}"; got.Template != want {
		t.Fatalf("Template = %q, want %q", got.Template, want)
	}

	same := Build([]markup.Node{slot(ident("n")), text(" of "), slot(ident("n"))})
	if same.Template != "{n} of {n}" || len(same.Params) != 1 {
		t.Fatalf("repeated identifier: %+v", same)
	}
}

func TestBuild_IdempotentOnOutput(t *testing.T) {
	lookup := &markup.Lookup{Form: markup.LookupComponent, Component: "FormattedMessage"}
	got := Build([]markup.Node{text("\n  "), lookup, text("\n")})
	if got.HasRealText {
		t.Error("already rewritten content reported real text")
	}
}
