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
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shamrt/ast-react-intl/services/codemod/markup"
)

const componentSource = `import React from 'react';
import { Link } from "react-router-dom";

// Renders the header.
function Header({ number, enabled }) {
  return (
    <div className="header">
      <h1 title="Main title">My simple {number} text <span>Other text</span></h1>
      {enabled ? 'OK' : null}
      <input placeholder='Search here' {...rest} />
      <>Fragment text</>
      {/* nothing here */}
      <Link to="/">Home</Link>
    </div>
  );
}

const Footer = () => <footer>{String('Copyright notice')}</footer>;

export default Header;
`

const typescriptSource = `import { useIntl } from 'react-intl';

export function notify(message: string): void {
  showSnackbar({ message: 'User edited successfully!', level: 1 });
  const schema = yup.string().required('This field is required');
}
`

func parse(t *testing.T, src, path string) *markup.Program {
	t.Helper()
	prog, err := NewParser().Parse(context.Background(), []byte(src), path)
	if err != nil {
		t.Fatalf("Parse(%s): %v", path, err)
	}
	return prog
}

func collect[T markup.Node](root markup.Node) []T {
	var out []T
	markup.Inspect(root, func(n, _ markup.Node) bool {
		if v, ok := n.(T); ok {
			out = append(out, v)
		}
		return true
	})
	return out
}

func TestParser_RoundTrip(t *testing.T) {
	tests := []struct {
		path string
		src  string
	}{
		{"Header.jsx", componentSource},
		{"Header.js", componentSource},
		{"Header.tsx", componentSource},
		{"notify.ts", typescriptSource},
		{"empty.js", ""},
		{"comments.js", "  // leading\n/* block */\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			prog := parse(t, tt.src, tt.path)
			if got := markup.Print(prog, markup.DefaultPrintOptions()); got != tt.src {
				t.Errorf("round trip mismatch\n--- got ---\n%s\n--- want ---\n%s", got, tt.src)
			}
		})
	}
}

func TestParser_Elements(t *testing.T) {
	prog := parse(t, componentSource, "Header.jsx")
	elements := collect[*markup.Element](prog)

	names := make([]string, 0, len(elements))
	for _, e := range elements {
		names = append(names, e.Name)
	}
	want := "div h1 span input  Link footer"
	if got := strings.Join(names, " "); got != want {
		t.Fatalf("element names = %q, want %q", got, want)
	}

	h1 := elements[1]
	if len(h1.Attrs) != 1 || h1.Attrs[0].Name != "title" {
		t.Fatalf("h1 attrs = %+v", h1.Attrs)
	}
	if s, ok := h1.Attrs[0].Value.(*markup.String); !ok || s.Value != "Main title" || !s.JSX {
		t.Errorf("title value = %#v", h1.Attrs[0].Value)
	}
	if len(h1.Children) != 4 {
		t.Fatalf("h1 children = %d, want 4 (text, slot, text, span)", len(h1.Children))
	}
	if txt, ok := h1.Children[0].(*markup.Text); !ok || txt.Value != "My simple " {
		t.Errorf("first child = %#v", h1.Children[0])
	}
	if slot, ok := h1.Children[1].(*markup.ExpressionSlot); !ok || markup.Print(slot.Expr, markup.DefaultPrintOptions()) != "number" {
		t.Errorf("second child = %#v", h1.Children[1])
	}

	input := elements[3]
	if !input.SelfClosing || len(input.Attrs) != 2 || input.Attrs[1].Name != "" {
		t.Errorf("input = %+v", input)
	}

	fragment := elements[4]
	if !fragment.IsFragment() || len(fragment.Children) != 1 {
		t.Errorf("fragment = %+v", fragment)
	}
}

func TestParser_DecodesCharacterReferences(t *testing.T) {
	src := "export default () => <p title=\"Terms &amp; conditions\">Copyright&nbsp;2024 &copy; Acme</p>;\n"
	prog := parse(t, src, "Legal.jsx")

	p := collect[*markup.Element](prog)[0]
	title, ok := p.Attrs[0].Value.(*markup.String)
	if !ok || title.Value != "Terms & conditions" || title.Raw != `"Terms &amp; conditions"` {
		t.Errorf("title = %#v", p.Attrs[0].Value)
	}
	txt, ok := p.Children[0].(*markup.Text)
	if !ok || txt.Value != "Copyright\u00a02024 \u00a9 Acme" || txt.Raw != "Copyright&nbsp;2024 &copy; Acme" {
		t.Errorf("text = %#v", p.Children[0])
	}
	if got := markup.Print(prog, markup.DefaultPrintOptions()); got != src {
		t.Errorf("round trip mismatch\n got: %s\nwant: %s", got, src)
	}
}

func TestParser_BareAmpersandInText(t *testing.T) {
	src := "export default () => (\n  <p>\n    & more\n    Say \"hi\" & 'bye' now\n  </p>\n);\nconst mask = flags&4;\n"
	prog := parse(t, src, "Bye.jsx")

	if got := markup.Print(prog, markup.DefaultPrintOptions()); got != src {
		t.Errorf("round trip mismatch\n got: %s\nwant: %s", got, src)
	}
	p := collect[*markup.Element](prog)[0]
	txt, ok := p.Children[0].(*markup.Text)
	if !ok || !strings.Contains(txt.Value, `Say "hi" & 'bye' now`) || !strings.Contains(txt.Value, "& more") {
		t.Errorf("text = %#v", p.Children[0])
	}
}

func TestMaskBareAmpersands(t *testing.T) {
	tests := []struct{ in, want string }{
		{"<p>Say & go</p>", "<p>Say _ go</p>"},
		{"<p>& more</p>", "<p>_ more</p>"},
		{"a && b", ""},
		{"a &= b", ""},
		{"&amp; &nbsp;", ""},
	}
	for _, tt := range tests {
		if got := string(maskBareAmpersands([]byte(tt.in))); got != tt.want {
			t.Errorf("maskBareAmpersands(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParser_SlotsAndConditionals(t *testing.T) {
	prog := parse(t, componentSource, "Header.jsx")

	conds := collect[*markup.Conditional](prog)
	if len(conds) != 1 {
		t.Fatalf("conditionals = %d, want 1", len(conds))
	}
	if s, ok := conds[0].Consequent.(*markup.String); !ok || s.Value != "OK" {
		t.Errorf("consequent = %#v", conds[0].Consequent)
	}

	var empty int
	for _, s := range collect[*markup.ExpressionSlot](prog) {
		if s.Expr == nil {
			empty++
		}
	}
	if empty != 1 {
		t.Errorf("empty slots = %d, want 1", empty)
	}
}

func TestParser_FunctionsAndExports(t *testing.T) {
	prog := parse(t, componentSource, "Header.jsx")

	var names []string
	for _, fn := range collect[*markup.Function](prog) {
		names = append(names, fn.Name)
	}
	if got := strings.Join(names, ","); got != "Header,Footer" {
		t.Errorf("function names = %q", got)
	}

	exports := collect[*markup.ExportDefault](prog)
	if len(exports) != 1 {
		t.Fatalf("default exports = %d", len(exports))
	}
	if id, ok := exports[0].Declaration.(*markup.Identifier); !ok || id.Name != "Header" {
		t.Errorf("declaration = %#v", exports[0].Declaration)
	}

	imports := collect[*markup.Import](prog)
	if len(imports) != 2 {
		t.Fatalf("imports = %d", len(imports))
	}
	if imports[0].Default != "React" || imports[0].Source != "react" {
		t.Errorf("first import = %+v", imports[0])
	}
	if !imports[1].HasNamed("Link") || imports[1].Source != "react-router-dom" {
		t.Errorf("second import = %+v", imports[1])
	}
}

func TestParser_CallsAndObjects(t *testing.T) {
	prog := parse(t, typescriptSource, "notify.ts")

	var callees []string
	for _, call := range collect[*markup.Call](prog) {
		callees = append(callees, markup.Print(call.Callee, markup.DefaultPrintOptions()))
	}
	want := "showSnackbar,yup.string().required,yup.string"
	if got := strings.Join(callees, ","); got != want {
		t.Errorf("callees = %q, want %q", got, want)
	}

	props := collect[*markup.Property](prog)
	if len(props) != 2 || props[0].Key != "message" || props[1].Key != "level" {
		t.Fatalf("properties = %+v", props)
	}
	if s, ok := props[0].Value.(*markup.String); !ok || s.Value != "User edited successfully!" {
		t.Errorf("message value = %#v", props[0].Value)
	}
}

func TestParser_Errors(t *testing.T) {
	p := NewParser(WithMaxFileSize(16))

	if _, err := p.Parse(context.Background(), []byte(strings.Repeat("a", 17)), "big.js"); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("too large: err = %v", err)
	}
	if _, err := p.Parse(context.Background(), []byte{0xff, 0xfe}, "bad.js"); !errors.Is(err, ErrInvalidContent) {
		t.Errorf("invalid utf8: err = %v", err)
	}
	if _, err := NewParser().Parse(context.Background(), []byte("const = ;"), "broken.js"); !errors.Is(err, ErrSyntax) {
		t.Errorf("syntax: err = %v", err)
	}
	if _, err := NewParser().Parse(context.Background(), []byte("const y = a & ;"), "broken.js"); !errors.Is(err, ErrSyntax) {
		t.Errorf("syntax with ampersand: err = %v", err)
	}
	if _, err := NewParser().Parse(context.Background(), []byte("x"), "style.css"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("language: err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewParser().Parse(ctx, []byte("x;"), "a.js"); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: err = %v", err)
	}
}

func TestDecodeString(t *testing.T) {
	tests := map[string]string{
		`'plain'`:          "plain",
		`"it's"`:           "it's",
		`'it\'s'`:          "it's",
		`'a\nb'`:           "a\nb",
		`'été'`:  "été",
		`'\u{1F600}'`:      "😀",
		`'\x41'`:           "A",
		`'back\\slash'`:    `back\slash`,
		`'😀'`:   "😀",
		`'unknown \q esc'`: "unknown q esc",
	}
	for raw, want := range tests {
		if got := decodeString(raw); got != want {
			t.Errorf("decodeString(%s) = %q, want %q", raw, got, want)
		}
	}
}

func TestParser_ConcurrentUse(t *testing.T) {
	p := NewParser()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prog, err := p.Parse(context.Background(), []byte(componentSource), "Header.jsx")
			if err != nil {
				errs <- err
				return
			}
			if markup.Print(prog, markup.DefaultPrintOptions()) != componentSource {
				errs <- errors.New("round trip mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
