// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package markup defines the tree model the codemod rewrites.
//
// The model is a closed set of node kinds. Every node parsed from source
// keeps the raw text between its children (the "gaps"), so printing an
// unmodified tree reproduces the input byte for byte and printing a
// modified tree only regenerates the parts that changed shape.
package markup

// Node is any node in the markup tree.
//
// The interface is sealed: only types in this package implement it.
type Node interface {
	Kind() Kind
	node()
}

// Kind identifies the concrete type behind a Node.
type Kind int

const (
	KindProgram Kind = iota
	KindChunk
	KindRaw
	KindText
	KindElement
	KindAttribute
	KindExpressionSlot
	KindConditional
	KindCall
	KindIdentifier
	KindMember
	KindString
	KindObject
	KindProperty
	KindFunction
	KindBlock
	KindImport
	KindExportDefault
	KindLookup
)

var kindNames = [...]string{
	KindProgram:        "Program",
	KindChunk:          "Chunk",
	KindRaw:            "Raw",
	KindText:           "Text",
	KindElement:        "Element",
	KindAttribute:      "Attribute",
	KindExpressionSlot: "ExpressionSlot",
	KindConditional:    "Conditional",
	KindCall:           "Call",
	KindIdentifier:     "Identifier",
	KindMember:         "Member",
	KindString:         "String",
	KindObject:         "Object",
	KindProperty:       "Property",
	KindFunction:       "Function",
	KindBlock:          "Block",
	KindImport:         "Import",
	KindExportDefault:  "ExportDefault",
	KindLookup:         "Lookup",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Program is the root of a parsed file.
type Program struct {
	Body []Node
}

// Chunk is opaque source text the codemod never looks into.
type Chunk struct {
	Text string
}

// Raw is a node of a kind the codemod does not model. Its parts are the
// modelled descendants interleaved with Chunks for everything else.
type Raw struct {
	Parts []Node
}

// Text is literal markup text between tags. Value has character
// references decoded; Raw is the source as written and is printed when
// set.
type Text struct {
	Value string
	Raw   string
}

// Element is a markup element or, when Name is empty, a fragment.
//
// OpenHead is the source from '<' through the end of the tag name.
// OpenGaps has len(Attrs)+1 entries: the text before each attribute and
// the tail of the opening tag including '>' or '/>'. CloseTag is the
// closing tag source. Generated elements leave all three empty.
type Element struct {
	Name        string
	Attrs       []*Attribute
	Children    []Node
	SelfClosing bool

	OpenHead string
	OpenGaps []string
	CloseTag string
}

// IsFragment reports whether the element is a fragment (<>...</>).
func (e *Element) IsFragment() bool { return e.Name == "" }

// Attribute is a single element attribute. An empty Name marks a spread
// attribute whose Value holds the whole {...expr} slot. A nil Value is a
// bare boolean attribute.
type Attribute struct {
	Name  string
	Value Node

	// Sep is the source between the name and the value, normally "=".
	Sep string
}

// ExpressionSlot is an embedded {expression}. Expr is nil for an empty
// slot or one that only holds comments; Lead then carries its source.
type ExpressionSlot struct {
	Expr  Node
	Lead  string
	Trail string
}

// Conditional is a ternary expression.
type Conditional struct {
	Test       Node
	Consequent Node
	Alternate  Node

	// Gaps are the source between test and consequent and between
	// consequent and alternate (the "?" and ":" with their spacing).
	Gaps []string
}

// Call is a call expression. Seps has len(Args)+1 entries: the source
// from the callee to the first argument, between arguments, and after the
// last argument through ')'. With no arguments Seps[0] spans "(...)".
type Call struct {
	Callee Node
	Args   []Node
	Seps   []string
}

// Identifier is a bare name reference.
type Identifier struct {
	Name string
}

// Member is a property access, Object.Property or Object?.Property.
type Member struct {
	Object   Node
	Property string

	// Dot is the source between object and property.
	Dot string
}

// String is a string literal. Raw is the literal as written, including
// quotes; Value is its decoded content. JSX marks attribute strings, which
// have no escape sequences but do decode character references.
type String struct {
	Value string
	Raw   string
	JSX   bool
}

// Object is an object literal. Seps follows the same layout as Call.Seps
// with '{' and '}' in place of the parentheses.
type Object struct {
	Properties []Node
	Seps       []string
}

// Property is a key: value pair in an object literal.
type Property struct {
	Key    string
	KeySrc string
	Value  Node

	// Sep is the source between key and value, normally ": ".
	Sep string
}

// Function is any function-like node: declarations, expressions and
// arrow functions. Head is the source up to the body. Indent is the
// leading whitespace of the line the function starts on.
type Function struct {
	Name   string
	Head   string
	Body   Node
	Arrow  bool
	Indent string
}

// Block is a braced statement block. Parts excludes the braces.
type Block struct {
	Parts []Node
	Open  string
	Close string
}

// ImportSpec is one named import, with an optional local alias.
type ImportSpec struct {
	Name  string
	Alias string
}

// Import is an import declaration. Src is the declaration as written;
// once Modified is set the printer regenerates it from the fields.
type Import struct {
	Source    string
	Default   string
	Namespace string
	Named     []ImportSpec
	TypeOnly  bool

	Src      string
	Modified bool
}

// HasNamed reports whether name is among the named imports and bound
// under its own name. An aliased spec like { useIntl as useI } does not
// bind useIntl.
func (i *Import) HasNamed(name string) bool {
	for _, spec := range i.Named {
		if spec.Name == name && (spec.Alias == "" || spec.Alias == name) {
			return true
		}
	}
	return false
}

// Aliases returns the local names that name is imported under through an
// alias.
func (i *Import) Aliases(name string) []string {
	var out []string
	for _, spec := range i.Named {
		if spec.Name == name && spec.Alias != "" && spec.Alias != name {
			out = append(out, spec.Alias)
		}
	}
	return out
}

// ExportDefault is `export default <Declaration>`.
type ExportDefault struct {
	Prefix      string
	Declaration Node
	Suffix      string
}

// Param binds a placeholder name to the expression that fills it.
type Param struct {
	Name  string
	Value Node
}

// LookupForm selects how a Lookup is printed.
type LookupForm int

const (
	// LookupCall prints accessor.method({descriptor}, {params}).
	LookupCall LookupForm = iota
	// LookupComponent prints <Component defaultMessage=... values={{...}} />.
	LookupComponent
)

// Descriptor is the message a Lookup refers to.
type Descriptor struct {
	ID             string
	DefaultMessage string
	Description    string
	Params         []Param
}

// Lookup is a generated message lookup replacing translatable text.
type Lookup struct {
	Form       LookupForm
	Descriptor Descriptor

	// Accessor and Method name the call form (intl.formatMessage);
	// Component names the component form (FormattedMessage).
	Accessor  string
	Method    string
	Component string
}

func (*Program) Kind() Kind        { return KindProgram }
func (*Chunk) Kind() Kind          { return KindChunk }
func (*Raw) Kind() Kind            { return KindRaw }
func (*Text) Kind() Kind           { return KindText }
func (*Element) Kind() Kind        { return KindElement }
func (*Attribute) Kind() Kind      { return KindAttribute }
func (*ExpressionSlot) Kind() Kind { return KindExpressionSlot }
func (*Conditional) Kind() Kind    { return KindConditional }
func (*Call) Kind() Kind           { return KindCall }
func (*Identifier) Kind() Kind     { return KindIdentifier }
func (*Member) Kind() Kind         { return KindMember }
func (*String) Kind() Kind         { return KindString }
func (*Object) Kind() Kind         { return KindObject }
func (*Property) Kind() Kind       { return KindProperty }
func (*Function) Kind() Kind       { return KindFunction }
func (*Block) Kind() Kind          { return KindBlock }
func (*Import) Kind() Kind         { return KindImport }
func (*ExportDefault) Kind() Kind  { return KindExportDefault }
func (*Lookup) Kind() Kind         { return KindLookup }

func (*Program) node()        {}
func (*Chunk) node()          {}
func (*Raw) node()            {}
func (*Text) node()           {}
func (*Element) node()        {}
func (*Attribute) node()      {}
func (*ExpressionSlot) node() {}
func (*Conditional) node()    {}
func (*Call) node()           {}
func (*Identifier) node()     {}
func (*Member) node()         {}
func (*String) node()         {}
func (*Object) node()         {}
func (*Property) node()       {}
func (*Function) node()       {}
func (*Block) node()          {}
func (*Import) node()         {}
func (*ExportDefault) node()  {}
func (*Lookup) node()         {}
