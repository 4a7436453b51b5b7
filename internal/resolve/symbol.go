package resolve

import (
	"fmt"
	"strings"
)

// Kind classifies a symbol. Only KindFunction matters to the engine:
// parameter documentation is read from the enclosing function's comment.
type Kind int

const (
	KindUnknown Kind = iota
	KindClass
	KindInterface
	KindFunction
	KindVariable
	KindConstant
	KindParameter
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindClass:     "class",
	KindInterface: "interface",
	KindFunction:  "function",
	KindVariable:  "variable",
	KindConstant:  "constant",
	KindParameter: "parameter",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a kind name; "method" is accepted for functions.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "method" {
		return KindFunction, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown symbol kind %q", s)
}

// Symbol is the read-only view of a definition the engine needs from the
// host's symbol table.
type Symbol interface {
	// Documentable reports whether documentation may be shown for the symbol.
	Documentable() bool
	// ExplicitComment returns the raw inline comment, if the source has one.
	ExplicitComment() (string, bool)
	// ContainingFilePath is the source file or library archive the symbol
	// was loaded from.
	ContainingFilePath() string
	QualifiedName() string
	Kind() Kind
}

// Parameter is a function parameter.
type Parameter interface {
	BaseName() string
	Parent() Symbol
}

// Definition is a plain Symbol value for hosts (and the CLI) that have no
// symbol table of their own.
type Definition struct {
	Name            string
	SymbolKind      Kind
	Path            string
	Comment         string
	HasComment      bool
	NotDocumentable bool
}

func (d *Definition) Documentable() bool              { return !d.NotDocumentable }
func (d *Definition) ExplicitComment() (string, bool) { return d.Comment, d.HasComment }
func (d *Definition) ContainingFilePath() string      { return d.Path }
func (d *Definition) QualifiedName() string           { return d.Name }
func (d *Definition) Kind() Kind                      { return d.SymbolKind }

// Param is a plain Parameter value.
type Param struct {
	Name     string
	Function Symbol
}

func (p *Param) BaseName() string { return p.Name }
func (p *Param) Parent() Symbol   { return p.Function }
