// Package dita reads the DITA documentation metadata that ASDoc embeds in
// compiled library archives and ships as standalone reference documents.
//
// A parsed List maps qualified names to ASDoc comment text synthesized from
// the DITA elements, so every source of documentation ends up in the same
// asdoc.Comment form.
package dita

import (
	"maps"
	"slices"

	"asdocs/internal/asdoc"
)

// List is an immutable index of documentation keyed by qualified name.
// Qualified names follow these conventions:
//
//	flash.display.Sprite            classifier
//	flash.display.Sprite.startDrag  member (method, property, constant)
//	flash.display.Sprite.Sprite     constructor
//	trace                           top-level function
type List struct {
	entries map[string]string
}

// NewList builds a List from qualified name to raw ASDoc text.
func NewList(entries map[string]string) *List {
	if entries == nil {
		entries = map[string]string{}
	}
	return &List{entries: maps.Clone(entries)}
}

// Comment returns a fresh, uncompiled comment for qualifiedName.
func (l *List) Comment(qualifiedName string) (*asdoc.Comment, bool) {
	raw, ok := l.Raw(qualifiedName)
	if !ok {
		return nil, false
	}
	return asdoc.New(raw), true
}

// Raw returns the synthesized ASDoc text for qualifiedName.
func (l *List) Raw(qualifiedName string) (string, bool) {
	if l == nil {
		return "", false
	}
	raw, ok := l.entries[qualifiedName]
	return raw, ok
}

// Len returns the number of documented names.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Names returns the documented qualified names, sorted.
func (l *List) Names() []string {
	if l == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(l.entries))
}

// Entries returns a copy of the underlying map, for persistence.
func (l *List) Entries() map[string]string {
	if l == nil {
		return nil
	}
	return maps.Clone(l.entries)
}
