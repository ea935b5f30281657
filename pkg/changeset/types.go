// ABOUTME: Change data model: a single intended document mutation
// ABOUTME: Changes carry a copy of the target document and are consumed once

package changeset

import (
	"fmt"

	"github.com/nainya/docvcs/pkg/document"
)

// Type is the kind of mutation a Change performs
type Type int

const (
	Add Type = iota + 1
	Edit
	Delete
)

func (t Type) String() string {
	switch t {
	case Add:
		return "ADD"
	case Edit:
		return "EDIT"
	case Delete:
		return "DELETE"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is one of Add, Edit or Delete
func (t Type) Valid() bool {
	return t == Add || t == Edit || t == Delete
}

// Change is an immutable (document, type) pair
type Change struct {
	doc document.Document
	typ Type
}

// Doc returns a copy of the target document
func (c Change) Doc() document.Document {
	return c.doc.Clone()
}

// Type returns the mutation kind
func (c Change) Type() Type {
	return c.typ
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.typ, c.doc.Name)
}
