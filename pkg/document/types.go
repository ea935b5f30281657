// ABOUTME: Document data model for repository content
// ABOUTME: Documents are plain values so snapshots never alias live state

package document

import (
	"fmt"
	"strings"
)

// Document is a named text blob inside a repository
type Document struct {
	Name    string // Unique within a repository's live set
	Content string // Opaque text
}

// New creates a document
func New(name, content string) Document {
	return Document{Name: name, Content: content}
}

// Clone returns an independent copy
func (d Document) Clone() Document {
	return Document{Name: d.Name, Content: d.Content}
}

func (d Document) String() string {
	return fmt.Sprintf("%s\n%s", d.Name, d.Content)
}

// CloneAll copies a document slice element by element
func CloneAll(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}

// IndexOf returns the position of the document called name, or -1
func IndexOf(docs []Document, name string) int {
	for i, d := range docs {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// Names lists document names in order
func Names(docs []Document) []string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names
}

// Listing renders one document name per line
func Listing(docs []Document) string {
	var b strings.Builder
	for _, d := range docs {
		b.WriteString(d.Name)
		b.WriteString("\n")
	}
	return b.String()
}
