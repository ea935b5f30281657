// ABOUTME: Tests for document values and slice helpers
// ABOUTME: Verifies that clones are independent of their source

package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCloneAllIsIndependent(t *testing.T) {
	docs := []Document{New("a.txt", "v1"), New("b.txt", "hello")}

	copied := CloneAll(docs)
	if diff := cmp.Diff(docs, copied); diff != "" {
		t.Fatalf("Clone differs from source (-want +got):\n%s", diff)
	}

	copied[0].Content = "changed"
	if docs[0].Content != "v1" {
		t.Errorf("Mutating the clone changed the source: %q", docs[0].Content)
	}
}

func TestIndexOfAndNames(t *testing.T) {
	docs := []Document{New("x", "1"), New("y", "2"), New("z", "3")}

	if i := IndexOf(docs, "y"); i != 1 {
		t.Errorf("Expected index 1, got %d", i)
	}
	if i := IndexOf(docs, "missing"); i != -1 {
		t.Errorf("Expected -1 for missing doc, got %d", i)
	}

	if diff := cmp.Diff([]string{"x", "y", "z"}, Names(docs)); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	if got := Listing(docs); got != "x\ny\nz\n" {
		t.Errorf("Unexpected listing %q", got)
	}
}
