// ABOUTME: ChangeSet: an ordered batch of changes submitted as one check-in
// ABOUTME: Changes drain in the order they were added

package changeset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nainya/docvcs/pkg/container"
	"github.com/nainya/docvcs/pkg/document"
)

// ErrInvalidArgument is returned when a required input is absent
var ErrInvalidArgument = errors.New("changeset: invalid argument")

// ChangeSet is a FIFO of changes targeting one repository.
// It is not safe for concurrent use; the owning user or repo serializes access.
type ChangeSet struct {
	ID        uuid.UUID
	RepoName  string
	Author    string
	CreatedAt time.Time

	changes container.Queue[Change]
}

// New creates an empty change set for repoName
func New(repoName, author string) (*ChangeSet, error) {
	if repoName == "" {
		return nil, fmt.Errorf("%w: repo name is required", ErrInvalidArgument)
	}

	return &ChangeSet{
		ID:        uuid.New(),
		RepoName:  repoName,
		Author:    author,
		CreatedAt: time.Now(),
	}, nil
}

// AddChange appends a change at the tail
func (cs *ChangeSet) AddChange(doc document.Document, typ Type) error {
	if doc.Name == "" {
		return fmt.Errorf("%w: document is required", ErrInvalidArgument)
	}
	if !typ.Valid() {
		return fmt.Errorf("%w: unknown change type %d", ErrInvalidArgument, int(typ))
	}

	cs.changes.Enqueue(Change{doc: doc.Clone(), typ: typ})
	return nil
}

// NextChange removes and returns the oldest change; ok is false once drained
func (cs *ChangeSet) NextChange() (Change, bool) {
	return cs.changes.Dequeue()
}

// ChangeCount returns the number of unconsumed changes
func (cs *ChangeSet) ChangeCount() int {
	return cs.changes.Len()
}

// Changes returns the unconsumed changes in order without draining them
func (cs *ChangeSet) Changes() []Change {
	return cs.changes.Items()
}

func (cs *ChangeSet) String() string {
	var b strings.Builder
	for _, c := range cs.changes.Items() {
		b.WriteString(c.String())
		b.WriteString("\n")
	}
	return b.String()
}
