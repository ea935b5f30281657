// ABOUTME: Version store: the per-repository stack of snapshots
// ABOUTME: Version numbers equal stack position, genesis (0) at the bottom

package version

import (
	"github.com/nainya/docvcs/pkg/container"
	"github.com/nainya/docvcs/pkg/document"
)

// Store keeps the snapshot stack of one repository.
// It is not safe for concurrent use; the owning repo holds the lock.
type Store struct {
	repoName string
	records  container.Stack[RepoCopy]
}

// NewStore creates a store holding only the empty genesis snapshot
func NewStore(repoName string) *Store {
	vs := &Store{repoName: repoName}
	vs.records.Push(NewRepoCopy(repoName, 0, nil, ""))
	return vs
}

// CreateVersion pushes a snapshot of docs as the next version
func (vs *Store) CreateVersion(docs []document.Document, createdBy string) RepoCopy {
	rc := NewRepoCopy(vs.repoName, vs.records.Len(), docs, createdBy)
	vs.records.Push(rc)
	return rc
}

// GetLatestVersion returns the top snapshot
func (vs *Store) GetLatestVersion() RepoCopy {
	rc, _ := vs.records.Peek() // never empty: genesis is not poppable
	return rc
}

// Rollback discards the top snapshot and returns the one beneath it.
// ok is false at genesis, in which case nothing changes.
func (vs *Store) Rollback() (RepoCopy, bool) {
	if vs.records.Len() <= 1 {
		return RepoCopy{}, false
	}
	vs.records.Pop()
	return vs.GetLatestVersion(), true
}

// GetVersion returns the snapshot for a version still on the stack
func (vs *Store) GetVersion(v int) (RepoCopy, bool) {
	if v < 0 || v >= vs.records.Len() {
		return RepoCopy{}, false
	}
	items := vs.records.Items()
	return items[len(items)-1-v], true
}

// Depth returns the number of snapshots, always at least 1
func (vs *Store) Depth() int {
	return vs.records.Len()
}

// GetVersionHistory lists every snapshot, newest first
func (vs *Store) GetVersionHistory() History {
	records := vs.records.Items()
	h := History{RepoName: vs.repoName, Versions: make([]Summary, len(records))}
	for i, rc := range records {
		h.Versions[i] = rc.Summary()
	}
	return h
}
