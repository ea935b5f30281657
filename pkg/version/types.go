// ABOUTME: Version snapshot data model
// ABOUTME: RepoCopy is an immutable record of a repository's documents at one version

package version

import (
	"fmt"
	"strings"
	"time"

	"github.com/nainya/docvcs/pkg/document"
)

// RepoCopy is a point-in-time snapshot. Fields are unexported so a
// snapshot cannot change after construction; accessors hand out copies.
type RepoCopy struct {
	repoName  string
	version   int
	docs      []document.Document
	createdAt time.Time
	createdBy string
}

// NewRepoCopy snapshots docs at the given version. docs is deep-copied.
func NewRepoCopy(repoName string, version int, docs []document.Document, createdBy string) RepoCopy {
	return RepoCopy{
		repoName:  repoName,
		version:   version,
		docs:      document.CloneAll(docs),
		createdAt: time.Now(),
		createdBy: createdBy,
	}
}

func (rc RepoCopy) RepoName() string     { return rc.repoName }
func (rc RepoCopy) Version() int         { return rc.version }
func (rc RepoCopy) CreatedAt() time.Time { return rc.createdAt }
func (rc RepoCopy) CreatedBy() string    { return rc.createdBy }
func (rc RepoCopy) DocumentCount() int   { return len(rc.docs) }

// Documents returns a copy of the snapshot's documents
func (rc RepoCopy) Documents() []document.Document {
	return document.CloneAll(rc.docs)
}

// Document looks up a document by name
func (rc RepoCopy) Document(name string) (document.Document, bool) {
	i := document.IndexOf(rc.docs, name)
	if i < 0 {
		return document.Document{}, false
	}
	return rc.docs[i].Clone(), true
}

// Summary describes the snapshot without its contents
func (rc RepoCopy) Summary() Summary {
	return Summary{
		RepoName:      rc.repoName,
		Version:       rc.version,
		DocumentNames: document.Names(rc.docs),
		CreatedAt:     rc.createdAt,
		CreatedBy:     rc.createdBy,
	}
}

func (rc RepoCopy) String() string {
	return rc.Summary().String()
}

// Summary is one line of a version history
type Summary struct {
	RepoName      string
	Version       int
	DocumentNames []string
	CreatedAt     time.Time
	CreatedBy     string // Empty for the genesis snapshot
}

func (s Summary) String() string {
	line := fmt.Sprintf("%s version %d: %d document(s)", s.RepoName, s.Version, len(s.DocumentNames))
	if len(s.DocumentNames) > 0 {
		line += " [" + strings.Join(s.DocumentNames, ", ") + "]"
	}
	if s.CreatedBy != "" {
		line += " approved by " + s.CreatedBy
	}
	return line
}

// History is the timeline of a repository, newest first
type History struct {
	RepoName string
	Versions []Summary
}

func (h History) String() string {
	var b strings.Builder
	for _, v := range h.Versions {
		b.WriteString(v.String())
		b.WriteString("\n")
	}
	return b.String()
}
