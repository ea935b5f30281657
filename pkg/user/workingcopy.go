// ABOUTME: Working copy: a user's private, editable draft of a repository
// ABOUTME: Built from a snapshot by value so edits never reach history

package user

import (
	"github.com/nainya/docvcs/pkg/document"
	"github.com/nainya/docvcs/pkg/version"
)

// WorkingCopy is a mutable draft of a repository's documents
type WorkingCopy struct {
	repoName    string
	baseVersion int
	docs        []document.Document
}

func newWorkingCopy(rc version.RepoCopy) *WorkingCopy {
	return &WorkingCopy{
		repoName:    rc.RepoName(),
		baseVersion: rc.Version(),
		docs:        rc.Documents(),
	}
}

// RepoName returns the repository the draft was checked out from
func (wc *WorkingCopy) RepoName() string { return wc.repoName }

// BaseVersion returns the version the draft was checked out at
func (wc *WorkingCopy) BaseVersion() int { return wc.baseVersion }

// Documents returns a copy of the draft's documents
func (wc *WorkingCopy) Documents() []document.Document {
	return document.CloneAll(wc.docs)
}

// GetDoc looks up a document by name
func (wc *WorkingCopy) GetDoc(name string) (document.Document, bool) {
	i := document.IndexOf(wc.docs, name)
	if i < 0 {
		return document.Document{}, false
	}
	return wc.docs[i].Clone(), true
}

// AddDoc appends doc; false if the name is taken
func (wc *WorkingCopy) AddDoc(doc document.Document) bool {
	if document.IndexOf(wc.docs, doc.Name) >= 0 {
		return false
	}
	wc.docs = append(wc.docs, doc.Clone())
	return true
}

// EditDoc replaces a document's content; false if it does not exist
func (wc *WorkingCopy) EditDoc(name, content string) bool {
	i := document.IndexOf(wc.docs, name)
	if i < 0 {
		return false
	}
	wc.docs[i].Content = content
	return true
}

// DelDoc removes a document; false if it does not exist
func (wc *WorkingCopy) DelDoc(name string) bool {
	i := document.IndexOf(wc.docs, name)
	if i < 0 {
		return false
	}
	wc.docs = append(wc.docs[:i], wc.docs[i+1:]...)
	return true
}

func (wc *WorkingCopy) clone() *WorkingCopy {
	return &WorkingCopy{
		repoName:    wc.repoName,
		baseVersion: wc.baseVersion,
		docs:        document.CloneAll(wc.docs),
	}
}

func (wc *WorkingCopy) String() string {
	return document.Listing(wc.docs)
}
