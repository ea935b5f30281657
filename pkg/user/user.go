// ABOUTME: User: identity, subscriptions, working copies and pending check-ins
// ABOUTME: Local edits accumulate per repository until checked in as one ChangeSet

package user

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/nainya/docvcs/pkg/changeset"
	"github.com/nainya/docvcs/pkg/document"
	"github.com/nainya/docvcs/pkg/repo"
	"github.com/nainya/docvcs/pkg/result"
)

// ErrInvalidArgument is returned when a required input is absent
var ErrInvalidArgument = errors.New("user: invalid argument")

// RepoFinder resolves repository names
type RepoFinder interface {
	FindRepo(name string) (*repo.Repo, bool)
}

// User is a registered participant. Methods are safe for concurrent use.
type User struct {
	mu sync.Mutex

	name          string
	repos         RepoFinder
	subscriptions mapset.Set[string]
	workingCopies map[string]*WorkingCopy
	pending       map[string]*changeset.ChangeSet
}

// New creates a user that resolves repositories through repos
func New(name string, repos RepoFinder) (*User, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: user name is required", ErrInvalidArgument)
	}
	if repos == nil {
		return nil, fmt.Errorf("%w: repo finder is required", ErrInvalidArgument)
	}

	return &User{
		name:          name,
		repos:         repos,
		subscriptions: mapset.NewSet[string](),
		workingCopies: make(map[string]*WorkingCopy),
		pending:       make(map[string]*changeset.ChangeSet),
	}, nil
}

// Name returns the user's unique name
func (u *User) Name() string {
	return u.name
}

// SubscribeRepo grants the user access to repoName
func (u *User) SubscribeRepo(repoName string) error {
	if repoName == "" {
		return fmt.Errorf("%w: repo name is required", ErrInvalidArgument)
	}
	u.subscriptions.Add(repoName)
	return nil
}

// IsSubscribed reports whether the user may work on repoName
func (u *User) IsSubscribed(repoName string) bool {
	return u.subscriptions.Contains(repoName)
}

// Subscriptions lists subscribed repositories in name order
func (u *User) Subscriptions() []string {
	names := u.subscriptions.ToSlice()
	sort.Strings(names)
	return names
}

// ForgetRepo drops every trace of a deleted repository
func (u *User) ForgetRepo(repoName string) {
	u.subscriptions.Remove(repoName)

	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.workingCopies, repoName)
	delete(u.pending, repoName)
}

// CheckOut replaces the working copy of repoName with the repository's
// current version and discards any edits not yet checked in.
func (u *User) CheckOut(repoName string) result.Code {
	r, code := u.accessibleRepo(repoName)
	if !code.OK() {
		return code
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.workingCopies[repoName] = newWorkingCopy(r.Snapshot())
	delete(u.pending, repoName)
	return result.Success
}

// Open checks repoName out unless a working copy already exists, in
// which case the existing draft and its pending edits are kept.
func (u *User) Open(repoName string) result.Code {
	r, code := u.accessibleRepo(repoName)
	if !code.OK() {
		return code
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.workingCopies[repoName]; !ok {
		u.workingCopies[repoName] = newWorkingCopy(r.Snapshot())
	}
	return result.Success
}

// WorkingCopy returns a copy of the user's draft of repoName
func (u *User) WorkingCopy(repoName string) (*WorkingCopy, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	wc, ok := u.workingCopies[repoName]
	if !ok {
		return nil, false
	}
	return wc.clone(), true
}

// AddToPendingCheckIn records a change in the pending batch for repoName,
// creating the batch on first use.
func (u *User) AddToPendingCheckIn(doc document.Document, typ changeset.Type, repoName string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.addPending(doc, typ, repoName)
}

func (u *User) addPending(doc document.Document, typ changeset.Type, repoName string) error {
	cs, ok := u.pending[repoName]
	if !ok {
		var err error
		if cs, err = changeset.New(repoName, u.name); err != nil {
			return err
		}
	}

	if err := cs.AddChange(doc, typ); err != nil {
		return err
	}
	u.pending[repoName] = cs
	return nil
}

// PendingChangeCount returns the number of changes not yet checked in
func (u *User) PendingChangeCount(repoName string) int {
	u.mu.Lock()
	defer u.mu.Unlock()

	if cs, ok := u.pending[repoName]; ok {
		return cs.ChangeCount()
	}
	return 0
}

// CheckIn hands the pending batch for repoName to the repository's
// review queue and starts a fresh batch.
func (u *User) CheckIn(repoName string) result.Code {
	r, code := u.accessibleRepo(repoName)
	if !code.OK() {
		return code
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	cs, ok := u.pending[repoName]
	if !ok || cs.ChangeCount() == 0 {
		return result.NoPendingCheckIns
	}
	if err := r.QueueCheckIn(cs); err != nil {
		return result.InternalError
	}
	delete(u.pending, repoName)
	return result.Success
}

// AddDoc adds a document to the working copy and records an ADD
func (u *User) AddDoc(repoName, docName, content string) result.Code {
	return u.edit(repoName, docName, func(wc *WorkingCopy) (document.Document, changeset.Type, result.Code) {
		doc := document.New(docName, content)
		if !wc.AddDoc(doc) {
			return doc, 0, result.DocNameAlreadyExists
		}
		return doc, changeset.Add, result.Success
	})
}

// EditDoc replaces a document's content in the working copy and records an EDIT
func (u *User) EditDoc(repoName, docName, content string) result.Code {
	return u.edit(repoName, docName, func(wc *WorkingCopy) (document.Document, changeset.Type, result.Code) {
		doc := document.New(docName, content)
		if !wc.EditDoc(docName, content) {
			return doc, 0, result.DocNotFound
		}
		return doc, changeset.Edit, result.Success
	})
}

// DeleteDoc removes a document from the working copy and records a DELETE
func (u *User) DeleteDoc(repoName, docName string) result.Code {
	return u.edit(repoName, docName, func(wc *WorkingCopy) (document.Document, changeset.Type, result.Code) {
		doc, ok := wc.GetDoc(docName)
		if !ok || !wc.DelDoc(docName) {
			return doc, 0, result.DocNotFound
		}
		return doc, changeset.Delete, result.Success
	})
}

// ViewDoc returns a document from the working copy
func (u *User) ViewDoc(repoName, docName string) (document.Document, result.Code) {
	u.mu.Lock()
	defer u.mu.Unlock()

	wc, ok := u.workingCopies[repoName]
	if !ok {
		return document.Document{}, result.RepoNotFound
	}
	doc, ok := wc.GetDoc(docName)
	if !ok {
		return document.Document{}, result.DocNotFound
	}
	return doc, result.Success
}

// edit runs fn against the working copy and records the resulting change
func (u *User) edit(repoName, docName string, fn func(*WorkingCopy) (document.Document, changeset.Type, result.Code)) result.Code {
	if docName == "" {
		return result.DocNotFound
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	wc, ok := u.workingCopies[repoName]
	if !ok {
		return result.RepoNotFound
	}

	doc, typ, code := fn(wc)
	if !code.OK() {
		return code
	}
	if err := u.addPending(doc, typ, repoName); err != nil {
		return result.InternalError
	}
	return result.Success
}

// accessibleRepo resolves repoName for this user
func (u *User) accessibleRepo(repoName string) (*repo.Repo, result.Code) {
	r, ok := u.repos.FindRepo(repoName)
	if !ok {
		return nil, result.RepoNotFound
	}
	if !u.IsSubscribed(repoName) {
		return nil, result.AccessDenied
	}
	return r, result.Success
}

func (u *User) String() string {
	var b strings.Builder
	for _, name := range u.Subscriptions() {
		b.WriteString(name)
		b.WriteString("\n")
	}
	return b.String()
}
