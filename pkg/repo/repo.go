// ABOUTME: Repository version-control engine
// ABOUTME: Owns live documents, the pending check-in queue and the snapshot stack

package repo

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nainya/docvcs/internal/logger"
	"github.com/nainya/docvcs/internal/metrics"
	"github.com/nainya/docvcs/pkg/changeset"
	"github.com/nainya/docvcs/pkg/container"
	"github.com/nainya/docvcs/pkg/document"
	"github.com/nainya/docvcs/pkg/result"
	"github.com/nainya/docvcs/pkg/version"
)

// ErrInvalidArgument is returned when a required input is absent
var ErrInvalidArgument = errors.New("repo: invalid argument")

// Principal identifies the user performing an operation. Identity is
// name equality; there is no further authentication.
type Principal interface {
	Name() string
}

// Option configures a Repo
type Option func(*Repo)

// WithLogger sets the logger used for repository events
func WithLogger(l *logger.Logger) Option {
	return func(r *Repo) {
		if l != nil {
			r.log = l.RepoLogger(r.name)
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repo) {
		r.metrics = m
	}
}

// Repo is a repository. All operations are serialized by one mutex, so
// queue order and version numbering hold under concurrent callers.
type Repo struct {
	mu sync.RWMutex

	name     string
	admin    string
	docs     []document.Document
	checkIns container.Queue[*changeset.ChangeSet]
	versions *version.Store
	version  int

	log     *logger.Logger
	metrics *metrics.Metrics
}

// New creates a repository at version 0 with an empty genesis snapshot
func New(admin Principal, name string, opts ...Option) (*Repo, error) {
	if admin == nil || admin.Name() == "" {
		return nil, fmt.Errorf("%w: admin is required", ErrInvalidArgument)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: repo name is required", ErrInvalidArgument)
	}

	r := &Repo{
		name:     name,
		admin:    admin.Name(),
		versions: version.NewStore(name),
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.metrics.SetRepoVersion(name, 0)
	return r, nil
}

// Name returns the repository name
func (r *Repo) Name() string {
	return r.name
}

// Admin returns the administrator's name
func (r *Repo) Admin() string {
	return r.admin
}

// IsAdmin reports whether p administers this repository
func (r *Repo) IsAdmin(p Principal) bool {
	return p != nil && p.Name() == r.admin
}

// Version returns the current version
func (r *Repo) Version() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// VersionCount returns the depth of the snapshot stack (Version()+1)
func (r *Repo) VersionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.versions.Depth()
}

// CheckInCount returns the number of check-ins awaiting review
func (r *Repo) CheckInCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checkIns.Len()
}

// Documents returns a copy of the live documents
func (r *Repo) Documents() []document.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return document.CloneAll(r.docs)
}

// Document looks up a live document by name
func (r *Repo) Document(name string) (document.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := document.IndexOf(r.docs, name)
	if i < 0 {
		return document.Document{}, false
	}
	return r.docs[i].Clone(), true
}

// Snapshot returns the snapshot of the current version
func (r *Repo) Snapshot() version.RepoCopy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.versions.GetLatestVersion()
}

// VersionHistory returns every version, newest first
func (r *Repo) VersionHistory() version.History {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.versions.GetVersionHistory()
}

// QueueCheckIn appends a check-in to the review queue
func (r *Repo) QueueCheckIn(cs *changeset.ChangeSet) error {
	if cs == nil {
		return fmt.Errorf("%w: check-in is required", ErrInvalidArgument)
	}
	if cs.RepoName != r.name {
		return fmt.Errorf("%w: check-in targets %q, not %q", ErrInvalidArgument, cs.RepoName, r.name)
	}

	r.mu.Lock()
	r.checkIns.Enqueue(cs)
	pending := r.checkIns.Len()
	r.metrics.RecordCheckInQueued(r.name, pending)
	r.mu.Unlock()

	r.log.LogCheckInQueued(cs.ID.String(), cs.Author, cs.ChangeCount(), pending)
	return nil
}

// NextCheckIn removes and returns the oldest queued check-in. Only the
// admin may take check-ins; a taken check-in is never re-queued.
func (r *Repo) NextCheckIn(requester Principal) (*changeset.ChangeSet, result.Code, error) {
	if requester == nil {
		return nil, result.InternalError, fmt.Errorf("%w: requesting user is required", ErrInvalidArgument)
	}
	if !r.IsAdmin(requester) {
		return nil, result.AccessDenied, nil
	}

	r.mu.Lock()
	cs, ok := r.checkIns.Dequeue()
	pending := r.checkIns.Len()
	if ok {
		r.metrics.RecordDequeue(r.name, pending)
	}
	r.mu.Unlock()

	if !ok {
		return nil, result.NoPendingCheckIns, nil
	}

	r.log.Debug("Check-in taken for review").
		Str("checkin", cs.ID.String()).
		Int("pending", pending).
		Send()
	return cs, result.Success, nil
}

// ApproveCheckIn applies every change of cs in order and records a new
// version. The batch is all-or-nothing: an ADD of an existing name or an
// EDIT/DELETE of a missing name rejects the whole check-in, leaving the
// repository and cs untouched. Changes are consumed exactly once, so a
// check-in with nothing left to apply (already approved, or empty) yields
// NO_PENDING_CHECKINS and no new version.
func (r *Repo) ApproveCheckIn(requester Principal, cs *changeset.ChangeSet) (result.Code, error) {
	if requester == nil || cs == nil {
		return result.InternalError, fmt.Errorf("%w: requesting user and check-in are required", ErrInvalidArgument)
	}
	if cs.RepoName != r.name {
		return result.InternalError, fmt.Errorf("%w: check-in targets %q, not %q", ErrInvalidArgument, cs.RepoName, r.name)
	}

	start := time.Now()
	code, ver := r.approve(requester, cs)
	duration := time.Since(start)

	r.log.LogApproval(cs.ID.String(), requester.Name(), code.String(), ver, duration)
	r.metrics.RecordApproval(r.name, code.String(), duration)
	return code, nil
}

func (r *Repo) approve(requester Principal, cs *changeset.ChangeSet) (result.Code, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.IsAdmin(requester) {
		return result.AccessDenied, r.version
	}
	if cs.ChangeCount() == 0 {
		return result.NoPendingCheckIns, r.version
	}

	docs, code := applyChanges(r.docs, cs.Changes())
	if !code.OK() {
		return code, r.version
	}

	for c, ok := cs.NextChange(); ok; c, ok = cs.NextChange() {
		r.metrics.RecordChangeApplied(r.name, c.Type().String())
	}

	r.docs = docs
	r.version++
	r.versions.CreateVersion(r.docs, requester.Name())
	r.metrics.SetRepoVersion(r.name, r.version)
	return result.Success, r.version
}

// applyChanges replays changes onto a copy of docs
func applyChanges(docs []document.Document, changes []changeset.Change) ([]document.Document, result.Code) {
	out := document.CloneAll(docs)

	for _, c := range changes {
		doc := c.Doc()
		i := document.IndexOf(out, doc.Name)

		switch c.Type() {
		case changeset.Add:
			if i >= 0 {
				return nil, result.DocNameAlreadyExists
			}
			out = append(out, doc)
		case changeset.Edit:
			if i < 0 {
				return nil, result.DocNotFound
			}
			out[i].Content = doc.Content
		case changeset.Delete:
			if i < 0 {
				return nil, result.DocNotFound
			}
			out = append(out[:i], out[i+1:]...)
		default:
			return nil, result.InternalError
		}
	}

	return out, result.Success
}

// Revert drops the current version and restores the previous one.
// There is no redo; the dropped snapshot is discarded.
func (r *Repo) Revert(requester Principal) (result.Code, error) {
	if requester == nil {
		return result.InternalError, fmt.Errorf("%w: requesting user is required", ErrInvalidArgument)
	}

	code, ver := r.revert(requester)

	r.log.LogRevert(requester.Name(), code.String(), ver)
	r.metrics.RecordRevert(r.name, code.String())
	return code, nil
}

func (r *Repo) revert(requester Principal) (result.Code, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.IsAdmin(requester) {
		return result.AccessDenied, r.version
	}
	if r.version == 0 {
		return result.NoOlderVersion, r.version
	}

	top, ok := r.versions.Rollback()
	if !ok {
		return result.InternalError, r.version
	}

	r.docs = top.Documents()
	r.version--
	r.metrics.SetRepoVersion(r.name, r.version)
	return result.Success, r.version
}
