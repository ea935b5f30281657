// ABOUTME: Tests for users, working copies and pending check-ins
// ABOUTME: Verifies checkout isolation, batching and access rules

package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nainya/docvcs/pkg/changeset"
	"github.com/nainya/docvcs/pkg/document"
	"github.com/nainya/docvcs/pkg/repo"
	"github.com/nainya/docvcs/pkg/result"
)

type repoMap map[string]*repo.Repo

func (m repoMap) FindRepo(name string) (*repo.Repo, bool) {
	r, ok := m[name]
	return r, ok
}

func setupTestUsers(t *testing.T) (*User, *User, *repo.Repo) {
	t.Helper()
	repos := repoMap{}

	alice, err := New("alice", repos)
	require.NoError(t, err)
	bob, err := New("bob", repos)
	require.NoError(t, err)

	r, err := repo.New(alice, "proj")
	require.NoError(t, err)
	repos["proj"] = r
	require.NoError(t, alice.SubscribeRepo("proj"))

	return alice, bob, r
}

// reviewNext approves the oldest queued check-in as the admin
func reviewNext(t *testing.T, admin *User, r *repo.Repo) {
	t.Helper()
	cs, code, err := r.NextCheckIn(admin)
	require.NoError(t, err)
	require.Equal(t, result.Success, code)
	code, err = r.ApproveCheckIn(admin, cs)
	require.NoError(t, err)
	require.Equal(t, result.Success, code)
}

func TestNewUserValidation(t *testing.T) {
	_, err := New("", repoMap{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New("carol", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCheckOutRequiresKnownSubscribedRepo(t *testing.T) {
	alice, bob, _ := setupTestUsers(t)

	assert.Equal(t, result.RepoNotFound, alice.CheckOut("nope"))
	assert.Equal(t, result.AccessDenied, bob.CheckOut("proj"))

	require.NoError(t, bob.SubscribeRepo("proj"))
	assert.Equal(t, result.Success, bob.CheckOut("proj"))

	wc, ok := bob.WorkingCopy("proj")
	require.True(t, ok)
	assert.Equal(t, 0, wc.BaseVersion())
	assert.Empty(t, wc.Documents())
}

func TestScenarioThroughUser(t *testing.T) {
	alice, _, r := setupTestUsers(t)
	require.Equal(t, result.Success, alice.CheckOut("proj"))

	require.Equal(t, result.Success, alice.AddDoc("proj", "a.txt", "v1"))
	require.Equal(t, 1, alice.PendingChangeCount("proj"))
	require.Equal(t, result.Success, alice.CheckIn("proj"))
	assert.Equal(t, 0, alice.PendingChangeCount("proj"))
	reviewNext(t, alice, r)
	assert.Equal(t, 1, r.Version())

	require.Equal(t, result.Success, alice.EditDoc("proj", "a.txt", "v2"))
	require.Equal(t, result.Success, alice.CheckIn("proj"))
	reviewNext(t, alice, r)
	assert.Equal(t, 2, r.Version())

	doc, ok := r.Document("a.txt")
	require.True(t, ok)
	assert.Equal(t, "v2", doc.Content)
}

func TestWorkingCopyDoesNotTouchHistory(t *testing.T) {
	alice, _, r := setupTestUsers(t)
	require.Equal(t, result.Success, alice.CheckOut("proj"))
	require.Equal(t, result.Success, alice.AddDoc("proj", "readme", "hello"))
	require.Equal(t, result.Success, alice.CheckIn("proj"))
	reviewNext(t, alice, r)

	require.Equal(t, result.Success, alice.CheckOut("proj"))
	require.Equal(t, result.Success, alice.EditDoc("proj", "readme", "draft"))

	snap := r.Snapshot()
	doc, _ := snap.Document("readme")
	assert.Equal(t, "hello", doc.Content)
	live, _ := r.Document("readme")
	assert.Equal(t, "hello", live.Content)

	viewed, code := alice.ViewDoc("proj", "readme")
	require.Equal(t, result.Success, code)
	assert.Equal(t, "draft", viewed.Content)

	// The returned working copy is a copy as well
	wc, _ := alice.WorkingCopy("proj")
	wc.EditDoc("readme", "outside")
	viewed, _ = alice.ViewDoc("proj", "readme")
	assert.Equal(t, "draft", viewed.Content)
}

func TestCheckOutRefreshesAndOpenKeeps(t *testing.T) {
	alice, bob, r := setupTestUsers(t)
	require.NoError(t, bob.SubscribeRepo("proj"))

	require.Equal(t, result.Success, bob.Open("proj"))
	require.Equal(t, result.Success, bob.AddDoc("proj", "draft.txt", "wip"))

	// Alice moves the repo forward meanwhile
	require.Equal(t, result.Success, alice.Open("proj"))
	require.Equal(t, result.Success, alice.AddDoc("proj", "a.txt", "v1"))
	require.Equal(t, result.Success, alice.CheckIn("proj"))
	reviewNext(t, alice, r)

	require.Equal(t, result.Success, bob.Open("proj"))
	wc, _ := bob.WorkingCopy("proj")
	assert.Equal(t, []string{"draft.txt"}, document.Names(wc.Documents()))
	assert.Equal(t, 1, bob.PendingChangeCount("proj"))

	require.Equal(t, result.Success, bob.CheckOut("proj"))
	wc, _ = bob.WorkingCopy("proj")
	assert.Equal(t, []string{"a.txt"}, document.Names(wc.Documents()))
	assert.Equal(t, 1, wc.BaseVersion())
	assert.Equal(t, 0, bob.PendingChangeCount("proj"))
}

func TestWorkingCopyEditCodes(t *testing.T) {
	alice, _, _ := setupTestUsers(t)

	assert.Equal(t, result.RepoNotFound, alice.AddDoc("proj", "a", "1"), "no working copy yet")
	require.Equal(t, result.Success, alice.Open("proj"))

	assert.Equal(t, result.Success, alice.AddDoc("proj", "a", "1"))
	assert.Equal(t, result.DocNameAlreadyExists, alice.AddDoc("proj", "a", "2"))
	assert.Equal(t, result.DocNotFound, alice.EditDoc("proj", "b", "2"))
	assert.Equal(t, result.DocNotFound, alice.DeleteDoc("proj", "b"))
	assert.Equal(t, result.DocNotFound, alice.AddDoc("proj", "", "x"))
	assert.Equal(t, result.Success, alice.DeleteDoc("proj", "a"))

	_, code := alice.ViewDoc("proj", "a")
	assert.Equal(t, result.DocNotFound, code)
	assert.Equal(t, 2, alice.PendingChangeCount("proj"))
}

func TestCheckInCodes(t *testing.T) {
	alice, bob, r := setupTestUsers(t)

	assert.Equal(t, result.RepoNotFound, alice.CheckIn("nope"))
	assert.Equal(t, result.AccessDenied, bob.CheckIn("proj"))
	assert.Equal(t, result.NoPendingCheckIns, alice.CheckIn("proj"))

	require.NoError(t, alice.AddToPendingCheckIn(document.New("x", "1"), changeset.Add, "proj"))
	require.NoError(t, alice.AddToPendingCheckIn(document.New("x", "2"), changeset.Edit, "proj"))
	assert.ErrorIs(t, alice.AddToPendingCheckIn(document.Document{}, changeset.Add, "proj"), changeset.ErrInvalidArgument)

	require.Equal(t, result.Success, alice.CheckIn("proj"))
	assert.Equal(t, 1, r.CheckInCount())

	cs, _, err := r.NextCheckIn(alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", cs.Author)
	assert.Equal(t, 2, cs.ChangeCount())
}

func TestSubscriptions(t *testing.T) {
	alice, _, _ := setupTestUsers(t)

	require.NoError(t, alice.SubscribeRepo("zeta"))
	require.NoError(t, alice.SubscribeRepo("alpha"))
	require.NoError(t, alice.SubscribeRepo("proj"))
	assert.ErrorIs(t, alice.SubscribeRepo(""), ErrInvalidArgument)

	assert.Equal(t, []string{"alpha", "proj", "zeta"}, alice.Subscriptions())
	assert.Equal(t, "alpha\nproj\nzeta\n", alice.String())

	require.Equal(t, result.Success, alice.Open("proj"))
	alice.ForgetRepo("proj")
	assert.False(t, alice.IsSubscribed("proj"))
	_, ok := alice.WorkingCopy("proj")
	assert.False(t, ok)
}
