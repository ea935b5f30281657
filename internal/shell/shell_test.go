package shell

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nainya/docvcs/internal/logger"
	"github.com/nainya/docvcs/internal/metrics"
	"github.com/nainya/docvcs/pkg/registry"
)

// script joins input lines the way a user would type them
func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func runShell(t *testing.T, reg *registry.Registry, input string, opts Options) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, New(reg, strings.NewReader(input), &out, opts).Run())
	return out.String()
}

func TestCheckInReviewScenario(t *testing.T) {
	reg := registry.New(nil, nil)
	out := runShell(t, reg, script(
		"au alice",
		"au bob",
		"li alice",
		"ar proj",
		"or proj",
		"su bob",
		"ad a.txt",
		"hello",
		"q",
		"ci",
		"rc",
		"y",
		"vh",
		"vd a.txt",
		"qu",
		"lo",
		"qu",
	), Options{})

	assert.Contains(t, out, "[anon@root]: ")
	assert.Contains(t, out, "[alice@root]: ")
	assert.Contains(t, out, "[alice@proj]: ")
	assert.Contains(t, out, contentPrompt)
	assert.Contains(t, out, "ADD a.txt\n")
	assert.Contains(t, out, approvePrompt)
	assert.Contains(t, out, "proj version 1: 1 document(s) [a.txt] approved by alice\nproj version 0: 0 document(s)\n")
	assert.Contains(t, out, "a.txt\nhello\n")
	assert.True(t, strings.HasSuffix(out, "Quitting the simulation.\n"))
	assert.NotContains(t, out, "UNKNOWN_COMMAND")

	rp, ok := reg.FindRepo("proj")
	require.True(t, ok)
	assert.Equal(t, 1, rp.Version())
	doc, ok := rp.Document("a.txt")
	require.True(t, ok)
	assert.Equal(t, "hello\n", doc.Content)
}

func TestReviewRequiresAdmin(t *testing.T) {
	reg := registry.New(nil, nil)
	out := runShell(t, reg, script(
		"au alice",
		"au bob",
		"li alice",
		"ar proj",
		"or proj",
		"su bob",
		"qu",
		"lo",
		"li bob",
		"or proj",
		"rc",
		"re",
		"qu",
		"lo",
	), Options{})

	assert.Equal(t, 2, strings.Count(out, "ACCESS_DENIED"))
	assert.Contains(t, out, "[bob@proj]: ")
	assert.NotContains(t, out, approvePrompt)
}

func TestReviewEmptyQueueAndRevertBoundary(t *testing.T) {
	reg := registry.New(nil, nil)
	out := runShell(t, reg, script(
		"au alice",
		"li alice",
		"ar proj",
		"or proj",
		"rc",
		"re",
		"ci",
	), Options{})

	assert.Contains(t, out, "NO_PENDING_CHECKINS\n[alice@proj]: NO_OLDER_VERSION\n[alice@proj]: NO_PENDING_CHECKINS\n")
}

func TestDeclinedReviewLeavesRepoUnchanged(t *testing.T) {
	reg := registry.New(nil, nil)
	runShell(t, reg, script(
		"au alice",
		"li alice",
		"ar proj",
		"or proj",
		"ad a.txt",
		"draft",
		"q",
		"ci",
		"rc",
		"n",
	), Options{})

	rp, ok := reg.FindRepo("proj")
	require.True(t, ok)
	assert.Equal(t, 0, rp.Version())
	assert.Equal(t, 0, rp.CheckInCount())
}

func TestRevertAfterApproval(t *testing.T) {
	reg := registry.New(nil, nil)
	out := runShell(t, reg, script(
		"au alice",
		"li alice",
		"ar proj",
		"or proj",
		"ad a.txt",
		"one",
		"q",
		"ci",
		"rc",
		"y",
		"re",
		"re",
	), Options{})

	assert.Contains(t, out, "[alice@proj]: SUCCESS\n[alice@proj]: NO_OLDER_VERSION\n")

	rp, ok := reg.FindRepo("proj")
	require.True(t, ok)
	assert.Equal(t, 0, rp.Version())
	assert.Empty(t, rp.Documents())
}

func TestDocumentCommands(t *testing.T) {
	reg := registry.New(nil, nil)
	out := runShell(t, reg, script(
		"au alice",
		"li alice",
		"ar proj",
		"or proj",
		"ed missing.txt",
		"dd missing.txt",
		"vd missing.txt",
		"ad a.txt",
		"first",
		"q",
		"ad a.txt",
		"ed a.txt",
		"second",
		"line",
		"q",
		"ld",
		"vd a.txt",
	), Options{})

	assert.Equal(t, 3, strings.Count(out, "DOC_NOT_FOUND"))
	assert.Contains(t, out, "DOCNAME_ALREADY_EXISTS")
	assert.Contains(t, out, "a.txt\nsecond\nline\n")

	u, ok := reg.FindUser("alice")
	require.True(t, ok)
	assert.Equal(t, 2, u.PendingChangeCount("proj"))
}

func TestUnknownCommandsAndArity(t *testing.T) {
	reg := registry.New(nil, nil)
	out := runShell(t, reg, script(
		"xx",
		"au",
		"li alice bob",
		"he extra",
		"li nobody",
		"au alice",
		"au alice",
		"du nobody",
	), Options{})

	// "li alice bob" splits into "li" and "alice bob", a user that does not exist
	assert.Equal(t, 3, strings.Count(out, "UNKNOWN_COMMAND"))
	assert.Equal(t, 3, strings.Count(out, "USER_NOT_FOUND"))
	assert.Contains(t, out, "USERNAME_ALREADY_EXISTS")
	assert.Equal(t, 1, strings.Count(out, "USER_NOT_FOUND\n[anon@root]: SUCCESS"))
}

func TestHelpMenus(t *testing.T) {
	reg := registry.New(nil, nil)
	out := runShell(t, reg, script(
		"he",
		"au alice",
		"li alice",
		"he",
		"ar proj",
		"or proj",
		"he",
	), Options{})

	assert.Contains(t, out, "[anon@root]: "+mainMenuHelp+"[anon@root]: SUCCESS\n")
	assert.Contains(t, out, userMenuHelp)
	assert.Contains(t, out, repoMenuHelp)
}

func TestRepoManagement(t *testing.T) {
	reg := registry.New(nil, nil)
	out := runShell(t, reg, script(
		"au alice",
		"au bob",
		"li bob",
		"ar other",
		"lo",
		"li alice",
		"ar proj",
		"ar proj",
		"lr",
		"or other",
		"or nothing",
		"dr other",
		"dr proj",
		"dr proj",
	), Options{})

	assert.Contains(t, out, "REPONAME_ALREADY_EXISTS")
	assert.Contains(t, out, "[alice@root]: proj\n\n")
	assert.Contains(t, out, "[alice@root]: ACCESS_DENIED\n[alice@root]: REPO_NOT_FOUND\n[alice@root]: ACCESS_DENIED\n[alice@root]: SUCCESS\n[alice@root]: REPO_NOT_FOUND\n")
	assert.Equal(t, []string{"other"}, reg.Repos())
}

func TestEndOfInputQuits(t *testing.T) {
	reg := registry.New(nil, nil)
	out := runShell(t, reg, script("au alice", "li alice", "ar proj", "or proj", "ad a.txt", "no terminator"), Options{})

	assert.True(t, strings.HasSuffix(out, "Quitting the simulation.\n"))
}

func TestCommandMetricsAndDebugDump(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewLogger(logger.Config{Level: "debug", Output: &logs})
	m := metrics.NewMetrics(prometheus.NewRegistry())
	reg := registry.New(log, m)

	runShell(t, reg, script(
		"au alice",
		"li alice",
		"ar proj",
		"or proj",
		"ad a.txt",
		"x",
		"q",
		"ci",
		"rc",
		"y",
	), Options{Logger: log, Metrics: m, Debug: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("main", "au")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("repo", "rc")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ApprovalsTotal.WithLabelValues("proj", "SUCCESS")))
	assert.Contains(t, logs.String(), "Reviewing check-in")
	assert.Contains(t, logs.String(), "a.txt")
}

func TestLongContentLine(t *testing.T) {
	reg := registry.New(nil, nil)
	long := strings.Repeat("x", 70000)
	out := runShell(t, reg, script(
		"au alice",
		"li alice",
		"ar proj",
		"or proj",
		"ad big.txt",
		long,
		"q",
		"ci",
		"qu",
		"lo",
		"qu",
	), Options{})

	assert.NotContains(t, out, "INTERNAL_ERROR")
	rp, ok := reg.FindRepo("proj")
	require.True(t, ok)
	assert.Equal(t, 1, rp.CheckInCount())

	u, ok := reg.FindUser("alice")
	require.True(t, ok)
	doc, code := u.ViewDoc("proj", "big.txt")
	require.True(t, code.OK())
	assert.Equal(t, long+"\n", doc.Content)
}

func TestCRLFInput(t *testing.T) {
	reg := registry.New(nil, nil)
	runShell(t, reg, "au alice\r\nli alice\r\nar proj\r\n", Options{})

	_, ok := reg.FindRepo("proj")
	assert.True(t, ok)
}

func TestInputFailureDuringContent(t *testing.T) {
	reg := registry.New(nil, nil)
	in := io.MultiReader(
		strings.NewReader(script("au alice", "li alice", "ar proj", "or proj", "ad a.txt", "partial")),
		iotest.ErrReader(errors.New("terminal closed")),
	)

	var out bytes.Buffer
	err := New(reg, in, &out, Options{}).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal closed")
	assert.Contains(t, out.String(), contentPrompt+"\nINTERNAL_ERROR\n")

	u, ok := reg.FindUser("alice")
	require.True(t, ok)
	assert.Equal(t, 0, u.PendingChangeCount("proj"))
	assert.True(t, strings.HasSuffix(out.String(), "Quitting the simulation.\n"))
}

func TestInputFailureAtPrompt(t *testing.T) {
	reg := registry.New(nil, nil)
	in := io.MultiReader(strings.NewReader(script("au alice")), iotest.ErrReader(errors.New("terminal closed")))

	var out bytes.Buffer
	err := New(reg, in, &out, Options{}).Run()
	require.Error(t, err)
	assert.Contains(t, out.String(), "[anon@root]: INTERNAL_ERROR\n")
}
