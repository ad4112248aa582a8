package reconcile_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanpelt/prbranch/internal/reconcile"
	"github.com/vanpelt/prbranch/internal/vcsdriver"
	"github.com/vanpelt/prbranch/internal/vcsdriver/executor"
)

// Every scenario starts from the same fixture: base ref "tests/master"
// holding one file tracked-file.txt = "INIT", target branch "tests/pr/patch".
const (
	testBase    = "tests/master"
	testBranch  = "tests/pr/patch"
	trackedFile = "tracked-file.txt"
)

// harness drives a reconcile.Reconciler against a real on-disk repository
// and a real bare "remote" through the shell git executor, the way
// branch_test.go exercises BranchOperations against a real repository
// instead of mocks.
type harness struct {
	remoteDir string
	workDir   string
	driver    vcsdriver.Driver
	cfg       vcsdriver.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tmp := t.TempDir()
	remoteDir := filepath.Join(tmp, "remote.git")
	workDir := filepath.Join(tmp, "work")
	require.NoError(t, os.MkdirAll(remoteDir, 0o755))
	require.NoError(t, os.MkdirAll(workDir, 0o755))

	runGit(t, remoteDir, "init", "--bare", "-q")

	runGit(t, workDir, "init", "-q")
	runGit(t, workDir, "config", "user.name", "prbranch-test")
	runGit(t, workDir, "config", "user.email", "prbranch-test@localhost")
	runGit(t, workDir, "checkout", "-q", "-b", testBase)
	writeFile(t, workDir, trackedFile, "INIT")
	runGit(t, workDir, "add", "-A")
	runGit(t, workDir, "commit", "-q", "-m", "INIT_COMMIT")
	runGit(t, workDir, "remote", "add", "origin", remoteDir)
	runGit(t, workDir, "push", "-q", "-u", "origin", testBase)

	cfg := vcsdriver.Config{
		AuthorName:     "prbranch-test",
		AuthorEmail:    "prbranch-test@localhost",
		CommitterName:  "prbranch-test",
		CommitterEmail: "prbranch-test@localhost",
		DefaultRemote:  "origin",
	}
	driver := vcsdriver.NewDriver(workDir, executor.NewShellExecutor(), cfg)

	return &harness{remoteDir: remoteDir, workDir: workDir, driver: driver, cfg: cfg}
}

func (h *harness) reconciler() *reconcile.Reconciler {
	return reconcile.NewReconciler(h.driver, h.cfg, "")
}

// createAndPush runs a reconcile that is expected to create testBranch with
// trackedFile set to content, then force-pushes it. Afterwards it resets the
// working base to its remote tip: the scenarios that build on this state
// model the NEXT workflow run, which starts from a fresh checkout of the
// base, not from a checkout still carrying the previous run's staging commit.
func (h *harness) createAndPush(t *testing.T, message, content string) {
	t.Helper()
	h.modifyTracked(t, content)
	outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
		CommitMessage: message,
		BranchName:    testBranch,
	})
	require.NoError(t, err)
	require.Equal(t, reconcile.ActionCreated, outcome.Action)
	h.pushBranch(t, testBranch)
	h.resetToRemote(t, testBase)
}

// resetToRemote rewinds branch to its remote-tracking tip and discards any
// uncommitted state, simulating a fresh checkout.
func (h *harness) resetToRemote(t *testing.T, branch string) {
	t.Helper()
	runGit(t, h.workDir, "checkout", "-q", branch)
	runGit(t, h.workDir, "reset", "-q", "--hard", "origin/"+branch)
	runGit(t, h.workDir, "clean", "-fdq")
}

func (h *harness) modifyTracked(t *testing.T, content string) {
	t.Helper()
	writeFile(t, h.workDir, trackedFile, content)
}

func (h *harness) checkout(t *testing.T, branch string) {
	t.Helper()
	runGit(t, h.workDir, "checkout", "-q", branch)
}

func (h *harness) checkoutNew(t *testing.T, branch, startPoint string) {
	t.Helper()
	runGit(t, h.workDir, "checkout", "-q", "-b", branch, startPoint)
}

func (h *harness) commitAll(t *testing.T, message string) {
	t.Helper()
	runGit(t, h.workDir, "add", "-A")
	runGit(t, h.workDir, "commit", "-q", "-m", message)
}

func (h *harness) pushBranch(t *testing.T, branch string) {
	t.Helper()
	runGit(t, h.workDir, "push", "-q", "--force", "origin", branch)
}

// branchLog returns ref's commit subjects, newest first.
func (h *harness) branchLog(t *testing.T, ref string) []string {
	t.Helper()
	out := strings.TrimSpace(runGit(t, h.workDir, "log", "--pretty=%s", ref))
	return strings.Split(out, "\n")
}

// showFile reads path as it exists at the tip of ref in the local repo.
func (h *harness) showFile(t *testing.T, ref, path string) string {
	t.Helper()
	return strings.TrimRight(runGit(t, h.workDir, "show", ref+":"+path), "\n")
}

func (h *harness) currentBranch(t *testing.T) string {
	t.Helper()
	branch, err := h.driver.CurrentBranch()
	require.NoError(t, err)
	return branch
}

func (h *harness) tempBranchExists(t *testing.T) bool {
	t.Helper()
	return h.driver.BranchExistsLocal(testBranch + "-temp-branch")
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "git %v failed: %s", args, out)
	return string(out)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
