package reconcile_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanpelt/prbranch/internal/reconcile"
)

// TestReconcileScenarios drives full create/update/none flows against a
// real repository and bare remote, one sub-test per scenario.
func TestReconcileScenarios(t *testing.T) {
	t.Run("clean_tree_no_pr_branch_yields_none", func(t *testing.T) {
		h := newHarness(t)

		outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m1",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionNone, outcome.Action)
		require.Equal(t, testBase, h.currentBranch(t))
		require.False(t, h.tempBranchExists(t))
	})

	t.Run("dirty_tree_no_pr_branch_yields_created", func(t *testing.T) {
		h := newHarness(t)
		h.modifyTracked(t, "X")

		outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m1",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionCreated, outcome.Action)
		require.True(t, outcome.HasDiffWithBase)
		require.Equal(t, "X", h.showFile(t, testBranch, trackedFile))
		require.Equal(t, []string{"m1", "INIT_COMMIT"}, h.branchLog(t, testBranch))
		require.Equal(t, testBase, h.currentBranch(t))
		require.False(t, h.tempBranchExists(t))
	})

	t.Run("pr_exists_new_change_yields_updated", func(t *testing.T) {
		h := newHarness(t)
		h.createAndPush(t, "m1", "X")

		h.modifyTracked(t, "Y")
		outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m2",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionUpdated, outcome.Action)
		require.True(t, outcome.HasDiffWithBase)
		require.Equal(t, "Y", h.showFile(t, testBranch, trackedFile))
	})

	t.Run("identical_recreate_yields_none", func(t *testing.T) {
		h := newHarness(t)
		h.createAndPush(t, "m1", "X")

		h.modifyTracked(t, "X")
		outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m3",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionNone, outcome.Action)
		require.Equal(t, "X", h.showFile(t, testBranch, trackedFile))
	})

	t.Run("clean_tree_after_push_reverts_branch_to_base", func(t *testing.T) {
		h := newHarness(t)
		h.createAndPush(t, "m1", "X")

		outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m4",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionUpdated, outcome.Action)
		require.False(t, outcome.HasDiffWithBase)
		require.Equal(t, "INIT", h.showFile(t, testBranch, trackedFile))
	})

	t.Run("base_moved_same_content_yields_updated_no_diff", func(t *testing.T) {
		h := newHarness(t)
		h.createAndPush(t, "m1", "X")

		// The base moves under the workflow: c1 and c2 land on it and are
		// pushed, but the working checkout stays at the old tip and the
		// workflow recreates the content those commits added. The staged
		// commit cherry-picks empty onto the new base.
		initTip := strings.TrimSpace(runGit(t, h.workDir, "rev-parse", "HEAD"))
		h.modifyTracked(t, "C1")
		h.commitAll(t, "c1")
		h.modifyTracked(t, "C2")
		h.commitAll(t, "c2")
		h.pushBranch(t, testBase)
		runGit(t, h.workDir, "reset", "-q", "--hard", initTip)

		h.modifyTracked(t, "C2")
		outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m5",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionUpdated, outcome.Action)
		require.False(t, outcome.HasDiffWithBase)
		require.Equal(t, "C2", h.showFile(t, testBranch, trackedFile))
	})

	t.Run("working_base_not_base_yields_created", func(t *testing.T) {
		h := newHarness(t)
		h.checkoutNew(t, "NOT_BASE_BRANCH", testBase)
		h.modifyTracked(t, "Z")

		outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m6",
			BaseName:      testBase,
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionCreated, outcome.Action)
		require.True(t, outcome.HasDiffWithBase)
		require.Equal(t, "Z", h.showFile(t, testBranch, trackedFile))
		require.Equal(t, "NOT_BASE_BRANCH", h.currentBranch(t))
		require.False(t, h.tempBranchExists(t))
	})
}

// TestReconcileInvariants asserts the properties that must hold regardless
// of which scenario produced the outcome.
func TestReconcileInvariants(t *testing.T) {
	t.Run("idempotent_on_unchanged_inputs", func(t *testing.T) {
		h := newHarness(t)
		h.modifyTracked(t, "X")

		first, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m1",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionCreated, first.Action)

		second, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m1",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionNone, second.Action)
	})

	t.Run("recreated_changes_after_push_yield_none", func(t *testing.T) {
		h := newHarness(t)
		h.createAndPush(t, "m1", "X")

		h.modifyTracked(t, "X")
		second, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m1-repeat",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionNone, second.Action)
	})

	t.Run("head_restored_to_working_base", func(t *testing.T) {
		h := newHarness(t)
		h.modifyTracked(t, "X")

		_, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m1",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, testBase, h.currentBranch(t))
	})

	t.Run("no_temp_branch_leak_on_none_outcome", func(t *testing.T) {
		h := newHarness(t)

		outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m1",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionNone, outcome.Action)
		require.False(t, h.tempBranchExists(t))
	})

	t.Run("workflow_commits_replayed_in_order", func(t *testing.T) {
		h := newHarness(t)
		h.checkoutNew(t, "workflow-branch", testBase)
		writeFile(t, h.workDir, "first.txt", "one")
		h.commitAll(t, "w1")
		writeFile(t, h.workDir, "second.txt", "two")
		h.commitAll(t, "w2")
		h.modifyTracked(t, "Z")

		outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m7",
			BaseName:      testBase,
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.Equal(t, reconcile.ActionCreated, outcome.Action)
		require.Equal(t, []string{"m7", "w2", "w1", "INIT_COMMIT"}, h.branchLog(t, testBranch))
		require.Equal(t, "one", h.showFile(t, testBranch, "first.txt"))
		require.Equal(t, "two", h.showFile(t, testBranch, "second.txt"))
		require.Equal(t, "Z", h.showFile(t, testBranch, trackedFile))
	})

	t.Run("diff_base_coherence_when_no_diff_with_base", func(t *testing.T) {
		h := newHarness(t)
		h.createAndPush(t, "m1", "X")

		outcome, err := h.reconciler().CreateOrUpdateBranch(reconcile.ReconcileRequest{
			CommitMessage: "m4",
			BranchName:    testBranch,
		})
		require.NoError(t, err)
		require.False(t, outcome.HasDiffWithBase)
		require.Equal(t, h.showFile(t, testBase, trackedFile), h.showFile(t, testBranch, trackedFile))
	})
}
