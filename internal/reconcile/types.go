// Package reconcile implements the branch reconciliation engine: given a
// checkout that may carry uncommitted changes and/or local commits made
// during an automated workflow, it materializes those changes as a
// single-commit (or multi-commit) delta on top of a named base branch and
// either creates the target branch fresh or updates it in place.
package reconcile

import "fmt"

// Action discriminates what CreateOrUpdateBranch did to branchName.
type Action string

const (
	// ActionNone means no local branch was created or modified in a way
	// the caller should push.
	ActionNone Action = "none"
	// ActionCreated means branchName now exists locally, rooted fresh on
	// the base tip, and has no known remote counterpart.
	ActionCreated Action = "created"
	// ActionUpdated means branchName exists locally and differs from its
	// remote counterpart; the caller should force-push it.
	ActionUpdated Action = "updated"
)

// ReconcileRequest describes one reconcile invocation.
type ReconcileRequest struct {
	// CommitMessage is used for the staging commit, if one is needed.
	CommitMessage string
	// BaseName is the ref the branch should be built on. Empty means
	// "use the current branch as the base" (legacy mode).
	BaseName string
	// BranchName is the PR branch to create or update.
	BranchName string
	// Signoff appends a Signed-off-by trailer to the staging commit.
	Signoff bool
}

// ReconcileOutcome is the result of a reconcile invocation.
type ReconcileOutcome struct {
	Action Action
	// HasDiffWithBase is meaningful only when Action != ActionNone.
	HasDiffWithBase bool
}

// PreconditionViolation means a precondition the engine checks was not met.
// Before any work starts: the branch name is empty, the driver's identity
// options are incomplete, another reconcile holds the repository lock, HEAD
// is detached, or a leftover temp branch cannot be removed; nothing has been
// touched yet and no cleanup runs. After staging: the base exists neither on
// the remote nor as a local branch; cleanup runs before it is returned.
type PreconditionViolation struct {
	Reason string
}

func (e *PreconditionViolation) Error() string {
	return fmt.Sprintf("precondition violation: %s", e.Reason)
}

// VcsInvocationFailure wraps an unexpected failure from a VcsDriver
// operation (add, commit, checkout, cherry-pick beyond an empty pick,
// branch delete, or diff). It is fatal and propagated after cleanup has
// run.
type VcsInvocationFailure struct {
	Op  string
	Err error
}

func (e *VcsInvocationFailure) Error() string {
	return fmt.Sprintf("vcs operation %q failed: %v", e.Op, e.Err)
}

func (e *VcsInvocationFailure) Unwrap() error {
	return e.Err
}

func vcsErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &VcsInvocationFailure{Op: op, Err: err}
}
