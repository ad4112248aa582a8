package reconcile

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/vanpelt/prbranch/internal/vcsdriver"
)

const defaultTempBranchSuffix = "-temp-branch"

// Reconciler implements the branch reconciliation algorithm: given the
// working base, the desired base, a branch name, and a commit message, it
// drives a vcsdriver.Driver to produce either no new branch, a freshly
// created local branch, or an updated one.
type Reconciler struct {
	driver           vcsdriver.Driver
	config           vcsdriver.Config
	staging          *Staging
	fetcher          *Fetcher
	tempBranchSuffix string
}

// NewReconciler builds a Reconciler bound to driver, authoring staged
// commits under config's identity. tempBranchSuffix names the scratch
// branch reserved for this tool; an empty string defaults to
// "-temp-branch".
func NewReconciler(driver vcsdriver.Driver, config vcsdriver.Config, tempBranchSuffix string) *Reconciler {
	if tempBranchSuffix == "" {
		tempBranchSuffix = defaultTempBranchSuffix
	}
	return &Reconciler{
		driver:           driver,
		config:           config,
		staging:          NewStaging(driver, config),
		fetcher:          NewFetcher(driver),
		tempBranchSuffix: tempBranchSuffix,
	}
}

// CreateOrUpdateBranch runs one reconcile invocation. Once the precondition
// checks have passed, cleanup (delete the temp branch, restore HEAD to the
// working base) always runs before this returns, on every exit path
// including errors; a failed precondition check returns before anything is
// touched, without cleanup.
func (r *Reconciler) CreateOrUpdateBranch(req ReconcileRequest) (ReconcileOutcome, error) {
	if req.BranchName == "" {
		return ReconcileOutcome{}, &PreconditionViolation{Reason: "branch name is required"}
	}
	if r.config.AuthorName == "" || r.config.AuthorEmail == "" {
		return ReconcileOutcome{}, &PreconditionViolation{Reason: "commit identity is not configured"}
	}

	lock := flock.New(filepath.Join(r.driver.RepoPath(), ".git", "prbranch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return ReconcileOutcome{}, fmt.Errorf("acquiring repository lock: %w", err)
	}
	if !locked {
		return ReconcileOutcome{}, &PreconditionViolation{Reason: "repository is already owned by another reconcile"}
	}
	defer lock.Unlock()

	workingBase, err := r.driver.CurrentBranch()
	if err != nil {
		return ReconcileOutcome{}, &PreconditionViolation{Reason: "HEAD is not on a branch"}
	}

	base := req.BaseName
	if base == "" {
		base = workingBase
	}
	wbnb := workingBase != base
	tempBranch := req.BranchName + r.tempBranchSuffix

	if r.driver.BranchExistsLocal(tempBranch) {
		if err := r.driver.BranchDelete(tempBranch, true); err != nil {
			return ReconcileOutcome{}, &PreconditionViolation{
				Reason: fmt.Sprintf("temp branch %s already exists and could not be removed: %v", tempBranch, err),
			}
		}
	}

	outcome, runErr := r.run(req, workingBase, base, wbnb, tempBranch)

	cleanupErr := r.cleanup(tempBranch, workingBase)

	if runErr != nil {
		return ReconcileOutcome{}, runErr
	}
	if cleanupErr != nil {
		return ReconcileOutcome{}, vcsErr("cleanup", cleanupErr)
	}
	return outcome, nil
}

func (r *Reconciler) run(req ReconcileRequest, workingBase, base string, wbnb bool, tempBranch string) (ReconcileOutcome, error) {
	// Snapshot the working base's tip before staging touches it, so the
	// workflow-commit replay below can exclude the staged commit itself
	// and cherry-pick it only once, via its own step.
	preStagingTip, err := r.driver.RevParse(workingBase)
	if err != nil {
		return ReconcileOutcome{}, vcsErr("resolve working base tip", err)
	}

	// Snapshot working changes.
	staged, err := r.staging.StageAllChanges(req.CommitMessage, req.Signoff)
	if err != nil {
		return ReconcileOutcome{}, err
	}

	// Resolve the base.
	r.fetcher.TryFetch(base)
	baseRef, err := r.resolveBaseRef(base)
	if err != nil {
		return ReconcileOutcome{}, &PreconditionViolation{Reason: err.Error()}
	}

	if wbnb {
		if r.driver.BranchExistsLocal(base) {
			if err := r.driver.CheckoutBranch(base); err != nil {
				return ReconcileOutcome{}, vcsErr("checkout base", err)
			}
		} else {
			if err := r.driver.CheckoutNewBranch(base, baseRef); err != nil {
				return ReconcileOutcome{}, vcsErr("checkout base", err)
			}
		}
	}

	// Construct the candidate branch tip on the temp branch.
	if err := r.driver.CheckoutNewBranch(tempBranch, baseRef); err != nil {
		return ReconcileOutcome{}, vcsErr("checkout temp branch", err)
	}

	if wbnb {
		workflowCommits, err := r.driver.CommitsBetween(baseRef, string(preStagingTip))
		if err != nil {
			return ReconcileOutcome{}, vcsErr("enumerate workflow commits", err)
		}
		for _, commit := range workflowCommits {
			if _, err := r.driver.CherryPick(commit, true); err != nil {
				return ReconcileOutcome{}, vcsErr("cherry-pick workflow commit", err)
			}
		}
	}

	if staged.HadChanges {
		if _, err := r.driver.CherryPick(staged.StagedCommit, true); err != nil {
			return ReconcileOutcome{}, vcsErr("cherry-pick staged commit", err)
		}
	}

	// Decide create vs update vs none against the remote PR branch.
	prExists := r.fetcher.TryFetch(req.BranchName)
	if !prExists {
		hasDiff, err := r.driver.HasDiff(baseRef, tempBranch)
		if err != nil {
			return ReconcileOutcome{}, vcsErr("diff temp branch against base", err)
		}
		if !hasDiff {
			return ReconcileOutcome{Action: ActionNone}, nil
		}
		if err := r.driver.CheckoutNewBranch(req.BranchName, tempBranch); err != nil {
			return ReconcileOutcome{}, vcsErr("point branch at temp branch tip", err)
		}
		return ReconcileOutcome{Action: ActionCreated, HasDiffWithBase: true}, nil
	}

	remoteBranchRef := fmt.Sprintf("%s/%s", r.config.Remote(), req.BranchName)
	differsFromRemote, err := r.driver.HasDiff(tempBranch, remoteBranchRef)
	if err != nil {
		return ReconcileOutcome{}, vcsErr("diff temp branch against remote pr branch", err)
	}
	if !differsFromRemote {
		// Tree-identical: re-running the workflow must be idempotent at
		// the tree level even if commit hashes differ.
		return ReconcileOutcome{Action: ActionNone}, nil
	}

	if err := r.driver.CheckoutNewBranch(req.BranchName, tempBranch); err != nil {
		return ReconcileOutcome{}, vcsErr("point branch at temp branch tip", err)
	}
	hasDiffWithBase, err := r.driver.HasDiff(baseRef, tempBranch)
	if err != nil {
		return ReconcileOutcome{}, vcsErr("diff temp branch against base", err)
	}
	return ReconcileOutcome{Action: ActionUpdated, HasDiffWithBase: hasDiffWithBase}, nil
}

// resolveBaseRef picks the ref to build the temp branch from: the fetched
// remote tracking ref if it exists, falling back to a local branch of the
// same name (a base that has never been pushed). It fails only when
// neither exists, the "base does not exist at all" precondition.
func (r *Reconciler) resolveBaseRef(base string) (string, error) {
	if _, err := r.driver.RemoteTip(base); err == nil {
		return fmt.Sprintf("%s/%s", r.config.Remote(), base), nil
	}
	if r.driver.BranchExistsLocal(base) {
		return base, nil
	}
	return "", fmt.Errorf("base %q does not exist locally or on the remote", base)
}

// cleanup restores HEAD to the working base and deletes the temp branch.
// HEAD must move off the temp branch (and off req.BranchName, in the
// create path) before it can be deleted, so the checkout always runs first.
// Cleanup runs on every exit path, including failures in run.
func (r *Reconciler) cleanup(tempBranch, workingBase string) error {
	var firstErr error

	if current, err := r.driver.CurrentBranch(); err != nil || current != workingBase {
		if err := r.driver.CheckoutBranch(workingBase); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("restoring HEAD to %s: %w", workingBase, err)
		}
	}

	if r.driver.BranchExistsLocal(tempBranch) {
		if err := r.driver.BranchDelete(tempBranch, true); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("deleting temp branch %s: %w", tempBranch, err)
		}
	}

	return firstErr
}
