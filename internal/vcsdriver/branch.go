package vcsdriver

import (
	"fmt"
	"strings"

	"github.com/vanpelt/prbranch/internal/vcsdriver/executor"
)

// BranchOperations provides the local-branch existence check gitDriver
// exposes as BranchExistsLocal: the reconciler uses it to find a leftover
// TempBranch to delete and to decide whether the base has a local branch to
// check out rather than create.
type BranchOperations struct {
	executor executor.CommandExecutor
}

// NewBranchOperations creates a new branch operations instance
func NewBranchOperations(exec executor.CommandExecutor) *BranchOperations {
	return &BranchOperations{
		executor: exec,
	}
}

// BranchExistsLocal reports whether a local branch exists, via show-ref
// against refs/heads/<branch> rather than `git branch --list`, which is
// more reliable when HEAD is on a custom ref. branch may already carry a
// full ref path (e.g. refs/prbranch/name), in which case it's used verbatim.
func (b *BranchOperations) BranchExistsLocal(repoPath, branch string) bool {
	ref := branch
	if !strings.HasPrefix(branch, "refs/") {
		ref = fmt.Sprintf("refs/heads/%s", branch)
	}
	_, err := b.executor.ExecuteGitWithWorkingDir(repoPath, "show-ref", "--verify", "--quiet", ref)
	return err == nil
}
