package vcsdriver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/vanpelt/prbranch/internal/vcsdriver/executor"
)

// StatusChecker provides working-tree status operations.
type StatusChecker struct {
	executor executor.CommandExecutor
}

// NewStatusChecker creates a new status checker
func NewStatusChecker(executor executor.CommandExecutor) *StatusChecker {
	return &StatusChecker{executor: executor}
}

// HasConflicts checks if a worktree is in a conflicted state (rebase, merge,
// or cherry-pick in progress)
func (s *StatusChecker) HasConflicts(worktreePath string) bool {
	for _, marker := range []string{"rebase-apply", "rebase-merge", "MERGE_HEAD", "CHERRY_PICK_HEAD"} {
		if _, err := os.Stat(filepath.Join(worktreePath, ".git", marker)); err == nil {
			return true
		}
	}

	output, err := s.executor.ExecuteGitWithWorkingDir(worktreePath, "status", "--porcelain")
	if err != nil {
		return false
	}

	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if len(line) >= 2 && isConflictCode(line[0], line[1]) {
			return true
		}
	}
	return false
}

// HasUncommittedChanges checks if the worktree has any uncommitted changes
// (staged, unstaged, or untracked)
func (s *StatusChecker) HasUncommittedChanges(worktreePath string) (bool, error) {
	// Staged changes
	if _, err := s.executor.ExecuteGitWithWorkingDir(worktreePath, "diff", "--cached", "--quiet"); err != nil {
		return true, nil
	}

	// Unstaged changes
	if _, err := s.executor.ExecuteGitWithWorkingDir(worktreePath, "diff", "--quiet"); err != nil {
		return true, nil
	}

	// Untracked files
	output, err := s.executor.ExecuteGitWithWorkingDir(worktreePath, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return false, err
	}

	return len(strings.TrimSpace(string(output))) > 0, nil
}

// GetConflictedFiles returns a list of files with conflicts
func (s *StatusChecker) GetConflictedFiles(worktreePath string) ([]string, error) {
	output, err := s.executor.ExecuteGitWithWorkingDir(worktreePath, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// WorkingTreeState is a snapshot of the working tree: HEAD, the branch it is
// on, and the staged/unstaged/untracked file sets. Derived on demand from
// `git status`, never cached across calls.
type WorkingTreeState struct {
	Head           CommitID
	Branch         string
	IsDirty        bool
	HasConflicts   bool
	UnstagedFiles  []string
	StagedFiles    []string
	UntrackedFiles []string
}

// GetWorktreeStatus derives the WorkingTreeState for worktreePath from
// `branch --show-current`, `rev-parse HEAD` and `git status --porcelain`,
// plus a HasConflicts probe when the porcelain output shows no conflict.
func (s *StatusChecker) GetWorktreeStatus(worktreePath string) (*WorkingTreeState, error) {
	branchOutput, err := s.executor.ExecuteGitWithWorkingDir(worktreePath, "branch", "--show-current")
	if err != nil {
		return nil, err
	}
	branch := strings.TrimSpace(string(branchOutput))

	headOutput, err := s.executor.ExecuteGitWithWorkingDir(worktreePath, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}
	head := CommitID(strings.TrimSpace(string(headOutput)))

	statusOutput, err := s.executor.ExecuteGitWithWorkingDir(worktreePath, "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	status := &WorkingTreeState{
		Head:           head,
		Branch:         branch,
		UnstagedFiles:  []string{},
		StagedFiles:    []string{},
		UntrackedFiles: []string{},
	}

	for _, line := range strings.Split(strings.TrimRight(string(statusOutput), "\n"), "\n") {
		if len(line) < 3 {
			continue
		}

		indexStatus := line[0]
		workTreeStatus := line[1]
		filename := line[3:]

		status.IsDirty = true

		if isConflictCode(indexStatus, workTreeStatus) {
			status.HasConflicts = true
			continue
		}

		if indexStatus == '?' {
			status.UntrackedFiles = append(status.UntrackedFiles, filename)
			continue
		}
		if indexStatus != ' ' {
			status.StagedFiles = append(status.StagedFiles, filename)
		}
		if workTreeStatus != ' ' {
			status.UnstagedFiles = append(status.UnstagedFiles, filename)
		}
	}

	// Porcelain output doesn't cover an interrupted rebase or cherry-pick.
	if !status.HasConflicts {
		status.HasConflicts = s.HasConflicts(worktreePath)
	}

	return status, nil
}

// isConflictCode reports whether a porcelain status pair marks an unmerged
// path (UU, AA, DD, AU, UA, DU, UD).
func isConflictCode(index, worktree byte) bool {
	switch {
	case index == 'U' || worktree == 'U':
		return true
	case index == 'A' && worktree == 'A':
		return true
	case index == 'D' && worktree == 'D':
		return true
	}
	return false
}
