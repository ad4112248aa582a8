package vcsdriver

import (
	"fmt"
	"strings"

	"github.com/vanpelt/prbranch/internal/vcsdriver/executor"
)

// gitDriver is the concrete Driver implementation, built on the
// CommandExecutor abstraction: native go-git where it's clean, shell git
// everywhere else, exactly as GitExecutor itself is structured.
type gitDriver struct {
	repoPath string
	executor executor.CommandExecutor
	config   Config

	branches *BranchOperations
	fetch    *FetchExecutor
	push     *PushExecutor
	status   *StatusChecker
}

// NewDriver builds a Driver bound to repoPath, using exec for command
// execution and cfg for commit identity and remote defaults.
func NewDriver(repoPath string, exec executor.CommandExecutor, cfg Config) Driver {
	return &gitDriver{
		repoPath: repoPath,
		executor: exec,
		config:   cfg,
		branches: NewBranchOperations(exec),
		fetch:    NewFetchExecutor(exec),
		push:     NewPushExecutor(exec),
		status:   NewStatusChecker(exec),
	}
}

func (d *gitDriver) Fetch(ref string) bool {
	remote := d.config.Remote()
	err := d.fetch.FetchBranch(d.repoPath, FetchStrategy{
		Branch:         ref,
		Remote:         remote,
		RemoteName:     remote,
		UpdateLocalRef: false,
	})
	return err == nil
}

func (d *gitDriver) CurrentBranch() (string, error) {
	output, err := d.executor.ExecuteGitWithWorkingDir(d.repoPath, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("HEAD is detached: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

func (d *gitDriver) RevParse(rev string) (CommitID, error) {
	output, err := d.executor.ExecuteGitWithWorkingDir(d.repoPath, "rev-parse", rev)
	if err != nil {
		return "", fmt.Errorf("rev-parse %s failed: %w", rev, err)
	}
	return CommitID(strings.TrimSpace(string(output))), nil
}

func (d *gitDriver) IsDirty() (bool, error) {
	dirty, err := d.status.HasUncommittedChanges(d.repoPath)
	if err != nil {
		return false, fmt.Errorf("status failed: %w", err)
	}
	return dirty, nil
}

func (d *gitDriver) WorkingTreeState() (*WorkingTreeState, error) {
	return d.status.GetWorktreeStatus(d.repoPath)
}

func (d *gitDriver) AddAll() error {
	_, err := d.executor.ExecuteGitWithWorkingDir(d.repoPath, "add", "-A")
	if err != nil {
		return fmt.Errorf("add -A failed: %w", err)
	}
	return nil
}

func (d *gitDriver) Commit(opts CommitOptions) (CommitID, error) {
	args := []string{"commit", "-m", opts.Message}
	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}
	if opts.NoVerify {
		args = append(args, "--no-verify")
	}
	if opts.Signoff {
		args = append(args, "--signoff")
	}

	env := []string{
		"GIT_AUTHOR_NAME=" + opts.AuthorName,
		"GIT_AUTHOR_EMAIL=" + opts.AuthorEmail,
		"GIT_COMMITTER_NAME=" + opts.CommitterName,
		"GIT_COMMITTER_EMAIL=" + opts.CommitterEmail,
	}

	if _, err := d.executor.ExecuteWithEnv(d.repoPath, env, args...); err != nil {
		return "", fmt.Errorf("commit failed: %w", err)
	}

	return d.RevParse("HEAD")
}

// CherryPick replays id onto HEAD. When allowEmpty is set it passes
// --allow-empty and --keep-redundant-commits, so a pick that produces no
// diff (either because the source commit was itself empty, or because the
// change is already present on the new base) is kept as a zero-diff commit
// rather than aborting the pick; without them such a pick fails and is
// aborted.
func (d *gitDriver) CherryPick(id CommitID, allowEmpty bool) (bool, error) {
	args := []string{"cherry-pick"}
	if allowEmpty {
		args = append(args, "--allow-empty", "--keep-redundant-commits")
	}
	args = append(args, string(id))

	output, err := d.executor.ExecuteGitWithWorkingDir(d.repoPath, args...)
	if err != nil {
		// Abort the pick so the repository is not left mid-sequence; callers
		// restore HEAD afterwards and a lingering CHERRY_PICK_HEAD would make
		// that checkout fail too.
		conflicted, _ := d.status.GetConflictedFiles(d.repoPath)
		_, _ = d.executor.ExecuteGitWithWorkingDir(d.repoPath, "cherry-pick", "--abort")
		if len(conflicted) > 0 {
			return false, fmt.Errorf("cherry-pick %s failed with conflicts in %s: %w", id, strings.Join(conflicted, ", "), err)
		}
		return false, fmt.Errorf("cherry-pick %s failed: %w: %s", id, err, output)
	}

	diffed, err := d.DiffNameOnly("HEAD~1", "HEAD")
	if err != nil {
		return false, nil
	}
	return len(diffed) == 0, nil
}

func (d *gitDriver) CheckoutBranch(name string) error {
	_, err := d.executor.ExecuteGitWithWorkingDir(d.repoPath, "checkout", name)
	if err != nil {
		return fmt.Errorf("checkout %s failed: %w", name, err)
	}
	return nil
}

func (d *gitDriver) CheckoutNewBranch(name, startPoint string) error {
	_, err := d.executor.ExecuteGitWithWorkingDir(d.repoPath, "checkout", "-B", name, startPoint)
	if err != nil {
		return fmt.Errorf("checkout -B %s %s failed: %w", name, startPoint, err)
	}
	return nil
}

func (d *gitDriver) BranchDelete(name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := d.executor.ExecuteGitWithWorkingDir(d.repoPath, "branch", flag, name)
	if err != nil {
		return fmt.Errorf("branch delete %s failed: %w", name, err)
	}
	return nil
}

func (d *gitDriver) BranchExistsLocal(name string) bool {
	return d.branches.BranchExistsLocal(d.repoPath, name)
}

func (d *gitDriver) RemoteTip(name string) (CommitID, error) {
	return d.RevParse(fmt.Sprintf("%s/%s", d.config.Remote(), name))
}

func (d *gitDriver) DiffNameOnly(a, b string) ([]string, error) {
	output, err := d.executor.ExecuteGitWithWorkingDir(d.repoPath, "diff", "--name-only", a, b)
	if err != nil {
		return nil, fmt.Errorf("diff --name-only %s %s failed: %w", a, b, err)
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

func (d *gitDriver) HasDiff(a, b string) (bool, error) {
	files, err := d.DiffNameOnly(a, b)
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

func (d *gitDriver) CommitsBetween(from, to string) ([]CommitID, error) {
	output, err := d.executor.ExecuteGitWithWorkingDir(d.repoPath, "rev-list", "--reverse", fmt.Sprintf("%s..%s", from, to))
	if err != nil {
		return nil, fmt.Errorf("rev-list %s..%s failed: %w", from, to, err)
	}

	var commits []CommitID
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			commits = append(commits, CommitID(line))
		}
	}
	return commits, nil
}

func (d *gitDriver) Push(remote, refspec string, force bool) error {
	return d.push.PushBranch(d.repoPath, PushStrategy{
		Branch: refspec,
		Remote: remote,
		Force:  force,
	})
}

func (d *gitDriver) RepoPath() string {
	return d.repoPath
}
