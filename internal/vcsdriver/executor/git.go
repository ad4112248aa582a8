package executor

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitExecutor answers the read-side commands the driver issues constantly
// (status, rev-parse, symbolic-ref, show-ref, branch --show-current) through
// go-git against a cached repository handle, and shells out for everything
// that mutates the tree or talks to a remote. The reconcile engine runs its
// operations strictly in sequence, so a single lock around the cache is all
// the synchronization this needs.
type GitExecutor struct {
	fallback CommandExecutor

	mu    sync.Mutex
	repos map[string]*gogit.Repository
}

// NewGitExecutor builds the production executor: go-git reads, shell git for
// the rest.
func NewGitExecutor() CommandExecutor {
	return &GitExecutor{
		fallback: NewShellExecutor(),
		repos:    make(map[string]*gogit.Repository),
	}
}

func (e *GitExecutor) Execute(dir string, args ...string) ([]byte, error) {
	return e.ExecuteGitWithWorkingDir(dir, args...)
}

// ExecuteWithEnv always shells out: go-git has no notion of a per-invocation
// environment, and the only caller is commit identity injection.
func (e *GitExecutor) ExecuteWithEnv(dir string, env []string, args ...string) ([]byte, error) {
	return e.fallback.ExecuteWithEnv(dir, env, args...)
}

func (e *GitExecutor) ExecuteGitWithWorkingDir(workingDir string, args ...string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no git command provided")
	}

	switch args[0] {
	case "status":
		return e.handleStatus(workingDir, args[1:])
	case "branch":
		if len(args) == 2 && args[1] == "--show-current" {
			return e.handleCurrentBranch(workingDir)
		}
	case "symbolic-ref":
		if len(args) == 3 && args[1] == "--short" && args[2] == "HEAD" {
			return e.handleCurrentBranch(workingDir)
		}
	case "rev-parse":
		if len(args) == 2 && args[1] == "HEAD" {
			return e.handleRevParseHead(workingDir)
		}
	case "show-ref":
		return e.handleShowRef(workingDir, args[1:])
	}

	return e.fallback.ExecuteGitWithWorkingDir(workingDir, args...)
}

func (e *GitExecutor) ExecuteCommand(command string, args ...string) ([]byte, error) {
	return e.fallback.ExecuteCommand(command, args...)
}

func (e *GitExecutor) ExecuteWithEnvAndTimeout(dir string, env []string, timeout time.Duration, args ...string) ([]byte, error) {
	return e.fallback.ExecuteWithEnvAndTimeout(dir, env, timeout, args...)
}

// repository returns a cached go-git handle for repoPath, opening and
// caching it on first use. go-git reads refs from disk on demand, so a
// cached handle stays correct across the shell-side mutations the fallback
// performs.
func (e *GitExecutor) repository(repoPath string) (*gogit.Repository, error) {
	if repoPath == "" {
		repoPath = "."
	}
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", repoPath, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if repo, ok := e.repos[absPath]; ok {
		return repo, nil
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", absPath, err)
	}
	e.repos[absPath] = repo
	return repo, nil
}

// handleStatus serves `status --porcelain` from go-git. Anything fancier
// falls through to shell git, which knows every status format.
func (e *GitExecutor) handleStatus(workingDir string, args []string) ([]byte, error) {
	if len(args) != 1 || args[0] != "--porcelain" {
		return e.fallback.ExecuteGitWithWorkingDir(workingDir, append([]string{"status"}, args...)...)
	}

	repo, err := e.repository(workingDir)
	if err != nil {
		return e.fallback.ExecuteGitWithWorkingDir(workingDir, append([]string{"status"}, args...)...)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return e.fallback.ExecuteGitWithWorkingDir(workingDir, append([]string{"status"}, args...)...)
	}
	status, err := worktree.Status()
	if err != nil {
		return e.fallback.ExecuteGitWithWorkingDir(workingDir, append([]string{"status"}, args...)...)
	}

	var out bytes.Buffer
	for filename, fileStatus := range status {
		fmt.Fprintf(&out, "%s%s %s\n",
			statusCode(fileStatus.Staging), statusCode(fileStatus.Worktree), filename)
	}
	return out.Bytes(), nil
}

func (e *GitExecutor) handleCurrentBranch(workingDir string) ([]byte, error) {
	repo, err := e.repository(workingDir)
	if err != nil {
		return nil, err
	}

	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference {
		return nil, fmt.Errorf("HEAD is not on a branch")
	}
	return []byte(head.Target().Short() + "\n"), nil
}

func (e *GitExecutor) handleRevParseHead(workingDir string) ([]byte, error) {
	repo, err := e.repository(workingDir)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return []byte(head.Hash().String() + "\n"), nil
}

// handleShowRef serves the `show-ref --verify [--quiet] <ref>` existence
// probe BranchOperations issues.
func (e *GitExecutor) handleShowRef(workingDir string, args []string) ([]byte, error) {
	verify, quiet := false, false
	refName := ""
	for _, arg := range args {
		switch arg {
		case "--verify":
			verify = true
		case "--quiet":
			quiet = true
		default:
			refName = arg
		}
	}
	if !verify || refName == "" {
		return e.fallback.ExecuteGitWithWorkingDir(workingDir, append([]string{"show-ref"}, args...)...)
	}

	repo, err := e.repository(workingDir)
	if err != nil {
		// No repository at all still has to behave like a failed probe.
		return nil, err
	}
	ref, err := repo.Reference(plumbing.ReferenceName(refName), true)
	if err != nil {
		return nil, fmt.Errorf("reference not found: %s", refName)
	}
	if quiet {
		return []byte(""), nil
	}
	return []byte(fmt.Sprintf("%s %s\n", ref.Hash().String(), refName)), nil
}

func statusCode(status gogit.StatusCode) string {
	switch status {
	case gogit.Unmodified:
		return " "
	case gogit.Modified:
		return "M"
	case gogit.Added:
		return "A"
	case gogit.Deleted:
		return "D"
	case gogit.Renamed:
		return "R"
	case gogit.Copied:
		return "C"
	case gogit.UpdatedButUnmerged:
		return "U"
	default:
		return "?"
	}
}
