package executor

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// InMemoryExecutor implements CommandExecutor against go-git in-memory
// repositories, for unit tests that want to drive the driver's command
// translation without a git binary or disk. It answers only the read-side
// commands the driver issues; anything that would mutate a repository is an
// explicit error, pointing the test at the shell executor instead.
type InMemoryExecutor struct {
	repositories map[string]*TestRepository
}

// NewInMemoryExecutor creates a new in-memory git executor for testing.
func NewInMemoryExecutor() CommandExecutor {
	return &InMemoryExecutor{
		repositories: make(map[string]*TestRepository),
	}
}

// AddRepository registers a test repository at the given path.
func (e *InMemoryExecutor) AddRepository(path string, repo *TestRepository) {
	e.repositories[path] = repo
}

// CreateRepository creates and registers a new test repository at the given
// path.
func (e *InMemoryExecutor) CreateRepository(path string) (*TestRepository, error) {
	repo, err := NewTestRepository(path)
	if err != nil {
		return nil, err
	}
	e.AddRepository(path, repo)
	return repo, nil
}

// Execute handles non-git commands. Only echo is supported; tests use it to
// verify plumbing without touching a repository.
func (e *InMemoryExecutor) Execute(dir string, args ...string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no command provided")
	}
	if args[0] == "echo" {
		return []byte(strings.Join(args[1:], " ") + "\n"), nil
	}
	return nil, fmt.Errorf("command not supported in memory executor: %s", args[0])
}

func (e *InMemoryExecutor) ExecuteWithEnv(dir string, env []string, args ...string) ([]byte, error) {
	return e.Execute(dir, args...)
}

func (e *InMemoryExecutor) ExecuteCommand(command string, args ...string) ([]byte, error) {
	return e.Execute("", append([]string{command}, args...)...)
}

func (e *InMemoryExecutor) ExecuteWithEnvAndTimeout(dir string, env []string, timeout time.Duration, args ...string) ([]byte, error) {
	return e.ExecuteWithEnv(dir, env, args...)
}

func (e *InMemoryExecutor) ExecuteGitWithWorkingDir(workingDir string, args ...string) ([]byte, error) {
	repo := e.findRepository(workingDir)
	if repo == nil {
		return nil, fmt.Errorf("no repository found for path: %s", workingDir)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no git command provided")
	}

	switch args[0] {
	case "status":
		return e.handleStatus(repo)
	case "branch":
		if len(args) == 2 && args[1] == "--show-current" {
			return e.handleCurrentBranch(repo)
		}
	case "symbolic-ref":
		if len(args) == 3 && args[1] == "--short" && args[2] == "HEAD" {
			return e.handleCurrentBranch(repo)
		}
	case "rev-parse":
		return e.handleRevParse(repo, args[1:])
	case "show-ref":
		return e.handleShowRef(repo, args[1:])
	}

	return nil, fmt.Errorf("git command not implemented in memory executor: %s", strings.Join(args, " "))
}

// findRepository matches the working directory against the registered
// repositories, walking up through parents.
func (e *InMemoryExecutor) findRepository(workingDir string) *TestRepository {
	if repo, exists := e.repositories[workingDir]; exists {
		return repo
	}
	for path, repo := range e.repositories {
		if strings.HasPrefix(workingDir, path) {
			return repo
		}
	}
	return nil
}

func (e *InMemoryExecutor) handleStatus(repo *TestRepository) ([]byte, error) {
	worktree, err := repo.GetRepository().Worktree()
	if err != nil {
		return nil, err
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	for filename, fileStatus := range status {
		fmt.Fprintf(&out, "%c%c %s\n", fileStatus.Staging, fileStatus.Worktree, filename)
	}
	return out.Bytes(), nil
}

func (e *InMemoryExecutor) handleCurrentBranch(repo *TestRepository) ([]byte, error) {
	head, err := repo.GetRepository().Head()
	if err != nil {
		return nil, err
	}
	if !head.Name().IsBranch() {
		return nil, fmt.Errorf("HEAD is not on a branch")
	}
	return []byte(head.Name().Short() + "\n"), nil
}

func (e *InMemoryExecutor) handleRevParse(repo *TestRepository, args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("rev-parse requires an argument")
	}

	gitRepo := repo.GetRepository()
	rev := args[0]
	if rev == "HEAD" {
		head, err := gitRepo.Head()
		if err != nil {
			return nil, err
		}
		return []byte(head.Hash().String() + "\n"), nil
	}

	// Branch and tracking-ref names resolve through the reference store.
	for _, candidate := range []string{rev, "refs/heads/" + rev, "refs/remotes/" + rev} {
		if ref, err := gitRepo.Reference(plumbing.ReferenceName(candidate), true); err == nil {
			return []byte(ref.Hash().String() + "\n"), nil
		}
	}
	return nil, fmt.Errorf("unknown revision: %s", rev)
}

func (e *InMemoryExecutor) handleShowRef(repo *TestRepository, args []string) ([]byte, error) {
	verify, quiet := false, false
	refName := ""
	for _, arg := range args {
		switch arg {
		case "--verify":
			verify = true
		case "--quiet":
			quiet = true
		default:
			if strings.HasPrefix(arg, "refs/") {
				refName = arg
			}
		}
	}
	if !verify || refName == "" {
		return nil, fmt.Errorf("show-ref: only --verify <ref> is implemented")
	}

	ref, err := repo.GetRepository().Reference(plumbing.ReferenceName(refName), true)
	if err != nil {
		return nil, fmt.Errorf("reference not found: %s", refName)
	}
	if quiet {
		return []byte(""), nil
	}
	return []byte(fmt.Sprintf("%s %s\n", ref.Hash().String(), refName)), nil
}
