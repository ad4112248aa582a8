package executor

import (
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// TestRepository wraps an in-memory go-git repository that InMemoryExecutor
// dispatches git-subcommand calls against, so a driver under test never
// touches the real git binary or disk.
type TestRepository struct {
	repo    *git.Repository
	storage *memory.Storage
	fs      billy.Filesystem
	path    string
}

// NewTestRepository creates a new in-memory repository for testing
func NewTestRepository(path string) (*TestRepository, error) {
	storage := memory.NewStorage()
	fs := memfs.New()

	repo, err := git.Init(storage, fs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test repository: %w", err)
	}

	return &TestRepository{
		repo:    repo,
		storage: storage,
		fs:      fs,
		path:    path,
	}, nil
}

// GetRepository returns the underlying go-git repository
func (tr *TestRepository) GetRepository() *git.Repository {
	return tr.repo
}

// CreateFile creates a file with the given content
func (tr *TestRepository) CreateFile(filename, content string) error {
	file, err := tr.fs.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	if _, err := file.Write([]byte(content)); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}

	return nil
}

// CommitFile creates a file and commits it
func (tr *TestRepository) CommitFile(filename, content, message string) error {
	if err := tr.CreateFile(filename, content); err != nil {
		return err
	}

	worktree, err := tr.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if _, err := worktree.Add(filename); err != nil {
		return fmt.Errorf("failed to add file %s: %w", filename, err)
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// CreateBranch creates a new branch from the current HEAD
func (tr *TestRepository) CreateBranch(branchName string) error {
	head, err := tr.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}

	ref := plumbing.NewHashReference(plumbing.ReferenceName("refs/heads/"+branchName), head.Hash())
	if err := tr.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branchName, err)
	}

	return nil
}

// CheckoutBranch checks out a branch
func (tr *TestRepository) CheckoutBranch(branchName string) error {
	worktree, err := tr.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.ReferenceName("refs/heads/" + branchName),
	})
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branchName, err)
	}

	return nil
}
