package vcsdriver

import (
	"fmt"
	"strings"
	"time"

	"github.com/vanpelt/prbranch/internal/vcsdriver/executor"
)

// defaultFetchTimeout bounds a single fetch so a wedged remote cannot hang a
// reconcile indefinitely.
const defaultFetchTimeout = 2 * time.Minute

// FetchStrategy defines the strategy for fetching branches
type FetchStrategy struct {
	Branch         string        // Branch to fetch
	Remote         string        // Remote name or path
	RemoteName     string        // Remote name for refs (defaults to remote name)
	IsLocalRepo    bool          // Whether this is a local repo fetch
	Depth          int           // Fetch depth (0 = no depth limit)
	UpdateLocalRef bool          // Whether to update local refs after fetch
	RefSpec        string        // Custom refspec (optional)
	Timeout        time.Duration // Deadline for the fetch (0 = defaultFetchTimeout)
}

// PushStrategy defines the strategy for pushing branches
type PushStrategy struct {
	Branch      string // Branch (or refspec) to push
	Remote      string // Remote name (defaults to "origin")
	SetUpstream bool   // Whether to set upstream (-u flag)
	Force       bool   // Whether to force-push (used when rewriting a temp branch)
}

// FetchExecutor handles fetch operations with strategy pattern
type FetchExecutor struct {
	executor executor.CommandExecutor
}

// NewFetchExecutor creates a new fetch executor
func NewFetchExecutor(exec executor.CommandExecutor) *FetchExecutor {
	return &FetchExecutor{executor: exec}
}

// FetchBranch executes a fetch strategy
func (f *FetchExecutor) FetchBranch(repoPath string, strategy FetchStrategy) error {
	// Set defaults
	if strategy.Remote == "" {
		strategy.Remote = "origin"
	}
	if strategy.RemoteName == "" {
		strategy.RemoteName = strategy.Remote
	}

	// Skip fetch for local repos if no remote specified
	if strategy.IsLocalRepo && strategy.Remote == "origin" {
		return nil
	}

	// Build fetch command
	args := []string{"fetch"}

	// Add remote
	args = append(args, strategy.Remote)

	// Add refspec
	if strategy.RefSpec != "" {
		args = append(args, strategy.RefSpec)
	} else if strategy.Branch != "" {
		if strategy.IsLocalRepo {
			// For local repos, use custom refspec format
			args = append(args, fmt.Sprintf("%s:refs/remotes/%s/%s", strategy.Branch, strategy.RemoteName, strategy.Branch))
		} else {
			// For remote repos, use standard refspec
			args = append(args, fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", strategy.Branch, strategy.RemoteName, strategy.Branch))
		}
	}

	// Add depth if specified
	if strategy.Depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", strategy.Depth))
	}

	timeout := strategy.Timeout
	if timeout == 0 {
		timeout = defaultFetchTimeout
	}

	// Execute fetch under a deadline
	output, err := f.executor.ExecuteWithEnvAndTimeout(repoPath, nil, timeout, args...)
	if err != nil {
		return fmt.Errorf("failed to fetch branch: %v\n%s", err, output)
	}

	// Update local branch ref if requested
	if strategy.UpdateLocalRef && strategy.Branch != "" && !strategy.IsLocalRepo {
		_, err = f.executor.ExecuteGitWithWorkingDir(repoPath, "update-ref",
			fmt.Sprintf("refs/heads/%s", strategy.Branch),
			fmt.Sprintf("refs/remotes/%s/%s", strategy.RemoteName, strategy.Branch))
		if err != nil {
			return fmt.Errorf("could not update local branch ref: %w", err)
		}
	}

	return nil
}

// PushExecutor handles push operations with strategy pattern
type PushExecutor struct {
	executor executor.CommandExecutor
}

// NewPushExecutor creates a new push executor
func NewPushExecutor(exec executor.CommandExecutor) *PushExecutor {
	return &PushExecutor{executor: exec}
}

// PushBranch executes a push strategy
func (p *PushExecutor) PushBranch(worktreePath string, strategy PushStrategy) error {
	if strategy.Remote == "" {
		strategy.Remote = "origin"
	}

	args := []string{"push"}
	if strategy.Force {
		args = append(args, "--force")
	}
	if strategy.SetUpstream {
		args = append(args, "-u")
	}
	args = append(args, strategy.Remote, strategy.Branch)

	output, err := p.executor.ExecuteGitWithWorkingDir(worktreePath, args...)
	if err != nil {
		return fmt.Errorf("failed to push branch %s to %s: %v\n%s", strategy.Branch, strategy.Remote, err, output)
	}

	return nil
}

// IsPushRejected reports whether a push failure looks like a non-fast-forward
// rejection rather than a transport or auth failure.
func IsPushRejected(err error, output string) bool {
	if err == nil {
		return false
	}
	combined := strings.ToLower(output + " " + err.Error())
	return strings.Contains(combined, "[rejected]") ||
		strings.Contains(combined, "non-fast-forward") ||
		strings.Contains(combined, "fetch first")
}
