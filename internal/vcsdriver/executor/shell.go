package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/vanpelt/prbranch/internal/config"
	"github.com/vanpelt/prbranch/internal/logger"
)

// ShellExecutor implements CommandExecutor by invoking the git binary. It is
// the fallback for everything GitExecutor doesn't answer natively, and the
// executor of choice for tests that want real git semantics.
type ShellExecutor struct {
	defaultEnv []string
}

// NewShellExecutor creates a new shell-based git command executor.
func NewShellExecutor() CommandExecutor {
	return &ShellExecutor{
		defaultEnv: []string{
			"HOME=" + config.Runtime.HomeDir,
		},
	}
}

// Execute runs a git command in the specified directory.
func (e *ShellExecutor) Execute(dir string, args ...string) ([]byte, error) {
	return e.ExecuteWithEnv(dir, e.defaultEnv, args...)
}

// ExecuteWithEnv runs a git command with extra environment variables.
func (e *ShellExecutor) ExecuteWithEnv(dir string, env []string, args ...string) ([]byte, error) {
	return e.ExecuteWithEnvAndTimeout(dir, env, 0, args...)
}

// ExecuteWithEnvAndTimeout runs a git command with extra environment
// variables and an optional deadline. A zero timeout means no deadline.
func (e *ShellExecutor) ExecuteWithEnvAndTimeout(dir string, env []string, timeout time.Duration, args ...string) ([]byte, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("git %s timed out after %v", strings.Join(args, " "), timeout)
		}
		return nil, fmt.Errorf("git %s failed: %v\nstderr: %s", strings.Join(args, " "), err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// ExecuteGitWithWorkingDir runs a git command with -C for the working
// directory.
func (e *ShellExecutor) ExecuteGitWithWorkingDir(workingDir string, args ...string) ([]byte, error) {
	if len(args) > 0 && !readOnlyGitCommand(args[0]) {
		logger.Logger.Debug().Str("dir", workingDir).Strs("args", args).Msg("git")
	}
	if workingDir != "" {
		args = append([]string{"-C", workingDir}, args...)
	}
	return e.Execute("", args...)
}

// ExecuteCommand runs any command (not just git) with the standard
// environment.
func (e *ShellExecutor) ExecuteCommand(command string, args ...string) ([]byte, error) {
	cmd := exec.Command(command, args...)
	cmd.Env = append(cmd.Environ(), e.defaultEnv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %s failed: %v\nstderr: %s", command, strings.Join(args, " "), err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// readOnlyGitCommand filters the high-frequency read probes out of the debug
// log so a reconcile's trace shows the operations that move refs, not every
// status poll.
func readOnlyGitCommand(command string) bool {
	switch command {
	case "status", "symbolic-ref", "rev-parse", "rev-list", "show-ref", "diff", "ls-files":
		return true
	}
	return false
}
