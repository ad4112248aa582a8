package executor

import "time"

// CommandExecutor abstracts git command execution so the driver can run
// against the production go-git/shell hybrid, a pure shell executor, or an
// in-memory repository in tests.
type CommandExecutor interface {
	Execute(dir string, args ...string) ([]byte, error)
	ExecuteWithEnv(dir string, env []string, args ...string) ([]byte, error)
	ExecuteGitWithWorkingDir(workingDir string, args ...string) ([]byte, error)
	ExecuteCommand(command string, args ...string) ([]byte, error)
	// ExecuteWithEnvAndTimeout bounds a command with a deadline, for network
	// operations (fetch) that must not hang a reconcile indefinitely.
	ExecuteWithEnvAndTimeout(dir string, env []string, timeout time.Duration, args ...string) ([]byte, error)
}
