package config

import (
	"os"
)

// RuntimeConfig holds the handful of host-environment facts the vcsdriver
// executors need: where HOME is, for the environment shelled-out git
// commands run under.
type RuntimeConfig struct {
	HomeDir string
	TempDir string
}

// Runtime is the global runtime configuration instance, detected once at
// process startup.
var Runtime *RuntimeConfig

func init() {
	Runtime = DetectRuntime()
}

// DetectRuntime resolves the current host's home and temp directories.
func DetectRuntime() *RuntimeConfig {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = "."
		}
	}

	return &RuntimeConfig{
		HomeDir: homeDir,
		TempDir: os.TempDir(),
	}
}
