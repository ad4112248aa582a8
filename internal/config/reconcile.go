package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ReconcileConfig holds the identity and defaults the reconcile engine uses
// when it isn't told otherwise by the caller: who to commit as, which
// remote to fetch from and push to, and the suffix used to name the
// scratch branch a reconcile builds on top of.
type ReconcileConfig struct {
	AuthorName       string `toml:"author_name"`
	AuthorEmail      string `toml:"author_email"`
	CommitterName    string `toml:"committer_name"`
	CommitterEmail   string `toml:"committer_email"`
	DefaultRemote    string `toml:"default_remote"`
	TempBranchSuffix string `toml:"temp_branch_suffix"`
	Signoff          bool   `toml:"signoff"`
}

// DefaultReconcileConfig returns the config used when no file and no
// environment overrides are present.
func DefaultReconcileConfig() *ReconcileConfig {
	return &ReconcileConfig{
		AuthorName:       "prbranch",
		AuthorEmail:      "prbranch@localhost",
		CommitterName:    "prbranch",
		CommitterEmail:   "prbranch@localhost",
		DefaultRemote:    "origin",
		TempBranchSuffix: "-temp-branch",
		Signoff:          false,
	}
}

// DefaultConfigPath returns the path ReconcileConfig is loaded from when the
// caller doesn't supply one explicitly: ~/.prbranch/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(Runtime.HomeDir, ".prbranch", "config.toml")
}

// LoadReconcileConfig reads a TOML config file at path, falling back to
// defaults for any field the file doesn't set and for the file itself if it
// doesn't exist. Environment variables, when set, take precedence over both.
func LoadReconcileConfig(path string) (*ReconcileConfig, error) {
	cfg := DefaultReconcileConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *ReconcileConfig) {
	if v := os.Getenv("PRBRANCH_AUTHOR_NAME"); v != "" {
		cfg.AuthorName = v
	}
	if v := os.Getenv("PRBRANCH_AUTHOR_EMAIL"); v != "" {
		cfg.AuthorEmail = v
	}
	if v := os.Getenv("PRBRANCH_COMMITTER_NAME"); v != "" {
		cfg.CommitterName = v
	}
	if v := os.Getenv("PRBRANCH_COMMITTER_EMAIL"); v != "" {
		cfg.CommitterEmail = v
	}
	if v := os.Getenv("PRBRANCH_DEFAULT_REMOTE"); v != "" {
		cfg.DefaultRemote = v
	}
	if v := os.Getenv("PRBRANCH_TEMP_BRANCH_SUFFIX"); v != "" {
		cfg.TempBranchSuffix = v
	}
	if v := os.Getenv("PRBRANCH_SIGNOFF"); v == "1" || v == "true" {
		cfg.Signoff = true
	} else if v == "0" || v == "false" {
		cfg.Signoff = false
	}
}
