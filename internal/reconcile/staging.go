package reconcile

import "github.com/vanpelt/prbranch/internal/vcsdriver"

// StagingResult is the result of Staging.StageAllChanges.
type StagingResult struct {
	HadChanges   bool
	StagedCommit vcsdriver.CommitID
}

// Staging produces a single commit capturing the union of tracked
// modifications, staged changes, and untracked files in the working tree,
// without disturbing HEAD beyond advancing it by that one commit.
type Staging struct {
	driver vcsdriver.Driver
	config vcsdriver.Config
}

// NewStaging wraps driver with the identity config the staging commit is
// authored under.
func NewStaging(driver vcsdriver.Driver, config vcsdriver.Config) *Staging {
	return &Staging{driver: driver, config: config}
}

// StageAllChanges adds every tracked and untracked change to the index and
// commits it under the configured identity. If the working tree is clean,
// it returns StagingResult{HadChanges: false} and touches nothing.
//
// Any VcsDriver error during add or commit is a fatal engine error: the
// tree is left in an indeterminate state and the caller must abort.
func (s *Staging) StageAllChanges(message string, signoff bool) (StagingResult, error) {
	dirty, err := s.driver.IsDirty()
	if err != nil {
		return StagingResult{}, vcsErr("status", err)
	}
	if !dirty {
		return StagingResult{HadChanges: false}, nil
	}

	if err := s.driver.AddAll(); err != nil {
		return StagingResult{}, vcsErr("add", err)
	}

	commit, err := s.driver.Commit(vcsdriver.CommitOptions{
		Message:        message,
		AuthorName:     s.config.AuthorName,
		AuthorEmail:    s.config.AuthorEmail,
		CommitterName:  s.config.CommitterName,
		CommitterEmail: s.config.CommitterEmail,
		Signoff:        signoff,
		NoVerify:       true,
	})
	if err != nil {
		return StagingResult{}, vcsErr("commit", err)
	}

	return StagingResult{HadChanges: true, StagedCommit: commit}, nil
}
