package vcsdriver

// Config is the immutable identity and defaults a Driver is constructed
// with. Nothing in this package mutates a Config after construction; a new
// reconcile that wants different identity builds a new Driver.
type Config struct {
	AuthorName     string
	AuthorEmail    string
	CommitterName  string
	CommitterEmail string

	// DefaultRemote is the remote name fetch/push operate against, "origin"
	// unless the caller overrides it.
	DefaultRemote string
}

// Remote returns the configured default remote name, defaulting to
// "origin" when unset.
func (c Config) Remote() string {
	if c.DefaultRemote == "" {
		return "origin"
	}
	return c.DefaultRemote
}
