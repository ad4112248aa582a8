package reconcile

import "github.com/vanpelt/prbranch/internal/vcsdriver"

// Fetcher attempts to bring a remote ref into the local tracking ref,
// absorbing failure rather than propagating it: the existence of a remote
// branch is informational input to the Reconciler, not a precondition.
type Fetcher struct {
	driver vcsdriver.Driver
}

// NewFetcher wraps driver for fetch attempts.
func NewFetcher(driver vcsdriver.Driver) *Fetcher {
	return &Fetcher{driver: driver}
}

// TryFetch attempts to fetch ref into origin/<ref>, returning true on
// success and false on any failure (ref not found, network error,
// permission denial). It never returns an error.
func (f *Fetcher) TryFetch(ref string) bool {
	return f.driver.Fetch(ref)
}
