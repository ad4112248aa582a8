package vcsdriver

// CommitID is an opaque, content-addressed commit identifier (a git hash).
// Equality is by value.
type CommitID string

// Empty reports whether the CommitID is the zero value, i.e. no commit was
// resolved.
func (c CommitID) Empty() bool {
	return c == ""
}

// CommitOptions configures a Commit call: the authored message plus the
// identity to commit under.
type CommitOptions struct {
	Message        string
	AuthorName     string
	AuthorEmail    string
	CommitterName  string
	CommitterEmail string
	Signoff        bool
	AllowEmpty     bool
	NoVerify       bool
}

// Driver is the abstract version-control contract the reconcile engine is
// built against: fetch, checkout, commit, cherry-pick, and diff primitives.
// Every method is scoped to the single repository the Driver was
// constructed for; none of them take a repo path.
//
// A Driver implementation owns translating these operations into actual
// version-control invocations; the engine makes no assumption beyond this
// contract.
type Driver interface {
	// Fetch attempts to bring ref into the local tracking ref
	// origin/<ref>. It never returns an error: failure (network, missing
	// ref, permission) is reported as a false return, matching tryFetch's
	// "absorb, don't propagate" contract.
	Fetch(ref string) bool

	// CurrentBranch returns the name of the branch HEAD currently points
	// to, or an error if HEAD is detached.
	CurrentBranch() (string, error)

	// RevParse resolves rev (a branch, tag, or tracking ref name) to a
	// CommitID.
	RevParse(rev string) (CommitID, error)

	// IsDirty reports whether the working tree has uncommitted changes,
	// tracked or untracked.
	IsDirty() (bool, error)

	// WorkingTreeState derives the full working-tree snapshot:
	// HEAD, branch, the staged/unstaged/untracked file sets, and whether
	// any path is conflicted.
	// Callers use it to describe a pending change set; the engine itself
	// only needs IsDirty.
	WorkingTreeState() (*WorkingTreeState, error)

	// AddAll stages every tracked modification and untracked file.
	AddAll() error

	// Commit creates a commit from the current index using opts. The
	// index must already reflect the desired tree (via AddAll or a prior
	// cherry-pick).
	Commit(opts CommitOptions) (CommitID, error)

	// CherryPick replays id onto HEAD. With allowEmpty true, an empty
	// result is kept as a zero-diff commit and reported back as empty so
	// callers can reason about hasDiffWithBase. With allowEmpty false, a
	// pick whose result is empty fails like any other failed pick; it is
	// not skipped.
	CherryPick(id CommitID, allowEmpty bool) (empty bool, err error)

	// CheckoutBranch switches HEAD to the existing local branch name.
	CheckoutBranch(name string) error

	// CheckoutNewBranch creates (or resets, if it already exists) the
	// local branch name at startPoint and switches HEAD to it.
	CheckoutNewBranch(name, startPoint string) error

	// BranchDelete removes the local branch name.
	BranchDelete(name string, force bool) error

	// BranchExistsLocal reports whether a local branch by this name
	// exists.
	BranchExistsLocal(name string) bool

	// RemoteTip resolves origin/<name> to a CommitID. It errors if the
	// tracking ref doesn't exist locally (callers Fetch first).
	RemoteTip(name string) (CommitID, error)

	// DiffNameOnly lists the paths that differ between a and b; empty
	// iff their trees are identical.
	DiffNameOnly(a, b string) ([]string, error)

	// HasDiff is a boolean shortcut over DiffNameOnly.
	HasDiff(a, b string) (bool, error)

	// CommitsBetween returns the commits reachable from to but not from
	// from, oldest first: the order a caller replays them in.
	CommitsBetween(from, to string) ([]CommitID, error)

	// Push publishes refspec to remote. force enables non-fast-forward
	// overwrite, needed when rewriting a temp or PR branch.
	Push(remote, refspec string, force bool) error

	// RepoPath returns the filesystem path of the repository this Driver
	// is bound to, for callers that need it outside the op vocabulary
	// above (e.g. to hold an advisory lock).
	RepoPath() string
}
