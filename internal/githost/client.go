// Package githost talks to the hosting provider's Git Data API: the
// low-level object-graph surface (blobs, trees, commits, refs) plus the
// App-installation auth endpoints. It is the only package that knows the
// provider's wire format.
package githost

import "context"

// TreeEntry is one path operation inside a tree request, and one row of a
// recursive tree listing. In a request, a nil SHA deletes the path.
type TreeEntry struct {
	Path string  `json:"path"`
	Mode string  `json:"mode"`
	Type string  `json:"type"`
	SHA  *string `json:"sha"`
}

// Client is the provider API surface consumed by the publishing pipeline
// and the auth chain.
//
// Every call is single-shot: no retries, no token refresh. Provider
// failures are mapped onto the common sentinel errors (ErrAuth,
// ErrConflict, ErrNotFound) and returned unmodified to the caller.
type Client interface {
	// SetToken installs the installation access token used as the bearer
	// credential on all Git Data calls.
	SetToken(token string)

	// GetBranchSHA reads the branch ref and returns the commit sha at its tip.
	GetBranchSHA(ctx context.Context, branch string) (string, error)

	// CreateBlob uploads content as an immutable object. Encoding is
	// "utf-8" or "base64". Returns the provider-assigned content hash.
	CreateBlob(ctx context.Context, content string, encoding string) (string, error)

	// CreateTree asks the provider for a new tree equal to baseTree with
	// the entries applied, in a single call.
	CreateTree(ctx context.Context, baseTree string, entries []TreeEntry) (string, error)

	// CreateCommit creates a commit pointing at treeSHA with the given parents.
	CreateCommit(ctx context.Context, message string, treeSHA string, parents []string) (string, error)

	// UpdateBranch moves the branch ref to sha. The provider accepts this
	// only as a fast-forward; otherwise ErrConflict.
	UpdateBranch(ctx context.Context, branch string, sha string) error

	// ListTree returns the full recursive listing of the tree at sha.
	ListTree(ctx context.Context, sha string) ([]TreeEntry, error)

	// GetBlob downloads the raw bytes of the blob at sha.
	GetBlob(ctx context.Context, sha string) ([]byte, error)

	// GetInstallationID looks up the app installation covering the target
	// repository, authenticating with the signed app assertion.
	GetInstallationID(ctx context.Context, assertion string) (int64, error)

	// CreateInstallationToken exchanges the assertion for an opaque
	// installation access token.
	CreateInstallationToken(ctx context.Context, assertion string, installationID int64) (string, error)
}
