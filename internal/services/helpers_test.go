package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/mlevkov/pagekeeper/internal/githost"
	"github.com/mlevkov/pagekeeper/internal/logging"
	"github.com/mlevkov/pagekeeper/internal/publish"
)

// fakeHost implements githost.Client for service tests, recording every
// provider call so assertions can inspect exactly what went over the wire.
type fakeHost struct {
	branchSHA string
	branchErr error
	tree      []githost.TreeEntry
	blobData  map[string][]byte

	refErr error

	blobEncodings []string
	blobContents  []string
	treeBase      string
	treeEntries   []githost.TreeEntry
	commitMsg     string
	parents       []string
	updatedTo     string
	token         string

	nextBlob int
}

func (f *fakeHost) SetToken(token string) { f.token = token }

func (f *fakeHost) GetBranchSHA(ctx context.Context, branch string) (string, error) {
	return f.branchSHA, f.branchErr
}

func (f *fakeHost) CreateBlob(ctx context.Context, content, encoding string) (string, error) {
	f.blobEncodings = append(f.blobEncodings, encoding)
	f.blobContents = append(f.blobContents, content)
	f.nextBlob++
	return fmt.Sprintf("blob-%d", f.nextBlob), nil
}

func (f *fakeHost) CreateTree(ctx context.Context, baseTree string, entries []githost.TreeEntry) (string, error) {
	f.treeBase = baseTree
	f.treeEntries = entries
	return "tree-sha", nil
}

func (f *fakeHost) CreateCommit(ctx context.Context, message, treeSHA string, parents []string) (string, error) {
	f.commitMsg = message
	f.parents = parents
	return "commit-sha", nil
}

func (f *fakeHost) UpdateBranch(ctx context.Context, branch, sha string) error {
	if f.refErr != nil {
		return f.refErr
	}
	f.updatedTo = sha
	return nil
}

func (f *fakeHost) ListTree(ctx context.Context, sha string) ([]githost.TreeEntry, error) {
	return f.tree, nil
}

func (f *fakeHost) GetBlob(ctx context.Context, sha string) ([]byte, error) {
	data, ok := f.blobData[sha]
	if !ok {
		return nil, fmt.Errorf("no blob %s", sha)
	}
	return data, nil
}

func (f *fakeHost) GetInstallationID(ctx context.Context, assertion string) (int64, error) {
	return 42, nil
}

func (f *fakeHost) CreateInstallationToken(ctx context.Context, assertion string, id int64) (string, error) {
	return "ghs_tok", nil
}

func (f *fakeHost) treeEntry(path string) (githost.TreeEntry, bool) {
	for _, e := range f.treeEntries {
		if e.Path == path {
			return e, true
		}
	}
	return githost.TreeEntry{}, false
}

type staticTokens string

func (s staticTokens) Get(ctx context.Context) (string, error) { return string(s), nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestPipeline(host githost.Client) *publish.Pipeline {
	return publish.NewPipeline(host, staticTokens("tok"), "main", testLogger())
}

func strPtr(s string) *string { return &s }

func emptyContent(t *testing.T) *Content {
	t.Helper()
	c := &Content{}
	c.Site.ApplyDefaults()
	return c
}
