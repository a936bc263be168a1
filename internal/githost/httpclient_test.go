package githost

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/pagekeeper/internal/common"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewHTTPClient(srv.URL, "alice", "site", srv.Client())
	c.SetToken("inst-token")
	return c
}

func TestGetBranchSHA(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/alice/site/git/ref/heads/main", r.URL.Path)
		assert.Equal(t, "Bearer inst-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

		_, _ = w.Write([]byte(`{"ref":"refs/heads/main","object":{"sha":"abc123","type":"commit"}}`))
	})

	sha, err := c.GetBranchSHA(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)
}

func TestCreateBlob(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/alice/site/git/blobs", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "aGVsbG8=", body["content"])
		assert.Equal(t, "base64", body["encoding"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sha":"blob-sha"}`))
	})

	sha, err := c.CreateBlob(context.Background(), "aGVsbG8=", common.EncodingBase64)
	require.NoError(t, err)
	assert.Equal(t, "blob-sha", sha)
}

func TestCreateTree_WireFormat(t *testing.T) {
	blobSHA := "b1"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		// deletions must serialize as an explicit null sha
		assert.JSONEq(t, `{
			"base_tree": "base",
			"tree": [
				{"path":"posts/hello/index.md","mode":"100644","type":"blob","sha":"b1"},
				{"path":"posts/old/index.md","mode":"100644","type":"blob","sha":null}
			]
		}`, string(raw))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sha":"tree-sha"}`))
	})

	entries := []TreeEntry{
		{Path: "posts/hello/index.md", Mode: common.RegularFileMode, Type: "blob", SHA: &blobSHA},
		{Path: "posts/old/index.md", Mode: common.RegularFileMode, Type: "blob", SHA: nil},
	}

	sha, err := c.CreateTree(context.Background(), "base", entries)
	require.NoError(t, err)
	assert.Equal(t, "tree-sha", sha)
}

func TestCreateCommit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"message":"publish: hello","tree":"t1","parents":["p1"]}`, string(raw))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sha":"c1"}`))
	})

	sha, err := c.CreateCommit(context.Background(), "publish: hello", "t1", []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, "c1", sha)
}

func TestUpdateBranch_FastForward(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/repos/alice/site/git/refs/heads/main", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "c1", body["sha"])

		_, _ = w.Write([]byte(`{"ref":"refs/heads/main"}`))
	})

	require.NoError(t, c.UpdateBranch(context.Background(), "main", "c1"))
}

func TestUpdateBranch_NonFastForwardIsConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Update is not a fast forward"}`))
	})

	err := c.UpdateBranch(context.Background(), "main", "c1")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, err.Error(), "fast forward")
}

func TestListTree(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/alice/site/git/trees/t1", r.URL.Path)
		assert.Equal(t, "recursive=1", r.URL.RawQuery)

		_, _ = w.Write([]byte(`{"tree":[
			{"path":"posts/hello/index.md","mode":"100644","type":"blob","sha":"b1"},
			{"path":"assets/aabbccdd00112233.png","mode":"100644","type":"blob","sha":"b2"}
		],"truncated":false}`))
	})

	entries, err := c.ListTree(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "posts/hello/index.md", entries[0].Path)
}

func TestGetBlob_Base64(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/alice/site/git/blobs/b1", r.URL.Path)
		// the provider chunks base64 content with newlines
		_, _ = w.Write([]byte(`{"content":"aGVs\nbG8=\n","encoding":"base64"}`))
	})

	raw, err := c.GetBlob(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))
}

func TestGetBlob_UnknownEncoding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":"x","encoding":"utf-16"}`))
	})

	_, err := c.GetBlob(context.Background(), "b1")
	assert.Error(t, err)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, common.ErrAuth},
		{"forbidden", http.StatusForbidden, common.ErrAuth},
		{"not found", http.StatusNotFound, common.ErrNotFound},
		{"conflict", http.StatusConflict, common.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})

			_, err := c.GetBranchSHA(context.Background(), "main")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestGetInstallationID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/alice/site/installation", r.URL.Path)
		// app-auth endpoints use the signed assertion, not the cached token
		assert.Equal(t, "Bearer signed.jwt.assertion", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"id":42}`))
	})

	id, err := c.GetInstallationID(context.Background(), "signed.jwt.assertion")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestCreateInstallationToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/app/installations/42/access_tokens", r.URL.Path)
		assert.Equal(t, "Bearer signed.jwt.assertion", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"ghs_opaque","expires_at":"2026-08-29T12:00:00Z"}`))
	})

	tok, err := c.CreateInstallationToken(context.Background(), "signed.jwt.assertion", 42)
	require.NoError(t, err)
	assert.Equal(t, "ghs_opaque", tok)
}

func TestAuthEndpointsWrapErrAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Integration not found"}`))
	})

	_, err := c.GetInstallationID(context.Background(), "assert")
	assert.ErrorIs(t, err, common.ErrAuth)

	_, err = c.CreateInstallationToken(context.Background(), "assert", 1)
	assert.ErrorIs(t, err, common.ErrAuth)
}
