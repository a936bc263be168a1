package githost

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mlevkov/pagekeeper/internal/common"
)

// HTTPClient implements Client over the provider's JSON HTTP API.
type HTTPClient struct {
	baseURL string
	owner   string
	repo    string
	token   string
	httpc   *http.Client
}

// NewHTTPClient constructs a client for one repository. baseURL is the API
// root without a trailing slash (e.g. "https://api.github.com").
func NewHTTPClient(baseURL, owner, repo string, httpc *http.Client) *HTTPClient {
	if httpc == nil {
		httpc = &http.Client{}
	}
	return &HTTPClient{baseURL: baseURL, owner: owner, repo: repo, httpc: httpc}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

type refResponse struct {
	Object struct {
		SHA string `json:"sha"`
	} `json:"object"`
}

func (c *HTTPClient) GetBranchSHA(ctx context.Context, branch string) (string, error) {
	var resp refResponse
	path := fmt.Sprintf("/repos/%s/%s/git/ref/heads/%s", c.owner, c.repo, branch)
	if err := c.do(ctx, http.MethodGet, path, c.token, nil, &resp); err != nil {
		return "", err
	}
	return resp.Object.SHA, nil
}

type shaResponse struct {
	SHA string `json:"sha"`
}

func (c *HTTPClient) CreateBlob(ctx context.Context, content string, encoding string) (string, error) {
	req := struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}{Content: content, Encoding: encoding}

	var resp shaResponse
	path := fmt.Sprintf("/repos/%s/%s/git/blobs", c.owner, c.repo)
	if err := c.do(ctx, http.MethodPost, path, c.token, req, &resp); err != nil {
		return "", err
	}
	return resp.SHA, nil
}

func (c *HTTPClient) CreateTree(ctx context.Context, baseTree string, entries []TreeEntry) (string, error) {
	req := struct {
		BaseTree string      `json:"base_tree"`
		Tree     []TreeEntry `json:"tree"`
	}{BaseTree: baseTree, Tree: entries}

	var resp shaResponse
	path := fmt.Sprintf("/repos/%s/%s/git/trees", c.owner, c.repo)
	if err := c.do(ctx, http.MethodPost, path, c.token, req, &resp); err != nil {
		return "", err
	}
	return resp.SHA, nil
}

func (c *HTTPClient) CreateCommit(ctx context.Context, message string, treeSHA string, parents []string) (string, error) {
	req := struct {
		Message string   `json:"message"`
		Tree    string   `json:"tree"`
		Parents []string `json:"parents"`
	}{Message: message, Tree: treeSHA, Parents: parents}

	var resp shaResponse
	path := fmt.Sprintf("/repos/%s/%s/git/commits", c.owner, c.repo)
	if err := c.do(ctx, http.MethodPost, path, c.token, req, &resp); err != nil {
		return "", err
	}
	return resp.SHA, nil
}

func (c *HTTPClient) UpdateBranch(ctx context.Context, branch string, sha string) error {
	req := struct {
		SHA string `json:"sha"`
	}{SHA: sha}

	path := fmt.Sprintf("/repos/%s/%s/git/refs/heads/%s", c.owner, c.repo, branch)
	err := c.do(ctx, http.MethodPatch, path, c.token, req, nil)
	if err != nil {
		// The provider rejects a non-fast-forward update with an
		// unprocessable-entity status rather than a plain conflict.
		var pe *providerError
		if errors.As(err, &pe) && pe.status == http.StatusUnprocessableEntity {
			return fmt.Errorf("%w: %s", common.ErrConflict, pe.message)
		}
		return err
	}
	return nil
}

type treeListResponse struct {
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

func (c *HTTPClient) ListTree(ctx context.Context, sha string) ([]TreeEntry, error) {
	var resp treeListResponse
	path := fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1", c.owner, c.repo, sha)
	if err := c.do(ctx, http.MethodGet, path, c.token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tree, nil
}

type blobResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

func (c *HTTPClient) GetBlob(ctx context.Context, sha string) ([]byte, error) {
	var resp blobResponse
	path := fmt.Sprintf("/repos/%s/%s/git/blobs/%s", c.owner, c.repo, sha)
	if err := c.do(ctx, http.MethodGet, path, c.token, nil, &resp); err != nil {
		return nil, err
	}

	switch resp.Encoding {
	case "base64":
		// the provider wraps base64 payloads in newlines
		raw, err := base64.StdEncoding.DecodeString(stripWhitespace(resp.Content))
		if err != nil {
			return nil, fmt.Errorf("decoding blob %s: %w", sha, err)
		}
		return raw, nil
	case "utf-8":
		return []byte(resp.Content), nil
	default:
		return nil, fmt.Errorf("blob %s: unknown encoding %q", sha, resp.Encoding)
	}
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' {
			return -1
		}
		return r
	}, s)
}

func (c *HTTPClient) GetInstallationID(ctx context.Context, assertion string) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	path := fmt.Sprintf("/repos/%s/%s/installation", c.owner, c.repo)
	if err := c.do(ctx, http.MethodGet, path, assertion, nil, &resp); err != nil {
		return 0, fmt.Errorf("%w: installation lookup: %w", common.ErrAuth, err)
	}
	return resp.ID, nil
}

func (c *HTTPClient) CreateInstallationToken(ctx context.Context, assertion string, installationID int64) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	path := fmt.Sprintf("/app/installations/%d/access_tokens", installationID)
	if err := c.do(ctx, http.MethodPost, path, assertion, struct{}{}, &resp); err != nil {
		return "", fmt.Errorf("%w: token exchange: %w", common.ErrAuth, err)
	}
	return resp.Token, nil
}

// providerError keeps the raw status around so callers can refine the
// mapping (UpdateBranch turns 422 into ErrConflict).
type providerError struct {
	status  int
	message string
	wrapped error
}

func (e *providerError) Error() string {
	return fmt.Sprintf("provider responded %d: %s", e.status, e.message)
}

func (e *providerError) Unwrap() error { return e.wrapped }

// do performs one JSON round-trip. body==nil sends no payload; out==nil
// discards the response body.
func (c *HTTPClient) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// mapError converts a non-2xx provider response into a sentinel-wrapped
// error so callers can classify it with errors.Is.
func (c *HTTPClient) mapError(resp *http.Response) error {
	msg := readProviderMessage(resp.Body)

	pe := &providerError{status: resp.StatusCode, message: msg}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		pe.wrapped = common.ErrAuth
	case http.StatusNotFound:
		pe.wrapped = common.ErrNotFound
	case http.StatusConflict:
		pe.wrapped = common.ErrConflict
	}
	return pe
}

func readProviderMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Message != "" {
		return e.Message
	}
	return string(raw)
}
