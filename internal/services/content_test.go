package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/pagekeeper/internal/githost"
)

func TestContentLoad(t *testing.T) {
	host := &fakeHost{
		branchSHA: "tip",
		tree: []githost.TreeEntry{
			{Path: "config.json", Type: "blob", SHA: strPtr("s1")},
			{Path: "data/posts.json", Type: "blob", SHA: strPtr("s2")},
			{Path: "data/social.json", Type: "blob", SHA: strPtr("s3")},
			{Path: "posts/hello/index.md", Type: "blob", SHA: strPtr("s4")},
			{Path: "data", Type: "tree"},
		},
		blobData: map[string][]byte{
			"s1": []byte(`{"title":"My site","theme":"dark"}`),
			"s2": []byte(`[{"slug":"hello","title":"Hello","hidden":true}]`),
			"s3": []byte(`[{"url":"https://example.com","label":"Example"}]`),
		},
	}
	svc := NewContentService(host, staticTokens("tok"), "main", testLogger())

	c, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok", host.token)
	assert.Equal(t, "My site", c.Site.Title)
	assert.Equal(t, "dark", c.Site.Theme)

	require.Len(t, c.Posts, 1)
	assert.Equal(t, "hello", c.Posts[0].Slug)
	assert.True(t, c.Posts[0].Hidden)

	require.Len(t, c.Social, 1)
	assert.Empty(t, c.Galleries)
	assert.Empty(t, c.Cards)

	assert.Equal(t, c.Posts, c.PostsSnapshot)
}

func TestContentLoad_EmptyRepository(t *testing.T) {
	host := &fakeHost{branchSHA: "tip"}
	svc := NewContentService(host, staticTokens("tok"), "main", testLogger())

	c, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, c.Posts)
	assert.Empty(t, c.Galleries)
	assert.Equal(t, "Untitled site", c.Site.Title)
	assert.Equal(t, "light", c.Site.Theme)
}

func TestContentLoad_BadDocument(t *testing.T) {
	host := &fakeHost{
		branchSHA: "tip",
		tree: []githost.TreeEntry{
			{Path: "data/posts.json", Type: "blob", SHA: strPtr("s1")},
		},
		blobData: map[string][]byte{"s1": []byte("not json")},
	}
	svc := NewContentService(host, staticTokens("tok"), "main", testLogger())

	_, err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data/posts.json")
}
