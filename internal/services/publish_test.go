package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/pagekeeper/internal/common"
	"github.com/mlevkov/pagekeeper/internal/githost"
	"github.com/mlevkov/pagekeeper/internal/models"
	"github.com/mlevkov/pagekeeper/internal/publish"
)

func newPublishFixture(t *testing.T, content *Content) (*fakeHost, PublishService) {
	t.Helper()
	host := &fakeHost{branchSHA: "base-sha"}
	svc := NewPublishService(host, newTestPipeline(host), content, testLogger())
	return host, svc
}

func TestPublishPost_FirstPost(t *testing.T) {
	content := emptyContent(t)
	host, svc := newPublishFixture(t, content)

	img := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	form := PostForm{
		Slug:      "hello-world",
		Title:     "Hello, world",
		Date:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CoverName: "pic.png",
		Markdown:  "# Hello\n\n![pic](assets/pic.png)\n",
	}
	uploads := []AssetUpload{{Name: "pic.png", Data: img}}

	sha, err := svc.PublishPost(context.Background(), form, uploads, nil)
	require.NoError(t, err)
	assert.Equal(t, "commit-sha", sha)

	// one blob per text file plus one for the image
	assert.Equal(t, []string{"utf-8", "utf-8", "utf-8", "utf-8", "base64"}, host.blobEncodings)

	require.Len(t, host.treeEntries, 5)
	assert.Equal(t, "base-sha", host.treeBase)
	assetPath := publish.AssetPath("posts/hello-world/assets", img, "pic.png")
	for _, path := range []string{
		"posts/hello-world/index.md",
		"data/posts.json",
		"data/posts.public.json",
		"config.json",
		assetPath,
	} {
		_, ok := host.treeEntry(path)
		assert.True(t, ok, "missing tree entry %s", path)
	}

	assert.Equal(t, "publish: hello-world", host.commitMsg)
	assert.Equal(t, []string{"base-sha"}, host.parents)
	assert.Equal(t, "commit-sha", host.updatedTo)

	require.Len(t, content.Posts, 1)
	assert.Equal(t, assetPath, content.Posts[0].Cover)
}

func TestPublishPost_HiddenPostSkipsPublicIndex(t *testing.T) {
	content := emptyContent(t)
	host, svc := newPublishFixture(t, content)

	form := PostForm{Slug: "draft", Title: "Draft", Hidden: true, Markdown: "wip"}
	_, err := svc.PublishPost(context.Background(), form, nil, nil)
	require.NoError(t, err)

	// a hidden post does not change the public view, so its document is untouched
	_, ok := host.treeEntry("data/posts.public.json")
	assert.False(t, ok)
	_, ok = host.treeEntry("data/posts.json")
	assert.True(t, ok)
}

func TestPublishPost_DedupesIdenticalUploads(t *testing.T) {
	content := emptyContent(t)
	host, svc := newPublishFixture(t, content)

	img := []byte("same bytes")
	uploads := []AssetUpload{
		{Name: "inline.png", Data: img},
		{Name: "cover.png", Data: img},
	}
	form := PostForm{Slug: "hello-world", Title: "Hello", CoverName: "cover.png", Markdown: "x"}

	_, err := svc.PublishPost(context.Background(), form, uploads, nil)
	require.NoError(t, err)

	base64Blobs := 0
	for _, enc := range host.blobEncodings {
		if enc == "base64" {
			base64Blobs++
		}
	}
	assert.Equal(t, 1, base64Blobs)
}

func TestPublishPost_CoverMustBeUploaded(t *testing.T) {
	content := emptyContent(t)
	_, svc := newPublishFixture(t, content)

	form := PostForm{Slug: "p", Title: "P", CoverName: "missing.png", Markdown: "x"}
	_, err := svc.PublishPost(context.Background(), form, []AssetUpload{{Name: "other.png", Data: []byte{1}}}, nil)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestPublishPost_ConflictLeavesWorkingCopyUntouched(t *testing.T) {
	content := emptyContent(t)
	host, svc := newPublishFixture(t, content)
	host.refErr = common.ErrConflict

	form := PostForm{Slug: "p", Title: "P", Markdown: "x"}
	_, err := svc.PublishPost(context.Background(), form, nil, nil)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Empty(t, content.Posts)
}

func TestPublishPost_PublicIndexPayload(t *testing.T) {
	content := emptyContent(t)
	host, svc := newPublishFixture(t, content)

	form := PostForm{Slug: "p", Title: "Visible", Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Markdown: "x"}
	_, err := svc.PublishPost(context.Background(), form, nil, nil)
	require.NoError(t, err)

	// the public document content travels as the third utf-8 blob
	var doc []models.PostIndexEntry
	require.NoError(t, json.Unmarshal([]byte(host.blobContents[2]), &doc))
	require.Len(t, doc, 1)
	assert.Equal(t, "Visible", doc[0].Title)
}

func TestDeletePost(t *testing.T) {
	content := emptyContent(t)
	content.Posts = []models.PostIndexEntry{{Slug: "old", Title: "Old"}}
	content.PostsSnapshot = append([]models.PostIndexEntry(nil), content.Posts...)

	host, svc := newPublishFixture(t, content)
	host.tree = []githost.TreeEntry{
		{Path: "posts/old/index.md", Type: "blob"},
		{Path: "posts/old/assets/aa11bb22cc33dd44.png", Type: "blob"},
		{Path: "posts/keep/index.md", Type: "blob"},
		{Path: "posts/old", Type: "tree"},
	}

	sha, err := svc.DeletePost(context.Background(), "old", nil)
	require.NoError(t, err)
	assert.Equal(t, "commit-sha", sha)

	entry, ok := host.treeEntry("posts/old/index.md")
	require.True(t, ok)
	assert.Nil(t, entry.SHA)
	entry, ok = host.treeEntry("posts/old/assets/aa11bb22cc33dd44.png")
	require.True(t, ok)
	assert.Nil(t, entry.SHA)
	_, ok = host.treeEntry("posts/keep/index.md")
	assert.False(t, ok)

	assert.Equal(t, "delete: old", host.commitMsg)
	assert.Empty(t, content.Posts)
}

func TestDeletePost_Unknown(t *testing.T) {
	content := emptyContent(t)
	_, svc := newPublishFixture(t, content)

	_, err := svc.DeletePost(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveIndex_RemovesFoldersOfDroppedPosts(t *testing.T) {
	content := emptyContent(t)
	content.PostsSnapshot = []models.PostIndexEntry{{Slug: "a"}, {Slug: "b"}}
	content.Posts = []models.PostIndexEntry{{Slug: "a"}}

	host, svc := newPublishFixture(t, content)
	host.tree = []githost.TreeEntry{
		{Path: "posts/b/index.md", Type: "blob"},
		{Path: "posts/a/index.md", Type: "blob"},
	}

	_, err := svc.SaveIndex(context.Background(), nil)
	require.NoError(t, err)

	entry, ok := host.treeEntry("posts/b/index.md")
	require.True(t, ok)
	assert.Nil(t, entry.SHA)
	_, ok = host.treeEntry("posts/a/index.md")
	assert.False(t, ok)

	// snapshot catches up so a second save sees nothing to delete
	assert.Equal(t, content.Posts, content.PostsSnapshot)
}
