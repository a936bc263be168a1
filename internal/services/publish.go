package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mlevkov/pagekeeper/internal/common"
	"github.com/mlevkov/pagekeeper/internal/githost"
	"github.com/mlevkov/pagekeeper/internal/index"
	"github.com/mlevkov/pagekeeper/internal/logging"
	"github.com/mlevkov/pagekeeper/internal/models"
	"github.com/mlevkov/pagekeeper/internal/publish"
)

// PostForm carries everything the UI collects for one post.
type PostForm struct {
	Slug     string
	Title    string
	Category string
	Date     time.Time
	Hidden   bool
	Markdown string

	// CoverName names the uploaded asset to use as the cover; empty means
	// no cover. When set, it must match one of the uploads.
	CoverName string
}

// AssetUpload is one user-selected binary file.
type AssetUpload struct {
	Name string
	Data []byte
}

// PublishService assembles commit transactions for post operations and
// runs them through the pipeline. Every operation is one atomic commit.
type PublishService interface {
	// PublishPost creates or updates a post: its markdown body, its
	// assets (deduplicated), both post indexes, and the site config
	// document, all in a single commit. Returns the new commit sha.
	PublishPost(ctx context.Context, form PostForm, uploads []AssetUpload, observe publish.Observer) (string, error)

	// DeletePost removes the post's whole folder (markdown and assets)
	// and its index entries in a single commit. common.ErrNotFound when
	// the slug is absent from the index.
	DeletePost(ctx context.Context, slug string, observe publish.Observer) (string, error)

	// SaveIndex writes the current in-memory post index back, deleting
	// the folders of every post removed since the edit-session snapshot.
	// Edits are last-write-wins per key, not merged.
	SaveIndex(ctx context.Context, observe publish.Observer) (string, error)
}

type publishService struct {
	client   githost.Client
	pipeline *publish.Pipeline
	content  *Content
	log      logging.Logger
}

func NewPublishService(client githost.Client, pipeline *publish.Pipeline, content *Content, log logging.Logger) PublishService {
	return &publishService{client: client, pipeline: pipeline, content: content, log: log}
}

func postDir(slug string) string      { return "posts/" + slug }
func postBodyPath(slug string) string { return "posts/" + slug + "/index.md" }
func postAssetDir(slug string) string { return "posts/" + slug + "/assets" }

func newestFirst(a, b models.PostIndexEntry) bool { return a.Date.After(b.Date) }

func (s *publishService) PublishPost(ctx context.Context, form PostForm, uploads []AssetUpload, observe publish.Observer) (string, error) {
	if err := validatePostForm(form, uploads); err != nil {
		return "", err
	}
	if form.Date.IsZero() {
		form.Date = time.Now().UTC()
	}

	assets := make([]publish.Asset, 0, len(uploads))
	coverPath := ""
	for _, u := range uploads {
		p := publish.AssetPath(postAssetDir(form.Slug), u.Data, u.Name)
		assets = append(assets, publish.Asset{Path: p, Data: u.Data})
		if form.CoverName != "" && u.Name == form.CoverName {
			coverPath = p
		}
	}
	if form.CoverName != "" && coverPath == "" {
		return "", fmt.Errorf("%w: cover %q is not among the uploaded files", common.ErrValidation, form.CoverName)
	}

	entry := models.PostIndexEntry{
		Slug:     form.Slug,
		Title:    form.Title,
		Date:     form.Date,
		Category: form.Category,
		Cover:    coverPath,
		Hidden:   form.Hidden,
	}
	posts := index.SortBy(index.UpsertByKey(s.content.Posts, entry), newestFirst)

	texts, err := s.indexTexts(posts, form.Slug, form.Markdown)
	if err != nil {
		return "", err
	}

	tx := publish.Transaction{
		Message: "publish: " + form.Slug,
		Texts:   texts,
		Assets:  assets,
	}

	sha, err := s.pipeline.Publish(ctx, tx, observe)
	if err != nil {
		return "", err
	}

	// optimistic update of the working copy strictly after remote success
	s.content.Posts = posts
	return sha, nil
}

func (s *publishService) DeletePost(ctx context.Context, slug string, observe publish.Observer) (string, error) {
	if !hasPost(s.content.Posts, slug) {
		return "", fmt.Errorf("%w: post %q", common.ErrNotFound, slug)
	}

	deletes, err := s.listPostFiles(ctx, slug)
	if err != nil {
		return "", err
	}

	posts := index.RemoveByKeys(s.content.Posts, []string{slug})
	texts, err := s.indexTexts(posts, "", "")
	if err != nil {
		return "", err
	}

	tx := publish.Transaction{
		Message: "delete: " + slug,
		Texts:   texts,
		Deletes: deletes,
	}

	sha, err := s.pipeline.Publish(ctx, tx, observe)
	if err != nil {
		return "", err
	}

	s.content.Posts = posts
	return sha, nil
}

func (s *publishService) SaveIndex(ctx context.Context, observe publish.Observer) (string, error) {
	removed := index.DeletedKeys(s.content.PostsSnapshot, s.content.Posts)

	var deletes []string
	for _, slug := range removed {
		files, err := s.listPostFiles(ctx, slug)
		if err != nil {
			return "", err
		}
		deletes = append(deletes, files...)
	}

	texts, err := s.indexTexts(s.content.Posts, "", "")
	if err != nil {
		return "", err
	}

	tx := publish.Transaction{
		Message: "update post index",
		Texts:   texts,
		Deletes: deletes,
	}

	sha, err := s.pipeline.Publish(ctx, tx, observe)
	if err != nil {
		return "", err
	}

	s.content.PostsSnapshot = append([]models.PostIndexEntry(nil), s.content.Posts...)
	return sha, nil
}

// indexTexts renders the text files of a post transaction: the optional
// markdown body, the admin index, the public index (only when its content
// actually changed), and the site config document.
//
// The admin and public documents are always part of the same transaction,
// so no commit can leave them disagreeing.
func (s *publishService) indexTexts(posts []models.PostIndexEntry, slug, markdown string) ([]publish.TextFile, error) {
	var texts []publish.TextFile

	if slug != "" {
		texts = append(texts, publish.TextFile{Path: postBodyPath(slug), Content: markdown})
	}

	adminDoc, err := index.MarshalDocument(posts)
	if err != nil {
		return nil, err
	}
	texts = append(texts, publish.TextFile{Path: postsAdminPath, Content: string(adminDoc)})

	hidden := func(p models.PostIndexEntry) bool { return p.Hidden }
	oldPublic, err := index.MarshalDocument(index.FilterVisible(s.content.Posts, hidden))
	if err != nil {
		return nil, err
	}
	newPublic, err := index.MarshalDocument(index.FilterVisible(posts, hidden))
	if err != nil {
		return nil, err
	}
	if string(oldPublic) != string(newPublic) {
		texts = append(texts, publish.TextFile{Path: postsPublicPath, Content: string(newPublic)})
	}

	siteDoc, err := index.MarshalDocument(s.content.Site)
	if err != nil {
		return nil, err
	}
	texts = append(texts, publish.TextFile{Path: siteConfigPath, Content: string(siteDoc)})

	return texts, nil
}

// listPostFiles enumerates every file under the post's folder at the
// current branch tip via the recursive tree listing.
func (s *publishService) listPostFiles(ctx context.Context, slug string) ([]string, error) {
	tip, err := s.client.GetBranchSHA(ctx, s.pipelineBranch())
	if err != nil {
		return nil, err
	}
	entries, err := s.client.ListTree(ctx, tip)
	if err != nil {
		return nil, err
	}

	prefix := postDir(slug) + "/"
	var files []string
	for _, e := range entries {
		if e.Type == "blob" && strings.HasPrefix(e.Path, prefix) {
			files = append(files, e.Path)
		}
	}
	return files, nil
}

func (s *publishService) pipelineBranch() string { return s.pipeline.Branch() }

func hasPost(posts []models.PostIndexEntry, slug string) bool {
	for _, p := range posts {
		if p.Slug == slug {
			return true
		}
	}
	return false
}

func validatePostForm(form PostForm, uploads []AssetUpload) error {
	switch {
	case form.Slug == "":
		return fmt.Errorf("%w: missing slug", common.ErrValidation)
	case strings.ContainsAny(form.Slug, " /"):
		return fmt.Errorf("%w: slug %q must not contain spaces or slashes", common.ErrValidation, form.Slug)
	case form.Title == "":
		return fmt.Errorf("%w: missing title", common.ErrValidation)
	case form.Markdown == "":
		return fmt.Errorf("%w: empty post body", common.ErrValidation)
	}
	for _, u := range uploads {
		if u.Name == "" || len(u.Data) == 0 {
			return fmt.Errorf("%w: empty file selection", common.ErrValidation)
		}
	}
	return nil
}
