// Package services contains the application services of the publisher:
// session authentication, content loading, and the publish operations that
// assemble commit transactions for the pipeline.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mlevkov/pagekeeper/internal/githost"
	"github.com/mlevkov/pagekeeper/internal/logging"
	"github.com/mlevkov/pagekeeper/internal/models"
	"github.com/mlevkov/pagekeeper/internal/publish"
)

// Repository paths of the JSON collection documents.
const (
	siteConfigPath      = "config.json"
	postsAdminPath      = "data/posts.json"
	postsPublicPath     = "data/posts.public.json"
	categoriesPath      = "data/categories.json"
	cardsPath           = "data/cards.json"
	socialPath          = "data/social.json"
	galleriesAdminPath  = "data/galleries.json"
	galleriesPublicPath = "data/galleries.public.json"
)

// Content is the in-memory working copy of the site's collection documents
// for one edit session. Services mutate it only after a remote transaction
// fully succeeds; a failed publish leaves it untouched.
type Content struct {
	Posts      []models.PostIndexEntry
	Categories []models.Category
	Cards      []models.CardPreset
	Social     []models.SocialButton
	Galleries  []models.Gallery
	Site       models.SiteConfig

	// snapshots taken at load time; batch deletions are computed as the
	// set difference between a snapshot and the current list at save time
	PostsSnapshot     []models.PostIndexEntry
	GalleriesSnapshot []models.Gallery
}

// ContentService loads the working copy from the publish branch.
type ContentService struct {
	client githost.Client
	tokens publish.TokenSource
	branch string
	log    logging.Logger
}

func NewContentService(client githost.Client, tokens publish.TokenSource, branch string, log logging.Logger) *ContentService {
	return &ContentService{client: client, tokens: tokens, branch: branch, log: log}
}

// Load reads every collection document at the current branch tip. Missing
// documents yield empty collections (a freshly initialized site has none).
func (s *ContentService) Load(ctx context.Context) (*Content, error) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.client.SetToken(token)

	tip, err := s.client.GetBranchSHA(ctx, s.branch)
	if err != nil {
		return nil, fmt.Errorf("reading branch tip: %w", err)
	}

	entries, err := s.client.ListTree(ctx, tip)
	if err != nil {
		return nil, fmt.Errorf("listing tree: %w", err)
	}

	blobs := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Type == "blob" && e.SHA != nil {
			blobs[e.Path] = *e.SHA
		}
	}

	c := &Content{}
	docs := []struct {
		path string
		into any
	}{
		{siteConfigPath, &c.Site},
		{postsAdminPath, &c.Posts},
		{categoriesPath, &c.Categories},
		{cardsPath, &c.Cards},
		{socialPath, &c.Social},
		{galleriesAdminPath, &c.Galleries},
	}
	for _, d := range docs {
		sha, ok := blobs[d.path]
		if !ok {
			continue
		}
		raw, err := s.client.GetBlob(ctx, sha)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", d.path, err)
		}
		if err := json.Unmarshal(raw, d.into); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", d.path, err)
		}
	}

	c.Site.ApplyDefaults()
	c.PostsSnapshot = append([]models.PostIndexEntry(nil), c.Posts...)
	c.GalleriesSnapshot = append([]models.Gallery(nil), c.Galleries...)

	s.log.Debug(ctx, "loaded content", "tip", tip,
		"posts", len(c.Posts), "galleries", len(c.Galleries))
	return c, nil
}
