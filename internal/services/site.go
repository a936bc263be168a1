package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mlevkov/pagekeeper/internal/common"
	"github.com/mlevkov/pagekeeper/internal/index"
	"github.com/mlevkov/pagekeeper/internal/logging"
	"github.com/mlevkov/pagekeeper/internal/models"
	"github.com/mlevkov/pagekeeper/internal/publish"
)

// SiteService maintains the non-post collections: galleries, social
// buttons, card presets, and the site configuration. Every mutation is one
// commit transaction.
type SiteService interface {
	AddGallery(ctx context.Context, title string, images []AssetUpload, hidden bool, observe publish.Observer) (commitSHA, galleryID string, err error)
	RemoveGalleries(ctx context.Context, ids []string, observe publish.Observer) (string, error)
	UpsertSocialButton(ctx context.Context, btn models.SocialButton, observe publish.Observer) (string, error)
	RemoveSocialButtons(ctx context.Context, urls []string, observe publish.Observer) (string, error)
	ReorderSocialButtons(ctx context.Context, urls []string, observe publish.Observer) (string, error)
	UpsertCardPreset(ctx context.Context, preset models.CardPreset, observe publish.Observer) (string, error)
	UpdateSiteConfig(ctx context.Context, site models.SiteConfig, observe publish.Observer) (string, error)
}

type siteService struct {
	pipeline *publish.Pipeline
	content  *Content
	log      logging.Logger
}

func NewSiteService(pipeline *publish.Pipeline, content *Content, log logging.Logger) SiteService {
	return &siteService{pipeline: pipeline, content: content, log: log}
}

func galleryAssetDir(id string) string { return "assets/galleries/" + id }

func (s *siteService) AddGallery(ctx context.Context, title string, images []AssetUpload, hidden bool, observe publish.Observer) (string, string, error) {
	if title == "" {
		return "", "", fmt.Errorf("%w: missing gallery title", common.ErrValidation)
	}
	if len(images) == 0 {
		return "", "", fmt.Errorf("%w: empty file selection", common.ErrValidation)
	}
	for _, u := range images {
		if u.Name == "" || len(u.Data) == 0 {
			return "", "", fmt.Errorf("%w: empty file selection", common.ErrValidation)
		}
	}

	id := uuid.NewString()

	assets := make([]publish.Asset, 0, len(images))
	paths := make([]string, 0, len(images))
	for _, u := range images {
		p := publish.AssetPath(galleryAssetDir(id), u.Data, u.Name)
		assets = append(assets, publish.Asset{Path: p, Data: u.Data})
		paths = append(paths, p)
	}

	galleries := index.UpsertByKey(s.content.Galleries, models.Gallery{
		ID:     id,
		Title:  title,
		Images: paths,
		Hidden: hidden,
	})

	texts, err := s.galleryTexts(galleries)
	if err != nil {
		return "", "", err
	}

	sha, err := s.pipeline.Publish(ctx, publish.Transaction{
		Message: "add gallery: " + title,
		Texts:   texts,
		Assets:  assets,
	}, observe)
	if err != nil {
		return "", "", err
	}

	s.content.Galleries = galleries
	return sha, id, nil
}

func (s *siteService) RemoveGalleries(ctx context.Context, ids []string, observe publish.Observer) (string, error) {
	galleries := index.RemoveByKeys(s.content.Galleries, ids)

	// image files of removed galleries go away in the same commit
	var deletes []string
	removed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		removed[id] = struct{}{}
	}
	for _, g := range s.content.Galleries {
		if _, ok := removed[g.ID]; ok {
			deletes = append(deletes, g.Images...)
		}
	}

	texts, err := s.galleryTexts(galleries)
	if err != nil {
		return "", err
	}

	sha, err := s.pipeline.Publish(ctx, publish.Transaction{
		Message: "remove galleries",
		Texts:   texts,
		Deletes: deletes,
	}, observe)
	if err != nil {
		return "", err
	}

	s.content.Galleries = galleries
	return sha, nil
}

func (s *siteService) UpsertSocialButton(ctx context.Context, btn models.SocialButton, observe publish.Observer) (string, error) {
	if btn.URL == "" || btn.Label == "" {
		return "", fmt.Errorf("%w: social button needs url and label", common.ErrValidation)
	}

	buttons := index.UpsertByKey(s.content.Social, btn)
	return s.saveSocial(ctx, buttons, "update social buttons", observe)
}

func (s *siteService) RemoveSocialButtons(ctx context.Context, urls []string, observe publish.Observer) (string, error) {
	buttons := index.RemoveByKeys(s.content.Social, urls)
	return s.saveSocial(ctx, buttons, "remove social buttons", observe)
}

func (s *siteService) ReorderSocialButtons(ctx context.Context, urls []string, observe publish.Observer) (string, error) {
	buttons := index.Reorder(s.content.Social, urls,
		func(b *models.SocialButton, n int) { b.Order = n })
	return s.saveSocial(ctx, buttons, "reorder social buttons", observe)
}

func (s *siteService) saveSocial(ctx context.Context, buttons []models.SocialButton, message string, observe publish.Observer) (string, error) {
	doc, err := index.MarshalDocument(buttons)
	if err != nil {
		return "", err
	}

	sha, err := s.pipeline.Publish(ctx, publish.Transaction{
		Message: message,
		Texts:   []publish.TextFile{{Path: socialPath, Content: string(doc)}},
	}, observe)
	if err != nil {
		return "", err
	}

	s.content.Social = buttons
	return sha, nil
}

func (s *siteService) UpsertCardPreset(ctx context.Context, preset models.CardPreset, observe publish.Observer) (string, error) {
	if preset.ID == "" {
		preset.ID = uuid.NewString()
	}

	cards := index.UpsertByKey(s.content.Cards, preset)

	doc, err := index.MarshalDocument(cards)
	if err != nil {
		return "", err
	}

	sha, err := s.pipeline.Publish(ctx, publish.Transaction{
		Message: "update card presets",
		Texts:   []publish.TextFile{{Path: cardsPath, Content: string(doc)}},
	}, observe)
	if err != nil {
		return "", err
	}

	s.content.Cards = cards
	return sha, nil
}

func (s *siteService) UpdateSiteConfig(ctx context.Context, site models.SiteConfig, observe publish.Observer) (string, error) {
	site.ApplyDefaults()

	doc, err := index.MarshalDocument(site)
	if err != nil {
		return "", err
	}

	sha, err := s.pipeline.Publish(ctx, publish.Transaction{
		Message: "update site config",
		Texts:   []publish.TextFile{{Path: siteConfigPath, Content: string(doc)}},
	}, observe)
	if err != nil {
		return "", err
	}

	s.content.Site = site
	return sha, nil
}

// galleryTexts renders the dual gallery documents: the admin one with all
// entries, the public one without hidden entries, both in one transaction.
func (s *siteService) galleryTexts(galleries []models.Gallery) ([]publish.TextFile, error) {
	adminDoc, err := index.MarshalDocument(galleries)
	if err != nil {
		return nil, err
	}

	hidden := func(g models.Gallery) bool { return g.Hidden }
	publicDoc, err := index.MarshalDocument(index.FilterVisible(galleries, hidden))
	if err != nil {
		return nil, err
	}

	return []publish.TextFile{
		{Path: galleriesAdminPath, Content: string(adminDoc)},
		{Path: galleriesPublicPath, Content: string(publicDoc)},
	}, nil
}
