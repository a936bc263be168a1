package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mlevkov/pagekeeper/internal/models"
	"github.com/mlevkov/pagekeeper/internal/publish"
	"github.com/mlevkov/pagekeeper/internal/services"
)

// AddGallery interactively creates an image gallery.
func (a *App) AddGallery(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Gallery title", os.Stdout)
	if err != nil {
		return err
	}
	files, err := getFileList(a.reader, "Image files, comma separated", os.Stdout)
	if err != nil {
		return err
	}
	hidden, err := getYesNo(a.reader, "Hide from the public gallery list?", os.Stdout)
	if err != nil {
		return err
	}

	images := make([]services.AssetUpload, 0, len(files))
	for name, data := range files {
		images = append(images, services.AssetUpload{Name: name, Data: data})
	}

	return a.runPublish(func(observe publish.Observer) (string, error) {
		sha, id, err := a.site.AddGallery(ctx, title, images, hidden, observe)
		if err == nil {
			fmt.Println("Gallery id:", id)
		}
		return sha, err
	})
}

// RemoveGallery deletes galleries by id, including their image files.
func (a *App) RemoveGallery(ctx context.Context) error {
	if len(a.content.Galleries) == 0 {
		fmt.Println("No galleries.")
		return nil
	}
	for _, g := range a.content.Galleries {
		fmt.Printf("  %s  %s (%d images)\n", g.ID, g.Title, len(g.Images))
	}

	answer, err := getSimpleText(a.reader, "Gallery ids to remove, comma separated", os.Stdout)
	if err != nil {
		return err
	}
	ids := splitList(answer)
	if len(ids) == 0 {
		return nil
	}

	return a.runPublish(func(observe publish.Observer) (string, error) {
		return a.site.RemoveGalleries(ctx, ids, observe)
	})
}

// EditSocial manages the social button list: add or update one button,
// remove by url, or reorder.
func (a *App) EditSocial(ctx context.Context) error {
	for _, b := range a.content.Social {
		fmt.Printf("  %2d  %-20s %s\n", b.Order, b.Label, b.URL)
	}

	action, err := getSimpleText(a.reader, "Action: (a)dd, (r)emove, (o)rder", os.Stdout)
	if err != nil {
		return err
	}

	switch action {
	case "a", "add":
		url, err := getSimpleText(a.reader, "URL", os.Stdout)
		if err != nil {
			return err
		}
		label, err := getSimpleText(a.reader, "Label", os.Stdout)
		if err != nil {
			return err
		}
		icon, err := getSimpleText(a.reader, "Icon (optional)", os.Stdout)
		if err != nil {
			return err
		}
		btn := models.SocialButton{URL: url, Label: label, Icon: icon, Order: len(a.content.Social) + 1}
		return a.runPublish(func(observe publish.Observer) (string, error) {
			return a.site.UpsertSocialButton(ctx, btn, observe)
		})

	case "r", "remove":
		answer, err := getSimpleText(a.reader, "URLs to remove, comma separated", os.Stdout)
		if err != nil {
			return err
		}
		urls := splitList(answer)
		if len(urls) == 0 {
			return nil
		}
		return a.runPublish(func(observe publish.Observer) (string, error) {
			return a.site.RemoveSocialButtons(ctx, urls, observe)
		})

	case "o", "order":
		answer, err := getSimpleText(a.reader, "URLs in the new order, comma separated", os.Stdout)
		if err != nil {
			return err
		}
		urls := splitList(answer)
		if len(urls) == 0 {
			return nil
		}
		return a.runPublish(func(observe publish.Observer) (string, error) {
			return a.site.ReorderSocialButtons(ctx, urls, observe)
		})

	default:
		fmt.Println("Unknown action:", action)
		return nil
	}
}

// EditCard interactively adds or updates a card preset.
func (a *App) EditCard(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Preset id (empty for a new one)", os.Stdout)
	if err != nil {
		return err
	}

	var geom [4]int
	for i, name := range []string{"x", "y", "w", "h"} {
		answer, err := getSimpleText(a.reader, name, os.Stdout)
		if err != nil {
			return err
		}
		geom[i], err = strconv.Atoi(answer)
		if err != nil {
			fmt.Println("Not a number:", answer)
			return nil
		}
	}

	style, err := getSimpleText(a.reader, "Style (optional)", os.Stdout)
	if err != nil {
		return err
	}

	preset := models.CardPreset{ID: id, X: geom[0], Y: geom[1], W: geom[2], H: geom[3], Style: style}
	return a.runPublish(func(observe publish.Observer) (string, error) {
		return a.site.UpsertCardPreset(ctx, preset, observe)
	})
}

// EditSite edits the site configuration document. Empty answers keep the
// current values.
func (a *App) EditSite(ctx context.Context) error {
	site := a.content.Site

	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", site.Title), os.Stdout)
	if err != nil {
		return err
	}
	if title != "" {
		site.Title = title
	}

	description, err := getSimpleText(a.reader, "Description", os.Stdout)
	if err != nil {
		return err
	}
	if description != "" {
		site.Description = description
	}

	theme, err := getSimpleText(a.reader, fmt.Sprintf("Theme [%s]", site.Theme), os.Stdout)
	if err != nil {
		return err
	}
	if theme != "" {
		site.Theme = theme
	}

	return a.runPublish(func(observe publish.Observer) (string, error) {
		return a.site.UpdateSiteConfig(ctx, site, observe)
	})
}

func splitList(answer string) []string {
	var out []string
	for _, s := range strings.Split(answer, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
