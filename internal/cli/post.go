package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mlevkov/pagekeeper/internal/publish"
	"github.com/mlevkov/pagekeeper/internal/services"
)

var getMultiline = GetMultiline
var getFileList = GetFileList

// Publish interactively assembles a post and publishes it as one commit.
func (a *App) Publish(ctx context.Context) error {
	slug, err := getSimpleText(a.reader, "Slug", os.Stdout)
	if err != nil {
		return err
	}
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category (optional)", os.Stdout)
	if err != nil {
		return err
	}
	hidden, err := getYesNo(a.reader, "Hide from the public index?", os.Stdout)
	if err != nil {
		return err
	}
	markdown, err := getMultiline(a.reader, "Post body (markdown)", os.Stdout)
	if err != nil {
		return err
	}

	files, err := getFileList(a.reader, "Image files, comma separated (optional)", os.Stdout)
	if err != nil {
		return err
	}
	uploads := make([]services.AssetUpload, 0, len(files))
	for name, data := range files {
		uploads = append(uploads, services.AssetUpload{Name: name, Data: data})
	}

	cover := ""
	if len(uploads) > 0 {
		cover, err = getSimpleText(a.reader, "Cover file name (optional)", os.Stdout)
		if err != nil {
			return err
		}
	}

	form := services.PostForm{
		Slug:      slug,
		Title:     title,
		Category:  category,
		Hidden:    hidden,
		Markdown:  markdown,
		CoverName: cover,
	}
	return a.runPublish(func(observe publish.Observer) (string, error) {
		return a.publisher.PublishPost(ctx, form, uploads, observe)
	})
}

// Delete removes a post and its files. With no argument it prompts for the
// slug.
func (a *App) Delete(ctx context.Context, slug string) error {
	if slug == "" {
		var err error
		slug, err = getSimpleText(a.reader, "Slug to delete", os.Stdout)
		if err != nil {
			return err
		}
	}

	ok, err := getYesNo(a.reader, fmt.Sprintf("Delete %q and all its files?", slug), os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return a.runPublish(func(observe publish.Observer) (string, error) {
		return a.publisher.DeletePost(ctx, slug, observe)
	})
}

// List prints the post index of the working copy.
func (a *App) List(ctx context.Context) error {
	if len(a.content.Posts) == 0 {
		fmt.Println("No posts.")
		return nil
	}
	for _, p := range a.content.Posts {
		marker := " "
		if p.Hidden {
			marker = "H"
		}
		fmt.Printf("%s %s  %-30s %s\n", marker, p.Date.Format("2006-01-02"), p.Slug, p.Title)
	}
	return nil
}

// Save publishes the current index state, deleting the folders of posts
// removed from the working copy since it was loaded.
func (a *App) Save(ctx context.Context) error {
	return a.runPublish(func(observe publish.Observer) (string, error) {
		return a.publisher.SaveIndex(ctx, observe)
	})
}
