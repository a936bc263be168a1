// Package models defines the typed collection documents stored as
// pretty-printed JSON in the content repository. Each collection has a
// designated key field enforcing uniqueness (slug, id, or url).
package models

import "time"

// PostIndexEntry is one row of the post index. Key: Slug.
type PostIndexEntry struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Category string    `json:"category,omitempty"`
	Cover    string    `json:"cover,omitempty"`
	Hidden   bool      `json:"hidden,omitempty"`
	Order    int       `json:"order,omitempty"`
}

// Key returns the uniqueness key of the entry.
func (p PostIndexEntry) Key() string { return p.Slug }

// Category is one row of the category list. Key: ID.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order,omitempty"`
}

func (c Category) Key() string { return c.ID }
