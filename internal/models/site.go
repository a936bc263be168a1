package models

// CardPreset is a stored card layout/style preset. Key: ID.
type CardPreset struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	W      int    `json:"w"`
	H      int    `json:"h"`
	Style  string `json:"style,omitempty"`
	Order  int    `json:"order,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

func (c CardPreset) Key() string { return c.ID }

// SocialButton is one external link button. Key: URL.
type SocialButton struct {
	URL   string `json:"url"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Order int    `json:"order,omitempty"`
}

func (s SocialButton) Key() string { return s.URL }

// Gallery is a named set of image paths. Key: ID.
type Gallery struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Images []string `json:"images"`
	Hidden bool     `json:"hidden,omitempty"`
}

func (g Gallery) Key() string { return g.ID }

// SiteConfig is the repository-wide site configuration (config.json).
type SiteConfig struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Theme       string `json:"theme,omitempty"`

	// KeyCacheAck mirrors the local acknowledged-risk flag into site
	// configuration, per the original publishing contract.
	KeyCacheAck bool `json:"keyCacheAck,omitempty"`
}

// ApplyDefaults fills optional fields that readers expect to be present.
func (c *SiteConfig) ApplyDefaults() {
	if c.Title == "" {
		c.Title = "Untitled site"
	}
	if c.Theme == "" {
		c.Theme = "light"
	}
}
