package scraper

// SiteConfig defines where a news site lives and how its listing pages are
// laid out. Every site-specific selector lives here so a markup change only
// touches one adapter's defaults.
type SiteConfig struct {
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	MaxPages int           `yaml:"max_pages" json:"max_pages"` // 0 means no cap
	List     ListConfig    `yaml:"list" json:"list"`
	Article  ArticleConfig `yaml:"article" json:"article"`
}

// ListConfig defines how to find articles on a listing page and whether the
// page links to a following one.
type ListConfig struct {
	ArticleSelector    string `yaml:"article_selector" json:"article_selector"`
	PaginationSelector string `yaml:"pagination_selector,omitempty" json:"pagination_selector,omitempty"`
}

// ArticleConfig defines how to pull metadata out of one article element.
// Selectors are relative to the article element.
type ArticleConfig struct {
	TitleSelector    string `yaml:"title_selector" json:"title_selector"`
	CategorySelector string `yaml:"category_selector,omitempty" json:"category_selector,omitempty"`
	DateSelector     string `yaml:"date_selector" json:"date_selector"`
	DateAttr         string `yaml:"date_attr,omitempty" json:"date_attr,omitempty"` // read the date from this attribute instead of text
	LinkSelector     string `yaml:"link_selector,omitempty" json:"link_selector,omitempty"` // defaults to the first a[href]
}

// Merge overlays the non-zero fields of override onto c.
func (c SiteConfig) Merge(override SiteConfig) SiteConfig {
	if override.BaseURL != "" {
		c.BaseURL = override.BaseURL
	}
	if override.MaxPages != 0 {
		c.MaxPages = override.MaxPages
	}
	if override.List.ArticleSelector != "" {
		c.List.ArticleSelector = override.List.ArticleSelector
	}
	if override.List.PaginationSelector != "" {
		c.List.PaginationSelector = override.List.PaginationSelector
	}
	a, o := &c.Article, override.Article
	if o.TitleSelector != "" {
		a.TitleSelector = o.TitleSelector
	}
	if o.CategorySelector != "" {
		a.CategorySelector = o.CategorySelector
	}
	if o.DateSelector != "" {
		a.DateSelector = o.DateSelector
	}
	if o.DateAttr != "" {
		a.DateAttr = o.DateAttr
	}
	if o.LinkSelector != "" {
		a.LinkSelector = o.LinkSelector
	}
	return c
}

// MaxPagesOrUnlimited treats a negative cap as "no cap", which lets a config
// file lift a default cap.
func (c SiteConfig) MaxPagesOrUnlimited() int {
	if c.MaxPages < 0 {
		return 0
	}
	return c.MaxPages
}
