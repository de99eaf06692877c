package views

import (
	"github.com/ssgraphics/printsite/carousel"
	"github.com/ssgraphics/printsite/content"
)

// SiteConfig holds site-wide settings every template needs.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Business    content.Business
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website"
}

// NavLink is one header navigation entry.
type NavLink struct {
	Name   string
	Path   string
	Active bool
}

// CarouselView is the portfolio carousel state at render time.
type CarouselView struct {
	Snapshot carousel.Snapshot
	Filters  []content.Filter
}

// PageData is everything a page template renders from.
type PageData struct {
	Site      SiteConfig
	Meta      PageMeta
	Nav       []NavLink
	Slug      string
	PageID    string // page session id, empty on error pages
	CSRFToken string
	Revealed  map[string]bool
	Catalog   *content.Catalog
	Carousel  *CarouselView
}
