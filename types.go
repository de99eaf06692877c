package printsite

import (
	"fmt"

	"github.com/ssgraphics/printsite/content"
)

// Page is one entry of the static route table.
type Page struct {
	Slug        string // "home", "about", ...
	Name        string // nav label
	Path        string // canonical path with trailing slash
	Title       string
	Description string
	Sections    []string // scroll-reveal section keys
	Carousel    bool     // page hosts the portfolio carousel
}

// Pages builds the route table. Section keys that repeat per catalog entry
// are derived from the catalog so the tracker observes every rendered card.
func Pages(c *content.Catalog) []Page {
	return []Page{
		{
			Slug:        "home",
			Name:        "Home",
			Path:        "/",
			Title:       c.Business.Name,
			Description: c.Business.Tagline,
			Sections:    append([]string{"hero", "highlights", "services-preview", "cta"}, indexed("highlight", len(c.Highlights))...),
		},
		{
			Slug:        "about",
			Name:        "About",
			Path:        "/about/",
			Title:       "About Us",
			Description: fmt.Sprintf("The story of %s.", c.Business.Name),
			Sections:    []string{"story", "values", "timeline", "team"},
		},
		{
			Slug:        "services",
			Name:        "Services",
			Path:        "/services/",
			Title:       "Our Services",
			Description: "Offset, digital, wedding and business printing.",
			Sections:    append([]string{"services-intro", "process"}, indexed("service", len(c.Services))...),
		},
		{
			Slug:        "portfolio",
			Name:        "Portfolio",
			Path:        "/portfolio/",
			Title:       "Our Sample Works",
			Description: "Explore our portfolio of high-quality printing projects and creative designs.",
			Sections: concat(
				[]string{"intro", "filters", "carousel", "grid-header", "process", "portfolio-cta"},
				indexed("sample", len(c.Samples)),
				indexed("process", len(c.Process)),
			),
			Carousel: true,
		},
		{
			Slug:        "equipment",
			Name:        "Equipment",
			Path:        "/equipment/",
			Title:       "Our Equipment",
			Description: "The presses and finishing machines behind every job.",
			Sections:    append([]string{"equipment-intro", "capabilities"}, indexed("equipment", len(c.Equipment))...),
		},
		{
			Slug:        "contact",
			Name:        "Contact",
			Path:        "/contact/",
			Title:       "Contact Us",
			Description: fmt.Sprintf("Get in touch with %s.", c.Business.Name),
			Sections:    []string{"contact-info", "contact-form", "map"},
		},
	}
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func indexed(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return out
}

// PageBySlug finds a page in the route table.
func PageBySlug(pages []Page, slug string) (Page, bool) {
	for _, p := range pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}
