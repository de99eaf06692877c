package views

import (
	"encoding/json"
	"html/template"
	"net/url"
	"path"
	"strings"

	"github.com/ssgraphics/printsite/carousel"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// RevealClass returns the CSS classes for a scroll-reveal section.
func RevealClass(revealed map[string]bool, key string) string {
	if revealed[key] {
		return "scroll-reveal revealed"
	}
	return "scroll-reveal"
}

// NavClass returns CSS classes for a header link, with active variant.
func NavClass(active bool) string {
	if active {
		return "nav-link active"
	}
	return "nav-link"
}

// FilterClass returns CSS classes for a portfolio filter button.
func FilterClass(active bool) string {
	base := "filter-btn"
	if active {
		base += " filter-btn-active"
	}
	return base
}

// IndicatorClass returns CSS classes for a carousel dot.
func IndicatorClass(current bool) string {
	if current {
		return "dot dot-current"
	}
	return "dot"
}

// ThumbURL returns the thumbnail path for a sample id.
func ThumbURL(id string) string {
	return "/portfolio/thumb/" + url.PathEscape(id) + "/"
}

// SampleClass returns CSS classes for a gallery card, marking the card the
// carousel is showing.
func SampleClass(current bool) string {
	if current {
		return "sample sample-current"
	}
	return "sample"
}

// ImageURL returns the public path for a catalog image reference.
func ImageURL(image string) string {
	if image == "" {
		return ""
	}
	return "/public/" + strings.TrimPrefix(image, "/")
}

// CurrentSlide returns the item the carousel is showing, if any.
func CurrentSlide(v *CarouselView) *carousel.Item {
	if v == nil {
		return nil
	}
	item, ok := v.Snapshot.Current()
	if !ok {
		return nil
	}
	return &item
}

// MagnifiedSlide returns the item open in the lightbox, if any.
func MagnifiedSlide(v *CarouselView) *carousel.Item {
	if v == nil {
		return nil
	}
	i := v.Snapshot.Magnified
	if i < 0 || i >= len(v.Snapshot.Items) {
		return nil
	}
	item := v.Snapshot.Items[i]
	return &item
}

// LocalBusinessJsonLD produces a Schema.org LocalBusiness JSON-LD block.
func LocalBusinessJsonLD(cfg SiteConfig) template.JS {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "LocalBusiness",
		"name":     cfg.Name,
		"url":      buildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Business.Phone != "" {
		data["telephone"] = cfg.Business.Phone
	}
	if cfg.Business.Email != "" {
		data["email"] = cfg.Business.Email
	}
	if cfg.Business.Address != "" {
		data["address"] = cfg.Business.Address
	}
	if cfg.Business.Hours != "" {
		data["openingHours"] = cfg.Business.Hours
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}

var funcs = template.FuncMap{
	"revealClass":     RevealClass,
	"navClass":        NavClass,
	"filterClass":     FilterClass,
	"indicatorClass":  IndicatorClass,
	"thumbURL":        ThumbURL,
	"imageURL":        ImageURL,
	"currentSlide":    CurrentSlide,
	"magnifiedSlide":  MagnifiedSlide,
	"sampleClass":     SampleClass,
	"localBusinessLD": LocalBusinessJsonLD,
}
