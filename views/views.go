// Package views renders the site's pages as templ components.
//
// Markup lives in embedded html/template files; each page is parsed together
// with the shared layout and exposed through templ.ComponentFunc so handlers
// render every page the same way.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home", "about", "services", "portfolio", "equipment", "contact",
	"notfound", "servererror",
}

var pages = mustParse()

func mustParse() map[string]*template.Template {
	layout := template.Must(template.New("layout.html").Funcs(funcs).
		ParseFS(templateFS, "templates/layout.html", "templates/partials.html"))
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t := template.Must(layout.Clone())
		out[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return out
}

func execute(name, tmpl string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("views: unknown page %q", name)
		}
		return t.ExecuteTemplate(w, tmpl, data)
	})
}

// Page renders the full document for d.Slug.
func Page(d PageData) templ.Component {
	return execute(d.Slug, "layout", d)
}

// NotFound renders the 404 page.
func NotFound(d PageData) templ.Component {
	return execute("notfound", "layout", d)
}

// ServerError renders the 500 page.
func ServerError(d PageData) templ.Component {
	return execute("servererror", "layout", d)
}

// CarouselPartial renders only the carousel block, for in-place updates.
func CarouselPartial(d PageData) templ.Component {
	return execute("portfolio", "carousel", d)
}

// GridPartial renders only the sample gallery for the active filter.
func GridPartial(d PageData) templ.Component {
	return execute("portfolio", "grid", d)
}
