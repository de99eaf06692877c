package printsite

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ssgraphics/printsite/views"
)

// pageHandler mounts a fresh page session for every render of p.
func (a *App) pageHandler(p Page) echo.HandlerFunc {
	return func(c echo.Context) error {
		owner, err := ensureVisitor(c)
		if err != nil {
			return err
		}
		ps, err := a.Registry.Open(p, owner)
		if err != nil {
			if errors.Is(err, ErrTooManyPages) {
				// Render without a live session; the page still works,
				// sections just start revealed.
				c.Logger().Warnf("page session cap reached, rendering %s statically", p.Path)
				return Render(c, a.Views.Page(a.staticPageData(c, p)))
			}
			return err
		}
		return Render(c, a.Views.Page(a.pageData(c, ps)))
	}
}

func (a *App) siteConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Business:    a.Catalog.Business,
	}
}

func (a *App) nav(active string) []views.NavLink {
	links := make([]views.NavLink, len(a.Pages))
	for i, p := range a.Pages {
		links[i] = views.NavLink{Name: p.Name, Path: p.Path, Active: p.Slug == active}
	}
	return links
}

func (a *App) baseData(c echo.Context, p Page) views.PageData {
	return views.PageData{
		Site: a.siteConfig(),
		Meta: views.PageMeta{
			Title:       p.Title,
			Description: p.Description,
			URL:         BuildURL(a.Config.URL, strings.Trim(p.Path, "/")),
			OGType:      "website",
		},
		Nav:       a.nav(p.Slug),
		Slug:      p.Slug,
		CSRFToken: CsrfToken(c),
		Revealed:  map[string]bool{},
		Catalog:   a.Catalog,
	}
}

func (a *App) pageData(c echo.Context, ps *PageSession) views.PageData {
	d := a.baseData(c, ps.Page)
	d.PageID = ps.ID
	for _, k := range ps.Tracker.Revealed() {
		d.Revealed[k] = true
	}
	if ps.Carousel != nil {
		d.Carousel = &views.CarouselView{
			Snapshot: ps.Carousel.Snapshot(),
			Filters:  a.Catalog.Filters,
		}
	}
	return d
}

// staticPageData renders p with every section revealed and a paused carousel
// snapshot, for when no page session could be opened.
func (a *App) staticPageData(c echo.Context, p Page) views.PageData {
	d := a.baseData(c, p)
	for _, k := range p.Sections {
		d.Revealed[k] = true
	}
	if p.Carousel {
		d.Carousel = &views.CarouselView{
			Snapshot: staticSnapshot(a.Catalog.CarouselItems()),
			Filters:  a.Catalog.Filters,
		}
	}
	return d
}

func (a *App) errorData(c echo.Context, title string) views.PageData {
	return a.baseData(c, Page{Slug: "error", Title: title})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound && !isAPI(c) {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.errorData(c, "Page not found")))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if isAPI(c) {
			_ = c.JSON(code, map[string]string{"error": http.StatusText(code)})
			return
		}
		_ = RenderStatus(c, code, a.Views.ServerError(a.errorData(c, "Server error")))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func isAPI(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}
