// Package printsite serves the marketing site for a small printing business,
// built with Go, Echo, and templ.
//
// Every rendered page is backed by a server-side page session holding a
// reveal tracker and, on the portfolio page, an autoplaying carousel. The
// browser reports section geometry and carousel clicks to the page session
// API; the session is torn down when the page unloads or goes idle.
package printsite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/ssgraphics/printsite/content"
	"github.com/ssgraphics/printsite/views"
)

// ViewFuncs holds the templ components the App renders. Defaults come from
// the views package; WithViews swaps them.
type ViewFuncs struct {
	Page            func(views.PageData) templ.Component
	CarouselPartial func(views.PageData) templ.Component
	GridPartial     func(views.PageData) templ.Component
	NotFound        func(views.PageData) templ.Component
	ServerError     func(views.PageData) templ.Component
}

// DefaultViews returns the built-in templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Page:            views.Page,
		CarouselPartial: views.CarouselPartial,
		GridPartial:     views.GridPartial,
		NotFound:        views.NotFound,
		ServerError:     views.ServerError,
	}
}

// App wires together the catalog, page sessions, handlers and middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Catalog  *content.Catalog
	Pages    []Page
	Registry *PageRegistry
	Views    ViewFuncs

	clock        clockwork.Clock
	apiLimiter   *RateLimiter
	pageLimiter  *RateLimiter
	thumbs       *ThumbCache
	customRoutes []func(*App)
	stopSweeper  func()
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  DefaultViews(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup loads the catalog, creates the page registry and registers
// middleware and routes. Start calls it; tests call it directly.
func (a *App) Setup() error {
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("printsite: %w", err)
	}

	if a.Catalog == nil {
		var (
			catalog *content.Catalog
			err     error
		)
		if a.Config.CatalogPath != "" {
			catalog, err = content.Load(a.Config.CatalogPath)
		} else {
			catalog, err = content.Default()
		}
		if err != nil {
			return fmt.Errorf("printsite: load catalog: %w", err)
		}
		a.Catalog = catalog
	}
	if a.Config.Name == "" {
		a.Config.Name = a.Catalog.Business.Name
	}
	if a.Config.Description == "" {
		a.Config.Description = a.Catalog.Business.Tagline
	}
	a.Pages = Pages(a.Catalog)

	a.Registry = NewPageRegistry(RegistryConfig{
		Clock:            a.clock,
		TTL:              a.Config.PageTTL,
		MaxPages:         a.Config.MaxPages,
		MaxPerOwner:      a.Config.MaxPagesPerVisitor,
		Reveal:           a.Config.RevealOptions(),
		AutoplayInterval: a.Config.AutoplayInterval,
		Items:            a.Catalog.CarouselItems(),
	})
	if a.Config.PageTTL > 0 {
		a.stopSweeper = a.Registry.StartSweeper(a.Config.PageTTL / 2)
	}
	a.apiLimiter = NewRateLimiter(a.Config.APIRateLimit, time.Minute)
	a.pageLimiter = NewRateLimiter(a.Config.PageRateLimit, time.Minute)
	a.thumbs = NewThumbCache(a.Config.StaticDir, thumbWidth)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the app up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("serving %s on %s (%d pages)", a.Config.Name, a.Config.Addr, len(a.Pages))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases every page session.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	a.Close()
	return err
}

// Close tears down page sessions and background goroutines.
func (a *App) Close() {
	if a.stopSweeper != nil {
		a.stopSweeper()
	}
	if a.apiLimiter != nil {
		a.apiLimiter.Stop()
	}
	if a.pageLimiter != nil {
		a.pageLimiter.Stop()
	}
	if a.Registry != nil {
		a.Registry.CloseAll()
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/site.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/portfolio/thumb/:id/", a.handleThumb)

	for _, p := range a.Pages {
		e.GET(p.Path, a.pageHandler(p), a.pageRateLimitMiddleware)
	}

	api := e.Group("/api/pages/:id", a.rateLimitMiddleware)
	api.POST("/visibility", a.handleVisibility)
	api.GET("/revealed", a.handleRevealed)
	api.POST("/close", a.handleClose)
	api.GET("/carousel", a.handleCarousel)
	api.GET("/carousel/html", a.handleCarouselHTML)
	api.GET("/carousel/grid", a.handleCarouselGrid)
	api.GET("/carousel/events", a.handleCarouselEvents)
	api.POST("/carousel/next", a.carouselAction(actionNext))
	api.POST("/carousel/previous", a.carouselAction(actionPrevious))
	api.POST("/carousel/toggle", a.carouselAction(actionToggle))
	api.POST("/carousel/goto/:index", a.carouselAction(actionGoTo))
	api.POST("/carousel/filter/:category", a.carouselAction(actionFilter))
	api.POST("/carousel/magnify/:index", a.carouselAction(actionMagnify))
	api.POST("/carousel/unmagnify", a.carouselAction(actionUnmagnify))
}
