package printsite

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ssgraphics/printsite/content"
	"github.com/ssgraphics/printsite/reveal"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `koanf:"name"`        // Site name (default: catalog business name)
	URL         string `koanf:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `koanf:"description"` // Meta description

	Addr        string `koanf:"addr"`         // Listen address (default ":3000")
	StaticDir   string `koanf:"static_dir"`   // User static assets (default "public")
	CatalogPath string `koanf:"catalog_path"` // Optional YAML catalog; embedded catalog when empty

	SessionSecret string `koanf:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `koanf:"cookie_secure"`  // Set true for HTTPS

	PageTTL            time.Duration `koanf:"page_ttl"`              // Idle page sessions are torn down after this (default 30m)
	MaxPages           int           `koanf:"max_pages"`             // Live page session cap (default 10000)
	MaxPagesPerVisitor int           `koanf:"max_pages_per_visitor"` // Live sessions per visitor; oldest evicted (default 8)
	AutoplayInterval   time.Duration `koanf:"autoplay_interval"`     // Carousel period (default 4s)
	APIRateLimit       int           `koanf:"api_rate_limit"`        // API requests per IP per minute (default 240)
	PageRateLimit      int           `koanf:"page_rate_limit"`       // Page renders per IP per minute (default 60)

	// Reveal trigger. Nil means default; zero is a valid setting for both.
	RevealThreshold *float64 `koanf:"reveal_threshold"` // Visible fraction needed (default 0.1)
	RevealMargin    *float64 `koanf:"reveal_margin"`    // Bottom root margin in px (default 100)
}

func (c *SiteConfig) setDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.PageTTL == 0 {
		c.PageTTL = 30 * time.Minute
	}
	if c.MaxPages == 0 {
		c.MaxPages = 10000
	}
	if c.AutoplayInterval == 0 {
		c.AutoplayInterval = 4 * time.Second
	}
	if c.RevealThreshold == nil {
		c.RevealThreshold = floatPtr(reveal.DefaultThreshold)
	}
	if c.RevealMargin == nil {
		c.RevealMargin = floatPtr(reveal.DefaultBottomMargin)
	}
	if c.MaxPagesPerVisitor == 0 {
		c.MaxPagesPerVisitor = 8
	}
	if c.PageRateLimit == 0 {
		c.PageRateLimit = 60
	}
	if c.APIRateLimit == 0 {
		c.APIRateLimit = 240
	}
}

// Validate checks that the configuration contains usable values.
func (c *SiteConfig) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("session_secret is required")
	}
	if c.PageTTL < 0 {
		return fmt.Errorf("page_ttl must be non-negative")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max_pages must be non-negative")
	}
	if c.MaxPagesPerVisitor < 0 {
		return fmt.Errorf("max_pages_per_visitor must be non-negative")
	}
	if c.AutoplayInterval < 0 {
		return fmt.Errorf("autoplay_interval must be non-negative")
	}
	if c.APIRateLimit < 0 {
		return fmt.Errorf("api_rate_limit must be non-negative")
	}
	if c.PageRateLimit < 0 {
		return fmt.Errorf("page_rate_limit must be non-negative")
	}
	if err := c.RevealOptions().Validate(); err != nil {
		return err
	}
	return nil
}

// RevealOptions returns the reveal trigger options derived from the config.
// Unset fields fall back to reveal.DefaultOptions.
func (c *SiteConfig) RevealOptions() reveal.Options {
	opts := reveal.DefaultOptions()
	if c.RevealThreshold != nil {
		opts.Threshold = *c.RevealThreshold
	}
	if c.RevealMargin != nil {
		opts.RootMargin.Bottom = *c.RevealMargin
	}
	return opts
}

func floatPtr(v float64) *float64 { return &v }

// LoadConfig reads configuration from the given YAML file, when it exists,
// then overlays PRINTSITE_* environment variables and applies defaults.
func LoadConfig(path string) (SiteConfig, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return SiteConfig{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return SiteConfig{}, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// PRINTSITE_SESSION_SECRET -> session_secret, etc.
	if err := k.Load(env.Provider("PRINTSITE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PRINTSITE_"))
	}), nil); err != nil {
		return SiteConfig{}, fmt.Errorf("loading env overrides: %w", err)
	}

	var cfg SiteConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides the directory for user-owned static assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithCatalog replaces the content catalog.
func WithCatalog(c *content.Catalog) Option {
	return func(a *App) {
		a.Catalog = c
	}
}

// WithClock sets the clock used by carousels and the page session sweeper.
func WithClock(c clockwork.Clock) Option {
	return func(a *App) {
		a.clock = c
	}
}

// WithViews replaces the default templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
