// Package content loads the static site catalog: business details, services,
// equipment and portfolio samples.
package content

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ssgraphics/printsite/carousel"
)

//go:embed site.yaml
var defaultCatalog []byte

// Business holds contact details shown in the header, footer and contact page.
type Business struct {
	Name    string `yaml:"name"`
	Tagline string `yaml:"tagline"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
	Hours   string `yaml:"hours"`
	Founded int    `yaml:"founded"`
}

// Highlight is a short selling point on the home page.
type Highlight struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Service is one printing service offered.
type Service struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Features    []string `yaml:"features"`
}

// Machine is one piece of equipment on the equipment page.
type Machine struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Specs       []string `yaml:"specs"`
}

// Filter is a portfolio filter button.
type Filter struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Step is one stage of the production process shown on the portfolio page.
type Step struct {
	Step        string `yaml:"step"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Sample is one portfolio piece.
type Sample struct {
	ID          string `yaml:"id"`
	Category    string `yaml:"category"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

// Catalog is the whole static content set.
type Catalog struct {
	Business   Business    `yaml:"business"`
	Highlights []Highlight `yaml:"highlights"`
	Services   []Service   `yaml:"services"`
	Equipment  []Machine   `yaml:"equipment"`
	Filters    []Filter    `yaml:"filters"`
	Samples    []Sample    `yaml:"samples"`
	Process    []Step      `yaml:"process"`
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads and validates a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks required fields and id uniqueness.
func (c *Catalog) Validate() error {
	if c.Business.Name == "" {
		return fmt.Errorf("catalog: business name is required")
	}
	if err := uniqueIDs("service", len(c.Services), func(i int) string { return c.Services[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("equipment", len(c.Equipment), func(i int) string { return c.Equipment[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("filter", len(c.Filters), func(i int) string { return c.Filters[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("sample", len(c.Samples), func(i int) string { return c.Samples[i].ID }); err != nil {
		return err
	}
	hasAll := false
	for _, f := range c.Filters {
		if f.ID == carousel.FilterAll {
			hasAll = true
		}
	}
	if len(c.Filters) > 0 && !hasAll {
		return fmt.Errorf("catalog: filters must include %q", carousel.FilterAll)
	}
	for _, s := range c.Samples {
		if s.Title == "" || s.Category == "" {
			return fmt.Errorf("catalog: sample %q needs a title and category", s.ID)
		}
		if s.Category == carousel.FilterAll {
			return fmt.Errorf("catalog: sample %q uses reserved category %q", s.ID, carousel.FilterAll)
		}
	}
	return nil
}

func uniqueIDs(kind string, n int, id func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		v := id(i)
		if v == "" {
			return fmt.Errorf("catalog: %s #%d has no id", kind, i)
		}
		if _, ok := seen[v]; ok {
			return fmt.Errorf("catalog: duplicate %s id %q", kind, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// HasFilter reports whether id names a known filter.
func (c *Catalog) HasFilter(id string) bool {
	for _, f := range c.Filters {
		if f.ID == id {
			return true
		}
	}
	return false
}

// Sample looks up a portfolio sample by id.
func (c *Catalog) Sample(id string) (Sample, bool) {
	for _, s := range c.Samples {
		if s.ID == id {
			return s, true
		}
	}
	return Sample{}, false
}

// CarouselItems converts the portfolio samples into carousel items.
func (c *Catalog) CarouselItems() []carousel.Item {
	items := make([]carousel.Item, len(c.Samples))
	for i, s := range c.Samples {
		items[i] = carousel.Item{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Image:       s.Image,
			Category:    s.Category,
		}
	}
	return items
}

// Categories returns the distinct sample categories in catalog order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range c.Samples {
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		out = append(out, s.Category)
	}
	return out
}
