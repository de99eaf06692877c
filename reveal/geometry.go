package reveal

import "fmt"

// Rect is an axis-aligned rectangle in logical pixels. Y grows downward.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the rectangle's area, or 0 for degenerate rectangles.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Intersect returns the overlap of r and o. The result has zero area when
// the rectangles do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	left := max(r.X, o.X)
	top := max(r.Y, o.Y)
	right := min(r.X+r.Width, o.X+o.Width)
	bottom := min(r.Y+r.Height, o.Y+o.Height)
	if right <= left || bottom <= top {
		return Rect{}
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Margin adjusts the root rectangle the way a CSS rootMargin does: positive
// values grow the trigger region past the viewport, negative values shrink it.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Apply returns viewport grown (or shrunk) by m.
func (m Margin) Apply(viewport Rect) Rect {
	return Rect{
		X:      viewport.X - m.Left,
		Y:      viewport.Y - m.Top,
		Width:  viewport.Width + m.Left + m.Right,
		Height: viewport.Height + m.Top + m.Bottom,
	}
}

// Reveal trigger constants.
const (
	DefaultThreshold    = 0.1
	DefaultBottomMargin = 100
)

// Options controls when a region counts as intersecting.
type Options struct {
	// Threshold is the minimum fraction of the region's area that must lie
	// inside the trigger region.
	Threshold float64
	// RootMargin adjusts the viewport before intersecting.
	RootMargin Margin
}

// DefaultOptions fires once 10% of a region is inside a trigger region that
// extends 100px below the viewport bottom.
func DefaultOptions() Options {
	return Options{
		Threshold:  DefaultThreshold,
		RootMargin: Margin{Bottom: DefaultBottomMargin},
	}
}

// Validate reports whether the options are usable.
func (o Options) Validate() error {
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("reveal: threshold %v outside [0, 1]", o.Threshold)
	}
	return nil
}

// Ratio returns the fraction of target inside the trigger region derived from
// viewport. Zero-area targets always report 0.
func (o Options) Ratio(viewport, target Rect) float64 {
	area := target.Area()
	if area == 0 {
		return 0
	}
	return target.Intersect(o.RootMargin.Apply(viewport)).Area() / area
}

// Intersecting reports whether target overlaps the trigger region by a
// positive area of at least Threshold.
func (o Options) Intersecting(viewport, target Rect) bool {
	ratio := o.Ratio(viewport, target)
	return ratio > 0 && ratio >= o.Threshold
}
