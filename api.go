package printsite

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ssgraphics/printsite/carousel"
	"github.com/ssgraphics/printsite/reveal"
	"github.com/ssgraphics/printsite/views"
)

// Header "scrolled" state kicks in past this offset.
const scrolledOffset = 50

// Input validation limits for the visibility endpoint.
const (
	maxEntries   = 512
	maxKeyLen    = 128
	maxDimension = 1 << 20
)

// VisibilityRequest is one batch of geometry reported by the browser.
type VisibilityRequest struct {
	Viewport reveal.Rect    `json:"viewport"`
	ScrollY  float64        `json:"scroll_y"`
	Entries  []reveal.Entry `json:"entries"`
}

// VisibilityResponse tells the browser which sections to show.
type VisibilityResponse struct {
	Revealed []string `json:"revealed"`
	Newly    []string `json:"newly"`
	Scrolled bool     `json:"scrolled"`
}

func validateVisibilityRequest(req *VisibilityRequest) error {
	if len(req.Entries) > maxEntries {
		return fmt.Errorf("too many entries (max %d)", maxEntries)
	}
	if req.Viewport.Width <= 0 || req.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must have a positive size")
	}
	if req.Viewport.Width > maxDimension || req.Viewport.Height > maxDimension {
		return fmt.Errorf("viewport exceeds %d px", maxDimension)
	}
	for _, e := range req.Entries {
		if e.Key == "" || len(e.Key) > maxKeyLen {
			return fmt.Errorf("entry key must be 1-%d characters", maxKeyLen)
		}
	}
	return nil
}

// pageSession resolves the :id param against the visitor's sessions.
func (a *App) pageSession(c echo.Context) (*PageSession, error) {
	ps, err := a.Registry.Get(c.Param("id"), visitorID(c))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "page session not found")
	}
	return ps, nil
}

func (a *App) handleVisibility(c echo.Context) error {
	ps, err := a.pageSession(c)
	if err != nil {
		return err
	}
	var req VisibilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := validateVisibilityRequest(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	newly := ps.Observer.Process(req.Viewport, req.Entries)
	return c.JSON(http.StatusOK, VisibilityResponse{
		Revealed: ps.Tracker.Revealed(),
		Newly:    nonNil(newly),
		Scrolled: req.ScrollY > scrolledOffset,
	})
}

func (a *App) handleRevealed(c echo.Context) error {
	ps, err := a.pageSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, VisibilityResponse{
		Revealed: ps.Tracker.Revealed(),
		Newly:    []string{},
	})
}

func (a *App) handleClose(c echo.Context) error {
	if err := a.Registry.Close(c.Param("id"), visitorID(c)); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "page session not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// SlideJSON is the current slide in a carousel response.
type SlideJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

// CarouselJSON is the wire form of a carousel snapshot.
type CarouselJSON struct {
	Index     int        `json:"index"`
	Count     int        `json:"count"`
	Playing   bool       `json:"playing"`
	State     string     `json:"state"`
	Filter    string     `json:"filter"`
	Magnified int        `json:"magnified"`
	Current   *SlideJSON `json:"current"`
}

func carouselJSON(s carousel.Snapshot) CarouselJSON {
	out := CarouselJSON{
		Index:     s.CurrentIndex,
		Count:     len(s.Items),
		Playing:   s.Playing,
		State:     s.State().String(),
		Filter:    s.Filter,
		Magnified: s.Magnified,
	}
	if item, ok := s.Current(); ok {
		out.Current = &SlideJSON{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Image:       views.ImageURL(item.Image),
			Category:    item.Category,
		}
	}
	return out
}

func staticSnapshot(items []carousel.Item) carousel.Snapshot {
	return carousel.Snapshot{
		Filter:    carousel.FilterAll,
		Items:     items,
		Magnified: carousel.NoMagnified,
	}
}

// carouselSession resolves the page session and requires a carousel.
func (a *App) carouselSession(c echo.Context) (*PageSession, error) {
	ps, err := a.pageSession(c)
	if err != nil {
		return nil, err
	}
	if ps.Carousel == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "page has no carousel")
	}
	return ps, nil
}

func (a *App) handleCarousel(c echo.Context) error {
	ps, err := a.carouselSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, carouselJSON(ps.Carousel.Snapshot()))
}

func (a *App) handleCarouselHTML(c echo.Context) error {
	ps, err := a.carouselSession(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.CarouselPartial(a.pageData(c, ps)))
}

func (a *App) handleCarouselGrid(c echo.Context) error {
	ps, err := a.carouselSession(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.GridPartial(a.pageData(c, ps)))
}

type carouselActionKind int

const (
	actionNext carouselActionKind = iota
	actionPrevious
	actionToggle
	actionGoTo
	actionFilter
	actionMagnify
	actionUnmagnify
)

func (a *App) carouselAction(kind carouselActionKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ps, err := a.carouselSession(c)
		if err != nil {
			return err
		}
		ctl := ps.Carousel
		switch kind {
		case actionNext:
			ctl.Next()
		case actionPrevious:
			ctl.Previous()
		case actionToggle:
			ctl.TogglePlay()
		case actionGoTo, actionMagnify:
			index, err := strconv.Atoi(c.Param("index"))
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "index must be an integer"})
			}
			if kind == actionGoTo {
				err = ctl.GoTo(index)
			} else {
				err = ctl.Magnify(index)
			}
			if errors.Is(err, carousel.ErrIndexOutOfRange) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
		case actionFilter:
			category := c.Param("category")
			if !a.knownCategory(category) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown category"})
			}
			ctl.SetFilter(category)
		case actionUnmagnify:
			ctl.Unmagnify()
		}
		return c.JSON(http.StatusOK, carouselJSON(ctl.Snapshot()))
	}
}

func (a *App) knownCategory(category string) bool {
	if a.Catalog.HasFilter(category) {
		return true
	}
	for _, cat := range a.Catalog.Categories() {
		if cat == category {
			return true
		}
	}
	return false
}

// handleCarouselEvents streams carousel snapshots as server-sent events until
// the client disconnects or the page session is torn down.
func (a *App) handleCarouselEvents(c echo.Context) error {
	ps, err := a.carouselSession(c)
	if err != nil {
		return err
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	updates := make(chan carousel.Snapshot, 8)
	cancel := ps.Carousel.Subscribe(func(s carousel.Snapshot) {
		select {
		case updates <- s:
		default:
			// drop if the client is slow; the next snapshot supersedes it
		}
	})
	defer cancel()

	if err := writeEvent(w, ps.Carousel.Snapshot()); err != nil {
		return nil
	}
	ctx := c.Request().Context()
	for {
		select {
		case s := <-updates:
			if err := writeEvent(w, s); err != nil {
				return nil
			}
		case <-ps.Done():
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func writeEvent(w *echo.Response, s carousel.Snapshot) error {
	data, err := json.Marshal(carouselJSON(s))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: carousel\ndata: %s\n\n", data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
