package printsite

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	thumbWidth  = 480
	jpegQuality = 80
)

// ThumbCache produces downscaled JPEG previews of portfolio images and keeps
// them in memory. Images are read from the static directory on first use.
type ThumbCache struct {
	mu    sync.RWMutex
	dir   string
	width int
	data  map[string][]byte
}

// NewThumbCache creates a cache reading source images from dir.
func NewThumbCache(dir string, width int) *ThumbCache {
	return &ThumbCache{dir: dir, width: width, data: make(map[string][]byte)}
}

// Get returns the thumbnail for the image at rel (relative to the static dir).
func (tc *ThumbCache) Get(rel string) ([]byte, error) {
	tc.mu.RLock()
	b, ok := tc.data[rel]
	tc.mu.RUnlock()
	if ok {
		return b, nil
	}

	f, err := os.Open(filepath.Join(tc.dir, filepath.Clean("/"+rel)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rel, err)
	}
	b, err = thumbnail(img, tc.width)
	if err != nil {
		return nil, err
	}

	tc.mu.Lock()
	tc.data[rel] = b
	tc.mu.Unlock()
	return b, nil
}

// Len returns the number of cached thumbnails.
func (tc *ThumbCache) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.data)
}

// thumbnail scales img down to width (never up) and encodes it as JPEG.
func thumbnail(img image.Image, width int) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > width {
		newH := h * width / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *App) handleThumb(c echo.Context) error {
	sample, ok := a.Catalog.Sample(c.Param("id"))
	if !ok || sample.Image == "" {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	b, err := a.thumbs.Get(sample.Image)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return err
	}
	return c.Blob(http.StatusOK, "image/jpeg", b)
}
