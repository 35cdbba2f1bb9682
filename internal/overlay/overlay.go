// Package overlay renders segmentation results for inspection: coloured
// label maps laid over the source image, centroid markers per size class,
// boxes around large cells and cell ids. It also writes the intermediate
// masks of a pipeline run to disk.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/cell-counter-mcp/internal/segment"
)

// ErrSizeMismatch is returned when a label map does not match the image.
var ErrSizeMismatch = errors.New("label map does not match image size")

// Options selects what Render draws.
type Options struct {
	// Opacity of the label colouring over the source, 0 to 1.
	Opacity float64 `json:"opacity"`
	// Centroids draws a dot in the category colour at each centroid.
	Centroids bool `json:"centroids"`
	// Boxes outlines large cells.
	Boxes bool `json:"boxes"`
	// IDs writes each cell id next to its centroid.
	IDs bool `json:"ids"`
}

// DefaultOptions draws everything at 45% colouring opacity.
func DefaultOptions() Options {
	return Options{Opacity: 0.45, Centroids: true, Boxes: true, IDs: true}
}

const (
	dotRadius    = 3
	boxThickness = 2
)

// Render draws lm over src. Markers supply centroids, categories and boxes;
// pass nil to draw only the colouring.
func Render(src image.Image, lm *segment.LabelMap, markers []segment.CellMarker, opts Options) (*image.RGBA, error) {
	if opts.Opacity < 0 || opts.Opacity > 1 || math.IsNaN(opts.Opacity) {
		return nil, fmt.Errorf("opacity %g outside 0-1", opts.Opacity)
	}
	base := imaging.Clone(src)
	w, h := base.Rect.Dx(), base.Rect.Dy()
	if lm.Width != w || lm.Height != h || len(lm.Labels) != w*h {
		return nil, fmt.Errorf("%w: labels %dx%d, image %dx%d", ErrSizeMismatch, lm.Width, lm.Height, w, h)
	}

	// Unlabeled pixels repeat the source so blending leaves them untouched.
	layer := image.NewRGBA(base.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if id := lm.Labels[y*w+x]; id > 0 {
				layer.SetRGBA(x, y, LabelColor(id))
			} else {
				layer.Set(x, y, base.NRGBAAt(x, y))
			}
		}
	}
	out := blend.Opacity(base, layer, opts.Opacity)

	for _, m := range markers {
		col := CategoryColor(m.Category)
		if opts.Boxes && m.BBox != nil {
			r := image.Rect(m.BBox.MinCol, m.BBox.MinRow, m.BBox.MaxCol, m.BBox.MaxRow)
			drawRect(out, r, boxThickness, col)
		}
		cx, cy := int(math.Round(m.Centroid.Col)), int(math.Round(m.Centroid.Row))
		if opts.Centroids {
			drawDot(out, cx, cy, dotRadius, col)
		}
		if opts.IDs {
			drawID(out, cx, cy+dotRadius+glyphHeight, m.ID)
		}
	}
	return out, nil
}

// LabelImage paints each label in its palette colour on black.
func LabelImage(lm *segment.LabelMap) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, lm.Width, lm.Height))
	for i, id := range lm.Labels {
		img.SetRGBA(i%lm.Width, i/lm.Width, LabelColor(id))
	}
	return img
}

// MaskImage renders foreground white on black.
func MaskImage(m *segment.BinaryMask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, fg := range m.Pix {
		if fg {
			img.Pix[i] = 255
		}
	}
	return img
}

// SavePNG writes img to path, creating parent directories as needed.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
