package segment

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Channel indexes into an Image's planes.
const (
	Red = iota
	Green
	Blue
)

// Image is an immutable three-channel pixel grid.
//
// Each plane holds Width*Height values in row-major order. Values are
// non-negative. Images decoded from files carry 0-255 for 8-bit sources and
// 0-65535 for 16-bit sources; see FromImage.
type Image struct {
	Width  int
	Height int
	planes [3][]float64
}

// NewImage builds an Image from three planes of equal length.
// The planes are copied, so later changes by the caller do not leak in.
func NewImage(width, height int, r, g, b []float64) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative extent %dx%d", ErrShapeMismatch, width, height)
	}
	n := width * height
	img := &Image{Width: width, Height: height}
	for c, plane := range [3][]float64{r, g, b} {
		if len(plane) != n {
			return nil, fmt.Errorf("%w: channel %d has %d values, want %d", ErrShapeMismatch, c, len(plane), n)
		}
		img.planes[c] = append([]float64(nil), plane...)
	}
	return img, nil
}

// BitDepth reports the per-channel depth of a decoded image: 16 for the
// 16-bit image types of the standard library (what the PNG and TIFF decoders
// return for 16-bit files), 8 for everything else.
func BitDepth(src image.Image) int {
	switch src.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		return 16
	}
	return 8
}

// FromImage converts a decoded image into an Image. Channel values keep the
// source precision: 0-255 for 8-bit images and 0-65535 for 16-bit ones, so
// stain levels that differ only in the low byte stay distinct.
// Alpha is discarded and colours are un-premultiplied.
func FromImage(src image.Image) *Image {
	if BitDepth(src) == 16 {
		return fromImage16(src)
	}

	nrgba := imaging.Clone(src)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	img := newPlanes(w, h)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < w; x++ {
			i := y*w + x
			img.planes[Red][i] = float64(row[x*4])
			img.planes[Green][i] = float64(row[x*4+1])
			img.planes[Blue][i] = float64(row[x*4+2])
		}
	}
	return img
}

// fromImage16 reads src through the 16-bit non-premultiplied colour model.
// imaging.Clone would narrow it to NRGBA.
func fromImage16(src image.Image) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	img := newPlanes(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			i := y*w + x
			img.planes[Red][i] = float64(c.R)
			img.planes[Green][i] = float64(c.G)
			img.planes[Blue][i] = float64(c.B)
		}
	}
	return img
}

func newPlanes(w, h int) *Image {
	img := &Image{Width: w, Height: h}
	for c := range img.planes {
		img.planes[c] = make([]float64, w*h)
	}
	return img
}

// At returns the value of channel c at (x, y).
func (img *Image) At(x, y, c int) float64 {
	return img.planes[c][y*img.Width+x]
}

// Plane returns a copy of channel c.
func (img *Image) Plane(c int) []float64 {
	return append([]float64(nil), img.planes[c]...)
}

// BinaryMask marks candidate foreground pixels.
type BinaryMask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewBinaryMask returns an all-background mask.
func NewBinaryMask(width, height int) *BinaryMask {
	return &BinaryMask{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// Count returns the number of foreground pixels.
func (m *BinaryMask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Equal reports whether two masks have the same extent and pixels.
func (m *BinaryMask) Equal(o *BinaryMask) bool {
	if m.Width != o.Width || m.Height != o.Height || len(m.Pix) != len(o.Pix) {
		return false
	}
	for i := range m.Pix {
		if m.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

func (m *BinaryMask) check() error {
	if len(m.Pix) != m.Width*m.Height {
		return fmt.Errorf("%w: mask has %d pixels, extent %dx%d", ErrShapeMismatch, len(m.Pix), m.Width, m.Height)
	}
	return nil
}

func (m *BinaryMask) clone() *BinaryMask {
	return &BinaryMask{Width: m.Width, Height: m.Height, Pix: append([]bool(nil), m.Pix...)}
}

// LabelMap assigns each pixel a region id; 0 is background.
type LabelMap struct {
	Width  int
	Height int
	Labels []int
}

// NewLabelMap returns an all-background label map.
func NewLabelMap(width, height int) *LabelMap {
	return &LabelMap{Width: width, Height: height, Labels: make([]int, width*height)}
}

// At returns the label at (x, y).
func (lm *LabelMap) At(x, y int) int {
	return lm.Labels[y*lm.Width+x]
}

// Clone returns a deep copy.
func (lm *LabelMap) Clone() *LabelMap {
	return &LabelMap{Width: lm.Width, Height: lm.Height, Labels: append([]int(nil), lm.Labels...)}
}

// Mask returns the foreground (nonzero label) mask.
func (lm *LabelMap) Mask() *BinaryMask {
	m := NewBinaryMask(lm.Width, lm.Height)
	for i, l := range lm.Labels {
		m.Pix[i] = l != 0
	}
	return m
}

// Count returns the number of distinct positive labels.
func (lm *LabelMap) Count() int {
	seen := make(map[int]struct{})
	for _, l := range lm.Labels {
		if l > 0 {
			seen[l] = struct{}{}
		}
	}
	return len(seen)
}

// Equal reports whether two label maps are identical.
func (lm *LabelMap) Equal(o *LabelMap) bool {
	if lm.Width != o.Width || lm.Height != o.Height || len(lm.Labels) != len(o.Labels) {
		return false
	}
	for i := range lm.Labels {
		if lm.Labels[i] != o.Labels[i] {
			return false
		}
	}
	return true
}

func (lm *LabelMap) check() error {
	if len(lm.Labels) != lm.Width*lm.Height {
		return fmt.Errorf("%w: label map has %d pixels, extent %dx%d", ErrShapeMismatch, len(lm.Labels), lm.Width, lm.Height)
	}
	return nil
}
