package segment

import (
	"fmt"
	"math"
)

// Disk returns the half-widths of a disk structuring element of radius r,
// one entry per row offset -r..r. Row dy covers columns -w..w where
// w = floor(sqrt(r² - dy²)), i.e. every offset with dy² + dx² <= r².
func Disk(r int) []int {
	if r < 0 {
		return nil
	}
	spans := make([]int, 2*r+1)
	for dy := -r; dy <= r; dy++ {
		w := int(math.Floor(math.Sqrt(float64(r*r - dy*dy))))
		for (w+1)*(w+1)+dy*dy <= r*r {
			w++
		}
		for w > 0 && w*w+dy*dy > r*r {
			w--
		}
		spans[dy+r] = w
	}
	return spans
}

// Erode keeps a pixel only when every in-bounds pixel under the disk is set.
// Pixels outside the grid do not erode the border.
func Erode(mask *BinaryMask, radius int) *BinaryMask {
	return diskFilter(mask, radius, true)
}

// Dilate sets a pixel when any in-bounds pixel under the disk is set.
func Dilate(mask *BinaryMask, radius int) *BinaryMask {
	return diskFilter(mask, radius, false)
}

// Open erodes then dilates with a disk of the given radius.
func Open(mask *BinaryMask, radius int) *BinaryMask {
	return Dilate(Erode(mask, radius), radius)
}

// diskFilter runs erosion (all=true) or dilation (all=false) using per-row
// prefix counts, so each output pixel costs one lookup per disk row.
func diskFilter(mask *BinaryMask, radius int, all bool) *BinaryMask {
	if radius <= 0 {
		return mask.clone()
	}
	w, h := mask.Width, mask.Height
	spans := Disk(radius)

	// prefix[y][x] counts the pixels in row y before column x that are
	// background (erosion) or foreground (dilation).
	prefix := make([][]int, h)
	for y := 0; y < h; y++ {
		p := make([]int, w+1)
		for x := 0; x < w; x++ {
			p[x+1] = p[x]
			if mask.Pix[y*w+x] != all {
				p[x+1]++
			}
		}
		prefix[y] = p
	}

	out := NewBinaryMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hit := false
			for dy := -radius; dy <= radius; dy++ {
				yy := y + dy
				if yy < 0 || yy >= h {
					continue
				}
				span := spans[dy+radius]
				x0, x1 := max(x-span, 0), min(x+span+1, w)
				if prefix[yy][x1]-prefix[yy][x0] > 0 {
					hit = true
					break
				}
			}
			// Erosion: a background hit clears. Dilation: a foreground hit sets.
			out.Pix[y*w+x] = hit != all
		}
	}
	return out
}

// RemoveSmallObjects clears every 4-connected component with fewer than
// minArea pixels.
func RemoveSmallObjects(mask *BinaryMask, minArea int) *BinaryMask {
	lm := Label(mask)
	areas := labelAreas(lm)
	out := NewBinaryMask(mask.Width, mask.Height)
	for i, l := range lm.Labels {
		out.Pix[i] = l > 0 && areas[l] >= minArea
	}
	return out
}

// Clean opens mask with a disk of radius selemRadius and removes the
// components left smaller than minArea.
func Clean(mask *BinaryMask, selemRadius, minArea int) (*BinaryMask, error) {
	if err := mask.check(); err != nil {
		return nil, err
	}
	if selemRadius < 0 {
		return nil, fmt.Errorf("%w: structuring element radius %d", ErrInvalidParameter, selemRadius)
	}
	if minArea < 0 {
		return nil, fmt.Errorf("%w: minimum area %d", ErrInvalidParameter, minArea)
	}
	return RemoveSmallObjects(Open(mask, selemRadius), minArea), nil
}
