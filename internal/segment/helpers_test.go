package segment

import (
	"image"
	"image/color"
)

// drawDisk sets every pixel within radius r of (cy, cx).
func drawDisk(m *BinaryMask, cy, cx, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
				continue
			}
			dy, dx := y-cy, x-cx
			if dy*dy+dx*dx <= r*r {
				m.Pix[y*m.Width+x] = true
			}
		}
	}
}

// fillRect sets the pixels of rows [y0,y1) and columns [x0,x1).
func fillRect(m *BinaryMask, y0, x0, y1, x1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.Pix[y*m.Width+x] = true
		}
	}
}

// maskFromRows builds a mask from strings where '#' is foreground.
func maskFromRows(rows ...string) *BinaryMask {
	m := NewBinaryMask(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			m.Pix[y*m.Width+x] = ch == '#'
		}
	}
	return m
}

// labelsFromRows builds a label map from rows of single digits.
func labelsFromRows(rows ...string) *LabelMap {
	lm := NewLabelMap(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			if ch >= '1' && ch <= '9' {
				lm.Labels[y*lm.Width+x] = int(ch - '0')
			}
		}
	}
	return lm
}

// createDiskImage draws filled discs of fg over bg. Each disc is {row, col, radius}.
func createDiskImage(width, height int, bg, fg color.RGBA, discs [][3]int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, bg)
			for _, d := range discs {
				dy, dx := y-d[0], x-d[1]
				if dy*dy+dx*dx <= d[2]*d[2] {
					img.SetRGBA(x, y, fg)
					break
				}
			}
		}
	}
	return img
}

// hasForeignNeighbor reports whether any two 4-adjacent pixels carry
// different positive labels.
func hasForeignNeighbor(lm *LabelMap) bool {
	for y := 0; y < lm.Height; y++ {
		for x := 0; x < lm.Width; x++ {
			l := lm.At(x, y)
			if l == 0 {
				continue
			}
			if x+1 < lm.Width {
				if r := lm.At(x+1, y); r != 0 && r != l {
					return true
				}
			}
			if y+1 < lm.Height {
				if d := lm.At(x, y+1); d != 0 && d != l {
					return true
				}
			}
		}
	}
	return false
}
