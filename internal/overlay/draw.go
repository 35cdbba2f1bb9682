package overlay

import (
	"image"
	"image/color"
	"strconv"
)

// glyphs is a 3x5 pixel font for cell ids.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

const (
	glyphAdvance = 4
	glyphHeight  = 5
)

// setClipped sets (x, y) when it lies inside img.
func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{x, y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// drawRect outlines the half-open rectangle r with a line of the given
// thickness drawn inward.
func drawRect(img *image.RGBA, r image.Rectangle, thickness int, c color.RGBA) {
	for t := 0; t < thickness; t++ {
		x0, y0, x1, y1 := r.Min.X+t, r.Min.Y+t, r.Max.X-1-t, r.Max.Y-1-t
		if x0 > x1 || y0 > y1 {
			return
		}
		for x := x0; x <= x1; x++ {
			setClipped(img, x, y0, c)
			setClipped(img, x, y1, c)
		}
		for y := y0; y <= y1; y++ {
			setClipped(img, x0, y, c)
			setClipped(img, x1, y, c)
		}
	}
}

// drawDot fills a disc of radius r centred on (cx, cy).
func drawDot(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				setClipped(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// textSize returns the pixel extent of text in the glyph font.
func textSize(text string) (w, h int) {
	return len(text)*glyphAdvance - 1, glyphHeight
}

// drawLabel writes text with its top-left corner at (x, y) on a one-pixel
// padded background box. Runes without a glyph leave a gap.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	w, h := textSize(text)
	for dy := -1; dy <= h; dy++ {
		for dx := -1; dx <= w; dx++ {
			setClipped(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		if glyph, ok := glyphs[ch]; ok {
			for row, line := range glyph {
				for col, pixel := range line {
					if pixel == '1' {
						setClipped(img, cx+col, y+row, fg)
					}
				}
			}
		}
		cx += glyphAdvance
	}
}

// drawID centres a cell id on (cx, cy).
func drawID(img *image.RGBA, cx, cy, id int) {
	text := strconv.Itoa(id)
	w, h := textSize(text)
	drawLabel(img, cx-w/2, cy-h/2, text, color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 255})
}
