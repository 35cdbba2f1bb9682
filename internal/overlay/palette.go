package overlay

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/cell-counter-mcp/internal/segment"
)

// goldenAngle spreads successive label hues around the colour wheel so
// neighbouring ids rarely look alike.
const goldenAngle = 137.50776405

// categoryHex gives the centroid marker colour per size class.
var categoryHex = map[segment.Category]string{
	segment.CategoryLarge:  "#00ff00",
	segment.CategorySmall:  "#ff00ff",
	segment.CategoryMedium: "#00ffff",
}

// LabelColor returns the fill colour for label id. Id 0 is black.
func LabelColor(id int) color.RGBA {
	if id <= 0 {
		return color.RGBA{0, 0, 0, 255}
	}
	hue := math.Mod(float64(id)*goldenAngle, 360)
	r, g, b := colorful.Hsv(hue, 0.65, 0.95).RGB255()
	return color.RGBA{r, g, b, 255}
}

// CategoryColor returns the marker colour for a size class. Unknown
// categories are drawn white.
func CategoryColor(cat segment.Category) color.RGBA {
	hex, ok := categoryHex[cat]
	if !ok {
		return color.RGBA{255, 255, 255, 255}
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{255, 255, 255, 255}
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}
}
