package segment

// Category is the size class of a region relative to the median.
type Category string

// Size categories.
const (
	CategorySmall  Category = "small"
	CategoryMedium Category = "medium"
	CategoryLarge  Category = "large"
)

// ClassifyArea returns large for area >= 2*median, small for
// area < median/2, and medium otherwise.
func ClassifyArea(area int, median float64) Category {
	a := float64(area)
	switch {
	case a >= 2*median:
		return CategoryLarge
	case a < median/2:
		return CategorySmall
	default:
		return CategoryMedium
	}
}

// CellMarker is the per-region record handed to visualization: where the
// cell is, how big it is and which size class it falls in. BBox is set only
// for large cells. Category is empty, and left out of JSON, when no median
// was available to classify against.
type CellMarker struct {
	ID       int      `json:"id"`
	Area     int      `json:"area"`
	Centroid Centroid `json:"centroid"`
	Category Category `json:"category,omitempty"`
	BBox     *BBox    `json:"bbox,omitempty"`
}

// Classify assigns a category to every region.
func Classify(regions []Region, median float64) []CellMarker {
	markers := make([]CellMarker, len(regions))
	for i, r := range regions {
		m := CellMarker{
			ID:       r.ID,
			Area:     r.Area,
			Centroid: r.Centroid,
			Category: ClassifyArea(r.Area, median),
		}
		if m.Category == CategoryLarge {
			box := r.BBox
			m.BBox = &box
		}
		markers[i] = m
	}
	return markers
}

// CategoryCounts tallies markers per category.
func CategoryCounts(markers []CellMarker) map[Category]int {
	counts := map[Category]int{CategorySmall: 0, CategoryMedium: 0, CategoryLarge: 0}
	for _, m := range markers {
		counts[m.Category]++
	}
	return counts
}
