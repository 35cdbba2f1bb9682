package segment

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// BBox is a bounding box in pixel coordinates. Max bounds are exclusive.
type BBox struct {
	MinRow int `json:"min_row"`
	MinCol int `json:"min_col"`
	MaxRow int `json:"max_row"`
	MaxCol int `json:"max_col"`
}

// Centroid is the mean pixel position of a region.
type Centroid struct {
	Row float64 `json:"row"`
	Col float64 `json:"col"`
}

// Region describes one labeled component.
type Region struct {
	ID       int      `json:"id"`
	Area     int      `json:"area"`
	Centroid Centroid `json:"centroid"`
	BBox     BBox     `json:"bbox"`
}

// Regions scans lm and returns one Region per positive label, ordered by id.
// The result is always computed fresh from the map.
func Regions(lm *LabelMap) []Region {
	type acc struct {
		area           int
		sumRow, sumCol float64
		box            BBox
	}
	byID := make(map[int]*acc)
	for y := 0; y < lm.Height; y++ {
		for x := 0; x < lm.Width; x++ {
			l := lm.Labels[y*lm.Width+x]
			if l <= 0 {
				continue
			}
			a, ok := byID[l]
			if !ok {
				a = &acc{box: BBox{MinRow: y, MinCol: x, MaxRow: y + 1, MaxCol: x + 1}}
				byID[l] = a
			}
			a.area++
			a.sumRow += float64(y)
			a.sumCol += float64(x)
			a.box.MinRow = min(a.box.MinRow, y)
			a.box.MinCol = min(a.box.MinCol, x)
			a.box.MaxRow = max(a.box.MaxRow, y+1)
			a.box.MaxCol = max(a.box.MaxCol, x+1)
		}
	}

	regions := make([]Region, 0, len(byID))
	for id, a := range byID {
		regions = append(regions, Region{
			ID:   id,
			Area: a.area,
			Centroid: Centroid{
				Row: a.sumRow / float64(a.area),
				Col: a.sumCol / float64(a.area),
			},
			BBox: a.box,
		})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].ID < regions[j].ID })
	return regions
}

// Median returns the median of areas: the middle value, or the mean of the
// two middle values for an even count. ok is false when areas is empty.
func Median(areas []int) (median float64, ok bool) {
	if len(areas) == 0 {
		return 0, false
	}
	sorted := append([]int(nil), areas...)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2]), true
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2, true
}

// MedianSize returns the median region area of lm. ok is false when lm has
// no regions; callers must treat that as "no size reference" rather than
// compare against a zero or NaN median.
func MedianSize(lm *LabelMap) (median float64, ok bool) {
	return Median(Areas(Regions(lm)))
}

// Areas extracts the area of each region.
func Areas(regions []Region) []int {
	areas := make([]int, len(regions))
	for i, r := range regions {
		areas[i] = r.Area
	}
	return areas
}

// AreaStats summarizes the region areas of a label map.
type AreaStats struct {
	Count  int     `json:"count"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
}

// SummarizeAreas computes count, extremes, mean, standard deviation and
// median of region areas. The zero value is returned for no regions.
func SummarizeAreas(regions []Region) AreaStats {
	if len(regions) == 0 {
		return AreaStats{}
	}
	xs := make([]float64, len(regions))
	s := AreaStats{Count: len(regions), Min: regions[0].Area, Max: regions[0].Area}
	for i, r := range regions {
		xs[i] = float64(r.Area)
		s.Min = min(s.Min, r.Area)
		s.Max = max(s.Max, r.Area)
	}
	if len(xs) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	} else {
		s.Mean = xs[0]
	}
	s.Median, _ = Median(Areas(regions))
	return s
}
