package segment

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// Peak is a local maximum of a scalar field.
type Peak struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Value float64 `json:"value"`
}

// FindPeaks returns the local maxima of field (row-major, w×h) that are at
// least minDistance apart.
//
// A pixel is a candidate when it equals the maximum of the
// (2*minDistance+1)² window centred on it (the window is clipped at the grid
// border, so border pixels qualify), is finite, and is strictly greater than
// the field's minimum. Candidates are taken in descending value, ties broken
// in raster order, and a candidate is dropped when its Chebyshev distance to
// an already accepted peak is minDistance or less.
func FindPeaks(field []float64, w, h, minDistance int) []Peak {
	if w == 0 || h == 0 || len(field) != w*h {
		return nil
	}
	minDistance = max(minDistance, 1)

	floor := math.Inf(1)
	for _, v := range field {
		floor = math.Min(floor, v)
	}

	windowMax := maxFilter(field, w, h, minDistance)

	var candidates []Peak
	for i, v := range field {
		if math.IsInf(v, 0) || math.IsNaN(v) || v <= floor || v != windowMax[i] {
			continue
		}
		candidates = append(candidates, Peak{Row: i / w, Col: i % w, Value: v})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Value > candidates[j].Value
	})

	// Accepted peaks go into a kd-tree so each candidate needs one nearest
	// neighbour query instead of a scan over everything accepted so far.
	accepted := &kdtree.Tree{}
	limit := float64(minDistance * minDistance)
	var peaks []Peak
	for _, c := range candidates {
		pt := gridPoint{float64(c.Row), float64(c.Col)}
		if _, d := accepted.Nearest(pt); d <= limit {
			continue
		}
		accepted.Insert(pt, false)
		peaks = append(peaks, c)
	}
	return peaks
}

// maxFilter computes the maximum over a (2r+1)² window clipped to the grid,
// as a row pass followed by a column pass of a sliding-window maximum.
func maxFilter(field []float64, w, h, r int) []float64 {
	tmp := make([]float64, w*h)
	out := make([]float64, w*h)

	line := make([]float64, max(w, h))
	res := make([]float64, max(w, h))
	for y := 0; y < h; y++ {
		slidingMax(field[y*w:(y+1)*w], tmp[y*w:(y+1)*w], r)
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			line[y] = tmp[y*w+x]
		}
		slidingMax(line[:h], res[:h], r)
		for y := 0; y < h; y++ {
			out[y*w+x] = res[y]
		}
	}
	return out
}

// slidingMax writes max(in[i-r..i+r]) to out[i] using a monotonic deque.
func slidingMax(in, out []float64, r int) {
	n := len(in)
	deque := make([]int, 0, n)
	next := 0
	for i := 0; i < n; i++ {
		for ; next < n && next <= i+r; next++ {
			for len(deque) > 0 && in[deque[len(deque)-1]] <= in[next] {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, next)
		}
		for deque[0] < i-r {
			deque = deque[1:]
		}
		out[i] = in[deque[0]]
	}
}

// gridPoint is a (row, col) position in a kd-tree under the Chebyshev
// metric. Distance returns the squared metric because the tree prunes a
// branch by comparing it against the squared distance to the splitting
// plane, and the Chebyshev distance is never below that plane distance.
type gridPoint [2]float64

// Compare implements the kdtree.Comparable interface.
func (p gridPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(gridPoint)
	return p[d] - q[d]
}

// Dims implements the kdtree.Comparable interface.
func (p gridPoint) Dims() int { return 2 }

// Distance implements the kdtree.Comparable interface.
func (p gridPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(gridPoint)
	d := math.Max(math.Abs(p[0]-q[0]), math.Abs(p[1]-q[1]))
	return d * d
}
