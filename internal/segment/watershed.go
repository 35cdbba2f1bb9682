package segment

import (
	"container/heap"
	"fmt"
)

// floodItem is a pixel waiting in the flooding queue.
type floodItem struct {
	value float64
	age   int
	index int
}

// floodQueue orders pixels by surface value, then by insertion age so that
// equal levels flood breadth-first.
type floodQueue []floodItem

func (q floodQueue) Len() int { return len(q) }
func (q floodQueue) Less(i, j int) bool {
	if q[i].value != q[j].value {
		return q[i].value < q[j].value
	}
	return q[i].age < q[j].age
}
func (q floodQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *floodQueue) Push(x any)   { *q = append(*q, x.(floodItem)) }
func (q *floodQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// Watershed floods surface from the nonzero pixels of markers, restricted to
// mask. Each pixel joins the basin of the marker that reaches it first in
// order of increasing surface value.
//
// With watershedLine set, a pixel that touches a different basin when it is
// dequeued is left at 0 and does not propagate, so no two 4-adjacent pixels
// end up with different positive ids. Mask pixels unreachable from any
// marker stay 0.
func Watershed(surface []float64, markers *LabelMap, mask *BinaryMask, watershedLine bool) (*LabelMap, error) {
	w, h := markers.Width, markers.Height
	if err := markers.check(); err != nil {
		return nil, err
	}
	if mask.Width != w || mask.Height != h || len(mask.Pix) != w*h || len(surface) != w*h {
		return nil, fmt.Errorf("%w: watershed inputs disagree in extent", ErrShapeMismatch)
	}

	const line = -1
	out := NewLabelMap(w, h)
	q := &floodQueue{}
	age := 0
	for i, l := range markers.Labels {
		if l > 0 && mask.Pix[i] {
			out.Labels[i] = l
			heap.Push(q, floodItem{value: surface[i], age: age, index: i})
			age++
		}
	}

	for q.Len() > 0 {
		it := heap.Pop(q).(floodItem)
		ci := it.index
		cx, cy := ci%w, ci/w
		own := out.Labels[ci]

		if watershedLine {
			onLine := false
			for _, d := range neighbors4 {
				nx, ny := cx+d[0], cy+d[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				if nl := out.Labels[ny*w+nx]; nl > 0 && nl != own {
					onLine = true
					break
				}
			}
			if onLine {
				out.Labels[ci] = line
				continue
			}
		}

		for _, d := range neighbors4 {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			ni := ny*w + nx
			if !mask.Pix[ni] || out.Labels[ni] != 0 {
				continue
			}
			out.Labels[ni] = own
			heap.Push(q, floodItem{value: surface[ni], age: age, index: ni})
			age++
		}
	}

	for i, l := range out.Labels {
		if l == line {
			out.Labels[i] = 0
		}
	}
	return out, nil
}
