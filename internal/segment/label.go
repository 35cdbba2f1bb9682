package segment

// neighbors4 lists the 4-connected offsets as (dx, dy).
var neighbors4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Label assigns ids 1..n to the 4-connected foreground components of mask,
// numbered in raster order of their first pixel.
func Label(mask *BinaryMask) *LabelMap {
	return floodLabel(mask.Width, mask.Height, func(i int) int {
		if mask.Pix[i] {
			return 1
		}
		return 0
	})
}

// Relabel renumbers lm so that every 4-connected run of equal nonzero ids
// gets its own id, contiguous from 1. Touching pixels with different ids
// stay in different components.
func Relabel(lm *LabelMap) *LabelMap {
	return floodLabel(lm.Width, lm.Height, func(i int) int { return lm.Labels[i] })
}

// floodLabel labels connected runs of equal nonzero keys with a BFS queue.
func floodLabel(w, h int, key func(i int) int) *LabelMap {
	out := NewLabelMap(w, h)
	queue := make([]int, 0, 64)
	next := 1

	for start := 0; start < w*h; start++ {
		k := key(start)
		if k == 0 || out.Labels[start] != 0 {
			continue
		}
		out.Labels[start] = next
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			ci := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			cx, cy := ci%w, ci/w
			for _, d := range neighbors4 {
				nx, ny := cx+d[0], cy+d[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if out.Labels[ni] == 0 && key(ni) == k {
					out.Labels[ni] = next
					queue = append(queue, ni)
				}
			}
		}
		next++
	}
	return out
}

// labelAreas returns the pixel count per label, indexed by label id.
func labelAreas(lm *LabelMap) []int {
	maxLabel := 0
	for _, l := range lm.Labels {
		if l > maxLabel {
			maxLabel = l
		}
	}
	areas := make([]int, maxLabel+1)
	for _, l := range lm.Labels {
		if l > 0 {
			areas[l]++
		}
	}
	return areas
}

// RemoveSmallRegions clears labels with fewer than minArea pixels and
// renumbers the survivors contiguously, preserving their relative order.
func RemoveSmallRegions(lm *LabelMap, minArea int) *LabelMap {
	areas := labelAreas(lm)
	remap := make([]int, len(areas))
	next := 1
	for l := 1; l < len(areas); l++ {
		if areas[l] > 0 && areas[l] >= minArea {
			remap[l] = next
			next++
		}
	}
	out := NewLabelMap(lm.Width, lm.Height)
	for i, l := range lm.Labels {
		if l > 0 {
			out.Labels[i] = remap[l]
		}
	}
	return out
}
