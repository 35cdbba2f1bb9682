package segment

import "math"

// DistanceTransform returns, for each foreground pixel of mask, the exact
// Euclidean distance to the nearest background pixel. Background pixels are
// 0. Pixels outside the grid do not count as background, so a mask with no
// background at all yields +Inf for every pixel.
//
// Implemented as two passes of the 1-D lower-envelope transform of
// Felzenszwalb and Huttenlocher (columns, then rows) on squared distances.
func DistanceTransform(mask *BinaryMask) []float64 {
	w, h := mask.Width, mask.Height
	d := make([]float64, w*h)
	for i, fg := range mask.Pix {
		if fg {
			d[i] = math.Inf(1)
		}
	}

	n := max(w, h)
	f := make([]float64, n)
	out := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			f[y] = d[y*w+x]
		}
		edt1D(f[:h], out[:h], v, z)
		for y := 0; y < h; y++ {
			d[y*w+x] = out[y]
		}
	}
	for y := 0; y < h; y++ {
		row := d[y*w : (y+1)*w]
		copy(f[:w], row)
		edt1D(f[:w], out[:w], v, z)
		copy(row, out[:w])
	}

	for i := range d {
		d[i] = math.Sqrt(d[i])
	}
	return d
}

// edt1D computes out[q] = min_p (q-p)² + f[p]. Infinite samples are skipped
// when building the envelope; an all-infinite row stays infinite.
func edt1D(f, out []float64, v []int, z []float64) {
	k := -1
	for q := range f {
		if math.IsInf(f[q], 1) {
			continue
		}
		if k < 0 {
			k = 0
			v[0] = q
			z[0] = math.Inf(-1)
			z[1] = math.Inf(1)
			continue
		}
		s := parabolaIntersect(f, q, v[k])
		for s <= z[k] {
			k--
			s = parabolaIntersect(f, q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	if k < 0 {
		for q := range out {
			out[q] = math.Inf(1)
		}
		return
	}
	k = 0
	for q := range out {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		out[q] = dq*dq + f[v[k]]
	}
}

// parabolaIntersect returns the abscissa where the parabolas rooted at q and
// p cross.
func parabolaIntersect(f []float64, q, p int) float64 {
	return ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*q-2*p)
}
