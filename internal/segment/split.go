package segment

import "math"

// Default splitter settings.
const (
	DefaultMinPeakDistance  = 40
	DefaultWatershedTrigger = 150
)

// SplitOptions tunes the watershed splitter.
type SplitOptions struct {
	// MinPeakDistance is the minimum Chebyshev separation between seeds.
	MinPeakDistance int
	// MinArea drops components smaller than this after splitting.
	MinArea int
}

// DefaultSplitOptions returns the splitter defaults.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{MinPeakDistance: DefaultMinPeakDistance, MinArea: DefaultMinArea}
}

// SplitOutcome names how a Split call ended.
type SplitOutcome string

// Split outcomes.
const (
	SplitApplied  SplitOutcome = "applied"
	SplitEmptyMap SplitOutcome = "empty_map"
	SplitNoSeeds  SplitOutcome = "no_seeds"
	SplitNoMedian SplitOutcome = "no_median"
)

// SplitStats reports what Split did.
type SplitStats struct {
	Outcome SplitOutcome `json:"outcome"`
	// Seeds is the number of distance peaks used as markers.
	Seeds int `json:"seeds"`
	// LargeRegions is the number of components at least twice the median.
	LargeRegions int `json:"large_regions"`
}

// Split separates merged cells in lm with a marker-controlled watershed.
//
// Parameters:
//   - lm: The labeled map to split. It is never modified.
//   - median: The median region area of lm, usually from MedianSize.
//   - opts: Seed spacing and the minimum area kept after splitting.
//
// Returns:
//   - *LabelMap: A new, contiguously numbered map.
//   - SplitStats: The outcome, the number of seeds and of large regions.
//   - error: ErrShapeMismatch when lm's buffer disagrees with its extent.
//
// # Algorithm
//
//  1. Distance transform: every foreground pixel gets its Euclidean
//     distance to the nearest background pixel.
//
//  2. Seeds: peaks of the distance field at least opts.MinPeakDistance
//     apart (Chebyshev), one marker per peak.
//
//  3. Flooding: a watershed on the negated distance field, restricted to the
//     foreground, with zero-valued lines where two basins meet.
//
//  4. Merge: basin labels replace the original labels only inside components
//     whose area is at least 2*median. Everything else keeps its label.
//
//  5. Cleanup: the combined map is relabeled and components below
//     opts.MinArea are dropped.
//
// # Outcomes
//
// Only a completed flood reports SplitApplied. The early exits return a copy
// of lm with a nil error:
//   - SplitEmptyMap: lm has zero pixels
//   - SplitNoMedian: median is NaN or infinite
//   - SplitNoSeeds: the distance field has no peak
func Split(lm *LabelMap, median float64, opts SplitOptions) (*LabelMap, SplitStats, error) {
	if err := lm.check(); err != nil {
		return nil, SplitStats{}, err
	}
	if len(lm.Labels) == 0 {
		return lm.Clone(), SplitStats{Outcome: SplitEmptyMap}, nil
	}
	if math.IsNaN(median) || math.IsInf(median, 0) {
		return lm.Clone(), SplitStats{Outcome: SplitNoMedian}, nil
	}

	mask := lm.Mask()
	dist := DistanceTransform(mask)
	peaks := FindPeaks(dist, lm.Width, lm.Height, opts.MinPeakDistance)
	if len(peaks) == 0 {
		return lm.Clone(), SplitStats{Outcome: SplitNoSeeds}, nil
	}

	// Every peak is a single pixel, so each one is its own marker.
	markers := NewLabelMap(lm.Width, lm.Height)
	for i, p := range peaks {
		markers.Labels[p.Row*lm.Width+p.Col] = i + 1
	}

	surface := make([]float64, len(dist))
	for i, d := range dist {
		surface[i] = -d
	}
	basins, err := Watershed(surface, markers, mask, true)
	if err != nil {
		return nil, SplitStats{}, err
	}

	large := largeComponents(mask, 2*median)
	combined := lm.Clone()
	for i, isLarge := range large.Pix {
		if isLarge {
			combined.Labels[i] = basins.Labels[i]
		}
	}

	final := RemoveSmallRegions(Relabel(combined), opts.MinArea)
	return final, SplitStats{
		Outcome:      SplitApplied,
		Seeds:        len(peaks),
		LargeRegions: Label(large).Count(),
	}, nil
}

// largeComponents keeps the 4-connected components of mask whose area is at
// least minArea.
func largeComponents(mask *BinaryMask, minArea float64) *BinaryMask {
	lm := Label(mask)
	areas := labelAreas(lm)
	out := NewBinaryMask(mask.Width, mask.Height)
	for i, l := range lm.Labels {
		out.Pix[i] = l > 0 && float64(areas[l]) >= minArea
	}
	return out
}
