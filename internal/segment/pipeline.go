package segment

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Parameter defaults and accepted ranges.
const (
	DefaultMode        = ModeBlue
	DefaultSelemRadius = 7
	DefaultMinArea     = 1000

	MinSelemRadius = 1
	MaxSelemRadius = 14
	MinMinArea     = 100
	MaxMinArea     = 5000
)

// Params carries every tuning value for one pipeline run.
type Params struct {
	Mode Mode `json:"mode" yaml:"mode"`
	// SelemRadius is the disk radius used for the opening.
	SelemRadius int `json:"selem_radius" yaml:"selemRadius"`
	// MinArea removes components smaller than this, both after cleaning
	// and after splitting.
	MinArea int `json:"min_area" yaml:"minArea"`
	// MinPeakDistance is the minimum separation between watershed seeds.
	MinPeakDistance int `json:"min_peak_distance" yaml:"minPeakDistance"`
	// WatershedTrigger enables splitting when the raw region count exceeds it.
	WatershedTrigger int `json:"watershed_trigger" yaml:"watershedTrigger"`
}

// DefaultParams returns the standard settings.
func DefaultParams() Params {
	return Params{
		Mode:             DefaultMode,
		SelemRadius:      DefaultSelemRadius,
		MinArea:          DefaultMinArea,
		MinPeakDistance:  DefaultMinPeakDistance,
		WatershedTrigger: DefaultWatershedTrigger,
	}
}

// Validate checks every field against its accepted range.
func (p Params) Validate() error {
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	if p.SelemRadius < MinSelemRadius || p.SelemRadius > MaxSelemRadius {
		return fmt.Errorf("%w: selem radius %d outside %d-%d", ErrInvalidParameter, p.SelemRadius, MinSelemRadius, MaxSelemRadius)
	}
	if p.MinArea < MinMinArea || p.MinArea > MaxMinArea {
		return fmt.Errorf("%w: minimum area %d outside %d-%d", ErrInvalidParameter, p.MinArea, MinMinArea, MaxMinArea)
	}
	if p.MinPeakDistance < 1 {
		return fmt.Errorf("%w: minimum peak distance %d must be positive", ErrInvalidParameter, p.MinPeakDistance)
	}
	if p.WatershedTrigger < 0 {
		return fmt.Errorf("%w: watershed trigger %d must not be negative", ErrInvalidParameter, p.WatershedTrigger)
	}
	return nil
}

// Result is everything one pipeline run produces.
type Result struct {
	// Binary is the thresholded mask before cleaning.
	Binary *BinaryMask
	// Cleaned is the mask after opening and small-object removal.
	Cleaned *BinaryMask
	// Labeled is the label map before any splitting.
	Labeled *LabelMap
	// Final is the label map after optional splitting.
	Final *LabelMap

	Threshold float64
	// RawCount is the number of regions in Labeled.
	RawCount int
	// CellCount is the number of distinct positive labels in Final.
	CellCount int
	// MedianSize is the median area of the Labeled regions; valid only when
	// HasMedian is true.
	MedianSize float64
	HasMedian  bool

	WatershedApplied bool
	Split            SplitStats
}

// Regions returns the regions of the final label map.
func (r *Result) Regions() []Region {
	return Regions(r.Final)
}

// Markers classifies the final regions against the median size. It returns
// nil when there is no median.
func (r *Result) Markers() []CellMarker {
	if !r.HasMedian {
		return nil
	}
	return Classify(r.Regions(), r.MedianSize)
}

// Pipeline runs the segmentation stages and logs what happened. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	log logrus.FieldLogger
}

// NewPipeline returns a Pipeline that logs to log. A nil logger discards.
func NewPipeline(log logrus.FieldLogger) *Pipeline {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Pipeline{log: log}
}

// Run counts the cells in img.
//
// Parameters:
//   - img: The source planes (see FromImage).
//   - p: Tuning values for this run only. Use DefaultParams for the
//     standard settings.
//
// Returns:
//   - *Result: Every intermediate map plus the counts and the median size.
//   - error: ErrInvalidParameter when p fails Validate (checked before any
//     work), ErrShapeMismatch for a nil or inconsistent image.
//
// # Stages
//
// Binarize, Clean, Label, MedianSize and, when the raw count is strictly
// greater than p.WatershedTrigger, Split. The median size always comes from
// the labeled map before splitting.
//
// # Missing Median
//
// An image without regions has no median. Splitting is skipped, HasMedian is
// false and MedianSize is 0. A split that finds no seeds keeps the unsplit
// map and logs a warning.
func (pl *Pipeline) Run(img *Image, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrShapeMismatch)
	}
	start := time.Now()
	log := pl.log.WithFields(logrus.Fields{
		"width":  img.Width,
		"height": img.Height,
		"mode":   p.Mode,
	})

	bin, err := Binarize(img, p.Mode)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"threshold":  bin.Threshold,
		"foreground": bin.Mask.Count(),
	}).Debug("binarized")

	cleaned, err := Clean(bin.Mask, p.SelemRadius, p.MinArea)
	if err != nil {
		return nil, err
	}
	labeled := Label(cleaned)

	res := &Result{
		Binary:    bin.Mask,
		Cleaned:   cleaned,
		Labeled:   labeled,
		Final:     labeled,
		Threshold: bin.Threshold,
		RawCount:  labeled.Count(),
	}
	res.MedianSize, res.HasMedian = MedianSize(labeled)
	log.WithFields(logrus.Fields{
		"raw_count":  res.RawCount,
		"median":     res.MedianSize,
		"has_median": res.HasMedian,
	}).Debug("labeled")

	switch {
	case !res.HasMedian:
		res.Split = SplitStats{Outcome: SplitNoMedian}
		log.Debug("no regions, skipping watershed")
	case res.RawCount > p.WatershedTrigger:
		final, stats, err := Split(labeled, res.MedianSize, SplitOptions{
			MinPeakDistance: p.MinPeakDistance,
			MinArea:         p.MinArea,
		})
		if err != nil {
			return nil, err
		}
		res.Final = final
		res.Split = stats
		res.WatershedApplied = stats.Outcome == SplitApplied
		if stats.Outcome == SplitNoSeeds {
			log.Warn("no local maxima found, keeping unsplit label map")
		}
	}

	res.CellCount = res.Final.Count()
	log.WithFields(logrus.Fields{
		"cell_count": res.CellCount,
		"watershed":  res.WatershedApplied,
		"seeds":      res.Split.Seeds,
		"elapsed":    time.Since(start).String(),
	}).Info("cells counted")
	return res, nil
}
