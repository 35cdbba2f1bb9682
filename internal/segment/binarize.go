package segment

import (
	"fmt"
	"math"
	"sort"
)

// Mode selects the channel that carries the stain signal.
type Mode string

// Supported binarization modes.
const (
	ModeRed   Mode = "r"
	ModeGreen Mode = "g"
	ModeBlue  Mode = "b"
)

// channelExponents gives the power applied to each channel per mode. The
// selected channel is squared; the others are raised to zero and contribute
// a constant 1 each.
var channelExponents = map[Mode][3]float64{
	ModeRed:   {2, 0, 0},
	ModeGreen: {0, 2, 0},
	ModeBlue:  {0, 0, 2},
}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if _, ok := channelExponents[m]; !ok {
		return "", fmt.Errorf("%w: unsupported mode %q (want r, g or b)", ErrInvalidParameter, s)
	}
	return m, nil
}

// BinarizeResult holds the foreground mask and the threshold that produced it.
type BinarizeResult struct {
	Mask      *BinaryMask
	Threshold float64
}

// Binarize thresholds the weighted channel field of img.
//
// Parameters:
//   - img: The source planes, at 8-bit or 16-bit scale.
//   - mode: The channel carrying the stain (ModeRed, ModeGreen or ModeBlue).
//
// Returns:
//   - *BinarizeResult: The foreground mask and the threshold on the field.
//   - error: ErrInvalidParameter for an unknown mode.
//
// # Channel Field
//
// The field is r^er + g^eg + b^eb with the exponents of mode. The selected
// channel is squared and the other two are raised to zero, so every pixel
// holds selected² + 2.
//
// # Threshold
//
// Li's minimum cross-entropy threshold is computed on the field (see
// LiThreshold) and pixels strictly above it are foreground. The constant
// offset does not change the mask because the search runs on the min-shifted
// field. A constant image yields its own value as threshold and therefore an
// empty mask.
func Binarize(img *Image, mode Mode) (*BinarizeResult, error) {
	exps, ok := channelExponents[mode]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported mode %q (want r, g or b)", ErrInvalidParameter, mode)
	}

	field := ChannelField(img, exps)
	t := LiThreshold(field)

	mask := NewBinaryMask(img.Width, img.Height)
	for i, v := range field {
		mask.Pix[i] = v > t
	}
	return &BinarizeResult{Mask: mask, Threshold: t}, nil
}

// ChannelField computes the per-pixel sum of channel powers.
func ChannelField(img *Image, exps [3]float64) []float64 {
	field := make([]float64, img.Width*img.Height)
	for c, e := range exps {
		plane := img.planes[c]
		for i, v := range plane {
			switch e {
			case 0:
				field[i]++
			case 1:
				field[i] += v
			case 2:
				field[i] += v * v
			default:
				field[i] += math.Pow(v, e)
			}
		}
	}
	return field
}

// LiThreshold returns the minimum cross-entropy threshold of values using
// Li's iterative method.
//
// The tolerance is half the smallest gap between distinct values and the
// first guess is the mean. NaNs are ignored. A constant input returns its
// single value; an empty input returns 0.
func LiThreshold(values []float64) float64 {
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		return 0
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return lo
	}

	minGap := math.Inf(1)
	for i := 1; i < len(sorted); i++ {
		if d := sorted[i] - sorted[i-1]; d > 0 && d < minGap {
			minGap = d
		}
	}
	tolerance := minGap / 2

	// Work on the shifted field so the logarithms stay defined.
	sum := 0.0
	for i := range data {
		data[i] -= lo
		sum += data[i]
	}

	tNext := sum / float64(len(data))
	tCurr := -2 * tolerance
	for math.Abs(tNext-tCurr) > tolerance {
		tCurr = tNext
		var foreSum, backSum float64
		var foreN, backN int
		for _, v := range data {
			if v > tCurr {
				foreSum += v
				foreN++
			} else {
				backSum += v
				backN++
			}
		}
		if foreN == 0 || backN == 0 {
			break
		}
		meanFore := foreSum / float64(foreN)
		meanBack := backSum / float64(backN)
		if meanBack == 0 {
			break
		}
		tNext = (meanBack - meanFore) / (math.Log(meanBack) - math.Log(meanFore))
	}
	return tNext + lo
}
