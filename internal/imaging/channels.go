package imaging

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/cell-counter-mcp/internal/segment"
)

// ChannelStats summarizes one colour channel on the source scale (0-255 or
// 0-65535 for 16-bit images).
type ChannelStats struct {
	Channel string  `json:"channel"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
}

// ChannelStatsResult holds per-channel statistics for an image.
type ChannelStatsResult struct {
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Channels []ChannelStats `json:"channels"`

	// SuggestedMode is the binarization mode of the channel with the widest
	// spread, a reasonable first guess for the stain channel.
	SuggestedMode segment.Mode `json:"suggested_mode"`
}

var channelModes = [3]segment.Mode{segment.ModeRed, segment.ModeGreen, segment.ModeBlue}

// AnalyzeChannels computes min, max, mean and standard deviation of each
// channel of img.
func AnalyzeChannels(img image.Image) (*ChannelStatsResult, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}
	return ChannelStatsOf(segment.FromImage(img)), nil
}

// ChannelStatsOf computes channel statistics for already-converted planes.
// si must have at least one pixel.
func ChannelStatsOf(si *segment.Image) *ChannelStatsResult {
	res := &ChannelStatsResult{
		Width:    si.Width,
		Height:   si.Height,
		Channels: make([]ChannelStats, 0, len(channelModes)),
	}
	best := -1.0
	for c, mode := range channelModes {
		plane := si.Plane(c)
		cs := ChannelStats{
			Channel: string(mode),
			Min:     floats.Min(plane),
			Max:     floats.Max(plane),
		}
		if len(plane) > 1 {
			cs.Mean, cs.StdDev = stat.MeanStdDev(plane, nil)
		} else {
			cs.Mean = plane[0]
		}
		if cs.StdDev > best {
			best = cs.StdDev
			res.SuggestedMode = mode
		}
		res.Channels = append(res.Channels, cs)
	}
	return res
}
