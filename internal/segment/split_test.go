package segment

import (
	"math"
	"testing"
)

func TestSplit_EmptyMap(t *testing.T) {
	lm := NewLabelMap(0, 0)
	got, stats, err := Split(lm, 100, DefaultSplitOptions())
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(got.Labels) != 0 {
		t.Errorf("got %d pixels, want 0", len(got.Labels))
	}
	if stats.Outcome != SplitEmptyMap {
		t.Errorf("outcome: got %s, want %s", stats.Outcome, SplitEmptyMap)
	}
}

func TestSplit_AllZero(t *testing.T) {
	lm := NewLabelMap(30, 20)
	got, stats, err := Split(lm, 100, DefaultSplitOptions())
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if !got.Equal(lm) {
		t.Error("all-zero map changed")
	}
	if stats.Outcome != SplitNoSeeds {
		t.Errorf("outcome: got %s, want %s", stats.Outcome, SplitNoSeeds)
	}
}

func TestSplit_NoBackgroundHasNoSeeds(t *testing.T) {
	lm := NewLabelMap(8, 8)
	for i := range lm.Labels {
		lm.Labels[i] = 1
	}
	got, stats, err := Split(lm, 10, DefaultSplitOptions())
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if stats.Outcome != SplitNoSeeds || stats.Seeds != 0 {
		t.Errorf("got %+v, want no seeds", stats)
	}
	if !got.Equal(lm) {
		t.Error("map changed although no seeds were found")
	}
}

func TestSplit_UndefinedMedian(t *testing.T) {
	m := NewBinaryMask(40, 40)
	drawDisk(m, 20, 20, 10)
	lm := Label(m)

	for _, median := range []float64{math.NaN(), math.Inf(1)} {
		got, stats, err := Split(lm, median, DefaultSplitOptions())
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if stats.Outcome != SplitNoMedian {
			t.Errorf("median %v: outcome %s, want %s", median, stats.Outcome, SplitNoMedian)
		}
		if !got.Equal(lm) {
			t.Errorf("median %v: map changed", median)
		}
	}
}

func TestSplit_SingleCompactBlobStaysWhole(t *testing.T) {
	m := NewBinaryMask(80, 80)
	drawDisk(m, 40, 40, 20)
	lm := Label(m)
	area := float64(m.Count())

	got, stats, err := Split(lm, area, SplitOptions{MinPeakDistance: 40, MinArea: 100})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if got.Count() != 1 {
		t.Errorf("got %d labels, want 1", got.Count())
	}
	if !got.Equal(lm) {
		t.Error("blob below twice the median was modified")
	}
	if stats.LargeRegions != 0 {
		t.Errorf("large regions: got %d, want 0", stats.LargeRegions)
	}
}

func TestSplit_TwoOverlappingDiscs(t *testing.T) {
	m := NewBinaryMask(160, 120)
	drawDisk(m, 60, 50, 25)
	drawDisk(m, 60, 95, 25)
	lm := Label(m)
	if lm.Count() != 1 {
		t.Fatalf("setup: discs should overlap into one component, got %d", lm.Count())
	}
	before := lm.Clone()

	got, stats, err := Split(lm, 1000, SplitOptions{MinPeakDistance: 40, MinArea: 100})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if stats.Outcome != SplitApplied {
		t.Fatalf("outcome: got %s, want %s", stats.Outcome, SplitApplied)
	}
	if stats.Seeds != 2 {
		t.Errorf("seeds: got %d, want 2", stats.Seeds)
	}
	if stats.LargeRegions != 1 {
		t.Errorf("large regions: got %d, want 1", stats.LargeRegions)
	}
	if got.Count() != 2 {
		t.Fatalf("got %d labels, want 2", got.Count())
	}
	if hasForeignNeighbor(got) {
		t.Error("split cells touch without a zero boundary")
	}

	// The boundary is made of former foreground pixels set to zero.
	boundary := 0
	for i := range got.Labels {
		if m.Pix[i] && got.Labels[i] == 0 {
			boundary++
		}
	}
	if boundary == 0 {
		t.Error("no zero-valued boundary pixels between the split cells")
	}

	left, right := got.At(50, 60), got.At(95, 60)
	if left == 0 || right == 0 || left == right {
		t.Errorf("disc centres: got labels %d and %d, want two distinct cells", left, right)
	}

	if !lm.Equal(before) {
		t.Error("Split modified its input")
	}
}

func TestSplit_OnlyLargeComponentsChange(t *testing.T) {
	m := NewBinaryMask(260, 120)
	drawDisk(m, 60, 50, 25)
	drawDisk(m, 60, 95, 25)
	drawDisk(m, 60, 200, 20) // separate, normal-sized
	lm := Label(m)

	got, _, err := Split(lm, 1300, SplitOptions{MinPeakDistance: 40, MinArea: 100})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if got.Count() != 3 {
		t.Fatalf("got %d labels, want 3", got.Count())
	}

	// The normal disc keeps its full extent.
	for y := 40; y <= 80; y++ {
		for x := 180; x <= 220; x++ {
			if m.Pix[y*260+x] && got.At(x, y) == 0 {
				t.Fatalf("pixel (%d,%d) of the normal disc was cleared", x, y)
			}
		}
	}
}

func TestSplit_RemovesSlivers(t *testing.T) {
	m := NewBinaryMask(160, 120)
	drawDisk(m, 60, 50, 25)
	drawDisk(m, 60, 95, 25)
	lm := Label(m)

	// A minimum area above either half removes both.
	got, _, err := Split(lm, 1000, SplitOptions{MinPeakDistance: 40, MinArea: 2500})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if got.Count() != 0 {
		t.Errorf("got %d labels, want 0", got.Count())
	}
}

func TestDefaultSplitOptions(t *testing.T) {
	opts := DefaultSplitOptions()
	if opts.MinPeakDistance != 40 || opts.MinArea != 1000 {
		t.Errorf("got %+v, want {40 1000}", opts)
	}
}
