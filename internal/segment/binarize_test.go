package segment

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"r", ModeRed, false},
		{"g", ModeGreen, false},
		{"b", ModeBlue, false},
		{"B", "", true},
		{"rgb", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Errorf("got %v, want ErrInvalidParameter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBinarize_InvalidMode(t *testing.T) {
	img := FromImage(createDiskImage(10, 10, color.RGBA{A: 255}, color.RGBA{B: 255, A: 255}, nil))
	res, err := Binarize(img, Mode("x"))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("got %v, want ErrInvalidParameter", err)
	}
	if res != nil {
		t.Error("expected no result for an invalid mode")
	}
}

func TestBinarize_SelectsChannel(t *testing.T) {
	bg := color.RGBA{0, 0, 0, 255}
	fg := color.RGBA{0, 0, 255, 255}
	img := FromImage(createDiskImage(40, 40, bg, fg, [][3]int{{20, 20, 8}}))

	res, err := Binarize(img, ModeBlue)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			dy, dx := y-20, x-20
			want := dy*dy+dx*dx <= 64
			if got := res.Mask.Pix[y*40+x]; got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
	if res.Threshold <= 2 || res.Threshold >= 255*255+2 {
		t.Errorf("threshold %v outside the field range", res.Threshold)
	}

	// The red channel is flat, so nothing rises above its threshold.
	red, err := Binarize(img, ModeRed)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	if n := red.Mask.Count(); n != 0 {
		t.Errorf("red mode on a blue image: got %d foreground pixels, want 0", n)
	}
}

func TestBinarize_Deterministic(t *testing.T) {
	w, h := 32, 24
	r := make([]float64, w*h)
	g := make([]float64, w*h)
	b := make([]float64, w*h)
	for i := range r {
		r[i] = float64((i * 37) % 256)
		g[i] = float64((i * 11) % 200)
		b[i] = float64((i*i + 3) % 251)
	}
	img, err := NewImage(w, h, r, g, b)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}

	for _, mode := range []Mode{ModeRed, ModeGreen, ModeBlue} {
		first, err := Binarize(img, mode)
		if err != nil {
			t.Fatalf("Binarize(%s) failed: %v", mode, err)
		}
		second, err := Binarize(img, mode)
		if err != nil {
			t.Fatalf("Binarize(%s) failed: %v", mode, err)
		}
		if !first.Mask.Equal(second.Mask) {
			t.Errorf("mode %s: masks differ between runs", mode)
		}
		if first.Threshold != second.Threshold {
			t.Errorf("mode %s: thresholds differ: %v vs %v", mode, first.Threshold, second.Threshold)
		}
	}
}

func TestChannelField(t *testing.T) {
	img, err := NewImage(2, 1, []float64{3, 0}, []float64{4, 9}, []float64{5, 1})
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}

	tests := []struct {
		name string
		exps [3]float64
		want []float64
	}{
		{"red squared", channelExponents[ModeRed], []float64{9 + 2, 0 + 2}},
		{"green squared", channelExponents[ModeGreen], []float64{16 + 2, 81 + 2}},
		{"blue squared", channelExponents[ModeBlue], []float64{25 + 2, 1 + 2}},
		{"linear sum", [3]float64{1, 1, 1}, []float64{12, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChannelField(img, tt.exps)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("pixel %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLiThreshold(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		lo, hi float64 // threshold must satisfy lo <= t < hi
	}{
		{"two levels", []float64{0, 0, 0, 10, 10, 10}, 0, 10},
		{"unbalanced", []float64{1, 1, 1, 1, 1, 1, 1, 50, 52}, 1, 50},
		{"clusters", []float64{10, 12, 11, 13, 200, 210, 205, 199}, 13, 199},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LiThreshold(tt.values)
			if got < tt.lo || got >= tt.hi {
				t.Errorf("got %v, want within [%v, %v)", got, tt.lo, tt.hi)
			}
		})
	}
}

func TestLiThreshold_EdgeCases(t *testing.T) {
	if got := LiThreshold(nil); got != 0 {
		t.Errorf("empty input: got %v, want 0", got)
	}
	if got := LiThreshold([]float64{7, 7, 7}); got != 7 {
		t.Errorf("constant input: got %v, want 7", got)
	}
	if got := LiThreshold([]float64{math.NaN(), 4, 4}); got != 4 {
		t.Errorf("NaN ignored: got %v, want 4", got)
	}
}

func TestLiThreshold_ShiftInvariant(t *testing.T) {
	base := []float64{100, 400, 900, 40000, 44100, 48400, 900, 400}
	shifted := make([]float64, len(base))
	for i, v := range base {
		shifted[i] = v + 2
	}

	a := LiThreshold(base)
	b := LiThreshold(shifted)
	if math.Abs((b-2)-a) > 1e-9 {
		t.Errorf("shifted threshold: got %v, want %v", b, a+2)
	}
}
