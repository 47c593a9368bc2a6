package tracker

import (
	"math"
	"testing"

	"github.com/ausocean/boxcodec/config"
	"github.com/ausocean/boxcodec/frame"
	"github.com/ausocean/boxcodec/sampler"
)

// syntheticFrame builds a W x H plane with a uniform bright interior
// starting at inset on every edge and black/white checkerboard corner
// marks of size cs at each corner of that interior, matching spec.md's
// scenario 6 synthetic tracker test image.
func syntheticFrame(w, h, inset, cs int) *sampler.Plane {
	pix := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= inset && x < w-inset && y >= inset && y < h-inset {
				pix[y*w+x] = 200
			}
		}
	}
	stamp := func(cx, cy int) {
		for dy := -cs / 2; dy < cs/2; dy++ {
			for dx := -cs / 2; dx < cs/2; dx++ {
				x, y := cx+dx, cy+dy
				if x < 0 || x >= w || y < 0 || y >= h {
					continue
				}
				black := (dx < 0) == (dy < 0)
				if black {
					pix[y*w+x] = 0
				} else {
					pix[y*w+x] = 255
				}
			}
		}
	}
	stamp(inset+cs/2, inset+cs/2)
	stamp(w-inset-cs/2, inset+cs/2)
	stamp(inset+cs/2, h-inset-cs/2)
	stamp(w-inset-cs/2, h-inset-cs/2)
	return &sampler.Plane{Pix: pix, Width: w, Height: h}
}

func TestDetectBorderAndRefineCornerMarks(t *testing.T) {
	const w, h = 256, 256
	const inset, cs = 20, 16
	img := syntheticFrame(w, h, inset, cs)

	g, err := frame.New(config.FrameFormat{
		Width: w, Height: h,
		Border: 0, BorderGap: 0,
		CornerMarkSize: cs, CornerMarkGap: 0,
		MaxLevelsPerSymbol: 2,
	})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}

	tr := New(g, ReferenceMarks)
	res, err := tr.Track(img)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}

	want := [4]Point{
		{inset + cs/2, inset + cs/2},
		{w - inset - cs/2, inset + cs/2},
		{inset + cs/2, h - inset - cs/2},
		{w - inset - cs/2, h - inset - cs/2},
	}
	for i, c := range res.Corners {
		if math.Abs(c.X-want[i].X) > 3 || math.Abs(c.Y-want[i].Y) > 3 {
			t.Errorf("corner %d = %+v, want close to %+v", i, c, want[i])
		}
	}
}

func TestPercentileThreshold(t *testing.T) {
	samples := make([]float64, 300)
	for i := range samples {
		samples[i] = 10
	}
	for i := 150; i < 300; i++ {
		samples[i] = 200
	}
	th := percentileThreshold(samples, 150)
	if th <= 10 || th >= 200 {
		t.Fatalf("threshold %v out of expected range", th)
	}
}

func TestDisplacementFieldBilinear(t *testing.T) {
	d := &DisplacementField{Cols: 2, Rows: 2, DX: []float64{0, 2, 0, 2}, DY: []float64{0, 0, 4, 4}}
	dx, dy := d.At(0.5, 0.5)
	if math.Abs(dx-1) > 1e-9 || math.Abs(dy-2) > 1e-9 {
		t.Fatalf("At(0.5, 0.5) = (%v, %v), want (1, 2)", dx, dy)
	}
}
