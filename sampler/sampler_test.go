package sampler

import (
	"testing"
)

func uniformPlane(w, h int, v float64) *Plane {
	pix := make([]float64, w*h)
	for i := range pix {
		pix[i] = v
	}
	return &Plane{Pix: pix, Width: w, Height: h}
}

func TestSampleUniform(t *testing.T) {
	img := uniformPlane(64, 64, 123.0)
	s := New(4, 4)
	out, err := s.Sample(img)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 16 {
		t.Fatalf("got %d samples, want 16", len(out))
	}
	for _, v := range out {
		if v < 122.9 || v > 123.1 {
			t.Fatalf("sample %v far from uniform plane value 123", v)
		}
	}
}

func TestQuantizeLevelsInRange(t *testing.T) {
	q, err := NewQuantizer(4)
	if err != nil {
		t.Fatal(err)
	}
	calib := []float64{0, 30, 60, 90, 120, 150, 180, 210, 240, 255}
	if err := q.Calibrate(calib); err != nil {
		t.Fatal(err)
	}
	levels, err := q.Quantize([]float64{5, 95, 160, 250})
	if err != nil {
		t.Fatal(err)
	}
	for i, l := range levels {
		if l < 0 || l >= 4 {
			t.Fatalf("level %d at index %d out of range", l, i)
		}
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	levels := []int{0, 1, 2, 3, 1, 0, 3, 2}
	bps := BitsPerSymbol(4)
	packed := Pack(levels, bps)
	got := Unpack(packed, len(levels), bps)
	for i := range levels {
		if got[i] != levels[i] {
			t.Fatalf("index %d: got %d want %d", i, got[i], levels[i])
		}
	}
}
