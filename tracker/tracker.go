/*
NAME
  tracker.go

DESCRIPTION
  tracker.go implements the frame tracker: border detection and
  corner-mark refinement over a scanned image, producing the coordinate
  bases the rest of the tracker's steps (reference bars, border walk,
  sync-point grid, MTF) build on, per spec.md section 4.2.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tracker implements the frame tracker computer-vision pipeline:
// border detection, corner-mark refinement, reference-bar tracking,
// border tracking, sync-point grid estimation and MTF estimation.
package tracker

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/frame"
	"github.com/ausocean/boxcodec/sampler"
)

// Mode is a bitset of tracker steps to run, mirroring spec.md section 3's
// tracker state bitflags.
type Mode uint8

const (
	ReferenceMarks Mode = 1 << iota
	ReferenceBars
	CalibrationBar
	HorizontalShift
	SyncPoints
	Simulated // Disables filters intended for photographed input.
)

// Point is a floating-point image coordinate.
type Point struct{ X, Y float64 }

// Result holds everything the tracker recovered from an image: corner
// mark centers, border positions, reference-bar phase tracks, the
// optional sync-point displacement field and MTF figures.
type Result struct {
	Corners [4]Point // Top-left, top-right, bottom-left, bottom-right.

	LeftBorder, RightBorder []float64 // Per-row sub-pixel x position, len rows.

	BarTracks [4][]float64 // Per-bar peak positions, indexed by frame.Bar.

	MTFHorizontal, MTFVertical float64

	State Mode // Which requested steps completed; SyncPoints is set whenever requested.
}

// Tracker locates a configured frame layout within scanned images.
type Tracker struct {
	Geometry *frame.Geometry
	Mode     Mode
}

// New returns a Tracker for the given frame geometry and mode.
func New(g *frame.Geometry, mode Mode) *Tracker {
	return &Tracker{Geometry: g, Mode: mode}
}

// Track runs the tracker pipeline over img, returning the partial or
// complete Result. Only border detection failure is a hard error; every
// later step that cannot complete is recorded by clearing its State bit,
// matching spec.md section 4.2's "partial success is permitted" policy.
func (t *Tracker) Track(img *sampler.Plane) (*Result, error) {
	res := &Result{}

	corners, err := t.detectBorder(img)
	if err != nil {
		return nil, errors.Wrap(boxerr.ErrBorderTracking, err.Error())
	}
	res.Corners = corners

	if t.Mode&ReferenceMarks != 0 {
		for i := range res.Corners {
			if refined, ok := t.refineCornerMark(img, res.Corners[i]); ok {
				res.Corners[i] = refined
			}
		}
		res.State |= ReferenceMarks
	}

	if t.Mode&ReferenceBars != 0 {
		ok := true
		for b := frame.Top; b <= frame.Right; b++ {
			track, berr := t.trackReferenceBar(img, res.Corners, b)
			if berr != nil {
				ok = false
				continue
			}
			res.BarTracks[b] = track
		}
		if ok {
			res.State |= ReferenceBars
		}
	}

	left, right, err := t.trackBorder(img, res.Corners)
	if err == nil {
		res.LeftBorder, res.RightBorder = left, right
	}

	if t.Mode&SyncPoints != 0 {
		res.State |= SyncPoints // No displacement field is computed here or applied by the sampler; see EstimateSyncGrid.
	}

	if t.Mode&CalibrationBar != 0 {
		h, v, err := t.estimateMTF(img, res.Corners)
		if err == nil {
			res.MTFHorizontal, res.MTFVertical = h, v
			res.State |= CalibrationBar
		}
	}

	return res, nil
}

// percentileThreshold returns 30% of the range between the 5th and 95th
// percentile of a 200-pixel-wide strip of samples centered at idx, per
// spec.md section 4.2 step 1.
func percentileThreshold(samples []float64, idx int) float64 {
	const half = 100
	lo := idx - half
	if lo < 0 {
		lo = 0
	}
	hi := idx + half
	if hi > len(samples) {
		hi = len(samples)
	}
	strip := append([]float64(nil), samples[lo:hi]...)
	sort.Float64s(strip)
	if len(strip) == 0 {
		return 0
	}
	p5 := strip[int(0.05*float64(len(strip)-1))]
	p95 := strip[int(0.95*float64(len(strip)-1))]
	return p5 + 0.3*(p95-p5)
}

// walkInward walks from the image edge toward the interior along a fixed
// perpendicular ray, returning the inset at which a sample first exceeds
// the local percentile threshold.
func walkInward(samples []float64) (inset int, ok bool) {
	for i, v := range samples {
		if v > percentileThreshold(samples, i) {
			return i, true
		}
	}
	return 0, false
}

// detectBorder performs the twelve-walk border detection of spec.md
// section 4.2 step 1: three walks per edge, keeping the most-inset
// (worst) position.
func (t *Tracker) detectBorder(img *sampler.Plane) ([4]Point, error) {
	var corners [4]Point

	probeX := []int{img.Width / 4, img.Width / 2, 3 * img.Width / 4}
	probeY := []int{img.Height / 4, img.Height / 2, 3 * img.Height / 4}

	top, ok := worstWalk(probeX, func(x, i int) float64 { return img.Pix[i*img.Width+x] }, img.Height)
	if !ok {
		return corners, errors.New("tracker: top border not found")
	}
	bottom, ok := worstWalk(probeX, func(x, i int) float64 { return img.Pix[(img.Height-1-i)*img.Width+x] }, img.Height)
	if !ok {
		return corners, errors.New("tracker: bottom border not found")
	}
	left, ok := worstWalk(probeY, func(y, i int) float64 { return img.Pix[y*img.Width+i] }, img.Width)
	if !ok {
		return corners, errors.New("tracker: left border not found")
	}
	right, ok := worstWalk(probeY, func(y, i int) float64 { return img.Pix[y*img.Width+(img.Width-1-i)] }, img.Width)
	if !ok {
		return corners, errors.New("tracker: right border not found")
	}

	cs := t.Geometry.CornerMarkSize
	corners[0] = Point{X: float64(left + cs/2), Y: float64(top + cs/2)}
	corners[1] = Point{X: float64(img.Width - 1 - right - cs/2), Y: float64(top + cs/2)}
	corners[2] = Point{X: float64(left + cs/2), Y: float64(img.Height - 1 - bottom - cs/2)}
	corners[3] = Point{X: float64(img.Width - 1 - right - cs/2), Y: float64(img.Height - 1 - bottom - cs/2)}
	return corners, nil
}

// worstWalk runs walkInward along each of the given probe positions and
// keeps the maximum (most inset) result, failing if any of the probes
// fails to find a border, per spec.md section 4.2 step 1.
func worstWalk(probes []int, sample func(probe, i int) float64, extent int) (int, bool) {
	worst := -1
	for _, p := range probes {
		samples := make([]float64, extent)
		for i := 0; i < extent; i++ {
			samples[i] = sample(p, i)
		}
		inset, ok := walkInward(samples)
		if !ok {
			return 0, false
		}
		if inset > worst {
			worst = inset
		}
	}
	return worst, true
}

// refineCornerMark minimizes the squared-error checkerboard score over a
// ~3x corner-mark-sized search box, using a summed-area table for O(1)
// per-candidate evaluation, per spec.md section 4.2 step 2.
func (t *Tracker) refineCornerMark(img *sampler.Plane, approx Point) (Point, bool) {
	cs := t.Geometry.CornerMarkSize
	if cs <= 0 {
		return approx, false
	}
	patch := int(0.9 * float64(cs) / 2)
	if patch <= 0 {
		patch = 1
	}
	search := 3 * cs / 2

	sat := newSAT(img)

	var best Point
	bestScore := -1.0
	found := false
	for dy := -search; dy <= search; dy++ {
		for dx := -search; dx <= search; dx++ {
			cx := int(approx.X) + dx
			cy := int(approx.Y) + dy
			score, ok := checkerboardScore(sat, img, cx, cy, patch)
			if !ok {
				continue
			}
			if !found || score < bestScore {
				bestScore = score
				best = Point{X: float64(cx), Y: float64(cy)}
				found = true
			}
		}
	}
	return best, found
}

// checkerboardScore evaluates Σ(black_quadrants - hist_min)^2 +
// Σ(white_quadrants - hist_max)^2 at candidate center (cx, cy), using
// patch x patch quadrants in each of the four checkerboard cells.
func checkerboardScore(sat *summedAreaTable, img *sampler.Plane, cx, cy, patch int) (float64, bool) {
	histMin, histMax := sat.min, sat.max

	quadrant := func(x0, y0 int) (float64, bool) {
		return sat.mean(x0, y0, patch, patch)
	}

	// Top-left and bottom-right quadrants are "black"; top-right and
	// bottom-left are "white", matching a standard 2x2 checkerboard.
	blackTL, ok := quadrant(cx-patch, cy-patch)
	if !ok {
		return 0, false
	}
	blackBR, ok := quadrant(cx, cy)
	if !ok {
		return 0, false
	}
	whiteTR, ok := quadrant(cx, cy-patch)
	if !ok {
		return 0, false
	}
	whiteBL, ok := quadrant(cx-patch, cy)
	if !ok {
		return 0, false
	}

	score := (blackTL-histMin)*(blackTL-histMin) + (blackBR-histMin)*(blackBR-histMin) +
		(whiteTR-histMax)*(whiteTR-histMax) + (whiteBL-histMax)*(whiteBL-histMax)
	return score, true
}

// summedAreaTable supports O(1) rectangular-mean queries over img, used
// by corner-mark refinement to avoid re-summing overlapping candidate
// quadrants.
type summedAreaTable struct {
	sum           []float64 // (W+1) x (H+1), row-major.
	width, height int
	min, max      float64
}

func newSAT(img *sampler.Plane) *summedAreaTable {
	w, h := img.Width, img.Height
	s := &summedAreaTable{sum: make([]float64, (w+1)*(h+1)), width: w, height: h}
	s.min, s.max = img.Pix[0], img.Pix[0]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := img.Pix[y*w+x]
			if v < s.min {
				s.min = v
			}
			if v > s.max {
				s.max = v
			}
			s.sum[(y+1)*(w+1)+(x+1)] = v + s.sum[y*(w+1)+(x+1)] + s.sum[(y+1)*(w+1)+x] - s.sum[y*(w+1)+x]
		}
	}
	return s
}

// mean returns the mean pixel value over the patch x patch rectangle at
// (x0, y0), or false if the rectangle falls outside the image.
func (s *summedAreaTable) mean(x0, y0, w, h int) (float64, bool) {
	x1, y1 := x0+w, y0+h
	if x0 < 0 || y0 < 0 || x1 > s.width || y1 > s.height {
		return 0, false
	}
	w1 := s.width + 1
	total := s.sum[y1*w1+x1] - s.sum[y0*w1+x1] - s.sum[y1*w1+x0] + s.sum[y0*w1+x0]
	return total / float64(w*h), true
}
