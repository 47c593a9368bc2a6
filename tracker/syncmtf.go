/*
NAME
  syncmtf.go

DESCRIPTION
  syncmtf.go implements sync-point grid bilinear displacement estimation
  and MTF estimation from reference-bar black/white samples, per spec.md
  section 4.2 steps 5 and 6.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tracker

import (
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/frame"
	"github.com/ausocean/boxcodec/sampler"
)

// DisplacementField is a bilinear grid of (dx, dy) displacements built by
// EstimateSyncGrid from the reference-bar phase tracks. Track does not
// build one, and the sampler does not apply one.
type DisplacementField struct {
	Cols, Rows int
	DX, DY     []float64 // len Cols*Rows.
}

// At returns the bilinearly interpolated displacement at fractional grid
// position (u, v), u, v in [0, Cols-1] x [0, Rows-1].
func (d *DisplacementField) At(u, v float64) (dx, dy float64) {
	if d == nil || d.Cols < 2 || d.Rows < 2 {
		return 0, 0
	}
	x0 := int(u)
	y0 := int(v)
	if x0 < 0 {
		x0 = 0
	}
	if x0 > d.Cols-2 {
		x0 = d.Cols - 2
	}
	if y0 < 0 {
		y0 = 0
	}
	if y0 > d.Rows-2 {
		y0 = d.Rows - 2
	}
	fx := u - float64(x0)
	fy := v - float64(y0)

	at := func(x, y int) (float64, float64) {
		i := y*d.Cols + x
		return d.DX[i], d.DY[i]
	}
	dx00, dy00 := at(x0, y0)
	dx10, dy10 := at(x0+1, y0)
	dx01, dy01 := at(x0, y0+1)
	dx11, dy11 := at(x0+1, y0+1)

	dx = bilerp(dx00, dx10, dx01, dx11, fx, fy)
	dy = bilerp(dy00, dy10, dy01, dy11, fx, fy)
	return dx, dy
}

func bilerp(v00, v10, v01, v11, fx, fy float64) float64 {
	top := v00*(1-fx) + v10*fx
	bottom := v01*(1-fx) + v11*fx
	return top*(1-fy) + bottom*fy
}

// EstimateSyncGrid derives a bilinear displacement field from the
// reference-bar phase tracks: each bar's deviation from its expected
// linear phase ramp is treated as a 1D displacement observation, and the
// four bars' observations are combined into a coarse 2x2 grid spanning
// the content container, per spec.md section 4.2 step 5.
func EstimateSyncGrid(res *Result) (*DisplacementField, error) {
	if len(res.BarTracks[frame.Top]) == 0 || len(res.BarTracks[frame.Left]) == 0 {
		return nil, errors.Wrap(boxerr.ErrBorderTracking, "tracker: sync-point grid requires top and left reference-bar tracks")
	}

	topDelta := rampDeviation(res.BarTracks[frame.Top])
	bottomDelta := rampDeviation(res.BarTracks[frame.Bottom])
	leftDelta := rampDeviation(res.BarTracks[frame.Left])
	rightDelta := rampDeviation(res.BarTracks[frame.Right])

	field := &DisplacementField{Cols: 2, Rows: 2, DX: make([]float64, 4), DY: make([]float64, 4)}
	field.DX[0] = leftDelta
	field.DX[1] = rightDelta
	field.DX[2] = leftDelta
	field.DX[3] = rightDelta
	field.DY[0] = topDelta
	field.DY[1] = topDelta
	field.DY[2] = bottomDelta
	field.DY[3] = bottomDelta
	return field, nil
}

// rampDeviation returns the mean deviation of track from the best-fit
// linear ramp through it, a proxy for the bar's net sync-point
// displacement.
func rampDeviation(track []float64) float64 {
	if len(track) == 0 {
		return 0
	}
	n := float64(len(track))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range track {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	var sumDev float64
	for i, y := range track {
		fit := slope*float64(i) + intercept
		sumDev += y - fit
	}
	return sumDev / n
}

// estimateMTF samples each reference bar's black/white sample pairs in
// the tracked image and computes per-bar MTF = (white_mean - black_mean)
// / (calibration_white - calibration_black), averaged into horizontal
// (top/bottom) and vertical (left/right) figures, per spec.md section 4.2
// step 6. Calibration white and black are fixed at 255 and 0; the
// calibration bar is not sampled.
func (t *Tracker) estimateMTF(img *sampler.Plane, corners [4]Point) (horizontal, vertical float64, err error) {
	calibWhite, calibBlack := 255.0, 0.0

	barMTF := func(b frame.Bar) (float64, error) {
		strip, err := sampleBarStrip(img, corners, b)
		if err != nil {
			return 0, err
		}
		blackMean, whiteMean := blackWhiteMeans(strip)
		denom := calibWhite - calibBlack
		if denom == 0 {
			return 0, errors.Wrap(boxerr.ErrConfig, "tracker: degenerate calibration range")
		}
		return (whiteMean - blackMean) / denom, nil
	}

	top, err1 := barMTF(frame.Top)
	bottom, err2 := barMTF(frame.Bottom)
	if err1 != nil || err2 != nil {
		return 0, 0, errors.Wrap(boxerr.ErrBorderTracking, "tracker: MTF estimation requires top and bottom reference bars")
	}
	left, err3 := barMTF(frame.Left)
	right, err4 := barMTF(frame.Right)
	if err3 != nil || err4 != nil {
		return 0, 0, errors.Wrap(boxerr.ErrBorderTracking, "tracker: MTF estimation requires left and right reference bars")
	}

	return (top + bottom) / 2, (left + right) / 2, nil
}

// blackWhiteMeans splits strip samples into below/at-or-above-mean groups as
// a proxy for the bar's known alternating black/white pairs, returning
// their means.
func blackWhiteMeans(strip []float64) (black, white float64) {
	if len(strip) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range strip {
		sum += v
	}
	mean := sum / float64(len(strip))

	var blackSum, whiteSum float64
	var blackN, whiteN int
	for _, v := range strip {
		if v < mean {
			blackSum += v
			blackN++
		} else {
			whiteSum += v
			whiteN++
		}
	}
	if blackN > 0 {
		black = blackSum / float64(blackN)
	}
	if whiteN > 0 {
		white = whiteSum / float64(whiteN)
	}
	return black, white
}
