/*
NAME
  bordertrack.go

DESCRIPTION
  bordertrack.go implements columnwise border tracking: per-row sub-pixel
  left/right border positions via Blackman-windowed differentiator
  correlation and parabolic interpolation, smoothed by a double moving
  average (filtfilt), dropout interpolation, and a median filter, per
  spec.md section 4.2 step 4.

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
	"errors"
	"math"
	"sort"

	"github.com/mjibson/go-dsp/window"

	"github.com/ausocean/boxcodec/sampler"
)

const (
	blackmanTaps  = 15
	filtfiltTaps  = 127
	medianTaps    = 101
	dropoutPowerF = 0.02
)

// trackBorder derives per-row sub-pixel left/right border x-coordinates
// between the top and bottom corner marks, per spec.md section 4.2 step 4.
func (t *Tracker) trackBorder(img *sampler.Plane, corners [4]Point) (left, right []float64, err error) {
	top := int(math.Min(corners[0].Y, corners[1].Y))
	bottom := int(math.Max(corners[2].Y, corners[3].Y))
	if bottom <= top {
		return nil, nil, errors.New("tracker: no rows between top and bottom corner marks")
	}
	rows := bottom - top

	left = make([]float64, rows)
	right = make([]float64, rows)
	kernel := blackmanDifferentiator(blackmanTaps)

	for r := 0; r < rows; r++ {
		y := top + r
		left[r] = subpixelEdge(img, y, kernel, true)
		right[r] = subpixelEdge(img, y, kernel, false)
	}

	left = filtfilt(left, filtfiltTaps)
	right = filtfilt(right, filtfiltTaps)

	left = interpolateDropouts(left)
	right = interpolateDropouts(right)

	left = medianFilter(left, medianTaps)
	right = medianFilter(right, medianTaps)

	return left, right, nil
}

// blackmanDifferentiator returns a Blackman-windowed ±1 differentiator
// kernel of the given length, per spec.md section 4.2 step 4.
func blackmanDifferentiator(n int) []float64 {
	win := window.Blackman(n)
	k := make([]float64, n)
	mid := n / 2
	for i := range k {
		d := 0.0
		switch {
		case i < mid:
			d = -1
		case i > mid:
			d = 1
		}
		k[i] = d * win[i]
	}
	return k
}

// subpixelEdge correlates the Blackman differentiator against row y's
// pixel values near the left (or right) edge of the image, locating the
// correlation peak, then refines it with a 3-point parabolic
// interpolation.
func subpixelEdge(img *sampler.Plane, y int, kernel []float64, left bool) float64 {
	half := len(kernel) / 2
	searchW := img.Width / 4
	if searchW < half+2 {
		searchW = half + 2
	}

	best := half
	bestScore := math.Inf(-1)
	for c := half; c < searchW; c++ {
		score := correlateAt(img, y, c, kernel, left)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}

	sm1 := correlateAt(img, y, best-1, kernel, left)
	s0 := correlateAt(img, y, best, kernel, left)
	sp1 := correlateAt(img, y, best+1, kernel, left)
	offset := parabolicPeakOffset(sm1, s0, sp1)

	pos := float64(best) + offset
	if !left {
		pos = float64(img.Width-1) - pos
	}
	return pos
}

func correlateAt(img *sampler.Plane, y, center int, kernel []float64, left bool) float64 {
	half := len(kernel) / 2
	sum := 0.0
	for i, k := range kernel {
		offset := i - half
		x := center + offset
		if !left {
			x = img.Width - 1 - x
		}
		if x < 0 {
			x = 0
		}
		if x >= img.Width {
			x = img.Width - 1
		}
		sum += k * img.Pix[y*img.Width+x]
	}
	return sum
}

// parabolicPeakOffset fits a parabola through three equally spaced
// samples centered on the discrete peak and returns the sub-sample
// offset of its maximum.
func parabolicPeakOffset(sm1, s0, sp1 float64) float64 {
	denom := sm1 - 2*s0 + sp1
	if denom == 0 {
		return 0
	}
	return 0.5 * (sm1 - sp1) / denom
}

// filtfilt applies an n-tap moving average twice (forward, then again),
// zero-phase smoothing per spec.md section 4.2 step 4.
func filtfilt(x []float64, n int) []float64 {
	return movingAverage(movingAverage(x, n), n)
}

func movingAverage(x []float64, n int) []float64 {
	if len(x) == 0 {
		return x
	}
	half := n / 2
	out := make([]float64, len(x))
	for i := range x {
		sum := 0.0
		count := 0
		for j := -half; j <= half; j++ {
			k := i + j
			if k < 0 || k >= len(x) {
				continue
			}
			sum += x[k]
			count++
		}
		out[i] = sum / float64(count)
	}
	return out
}

// interpolateDropouts replaces runs where the residual power (squared
// deviation from a local moving average) exceeds 2% of the mean squared
// signal with a linear interpolation across the run, per spec.md section
// 4.2 step 4.
func interpolateDropouts(x []float64) []float64 {
	if len(x) == 0 {
		return x
	}
	smooth := movingAverage(x, 15)
	meanSq := 0.0
	for _, v := range x {
		meanSq += v * v
	}
	meanSq /= float64(len(x))

	bad := make([]bool, len(x))
	for i, v := range x {
		d := v - smooth[i]
		if meanSq > 0 && d*d > dropoutPowerF*meanSq {
			bad[i] = true
		}
	}

	out := append([]float64(nil), x...)
	i := 0
	for i < len(out) {
		if !bad[i] {
			i++
			continue
		}
		j := i
		for j < len(out) && bad[j] {
			j++
		}
		lo := i - 1
		hi := j
		var loVal, hiVal float64
		if lo >= 0 {
			loVal = out[lo]
		} else if hi < len(out) {
			loVal = out[hi]
		}
		if hi < len(out) {
			hiVal = out[hi]
		} else {
			hiVal = loVal
		}
		span := hi - lo
		for k := i; k < j; k++ {
			frac := float64(k-lo) / float64(span)
			out[k] = loVal + frac*(hiVal-loVal)
		}
		i = j
	}
	return out
}

// medianFilter applies an n-sample median filter.
func medianFilter(x []float64, n int) []float64 {
	if len(x) == 0 {
		return x
	}
	half := n / 2
	out := make([]float64, len(x))
	buf := make([]float64, 0, n)
	for i := range x {
		buf = buf[:0]
		for j := -half; j <= half; j++ {
			k := i + j
			if k < 0 || k >= len(x) {
				continue
			}
			buf = append(buf, x[k])
		}
		sort.Float64s(buf)
		out[i] = buf[len(buf)/2]
	}
	return out
}
