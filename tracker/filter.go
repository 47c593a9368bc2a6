/*
NAME
  filter.go

DESCRIPTION
  filter.go implements reference-bar tracking: a narrow bandpass filter
  built the same way the PCM bandpass filter is (windowed-sinc low/high
  pass convolved together via FFT), followed by a 3-sample phase-equation
  solve per peak, per spec.md section 4.2 step 3.

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
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/frame"
	"github.com/ausocean/boxcodec/sampler"
)

// bandpassCoeffs builds a narrow bandpass FIR centered at fc (as a
// fraction of the sampling rate) with the given fractional bandwidth,
// using the same windowed-sinc low/high-pass construction the PCM
// bandpass filter uses, convolved in the frequency domain.
func bandpassCoeffs(fc, bandwidth float64, taps int) []float64 {
	lowerFc := fc - bandwidth/2
	upperFc := fc + bandwidth/2
	if lowerFc <= 0 {
		lowerFc = 0.01
	}
	if upperFc >= 0.5 {
		upperFc = 0.49
	}
	hp := sincFilter(lowerFc, taps, -1, 1-2*lowerFc)
	lp := sincFilter(upperFc, taps, 1, 2*upperFc)
	out, err := fastConvolve(hp, lp)
	if err != nil {
		return lp
	}
	return out
}

// sincFilter builds one windowed-sinc low/high-pass filter, the same way
// newLoHiFilter does: factor1 selects the sign for high-pass vs
// low-pass, factor2 is the center-tap gain.
func sincFilter(fd float64, taps int, factor1, factor2 float64) []float64 {
	size := taps + 1
	coeffs := make([]float64, size)
	b := 2 * math.Pi * fd
	win := window.FlatTop(size)
	for n := 0; n < taps/2; n++ {
		c := float64(n) - float64(taps)/2
		y := math.Sin(c*b) / (math.Pi * c)
		coeffs[n] = factor1 * y * win[n]
		coeffs[size-1-n] = coeffs[n]
	}
	coeffs[taps/2] = factor2 * win[taps/2]
	return coeffs
}

// fastConvolve computes the linear convolution of x and h via FFT,
// identical in technique to the PCM codec's fastConvolve.
func fastConvolve(x, h []float64) ([]float64, error) {
	if len(x) == 0 || len(h) == 0 {
		return nil, errors.New("tracker: convolution requires non-empty inputs")
	}
	convLen := len(x) + len(h) - 1
	padLen := int(math.Pow(2, math.Ceil(math.Log2(float64(convLen)))))

	xp := make([]float64, padLen)
	copy(xp, x)
	hp := make([]float64, padLen)
	copy(hp, h)

	xf, hf := fft.FFTReal(xp), fft.FFTReal(hp)
	yf := make([]complex128, padLen)
	for i := range xf {
		yf[i] = xf[i] * hf[i]
	}
	iy := fft.IFFT(yf)
	y := make([]float64, convLen)
	for i := range y {
		y[i] = real(iy[i])
	}
	return y, nil
}

// solvePhase solves the 3-sample phase equation y = a*cos(x) + b*sin(x) + c
// for (a, b, c) at three equally spaced sample points x in {0, 1, 2} with
// observed values y, then returns the phase offset atan2(b, a).
func solvePhase(y0, y1, y2 float64) float64 {
	A := mat.NewDense(3, 3, []float64{
		math.Cos(0), math.Sin(0), 1,
		math.Cos(1), math.Sin(1), 1,
		math.Cos(2), math.Sin(2), 1,
	})
	b := mat.NewVecDense(3, []float64{y0, y1, y2})
	var x mat.VecDense
	if err := x.SolveVec(A, b); err != nil {
		return 0
	}
	return math.Atan2(x.AtVec(1), x.AtVec(0))
}

// trackReferenceBar samples the strip along bar between its two corner
// marks, bandpass-filters it, and locates each peak's sub-sample phase
// via solvePhase. Where local signal energy drops below 30% of its
// maximum, the last good position is repeated; no interpolation is done.
func (t *Tracker) trackReferenceBar(img *sampler.Plane, corners [4]Point, b frame.Bar) ([]float64, error) {
	strip, err := sampleBarStrip(img, corners, b)
	if err != nil {
		return nil, err
	}
	if len(strip) < 16 {
		return nil, errors.Wrap(boxerr.ErrBorderTracking, "tracker: reference bar strip too short")
	}

	divider := t.Geometry.MaxLevelsPerSymbol // Not used by the tracking below; the configured divider lives in FrameFormat.
	if divider <= 0 {
		divider = 2
	}
	filtered := bandpassFilter(strip)
	energy := lowpassEnergy(strip)
	maxEnergy := 0.0
	for _, e := range energy {
		if e > maxEnergy {
			maxEnergy = e
		}
	}

	track := make([]float64, len(filtered)-2)
	lastGood := 0.0
	for i := range track {
		if maxEnergy > 0 && energy[i+1] < 0.3*maxEnergy {
			track[i] = lastGood
			continue
		}
		phase := solvePhase(filtered[i], filtered[i+1], filtered[i+2])
		pos := float64(i+1) + phase/(2*math.Pi)
		track[i] = pos
		lastGood = pos
	}
	return track, nil
}

// bandpassFilter applies a narrow bandpass centered at f = 0.5 of the
// sampling rate with bandwidth 0.18, per spec.md section 4.2 step 3.
func bandpassFilter(signal []float64) []float64 {
	coeffs := bandpassCoeffs(0.5, 0.18, 31)
	out, err := fastConvolve(signal, coeffs)
	if err != nil {
		return signal
	}
	return out
}

// lowpassEnergy returns a lowpass-filtered |signal| envelope used to
// detect dropout regions.
func lowpassEnergy(signal []float64) []float64 {
	abs := make([]float64, len(signal))
	for i, v := range signal {
		abs[i] = math.Abs(v)
	}
	coeffs := sincFilter(0.1, 15, 1, 0.2)
	out, err := fastConvolve(abs, coeffs)
	if err != nil {
		return abs
	}
	if len(out) > len(abs) {
		out = out[:len(abs)]
	}
	return out
}

// sampleBarStrip samples a 1D strip of pixel intensities along bar
// between its two bounding corner marks, perpendicular to the bar axis.
func sampleBarStrip(img *sampler.Plane, corners [4]Point, b frame.Bar) ([]float64, error) {
	var p0, p1 Point
	horizontal := true
	switch b {
	case frame.Top:
		p0, p1 = corners[0], corners[1]
	case frame.Bottom:
		p0, p1 = corners[2], corners[3]
	case frame.Left:
		p0, p1 = corners[0], corners[2]
		horizontal = false
	case frame.Right:
		p0, p1 = corners[1], corners[3]
		horizontal = false
	default:
		return nil, errors.Wrap(boxerr.ErrConfig, "tracker: unknown bar")
	}

	var n int
	if horizontal {
		n = int(p1.X - p0.X)
	} else {
		n = int(p1.Y - p0.Y)
	}
	if n <= 0 {
		return nil, errors.Wrap(boxerr.ErrBorderTracking, "tracker: degenerate reference bar span")
	}
	strip := make([]float64, n)
	for i := 0; i < n; i++ {
		var x, y int
		if horizontal {
			x = int(p0.X) + i
			y = int(p0.Y)
		} else {
			x = int(p0.X)
			y = int(p0.Y) + i
		}
		strip[i] = img.Pix[clamp(y, 0, img.Height-1)*img.Width+clamp(x, 0, img.Width-1)]
	}
	return strip, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
