/*
NAME
  sampler.go

DESCRIPTION
  sampler.go implements the content-container sampler: per-tile intensity
  extraction with sub-pixel parabolic refinement, histogram-normalized
  level quantization, and MSB-first symbol packing, per spec.md section 4.3.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sampler implements content-container tile sampling and level
// quantization.
package sampler

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/codecutil"
)

// Plane is a single-channel float intensity image, row-major.
type Plane struct {
	Pix           []float64
	Width, Height int
}

// At returns the pixel value at (x, y), clamping out-of-range coordinates
// to the plane's edge.
func (p *Plane) At(x, y int) float64 { return p.at(x, y) }

func (p *Plane) at(x, y int) float64 {
	if x < 0 {
		x = 0
	}
	if x >= p.Width {
		x = p.Width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= p.Height {
		y = p.Height - 1
	}
	return p.Pix[y*p.Width+x]
}

// Sampler extracts per-tile intensities from the content container.
type Sampler struct {
	Cols, Rows int // Tile grid dimensions.
}

// New returns a Sampler for a cols x rows tile grid.
func New(cols, rows int) *Sampler {
	return &Sampler{Cols: cols, Rows: rows}
}

// Sample extracts one refined intensity value per tile from the content
// container region of img, using a 3x3 parabolic interpolation around
// each tile's nominal center to suppress sampling-grid misalignment.
func (s *Sampler) Sample(img *Plane) ([]float64, error) {
	if s.Cols <= 0 || s.Rows <= 0 {
		return nil, errors.Wrap(boxerr.ErrConfig, "sampler: cols and rows must be positive")
	}
	out := make([]float64, s.Cols*s.Rows)
	tileW := float64(img.Width) / float64(s.Cols)
	tileH := float64(img.Height) / float64(s.Rows)
	for ty := 0; ty < s.Rows; ty++ {
		for tx := 0; tx < s.Cols; tx++ {
			cx := int((float64(tx)+0.5)*tileW + 0.5)
			cy := int((float64(ty)+0.5)*tileH + 0.5)
			out[ty*s.Cols+tx] = parabolicRefine(img, cx, cy)
		}
	}
	return out, nil
}

// parabolicRefine fits a 2D quadratic surface to the 3x3 neighbourhood
// around (cx, cy) and returns the value of the fitted surface at its own
// center sample, which damps single-pixel noise relative to the raw
// sample value.
func parabolicRefine(img *Plane, cx, cy int) float64 {
	// Fit z = a*x^2 + b*y^2 + c*x*y + d*x + e*y + f over the 9 offsets
	// (dx, dy) in [-1, 0, 1]^2, via least squares, then evaluate at (0, 0)
	// which is just f - but folding all 9 samples through the normal
	// equations averages out single-sample noise rather than just
	// returning the center pixel untouched.
	const n = 9
	A := mat.NewDense(n, 6, nil)
	b := mat.NewVecDense(n, nil)
	row := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := float64(dx), float64(dy)
			A.SetRow(row, []float64{x * x, y * y, x * y, x, y, 1})
			b.SetVec(row, img.at(cx+dx, cy+dy))
			row++
		}
	}
	var coeffs mat.VecDense
	var qr mat.QR
	qr.Factorize(A)
	if err := qr.SolveVecTo(&coeffs, false, b); err != nil {
		return img.at(cx, cy)
	}
	return coeffs.AtVec(5) // f, the fitted value at (dx, dy) = (0, 0).
}

// Quantizer maps continuous tile intensities to one of Levels discrete
// symbol levels, calibrated from the frame's own calibration bar samples
// rather than a fixed global threshold, per spec.md section 4.3's
// histogram-normalization requirement.
type Quantizer struct {
	Levels int // 2, 4 or 6, per spec.md's max_levels_per_symbol.

	thresholds []float64 // len Levels-1, ascending, set by Calibrate.
}

// NewQuantizer returns a Quantizer for the given level count.
func NewQuantizer(levels int) (*Quantizer, error) {
	if levels != 2 && levels != 4 && levels != 6 {
		return nil, errors.Wrapf(boxerr.ErrConfig, "sampler: levels %d must be 2, 4 or 6", levels)
	}
	return &Quantizer{Levels: levels}, nil
}

// Calibrate derives level thresholds from calibration-bar samples by
// sorting them and placing Levels-1 cut points at even percentiles, so
// quantization tracks the frame's own exposure rather than an assumed
// fixed intensity range.
func (q *Quantizer) Calibrate(calibration []float64) error {
	if len(calibration) == 0 {
		return errors.Wrap(boxerr.ErrInputData, "sampler: calibration bar sample set is empty")
	}
	sorted := append([]float64(nil), calibration...)
	sort.Float64s(sorted)
	q.thresholds = make([]float64, q.Levels-1)
	for i := range q.thresholds {
		frac := float64(i+1) / float64(q.Levels)
		idx := int(frac * float64(len(sorted)-1))
		q.thresholds[i] = sorted[idx]
	}
	return nil
}

// Quantize maps each sample to a level in [0, Levels).
func (q *Quantizer) Quantize(samples []float64) ([]int, error) {
	if q.thresholds == nil {
		return nil, errors.Wrap(boxerr.ErrConfig, "sampler: Quantize called before Calibrate")
	}
	out := make([]int, len(samples))
	for i, v := range samples {
		level := 0
		for _, t := range q.thresholds {
			if v > t {
				level++
			}
		}
		out[i] = level
	}
	return out, nil
}

// Pack packs a slice of levels, each in [0, Levels), into a byte slice,
// bitsPerSymbol bits per level (ceil(log2(Levels)) unless overridden),
// MSB-first.
func Pack(levels []int, bitsPerSymbol int) []byte {
	bits := make([]byte, 0, len(levels)*bitsPerSymbol)
	for _, l := range levels {
		for i := bitsPerSymbol - 1; i >= 0; i-- {
			bits = append(bits, byte((l>>uint(i))&1))
		}
	}
	return codecutil.PackBitsMSB(bits)
}

// Unpack is Pack's inverse: it reads n levels, each bitsPerSymbol bits
// wide MSB-first, from b.
func Unpack(b []byte, n, bitsPerSymbol int) []int {
	bits := codecutil.UnpackBitsMSB(b, n*bitsPerSymbol)
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v := 0
		for j := 0; j < bitsPerSymbol; j++ {
			v = v<<1 | int(bits[i*bitsPerSymbol+j])
		}
		out[i] = v
	}
	return out
}

// BitsPerSymbol returns the number of bits needed to represent Levels
// distinct symbol values.
func BitsPerSymbol(levels int) int {
	n := 0
	for (1 << uint(n)) < levels {
		n++
	}
	return n
}
