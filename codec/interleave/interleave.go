/*
NAME
  interleave.go

DESCRIPTION
  interleave.go implements the Interleaving codec: a column-major-fill,
  row-major-read reshape over a d-wide matrix, operating on whole bytes or
  individual bits depending on symbolType, per spec.md section 4.1.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package interleave implements the bit and byte interleaving codec.
package interleave

import (
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/codec"
	"github.com/ausocean/boxcodec/codecutil"
)

// SymbolType selects whether the interleaver permutes whole bytes or
// individual bits.
type SymbolType int

const (
	Byte SymbolType = iota
	Bit
)

// Codec implements codec.Codec for bit/byte interleaving.
type Codec struct {
	distance int
	symbol   SymbolType
	sizes    codec.Sizes
}

// New returns an interleaving codec with the given column count (distance)
// and symbol granularity.
func New(distance int, symbol SymbolType) *Codec {
	return &Codec{distance: distance, symbol: symbol}
}

func (c *Codec) Sizes() codec.Sizes { return c.sizes }

func (c *Codec) IsErrorCorrecting() bool { return false }

func (c *Codec) Reset() {}

func (c *Codec) SetProperty(name string, value interface{}) error {
	switch name {
	case "distance":
		v, ok := value.(int)
		if !ok {
			return errors.Wrap(boxerr.ErrConfig, "interleave: distance must be an int")
		}
		c.distance = v
		return nil
	default:
		return errors.Wrapf(boxerr.ErrConfig, "interleave: unknown property %q", name)
	}
}

// InitCapacity is the identity transform size-wise: interleaving changes no
// lengths, only symbol order.
func (c *Codec) InitCapacity(capacity int) (int, error) {
	c.sizes = codec.Sizes{
		EncodedBlockSize:  c.distance,
		DecodedBlockSize:  c.distance,
		EncodedSymbolSize: 8,
		DecodedSymbolSize: 8,
		EncodedDataSize:   capacity,
		DecodedDataSize:   capacity,
	}
	return capacity, nil
}

// Encode reshapes data column-major into a distance-wide matrix and reads
// it back out row-major.
func (c *Codec) Encode(data []byte) ([]byte, error) {
	switch c.symbol {
	case Bit:
		n := len(data) * 8
		bits := codecutil.UnpackBitsMSB(data, n)
		permuted, err := permuteForward(bits, c.distance)
		if err != nil {
			return nil, err
		}
		return codecutil.PackBitsMSB(permuted), nil
	default:
		permuted, err := permuteForwardBytes(data, c.distance)
		if err != nil {
			return nil, err
		}
		return permuted, nil
	}
}

// Decode inverts Encode.
//
// spec.md section 9 flags that the original implementation's bit-symbol
// decode path calls the byte-decoding routine rather than a bit-aware one.
// That reimplementation decision is tracked in DESIGN.md: this codec
// decodes bits as bits, since the testable property in spec.md section 8
// ("bit variant with distance d is its own inverse after two applications
// with the same d iff d divides len(data)*8") only holds if decode
// actually operates at bit granularity.
func (c *Codec) Decode(data []byte, erasures []bool, stats *codec.Stats, user interface{}) ([]byte, bool, error) {
	switch c.symbol {
	case Bit:
		n := len(data) * 8
		bits := codecutil.UnpackBitsMSB(data, n)
		permuted, err := permuteInverse(bits, c.distance)
		if err != nil {
			return nil, false, err
		}
		return codecutil.PackBitsMSB(permuted), true, nil
	default:
		permuted, err := permuteInverseBytes(data, c.distance)
		if err != nil {
			return nil, false, err
		}
		return permuted, true, nil
	}
}

// permuteForward implements out[r*d+c] = in[c*rows+r] for rows = len(in)/d.
func permuteForward(in []byte, d int) ([]byte, error) {
	rows, err := rowsFor(len(in), d)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	for c := 0; c < d; c++ {
		for r := 0; r < rows; r++ {
			out[r*d+c] = in[c*rows+r]
		}
	}
	return out, nil
}

// permuteInverse implements in[c*rows+r] = out[r*d+c], the inverse of
// permuteForward.
func permuteInverse(out []byte, d int) ([]byte, error) {
	rows, err := rowsFor(len(out), d)
	if err != nil {
		return nil, err
	}
	in := make([]byte, len(out))
	for c := 0; c < d; c++ {
		for r := 0; r < rows; r++ {
			in[c*rows+r] = out[r*d+c]
		}
	}
	return in, nil
}

func permuteForwardBytes(in []byte, d int) ([]byte, error) { return permuteForward(in, d) }
func permuteInverseBytes(out []byte, d int) ([]byte, error) { return permuteInverse(out, d) }

func rowsFor(n, d int) (int, error) {
	if d <= 0 {
		return 0, errors.Wrap(boxerr.ErrConfig, "interleave: distance must be positive")
	}
	if n%d != 0 {
		return 0, errors.Wrapf(boxerr.ErrInputData, "interleave: length %d is not a multiple of distance %d", n, d)
	}
	return n / d, nil
}
