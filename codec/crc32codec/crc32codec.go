/*
NAME
  crc32codec.go

DESCRIPTION
  crc32codec.go implements the CRC32 codec: appends a 4-byte big-endian CRC
  on encode, verifies CRC == 0 over the block on decode, per spec.md
  section 4.1.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package crc32codec implements the CRC32 trailer codec.
package crc32codec

import (
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/codec"
	"github.com/ausocean/boxcodec/codecutil"
)

const trailerSize = 4

// Codec implements codec.Codec, appending/verifying a CRC32 trailer.
type Codec struct {
	poly uint32
	seed uint32
	tab  *codecutil.CRC32Table
	sizes codec.Sizes
}

// New returns a CRC32 codec using poly and seed. A poly of 0 defaults to
// codecutil.DefaultCRC32Poly.
func New(poly, seed uint32) *Codec {
	if poly == 0 {
		poly = codecutil.DefaultCRC32Poly
	}
	return &Codec{poly: poly, seed: seed, tab: codecutil.NewCRC32Table(poly)}
}

func (c *Codec) Sizes() codec.Sizes { return c.sizes }

func (c *Codec) IsErrorCorrecting() bool { return false }

func (c *Codec) Reset() {}

func (c *Codec) SetProperty(name string, value interface{}) error {
	switch name {
	case "seed":
		v, ok := value.(uint32)
		if !ok {
			return errors.Wrap(boxerr.ErrConfig, "seed must be a uint32")
		}
		c.seed = v
		return nil
	case "polynomial":
		v, ok := value.(uint32)
		if !ok {
			return errors.Wrap(boxerr.ErrConfig, "polynomial must be a uint32")
		}
		c.poly = v
		c.tab = codecutil.NewCRC32Table(v)
		return nil
	default:
		return errors.Wrapf(boxerr.ErrConfig, "crc32: unknown property %q", name)
	}
}

// InitCapacity requires capacity >= 4 and sets decoded size = capacity - 4.
func (c *Codec) InitCapacity(capacity int) (int, error) {
	if capacity < trailerSize {
		return 0, errors.Wrapf(boxerr.ErrConfig, "crc32: capacity %d must be >= %d", capacity, trailerSize)
	}
	c.sizes = codec.Sizes{
		EncodedBlockSize:  capacity,
		DecodedBlockSize:  capacity - trailerSize,
		EncodedSymbolSize: 8,
		DecodedSymbolSize: 8,
		EncodedDataSize:   capacity,
		DecodedDataSize:   capacity - trailerSize,
	}
	return c.sizes.DecodedDataSize, nil
}

// Encode appends a 4-byte big-endian CRC32 over data.
func (c *Codec) Encode(data []byte) ([]byte, error) {
	sum := codecutil.CRC32With(c.tab, c.seed, data)
	out := make([]byte, len(data)+trailerSize)
	copy(out, data)
	b := codecutil.HtobeL(sum)
	copy(out[len(data):], b[:])
	return out, nil
}

// Decode verifies the CRC32 over the full block (payload + trailer) is
// zero when accumulated starting from seed with the trailer itself folded
// in, equivalently that the trailer matches the CRC of the payload alone.
func (c *Codec) Decode(data []byte, erasures []bool, stats *codec.Stats, user interface{}) ([]byte, bool, error) {
	if len(data) < trailerSize {
		return nil, false, errors.Wrapf(boxerr.ErrInputData, "crc32: block of %d bytes shorter than trailer", len(data))
	}
	payload := data[:len(data)-trailerSize]
	want := codecutil.BetohL(data[len(data)-trailerSize:])
	got := codecutil.CRC32With(c.tab, c.seed, payload)
	if got != want {
		return nil, false, errors.Wrapf(boxerr.ErrCrcMismatch, "crc32: computed %08x, trailer %08x", got, want)
	}
	return payload, true, nil
}
