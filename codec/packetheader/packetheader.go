/*
NAME
  packetheader.go

DESCRIPTION
  packetheader.go implements the PacketHeader codec: it prepends a
  (header_size, total_size) big-endian u32 pair to a payload on encode, and
  strips and validates that pair on decode, per spec.md section 4.1.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package packetheader implements the PacketHeader codec.
package packetheader

import (
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/codec"
	"github.com/ausocean/boxcodec/codecutil"
)

// HeaderSize is the fixed (header_size, total_size) prefix width in bytes.
const HeaderSize = 8

// Codec implements codec.Codec for packet framing.
type Codec struct {
	messageSize int
	sizes       codec.Sizes
}

// New returns a PacketHeader codec with the given message size (the
// nominal payload size before header and padding).
func New(messageSize int) *Codec {
	return &Codec{messageSize: messageSize}
}

func (c *Codec) Sizes() codec.Sizes { return c.sizes }

func (c *Codec) IsErrorCorrecting() bool { return false }

func (c *Codec) Reset() {}

func (c *Codec) SetProperty(name string, value interface{}) error {
	switch name {
	case "messageSize":
		v, ok := value.(int)
		if !ok {
			return errors.Wrap(boxerr.ErrConfig, "messageSize must be an int")
		}
		c.messageSize = v
		return nil
	default:
		return errors.Wrapf(boxerr.ErrConfig, "packetheader: unknown property %q", name)
	}
}

// InitCapacity declares the encoded-side capacity (the full block,
// including the header) and computes the decoded-side capacity (the
// payload with header stripped).
func (c *Codec) InitCapacity(capacity int) (int, error) {
	if capacity <= HeaderSize {
		return 0, errors.Wrapf(boxerr.ErrConfig, "packetheader: capacity %d must exceed header size %d", capacity, HeaderSize)
	}
	c.sizes = codec.Sizes{
		EncodedBlockSize:  capacity,
		DecodedBlockSize:  capacity - HeaderSize,
		EncodedSymbolSize: 8,
		DecodedSymbolSize: 8,
		EncodedDataSize:   capacity,
		DecodedDataSize:   capacity - HeaderSize,
	}
	return c.sizes.DecodedDataSize, nil
}

// Encode prepends (header_size=HeaderSize, total_size=HeaderSize+len(data))
// and zero-pads the remainder of the block to EncodedDataSize.
func (c *Codec) Encode(data []byte) ([]byte, error) {
	total := HeaderSize + len(data)
	if c.sizes.EncodedDataSize != 0 && total > c.sizes.EncodedDataSize {
		return nil, errors.Wrapf(boxerr.ErrInputData, "packetheader: payload of %d bytes exceeds block capacity %d", len(data), c.sizes.EncodedDataSize-HeaderSize)
	}

	blockLen := total
	if c.sizes.EncodedDataSize > blockLen {
		blockLen = c.sizes.EncodedDataSize
	}

	out := make([]byte, blockLen)
	hs := codecutil.HtobeL(uint32(HeaderSize))
	ts := codecutil.HtobeL(uint32(total))
	copy(out[0:4], hs[:])
	copy(out[4:8], ts[:])
	copy(out[HeaderSize:], data)
	return out, nil
}

// Decode validates header_size <= total_size <= available and strips the
// header, returning the payload up to total_size.
func (c *Codec) Decode(data []byte, erasures []bool, stats *codec.Stats, user interface{}) ([]byte, bool, error) {
	if len(data) < HeaderSize {
		return nil, false, errors.Wrapf(boxerr.ErrInputData, "packetheader: block of %d bytes shorter than header", len(data))
	}
	headerSize := codecutil.BetohL(data[0:4])
	totalSize := codecutil.BetohL(data[4:8])

	if uint32(headerSize) != HeaderSize || totalSize < headerSize || int(totalSize) > len(data) {
		return nil, false, errors.Wrapf(boxerr.ErrDataDecode,
			"packetheader: invalid bounds header_size=%d total_size=%d available=%d", headerSize, totalSize, len(data))
	}

	return data[headerSize:totalSize], true, nil
}
