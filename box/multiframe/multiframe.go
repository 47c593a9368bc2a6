/*
NAME
  multiframe.go

DESCRIPTION
  multiframe.go implements striped multi-frame erasure recovery: a user
  payload too large for a single frame is striped across a run of frames
  plus parity frames, so that up to ParityFrames entirely missing or
  undecodable frames (known positions, unlike the byte-level unknown-error
  positions the data codecs correct) can be reconstructed, per spec.md's
  MultiFrameFormat.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package multiframe implements striping and erasure-coded recovery of a
// payload spread across several frames, using klauspost/reedsolomon's
// shard model: each frame is a shard, and a missing frame is a known
// erasure at a known shard index, exactly the problem that library
// solves (unlike codec/rs's unknown-position byte-error correction
// within a single frame).
package multiframe

import (
	"bytes"
	"io"

	"github.com/klauspost/reedsolomon"
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
)

// Striper splits a payload into data frames plus parity frames, and
// reconstructs a payload from a possibly-incomplete set of frames.
type Striper struct {
	dataFrames   int
	parityFrames int
	enc          reedsolomon.Encoder
}

// New returns a Striper for dataFrames data shards and parityFrames
// parity shards, per config.MultiFrameFormat.StripeSize (dataFrames) and
// a configured redundancy level (parityFrames).
func New(dataFrames, parityFrames int) (*Striper, error) {
	enc, err := reedsolomon.New(dataFrames, parityFrames)
	if err != nil {
		return nil, errors.Wrap(boxerr.ErrConfig, err.Error())
	}
	return &Striper{dataFrames: dataFrames, parityFrames: parityFrames, enc: enc}, nil
}

// Stripe splits payload into dataFrames shards (zero-padded to an equal
// length) and computes parityFrames parity shards, returning all shards
// in frame order: data shards first, then parity shards.
func (s *Striper) Stripe(payload []byte) ([][]byte, error) {
	dataCopy := make([]byte, len(payload))
	copy(dataCopy, payload)

	shards, err := s.enc.Split(dataCopy)
	if err != nil {
		return nil, errors.Wrap(boxerr.ErrInputData, err.Error())
	}
	if err := s.enc.Encode(shards); err != nil {
		return nil, errors.Wrap(boxerr.ErrDataDecode, err.Error())
	}
	return shards, nil
}

// Reconstruct takes a slice of per-frame shards, with a nil entry at any
// index whose frame is known to be missing or failed decode (the known
// erasure positions this package's model requires), and returns the
// original payload truncated to outSize bytes.
//
// It reports boxerr.ErrDataDecode if more than parityFrames shards are
// missing, since that exceeds the striper's recovery capacity.
func (s *Striper) Reconstruct(shards [][]byte, outSize int) ([]byte, error) {
	if len(shards) != s.dataFrames+s.parityFrames {
		return nil, errors.Wrapf(boxerr.ErrInputData, "multiframe: got %d shards, want %d", len(shards), s.dataFrames+s.parityFrames)
	}
	missing := 0
	for _, sh := range shards {
		if sh == nil {
			missing++
		}
	}
	if missing > s.parityFrames {
		return nil, errors.Wrapf(boxerr.ErrDataDecode, "multiframe: %d frames missing, exceeds %d-frame recovery capacity", missing, s.parityFrames)
	}

	if missing > 0 {
		if err := s.enc.Reconstruct(shards); err != nil {
			return nil, errors.Wrap(boxerr.ErrDataDecode, err.Error())
		}
	}

	var buf bytes.Buffer
	if err := s.enc.Join(io.Writer(&buf), shards, outSize); err != nil {
		return nil, errors.Wrap(boxerr.ErrDataDecode, err.Error())
	}
	return buf.Bytes(), nil
}

// Verify reports whether the present (non-nil) shards are internally
// consistent with the computed parity, without attempting recovery.
func (s *Striper) Verify(shards [][]byte) (bool, error) {
	ok, err := s.enc.Verify(shards)
	if err != nil {
		return false, errors.Wrap(boxerr.ErrDataDecode, err.Error())
	}
	return ok, nil
}

// DataFrames returns the configured number of data shards.
func (s *Striper) DataFrames() int { return s.dataFrames }

// ParityFrames returns the configured number of parity shards.
func (s *Striper) ParityFrames() int { return s.parityFrames }
