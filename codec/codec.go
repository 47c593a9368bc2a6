/*
NAME
  codec.go

DESCRIPTION
  codec.go defines the Codec capability interface implemented by every
  block transform in the chain (Reed-Solomon, BCH, CRC32, cipher,
  interleaving, packet header, sync-point inserter) and the statistics
  accumulated across a decode run.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package codec defines the Codec interface and decode statistics shared
// by the block-based transforms between user bytes and frame symbols; the
// dispatcher that chains them lives in package codec/dispatcher.
package codec

// Stats accumulates decode statistics across codec stages, per spec.md
// section 3. An error-correcting codec resets UnresolvedErrors on success;
// the dispatcher folds each stage's per-call stats into the running total.
type Stats struct {
	ResolvedErrors         int
	UnresolvedErrors       int
	FECAccumulatedWeight   int
	FECAccumulatedAmount   int
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	*s = Stats{}
}

// Add folds other into s, as the dispatcher does when moving from one
// stage to the next.
func (s *Stats) Add(other Stats) {
	s.ResolvedErrors += other.ResolvedErrors
	s.UnresolvedErrors += other.UnresolvedErrors
	s.FECAccumulatedWeight += other.FECAccumulatedWeight
	s.FECAccumulatedAmount += other.FECAccumulatedAmount
}

// Sizes describes the block granularities and capacities a codec declares,
// per spec.md section 3's "Codec chain" data model.
type Sizes struct {
	EncodedBlockSize  int // Block granularity on the encoded side, in EncodedSymbolSize units.
	DecodedBlockSize  int // Block granularity on the decoded side, in DecodedSymbolSize units.
	EncodedSymbolSize int // Bits per symbol, encoded side.
	DecodedSymbolSize int // Bits per symbol, decoded side.
	EncodedDataSize   int // Post-init_capacity buffer capacity, encoded side.
	DecodedDataSize   int // Post-init_capacity buffer capacity, decoded side.
}

// Codec is the capability interface every concrete block transform
// implements. This replaces the original C implementation's
// struct-of-function-pointers (boxing_codec) and its leading-base-struct
// downcasting (boxing_codec_cipher -> boxing_codec): a concrete codec here
// is simply a Go value satisfying this interface, and the dispatcher holds
// a homogeneous []Codec.
type Codec interface {
	// Encode transforms a sequence of symbols, possibly changing length,
	// returning an error wrapping boxerr.ErrInputData if data violates a
	// documented precondition.
	Encode(data []byte) ([]byte, error)

	// Decode inverse-transforms data, writing resolved/unresolved error
	// counts and accumulated FEC weight into stats. User is an opaque,
	// per-call override (e.g. an injected cipher key); most codecs ignore
	// it. ok is false when the stage must abort the chain (e.g. CRC
	// mismatch, packet-header bounds violation); an error-correcting
	// codec that merely exhausts its correction budget still returns
	// ok == true so the dispatcher can continue accumulating stats.
	Decode(data []byte, erasures []bool, stats *Stats, user interface{}) (out []byte, ok bool, err error)

	// InitCapacity declares the encoded-side capacity, computes and
	// returns the decoded-side capacity, and sets the codec's internal
	// block-size fields. It returns an error wrapping boxerr.ErrConfig if
	// the requested capacity cannot be chained (e.g. not a multiple of
	// the codec's block size).
	InitCapacity(capacity int) (decodedCapacity int, err error)

	// Sizes returns the codec's currently configured size-chain fields,
	// valid only after a successful InitCapacity call.
	Sizes() Sizes

	// IsErrorCorrecting reports whether the dispatcher zeroes the running
	// UnresolvedErrors after this stage decodes with no unresolved errors
	// of its own.
	IsErrorCorrecting() bool

	// Reset clears any per-codec mutable state (e.g. an LFSR's recorded
	// auto-selected key). Codecs with no such state may no-op.
	Reset()

	// SetProperty late-binds a named property, e.g. a cipher key read
	// from decoded metadata after construction.
	SetProperty(name string, value interface{}) error
}
