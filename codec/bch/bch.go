/*
NAME
  bch.go

DESCRIPTION
  bch.go implements the BCH codec: a binary, bit-level block
  error-correcting code over GF(2^d), per spec.md section 4.1. Block size
  is declared in bytes (messageSize m, byteParityNumber p); correction
  operates on individual bits within the block.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bch implements the binary BCH error-correcting codec.
//
// Unlike the Reed-Solomon codec (package rs), a BCH correction is always a
// bit flip of magnitude 1 in GF(2): once an error position is located there
// is nothing left to solve for, so this decoder omits the Forney
// error-magnitude step that byte-symbol codes need. The rest of the
// machinery — syndromes, Berlekamp-Massey, Chien search — mirrors package
// rs's, generalized to a field whose size varies with the configured
// block.
package bch

import (
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/codec"
	"github.com/ausocean/boxcodec/codecutil"
)

// defaultPrimitivePoly maps field degree d to a well-known primitive
// polynomial of that degree, used when no explicit polynomial is
// configured ("polynomial (default derived from m)" in spec.md section
// 4.1).
var defaultPrimitivePoly = map[int]uint32{
	3: 0xB, 4: 0x13, 5: 0x25, 6: 0x43, 7: 0x89, 8: 0x11D,
	9: 0x211, 10: 0x409, 11: 0x805, 12: 0x1053, 13: 0x201B,
	14: 0x4443, 15: 0x8003, 16: 0x1100B,
}

// Codec implements codec.Codec for binary BCH.
type Codec struct {
	m, p   int // messageSize, byteParityNumber (bytes)
	d      int
	poly   uint32
	f      *field
	t      int    // correctable bit errors
	gen    []uint32 // Generator polynomial, descending order, coefficients in {0,1}.
	eccLen int      // deg(gen), the number of real parity bits produced.
	sizes  codec.Sizes
}

// New returns a BCH codec for the given block geometry. If polynomial is
// zero, a default primitive polynomial is derived from the smallest degree
// d whose field can index every bit of the (m+p)-byte block.
func New(messageSize, byteParityNumber int, polynomial uint32) (*Codec, error) {
	if messageSize <= 0 || byteParityNumber <= 0 {
		return nil, errors.Wrap(boxerr.ErrConfig, "bch: messageSize and byteParityNumber must be positive")
	}
	c := &Codec{m: messageSize, p: byteParityNumber, poly: polynomial}
	if err := c.build(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Codec) build() error {
	blockBits := (c.m + c.p) * 8
	d := c.d
	poly := c.poly
	if poly == 0 {
		for deg := 3; deg <= 16; deg++ {
			if 1<<uint(deg)-1 >= blockBits {
				d = deg
				poly = defaultPrimitivePoly[deg]
				break
			}
		}
		if poly == 0 {
			return errors.Wrap(boxerr.ErrConfig, "bch: block too large for any default field degree")
		}
	} else {
		d = bitLen(poly) - 1
	}
	if d <= 0 {
		return errors.Wrap(boxerr.ErrConfig, "bch: invalid polynomial degree")
	}

	// capacity check: bch.n/8 - bch.ecc_bytes >= m, per spec.md section 4.1.
	n := 1<<uint(d) - 1
	if n/8-c.p < c.m {
		return errors.Wrapf(boxerr.ErrConfig, "bch: field degree %d too small for m=%d p=%d", d, c.m, c.p)
	}

	c.d = d
	c.poly = poly
	c.f = newField(d, poly)
	c.gen, c.eccLen, c.t = buildGenerator(c.f, c.p*8)
	return nil
}

func bitLen(v uint32) int {
	n := 0
	for v != 0 {
		n++
		v >>= 1
	}
	return n
}

// buildGenerator constructs g(x) = Product of minimal polynomials of
// alpha^1, alpha^3, ..., alpha^(2t-1), stopping at the largest t whose
// degree fits within maxParityBits. Because conjugacy classes of odd
// exponents under repeated doubling (mod n) are closed under the Frobenius
// map, the resulting coefficients lie in the GF(2) subfield and are always
// 0 or 1.
func buildGenerator(f *field, maxParityBits int) (gen []uint32, eccLen, t int) {
	gen = []uint32{1}
	included := make(map[int]bool)
	tAccepted := 0
	for seed := 1; seed < f.n; seed += 2 {
		if included[seed] {
			tAccepted++
			continue
		}
		class := conjugacyClass(f.n, seed)
		candidate := gen
		for _, e := range class {
			candidate = f.polyMul(candidate, []uint32{1, f.pow(2, e)})
		}
		if len(candidate)-1 > maxParityBits {
			break
		}
		gen = candidate
		for _, e := range class {
			included[e] = true
		}
		tAccepted++
	}
	return gen, len(gen) - 1, tAccepted
}

// conjugacyClass returns {seed, 2*seed, 4*seed, ...} mod n, stopping when
// the sequence returns to seed.
func conjugacyClass(n, seed int) []int {
	class := []int{seed}
	e := (seed * 2) % n
	for e != seed {
		class = append(class, e)
		e = (e * 2) % n
	}
	return class
}

func (c *Codec) Sizes() codec.Sizes { return c.sizes }

func (c *Codec) IsErrorCorrecting() bool { return true }

func (c *Codec) Reset() {}

func (c *Codec) SetProperty(name string, value interface{}) error {
	switch name {
	case "messageSize":
		v, ok := value.(int)
		if !ok {
			return errors.Wrap(boxerr.ErrConfig, "bch: messageSize must be an int")
		}
		c.m = v
	case "byteParityNumber":
		v, ok := value.(int)
		if !ok {
			return errors.Wrap(boxerr.ErrConfig, "bch: byteParityNumber must be an int")
		}
		c.p = v
	case "polynomial":
		v, ok := value.(uint32)
		if !ok {
			return errors.Wrap(boxerr.ErrConfig, "bch: polynomial must be a uint32")
		}
		c.poly = v
	default:
		return errors.Wrapf(boxerr.ErrConfig, "bch: unknown property %q", name)
	}
	return c.build()
}

func (c *Codec) blockSize() int { return c.m + c.p }

func (c *Codec) InitCapacity(capacity int) (int, error) {
	bs := c.blockSize()
	n := capacity / bs
	c.sizes = codec.Sizes{
		EncodedBlockSize:  bs,
		DecodedBlockSize:  c.m,
		EncodedSymbolSize: 1,
		DecodedSymbolSize: 1,
		EncodedDataSize:   n * bs,
		DecodedDataSize:   n * c.m,
	}
	return c.sizes.DecodedDataSize, nil
}

// Encode zero-pads data to a multiple of m bytes, then appends p parity
// bytes to each message block. Parity is computed over the message bits by
// binary polynomial division against the generator (a shift register with
// XOR-only taps, since every generator coefficient is 0 or 1), written
// MSB-first and zero-padded at the low-order tail out to p*8 bits.
func (c *Codec) Encode(data []byte) ([]byte, error) {
	nBlocks := (len(data) + c.m - 1) / c.m
	if nBlocks == 0 {
		nBlocks = 1
	}
	padded := make([]byte, nBlocks*c.m)
	copy(padded, data)

	out := make([]byte, 0, nBlocks*c.blockSize())
	for b := 0; b < nBlocks; b++ {
		msg := padded[b*c.m : (b+1)*c.m]
		out = append(out, msg...)
		parityBits := encodeParityBits(msg, c.gen)
		parityBytes := codecutil.PackBitsMSB(parityBits)
		field := make([]byte, c.p)
		copy(field, parityBytes)
		out = append(out, field...)
	}
	return out, nil
}

// encodeParityBits runs msg (as MSB-first bits) through a binary LFSR
// division by gen, returning the eccLen remainder bits.
func encodeParityBits(msg []byte, gen []uint32) []byte {
	eccLen := len(gen) - 1
	reg := make([]byte, eccLen)
	bits := codecutil.UnpackBitsMSB(msg, len(msg)*8)
	for _, bit := range bits {
		feedback := bit ^ reg[0]
		copy(reg, reg[1:])
		reg[eccLen-1] = 0
		if feedback != 0 {
			for j := 0; j < eccLen; j++ {
				if gen[j+1] != 0 {
					reg[j] ^= feedback
				}
			}
		}
	}
	return reg
}

// Decode truncates data to N complete blocks and recovers N*m message
// bytes, flipping up to t bit errors per block via Berlekamp-Massey and
// Chien search over GF(2^d). A block with more errors than that bound is
// reported as unresolved but does not abort the chain.
func (c *Codec) Decode(data []byte, erasures []bool, stats *codec.Stats, user interface{}) ([]byte, bool, error) {
	bs := c.blockSize()
	n := len(data) / bs
	out := make([]byte, 0, n*c.m)

	for b := 0; b < n; b++ {
		block := make([]byte, bs)
		copy(block, data[b*bs:(b+1)*bs])

		msg, errs, resolvable := c.correctBlock(block)
		if !resolvable {
			stats.UnresolvedErrors += c.t + 1
			stats.FECAccumulatedWeight += c.t
			stats.FECAccumulatedAmount = stats.FECAccumulatedWeight
			out = append(out, block[:c.m]...)
			continue
		}
		stats.ResolvedErrors += errs
		stats.FECAccumulatedWeight += c.t
		stats.FECAccumulatedAmount += errs
		out = append(out, msg...)
	}
	return out, true, nil
}

// correctBlock corrects a single (m+p)-byte block in place.
func (c *Codec) correctBlock(block []byte) (msg []byte, errs int, ok bool) {
	nCode := c.m*8 + c.eccLen
	bits := codecutil.UnpackBitsMSB(block, nCode)
	codeword := make([]uint32, nCode)
	for i, b := range bits {
		codeword[i] = uint32(b)
	}

	synd := make([]uint32, 2*c.t)
	clean := true
	for j := 1; j <= 2*c.t; j++ {
		synd[j-1] = c.f.polyEval(codeword, c.f.pow(2, j))
		if synd[j-1] != 0 {
			clean = false
		}
	}
	if clean {
		return block[:c.m], 0, true
	}

	lambda := c.berlekampMassey(synd)
	l := len(lambda) - 1
	if l > c.t {
		return nil, 0, false
	}

	var positions []int
	for idx := 0; idx < nCode; idx++ {
		xinv := c.f.pow(2, idx-(nCode-1))
		if c.f.polyEval(lambda, xinv) == 0 {
			positions = append(positions, idx)
		}
	}
	if len(positions) != l {
		return nil, 0, false
	}

	for _, idx := range positions {
		codecutil.SetBit(block, idx, codecutil.Bit(block, idx)^1)
	}

	bits = codecutil.UnpackBitsMSB(block, nCode)
	for i, b := range bits {
		codeword[i] = uint32(b)
	}
	for j := 1; j <= 2*c.t; j++ {
		if c.f.polyEval(codeword, c.f.pow(2, j)) != 0 {
			return nil, 0, false
		}
	}
	return block[:c.m], l, true
}

// berlekampMassey finds the GF(2^d) error locator polynomial from
// syndromes s[0..2t-1] == S_1..S_2t.
func (c *Codec) berlekampMassey(s []uint32) []uint32 {
	f := c.f
	reg := make([]uint32, 1, len(s)+2)
	reg[0] = 1
	prev := make([]uint32, 1, len(s)+2)
	prev[0] = 1
	l, m, bCoef := 0, 1, uint32(1)

	for n := 0; n < len(s); n++ {
		delta := s[n]
		for i := 1; i <= l && i < len(reg); i++ {
			delta = f.add(delta, f.mul(reg[i], s[n-i]))
		}
		if delta == 0 {
			m++
			continue
		}

		t := make([]uint32, len(reg))
		copy(t, reg)

		coef := f.div(delta, bCoef)
		need := len(prev) + m
		if need > len(reg) {
			grown := make([]uint32, need)
			copy(grown, reg)
			reg = grown
		}
		for i := 0; i < len(prev); i++ {
			reg[i+m] = f.add(reg[i+m], f.mul(coef, prev[i]))
		}

		if 2*l <= n {
			l = n + 1 - l
			prev = t
			bCoef = delta
			m = 1
		} else {
			m++
		}
	}
	return reg
}
