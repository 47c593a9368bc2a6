/*
NAME
  rs.go

DESCRIPTION
  rs.go implements the ReedSolomon codec: a systematic GF(2^8)
  Reed-Solomon block code correcting up to floor(p/2) byte errors per
  block at unknown locations, per spec.md section 4.1.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rs implements the block-level Reed-Solomon error-correcting
// codec.
//
// github.com/klauspost/reedsolomon (present in the retrieval pack via
// unlucas-br-noiseCryptCloud) is an erasure-coding library: its Reconstruct
// step requires the caller to already know which shards are missing. This
// codec instead has to locate up to floor(p/2) byte errors at UNKNOWN
// positions inside a single block, which needs classical syndrome
// decoding (Berlekamp-Massey plus Forney), a capability klauspost's API
// does not expose. That combination is implemented here directly; see
// DESIGN.md for the fuller justification. The library is wired elsewhere
// in this module, in package box/multiframe, for the erasure-coding
// problem it is actually built for: recovering a striped file from frames
// known to be missing or undecodable.
package rs

import (
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/codec"
)

// Codec implements codec.Codec for block Reed-Solomon.
type Codec struct {
	m, p  int // messageSize, byteParityNumber
	sizes codec.Sizes
	gen   []byte // Descending-order generator polynomial, degree p (p+1 coefficients, gen[0] == 1).
}

// New returns a Reed-Solomon codec for the given message size and parity
// byte count. m+p must not exceed 255 (the GF(2^8) symbol space).
func New(messageSize, byteParityNumber int) (*Codec, error) {
	if messageSize <= 0 || byteParityNumber <= 0 {
		return nil, errors.Wrap(boxerr.ErrConfig, "rs: messageSize and byteParityNumber must be positive")
	}
	if messageSize+byteParityNumber > 255 {
		return nil, errors.Wrapf(boxerr.ErrConfig, "rs: block size %d exceeds GF(256) symbol space", messageSize+byteParityNumber)
	}
	return &Codec{m: messageSize, p: byteParityNumber, gen: generatorPoly(byteParityNumber)}, nil
}

func (c *Codec) Sizes() codec.Sizes { return c.sizes }

func (c *Codec) IsErrorCorrecting() bool { return true }

func (c *Codec) Reset() {}

func (c *Codec) SetProperty(name string, value interface{}) error {
	switch name {
	case "messageSize":
		v, ok := value.(int)
		if !ok {
			return errors.Wrap(boxerr.ErrConfig, "rs: messageSize must be an int")
		}
		c.m = v
	case "byteParityNumber":
		v, ok := value.(int)
		if !ok {
			return errors.Wrap(boxerr.ErrConfig, "rs: byteParityNumber must be an int")
		}
		c.p = v
		c.gen = generatorPoly(v)
	default:
		return errors.Wrapf(boxerr.ErrConfig, "rs: unknown property %q", name)
	}
	return nil
}

func (c *Codec) blockSize() int { return c.m + c.p }

// InitCapacity declares the encoded-side (block-aligned) capacity and
// returns the decoded-side capacity: a whole number of blocks, each
// contributing m message bytes.
func (c *Codec) InitCapacity(capacity int) (int, error) {
	bs := c.blockSize()
	n := capacity / bs
	c.sizes = codec.Sizes{
		EncodedBlockSize:  bs,
		DecodedBlockSize:  c.m,
		EncodedSymbolSize: 8,
		DecodedSymbolSize: 8,
		EncodedDataSize:   n * bs,
		DecodedDataSize:   n * c.m,
	}
	return c.sizes.DecodedDataSize, nil
}

// generatorPoly builds g(x) = Product_{i=1}^{p} (x - alpha^i) in
// descending-coefficient order (gen[0] == 1, the monic leading term).
func generatorPoly(p int) []byte {
	g := []byte{1}
	for i := 1; i <= p; i++ {
		g = polyMul(g, []byte{1, gfPow(2, i)})
	}
	return g
}

// Encode zero-pads data to a multiple of m, then appends p parity bytes to
// each m-byte message block using a systematic LFSR-style division by the
// generator polynomial (the same shift-register construction as a CRC).
func (c *Codec) Encode(data []byte) ([]byte, error) {
	if c.m <= 0 || c.p <= 0 {
		return nil, errors.Wrap(boxerr.ErrConfig, "rs: codec not configured")
	}
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
		out = append(out, encodeParity(msg, c.gen, c.p)...)
	}
	return out, nil
}

// encodeParity computes the p parity bytes for msg using the LFSR-style
// division by gen (gen[0] == 1, gen[1:] are the feedback taps).
func encodeParity(msg []byte, gen []byte, p int) []byte {
	reg := make([]byte, p)
	for _, b := range msg {
		feedback := gfAdd(b, reg[0])
		copy(reg, reg[1:])
		reg[p-1] = 0
		if feedback != 0 {
			for j := 0; j < p; j++ {
				reg[j] = gfAdd(reg[j], gfMul(feedback, gen[j+1]))
			}
		}
	}
	return reg
}

// Decode truncates data to N complete blocks and recovers N*m message
// bytes, correcting up to floor(p/2) byte errors per block via
// Berlekamp-Massey and Forney decoding. A block with more errors than that
// bound is reported as unresolved but does not abort the chain, per
// spec.md section 4.1's failure semantics for error-correcting stages.
func (c *Codec) Decode(data []byte, erasures []bool, stats *codec.Stats, user interface{}) ([]byte, bool, error) {
	bs := c.blockSize()
	n := len(data) / bs
	out := make([]byte, 0, n*c.m)

	cap := c.p / 2
	for b := 0; b < n; b++ {
		block := make([]byte, bs)
		copy(block, data[b*bs:(b+1)*bs])

		msg, errs, resolvable := correctBlock(block, c.m, c.p)
		if !resolvable {
			stats.UnresolvedErrors += cap + 1
			stats.FECAccumulatedWeight += cap
			stats.FECAccumulatedAmount = stats.FECAccumulatedWeight
			out = append(out, block[:c.m]...)
			continue
		}
		stats.ResolvedErrors += errs
		stats.FECAccumulatedWeight += cap
		stats.FECAccumulatedAmount += errs
		out = append(out, msg...)
	}
	return out, true, nil
}

// correctBlock corrects a single (m+p)-byte block in place, returning the
// m-byte message, the number of corrected byte errors, and whether
// correction succeeded (false if more than floor(p/2) errors occurred).
func correctBlock(block []byte, m, p int) (msg []byte, errs int, ok bool) {
	synd := syndromes(block, p)
	clean := true
	for _, s := range synd {
		if s != 0 {
			clean = false
			break
		}
	}
	if clean {
		return block[:m], 0, true
	}

	lambda := berlekampMassey(synd)
	l := len(lambda) - 1
	if l*2 > p {
		return nil, 0, false
	}

	positions := chienSearch(lambda, len(block))
	if len(positions) != l {
		return nil, 0, false
	}

	omega := errorEvaluator(synd, lambda, p)
	lambdaPrime := formalDerivative(lambda)

	for _, idx := range positions {
		xinv := gfPow(2, idx-(len(block)-1))
		num := ascendingEval(omega, xinv)
		den := ascendingEval(lambdaPrime, xinv)
		if den == 0 {
			return nil, 0, false
		}
		block[idx] = gfAdd(block[idx], gfDiv(num, den))
	}

	// Verify the correction actually zeroed the syndromes.
	synd = syndromes(block, p)
	for _, s := range synd {
		if s != 0 {
			return nil, 0, false
		}
	}
	return block[:m], l, true
}

// syndromes computes S_1..S_p for block using the descending-order
// (message-first) byte layout directly: polyEval(block, x) already
// evaluates C(x) = sum block[idx] * x^(n-1-idx), which is exactly the
// codeword polynomial produced by the LFSR encoder above.
func syndromes(block []byte, p int) []byte {
	s := make([]byte, p)
	for j := 1; j <= p; j++ {
		s[j-1] = polyEval(block, gfPow(2, j))
	}
	return s
}

// berlekampMassey finds the error locator polynomial Lambda(x) (ascending
// order, Lambda[0] == 1) from syndromes S[0..p-1] == S_1..S_p, using
// Massey's 1969 shift-register synthesis algorithm.
func berlekampMassey(s []byte) []byte {
	c := make([]byte, 1, len(s)+2)
	c[0] = 1
	b := make([]byte, 1, len(s)+2)
	b[0] = 1
	l, m, bCoef := 0, 1, byte(1)

	for n := 0; n < len(s); n++ {
		delta := s[n]
		for i := 1; i <= l && i < len(c); i++ {
			delta = gfAdd(delta, gfMul(c[i], s[n-i]))
		}
		if delta == 0 {
			m++
			continue
		}

		t := make([]byte, len(c))
		copy(t, c)

		coef := gfDiv(delta, bCoef)
		need := len(b) + m
		if need > len(c) {
			grown := make([]byte, need)
			copy(grown, c)
			c = grown
		}
		for i := 0; i < len(b); i++ {
			c[i+m] = gfAdd(c[i+m], gfMul(coef, b[i]))
		}

		if 2*l <= n {
			l = n + 1 - l
			b = t
			bCoef = delta
			m = 1
		} else {
			m++
		}
	}
	return c
}

// chienSearch returns the descending-array error positions idx in
// [0,n) for which Lambda(X_idx^-1) == 0, where X_idx corresponds to
// codeword position idx as defined by syndromes' polyEval convention.
func chienSearch(lambda []byte, n int) []int {
	var pos []int
	for idx := 0; idx < n; idx++ {
		xinv := gfPow(2, idx-(n-1))
		if ascendingEval(lambda, xinv) == 0 {
			pos = append(pos, idx)
		}
	}
	return pos
}

// errorEvaluator computes Omega(x) = S(x)*Lambda(x) mod x^p, ascending
// order, where S(x) = sum S_(j+1) x^j.
func errorEvaluator(s, lambda []byte, p int) []byte {
	prod := make([]byte, len(s)+len(lambda)-1)
	for i, sv := range s {
		if sv == 0 {
			continue
		}
		for j, lv := range lambda {
			prod[i+j] = gfAdd(prod[i+j], gfMul(sv, lv))
		}
	}
	if len(prod) > p {
		prod = prod[:p]
	}
	return prod
}

// formalDerivative returns Lambda'(x) over GF(2): only odd-degree terms
// survive, shifted down by one power.
func formalDerivative(lambda []byte) []byte {
	if len(lambda) <= 1 {
		return []byte{0}
	}
	out := make([]byte, len(lambda)-1)
	for i := 1; i < len(lambda); i++ {
		if i%2 == 1 {
			out[i-1] = lambda[i]
		}
	}
	return out
}

// ascendingEval evaluates an ascending-order polynomial (p[i] is the
// coefficient of x^i) at x.
func ascendingEval(p []byte, x byte) byte {
	var y byte
	var xp byte = 1
	for _, c := range p {
		y = gfAdd(y, gfMul(c, xp))
		xp = gfMul(xp, x)
	}
	return y
}
