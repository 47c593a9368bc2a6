/*
NAME
  gf256.go

DESCRIPTION
  gf256.go implements GF(2^8) arithmetic over the primitive polynomial
  0x11D used by the Reed-Solomon codec, per spec.md section 4.1.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rs

// primitivePoly is the GF(2^8) primitive polynomial named by spec.md
// section 4.1 (the ReedSolomon codec's "primitive polynomial 0x11D" row).
const primitivePoly = 0x11D

// field holds the exponent/log tables for GF(2^8) under primitivePoly.
// klauspost/reedsolomon models erasure codes over a Cauchy/Vandermonde
// matrix and does not expose classical, consecutive-root syndrome
// decoding; recovering bytes at unknown error locations (rather than at
// caller-supplied erasure positions) needs the field arithmetic below,
// per the DESIGN.md entry for this codec.
type field struct {
	exp [512]byte // exp[i] = alpha^i, doubled up to avoid modular wraparound in multiply.
	log [256]byte // log[alpha^i] = i.
}

var gf = newField()

func newField() *field {
	var f field
	x := 1
	for i := 0; i < 255; i++ {
		f.exp[i] = byte(x)
		f.log[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= primitivePoly
		}
	}
	for i := 255; i < 512; i++ {
		f.exp[i] = f.exp[i-255]
	}
	return &f
}

func gfAdd(a, b byte) byte { return a ^ b }

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gf.exp[int(gf.log[a])+int(gf.log[b])]
}

func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	// b == 0 is a precondition violation; callers never divide by zero.
	return gf.exp[int(gf.log[a])-int(gf.log[b])+255]
}

func gfPow(a byte, n int) byte {
	if a == 0 {
		if n == 0 {
			return 1
		}
		return 0
	}
	e := (int(gf.log[a]) * n) % 255
	if e < 0 {
		e += 255
	}
	return gf.exp[e]
}

func gfInv(a byte) byte { return gf.exp[255-int(gf.log[a])] }

// polyEval evaluates polynomial p (p[0] is the highest-degree coefficient)
// at x using Horner's method in GF(256).
func polyEval(p []byte, x byte) byte {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = gfAdd(gfMul(y, x), p[i])
	}
	return y
}

// polyMul multiplies two polynomials over GF(256).
func polyMul(a, b []byte) []byte {
	out := make([]byte, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			out[i+j] = gfAdd(out[i+j], gfMul(av, bv))
		}
	}
	return out
}
