/*
NAME
  bchfield.go

DESCRIPTION
  bchfield.go implements generic GF(2^d) arithmetic for the BCH codec,
  where d (and the primitive polynomial) vary with the configured block
  size, unlike the fixed GF(2^8) used by the Reed-Solomon codec.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bch

// field is a GF(2^d) Galois field with n = 2^d-1 nonzero elements.
type field struct {
	d   int
	n   int
	exp []uint32 // exp[i] = alpha^i, doubled in length to avoid modular wraparound.
	log []uint32 // log[alpha^i] = i.
}

// newField builds the exponent/log tables for GF(2^d) under primitive
// polynomial poly (degree d).
func newField(d int, poly uint32) *field {
	n := 1<<uint(d) - 1
	f := &field{d: d, n: n, exp: make([]uint32, 2*n), log: make([]uint32, n+1)}
	x := uint32(1)
	top := uint32(1) << uint(d)
	for i := 0; i < n; i++ {
		f.exp[i] = x
		f.log[x] = uint32(i)
		x <<= 1
		if x&top != 0 {
			x ^= poly
		}
	}
	for i := n; i < 2*n; i++ {
		f.exp[i] = f.exp[i-n]
	}
	return f
}

func (f *field) add(a, b uint32) uint32 { return a ^ b }

func (f *field) mul(a, b uint32) uint32 {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[f.log[a]+f.log[b]]
}

func (f *field) div(a, b uint32) uint32 {
	if a == 0 {
		return 0
	}
	return f.exp[(int(f.log[a])-int(f.log[b])+f.n)%f.n]
}

func (f *field) pow(a uint32, e int) uint32 {
	if a == 0 {
		if e == 0 {
			return 1
		}
		return 0
	}
	m := (int(f.log[a]) * e) % f.n
	if m < 0 {
		m += f.n
	}
	return f.exp[m]
}

// polyEval evaluates p (p[0] highest degree) at x via Horner's method.
func (f *field) polyEval(p []uint32, x uint32) uint32 {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = f.add(f.mul(y, x), p[i])
	}
	return y
}

// polyMul multiplies two descending-order polynomials over the field.
func (f *field) polyMul(a, b []uint32) []uint32 {
	out := make([]uint32, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			out[i+j] = f.add(out[i+j], f.mul(av, bv))
		}
	}
	return out
}
