/*
NAME
  bits.go

DESCRIPTION
  bits.go provides MSB-first bit extraction and packing used by the bit
  interleaving codec and the quantizer's symbol packing step.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codecutil

// Bit returns the i'th bit of b, counting from the most significant bit of
// byte 0 (bit 0 is the MSB of b[0]).
func Bit(b []byte, i int) byte {
	byteIdx := i / 8
	bitIdx := uint(7 - i%8)
	return (b[byteIdx] >> bitIdx) & 1
}

// SetBit sets or clears the i'th bit of b, using the same MSB-first
// numbering as Bit.
func SetBit(b []byte, i int, v byte) {
	byteIdx := i / 8
	bitIdx := uint(7 - i%8)
	if v != 0 {
		b[byteIdx] |= 1 << bitIdx
	} else {
		b[byteIdx] &^= 1 << bitIdx
	}
}

// PackBitsMSB packs bits (each 0 or 1, MSB-first within the destination
// byte) into a byte slice. len(bits) need not be a multiple of 8; trailing
// bits in the last byte are zero filled.
func PackBitsMSB(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// UnpackBitsMSB unpacks n bits (MSB-first) from b into a slice of n
// bytes, each holding 0 or 1.
func UnpackBitsMSB(b []byte, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = Bit(b, i)
	}
	return out
}

// PopCount returns the number of set bits in b, used by the LFSR cipher's
// DC-balance check.
func PopCount(b []byte) int {
	n := 0
	for _, v := range b {
		for v != 0 {
			n += int(v & 1)
			v >>= 1
		}
	}
	return n
}
