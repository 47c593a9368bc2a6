/*
NAME
  bigendian.go

DESCRIPTION
  bigendian.go provides deterministic big-endian conversion helpers shared
  by the metadata codec and the block codecs.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package codecutil provides the deterministic bit/byte building blocks
// (big-endian conversion, CRC, bit extraction) shared by every codec in
// package codec.
package codecutil

import "encoding/binary"

// HtobeS and BetohS round-trip a 16-bit value through its big-endian byte
// representation.
func HtobeS(v uint16) [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b
}

func BetohS(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// HtobeL and BetohL round-trip a 32-bit value through its big-endian byte
// representation.
func HtobeL(v uint32) [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b
}

func BetohL(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// HtobeLL and BetohLL round-trip a 64-bit value through its big-endian byte
// representation.
func HtobeLL(v uint64) [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b
}

func BetohLL(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

// PutU16 writes v as two big-endian bytes into b, which must have length >= 2.
func PutU16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }

// U16 reads two big-endian bytes from b, which must have length >= 2.
func U16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// PutU32 writes v as four big-endian bytes into b, which must have length >= 4.
func PutU32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }

// U32 reads four big-endian bytes from b, which must have length >= 4.
func U32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// PutU64 writes v as eight big-endian bytes into b, which must have length >= 8.
func PutU64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

// U64 reads eight big-endian bytes from b, which must have length >= 8.
func U64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
