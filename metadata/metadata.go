/*
NAME
  metadata.go

DESCRIPTION
  metadata.go provides the frame metadata item set: a type-length-value
  record set carried in a frame's metadata bar, addressable by type and
  serialized/deserialized per spec.md section 4.4 and section 6.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package metadata provides the TLV item set carried in a GPF frame's
// metadata bar: frame number, file size, data CRC, content type, symbol
// depth, cipher key and friends, plus their wire codec.
package metadata

import (
	"fmt"

	"github.com/ausocean/boxcodec/codecutil"
)

// Type is the closed enumeration of metadata item types, matching the wire
// codes in spec.md section 6 (which in turn match BOXING_METADATA_TYPE_* in
// the original C implementation).
type Type uint16

const (
	EndOfData         Type = 0
	JobId             Type = 1
	FrameNumber       Type = 2
	FileId            Type = 3
	FileSize          Type = 4
	DataCrc           Type = 5
	DataSize          Type = 6
	SymbolsPerPixel   Type = 7
	ContentType       Type = 8
	CipherKey         Type = 9
	ContentSymbolSize Type = 10
)

// Width returns the fixed payload width in bytes for a known type, and
// false for an unknown type (whose width must be supplied by the caller,
// since it isn't derivable from the type code alone).
func Width(t Type) (int, bool) {
	switch t {
	case EndOfData:
		return 0, true
	case JobId, FrameNumber, FileId, DataSize, CipherKey:
		return 4, true
	case FileSize, DataCrc:
		return 8, true
	case SymbolsPerPixel, ContentType, ContentSymbolSize:
		return 2, true
	default:
		return 0, false
	}
}

// Item is a single (type, payload) metadata record. Payload is always the
// big-endian encoding of the item's value; width is fixed per type.
type Item struct {
	Type    Type
	Payload []byte
}

// U32 returns the item's payload interpreted as a big-endian uint32, and
// false if the payload is not 4 bytes wide.
func (it Item) U32() (uint32, bool) {
	if len(it.Payload) != 4 {
		return 0, false
	}
	return codecutil.U32(it.Payload), true
}

// U64 returns the item's payload interpreted as a big-endian uint64, and
// false if the payload is not 8 bytes wide.
func (it Item) U64() (uint64, bool) {
	if len(it.Payload) != 8 {
		return 0, false
	}
	return codecutil.U64(it.Payload), true
}

// U16 returns the item's payload interpreted as a big-endian uint16, and
// false if the payload is not 2 bytes wide.
func (it Item) U16() (uint16, bool) {
	if len(it.Payload) != 2 {
		return 0, false
	}
	return codecutil.U16(it.Payload), true
}

// ItemU32 builds an Item carrying a 4-byte big-endian value.
func ItemU32(t Type, v uint32) Item {
	b := codecutil.HtobeL(v)
	return Item{Type: t, Payload: b[:]}
}

// ItemU64 builds an Item carrying an 8-byte big-endian value.
func ItemU64(t Type, v uint64) Item {
	b := codecutil.HtobeLL(v)
	return Item{Type: t, Payload: b[:]}
}

// ItemU16 builds an Item carrying a 2-byte big-endian value.
func ItemU16(t Type, v uint16) Item {
	b := codecutil.HtobeS(v)
	return Item{Type: t, Payload: b[:]}
}

// List is an ordered, type-deduplicated set of metadata items: at most one
// item per type, ordering on the wire is insertion order followed by a
// synthetic EndOfData terminator. Modeled as an order slice plus an
// enum-keyed lookup, matching container/mts/meta.Data's order-slice-plus-map
// shape but keyed by the fixed Type enumeration rather than strings.
type List struct {
	order []Type
	items map[Type]Item
}

// NewList returns an empty metadata list.
func NewList() *List {
	return &List{items: make(map[Type]Item)}
}

// Set inserts or replaces the item for its type. Inserting an item with an
// existing type replaces the prior value in place, preserving its original
// position in the iteration order.
func (l *List) Set(it Item) {
	if _, exists := l.items[it.Type]; !exists {
		l.order = append(l.order, it.Type)
	}
	l.items[it.Type] = it
}

// Get returns the item for t, if present.
func (l *List) Get(t Type) (Item, bool) {
	it, ok := l.items[t]
	return it, ok
}

// Delete removes the item for t, if present.
func (l *List) Delete(t Type) {
	if _, ok := l.items[t]; !ok {
		return
	}
	delete(l.items, t)
	for i, ty := range l.order {
		if ty == t {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of items in the list, excluding the terminating
// EndOfData item (which is synthetic and not stored).
func (l *List) Len() int { return len(l.order) }

// Items returns the items in wire order.
func (l *List) Items() []Item {
	out := make([]Item, len(l.order))
	for i, t := range l.order {
		out[i] = l.items[t]
	}
	return out
}

// Serialize encodes the list as type_u16_be || size_u16_be || payload for
// each item in insertion order, followed by a synthetic EndOfData item
// (0, 0).
func (l *List) Serialize() []byte {
	out := make([]byte, 0, (len(l.order)+1)*4)
	for _, t := range l.order {
		it := l.items[t]
		out = append(out, encodeHeader(t, len(it.Payload))...)
		out = append(out, it.Payload...)
	}
	out = append(out, encodeHeader(EndOfData, 0)...)
	return out
}

func encodeHeader(t Type, size int) []byte {
	var hdr [4]byte
	codecutil.PutU16(hdr[0:2], uint16(t))
	codecutil.PutU16(hdr[2:4], uint16(size))
	return hdr[:]
}

// Deserialize consumes items from b until an EndOfData item or buffer
// exhaustion, returning the parsed list and the number of items parsed
// (excluding the terminator). An unknown type allocates an opaque payload
// of its declared size.
func Deserialize(b []byte) (*List, int, error) {
	l := NewList()
	n := 0
	for len(b) > 0 {
		if len(b) < 4 {
			return nil, 0, fmt.Errorf("metadata: truncated item header, %d bytes remain", len(b))
		}
		t := Type(codecutil.U16(b[0:2]))
		size := int(codecutil.U16(b[2:4]))
		b = b[4:]

		if t == EndOfData {
			return l, n, nil
		}
		if len(b) < size {
			return nil, 0, fmt.Errorf("metadata: item type %d declares size %d but only %d bytes remain", t, size, len(b))
		}

		payload := make([]byte, size)
		copy(payload, b[:size])
		l.Set(Item{Type: t, Payload: payload})
		b = b[size:]
		n++
	}
	return l, n, nil
}
