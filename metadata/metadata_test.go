/*
NAME
  metadata_test.go

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package metadata

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestSerializeKnownLayout checks the scenario 4 byte layout from spec.md
// section 8: JobId=0x01020304, FrameNumber=7, DataSize=1000.
func TestSerializeKnownLayout(t *testing.T) {
	l := NewList()
	l.Set(ItemU32(JobId, 0x01020304))
	l.Set(ItemU32(FrameNumber, 7))
	l.Set(ItemU32(DataSize, 1000))

	got := l.Serialize()
	want := []byte{
		0x00, 0x01, 0x00, 0x04, 0x01, 0x02, 0x03, 0x04,
		0x00, 0x02, 0x00, 0x04, 0x00, 0x00, 0x00, 0x07,
		0x00, 0x06, 0x00, 0x04, 0x00, 0x00, 0x03, 0xE8,
		0x00, 0x00, 0x00, 0x00,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected serialization (-want +got):\n%s", diff)
	}
}

// TestRoundTrip checks that deserialize(serialize(L)) == L up to iteration
// order, per the quantified property in spec.md section 8.
func TestRoundTrip(t *testing.T) {
	l := NewList()
	l.Set(ItemU32(JobId, 42))
	l.Set(ItemU64(FileSize, 123456789))
	l.Set(ItemU16(SymbolsPerPixel, 4))
	l.Set(Item{Type: 999, Payload: []byte{1, 2, 3}})

	enc := l.Serialize()
	got, n, err := Deserialize(enc)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if n != l.Len() {
		t.Fatalf("got %d items, want %d", n, l.Len())
	}
	if diff := cmp.Diff(l.Items(), got.Items()); diff != "" {
		t.Fatalf("unexpected round trip (-want +got):\n%s", diff)
	}
}

// TestSetReplacesInPlace checks that Set replaces a value in place,
// keeping its original wire position.
func TestSetReplacesInPlace(t *testing.T) {
	l := NewList()
	l.Set(ItemU32(JobId, 1))
	l.Set(ItemU32(FrameNumber, 2))
	l.Set(ItemU32(JobId, 99))

	items := l.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Type != JobId {
		t.Fatalf("expected JobId to retain its original position, got type %d first", items[0].Type)
	}
	v, _ := items[0].U32()
	if v != 99 {
		t.Fatalf("got JobId=%d, want 99", v)
	}
}

// TestKnownTypeWidths checks that Width reports the fixed payload width w
// for each known type.
func TestKnownTypeWidths(t *testing.T) {
	cases := []struct {
		t Type
		w int
	}{
		{EndOfData, 0},
		{JobId, 4},
		{FrameNumber, 4},
		{FileId, 4},
		{FileSize, 8},
		{DataCrc, 8},
		{DataSize, 4},
		{SymbolsPerPixel, 2},
		{ContentType, 2},
		{CipherKey, 4},
		{ContentSymbolSize, 2},
	}
	for _, c := range cases {
		w, ok := Width(c.t)
		if !ok {
			t.Errorf("type %d: want known width", c.t)
			continue
		}
		if w != c.w {
			t.Errorf("type %d: got width %d, want %d", c.t, w, c.w)
		}
	}
}

func TestUnknownTypeOpaquePayload(t *testing.T) {
	l := NewList()
	l.Set(Item{Type: 500, Payload: []byte{0xAA, 0xBB, 0xCC}})
	enc := l.Serialize()

	got, _, err := Deserialize(enc)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	it, ok := got.Get(500)
	if !ok {
		t.Fatal("expected opaque item to round trip")
	}
	if diff := cmp.Diff([]byte{0xAA, 0xBB, 0xCC}, it.Payload); diff != "" {
		t.Fatalf("unexpected payload (-want +got):\n%s", diff)
	}
}

func TestDeserializeTruncated(t *testing.T) {
	_, _, err := Deserialize([]byte{0x00, 0x01, 0x00, 0x04, 0x01})
	if err == nil {
		t.Fatal("expected error for truncated item")
	}
}
