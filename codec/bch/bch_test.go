package bch

import (
	"bytes"
	"testing"

	"github.com/ausocean/boxcodec/codec"
	"github.com/ausocean/boxcodec/codecutil"
)

func TestRoundTripNoErrors(t *testing.T) {
	c, err := New(16, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	msg := make([]byte, 16)
	for i := range msg {
		msg[i] = byte(i * 13)
	}
	enc, err := c.Encode(msg)
	if err != nil {
		t.Fatal(err)
	}
	stats := &codec.Stats{}
	dec, ok, err := c.Decode(enc, nil, stats, nil)
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(dec, msg) {
		t.Fatalf("round trip mismatch: got %x want %x", dec, msg)
	}
}

func TestCorrectsSingleBitError(t *testing.T) {
	c, err := New(16, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c.t < 1 {
		t.Skipf("generated code corrects %d bits, need at least 1", c.t)
	}
	msg := make([]byte, 16)
	for i := range msg {
		msg[i] = byte(i * 13)
	}
	enc, err := c.Encode(msg)
	if err != nil {
		t.Fatal(err)
	}

	corrupt := make([]byte, len(enc))
	copy(corrupt, enc)
	codecutil.SetBit(corrupt, 5, codecutil.Bit(corrupt, 5)^1)

	stats := &codec.Stats{}
	dec, ok, err := c.Decode(corrupt, nil, stats, nil)
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(dec, msg) {
		t.Fatalf("failed to recover message after single bit error")
	}
	if stats.ResolvedErrors != 1 {
		t.Fatalf("resolved_errors = %d, want 1", stats.ResolvedErrors)
	}
}
