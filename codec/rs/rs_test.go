package rs

import (
	"bytes"
	"testing"

	"github.com/ausocean/boxcodec/codec"
)

func TestRoundTripNoErrors(t *testing.T) {
	c, err := New(32, 8)
	if err != nil {
		t.Fatal(err)
	}
	msg := make([]byte, 32)
	for i := range msg {
		msg[i] = byte(i * 7)
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
	if stats.ResolvedErrors != 0 {
		t.Fatalf("expected 0 resolved errors, got %d", stats.ResolvedErrors)
	}
}

// TestCorrectsMaximumByteErrors mirrors the RS(223,32) scenario: flipping
// floor(p/2) bytes at unknown positions must be fully corrected.
func TestCorrectsMaximumByteErrors(t *testing.T) {
	const m, p = 223, 32
	c, err := New(m, p)
	if err != nil {
		t.Fatal(err)
	}
	msg := make([]byte, m)
	for i := range msg {
		msg[i] = byte(i * 31)
	}
	enc, err := c.Encode(msg)
	if err != nil {
		t.Fatal(err)
	}

	t_ := p / 2 // 16 correctable byte errors.
	corrupt := make([]byte, len(enc))
	copy(corrupt, enc)
	for i := 0; i < t_; i++ {
		pos := i * (len(enc) / t_)
		corrupt[pos] ^= 0xFF
	}

	stats := &codec.Stats{}
	dec, ok, err := c.Decode(corrupt, nil, stats, nil)
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(dec, msg) {
		t.Fatalf("failed to recover message after %d byte errors", t_)
	}
	if stats.ResolvedErrors != t_ {
		t.Fatalf("resolved_errors = %d, want %d", stats.ResolvedErrors, t_)
	}
}

func TestExceedsCapacityReportsUnresolved(t *testing.T) {
	const m, p = 32, 8 // t = 4
	c, err := New(m, p)
	if err != nil {
		t.Fatal(err)
	}
	msg := make([]byte, m)
	enc, err := c.Encode(msg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ { // exceeds floor(8/2)=4
		enc[i] ^= 0xFF
	}
	stats := &codec.Stats{}
	_, ok, err := c.Decode(enc, nil, stats, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Decode should not abort the chain on an unresolved block")
	}
	if stats.UnresolvedErrors == 0 {
		t.Fatal("expected UnresolvedErrors to be recorded")
	}
}
