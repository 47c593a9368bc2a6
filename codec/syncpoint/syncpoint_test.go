package syncpoint

import (
	"bytes"
	"testing"

	"github.com/ausocean/boxcodec/codec"
)

func TestRoundTrip(t *testing.T) {
	c := New(32, 32, 1, 8, 8, AutoOffset, AutoOffset, Horizontal, 0, 255)
	decCap, err := c.InitCapacity(32 * 32)
	if err != nil {
		t.Fatal(err)
	}
	if decCap <= 0 || decCap >= 32*32 {
		t.Fatalf("unexpected decoded capacity %d", decCap)
	}

	payload := make([]byte, decCap)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	enc, err := c.Encode(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(enc) != 32*32 {
		t.Fatalf("encoded length %d, want %d", len(enc), 32*32)
	}

	stats := &codec.Stats{}
	dec, ok, err := c.Decode(enc, nil, stats, nil)
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(dec, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestGridCount(t *testing.T) {
	if n := gridCount(100, 2, 10); n <= 0 {
		t.Fatalf("expected positive grid count, got %d", n)
	}
}
