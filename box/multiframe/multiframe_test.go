package multiframe

import (
	"bytes"
	"testing"
)

func TestStripeReconstructNoLoss(t *testing.T) {
	s, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	payload := bytes.Repeat([]byte("boxcodec-multiframe-"), 50)

	shards, err := s.Stripe(payload)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Reconstruct(shards, len(payload))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("reconstructed payload does not match original")
	}
}

func TestReconstructWithMissingFrames(t *testing.T) {
	s, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	payload := bytes.Repeat([]byte("lost-frame-recovery-test-data---"), 30)

	shards, err := s.Stripe(payload)
	if err != nil {
		t.Fatal(err)
	}

	// Lose two frames, within the two-parity-frame recovery capacity.
	shards[0] = nil
	shards[3] = nil

	got, err := s.Reconstruct(shards, len(payload))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("reconstructed payload does not match original after frame loss")
	}
}

func TestReconstructExceedsCapacity(t *testing.T) {
	s, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	payload := bytes.Repeat([]byte("x"), 64)
	shards, err := s.Stripe(payload)
	if err != nil {
		t.Fatal(err)
	}
	shards[0] = nil
	shards[1] = nil
	shards[2] = nil

	if _, err := s.Reconstruct(shards, len(payload)); err == nil {
		t.Fatal("expected an error when missing frames exceed recovery capacity")
	}
}
