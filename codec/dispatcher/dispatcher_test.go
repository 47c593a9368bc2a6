package dispatcher

import (
	"bytes"
	"testing"

	"github.com/ausocean/boxcodec/codec"
	"github.com/ausocean/boxcodec/config"
)

func TestRoundTripPacketHeaderAndCRC(t *testing.T) {
	dc := config.DispatcherConfig{
		Version:   config.Version{Major: 1, Minor: 0},
		Order:     config.OrderEncode,
		Alignment: config.AlignByte,
		Scheme: []config.CodecSpec{
			{Class: "PacketHeader", Properties: map[string]string{"messageSize": "32"}},
			{Class: "CRC32", Properties: map[string]string{"polynomial": "0", "seed": "0"}},
		},
	}
	d, err := Build(dc, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.CalculatePacketSizes(64); err != nil {
		t.Fatal(err)
	}

	payload := []byte("hello, boxcodec dispatcher test payload!!")
	enc, err := d.Encode(payload)
	if err != nil {
		t.Fatal(err)
	}

	var stats codec.Stats
	dec, ok, err := d.Decode(enc, &stats, nil)
	if err != nil || !ok {
		t.Fatalf("decode failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(dec, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", dec, payload)
	}
}
