package box

import (
	"bytes"
	"testing"

	"github.com/ausocean/boxcodec/config"
	"github.com/ausocean/boxcodec/metadata"
)

func testConfig() *config.Config {
	return &config.Config{
		Frame: config.FrameFormat{
			Width: 160, Height: 160,
			Border: 0, BorderGap: 0,
			CornerMarkSize: 8, CornerMarkGap: 0,
			MaxLevelsPerSymbol: 2,
		},
		DataDispatcher: config.DispatcherConfig{
			Version: config.Version{Major: 1, Minor: 0}, Order: config.OrderEncode, Alignment: config.AlignByte,
			Scheme: []config.CodecSpec{
				{Class: "PacketHeader", Properties: map[string]string{"messageSize": "64"}},
				{Class: "CRC32", Properties: map[string]string{"polynomial": "0", "seed": "0"}},
			},
		},
		MetaDispatcher: config.DispatcherConfig{
			Version: config.Version{Major: 1, Minor: 0}, Order: config.OrderEncode, Alignment: config.AlignByte,
			Scheme: []config.CodecSpec{
				{Class: "PacketHeader", Properties: map[string]string{"messageSize": "32"}},
				{Class: "CRC32", Properties: map[string]string{"polynomial": "0", "seed": "0"}},
			},
		},
	}
}

func TestBoxerEncodesWithinGeometry(t *testing.T) {
	cfg := testConfig()
	boxer, err := NewBoxer(cfg)
	if err != nil {
		t.Fatal(err)
	}

	items := metadata.NewList()
	items.Set(metadata.ItemU32(metadata.FrameNumber, 42))

	payload := bytes.Repeat([]byte("x"), 40)
	plane, err := boxer.Box(payload, items)
	if err != nil {
		t.Fatal(err)
	}
	if plane.Width != cfg.Frame.Width || plane.Height != cfg.Frame.Height {
		t.Fatalf("plane dims %dx%d, want %dx%d", plane.Width, plane.Height, cfg.Frame.Width, cfg.Frame.Height)
	}

	var nonzero int
	for _, v := range plane.Pix {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Fatal("boxed plane has no stamped content")
	}
}

func TestBoxerRejectsOversizedPayload(t *testing.T) {
	cfg := testConfig()
	boxer, err := NewBoxer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	items := metadata.NewList()
	huge := bytes.Repeat([]byte("x"), 1<<20)
	if _, err := boxer.Box(huge, items); err == nil {
		t.Fatal("expected an error for an oversized payload")
	}
}
