/*
NAME
  syncpoint.go

DESCRIPTION
  syncpoint.go implements the SyncPointInserter codec: lays a grid of
  marker cells over a 2D symbol array, interleaving payload symbols into
  the remaining cells in a declared scan order, per spec.md section 4.1.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package syncpoint implements the sync-point-inserter codec.
package syncpoint

import (
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/codec"
)

// Orientation selects the scan order used to interleave payload symbols
// into the non-marker cells.
type Orientation int

const (
	Horizontal Orientation = iota // Row-major scan.
	Vertical                      // Column-major scan.
)

// AutoOffset requests a centered grid rather than an explicit starting
// offset.
const AutoOffset = -1

// Codec implements codec.Codec for sync-point insertion.
type Codec struct {
	Width, Height           int
	Radius                  int
	DistanceH, DistanceV    int
	OffsetH, OffsetV        int // AutoOffset for centered placement.
	Orientation             Orientation
	Background, Foreground  byte

	sizes       codec.Sizes
	marker      []bool // len Width*Height; true at a sync-point cell.
	payloadScan []int  // indices into the Width*Height array, in scan order, for non-marker cells.
}

// New returns a sync-point-inserter codec for the given frame geometry.
func New(width, height, radius, distH, distV, offH, offV int, orientation Orientation, background, foreground byte) *Codec {
	c := &Codec{
		Width: width, Height: height, Radius: radius,
		DistanceH: distH, DistanceV: distV,
		OffsetH: offH, OffsetV: offV,
		Orientation: orientation,
		Background:  background, Foreground: foreground,
	}
	c.layout()
	return c
}

func (c *Codec) Sizes() codec.Sizes { return c.sizes }

func (c *Codec) IsErrorCorrecting() bool { return false }

func (c *Codec) Reset() {}

func (c *Codec) SetProperty(name string, value interface{}) error {
	switch name {
	case "radius":
		v, ok := value.(int)
		if !ok {
			return errors.Wrap(boxerr.ErrConfig, "syncpoint: radius must be an int")
		}
		c.Radius = v
	default:
		return errors.Wrapf(boxerr.ErrConfig, "syncpoint: unknown property %q", name)
	}
	c.layout()
	return nil
}

// gridCount returns the number of marker centers along one axis, per
// spec.md section 4.1's grid formula.
func gridCount(extent, radius, distance int) int {
	if distance <= 0 {
		return 0
	}
	n := (extent - 2*radius - 1) / distance
	if n < 0 {
		n = 0
	}
	return n + 1
}

func gridStart(extent, radius, distance, count, offset int) int {
	if offset != AutoOffset {
		return offset
	}
	span := (count - 1) * distance
	return (extent - span) / 2
}

// layout computes the marker mask and the payload scan order from the
// codec's configured geometry.
func (c *Codec) layout() {
	if c.Width <= 0 || c.Height <= 0 {
		return
	}
	countH := gridCount(c.Width, c.Radius, c.DistanceH)
	countV := gridCount(c.Height, c.Radius, c.DistanceV)
	startH := gridStart(c.Width, c.Radius, c.DistanceH, countH, c.OffsetH)
	startV := gridStart(c.Height, c.Radius, c.DistanceV, countV, c.OffsetV)

	c.marker = make([]bool, c.Width*c.Height)
	for gy := 0; gy < countV; gy++ {
		cy := startV + gy*c.DistanceV
		for gx := 0; gx < countH; gx++ {
			cx := startH + gx*c.DistanceH
			for dy := -c.Radius; dy <= c.Radius; dy++ {
				y := cy + dy
				if y < 0 || y >= c.Height {
					continue
				}
				for dx := -c.Radius; dx <= c.Radius; dx++ {
					x := cx + dx
					if x < 0 || x >= c.Width {
						continue
					}
					c.marker[y*c.Width+x] = true
				}
			}
		}
	}

	c.payloadScan = c.payloadScan[:0]
	switch c.Orientation {
	case Vertical:
		for x := 0; x < c.Width; x++ {
			for y := 0; y < c.Height; y++ {
				if i := y*c.Width + x; !c.marker[i] {
					c.payloadScan = append(c.payloadScan, i)
				}
			}
		}
	default:
		for y := 0; y < c.Height; y++ {
			for x := 0; x < c.Width; x++ {
				if i := y*c.Width + x; !c.marker[i] {
					c.payloadScan = append(c.payloadScan, i)
				}
			}
		}
	}
}

func (c *Codec) totalCells() int { return c.Width * c.Height }

// InitCapacity expects capacity == Width*Height and returns decoded
// capacity = Width*Height - total sync-point cells.
func (c *Codec) InitCapacity(capacity int) (int, error) {
	if capacity != c.totalCells() {
		return 0, errors.Wrapf(boxerr.ErrConfig, "syncpoint: capacity %d does not match frame area %d", capacity, c.totalCells())
	}
	decoded := len(c.payloadScan)
	c.sizes = codec.Sizes{
		EncodedBlockSize:  c.totalCells(),
		DecodedBlockSize:  decoded,
		EncodedSymbolSize: 8,
		DecodedSymbolSize: 8,
		EncodedDataSize:   c.totalCells(),
		DecodedDataSize:   decoded,
	}
	return decoded, nil
}

// Encode writes the marker grid (foreground at centers, background around
// them) and interleaves data into the remaining cells in scan order.
func (c *Codec) Encode(data []byte) ([]byte, error) {
	if len(data) > len(c.payloadScan) {
		return nil, errors.Wrapf(boxerr.ErrInputData, "syncpoint: %d payload symbols exceed %d available cells", len(data), len(c.payloadScan))
	}
	out := make([]byte, c.totalCells())
	for i, isMarker := range c.marker {
		if isMarker {
			out[i] = c.Background
		}
	}
	c.stampForeground(out)
	for i, b := range data {
		out[c.payloadScan[i]] = b
	}
	for i := len(data); i < len(c.payloadScan); i++ {
		out[c.payloadScan[i]] = 0
	}
	return out, nil
}

func (c *Codec) stampForeground(out []byte) {
	countH := gridCount(c.Width, c.Radius, c.DistanceH)
	countV := gridCount(c.Height, c.Radius, c.DistanceV)
	startH := gridStart(c.Width, c.Radius, c.DistanceH, countH, c.OffsetH)
	startV := gridStart(c.Height, c.Radius, c.DistanceV, countV, c.OffsetV)
	for gy := 0; gy < countV; gy++ {
		cy := startV + gy*c.DistanceV
		for gx := 0; gx < countH; gx++ {
			cx := startH + gx*c.DistanceH
			if cx < 0 || cx >= c.Width || cy < 0 || cy >= c.Height {
				continue
			}
			out[cy*c.Width+cx] = c.Foreground
		}
	}
}

// Decode skips marker cells and concatenates the remaining cells in the
// same scan order Encode used.
func (c *Codec) Decode(data []byte, erasures []bool, stats *codec.Stats, user interface{}) ([]byte, bool, error) {
	if len(data) != c.totalCells() {
		return nil, false, errors.Wrapf(boxerr.ErrInputData, "syncpoint: block of %d cells does not match frame area %d", len(data), c.totalCells())
	}
	out := make([]byte, len(c.payloadScan))
	for i, idx := range c.payloadScan {
		out[i] = data[idx]
	}
	return out, true, nil
}
