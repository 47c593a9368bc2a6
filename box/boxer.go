/*
NAME
  boxer.go

DESCRIPTION
  boxer.go implements the Boxer encode path: the symmetric counterpart to
  Unboxer, writing a metadata list and a user payload through both codec
  dispatchers and stamping the resulting symbol levels into the frame's
  content container and metadata bar regions of an output plane.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package box

import (
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/codec/dispatcher"
	"github.com/ausocean/boxcodec/config"
	"github.com/ausocean/boxcodec/frame"
	"github.com/ausocean/boxcodec/logging"
	"github.com/ausocean/boxcodec/metadata"
	"github.com/ausocean/boxcodec/sampler"
)

// Boxer encodes user data and a metadata item list into a frame's
// content container and metadata bar. Frame graphic rendering (borders,
// corner marks, reference bars, calibration gradient, human-readable
// labels) is a consumer of the coordinate model this package defines and
// is not implemented here.
type Boxer struct {
	cfg      *config.Config
	geometry *frame.Geometry
	data     *dispatcher.Dispatcher
	meta     *dispatcher.Dispatcher
	log      logging.Logger
}

// NewBoxer builds a Boxer from cfg.
func NewBoxer(cfg *config.Config) (*Boxer, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.NewDiscard()
	}
	g, err := frame.New(cfg.Frame)
	if err != nil {
		return nil, errors.Wrap(err, "box: resolving frame geometry")
	}
	dataD, err := dispatcher.Build(cfg.DataDispatcher, log)
	if err != nil {
		return nil, errors.Wrap(err, "box: building data dispatcher")
	}
	metaD, err := dispatcher.Build(cfg.MetaDispatcher, log)
	if err != nil {
		return nil, errors.Wrap(err, "box: building metadata dispatcher")
	}
	return &Boxer{cfg: cfg, geometry: g, data: dataD, meta: metaD, log: log}, nil
}

// Box encodes payload and items through the data and metadata
// dispatchers respectively, and stamps the resulting symbol levels into
// a new content-container-and-metadata-bar-sized plane sized to the
// configured frame geometry.
func (b *Boxer) Box(payload []byte, items *metadata.List) (*sampler.Plane, error) {
	bps := sampler.BitsPerSymbol(b.cfg.Frame.MaxLevelsPerSymbol)

	contentCap, err := b.data.CalculatePacketSizes(regionByteCapacity(b.geometry.ContentContainer, bps))
	if err != nil {
		return nil, errors.Wrap(err, "box: calculating content packet sizes")
	}
	if len(payload) > contentCap {
		return nil, errors.Errorf("box: payload of %d bytes exceeds content capacity of %d bytes", len(payload), contentCap)
	}

	encodedData, err := b.data.Encode(payload)
	if err != nil {
		return nil, errors.Wrap(err, "box: encoding payload")
	}

	metaCap, err := b.meta.CalculatePacketSizes(regionByteCapacity(b.geometry.MetadataBar, bps))
	if err != nil {
		return nil, errors.Wrap(err, "box: calculating metadata packet sizes")
	}
	rawMeta := items.Serialize()
	if len(rawMeta) > metaCap {
		return nil, errors.Errorf("box: metadata of %d bytes exceeds metadata capacity of %d bytes", len(rawMeta), metaCap)
	}
	encodedMeta, err := b.meta.Encode(rawMeta)
	if err != nil {
		return nil, errors.Wrap(err, "box: encoding metadata")
	}

	out := &sampler.Plane{
		Width:  b.geometry.Width,
		Height: b.geometry.Height,
		Pix:    make([]float64, b.geometry.Width*b.geometry.Height),
	}

	stampRegion(out, b.geometry.ContentContainer, encodedData, bps, b.cfg.Frame.MaxLevelsPerSymbol)
	stampRegion(out, b.geometry.MetadataBar, encodedMeta, bps, b.cfg.Frame.MaxLevelsPerSymbol)

	return out, nil
}

// regionByteCapacity returns the byte capacity a region yields at bps
// bits per pixel symbol.
func regionByteCapacity(r frame.Rect, bps int) int {
	return (r.W * r.H * bps) / 8
}

// stampRegion unpacks encoded bytes into symbol levels and writes each
// level, scaled to a 0-255 intensity, into region's pixels in row-major
// order.
func stampRegion(out *sampler.Plane, region frame.Rect, encoded []byte, bps, levels int) {
	n := region.W * region.H
	syms := sampler.Unpack(encoded, n, bps)
	for i, lvl := range syms {
		x := region.X + i%region.W
		y := region.Y + i/region.W
		if x < 0 || x >= out.Width || y < 0 || y >= out.Height {
			continue
		}
		out.Pix[y*out.Width+x] = float64(lvl) * 255.0 / float64(levels-1)
	}
}
