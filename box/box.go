/*
NAME
  box.go

DESCRIPTION
  box.go implements the Unboxer/Boxer orchestration: frame geometry plus
  the tracker, sampler and codec dispatchers combined into a single
  decode (unbox) and encode (box) entry point, per spec.md section 4.5.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package box implements the unboxer/boxer orchestration layer: it owns
// the frame geometry, the codec dispatchers, and the tracker, and drives
// a scanned image through decode (Unbox) or user data through encode
// (Box).
package box

import (
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/codec"
	"github.com/ausocean/boxcodec/codec/dispatcher"
	"github.com/ausocean/boxcodec/config"
	"github.com/ausocean/boxcodec/frame"
	"github.com/ausocean/boxcodec/logging"
	"github.com/ausocean/boxcodec/metadata"
	"github.com/ausocean/boxcodec/sampler"
	"github.com/ausocean/boxcodec/tracker"
)

// UnboxResult reports the soft-failure split confirmed by
// original_source/src/unboxer.c: the extract phase (tracker plus
// sampling) and the decode phase (dispatcher chain) are independently
// inspectable outcomes, so a caller can distinguish "couldn't find the
// frame" from "found it but the payload didn't resolve".
type UnboxResult struct {
	Extract error
	Decode  error
	Stats   codec.Stats
}

// Ok reports whether both phases succeeded.
func (r *UnboxResult) Ok() bool { return r.Extract == nil && r.Decode == nil }

// Unboxer decodes scanned images back into user data.
type Unboxer struct {
	cfg      *config.Config
	geometry *frame.Geometry
	data     *dispatcher.Dispatcher
	meta     *dispatcher.Dispatcher
	tracker  *tracker.Tracker
	log      logging.Logger
}

// NewUnboxer builds an Unboxer from cfg: resolves frame geometry, builds
// both codec dispatchers, and constructs the tracker for that geometry.
func NewUnboxer(cfg *config.Config) (*Unboxer, error) {
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

	mode := tracker.ReferenceMarks | tracker.ReferenceBars | tracker.SyncPoints | tracker.CalibrationBar
	tr := tracker.New(g, mode)

	return &Unboxer{cfg: cfg, geometry: g, data: dataD, meta: metaD, tracker: tr, log: log}, nil
}

// Unbox runs the full decode pipeline from process flow step list in
// spec.md section 4.5: track the frame, sample the metadata bar and
// content container, decode the metadata item list, then decode the
// payload with the data dispatcher, injecting the metadata-carried
// cipher key if the scheme uses one.
func (u *Unboxer) Unbox(img *sampler.Plane) (*UnboxResult, []byte, error) {
	res := &UnboxResult{}

	trackResult, err := u.tracker.Track(img)
	if err != nil {
		res.Extract = err
		return res, nil, nil
	}

	metaLevels, err := u.sampleRegion(img, u.geometry.MetadataBar, u.cfg.Frame.MaxLevelsPerSymbol)
	if err != nil {
		res.Extract = errors.Wrap(boxerr.ErrMetadata, err.Error())
		return res, nil, nil
	}
	metaBytes := sampler.Pack(metaLevels, sampler.BitsPerSymbol(u.cfg.Frame.MaxLevelsPerSymbol))

	var metaStats codec.Stats
	rawMeta, ok, err := u.meta.Decode(metaBytes, &metaStats, nil)
	res.Stats.Add(metaStats)
	if err != nil || !ok {
		res.Decode = errors.Wrap(boxerr.ErrMetadata, "box: metadata decode failed")
		return res, nil, nil
	}
	items, _, err := metadata.Deserialize(rawMeta)
	if err != nil {
		res.Decode = errors.Wrap(boxerr.ErrMetadata, err.Error())
		return res, nil, nil
	}

	contentLevels, err := u.sampleRegion(img, u.geometry.ContentContainer, u.cfg.Frame.MaxLevelsPerSymbol)
	if err != nil {
		res.Extract = err
		return res, nil, nil
	}
	contentBytes := sampler.Pack(contentLevels, sampler.BitsPerSymbol(u.cfg.Frame.MaxLevelsPerSymbol))

	var user interface{}
	if key, ok := items.Get(metadata.CipherKey); ok {
		if v, ok := key.U32(); ok {
			user = v
		}
	}

	var dataStats codec.Stats
	payload, ok, err := u.data.Decode(contentBytes, &dataStats, user)
	res.Stats.Add(dataStats)
	if err != nil || !ok {
		res.Decode = errors.Wrap(boxerr.ErrDataDecode, "box: content decode failed")
		return res, nil, nil
	}

	_ = trackResult // Not used further: regions are sampled at their fixed geometry positions.
	return res, payload, nil
}

// sampleRegion resamples a rectangular region of the tracked image into
// quantized symbol levels using the sampler's tile grid and the frame's
// own calibration-bar intensities.
func (u *Unboxer) sampleRegion(img *sampler.Plane, r frame.Rect, levels int) ([]int, error) {
	cols, rows := r.W, r.H
	if cols <= 0 || rows <= 0 {
		return nil, errors.Wrap(boxerr.ErrConfig, "box: region has no area")
	}
	sub := &sampler.Plane{Width: r.W, Height: r.H, Pix: make([]float64, r.W*r.H)}
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			sub.Pix[y*r.W+x] = img.At(r.X+x, r.Y+y)
		}
	}
	s := sampler.New(cols, rows)
	samples, err := s.Sample(sub)
	if err != nil {
		return nil, err
	}

	calib := u.sampleCalibrationBar(img)
	q, err := sampler.NewQuantizer(levels)
	if err != nil {
		return nil, err
	}
	if err := q.Calibrate(calib); err != nil {
		return nil, err
	}
	return q.Quantize(samples)
}

func (u *Unboxer) sampleCalibrationBar(img *sampler.Plane) []float64 {
	r := u.geometry.CalibrationBar
	out := make([]float64, 0, r.W)
	for x := 0; x < r.W; x++ {
		out = append(out, img.At(r.X+x, r.Y+r.H/2))
	}
	return out
}
