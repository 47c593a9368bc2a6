/*
NAME
  frame.go

DESCRIPTION
  frame.go implements the GPF 1.x declarative frame geometry: border,
  corner marks, reference bars, calibration bar, content container and
  metadata bar layout, per spec.md section 3.

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

// Package frame implements GPF 1.x frame geometry: the declarative layout
// of a scanned frame's sub-regions, shared by the tracker (which locates
// them in an image) and the sampler (which resamples their content).
package frame

import (
	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/config"
)

// Rect is an axis-aligned region in logical frame pixels.
type Rect struct {
	X, Y, W, H int
}

// Bar identifies one of the four reference bars.
type Bar int

const (
	Top Bar = iota
	Bottom
	Left
	Right
)

// SyncPattern is a reference bar's optional sync-point pattern.
type SyncPattern struct {
	Distance, Offset int
	Present          bool
}

// Geometry is the fully resolved, non-overlapping layout of a GPF frame,
// derived from config.FrameFormat.
type Geometry struct {
	Width, Height int

	Border, BorderGap int

	CornerMarkSize, CornerMarkGap int
	CornerMarks                  [4]Rect // Top-left, top-right, bottom-left, bottom-right, in that order.

	ReferenceBars   [4]Rect // Indexed by Bar.
	ReferenceBarSync [4]SyncPattern

	CalibrationBar Rect

	ContentContainer Rect
	MetadataBar      Rect

	MaxLevelsPerSymbol int
}

// New derives a Geometry from a resolved frame format, validating the
// non-overlap invariant from spec.md section 3.
func New(f config.FrameFormat) (*Geometry, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, errors.Wrap(boxerr.ErrConfig, "frame: width and height must be positive")
	}

	g := &Geometry{
		Width: f.Width, Height: f.Height,
		Border: f.Border, BorderGap: f.BorderGap,
		CornerMarkSize: f.CornerMarkSize, CornerMarkGap: f.CornerMarkGap,
		MaxLevelsPerSymbol: f.MaxLevelsPerSymbol,
	}

	interiorX := f.Border + f.BorderGap
	interiorY := f.Border + f.BorderGap
	interiorW := f.Width - 2*interiorX
	interiorH := f.Height - 2*interiorY
	if interiorW <= 0 || interiorH <= 0 {
		return nil, errors.Wrap(boxerr.ErrConfig, "frame: border leaves no interior")
	}

	cs := f.CornerMarkSize
	g.CornerMarks = [4]Rect{
		{X: interiorX, Y: interiorY, W: cs, H: cs},                                     // top-left
		{X: interiorX + interiorW - cs, Y: interiorY, W: cs, H: cs},                    // top-right
		{X: interiorX, Y: interiorY + interiorH - cs, W: cs, H: cs},                    // bottom-left
		{X: interiorX + interiorW - cs, Y: interiorY + interiorH - cs, W: cs, H: cs},   // bottom-right
	}

	barThickness := cs / 2
	if barThickness <= 0 {
		barThickness = 1
	}
	g.ReferenceBars[Top] = Rect{X: interiorX + cs, Y: interiorY, W: interiorW - 2*cs, H: barThickness}
	g.ReferenceBars[Bottom] = Rect{X: interiorX + cs, Y: interiorY + interiorH - barThickness, W: interiorW - 2*cs, H: barThickness}
	g.ReferenceBars[Left] = Rect{X: interiorX, Y: interiorY + cs, W: barThickness, H: interiorH - 2*cs}
	g.ReferenceBars[Right] = Rect{X: interiorX + interiorW - barThickness, Y: interiorY + cs, W: barThickness, H: interiorH - 2*cs}

	for i := range g.ReferenceBarSync {
		present := f.RefBarSyncDistanceH > 0 || f.RefBarSyncDistanceV > 0
		g.ReferenceBarSync[i] = SyncPattern{
			Distance: f.RefBarSyncDistanceH, Offset: f.RefBarSyncOffsetH,
			Present: present,
		}
	}
	g.ReferenceBarSync[Left] = SyncPattern{Distance: f.RefBarSyncDistanceV, Offset: f.RefBarSyncOffsetV, Present: f.RefBarSyncDistanceV > 0}
	g.ReferenceBarSync[Right] = g.ReferenceBarSync[Left]

	calibH := barThickness
	g.CalibrationBar = Rect{X: interiorX + cs, Y: interiorY + barThickness, W: interiorW - 2*cs, H: calibH}

	metaH := barThickness * 2
	g.MetadataBar = Rect{
		X: interiorX + cs,
		Y: interiorY + interiorH - barThickness - calibH - metaH,
		W: interiorW - 2*cs,
		H: metaH,
	}

	g.ContentContainer = Rect{
		X: interiorX + cs,
		Y: g.CalibrationBar.Y + g.CalibrationBar.H,
		W: interiorW - 2*cs,
		H: g.MetadataBar.Y - (g.CalibrationBar.Y + g.CalibrationBar.H),
	}
	if g.ContentContainer.H <= 0 {
		return nil, errors.Wrap(boxerr.ErrConfig, "frame: no room for content container between calibration and metadata bars")
	}

	if err := g.validateNonOverlap(); err != nil {
		return nil, err
	}
	return g, nil
}

func (r Rect) overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// validateNonOverlap checks spec.md section 3's invariant that every
// sub-region is non-overlapping with every other.
func (g *Geometry) validateNonOverlap() error {
	regions := []Rect{g.ContentContainer, g.MetadataBar, g.CalibrationBar}
	regions = append(regions, g.CornerMarks[:]...)
	regions = append(regions, g.ReferenceBars[:]...)
	for i := range regions {
		for j := i + 1; j < len(regions); j++ {
			if regions[i].overlaps(regions[j]) {
				return errors.Wrapf(boxerr.ErrConfig, "frame: sub-regions %d and %d overlap", i, j)
			}
		}
	}
	return nil
}

// TileSize returns the content container's tile size in pixels along each
// axis, given the declared tiles-per-column count.
func (g *Geometry) TileSize(tilesPerColumn int) (w, h int) {
	if tilesPerColumn <= 0 {
		tilesPerColumn = 1
	}
	return g.ContentContainer.W, g.ContentContainer.H / tilesPerColumn
}
