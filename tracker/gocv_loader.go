//go:build withcv
// +build withcv

/*
NAME
  gocv_loader.go

DESCRIPTION
  gocv_loader.go decodes a scanned image file into the single-channel
  sampler.Plane the tracker operates on, isolated behind the withcv build
  tag since it requires the gocv cgo bindings, the same isolation the
  motion-detection filter uses for its gocv dependency.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tracker

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ausocean/boxcodec/sampler"
)

// LoadPlane decodes an encoded image (PNG, JPEG, ...) into a single
// channel sampler.Plane, converting to grayscale if necessary.
func LoadPlane(encoded []byte) (*sampler.Plane, error) {
	img, err := gocv.IMDecode(encoded, gocv.IMReadGrayScale)
	if err != nil {
		return nil, fmt.Errorf("tracker: image can't be decoded: %w", err)
	}
	defer img.Close()

	w, h := img.Cols(), img.Rows()
	pix := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = float64(img.GetUCharAt(y, x))
		}
	}
	return &sampler.Plane{Pix: pix, Width: w, Height: h}, nil
}
