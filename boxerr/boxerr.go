/*
NAME
  boxerr.go

DESCRIPTION
  boxerr.go defines the sentinel error kinds reported by boxcodec
  components, and helpers for wrapping them with call-specific context.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package boxerr defines the error kinds shared across boxcodec's codec,
// tracker, sampler and orchestration components.
package boxerr

import "errors"

// Sentinel error kinds. Component errors wrap one of these with
// github.com/pkg/errors so that errors.Is still matches against the kind.
var (
	// ErrConfig indicates missing or malformed configuration, an unknown
	// codec name, or a symbol-size mismatch during capacity chaining.
	ErrConfig = errors.New("boxcodec: config error")

	// ErrBorderTracking indicates the tracker could not locate the frame.
	ErrBorderTracking = errors.New("boxcodec: border tracking failed")

	// ErrMetadata indicates metadata decode failed or a required field is
	// missing.
	ErrMetadata = errors.New("boxcodec: metadata error")

	// ErrDataDecode indicates a codec stage reported unresolvable errors.
	ErrDataDecode = errors.New("boxcodec: data decode error")

	// ErrCrcMismatch indicates the end-to-end checksum disagreed.
	ErrCrcMismatch = errors.New("boxcodec: crc mismatch")

	// ErrInputData indicates a caller-supplied buffer violated a documented
	// precondition.
	ErrInputData = errors.New("boxcodec: input data error")

	// ErrProcessAbort indicates an observer callback requested abort.
	ErrProcessAbort = errors.New("boxcodec: process callback abort")
)
