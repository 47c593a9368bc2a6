/*
NAME
  dispatcher.go

DESCRIPTION
  dispatcher.go implements the codec dispatcher: it builds an ordered
  codec chain from configuration, chains capacities through init_capacity,
  and drives encode/decode across the chain, per spec.md section 4.1.

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

// Package dispatcher builds and drives a configured codec chain.
package dispatcher

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/codec"
	"github.com/ausocean/boxcodec/codec/bch"
	"github.com/ausocean/boxcodec/codec/cipher"
	"github.com/ausocean/boxcodec/codec/crc32codec"
	"github.com/ausocean/boxcodec/codec/interleave"
	"github.com/ausocean/boxcodec/codec/packetheader"
	"github.com/ausocean/boxcodec/codec/rs"
	"github.com/ausocean/boxcodec/codec/syncpoint"
	"github.com/ausocean/boxcodec/config"
	"github.com/ausocean/boxcodec/logging"
)

// Dispatcher drives a configured, ordered codec chain.
type Dispatcher struct {
	encodeOrder []codec.Codec
	version     config.Version
	alignment   config.SymbolAlignment
	log         logging.Logger
}

// Build constructs a Dispatcher from dc, instantiating each scheme entry's
// codec class and late-binding "auto" tokens, then normalizes the chain to
// encode order (dc.Scheme is read in whichever order dc.Order names).
func Build(dc config.DispatcherConfig, log logging.Logger) (*Dispatcher, error) {
	if log == nil {
		log = logging.NewDiscard()
	}
	chain := make([]codec.Codec, 0, len(dc.Scheme))
	for _, spec := range dc.Scheme {
		c, err := newCodec(spec)
		if err != nil {
			return nil, errors.Wrapf(err, "dispatcher: building codec %q", spec.Class)
		}
		chain = append(chain, c)
	}
	if dc.Order == config.OrderDecode {
		reverse(chain)
	}
	return &Dispatcher{encodeOrder: chain, version: dc.Version, alignment: dc.Alignment, log: log}, nil
}

func reverse(c []codec.Codec) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}

// Version returns the dispatcher's configured version. Package box does
// not branch on it: no legacy CRC-trailer check is applied to metadata
// decoded by a pre-1.0 dispatcher.
func (d *Dispatcher) Version() config.Version { return d.version }

// Codecs returns the chain in encode order, for callers that need to
// reach a specific stage. Package box does not use it: the decoded cipher
// key is passed through Decode's user argument.
func (d *Dispatcher) Codecs() []codec.Codec { return d.encodeOrder }

// CalculatePacketSizes walks the decode-order list (the reverse of the
// encode-order chain), calling InitCapacity on each stage and propagating
// its decoded capacity to the next, starting from the frame's declared
// content capacity. It returns the final decoded (user-data) capacity.
func (d *Dispatcher) CalculatePacketSizes(contentCapacity int) (int, error) {
	capacity := contentCapacity
	for i := len(d.encodeOrder) - 1; i >= 0; i-- {
		c := d.encodeOrder[i]
		next, err := c.InitCapacity(capacity)
		if err != nil {
			return 0, errors.Wrapf(err, "dispatcher: init_capacity at decode stage %d", len(d.encodeOrder)-1-i)
		}
		capacity = next
	}
	return capacity, nil
}

// Encode iterates the chain in encode order.
func (d *Dispatcher) Encode(data []byte) ([]byte, error) {
	cur := data
	for i, c := range d.encodeOrder {
		out, err := c.Encode(cur)
		if err != nil {
			return nil, errors.Wrapf(err, "dispatcher: encode stage %d", i)
		}
		cur = out
	}
	return cur, nil
}

// Decode iterates the chain in decode order (the reverse of encode order),
// truncating data to each stage's declared encoded capacity, folding
// per-stage stats, and zeroing UnresolvedErrors after a successful
// error-correcting stage. It stops and returns ok == false at the first
// non-error-correcting stage failure.
func (d *Dispatcher) Decode(data []byte, stats *codec.Stats, user interface{}) ([]byte, bool, error) {
	cur := data
	for i := len(d.encodeOrder) - 1; i >= 0; i-- {
		c := d.encodeOrder[i]
		sizes := c.Sizes()
		if sizes.EncodedDataSize > 0 && sizes.EncodedDataSize < len(cur) {
			cur = cur[:sizes.EncodedDataSize]
		}

		var stageStats codec.Stats
		out, ok, err := c.Decode(cur, nil, &stageStats, user)
		stats.Add(stageStats)
		if err != nil {
			return nil, false, errors.Wrapf(err, "dispatcher: decode stage %d", i)
		}
		if !ok {
			return nil, false, nil
		}
		if c.IsErrorCorrecting() && stageStats.UnresolvedErrors == 0 {
			stats.UnresolvedErrors = 0
		}
		cur = out
	}
	return cur, true, nil
}

// newCodec instantiates a codec from its configured class name and
// property map, per spec.md section 4.1's per-codec-class property
// tables.
func newCodec(spec config.CodecSpec) (codec.Codec, error) {
	props := spec.Properties
	switch spec.Class {
	case "ReedSolomon":
		m, err := intProp(props, "messageSize")
		if err != nil {
			return nil, err
		}
		p, err := intProp(props, "byteParityNumber")
		if err != nil {
			return nil, err
		}
		return rs.New(m, p)

	case "BCH":
		m, err := intProp(props, "messageSize")
		if err != nil {
			return nil, err
		}
		p, err := intProp(props, "byteParityNumber")
		if err != nil {
			return nil, err
		}
		poly, _ := intProp(props, "polynomial")
		return bch.New(m, p, uint32(poly))

	case "CRC32":
		poly, _ := intProp(props, "polynomial")
		seed, _ := intProp(props, "seed")
		return crc32codec.New(uint32(poly), uint32(seed)), nil

	case "Cipher":
		key := props["key"]
		if key == config.AutoToken || key == "" {
			initial, _ := intProp(props, "initialKey")
			return cipher.NewAuto(uint32(initial)), nil
		}
		k, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(boxerr.ErrConfig, "cipher: bad key %q", key)
		}
		return cipher.New(uint32(k)), nil

	case "Interleave":
		d, err := intProp(props, "distance")
		if err != nil {
			return nil, err
		}
		symbol := interleave.Byte
		if strings.EqualFold(props["symbolType"], "bit") {
			symbol = interleave.Bit
		}
		return interleave.New(d, symbol), nil

	case "PacketHeader":
		m, err := intProp(props, "messageSize")
		if err != nil {
			return nil, err
		}
		return packetheader.New(m), nil

	case "SyncPointInserter":
		return newSyncPointCodec(props)

	default:
		return nil, errors.Wrapf(boxerr.ErrConfig, "dispatcher: unknown codec class %q", spec.Class)
	}
}

func newSyncPointCodec(props map[string]string) (codec.Codec, error) {
	w, err := intProp(props, "width")
	if err != nil {
		return nil, err
	}
	h, err := intProp(props, "height")
	if err != nil {
		return nil, err
	}
	radius, err := intProp(props, "radius")
	if err != nil {
		return nil, err
	}
	distH, err := intProp(props, "syncPointHDistance")
	if err != nil {
		return nil, err
	}
	distV, err := intProp(props, "syncPointVDistance")
	if err != nil {
		return nil, err
	}
	offH := syncpoint.AutoOffset
	if v, ok := props["syncPointHOffset"]; ok && v != config.AutoToken {
		offH, err = strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrapf(boxerr.ErrConfig, "syncpoint: bad syncPointHOffset %q", v)
		}
	}
	offV := syncpoint.AutoOffset
	if v, ok := props["syncPointVOffset"]; ok && v != config.AutoToken {
		offV, err = strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrapf(boxerr.ErrConfig, "syncpoint: bad syncPointVOffset %q", v)
		}
	}
	orientation := syncpoint.Horizontal
	if strings.EqualFold(props["dataOrientation"], "vertical") {
		orientation = syncpoint.Vertical
	}
	background, _ := intProp(props, "backgroundLevel")
	foreground, _ := intProp(props, "foregroundLevel")
	return syncpoint.New(w, h, radius, distH, distV, offH, offV, orientation, byte(background), byte(foreground)), nil
}

func intProp(props map[string]string, key string) (int, error) {
	v, ok := props[key]
	if !ok {
		return 0, errors.Wrapf(boxerr.ErrConfig, "missing property %q", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(boxerr.ErrConfig, "property %q: %q is not an integer", key, v)
	}
	return n, nil
}
