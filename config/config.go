/*
NAME
  config.go

DESCRIPTION
  config.go provides the Config struct used to drive the codec dispatcher,
  frame geometry and tracker, populated from an already-parsed two-level
  key/value configuration map as described in spec.md section 6. Parsing
  of a configuration file (XML or otherwise) is out of scope; this package
  only consumes a map the caller has already produced.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the boxcodec
// codec dispatcher, frame geometry and multi-frame striping.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausocean/boxcodec/boxerr"
	"github.com/ausocean/boxcodec/logging"
)

// Frame format families named by the FrameFormat.type key.
const (
	GPFv1_0 = "GPFv1.0"
	GPFv1_1 = "GPFv1.1"
	GPFv1_2 = "GPFv1.2"
)

// SymbolAlignment is the capacity unit the dispatcher chains codecs in.
type SymbolAlignment int

const (
	AlignBit SymbolAlignment = iota
	AlignByte
)

// Order controls which direction the dispatcher's configured codec list is
// read to build the encode sequence.
type Order int

const (
	OrderEncode Order = iota
	OrderDecode
)

// AutoToken is the late-binding sentinel recognised at dispatcher
// construction time for the Cipher "key" property and the
// SyncPointInserter offset properties. Integer properties such as
// bit-depth or stripe size are parsed as plain integers, so "auto" is
// rejected there as a config error.
const AutoToken = "auto"

// Map is the two-level group -> key -> value configuration map spec.md
// section 6 describes as the core's only configuration input. Values are
// always strings on the wire; typed accessors below parse them.
type Map map[string]map[string]string

// Get returns the raw string value for group/key, and false if absent.
func (m Map) Get(group, key string) (string, bool) {
	g, ok := m[group]
	if !ok {
		return "", false
	}
	v, ok := g[key]
	return v, ok
}

// GetDefault returns the raw string value for group/key, or def if absent.
func (m Map) GetDefault(group, key, def string) string {
	if v, ok := m.Get(group, key); ok {
		return v
	}
	return def
}

// Int parses group/key as an integer, returning an error wrapping
// boxerr.ErrConfig on failure.
func (m Map) Int(group, key string) (int, error) {
	v, ok := m.Get(group, key)
	if !ok {
		return 0, errors.Wrapf(boxerr.ErrConfig, "missing key %s.%s", group, key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(boxerr.ErrConfig, "%s.%s: %q is not an integer", group, key, v)
	}
	return n, nil
}

// IntDefault is Int but returns def instead of an error when the key is
// absent.
func (m Map) IntDefault(group, key string, def int) int {
	n, err := m.Int(group, key)
	if err != nil {
		return def
	}
	return n
}

// Point parses a comma-separated "x,y" pair, as spec.md section 6 describes
// for "point" valued keys (e.g. reference-bar sync distance/offset pairs).
func (m Map) Point(group, key string) (x, y int, err error) {
	v, ok := m.Get(group, key)
	if !ok {
		return 0, 0, errors.Wrapf(boxerr.ErrConfig, "missing key %s.%s", group, key)
	}
	parts := strings.SplitN(v, ",", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Wrapf(boxerr.ErrConfig, "%s.%s: %q is not a point pair", group, key, v)
	}
	x, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, errors.Wrapf(boxerr.ErrConfig, "%s.%s: bad x component %q", group, key, parts[0])
	}
	y, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, errors.Wrapf(boxerr.ErrConfig, "%s.%s: bad y component %q", group, key, parts[1])
	}
	return x, y, nil
}

// CodecSpec names a codec class and carries its raw property map, read from
// the "Per-codec class" group in spec.md section 6 (group name equals the
// codec class name, e.g. "ReedSolomon").
type CodecSpec struct {
	Class      string
	Properties map[string]string
}

// Version is the dispatcher's configured (major, minor) version, gating the
// legacy CRC-trailer compatibility branch described in spec.md section 4.1.
type Version struct {
	Major, Minor int
}

// Less1_0 reports whether v predates the 1.0 dispatcher, which relies on an
// explicit CRC32 trailer on metadata rather than an explicit CRC codec in
// the chain.
func (v Version) Less1_0() bool { return v.Major < 1 }

// ParseVersion parses an "M.m" version string.
func ParseVersion(s string) (Version, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return Version{}, errors.Wrapf(boxerr.ErrConfig, "version %q is not of the form M.m", s)
	}
	maj, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, errors.Wrapf(boxerr.ErrConfig, "version %q: bad major component", s)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, errors.Wrapf(boxerr.ErrConfig, "version %q: bad minor component", s)
	}
	return Version{Major: maj, Minor: min}, nil
}

// DispatcherConfig holds the CodecDispatcher group's settings, plus the
// ordered codec class list for either the data or metadata coding scheme.
type DispatcherConfig struct {
	Version   Version
	Order     Order
	Alignment SymbolAlignment
	Scheme    []CodecSpec
}

// FrameFormat holds the FrameFormat group's declarative geometry, per
// spec.md section 3 and the "FrameFormat" row of the section 6 table.
type FrameFormat struct {
	Type   string
	Width  int
	Height int

	Border    int
	BorderGap int

	CornerMarkSize int
	CornerMarkGap  int

	TilesPerColumn          int
	ReferenceBarFreqDivider int
	MaxLevelsPerSymbol      int

	AnalogContentSymbolSize  int
	DigitalContentSymbolSize int

	RefBarSyncDistanceH, RefBarSyncDistanceV int
	RefBarSyncOffsetH, RefBarSyncOffsetV     int
}

// MultiFrameFormat holds the MultiFrameFormat group's striping settings.
type MultiFrameFormat struct {
	StripeSize int
}

// Config is the fully resolved configuration driving a boxer/unboxer
// instance: frame geometry, the data and metadata dispatcher configs, and
// striping, plus the logger every component reports through.
type Config struct {
	Frame            FrameFormat
	MultiFrame       MultiFrameFormat
	DataDispatcher   DispatcherConfig
	MetaDispatcher   DispatcherConfig

	Logger   logging.Logger
	LogLevel int8
}

// Resolve parses the raw two-level map into a Config, validating the
// geometry invariants and dispatcher version/order/alignment tokens, but
// without interpreting "auto" tokens in per-codec properties — those are
// handled, where supported, at dispatcher construction time (package
// codec/dispatcher; see AutoToken).
func Resolve(m Map, logger logging.Logger) (*Config, error) {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	c := &Config{Logger: logger}

	var err error
	c.Frame, err = resolveFrameFormat(m)
	if err != nil {
		return nil, err
	}

	c.MultiFrame.StripeSize = m.IntDefault("MultiFrameFormat", "stripeSize", 0)

	c.DataDispatcher, err = resolveDispatcher(m, "DataCodingScheme")
	if err != nil {
		return nil, errors.Wrap(err, "data dispatcher")
	}
	c.MetaDispatcher, err = resolveDispatcher(m, "MetadataCodingScheme")
	if err != nil {
		return nil, errors.Wrap(err, "metadata dispatcher")
	}

	return c, nil
}

func resolveFrameFormat(m Map) (FrameFormat, error) {
	var f FrameFormat
	f.Type = m.GetDefault("FrameFormat", "type", GPFv1_2)

	var err error
	if f.Width, err = m.Int("FrameFormat", "width"); err != nil {
		return f, err
	}
	if f.Height, err = m.Int("FrameFormat", "height"); err != nil {
		return f, err
	}
	f.Border = m.IntDefault("FrameFormat", "border", 0)
	f.BorderGap = m.IntDefault("FrameFormat", "borderGap", 0)
	f.CornerMarkSize = m.IntDefault("FrameFormat", "cornerMarkSize", 0)
	f.CornerMarkGap = m.IntDefault("FrameFormat", "cornerMarkGap", 0)
	f.TilesPerColumn = m.IntDefault("FrameFormat", "tilesPerColumn", 1)
	f.ReferenceBarFreqDivider = m.IntDefault("FrameFormat", "referenceBarFreqDivider", 1)
	f.MaxLevelsPerSymbol = m.IntDefault("FrameFormat", "maxLevelsPerSymbol", 2)
	if f.MaxLevelsPerSymbol != 2 && f.MaxLevelsPerSymbol != 4 && f.MaxLevelsPerSymbol != 6 {
		return f, errors.Wrapf(boxerr.ErrConfig, "maxLevelsPerSymbol %d must be 2, 4 or 6", f.MaxLevelsPerSymbol)
	}
	f.AnalogContentSymbolSize = m.IntDefault("FrameFormat", "analogContentSymbolSize", 8)
	f.DigitalContentSymbolSize = m.IntDefault("FrameFormat", "digitalContentSymbolSize", 1)

	if v, ok := m.Get("FrameFormat", "refBarSyncDistance"); ok {
		x, y, err := parsePoint(v)
		if err != nil {
			return f, errors.Wrap(err, "refBarSyncDistance")
		}
		f.RefBarSyncDistanceH, f.RefBarSyncDistanceV = x, y
	}
	if v, ok := m.Get("FrameFormat", "refBarSyncOffset"); ok {
		x, y, err := parsePoint(v)
		if err != nil {
			return f, errors.Wrap(err, "refBarSyncOffset")
		}
		f.RefBarSyncOffsetH, f.RefBarSyncOffsetV = x, y
	}

	return f, nil
}

func parsePoint(v string) (x, y int, err error) {
	parts := strings.SplitN(v, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%q is not a point pair", v)
	}
	x, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	y, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	return x, y, err
}

func resolveDispatcher(m Map, schemeKey string) (DispatcherConfig, error) {
	var d DispatcherConfig

	verStr := m.GetDefault("CodecDispatcher", "version", "1.0")
	ver, err := ParseVersion(verStr)
	if err != nil {
		return d, err
	}
	d.Version = ver

	switch m.GetDefault("CodecDispatcher", "order", "encode") {
	case "encode":
		d.Order = OrderEncode
	case "decode":
		d.Order = OrderDecode
	default:
		return d, errors.Wrap(boxerr.ErrConfig, "order must be \"encode\" or \"decode\"")
	}

	switch m.GetDefault("CodecDispatcher", "symbolAlignment", "byte") {
	case "bit":
		d.Alignment = AlignBit
	case "byte":
		d.Alignment = AlignByte
	default:
		return d, errors.Wrap(boxerr.ErrConfig, "symbolAlignment must be \"bit\" or \"byte\"")
	}

	schemeStr, ok := m.Get("CodecDispatcher", schemeKey)
	if !ok {
		return d, errors.Wrapf(boxerr.ErrConfig, "missing CodecDispatcher.%s", schemeKey)
	}
	for _, class := range strings.Split(schemeStr, ",") {
		class = strings.TrimSpace(class)
		if class == "" {
			continue
		}
		props, ok := m[class]
		if !ok {
			return d, errors.Wrapf(boxerr.ErrConfig, "no property group for codec class %q", class)
		}
		d.Scheme = append(d.Scheme, CodecSpec{Class: class, Properties: props})
	}
	if len(d.Scheme) == 0 {
		return d, errors.Wrapf(boxerr.ErrConfig, "%s names no codecs", schemeKey)
	}

	return d, nil
}
