// Package gpb encodes and decodes GeoPackage geometry blobs: the GP binary
// header (OGC 12-128r15 §2.1.3) followed by a WKB geometry (OGC 06-103r4).
// Supported WKB types are Point, MultiPoint, LineString and MultiLineString
// in either byte order; Z and M ordinates are accepted and dropped, and the
// PostGIS EWKB dialect flags are understood.
package gpb

import (
	"encoding/binary"
	"math"

	"github.com/paulmach/orb"
)

// Header carries the decoded GeoPackage binary header fields.
type Header struct {
	// SRSID is the spatial reference system identifier the blob declares.
	SRSID int32
	// Empty is the header's empty-geometry flag. When set the blob
	// carries no usable coordinates and DecodeGeometry returns a nil
	// geometry.
	Empty bool
}

// Header flag bits, OGC 12-128r15 table 7.
const (
	flagLittleEndian = 0x01
	flagEnvelopeMask = 0x0e
	flagEmpty        = 0x10
	flagExtended     = 0x20
)

// WKB geometry type codes, OGC 06-103r4 §8.2.3.
const (
	wkbPoint           = 1
	wkbLineString      = 2
	wkbMultiPoint      = 4
	wkbMultiLineString = 5
)

// EWKB dialect flags in the high bits of the type word.
const (
	ewkbZ    = 0x80000000
	ewkbM    = 0x40000000
	ewkbSRID = 0x20000000
)

// DecodeGeometry parses one stored geometry blob. A set Empty header flag
// yields a nil geometry with no error.
func DecodeGeometry(blob []byte) (orb.Geometry, Header, error) {
	if len(blob) < 8 {
		return nil, Header{}, &ErrTruncated{Need: 8 - len(blob), Have: len(blob)}
	}
	if blob[0] != 'G' || blob[1] != 'P' {
		return nil, Header{}, &ErrInvalidHeader{Reason: "missing GP magic"}
	}
	if blob[2] != 0 {
		return nil, Header{}, &ErrInvalidHeader{Reason: "unknown version"}
	}

	flags := blob[3]
	if flags&flagExtended != 0 {
		return nil, Header{}, &ErrInvalidHeader{Reason: "extended binary not supported"}
	}

	var bo binary.ByteOrder = binary.BigEndian
	if flags&flagLittleEndian != 0 {
		bo = binary.LittleEndian
	}

	var envLen int
	switch (flags & flagEnvelopeMask) >> 1 {
	case 0:
		envLen = 0
	case 1:
		envLen = 32
	case 2, 3:
		envLen = 48
	case 4:
		envLen = 64
	default:
		return nil, Header{}, &ErrInvalidHeader{Reason: "invalid envelope indicator"}
	}

	hdr := Header{
		SRSID: int32(bo.Uint32(blob[4:8])),
		Empty: flags&flagEmpty != 0,
	}

	body := 8 + envLen
	if len(blob) < body {
		return nil, hdr, &ErrTruncated{Need: body - len(blob), Have: len(blob)}
	}
	if hdr.Empty {
		return nil, hdr, nil
	}

	r := wkbReader{buf: blob[body:]}
	g, err := r.geometry()
	if err != nil {
		return nil, hdr, err
	}
	return g, hdr, nil
}

type wkbReader struct {
	buf []byte
	off int
	bo  binary.ByteOrder
}

func (r *wkbReader) truncated(need int) error {
	return &ErrTruncated{Need: need - (len(r.buf) - r.off), Have: len(r.buf)}
}

func (r *wkbReader) u8() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, r.truncated(1)
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *wkbReader) u32() (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, r.truncated(4)
	}
	v := r.bo.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *wkbReader) f64() (float64, error) {
	if r.off+8 > len(r.buf) {
		return 0, r.truncated(8)
	}
	v := math.Float64frombits(r.bo.Uint64(r.buf[r.off:]))
	r.off += 8
	return v, nil
}

// geometry reads one complete WKB geometry. Members of a multi geometry
// carry their own byte-order byte, so recursion resets r.bo as it goes.
func (r *wkbReader) geometry() (orb.Geometry, error) {
	order, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch order {
	case 0:
		r.bo = binary.BigEndian
	case 1:
		r.bo = binary.LittleEndian
	default:
		return nil, &ErrInvalidHeader{Reason: "invalid WKB byte order"}
	}

	raw, err := r.u32()
	if err != nil {
		return nil, err
	}

	hasZ := raw&ewkbZ != 0
	hasM := raw&ewkbM != 0
	if raw&ewkbSRID != 0 {
		if _, err := r.u32(); err != nil {
			return nil, err
		}
	}
	code := raw &^ uint32(ewkbZ | ewkbM | ewkbSRID)
	switch {
	case code >= 3000:
		code -= 3000
		hasZ, hasM = true, true
	case code >= 2000:
		code -= 2000
		hasM = true
	case code >= 1000:
		code -= 1000
		hasZ = true
	}
	dims := 2
	if hasZ {
		dims++
	}
	if hasM {
		dims++
	}

	switch code {
	case wkbPoint:
		return r.point(dims)
	case wkbLineString:
		return r.lineString(dims)
	case wkbMultiPoint:
		return r.multiPoint()
	case wkbMultiLineString:
		return r.multiLineString()
	default:
		return nil, &ErrUnsupportedGeometry{Code: raw}
	}
}

func (r *wkbReader) point(dims int) (orb.Point, error) {
	var p orb.Point
	for d := 0; d < dims; d++ {
		v, err := r.f64()
		if err != nil {
			return orb.Point{}, err
		}
		if d < 2 {
			p[d] = v
		}
	}
	return p, nil
}

func (r *wkbReader) lineString(dims int) (orb.LineString, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if need := int(n) * dims * 8; need > len(r.buf)-r.off {
		return nil, r.truncated(need)
	}
	ls := make(orb.LineString, 0, n)
	for i := uint32(0); i < n; i++ {
		p, err := r.point(dims)
		if err != nil {
			return nil, err
		}
		ls = append(ls, p)
	}
	return ls, nil
}

// memberCount reads a collection length and bounds it against the bytes
// left. Each member carries at least an order byte, a type word and one
// payload word, so a count the remaining bytes cannot hold is corrupt.
func (r *wkbReader) memberCount() (uint32, error) {
	n, err := r.u32()
	if err != nil {
		return 0, err
	}
	if need := int(n) * 9; need > len(r.buf)-r.off {
		return 0, r.truncated(need)
	}
	return n, nil
}

func (r *wkbReader) multiPoint() (orb.MultiPoint, error) {
	n, err := r.memberCount()
	if err != nil {
		return nil, err
	}
	mp := make(orb.MultiPoint, 0, n)
	for i := uint32(0); i < n; i++ {
		g, err := r.geometry()
		if err != nil {
			return nil, err
		}
		p, ok := g.(orb.Point)
		if !ok {
			return nil, &ErrMixedCollection{Want: "point"}
		}
		mp = append(mp, p)
	}
	return mp, nil
}

func (r *wkbReader) multiLineString() (orb.MultiLineString, error) {
	n, err := r.memberCount()
	if err != nil {
		return nil, err
	}
	mls := make(orb.MultiLineString, 0, n)
	for i := uint32(0); i < n; i++ {
		g, err := r.geometry()
		if err != nil {
			return nil, err
		}
		ls, ok := g.(orb.LineString)
		if !ok {
			return nil, &ErrMixedCollection{Want: "linestring"}
		}
		mls = append(mls, ls)
	}
	return mls, nil
}
