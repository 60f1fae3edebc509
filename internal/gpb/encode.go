package gpb

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Encode renders a geometry as a standard GeoPackage blob: little-endian
// header without an envelope, followed by little-endian WKB.
func Encode(g orb.Geometry, srsID int32) ([]byte, error) {
	buf := header(srsID, flagLittleEndian)
	return appendWKB(buf, g)
}

// EncodeEmpty renders a blob whose header declares an empty geometry.
func EncodeEmpty(srsID int32) []byte {
	return header(srsID, flagLittleEndian|flagEmpty)
}

func header(srsID int32, flags byte) []byte {
	buf := make([]byte, 8, 64)
	buf[0], buf[1] = 'G', 'P'
	buf[3] = flags
	binary.LittleEndian.PutUint32(buf[4:8], uint32(srsID))
	return buf
}

func appendWKB(buf []byte, g orb.Geometry) ([]byte, error) {
	switch g := g.(type) {
	case orb.Point:
		buf = appendTypeLE(buf, wkbPoint)
		buf = appendCoord(buf, g)
	case orb.LineString:
		buf = appendTypeLE(buf, wkbLineString)
		buf = appendU32(buf, uint32(len(g)))
		for _, p := range g {
			buf = appendCoord(buf, p)
		}
	case orb.MultiPoint:
		buf = appendTypeLE(buf, wkbMultiPoint)
		buf = appendU32(buf, uint32(len(g)))
		for _, p := range g {
			buf, _ = appendWKB(buf, p)
		}
	case orb.MultiLineString:
		buf = appendTypeLE(buf, wkbMultiLineString)
		buf = appendU32(buf, uint32(len(g)))
		for _, ls := range g {
			buf, _ = appendWKB(buf, ls)
		}
	default:
		return nil, fmt.Errorf("gpb: cannot encode %T", g)
	}
	return buf, nil
}

func appendTypeLE(buf []byte, code uint32) []byte {
	buf = append(buf, 1)
	return appendU32(buf, code)
}

func appendU32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func appendCoord(buf []byte, p orb.Point) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p[0]))
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(p[1]))
}
