package gpb

import "fmt"

// ErrInvalidHeader indicates a blob that does not start with a well-formed
// GeoPackage binary header.
type ErrInvalidHeader struct {
	Reason string
}

func (e *ErrInvalidHeader) Error() string {
	return fmt.Sprintf("invalid GeoPackage binary header: %s", e.Reason)
}

// ErrTruncated indicates a blob that ends before the structure it announces.
type ErrTruncated struct {
	Need int
	Have int
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("truncated geometry blob: need %d more bytes, have %d", e.Need, e.Have)
}

// ErrUnsupportedGeometry indicates a WKB geometry type code outside the set
// the survey layers use.
type ErrUnsupportedGeometry struct {
	Code uint32
}

func (e *ErrUnsupportedGeometry) Error() string {
	return fmt.Sprintf("unsupported WKB geometry type %d", e.Code)
}

// ErrMixedCollection indicates a multi geometry with a member of the wrong
// element type.
type ErrMixedCollection struct {
	Want string
}

func (e *ErrMixedCollection) Error() string {
	return fmt.Sprintf("multi geometry contains a member that is not a %s", e.Want)
}
