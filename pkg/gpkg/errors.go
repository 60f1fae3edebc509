package gpkg

import "fmt"

// ErrNotGeoPackage indicates an SQLite file without the GeoPackage core
// tables.
type ErrNotGeoPackage struct {
	Path string
}

func (e *ErrNotGeoPackage) Error() string {
	return fmt.Sprintf("%s is not a GeoPackage: missing gpkg_contents", e.Path)
}

// ErrLayerNotFound indicates a feature table absent from the package.
type ErrLayerNotFound struct {
	Layer string
}

func (e *ErrLayerNotFound) Error() string {
	return fmt.Sprintf("layer %q is not a feature table in this GeoPackage", e.Layer)
}

// ErrFieldNotFound indicates a configured attribute column absent from its
// layer.
type ErrFieldNotFound struct {
	Layer string
	Field string
}

func (e *ErrFieldNotFound) Error() string {
	return fmt.Sprintf("layer %q has no field %q", e.Layer, e.Field)
}

// ErrGeometryType indicates a stored geometry of a type the layer is not
// supposed to contain.
type ErrGeometryType struct {
	Layer     string
	FeatureID int64
	Got       string
	Want      string
}

func (e *ErrGeometryType) Error() string {
	return fmt.Sprintf("layer %q feature %d: geometry is %s, want %s",
		e.Layer, e.FeatureID, e.Got, e.Want)
}
