package gpkg

// Options name the layers and attribute columns a survey GeoPackage uses.
// The defaults match the field workflow this tool grew out of: layers named
// cieki (streams) and punkty (points), with the stream identifier in
// oznaczenie and the point numbers in numer-stary and numer-nowy.
type Options struct {
	// StreamLayer is the feature table holding the watercourses.
	StreamLayer string
	// PointLayer is the feature table holding the survey points.
	PointLayer string
	// StreamIDField is the stream layer column carrying the stream
	// identifier.
	StreamIDField string
	// OldField is the point layer column carrying the pre-existing
	// number.
	OldField string
	// NewField is the point layer column the computed labels are written
	// to.
	NewField string
}

// DefaultOptions returns the historical layer and field names.
func DefaultOptions() Options {
	return Options{
		StreamLayer:   "cieki",
		PointLayer:    "punkty",
		StreamIDField: "oznaczenie",
		OldField:      "numer-stary",
		NewField:      "numer-nowy",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.StreamLayer == "" {
		o.StreamLayer = def.StreamLayer
	}
	if o.PointLayer == "" {
		o.PointLayer = def.PointLayer
	}
	if o.StreamIDField == "" {
		o.StreamIDField = def.StreamIDField
	}
	if o.OldField == "" {
		o.OldField = def.OldField
	}
	if o.NewField == "" {
		o.NewField = def.NewField
	}
	return o
}
