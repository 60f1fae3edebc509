// Package gpkg backs a numbering run with a GeoPackage, the SQLite-based
// OGC format QGIS projects use natively (OGC 12-128r15). The survey layers
// are plain feature tables; geometries are decoded from GeoPackage binary
// blobs and labels are written back in a single transaction.
package gpkg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	_ "modernc.org/sqlite"

	"github.com/beetlebugorg/streamnum/internal/gpb"
	"github.com/beetlebugorg/streamnum/pkg/streamnum"
)

// Store reads survey layers from one GeoPackage and writes labels back. It
// implements streamnum.Store.
type Store struct {
	db   *sql.DB
	path string
	opts Options

	streamPK   string
	streamGeom string
	pointPK    string
	pointGeom  string
}

var _ streamnum.Store = (*Store)(nil)

// Open opens and validates a survey GeoPackage: the file must carry the
// GeoPackage core tables, both configured layers must be registered feature
// tables, and the configured attribute columns must exist. Blank Options
// fields fall back to DefaultOptions.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	// The driver would create a fresh database for a mistyped path.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening geopackage: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening geopackage %s: %w", path, err)
	}

	s := &Store{db: db, path: path, opts: opts.withDefaults()}
	if err := s.validate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) validate(ctx context.Context) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'gpkg_contents'`,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", s.path, err)
	}
	if n == 0 {
		return &ErrNotGeoPackage{Path: s.path}
	}

	s.streamGeom, s.streamPK, err = s.layerColumns(ctx, s.opts.StreamLayer, s.opts.StreamIDField)
	if err != nil {
		return err
	}
	s.pointGeom, s.pointPK, err = s.layerColumns(ctx, s.opts.PointLayer, s.opts.OldField, s.opts.NewField)
	return err
}

// layerColumns resolves a feature table's geometry column and integer
// primary key, and checks that the required attribute columns exist.
func (s *Store) layerColumns(ctx context.Context, layer string, required ...string) (geom, pk string, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT column_name FROM gpkg_geometry_columns WHERE table_name = ?`, layer,
	).Scan(&geom)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", &ErrLayerNotFound{Layer: layer}
	}
	if err != nil {
		return "", "", fmt.Errorf("inspecting layer %q: %w", layer, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, pk FROM pragma_table_info(?)`, layer)
	if err != nil {
		return "", "", fmt.Errorf("inspecting layer %q: %w", layer, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		var pkOrd int
		if err := rows.Scan(&name, &pkOrd); err != nil {
			return "", "", fmt.Errorf("inspecting layer %q: %w", layer, err)
		}
		cols[name] = true
		if pkOrd == 1 {
			pk = name
		}
	}
	if err := rows.Err(); err != nil {
		return "", "", fmt.Errorf("inspecting layer %q: %w", layer, err)
	}
	if pk == "" {
		return "", "", fmt.Errorf("layer %q has no integer primary key", layer)
	}
	for _, field := range required {
		if !cols[field] {
			return "", "", &ErrFieldNotFound{Layer: layer, Field: field}
		}
	}
	return geom, pk, nil
}

// StreamSegments reads the stream layer. Multi-part geometries yield one
// segment per part, so the parts chain like separately stored fragments.
func (s *Store) StreamSegments(ctx context.Context) ([]streamnum.Segment, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s ORDER BY %s`,
		quoteIdent(s.streamPK), quoteIdent(s.streamGeom),
		quoteIdent(s.opts.StreamIDField), quoteIdent(s.opts.StreamLayer),
		quoteIdent(s.streamPK))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading layer %q: %w", s.opts.StreamLayer, err)
	}
	defer rows.Close()

	var segments []streamnum.Segment
	for rows.Next() {
		var fid int64
		var blob []byte
		var mark sql.NullString
		if err := rows.Scan(&fid, &blob, &mark); err != nil {
			return nil, fmt.Errorf("reading layer %q: %w", s.opts.StreamLayer, err)
		}

		seg := streamnum.Segment{ID: fid, StreamID: mark.String}
		if blob == nil {
			segments = append(segments, seg)
			continue
		}

		g, hdr, err := gpb.DecodeGeometry(blob)
		if err != nil {
			return nil, fmt.Errorf("layer %q feature %d: %w", s.opts.StreamLayer, fid, err)
		}
		if hdr.Empty || g == nil {
			segments = append(segments, seg)
			continue
		}

		switch geom := g.(type) {
		case orb.LineString:
			seg.Line = geom
			segments = append(segments, seg)
		case orb.MultiLineString:
			if len(geom) == 0 {
				segments = append(segments, seg)
				continue
			}
			for _, part := range geom {
				segments = append(segments, streamnum.Segment{
					ID:       fid,
					StreamID: seg.StreamID,
					Line:     part,
				})
			}
		default:
			return nil, &ErrGeometryType{
				Layer:     s.opts.StreamLayer,
				FeatureID: fid,
				Got:       g.GeoJSONType(),
				Want:      "LineString",
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading layer %q: %w", s.opts.StreamLayer, err)
	}
	return segments, nil
}

// SurveyPoints reads the point layer. Features with a null or empty stored
// geometry come back flagged Empty so the run clears their stale labels.
func (s *Store) SurveyPoints(ctx context.Context) ([]streamnum.Point, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s ORDER BY %s`,
		quoteIdent(s.pointPK), quoteIdent(s.pointGeom),
		quoteIdent(s.opts.OldField), quoteIdent(s.opts.PointLayer),
		quoteIdent(s.pointPK))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading layer %q: %w", s.opts.PointLayer, err)
	}
	defer rows.Close()

	var points []streamnum.Point
	for rows.Next() {
		var fid int64
		var blob []byte
		var old sql.NullString
		if err := rows.Scan(&fid, &blob, &old); err != nil {
			return nil, fmt.Errorf("reading layer %q: %w", s.opts.PointLayer, err)
		}

		p := streamnum.Point{ID: fid, OldLabel: old.String}
		if blob == nil {
			p.Empty = true
			points = append(points, p)
			continue
		}

		g, hdr, err := gpb.DecodeGeometry(blob)
		if err != nil {
			return nil, fmt.Errorf("layer %q feature %d: %w", s.opts.PointLayer, fid, err)
		}
		switch geom := g.(type) {
		case nil:
			p.Empty = true
		case orb.Point:
			// An empty WKB point is all-NaN ordinates.
			if hdr.Empty || math.IsNaN(geom[0]) || math.IsNaN(geom[1]) {
				p.Empty = true
			} else {
				p.Geom = geom
			}
		default:
			return nil, &ErrGeometryType{
				Layer:     s.opts.PointLayer,
				FeatureID: fid,
				Got:       g.GeoJSONType(),
				Want:      "Point",
			}
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading layer %q: %w", s.opts.PointLayer, err)
	}
	return points, nil
}

// WriteLabels stores the labels in one transaction. The empty label is
// written as NULL, the way the attribute table marks unnumbered points.
func (s *Store) WriteLabels(ctx context.Context, labels map[int64]string) error {
	fids := make([]int64, 0, len(labels))
	for fid := range labels {
		fids = append(fids, fid)
	}
	sort.Slice(fids, func(i, j int) bool { return fids[i] < fids[j] })

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("writing labels: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s = ?`,
		quoteIdent(s.opts.PointLayer), quoteIdent(s.opts.NewField), quoteIdent(s.pointPK)))
	if err != nil {
		return fmt.Errorf("writing labels: %w", err)
	}
	defer stmt.Close()

	for _, fid := range fids {
		var value any
		if label := labels[fid]; label != "" {
			value = label
		}
		if _, err := stmt.ExecContext(ctx, value, fid); err != nil {
			return fmt.Errorf("writing label for feature %d: %w", fid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("writing labels: %w", err)
	}
	return nil
}

// LayerInfo describes one feature table of the package.
type LayerInfo struct {
	Name         string
	GeometryType string
	SRSID        int32
	Features     int
}

// Layers lists a package's feature tables without requiring the survey
// layers to be present, so the right names can be discovered before a run.
func Layers(ctx context.Context, path string) ([]LayerInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening geopackage: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening geopackage %s: %w", path, err)
	}
	defer db.Close()

	var n int
	err = db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'gpkg_contents'`,
	).Scan(&n)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", path, err)
	}
	if n == 0 {
		return nil, &ErrNotGeoPackage{Path: path}
	}

	rows, err := db.QueryContext(ctx, `
		SELECT c.table_name, g.geometry_type_name, g.srs_id
		FROM gpkg_contents c
		JOIN gpkg_geometry_columns g ON g.table_name = c.table_name
		WHERE c.data_type = 'features'
		ORDER BY c.table_name`)
	if err != nil {
		return nil, fmt.Errorf("listing layers: %w", err)
	}
	defer rows.Close()

	var layers []LayerInfo
	for rows.Next() {
		var info LayerInfo
		if err := rows.Scan(&info.Name, &info.GeometryType, &info.SRSID); err != nil {
			return nil, fmt.Errorf("listing layers: %w", err)
		}
		layers = append(layers, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing layers: %w", err)
	}

	for i := range layers {
		count := fmt.Sprintf(`SELECT count(*) FROM %s`, quoteIdent(layers[i].Name))
		if err := db.QueryRowContext(ctx, count).Scan(&layers[i].Features); err != nil {
			return nil, fmt.Errorf("counting layer %q: %w", layers[i].Name, err)
		}
	}
	return layers, nil
}

// quoteIdent makes a layer or column name safe to splice into SQL. Names
// come from configuration, not from a trusted schema.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
