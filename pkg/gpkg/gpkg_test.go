package gpkg

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/streamnum/internal/gpb"
	"github.com/beetlebugorg/streamnum/pkg/streamnum"
)

// createSurveyPackage lays down a minimal GeoPackage with the default layer
// schema and returns its path plus an open handle for inserting fixtures.
func createSurveyPackage(t *testing.T) (string, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.gpkg")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ddl := []string{
		`CREATE TABLE gpkg_spatial_ref_sys (
			srs_name TEXT NOT NULL, srs_id INTEGER PRIMARY KEY,
			organization TEXT NOT NULL, organization_coordsys_id INTEGER NOT NULL,
			definition TEXT NOT NULL, description TEXT)`,
		`INSERT INTO gpkg_spatial_ref_sys
			VALUES ('ETRS89 / Poland CS92', 2180, 'EPSG', 2180, 'undefined', NULL)`,
		`CREATE TABLE gpkg_contents (
			table_name TEXT PRIMARY KEY, data_type TEXT NOT NULL,
			identifier TEXT UNIQUE, description TEXT DEFAULT '',
			last_change DATETIME, min_x DOUBLE, min_y DOUBLE,
			max_x DOUBLE, max_y DOUBLE, srs_id INTEGER)`,
		`CREATE TABLE gpkg_geometry_columns (
			table_name TEXT PRIMARY KEY, column_name TEXT NOT NULL,
			geometry_type_name TEXT NOT NULL, srs_id INTEGER NOT NULL,
			z TINYINT NOT NULL, m TINYINT NOT NULL)`,
		`CREATE TABLE cieki (
			fid INTEGER PRIMARY KEY AUTOINCREMENT, geom BLOB, "oznaczenie" TEXT)`,
		`CREATE TABLE punkty (
			fid INTEGER PRIMARY KEY AUTOINCREMENT, geom BLOB,
			"numer-stary" TEXT, "numer-nowy" TEXT)`,
		`INSERT INTO gpkg_contents (table_name, data_type, identifier, srs_id)
			VALUES ('cieki', 'features', 'cieki', 2180),
			       ('punkty', 'features', 'punkty', 2180)`,
		`INSERT INTO gpkg_geometry_columns
			VALUES ('cieki', 'geom', 'MULTILINESTRING', 2180, 0, 0),
			       ('punkty', 'geom', 'POINT', 2180, 0, 0)`,
	}
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "ddl: %s", stmt)
	}
	return path, db
}

func insertStream(t *testing.T, db *sql.DB, mark any, g orb.Geometry) int64 {
	t.Helper()
	var blob any
	if g != nil {
		b, err := gpb.Encode(g, 2180)
		require.NoError(t, err)
		blob = b
	}
	res, err := db.Exec(`INSERT INTO cieki (geom, "oznaczenie") VALUES (?, ?)`, blob, mark)
	require.NoError(t, err)
	fid, err := res.LastInsertId()
	require.NoError(t, err)
	return fid
}

func insertPoint(t *testing.T, db *sql.DB, old any, blob any) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO punkty (geom, "numer-stary") VALUES (?, ?)`, blob, old)
	require.NoError(t, err)
	fid, err := res.LastInsertId()
	require.NoError(t, err)
	return fid
}

func pointBlob(t *testing.T, x, y float64) []byte {
	t.Helper()
	b, err := gpb.Encode(orb.Point{x, y}, 2180)
	require.NoError(t, err)
	return b
}

func TestOpenValidates(t *testing.T) {
	ctx := context.Background()

	t.Run("valid package", func(t *testing.T) {
		path, _ := createSurveyPackage(t)
		store, err := Open(ctx, path, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, path, store.Path())
		require.NoError(t, store.Close())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(ctx, filepath.Join(t.TempDir(), "absent.gpkg"), DefaultOptions())
		require.Error(t, err)
	})

	t.Run("plain sqlite file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plain.db")
		db, err := sql.Open("sqlite", path)
		require.NoError(t, err)
		_, err = db.Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY)`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		_, err = Open(ctx, path, DefaultOptions())
		var notGpkg *ErrNotGeoPackage
		require.ErrorAs(t, err, &notGpkg)
	})

	t.Run("missing layer", func(t *testing.T) {
		path, _ := createSurveyPackage(t)
		opts := DefaultOptions()
		opts.StreamLayer = "rzeki"

		_, err := Open(ctx, path, opts)
		var notFound *ErrLayerNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "rzeki", notFound.Layer)
	})

	t.Run("missing field", func(t *testing.T) {
		path, _ := createSurveyPackage(t)
		opts := DefaultOptions()
		opts.OldField = "numer-poprzedni"

		_, err := Open(ctx, path, opts)
		var notFound *ErrFieldNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "punkty", notFound.Layer)
		assert.Equal(t, "numer-poprzedni", notFound.Field)
	})
}

func TestStreamSegments(t *testing.T) {
	ctx := context.Background()
	path, db := createSurveyPackage(t)

	single := insertStream(t, db, "W-1", orb.LineString{{0, 0}, {10, 0}})
	multi := insertStream(t, db, "W-2", orb.MultiLineString{
		{{0, 5}, {5, 5}},
		{{5, 5}, {10, 5}},
	})
	unmarked := insertStream(t, db, nil, orb.LineString{{0, 9}, {1, 9}})
	noGeom := insertStream(t, db, "W-3", nil)

	store, err := Open(ctx, path, DefaultOptions())
	require.NoError(t, err)
	defer store.Close()

	segments, err := store.StreamSegments(ctx)
	require.NoError(t, err)
	require.Len(t, segments, 5, "multi-part features split into one segment per part")

	byID := make(map[int64][]streamnum.Segment)
	for _, seg := range segments {
		byID[seg.ID] = append(byID[seg.ID], seg)
	}

	require.Len(t, byID[single], 1)
	assert.Equal(t, "W-1", byID[single][0].StreamID)
	assert.Len(t, byID[single][0].Line, 2)

	require.Len(t, byID[multi], 2)
	assert.Equal(t, orb.Point{0, 5}, byID[multi][0].Line[0])
	assert.Equal(t, orb.Point{5, 5}, byID[multi][1].Line[0])

	assert.Equal(t, "", byID[unmarked][0].StreamID)
	assert.Empty(t, byID[noGeom][0].Line)
}

func TestSurveyPoints(t *testing.T) {
	ctx := context.Background()
	path, db := createSurveyPackage(t)

	withOld := insertPoint(t, db, "5P", pointBlob(t, 3, 0))
	numericOld := insertPoint(t, db, 7, pointBlob(t, 5, 0))
	fresh := insertPoint(t, db, nil, pointBlob(t, 7, 0))
	nullGeom := insertPoint(t, db, nil, nil)
	emptyGeom := insertPoint(t, db, nil, gpb.EncodeEmpty(2180))

	store, err := Open(ctx, path, DefaultOptions())
	require.NoError(t, err)
	defer store.Close()

	points, err := store.SurveyPoints(ctx)
	require.NoError(t, err)
	require.Len(t, points, 5)

	byID := make(map[int64]streamnum.Point)
	for _, p := range points {
		byID[p.ID] = p
	}

	assert.Equal(t, "5P", byID[withOld].OldLabel)
	assert.Equal(t, orb.Point{3, 0}, byID[withOld].Geom)
	assert.Equal(t, "7", byID[numericOld].OldLabel, "integer attribute scans as its decimal text")
	assert.Equal(t, "", byID[fresh].OldLabel)
	assert.True(t, byID[nullGeom].Empty)
	assert.True(t, byID[emptyGeom].Empty)
}

func TestWriteLabels(t *testing.T) {
	ctx := context.Background()
	path, db := createSurveyPackage(t)

	labeled := insertPoint(t, db, nil, pointBlob(t, 1, 0))
	cleared := insertPoint(t, db, nil, pointBlob(t, 2, 0))
	_, err := db.Exec(`UPDATE punkty SET "numer-nowy" = 'STALE' WHERE fid = ?`, cleared)
	require.NoError(t, err)

	store, err := Open(ctx, path, DefaultOptions())
	require.NoError(t, err)
	defer store.Close()

	err = store.WriteLabels(ctx, map[int64]string{
		labeled: "3P",
		cleared: "",
	})
	require.NoError(t, err)

	var got sql.NullString
	require.NoError(t, db.QueryRow(`SELECT "numer-nowy" FROM punkty WHERE fid = ?`, labeled).Scan(&got))
	assert.Equal(t, sql.NullString{String: "3P", Valid: true}, got)

	require.NoError(t, db.QueryRow(`SELECT "numer-nowy" FROM punkty WHERE fid = ?`, cleared).Scan(&got))
	assert.False(t, got.Valid, "the empty label must clear the stale value to NULL")
}

func TestLayers(t *testing.T) {
	ctx := context.Background()
	path, db := createSurveyPackage(t)
	insertStream(t, db, "W-1", orb.LineString{{0, 0}, {1, 0}})
	insertPoint(t, db, nil, pointBlob(t, 0, 0))
	insertPoint(t, db, nil, pointBlob(t, 1, 0))

	layers, err := Layers(ctx, path)
	require.NoError(t, err)
	require.Len(t, layers, 2)

	assert.Equal(t, LayerInfo{Name: "cieki", GeometryType: "MULTILINESTRING", SRSID: 2180, Features: 1}, layers[0])
	assert.Equal(t, LayerInfo{Name: "punkty", GeometryType: "POINT", SRSID: 2180, Features: 2}, layers[1])

	_, err = Layers(ctx, filepath.Join(t.TempDir(), "absent.gpkg"))
	require.Error(t, err)
}

func TestRunAgainstGeoPackage(t *testing.T) {
	ctx := context.Background()
	path, db := createSurveyPackage(t)

	insertStream(t, db, "W-1", orb.LineString{{0, 0}, {10, 0}})
	insertStream(t, db, "W-2", orb.LineString{{0, 5}, {5, 5}})
	insertStream(t, db, "W-2", orb.LineString{{5, 5}, {10, 5}})

	p1 := insertPoint(t, db, nil, pointBlob(t, 1, 0))
	p2 := insertPoint(t, db, "5P", pointBlob(t, 3, 0))
	p3 := insertPoint(t, db, nil, pointBlob(t, 5, 0))
	p4 := insertPoint(t, db, 6, pointBlob(t, 7, 0))
	p5 := insertPoint(t, db, nil, pointBlob(t, 9, 0))
	p6 := insertPoint(t, db, nil, pointBlob(t, 4, 5))
	p7 := insertPoint(t, db, nil, pointBlob(t, 8, 5))
	orphan := insertPoint(t, db, nil, pointBlob(t, 50, 50))
	ghost := insertPoint(t, db, nil, nil)
	_, err := db.Exec(`UPDATE punkty SET "numer-nowy" = 'STALE' WHERE fid = ?`, orphan)
	require.NoError(t, err)

	store, err := Open(ctx, path, DefaultOptions())
	require.NoError(t, err)
	defer store.Close()

	cfg := streamnum.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	report, err := streamnum.RunStore(ctx, store, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Stats.StreamsMerged)
	assert.Equal(t, 7, report.Stats.PointsLabeled)

	want := map[int64]sql.NullString{
		p1:     {String: "1Pnowy", Valid: true},
		p2:     {String: "5P", Valid: true},
		p3:     {String: "5Pa", Valid: true},
		p4:     {String: "6P", Valid: true},
		p5:     {String: "7P", Valid: true},
		p6:     {String: "1P", Valid: true},
		p7:     {String: "2P", Valid: true},
		orphan: {},
		ghost:  {},
	}

	rows, err := db.Query(`SELECT fid, "numer-nowy" FROM punkty`)
	require.NoError(t, err)
	defer rows.Close()

	got := make(map[int64]sql.NullString)
	for rows.Next() {
		var fid int64
		var label sql.NullString
		require.NoError(t, rows.Scan(&fid, &label))
		got[fid] = label
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, want, got)
}
