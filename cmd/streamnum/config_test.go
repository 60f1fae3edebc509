package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/streamnum/pkg/streamnum"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streamnum.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
tolerance = 0.5
direction = "keep"
old-labels = "abort"

[layers]
streams = "rzeki"
points = "pomiary"

[fields]
stream-id = "nazwa"
old-number = "nr"
new-number = "nr-nowy"
`)

	cfg, err := loadFileConfig(path)
	require.NoError(t, err)

	opts := cfg.storeOptions()
	assert.Equal(t, "rzeki", opts.StreamLayer)
	assert.Equal(t, "pomiary", opts.PointLayer)
	assert.Equal(t, "nazwa", opts.StreamIDField)
	assert.Equal(t, "nr", opts.OldField)
	assert.Equal(t, "nr-nowy", opts.NewField)

	run, err := cfg.runConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.5, run.Tolerance)
	assert.Equal(t, streamnum.DirectionKeep, run.Direction)
	assert.Equal(t, streamnum.LabelAbort, run.OldLabels)
}

func TestLoadFileConfigPartial(t *testing.T) {
	path := writeConfig(t, `
[layers]
streams = "rzeki"
`)

	cfg, err := loadFileConfig(path)
	require.NoError(t, err)

	opts := cfg.storeOptions()
	assert.Equal(t, "rzeki", opts.StreamLayer)
	assert.Equal(t, "punkty", opts.PointLayer)
	assert.Equal(t, "numer-nowy", opts.NewField)

	run, err := cfg.runConfig()
	require.NoError(t, err)
	assert.Equal(t, streamnum.DefaultTolerance, run.Tolerance)
	assert.Equal(t, streamnum.DirectionAuto, run.Direction)
}

func TestLoadFileConfigMissing(t *testing.T) {
	t.Run("default path may be absent", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg, err := loadFileConfig("")
		require.NoError(t, err)
		assert.Equal(t, fileConfig{}, cfg)
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := loadFileConfig(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}

func TestLoadFileConfigRejectsBadValues(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		_, err := loadFileConfig(writeConfig(t, "tolerance = ["))
		assert.Error(t, err)
	})

	t.Run("unknown direction", func(t *testing.T) {
		cfg, err := loadFileConfig(writeConfig(t, `direction = "upstream"`))
		require.NoError(t, err)
		_, err = cfg.runConfig()
		assert.Error(t, err)
	})

	t.Run("unknown label policy", func(t *testing.T) {
		cfg, err := loadFileConfig(writeConfig(t, `old-labels = "ignore"`))
		require.NoError(t, err)
		_, err = cfg.runConfig()
		assert.Error(t, err)
	})
}
