package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/beetlebugorg/streamnum/pkg/gpkg"
	"github.com/beetlebugorg/streamnum/pkg/streamnum"
)

const defaultConfigPath = "streamnum.toml"

// fileConfig mirrors the TOML configuration file. Every field is optional;
// zero values fall back to the built-in defaults.
type fileConfig struct {
	Tolerance float64 `toml:"tolerance"`
	Direction string  `toml:"direction"`
	OldLabels string  `toml:"old-labels"`

	Layers struct {
		Streams string `toml:"streams"`
		Points  string `toml:"points"`
	} `toml:"layers"`

	Fields struct {
		StreamID  string `toml:"stream-id"`
		OldNumber string `toml:"old-number"`
		NewNumber string `toml:"new-number"`
	} `toml:"fields"`
}

// loadFileConfig reads the configuration file at path. When path is empty the
// default streamnum.toml is tried and its absence is not an error; a path the
// user named explicitly must exist.
func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func (c fileConfig) storeOptions() gpkg.Options {
	opts := gpkg.DefaultOptions()
	if c.Layers.Streams != "" {
		opts.StreamLayer = c.Layers.Streams
	}
	if c.Layers.Points != "" {
		opts.PointLayer = c.Layers.Points
	}
	if c.Fields.StreamID != "" {
		opts.StreamIDField = c.Fields.StreamID
	}
	if c.Fields.OldNumber != "" {
		opts.OldField = c.Fields.OldNumber
	}
	if c.Fields.NewNumber != "" {
		opts.NewField = c.Fields.NewNumber
	}
	return opts
}

func (c fileConfig) runConfig() (streamnum.Config, error) {
	cfg := streamnum.DefaultConfig()
	if c.Tolerance != 0 {
		cfg.Tolerance = c.Tolerance
	}
	if c.Direction != "" {
		d, err := streamnum.ParseDirectionPolicy(c.Direction)
		if err != nil {
			return cfg, err
		}
		cfg.Direction = d
	}
	if c.OldLabels != "" {
		p, err := streamnum.ParseLabelPolicy(c.OldLabels)
		if err != nil {
			return cfg, err
		}
		cfg.OldLabels = p
	}
	return cfg, nil
}
