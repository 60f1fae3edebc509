package streamnum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectionPolicy(t *testing.T) {
	for _, want := range []DirectionPolicy{DirectionAuto, DirectionKeep, DirectionReverse} {
		got, err := ParseDirectionPolicy(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseDirectionPolicy("upstream")
	assert.Error(t, err)
}

func TestParseLabelPolicy(t *testing.T) {
	for _, want := range []LabelPolicy{LabelSkipStream, LabelTreatAsNew, LabelAbort} {
		got, err := ParseLabelPolicy(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLabelPolicy("ignore")
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, DefaultTolerance, cfg.Tolerance)
	assert.Equal(t, DirectionAuto, cfg.Direction)
	assert.Equal(t, LabelSkipStream, cfg.OldLabels)
	assert.NotNil(t, cfg.Logger)
}

func TestConfigRejectsUnknownPolicies(t *testing.T) {
	_, err := toInternalConfig(Config{Tolerance: 1, Direction: DirectionPolicy(42)})
	assert.Error(t, err)

	_, err = toInternalConfig(Config{Tolerance: 1, OldLabels: LabelPolicy(42)})
	assert.Error(t, err)
}
