package classifier

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keithclinton/Counter-Front/internal/conf"
	"github.com/Keithclinton/Counter-Front/internal/errors"
)

func TestNewMissingModelFile(t *testing.T) {
	settings := &conf.Settings{}
	settings.Model.Path = filepath.Join(t.TempDir(), "nope.tflite")
	settings.Model.LatentDim = 256

	c, err := New(settings)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Equal(t, errors.CategoryModelLoad, errors.CategoryOf(err))
}

func TestPredictWithoutModel(t *testing.T) {
	var c *Classifier
	assert.False(t, c.Loaded())

	c = &Classifier{Settings: &conf.Settings{}}
	assert.False(t, c.Loaded())

	_, err := c.Predict(context.Background(), make([]float32, 10))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryModelInit, errors.CategoryOf(err))
}

func TestNoiseVector(t *testing.T) {
	t.Parallel()

	const dim = 256
	const sigma = 0.0003

	vec := noiseVector(dim, sigma)
	require.Len(t, vec, dim)

	// With sigma this small every sample should sit well inside +-10 sigma
	for _, v := range vec {
		require.False(t, math.IsNaN(float64(v)))
		require.Less(t, math.Abs(float64(v)), sigma*10)
	}

	// Two draws differ, the noise is sampled per call
	assert.NotEqual(t, vec, noiseVector(dim, sigma))
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, clampScore(-0.5))
	assert.Equal(t, 1.0, clampScore(1.5))
	assert.Equal(t, 0.42, clampScore(0.42))
	assert.Equal(t, 0.0, clampScore(0.0))
	assert.Equal(t, 1.0, clampScore(1.0))
}

func TestDetermineThreadCount(t *testing.T) {
	t.Parallel()

	c := &Classifier{Settings: &conf.Settings{}}
	assert.Equal(t, 4, c.determineThreadCount(4))
	assert.Positive(t, c.determineThreadCount(0))
}
