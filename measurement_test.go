package pptdom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionHelpers(t *testing.T) {
	assert.Equal(t, int64(914400), Inch(1))
	assert.Equal(t, int64(12700), Point(1))
	assert.Equal(t, int64(360000), Centimeter(1))
	assert.Equal(t, 1.0, EMUToInch(914400))
	assert.Equal(t, 1.0, EMUToPoint(12700))
	assert.Equal(t, int64(maxEMU), Inch(math.MaxFloat64))
	assert.Equal(t, int64(-maxEMU), Inch(-math.MaxFloat64))
}

func TestUnitConverterPixels(t *testing.T) {
	c, err := NewUnitConverter(96, 96)
	require.NoError(t, err)

	assert.Equal(t, 1.0, c.ToPixelsX(9525))
	assert.InDelta(t, 0.5, c.ToPixelsY(4762), 0.001)
	assert.Equal(t, int64(9525), c.ToEmuX(1))
	assert.Equal(t, int64(4763), c.ToEmuX(0.5))

	// integer reads truncate toward zero
	assert.Equal(t, int64(0), c.ToPixelsXInt(9524))
	assert.Equal(t, int64(0), c.ToPixelsXInt(-9524))
	assert.Equal(t, int64(1), c.ToPixelsYInt(19049))
	assert.Equal(t, int64(-1), c.ToPixelsYInt(-19049))
}

func TestUnitConverterRoundTrip(t *testing.T) {
	// each divides 914400 exactly
	for _, res := range []float64{72, 96, 120, 144, 150, 300, 600} {
		c, err := NewUnitConverter(res, res)
		require.NoError(t, err)
		for p := int64(-1000); p <= 1000; p++ {
			require.Equal(t, p, c.ToPixelsXInt(c.ToEmuX(float64(p))), "res %v px %d", res, p)
			require.Equal(t, p, c.ToPixelsYInt(c.ToEmuY(float64(p))), "res %v px %d", res, p)
		}
	}
}

func TestUnitConverterOddResolution(t *testing.T) {
	c, err := NewUnitConverter(97, 71.5)
	require.NoError(t, err)
	for _, emu := range []int64{0, 1, 9525, 123456, 914400, 6858000, -5000} {
		assert.InDelta(t, emu, c.ToEmuX(c.ToPixelsX(emu)), 1)
		assert.InDelta(t, emu, c.ToEmuY(c.ToPixelsY(emu)), 1)
	}
	assert.NotPanics(t, func() {
		c.ToPixelsXInt(math.MaxInt64)
		c.ToPixelsYInt(math.MinInt64)
	})
}

func TestUnitConverterNonSquare(t *testing.T) {
	c, err := NewUnitConverter(96, 192)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.ToPixelsX(9525))
	assert.Equal(t, 2.0, c.ToPixelsY(9525))
	x, y := c.Resolution()
	assert.Equal(t, 96.0, x)
	assert.Equal(t, 192.0, y)
}

func TestUnitConverterInvalidResolution(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewUnitConverter(r, 96)
		assert.ErrorIs(t, err, ErrInvalidResolution)
		_, err = NewUnitConverter(96, r)
		assert.ErrorIs(t, err, ErrInvalidResolution)
	}

	c, err := NewUnitConverter(96, 96)
	require.NoError(t, err)
	assert.ErrorIs(t, c.SetResolution(144, 0), ErrInvalidResolution)
	x, y := c.Resolution()
	assert.Equal(t, 96.0, x)
	assert.Equal(t, 96.0, y)
}
