package lrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFixed_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "1.5", FormatFixed(1.45, 1))
	assert.Equal(t, "-1.5", FormatFixed(-1.45, 1))
	assert.Equal(t, "3", FormatFixed(2.5, 0))
	assert.Equal(t, "-3", FormatFixed(-2.5, 0))
}

func TestFormatFixed_TrimsTrailingZeros(t *testing.T) {
	assert.Equal(t, "1.5", FormatFixed(1.5, 6))
	assert.Equal(t, "10", FormatFixed(10.0, 4))
	assert.Equal(t, "0.25", FormatFixed(0.25, 8))
}

func TestFormatFixed_NegativeZeroCollapses(t *testing.T) {
	assert.Equal(t, "0", FormatFixed(-0.0001, 2))
	assert.Equal(t, "0", FormatFixed(-0.0, 3))
}

func TestFormatFixed_PrecisionClamped(t *testing.T) {
	assert.Equal(t, "2", FormatFixed(1.6, -5))
	assert.Equal(t, "1.6", FormatFixed(1.6, 99))
}

func TestFormatFixed_HighPrecisionKeepsShortestForm(t *testing.T) {
	// beyond float64 resolution the value passes through untouched,
	// with no float noise in the decimals
	assert.Equal(t, "1.6", FormatFixed(1.6, 20))
	assert.Equal(t, "0.1", FormatFixed(0.1, 18))
	assert.Equal(t, "-2.5", FormatFixed(-2.5, 16))
	assert.Equal(t, "0", FormatFixed(0, 20))
	assert.Equal(t, FormatFixed(12.3456789, 20), FormatFixed(RoundMeasure(12.3456789, 20), 20))
}

func TestRoundMeasure_Idempotent(t *testing.T) {
	for _, v := range []float64{12.3456789, -0.000123, 1099.5, 0} {
		for _, p := range []int{0, 2, 6} {
			once := RoundMeasure(v, p)
			twice := RoundMeasure(once, p)
			assert.Equal(t, once, twice, "v=%v p=%d", v, p)
		}
	}
}

func TestRoundMeasure_PrecisionZero(t *testing.T) {
	assert.Equal(t, 13.0, RoundMeasure(12.5, 0))
	assert.Equal(t, -13.0, RoundMeasure(-12.5, 0))
}

func TestParseNumber(t *testing.T) {
	v, ok := ParseNumber("12.5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	v, ok = ParseNumber("  -3 ")
	assert.True(t, ok)
	assert.Equal(t, -3.0, v)

	// single comma accepted as decimal mark
	v, ok = ParseNumber("12,5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	// comma plus point means the comma is not a decimal mark
	_, ok = ParseNumber("1,234.5")
	assert.False(t, ok)

	_, ok = ParseNumber("")
	assert.False(t, ok)
	_, ok = ParseNumber("abc")
	assert.False(t, ok)
	_, ok = ParseNumber("NaN")
	assert.False(t, ok)
	_, ok = ParseNumber("Inf")
	assert.False(t, ok)
}

func TestDecimalPlaces(t *testing.T) {
	assert.Equal(t, 0, DecimalPlaces(10))
	assert.Equal(t, 1, DecimalPlaces(1.5))
	assert.Equal(t, 2, DecimalPlaces(0.25))
}
