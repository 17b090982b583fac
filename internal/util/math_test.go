package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	// GIVEN
	target := 60.0

	// WHEN
	result := Ratio(target, 40, 80)

	// THEN
	assert.Equal(t, 0.5, result)
}

func TestInterpolatedCurveValueBetweenSteps(t *testing.T) {
	// GIVEN
	steps := map[int]float64{
		40: 0,
		80: 100,
	}

	// WHEN
	result := CalculateInterpolatedCurveValue(steps, InterpolationTypeLinear, 60)

	// THEN
	assert.Equal(t, 50.0, result)
}

func TestInterpolatedCurveValueBelowSmallestStep(t *testing.T) {
	// GIVEN
	steps := map[int]float64{
		40: 10,
		80: 100,
	}

	// WHEN
	result := CalculateInterpolatedCurveValue(steps, InterpolationTypeLinear, 20)

	// THEN
	assert.Equal(t, 10.0, result)
}

func TestInterpolatedCurveValueAboveLargestStep(t *testing.T) {
	// GIVEN
	steps := map[int]float64{
		40: 0,
		80: 90,
	}

	// WHEN
	result := CalculateInterpolatedCurveValue(steps, InterpolationTypeLinear, 100)

	// THEN
	assert.Equal(t, 90.0, result)
}

func TestInterpolatedCurveValueOnStep(t *testing.T) {
	// GIVEN
	steps := map[int]float64{
		40: 0,
		60: 35,
		80: 100,
	}

	// WHEN
	result := CalculateInterpolatedCurveValue(steps, InterpolationTypeLinear, 60)

	// THEN
	assert.Equal(t, 35.0, result)
}

func TestInterpolateLinearly(t *testing.T) {
	// GIVEN
	steps := map[int]float64{
		0:  0,
		10: 100,
	}

	// WHEN
	result := InterpolateLinearly(&steps, 0, 10)

	// THEN
	assert.Len(t, result, 11)
	assert.Equal(t, 0.0, result[0])
	assert.Equal(t, 50.0, result[5])
	assert.Equal(t, 100.0, result[10])
}
