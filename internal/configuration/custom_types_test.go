package configuration

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decodeHotkeyMode(t *testing.T, input interface{}) (interface{}, error) {
	hook := hotkeyModeHookFunc()
	return hook(reflect.TypeOf(input), reflect.TypeOf(HotkeyModeValue("")), input)
}

func TestHotkeyModeDecodesCaseInsensitively(t *testing.T) {
	// GIVEN
	inputs := map[string]HotkeyModeValue{
		"toggleprogram": HotkeyModeToggleProgram,
		"ToggleProgram": HotkeyModeToggleProgram,
		"TOGGLEWINDOW":  HotkeyModeToggleWindow,
		"customaction":  HotkeyModeCustomAction,
	}

	for input, expected := range inputs {
		// WHEN
		result, err := decodeHotkeyMode(t, input)

		// THEN
		assert.NoError(t, err)
		assert.Equal(t, expected, result)
	}
}

func TestUnknownHotkeyModeIsRejected(t *testing.T) {
	// GIVEN
	input := "doesNotExist"

	// WHEN
	_, err := decodeHotkeyMode(t, input)

	// THEN
	assert.Error(t, err)
}

func TestHookIgnoresOtherTypes(t *testing.T) {
	// GIVEN
	hook := hotkeyModeHookFunc()
	input := "just a string"

	// WHEN
	result, err := hook(reflect.TypeOf(input), reflect.TypeOf(""), input)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, input, result)
}
