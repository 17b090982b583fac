package configuration

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// HotkeyModeValue is the raw configuration value selecting what a press of
// the hardware fan hotkey does. It decodes case-insensitively.
type HotkeyModeValue string

const (
	HotkeyModeCustomAction  HotkeyModeValue = "customAction"
	HotkeyModeToggleProgram HotkeyModeValue = "toggleProgram"
	HotkeyModeToggleWindow  HotkeyModeValue = "toggleWindow"
)

type HotkeyConfig struct {
	Mode HotkeyModeValue `json:"mode"`

	CustomAction *CustomActionConfig `json:"customAction"`
}

type CustomActionConfig struct {
	// Exec is the path of the executable to launch
	Exec string `json:"exec"`
	// Args is the argument string passed to the executable, split on
	// whitespace; it is never routed through a shell
	Args string `json:"args"`
	// Minimized starts the process with a hidden/minimized window hint
	Minimized bool `json:"minimized"`
}

// hotkeyModeHookFunc returns a mapstructure decode hook that normalizes
// arbitrary-case hotkey mode strings to their canonical HotkeyModeValue.
func hotkeyModeHookFunc() mapstructure.DecodeHookFuncType {
	hotkeyModeType := reflect.TypeOf(HotkeyModeValue(""))

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != hotkeyModeType {
			return data, nil
		}

		raw, ok := data.(string)
		if !ok {
			return data, nil
		}

		for _, mode := range []HotkeyModeValue{
			HotkeyModeCustomAction,
			HotkeyModeToggleProgram,
			HotkeyModeToggleWindow,
		} {
			if strings.EqualFold(raw, string(mode)) {
				return mode, nil
			}
		}

		return nil, fmt.Errorf("unknown hotkey mode: %s, must be one of: customAction | toggleProgram | toggleWindow", raw)
	}
}
