package configuration

import (
	"errors"
	"fmt"

	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/looplab/tarjan"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	err := validateProfiles(config)
	if err != nil {
		return err
	}
	err = validateHotkey(config)
	if err != nil {
		return err
	}
	return validatePower(config)
}

func validateProfiles(config *Configuration) error {
	for _, profile := range config.Profiles.Definitions {
		if len(profile.ID) <= 0 {
			return errors.New("profile definition without an id")
		}

		if len(profile.Steps) < 2 {
			return fmt.Errorf("profile %s: at least two temperature -> speed steps are required", profile.ID)
		}

		for temp, speed := range profile.Steps {
			if speed < 0 || speed > 100 {
				return fmt.Errorf("profile %s: speed for %d° out of range, must be in (0..100)", profile.ID, temp)
			}
		}

		if profile.AlternateSpeedCap < 0 || profile.AlternateSpeedCap > 100 {
			return fmt.Errorf("profile %s: alternateSpeedCap out of range, must be in (0..100)", profile.ID)
		}

		if len(profile.Fallback) > 0 {
			if _, ok := config.Profiles.FindProfile(profile.Fallback); !ok {
				return fmt.Errorf("profile %s: fallback references unknown profile: %s", profile.ID, profile.Fallback)
			}
		}
	}

	return validateNoFallbackCycles(config)
}

// validateNoFallbackCycles makes sure profile fallback references don't
// form a loop, which would make the runner bounce between profiles forever.
func validateNoFallbackCycles(config *Configuration) error {
	graph := make(map[interface{}][]interface{})

	for _, profile := range config.Profiles.Definitions {
		var children []interface{}
		if len(profile.Fallback) > 0 {
			children = append(children, profile.Fallback)
		}
		graph[profile.ID] = children
	}

	output := tarjan.Connections(graph)
	for _, component := range output {
		if len(component) > 1 {
			return fmt.Errorf("profile fallback cycle detected: %v", component)
		}
	}

	return nil
}

func validateHotkey(config *Configuration) error {
	hotkey := config.Hotkey

	switch hotkey.Mode {
	case HotkeyModeCustomAction:
		if hotkey.CustomAction == nil {
			return errors.New("hotkey: mode is customAction but no customAction block is configured")
		}
		if len(hotkey.CustomAction.Exec) <= 0 {
			return errors.New("hotkey: customAction without an executable")
		}
	case HotkeyModeToggleProgram, HotkeyModeToggleWindow:
		if hotkey.CustomAction != nil {
			ui.Warning("Unused customAction configuration, hotkey mode is: %s", hotkey.Mode)
		}
	default:
		return fmt.Errorf("hotkey: unknown mode: %s", hotkey.Mode)
	}

	return nil
}

func validatePower(config *Configuration) error {
	if config.Power.PollingRate <= 0 {
		return errors.New("power: pollingRate must be > 0")
	}
	if len(config.Power.SupplyPath) <= 0 {
		return errors.New("power: supplyPath must not be empty")
	}
	return nil
}
