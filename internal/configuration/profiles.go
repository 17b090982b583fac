package configuration

type FanProfileConfig struct {
	// ID is the name the profile is referenced by (config, hotkey, REST)
	ID string `json:"id"`
	// Label is the human readable display name of the profile
	Label string `json:"label"`

	// Steps maps temperature (°C) to fan speed (percent)
	Steps map[int]float64 `json:"steps"`

	// AlternateSpeedCap limits the fan speed (percent) while the profile
	// runs in its battery (alternate) variant. Zero means "no cap".
	AlternateSpeedCap int `json:"alternateSpeedCap"`

	// SensorPath points at the sysfs temperature input driving this profile
	SensorPath string `json:"sensorPath"`

	// Fallback names another profile to run when this profile's sensor
	// cannot be read
	Fallback string `json:"fallback"`
}

// FindProfile returns the profile definition with the given id, if any.
func (c ProfilesConfig) FindProfile(id string) (FanProfileConfig, bool) {
	for _, profile := range c.Definitions {
		if profile.ID == id {
			return profile, true
		}
	}
	return FanProfileConfig{}, false
}
