package ec

import "fmt"

// FanMode is a fixed fan behavior the embedded controller applies on its
// own, without a running fan program.
type FanMode int

const (
	FanModeDefault FanMode = iota
	FanModePerformance
	FanModeCool
)

func (m FanMode) String() string {
	switch m {
	case FanModeDefault:
		return "Default"
	case FanModePerformance:
		return "Performance"
	case FanModeCool:
		return "Cool"
	}
	return fmt.Sprintf("FanMode(%d)", int(m))
}

// GpuPowerLevel is the discrete gpu power budget supported by the EC.
type GpuPowerLevel int

const (
	GpuPowerLow GpuPowerLevel = iota
	GpuPowerMedium
	GpuPowerHigh
)

func (l GpuPowerLevel) String() string {
	switch l {
	case GpuPowerLow:
		return "low"
	case GpuPowerMedium:
		return "medium"
	case GpuPowerHigh:
		return "high"
	}
	return fmt.Sprintf("GpuPowerLevel(%d)", int(l))
}

// ParseGpuPowerLevel maps a configuration string to a GpuPowerLevel.
func ParseGpuPowerLevel(value string) (GpuPowerLevel, error) {
	switch value {
	case "low":
		return GpuPowerLow, nil
	case "medium", "":
		return GpuPowerMedium, nil
	case "high":
		return GpuPowerHigh, nil
	}
	return GpuPowerMedium, fmt.Errorf("unknown gpu power level: %s, must be one of: low | medium | high", value)
}

// EmbeddedController is the narrow facade over the BIOS/EC hardware layer.
//
// All calls are bounded-latency synchronous operations. Implementations
// must be safe for concurrent use.
type EmbeddedController interface {
	// ReadIsFullPower reports whether the system currently runs on
	// mains (AC) power.
	ReadIsFullPower() (bool, error)

	// SetFixedFanMode applies a fixed fan mode directly, without any
	// fan program running.
	SetFixedFanMode(mode FanMode) error

	// SetGpuPower applies the given gpu power budget.
	SetGpuPower(level GpuPowerLevel) error

	// SetAutoStartRegistration registers or unregisters the given task
	// for automatic start on boot.
	SetAutoStartRegistration(taskId string, enabled bool) error

	// ReadTemperature returns the current temperature (°C) of the
	// sensor at the given sysfs path.
	ReadTemperature(sensorPath string) (float64, error)

	// SetFanSpeed sets the fan speed to the given percentage while a
	// fan program is driving the fans.
	SetFanSpeed(percent int) error
}
