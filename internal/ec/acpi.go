package ec

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/fanpilot/fanpilot/internal/util"
)

const acpiCallPath = "/proc/acpi/call"

// ACPI method names of the EC interface. The exact methods differ between
// vendors, they are kept configurable at construction.
type AcpiMethods struct {
	SetFanMode  string
	SetGpuPower string
	SetFanSpeed string
}

func DefaultAcpiMethods() AcpiMethods {
	return AcpiMethods{
		SetFanMode:  `\_SB.PCI0.LPCB.EC0.SFNM`,
		SetGpuPower: `\_SB.PCI0.LPCB.EC0.SGPU`,
		SetFanSpeed: `\_SB.PCI0.LPCB.EC0.SFNS`,
	}
}

type acpiEmbeddedController struct {
	callMu sync.Mutex

	methods    AcpiMethods
	supplyPath string
}

// NewAcpiEmbeddedController returns an EmbeddedController backed by the
// acpi_call kernel module and sysfs power_supply attributes.
func NewAcpiEmbeddedController(methods AcpiMethods, supplyPath string) EmbeddedController {
	return &acpiEmbeddedController{
		methods:    methods,
		supplyPath: supplyPath,
	}
}

func (e *acpiEmbeddedController) ReadIsFullPower() (bool, error) {
	online, err := util.ReadIntFromFile(e.supplyPath)
	if err != nil {
		return false, fmt.Errorf("unable to read power supply state: %w", err)
	}
	return online != 0, nil
}

func (e *acpiEmbeddedController) SetFixedFanMode(mode FanMode) error {
	_, err := e.call(e.methods.SetFanMode, strconv.Itoa(int(mode)))
	return err
}

func (e *acpiEmbeddedController) SetGpuPower(level GpuPowerLevel) error {
	_, err := e.call(e.methods.SetGpuPower, strconv.Itoa(int(level)))
	return err
}

func (e *acpiEmbeddedController) SetAutoStartRegistration(taskId string, enabled bool) error {
	// auto start on linux is a systemd concern, not an EC one
	if enabled {
		ui.Debug("Auto start requested for task '%s', enable the systemd unit instead", taskId)
	}
	return nil
}

func (e *acpiEmbeddedController) ReadTemperature(sensorPath string) (float64, error) {
	milliDegrees, err := util.ReadIntFromFile(sensorPath)
	if err != nil {
		return 0, fmt.Errorf("unable to read temperature sensor %s: %w", sensorPath, err)
	}
	return float64(milliDegrees) / 1000, nil
}

func (e *acpiEmbeddedController) SetFanSpeed(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	_, err := e.call(e.methods.SetFanSpeed, strconv.Itoa(percent))
	return err
}

// call writes method+args to /proc/acpi/call and returns the parsed
// integer result. The acpi_call interface is a single shared file, so
// calls are serialized.
func (e *acpiEmbeddedController) call(method, args string) (int64, error) {
	e.callMu.Lock()
	defer e.callMu.Unlock()
	return executeAcpiCallAt(acpiCallPath, acpiCallPath, method, args)
}

// executeAcpiCallAt writes the call to writePath and reads the result from readPath.
// In production both paths are the same (/proc/acpi/call). They are split for testing.
func executeAcpiCallAt(writePath, readPath, method, args string) (int64, error) {
	call := method
	if args != "" {
		call = method + " " + args
	}

	if err := os.WriteFile(writePath, []byte(call), 0); err != nil {
		return 0, fmt.Errorf("acpi_call: write failed: %w", err)
	}

	data, err := os.ReadFile(readPath)
	if err != nil {
		return 0, fmt.Errorf("acpi_call: read failed: %w", err)
	}

	result := strings.TrimRight(strings.TrimSpace(string(data)), "\x00")
	result = strings.TrimSpace(result)

	if strings.HasPrefix(strings.ToLower(result), "0x") {
		val, err := strconv.ParseInt(result[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("acpi_call: parse hex %q: %w", result, err)
		}
		return val, nil
	}

	val, err := strconv.ParseInt(result, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("acpi_call: parse %q: %w", result, err)
	}
	return val, nil
}
