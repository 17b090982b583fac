package orchestrator

import (
	"sync"
	"testing"
	"time"

	"github.com/fanpilot/fanpilot/internal/configuration"
	"github.com/fanpilot/fanpilot/internal/ec"
	"github.com/fanpilot/fanpilot/internal/program"
	"github.com/stretchr/testify/assert"
)

func createTestConfig() configuration.Configuration {
	return configuration.Configuration{
		GpuPower: configuration.GpuPowerConfig{
			Default: "medium",
		},
		Power: configuration.PowerConfig{
			AutoConfigure: true,
			PollingRate:   1 * time.Second,
		},
		Profiles: configuration.ProfilesConfig{
			Default:   "Silent",
			Alternate: "AutoCool",
		},
		Hotkey: configuration.HotkeyConfig{
			Mode: configuration.HotkeyModeToggleProgram,
		},
		Runner: configuration.RunnerConfig{
			TerminateTimeout: 1 * time.Second,
		},
	}
}

func createOrchestrator(config configuration.Configuration, fullPower bool) (*Orchestrator, *mockController, *mockHandle, *mockSurface) {
	controller := &mockController{fullPower: fullPower}
	handle := &mockHandle{}
	surf := &mockSurface{}
	o := NewOrchestrator(controller, handle, surf, nil, config)
	return o, controller, handle, surf
}

func TestAutoconfigureStartsProgramOnFullPower(t *testing.T) {
	// GIVEN
	// Scenario A: default profile is a program name and we are on mains
	config := createTestConfig()
	o, controller, handle, _ := createOrchestrator(config, true)

	// WHEN
	o.autoConfigure()

	// THEN
	assert.Equal(t, []startCall{{name: "Silent", alternate: false}}, handle.getStartCalls())
	assert.Empty(t, controller.getFixedModeCalls())
}

func TestAutoconfigureAppliesFixedMode(t *testing.T) {
	// GIVEN
	// Scenario B: default profile is a reserved sentinel
	config := createTestConfig()
	config.Profiles.Default = ProfileAutoPerformance
	o, controller, handle, _ := createOrchestrator(config, true)

	// WHEN
	o.autoConfigure()

	// THEN
	assert.Equal(t, []ec.FanMode{ec.FanModePerformance}, controller.getFixedModeCalls())
	assert.Empty(t, handle.getStartCalls())
}

func TestAutoconfigureUsesAlternateProfileOnBattery(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	config.Profiles.Alternate = "Quiet"
	o, _, handle, _ := createOrchestrator(config, false)

	// WHEN
	o.autoConfigure()

	// THEN
	assert.Equal(t, []startCall{{name: "Quiet", alternate: true}}, handle.getStartCalls())
}

func TestAutoconfigureRefreshesVisibleSurface(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	o, _, _, surf := createOrchestrator(config, true)
	surf.setVisible(true)

	// WHEN
	o.autoConfigure()

	// THEN
	assert.Equal(t, 1, surf.fanControlRefreshs)
}

func TestAutoconfigureIsFireAndForget(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	o, _, handle, _ := createOrchestrator(config, true)

	// WHEN
	o.InitializeAndAutoconfigure()

	// THEN
	assert.Eventually(t, func() bool {
		return len(handle.getStartCalls()) == 1
	}, 1*time.Second, 10*time.Millisecond)
}

func TestHotkeyToggleProgramRevealsHiddenSurface(t *testing.T) {
	// GIVEN
	// Scenario C: surface is not visible, the first press only reveals it
	config := createTestConfig()
	o, _, handle, surf := createOrchestrator(config, true)

	// WHEN
	o.HandleHotkey()

	// THEN
	assert.True(t, surf.IsVisible())
	assert.Equal(t, 1, surf.reveals)
	assert.Empty(t, handle.getStartCalls())
	assert.Equal(t, 0, handle.getTerminateCalls())
}

func TestHotkeyToggleProgramTerminatesRunningProgram(t *testing.T) {
	// GIVEN
	// Scenario D: surface visible, a program is running
	config := createTestConfig()
	o, _, handle, surf := createOrchestrator(config, true)
	surf.setVisible(true)
	_ = handle.Start("Silent", false)
	handle.startCalls = nil

	// WHEN
	o.HandleHotkey()

	// THEN
	assert.Equal(t, 1, handle.getTerminateCalls())
	assert.Empty(t, handle.getStartCalls())
}

func TestHotkeyToggleProgramStartsDefaultProfile(t *testing.T) {
	// GIVEN
	// surface visible, nothing running, on battery: the toggle still
	// uses the default profile, only the alternate flag follows power
	config := createTestConfig()
	o, _, handle, surf := createOrchestrator(config, false)
	surf.setVisible(true)

	// WHEN
	o.HandleHotkey()

	// THEN
	assert.Equal(t, []startCall{{name: "Silent", alternate: true}}, handle.getStartCalls())
	assert.Equal(t, 0, handle.getTerminateCalls())
	assert.Equal(t, 1, surf.fanControlRefreshs)
}

func TestHotkeyToggleWindow(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	config.Hotkey.Mode = configuration.HotkeyModeToggleWindow
	o, _, handle, surf := createOrchestrator(config, true)

	// WHEN
	o.HandleHotkey()
	o.HandleHotkey()

	// THEN
	assert.Equal(t, 2, surf.toggles)
	assert.False(t, surf.IsVisible())
	assert.Empty(t, handle.getStartCalls())
}

func TestPowerChangeSwitchesToAlternateProfile(t *testing.T) {
	// GIVEN
	// Scenario E: program running on mains, power drops to battery
	config := createTestConfig()
	config.Profiles.Alternate = "Quiet"
	o, controller, handle, _ := createOrchestrator(config, true)
	_ = handle.Start("Silent", false)
	handle.startCalls = nil
	controller.setFullPower(false)

	// WHEN
	o.HandlePowerChange()

	// THEN
	assert.Equal(t, []startCall{{name: "Quiet", alternate: true}}, handle.getStartCalls())
	assert.False(t, o.GetSnapshot().OnFullPower)
}

func TestPowerChangeIsIdempotent(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	config.Profiles.Alternate = "Quiet"
	o, controller, handle, _ := createOrchestrator(config, true)
	_ = handle.Start("Silent", false)
	handle.startCalls = nil
	controller.setFullPower(false)

	// WHEN
	o.HandlePowerChange()
	o.HandlePowerChange()

	// THEN
	assert.Len(t, handle.getStartCalls(), 1)
}

func TestPowerChangeGateRequiresRunningProgram(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	o, controller, handle, _ := createOrchestrator(config, true)
	controller.setFullPower(false)

	// WHEN
	o.HandlePowerChange()

	// THEN
	assert.Empty(t, handle.getStartCalls())
	// the stored power state is only folded in on a genuine transition
	assert.True(t, o.GetSnapshot().OnFullPower)
}

func TestPowerChangeGateRequiresAutoConfigure(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	config.Power.AutoConfigure = false
	o, controller, handle, _ := createOrchestrator(config, true)
	_ = handle.Start("Silent", false)
	handle.startCalls = nil
	controller.setFullPower(false)

	// WHEN
	o.HandlePowerChange()

	// THEN
	assert.Empty(t, handle.getStartCalls())
}

func TestPowerChangeAlwaysRefreshesVisibleSurface(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	o, _, _, surf := createOrchestrator(config, true)
	surf.setVisible(true)

	// WHEN
	// no transition at all, the gate stays closed
	o.HandlePowerChange()
	o.HandlePowerChange()

	// THEN
	assert.Equal(t, 2, surf.generalRefreshs)
}

func TestImportantStatusIsForwardedVerbatim(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	o, _, _, surf := createOrchestrator(config, true)

	// WHEN
	o.handleProgramStatus(program.StatusEvent{
		Severity: program.SeverityImportant,
		Message:  "EC write failed",
	})

	// THEN
	assert.Equal(t, []string{"EC write failed"}, surf.getNotifications())
	assert.Empty(t, surf.getPushedLines())
}

func TestNoticeStatusOnVisibleSurface(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	o, _, handle, surf := createOrchestrator(config, true)
	surf.setVisible(true)
	_ = handle.Start("Silent", true)

	// WHEN
	o.handleProgramStatus(program.StatusEvent{
		Severity: program.SeverityNotice,
		Message:  "Fan speed set to 40%",
	})

	// THEN
	pushed := surf.getPushedLines()
	assert.Len(t, pushed, 1)
	assert.Equal(t, alternateMarker+"Fan speed set to 40% (Silent)", pushed[0])

	persistent := surf.getPersistentStatus()
	assert.Len(t, persistent, 1)
	assert.Contains(t, persistent[0], persistentStatusLabel)
	assert.Contains(t, persistent[0], "Silent")
	assert.Contains(t, persistent[0], "\nFan speed set to 40%")
}

func TestNoticeStatusUpdatesPersistentStatusWhenHidden(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	o, _, handle, surf := createOrchestrator(config, true)
	_ = handle.Start("Silent", false)

	// WHEN
	o.handleProgramStatus(program.StatusEvent{
		Severity: program.SeverityNotice,
		Message:  "Fan speed set to 40%",
	})

	// THEN
	assert.Empty(t, surf.getPushedLines())
	assert.Len(t, surf.getPersistentStatus(), 1)
}

func TestNoticeStatusAfterProgramStopped(t *testing.T) {
	// GIVEN
	// the runner has already cleared its state when the stop notice
	// drains, so the display name query comes back empty
	config := createTestConfig()
	o, _, _, surf := createOrchestrator(config, true)
	surf.setVisible(true)

	// WHEN
	o.handleProgramStatus(program.StatusEvent{
		Severity: program.SeverityNotice,
		Message:  "Fan profile stopped",
	})

	// THEN
	assert.Equal(t, []string{"Fan profile stopped"}, surf.getPushedLines())

	persistent := surf.getPersistentStatus()
	assert.Len(t, persistent, 1)
	assert.NotContains(t, persistent[0], "()")
	assert.Contains(t, persistent[0], persistentStatusLabel)
	assert.Contains(t, persistent[0], "\nFan profile stopped")
}

func TestVerboseStatusIsDropped(t *testing.T) {
	// GIVEN
	// Scenario F: verbose events never reach the surface
	config := createTestConfig()
	o, _, _, surf := createOrchestrator(config, true)
	surf.setVisible(true)

	// WHEN
	o.handleProgramStatus(program.StatusEvent{
		Severity: program.SeverityVerbose,
		Message:  "tick",
	})

	// THEN
	assert.Empty(t, surf.getPushedLines())
	assert.Empty(t, surf.getPersistentStatus())
	assert.Empty(t, surf.getNotifications())
}

func TestConcurrentTriggersNeverTearQueryThenAct(t *testing.T) {
	// GIVEN
	config := createTestConfig()
	o, controller, handle, surf := createOrchestrator(config, true)
	surf.setVisible(true)

	// WHEN
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o.HandleHotkey()
			}
		}()
		go func(flip bool) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				controller.setFullPower(j%2 == 0 == flip)
				o.HandlePowerChange()
			}
		}(i%2 == 0)
	}
	wg.Wait()

	// THEN
	// a torn query-then-act sequence would have terminated an already
	// stopped program
	assert.Equal(t, 0, handle.getInvalidTerminates())
	// after quiescing, the handle state matches the orchestrator's view
	snapshot := o.GetSnapshot()
	assert.Equal(t, handle.IsRunning(), snapshot.Running)
}
