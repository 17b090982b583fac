package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fanpilot/fanpilot/internal/configuration"
	"github.com/fanpilot/fanpilot/internal/ec"
	"github.com/fanpilot/fanpilot/internal/program"
	"github.com/fanpilot/fanpilot/internal/surface"
	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/fanpilot/fanpilot/internal/util"
	"github.com/qdm12/reprint"
)

const (
	persistentStatusLabel = "fanpilot: "
	alternateMarker       = "[battery] "

	// statusQueueSize bounds the runner -> orchestrator event channel.
	// The runner never blocks on a full queue, excess events are dropped.
	statusQueueSize = 64
)

// Store persists orchestrator decisions. Implementations must tolerate
// concurrent calls.
type Store interface {
	SaveLastDirective(directive Directive) error
	AppendPowerTransition(onFullPower bool, at time.Time) error
}

// Snapshot is a point-in-time view of the orchestrator state.
type Snapshot struct {
	OnFullPower bool   `json:"onFullPower"`
	Running     bool   `json:"running"`
	Alternate   bool   `json:"alternate"`
	Program     string `json:"program"`

	HotkeyPresses    uint64 `json:"hotkeyPresses"`
	PowerTransitions uint64 `json:"powerTransitions"`
}

// Orchestrator arbitrates between the three asynchronous fan control
// triggers (startup, hotkey, power transition) and relays fan program
// status to the presentation surface.
//
// A single mutex guards the cached power state and every query-then-act
// sequence against the program handle, so that no two triggers can
// interleave on shared state.
type Orchestrator struct {
	mu sync.Mutex

	onFullPower bool

	hotkeyPresses    uint64
	powerTransitions uint64

	controller ec.EmbeddedController
	program    program.Handle
	surface    surface.Surface
	store      Store

	config configuration.Configuration

	events chan program.StatusEvent
}

// NewOrchestrator creates the orchestrator. The configuration is deep
// copied, runtime changes to the global configuration do not leak into a
// running orchestrator. The power state is sampled once at construction
// and refreshed during autoconfiguration.
func NewOrchestrator(
	controller ec.EmbeddedController,
	handle program.Handle,
	surf surface.Surface,
	store Store,
	config configuration.Configuration,
) *Orchestrator {
	var configCopy configuration.Configuration
	if err := reprint.FromTo(&config, &configCopy); err != nil {
		ui.Warning("Unable to deep copy configuration: %v", err)
		configCopy = config
	}

	o := &Orchestrator{
		controller: controller,
		program:    handle,
		surface:    surf,
		store:      store,
		config:     configCopy,
		events:     make(chan program.StatusEvent, statusQueueSize),
	}

	onFullPower, err := controller.ReadIsFullPower()
	if err != nil {
		ui.Warning("Unable to read initial power source state: %v", err)
	}
	o.onFullPower = onFullPower

	handle.OnStatus(o.enqueueStatus)

	return o
}

// enqueueStatus hands a runner status event over to the orchestrator's
// own goroutine. It runs on the runner's goroutine and never blocks.
func (o *Orchestrator) enqueueStatus(event program.StatusEvent) {
	select {
	case o.events <- event:
	default:
		ui.Debug("Status event queue full, dropping %s event", event.Severity)
	}
}

// Run drains the status event queue until ctx is cancelled. It is meant
// to be a member of the daemon's run group.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-o.events:
			o.handleProgramStatus(event)
		}
	}
}

// InitializeAndAutoconfigure starts the one-time startup configuration in
// the background and returns immediately. The task is fire-and-forget:
// nobody joins it, and when the process exits early its remaining effects
// are simply lost and reapplied on the next startup.
func (o *Orchestrator) InitializeAndAutoconfigure() {
	go o.autoConfigure()
}

func (o *Orchestrator) autoConfigure() {
	o.mu.Lock()
	defer o.mu.Unlock()

	onFullPower, err := o.controller.ReadIsFullPower()
	if err != nil {
		o.reportImportant("Unable to read power source state: %v", err)
	} else {
		o.onFullPower = onFullPower
	}

	// gpu power is independent of the fan profile, a failure here must
	// not stop the remaining steps
	level, err := ec.ParseGpuPowerLevel(o.config.GpuPower.Default)
	if err != nil {
		o.reportImportant("Invalid gpu power configuration: %v", err)
	} else if err := o.controller.SetGpuPower(level); err != nil {
		o.reportImportant("Unable to apply gpu power level '%s': %v", level, err)
	}

	if err := o.controller.SetAutoStartRegistration(o.config.AutoStart.TaskId, o.config.AutoStart.Enabled); err != nil {
		ui.Warning("Unable to update auto start registration: %v", err)
	}

	directive := SelectDirective(o.profileFor(o.onFullPower), o.onFullPower)
	ui.Info("Autoconfiguring fan control: %s", directive)
	o.applyDirectiveLocked(directive)

	if o.surface.IsVisible() {
		o.surface.RefreshFanControlDisplay()
	}
}

// profileFor returns the configured profile name for the given power
// state: the default profile on full power, the alternate one on battery.
func (o *Orchestrator) profileFor(onFullPower bool) string {
	if onFullPower {
		return o.config.Profiles.Default
	}
	return o.config.Profiles.Alternate
}

// applyDirectiveLocked executes a directive. Callers must hold o.mu.
func (o *Orchestrator) applyDirectiveLocked(directive Directive) {
	switch directive.Kind {
	case DirectiveFixedMode:
		// a fixed mode means no program may keep driving the fans
		if o.program.IsRunning() {
			o.terminateLocked()
		}
		if err := o.controller.SetFixedFanMode(directive.Mode); err != nil {
			o.reportImportant("Unable to set fan mode '%s': %v", directive.Mode, err)
			return
		}
	case DirectiveRunProgram:
		// Start supersedes any previous run of this handle
		if err := o.program.Start(directive.Program, directive.Alternate); err != nil {
			o.reportImportant("Unable to start fan program '%s': %v", directive.Program, err)
			return
		}
	}

	if o.store != nil {
		if err := o.store.SaveLastDirective(directive); err != nil {
			ui.Debug("Unable to persist directive: %v", err)
		}
	}
}

// terminateLocked stops the running program and keeps the orchestrator's
// view consistent with the runner even when termination times out.
// Callers must hold o.mu.
func (o *Orchestrator) terminateLocked() {
	err := o.program.Terminate(o.config.Runner.TerminateTimeout)
	if errors.Is(err, program.ErrTerminateTimeout) {
		// never assume, re-query what the runner is actually doing
		o.reportImportant("Fan program did not stop within %s, it is %s",
			o.config.Runner.TerminateTimeout, runningStateString(o.program.IsRunning()))
		return
	}
	if err != nil {
		o.reportImportant("Unable to stop fan program: %v", err)
	}
}

func runningStateString(running bool) string {
	if running {
		return "still running"
	}
	return "stopped"
}

// HandleHotkey reacts to a press of the hardware fan hotkey. The
// configured hotkey mode decides between launching a custom action,
// toggling fan control and toggling the status display.
func (o *Orchestrator) HandleHotkey() {
	o.mu.Lock()
	o.hotkeyPresses++
	o.mu.Unlock()

	switch o.config.Hotkey.Mode {
	case configuration.HotkeyModeCustomAction:
		o.handleHotkeyCustomAction()
	case configuration.HotkeyModeToggleProgram:
		o.handleHotkeyToggleProgram()
	case configuration.HotkeyModeToggleWindow:
		o.surface.ToggleVisibility()
	default:
		o.surface.ToggleVisibility()
	}
}

func (o *Orchestrator) handleHotkeyCustomAction() {
	action := o.config.Hotkey.CustomAction
	if action == nil {
		ui.Warning("Hotkey mode is customAction but no action is configured")
		return
	}

	ui.Debug("Launching custom hotkey action: %s", action.Exec)
	if err := util.LaunchDetached(action.Exec, action.Args, action.Minimized); err != nil {
		o.reportImportant("Unable to launch custom hotkey action: %v", err)
	}
}

func (o *Orchestrator) handleHotkeyToggleProgram() {
	// the first press only reveals the status display
	if !o.surface.IsVisible() {
		o.surface.Reveal()
		return
	}

	o.mu.Lock()
	if o.program.IsRunning() {
		o.terminateLocked()
	} else {
		// the hotkey toggle deliberately restarts with the default
		// profile even on battery power, only the alternate flag
		// follows the current power state
		directive := SelectDirective(o.config.Profiles.Default, o.onFullPower)
		o.applyDirectiveLocked(directive)
	}
	o.mu.Unlock()

	o.surface.RefreshFanControlDisplay()
}

// HandlePowerChange folds a (potential) AC/battery transition into the
// orchestrator. It is cheap enough to be invoked on every poll tick, the
// gate below ignores calls without a genuine transition.
func (o *Orchestrator) HandlePowerChange() {
	observedFullPower, err := o.controller.ReadIsFullPower()
	if err != nil {
		ui.Debug("Unable to read power source state: %v", err)
	} else {
		o.mu.Lock()
		genuineTransition := o.config.Power.AutoConfigure &&
			o.program.IsRunning() &&
			observedFullPower != o.onFullPower

		if genuineTransition {
			o.onFullPower = observedFullPower
			o.powerTransitions++

			directive := SelectDirective(o.profileFor(observedFullPower), observedFullPower)
			ui.Info("Power source changed, now on %s: %s", powerSourceString(observedFullPower), directive)
			o.applyDirectiveLocked(directive)

			if o.store != nil {
				if err := o.store.AppendPowerTransition(observedFullPower, time.Now()); err != nil {
					ui.Debug("Unable to persist power transition: %v", err)
				}
			}
		}
		o.mu.Unlock()
	}

	// the general status display is refreshed on every invocation,
	// transition or not
	if o.surface.IsVisible() {
		o.surface.RefreshGeneralStatus()
	}
}

func powerSourceString(onFullPower bool) string {
	if onFullPower {
		return "mains power"
	}
	return "battery"
}

// handleProgramStatus surfaces a single runner status event.
func (o *Orchestrator) handleProgramStatus(event program.StatusEvent) {
	switch event.Severity {
	case program.SeverityImportant:
		o.surface.ShowTransientNotification(event.Message)
	case program.SeverityNotice:
		// the run may already be gone when its last events drain, e.g.
		// the stop notice; skip the name annotation then
		name := o.program.DisplayName()

		if o.surface.IsVisible() {
			line := event.Message
			if len(name) > 0 {
				line += " (" + name + ")"
			}
			if o.program.IsAlternate() {
				line = alternateMarker + line
			}
			o.surface.PushStatusLine(line)
		}

		status := persistentStatusLabel
		if len(name) > 0 {
			status += name + " "
		}
		o.surface.SetPersistentStatus(status + time.Now().Format(time.Stamp) + "\n" + event.Message)
	case program.SeverityVerbose:
		// surfaced only by the command line follow mode
		ui.Debug("%s", event.Message)
	}
}

// reportImportant surfaces an orchestrator-side failure the same way an
// Important runner event is surfaced. Failures are never fatal.
func (o *Orchestrator) reportImportant(format string, a ...interface{}) {
	ui.Warning(format, a...)
	o.surface.ShowTransientNotification(fmt.Sprintf(format, a...))
}

// GetSnapshot returns a consistent view of the orchestrator state.
func (o *Orchestrator) GetSnapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	return Snapshot{
		OnFullPower:      o.onFullPower,
		Running:          o.program.IsRunning(),
		Alternate:        o.program.IsAlternate(),
		Program:          o.program.DisplayName(),
		HotkeyPresses:    o.hotkeyPresses,
		PowerTransitions: o.powerTransitions,
	}
}
