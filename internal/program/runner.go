package program

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/fanpilot/fanpilot/internal/configuration"
	"github.com/fanpilot/fanpilot/internal/ec"
	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/fanpilot/fanpilot/internal/util"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// run is a single session of a running fan profile.
type run struct {
	name      string
	label     string
	alternate bool

	cancel context.CancelFunc
	done   chan struct{}
}

type runner struct {
	mu sync.Mutex

	// callbackMu guards onStatus separately, the run loop emits events
	// while Terminate holds mu waiting for the loop to exit.
	callbackMu sync.RWMutex

	controller ec.EmbeddedController
	config     configuration.RunnerConfig
	profiles   cmap.ConcurrentMap[string, configuration.FanProfileConfig]

	current  *run
	onStatus StatusCallback
}

// NewRunner creates a fan program runner driving fans through the given
// embedded controller. The profile definitions become the set of startable
// program names.
func NewRunner(controller ec.EmbeddedController, config configuration.RunnerConfig, profiles []configuration.FanProfileConfig) Handle {
	registry := cmap.New[configuration.FanProfileConfig]()
	for _, profile := range profiles {
		registry.Set(profile.ID, profile)
	}

	return &runner{
		controller: controller,
		config:     config,
		profiles:   registry,
	}
}

func (r *runner) OnStatus(callback StatusCallback) {
	r.callbackMu.Lock()
	defer r.callbackMu.Unlock()
	r.onStatus = callback
}

func (r *runner) Start(name string, alternate bool) error {
	profile, ok := r.profiles.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// a new run supersedes the previous one for this handle
	if r.current != nil {
		if err := r.stopLocked(r.config.TerminateTimeout); err != nil {
			return err
		}
	}

	label := profile.Label
	if len(label) <= 0 {
		label = profile.ID
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := &run{
		name:      name,
		label:     label,
		alternate: alternate,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	r.current = session

	go r.loop(ctx, session, profile)

	return nil
}

func (r *runner) Terminate(timeout time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopLocked(timeout)
}

// stopLocked cancels the current run and waits for its loop to exit, so
// that the terminating run cannot race a subsequent start with a late
// hardware write. Callers must hold r.mu.
func (r *runner) stopLocked(timeout time.Duration) error {
	session := r.current
	if session == nil {
		return nil
	}

	session.cancel()

	select {
	case <-session.done:
	case <-time.After(timeout):
		return ErrTerminateTimeout
	}

	r.current = nil
	return nil
}

func (r *runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

func (r *runner) IsAlternate() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil && r.current.alternate
}

func (r *runner) DisplayName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return ""
	}
	return r.current.label
}

func (r *runner) emit(severity Severity, format string, a ...interface{}) {
	r.callbackMu.RLock()
	callback := r.onStatus
	r.callbackMu.RUnlock()

	if callback == nil {
		return
	}
	callback(StatusEvent{
		Severity: severity,
		Message:  fmt.Sprintf(format, a...),
	})
}

// loop is the control loop of a single program run. It exits when ctx is
// cancelled and restores the EC's automatic fan behavior on the way out.
func (r *runner) loop(ctx context.Context, session *run, profile configuration.FanProfileConfig) {
	defer func() {
		close(session.done)
		// when Terminate timed out and gave up waiting, the session record
		// is still in place; the run is over now, so clear it ourselves
		r.mu.Lock()
		if r.current == session {
			r.current = nil
		}
		r.mu.Unlock()
	}()

	windowSize := r.config.TempRollingWindowSize
	tempWindow := util.CreateRollingWindow(windowSize)

	temp, err := r.controller.ReadTemperature(profile.SensorPath)
	if err != nil {
		r.emit(SeverityImportant, "Unable to read temperature sensor of profile '%s': %v", session.label, err)
		if fallback, ok := r.profiles.Get(profile.Fallback); ok {
			r.emit(SeverityNotice, "Falling back to profile '%s'", fallback.ID)
			profile = fallback
			temp, err = r.controller.ReadTemperature(profile.SensorPath)
		}
		if err != nil {
			temp = 50
		}
	}
	util.FillWindow(tempWindow, windowSize, temp)

	r.emit(SeverityNotice, "Fan profile started")

	lastSetSpeed := -1
	tick := time.Tick(r.config.AdjustmentTickRate)
	for {
		select {
		case <-ctx.Done():
			r.emit(SeverityNotice, "Fan profile stopped")
			// hand control back to the EC
			if err := r.controller.SetFixedFanMode(ec.FanModeDefault); err != nil {
				r.emit(SeverityImportant, "Unable to restore automatic fan behavior: %v", err)
			}
			return
		case <-tick:
			temp, err := r.controller.ReadTemperature(profile.SensorPath)
			if err != nil {
				r.emit(SeverityImportant, "Unable to read temperature: %v", err)
				continue
			}
			tempWindow.Append(temp)
			avgTemp := tempWindow.Reduce(rolling.Avg)

			target := int(math.Round(util.CalculateInterpolatedCurveValue(profile.Steps, util.InterpolationTypeLinear, avgTemp)))
			if session.alternate && profile.AlternateSpeedCap > 0 && target > profile.AlternateSpeedCap {
				target = profile.AlternateSpeedCap
			}

			r.emit(SeverityVerbose, "Temperature %.1f°, target fan speed %d%%", avgTemp, target)

			if target == lastSetSpeed {
				continue
			}

			if err := r.controller.SetFanSpeed(target); err != nil {
				r.emit(SeverityImportant, "Unable to set fan speed to %d%%: %v", target, err)
				continue
			}
			ui.Debug("Fan speed of profile '%s' set to %d%%", session.label, target)
			lastSetSpeed = target
			r.emit(SeverityNotice, "Fan speed set to %d%% at %.0f°", target, avgTemp)
		}
	}
}
