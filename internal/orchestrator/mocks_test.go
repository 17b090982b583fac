package orchestrator

import (
	"sync"
	"time"

	"github.com/fanpilot/fanpilot/internal/ec"
	"github.com/fanpilot/fanpilot/internal/program"
)

type mockController struct {
	mu sync.Mutex

	fullPower bool
	readErr   error

	fixedModeCalls []ec.FanMode
	gpuPowerCalls  []ec.GpuPowerLevel
}

func (c *mockController) ReadIsFullPower() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullPower, c.readErr
}

func (c *mockController) SetFixedFanMode(mode ec.FanMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fixedModeCalls = append(c.fixedModeCalls, mode)
	return nil
}

func (c *mockController) SetGpuPower(level ec.GpuPowerLevel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gpuPowerCalls = append(c.gpuPowerCalls, level)
	return nil
}

func (c *mockController) SetAutoStartRegistration(taskId string, enabled bool) error {
	return nil
}

func (c *mockController) ReadTemperature(sensorPath string) (float64, error) {
	return 50, nil
}

func (c *mockController) SetFanSpeed(percent int) error {
	return nil
}

func (c *mockController) setFullPower(value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullPower = value
}

func (c *mockController) getFixedModeCalls() []ec.FanMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ec.FanMode{}, c.fixedModeCalls...)
}

type startCall struct {
	name      string
	alternate bool
}

type mockHandle struct {
	mu sync.Mutex

	running   bool
	alternate bool
	name      string

	startCalls     []startCall
	terminateCalls int
	// invalidTerminates counts Terminate calls issued while no program
	// was running, which a correctly serialized orchestrator never does
	invalidTerminates int

	callback program.StatusCallback
}

func (h *mockHandle) Start(name string, alternate bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.startCalls = append(h.startCalls, startCall{name: name, alternate: alternate})
	h.running = true
	h.alternate = alternate
	h.name = name
	return nil
}

func (h *mockHandle) Terminate(timeout time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.terminateCalls++
	if !h.running {
		h.invalidTerminates++
	}
	h.running = false
	h.alternate = false
	h.name = ""
	return nil
}

func (h *mockHandle) IsRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *mockHandle) IsAlternate() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alternate
}

func (h *mockHandle) DisplayName() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.name
}

func (h *mockHandle) OnStatus(callback program.StatusCallback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callback = callback
}

func (h *mockHandle) getStartCalls() []startCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]startCall{}, h.startCalls...)
}

func (h *mockHandle) getTerminateCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.terminateCalls
}

func (h *mockHandle) getInvalidTerminates() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.invalidTerminates
}

type mockSurface struct {
	mu sync.Mutex

	visible bool

	pushedLines        []string
	persistentStatus   []string
	notifications      []string
	fanControlRefreshs int
	generalRefreshs    int
	reveals            int
	toggles            int
}

func (s *mockSurface) IsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *mockSurface) Reveal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = true
	s.reveals++
}

func (s *mockSurface) ToggleVisibility() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = !s.visible
	s.toggles++
}

func (s *mockSurface) RefreshFanControlDisplay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fanControlRefreshs++
}

func (s *mockSurface) RefreshGeneralStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generalRefreshs++
}

func (s *mockSurface) PushStatusLine(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushedLines = append(s.pushedLines, text)
}

func (s *mockSurface) SetPersistentStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistentStatus = append(s.persistentStatus, text)
}

func (s *mockSurface) ShowTransientNotification(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, text)
}

func (s *mockSurface) setVisible(value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = value
}

func (s *mockSurface) getPushedLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.pushedLines...)
}

func (s *mockSurface) getPersistentStatus() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.persistentStatus...)
}

func (s *mockSurface) getNotifications() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.notifications...)
}
