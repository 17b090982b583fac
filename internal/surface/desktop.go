package surface

import (
	"sync"
	"sync/atomic"

	"github.com/fanpilot/fanpilot/internal/ui"
	"github.com/fanpilot/fanpilot/internal/util"
)

// SnapshotProvider returns the lines rendered by the refresh methods.
type SnapshotProvider func() []string

type desktopSurface struct {
	visible atomic.Bool

	providerMu sync.RWMutex
	provider   SnapshotProvider

	statusFilePath string
}

// NewDesktopSurface returns a Surface that prints status lines to the
// terminal, keeps the persistent status in a file and uses desktop
// notifications for transient messages.
func NewDesktopSurface(statusFilePath string) *desktopSurface {
	return &desktopSurface{
		statusFilePath: statusFilePath,
	}
}

// SetSnapshotProvider wires the data source used by the refresh methods.
func (s *desktopSurface) SetSnapshotProvider(provider SnapshotProvider) {
	s.providerMu.Lock()
	defer s.providerMu.Unlock()
	s.provider = provider
}

func (s *desktopSurface) IsVisible() bool {
	return s.visible.Load()
}

func (s *desktopSurface) Reveal() {
	if s.visible.CompareAndSwap(false, true) {
		ui.Info("Status display enabled")
		s.RefreshGeneralStatus()
	}
}

func (s *desktopSurface) ToggleVisibility() {
	if s.visible.CompareAndSwap(false, true) {
		ui.Info("Status display enabled")
		s.RefreshGeneralStatus()
		return
	}
	s.visible.Store(false)
	ui.Info("Status display disabled")
}

func (s *desktopSurface) RefreshFanControlDisplay() {
	s.RefreshGeneralStatus()
}

func (s *desktopSurface) RefreshGeneralStatus() {
	if !s.visible.Load() {
		return
	}

	s.providerMu.RLock()
	provider := s.provider
	s.providerMu.RUnlock()
	if provider == nil {
		return
	}

	for _, line := range provider() {
		ui.Printfln("%s", line)
	}
}

func (s *desktopSurface) PushStatusLine(text string) {
	if !s.visible.Load() {
		return
	}
	ui.Printfln("%s", text)
}

func (s *desktopSurface) SetPersistentStatus(text string) {
	if len(s.statusFilePath) <= 0 {
		return
	}
	if err := util.WriteStringToFileAtomic(text, s.statusFilePath); err != nil {
		ui.Debug("Unable to write status file: %v", err)
	}
}

func (s *desktopSurface) ShowTransientNotification(text string) {
	ui.NotifyInfo("fanpilot", text)
}
