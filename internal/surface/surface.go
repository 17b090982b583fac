package surface

// Surface is the presentation layer as seen by the orchestrator: a status
// display that can be shown or hidden, a persistent status line and a
// transient notification channel.
//
// All methods are best-effort and must be fast and non-blocking, they can
// be called from any goroutine.
type Surface interface {
	IsVisible() bool
	Reveal()
	ToggleVisibility()

	// RefreshFanControlDisplay re-renders the fan control widget.
	RefreshFanControlDisplay()
	// RefreshGeneralStatus re-renders the general status display.
	RefreshGeneralStatus()

	// PushStatusLine appends a line to the visible status display.
	PushStatusLine(text string)
	// SetPersistentStatus replaces the persistent status line (tooltip).
	SetPersistentStatus(text string)
	// ShowTransientNotification shows a short-lived notification.
	ShowTransientNotification(text string)
}
