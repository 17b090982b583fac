package program

import "fmt"

// Severity classifies a status event of a running fan program and controls
// how (and whether) it is surfaced to the user.
type Severity int

const (
	// SeverityVerbose events are diagnostic chatter, dropped unless a
	// debugging surface asks for them.
	SeverityVerbose Severity = iota
	// SeverityNotice events describe regular operation, e.g. a fan
	// speed adjustment.
	SeverityNotice
	// SeverityImportant events must reach the user, e.g. a failed
	// hardware call.
	SeverityImportant
)

func (s Severity) String() string {
	switch s {
	case SeverityVerbose:
		return "Verbose"
	case SeverityNotice:
		return "Notice"
	case SeverityImportant:
		return "Important"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// StatusEvent is a single status update produced by a running fan program.
// Events are ephemeral and delivered at most once, in per-run FIFO order.
type StatusEvent struct {
	Severity Severity
	Message  string
}

// StatusCallback receives status events on the runner's own goroutine.
// It must not block.
type StatusCallback func(event StatusEvent)
