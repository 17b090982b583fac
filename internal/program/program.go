package program

import (
	"errors"
	"time"
)

var (
	// ErrTerminateTimeout is returned when a running program did not
	// stop within the given timeout.
	ErrTerminateTimeout = errors.New("fan program did not terminate in time")

	// ErrUnknownProfile is returned when no profile definition exists
	// for the requested program name.
	ErrUnknownProfile = errors.New("no profile definition for program")
)

// Handle controls the external fan program runner.
//
// A Handle outlives individual program runs; Start supersedes a previous
// run. All methods are safe for concurrent use, queries reflect the state
// at call time and can be stale the instant after returning.
type Handle interface {
	// Start begins running the named fan profile. The alternate flag
	// selects the battery variant of the profile.
	Start(name string, alternate bool) error

	// Terminate stops the current run. It returns once the runner has
	// stopped mutating fan hardware, or ErrTerminateTimeout.
	// Terminating an idle runner is a no-op.
	Terminate(timeout time.Duration) error

	IsRunning() bool
	IsAlternate() bool
	DisplayName() string

	// OnStatus registers the status callback. Events are delivered on
	// the runner's own goroutine.
	OnStatus(callback StatusCallback)
}
