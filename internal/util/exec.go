package util

import (
	"fmt"
	"os/exec"
	"strings"
)

// LaunchDetached starts the given executable with the argument string split
// on whitespace and does not wait for it to exit. The command is executed
// directly, never through a shell. When minimized is set, a window hint is
// passed down via the environment for launchers that honor it.
func LaunchDetached(executable string, argString string, minimized bool) error {
	if _, err := CheckFilePermissionsForExecution(executable); err != nil {
		return fmt.Errorf("cannot execute %s: %s", executable, err)
	}

	args := strings.Fields(argString)

	cmd := exec.Command(executable, args...)
	if minimized {
		cmd.Env = append(cmd.Environ(), "FANPILOT_WINDOW_HINT=minimized")
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("unable to launch %s: %w", executable, err)
	}

	// reap the child in the background to avoid zombies
	go func() {
		_ = cmd.Wait()
	}()

	return nil
}
