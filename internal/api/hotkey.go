package api

import (
	"net/http"

	"github.com/fanpilot/fanpilot/internal/orchestrator"
	"github.com/labstack/echo/v4"
)

// registerHotkeyEndpoint wires the transport that carries the OS hotkey
// dispatch into the orchestrator. The acpid handler (or the `fanpilot
// trigger` command) POSTs here on every press of the fan hotkey.
func registerHotkeyEndpoint(rest *echo.Echo, o *orchestrator.Orchestrator) {
	rest.POST("/hotkey/", func(c echo.Context) error {
		o.HandleHotkey()
		return c.NoContent(http.StatusNoContent)
	})
}
