package api

import (
	"net/http"
	"os"

	"github.com/fanpilot/fanpilot/internal/orchestrator"
	"github.com/fanpilot/fanpilot/internal/persistence"
	"github.com/labstack/echo/v4"
)

func registerStatusEndpoints(rest *echo.Echo, o *orchestrator.Orchestrator, pers persistence.Persistence) {
	group := rest.Group("/status")

	group.GET("/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, o.GetSnapshot(), indentationChar)
	})

	group.GET("/directive/", func(c echo.Context) error {
		directive, err := pers.LoadLastDirective()
		if os.IsNotExist(err) {
			return returnNotFound(c, "directive")
		}
		if err != nil {
			return returnError(c, err)
		}
		return c.JSONPretty(http.StatusOK, directive, indentationChar)
	})

	group.GET("/transitions/", func(c echo.Context) error {
		transitions, err := pers.LoadPowerTransitions()
		if err != nil {
			return returnError(c, err)
		}
		return c.JSONPretty(http.StatusOK, transitions, indentationChar)
	})
}
