package api

import (
	"net/http"

	"github.com/fanpilot/fanpilot/internal/configuration"
	"github.com/labstack/echo/v4"
)

func registerProfileEndpoints(rest *echo.Echo) {
	group := rest.Group("/profile")

	group.GET("/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, configuration.CurrentConfig.Profiles, indentationChar)
	})

	group.GET("/:"+urlParamId+"/", func(c echo.Context) error {
		id := c.Param(urlParamId)
		profile, ok := configuration.CurrentConfig.Profiles.FindProfile(id)
		if !ok {
			return returnNotFound(c, id)
		}
		return c.JSONPretty(http.StatusOK, profile, indentationChar)
	})
}
