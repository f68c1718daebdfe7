package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmdelacruz/sarisari-pos/internal/logging"
	"github.com/jmdelacruz/sarisari-pos/internal/models"
	"github.com/jmdelacruz/sarisari-pos/internal/settings"
)

type SettingsHandler struct {
	Settings *settings.Store
}

func (h *SettingsHandler) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Settings.Get())
}

func (h *SettingsHandler) PutSettings(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "settings.put")

	var req models.Settings
	if err := c.Bind(&req); err != nil {
		l.Error("settings_put_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Settings.Update(req); err != nil {
		l.Warn("settings_put_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}

	l.Info("settings_put_success", "color_scheme", req.ColorScheme)
	return c.JSON(http.StatusOK, h.Settings.Get())
}
