package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmdelacruz/sarisari-pos/internal/auth"
	"github.com/jmdelacruz/sarisari-pos/internal/logging"
)

type AuthHandler struct {
	Auth *auth.Service
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Error("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	token, err := h.Auth.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue token")
	}

	l.Info("login_success")
	return c.JSON(http.StatusOK, map[string]string{"access_token": token})
}
