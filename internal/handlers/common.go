package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmdelacruz/sarisari-pos/internal/catalog"
	"github.com/jmdelacruz/sarisari-pos/internal/events"
	"github.com/jmdelacruz/sarisari-pos/internal/logging"
	"github.com/jmdelacruz/sarisari-pos/internal/pos"
	"github.com/jmdelacruz/sarisari-pos/internal/settings"
)

func domainStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrEmptyName),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidCategory),
		errors.Is(err, pos.ErrEmptyCart),
		errors.Is(err, pos.ErrInsufficientPayment),
		errors.Is(err, settings.ErrInvalidColorScheme):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(domainStatus(err), err.Error())
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}
	return id, nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// publish fires an event after a committed mutation. Delivery problems are
// logged, never surfaced: the mutation already succeeded.
func publish(c echo.Context, p events.Producer, topic string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.Publish(ctx, topic, c.Path(), event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("event_publish_failed", "topic", topic, "error", err)
	}
}
