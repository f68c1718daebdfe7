package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmdelacruz/sarisari-pos/internal/catalog"
	"github.com/jmdelacruz/sarisari-pos/internal/catalog/view"
	"github.com/jmdelacruz/sarisari-pos/internal/events"
	"github.com/jmdelacruz/sarisari-pos/internal/logging"
)

// DeletedHandler serves the recently-deleted holding area.
type DeletedHandler struct {
	View     *view.Catalog
	Store    catalog.Store
	Producer events.Producer
}

func (h *DeletedHandler) ListDeleted(c echo.Context) error {
	held, err := h.Store.ListDeletedItems(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, held)
}

func (h *DeletedHandler) RestoreItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "deleted.restore")

	id, err := pathID(c)
	if err != nil {
		return err
	}
	item, err := h.Store.RestoreItem(ctx, id)
	if err != nil {
		l.Warn("item_restore_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}
	if err := h.View.Refresh(ctx); err != nil {
		l.Error("view_refresh_failed", "error", err)
	}

	publish(c, h.Producer, events.TopicCatalog, map[string]any{
		"type":   "item_restored",
		"itemID": item.ID,
	})
	l.Info("item_restore_success", "itemID", item.ID)
	return c.JSON(http.StatusOK, item)
}

func (h *DeletedHandler) PurgeItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "deleted.purge")

	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Store.PurgeDeletedItem(ctx, id); err != nil {
		l.Error("item_purge_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicCatalog, map[string]any{
		"type":   "item_purged",
		"itemID": id,
	})
	l.Info("item_purge_success", "itemID", id)
	return c.NoContent(http.StatusNoContent)
}
