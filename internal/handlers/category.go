package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmdelacruz/sarisari-pos/internal/catalog/view"
	"github.com/jmdelacruz/sarisari-pos/internal/events"
	"github.com/jmdelacruz/sarisari-pos/internal/logging"
)

type CategoryHandler struct {
	View     *view.Catalog
	Producer events.Producer
}

func (h *CategoryHandler) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.View.Categories())
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		l.Error("category_create_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.View.AddCategory(ctx, req.Name)
	if err != nil {
		l.Warn("category_create_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicCatalog, map[string]any{
		"type":       "category_created",
		"categoryID": cat.ID,
		"name":       cat.Name,
	})
	l.Info("category_create_success", "categoryID", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) RenameCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.rename")

	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		l.Error("category_rename_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.View.RenameCategory(ctx, id, req.Name); err != nil {
		l.Warn("category_rename_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicCatalog, map[string]any{
		"type":       "category_renamed",
		"categoryID": id,
		"name":       req.Name,
	})
	l.Info("category_rename_success", "categoryID", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.View.DeleteCategory(ctx, id); err != nil {
		l.Warn("category_delete_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicCatalog, map[string]any{
		"type":       "category_deleted",
		"categoryID": id,
	})
	l.Info("category_delete_success", "categoryID", id)
	return c.NoContent(http.StatusNoContent)
}
