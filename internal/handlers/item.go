package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jmdelacruz/sarisari-pos/internal/catalog"
	"github.com/jmdelacruz/sarisari-pos/internal/catalog/view"
	"github.com/jmdelacruz/sarisari-pos/internal/events"
	"github.com/jmdelacruz/sarisari-pos/internal/logging"
	"github.com/jmdelacruz/sarisari-pos/internal/util"
)

type ItemHandler struct {
	View     *view.Catalog
	Store    catalog.Store
	Producer events.Producer
}

// GetItems serves the list screen: substring search, category filter, sorting
// and pagination over the in-memory mirror. sort=category returns sections
// instead of a flat page.
func (h *ItemHandler) GetItems(c echo.Context) error {
	query := c.QueryParam("query")

	var categoryIDs []int64
	for _, raw := range c.QueryParams()["category_id"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "category_id is not an integer")
		}
		categoryIDs = append(categoryIDs, id)
	}

	items := view.FilterItems(h.View.Items(), query, categoryIDs)

	sortField := c.QueryParam("sort")
	if sortField == "category" {
		sections := view.GroupByCategory(items, h.View.Categories())
		return c.JSON(http.StatusOK, map[string]any{"sections": sections})
	}
	items = view.SortItems(items, sortField, c.QueryParam("order") == "desc")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items[offset:end],
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + limit - 1) / limit,
			"has_prev":    page > 1,
			"has_next":    end < total,
		},
	})
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.get")

	id, err := pathID(c)
	if err != nil {
		return err
	}
	item, err := h.Store.GetItem(ctx, id)
	if err != nil {
		l.Warn("item_get_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.create")

	var req struct {
		Name       string  `json:"name"`
		Price      float64 `json:"price"`
		ImageURI   string  `json:"image_uri"`
		CategoryID int64   `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		l.Error("item_create_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.View.AddItem(ctx, req.Name, req.Price, req.ImageURI, req.CategoryID)
	if err != nil {
		l.Warn("item_create_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicCatalog, map[string]any{
		"type":   "item_created",
		"itemID": item.ID,
		"name":   item.Name,
	})
	l.Info("item_create_success", "itemID", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) PatchItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.patch")

	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req struct {
		Name       *string  `json:"name"`
		Price      *float64 `json:"price"`
		ImageURI   *string  `json:"image_uri"`
		CategoryID *int64   `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		l.Error("item_patch_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.View.UpdateItem(ctx, id, catalog.ItemFields{
		Name:       req.Name,
		Price:      req.Price,
		ImageURI:   req.ImageURI,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		l.Warn("item_patch_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicCatalog, map[string]any{
		"type":   "item_updated",
		"itemID": item.ID,
		"name":   item.Name,
	})
	l.Info("item_patch_success", "itemID", item.ID)
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.delete")

	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.View.DeleteItem(ctx, id); err != nil {
		l.Warn("item_delete_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicCatalog, map[string]any{
		"type":   "item_deleted",
		"itemID": id,
	})
	l.Info("item_delete_success", "itemID", id)
	return c.NoContent(http.StatusNoContent)
}
