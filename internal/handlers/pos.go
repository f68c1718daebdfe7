package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmdelacruz/sarisari-pos/internal/catalog"
	"github.com/jmdelacruz/sarisari-pos/internal/events"
	"github.com/jmdelacruz/sarisari-pos/internal/logging"
	"github.com/jmdelacruz/sarisari-pos/internal/pos"
)

type POSHandler struct {
	Register *pos.Register
	Store    catalog.Store
	Producer events.Producer
}

func (h *POSHandler) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"lines": h.Register.Lines(),
		"total": h.Register.Total(),
	})
}

func (h *POSHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.add_to_cart")

	var req struct {
		ItemID int64 `json:"item_id"`
	}
	if err := c.Bind(&req); err != nil {
		l.Error("cart_add_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Store.GetItem(ctx, req.ItemID)
	if err != nil {
		l.Warn("cart_add_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}

	h.Register.AddLine(*item)
	return c.JSON(http.StatusOK, map[string]any{
		"lines": h.Register.Lines(),
		"total": h.Register.Total(),
	})
}

func (h *POSHandler) DecrementLine(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	h.Register.DecrementLine(id)
	return c.JSON(http.StatusOK, map[string]any{
		"lines": h.Register.Lines(),
		"total": h.Register.Total(),
	})
}

func (h *POSHandler) RemoveLine(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	h.Register.RemoveLine(id)
	return c.NoContent(http.StatusNoContent)
}

func (h *POSHandler) ClearCart(c echo.Context) error {
	h.Register.ClearCart()
	return c.NoContent(http.StatusNoContent)
}

func (h *POSHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.checkout")

	var req struct {
		Payment float64 `json:"payment"`
	}
	if err := c.Bind(&req); err != nil {
		l.Error("checkout_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	tx, err := h.Register.Checkout(req.Payment)
	if err != nil {
		l.Warn("checkout_failed", "status", domainStatus(err), "error", err)
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicPOS, map[string]any{
		"type":          "transaction_recorded",
		"transactionID": tx.ID,
		"total":         tx.Total,
		"change":        tx.Change,
	})
	l.Info("checkout_success", "transactionID", tx.ID, "total", tx.Total)
	return c.JSON(http.StatusCreated, tx)
}

func (h *POSHandler) GetTransactions(c echo.Context) error {
	descending := c.QueryParam("order") != "asc"
	return c.JSON(http.StatusOK, h.Register.History(descending))
}
