package handlers

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jmdelacruz/sarisari-pos/internal/catalog/view"
	"github.com/jmdelacruz/sarisari-pos/internal/logging"
	"github.com/jmdelacruz/sarisari-pos/internal/minigame"
)

type GameHandler struct {
	View        *view.Catalog
	Leaderboard *minigame.Leaderboard
	Rounds      int

	mu       sync.Mutex
	sessions map[string]*minigame.Game
}

func (h *GameHandler) session(id string) *minigame.Game {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[id]
}

func (h *GameHandler) StartGame(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "game.start")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	game, err := minigame.New(h.View.Items(), h.View.Categories(), h.Rounds, rng)
	if err != nil {
		l.Warn("game_start_failed", "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	id := uuid.NewString()
	h.mu.Lock()
	if h.sessions == nil {
		h.sessions = make(map[string]*minigame.Game)
	}
	h.sessions[id] = game
	h.mu.Unlock()

	l.Info("game_start_success", "gameID", id)
	return c.JSON(http.StatusCreated, map[string]any{
		"id":     id,
		"round":  game.Round(),
		"rounds": game.Rounds(),
		"score":  game.Score(),
		"quiz":   game.Current(),
	})
}

func (h *GameHandler) Answer(c echo.Context) error {
	game := h.session(c.Param("id"))
	if game == nil {
		return echo.NewHTTPError(http.StatusNotFound, "game not found")
	}

	var req struct {
		Option string `json:"option"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	h.mu.Lock()
	correct, answer, err := game.Answer(req.Option)
	h.mu.Unlock()
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"correct": correct,
		"answer":  answer,
		"score":   game.Score(),
	})
}

func (h *GameHandler) Next(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "game.next")

	id := c.Param("id")
	game := h.session(id)
	if game == nil {
		return echo.NewHTTPError(http.StatusNotFound, "game not found")
	}

	h.mu.Lock()
	err := game.Next()
	over := game.Over()
	h.mu.Unlock()
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	if over {
		if err := h.Leaderboard.Add(game.Score()); err != nil {
			l.Error("leaderboard_save_failed", "error", err)
		}
		h.mu.Lock()
		delete(h.sessions, id)
		h.mu.Unlock()

		l.Info("game_over", "gameID", id, "score", game.Score())
		return c.JSON(http.StatusOK, map[string]any{
			"game_over":   true,
			"score":       game.Score(),
			"leaderboard": h.Leaderboard.Scores(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"round":  game.Round(),
		"rounds": game.Rounds(),
		"score":  game.Score(),
		"quiz":   game.Current(),
	})
}

func (h *GameHandler) GetLeaderboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Leaderboard.Scores())
}
