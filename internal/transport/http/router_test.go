package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/jmdelacruz/sarisari-pos/internal/auth"
	"github.com/jmdelacruz/sarisari-pos/internal/catalog/kvstore"
	"github.com/jmdelacruz/sarisari-pos/internal/catalog/view"
	"github.com/jmdelacruz/sarisari-pos/internal/events"
	"github.com/jmdelacruz/sarisari-pos/internal/handlers"
	"github.com/jmdelacruz/sarisari-pos/internal/minigame"
	"github.com/jmdelacruz/sarisari-pos/internal/models"
	"github.com/jmdelacruz/sarisari-pos/internal/pos"
	"github.com/jmdelacruz/sarisari-pos/internal/settings"
)

type testServer struct {
	e    *echo.Echo
	view *view.Catalog
}

func newTestServer(t *testing.T, owner echo.MiddlewareFunc) *testServer {
	t.Helper()
	dataDir := t.TempDir()

	store, err := kvstore.Open(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	v := view.New(store)
	require.NoError(t, v.Refresh(context.Background()))

	register, err := pos.NewRegister(dataDir, 5)
	require.NoError(t, err)

	leaderboard, err := minigame.NewLeaderboard(dataDir, 5)
	require.NoError(t, err)

	prefs, err := settings.Open(dataDir)
	require.NoError(t, err)

	producer := events.New(nil)

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:     &handlers.AuthHandler{},
		CategoryHandler: &handlers.CategoryHandler{View: v, Producer: producer},
		ItemHandler:     &handlers.ItemHandler{View: v, Store: store, Producer: producer},
		DeletedHandler:  &handlers.DeletedHandler{View: v, Store: store, Producer: producer},
		POSHandler:      &handlers.POSHandler{Register: register, Store: store, Producer: producer},
		GameHandler:     &handlers.GameHandler{View: v, Leaderboard: leaderboard, Rounds: 3},
		SettingsHandler: &handlers.SettingsHandler{Settings: prefs},
		BackupHandler:   &handlers.BackupHandler{DataDir: dataDir},
		Owner:           owner,
	})
	return &testServer{e: e, view: v}
}

func (s *testServer) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func TestCategoryLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := s.do(t, http.MethodPost, "/api/v1/categories", `{"name":"School Supplies"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "School Supplies", body["name"])

	rec, _ = s.do(t, http.MethodPost, "/api/v1/categories", `{"name":"school supplies"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/categories", `{"name":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	id := int64(body["id"].(float64))
	rec, _ = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/categories/%d", id), `{"name":"Supplies"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", id), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/v1/categories/9999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	cats := s.view.Categories()

	rec, body := s.do(t, http.MethodPost, "/api/v1/items",
		fmt.Sprintf(`{"name":"Canned Tuna","price":35,"category_id":%d}`, cats[0].ID))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := int64(body["id"].(float64))
	require.Positive(t, id)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/items",
		fmt.Sprintf(`{"name":"Free Tuna","price":-1,"category_id":%d}`, cats[0].ID))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/items", `{"name":"Orphan","price":5,"category_id":9999}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/items/%d", id), `{"price":38.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 38.5, body["price"])
	require.Equal(t, "Canned Tuna", body["name"])

	rec, body = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/items/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 38.5, body["price"])

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/items/%d", id), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/items/%d", id), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletedRestoreFlow(t *testing.T) {
	s := newTestServer(t, nil)
	cats := s.view.Categories()

	_, body := s.do(t, http.MethodPost, "/api/v1/items",
		fmt.Sprintf(`{"name":"Vinegar","price":18,"category_id":%d}`, cats[0].ID))
	id := int64(body["id"].(float64))

	rec, _ := s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/items/%d", id), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deleted", nil)
	rec2 := httptest.NewRecorder()
	s.e.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)
	var held []models.DeletedItem
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &held))
	require.Len(t, held, 1)
	require.Equal(t, id, held[0].ID)

	rec, body = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/deleted/%d/restore", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Vinegar", body["name"])

	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/items/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestItemListingQueries(t *testing.T) {
	s := newTestServer(t, nil)
	cats := s.view.Categories()

	for i, tc := range []struct {
		name  string
		price float64
		cat   int64
	}{
		{"Rice", 50, cats[0].ID},
		{"Rice Cake", 8, cats[1].ID},
		{"Cola", 25, cats[2].ID},
	} {
		rec, _ := s.do(t, http.MethodPost, "/api/v1/items",
			fmt.Sprintf(`{"name":%q,"price":%v,"category_id":%d}`, tc.name, tc.price, tc.cat))
		require.Equal(t, http.StatusCreated, rec.Code, "item %d", i)
	}

	rec, body := s.do(t, http.MethodGet, "/api/v1/items?query=rice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["data"], 2)

	rec, body = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/items?category_id=%d", cats[2].ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["data"], 1)

	rec, body = s.do(t, http.MethodGet, "/api/v1/items?sort=price&order=desc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].([]any)
	require.Equal(t, "Rice", data[0].(map[string]any)["name"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/items?sort=category", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["sections"], 3)

	rec, body = s.do(t, http.MethodGet, "/api/v1/items?page=2&size=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["data"], 1)
	meta := body["meta"].(map[string]any)
	require.Equal(t, 3.0, meta["total"])
	require.Equal(t, false, meta["has_next"])
	require.Equal(t, true, meta["has_prev"])
}

func TestCartAndCheckout(t *testing.T) {
	s := newTestServer(t, nil)
	cats := s.view.Categories()

	_, body := s.do(t, http.MethodPost, "/api/v1/items",
		fmt.Sprintf(`{"name":"Soap","price":10,"category_id":%d}`, cats[0].ID))
	id := int64(body["id"].(float64))

	rec, body := s.do(t, http.MethodPost, "/api/v1/cart", fmt.Sprintf(`{"item_id":%d}`, id))
	require.Equal(t, http.StatusOK, rec.Code)
	rec, body = s.do(t, http.MethodPost, "/api/v1/cart", fmt.Sprintf(`{"item_id":%d}`, id))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 20.0, body["total"])

	rec, _ = s.do(t, http.MethodPost, "/api/v1/cart", `{"item_id":9999}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/checkout", `{"payment":15}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodPost, "/api/v1/checkout", `{"payment":50}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 20.0, body["total"])
	require.Equal(t, 30.0, body["change"])

	rec, _ = s.do(t, http.MethodPost, "/api/v1/checkout", `{"payment":50}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	rec2 := httptest.NewRecorder()
	s.e.ServeHTTP(rec2, req)
	var history []models.Transaction
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &history))
	require.Len(t, history, 1)
}

func TestGameFlow(t *testing.T) {
	s := newTestServer(t, nil)
	cats := s.view.Categories()

	for i, cat := range cats[:2] {
		rec, _ := s.do(t, http.MethodPost, "/api/v1/items",
			fmt.Sprintf(`{"name":"Item %d","price":5,"category_id":%d}`, i, cat.ID))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, body := s.do(t, http.MethodPost, "/api/v1/game", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	gameID := body["id"].(string)
	require.Equal(t, 1.0, body["round"])
	require.Equal(t, 3.0, body["rounds"])

	for round := 1; round <= 3; round++ {
		rec, body = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/game/%s/answer", gameID), `{"option":"Food"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, body = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/game/%s/next", gameID), "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Equal(t, true, body["game_over"])
	require.NotNil(t, body["leaderboard"])

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/game/%s/next", gameID), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartGameWithoutItems(t *testing.T) {
	s := newTestServer(t, nil)
	rec, _ := s.do(t, http.MethodPost, "/api/v1/game", "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := s.do(t, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "blue", body["color_scheme"])

	rec, body = s.do(t, http.MethodPut, "/api/v1/settings", `{"color_scheme":"purple"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "purple", body["color_scheme"])

	rec, _ = s.do(t, http.MethodPut, "/api/v1/settings", `{"color_scheme":"mauve"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOwnerRoutesRequireAuth(t *testing.T) {
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	svc := auth.NewService(hash, []byte("test-secret"))
	s := newTestServer(t, svc.Middleware())

	rec, _ := s.do(t, http.MethodPost, "/api/v1/categories", `{"name":"Blocked"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Read-only routes stay open.
	rec, _ = s.do(t, http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	token, err := svc.Login("secret")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader(`{"name":"Allowed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec2 := httptest.NewRecorder()
	s.e.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusCreated, rec2.Code)
}
