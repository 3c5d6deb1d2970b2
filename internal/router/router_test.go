package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/bryan1993-HA/domovra-addons/internal/config"
	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/infra"
	"github.com/bryan1993-HA/domovra-addons/internal/retention"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// api drives the engine in-process.
type api struct {
	t *testing.T
	r *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := infra.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{Env: "test"}
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	r := New(cfg, db, nil, Options{
		Retention: config.StaticRetention(retention.DefaultPolicy()),
		Clock:     func() time.Time { return now },
	})
	return &api{t: t, r: r}
}

func (a *api) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *api) decode(w *httptest.ResponseRecorder, dest any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func (a *api) created(path string, body any) uint {
	a.t.Helper()
	w := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.CreatedResponse
	a.decode(w, &resp)
	return resp.ID
}

func TestHealth_WithoutRedis(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"db":"connected","redis":"disabled"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestPantryFlow(t *testing.T) {
	a := newAPI(t)

	pid := a.created("/api/products", map[string]any{"name": "Yaourt", "min_qty": 4})
	fridge := a.created("/api/locations", map[string]any{"name": "Frigo"})

	// idempotent create answers 200 with the existing id
	w := a.do(http.MethodPost, "/api/products", map[string]any{"name": "Yaourt"})
	require.Equal(t, http.StatusOK, w.Code)
	var again dto.CreatedResponse
	a.decode(w, &again)
	assert.True(t, again.Existing)
	assert.Equal(t, pid, again.ID)

	for _, bb := range []string{"2025-03-01", "2025-01-12"} {
		w = a.do(http.MethodPost, "/api/lots", map[string]any{"product_id": pid, "location_id": fridge, "qty": 2, "best_before": bb})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = a.do(http.MethodGet, "/api/lots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lots []dto.LotResponse
	a.decode(w, &lots)
	require.Len(t, lots, 2)
	assert.Equal(t, "2025-01-12", *lots[0].BestBefore)
	assert.Equal(t, "red", lots[0].Status)

	w = a.do(http.MethodPost, "/api/products/"+itoa(pid)+"/consume", map[string]any{"qty": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var fifo dto.FIFOResponse
	a.decode(w, &fifo)
	require.Len(t, fifo.Operations, 2)
	assert.Equal(t, lots[0].ID, fifo.Operations[0].LotID)
	assert.True(t, fifo.Operations[0].Deleted)
	assert.Equal(t, 1.0, fifo.TotalAfter)

	w = a.do(http.MethodGet, "/api/products/low-stock", nil)
	var low []dto.ProductStatsResponse
	a.decode(w, &low)
	require.Len(t, low, 1)
	assert.Equal(t, -3.0, *low[0].Delta)

	w = a.do(http.MethodGet, "/api/ha/summary", nil)
	var sum dto.HASummaryResponse
	a.decode(w, &sum)
	assert.Equal(t, int64(1), sum.Products)
	assert.Equal(t, int64(1), sum.Lots)
	assert.Equal(t, 1, sum.LowStock)
	assert.Equal(t, 30, sum.Thresholds.WarningDays)

	w = a.do(http.MethodGet, "/api/products/"+itoa(pid)+"/movements?type=OUT", nil)
	var mvs dto.MovementListResponse
	a.decode(w, &mvs)
	assert.Equal(t, int64(2), mvs.Total)

	w = a.do(http.MethodGet, "/api/reconcile", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = a.do(http.MethodGet, "/api/journal?limit=2", nil)
	var events []dto.EventResponse
	a.decode(w, &events)
	assert.Len(t, events, 2)
}

func TestErrorsOverHTTP(t *testing.T) {
	a := newAPI(t)
	pid := a.created("/api/products", map[string]any{"name": "Glace"})
	freezer := a.created("/api/locations", map[string]any{"name": "Congélateur", "is_freezer": true})
	fridge := a.created("/api/locations", map[string]any{"name": "Frigo"})
	a.do(http.MethodPost, "/api/lots", map[string]any{"product_id": pid, "location_id": freezer, "qty": 1})

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/products/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/products/abc", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		a.do(http.MethodPost, "/api/lots", map[string]any{"product_id": pid, "location_id": fridge, "qty": -1}).Code)
	assert.Equal(t, http.StatusConflict,
		a.do(http.MethodPost, "/api/locations/"+itoa(freezer)+"/move", map[string]any{"to_location_id": fridge}).Code)
	assert.Equal(t, http.StatusConflict,
		a.do(http.MethodDelete, "/api/locations/"+itoa(freezer)+"?move_to="+itoa(fridge), nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		a.do(http.MethodDelete, "/api/locations/"+itoa(freezer)+"?move_to=x", nil).Code)

	other := a.created("/api/products", map[string]any{"name": "Sorbet"})
	assert.Equal(t, http.StatusNotFound,
		a.do(http.MethodPost, "/api/products/"+itoa(other)+"/consume", map[string]any{"qty": 1}).Code)

	w := a.do(http.MethodDelete, "/api/locations/"+itoa(freezer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var del dto.DeleteLocationResponse
	a.decode(w, &del)
	assert.Equal(t, int64(1), del.DeletedLots)
}

func TestShoppingPDF(t *testing.T) {
	a := newAPI(t)
	a.created("/api/products", map[string]any{"name": "Café"})

	w := a.do(http.MethodGet, "/api/shopping?show=outofstock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ShoppingListResponse
	a.decode(w, &list)
	require.Len(t, list.Items, 1)

	w = a.do(http.MethodGet, "/api/shopping.pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	assert.Equal(t, http.StatusUnprocessableEntity, a.do(http.MethodGet, "/api/shopping?show=never", nil).Code)
}

func TestRetentionSettings(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/api/settings/retention", nil)
	assert.JSONEq(t, `{"warning_days":30,"critical_days":14}`, w.Body.String())
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
