package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/routeforge/gateway/api"
	"github.com/routeforge/gateway/internal/budget"
	"github.com/routeforge/gateway/internal/cache"
	"github.com/routeforge/gateway/internal/complexity"
	"github.com/routeforge/gateway/internal/provider"
	"github.com/routeforge/gateway/internal/provider/simexec"
	"github.com/routeforge/gateway/internal/router"
	"github.com/routeforge/gateway/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestSystemHandler(t *testing.T) *SystemHandler {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cacheMgr, err := cache.NewManager(cache.DefaultConfig(), rdb, db, zap.NewNop())
	require.NoError(t, err)

	budgetStore, err := budget.NewStore(db, zap.NewNop())
	require.NoError(t, err)
	budgetCtl := budget.NewController(zap.NewNop(), budgetStore)
	budgetCtl.SetConfig(types.BudgetConfig{Level: types.BudgetLevelUser, EntityID: "u1", Period: types.BudgetPeriodMonthly, LimitUSD: 100, WarningThreshold: 0.8, Timezone: "UTC"})

	registry := provider.NewRegistry(zap.NewNop())
	registry.Register(types.ProviderConfig{
		ProviderID: "groq",
		Cost:       types.CostTable{InputPricePer1K: 0.0005, OutputPricePer1K: 0.001},
		Models:     []string{"llama3-8b"},
		Breaker:    types.BreakerConfig{FailureThreshold: 3},
		IsEnabled:  true,
		Status:     types.ProviderStatusActive,
		Tags:       []string{"fast", "cheap"},
	})

	r := router.New(complexity.New(complexity.DefaultConfig()), budgetCtl, cacheMgr, registry, simexec.New(), zap.NewNop())
	return NewSystemHandler(r, zap.NewNop())
}

func TestHandleStats_ReturnsProviderMetrics(t *testing.T) {
	h := newTestSystemHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	h.HandleStats(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.True(t, resp.Success)
}

func TestHandleBudgetSummary_ReturnsScopeUsage(t *testing.T) {
	h := newTestSystemHandler(t)

	body, _ := json.Marshal(api.BudgetSummaryRequest{UserID: "u1"})
	req := httptest.NewRequest(http.MethodPost, "/v1/budget/summary", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleBudgetSummary(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleCacheClear_Succeeds(t *testing.T) {
	h := newTestSystemHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/cache/clear", nil)
	h.HandleCacheClear(w, r)

	require.Equal(t, http.StatusOK, w.Code)
}
