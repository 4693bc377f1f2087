package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/KNICEX/candlekeeper/internal/repo/repotest"
	"github.com/KNICEX/candlekeeper/internal/service/monitor"
	"github.com/KNICEX/candlekeeper/internal/service/notification"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
	"github.com/KNICEX/candlekeeper/internal/service/tracker"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(t *testing.T) (*gin.Engine, *tracker.Service, *quote.MockSource) {
	t.Helper()
	repos := repotest.NewRepos(t)
	crypto := quote.NewMockSource("coingecko")
	fetcher := quote.NewFetcher(map[entity.AssetType]quote.Source{entity.AssetCrypto: crypto})
	refresher := monitor.NewWatchlistRefresher(repos.Settings, repos.Watchlist, fetcher, notification.NewConsoleMessenger(&bytes.Buffer{}))
	svc := tracker.NewService(repos.Settings, repos.Watchlist, repos.Alerts, repos.Trades, fetcher, refresher)
	return NewRouter(NewHandler(svc)), svc, crypto
}

func get(t *testing.T, r *gin.Engine, url string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func TestHealth(t *testing.T) {
	r, _, _ := setupRouter(t)
	w, body := get(t, r, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestWatchlist(t *testing.T) {
	r, svc, _ := setupRouter(t)
	_, err := svc.AddWatchlistEntry(context.Background(), "bitcoin", "crypto")
	require.NoError(t, err)
	_, err = svc.AddWatchlistEntry(context.Background(), "aapl", "stock")
	require.NoError(t, err)

	w, body := get(t, r, "/api/watchlist")
	require.Equal(t, http.StatusOK, w.Code)
	entries := body["entries"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "bitcoin", entries[0].(map[string]any)["symbol"])
	assert.Equal(t, "AAPL", entries[1].(map[string]any)["symbol"])
	assert.Equal(t, "stock", entries[1].(map[string]any)["asset_type"])
}

func TestAlerts(t *testing.T) {
	r, svc, _ := setupRouter(t)
	_, err := svc.AddAlert(context.Background(), tracker.AddAlertReq{
		OwnerID: "u1", Symbol: "bitcoin", AssetType: "crypto", Target: 50000.5, Direction: "above",
	})
	require.NoError(t, err)

	w, _ := get(t, r, "/api/alerts")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := get(t, r, "/api/alerts?owner_id=u1")
	require.Equal(t, http.StatusOK, w.Code)
	alerts := body["alerts"].([]any)
	require.Len(t, alerts, 1)
	a := alerts[0].(map[string]any)
	assert.Equal(t, "50000.5", a["target_price"])
	assert.Equal(t, "above", a["direction"])
	assert.Equal(t, false, a["paused"])

	_, body = get(t, r, "/api/alerts?owner_id=u2")
	assert.Empty(t, body["alerts"])
}

func TestQuote(t *testing.T) {
	r, _, crypto := setupRouter(t)
	crypto.SetPrice("bitcoin", 65000.5, -2)

	w, body := get(t, r, "/api/quote?symbol=Bitcoin&asset_type=crypto")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["outcome"])
	assert.Equal(t, "65000.5", body["price"])
	assert.Equal(t, "-2", body["change_24h"])

	w, body = get(t, r, "/api/quote?symbol=nope")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "symbol_unresolved", body["outcome"])
	assert.NotEmpty(t, body["error"])

	w, _ = get(t, r, "/api/quote?symbol=bitcoin&asset_type=bond")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrades(t *testing.T) {
	r, svc, _ := setupRouter(t)
	_, err := svc.AddTrade(context.Background(), tracker.AddTradeReq{
		OwnerID: "u1", Symbol: "btc", Entry: 64000, StopLoss: 62000.5, TakeProfit: 70000, Notes: "retest",
	})
	require.NoError(t, err)
	_, err = svc.AddTrade(context.Background(), tracker.AddTradeReq{
		OwnerID: "u2", Symbol: "aapl", Entry: 190, StopLoss: 185, TakeProfit: 205,
	})
	require.NoError(t, err)

	w, body := get(t, r, "/api/trades")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["trades"], 2)

	w, body = get(t, r, "/api/trades?owner_id=u1")
	require.Equal(t, http.StatusOK, w.Code)
	trades := body["trades"].([]any)
	require.Len(t, trades, 1)
	tr := trades[0].(map[string]any)
	assert.Equal(t, "BTC", tr["symbol"])
	assert.Equal(t, "62000.5", tr["stop_loss"])
	assert.Equal(t, "retest", tr["notes"])
}
