package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KNICEX/candlekeeper/internal/service/quote"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchQuote(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"chart":{"result":[{"meta":{"symbol":"AAPL","regularMarketPrice":202,"chartPreviousClose":200}}],"error":null}}`)

	q, err := New(WithBaseURL(srv.URL)).FetchQuote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(202).Equal(q.Price))
	require.True(t, q.Change24h.Valid)
	assert.True(t, decimal.NewFromInt(1).Equal(q.Change24h.Decimal), q.Change24h.Decimal.String())
	assert.Equal(t, Name, q.Source)
}

func TestClient_FetchQuote_FallsBackToPreviousClose(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"chart":{"result":[{"meta":{"regularMarketPrice":90,"previousClose":100}}],"error":null}}`)

	q, err := New(WithBaseURL(srv.URL)).FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, q.Change24h.Valid)
	assert.True(t, decimal.NewFromInt(-10).Equal(q.Change24h.Decimal))
}

func TestClient_FetchQuote_NoPreviousClose(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"chart":{"result":[{"meta":{"regularMarketPrice":90}}],"error":null}}`)

	q, err := New(WithBaseURL(srv.URL)).FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.False(t, q.Change24h.Valid)
}

func TestClient_FetchQuote_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, quote.ErrSymbolUnresolved},
		{"error body", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`, quote.ErrSymbolUnresolved},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, quote.ErrSymbolUnresolved},
		{"no price", http.StatusOK, `{"chart":{"result":[{"meta":{}}],"error":null}}`, quote.ErrMalformedResponse},
		{"garbage", http.StatusOK, `not json`, quote.ErrMalformedResponse},
		{"too many requests", http.StatusTooManyRequests, ``, quote.ErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, ``, quote.ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body)
			_, err := New(WithBaseURL(srv.URL)).FetchQuote(context.Background(), "AAPL")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
