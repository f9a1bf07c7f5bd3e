package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kassa/internal/errors"
)

func TestMarketDataClientParsesKlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		payload := [][]interface{}{
			{int64(1700000000000), "100.5", "110.0", "99.0", "105.25", "12.5", int64(1700003599999), "0", 0, "0", "0", "0"},
			{int64(1700003600000), "105.25", "108.0", "104.0", "107.0", "8.1", int64(1700007199999), "0", 0, "0", "0", "0"},
		}
		json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewMarketDataClient(MarketDataConfig{BaseURL: server.URL})

	bars, err := client.Klines(context.Background(), "BTCUSDT", "1h", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.UnixMilli(1700000000000), bars[0].OpenTime)
	assert.InDelta(t, 105.25, bars[0].Close, 1e-9)
	assert.InDelta(t, 12.5, bars[0].Volume, 1e-9)
	assert.Equal(t, []float64{105.25, 107.0}, Closes(bars))
}

func TestMarketDataClientUnknownSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer server.Close()

	client := NewMarketDataClient(MarketDataConfig{BaseURL: server.URL})

	_, err := client.Klines(context.Background(), "NOPE", "1h", 10)
	assert.ErrorIs(t, err, apperrors.ErrSymbolNotFound)
}

func TestWebhookClientDelivers(t *testing.T) {
	received := make(chan TicketWebhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body TicketWebhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		received <- body
	}))
	defer server.Close()

	client := NewWebhookClient(WebhookConfig{URL: server.URL, Timeout: 5 * time.Second})
	client.NotifyAsync("ticket_purchased", map[string]string{"ticket_id": "t-1"})

	select {
	case body := <-received:
		assert.Equal(t, "ticket_purchased", body.EventType)
		assert.JSONEq(t, `{"ticket_id":"t-1"}`, string(body.Ticket))
	case <-time.After(3 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestWebhookClientDisabledWithoutURL(t *testing.T) {
	client := NewWebhookClient(WebhookConfig{})

	assert.False(t, client.Enabled())
	// Must be a no-op, not a panic
	client.NotifyAsync("ticket_purchased", map[string]string{"ticket_id": "t-1"})
}
