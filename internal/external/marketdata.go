package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "kassa/internal/errors"
)

// MarketDataClient fetches candlestick data from a Binance-compatible
// /api/v3/klines endpoint. The client holds no state between calls.
type MarketDataClient struct {
	baseURL    string
	httpClient *http.Client
}

type MarketDataConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Bar is a single candlestick.
type Bar struct {
	OpenTime  time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime time.Time
}

func NewMarketDataClient(cfg MarketDataConfig) *MarketDataClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &MarketDataClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Klines returns up to limit bars for the symbol at the given interval,
// oldest first. An HTTP 400 from the exchange is reported as an unknown
// symbol.
func (mc *MarketDataClient) Klines(ctx context.Context, symbol, interval string, limit int) ([]Bar, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	endpoint := mc.baseURL + "/api/v3/klines?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := mc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market data request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, apperrors.ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data returned status %d", resp.StatusCode)
	}

	// Klines come as arrays of mixed numbers and decimal strings
	var raw [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode klines: %w", err)
	}

	bars := make([]Bar, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 7 {
			return nil, fmt.Errorf("malformed kline entry: %d fields", len(entry))
		}

		var openMillis, closeMillis int64
		if err := json.Unmarshal(entry[0], &openMillis); err != nil {
			return nil, fmt.Errorf("malformed kline open time: %w", err)
		}
		if err := json.Unmarshal(entry[6], &closeMillis); err != nil {
			return nil, fmt.Errorf("malformed kline close time: %w", err)
		}

		bar := Bar{
			OpenTime:  time.UnixMilli(openMillis),
			CloseTime: time.UnixMilli(closeMillis),
		}

		fields := []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume}
		for i, dst := range fields {
			var s string
			if err := json.Unmarshal(entry[i+1], &s); err != nil {
				return nil, fmt.Errorf("malformed kline price field: %w", err)
			}
			value, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed kline price value: %w", err)
			}
			*dst = value
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

// Closes extracts the closing prices from a bar series.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}
