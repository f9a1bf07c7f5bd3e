package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "kassa/internal/errors"
	"kassa/internal/external"
	"kassa/internal/indicators"
	"kassa/internal/models"
)

const (
	DefaultSignalInterval = "1h"
	DefaultSignalLimit    = 100
	MaxSignalLimit        = 500
)

// SignalService computes a stateless indicator snapshot per request. Nothing
// is cached or stored between calls.
type SignalService struct {
	bars BarSource
}

func NewSignalService(bars BarSource) *SignalService {
	return &SignalService{bars: bars}
}

func (s *SignalService) GetSignals(ctx context.Context, symbol, interval string, limit int) (*models.SignalReport, error) {
	symbol = strings.ToUpper(symbol)

	if interval == "" {
		interval = DefaultSignalInterval
	}
	if limit <= 0 {
		limit = DefaultSignalLimit
	}
	if limit > MaxSignalLimit {
		limit = MaxSignalLimit
	}
	if limit < indicators.MinBars {
		limit = indicators.MinBars
	}

	bars, err := s.bars.Klines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	if len(bars) < indicators.MinBars {
		return nil, apperrors.NewValidation(
			fmt.Sprintf("not enough market data for %s: need at least %d bars, got %d",
				symbol, indicators.MinBars, len(bars)))
	}

	closes := external.Closes(bars)
	last := len(closes) - 1

	rsi := indicators.RSI(closes, indicators.DefaultRSIPeriod)
	macdLine, signalLine, histogram := indicators.MACD(closes,
		indicators.DefaultMACDFast, indicators.DefaultMACDSlow, indicators.DefaultMACDSignal)
	upper, middle, lower := indicators.Bollinger(closes,
		indicators.DefaultBollingerPeriod, indicators.DefaultBollingerStdDev)

	hints := indicators.DeriveHints(closes)
	signals := make([]models.TradingHint, len(hints))
	for i, hint := range hints {
		signals[i] = models.TradingHint{
			Action:    hint.Action,
			Indicator: hint.Indicator,
			Reason:    hint.Reason,
		}
	}

	return &models.SignalReport{
		Symbol:   symbol,
		Interval: interval,
		Close:    closes[last],
		RSI:      rsi[last],
		MACD: models.MACDValues{
			MACD:      macdLine[last],
			Signal:    signalLine[last],
			Histogram: histogram[last],
		},
		Bollinger: models.BollingerBand{
			Upper:  upper[last],
			Middle: middle[last],
			Lower:  lower[last],
		},
		Signals:   signals,
		Generated: time.Now().UTC(),
	}, nil
}
