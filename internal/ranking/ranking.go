// Package ranking compares each ticker's latest close to the prior
// trading day's high and sorts the batch by the deviation, ascending.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/NikolasHofmann/active-trading/internal/marketdata"
	"go.uber.org/zap"
)

// historyWindowDays is the fetch window per attempt, wide enough to span a
// regular week with its weekend.
const historyWindowDays = 7

// Result is one ranked ticker.
type Result struct {
	Ticker       string
	CurrentPrice float64
	PreviousHigh float64
	PercentDiff  float64
}

// Ranker scans a batch of tickers through the market data gateway.
type Ranker struct {
	gateway     marketdata.Gateway
	maxWalkback int
	logger      *zap.Logger
	now         func() time.Time
}

// New creates a ranker. maxWalkback bounds how many days the end date is
// walked backward when a window holds fewer than two bars (long weekends,
// holiday runs).
func New(gateway marketdata.Gateway, maxWalkback int, logger *zap.Logger) *Ranker {
	return &Ranker{
		gateway:     gateway,
		maxWalkback: maxWalkback,
		logger:      logger,
		now:         time.Now,
	}
}

// Rank processes every ticker independently and returns one result per
// ticker that yielded two usable bars, sorted ascending by percent
// deviation from the previous high. Tickers with missing or unusable data
// are logged and skipped; they never abort the batch.
func (r *Ranker) Rank(ctx context.Context, tickers []string) ([]Result, error) {
	var results []Result
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		latest, previous, err := r.lastTwoBars(ctx, ticker)
		if err != nil {
			r.logger.Warn("skipping ticker: no usable bars",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
			continue
		}

		currentPrice := latest.Close
		previousHigh := previous.High
		if math.IsNaN(currentPrice) || math.IsNaN(previousHigh) || previousHigh == 0 {
			r.logger.Warn("skipping ticker: close or high missing/zero",
				zap.String("ticker", ticker),
				zap.Float64("close", currentPrice),
				zap.Float64("previous_high", previousHigh),
			)
			continue
		}

		results = append(results, Result{
			Ticker:       ticker,
			CurrentPrice: currentPrice,
			PreviousHigh: previousHigh,
			PercentDiff:  (currentPrice - previousHigh) / previousHigh * 100,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].PercentDiff < results[j].PercentDiff
	})
	return results, nil
}

// lastTwoBars fetches the two most recent trading-day bars, walking the
// end date backward up to the walkback bound until a window yields at
// least two.
func (r *Ranker) lastTwoBars(ctx context.Context, ticker string) (latest, previous marketdata.Bar, err error) {
	end := r.now()
	for i := 0; i < r.maxWalkback; i++ {
		bars, err := r.gateway.History(ctx, ticker, end.AddDate(0, 0, -historyWindowDays), end)
		if err != nil && !errors.Is(err, marketdata.ErrNoData) {
			return marketdata.Bar{}, marketdata.Bar{}, err
		}
		if len(bars) >= 2 {
			return bars[len(bars)-1], bars[len(bars)-2], nil
		}
		end = end.AddDate(0, 0, -1)
	}
	return marketdata.Bar{}, marketdata.Bar{},
		fmt.Errorf("fewer than two bars within %d walkback days: %w", r.maxWalkback, marketdata.ErrNoData)
}
