// Package sizing computes a buy/stop/shares recommendation from the
// previous trading day's OHLC bar for a fixed risk budget.
package sizing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/NikolasHofmann/active-trading/internal/marketdata"
)

// ErrDegenerateBar is returned when the bar's high is not above its low,
// which would put the stop loss at or above the buy price. That is a
// data-quality problem, not a sizing result.
var ErrDegenerateBar = errors.New("sizing: stop loss not below buy price")

// Recommendation is the sizing output for one ticker.
type Recommendation struct {
	Bar          marketdata.Bar
	BuyPrice     float64
	StopLoss     float64
	RiskPerShare float64
	MinSellPrice float64
	MaxTotalRisk float64
	Shares       int
}

// Calculator derives recommendations from gateway history.
type Calculator struct {
	gateway      marketdata.Gateway
	maxTotalRisk float64
	lookbackDays int
	now          func() time.Time
}

// New creates a calculator with the given risk budget and calendar-day
// lookback (the lookback only needs to be long enough to cross weekends
// and holidays).
func New(gateway marketdata.Gateway, maxTotalRisk float64, lookbackDays int) *Calculator {
	return &Calculator{
		gateway:      gateway,
		maxTotalRisk: maxTotalRisk,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

// Plan fetches the most recent daily bar within the lookback window and
// sizes a position from it. An empty window is fatal for the invocation;
// there is no retry.
func (c *Calculator) Plan(ctx context.Context, ticker string) (Recommendation, error) {
	end := c.now()
	start := end.AddDate(0, 0, -c.lookbackDays)

	bars, err := c.gateway.History(ctx, ticker, start, end)
	if err != nil {
		return Recommendation{}, err
	}
	if len(bars) == 0 {
		return Recommendation{}, fmt.Errorf("history for %s: %w", ticker, marketdata.ErrNoData)
	}

	return FromBar(bars[len(bars)-1], c.maxTotalRisk)
}

// FromBar sizes a position from a single daily bar: buy a cent above the
// high, stop a cent below the low, shares bounded by the risk budget, and
// a 1:1 reward-to-risk minimum sell target.
func FromBar(bar marketdata.Bar, maxTotalRisk float64) (Recommendation, error) {
	buy := roundCents(bar.High + 0.01)
	stop := roundCents(bar.Low - 0.01)
	risk := roundCents(buy - stop)
	if risk <= 0 {
		return Recommendation{}, fmt.Errorf("%w: high %.2f, low %.2f", ErrDegenerateBar, bar.High, bar.Low)
	}

	return Recommendation{
		Bar:          bar,
		BuyPrice:     buy,
		StopLoss:     stop,
		RiskPerShare: risk,
		MinSellPrice: roundCents(buy + risk),
		MaxTotalRisk: maxTotalRisk,
		Shares:       int(math.Floor(maxTotalRisk / risk)),
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
