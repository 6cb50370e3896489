package ranking

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NikolasHofmann/active-trading/internal/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubGateway serves per-ticker canned bars and counts History calls.
type stubGateway struct {
	bars  map[string][]marketdata.Bar
	errs  map[string]error
	calls map[string]int
}

func (s *stubGateway) LatestPrice(context.Context, string) (float64, error) {
	panic("not used")
}

func (s *stubGateway) History(_ context.Context, ticker string, _, _ time.Time) ([]marketdata.Bar, error) {
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[ticker]++
	if err, ok := s.errs[ticker]; ok {
		return nil, err
	}
	bars, ok := s.bars[ticker]
	if !ok || len(bars) == 0 {
		return nil, marketdata.ErrNoData
	}
	return bars, nil
}

func twoBars(prevHigh, latestClose float64) []marketdata.Bar {
	return []marketdata.Bar{
		{High: prevHigh, Close: prevHigh},
		{High: latestClose, Close: latestClose},
	}
}

func TestRankSortsAscending(t *testing.T) {
	gw := &stubGateway{bars: map[string][]marketdata.Bar{
		"UPP": twoBars(100, 105), // +5.00%
		"DWN": twoBars(100, 97),  // -3.00%
		"FLT": twoBars(100, 100), // 0.00%
	}}
	r := New(gw, 10, zap.NewNop())

	results, err := r.Rank(context.Background(), []string{"UPP", "DWN", "FLT"})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"DWN", "FLT", "UPP"},
		[]string{results[0].Ticker, results[1].Ticker, results[2].Ticker})
	assert.InDelta(t, -3.0, results[0].PercentDiff, 1e-9)
	assert.InDelta(t, 0.0, results[1].PercentDiff, 1e-9)
	assert.InDelta(t, 5.0, results[2].PercentDiff, 1e-9)
}

func TestRankSkipsZeroHigh(t *testing.T) {
	gw := &stubGateway{bars: map[string][]marketdata.Bar{
		"ZERO": twoBars(0, 10),
		"GOOD": twoBars(100, 103),
	}}
	r := New(gw, 10, zap.NewNop())

	results, err := r.Rank(context.Background(), []string{"ZERO", "GOOD"})

	require.NoError(t, err, "a bad ticker must not abort the batch")
	require.Len(t, results, 1)
	assert.Equal(t, "GOOD", results[0].Ticker)
}

func TestRankSkipsGatewayFailure(t *testing.T) {
	gw := &stubGateway{
		bars: map[string][]marketdata.Bar{"GOOD": twoBars(100, 99)},
		errs: map[string]error{"BROKEN": errors.New("gateway down")},
	}
	r := New(gw, 10, zap.NewNop())

	results, err := r.Rank(context.Background(), []string{"BROKEN", "GOOD"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "GOOD", results[0].Ticker)
}

func TestRankWalkbackIsBounded(t *testing.T) {
	// One bar per window, forever: the walkback must give up.
	gw := &stubGateway{bars: map[string][]marketdata.Bar{
		"THIN": {{High: 100, Close: 100}},
	}}
	r := New(gw, 10, zap.NewNop())

	results, err := r.Rank(context.Background(), []string{"THIN"})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 10, gw.calls["THIN"])
}

func TestReadTickers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.csv")
	raw := "Ticker,Note\nAAPL,keep\n,blank\nMSFT,keep\nAAPL,duplicate\nTSLA,keep\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	tickers, err := ReadTickers(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, tickers)
}

func TestReadTickersMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.csv")
	require.NoError(t, os.WriteFile(path, []byte("Symbol\nAAPL\n"), 0o644))

	_, err := ReadTickers(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Ticker column")
}

func TestWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sorted_tickers.csv")
	results := []Result{
		{Ticker: "DWN", CurrentPrice: 96.999, PreviousHigh: 100, PercentDiff: -3.001},
		{Ticker: "UPP", CurrentPrice: 105, PreviousHigh: 100, PercentDiff: 5},
	}

	require.NoError(t, WriteResults(path, results))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Ticker,Current Price,Yesterday's High,Percent Diff From High\n"+
			"DWN,97.00,100.00,-3.00\n"+
			"UPP,105.00,100.00,5.00\n",
		string(content))
}
