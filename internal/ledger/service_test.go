package ledger

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubPrices is a canned PriceSource for tests.
type stubPrices struct {
	prices map[string]float64
	err    error
}

func (s stubPrices) LatestPrice(_ context.Context, ticker string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	price, ok := s.prices[ticker]
	if !ok {
		return 0, errors.New("no quote")
	}
	return price, nil
}

func newTestService(t *testing.T, prices PriceSource) (*Service, *Store) {
	t.Helper()
	st := tempStore(t)
	return NewService(st, prices, zap.NewNop()), st
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestAddAssignsSequentialIDs(t *testing.T) {
	svc, _ := newTestService(t, stubPrices{})

	for i := 1; i <= 3; i++ {
		trade, err := svc.Add("aapl", 10, 100, nil)
		require.NoError(t, err)
		assert.Equal(t, i, trade.ID)
		assert.Equal(t, "AAPL", trade.Ticker)
	}
}

func TestAddAfterDeleteNeverReusesID(t *testing.T) {
	svc, _ := newTestService(t, stubPrices{})

	for i := 0; i < 3; i++ {
		_, err := svc.Add("AAPL", 1, 1, nil)
		require.NoError(t, err)
	}
	_, err := svc.Delete(3)
	require.NoError(t, err)

	trade, err := svc.Add("MSFT", 1, 1, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, trade.ID, "max remaining is 2, so the next id is 3")
}

func TestAddClosedTradeComputesProfit(t *testing.T) {
	svc, st := newTestService(t, stubPrices{})

	_, err := svc.Add("AAPL", 10, 5, floatPtr(6))
	require.NoError(t, err)

	trades, err := st.Load()
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.False(t, trades[0].Open())
	assert.InDelta(t, 10.0, trades[0].Exit.ProfitUSD, 1e-9)
	assert.InDelta(t, 20.0, trades[0].Exit.ProfitPct, 1e-9)
}

func TestCompleteSelectsMostRecentOpenMatch(t *testing.T) {
	svc, st := newTestService(t, stubPrices{})
	// ids 1..7; 3 and 7 are open trades on X.
	for i := 1; i <= 7; i++ {
		ticker := "Y"
		if i == 3 || i == 7 {
			ticker = "X"
		}
		_, err := svc.Add(ticker, 1, 10, nil)
		require.NoError(t, err)
	}

	closed, err := svc.Complete("X", nil, 12)

	require.NoError(t, err)
	assert.Equal(t, 7, closed.ID)

	trades, err := st.Load()
	require.NoError(t, err)
	assert.True(t, trades[2].Open(), "id 3 must stay open")
	assert.False(t, trades[6].Open())
}

func TestCompleteByIDIgnoresTicker(t *testing.T) {
	svc, _ := newTestService(t, stubPrices{})
	_, err := svc.Add("AAPL", 2, 100, nil)
	require.NoError(t, err)

	// The entered ticker does not match; the id alone selects the trade.
	closed, err := svc.Complete("MSFT", intPtr(1), 110)

	require.NoError(t, err)
	assert.Equal(t, "AAPL", closed.Ticker)
	assert.InDelta(t, 20.0, closed.Exit.ProfitUSD, 1e-9)
}

func TestCompleteNoMatchLeavesFileUntouched(t *testing.T) {
	svc, st := newTestService(t, stubPrices{})
	_, err := svc.Add("AAPL", 1, 100, floatPtr(110)) // already closed
	require.NoError(t, err)
	before, err := os.ReadFile(st.Path())
	require.NoError(t, err)

	_, err = svc.Complete("AAPL", nil, 120)
	assert.ErrorIs(t, err, ErrNoOpenMatch)

	_, err = svc.Complete("AAPL", intPtr(1), 120)
	assert.ErrorIs(t, err, ErrNoOpenMatch, "closed trades cannot be completed again")

	after, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCompletePreservesOtherRows(t *testing.T) {
	svc, st := newTestService(t, stubPrices{})
	_, err := svc.Add("AAPL", 1, 100, nil)
	require.NoError(t, err)
	_, err = svc.Add("MSFT", 2, 50, nil)
	require.NoError(t, err)
	_, err = svc.Add("TSLA", 3, 200, floatPtr(210))
	require.NoError(t, err)

	_, err = svc.Complete("MSFT", nil, 55)
	require.NoError(t, err)

	trades, err := st.Load()
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{trades[0].ID, trades[1].ID, trades[2].ID})
	assert.True(t, trades[0].Open())
	assert.False(t, trades[1].Open())
	assert.Equal(t, 210.0, trades[2].Exit.SellPrice)
}

func TestDeleteNotFoundLeavesFileUntouched(t *testing.T) {
	svc, st := newTestService(t, stubPrices{})
	_, err := svc.Add("AAPL", 1, 100, nil)
	require.NoError(t, err)
	before, err := os.ReadFile(st.Path())
	require.NoError(t, err)

	_, err = svc.Delete(99)

	assert.ErrorIs(t, err, ErrNotFound)
	after, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeleteRemovesOnlyTarget(t *testing.T) {
	svc, st := newTestService(t, stubPrices{})
	for _, ticker := range []string{"A", "B", "C"} {
		_, err := svc.Add(ticker, 1, 1, nil)
		require.NoError(t, err)
	}

	removed, err := svc.Delete(2)

	require.NoError(t, err)
	assert.Equal(t, "B", removed.Ticker)
	trades, err := st.Load()
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, []int{1, 3}, []int{trades[0].ID, trades[1].ID})
}

func TestListAllAggregates(t *testing.T) {
	svc, _ := newTestService(t, stubPrices{prices: map[string]float64{"AAPL": 120}})
	_, err := svc.Add("AAPL", 2, 100, nil) // open, live 120 => +40 unrealized
	require.NoError(t, err)
	_, err = svc.Add("MSFT", 1, 50, floatPtr(60)) // closed => +10 realized
	require.NoError(t, err)

	listing, err := svc.List(context.Background(), All)

	require.NoError(t, err)
	assert.Equal(t, 2, listing.Shown)
	assert.InDelta(t, 10.0, listing.Realized, 1e-9)
	assert.InDelta(t, 40.0, listing.Unrealized, 1e-9)
	require.Len(t, listing.Rows, 2)
	assert.Equal(t, StatusLive, listing.Rows[0].Status)
	assert.Equal(t, 120.0, listing.Rows[0].Price)
	assert.Equal(t, StatusClosed, listing.Rows[1].Status)
}

func TestListOpenOnlyFilters(t *testing.T) {
	svc, _ := newTestService(t, stubPrices{prices: map[string]float64{"AAPL": 110}})
	_, err := svc.Add("AAPL", 1, 100, nil)
	require.NoError(t, err)
	_, err = svc.Add("MSFT", 1, 50, floatPtr(60))
	require.NoError(t, err)

	listing, err := svc.List(context.Background(), OpenOnly)

	require.NoError(t, err)
	assert.Equal(t, 1, listing.Shown)
	require.Len(t, listing.Rows, 1)
	assert.Equal(t, "AAPL", listing.Rows[0].Trade.Ticker)
	assert.InDelta(t, 10.0, listing.Unrealized, 1e-9)
}

func TestListGatewayFailureDegradesRowOnly(t *testing.T) {
	svc, _ := newTestService(t, stubPrices{err: errors.New("gateway down")})
	_, err := svc.Add("AAPL", 1, 100, nil)
	require.NoError(t, err)
	_, err = svc.Add("MSFT", 1, 50, floatPtr(60))
	require.NoError(t, err)

	listing, err := svc.List(context.Background(), All)

	require.NoError(t, err, "a failing quote must not abort the listing")
	assert.Equal(t, 2, listing.Shown)
	assert.Equal(t, StatusNoQuote, listing.Rows[0].Status)
	assert.Equal(t, StatusClosed, listing.Rows[1].Status)
	assert.InDelta(t, 0.0, listing.Unrealized, 1e-9)
	assert.InDelta(t, 10.0, listing.Realized, 1e-9)
}

func TestListUnreadableRowDegrades(t *testing.T) {
	svc, st := newTestService(t, stubPrices{})
	raw := "ID,Ticker,Quantity,Buy Price,Sell Price,Profit (USD),Profit (%)\n" +
		"1,AAPL,10,100,garbage,x,y\n" +
		"2,MSFT,1,50,60,10.000,20.000\n"
	require.NoError(t, os.WriteFile(st.Path(), []byte(raw), 0o644))

	listing, err := svc.List(context.Background(), All)

	require.NoError(t, err)
	require.Len(t, listing.Rows, 2)
	assert.Equal(t, StatusUnreadable, listing.Rows[0].Status)
	assert.Equal(t, "garbage", listing.Rows[0].Fields[4])
	assert.Equal(t, StatusClosed, listing.Rows[1].Status)
	assert.InDelta(t, 10.0, listing.Realized, 1e-9, "only readable rows count toward totals")
}
