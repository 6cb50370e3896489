package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfit(t *testing.T) {
	testCases := []struct {
		name        string
		trade       Trade
		sellPrice   float64
		expectedUSD float64
		expectedPct float64
	}{
		{
			name:        "Winning trade",
			trade:       Trade{Quantity: 10, BuyPrice: 5.000},
			sellPrice:   6.000,
			expectedUSD: 10.000,
			expectedPct: 20.00,
		},
		{
			name:        "Losing trade",
			trade:       Trade{Quantity: 4, BuyPrice: 25},
			sellPrice:   20,
			expectedUSD: -20,
			expectedPct: -20,
		},
		{
			name:        "Zero invested amount",
			trade:       Trade{Quantity: 5, BuyPrice: 0},
			sellPrice:   3,
			expectedUSD: 15,
			expectedPct: 0, // guarded, not a division error
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			usd, pct := tc.trade.Profit(tc.sellPrice)
			assert.InDelta(t, tc.expectedUSD, usd, 1e-9)
			assert.InDelta(t, tc.expectedPct, pct, 1e-9)
		})
	}
}

func TestClosed(t *testing.T) {
	open := Trade{ID: 3, Ticker: "AAPL", Quantity: 2, BuyPrice: 100}

	closed := open.Closed(110)

	assert.True(t, open.Open(), "original value must stay open")
	assert.False(t, closed.Open())
	assert.Equal(t, 110.0, closed.Exit.SellPrice)
	assert.InDelta(t, 20.0, closed.Exit.ProfitUSD, 1e-9)
	assert.InDelta(t, 10.0, closed.Exit.ProfitPct, 1e-9)
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, NextID(nil))
	assert.Equal(t, 4, NextID([]Trade{{ID: 1}, {ID: 3}, {ID: 2}}))
	// Gaps from deletes do not cause reuse.
	assert.Equal(t, 8, NextID([]Trade{{ID: 2}, {ID: 7}}))
}
