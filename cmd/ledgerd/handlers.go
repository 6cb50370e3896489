package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NikolasHofmann/active-trading/internal/ledger"
	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log   *zap.Logger
	store *ledger.Store
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, store *ledger.Store) *APIHandler {
	return &APIHandler{log: log, store: store}
}

// apiTrade is the JSON shape of one ledger record. Open trades carry null
// for the sell price and profit fields.
type apiTrade struct {
	ID        int      `json:"id"`
	Ticker    string   `json:"ticker"`
	Quantity  float64  `json:"quantity"`
	BuyPrice  float64  `json:"buy_price"`
	SellPrice *float64 `json:"sell_price"`
	ProfitUSD *float64 `json:"profit_usd"`
	ProfitPct *float64 `json:"profit_pct"`
}

func toAPITrade(t ledger.Trade) apiTrade {
	out := apiTrade{
		ID:       t.ID,
		Ticker:   t.Ticker,
		Quantity: t.Quantity,
		BuyPrice: t.BuyPrice,
	}
	if t.Exit != nil {
		out.SellPrice = &t.Exit.SellPrice
		out.ProfitUSD = &t.Exit.ProfitUSD
		out.ProfitPct = &t.Exit.ProfitPct
	}
	return out
}

// TradesHandler returns all ledger records.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.store.Load()
	if err != nil {
		h.log.Error("Failed to read ledger", zap.Error(err))
		http.Error(w, "Failed to read ledger", http.StatusInternalServerError)
		return
	}

	out := make([]apiTrade, 0, len(trades))
	for _, t := range trades {
		out = append(out, toAPITrade(t))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// StatsResponse is the structure for the /api/stats endpoint.
type StatsResponse struct {
	TotalTrades    int     `json:"total_trades"`
	OpenTrades     int     `json:"open_trades"`
	ClosedTrades   int     `json:"closed_trades"`
	RealizedProfit float64 `json:"realized_profit"`
}

// StatsHandler calculates and returns ledger statistics. Unrealized profit
// needs live quotes and is deliberately out of this read-only surface.
func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.store.Load()
	if err != nil {
		h.log.Error("Failed to read ledger for stats", zap.Error(err))
		http.Error(w, "Failed to calculate stats", http.StatusInternalServerError)
		return
	}

	stats := StatsResponse{TotalTrades: len(trades)}
	for _, t := range trades {
		if t.Open() {
			stats.OpenTrades++
			continue
		}
		stats.ClosedTrades++
		stats.RealizedProfit += t.Exit.ProfitUSD
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
