package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/NikolasHofmann/active-trading/internal/config"
	"github.com/NikolasHofmann/active-trading/internal/ledger"
	"github.com/NikolasHofmann/active-trading/internal/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store := ledger.NewStore(cfg.Ledger.Path)

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, store)

	// Read-only API endpoints; every request re-reads the CSV.
	mux.HandleFunc("/api/trades", apiHandler.TradesHandler)
	mux.HandleFunc("/api/stats", apiHandler.StatsHandler)
	mux.HandleFunc("/health", apiHandler.HealthHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting ledger viewer",
		zap.String("address", addr),
		zap.String("ledger", cfg.Ledger.Path),
	)

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Ledger viewer failed", zap.Error(err))
	}
}
