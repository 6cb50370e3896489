package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/NikolasHofmann/active-trading/internal/config"
	"github.com/NikolasHofmann/active-trading/internal/ledger"
	"github.com/NikolasHofmann/active-trading/internal/logger"
	"github.com/NikolasHofmann/active-trading/internal/marketdata"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	client := marketdata.NewClient(&cfg.MarketData, log)
	store := ledger.NewStore(cfg.Ledger.Path)
	service := ledger.NewService(store, client, log)
	log.Info("Ledger opened", zap.String("path", cfg.Ledger.Path))

	app := &app{
		service: service,
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}
	app.run(context.Background())
}
