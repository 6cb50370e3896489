package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/NikolasHofmann/active-trading/internal/config"
	"github.com/NikolasHofmann/active-trading/internal/logger"
	"github.com/NikolasHofmann/active-trading/internal/marketdata"
	"github.com/NikolasHofmann/active-trading/internal/sizing"
	"go.uber.org/zap"
)

func main() {
	risk := flag.Float64("risk", 0, "max total risk in dollars (default: the configured budget)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sizer [-risk N] TICKER")
		os.Exit(2)
	}
	ticker := flag.Arg(0)

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	maxRisk := cfg.Sizing.MaxTotalRisk
	if *risk > 0 {
		maxRisk = *risk
	}

	client := marketdata.NewClient(&cfg.MarketData, log)
	calc := sizing.New(client, maxRisk, cfg.Sizing.LookbackDays)

	rec, err := calc.Plan(context.Background(), ticker)
	if errors.Is(err, marketdata.ErrNoData) {
		log.Fatal("No data found for ticker", zap.String("ticker", ticker), zap.Error(err))
	}
	if errors.Is(err, sizing.ErrDegenerateBar) {
		log.Fatal("Previous day bar is unusable", zap.String("ticker", ticker), zap.Error(err))
	}
	if err != nil {
		log.Fatal("Could not fetch previous day data", zap.String("ticker", ticker), zap.Error(err))
	}

	fmt.Printf("Previous day (%s) data for %s:\n", rec.Bar.Date.Format("2006-01-02"), ticker)
	fmt.Printf("  Open:  %.2f\n", rec.Bar.Open)
	fmt.Printf("  High:  %.2f\n", rec.Bar.High)
	fmt.Printf("  Low:   %.2f\n", rec.Bar.Low)
	fmt.Printf("  Close: %.2f\n", rec.Bar.Close)
	fmt.Println()
	fmt.Println("Trade summary:")
	fmt.Printf("  Buy price:                %.2f\n", rec.BuyPrice)
	fmt.Printf("  Stop loss:                %.2f\n", rec.StopLoss)
	fmt.Printf("  Risk per share:           %.2f\n", rec.RiskPerShare)
	fmt.Printf("  Min sell price (1:1 R:R): %.2f\n", rec.MinSellPrice)
	fmt.Printf("  Max total risk:           $%.2f\n", rec.MaxTotalRisk)
	fmt.Printf("  Shares to buy:            %d share(s)\n", rec.Shares)
}
