package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/NikolasHofmann/active-trading/internal/config"
	"github.com/NikolasHofmann/active-trading/internal/logger"
	"github.com/NikolasHofmann/active-trading/internal/marketdata"
	"github.com/NikolasHofmann/active-trading/internal/ranking"
	"go.uber.org/zap"
)

func main() {
	in := flag.String("in", "", "ticker list CSV (default: the configured input)")
	out := flag.String("out", "", "ranking output CSV (default: the configured output)")
	flag.Parse()

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

	input := cfg.Ranking.Input
	if *in != "" {
		input = *in
	}
	output := cfg.Ranking.Output
	if *out != "" {
		output = *out
	}

	tickers, err := ranking.ReadTickers(input)
	if err != nil {
		log.Fatal("Could not read ticker list", zap.Error(err))
	}
	log.Info("Ranking tickers", zap.Int("count", len(tickers)))

	client := marketdata.NewClient(&cfg.MarketData, log)
	ranker := ranking.New(client, cfg.Ranking.MaxWalkbackDays, log)

	results, err := ranker.Rank(context.Background(), tickers)
	if err != nil {
		log.Fatal("Ranking aborted", zap.Error(err))
	}

	if len(results) == 0 {
		log.Warn("No ticker produced usable data; nothing written",
			zap.Int("tickers", len(tickers)),
		)
		fmt.Println("No valid data to save. All entries were skipped due to missing/invalid fields.")
		return
	}

	if err := ranking.WriteResults(output, results); err != nil {
		log.Fatal("Could not write ranking output", zap.Error(err))
	}
	log.Info("Ranking written",
		zap.Int("results", len(results)),
		zap.Int("skipped", len(tickers)-len(results)),
		zap.String("output", output),
	)
	fmt.Printf("Saved %d ticker(s) to %s\n", len(results), output)
}
