package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/NikolasHofmann/active-trading/internal/config"
	"github.com/NikolasHofmann/active-trading/internal/logger"
	"github.com/NikolasHofmann/active-trading/internal/migrate"
	"go.uber.org/zap"
)

func main() {
	in := flag.String("in", "", "legacy ledger file (default: the configured ledger path)")
	out := flag.String("out", "trades_log_migrated.csv", "migrated ledger file to write")
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

	src := *in
	if src == "" {
		src = cfg.Ledger.Path
	}

	n, err := migrate.Run(src, *out)
	if err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	log.Info("Migration complete",
		zap.Int("records", n),
		zap.String("output", *out),
	)
	fmt.Printf("Migration complete. %d record(s) written to %s\n", n, *out)
}
