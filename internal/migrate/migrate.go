// Package migrate converts a legacy trade ledger to the extended schema
// with aggregate sell columns. The transform models a future multi-fill
// trade, but a legacy record only ever produces single-fill values.
package migrate

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/NikolasHofmann/active-trading/internal/ledger"
)

// Header is the column layout of the migrated file.
var Header = []string{
	"ID", "Ticker", "Quantity", "Buy Price",
	"Total Sold", "Total Received", "Avg Sell Price",
	"Profit (USD)", "Profit (%)",
}

// Run reads the legacy ledger at src and writes the migrated ledger to
// dst. The source file is never modified. A malformed source row aborts
// the whole run with its line number: silently skipping rows would hide
// ledger corruption behind a "successful" migration.
// Returns the number of migrated records.
func Run(src, dst string) (int, error) {
	if _, err := os.Stat(src); err != nil {
		return 0, fmt.Errorf("legacy ledger: %w", err)
	}
	rows, err := ledger.NewStore(src).Rows()
	if err != nil {
		return 0, err
	}

	out := make([][]string, 0, len(rows)+1)
	out = append(out, Header)
	for _, row := range rows {
		if row.Err != nil {
			return 0, fmt.Errorf("ledger %s line %d: %w", src, row.Line, row.Err)
		}
		out = append(out, migrateRow(row.Trade))
	}

	f, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("create migrated ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(out); err != nil {
		return 0, fmt.Errorf("write migrated ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close migrated ledger: %w", err)
	}
	return len(out) - 1, nil
}

// migrateRow maps one legacy record onto the extended schema. Open trades
// have sold nothing and carry no realized profit; closed trades were sold
// in full at the single recorded price. A stored profit value is carried
// over rather than recomputed, the percentage is always rederived from it.
func migrateRow(t ledger.Trade) []string {
	rec := []string{
		strconv.Itoa(t.ID),
		t.Ticker,
		formatFloat(t.Quantity),
		formatFloat(t.BuyPrice),
		"0",
		"0",
		ledger.OpenSentinel,
		"",
		"",
	}
	if t.Exit == nil {
		return rec
	}

	profitUSD := t.Exit.ProfitUSD
	invested := t.BuyPrice * t.Quantity
	profitPct := 0.0
	if invested != 0 {
		profitPct = profitUSD / invested * 100
	}

	rec[4] = formatFloat(t.Quantity)
	rec[5] = formatFloat(t.Exit.SellPrice * t.Quantity)
	rec[6] = strconv.FormatFloat(t.Exit.SellPrice, 'f', 3, 64)
	rec[7] = strconv.FormatFloat(profitUSD, 'f', 3, 64)
	rec[8] = strconv.FormatFloat(profitPct, 'f', 2, 64)
	return rec
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
