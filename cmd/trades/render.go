package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/NikolasHofmann/active-trading/internal/ledger"
)

// renderListing prints the trade table and its totals. Open trades show
// the live market price; rows without a quote or with unreadable stored
// values carry distinct markers instead of numbers.
func renderListing(w io.Writer, listing ledger.Listing) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Trade Log ---")
	if listing.Shown == 0 {
		fmt.Fprintln(w, "No trades logged yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(ledger.Header, "\t"))
	for _, row := range listing.Rows {
		fmt.Fprintln(tw, strings.Join(renderRow(row), "\t"))
	}
	tw.Flush()

	if listing.Filter == ledger.OpenOnly {
		fmt.Fprintf(w, "Total open trades shown: %d\n", listing.Shown)
		fmt.Fprintf(w, "Total unrealized P/L (open trades): $%.3f\n", listing.Unrealized)
		return
	}
	fmt.Fprintf(w, "Total trades shown: %d\n", listing.Shown)
	fmt.Fprintf(w, "Total realized P/L: $%.3f\n", listing.Realized)
	fmt.Fprintf(w, "Total unrealized P/L (open trades): $%.3f\n", listing.Unrealized)
	fmt.Fprintf(w, "Net total (realized + unrealized): $%.3f\n", listing.Realized+listing.Unrealized)
}

func renderRow(row ledger.ListRow) []string {
	if row.Status == ledger.StatusUnreadable {
		return []string{
			field(row.Fields, 0),
			field(row.Fields, 1),
			field(row.Fields, 2),
			field(row.Fields, 3),
			"unreadable", "unreadable", "unreadable",
		}
	}

	t := row.Trade
	cells := []string{
		fmt.Sprintf("%d", t.ID),
		t.Ticker,
		fmt.Sprintf("%.3f", t.Quantity),
		fmt.Sprintf("%.3f", t.BuyPrice),
		"", "", "",
	}
	switch row.Status {
	case ledger.StatusLive:
		cells[4] = fmt.Sprintf("%.3f (LIVE)", row.Price)
		cells[5] = fmt.Sprintf("%.3f", row.ProfitUSD)
		cells[6] = fmt.Sprintf("%.3f%%", row.ProfitPct)
	case ledger.StatusNoQuote:
		cells[4] = "N/A"
		cells[5] = "N/A"
		cells[6] = "N/A"
	case ledger.StatusClosed:
		cells[4] = fmt.Sprintf("%.3f", row.Price)
		cells[5] = fmt.Sprintf("%.3f", row.ProfitUSD)
		cells[6] = fmt.Sprintf("%.3f%%", row.ProfitPct)
	}
	return cells
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
