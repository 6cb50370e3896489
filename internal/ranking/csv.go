package ranking

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OutputHeader is the column layout of the ranking output file.
var OutputHeader = []string{"Ticker", "Current Price", "Yesterday's High", "Percent Diff From High"}

// ReadTickers reads the ticker list from a CSV file with a Ticker column.
// Blanks and duplicates are dropped; first-appearance order is kept.
func ReadTickers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ticker list %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, errors.New("ticker list is empty")
	}

	col := -1
	for i, name := range records[0] {
		if strings.TrimSpace(name) == "Ticker" {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("ticker list %s has no Ticker column", path)
	}

	seen := make(map[string]bool)
	var tickers []string
	for _, rec := range records[1:] {
		if col >= len(rec) {
			continue
		}
		ticker := strings.TrimSpace(rec[col])
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		tickers = append(tickers, ticker)
	}
	return tickers, nil
}

// WriteResults writes the ranked results to a CSV file, values rounded to
// two decimals. Callers decide what an empty result set means; this
// function always writes the file it is given.
func WriteResults(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ranking output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(OutputHeader); err != nil {
		return fmt.Errorf("write ranking header: %w", err)
	}
	for _, res := range results {
		rec := []string{
			res.Ticker,
			strconv.FormatFloat(res.CurrentPrice, 'f', 2, 64),
			strconv.FormatFloat(res.PreviousHigh, 'f', 2, 64),
			strconv.FormatFloat(res.PercentDiff, 'f', 2, 64),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write ranking row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ranking output: %w", err)
	}
	return f.Close()
}
