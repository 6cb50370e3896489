package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// OpenSentinel is the literal stored in the Sell Price column of the CSV
// for open trades. It exists only in this codec; the model uses a nil Exit.
const OpenSentinel = "None"

// Header is the column layout of the ledger file.
var Header = []string{"ID", "Ticker", "Quantity", "Buy Price", "Sell Price", "Profit (USD)", "Profit (%)"}

// Store reads and writes the trade ledger CSV file. Every operation opens,
// fully reads or fully rewrites, and closes the file; there is no file
// locking, so concurrent invocations against the same path are unsafe.
type Store struct {
	path string
}

// NewStore creates a store for the ledger file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return s.path
}

// Row is one raw CSV row paired with its decode result. Line is the
// 1-based line number in the file.
type Row struct {
	Line   int
	Fields []string
	Trade  Trade
	Err    error
}

// Rows reads the whole ledger and decodes each data row independently, so
// callers can degrade a malformed row instead of aborting. A missing file
// is an empty ledger.
func (s *Store) Rows() ([]Row, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", s.path, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := Row{Line: i + 2, Fields: rec}
		row.Trade, row.Err = decodeRow(rec)
		rows = append(rows, row)
	}
	return rows, nil
}

// Load reads and strictly decodes the whole ledger. The first malformed
// row aborts with its line number. Used by the mutating operations, which
// must not rewrite a file they cannot fully parse.
func (s *Store) Load() ([]Trade, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	trades := make([]Trade, 0, len(rows))
	for _, row := range rows {
		if row.Err != nil {
			return nil, fmt.Errorf("ledger %s line %d: %w", s.path, row.Line, row.Err)
		}
		trades = append(trades, row.Trade)
	}
	return trades, nil
}

// Save rewrites the whole ledger. It writes to a temp file in the same
// directory and renames it over the original, so a crash mid-write never
// leaves a half-written ledger behind.
func (s *Store) Save(trades []Trade) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".trades-*.csv")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, t := range trades {
		if err := w.Write(encodeRow(t)); err != nil {
			tmp.Close()
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Append adds one record to the end of the ledger, creating the file with
// its header when it does not exist yet.
func (s *Store) Append(t Trade) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("write ledger header: %w", err)
		}
	}
	if err := w.Write(encodeRow(t)); err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}
	return f.Close()
}

// encodeRow serializes a trade. Quantities and prices use the shortest
// round-trip representation, profit fields are fixed to 3 decimals.
func encodeRow(t Trade) []string {
	rec := []string{
		strconv.Itoa(t.ID),
		t.Ticker,
		formatFloat(t.Quantity),
		formatFloat(t.BuyPrice),
		OpenSentinel,
		"",
		"",
	}
	if t.Exit != nil {
		rec[4] = formatFloat(t.Exit.SellPrice)
		rec[5] = strconv.FormatFloat(t.Exit.ProfitUSD, 'f', 3, 64)
		rec[6] = strconv.FormatFloat(t.Exit.ProfitPct, 'f', 3, 64)
	}
	return rec
}

func decodeRow(rec []string) (Trade, error) {
	if len(rec) < 7 {
		return Trade{}, fmt.Errorf("expected 7 fields, got %d", len(rec))
	}

	id, err := strconv.Atoi(rec[0])
	if err != nil {
		return Trade{}, fmt.Errorf("bad id %q: %w", rec[0], err)
	}
	quantity, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return Trade{}, fmt.Errorf("bad quantity %q: %w", rec[2], err)
	}
	buyPrice, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return Trade{}, fmt.Errorf("bad buy price %q: %w", rec[3], err)
	}

	t := Trade{ID: id, Ticker: rec[1], Quantity: quantity, BuyPrice: buyPrice}
	if rec[4] == OpenSentinel {
		if rec[5] != "" || rec[6] != "" {
			return Trade{}, fmt.Errorf("open trade carries profit fields %q, %q", rec[5], rec[6])
		}
		return t, nil
	}

	sellPrice, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return Trade{}, fmt.Errorf("bad sell price %q: %w", rec[4], err)
	}
	// Stored profit values win over recomputation; older ledgers may carry
	// hand-entered figures.
	t = t.Closed(sellPrice)
	if rec[5] != "" {
		usd, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return Trade{}, fmt.Errorf("bad profit %q: %w", rec[5], err)
		}
		t.Exit.ProfitUSD = usd
	}
	if rec[6] != "" {
		pct, err := strconv.ParseFloat(rec[6], 64)
		if err != nil {
			return Trade{}, fmt.Errorf("bad profit pct %q: %w", rec[6], err)
		}
		t.Exit.ProfitPct = pct
	}
	return t, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
