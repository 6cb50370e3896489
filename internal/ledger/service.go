package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no record carries the requested id.
	ErrNotFound = errors.New("ledger: trade not found")
	// ErrNoOpenMatch is returned when Complete finds no open trade to close.
	ErrNoOpenMatch = errors.New("ledger: no matching open trade")
)

// PriceSource is the slice of the market data gateway the ledger needs:
// a current price to value open positions.
type PriceSource interface {
	LatestPrice(ctx context.Context, ticker string) (float64, error)
}

// Service implements the trade ledger operations on top of a Store and a
// price source.
type Service struct {
	store  *Store
	prices PriceSource
	logger *zap.Logger
}

// NewService creates a new ledger service.
func NewService(store *Store, prices PriceSource, logger *zap.Logger) *Service {
	return &Service{store: store, prices: prices, logger: logger}
}

// Add appends a new trade. The id is one past the highest existing id.
// When sellPrice is non-nil the trade is recorded already closed with its
// profit fields computed. Nothing is written when the ledger cannot be read.
func (s *Service) Add(ticker string, quantity, buyPrice float64, sellPrice *float64) (Trade, error) {
	trades, err := s.store.Load()
	if err != nil {
		return Trade{}, err
	}

	t := Trade{
		ID:       NextID(trades),
		Ticker:   strings.ToUpper(ticker),
		Quantity: quantity,
		BuyPrice: buyPrice,
	}
	if sellPrice != nil {
		t = t.Closed(*sellPrice)
	}

	if err := s.store.Append(t); err != nil {
		return Trade{}, err
	}
	return t, nil
}

// Filter selects which records a listing shows.
type Filter int

const (
	// All shows every record.
	All Filter = iota
	// OpenOnly shows only trades without a recorded exit.
	OpenOnly
)

// RowStatus classifies how a listing row was produced.
type RowStatus int

const (
	// StatusClosed is a closed trade rendered from its stored values.
	StatusClosed RowStatus = iota
	// StatusLive is an open trade valued at the current market price.
	StatusLive
	// StatusNoQuote is an open trade whose current price was unavailable.
	StatusNoQuote
	// StatusUnreadable is a stored row that failed to parse.
	StatusUnreadable
)

// ListRow is one display row of a listing.
type ListRow struct {
	Status RowStatus
	Trade  Trade
	// Fields holds the raw CSV fields, the only thing left to show for an
	// unreadable row.
	Fields []string
	// Price is the stored sell price for closed rows and the live market
	// price for open ones. Zero when the status carries no price.
	Price     float64
	ProfitUSD float64
	ProfitPct float64
}

// Listing is the result of a List call.
type Listing struct {
	Filter Filter
	Rows   []ListRow
	// Shown counts the rows in Rows.
	Shown int
	// Realized sums profit over the closed rows shown.
	Realized float64
	// Unrealized sums live profit over the open rows that could be priced.
	Unrealized float64
}

// List produces one display row per record that passes the filter. Open
// trades are valued at the current market price; a gateway failure or a
// malformed stored row degrades that row only, never the whole listing.
func (s *Service) List(ctx context.Context, filter Filter) (Listing, error) {
	rows, err := s.store.Rows()
	if err != nil {
		return Listing{}, err
	}

	listing := Listing{Filter: filter}
	for _, row := range rows {
		// A row that cannot be parsed still filters on the raw sentinel,
		// like every other row.
		open := len(row.Fields) > 4 && row.Fields[4] == OpenSentinel
		if filter == OpenOnly && !open {
			continue
		}

		var lr ListRow
		switch {
		case row.Err != nil:
			s.logger.Warn("unreadable ledger row",
				zap.Int("line", row.Line),
				zap.Error(row.Err),
			)
			lr = ListRow{Status: StatusUnreadable, Fields: row.Fields}

		case open:
			t := row.Trade
			price, err := s.prices.LatestPrice(ctx, t.Ticker)
			if err != nil {
				s.logger.Warn("no current price for open trade",
					zap.String("ticker", t.Ticker),
					zap.Int("id", t.ID),
					zap.Error(err),
				)
				lr = ListRow{Status: StatusNoQuote, Trade: t, Fields: row.Fields}
				break
			}
			usd, pct := t.Profit(price)
			listing.Unrealized += usd
			lr = ListRow{Status: StatusLive, Trade: t, Fields: row.Fields, Price: price, ProfitUSD: usd, ProfitPct: pct}

		default:
			t := row.Trade
			listing.Realized += t.Exit.ProfitUSD
			lr = ListRow{
				Status:    StatusClosed,
				Trade:     t,
				Fields:    row.Fields,
				Price:     t.Exit.SellPrice,
				ProfitUSD: t.Exit.ProfitUSD,
				ProfitPct: t.Exit.ProfitPct,
			}
		}

		listing.Rows = append(listing.Rows, lr)
		listing.Shown++
	}
	return listing, nil
}

// Complete closes exactly one open trade at the given sell price. With an
// id, the open trade carrying that id is targeted and the ticker is not
// re-checked (ids are unique, so the ticker is redundant there). Without
// one, the most recently appended open trade for the ticker is targeted.
// The rewrite preserves the order and values of every other record.
func (s *Service) Complete(ticker string, id *int, sellPrice float64) (Trade, error) {
	trades, err := s.store.Load()
	if err != nil {
		return Trade{}, err
	}

	idx := -1
	if id != nil {
		for i, t := range trades {
			if t.ID == *id && t.Open() {
				idx = i
				break
			}
		}
	} else {
		upper := strings.ToUpper(ticker)
		for i := len(trades) - 1; i >= 0; i-- {
			if trades[i].Ticker == upper && trades[i].Open() {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return Trade{}, ErrNoOpenMatch
	}

	trades[idx] = trades[idx].Closed(sellPrice)
	if err := s.store.Save(trades); err != nil {
		return Trade{}, err
	}
	return trades[idx], nil
}

// Delete removes the record with the given id in either state. An unknown
// id leaves the file untouched and returns ErrNotFound.
func (s *Service) Delete(id int) (Trade, error) {
	trades, err := s.store.Load()
	if err != nil {
		return Trade{}, err
	}

	idx := -1
	for i, t := range trades {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Trade{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	removed := trades[idx]
	trades = append(trades[:idx], trades[idx+1:]...)
	if err := s.store.Save(trades); err != nil {
		return Trade{}, err
	}
	return removed, nil
}
