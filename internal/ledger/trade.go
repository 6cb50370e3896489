package ledger

// Trade is one record of the trade ledger.
type Trade struct {
	ID       int
	Ticker   string
	Quantity float64
	BuyPrice float64
	// Exit is nil while the trade is open.
	Exit *Exit
}

// Exit holds the realized side of a closed trade. ProfitUSD and ProfitPct
// are derived from the sell price and are always recomputable.
type Exit struct {
	SellPrice float64
	ProfitUSD float64
	ProfitPct float64
}

// Open reports whether the trade has no recorded exit yet.
func (t Trade) Open() bool {
	return t.Exit == nil
}

// Profit computes the profit this trade would realize at the given sell
// price. The percentage is 0 when nothing was invested.
func (t Trade) Profit(sellPrice float64) (usd, pct float64) {
	usd = (sellPrice - t.BuyPrice) * t.Quantity
	invested := t.BuyPrice * t.Quantity
	if invested != 0 {
		pct = usd / invested * 100
	}
	return usd, pct
}

// Closed returns a copy of the trade closed at the given sell price.
func (t Trade) Closed(sellPrice float64) Trade {
	usd, pct := t.Profit(sellPrice)
	t.Exit = &Exit{SellPrice: sellPrice, ProfitUSD: usd, ProfitPct: pct}
	return t
}

// NextID returns the id for the next trade: one past the highest existing
// id, 1 on an empty ledger. Ids are never reused after a delete.
func NextID(trades []Trade) int {
	max := 0
	for _, t := range trades {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}
