package folio

import (
	"slices"

	"github.com/shopspring/decimal"
)

// marketBeta is the beta assumed for a symbol whose quote does not carry one.
const marketBeta = 1.0

// holding is the running state of one symbol while folding the ledger.
type holding struct {
	name      string
	shares    Quantity
	totalCost Money
}

// Aggregate folds the ledger into per-symbol positions and values them against the
// quotes snapshot.
//
// Transactions are processed in the order supplied. Cost basis follows the weighted
// average cost method: buys add shares×price+fee, sells remove shares at the average
// cost before the sale, and sell fees never touch the basis. A symbol whose share count
// drops to zero or below is reset to zero shares and zero cost.
//
// Only symbols with shares left are returned, sorted by descending current value.
// Symbols missing from the snapshot are valued at zero. Aggregate is pure.
func Aggregate(txs []Transaction, quotes Quotes) ([]Position, Summary) {
	holdings := make(map[string]*holding)
	var symbols []string // order of first appearance
	realized := M(0)

	for _, tx := range txs {
		h, ok := holdings[tx.Symbol]
		if !ok {
			h = &holding{}
			holdings[tx.Symbol] = h
			symbols = append(symbols, tx.Symbol)
		}
		if tx.Name != "" {
			h.name = tx.Name
		}

		switch tx.Side {
		case Buy:
			h.shares = h.shares.Add(tx.Shares)
			h.totalCost = h.totalCost.Add(tx.Amount()).Add(tx.Fee)
		case Sell:
			if h.shares.IsPositive() {
				costOfSale := h.totalCost.Mul(tx.Shares).Div(h.shares)
				realized = realized.Add(tx.Amount().Sub(tx.Fee).Sub(costOfSale))
				h.shares = h.shares.Sub(tx.Shares)
				h.totalCost = h.totalCost.Sub(costOfSale)
			}
			// an oversell leaves no meaningful basis behind
			if !h.shares.IsPositive() {
				h.shares = Q(0)
				h.totalCost = M(0)
			}
		}
	}

	positions := make([]Position, 0, len(symbols))
	for _, symbol := range symbols {
		h := holdings[symbol]
		if !h.shares.IsPositive() {
			continue
		}
		positions = append(positions, newPosition(symbol, h, quotes.Get(symbol)))
	}
	slices.SortStableFunc(positions, func(a, b Position) int {
		return b.CurrentValue.Cmp(a.CurrentValue)
	})

	return positions, summarize(positions, realized)
}

// newPosition values a holding against its quote.
func newPosition(symbol string, h *holding, q PriceQuote) Position {
	p := Position{
		Symbol:           symbol,
		Name:             h.name,
		Sector:           q.SectorOrDefault(),
		Shares:           h.shares,
		TotalCost:        h.totalCost,
		AvgCost:          h.totalCost.Div(h.shares),
		CurrentPrice:     q.Price,
		DayChangePercent: q.ChangePercent,
		Beta:             q.Beta,
	}
	if p.Beta == 0 {
		p.Beta = marketBeta
	}
	p.CurrentValue = p.CurrentPrice.Mul(p.Shares)
	p.UnrealizedPL = p.CurrentValue.Sub(p.TotalCost)
	p.UnrealizedPLPercent = p.UnrealizedPL.Percent(p.TotalCost)
	p.DayChangeAmount = p.CurrentPrice.MulPercent(p.DayChangePercent).Mul(p.Shares)
	return p
}

// summarize totals the retained positions.
func summarize(positions []Position, realized Money) Summary {
	s := Summary{
		TotalAssets:     M(0),
		TotalCost:       M(0),
		DayPL:           M(0),
		TotalRealizedPL: realized,
	}
	weightedBeta := decimal.Zero
	for _, p := range positions {
		s.TotalAssets = s.TotalAssets.Add(p.CurrentValue)
		s.TotalCost = s.TotalCost.Add(p.TotalCost)
		s.DayPL = s.DayPL.Add(p.DayChangeAmount)
		weightedBeta = weightedBeta.Add(p.CurrentValue.value.Mul(decimal.NewFromFloat(p.Beta)))
	}
	s.TotalPL = s.TotalAssets.Sub(s.TotalCost)
	s.TotalPLPercent = s.TotalPL.Percent(s.TotalCost)
	if !s.TotalAssets.IsZero() {
		s.PortfolioBeta = weightedBeta.Div(s.TotalAssets.value).InexactFloat64()
	}
	return s
}
