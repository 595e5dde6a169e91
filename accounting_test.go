package folio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tx is a test helper building a valid transaction with a deterministic id.
func tx(id, day string, side Side, symbol string, shares, price, fee float64) Transaction {
	return Transaction{
		ID:     id,
		Date:   MustParse(day),
		Symbol: symbol,
		Side:   side,
		Shares: Q(shares),
		Price:  M(price),
		Fee:    M(fee),
	}
}

func TestAggregate_EndToEnd(t *testing.T) {
	txs := []Transaction{
		tx("1", "2023-10-01", Buy, "2330", 1000, 550, 200),
		tx("2", "2023-11-15", Buy, "2317", 2000, 100, 150),
	}
	quotes := NewQuotes(
		PriceQuote{Symbol: "2330", Price: M(780), ChangePercent: 1.5},
		PriceQuote{Symbol: "2317", Price: M(145), ChangePercent: -0.5},
	)

	positions, summary := Aggregate(txs, quotes)
	require.Len(t, positions, 2)

	tsmc := positions[0]
	assert.Equal(t, "2330", tsmc.Symbol)
	assert.True(t, tsmc.Shares.Equal(Q(1000)), "shares got %s", tsmc.Shares)
	assert.True(t, tsmc.TotalCost.Equal(M(550200)), "totalCost got %s", tsmc.TotalCost)
	assert.True(t, tsmc.AvgCost.Equal(M(550.2)), "avgCost got %s", tsmc.AvgCost)
	assert.True(t, tsmc.CurrentValue.Equal(M(780000)), "currentValue got %s", tsmc.CurrentValue)
	assert.True(t, tsmc.UnrealizedPL.Equal(M(229800)), "unrealizedPL got %s", tsmc.UnrealizedPL)
	assert.True(t, tsmc.DayChangeAmount.Equal(M(11700)), "dayChangeAmount got %s", tsmc.DayChangeAmount)
	assert.Equal(t, DefaultSector, tsmc.Sector)

	hon := positions[1]
	assert.Equal(t, "2317", hon.Symbol)
	assert.True(t, hon.TotalCost.Equal(M(200150)), "totalCost got %s", hon.TotalCost)
	assert.True(t, hon.AvgCost.Equal(M(100.075)), "avgCost got %s", hon.AvgCost)
	assert.True(t, hon.CurrentValue.Equal(M(290000)), "currentValue got %s", hon.CurrentValue)
	assert.True(t, hon.UnrealizedPL.Equal(M(89850)), "unrealizedPL got %s", hon.UnrealizedPL)

	assert.True(t, summary.TotalAssets.Equal(M(1070000)), "totalAssets got %s", summary.TotalAssets)
	assert.True(t, summary.TotalCost.Equal(M(750350)), "totalCost got %s", summary.TotalCost)
	assert.True(t, summary.TotalPL.Equal(M(319650)), "totalPL got %s", summary.TotalPL)
	assert.True(t, summary.TotalRealizedPL.IsZero())
	// both quotes lack a beta, so both count as the market
	assert.InDelta(t, 1.0, summary.PortfolioBeta, 1e-9)
}

func TestAggregate_WeightedAverageCost(t *testing.T) {
	txs := []Transaction{
		tx("1", "2024-01-02", Buy, "AAPL", 100, 10, 0),
		tx("2", "2024-01-03", Buy, "AAPL", 100, 20, 0),
		tx("3", "2024-01-04", Sell, "AAPL", 100, 25, 5),
	}
	positions, summary := Aggregate(txs, NewQuotes(PriceQuote{Symbol: "AAPL", Price: M(30)}))
	require.Len(t, positions, 1)

	p := positions[0]
	assert.True(t, p.Shares.Equal(Q(100)), "shares got %s", p.Shares)
	assert.True(t, p.TotalCost.Equal(M(1500)), "totalCost got %s", p.TotalCost)
	assert.True(t, p.AvgCost.Equal(M(15)), "avgCost got %s", p.AvgCost)
	// 100×25 − 5 − 100×15
	assert.True(t, summary.TotalRealizedPL.Equal(M(995)), "realized got %s", summary.TotalRealizedPL)
}

func TestAggregate_Degeneracies(t *testing.T) {
	testCases := []struct {
		name        string
		txs         []Transaction
		quotes      Quotes
		wantSymbols []string
	}{
		{
			name:        "empty ledger",
			wantSymbols: []string{},
		},
		{
			name: "fully liquidated",
			txs: []Transaction{
				tx("1", "2024-01-02", Buy, "AAPL", 10, 10, 1),
				tx("2", "2024-01-03", Sell, "AAPL", 10, 12, 1),
			},
			quotes:      NewQuotes(PriceQuote{Symbol: "AAPL", Price: M(12)}),
			wantSymbols: []string{},
		},
		{
			name: "oversell without a position",
			txs: []Transaction{
				tx("1", "2024-01-02", Sell, "MSFT", 10, 100, 0),
			},
			wantSymbols: []string{},
		},
		{
			name: "oversell then buy starts fresh",
			txs: []Transaction{
				tx("1", "2024-01-02", Buy, "MSFT", 5, 100, 0),
				tx("2", "2024-01-03", Sell, "MSFT", 10, 100, 0),
				tx("3", "2024-01-04", Buy, "MSFT", 2, 50, 0),
			},
			wantSymbols: []string{"MSFT"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			positions, summary := Aggregate(tc.txs, tc.quotes)
			got := []string{}
			for _, p := range positions {
				got = append(got, p.Symbol)
				assert.True(t, p.Shares.IsPositive(), "%s: shares got %s", p.Symbol, p.Shares)
			}
			assert.Equal(t, tc.wantSymbols, got)
			if len(positions) == 0 {
				assert.True(t, summary.TotalAssets.IsZero())
				assert.True(t, summary.TotalCost.IsZero())
				assert.Zero(t, summary.PortfolioBeta)
			}
		})
	}
}

func TestAggregate_OversellThenBuy(t *testing.T) {
	txs := []Transaction{
		tx("1", "2024-01-02", Buy, "MSFT", 5, 100, 0),
		tx("2", "2024-01-03", Sell, "MSFT", 10, 100, 0),
		tx("3", "2024-01-04", Buy, "MSFT", 2, 50, 0),
	}
	positions, _ := Aggregate(txs, nil)
	require.Len(t, positions, 1)
	assert.True(t, positions[0].Shares.Equal(Q(2)))
	assert.True(t, positions[0].TotalCost.Equal(M(100)), "residual cost must be discarded, got %s", positions[0].TotalCost)
}

func TestAggregate_MissingQuote(t *testing.T) {
	txs := []Transaction{tx("1", "2024-01-02", Buy, "NVDA", 3, 100, 0)}
	positions, summary := Aggregate(txs, NewQuotes())
	require.Len(t, positions, 1)

	p := positions[0]
	assert.True(t, p.CurrentPrice.IsZero())
	assert.True(t, p.CurrentValue.IsZero())
	assert.True(t, p.UnrealizedPL.Equal(M(-300)), "unrealizedPL got %s", p.UnrealizedPL)
	assert.Equal(t, Percent(0), p.DayChangePercent)
	assert.True(t, summary.TotalPL.Equal(M(-300)))
}

func TestAggregate_ZeroCost(t *testing.T) {
	// shares received for free
	txs := []Transaction{tx("1", "2024-01-02", Buy, "GIFT", 10, 0, 0)}
	positions, summary := Aggregate(txs, NewQuotes(PriceQuote{Symbol: "GIFT", Price: M(5)}))
	require.Len(t, positions, 1)
	assert.Equal(t, Percent(0), positions[0].UnrealizedPLPercent)
	assert.Equal(t, Percent(0), summary.TotalPLPercent)
}

func TestAggregate_NameLastNonEmptyWins(t *testing.T) {
	first := tx("1", "2024-01-02", Buy, "AAPL", 1, 10, 0)
	first.Name = "Apple"
	second := tx("2", "2024-01-03", Buy, "AAPL", 1, 10, 0)
	third := tx("3", "2024-01-04", Buy, "AAPL", 1, 10, 0)
	third.Name = "Apple Inc."
	fourth := tx("4", "2024-01-05", Buy, "AAPL", 1, 10, 0)

	positions, _ := Aggregate([]Transaction{first, second, third, fourth}, nil)
	require.Len(t, positions, 1)
	assert.Equal(t, "Apple Inc.", positions[0].Name)
}

func TestAggregate_SortAndSums(t *testing.T) {
	txs := []Transaction{
		tx("1", "2024-01-02", Buy, "A", 1, 10, 0),
		tx("2", "2024-01-02", Buy, "B", 1, 10, 0),
		tx("3", "2024-01-02", Buy, "C", 1, 10, 0),
		tx("4", "2024-01-02", Buy, "D", 1, 10, 0),
	}
	quotes := NewQuotes(
		PriceQuote{Symbol: "A", Price: M(5)},
		PriceQuote{Symbol: "B", Price: M(50)},
		PriceQuote{Symbol: "C", Price: M(5)},
		PriceQuote{Symbol: "D", Price: M(20)},
	)
	positions, summary := Aggregate(txs, quotes)

	got := []string{}
	assets, cost := M(0), M(0)
	for _, p := range positions {
		got = append(got, p.Symbol)
		assets = assets.Add(p.CurrentValue)
		cost = cost.Add(p.TotalCost)
	}
	// ties keep the order of first appearance
	assert.Equal(t, []string{"B", "D", "A", "C"}, got)
	assert.True(t, assets.Equal(summary.TotalAssets))
	assert.True(t, cost.Equal(summary.TotalCost))
}

func TestAggregate_Idempotent(t *testing.T) {
	txs := []Transaction{
		tx("1", "2024-01-02", Buy, "A", 3, 10, 1),
		tx("2", "2024-01-03", Sell, "A", 1, 12, 1),
		tx("3", "2024-01-04", Buy, "B", 7, 3.3, 0.5),
	}
	quotes := NewQuotes(
		PriceQuote{Symbol: "A", Price: M(11), ChangePercent: 2, Beta: 1.4},
		PriceQuote{Symbol: "B", Price: M(3), ChangePercent: -1, Sector: "Energy"},
	)
	p1, s1 := Aggregate(txs, quotes)
	p2, s2 := Aggregate(txs, quotes)
	assert.Equal(t, p1, p2)
	assert.Equal(t, s1, s2)
}

func TestAggregate_PortfolioBeta(t *testing.T) {
	txs := []Transaction{
		tx("1", "2024-01-02", Buy, "A", 1, 10, 0),
		tx("2", "2024-01-02", Buy, "B", 3, 10, 0),
	}
	quotes := NewQuotes(
		PriceQuote{Symbol: "A", Price: M(100), Beta: 2},
		PriceQuote{Symbol: "B", Price: M(100), Beta: 0.5},
	)
	_, summary := Aggregate(txs, quotes)
	// (100×2 + 300×0.5) / 400
	assert.InDelta(t, 0.875, summary.PortfolioBeta, 1e-9)
}

func TestTransactions_Chronological(t *testing.T) {
	txs := []Transaction{
		tx("b", "2024-02-01", Buy, "A", 1, 1, 0),
		tx("a", "2024-01-01", Buy, "A", 1, 1, 0),
		tx("c", "2024-02-01", Sell, "A", 1, 1, 0),
	}
	SortTransactions(txs)
	ids := []string{txs[0].ID, txs[1].ID, txs[2].ID}
	if want := []string{"a", "b", "c"}; !assert.Equal(t, want, ids) {
		return
	}
	assert.Equal(t, time.February, txs[2].Date.Month())
}
