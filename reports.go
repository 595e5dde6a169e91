package folio

import (
	"cmp"
	"math"
	"slices"
	"time"
)

// Report collects every analytics view derived from one aggregation run.
//
// A Report is a read-only downstream transform: building it never changes the
// positions or the summary it was built from.
type Report struct {
	AsOf            Date             `json:"asOf"`
	Summary         Summary          `json:"summary"`
	Positions       []Position       `json:"positions"`
	Sectors         []SectorWeight   `json:"sectors"`
	Weights         []PositionWeight `json:"weights"`
	Winners         []Position       `json:"winners"`
	Losers          []Position       `json:"losers"`
	NetReturn       NetReturn        `json:"netReturn"`
	Annualized      Percent          `json:"annualizedReturn"`
	Heatmap         []HeatmapCell    `json:"heatmap"`
	Behavior        BehaviorMetrics  `json:"behavior"`
	Diversification float64          `json:"diversification"`
	Gaps            []CostBasisGap   `json:"costBasisGaps"`
	Risk            RiskBand         `json:"risk"`
}

// NewReport computes all the analytics views at instant now.
func NewReport(positions []Position, summary Summary, txs []Transaction, now time.Time) *Report {
	winners, losers := WinnersAndLosers(positions)
	if positions == nil {
		positions = []Position{}
	}
	return &Report{
		AsOf:            DateOf(now),
		Summary:         summary,
		Positions:       positions,
		Sectors:         SectorAllocation(positions, summary),
		Weights:         PositionWeights(positions, summary),
		Winners:         winners,
		Losers:          losers,
		NetReturn:       NetReturnOf(summary),
		Annualized:      AnnualizedReturn(summary, txs, now),
		Heatmap:         ActivityHeatmap(txs, now),
		Behavior:        Behavior(txs, now),
		Diversification: Diversification(positions),
		Gaps:            CostBasisGaps(positions),
		Risk:            RiskBandOf(summary.PortfolioBeta),
	}
}

// SectorWeight is the share of the portfolio held in one sector.
type SectorWeight struct {
	Sector string  `json:"sector"`
	Value  Money   `json:"value"`
	Weight Percent `json:"weight"`
}

// SectorAllocation groups positions by sector, largest sector first.
func SectorAllocation(positions []Position, summary Summary) []SectorWeight {
	sectors := []SectorWeight{}
	index := make(map[string]int)
	for _, p := range positions {
		i, ok := index[p.Sector]
		if !ok {
			i = len(sectors)
			index[p.Sector] = i
			sectors = append(sectors, SectorWeight{Sector: p.Sector, Value: M(0)})
		}
		sectors[i].Value = sectors[i].Value.Add(p.CurrentValue)
	}
	for i := range sectors {
		sectors[i].Weight = sectors[i].Value.Percent(summary.TotalAssets)
	}
	slices.SortStableFunc(sectors, func(a, b SectorWeight) int {
		return b.Value.Cmp(a.Value)
	})
	return sectors
}

// PositionWeight is the share of the portfolio held in one symbol.
type PositionWeight struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Value  Money   `json:"value"`
	Weight Percent `json:"weight"`
}

// PositionWeights returns each position's weight, largest first.
func PositionWeights(positions []Position, summary Summary) []PositionWeight {
	weights := make([]PositionWeight, 0, len(positions))
	for _, p := range positions {
		weights = append(weights, PositionWeight{
			Symbol: p.Symbol,
			Name:   p.Name,
			Value:  p.CurrentValue,
			Weight: p.CurrentValue.Percent(summary.TotalAssets),
		})
	}
	slices.SortStableFunc(weights, func(a, b PositionWeight) int {
		return b.Value.Cmp(a.Value)
	})
	return weights
}

const moversCount = 3

// WinnersAndLosers returns up to three positions with the largest unrealized gain,
// and up to three with the largest unrealized loss (worst first).
func WinnersAndLosers(positions []Position) (winners, losers []Position) {
	sorted := slices.Clone(positions)
	slices.SortStableFunc(sorted, func(a, b Position) int {
		return b.UnrealizedPL.Cmp(a.UnrealizedPL)
	})

	winners, losers = []Position{}, []Position{}
	for _, p := range sorted {
		if len(winners) == moversCount || !p.UnrealizedPL.IsPositive() {
			break
		}
		winners = append(winners, p)
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		if len(losers) == moversCount || !p.UnrealizedPL.IsNegative() {
			break
		}
		losers = append(losers, p)
	}
	return winners, losers
}

// NetReturn is the unrealized plus realized profit of the portfolio.
type NetReturn struct {
	PL      Money   `json:"pl"`
	Percent Percent `json:"percent"` // relative to the cost of the open positions
}

// NetReturnOf folds realized gains into the summary's unrealized profit.
func NetReturnOf(summary Summary) NetReturn {
	pl := summary.TotalPL.Add(summary.TotalRealizedPL)
	return NetReturn{PL: pl, Percent: pl.Percent(summary.TotalCost)}
}

// AnnualizedReturn returns a compounded yearly rate of return, anchored on the
// earliest transaction date.
//
// Realized gains are added back to the current assets as a terminal value, so
// closed profits still count. Cash flow timing beyond the first date is ignored.
func AnnualizedReturn(summary Summary, txs []Transaction, now time.Time) Percent {
	if len(txs) == 0 || !summary.TotalCost.IsPositive() {
		return 0
	}
	first := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(first) {
			first = tx.Date
		}
	}
	days := math.Ceil(float64(now.Sub(first.Time())) / float64(Day))
	if days <= 0 {
		return 0
	}
	multiplier := summary.TotalAssets.Add(summary.TotalRealizedPL).Ratio(summary.TotalCost)
	if multiplier <= 0 {
		return 0
	}
	return Percent((math.Pow(multiplier, 365/days) - 1) * 100)
}

// heatmapWeeks is the depth of the activity heatmap.
const heatmapWeeks = 4

// HeatmapCell is the trading activity of a single day.
type HeatmapCell struct {
	Date   Date `json:"date"`
	Count  int  `json:"count"`
	Future bool `json:"future"`
	Level  int  `json:"level"` // 0 to 4, darker means busier
}

// ActivityHeatmap counts transactions per day over the four Sunday to Saturday
// weeks ending on the upcoming Saturday. Days after today are flagged Future and
// count nothing.
func ActivityHeatmap(txs []Transaction, now time.Time) []HeatmapCell {
	today := DateOf(now)
	end := today.EndOfWeek()
	start := end.Add(-7*heatmapWeeks + 1)

	counts := make(map[Date]int)
	for _, tx := range txs {
		counts[tx.Date]++
	}

	cells := make([]HeatmapCell, 0, 7*heatmapWeeks)
	for day := start; !day.After(end); day = day.Add(1) {
		cell := HeatmapCell{Date: day, Future: day.After(today)}
		if !cell.Future {
			cell.Count = counts[day]
			cell.Level = min(cell.Count, 4)
		}
		cells = append(cells, cell)
	}
	return cells
}

// behaviorWindow is the number of days looked back by Behavior.
const behaviorWindow = 30

// BehaviorMetrics summarizes how often the owner trades.
type BehaviorMetrics struct {
	TotalTrades     int     `json:"totalTrades"`
	RecentTrades    int     `json:"recentTrades"`    // over the last 30 days, today included
	WeeklyFrequency float64 `json:"weeklyFrequency"` // recent trades per week
}

// Behavior counts trades overall and over the last 30 days.
func Behavior(txs []Transaction, now time.Time) BehaviorMetrics {
	today := DateOf(now)
	from := today.Add(-behaviorWindow)
	m := BehaviorMetrics{TotalTrades: len(txs)}
	for _, tx := range txs {
		if tx.Date.Before(from) || tx.Date.After(today) {
			continue
		}
		m.RecentTrades++
	}
	m.WeeklyFrequency = float64(m.RecentTrades) / 4
	return m
}

// Diversification scores the spread of the portfolio from 0 to 10, counting
// symbols and sectors held.
func Diversification(positions []Position) float64 {
	sectors := make(map[string]struct{})
	for _, p := range positions {
		sectors[p.Sector] = struct{}{}
	}
	return math.Min(10, 0.5*float64(len(positions))+1.5*float64(len(sectors)))
}

// CostBasisGap is the distance between the market price and the average cost.
type CostBasisGap struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Gap    Percent `json:"gap"`
}

// CostBasisGaps returns the price gap of every position, largest gain first.
func CostBasisGaps(positions []Position) []CostBasisGap {
	gaps := make([]CostBasisGap, 0, len(positions))
	for _, p := range positions {
		gaps = append(gaps, CostBasisGap{
			Symbol: p.Symbol,
			Name:   p.Name,
			Gap:    p.CurrentPrice.Sub(p.AvgCost).Percent(p.AvgCost),
		})
	}
	slices.SortStableFunc(gaps, func(a, b CostBasisGap) int {
		return cmp.Compare(b.Gap, a.Gap)
	})
	return gaps
}

// RiskBand describes the volatility of the portfolio relative to the market.
type RiskBand string

const (
	LowVolatility  RiskBand = "low-volatility"
	MarketAligned  RiskBand = "market-aligned"
	HighVolatility RiskBand = "high-volatility"
)

// RiskBandOf classifies a portfolio beta.
func RiskBandOf(beta float64) RiskBand {
	switch {
	case beta < 0.8:
		return LowVolatility
	case beta > 1.2:
		return HighVolatility
	default:
		return MarketAligned
	}
}
