package folio

// Position is the holding of a single symbol, valued against a price snapshot.
//
// Positions are derived: they are recomputed from the ledger and the snapshot on
// every run and never persisted.
type Position struct {
	Symbol              string   `json:"symbol"`
	Name                string   `json:"name"`
	Sector              string   `json:"sector"`
	Shares              Quantity `json:"shares"`
	TotalCost           Money    `json:"totalCost"` // weighted cost basis of the shares held
	AvgCost             Money    `json:"avgCost"`
	CurrentPrice        Money    `json:"currentPrice"`
	CurrentValue        Money    `json:"currentValue"`
	UnrealizedPL        Money    `json:"unrealizedPL"`
	UnrealizedPLPercent Percent  `json:"unrealizedPLPercent"`
	DayChangePercent    Percent  `json:"dayChangePercent"`
	DayChangeAmount     Money    `json:"dayChangeAmount"`
	Beta                float64  `json:"beta"`
}

// Summary aggregates the retained positions of a portfolio.
type Summary struct {
	TotalAssets     Money   `json:"totalAssets"`
	TotalCost       Money   `json:"totalCost"`
	TotalPL         Money   `json:"totalPL"`
	TotalPLPercent  Percent `json:"totalPLPercent"`
	DayPL           Money   `json:"dayPL"`
	TotalRealizedPL Money   `json:"totalRealizedPL"` // over the whole ledger history
	PortfolioBeta   float64 `json:"portfolioBeta"`
}
