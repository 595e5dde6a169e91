package folio

// DefaultSector is the sector of symbols whose quote does not name one.
const DefaultSector = "unclassified"

// PriceQuote is the market state of one symbol in a price snapshot.
type PriceQuote struct {
	Symbol        string  `json:"symbol"`
	Price         Money   `json:"price"`
	ChangePercent Percent `json:"changePercent"` // move since prior close
	Sector        string  `json:"sector,omitempty"`
	Beta          float64 `json:"beta,omitempty"` // 0 when unknown
}

// SectorOrDefault returns the quote's sector, or DefaultSector when it has none.
func (q PriceQuote) SectorOrDefault() string {
	if q.Sector == "" {
		return DefaultSector
	}
	return q.Sector
}

// Quotes is a price snapshot indexed by symbol.
type Quotes map[string]PriceQuote

// NewQuotes indexes quotes by symbol. Later quotes override earlier ones.
func NewQuotes(quotes ...PriceQuote) Quotes {
	qs := make(Quotes, len(quotes))
	for _, q := range quotes {
		qs[q.Symbol] = q
	}
	return qs
}

// Get returns the quote for symbol. A missing quote reads as a zero-valued quote
// in the default sector.
func (qs Quotes) Get(symbol string) PriceQuote {
	if q, ok := qs[symbol]; ok {
		return q
	}
	return PriceQuote{Symbol: symbol}
}
