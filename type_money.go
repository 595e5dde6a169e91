package folio

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value: an amount or a per-share price.
//
// A ledger is kept in a single currency, so Money carries no currency of its own;
// the currency is only needed to format it.
type Money struct {
	value decimal.Decimal // as major unit value
}

// M returns the amount v.
func M[T number](value T) Money {
	return Money{value: toDecimal(value)}
}

// ParseMoney parses a decimal string such as "550.2".
func ParseMoney(s string) (Money, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: v}, nil
}

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Cmp(n Money) int                 { return m.value.Cmp(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(n Quantity) Money            { return Money{value: m.value.Mul(n.value)} }
func (m Money) Div(n Quantity) Money            { return Money{value: m.value.Div(n.value)} }

// Ratio returns m/n as a float, 0 when n is zero.
func (m Money) Ratio(n Money) float64 {
	if n.value.IsZero() {
		return 0
	}
	return m.value.Div(n.value).InexactFloat64()
}

// Percent returns m/n×100, 0 when n is zero.
func (m Money) Percent(n Money) Percent { return Percent(100 * m.Ratio(n)) }

// MulPercent returns m × p/100.
func (m Money) MulPercent(p Percent) Money {
	return Money{value: m.value.Mul(decimal.NewFromFloat(float64(p))).Div(decimal.NewFromInt(100))}
}

// Float returns the nearest float64; only meant for display and statistics.
func (m Money) Float() float64 { return m.value.InexactFloat64() }

// String returns the value rounded to two decimals.
func (m Money) String() string { return m.value.StringFixed(2) }

// Format returns the value formatted for an ISO currency code, using the
// currency's own symbol and fraction digits. Unknown codes fall back to String.
func (m Money) Format(currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return m.String()
	}
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// SignedFormat is like Format with an explicit sign. 0 is represented as "-".
func (m Money) SignedFormat(currency string) string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.Format(currency)
	}
	return m.Format(currency)
}

// MarshalJSON renders the money as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

func (m *Money) UnmarshalJSON(decimalBytes []byte) error {
	return m.value.UnmarshalJSON(decimalBytes)
}
