package folio

import "github.com/shopspring/decimal"

// number is what the Q and M shorthands accept: literals, mostly in tests, and
// decimals.
type number interface {
	int | int64 | float64 | decimal.Decimal
}

func toDecimal[T number](v T) decimal.Decimal {
	switch v := any(v).(type) {
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return v.(decimal.Decimal)
	}
}

// Quantity is a number of shares. Fractional shares are allowed.
type Quantity struct {
	value decimal.Decimal
}

// Q returns the quantity v.
func Q[T number](v T) Quantity { return Quantity{value: toDecimal(v)} }

// ParseQuantity parses a decimal string such as "1000" or "12.5".
func ParseQuantity(s string) (Quantity, error) {
	v, err := decimal.NewFromString(s)
	return Quantity{value: v}, err
}

func (q Quantity) Add(r Quantity) Quantity { return Quantity{value: q.value.Add(r.value)} }
func (q Quantity) Sub(r Quantity) Quantity { return Quantity{value: q.value.Sub(r.value)} }

func (q Quantity) Equal(r Quantity) bool       { return q.value.Equal(r.value) }
func (q Quantity) LessThan(r Quantity) bool    { return q.value.LessThan(r.value) }
func (q Quantity) GreaterThan(r Quantity) bool { return q.value.GreaterThan(r.value) }
func (q Quantity) IsZero() bool                { return q.value.IsZero() }
func (q Quantity) IsPositive() bool            { return q.value.IsPositive() }
func (q Quantity) IsNegative() bool            { return q.value.IsNegative() }

// Float is for statistics and display only.
func (q Quantity) Float() float64 { return q.value.InexactFloat64() }

func (q Quantity) String() string { return q.value.String() }

// MarshalJSON writes a bare JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) { return []byte(q.value.String()), nil }

// UnmarshalJSON accepts a JSON number or a quoted decimal.
func (q *Quantity) UnmarshalJSON(data []byte) error { return q.value.UnmarshalJSON(data) }
