package folio

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Side tells whether a transaction buys or sells shares.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ParseSide parses a side, case-insensitively.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Buy):
		return Buy, nil
	case string(Sell):
		return Sell, nil
	default:
		return "", fmt.Errorf("unsupported side %q (use BUY|SELL)", s)
	}
}

// Transaction is one trade recorded in the ledger.
//
// Transactions are immutable: the ledger owner creates and deletes them, nothing
// else ever changes them.
type Transaction struct {
	ID     string   // ID is assigned at creation and never reassigned.
	Date   Date     // Date is the day the trade occurred.
	Symbol string   // Symbol is the normalized ticker.
	Name   string   // Name is a human-readable label for the symbol.
	Side   Side     // Side is either Buy or Sell.
	Shares Quantity // Shares is the positive quantity traded.
	Price  Money    // Price is the per-share execution price.
	Fee    Money    // Fee is the transaction cost, capitalized on buys.
}

// NewBuy creates a new buy transaction with a fresh ID.
func NewBuy(day Date, symbol, name string, shares Quantity, price, fee Money) Transaction {
	return Transaction{
		ID:     uuid.NewString(),
		Date:   day,
		Symbol: NormalizeSymbol(symbol),
		Name:   strings.TrimSpace(name),
		Side:   Buy,
		Shares: shares,
		Price:  price,
		Fee:    fee,
	}
}

// NewSell creates a new sell transaction with a fresh ID.
func NewSell(day Date, symbol, name string, shares Quantity, price, fee Money) Transaction {
	tx := NewBuy(day, symbol, name, shares, price, fee)
	tx.Side = Sell
	return tx
}

// NormalizeSymbol returns the uppercase alphanumeric form of a ticker, with
// whitespace and punctuation removed.
func NormalizeSymbol(symbol string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, symbol)
}

// Amount returns shares × price, fees excluded.
func (t Transaction) Amount() Money { return t.Price.Mul(t.Shares) }

// Validate checks the transaction before it enters the ledger. It returns a
// normalized copy, or an error joining every failed check.
func (t Transaction) Validate() (Transaction, error) {
	t.Symbol = NormalizeSymbol(t.Symbol)
	t.Name = strings.TrimSpace(t.Name)

	var errs []error
	if strings.TrimSpace(t.ID) == "" {
		errs = append(errs, errors.New("id is missing"))
	}
	if t.Symbol == "" {
		errs = append(errs, errors.New("symbol is missing"))
	}
	if t.Date.IsZero() {
		errs = append(errs, errors.New("date is missing"))
	}
	if t.Side != Buy && t.Side != Sell {
		errs = append(errs, fmt.Errorf("unsupported side %q", t.Side))
	}
	if !t.Shares.IsPositive() {
		errs = append(errs, fmt.Errorf("shares must be positive, got %s", t.Shares))
	}
	if t.Price.IsNegative() {
		errs = append(errs, fmt.Errorf("price must not be negative, got %s", t.Price))
	}
	if t.Fee.IsNegative() {
		errs = append(errs, fmt.Errorf("fee must not be negative, got %s", t.Fee))
	}
	if len(errs) > 0 {
		return t, fmt.Errorf("invalid transaction %q: %w", t.ID, errors.Join(errs...))
	}
	return t, nil
}

// SortTransactions sorts transactions chronologically, in place. Transactions
// on the same day keep their relative order.
func SortTransactions(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		return a.Date.Time().Compare(b.Date.Time())
	})
}

// MarshalJSON writes the ledger fields in a fixed order, omitting an empty
// name and a zero fee.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var o orderedObject
	o.set("id", t.ID)
	o.set("date", t.Date)
	o.set("side", t.Side)
	o.set("symbol", t.Symbol)
	if t.Name != "" {
		o.set("name", t.Name)
	}
	o.set("shares", t.Shares)
	o.set("price", t.Price)
	if !t.Fee.IsZero() {
		o.set("fee", t.Fee)
	}
	return o.bytes()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID     string   `json:"id"`
		Date   Date     `json:"date"`
		Side   string   `json:"side"`
		Symbol string   `json:"symbol"`
		Name   string   `json:"name"`
		Shares Quantity `json:"shares"`
		Price  Money    `json:"price"`
		Fee    Money    `json:"fee"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	side, err := ParseSide(temp.Side)
	if err != nil {
		return err
	}
	*t = Transaction{
		ID:     temp.ID,
		Date:   temp.Date,
		Symbol: temp.Symbol,
		Name:   temp.Name,
		Side:   side,
		Shares: temp.Shares,
		Price:  temp.Price,
		Fee:    temp.Fee,
	}
	return nil
}
