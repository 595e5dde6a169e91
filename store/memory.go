package store

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/etnz/folio"
)

//go:embed demo
var demo embed.FS

// Memory is a Store kept in memory. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	txs    []folio.Transaction
	quotes folio.Quotes
}

// NewMemory returns a Memory store holding a copy of txs and quotes.
func NewMemory(txs []folio.Transaction, quotes folio.Quotes) *Memory {
	m := &Memory{txs: slices.Clone(txs), quotes: make(folio.Quotes, len(quotes))}
	for k, q := range quotes {
		m.quotes[k] = q
	}
	return m
}

// NewDemo returns a Memory store loaded with the demonstration portfolio.
func NewDemo() (*Memory, error) {
	data, err := demo.ReadFile("demo/transactions.jsonl")
	if err != nil {
		return nil, err
	}
	txs, err := folio.DecodeTransactions(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid demo ledger: %w", err)
	}

	data, err = demo.ReadFile("demo/quotes.json")
	if err != nil {
		return nil, err
	}
	var quotes []folio.PriceQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("invalid demo quotes: %w", err)
	}
	return NewMemory(txs, folio.NewQuotes(quotes...)), nil
}

func (m *Memory) Transactions(ctx context.Context) ([]folio.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.txs), nil
}

func (m *Memory) Quotes(ctx context.Context) (folio.Quotes, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	quotes := make(folio.Quotes, len(m.quotes))
	for k, q := range m.quotes {
		quotes[k] = q
	}
	return quotes, nil
}

// Append validates tx and adds it at the end of the ledger.
func (m *Memory) Append(ctx context.Context, tx folio.Transaction) error {
	tx, err := tx.Validate()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.txs, func(t folio.Transaction) bool { return t.ID == tx.ID }) {
		return fmt.Errorf("transaction %q already exists", tx.ID)
	}
	m.txs = append(m.txs, tx)
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.txs, func(t folio.Transaction) bool { return t.ID == id })
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	m.txs = slices.Delete(m.txs, i, i+1)
	return nil
}

// PutQuotes merges quotes into the snapshot.
func (m *Memory) PutQuotes(ctx context.Context, quotes ...folio.PriceQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range quotes {
		m.quotes[q.Symbol] = q
	}
	return nil
}
