// Package store defines where the ledger and the price snapshot come from.
//
// A Store is the only owner of the ledger: it appends and deletes transactions,
// everything downstream reads an immutable copy.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/folio"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when deleting a transaction the store does not hold.
var ErrNotFound = errors.New("transaction not found")

// Store gives access to a ledger and to a price snapshot.
type Store interface {
	// Transactions returns the whole ledger, in ledger order.
	Transactions(ctx context.Context) ([]folio.Transaction, error)
	// Quotes returns the current price snapshot.
	Quotes(ctx context.Context) (folio.Quotes, error)
	// Append durably records a new transaction.
	Append(ctx context.Context, tx folio.Transaction) error
	// Delete durably removes the transaction with the given id.
	Delete(ctx context.Context, id string) error
}

// Reader is implemented by stores that fetch the ledger and the price
// snapshot in a single read, such as a remote endpoint serving both.
type Reader interface {
	Read(ctx context.Context) ([]folio.Transaction, folio.Quotes, error)
}

// Snapshot reads the store and runs the valuation engine over it.
//
// The ledger and the quotes come from a single read when s is a Reader, and
// from two concurrent reads otherwise.
func Snapshot(ctx context.Context, s Store, now time.Time) (*folio.Report, []folio.Transaction, error) {
	txs, quotes, err := ReadAll(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	positions, summary := folio.Aggregate(txs, quotes)
	return folio.NewReport(positions, summary, txs, now), txs, nil
}

// ReadAll returns the ledger and the quotes of s, as consistent as s allows.
func ReadAll(ctx context.Context, s Store) ([]folio.Transaction, folio.Quotes, error) {
	if r, ok := s.(Reader); ok {
		return r.Read(ctx)
	}

	var (
		txs    []folio.Transaction
		quotes folio.Quotes
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if txs, err = s.Transactions(gctx); err != nil {
			return fmt.Errorf("could not read transactions: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if quotes, err = s.Quotes(gctx); err != nil {
			return fmt.Errorf("could not read quotes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txs, quotes, nil
}
