// Package sqlite keeps the ledger and the last price snapshot in a local SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/folio"
	"github.com/etnz/folio/store"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq    INTEGER PRIMARY KEY AUTOINCREMENT,
	id     TEXT NOT NULL UNIQUE,
	date   TEXT NOT NULL,
	side   TEXT NOT NULL,
	symbol TEXT NOT NULL,
	name   TEXT NOT NULL DEFAULT '',
	shares TEXT NOT NULL,
	price  TEXT NOT NULL,
	fee    TEXT NOT NULL DEFAULT '0'
);
CREATE TABLE IF NOT EXISTS quotes (
	symbol         TEXT PRIMARY KEY,
	price          TEXT NOT NULL,
	change_percent REAL NOT NULL DEFAULT 0,
	sector         TEXT NOT NULL DEFAULT '',
	beta           REAL NOT NULL DEFAULT 0
);
`

// DB is a store.Store on top of a SQLite database file.
type DB struct {
	conn *sql.DB
	path string
}

var _ store.Store = (*DB)(nil)

// Open opens, and creates if needed, the database at path.
func Open(path string) (*DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Use WAL mode for better concurrency
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// a single writer keeps the ledger order
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("sqlite store opened")
	return &DB{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Transactions returns the ledger in insertion order.
func (db *DB) Transactions(ctx context.Context) ([]folio.Transaction, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, date, side, symbol, name, shares, price, fee FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []folio.Transaction
	for rows.Next() {
		var tx folio.Transaction
		var side string
		if err := rows.Scan(&tx.ID, &tx.Date, &side, &tx.Symbol, &tx.Name, &tx.Shares, &tx.Price, &tx.Fee); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Side = folio.Side(side)
		tx, err := tx.Validate()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Quotes returns the stored price snapshot.
func (db *DB) Quotes(ctx context.Context) (folio.Quotes, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT symbol, price, change_percent, sector, beta FROM quotes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make(folio.Quotes)
	for rows.Next() {
		var q folio.PriceQuote
		var change float64
		if err := rows.Scan(&q.Symbol, &q.Price, &change, &q.Sector, &q.Beta); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		q.ChangePercent = folio.Percent(change)
		quotes[q.Symbol] = q
	}
	return quotes, rows.Err()
}

// Append validates tx and inserts it at the end of the ledger.
func (db *DB) Append(ctx context.Context, tx folio.Transaction) error {
	tx, err := tx.Validate()
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO transactions (id, date, side, symbol, name, shares, price, fee) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Date, string(tx.Side), tx.Symbol, tx.Name, tx.Shares, tx.Price, tx.Fee)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %q: %w", tx.ID, err)
	}
	return nil
}

// Delete removes the transaction with the given id.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("delete %q: %w", id, store.ErrNotFound)
	}
	return nil
}

// PutQuotes replaces the stored quotes of the given symbols, in a single transaction.
func (db *DB) PutQuotes(ctx context.Context, quotes ...folio.PriceQuote) (err error) {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, sqlTx.Rollback())
		}
	}()

	stmt, err := sqlTx.PrepareContext(ctx,
		`INSERT INTO quotes (symbol, price, change_percent, sector, beta) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET price = excluded.price, change_percent = excluded.change_percent,
		 sector = excluded.sector, beta = excluded.beta`)
	if err != nil {
		return fmt.Errorf("failed to prepare quote upsert: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		if _, err := stmt.ExecContext(ctx, q.Symbol, q.Price, float64(q.ChangePercent), q.Sector, q.Beta); err != nil {
			return fmt.Errorf("failed to upsert quote %q: %w", q.Symbol, err)
		}
	}
	return sqlTx.Commit()
}

// Import copies every transaction and quote of src into db.
// Transactions already present, by id, are skipped.
func (db *DB) Import(ctx context.Context, src store.Store) (int, error) {
	txs, err := src.Transactions(ctx)
	if err != nil {
		return 0, err
	}
	quotes, err := src.Quotes(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, tx := range txs {
		res, err := db.conn.ExecContext(ctx,
			`INSERT OR IGNORE INTO transactions (id, date, side, symbol, name, shares, price, fee) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.ID, tx.Date, string(tx.Side), tx.Symbol, tx.Name, tx.Shares, tx.Price, tx.Fee)
		if err != nil {
			return n, fmt.Errorf("failed to import transaction %q: %w", tx.ID, err)
		}
		if added, _ := res.RowsAffected(); added > 0 {
			n++
		}
	}

	all := make([]folio.PriceQuote, 0, len(quotes))
	for _, q := range quotes {
		all = append(all, q)
	}
	return n, db.PutQuotes(ctx, all...)
}
