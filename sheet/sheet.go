// Package sheet reads and writes the ledger kept in a spreadsheet published as a
// web endpoint.
//
// The endpoint speaks loosely typed JSON: numbers may come as strings, column
// names vary, and rows may be incomplete. Every record goes through a validating
// parse before it reaches the engine; records that do not parse are skipped and
// logged.
//
// Protocol:
//
//	GET  <url>?action=read                      {"transactions":[...],"quotes":[...],"benchmark":[...]}
//	POST <url> {"action":"append","transaction":{...}}
//	POST <url> {"action":"delete","id":"..."}   404 when the id is unknown
package sheet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio"
	"github.com/etnz/folio/risk"
	"github.com/etnz/folio/store"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds every call to the endpoint.
const DefaultTimeout = 15 * time.Second

// Client is a store.Store backed by a spreadsheet endpoint.
type Client struct {
	url    string
	client *http.Client
}

var _ store.Store = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the http client used to reach the endpoint.
func WithHTTPClient(c *http.Client) Option { return func(s *Client) { s.client = c } }

// WithTimeout sets the timeout of each call.
func WithTimeout(d time.Duration) Option {
	return func(s *Client) {
		c := *s.client
		c.Timeout = d
		s.client = &c
	}
}

// New returns a client for the endpoint at addr.
func New(addr string, opts ...Option) *Client {
	c := &Client{url: addr, client: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read fetches the ledger and the price snapshot in a single call.
func (c *Client) Read(ctx context.Context) ([]folio.Transaction, folio.Quotes, error) {
	addr, err := url.Parse(c.url)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid sheet url %q: %w", c.url, err)
	}
	q := addr.Query()
	q.Set("action", "read")
	addr.RawQuery = q.Encode()

	var payload any
	if err := jwget(ctx, c.client, addr.String(), &payload); err != nil {
		return nil, nil, fmt.Errorf("cannot read sheet: %w", err)
	}
	return parsePayload(payload)
}

func (c *Client) Transactions(ctx context.Context) ([]folio.Transaction, error) {
	txs, _, err := c.Read(ctx)
	return txs, err
}

func (c *Client) Quotes(ctx context.Context) (folio.Quotes, error) {
	_, quotes, err := c.Read(ctx)
	return quotes, err
}

// Append validates tx and appends it to the sheet.
func (c *Client) Append(ctx context.Context, tx folio.Transaction) error {
	tx, err := tx.Validate()
	if err != nil {
		return err
	}
	body := map[string]any{"action": "append", "transaction": tx}
	if err := jwpost(ctx, c.client, c.url, body, nil); err != nil {
		return fmt.Errorf("cannot append transaction %q: %w", tx.ID, err)
	}
	return nil
}

// Delete removes the transaction with the given id from the sheet.
func (c *Client) Delete(ctx context.Context, id string) error {
	body := map[string]any{"action": "delete", "id": id}
	err := jwpost(ctx, c.client, c.url, body, nil)
	var status *errStatus
	if errors.As(err, &status) && status.code == http.StatusNotFound {
		return fmt.Errorf("delete %q: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("cannot delete transaction %q: %w", id, err)
	}
	return nil
}

// parsePayload maps the raw read payload to typed records.
func parsePayload(payload any) ([]folio.Transaction, folio.Quotes, error) {
	if _, ok := payload.(map[string]any); !ok {
		return nil, nil, fmt.Errorf("unexpected sheet payload %T", payload)
	}

	var txs []folio.Transaction
	for i, rec := range list(payload, "$.transactions") {
		tx, err := parseTransaction(rec)
		if err != nil {
			log.Warn().Int("row", i+1).Err(err).Msg("skipping invalid transaction")
			continue
		}
		txs = append(txs, tx)
	}

	benchmark, err := series(payload, "$.benchmark")
	if err != nil {
		log.Warn().Err(err).Msg("ignoring invalid benchmark series")
	}

	quotes := make(folio.Quotes)
	for i, rec := range list(payload, "$.quotes") {
		q, err := parseQuote(rec, benchmark)
		if err != nil {
			log.Warn().Int("row", i+1).Err(err).Msg("skipping invalid quote")
			continue
		}
		quotes[q.Symbol] = q
	}
	return txs, quotes, nil
}

// parseTransaction reads one ledger row.
func parseTransaction(rec any) (folio.Transaction, error) {
	var tx folio.Transaction
	var err error
	tx.ID = text(rec, "$.id")
	if tx.Date, err = folio.ParseDate(text(rec, "$.date")); err != nil {
		return tx, err
	}
	tx.Symbol = text(rec, "$.symbol", "$.ticker")
	tx.Name = text(rec, "$.name")
	if tx.Side, err = folio.ParseSide(text(rec, "$.side", "$.type")); err != nil {
		return tx, err
	}
	if tx.Shares, err = quantity(rec, "$.shares", "$.quantity"); err != nil {
		return tx, fmt.Errorf("shares: %w", err)
	}
	if tx.Price, err = amount(rec, "$.price"); err != nil {
		return tx, fmt.Errorf("price: %w", err)
	}
	if tx.Fee, err = amount(rec, "$.fee"); err != nil {
		return tx, fmt.Errorf("fee: %w", err)
	}
	return tx.Validate()
}

// parseQuote reads one quote row. When the row has no beta but carries a price
// history, the beta is estimated against the benchmark.
func parseQuote(rec any, benchmark []float64) (folio.PriceQuote, error) {
	var q folio.PriceQuote
	q.Symbol = folio.NormalizeSymbol(text(rec, "$.symbol", "$.ticker"))
	if q.Symbol == "" {
		return q, errors.New("symbol is missing")
	}
	var err error
	if q.Price, err = amount(rec, "$.price"); err != nil {
		return q, fmt.Errorf("%s price: %w", q.Symbol, err)
	}
	if q.Price.IsNegative() {
		return q, fmt.Errorf("%s price must not be negative, got %s", q.Symbol, q.Price)
	}
	change, err := number(rec, "$.changePercent", "$.change")
	if err != nil {
		return q, fmt.Errorf("%s changePercent: %w", q.Symbol, err)
	}
	q.ChangePercent = folio.Percent(change)
	q.Sector = text(rec, "$.sector")
	if q.Beta, err = number(rec, "$.beta"); err != nil {
		return q, fmt.Errorf("%s beta: %w", q.Symbol, err)
	}

	if q.Beta == 0 {
		history, err := series(rec, "$.history")
		if err != nil {
			return q, fmt.Errorf("%s history: %w", q.Symbol, err)
		}
		own, err := series(rec, "$.benchmark")
		if err != nil {
			return q, fmt.Errorf("%s benchmark: %w", q.Symbol, err)
		}
		if len(own) > 0 {
			benchmark = own
		}
		if len(history) > 0 && len(benchmark) > 0 {
			q.Beta = risk.PriceBeta(history, benchmark)
		}
	}
	return q, nil
}

// lookup returns the first value found among paths.
func lookup(rec any, paths ...string) (any, bool) {
	for _, path := range paths {
		jval, err := jsonpath.Get(path, rec)
		if err != nil || jval == nil {
			continue
		}
		// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
		// by this call I keep the first one if any
		if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
			jval = jlist[0]
		}
		return jval, true
	}
	return nil, false
}

// list returns the records under path, or nothing.
func list(rec any, path string) []any {
	jval, err := jsonpath.Get(path, rec)
	if err != nil {
		return nil
	}
	jlist, _ := jval.([]any)
	return jlist
}
