package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/google/subcommands"
)

// txCmd records a buy or a sell.
type txCmd struct {
	side   folio.Side
	date   string
	symbol string
	name   string
	shares string
	price  string
	fee    string
}

func newBuyCmd() *txCmd  { return &txCmd{side: folio.Buy} }
func newSellCmd() *txCmd { return &txCmd{side: folio.Sell} }

func (c *txCmd) Name() string {
	if c.side == folio.Sell {
		return "sell"
	}
	return "buy"
}

func (c *txCmd) Synopsis() string {
	if c.side == folio.Sell {
		return "record the sale of shares"
	}
	return "record the purchase of shares"
}

func (c *txCmd) Usage() string {
	return fmt.Sprintf(`pcs %s -s <symbol> -q <shares> -p <price> [-f <fee>] [-n <name>] [-d <date>]

  Appends a %s transaction to the ledger. See 'pcs topic ledger'.
`, c.Name(), c.side)
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "Trade date. See 'pcs topic dates' for supported formats.")
	f.StringVar(&c.symbol, "s", "", "Stock symbol.")
	f.StringVar(&c.name, "n", "", "Display name of the stock.")
	f.StringVar(&c.shares, "q", "", "Number of shares.")
	f.StringVar(&c.price, "p", "", "Price per share.")
	f.StringVar(&c.fee, "f", "0", "Fees and taxes of the trade.")
}

// transaction parses the flags into a new transaction.
func (c *txCmd) transaction() (folio.Transaction, error) {
	day, err := parseDate(c.date)
	if err != nil {
		return folio.Transaction{}, fmt.Errorf("invalid date: %w", err)
	}
	shares, err := folio.ParseQuantity(c.shares)
	if err != nil {
		return folio.Transaction{}, fmt.Errorf("invalid shares %q: %w", c.shares, err)
	}
	price, err := folio.ParseMoney(c.price)
	if err != nil {
		return folio.Transaction{}, fmt.Errorf("invalid price %q: %w", c.price, err)
	}
	fee, err := folio.ParseMoney(c.fee)
	if err != nil {
		return folio.Transaction{}, fmt.Errorf("invalid fee %q: %w", c.fee, err)
	}
	tx := folio.NewBuy(day, c.symbol, c.name, shares, price, fee)
	tx.Side = c.side
	return tx.Validate()
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tx, err := c.transaction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	s, release, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer release()

	if err := s.Append(ctx, tx); err != nil {
		return fail("Error recording transaction: %v", err)
	}
	fmt.Fprintf(stdout, "Recorded %s %s %s @ %s (id %s)\n", tx.Side, tx.Shares, tx.Symbol, tx.Price, tx.ID)
	warnDemo()
	return subcommands.ExitSuccess
}

// parseDate parses a command line date, relative to the command clock.
func parseDate(s string) (folio.Date, error) {
	return folio.ParseDateAt(s, folio.DateOf(now()))
}

// warnDemo reminds that the demo ledger is not saved.
func warnDemo() {
	if cfg.Store == "demo" {
		fmt.Fprintln(os.Stderr, "Note: the demo store is in memory, changes are lost on exit. Use -store sqlite or -store sheet.")
	}
}
