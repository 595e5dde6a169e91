package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type logCmd struct {
	start  string
	date   string
	symbol string
	head   int
	tail   int
}

func (*logCmd) Name() string     { return "log" }
func (*logCmd) Synopsis() string { return "list the transactions of the ledger" }
func (*logCmd) Usage() string {
	return `pcs log [-s <start_date>] [-d <end_date>] [-symbol <symbol>] [-head <n> | -tail <n>]

  Lists transactions from the ledger in date order, with options for filtering
  and limiting the output.
`
}

func (p *logCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.start, "s", "", "The start date of the range. The first transaction by default.")
	f.StringVar(&p.date, "d", "", "The end date of the range. Today by default.")
	f.StringVar(&p.symbol, "symbol", "", "Only list the transactions of this symbol.")
	f.IntVar(&p.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&p.tail, "tail", 0, "Show only the last N transactions.")
}

// filter returns the transactions selected by the flags, sorted by date.
func (p *logCmd) filter(txs []folio.Transaction) ([]folio.Transaction, error) {
	var start, end folio.Date
	var err error
	if p.start != "" {
		if start, err = parseDate(p.start); err != nil {
			return nil, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if p.date != "" {
		if end, err = parseDate(p.date); err != nil {
			return nil, fmt.Errorf("invalid end date: %w", err)
		}
	}
	symbol := folio.NormalizeSymbol(p.symbol)

	folio.SortTransactions(txs)
	selected := []folio.Transaction{}
	for _, tx := range txs {
		if !start.IsZero() && tx.Date.Before(start) {
			continue
		}
		if !end.IsZero() && tx.Date.After(end) {
			continue
		}
		if symbol != "" && tx.Symbol != symbol {
			continue
		}
		selected = append(selected, tx)
	}

	if p.head > 0 && len(selected) > p.head {
		selected = selected[:p.head]
	}
	if p.tail > 0 && len(selected) > p.tail {
		selected = selected[len(selected)-p.tail:]
	}
	return selected, nil
}

func (p *logCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.head > 0 && p.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	s, release, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer release()

	txs, err := s.Transactions(ctx)
	if err != nil {
		return fail("Error loading ledger: %v", err)
	}
	selected, err := p.filter(txs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(renderer.RenderLog(selected, cfg.Currency))
	return subcommands.ExitSuccess
}
