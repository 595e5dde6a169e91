package cmd

import (
	"context"
	"flag"

	"github.com/etnz/folio/renderer"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
)

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct{}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the open positions and their value" }
func (*holdingCmd) Usage() string {
	return `pcs holding

  Displays the open positions valued at the latest prices, sorted by value,
  followed by the portfolio totals.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, release, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer release()

	report, _, err := store.Snapshot(ctx, s, now())
	if err != nil {
		return fail("Error loading portfolio: %v", err)
	}
	printMarkdown(renderer.RenderHolding(report, cfg.Currency))
	return subcommands.ExitSuccess
}
