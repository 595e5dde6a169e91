package cmd

import (
	"context"
	"flag"

	"github.com/etnz/folio/agent"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
)

type insightCmd struct{}

func (*insightCmd) Name() string     { return "insight" }
func (*insightCmd) Synopsis() string { return "ask the AI analyst for a commentary of the portfolio" }
func (*insightCmd) Usage() string {
	return `pcs insight

  Sends the portfolio summary and positions to the AI analyst and displays its
  commentary. Needs GEMINI_API_KEY or GOOGLE_API_KEY.
`
}

func (*insightCmd) SetFlags(f *flag.FlagSet) {}

func (*insightCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	gen, err := newGenerator(ctx)
	if err != nil {
		return fail("Error: %v", err)
	}
	s, release, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer release()

	report, _, err := store.Snapshot(ctx, s, now())
	if err != nil {
		return fail("Error loading portfolio: %v", err)
	}
	text, err := agent.NewAnalyst(gen, cfg.Model).Commentary(ctx, report.Summary, report.Positions)
	if err != nil {
		return fail("Error: %v", err)
	}
	printMarkdown("# Commentary\n\n" + text + "\n")
	return subcommands.ExitSuccess
}
