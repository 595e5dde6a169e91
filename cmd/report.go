package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/agent"
	"github.com/etnz/folio/renderer"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

type reportCmd struct {
	json bool
	html bool
	ai   bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the complete portfolio report" }
func (*reportCmd) Usage() string {
	return `pcs report [-json | -html] [-ai]

  Displays the portfolio report: summary, sector allocation, position weights,
  winners and losers, trading activity and risk. See 'pcs topic report' for
  the definition of every figure.

  With -ai, an AI commentary is appended to the report. The report is still
  displayed when the commentary fails.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the report as JSON.")
	f.BoolVar(&c.html, "html", false, "Print the report as a standalone HTML page.")
	f.BoolVar(&c.ai, "ai", false, "Append an AI commentary.")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.json && c.html {
		fmt.Fprintln(os.Stderr, "Error: -json and -html flags cannot be used together.")
		return subcommands.ExitUsageError
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

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fail("Error encoding report: %v", err)
		}
		return subcommands.ExitSuccess
	}

	md := renderer.RenderReport(report, cfg.Currency)
	if c.ai {
		md += "\n## Commentary\n\n" + commentary(ctx, report.Summary, report.Positions) + "\n"
	}

	if c.html {
		page, err := renderer.HTMLPage("Portfolio Report", md)
		if err != nil {
			return fail("Error rendering HTML: %v", err)
		}
		fmt.Fprint(stdout, page)
		return subcommands.ExitSuccess
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// commentary returns the AI commentary, or why it is unavailable. It never fails.
func commentary(ctx context.Context, summary folio.Summary, positions []folio.Position) string {
	gen, err := newGenerator(ctx)
	if err != nil {
		return "_Commentary unavailable: " + err.Error() + "_"
	}
	text, err := agent.NewAnalyst(gen, cfg.Model).Commentary(ctx, summary, positions)
	if err != nil {
		log.Warn().Err(err).Msg("commentary failed")
		return "_Commentary unavailable: " + err.Error() + "_"
	}
	return text
}
