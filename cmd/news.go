package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/agent"
	"github.com/etnz/folio/news"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

type newsCmd struct{}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "display recent news about held stocks" }
func (*newsCmd) Usage() string {
	return `pcs news [<symbol>...]

  Looks up recent news about the given symbols, or about every open position.
  News are cached, in Redis when FOLIO_REDIS_ADDR is set. Needs GEMINI_API_KEY
  or GOOGLE_API_KEY.
`
}

func (*newsCmd) SetFlags(f *flag.FlagSet) {}

func (*newsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	gen, err := newGenerator(ctx)
	if err != nil {
		return fail("Error: %v", err)
	}

	symbols := f.Args()
	if len(symbols) == 0 {
		s, release, err := openStore()
		if err != nil {
			return fail("Error opening store: %v", err)
		}
		report, _, err := store.Snapshot(ctx, s, now())
		release()
		if err != nil {
			return fail("Error loading portfolio: %v", err)
		}
		for _, p := range report.Positions {
			symbols = append(symbols, p.Symbol)
		}
	}

	service, release := newNewsService(agent.NewAnalyst(gen, cfg.Model))
	defer release()
	var b strings.Builder
	b.WriteString("# News\n")
	status := subcommands.ExitSuccess
	for _, symbol := range symbols {
		symbol = folio.NormalizeSymbol(symbol)
		items, err := service.Lookup(ctx, symbol)
		if err != nil {
			// news are best effort, the other symbols are still looked up
			log.Warn().Err(err).Str("symbol", symbol).Msg("news lookup failed")
			fmt.Fprintf(os.Stderr, "No news for %s: %v\n", symbol, err)
			status = subcommands.ExitFailure
			continue
		}
		writeNews(&b, symbol, items)
	}
	printMarkdown(b.String())
	return status
}

func writeNews(b *strings.Builder, symbol string, items []news.Item) {
	fmt.Fprintf(b, "\n## %s\n\n", symbol)
	if len(items) == 0 {
		b.WriteString("_No recent news._\n")
		return
	}
	for _, it := range items {
		title := it.Title
		if it.URL != "" {
			title = fmt.Sprintf("[%s](%s)", it.Title, it.URL)
		}
		fmt.Fprintf(b, "* **%s**", title)
		if it.Source != "" {
			fmt.Fprintf(b, " (%s", it.Source)
			if !it.Published.IsZero() {
				fmt.Fprintf(b, ", %s", it.Published.Format(folio.DateFormat))
			}
			b.WriteString(")")
		}
		if it.Summary != "" {
			b.WriteString(": " + it.Summary)
		}
		b.WriteString("\n")
	}
}
