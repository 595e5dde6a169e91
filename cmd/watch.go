package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/folio"
	"github.com/etnz/folio/refresh"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type watchCmd struct {
	schedule string
	report   bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "display the holding and refresh it periodically" }
func (*watchCmd) Usage() string {
	return `pcs watch [-every <schedule>] [-report]

  Displays the holding, then displays it again on every tick of the schedule
  (a cron expression or "@every 1m") and every time Enter is pressed.
  Requests made while a refresh is pending are merged. Stop with Ctrl+C.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schedule, "every", "", "Refresh schedule. FOLIO_REFRESH by default.")
	f.BoolVar(&c.report, "report", false, "Display the full report instead of the holding.")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, release, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer release()

	schedule := c.schedule
	if schedule == "" {
		schedule = cfg.Refresh
	}
	refresher, err := refresh.New(s, schedule, refresh.WithClock(now), refresh.OnRefresh(c.display))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	// manual refresh
	go func() {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			refresher.Trigger()
		}
	}()

	if err := refresher.Run(ctx); err != nil {
		return fail("Error: %v", err)
	}
	return subcommands.ExitSuccess
}

func (c *watchCmd) display(r *folio.Report, _ []folio.Transaction) {
	md := renderer.RenderHolding(r, cfg.Currency)
	if c.report {
		md = renderer.RenderReport(r, cfg.Currency)
	}
	printMarkdown(md)
	fmt.Fprintln(os.Stderr, "Press Enter to refresh, Ctrl+C to stop.")
}
