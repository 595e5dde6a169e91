package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/etnz/folio/agent"
	"github.com/google/subcommands"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct{}

// Name returns the name of the command.
func (*assistCmd) Name() string { return "assist" }

// Synopsis returns a short-one line synopsis of the command.
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }

// Usage returns a long-form usage string.
func (*assistCmd) Usage() string {
	return `pcs assist [<question>]

  Start an interactive session with the AI assistant. The question, if any,
  is asked first. Type 'bye' to exit.
`
}

// SetFlags sets the flags for the command.
func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

// Execute executes the command.
func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	gen, err := newGenerator(ctx)
	if err != nil {
		return fail("Error: %v", err)
	}
	s, release, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer release()

	trader := agent.NewTrader(cfg.Model)
	accountant := agent.NewAccountant(s, cfg.Currency, cfg.Model, now)
	a := agent.New(gen, cfg.Model, stdout, stdin, trader, accountant)

	if err := a.Run(ctx, initialPrompt); err != nil {
		return fail("Agent failed: %v", err)
	}
	return subcommands.ExitSuccess
}
