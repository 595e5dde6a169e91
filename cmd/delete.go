package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
)

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "remove transactions from the ledger" }
func (*deleteCmd) Usage() string {
	return `pcs delete <id>...

  Removes the transactions with the given ids. Use 'pcs log' to find them.
`
}

func (*deleteCmd) SetFlags(f *flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one transaction id is required.")
		return subcommands.ExitUsageError
	}
	s, release, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer release()

	status := subcommands.ExitSuccess
	for _, id := range f.Args() {
		err := s.Delete(ctx, id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			fmt.Fprintf(os.Stderr, "No transaction %q in the ledger.\n", id)
			status = subcommands.ExitFailure
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", id, err)
			status = subcommands.ExitFailure
		default:
			fmt.Fprintf(stdout, "Deleted %s\n", id)
		}
	}
	warnDemo()
	return status
}
