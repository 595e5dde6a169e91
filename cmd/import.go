package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/folio/config"
	"github.com/etnz/folio/sqlite"
	"github.com/google/subcommands"
)

type importCmd struct {
	to string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "copy the ledger and the prices into a local database" }
func (*importCmd) Usage() string {
	return `pcs import [-to <path>]

  Copies every transaction and quote of the current store (see -store) into
  a sqlite database, to work offline with -store sqlite. Transactions already
  in the database are kept.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.to, "to", "", "Path of the database. FOLIO_DB by default.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	to := c.to
	if to == "" {
		to = cfg.DatabasePath
	}
	if cfg.Store == config.StoreSQLite && to == cfg.DatabasePath {
		return fail("Error: cannot import the database %q into itself.", to)
	}

	src, release, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer release()

	db, err := sqlite.Open(to)
	if err != nil {
		return fail("Error opening database: %v", err)
	}
	defer db.Close()

	n, err := db.Import(ctx, src)
	if err != nil {
		return fail("Error importing: %v", err)
	}
	fmt.Fprintf(stdout, "Imported %d new transactions into %s\n", n, to)
	return subcommands.ExitSuccess
}
