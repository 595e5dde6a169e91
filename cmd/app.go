// Package cmd implements the CLI application to value a portfolio.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/etnz/folio/agent"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/events"
	"github.com/etnz/folio/logger"
	"github.com/etnz/folio/news"
	"github.com/etnz/folio/sheet"
	"github.com/etnz/folio/sqlite"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&holdingCmd{}, "portfolio")
	c.Register(&reportCmd{}, "portfolio")
	c.Register(&logCmd{}, "portfolio")
	c.Register(&publishCmd{}, "portfolio")

	c.Register(newBuyCmd(), "transactions")
	c.Register(newSellCmd(), "transactions")
	c.Register(&deleteCmd{}, "transactions")
	c.Register(&importCmd{}, "transactions")

	c.Register(&insightCmd{}, "ai")
	c.Register(&newsCmd{}, "ai")
	c.Register(&assistCmd{}, "ai")

	c.Register(&serveCmd{}, "services")
	c.Register(&watchCmd{}, "services")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	storeKind = flag.String("store", "", "Where the ledger lives: demo, sheet or sqlite. Overrides FOLIO_STORE.")
	sheetURL  = flag.String("sheet-url", "", "URL of the spreadsheet endpoint. Overrides FOLIO_SHEET_URL.")
	dbPath    = flag.String("db", "", "Path of the sqlite database. Overrides FOLIO_DB.")
	currency  = flag.String("c", "", "Currency used to format amounts. Overrides FOLIO_CURRENCY.")
	Verbose   = flag.Bool("v", false, "Enable verbose logging.")
	plain     = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal.")
)

// EnvTestingNow freezes the clock of every command, for reproducible outputs.
const EnvTestingNow = "FOLIO_TESTING_NOW"

// cfg is the configuration of the running command, set by Setup.
var cfg = &config.Config{Store: config.StoreDemo, Currency: "TWD", Model: agent.DefaultModel, Port: 8080, HTTPTimeout: sheet.DefaultTimeout}

// stdout receives the output of the commands.
var stdout io.Writer = os.Stdout

// stdin is read by the interactive commands.
var stdin io.Reader = os.Stdin

// Setup loads the configuration, applies the global flags over it, and
// configures logging. It must be called after the flags are parsed.
func Setup() error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if *storeKind != "" {
		c.Store = *storeKind
	}
	if *sheetURL != "" {
		c.SheetURL = *sheetURL
	}
	if *dbPath != "" {
		c.DatabasePath = *dbPath
	}
	if *currency != "" {
		c.Currency = *currency
	}
	if *Verbose {
		c.LogLevel = "debug"
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	logger.SetGlobalLogger(logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty}))
	return nil
}

// now is the clock of the commands.
func now() time.Time {
	if v := os.Getenv(EnvTestingNow); v != "" {
		if t, err := time.Parse(time.DateTime, v); err == nil {
			return t
		}
		log.Warn().Str("value", v).Msg("ignoring invalid " + EnvTestingNow)
	}
	return time.Now()
}

// openStore opens the configured store. Ledger changes are published when
// brokers are configured. The returned func releases the store.
func openStore() (store.Store, func(), error) {
	var (
		s       store.Store
		closers []func() error
	)
	switch cfg.Store {
	case config.StoreDemo:
		demo, err := store.NewDemo()
		if err != nil {
			return nil, nil, err
		}
		s = demo
	case config.StoreSheet:
		s = sheet.New(cfg.SheetURL, sheet.WithTimeout(cfg.HTTPTimeout))
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		s = db
		closers = append(closers, db.Close)
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if len(cfg.KafkaBrokers) > 0 {
		p := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		s = events.Publishing(s, p)
		closers = append([]func() error{p.Close}, closers...)
	}

	release := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("could not close store")
			}
		}
	}
	return s, release, nil
}

// errNoAI is returned when no Gemini key is available.
var errNoAI = errors.New("AI insights need GEMINI_API_KEY or GOOGLE_API_KEY")

// newGenerator connects to Gemini, unless a generator has been injected.
var newGenerator = func(ctx context.Context) (agent.Generator, error) {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return nil, errNoAI
	}
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not initialize Gemini's client: %w", err)
	}
	return client.Models, nil
}

// newNewsService returns the news lookup backed by the configured cache. The
// returned func releases the cache.
func newNewsService(fetcher news.Fetcher) (*news.Service, func()) {
	if cfg.RedisAddr == "" {
		return news.NewService(news.NewMemoryCache(), fetcher), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	release := func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close news cache")
		}
	}
	return news.NewService(news.NewRedisCache(client, 6*time.Hour), fetcher), release
}

// fail reports err and returns the failure status.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}
