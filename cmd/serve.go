package cmd

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/agent"
	"github.com/etnz/folio/refresh"
	"github.com/etnz/folio/server"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

type serveCmd struct {
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the portfolio over an HTTP JSON API" }
func (*serveCmd) Usage() string {
	return `pcs serve [-port <port>]

  Serves the portfolio report, positions and transactions over HTTP:

    GET    /health
    GET    /api/v1/report[?format=markdown|html]
    GET    /api/v1/positions
    GET    /api/v1/transactions
    POST   /api/v1/transactions
    DELETE /api/v1/transactions/{id}
    GET    /api/v1/news/{symbol}
    GET    /api/v1/commentary

  News and commentary need GEMINI_API_KEY or GOOGLE_API_KEY. The report is
  recomputed on the FOLIO_REFRESH schedule and after every change, and the
  last one is served when the store becomes unreachable.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Port to listen on. FOLIO_PORT by default.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, release, err := openStore()
	if err != nil {
		return fail("Error opening store: %v", err)
	}
	defer release()

	refresher, err := refresh.New(s, cfg.Refresh, refresh.WithClock(now), refresh.OnRefresh(logValue))
	if err != nil {
		return fail("Error: %v", err)
	}

	port := c.port
	if port == 0 {
		port = cfg.Port
	}
	srvCfg := server.Config{
		Port:     port,
		Log:      log.Logger,
		Store:    s,
		Currency: cfg.Currency,
		OnChange: refresher.Trigger,
		Now:      now,
		Reports:  refresher.Latest,
	}
	if gen, err := newGenerator(ctx); err != nil {
		log.Warn().Err(err).Msg("news and commentary disabled")
	} else {
		analyst := agent.NewAnalyst(gen, cfg.Model)
		service, releaseNews := newNewsService(analyst)
		defer releaseNews()
		srvCfg.News = service
		srvCfg.Commentary = analyst
	}
	srv := server.New(srvCfg)

	go refresher.Run(ctx)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fail("Error serving: %v", err)
		}
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return fail("Error shutting down: %v", err)
		}
	}
	return subcommands.ExitSuccess
}

// logValue logs the headline figures of a report.
func logValue(r *folio.Report, txs []folio.Transaction) {
	log.Info().
		Str("assets", r.Summary.TotalAssets.String()).
		Str("pl", r.Summary.TotalPL.String()).
		Str("realized", r.Summary.TotalRealizedPL.String()).
		Int("positions", len(r.Positions)).
		Int("transactions", len(txs)).
		Str("risk", string(r.Risk)).
		Msg("portfolio refreshed")
}
