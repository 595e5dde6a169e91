// Package refresh recomputes the portfolio report on a schedule and on demand.
//
// Refresh requests are coalesced: while a refresh is pending, further requests
// do not queue another one.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/store"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Listener receives every report successfully recomputed.
type Listener func(r *folio.Report, txs []folio.Transaction)

// Refresher keeps the latest report of a store.
type Refresher struct {
	store    store.Store
	schedule string
	now      func() time.Time
	listener Listener
	trigger  chan struct{}

	mu      sync.RWMutex
	report  *folio.Report
	updated time.Time
	err     error
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithClock sets the clock the reports are computed at.
func WithClock(now func() time.Time) Option { return func(r *Refresher) { r.now = now } }

// OnRefresh registers the listener of new reports.
func OnRefresh(l Listener) Option { return func(r *Refresher) { r.listener = l } }

// New returns a Refresher of s, refreshing on the cron schedule (standard
// five fields, or a descriptor like "@every 5m"). An empty schedule only
// refreshes on Trigger.
func New(s store.Store, schedule string, opts ...Option) (*Refresher, error) {
	r := &Refresher{
		store:    s,
		schedule: schedule,
		now:      time.Now,
		trigger:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
		}
	}
	return r, nil
}

// Trigger requests a refresh. It never blocks, a request made while another
// one is pending is merged with it.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes once, then on every scheduled tick and trigger, until ctx is
// done. Refreshes never overlap.
func (r *Refresher) Run(ctx context.Context) error {
	c := cron.New()
	if r.schedule != "" {
		if _, err := c.AddFunc(r.schedule, r.Trigger); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", r.schedule, err)
		}
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()
	log.Info().Str("schedule", r.schedule).Msg("refresher started")

	r.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("refresher stopped")
			return nil
		case <-r.trigger:
			r.Refresh(ctx)
		}
	}
}

// Refresh recomputes the report now. A failed refresh keeps the previous
// report.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	report, txs, err := store.Snapshot(ctx, r.store, r.now())

	r.mu.Lock()
	r.err = err
	if err == nil {
		r.report, r.updated = report, r.now()
	}
	r.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("refresh failed")
		return err
	}
	log.Debug().Int("positions", len(report.Positions)).Dur("duration", time.Since(start)).Msg("report refreshed")
	if r.listener != nil {
		r.listener(report, txs)
	}
	return nil
}

// Latest returns the last report, when it was computed, and the error of the
// last refresh if it failed. The report is nil until a refresh succeeds.
func (r *Refresher) Latest() (*folio.Report, time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.report, r.updated, r.err
}
