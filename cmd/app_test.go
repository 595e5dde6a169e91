package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/etnz/folio/config"
	"github.com/etnz/folio/news"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withFlag sets a global flag for the duration of the test.
func withFlag(t *testing.T, flag *string, value string) {
	t.Helper()
	previous := *flag
	*flag = value
	t.Cleanup(func() { *flag = previous })
}

func TestSetup_FlagsOverrideEnvironment(t *testing.T) {
	setup(t, &config.Config{Store: config.StoreDemo})
	t.Setenv("FOLIO_STORE", "sheet")
	t.Setenv("FOLIO_SHEET_URL", "")

	t.Run("sheet url", func(t *testing.T) {
		withFlag(t, sheetURL, "http://example.invalid/sheet")
		require.NoError(t, Setup())
		assert.Equal(t, config.StoreSheet, cfg.Store)
		assert.Equal(t, "http://example.invalid/sheet", cfg.SheetURL)
	})

	t.Run("store", func(t *testing.T) {
		withFlag(t, storeKind, config.StoreDemo)
		require.NoError(t, Setup())
		assert.Equal(t, config.StoreDemo, cfg.Store)
	})

	t.Run("still invalid", func(t *testing.T) {
		assert.ErrorContains(t, Setup(), "FOLIO_SHEET_URL is required")
	})
}

type headline string

func (h headline) News(ctx context.Context, symbol string) ([]news.Item, error) {
	return []news.Item{{Title: string(h)}}, nil
}

func TestNewNewsService_Release(t *testing.T) {
	// nothing listens there, the cache is never reachable
	setup(t, &config.Config{Store: config.StoreDemo, RedisAddr: "127.0.0.1:1"})
	var logs bytes.Buffer
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })
	log.Logger = zerolog.New(&logs)

	service, release := newNewsService(headline("Dividend raised"))
	release()

	// a released cache degrades to fetching
	items, err := service.Lookup(context.Background(), "2330")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dividend raised", items[0].Title)
	assert.Contains(t, logs.String(), "redis: client is closed")

	// no cache to release without redis
	cfg.RedisAddr = ""
	_, release = newNewsService(headline("Dividend raised"))
	assert.NotPanics(t, release)
}
