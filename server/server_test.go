package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/news"
	"github.com/etnz/folio/refresh"
	"github.com/etnz/folio/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.July, 3, 12, 0, 0, 0, time.UTC)

type fakeNewsroom struct{ err error }

func (f fakeNewsroom) Lookup(ctx context.Context, symbol string) ([]news.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []news.Item{{Title: symbol + " news"}}, nil
}

type fakeCommentator struct{}

func (fakeCommentator) Commentary(ctx context.Context, summary folio.Summary, positions []folio.Position) (string, error) {
	return "worth " + summary.TotalAssets.String(), nil
}

func newServer(t *testing.T, cfg Config) (*Server, *store.Memory) {
	t.Helper()
	demo, err := store.NewDemo()
	require.NoError(t, err)
	cfg.Store = demo
	cfg.Log = zerolog.Nop()
	cfg.Now = func() time.Time { return testNow }
	return New(cfg), demo
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t, Config{})
	w := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReport(t *testing.T) {
	s, _ := newServer(t, Config{Currency: "TWD"})

	w := do(t, s, http.MethodGet, "/api/v1/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	report := decode(t, w)
	assert.Equal(t, "2024-07-03", report["asOf"])
	assert.Len(t, report["positions"], 5)

	w = do(t, s, http.MethodGet, "/api/v1/report?format=markdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Portfolio Report on 2024-07-03")

	w = do(t, s, http.MethodGet, "/api/v1/report?format=html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<table>")

	w = do(t, s, http.MethodGet, "/api/v1/report?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPositions(t *testing.T) {
	s, _ := newServer(t, Config{})
	w := do(t, s, http.MethodGet, "/api/v1/positions", "")
	require.Equal(t, http.StatusOK, w.Code)
	v := decode(t, w)
	positions := v["positions"].([]any)
	require.Len(t, positions, 5)
	assert.Equal(t, "2330", positions[0].(map[string]any)["symbol"])
	assert.Contains(t, v["summary"], "totalAssets")
}

func TestTransactions_Lifecycle(t *testing.T) {
	changes := 0
	s, demo := newServer(t, Config{OnChange: func() { changes++ }})

	w := do(t, s, http.MethodGet, "/api/v1/transactions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed []folio.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	before := len(listed)

	w = do(t, s, http.MethodPost, "/api/v1/transactions", `{"date":"2024-07-02","symbol":" 2603 ","name":"Evergreen","side":"buy","shares":100,"price":190,"fee":27}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created folio.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2603", created.Symbol)
	assert.Equal(t, folio.Buy, created.Side)

	txs, err := demo.Transactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, txs, before+1)

	w = do(t, s, http.MethodDelete, "/api/v1/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	txs, err = demo.Transactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, txs, before)
	assert.Equal(t, 2, changes)

	w = do(t, s, http.MethodDelete, "/api/v1/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 2, changes)
}

func TestAppend_Invalid(t *testing.T) {
	s, _ := newServer(t, Config{})
	for name, body := range map[string]string{
		"not json":        `{`,
		"unknown side":    `{"date":"2024-07-02","symbol":"2603","side":"short","shares":1,"price":1}`,
		"negative shares": `{"date":"2024-07-02","symbol":"2603","side":"BUY","shares":-1,"price":1}`,
		"no date":         `{"symbol":"2603","side":"BUY","shares":1,"price":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/transactions", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w), "error")
		})
	}
}

func TestNews(t *testing.T) {
	s, _ := newServer(t, Config{})
	w := do(t, s, http.MethodGet, "/api/v1/news/2330", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s, _ = newServer(t, Config{News: fakeNewsroom{}})
	w = do(t, s, http.MethodGet, "/api/v1/news/tsm", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"symbol":"TSM","items":[{"title":"TSM news"}]}`, w.Body.String())

	s, _ = newServer(t, Config{News: fakeNewsroom{err: errors.New("quota")}})
	w = do(t, s, http.MethodGet, "/api/v1/news/2330", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCommentary(t *testing.T) {
	s, _ := newServer(t, Config{})
	w := do(t, s, http.MethodGet, "/api/v1/commentary", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s, _ = newServer(t, Config{Commentary: fakeCommentator{}})
	w = do(t, s, http.MethodGet, "/api/v1/commentary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "worth 1582775.00", decode(t, w)["commentary"])
}

func TestCORS(t *testing.T) {
	s, _ := newServer(t, Config{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/report", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// flakyStore fails its reads once broken.
type flakyStore struct {
	store.Store
	broken bool
}

func (s *flakyStore) Transactions(ctx context.Context) ([]folio.Transaction, error) {
	if s.broken {
		return nil, errors.New("sheet unreachable")
	}
	return s.Store.Transactions(ctx)
}

func TestReport_FromRefresher(t *testing.T) {
	ctx := context.Background()
	demo, err := store.NewDemo()
	require.NoError(t, err)
	flaky := &flakyStore{Store: demo, broken: true}
	clock := func() time.Time { return testNow }
	refresher, err := refresh.New(flaky, "", refresh.WithClock(clock))
	require.NoError(t, err)
	s := New(Config{Store: flaky, Log: zerolog.Nop(), Now: clock, Reports: refresher.Latest})

	// no refresh succeeded yet, the store is read directly
	w := do(t, s, http.MethodGet, "/api/v1/report", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	flaky.broken = false
	require.NoError(t, refresher.Refresh(ctx))

	flaky.broken = true
	assert.Error(t, refresher.Refresh(ctx))
	for _, target := range []string{"/api/v1/report", "/api/v1/positions"} {
		w = do(t, s, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Len(t, decode(t, w)["positions"], 5, target)
		assert.NotEmpty(t, w.Header().Get("Last-Modified"), target)
	}
}
