package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/store"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeWriter records the messages written to it.
type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

var fixedNow = time.Date(2024, time.March, 6, 10, 0, 0, 0, time.UTC)

func TestProducer(t *testing.T) {
	ctx := context.Background()
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "ledger", now: func() time.Time { return fixedNow }}

	tx := folio.NewBuy(folio.NewDate(2024, 3, 6), "aapl", "Apple", folio.Q(2), folio.M(170), folio.M(0))
	require.NoError(t, p.PublishAdded(ctx, tx))
	require.NoError(t, p.PublishRemoved(ctx, "gone", ""))
	require.Len(t, w.msgs, 2)

	assert.Equal(t, "AAPL", string(w.msgs[0].Key))
	var added LedgerEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &added))
	assert.Equal(t, TransactionAdded, added.EventType)
	assert.Equal(t, tx.ID, added.ID)
	require.NotNil(t, added.Transaction)
	assert.True(t, added.Transaction.Shares.Equal(folio.Q(2)))
	assert.True(t, added.Timestamp.Equal(fixedNow))

	assert.Equal(t, "gone", string(w.msgs[1].Key))
	var removed LedgerEvent
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &removed))
	assert.Equal(t, TransactionRemoved, removed.EventType)
	assert.Nil(t, removed.Transaction)

	w.err = errors.New("broker down")
	assert.Error(t, p.PublishRemoved(ctx, "x", "AAPL"))
}

// mockPublisher is a testify mock of Publisher.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishAdded(ctx context.Context, tx folio.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockPublisher) PublishRemoved(ctx context.Context, id, symbol string) error {
	args := m.Called(ctx, id, symbol)
	return args.Error(0)
}

func TestPublishing(t *testing.T) {
	ctx := context.Background()
	pub := new(mockPublisher)
	s := Publishing(store.NewMemory(nil, nil), pub)

	tx := folio.NewBuy(folio.NewDate(2024, 3, 6), "msft", "", folio.Q(1), folio.M(400), folio.M(0))
	pub.On("PublishAdded", ctx, mock.MatchedBy(func(got folio.Transaction) bool { return got.ID == tx.ID })).
		Return(errors.New("broker down"))
	pub.On("PublishRemoved", ctx, tx.ID, "MSFT").Return(nil)

	// publish failures do not fail the write
	require.NoError(t, s.Append(ctx, tx))
	txs, err := s.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	require.NoError(t, s.Delete(ctx, tx.ID))

	// failed writes are not announced
	assert.True(t, errors.Is(s.Delete(ctx, tx.ID), store.ErrNotFound))
	invalid := tx
	invalid.Shares = folio.Q(-1)
	assert.Error(t, s.Append(ctx, invalid))

	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "PublishAdded", 1)
	pub.AssertNumberOfCalls(t, "PublishRemoved", 1)
}

// readingStore counts the single reads of its inner store.
type readingStore struct {
	*store.Memory
	reads int
}

func (s *readingStore) Read(ctx context.Context) ([]folio.Transaction, folio.Quotes, error) {
	s.reads++
	txs, err := s.Transactions(ctx)
	if err != nil {
		return nil, nil, err
	}
	quotes, err := s.Quotes(ctx)
	return txs, quotes, err
}

func TestPublishing_SingleRead(t *testing.T) {
	inner := &readingStore{Memory: store.NewMemory([]folio.Transaction{
		folio.NewBuy(folio.NewDate(2024, 3, 6), "msft", "", folio.Q(1), folio.M(400), folio.M(0)),
	}, nil)}
	s := Publishing(inner, new(mockPublisher))

	report, _, err := store.Snapshot(context.Background(), s, fixedNow)
	require.NoError(t, err)
	assert.Len(t, report.Positions, 1)
	assert.Equal(t, 1, inner.reads)
}
