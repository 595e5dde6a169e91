package events

import (
	"context"

	"github.com/etnz/folio"
	"github.com/etnz/folio/store"
	"github.com/rs/zerolog/log"
)

// PublishingStore is a store.Store announcing every successful write.
//
// Announcements are best effort: a publish failure is logged and never fails
// the write that triggered it.
type PublishingStore struct {
	store.Store
	publisher Publisher
}

// Publishing decorates s so that appends and deletes are announced on p.
func Publishing(s store.Store, p Publisher) *PublishingStore {
	return &PublishingStore{Store: s, publisher: p}
}

// Read keeps the single read of the decorated store, see store.Reader.
func (s *PublishingStore) Read(ctx context.Context) ([]folio.Transaction, folio.Quotes, error) {
	return store.ReadAll(ctx, s.Store)
}

func (s *PublishingStore) Append(ctx context.Context, tx folio.Transaction) error {
	tx, err := tx.Validate()
	if err != nil {
		return err
	}
	if err := s.Store.Append(ctx, tx); err != nil {
		return err
	}
	if err := s.publisher.PublishAdded(ctx, tx); err != nil {
		log.Warn().Err(err).Str("id", tx.ID).Str("symbol", tx.Symbol).Msg("could not publish transaction added")
	}
	return nil
}

func (s *PublishingStore) Delete(ctx context.Context, id string) error {
	// the symbol is only known before the deletion
	var symbol string
	if txs, err := s.Store.Transactions(ctx); err == nil {
		for _, tx := range txs {
			if tx.ID == id {
				symbol = tx.Symbol
				break
			}
		}
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.publisher.PublishRemoved(ctx, id, symbol); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("could not publish transaction removed")
	}
	return nil
}
