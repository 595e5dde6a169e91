// Package events announces ledger changes on a Kafka topic.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/etnz/folio"
	"github.com/segmentio/kafka-go"
)

// Event types.
const (
	TransactionAdded   = "TRANSACTION_ADDED"
	TransactionRemoved = "TRANSACTION_REMOVED"
)

// LedgerEvent is the message published for every ledger change.
type LedgerEvent struct {
	EventType   string             `json:"event_type"`
	ID          string             `json:"id"`
	Symbol      string             `json:"symbol,omitempty"`
	Transaction *folio.Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Publisher announces ledger changes.
type Publisher interface {
	PublishAdded(ctx context.Context, tx folio.Transaction) error
	PublishRemoved(ctx context.Context, id, symbol string) error
}

// messageWriter is the part of kafka.Writer used by the Producer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing ledger events to Kafka.
type Producer struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates a new Kafka producer.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // events of a symbol stay ordered
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer, topic: topic, now: time.Now}
}

// PublishAdded publishes a transaction added event.
func (p *Producer) PublishAdded(ctx context.Context, tx folio.Transaction) error {
	event := LedgerEvent{
		EventType:   TransactionAdded,
		ID:          tx.ID,
		Symbol:      tx.Symbol,
		Transaction: &tx,
		Timestamp:   p.now(),
	}
	return p.publish(ctx, tx.Symbol, event)
}

// PublishRemoved publishes a transaction removed event. symbol may be empty
// when unknown; the id is then used as the message key.
func (p *Producer) PublishRemoved(ctx context.Context, id, symbol string) error {
	event := LedgerEvent{
		EventType: TransactionRemoved,
		ID:        id,
		Symbol:    symbol,
		Timestamp: p.now(),
	}
	key := symbol
	if key == "" {
		key = id
	}
	return p.publish(ctx, key, event)
}

func (p *Producer) publish(ctx context.Context, key string, event LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close closes the Kafka producer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
