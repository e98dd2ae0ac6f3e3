package kafkaadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exchangecore/internal/book"

	kafka "github.com/segmentio/kafka-go"
)

// outboundTopicPrefix is deliberately distinct from inboundTopicPrefix.
// The original engine this was ported from built the outbound log topic
// name off the inbound order-topic prefix, so both streams landed on the
// same topic; that looked like a copy-paste bug rather than a deliberate
// shared log, so SPEC_FULL.md keeps the two streams on separate topics.
const outboundTopicPrefix = "matching_event_"

// EventWriter implements engine.EventSink by appending JSON-encoded log
// records to product's outbound event topic, one Kafka message per record,
// in order.
type EventWriter struct {
	topic  string
	writer *kafka.Writer
}

// NewEventWriter builds a writer for product's outbound event topic.
// writeTimeout is the config's kafka.message_timeout, applied per write.
func NewEventWriter(brokers []string, productID string, writeTimeout time.Duration) *EventWriter {
	topic := outboundTopicPrefix + productID
	return &EventWriter{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: writeTimeout,
		},
	}
}

// Store durably appends logs, in order. A write error is fatal to the
// committer: downstream consumers (and a later bootstrap) must never see
// a gap in the event log.
func (w *EventWriter) Store(ctx context.Context, logs []book.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, len(logs))
	for i, rec := range logs {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode log record seq %d: %w", rec.Seq(), err)
		}
		msgs[i] = kafka.Message{Value: payload}
	}

	return w.writer.WriteMessages(ctx, msgs...)
}

// Close flushes and releases the underlying producer connection.
func (w *EventWriter) Close() error {
	return w.writer.Close()
}
