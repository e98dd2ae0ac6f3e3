// Package kafkaadapter wires the engine's OrderSource/EventSink ports to
// Kafka topics via segmentio/kafka-go. Topic and partition layout follow
// SPEC_FULL.md §6: one partition per product, inbound and outbound topics
// kept distinct (the original engine this was ported from shared one
// prefix for both, which looked like a bug rather than intent).
package kafkaadapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"exchangecore/internal/model"

	kafka "github.com/segmentio/kafka-go"
)

const inboundTopicPrefix = "matching_order_"

// OrderReader implements engine.OrderSource over a single-partition Kafka
// topic of JSON-encoded orders. It reads a fixed partition directly rather
// than joining a consumer group: the engine never commits a position back
// to the broker, so group coordination would just add rebalance overhead
// for no benefit. Recovery always starts from the offset embedded in the
// latest snapshot, via SetOffset.
type OrderReader struct {
	topic  string
	reader *kafka.Reader
}

// NewOrderReader builds a reader for product's inbound order topic,
// partition 0. dialTimeout bounds the underlying broker connection/dial,
// taken from the config's kafka.session_timeout.
func NewOrderReader(brokers []string, productID string, dialTimeout time.Duration) *OrderReader {
	topic := inboundTopicPrefix + productID
	return &OrderReader{
		topic: topic,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:   brokers,
			Topic:     topic,
			Partition: 0,
			MinBytes:  1,
			MaxBytes:  10e6,
			Dialer: &kafka.Dialer{
				Timeout: dialTimeout,
			},
		}),
	}
}

// SetOffset seeks the reader so the next Fetch returns the record
// immediately after offset (or the start of the topic when offset is 0).
func (r *OrderReader) SetOffset(ctx context.Context, offset uint64) error {
	if offset == 0 {
		return r.reader.SetOffset(kafka.FirstOffset)
	}
	return r.reader.SetOffset(int64(offset) + 1)
}

// Fetch blocks for the next message and decodes it as an order. A
// malformed payload is returned as an error for the fetcher to log and
// skip, per SPEC_FULL.md §7.
func (r *OrderReader) Fetch(ctx context.Context) (uint64, *model.Order, error) {
	msg, err := r.reader.ReadMessage(ctx)
	if err != nil {
		return 0, nil, err
	}
	if len(msg.Value) == 0 {
		return uint64(msg.Offset), nil, nil
	}

	var order model.Order
	if err := json.Unmarshal(msg.Value, &order); err != nil {
		return uint64(msg.Offset), nil, errors.New("decode order: " + err.Error())
	}

	return uint64(msg.Offset), &order, nil
}

// Close releases the underlying connection.
func (r *OrderReader) Close() error {
	return r.reader.Close()
}
