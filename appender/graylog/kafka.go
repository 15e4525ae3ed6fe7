package graylog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/segmentio/kafka-go"
)

// kafkaWriter is the part of *kafka.Writer the notifier needs.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes GELF JSON records for Graylog's Kafka input.
// Records are keyed by host and hash-balanced, so one source stays on one
// partition.
type KafkaNotifier struct {
	w kafkaWriter
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{w: &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}}
}

func (n *KafkaNotifier) Notify(ctx context.Context, m Message) error {
	g := ToGELF(m)
	value, err := json.Marshal(gelfDocument(g))
	if err != nil {
		return fmt.Errorf("failed to marshal gelf message: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(g.Host),
		Value: value,
	}
	if g.TimeUnix > 0 {
		sec, frac := math.Modf(g.TimeUnix)
		msg.Time = time.Unix(int64(sec), int64(frac*1e9))
	}
	if err := n.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write gelf record: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error { return n.w.Close() }
