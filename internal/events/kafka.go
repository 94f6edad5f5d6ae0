package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

// KafkaEmitter publishes cart events to a Kafka topic, keyed by user id so
// one user's events stay ordered within a partition.
type KafkaEmitter struct {
	writer *kafka.Writer
}

func NewKafkaEmitter(topic string, brokers ...string) *KafkaEmitter {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaEmitter{writer: w}
}

func (k *KafkaEmitter) Emit(ctx context.Context, e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		log.Printf("marshal event %s failed: %v", e.ID, err)
		return
	}

	errWrite := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.UserID),
		Value: value,
	})
	if errWrite != nil {
		log.Printf("publish event %s (%s) failed: %v", e.ID, e.Type, errWrite)
	}
}

func (k *KafkaEmitter) Close() {
	if err := k.writer.Close(); err != nil {
		log.Printf("error closing event writer: %v", err)
	}
}
