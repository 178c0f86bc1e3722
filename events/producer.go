package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"captionforge/task"
)

// TaskEvent is published on every terminal status transition so downstream
// consumers (notifications, analytics) can react without polling the store.
type TaskEvent struct {
	TaskID string      `json:"task_id"`
	Status task.Status `json:"status"`
	Error  string      `json:"error,omitempty"`
	At     time.Time   `json:"at"`
}

// Producer publishes task lifecycle events to Kafka.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects a sync producer to the given brokers.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{producer: producer, topic: topic}, nil
}

// Publish sends one event, keyed by task ID so a task's events stay ordered
// within a partition.
func (p *Producer) Publish(event TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.TaskID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("publish event for task %s: %w", event.TaskID, err)
	}
	return nil
}

// Close shuts the producer down.
func (p *Producer) Close() error {
	return p.producer.Close()
}
