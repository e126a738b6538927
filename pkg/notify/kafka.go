package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher keys messages by event id so that all activity of one
// event lands on the same partition in order.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logrus.WithFields(logrus.Fields{"brokers": brokers, "topic": topic}).Info("Kafka publisher configured")
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event entity.LedgerEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return Permanent(fmt.Errorf("failed to marshal event: %w", err))
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.EventID, 10)),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
			{Key: "id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
