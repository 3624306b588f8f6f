package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/khoahotran/usermatch/internal/config"
	"github.com/khoahotran/usermatch/internal/domain/user"
	"github.com/khoahotran/usermatch/pkg/logger"
)

const (
	TopicUserEvents = "user.events"
)

type KafkaProducerClient struct {
	UserEventsWriter *kafka.Writer
	logger           logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// Keyed by user id so one user's events stay ordered on one partition.
	userWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicUserEvents,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.")

	return &KafkaProducerClient{UserEventsWriter: userWriter, logger: log}, nil
}

// NewUserEventMessage encodes ev as JSON keyed by the user id.
func NewUserEventMessage(ev user.Event) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal user event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.UserID, 10)),
		Value: payload,
	}, nil
}

// DecodeUserEvent is the consumer side of NewUserEventMessage.
func DecodeUserEvent(msg kafka.Message) (user.Event, error) {
	var ev user.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return user.Event{}, fmt.Errorf("unmarshal user event at offset %d: %w", msg.Offset, err)
	}
	return ev, nil
}

func (c *KafkaProducerClient) PublishUserEvent(ctx context.Context, ev user.Event) error {
	msg, err := NewUserEventMessage(ev)
	if err != nil {
		return err
	}
	if err := c.UserEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write user event to %s: %w", TopicUserEvents, err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.UserEventsWriter != nil {
		if err := c.UserEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka writer", err)
		}
	}
	c.logger.Info("Closed Kafka Producers")
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishUserEvent(context.Context, user.Event) error { return nil }
