package event

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/usermatch/internal/domain/user"
	"github.com/khoahotran/usermatch/pkg/apperror"
	"github.com/khoahotran/usermatch/pkg/logger"
)

const (
	DefaultRetryBackoff    = 500 * time.Millisecond
	DefaultMaxRetryBackoff = 30 * time.Second
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type UserEventHandler interface {
	Execute(ctx context.Context, ev user.Event) error
}

// UserEventConsumer hands user events to a handler one at a time. A message
// is committed only once it was handled or found undecodable; on any other
// failure the same message is retried, since committing a later offset on
// the partition would also commit the failed one.
type UserEventConsumer struct {
	reader     MessageReader
	handler    UserEventHandler
	logger     logger.Logger
	backoff    time.Duration
	maxBackoff time.Duration
}

func NewUserEventConsumer(reader MessageReader, handler UserEventHandler, log logger.Logger) *UserEventConsumer {
	return &UserEventConsumer{
		reader:     reader,
		handler:    handler,
		logger:     log,
		backoff:    DefaultRetryBackoff,
		maxBackoff: DefaultMaxRetryBackoff,
	}
}

func (c *UserEventConsumer) WithBackoff(initial, maxBackoff time.Duration) *UserEventConsumer {
	c.backoff = initial
	c.maxBackoff = maxBackoff
	return c
}

// Run consumes until ctx is done.
func (c *UserEventConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}

		if err := c.Process(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Process handles one message, retrying with backoff until it succeeds or
// ctx is done, then commits it.
func (c *UserEventConsumer) Process(ctx context.Context, msg kafka.Message) error {
	log := c.logger.With(
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.String("key", string(msg.Key)),
	)

	ev, err := DecodeUserEvent(msg)
	if err != nil {
		log.Error("Failed to unmarshal event, skipping", err)
		return c.commit(ctx, msg, log)
	}

	wait := c.backoff
	for attempt := 1; ; attempt++ {
		err := c.handler.Execute(ctx, ev)
		if err == nil {
			break
		}
		if errors.Is(err, apperror.ErrInvalidInput) {
			log.Error("Malformed event, skipping", err)
			break
		}

		log.Error("Failed to record event, retrying", err,
			zap.String("event_id", ev.ID.String()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
		)
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
		wait = min(wait*2, c.maxBackoff)
	}

	return c.commit(ctx, msg, log)
}

func (c *UserEventConsumer) commit(ctx context.Context, msg kafka.Message, log logger.Logger) error {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		// The event id makes a redelivery harmless.
		log.Error("Failed to commit message", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
