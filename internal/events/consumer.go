package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rentnest/rentnest-server/internal/config"
	"github.com/rentnest/rentnest-server/internal/models"
)

// Broadcaster receives messages appended on any instance.
type Broadcaster interface {
	Deliver(m *models.Message)
}

// Consumer reads message.sent events and feeds the local websocket hub.
type Consumer struct {
	reader *kafka.Reader
	log    *zap.SugaredLogger
}

func NewConsumer(cfg *config.Config, log *zap.SugaredLogger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.TopicMessageSent,
		GroupID: cfg.Kafka.GroupID,
	})
	return &Consumer{reader: r, log: log}
}

// Run blocks until ctx is cancelled. Read errors back off and retry; a bad
// payload is logged and skipped, never fatal.
func (c *Consumer) Run(ctx context.Context, b Broadcaster) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return
			}
			c.log.Errorw("kafka read", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		var ev MessageSent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.log.Warnw("bad message.sent payload", "err", err)
			continue
		}
		b.Deliver(&ev.Message)
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }
