package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rentnest/rentnest-server/internal/config"
	"github.com/rentnest/rentnest-server/internal/models"
)

// Producer publishes domain events to Kafka.
type Producer struct {
	messages *kafka.Writer
	views    *kafka.Writer
}

func NewProducer(cfg *config.Config) *Producer {
	return &Producer{
		messages: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Kafka.Brokers...),
			Topic:    cfg.Kafka.TopicMessageSent,
			Balancer: &kafka.LeastBytes{},
		},
		views: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Kafka.Brokers...),
			Topic:    cfg.Kafka.TopicViewTracked,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishMessageSent keys by conversation so one conversation's events stay
// ordered within a partition.
func (p *Producer) PublishMessageSent(ctx context.Context, m *models.Message) error {
	b, err := json.Marshal(MessageSent{Message: *m})
	if err != nil {
		return err
	}
	return p.messages.WriteMessages(ctx, kafka.Message{
		Key:   []byte(m.ConversationID),
		Value: b,
		Time:  time.Now(),
	})
}

func (p *Producer) PublishPropertyViewed(ctx context.Context, ev PropertyViewed) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.views.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.PropertyID),
		Value: b,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	err := p.messages.Close()
	if cerr := p.views.Close(); err == nil {
		err = cerr
	}
	return err
}
