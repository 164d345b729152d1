package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"smsgate/internal/config"
	"smsgate/internal/constants"
	"smsgate/internal/logger"
	"smsgate/pkg/metrics"
	"smsgate/pkg/tracing"
)

// Publisher pushes gateway lifecycle events onto Kafka for downstream
// consumers (billing, delivery dashboards, inbound processors).
type Publisher struct {
	writer *kafka.Writer
	cfg    config.KafkaConfig
	logger logger.Logger
}

func NewPublisher(cfg config.KafkaConfig, log logger.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}
	return &Publisher{writer: w, cfg: cfg, logger: log}
}

func (p *Publisher) PublishOutcome(ctx context.Context, ev OutcomeEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	return p.publish(ctx, p.cfg.OutcomeTopic, ev.MessageID, ev)
}

func (p *Publisher) PublishInbound(ctx context.Context, ev InboundEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	return p.publish(ctx, p.cfg.InboundTopic, ev.MessageID, ev)
}

func (p *Publisher) publish(ctx context.Context, topic, key string, ev interface{}) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := tracing.InjectTraceContext(ctx, []kafka.Header{})

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   body,
		Headers: headers,
		Time:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write event to %s: %w", topic, err)
	}

	metrics.EventsPublishedTotal.WithLabelValues(topic).Inc()
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
