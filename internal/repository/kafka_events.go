package repository

import (
	"context"

	"AssetCast/internal/domain/models"
	pkgkafka "AssetCast/pkg/kafka"
)

// KafkaEventPublisher emits forecast lifecycle events. Messages are keyed by
// config id so all events of one config land in one partition, in order.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishForecastWritten(ctx context.Context, evt models.ForecastWrittenEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(evt.ConfigID), evt)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
