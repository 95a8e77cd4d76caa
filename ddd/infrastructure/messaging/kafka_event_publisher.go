package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/vo"
	pkgkafka "video-pipeline-service/pkg/kafka"
	"video-pipeline-service/pkg/logger"
)

type kafkaEventPublisher struct {
	client    *pkgkafka.Client
	topic     string
	topicOnce sync.Once
}

// NewKafkaEventPublisher builds the publisher that writes pipeline status
// events to Kafka, keyed by asset so per-asset ordering holds.
func NewKafkaEventPublisher(client *pkgkafka.Client, topic string) gateway.PipelineEventPublisher {
	return &kafkaEventPublisher{client: client, topic: topic}
}

func (p *kafkaEventPublisher) PublishStatusEvent(ctx context.Context, event vo.PipelineStatusEvent) error {
	p.topicOnce.Do(func() {
		if err := p.client.EnsureTopic(p.topic, 1, 1); err != nil {
			logger.Warnf("Failed to ensure Kafka topic topic=%s error=%v", p.topic, err)
		}
	})
	value, err := encodeStatusEvent(event)
	if err != nil {
		return err
	}
	if err := p.client.Produce(ctx, p.topic, []byte(event.AssetUUID), value); err != nil {
		return fmt.Errorf("publish status event asset_uuid=%s: %w", event.AssetUUID, err)
	}
	logger.Debug("Status event published", map[string]interface{}{
		"asset_uuid": event.AssetUUID,
		"status":     event.Status.String(),
		"topic":      p.topic,
	})
	return nil
}

func encodeStatusEvent(event vo.PipelineStatusEvent) ([]byte, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode status event asset_uuid=%s: %w", event.AssetUUID, err)
	}
	return value, nil
}
