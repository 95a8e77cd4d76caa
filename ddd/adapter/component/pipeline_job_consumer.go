package component

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/infrastructure/database/persistence"
	"video-pipeline-service/ddd/infrastructure/queue"
	"video-pipeline-service/pkg/config"
	pkgkafka "video-pipeline-service/pkg/kafka"
	"video-pipeline-service/pkg/logger"
	"video-pipeline-service/pkg/manager"
)

func init() {
	manager.RegisterComponentPlugin(&PipelineJobConsumerPlugin{})
}

// PipelineJobConsumerPlugin feeds bucket-sourced ingest jobs from Kafka into
// the local job queue.
type PipelineJobConsumerPlugin struct{}

func (p *PipelineJobConsumerPlugin) Name() string { return "pipelineJobConsumer" }

func (p *PipelineJobConsumerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &pipelineJobConsumer{
		enabled:             cfg.Kafka.Enabled,
		topic:               cfg.Kafka.Topics.PipelineJobs,
		groupID:             cfg.Kafka.GroupID,
		commitOnDecodeError: cfg.Kafka.CommitOnDecodeError,
	}
}

type pipelineJobConsumer struct {
	enabled             bool
	topic               string
	groupID             string
	commitOnDecodeError bool
	ctx                 context.Context
	cancel              context.CancelFunc
}

func (c *pipelineJobConsumer) Start() error {
	if !c.enabled {
		logger.Infof("Kafka consumer disabled, skipping")
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	if err := pkgkafka.DefaultClient().EnsureTopic(c.topic, 1, 1); err != nil {
		logger.Warnf("Failed to ensure Kafka topic topic=%s error=%v", c.topic, err)
	}
	reader := pkgkafka.DefaultClient().Reader(c.topic, c.groupID)
	go func() {
		defer reader.Close()
		logger.Infof("Kafka consumer started topic=%s group=%s", c.topic, c.groupID)
		for {
			msg, err := reader.FetchMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF") {
					logger.Debug("Kafka reader EOF")
				} else {
					logger.Warnf("Kafka read error error=%s", err.Error())
				}
				continue
			}
			// Undecodable messages are only committed when configured to;
			// otherwise they stay on the partition for redelivery.
			if c.handleMessage(msg.Value) || c.commitOnDecodeError {
				if err := reader.CommitMessages(c.ctx, msg); err != nil && c.ctx.Err() == nil {
					logger.Warnf("Kafka commit error offset=%d error=%s", msg.Offset, err.Error())
				}
			}
		}
	}()
	return nil
}

// handleMessage decodes and enqueues one job. It reports whether the message
// was decodable; enqueue failures still count as handled since the pending
// requeue on worker start recovers them.
func (c *pipelineJobConsumer) handleMessage(value []byte) bool {
	var job queue.PipelineJob
	if err := json.Unmarshal(value, &job); err != nil {
		logger.Warnf("Kafka message unmarshal error error=%s", err.Error())
		return false
	}
	if job.AssetUUID == "" {
		logger.Warnf("Kafka message dropped, missing asset_uuid")
		return false
	}
	logger.Infof("Kafka job received asset_uuid=%s object_key=%s retry=%t", job.AssetUUID, job.ObjectKey, job.Retry)

	// Bucket-sourced assets have no record yet; create one so status can be
	// tracked before the worker picks the job up.
	if job.ObjectKey != "" && !job.Retry {
		c.ensureAssetRecord(&job)
	}

	if err := queue.DefaultPipelineJobQueue().Enqueue(context.Background(), &job); err != nil {
		logger.Warnf("Failed to enqueue Kafka job asset_uuid=%s error=%s", job.AssetUUID, err.Error())
	}
	return true
}

func (c *pipelineJobConsumer) ensureAssetRecord(job *queue.PipelineJob) {
	repo := persistence.NewVideoAssetRepository()
	if _, err := repo.GetAsset(context.Background(), job.AssetUUID); err == nil {
		return
	}
	asset := entity.NewVideoAssetEntity(job.AssetUUID, job.UserUUID, job.Filename, job.Filename, "", 0)
	if err := repo.CreateAsset(context.Background(), asset); err != nil {
		logger.Warnf("Failed to create asset record for Kafka job asset_uuid=%s error=%v", job.AssetUUID, err)
	}
}

func (c *pipelineJobConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

func (c *pipelineJobConsumer) GetName() string { return "pipelineJobConsumer" }
