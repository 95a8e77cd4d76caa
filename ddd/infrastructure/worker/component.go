package worker

import (
	"context"
	"fmt"

	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/service"
	"video-pipeline-service/ddd/infrastructure/database/persistence"
	"video-pipeline-service/ddd/infrastructure/messaging"
	"video-pipeline-service/ddd/infrastructure/queue"
	"video-pipeline-service/ddd/infrastructure/storage"
	"video-pipeline-service/internal/resource"
	"video-pipeline-service/pkg/config"
	pkgkafka "video-pipeline-service/pkg/kafka"
	"video-pipeline-service/pkg/logger"
	"video-pipeline-service/pkg/manager"
	"video-pipeline-service/pkg/task"
)

func init() {
	manager.RegisterComponentPlugin(&PipelineWorkerComponentPlugin{})
}

// PipelineWorkerComponentPlugin starts the ingest worker pool.
type PipelineWorkerComponentPlugin struct{}

func (p *PipelineWorkerComponentPlugin) Name() string {
	return "pipelineWorkerComponent"
}

func (p *PipelineWorkerComponentPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}

	assetRepo := persistence.NewVideoAssetRepository()

	// Bucket intake only exists when MinIO is on; jobs carrying an object
	// key fail fast against a nil gateway otherwise.
	var sourceStorage gateway.SourceStorageGateway
	if cfg.Minio.Enabled {
		minioRes := resource.DefaultMinioResource()
		sourceStorage = storage.NewMinioSourceStorage(minioRes.GetClient(), minioRes.GetBucketName())
	}

	var events gateway.PipelineEventPublisher
	if cfg.Kafka.Enabled {
		events = messaging.NewKafkaEventPublisher(pkgkafka.DefaultClient(), cfg.Kafka.Topics.StatusEvents)
	}

	workerCount := 1
	workerID := "pipeline-worker"
	if cfg.Worker.MaxConcurrentJobs > 0 {
		workerCount = cfg.Worker.MaxConcurrentJobs
	}
	if cfg.Worker.WorkerID != "" {
		workerID = cfg.Worker.WorkerID
	}

	return &pipelineWorkerComponent{
		name:    "pipelineWorker",
		enabled: cfg.Worker.Enabled,
		worker: NewPipelineWorker(
			workerID,
			assetRepo,
			service.DefaultPipelineService(),
			service.DefaultAcceptorService(),
			sourceStorage,
			events,
			cfg,
			workerCount,
		),
	}
}

type pipelineWorkerComponent struct {
	name    string
	enabled bool
	worker  PipelineWorker
}

func (c *pipelineWorkerComponent) Start() error {
	if !c.enabled {
		logger.Infof("Pipeline worker disabled, skipping name=%s", c.name)
		return nil
	}
	if c.worker == nil {
		return fmt.Errorf("pipeline worker not initialized")
	}
	task.Register(&backgroundTaskAdapter{
		name:      c.name,
		startFunc: c.worker.Start,
		stopFunc:  c.worker.Stop,
	})
	logger.Infof("Pipeline worker component registered background task name=%s", c.name)
	return nil
}

func (c *pipelineWorkerComponent) Stop() error {
	queue.CloseDefaultPipelineJobQueue()
	logger.Infof("Pipeline worker component stopped name=%s", c.name)
	return nil
}

func (c *pipelineWorkerComponent) GetName() string {
	return c.name
}

// backgroundTaskAdapter adapts Start/Stop functions to the BackgroundTask interface.
type backgroundTaskAdapter struct {
	name      string
	startFunc func(ctx context.Context) error
	stopFunc  func() error
}

func (b *backgroundTaskAdapter) Name() string                    { return b.name }
func (b *backgroundTaskAdapter) Start(ctx context.Context) error { return b.startFunc(ctx) }
func (b *backgroundTaskAdapter) Stop() error                     { return b.stopFunc() }
