package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/domain/service"
	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/ddd/infrastructure/queue"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/logger"
)

type WorkerStats struct {
	StartTime        time.Time
	LastJobTime      time.Time
	ProcessedJobs    int64
	FailedJobs       int64
	CurrentlyRunning int
}

// PipelineWorker drains the job queue with a bounded pool. Jobs carrying an
// object key are downloaded from source storage before the pipeline runs.
type PipelineWorker interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	GetStats() WorkerStats
}

type pipelineWorkerImpl struct {
	id          string
	assetRepo   repo.VideoAssetRepository
	pipeline    service.PipelineService
	acceptor    service.AcceptorService
	storage     gateway.SourceStorageGateway
	events      gateway.PipelineEventPublisher
	cfg         *config.Config
	workerCount int
	running     bool
	cancel      context.CancelFunc
	stats       WorkerStats
	mu          sync.RWMutex
	wg          sync.WaitGroup
}

func NewPipelineWorker(
	id string,
	assetRepo repo.VideoAssetRepository,
	pipeline service.PipelineService,
	acceptor service.AcceptorService,
	storage gateway.SourceStorageGateway,
	events gateway.PipelineEventPublisher,
	cfg *config.Config,
	workerCount int,
) PipelineWorker {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &pipelineWorkerImpl{
		id:          id,
		assetRepo:   assetRepo,
		pipeline:    pipeline,
		acceptor:    acceptor,
		storage:     storage,
		events:      events,
		cfg:         cfg,
		workerCount: workerCount,
		stats:       WorkerStats{StartTime: time.Now()},
	}
}

func (w *pipelineWorkerImpl) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}
	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	// Requeue assets that never got picked up, e.g. after a restart.
	go w.requeuePending(workerCtx)

	w.wg.Add(w.workerCount)
	for i := 0; i < w.workerCount; i++ {
		go w.workerLoop(workerCtx)
	}
	logger.Infof("Pipeline worker started id=%s workers=%d", w.id, w.workerCount)
	return nil
}

func (w *pipelineWorkerImpl) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.running = false
	logger.Infof("Pipeline worker stopped id=%s", w.id)
	return nil
}

func (w *pipelineWorkerImpl) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *pipelineWorkerImpl) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *pipelineWorkerImpl) requeuePending(ctx context.Context) {
	assets, err := w.assetRepo.ListByStatus(ctx, vo.AssetStatusPending, 100, 0)
	if err != nil {
		logger.Warnf("Failed to list pending assets for requeue error=%v", err)
		return
	}
	for _, asset := range assets {
		job := &queue.PipelineJob{
			AssetUUID: asset.AssetUUID(),
			UserUUID:  asset.UserUUID(),
			Filename:  asset.Filename(),
		}
		if err := queue.DefaultPipelineJobQueue().Enqueue(ctx, job); err != nil {
			logger.Warnf("Failed to requeue pending asset asset_uuid=%s error=%v", asset.AssetUUID(), err)
		}
	}
	if len(assets) > 0 {
		logger.Infof("Requeued pending assets count=%d", len(assets))
	}
}

func (w *pipelineWorkerImpl) workerLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		job, err := queue.DefaultPipelineJobQueue().Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		if job == nil {
			continue
		}
		w.processJob(ctx, job)
	}
}

func (w *pipelineWorkerImpl) processJob(ctx context.Context, job *queue.PipelineJob) {
	w.updateStats(func(s *WorkerStats) { s.CurrentlyRunning++; s.LastJobTime = time.Now() })
	failed := false
	defer w.updateStats(func(s *WorkerStats) {
		s.CurrentlyRunning--
		s.ProcessedJobs++
		if failed {
			s.FailedJobs++
		}
	})

	if job.ObjectKey != "" {
		if err := w.fetchFromStorage(ctx, job); err != nil {
			logger.Errorf("Failed to fetch source object asset_uuid=%s object_key=%s error=%v",
				job.AssetUUID, job.ObjectKey, err)
			failed = true
			return
		}
	}

	var (
		result vo.PipelineResult
		err    error
	)
	if job.Retry {
		result, err = w.pipeline.Retry(ctx, job.AssetUUID)
	} else {
		result, err = w.pipeline.Process(ctx, job.AssetUUID)
	}
	if err != nil {
		logger.Errorf("Pipeline job failed asset_uuid=%s retry=%t error=%v", job.AssetUUID, job.Retry, err)
		failed = true
	}
	w.publishStatusEvent(ctx, job, result)
}

// publishStatusEvent is best-effort: the run's outcome is already persisted,
// the event only mirrors it.
func (w *pipelineWorkerImpl) publishStatusEvent(ctx context.Context, job *queue.PipelineJob, result vo.PipelineResult) {
	if w.events == nil || result.Status == "" {
		return
	}
	event := vo.PipelineStatusEvent{
		AssetUUID:   job.AssetUUID,
		Status:      result.Status,
		FailedStage: result.FailedStage,
		Retry:       job.Retry,
		WorkerID:    w.id,
		OccurredAt:  time.Now(),
	}
	if err := w.events.PublishStatusEvent(context.WithoutCancel(ctx), event); err != nil {
		logger.Warnf("Failed to publish status event asset_uuid=%s error=%v", job.AssetUUID, err)
	}
}

// fetchFromStorage downloads the source object into the canonical original
// location and removes the object on success.
func (w *pipelineWorkerImpl) fetchFromStorage(ctx context.Context, job *queue.PipelineJob) error {
	if w.storage == nil {
		return fmt.Errorf("source storage not configured")
	}
	ext, err := w.acceptor.ValidateFilename(job.Filename)
	if err != nil {
		return err
	}
	layout := vo.NewArtifactLayout(w.cfg.Pipeline.UploadDir)
	localPath := layout.OriginalPath(job.AssetUUID, ext)
	if err := layout.EnsureBaseDirectories(); err != nil {
		return err
	}
	if err := w.storage.DownloadFile(ctx, job.ObjectKey, localPath); err != nil {
		return err
	}
	if err := w.storage.RemoveFile(ctx, job.ObjectKey); err != nil {
		logger.Warnf("Failed to remove source object after download object_key=%s error=%v", job.ObjectKey, err)
	}
	return nil
}

func (w *pipelineWorkerImpl) updateStats(apply func(*WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	apply(&w.stats)
}
