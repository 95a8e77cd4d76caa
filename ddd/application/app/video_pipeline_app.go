package app

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/ddd/application/dto"
	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/domain/service"
	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/ddd/infrastructure/database/persistence"
	"video-pipeline-service/ddd/infrastructure/queue"
	"video-pipeline-service/pkg/assert"
	"video-pipeline-service/pkg/errno"
	"video-pipeline-service/pkg/logger"
)

var (
	singleVideoPipelineApp VideoPipelineApp
	onceVideoPipelineApp   sync.Once
)

// VideoPipelineApp is the application facade over upload intake, asset
// queries and pipeline control.
type VideoPipelineApp interface {
	// UploadVideo validates and stores the upload, creates the metadata
	// record and queues the asset for processing.
	UploadVideo(ctx context.Context, req *cqe.UploadVideoCqe, src io.Reader) (*dto.VideoAssetDTO, error)
	GetVideo(ctx context.Context, qry *cqe.GetVideoQry) (*dto.VideoAssetDTO, error)
	ListVideos(ctx context.Context, qry *cqe.ListVideosQry) ([]*dto.VideoAssetDTO, error)
	// RetryVideo queues a re-run; the per-asset lock arbitrates concurrent
	// runs, so even an asset stuck at processing after a crash is eligible.
	RetryVideo(ctx context.Context, req *cqe.RetryVideoCqe) (*dto.VideoAssetDTO, error)
	// DeleteVideo removes the metadata record and every artifact on disk.
	DeleteVideo(ctx context.Context, req *cqe.DeleteVideoCqe) error
}

type videoPipelineAppImpl struct {
	assetRepo repo.VideoAssetRepository
	acceptor  service.AcceptorService
	pipeline  service.PipelineService
	jobQueue  queue.PipelineJobQueue
}

func DefaultVideoPipelineApp() VideoPipelineApp {
	assert.NotCircular()
	onceVideoPipelineApp.Do(func() {
		singleVideoPipelineApp = NewVideoPipelineAppWith(
			persistence.NewVideoAssetRepository(),
			service.DefaultAcceptorService(),
			service.DefaultPipelineService(),
			queue.DefaultPipelineJobQueue(),
		)
	})
	assert.NotNil(singleVideoPipelineApp)
	return singleVideoPipelineApp
}

func NewVideoPipelineAppWith(
	assetRepo repo.VideoAssetRepository,
	acceptor service.AcceptorService,
	pipeline service.PipelineService,
	jobQueue queue.PipelineJobQueue,
) VideoPipelineApp {
	assert.NotNil(assetRepo, acceptor, pipeline, jobQueue)
	return &videoPipelineAppImpl{
		assetRepo: assetRepo,
		acceptor:  acceptor,
		pipeline:  pipeline,
		jobQueue:  jobQueue,
	}
}

func (a *videoPipelineAppImpl) UploadVideo(ctx context.Context, req *cqe.UploadVideoCqe, src io.Reader) (*dto.VideoAssetDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.acceptor.ValidateSize(req.SizeBytes); err != nil {
		return nil, err
	}
	if _, err := a.acceptor.ValidateFilename(req.Filename); err != nil {
		return nil, err
	}

	assetUUID := uuid.NewString()
	storedPath, written, err := a.acceptor.StoreUpload(ctx, src, assetUUID, req.Filename)
	if err != nil {
		return nil, err
	}

	asset := entity.NewVideoAssetEntity(assetUUID, req.UserUUID, req.Title, req.Filename, storedPath, written)
	if req.Description != "" {
		asset.SetDescription(req.Description)
	}
	if err := a.assetRepo.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}

	job := &queue.PipelineJob{
		AssetUUID: assetUUID,
		UserUUID:  req.UserUUID,
		Filename:  req.Filename,
	}
	if err := a.jobQueue.Enqueue(ctx, job); err != nil {
		// The record exists and the file is stored; the asset stays pending
		// and gets requeued on the next worker start.
		logger.Warnf("Failed to enqueue pipeline job, asset stays pending asset_uuid=%s error=%v", assetUUID, err)
	}

	logger.Infof("Upload accepted asset_uuid=%s title=%s size=%d", assetUUID, req.Title, written)
	return dto.NewVideoAssetDto(asset), nil
}

func (a *videoPipelineAppImpl) GetVideo(ctx context.Context, qry *cqe.GetVideoQry) (*dto.VideoAssetDTO, error) {
	if err := qry.Validate(); err != nil {
		return nil, err
	}
	asset, err := a.assetRepo.GetAsset(ctx, qry.AssetUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewVideoAssetDto(asset), nil
}

func (a *videoPipelineAppImpl) ListVideos(ctx context.Context, qry *cqe.ListVideosQry) ([]*dto.VideoAssetDTO, error) {
	if err := qry.Validate(); err != nil {
		return nil, err
	}
	limit := qry.PageSize
	offset := (qry.Page - 1) * qry.PageSize

	if qry.Status != "" {
		status := vo.AssetStatus(qry.Status)
		if !status.IsValid() {
			return nil, errno.NewBizError(errno.ErrInvalidParam, nil)
		}
		assets, err := a.assetRepo.ListByStatus(ctx, status, limit, offset)
		if err != nil {
			return nil, err
		}
		return dto.NewVideoAssetDtos(assets), nil
	}
	if qry.UserUUID != "" {
		assets, err := a.assetRepo.ListByUser(ctx, qry.UserUUID, limit, offset)
		if err != nil {
			return nil, err
		}
		return dto.NewVideoAssetDtos(assets), nil
	}
	// Default view lists playable assets.
	assets, err := a.assetRepo.ListByStatus(ctx, vo.AssetStatusCompleted, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewVideoAssetDtos(assets), nil
}

func (a *videoPipelineAppImpl) RetryVideo(ctx context.Context, req *cqe.RetryVideoCqe) (*dto.VideoAssetDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	asset, err := a.assetRepo.GetAsset(ctx, req.AssetUUID)
	if err != nil {
		return nil, err
	}

	// A processing status alone does not block the retry: a crashed run
	// leaves it behind forever while the per-asset lock expires on its own.
	// The lock arbitrates actual concurrent runs when the job executes.
	job := &queue.PipelineJob{
		AssetUUID: asset.AssetUUID(),
		UserUUID:  asset.UserUUID(),
		Filename:  asset.Filename(),
		Retry:     true,
	}
	if err := a.jobQueue.Enqueue(ctx, job); err != nil {
		return nil, errno.NewBizError(errno.ErrInternalServer, err)
	}
	logger.Infof("Retry queued asset_uuid=%s status=%s", asset.AssetUUID(), asset.Status())
	return dto.NewVideoAssetDto(asset), nil
}

func (a *videoPipelineAppImpl) DeleteVideo(ctx context.Context, req *cqe.DeleteVideoCqe) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := a.assetRepo.GetAsset(ctx, req.AssetUUID); err != nil {
		return err
	}
	if err := a.pipeline.DeleteVideoFiles(ctx, req.AssetUUID); err != nil {
		// Artifacts are best-effort; the record removal below is what makes
		// the asset disappear for clients.
		logger.Warnf("Failed to remove some artifacts asset_uuid=%s error=%v", req.AssetUUID, err)
	}
	if err := a.assetRepo.DeleteAsset(ctx, req.AssetUUID); err != nil {
		return err
	}
	logger.Infof("Asset deleted asset_uuid=%s", req.AssetUUID)
	return nil
}
