package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/pkg/assert"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/errno"
	"video-pipeline-service/pkg/logger"
)

var (
	pipelineServiceOnce      sync.Once
	singletonPipelineService PipelineService
)

// PipelineService runs the full ingest pipeline over a stored asset: probe,
// thumbnail, per-variant HLS transcode, master manifest, status bookkeeping.
type PipelineService interface {
	// Process runs the pipeline for a freshly accepted asset.
	Process(ctx context.Context, assetUUID string) (vo.PipelineResult, error)
	// Retry re-runs a failed asset or one left at processing by a crashed
	// run. Intact artifacts short-circuit to a metadata-only completion; a
	// missing original without artifacts marks the asset failed without
	// ever entering processing. A completed asset can at most re-complete.
	Retry(ctx context.Context, assetUUID string) (vo.PipelineResult, error)
	// DeleteVideoFiles removes every artifact of the asset from disk.
	DeleteVideoFiles(ctx context.Context, assetUUID string) error
}

// DefaultPipelineService must be built through the service plugin; the
// constructor needs the repository and locker wired by the bootstrap.
func DefaultPipelineService() PipelineService {
	assert.NotNil(singletonPipelineService)
	return singletonPipelineService
}

// MustInitDefaultPipelineService installs the process-wide instance.
func MustInitDefaultPipelineService(s PipelineService) {
	pipelineServiceOnce.Do(func() {
		singletonPipelineService = s
	})
	assert.NotNil(singletonPipelineService)
}

type pipelineServiceImpl struct {
	repo     repo.VideoAssetRepository
	locker   gateway.AssetLocker
	runner   port.ToolRunner
	manifest ManifestService
	cfg      *config.Config
	layout   vo.ArtifactLayout
}

func NewPipelineService(
	assetRepo repo.VideoAssetRepository,
	locker gateway.AssetLocker,
	runner port.ToolRunner,
	manifest ManifestService,
	cfg *config.Config,
) PipelineService {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	assert.NotNil(assetRepo, locker, runner, manifest)
	return &pipelineServiceImpl{
		repo:     assetRepo,
		locker:   locker,
		runner:   runner,
		manifest: manifest,
		cfg:      cfg,
		layout:   vo.NewArtifactLayout(cfg.Pipeline.UploadDir),
	}
}

func (s *pipelineServiceImpl) Process(ctx context.Context, assetUUID string) (vo.PipelineResult, error) {
	return s.withLock(ctx, assetUUID, func(asset *entity.VideoAssetEntity) (vo.PipelineResult, error) {
		originalPath := s.locateOriginal(asset)
		if originalPath == "" {
			return s.failBeforeProcessing(ctx, asset, errno.ErrOriginalMissing.Message)
		}
		if err := asset.MarkProcessing(); err != nil {
			return vo.PipelineResult{}, err
		}
		if err := s.repo.UpdateProcessingStatus(ctx, asset); err != nil {
			return vo.PipelineResult{}, errno.NewBizError(errno.ErrDatabase, err)
		}
		return s.runStages(ctx, asset, originalPath)
	})
}

func (s *pipelineServiceImpl) Retry(ctx context.Context, assetUUID string) (vo.PipelineResult, error) {
	return s.withLock(ctx, assetUUID, func(asset *entity.VideoAssetEntity) (vo.PipelineResult, error) {
		originalPath := s.locateOriginal(asset)
		masterPath := s.layout.MasterPlaylistPath(asset.AssetUUID())
		thumbPath := s.layout.ThumbnailPath(asset.AssetUUID())

		if fileExists(masterPath) && fileExists(thumbPath) {
			// Artifacts are intact: refresh metadata and complete without
			// re-encoding.
			if originalPath != "" {
				s.probeAndRecordDuration(ctx, asset, originalPath)
			}
			if err := asset.MarkCompleted(masterPath, thumbPath); err != nil {
				return vo.PipelineResult{}, err
			}
			if err := s.repo.UpdateProcessingStatus(ctx, asset); err != nil {
				return vo.PipelineResult{}, errno.NewBizError(errno.ErrDatabase, err)
			}
			logger.Infof("Retry completed from intact artifacts asset_uuid=%s", asset.AssetUUID())
			return s.resultFor(asset, "", nil), nil
		}

		if asset.Status() == vo.AssetStatusCompleted {
			// Completed never regresses. The original was reclaimed on
			// completion, so lost artifacts leave nothing to rebuild from.
			logger.Warnf("Retry refused, completed asset lost its artifacts asset_uuid=%s", asset.AssetUUID())
			return s.resultFor(asset, "", nil), errno.NewBizError(errno.ErrArtifactsMissing, nil)
		}

		if originalPath == "" {
			// No source and no playable output: the asset is unrecoverable.
			return s.failBeforeProcessing(ctx, asset, errno.ErrOriginalMissing.Message)
		}

		if err := asset.MarkProcessing(); err != nil {
			return vo.PipelineResult{}, err
		}
		if err := s.repo.UpdateProcessingStatus(ctx, asset); err != nil {
			return vo.PipelineResult{}, errno.NewBizError(errno.ErrDatabase, err)
		}
		return s.runStages(ctx, asset, originalPath)
	})
}

func (s *pipelineServiceImpl) DeleteVideoFiles(ctx context.Context, assetUUID string) error {
	var firstErr error
	if originalPath := s.layout.FindOriginal(assetUUID, s.cfg.Pipeline.AllowedExtensions); originalPath != "" {
		if err := os.Remove(originalPath); err != nil && !os.IsNotExist(err) {
			firstErr = err
		}
	}
	if err := os.RemoveAll(s.layout.HLSDir(assetUUID)); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := os.Remove(s.layout.ThumbnailPath(assetUUID)); err != nil && !os.IsNotExist(err) && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return errno.NewBizError(errno.ErrStorageWrite, firstErr)
	}
	logger.Infof("Artifacts removed asset_uuid=%s", assetUUID)
	return nil
}

// withLock serializes pipeline runs per asset under the shared lock.
func (s *pipelineServiceImpl) withLock(
	ctx context.Context,
	assetUUID string,
	run func(asset *entity.VideoAssetEntity) (vo.PipelineResult, error),
) (vo.PipelineResult, error) {
	ttl := s.cfg.Redis.LockTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	token, ok, err := s.locker.TryLock(ctx, assetUUID, ttl)
	if err != nil {
		return vo.PipelineResult{}, errno.NewBizError(errno.ErrInternalServer, err)
	}
	if !ok {
		return vo.PipelineResult{}, errno.NewBizError(errno.ErrAssetBusy, nil)
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), assetUUID, token); err != nil {
			logger.Warnf("Failed to release asset lock asset_uuid=%s error=%v", assetUUID, err)
		}
	}()

	asset, err := s.repo.GetAsset(ctx, assetUUID)
	if err != nil {
		return vo.PipelineResult{}, err
	}
	return run(asset)
}

// runStages executes probe, thumbnail, transcode and manifest over a located
// original, and persists the final state.
func (s *pipelineServiceImpl) runStages(ctx context.Context, asset *entity.VideoAssetEntity, originalPath string) (vo.PipelineResult, error) {
	assetUUID := asset.AssetUUID()
	var warnings []string

	// Probe is advisory: a broken probe still leaves the file transcodable.
	if !s.probeAndRecordDuration(ctx, asset, originalPath) {
		warnings = append(warnings, errno.ErrProbeFailed.Message)
	}

	thumbPath := s.layout.ThumbnailPath(assetUUID)
	if err := s.extractThumbnail(ctx, originalPath, thumbPath); err != nil {
		logger.Warnf("Thumbnail extraction failed, continuing asset_uuid=%s error=%v", assetUUID, err)
		warnings = append(warnings, errno.ErrThumbnailFailed.Message)
		thumbPath = ""
	}

	if err := s.layout.EnsureAssetDirectories(assetUUID); err != nil {
		return s.failProcessing(ctx, asset, errno.NewBizError(errno.ErrStorageWrite, err), warnings)
	}

	for _, vc := range s.cfg.Pipeline.Variants {
		variant := vo.Variant{
			Name:         vc.Name,
			Height:       vc.Height,
			VideoBitrate: vc.VideoBitrate,
			AudioBitrate: vc.AudioBitrate,
		}
		if err := s.transcodeVariant(ctx, originalPath, assetUUID, variant); err != nil {
			return s.failProcessing(ctx, asset, err, warnings)
		}
	}

	masterPath, err := s.manifest.WriteMasterPlaylist(assetUUID, s.variants())
	if err != nil {
		return s.failProcessing(ctx, asset, err, warnings)
	}

	if err := asset.MarkCompleted(masterPath, thumbPath); err != nil {
		return vo.PipelineResult{}, err
	}
	if err := s.repo.UpdateProcessingStatus(ctx, asset); err != nil {
		return vo.PipelineResult{}, errno.NewBizError(errno.ErrDatabase, err)
	}

	// The original has served its purpose; reclaim the space but never fail
	// a completed run over it.
	if err := os.Remove(originalPath); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Failed to remove original after completion asset_uuid=%s path=%s error=%v", assetUUID, originalPath, err)
	}

	logger.Infof("Pipeline completed asset_uuid=%s variants=%d warnings=%d", assetUUID, len(s.cfg.Pipeline.Variants), len(warnings))
	return s.resultFor(asset, "", warnings), nil
}

func (s *pipelineServiceImpl) probeAndRecordDuration(ctx context.Context, asset *entity.VideoAssetEntity, originalPath string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.Pipeline.ProbeTimeout)
	defer cancel()
	info, err := s.runner.Probe(probeCtx, originalPath)
	if err != nil {
		logger.Warnf("Probe failed, continuing asset_uuid=%s error=%v", asset.AssetUUID(), err)
		return false
	}
	asset.SetDuration(info.DurationSeconds)
	logger.Debug("Probe succeeded", map[string]interface{}{
		"asset_uuid": asset.AssetUUID(),
		"media":      info.Summary(),
	})
	return true
}

func (s *pipelineServiceImpl) extractThumbnail(ctx context.Context, originalPath, thumbPath string) error {
	if err := os.MkdirAll(filepath.Dir(thumbPath), 0o755); err != nil {
		return err
	}
	thumbCtx, cancel := context.WithTimeout(ctx, s.cfg.Pipeline.ThumbnailTimeout)
	defer cancel()
	err := s.runner.ExtractFrame(thumbCtx, port.FrameRequest{
		InputPath:     originalPath,
		OutputPath:    thumbPath,
		OffsetSeconds: s.cfg.Pipeline.ThumbnailOffset,
		Width:         s.cfg.Pipeline.ThumbnailWidth,
	})
	if err != nil {
		return err
	}
	// ffmpeg can exit 0 without producing a frame, e.g. offset past EOF.
	if !fileExists(thumbPath) {
		return fmt.Errorf("thumbnail not produced at %s", thumbPath)
	}
	return nil
}

func (s *pipelineServiceImpl) transcodeVariant(ctx context.Context, originalPath, assetUUID string, variant vo.Variant) error {
	tcCtx, cancel := context.WithTimeout(ctx, s.cfg.Pipeline.TranscodeTimeout)
	defer cancel()
	err := s.runner.TranscodeHLS(tcCtx, port.HLSRequest{
		InputPath:          originalPath,
		PlaylistPath:       s.layout.VariantPlaylistPath(assetUUID, variant),
		SegmentPatternPath: s.layout.SegmentPatternPath(assetUUID, variant),
		Height:             variant.Height,
		VideoBitrate:       variant.VideoBitrate,
		AudioBitrate:       variant.AudioBitrate,
		SegmentSeconds:     s.cfg.Pipeline.SegmentDuration,
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errno.NewBizError(errno.ErrTranscodeTimeout,
			fmt.Errorf("variant %s exceeded %s: %w", variant.Name, s.cfg.Pipeline.TranscodeTimeout, err))
	}
	return errno.NewBizError(errno.ErrTranscodeFailed, fmt.Errorf("variant %s: %w", variant.Name, err))
}

// failProcessing records a fatal stage failure and persists the failed state.
func (s *pipelineServiceImpl) failProcessing(ctx context.Context, asset *entity.VideoAssetEntity, cause error, warnings []string) (vo.PipelineResult, error) {
	code, message := errno.DecodeError(cause)
	logger.Errorf("Pipeline failed asset_uuid=%s code=%d error=%v", asset.AssetUUID(), code, cause)
	if err := asset.MarkFailed(message); err != nil {
		return vo.PipelineResult{}, err
	}
	if err := s.repo.UpdateProcessingStatus(context.WithoutCancel(ctx), asset); err != nil {
		logger.Errorf("Failed to persist failed state asset_uuid=%s error=%v", asset.AssetUUID(), err)
	}
	return s.resultFor(asset, message, warnings), cause
}

// failBeforeProcessing marks the asset failed without entering processing.
func (s *pipelineServiceImpl) failBeforeProcessing(ctx context.Context, asset *entity.VideoAssetEntity, message string) (vo.PipelineResult, error) {
	if err := asset.MarkFailed(message); err != nil {
		return vo.PipelineResult{}, err
	}
	if err := s.repo.UpdateProcessingStatus(ctx, asset); err != nil {
		return vo.PipelineResult{}, errno.NewBizError(errno.ErrDatabase, err)
	}
	logger.Warnf("Asset unrecoverable asset_uuid=%s reason=%s", asset.AssetUUID(), message)
	return s.resultFor(asset, message, nil), errno.NewBizError(errno.ErrOriginalMissing, nil)
}

func (s *pipelineServiceImpl) locateOriginal(asset *entity.VideoAssetEntity) string {
	if p := asset.OriginalPath(); p != "" && fileExists(p) {
		return p
	}
	return s.layout.FindOriginal(asset.AssetUUID(), s.cfg.Pipeline.AllowedExtensions)
}

func (s *pipelineServiceImpl) variants() []vo.Variant {
	out := make([]vo.Variant, 0, len(s.cfg.Pipeline.Variants))
	for _, vc := range s.cfg.Pipeline.Variants {
		out = append(out, vo.Variant{
			Name:         vc.Name,
			Height:       vc.Height,
			VideoBitrate: vc.VideoBitrate,
			AudioBitrate: vc.AudioBitrate,
		})
	}
	return out
}

func (s *pipelineServiceImpl) resultFor(asset *entity.VideoAssetEntity, failedStage string, warnings []string) vo.PipelineResult {
	result := vo.PipelineResult{
		AssetUUID:   asset.AssetUUID(),
		Status:      asset.Status(),
		FailedStage: failedStage,
		Warnings:    warnings,
	}
	if asset.HLSPath() != nil {
		result.HLSPath = *asset.HLSPath()
	}
	if asset.ThumbnailPath() != nil {
		result.ThumbnailPath = *asset.ThumbnailPath()
	}
	if asset.Duration() != nil {
		result.Duration = *asset.Duration()
	}
	for _, vc := range s.cfg.Pipeline.Variants {
		result.Variants = append(result.Variants, vc.Name)
	}
	return result
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
