package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/ddd/infrastructure/lock"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/errno"
)

// fakeAssetRepo keeps entities in memory and records every persisted status.
type fakeAssetRepo struct {
	mu            sync.Mutex
	assets        map[string]*entity.VideoAssetEntity
	statusHistory []vo.AssetStatus
	updateErr     error
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: make(map[string]*entity.VideoAssetEntity)}
}

func (r *fakeAssetRepo) CreateAsset(_ context.Context, asset *entity.VideoAssetEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[asset.AssetUUID()]; ok {
		return errno.NewBizError(errno.ErrAssetExists, nil)
	}
	r.assets[asset.AssetUUID()] = asset
	return nil
}

func (r *fakeAssetRepo) GetAsset(_ context.Context, assetUUID string) (*entity.VideoAssetEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[assetUUID]
	if !ok {
		return nil, errno.NewBizError(errno.ErrAssetNotFound, nil)
	}
	return asset, nil
}

func (r *fakeAssetRepo) UpdateProcessingStatus(_ context.Context, asset *entity.VideoAssetEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.statusHistory = append(r.statusHistory, asset.Status())
	return nil
}

func (r *fakeAssetRepo) ListByStatus(_ context.Context, status vo.AssetStatus, _, _ int) ([]*entity.VideoAssetEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.VideoAssetEntity
	for _, a := range r.assets {
		if a.Status() == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) ListByUser(_ context.Context, userUUID string, _, _ int) ([]*entity.VideoAssetEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.VideoAssetEntity
	for _, a := range r.assets {
		if a.UserUUID() == userUUID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) DeleteAsset(_ context.Context, assetUUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assets, assetUUID)
	return nil
}

// fakeToolRunner satisfies the pipeline's tool port without spawning ffmpeg.
// Successful stages drop stub artifacts at the requested paths.
type fakeToolRunner struct {
	probeErr     error
	frameErr     error
	transcodeErr error

	probeCalls     int
	frameCalls     int
	transcodeCalls int
}

func (f *fakeToolRunner) Probe(_ context.Context, _ string) (vo.MediaInfo, error) {
	f.probeCalls++
	if f.probeErr != nil {
		return vo.MediaInfo{}, f.probeErr
	}
	return vo.MediaInfo{
		DurationSeconds: 42.5,
		Width:           1920,
		Height:          1080,
		VideoCodec:      "h264",
		AudioCodec:      "aac",
	}, nil
}

func (f *fakeToolRunner) ExtractFrame(_ context.Context, req port.FrameRequest) error {
	f.frameCalls++
	if f.frameErr != nil {
		return f.frameErr
	}
	return os.WriteFile(req.OutputPath, []byte("jpg"), 0o644)
}

func (f *fakeToolRunner) TranscodeHLS(_ context.Context, req port.HLSRequest) error {
	f.transcodeCalls++
	if f.transcodeErr != nil {
		return f.transcodeErr
	}
	if err := os.WriteFile(req.PlaylistPath, []byte("#EXTM3U\n"), 0o644); err != nil {
		return err
	}
	segment := filepath.Join(filepath.Dir(req.SegmentPatternPath), "stub_000.ts")
	return os.WriteFile(segment, []byte("ts"), 0o644)
}

type pipelineFixture struct {
	cfg    *config.Config
	layout vo.ArtifactLayout
	repo   *fakeAssetRepo
	runner *fakeToolRunner
	svc    PipelineService
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	cfg := testConfig(t)
	cfg.Redis.LockTTL = time.Minute
	layout := vo.NewArtifactLayout(cfg.Pipeline.UploadDir)
	require.NoError(t, layout.EnsureBaseDirectories())

	repo := newFakeAssetRepo()
	runner := &fakeToolRunner{}
	svc := NewPipelineService(repo, lock.NewMemoryAssetLocker(), runner, NewManifestService(cfg), cfg)
	return &pipelineFixture{cfg: cfg, layout: layout, repo: repo, runner: runner, svc: svc}
}

// seedAsset creates an asset record plus its original file on disk.
func (f *pipelineFixture) seedAsset(t *testing.T, assetUUID string) *entity.VideoAssetEntity {
	t.Helper()
	originalPath := f.layout.OriginalPath(assetUUID, ".mp4")
	require.NoError(t, os.WriteFile(originalPath, []byte("video bytes"), 0o644))
	asset := entity.NewVideoAssetEntity(assetUUID, "user-1", "Title", "clip.mp4", originalPath, 11)
	require.NoError(t, f.repo.CreateAsset(context.Background(), asset))
	return asset
}

func TestProcessHappyPath(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")

	result, err := f.svc.Process(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, vo.AssetStatusCompleted, result.Status)
	assert.Equal(t, vo.AssetStatusCompleted, asset.Status())
	assert.NotNil(t, asset.ProcessedAt())
	require.NotNil(t, asset.Duration())
	assert.InDelta(t, 42.5, *asset.Duration(), 0.001)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, []string{"720p"}, result.Variants)

	masterPath := f.layout.MasterPlaylistPath("a1")
	assert.Equal(t, masterPath, result.HLSPath)
	assert.FileExists(t, masterPath)
	assert.FileExists(t, f.layout.VariantPlaylistPath("a1", vo.Variant{Name: "720p"}))
	assert.FileExists(t, f.layout.ThumbnailPath("a1"))

	// The source upload is reclaimed once the output is in place.
	assert.NoFileExists(t, f.layout.OriginalPath("a1", ".mp4"))

	assert.Equal(t, []vo.AssetStatus{vo.AssetStatusProcessing, vo.AssetStatusCompleted}, f.repo.statusHistory)
}

func TestProcessProbeFailureIsNonFatal(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")
	f.runner.probeErr = errors.New("moov atom not found")

	result, err := f.svc.Process(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, vo.AssetStatusCompleted, asset.Status())
	assert.Nil(t, asset.Duration())
	assert.Contains(t, result.Warnings, errno.ErrProbeFailed.Message)
}

func TestProcessThumbnailFailureIsNonFatal(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")
	f.runner.frameErr = errors.New("no frame at offset")

	result, err := f.svc.Process(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, vo.AssetStatusCompleted, asset.Status())
	assert.Nil(t, asset.ThumbnailPath())
	assert.Empty(t, result.ThumbnailPath)
	assert.Contains(t, result.Warnings, errno.ErrThumbnailFailed.Message)
}

func TestProcessTranscodeFailureIsFatal(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")
	f.runner.transcodeErr = errors.New("encoder exploded")

	result, err := f.svc.Process(context.Background(), "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errno.ErrTranscodeFailed)

	assert.Equal(t, vo.AssetStatusFailed, asset.Status())
	assert.NotEmpty(t, asset.ErrorMessage())
	assert.Nil(t, asset.ProcessedAt())
	assert.Equal(t, vo.AssetStatusFailed, result.Status)

	// Failure never produces a master playlist.
	assert.NoFileExists(t, f.layout.MasterPlaylistPath("a1"))
	// The original stays for a later retry.
	assert.FileExists(t, f.layout.OriginalPath("a1", ".mp4"))
}

func TestProcessTranscodeTimeout(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedAsset(t, "a1")
	f.runner.transcodeErr = context.DeadlineExceeded

	_, err := f.svc.Process(context.Background(), "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errno.ErrTranscodeTimeout)
}

func TestProcessMissingOriginal(t *testing.T) {
	f := newPipelineFixture(t)
	asset := entity.NewVideoAssetEntity("a1", "user-1", "Title", "clip.mp4", "", 0)
	require.NoError(t, f.repo.CreateAsset(context.Background(), asset))

	result, err := f.svc.Process(context.Background(), "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errno.ErrOriginalMissing)

	// The asset fails without ever entering processing.
	assert.Equal(t, vo.AssetStatusFailed, asset.Status())
	assert.Equal(t, vo.AssetStatusFailed, result.Status)
	assert.Equal(t, []vo.AssetStatus{vo.AssetStatusFailed}, f.repo.statusHistory)
	assert.Zero(t, f.runner.transcodeCalls)
}

func TestProcessLockedAssetIsRejected(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedAsset(t, "a1")

	locker := lock.NewMemoryAssetLocker()
	svc := NewPipelineService(f.repo, locker, f.runner, NewManifestService(f.cfg), f.cfg)
	_, ok, err := locker.TryLock(context.Background(), "a1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Process(context.Background(), "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errno.ErrAssetBusy)
	assert.Zero(t, f.runner.transcodeCalls)
}

func TestProcessUnknownAsset(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.svc.Process(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, errno.ErrAssetNotFound)
}

func TestRetryFullRerunAfterFailure(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")
	f.runner.transcodeErr = errors.New("encoder exploded")

	_, err := f.svc.Process(context.Background(), "a1")
	require.Error(t, err)
	require.Equal(t, vo.AssetStatusFailed, asset.Status())

	f.runner.transcodeErr = nil
	result, err := f.svc.Retry(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, vo.AssetStatusCompleted, asset.Status())
	assert.Empty(t, asset.ErrorMessage())
	assert.NotNil(t, asset.ProcessedAt())
	assert.FileExists(t, result.HLSPath)
}

func TestRetryIntactArtifactsSkipsTranscode(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")
	require.NoError(t, asset.MarkProcessing())
	require.NoError(t, asset.MarkFailed("crashed mid-write"))

	// Master and thumbnail survived the crash.
	require.NoError(t, f.layout.EnsureAssetDirectories("a1"))
	require.NoError(t, os.WriteFile(f.layout.MasterPlaylistPath("a1"), []byte("#EXTM3U\n"), 0o644))
	require.NoError(t, os.WriteFile(f.layout.ThumbnailPath("a1"), []byte("jpg"), 0o644))

	result, err := f.svc.Retry(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, vo.AssetStatusCompleted, asset.Status())
	assert.NotNil(t, asset.ProcessedAt())
	assert.Zero(t, f.runner.transcodeCalls)
	assert.Zero(t, f.runner.frameCalls)
	// The probe still runs to refresh the duration.
	assert.Equal(t, 1, f.runner.probeCalls)
	require.NotNil(t, asset.Duration())
	assert.Equal(t, f.layout.MasterPlaylistPath("a1"), result.HLSPath)
}

func TestRetryUnrecoverableAsset(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")
	require.NoError(t, asset.MarkProcessing())
	require.NoError(t, asset.MarkFailed("boom"))
	require.NoError(t, os.Remove(f.layout.OriginalPath("a1", ".mp4")))

	_, err := f.svc.Retry(context.Background(), "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errno.ErrOriginalMissing)
	assert.Equal(t, vo.AssetStatusFailed, asset.Status())
	assert.Zero(t, f.runner.transcodeCalls)
}

func TestRetryCompletedAssetIntactArtifacts(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")

	_, err := f.svc.Process(context.Background(), "a1")
	require.NoError(t, err)
	require.Equal(t, vo.AssetStatusCompleted, asset.Status())

	// Artifacts still on disk: retry refreshes metadata without re-encoding.
	transcodesBefore := f.runner.transcodeCalls
	_, err = f.svc.Retry(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, vo.AssetStatusCompleted, asset.Status())
	assert.Equal(t, transcodesBefore, f.runner.transcodeCalls)
}

func TestRetryCompletedAssetLostArtifacts(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")

	_, err := f.svc.Process(context.Background(), "a1")
	require.NoError(t, err)
	require.Equal(t, vo.AssetStatusCompleted, asset.Status())

	// The HLS tree and thumbnail vanish after completion; the original was
	// already reclaimed, so there is nothing left to rebuild from.
	require.NoError(t, os.RemoveAll(f.layout.HLSDir("a1")))
	require.NoError(t, os.Remove(f.layout.ThumbnailPath("a1")))

	transcodesBefore := f.runner.transcodeCalls
	_, err = f.svc.Retry(context.Background(), "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errno.ErrArtifactsMissing)
	// The asset must stay completed rather than regress to failed.
	assert.Equal(t, vo.AssetStatusCompleted, asset.Status())
	assert.Empty(t, asset.ErrorMessage())
	assert.Equal(t, transcodesBefore, f.runner.transcodeCalls)
}

func TestRetryStaleProcessingIntactArtifacts(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")
	// A crash between the transcode and the status write leaves the record
	// at processing while master and thumbnail already exist on disk.
	require.NoError(t, asset.MarkProcessing())
	require.NoError(t, f.layout.EnsureAssetDirectories("a1"))
	require.NoError(t, os.WriteFile(f.layout.MasterPlaylistPath("a1"), []byte("#EXTM3U\n"), 0o644))
	require.NoError(t, os.WriteFile(f.layout.ThumbnailPath("a1"), []byte("jpg"), 0o644))

	result, err := f.svc.Retry(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, vo.AssetStatusCompleted, asset.Status())
	assert.NotNil(t, asset.ProcessedAt())
	assert.Zero(t, f.runner.transcodeCalls)
	assert.Zero(t, f.runner.frameCalls)
	assert.Equal(t, f.layout.MasterPlaylistPath("a1"), result.HLSPath)
}

func TestRetryStaleProcessingFullRerun(t *testing.T) {
	f := newPipelineFixture(t)
	asset := f.seedAsset(t, "a1")
	// A crash before any artifact was written: the retry re-enters
	// processing and runs the full pipeline again.
	require.NoError(t, asset.MarkProcessing())

	_, err := f.svc.Retry(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, vo.AssetStatusCompleted, asset.Status())
	assert.Equal(t, len(f.cfg.Pipeline.Variants), f.runner.transcodeCalls)
	assert.FileExists(t, f.layout.MasterPlaylistPath("a1"))
}

func TestDeleteVideoFiles(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedAsset(t, "a1")

	_, err := f.svc.Process(context.Background(), "a1")
	require.NoError(t, err)
	require.FileExists(t, f.layout.MasterPlaylistPath("a1"))

	require.NoError(t, f.svc.DeleteVideoFiles(context.Background(), "a1"))

	assert.NoFileExists(t, f.layout.MasterPlaylistPath("a1"))
	assert.NoFileExists(t, f.layout.ThumbnailPath("a1"))
	assert.NoDirExists(t, f.layout.HLSDir("a1"))
	assert.Empty(t, f.layout.FindOriginal("a1", f.cfg.Pipeline.AllowedExtensions))
}

func TestDeleteVideoFilesIdempotent(t *testing.T) {
	f := newPipelineFixture(t)
	assert.NoError(t, f.svc.DeleteVideoFiles(context.Background(), "never-existed"))
}

func TestProcessMultipleVariants(t *testing.T) {
	f := newPipelineFixture(t)
	f.cfg.Pipeline.Variants = []config.VariantConfig{
		{Name: "1080p", Height: 1080, VideoBitrate: "5000k", AudioBitrate: "192k"},
		{Name: "720p", Height: 720, VideoBitrate: "2500k", AudioBitrate: "128k"},
		{Name: "480p", Height: 480, VideoBitrate: "1200k", AudioBitrate: "96k"},
	}
	svc := NewPipelineService(f.repo, lock.NewMemoryAssetLocker(), f.runner, NewManifestService(f.cfg), f.cfg)
	f.seedAsset(t, "a1")

	result, err := svc.Process(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, 3, f.runner.transcodeCalls)
	assert.Equal(t, []string{"1080p", "720p", "480p"}, result.Variants)
	for _, name := range result.Variants {
		assert.FileExists(t, f.layout.VariantPlaylistPath("a1", vo.Variant{Name: name}))
	}

	data, err := os.ReadFile(f.layout.MasterPlaylistPath("a1"))
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "1080p.m3u8")
	assert.Contains(t, body, "BANDWIDTH=5000000")
	assert.Contains(t, body, "480p.m3u8")
}
