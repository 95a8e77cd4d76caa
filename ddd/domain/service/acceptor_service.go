package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio/v2"

	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/pkg/assert"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/errno"
	"video-pipeline-service/pkg/logger"
)

var (
	acceptorServiceOnce      sync.Once
	singletonAcceptorService AcceptorService
)

// AcceptorService validates incoming uploads and stores the original file.
type AcceptorService interface {
	// ValidateFilename checks the extension against the allow-list and
	// returns it lowercased with the leading dot.
	ValidateFilename(filename string) (string, error)
	// ValidateSize checks the declared byte size against the cap.
	ValidateSize(size int64) error
	// StoreUpload streams the upload into its canonical location. The write
	// is atomic; a partial copy never becomes visible.
	StoreUpload(ctx context.Context, src io.Reader, assetUUID, filename string) (string, int64, error)
}

func DefaultAcceptorService() AcceptorService {
	assert.NotCircular()
	acceptorServiceOnce.Do(func() {
		singletonAcceptorService = NewAcceptorService(config.GetGlobalConfig())
	})
	assert.NotNil(singletonAcceptorService)
	return singletonAcceptorService
}

type acceptorServiceImpl struct {
	cfg    *config.Config
	layout vo.ArtifactLayout
}

func NewAcceptorService(cfg *config.Config) AcceptorService {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &acceptorServiceImpl{
		cfg:    cfg,
		layout: vo.NewArtifactLayout(cfg.Pipeline.UploadDir),
	}
}

func (s *acceptorServiceImpl) ValidateFilename(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", errno.NewBizError(errno.ErrUnsupportedFormat, fmt.Errorf("filename %q has no extension", filename))
	}
	for _, allowed := range s.cfg.Pipeline.AllowedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", errno.NewBizError(errno.ErrUnsupportedFormat,
		fmt.Errorf("extension %s not in %v", ext, s.cfg.Pipeline.AllowedExtensions))
}

func (s *acceptorServiceImpl) ValidateSize(size int64) error {
	if size <= 0 {
		return errno.NewBizError(errno.ErrEmptyUpload, nil)
	}
	if size > s.cfg.Pipeline.MaxFileSize {
		return errno.NewBizError(errno.ErrFileTooLarge,
			fmt.Errorf("size %d exceeds limit %d", size, s.cfg.Pipeline.MaxFileSize))
	}
	return nil
}

func (s *acceptorServiceImpl) StoreUpload(ctx context.Context, src io.Reader, assetUUID, filename string) (string, int64, error) {
	ext, err := s.ValidateFilename(filename)
	if err != nil {
		return "", 0, err
	}

	destPath := s.layout.OriginalPath(assetUUID, ext)
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", 0, errno.NewBizError(errno.ErrStorageWrite, err)
	}

	pending, err := renameio.NewPendingFile(destPath, renameio.WithPermissions(0o644))
	if err != nil {
		return "", 0, errno.NewBizError(errno.ErrStorageWrite, err)
	}
	defer pending.Cleanup()

	// Copy one byte past the cap so oversized streams are detected even when
	// the client lied about the declared size.
	limit := s.cfg.Pipeline.MaxFileSize
	written, err := io.Copy(pending, io.LimitReader(src, limit+1))
	if err != nil {
		return "", 0, errno.NewBizError(errno.ErrStorageWrite, err)
	}
	if written == 0 {
		return "", 0, errno.NewBizError(errno.ErrEmptyUpload, nil)
	}
	if written > limit {
		return "", 0, errno.NewBizError(errno.ErrFileTooLarge,
			fmt.Errorf("stream exceeds limit %d", limit))
	}
	if err := ctx.Err(); err != nil {
		return "", 0, errno.NewBizError(errno.ErrStorageWrite, err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", 0, errno.NewBizError(errno.ErrStorageWrite, err)
	}

	logger.Infof("Original stored asset_uuid=%s path=%s size=%d", assetUUID, destPath, written)
	return destPath, written, nil
}
