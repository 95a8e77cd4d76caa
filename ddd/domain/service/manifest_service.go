package service

import (
	"fmt"
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
	manifestServiceOnce      sync.Once
	singletonManifestService ManifestService
)

// ManifestService writes the master playlist that ties the variant playlists
// together.
type ManifestService interface {
	// WriteMasterPlaylist renders and atomically writes the master playlist
	// for the given renditions, preserving their order.
	WriteMasterPlaylist(assetUUID string, variants []vo.Variant) (string, error)
	// RenderMasterPlaylist returns the playlist body without touching disk.
	RenderMasterPlaylist(variants []vo.Variant) string
}

func DefaultManifestService() ManifestService {
	assert.NotCircular()
	manifestServiceOnce.Do(func() {
		singletonManifestService = NewManifestService(config.GetGlobalConfig())
	})
	assert.NotNil(singletonManifestService)
	return singletonManifestService
}

type manifestServiceImpl struct {
	layout vo.ArtifactLayout
}

func NewManifestService(cfg *config.Config) ManifestService {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &manifestServiceImpl{layout: vo.NewArtifactLayout(cfg.Pipeline.UploadDir)}
}

func (s *manifestServiceImpl) RenderMasterPlaylist(variants []vo.Variant) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n#EXT-X-VERSION:3\n\n")
	for _, v := range variants {
		bandwidth := v.BandwidthBps()
		if bandwidth == 0 {
			logger.Warnf("Unparseable variant bitrate, BANDWIDTH set to 0 variant=%s bitrate=%s", v.Name, v.VideoBitrate)
		}
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d\n%s\n\n", bandwidth, v.PlaylistName())
	}
	return b.String()
}

func (s *manifestServiceImpl) WriteMasterPlaylist(assetUUID string, variants []vo.Variant) (string, error) {
	masterPath := s.layout.MasterPlaylistPath(assetUUID)
	content := s.RenderMasterPlaylist(variants)
	if err := renameio.WriteFile(masterPath, []byte(content), 0o644); err != nil {
		return "", errno.NewBizError(errno.ErrManifestWrite, err)
	}
	logger.Infof("Master playlist written asset_uuid=%s path=%s variants=%d", assetUUID, masterPath, len(variants))
	return masterPath, nil
}
