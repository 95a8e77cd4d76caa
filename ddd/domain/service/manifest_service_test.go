package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Pipeline.UploadDir = t.TempDir()
	cfg.Pipeline.Normalize()
	return cfg
}

func TestRenderMasterPlaylist(t *testing.T) {
	svc := NewManifestService(testConfig(t))

	variants := []vo.Variant{
		{Name: "720p", Height: 720, VideoBitrate: "2500k", AudioBitrate: "128k"},
		{Name: "480p", Height: 480, VideoBitrate: "1200k", AudioBitrate: "96k"},
	}

	want := "#EXTM3U\n" +
		"#EXT-X-VERSION:3\n" +
		"\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=2500000\n" +
		"720p.m3u8\n" +
		"\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=1200000\n" +
		"480p.m3u8\n" +
		"\n"
	assert.Equal(t, want, svc.RenderMasterPlaylist(variants))
}

func TestRenderMasterPlaylistPreservesOrder(t *testing.T) {
	svc := NewManifestService(testConfig(t))

	// Renditions come out in configuration order, never sorted by bandwidth.
	variants := []vo.Variant{
		{Name: "480p", Height: 480, VideoBitrate: "1200k", AudioBitrate: "96k"},
		{Name: "1080p", Height: 1080, VideoBitrate: "5mbps", AudioBitrate: "192k"},
	}

	body := svc.RenderMasterPlaylist(variants)
	first := "480p.m3u8"
	second := "1080p.m3u8"
	require.Contains(t, body, first)
	require.Contains(t, body, second)
	assert.Less(t, strings.Index(body, first), strings.Index(body, second))
	assert.Contains(t, body, "BANDWIDTH=5000000")
}

func TestRenderMasterPlaylistUnparseableBitrate(t *testing.T) {
	svc := NewManifestService(testConfig(t))

	body := svc.RenderMasterPlaylist([]vo.Variant{
		{Name: "odd", Height: 360, VideoBitrate: "fast", AudioBitrate: "96k"},
	})
	assert.Contains(t, body, "#EXT-X-STREAM-INF:BANDWIDTH=0\nodd.m3u8\n")
}

func TestWriteMasterPlaylist(t *testing.T) {
	cfg := testConfig(t)
	svc := NewManifestService(cfg)

	layout := vo.NewArtifactLayout(cfg.Pipeline.UploadDir)
	require.NoError(t, layout.EnsureAssetDirectories("asset-1"))

	variants := []vo.Variant{{Name: "720p", Height: 720, VideoBitrate: "2500k", AudioBitrate: "128k"}}
	path, err := svc.WriteMasterPlaylist("asset-1", variants)
	require.NoError(t, err)
	assert.Equal(t, layout.MasterPlaylistPath("asset-1"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, svc.RenderMasterPlaylist(variants), string(data))
}

func TestWriteMasterPlaylistMissingDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.UploadDir = filepath.Join(cfg.Pipeline.UploadDir, "does-not-exist")
	svc := NewManifestService(cfg)

	_, err := svc.WriteMasterPlaylist("asset-1", nil)
	require.Error(t, err)
}
