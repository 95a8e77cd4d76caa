package vo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactLayoutPaths(t *testing.T) {
	l := NewArtifactLayout("uploads")
	v := Variant{Name: "720p"}

	assert.Equal(t, filepath.Join("uploads", "videos", "original", "abc.mp4"), l.OriginalPath("abc", ".mp4"))
	assert.Equal(t, filepath.Join("uploads", "videos", "hls", "abc", "master.m3u8"), l.MasterPlaylistPath("abc"))
	assert.Equal(t, filepath.Join("uploads", "videos", "hls", "abc", "720p.m3u8"), l.VariantPlaylistPath("abc", v))
	assert.Equal(t, filepath.Join("uploads", "videos", "hls", "abc", "segments", "720p_%03d.ts"), l.SegmentPatternPath("abc", v))
	assert.Equal(t, filepath.Join("uploads", "thumbnails", "abc.jpg"), l.ThumbnailPath("abc"))
}

func TestArtifactLayoutDefaultRoot(t *testing.T) {
	l := NewArtifactLayout("")
	assert.Equal(t, "uploads", l.Root)
}

func TestArtifactLayoutEnsureDirectories(t *testing.T) {
	l := NewArtifactLayout(t.TempDir())
	require.NoError(t, l.EnsureBaseDirectories())
	require.NoError(t, l.EnsureAssetDirectories("abc"))

	for _, dir := range []string{l.OriginalDir(), l.ThumbnailDir(), l.SegmentsDir("abc")} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}
}

func TestFindOriginal(t *testing.T) {
	l := NewArtifactLayout(t.TempDir())
	require.NoError(t, l.EnsureBaseDirectories())
	exts := []string{".mp4", ".mov"}

	assert.Empty(t, l.FindOriginal("abc", exts))

	path := l.OriginalPath("abc", ".mov")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.Equal(t, path, l.FindOriginal("abc", exts))
}
