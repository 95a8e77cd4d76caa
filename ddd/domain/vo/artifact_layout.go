package vo

import (
	"os"
	"path/filepath"
)

// ArtifactLayout derives every on-disk path the pipeline produces for an
// asset. All paths hang off a single upload root:
//
//	{root}/videos/original/{id}{ext}
//	{root}/videos/hls/{id}/master.m3u8
//	{root}/videos/hls/{id}/{variant}.m3u8
//	{root}/videos/hls/{id}/segments/{variant}_NNN.ts
//	{root}/thumbnails/{id}.jpg
type ArtifactLayout struct {
	Root string
}

func NewArtifactLayout(root string) ArtifactLayout {
	if root == "" {
		root = "uploads"
	}
	return ArtifactLayout{Root: root}
}

func (l ArtifactLayout) OriginalDir() string {
	return filepath.Join(l.Root, "videos", "original")
}

// OriginalPath is the storage location of the source upload. ext keeps the
// leading dot of the client filename, lowercased.
func (l ArtifactLayout) OriginalPath(assetUUID, ext string) string {
	return filepath.Join(l.OriginalDir(), assetUUID+ext)
}

func (l ArtifactLayout) HLSDir(assetUUID string) string {
	return filepath.Join(l.Root, "videos", "hls", assetUUID)
}

func (l ArtifactLayout) MasterPlaylistPath(assetUUID string) string {
	return filepath.Join(l.HLSDir(assetUUID), "master.m3u8")
}

func (l ArtifactLayout) VariantPlaylistPath(assetUUID string, v Variant) string {
	return filepath.Join(l.HLSDir(assetUUID), v.PlaylistName())
}

func (l ArtifactLayout) SegmentsDir(assetUUID string) string {
	return filepath.Join(l.HLSDir(assetUUID), "segments")
}

// SegmentPatternPath is the ffmpeg -hls_segment_filename argument.
func (l ArtifactLayout) SegmentPatternPath(assetUUID string, v Variant) string {
	return filepath.Join(l.SegmentsDir(assetUUID), v.SegmentPattern())
}

func (l ArtifactLayout) ThumbnailDir() string {
	return filepath.Join(l.Root, "thumbnails")
}

func (l ArtifactLayout) ThumbnailPath(assetUUID string) string {
	return filepath.Join(l.ThumbnailDir(), assetUUID+".jpg")
}

// EnsureBaseDirectories creates the shared directories at startup.
func (l ArtifactLayout) EnsureBaseDirectories() error {
	for _, dir := range []string{l.OriginalDir(), l.ThumbnailDir(), filepath.Join(l.Root, "videos", "hls")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// EnsureAssetDirectories creates the per-asset HLS output tree.
func (l ArtifactLayout) EnsureAssetDirectories(assetUUID string) error {
	return os.MkdirAll(l.SegmentsDir(assetUUID), 0o755)
}

// FindOriginal locates the stored original for an asset when the extension is
// not known, trying each allowed extension in order. Returns "" when none
// exists.
func (l ArtifactLayout) FindOriginal(assetUUID string, allowedExts []string) string {
	for _, ext := range allowedExts {
		candidate := l.OriginalPath(assetUUID, ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
