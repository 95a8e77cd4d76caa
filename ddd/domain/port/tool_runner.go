package port

import (
	"context"

	"video-pipeline-service/ddd/domain/vo"
)

// FrameRequest extracts a single still frame from a video.
type FrameRequest struct {
	InputPath  string
	OutputPath string
	// OffsetSeconds is the seek position of the frame.
	OffsetSeconds float64
	// Width scales the frame; height follows the aspect ratio.
	Width int
}

// HLSRequest transcodes one rendition into a variant playlist plus segments.
type HLSRequest struct {
	InputPath          string
	PlaylistPath       string
	SegmentPatternPath string
	Height             int
	VideoBitrate       string
	AudioBitrate       string
	SegmentSeconds     int
}

// ToolRunner is the seam to the external media tools. Implementations own
// process invocation; callers own timeout policy via ctx.
type ToolRunner interface {
	Probe(ctx context.Context, inputPath string) (vo.MediaInfo, error)
	ExtractFrame(ctx context.Context, req FrameRequest) error
	TranscodeHLS(ctx context.Context, req HLSRequest) error
}
