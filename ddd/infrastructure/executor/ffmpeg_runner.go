package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/logger"
)

// stderrTailBytes bounds how much tool output is kept for error reporting.
const stderrTailBytes = 2048

// FFmpegRunner implements port.ToolRunner with local ffmpeg/ffprobe
// processes. Timeouts arrive through ctx; a cancelled context kills the
// child process.
type FFmpegRunner struct {
	ffmpegBin  string
	ffprobeBin string
}

func NewFFmpegRunner(cfg *config.Config) *FFmpegRunner {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	ffmpegBin := strings.TrimSpace(cfg.Pipeline.FFmpegBinary)
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	ffprobeBin := strings.TrimSpace(cfg.Pipeline.FFprobeBinary)
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &FFmpegRunner{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin}
}

// ffprobe JSON payload, limited to the fields the pipeline consumes.
type probeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		BitRate    string `json:"bit_rate"`
		FormatName string `json:"format_name"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

func (r *FFmpegRunner) Probe(ctx context.Context, inputPath string) (vo.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, r.ffprobeBin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return vo.MediaInfo{}, wrapToolError(ctx, "ffprobe", err, stderr.Bytes())
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return vo.MediaInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := vo.MediaInfo{FormatName: out.Format.FormatName}
	info.DurationSeconds, _ = strconv.ParseFloat(out.Format.Duration, 64)
	info.SizeBytes, _ = strconv.ParseInt(out.Format.Size, 10, 64)
	info.BitRate, _ = strconv.ParseInt(out.Format.BitRate, 10, 64)

	for _, stream := range out.Streams {
		switch stream.CodecType {
		case "video":
			if info.VideoCodec != "" {
				continue
			}
			info.VideoCodec = stream.CodecName
			info.Width = stream.Width
			info.Height = stream.Height
			info.FrameRate = vo.ParseFrameRate(stream.RFrameRate)
		case "audio":
			if info.AudioCodec == "" {
				info.AudioCodec = stream.CodecName
			}
		}
	}
	return info, nil
}

func (r *FFmpegRunner) ExtractFrame(ctx context.Context, req port.FrameRequest) error {
	args := []string{
		"-i", req.InputPath,
		"-ss", formatSeconds(req.OffsetSeconds),
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-1", req.Width),
		"-q:v", "2",
		"-y", req.OutputPath,
	}
	return r.runFFmpeg(ctx, args)
}

func (r *FFmpegRunner) TranscodeHLS(ctx context.Context, req port.HLSRequest) error {
	args := []string{
		"-i", req.InputPath,
		"-vf", fmt.Sprintf("scale=-2:%d", req.Height),
		"-c:v", "libx264",
		"-b:v", req.VideoBitrate,
		"-c:a", "aac",
		"-b:a", req.AudioBitrate,
		"-hls_time", strconv.Itoa(req.SegmentSeconds),
		"-hls_list_size", "0",
		"-hls_segment_filename", req.SegmentPatternPath,
		"-hls_segment_type", "mpegts",
		"-hls_base_url", "segments/",
		"-f", "hls",
		"-y", req.PlaylistPath,
	}
	return r.runFFmpeg(ctx, args)
}

func (r *FFmpegRunner) runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.ffmpegBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Running ffmpeg", map[string]interface{}{
		"command": r.ffmpegBin + " " + strings.Join(args, " "),
	})
	if err := cmd.Run(); err != nil {
		return wrapToolError(ctx, "ffmpeg", err, stderr.Bytes())
	}
	return nil
}

// wrapToolError folds the context error and a bounded stderr tail into one
// error so the deadline case stays detectable with errors.Is.
func wrapToolError(ctx context.Context, tool string, err error, stderr []byte) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", tool, ctxErr)
	}
	tail := stderrTail(stderr)
	if tail == "" {
		return fmt.Errorf("%s: %w", tool, err)
	}
	return fmt.Errorf("%s: %w: %s", tool, err, tail)
}

func stderrTail(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	if len(s) > stderrTailBytes {
		s = s[len(s)-stderrTailBytes:]
	}
	return s
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
