package vo

import (
	"fmt"
	"strconv"
	"strings"
)

// Variant describes one HLS rendition of an asset.
type Variant struct {
	Name         string
	Height       int
	VideoBitrate string
	AudioBitrate string
}

// PlaylistName returns the variant playlist file name, e.g. "720p.m3u8".
func (v Variant) PlaylistName() string {
	return v.Name + ".m3u8"
}

// SegmentPattern returns the ffmpeg segment filename pattern relative to the
// asset's segments directory, e.g. "720p_%03d.ts".
func (v Variant) SegmentPattern() string {
	return v.Name + "_%03d.ts"
}

// BandwidthBps derives the master playlist BANDWIDTH value from the variant's
// video bitrate. Unparseable bitrates yield 0; the manifest still lists the
// rendition.
func (v Variant) BandwidthBps() int {
	bps, err := ParseBitrateToBps(v.VideoBitrate)
	if err != nil {
		return 0
	}
	return bps
}

// ParseBitrateToBps parses "2000k"/"2M"/"2000kbps"/"2mbps" style bitrates
// into bits per second.
func ParseBitrateToBps(bitrate string) (int, error) {
	s := strings.TrimSpace(strings.ToLower(bitrate))
	if s == "" {
		return 0, fmt.Errorf("empty bitrate")
	}

	factor := 1.0
	switch {
	case strings.HasSuffix(s, "kbps"):
		factor = 1000
		s = strings.TrimSuffix(s, "kbps")
	case strings.HasSuffix(s, "mbps"):
		factor = 1000 * 1000
		s = strings.TrimSuffix(s, "mbps")
	case strings.HasSuffix(s, "k"):
		factor = 1000
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		factor = 1000 * 1000
		s = strings.TrimSuffix(s, "m")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid bitrate: %s", bitrate)
	}
	return int(v * factor), nil
}

// ParseResolutionHeight converts "720p"/"1080"/"4K"/"2K" into a pixel height.
func ParseResolutionHeight(resolution string) (int, error) {
	s := strings.TrimSpace(strings.ToLower(resolution))
	if s == "" {
		return 0, fmt.Errorf("empty resolution")
	}
	switch s {
	case "4k":
		return 2160, nil
	case "2k":
		return 1440, nil
	}
	s = strings.TrimSuffix(s, "p")
	if s == "" {
		return 0, fmt.Errorf("invalid resolution: %s", resolution)
	}
	h, err := strconv.Atoi(s)
	if err != nil || h <= 0 {
		return 0, fmt.Errorf("invalid resolution: %s", resolution)
	}
	return h, nil
}
