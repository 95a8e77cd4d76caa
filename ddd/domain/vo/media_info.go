package vo

import (
	"fmt"
	"strconv"
	"strings"
)

// MediaInfo carries the technical metadata probed from a source file.
type MediaInfo struct {
	DurationSeconds float64
	Width           int
	Height          int
	VideoCodec      string
	AudioCodec      string
	FrameRate       float64
	BitRate         int64
	SizeBytes       int64
	FormatName      string
}

// HasVideo reports whether a video stream was found.
func (m MediaInfo) HasVideo() bool {
	return m.Width > 0 && m.Height > 0
}

// ParseFrameRate evaluates an ffprobe rational frame rate such as
// "30000/1001". A zero denominator or malformed value yields 0.
func ParseFrameRate(rate string) float64 {
	s := strings.TrimSpace(rate)
	if s == "" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return v
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// Summary renders a short human-readable description for logs.
func (m MediaInfo) Summary() string {
	return fmt.Sprintf("%s %dx%d %.2fs fps=%.2f", m.VideoCodec, m.Width, m.Height, m.DurationSeconds, m.FrameRate)
}
