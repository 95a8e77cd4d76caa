package vo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFrameRate(t *testing.T) {
	assert.InDelta(t, 29.97, ParseFrameRate("30000/1001"), 0.001)
	assert.InDelta(t, 25.0, ParseFrameRate("25/1"), 0.001)
	assert.InDelta(t, 24.0, ParseFrameRate("24"), 0.001)
}

func TestParseFrameRateDegenerate(t *testing.T) {
	// ffprobe reports 0/0 for streams without a stable rate.
	assert.Zero(t, ParseFrameRate("0/0"))
	assert.Zero(t, ParseFrameRate("30/0"))
	assert.Zero(t, ParseFrameRate(""))
	assert.Zero(t, ParseFrameRate("abc"))
	assert.Zero(t, ParseFrameRate("30/x"))
}

func TestMediaInfoHasVideo(t *testing.T) {
	assert.True(t, MediaInfo{Width: 1920, Height: 1080}.HasVideo())
	assert.False(t, MediaInfo{}.HasVideo())
	assert.False(t, MediaInfo{Width: 1920}.HasVideo())
}
