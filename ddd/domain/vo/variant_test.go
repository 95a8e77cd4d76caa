package vo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBitrateToBps(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2500k", 2500000},
		{"2500K", 2500000},
		{"2M", 2000000},
		{"2mbps", 2000000},
		{"800kbps", 800000},
		{"128000", 128000},
		{"1.5m", 1500000},
	}
	for _, tc := range cases {
		got, err := ParseBitrateToBps(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseBitrateToBpsInvalid(t *testing.T) {
	for _, in := range []string{"", "fast", "-500k", "0"} {
		_, err := ParseBitrateToBps(in)
		assert.Error(t, err, in)
	}
}

func TestVariantBandwidthBps(t *testing.T) {
	v := Variant{Name: "720p", Height: 720, VideoBitrate: "2500k", AudioBitrate: "128k"}
	assert.Equal(t, 2500000, v.BandwidthBps())

	broken := Variant{Name: "720p", VideoBitrate: "unknown"}
	assert.Equal(t, 0, broken.BandwidthBps())
}

func TestVariantFileNames(t *testing.T) {
	v := Variant{Name: "480p"}
	assert.Equal(t, "480p.m3u8", v.PlaylistName())
	assert.Equal(t, "480p_%03d.ts", v.SegmentPattern())
}

func TestParseResolutionHeight(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"720p", 720},
		{"1080", 1080},
		{"4K", 2160},
		{"2k", 1440},
	}
	for _, tc := range cases {
		got, err := ParseResolutionHeight(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, in := range []string{"", "p", "abc", "-720p"} {
		_, err := ParseResolutionHeight(in)
		assert.Error(t, err, in)
	}
}
