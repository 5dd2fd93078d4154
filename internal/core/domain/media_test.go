package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAudio3GPP(t *testing.T) {
	assert.True(t, IsAudio3GPP(MimeAudio3GPP))
	assert.False(t, IsAudio3GPP(MimeVideo3GPP))
	assert.False(t, IsAudio3GPP(""))
}

func TestIsImageMime(t *testing.T) {
	assert.True(t, IsImageMime("image/png"))
	assert.False(t, IsImageMime("video/mp4"))
	assert.False(t, IsImageMime("imagery/x"))
}

func TestDrmExtractionResult_HasDimensions(t *testing.T) {
	tests := []struct {
		name   string
		result DrmExtractionResult
		want   bool
	}{
		{"both set", DrmExtractionResult{Width: 10, Height: 20}, true},
		{"width only", DrmExtractionResult{Width: 10}, false},
		{"none", DrmExtractionResult{OriginalMimeType: "audio/mpeg"}, false},
		{"negative", DrmExtractionResult{Width: -1, Height: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.HasDimensions())
		})
	}
}

func TestDefaultDirectories(t *testing.T) {
	assert.Contains(t, DefaultDirectories, DirRingtones)
	assert.Contains(t, DefaultDirectories, DirAlarms)
	assert.Contains(t, DefaultDirectories, DirNotifications)
	assert.Contains(t, DefaultDirectories, "DCIM/.thumbnails")
}
