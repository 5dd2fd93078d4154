package domain

import "strings"

// Mime types with special handling during scans.
const (
	MimeVideo3GPP = "video/3gpp"
	MimeAudio3GPP = "audio/3gpp"

	// MimeDRMContent is the sniffed type of an unresolved DCF container.
	MimeDRMContent = "application/vnd.oma.drm.content"

	// MimeUnknownDRMContent is reported when a DCF cannot be unwrapped.
	MimeUnknownDRMContent = "application/unknown"
)

// DRMExtension is the file extension of DRM content format containers.
const DRMExtension = "dcf"

// System sound directories. Files found directly in them are ringtones.
const (
	DirAlarms        = "Alarms"
	DirNotifications = "Notifications"
	DirRingtones     = "Ringtones"
)

// DefaultDirectories are the public directories created on a fresh volume.
var DefaultDirectories = []string{
	"Music",
	"Podcasts",
	DirRingtones,
	DirAlarms,
	DirNotifications,
	"Pictures",
	"Movies",
	"Download",
	"DCIM",
	"DCIM/.thumbnails",
	"DCIM/Camera",
	"Documents",
}

// IsAudio3GPP returns true for the audio-only 3GPP mime type.
func IsAudio3GPP(mimeType string) bool {
	return mimeType == MimeAudio3GPP
}

// IsImageMime returns true for image/* types.
func IsImageMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// DrmExtractionResult carries metadata recovered from a DRM container.
// Width and Height are zero unless the payload is an image whose header
// decoded to positive dimensions.
type DrmExtractionResult struct {
	OriginalMimeType string
	Width            int
	Height           int
}

// HasDimensions returns true when both dimensions were recovered.
func (r *DrmExtractionResult) HasDimensions() bool {
	return r.Width > 0 && r.Height > 0
}
