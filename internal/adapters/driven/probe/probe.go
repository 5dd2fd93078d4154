// Package probe implements driven.FileProbe by reading file contents.
//
// Mime types are sniffed with gabriel-vasile/mimetype, EXIF fields are read
// with rwcarlsen/goexif, MP4 and 3GPP boxes with Eyevinn/mp4ff and audio
// tags with dhowden/tag.
package probe

import (
	"image"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gabriel-vasile/mimetype"

	// Register image header decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driven"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

// Ensure Probe implements the interface.
var _ driven.FileProbe = (*Probe)(nil)

const mimeOctetStream = "application/octet-stream"

// Probe reads metadata straight from files on disk.
type Probe struct {
	// cameraTypeTag is the IFD0 tag holding the capture-mode code.
	cameraTypeTag uint16
}

// NewProbe creates a probe reading capture modes from DefaultCameraTypeTag.
func NewProbe() *Probe {
	return &Probe{cameraTypeTag: DefaultCameraTypeTag}
}

// WithCameraTypeTag overrides the EXIF tag holding the capture-mode code.
func (p *Probe) WithCameraTypeTag(id uint16) *Probe {
	p.cameraTypeTag = id
	return p
}

// SniffMimeType detects the mime type from content, falling back to the
// extension when the content is not recognised.
func (p *Probe) SniffMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if strings.TrimPrefix(ext, ".") == domain.DRMExtension {
		return domain.MimeDRMContent
	}

	detected := mimeOctetStream
	if m, err := mimetype.DetectFile(path); err == nil {
		detected = m.String()
	} else {
		logger.Debug("probe: sniff %s: %v", path, err)
	}
	detected = stripParams(detected)

	if detected == mimeOctetStream || detected == "text/plain" {
		if byExt := stripParams(mime.TypeByExtension(ext)); byExt != "" {
			return byExt
		}
	}
	return detected
}

func stripParams(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(mimeType)
}

// Dimensions reads image dimensions from the image header, or video
// dimensions from the first visual track.
func (p *Probe) Dimensions(path, mimeType string) (width, height int) {
	switch domain.MediaTypeForMime(mimeType) {
	case domain.MediaTypeImage:
		if w, h, ok := imageDimensions(path); ok {
			return w, h
		}
		if w, h, ok := p.exifDimensions(path); ok {
			return w, h
		}
	case domain.MediaTypeVideo:
		if w, h, ok := videoDimensions(path); ok {
			return w, h
		}
	}
	return 0, 0
}

func imageDimensions(path string) (int, int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		logger.Debug("probe: image header %s: %v", path, err)
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, cfg.Width > 0 && cfg.Height > 0
}

// Title returns the tag title of an audio file.
func (p *Probe) Title(path, mimeType string) string {
	if domain.MediaTypeForMime(mimeType) != domain.MediaTypeAudio {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		logger.Debug("probe: tags %s: %v", path, err)
		return ""
	}
	return strings.TrimSpace(m.Title())
}

// CaptureTime returns the EXIF original date of an image, or the movie
// header creation time of an MP4 or 3GPP file.
func (p *Probe) CaptureTime(path string) (int64, bool) {
	if ts, ok := p.exifCaptureTime(path); ok {
		return ts, true
	}
	return videoCaptureTime(path)
}
