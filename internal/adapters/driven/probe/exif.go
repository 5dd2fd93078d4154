package probe

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/custodia-labs/mediaindex/internal/logger"
)

// DefaultCameraTypeTag is the vendor IFD0 tag carrying the camera type.
const DefaultCameraTypeTag uint16 = 0x9a00

const cameraTypeField exif.FieldName = "CameraType"

func (p *Probe) decodeExif(path string) (*exif.Exif, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		if x == nil {
			return nil, false
		}
		// Non-critical errors still leave the main directory usable.
		logger.Debug("probe: exif %s: %v", path, err)
	}
	if x.Tiff != nil && len(x.Tiff.Dirs) > 0 {
		x.LoadTags(x.Tiff.Dirs[0], map[uint16]exif.FieldName{p.cameraTypeTag: cameraTypeField}, false)
	}
	return x, true
}

// CaptureMode reads the camera type code from EXIF.
func (p *Probe) CaptureMode(path string) (int32, bool) {
	x, ok := p.decodeExif(path)
	if !ok {
		return 0, false
	}
	t, err := x.Get(cameraTypeField)
	if err != nil {
		return 0, false
	}
	code, err := t.Int(0)
	if err != nil {
		logger.Debug("probe: camera type %s: %v", path, err)
		return 0, false
	}
	return int32(code), true
}

func (p *Probe) exifCaptureTime(path string) (int64, bool) {
	x, ok := p.decodeExif(path)
	if !ok {
		return 0, false
	}
	ts, err := x.DateTime()
	if err != nil {
		return 0, false
	}
	return ts.UnixMilli(), true
}

func (p *Probe) exifDimensions(path string) (int, int, bool) {
	x, ok := p.decodeExif(path)
	if !ok {
		return 0, 0, false
	}
	wt, err := x.Get(exif.PixelXDimension)
	if err != nil {
		return 0, 0, false
	}
	ht, err := x.Get(exif.PixelYDimension)
	if err != nil {
		return 0, 0, false
	}
	w, err1 := wt.Int(0)
	h, err2 := ht.Int(0)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
