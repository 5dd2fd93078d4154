package probe

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/custodia-labs/mediaindex/internal/logger"
)

// mp4Epoch is the zero point of movie header timestamps.
var mp4Epoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// mp4Extensions are the ISO base media files worth parsing.
var mp4Extensions = map[string]bool{
	".mp4": true, ".m4v": true, ".m4a": true, ".mov": true, ".3gp": true, ".3g2": true,
}

func isMP4Container(path string) bool {
	return mp4Extensions[strings.ToLower(filepath.Ext(path))]
}

func decodeMP4(path string) (*mp4.File, bool) {
	if !isMP4Container(path) {
		return nil, false
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	parsed, err := mp4.DecodeFile(f)
	if err != nil {
		logger.Debug("probe: mp4 %s: %v", path, err)
		return nil, false
	}
	if parsed.Moov == nil {
		return nil, false
	}
	return parsed, true
}

// videoDimensions returns the track header size of the first video track.
func videoDimensions(path string) (int, int, bool) {
	parsed, ok := decodeMP4(path)
	if !ok {
		return 0, 0, false
	}
	for _, trak := range parsed.Moov.Traks {
		if trak.Tkhd == nil {
			continue
		}
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		// Track header sizes are 16.16 fixed point.
		w := int(uint32(trak.Tkhd.Width) >> 16)
		h := int(uint32(trak.Tkhd.Height) >> 16)
		if w > 0 && h > 0 {
			return w, h, true
		}
	}
	return 0, 0, false
}

func videoCaptureTime(path string) (int64, bool) {
	parsed, ok := decodeMP4(path)
	if !ok || parsed.Moov.Mvhd == nil || parsed.Moov.Mvhd.CreationTime == 0 {
		return 0, false
	}
	created := mp4Epoch.Add(time.Duration(parsed.Moov.Mvhd.CreationTime) * time.Second)
	return created.UnixMilli(), true
}
