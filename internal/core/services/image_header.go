package services

import (
	"fmt"
	"image"
	_ "image/gif"  // GIF header support
	_ "image/jpeg" // JPEG header support
	_ "image/png"  // PNG header support
	"io"

	_ "golang.org/x/image/bmp"  // BMP header support
	_ "golang.org/x/image/webp" // WebP header support
)

// DecodeImageHeader reads width and height from an image header.
func DecodeImageHeader(r io.Reader) (width, height int, err error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%s header reports %dx%d", format, cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}
