package driven

// FileProbe reads the metadata a scan needs from file contents.
// Every method is best-effort: failures yield zero values, never errors
// that abort a scan.
type FileProbe interface {
	// SniffMimeType detects the mime type from content and extension.
	SniffMimeType(path string) string

	// CaptureMode reads the raw camera capture-mode code.
	// The boolean is false when the file carries none.
	CaptureMode(path string) (int32, bool)

	// CaptureTime reads the capture timestamp in milliseconds.
	// The boolean is false when the file carries none.
	CaptureTime(path string) (int64, bool)

	// Dimensions reads pixel dimensions for images and videos.
	Dimensions(path, mimeType string) (width, height int)

	// Title reads an embedded media title, for audio files.
	Title(path, mimeType string) string
}
