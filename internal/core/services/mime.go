package services

import "github.com/custodia-labs/mediaindex/internal/core/domain"

// ResolveMimeType overrides a sniffed mime type based on where the file lives.
// A 3GPP video container placed directly in a system sound directory holds
// an audio recording and is indexed as audio. Only the leaf name of the
// containing directory is compared, case-sensitively.
func ResolveMimeType(mimeType, dirName string) string {
	if mimeType != domain.MimeVideo3GPP {
		return mimeType
	}
	switch dirName {
	case domain.DirAlarms, domain.DirNotifications, domain.DirRingtones:
		return domain.MimeAudio3GPP
	default:
		return mimeType
	}
}
