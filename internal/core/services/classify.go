package services

import (
	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

// ApplyCaptureMode writes the classification of a raw capture-mode code
// onto record. Burst codes are stored as normal: burst grouping lives in
// the capture timestamp, not in the persisted attribute. Unknown codes
// leave the attribute unset.
func ApplyCaptureMode(record *domain.IndexRecord, code int32) {
	c := domain.Classify(code)
	mode, ok := c.Value()
	if !ok {
		logger.Debug("classify: ignoring capture mode %d for %s", code, record.FilePath)
		return
	}
	logger.Debug("classify: capture mode %d (%s) stored as %d for %s", code, c.Disposition, mode, record.FilePath)
	record.CaptureMode = domain.ModePtr(mode)
}
