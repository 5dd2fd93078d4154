package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driven"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

// BurstMaintainer keeps burst sets consistent after deletes: a set with two
// or more members has exactly one cover, and a lone survivor is demoted to a
// normal picture.
//
// It must run on the same transactional store as the delete that triggered
// it, after the delete, so the lookup observes the post-delete state. The
// caller serialises writes to the index; no locking happens here.
type BurstMaintainer struct {
	store driven.IndexStore
}

// NewBurstMaintainer creates a maintainer over store.
func NewBurstMaintainer(store driven.IndexStore) *BurstMaintainer {
	return &BurstMaintainer{store: store}
}

// OnRecordDeleted repairs the burst set at captureTimestamp after a record
// with deletedMode was removed. Records matched by scope are treated as
// already gone; scope may be nil. Update failures are returned unretried so
// the enclosing transaction can roll back.
func (m *BurstMaintainer) OnRecordDeleted(
	ctx context.Context,
	deletedMode domain.CaptureMode,
	captureTimestamp int64,
	scope *domain.RecordFilter,
) error {
	if !deletedMode.IsBurst() {
		return nil
	}

	filter := domain.RecordFilter{
		CaptureTimestamp: &captureTimestamp,
		CaptureModes:     domain.BurstModes,
	}
	if !scope.IsEmpty() {
		filter.Exclude = scope
	}

	remaining, err := m.store.Query(ctx, filter)
	if err != nil {
		return fmt.Errorf("query burst set %d: %w", captureTimestamp, err)
	}

	switch {
	case len(remaining) == 0:
		return nil
	case len(remaining) == 1:
		survivor := remaining[0].ID
		logger.Debug("burst %d: demoting lone survivor %d", captureTimestamp, survivor)
		return m.setMode(ctx, survivor, domain.CaptureModeNormal)
	case deletedMode == domain.CaptureModeBurstCover:
		cover := remaining[0].ID
		logger.Debug("burst %d: promoting %d to cover", captureTimestamp, cover)
		return m.setMode(ctx, cover, domain.CaptureModeBurstCover)
	default:
		return nil
	}
}

func (m *BurstMaintainer) setMode(ctx context.Context, id int64, mode domain.CaptureMode) error {
	if _, err := m.store.Update(ctx, id, domain.RecordChanges{CaptureMode: domain.ModePtr(mode)}); err != nil {
		return fmt.Errorf("set capture mode of %d to %s: %w", id, mode, err)
	}
	return nil
}
