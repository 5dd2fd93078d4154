package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driven"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

// Ensure MediaService implements the interface.
var _ driving.MediaService = (*MediaService)(nil)

// Rescanner rescans a single file, used to extract DRM metadata from
// downloaded containers once they are complete.
type Rescanner interface {
	ScanFile(ctx context.Context, path string) (*driving.ScanResult, error)
}

// MediaService is the mutation surface of the media index.
type MediaService struct {
	store     driven.IndexStore
	rescanner Rescanner
}

// NewMediaService creates a new media service.
func NewMediaService(store driven.IndexStore) *MediaService {
	return &MediaService{store: store}
}

// SetRescanner installs the scanner used for downloaded DRM files.
// The scanner itself depends on this service, so it is wired after both exist.
func (s *MediaService) SetRescanner(r Rescanner) {
	s.rescanner = r
}

// Insert adds a record as given. If the record is a completed DRM download,
// the file is rescanned so its DRM metadata reaches the index.
func (s *MediaService) Insert(ctx context.Context, record *domain.IndexRecord) (int64, error) {
	if record == nil || record.FilePath == "" {
		return 0, domain.ErrInvalidInput
	}
	if record.DisplayName == "" {
		record.DisplayName = filepath.Base(record.FilePath)
	}
	record.MediaType = domain.MediaTypeForMime(record.MimeType)

	id, err := s.store.Insert(ctx, record)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", record.FilePath, err)
	}
	record.ID = id

	s.maybeRescanDrmDownload(ctx, record)
	return id, nil
}

func (s *MediaService) maybeRescanDrmDownload(ctx context.Context, record *domain.IndexRecord) {
	if s.rescanner == nil {
		return
	}
	if record.IsPending || !record.IsDrm || !record.IsDownload {
		return
	}
	logger.Debug("media: rescanning downloaded drm file %s", record.FilePath)
	// Best effort: the insert already succeeded.
	if _, err := s.rescanner.ScanFile(ctx, record.FilePath); err != nil {
		logger.Warn("media: rescan of %s failed: %v", record.FilePath, err)
	}
}

// Get retrieves a record by ID.
func (s *MediaService) Get(ctx context.Context, id int64) (*domain.IndexRecord, error) {
	return s.store.Get(ctx, id)
}

// GetByPath retrieves a record by file path.
func (s *MediaService) GetByPath(ctx context.Context, path string) (*domain.IndexRecord, error) {
	return s.store.GetByPath(ctx, path)
}

// List returns records matching the filter, ordered by ID.
func (s *MediaService) List(ctx context.Context, filter domain.RecordFilter) ([]domain.IndexRecord, error) {
	return s.store.Query(ctx, filter)
}

// Update applies changes to one record. Bokeh pictures keep their capture
// time and modification date: those fields are dropped from the changes.
func (s *MediaService) Update(ctx context.Context, id int64, changes domain.RecordChanges) (int, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("get %d: %w", id, err)
	}

	if record.Mode().IsBokeh() {
		changes.CaptureTimestamp = nil
		changes.DateModified = nil
	}
	if changes.IsEmpty() {
		return 0, nil
	}

	n, err := s.store.Update(ctx, id, changes)
	if err != nil {
		return 0, fmt.Errorf("update %d: %w", id, err)
	}
	return n, nil
}

// Delete removes every record matching filter in one transaction. Each
// record is deleted in turn and its burst set repaired with the rest of the
// batch scoped out, so repairs never promote a record about to be deleted.
func (s *MediaService) Delete(ctx context.Context, filter domain.RecordFilter) (int, error) {
	if filter.IsEmpty() {
		return 0, domain.ErrUnscopedDelete
	}

	deleted := 0
	err := s.store.WithinTx(ctx, func(tx driven.IndexStore) error {
		victims, err := tx.Query(ctx, filter)
		if err != nil {
			return fmt.Errorf("query victims: %w", err)
		}
		if len(victims) == 0 {
			return nil
		}

		scope := &domain.RecordFilter{IDs: make([]int64, 0, len(victims))}
		for i := range victims {
			scope.IDs = append(scope.IDs, victims[i].ID)
		}

		burst := NewBurstMaintainer(tx)
		for i := range victims {
			victim := &victims[i]
			n, err := tx.Delete(ctx, domain.RecordFilter{IDs: []int64{victim.ID}})
			if err != nil {
				return fmt.Errorf("delete %d: %w", victim.ID, err)
			}
			deleted += n

			if err := burst.OnRecordDeleted(ctx, victim.Mode(), victim.CaptureTimestamp, scope); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Debug("media: deleted %d records", deleted)
	return deleted, nil
}
