package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driven"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

// Ensure ScanService implements the interface.
var _ driving.ScanService = (*ScanService)(nil)

// thumbnailsDir is the one hidden directory that is always scanned.
const thumbnailsDir = ".thumbnails"

// ScanService walks the filesystem and writes index records.
type ScanService struct {
	media      driving.MediaService
	probe      driven.FileProbe
	drmBackend driven.DrmBackend
	settings   domain.AppSettings
}

// NewScanService creates a new scan service.
// drmBackend is optional; without it DCF files carry no recovered metadata.
func NewScanService(
	media driving.MediaService,
	probe driven.FileProbe,
	drmBackend driven.DrmBackend,
	settings domain.AppSettings,
) *ScanService {
	return &ScanService{
		media:      media,
		probe:      probe,
		drmBackend: drmBackend,
		settings:   settings,
	}
}

// scanBatch is the state of one directory-level or single-file scan.
// Its DRM resolver lives exactly as long as the batch.
type scanBatch struct {
	id     string
	drm    *DrmResolver
	result *driving.ScanResult
}

func (s *ScanService) newBatch() *scanBatch {
	id := uuid.New().String()
	return &scanBatch{
		id:     id,
		drm:    NewDrmResolver(s.settings.DRM.Enabled, s.drmBackend),
		result: &driving.ScanResult{BatchID: id},
	}
}

func (b *scanBatch) release() {
	if err := b.drm.Release(); err != nil {
		logger.Warn("scan %s: %v", b.id, err)
	}
}

// ScanDirectory indexes every file under root as one batch, then removes
// records under root whose files no longer exist.
func (s *ScanService) ScanDirectory(ctx context.Context, root string) (*driving.ScanResult, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	batch := s.newBatch()
	defer batch.release()
	defer logger.Timed(fmt.Sprintf("Scan %s (batch %s)", root, batch.id))()

	seen := make(map[string]struct{})
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("scan: %v", err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if s.skip(path, root, d) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		seen[path] = struct{}{}
		return s.scanPath(ctx, batch, path)
	})
	if walkErr != nil {
		return batch.result, walkErr
	}

	if err := s.removeStale(ctx, batch, root, seen); err != nil {
		return batch.result, err
	}

	logger.Info("scan %s: %d inserted, %d updated, %d removed, %d skipped",
		batch.id, batch.result.Inserted, batch.result.Updated, batch.result.Removed, batch.result.Skipped)
	return batch.result, nil
}

// ScanFile indexes a single file as its own batch. A missing file has its
// record removed.
func (s *ScanService) ScanFile(ctx context.Context, path string) (*driving.ScanResult, error) {
	if path == "" {
		return nil, domain.ErrInvalidInput
	}
	path = filepath.Clean(path)

	batch := s.newBatch()
	defer batch.release()
	logger.Section(fmt.Sprintf("Scan file %s (batch %s)", path, batch.id))

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return batch.result, s.removePath(ctx, batch, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidInput, path)
	}

	if err := s.scanPath(ctx, batch, path); err != nil {
		return batch.result, err
	}
	return batch.result, nil
}

// EnsureDefaultDirectories creates the standard public directories under root.
func (s *ScanService) EnsureDefaultDirectories(root string) error {
	for _, dir := range domain.DefaultDirectories {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

func (s *ScanService) skip(path, root string, d fs.DirEntry) bool {
	if path == root || !s.settings.Scan.SkipHidden {
		return false
	}
	name := d.Name()
	return strings.HasPrefix(name, ".") && name != thumbnailsDir
}

// scanPath builds a record for path and writes it if the file changed.
func (s *ScanService) scanPath(ctx context.Context, batch *scanBatch, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		logger.Warn("scan: %v", err)
		batch.result.Skipped++
		return nil
	}

	existing, err := s.media.GetByPath(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup %s: %w", path, err)
	}
	if existing != nil && existing.DateModified == info.ModTime().Unix() && existing.Size == info.Size() {
		batch.result.Skipped++
		return nil
	}

	record := s.buildRecord(ctx, batch, path, info)

	if existing == nil {
		if _, err := s.media.Insert(ctx, record); err != nil {
			return err
		}
		batch.result.Inserted++
		return nil
	}

	changes := domain.RecordChanges{
		MimeType:         &record.MimeType,
		Title:            &record.Title,
		CaptureTimestamp: &record.CaptureTimestamp,
		DateModified:     &record.DateModified,
		Width:            &record.Width,
		Height:           &record.Height,
		CaptureMode:      record.CaptureMode,
	}
	if _, err := s.media.Update(ctx, existing.ID, changes); err != nil {
		return err
	}
	batch.result.Updated++
	return nil
}

func (s *ScanService) buildRecord(ctx context.Context, batch *scanBatch, path string, info fs.FileInfo) *domain.IndexRecord {
	name := filepath.Base(path)
	record := &domain.IndexRecord{
		FilePath:         path,
		DisplayName:      name,
		Title:            strings.TrimSuffix(name, filepath.Ext(name)),
		DateModified:     info.ModTime().Unix(),
		CaptureTimestamp: info.ModTime().UnixMilli(),
		Size:             info.Size(),
	}

	mimeType := ResolveMimeType(s.probe.SniffMimeType(path), filepath.Base(filepath.Dir(path)))

	if IsDrmContainer(path) {
		record.IsDrm = true
		mimeType = domain.MimeUnknownDRMContent
		if drm, ok := batch.drm.Resolve(ctx, path); ok {
			mimeType = drm.OriginalMimeType
			record.Width = drm.Width
			record.Height = drm.Height
			batch.result.DRMResolved++
		}
		record.MimeType = mimeType
		record.MediaType = domain.MediaTypeForMime(mimeType)
		return record
	}

	record.MimeType = mimeType
	record.MediaType = domain.MediaTypeForMime(mimeType)

	if record.MediaType == domain.MediaTypeImage {
		if code, ok := s.probe.CaptureMode(path); ok {
			ApplyCaptureMode(record, code)
		}
	}
	if ts, ok := s.probe.CaptureTime(path); ok {
		record.CaptureTimestamp = ts
	}
	if record.MediaType == domain.MediaTypeImage || record.MediaType == domain.MediaTypeVideo {
		record.Width, record.Height = s.probe.Dimensions(path, mimeType)
	}
	if title := s.probe.Title(path, mimeType); title != "" {
		record.Title = title
	}
	return record
}

// removeStale deletes records under root whose files were not seen.
func (s *ScanService) removeStale(ctx context.Context, batch *scanBatch, root string, seen map[string]struct{}) error {
	records, err := s.media.List(ctx, domain.RecordFilter{PathPrefix: root})
	if err != nil {
		return fmt.Errorf("list %s: %w", root, err)
	}

	var stale []int64
	for i := range records {
		if _, ok := seen[records[i].FilePath]; ok {
			continue
		}
		if _, err := os.Stat(records[i].FilePath); errors.Is(err, fs.ErrNotExist) {
			stale = append(stale, records[i].ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	n, err := s.media.Delete(ctx, domain.RecordFilter{IDs: stale})
	if err != nil {
		return fmt.Errorf("remove stale records: %w", err)
	}
	batch.result.Removed += n
	return nil
}

func (s *ScanService) removePath(ctx context.Context, batch *scanBatch, path string) error {
	existing, err := s.media.GetByPath(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup %s: %w", path, err)
	}
	n, err := s.media.Delete(ctx, domain.RecordFilter{IDs: []int64{existing.ID}})
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	batch.result.Removed += n
	return nil
}
