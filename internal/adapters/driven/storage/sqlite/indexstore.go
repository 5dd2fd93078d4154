package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driven"
)

// querier is the subset of *sql.DB and *sql.Tx the index store uses.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// indexStore implements driven.IndexStore.
// db is nil when the store is bound to a transaction.
type indexStore struct {
	q  querier
	db *sql.DB
}

var _ driven.IndexStore = (*indexStore)(nil)

const recordColumns = `id, path, display_name, title, mime_type, media_type, capture_mode,
	capture_timestamp, date_modified, size, width, height, is_download, is_pending, is_drm`

// Insert stores a new record and returns its assigned ID.
func (s *indexStore) Insert(ctx context.Context, record *domain.IndexRecord) (int64, error) {
	if record == nil || record.FilePath == "" {
		return 0, domain.ErrInvalidInput
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO files (path, display_name, title, mime_type, media_type, capture_mode,
			capture_timestamp, date_modified, size, width, height, is_download, is_pending, is_drm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.FilePath, record.DisplayName, record.Title, record.MimeType, string(record.MediaType),
		nullMode(record.CaptureMode), record.CaptureTimestamp, record.DateModified, record.Size,
		record.Width, record.Height, record.IsDownload, record.IsPending, record.IsDrm)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrAlreadyExists
		}
		return 0, fmt.Errorf("inserting record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading record id: %w", err)
	}
	return id, nil
}

// Get retrieves a record by ID.
func (s *indexStore) Get(ctx context.Context, id int64) (*domain.IndexRecord, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM files WHERE id = ?", id)
	return scanRecord(row)
}

// GetByPath retrieves a record by file path.
func (s *indexStore) GetByPath(ctx context.Context, path string) (*domain.IndexRecord, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM files WHERE path = ?", path)
	return scanRecord(row)
}

// Query returns records matching the filter, ordered by ID ascending.
func (s *indexStore) Query(ctx context.Context, filter domain.RecordFilter) ([]domain.IndexRecord, error) {
	where, args := buildWhere(&filter)
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM files WHERE "+where+" ORDER BY id ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.IndexRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// Update applies changes to one record and returns the affected count.
func (s *indexStore) Update(ctx context.Context, id int64, changes domain.RecordChanges) (int, error) {
	set, args := buildSet(&changes)
	if len(set) == 0 {
		return 0, nil
	}
	args = append(args, id)

	res, err := s.q.ExecContext(ctx, "UPDATE files SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return 0, fmt.Errorf("updating record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(n), nil
}

// Delete removes records matching the filter and returns the count.
func (s *indexStore) Delete(ctx context.Context, filter domain.RecordFilter) (int, error) {
	if filter.IsEmpty() {
		return 0, domain.ErrUnscopedDelete
	}
	where, args := buildWhere(&filter)
	res, err := s.q.ExecContext(ctx, "DELETE FROM files WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(n), nil
}

// WithinTx runs fn on a store bound to one transaction.
func (s *indexStore) WithinTx(ctx context.Context, fn func(tx driven.IndexStore) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&indexStore{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.IndexRecord, error) {
	var r domain.IndexRecord
	var mediaType string
	var mode sql.NullInt64
	err := row.Scan(&r.ID, &r.FilePath, &r.DisplayName, &r.Title, &r.MimeType, &mediaType, &mode,
		&r.CaptureTimestamp, &r.DateModified, &r.Size, &r.Width, &r.Height,
		&r.IsDownload, &r.IsPending, &r.IsDrm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	r.MediaType = domain.MediaType(mediaType)
	if mode.Valid {
		r.CaptureMode = domain.ModePtr(domain.CaptureMode(mode.Int64))
	}
	return &r, nil
}

// buildWhere compiles a filter into a WHERE clause and its bound arguments.
func buildWhere(f *domain.RecordFilter) (string, []any) {
	var clauses []string
	var args []any

	if len(f.IDs) > 0 {
		clauses = append(clauses, "id IN ("+placeholders(len(f.IDs))+")")
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}
	if len(f.ExcludeIDs) > 0 {
		clauses = append(clauses, "id NOT IN ("+placeholders(len(f.ExcludeIDs))+")")
		for _, id := range f.ExcludeIDs {
			args = append(args, id)
		}
	}
	if f.CaptureTimestamp != nil {
		clauses = append(clauses, "capture_timestamp = ?")
		args = append(args, *f.CaptureTimestamp)
	}
	if len(f.CaptureModes) > 0 {
		clauses = append(clauses, "capture_mode IN ("+placeholders(len(f.CaptureModes))+")")
		for _, m := range f.CaptureModes {
			args = append(args, int64(m))
		}
	}
	if f.PathPrefix != "" {
		prefix := strings.TrimSuffix(f.PathPrefix, "/")
		clauses = append(clauses, `(path = ? OR path LIKE ? ESCAPE '\')`)
		args = append(args, prefix, escapeLike(prefix)+"/%")
	}
	if f.MimeType != "" {
		clauses = append(clauses, "mime_type = ?")
		args = append(args, f.MimeType)
	}
	if !f.Exclude.IsEmpty() {
		sub, subArgs := buildWhere(f.Exclude)
		clauses = append(clauses, "id NOT IN (SELECT id FROM files WHERE "+sub+")")
		args = append(args, subArgs...)
	}

	if len(clauses) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(clauses, " AND "), args
}

// buildSet compiles changes into SET assignments and their bound arguments.
func buildSet(c *domain.RecordChanges) ([]string, []any) {
	var set []string
	var args []any
	if c.CaptureMode != nil {
		set = append(set, "capture_mode = ?")
		args = append(args, int64(*c.CaptureMode))
	}
	if c.CaptureTimestamp != nil {
		set = append(set, "capture_timestamp = ?")
		args = append(args, *c.CaptureTimestamp)
	}
	if c.DateModified != nil {
		set = append(set, "date_modified = ?")
		args = append(args, *c.DateModified)
	}
	if c.MimeType != nil {
		set = append(set, "mime_type = ?", "media_type = ?")
		args = append(args, *c.MimeType, string(domain.MediaTypeForMime(*c.MimeType)))
	}
	if c.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *c.Title)
	}
	if c.IsPending != nil {
		set = append(set, "is_pending = ?")
		args = append(args, *c.IsPending)
	}
	if c.Width != nil {
		set = append(set, "width = ?")
		args = append(args, *c.Width)
	}
	if c.Height != nil {
		set = append(set, "height = ?")
		args = append(args, *c.Height)
	}
	return set, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

func nullMode(m *domain.CaptureMode) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*m), Valid: true}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
