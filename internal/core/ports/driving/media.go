package driving

import (
	"context"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

// MediaService is the mutation and lookup surface of the media index.
type MediaService interface {
	// Insert adds a record. Capture modes are stored as given; the
	// taxonomy is only applied on the scan path.
	Insert(ctx context.Context, record *domain.IndexRecord) (int64, error)

	// Get retrieves a record by ID.
	Get(ctx context.Context, id int64) (*domain.IndexRecord, error)

	// GetByPath retrieves a record by file path.
	GetByPath(ctx context.Context, path string) (*domain.IndexRecord, error)

	// List returns records matching the filter, ordered by ID.
	List(ctx context.Context, filter domain.RecordFilter) ([]domain.IndexRecord, error)

	// Update applies changes to one record and returns the affected count.
	Update(ctx context.Context, id int64, changes domain.RecordChanges) (int, error)

	// Delete removes every record matching the filter and repairs any burst
	// set it touched, in one transaction. Returns the deleted count.
	Delete(ctx context.Context, filter domain.RecordFilter) (int, error)
}
