package driven

import (
	"context"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

// IndexStore persists media index records.
// Backed by SQLite; an in-memory implementation serves tests.
type IndexStore interface {
	// Insert stores a new record and returns its assigned ID.
	// Returns domain.ErrAlreadyExists if a record holds the same path.
	Insert(ctx context.Context, record *domain.IndexRecord) (int64, error)

	// Get retrieves a record by ID.
	Get(ctx context.Context, id int64) (*domain.IndexRecord, error)

	// GetByPath retrieves a record by file path.
	GetByPath(ctx context.Context, path string) (*domain.IndexRecord, error)

	// Query returns records matching the filter, ordered by ID ascending.
	// The ordering is relied on for deterministic burst cover promotion.
	Query(ctx context.Context, filter domain.RecordFilter) ([]domain.IndexRecord, error)

	// Update applies changes to one record and returns the affected count.
	Update(ctx context.Context, id int64, changes domain.RecordChanges) (int, error)

	// Delete removes records matching the filter and returns the count.
	// An empty filter returns domain.ErrUnscopedDelete.
	Delete(ctx context.Context, filter domain.RecordFilter) (int, error)

	// WithinTx runs fn against a store bound to one transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	// Nested calls on a transactional store reuse the outer transaction.
	WithinTx(ctx context.Context, fn func(tx IndexStore) error) error
}
