package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var (
	_ driven.IndexStore = (*IndexStore)(nil)
	_ driven.IndexStore = (*txStore)(nil)
)

// IndexStore is an in-memory implementation of driven.IndexStore.
// A transaction holds the write lock for its whole duration, so other
// goroutines see either none or all of its writes. Failed transactions
// restore a snapshot.
type IndexStore struct {
	mu      sync.RWMutex
	records map[int64]domain.IndexRecord
	nextID  int64

	// failUpdate, when set, is returned by Update. Tests use it to exercise
	// rollback paths.
	failUpdate error
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		records: make(map[int64]domain.IndexRecord),
		nextID:  1,
	}
}

// FailUpdates makes every subsequent Update return err. Pass nil to reset.
func (s *IndexStore) FailUpdates(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpdate = err
}

// Insert stores a new record and returns its assigned ID.
func (s *IndexStore) Insert(_ context.Context, record *domain.IndexRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(record)
}

// Get retrieves a record by ID.
func (s *IndexStore) Get(_ context.Context, id int64) (*domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

// GetByPath retrieves a record by file path.
func (s *IndexStore) GetByPath(_ context.Context, path string) (*domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getByPath(path)
}

// Query returns records matching the filter, ordered by ID ascending.
func (s *IndexStore) Query(_ context.Context, filter domain.RecordFilter) ([]domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.match(&filter), nil
}

// Update applies changes to one record and returns the affected count.
func (s *IndexStore) Update(_ context.Context, id int64, changes domain.RecordChanges) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(id, changes)
}

// Delete removes records matching the filter and returns the count.
func (s *IndexStore) Delete(_ context.Context, filter domain.RecordFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(filter)
}

// WithinTx runs fn under the write lock and restores the previous contents
// if it fails.
func (s *IndexStore) WithinTx(ctx context.Context, fn func(tx driven.IndexStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[int64]domain.IndexRecord, len(s.records))
	for id, record := range s.records {
		snapshot[id] = copyRecord(&record)
	}
	nextID := s.nextID

	if err := fn(&txStore{s: s}); err != nil {
		s.records = snapshot
		s.nextID = nextID
		return err
	}
	return nil
}

// Len returns the number of stored records.
func (s *IndexStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// The lowercase methods below expect the caller to hold the lock.

func (s *IndexStore) insert(record *domain.IndexRecord) (int64, error) {
	if record == nil || record.FilePath == "" {
		return 0, domain.ErrInvalidInput
	}
	for id := range s.records {
		if s.records[id].FilePath == record.FilePath {
			return 0, domain.ErrAlreadyExists
		}
	}
	id := s.nextID
	s.nextID++
	stored := copyRecord(record)
	stored.ID = id
	s.records[id] = stored
	return id, nil
}

func (s *IndexStore) get(id int64) (*domain.IndexRecord, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyRecord(&record)
	return &out, nil
}

func (s *IndexStore) getByPath(path string) (*domain.IndexRecord, error) {
	for id := range s.records {
		if s.records[id].FilePath == path {
			record := s.records[id]
			out := copyRecord(&record)
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *IndexStore) update(id int64, changes domain.RecordChanges) (int, error) {
	if s.failUpdate != nil {
		return 0, s.failUpdate
	}
	record, ok := s.records[id]
	if !ok {
		return 0, nil
	}
	changes.Apply(&record)
	s.records[id] = record
	return 1, nil
}

func (s *IndexStore) delete(filter domain.RecordFilter) (int, error) {
	if filter.IsEmpty() {
		return 0, domain.ErrUnscopedDelete
	}
	matched := s.match(&filter)
	for i := range matched {
		delete(s.records, matched[i].ID)
	}
	return len(matched), nil
}

// match returns copies of matching records sorted by ID.
func (s *IndexStore) match(filter *domain.RecordFilter) []domain.IndexRecord {
	var result []domain.IndexRecord
	for id := range s.records {
		record := s.records[id]
		if filter.Matches(&record) {
			result = append(result, copyRecord(&record))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// txStore is the view of an IndexStore handed to a transaction. The
// enclosing WithinTx already holds the write lock.
type txStore struct {
	s *IndexStore
}

func (t *txStore) Insert(_ context.Context, record *domain.IndexRecord) (int64, error) {
	return t.s.insert(record)
}

func (t *txStore) Get(_ context.Context, id int64) (*domain.IndexRecord, error) {
	return t.s.get(id)
}

func (t *txStore) GetByPath(_ context.Context, path string) (*domain.IndexRecord, error) {
	return t.s.getByPath(path)
}

func (t *txStore) Query(_ context.Context, filter domain.RecordFilter) ([]domain.IndexRecord, error) {
	return t.s.match(&filter), nil
}

func (t *txStore) Update(_ context.Context, id int64, changes domain.RecordChanges) (int, error) {
	return t.s.update(id, changes)
}

func (t *txStore) Delete(_ context.Context, filter domain.RecordFilter) (int, error) {
	return t.s.delete(filter)
}

// WithinTx reuses the enclosing transaction.
func (t *txStore) WithinTx(_ context.Context, fn func(tx driven.IndexStore) error) error {
	return fn(t)
}

func copyRecord(r *domain.IndexRecord) domain.IndexRecord {
	out := *r
	if r.CaptureMode != nil {
		out.CaptureMode = domain.ModePtr(*r.CaptureMode)
	}
	return out
}
