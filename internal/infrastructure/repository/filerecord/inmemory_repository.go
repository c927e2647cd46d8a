package filerecord

import (
	"context"
	"sync"
	"time"

	domain "github.com/codedrop/relay/internal/domain/transfer"
)

// InMemoryRepository is a thread-safe record store for single-node and
// test deployments. Records are retained until expiry plus grace so that
// expired codes still resolve to "expired" rather than "not found".
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]domain.FileRecord
	grace   time.Duration
	now     func() time.Time
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository(grace time.Duration) *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]domain.FileRecord),
		grace:   grace,
		now:     time.Now,
	}
}

func (r *InMemoryRepository) purgeable(rec domain.FileRecord, now time.Time) bool {
	return now.After(rec.ExpiresAt().Add(r.grace))
}

// PutIfAbsent stores rec unless a live record already holds its code.
func (r *InMemoryRepository) PutIfAbsent(ctx context.Context, rec *domain.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[rec.Code]; ok && !r.purgeable(existing, r.now()) {
		return domain.ErrCodeTaken
	}
	r.records[rec.Code] = *rec
	return nil
}

// Get returns a copy of the record for code, or nil when absent.
func (r *InMemoryRepository) Get(ctx context.Context, code string) (*domain.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[code]
	if !ok || r.purgeable(rec, r.now()) {
		return nil, nil
	}
	return &rec, nil
}

// Len reports the number of held records.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Name identifies the sweeper in logs and metrics.
func (r *InMemoryRepository) Name() string {
	return "memory-records"
}

// Sweep drops records past expiry plus grace.
func (r *InMemoryRepository) Sweep(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for code, rec := range r.records {
		if r.purgeable(rec, now) {
			delete(r.records, code)
			removed++
		}
	}
	return removed, nil
}

// Health always succeeds.
func (r *InMemoryRepository) Health(ctx context.Context) error {
	return nil
}
