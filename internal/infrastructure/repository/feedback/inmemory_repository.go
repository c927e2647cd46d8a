package feedback

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/codedrop/relay/internal/domain/feedback"
)

// InMemoryRepository is a thread-safe repository useful for demos/tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []domain.Feedback
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.entries {
		if existing.ID == fb.ID {
			return fmt.Errorf("feedback %s already exists", fb.ID)
		}
	}
	r.entries = append(r.entries, *fb)
	return nil
}

// List returns a snapshot of stored feedback in insertion order.
func (r *InMemoryRepository) List(ctx context.Context) []domain.Feedback {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Feedback, len(r.entries))
	copy(out, r.entries)
	return out
}

// Health always succeeds.
func (r *InMemoryRepository) Health(ctx context.Context) error {
	return nil
}
