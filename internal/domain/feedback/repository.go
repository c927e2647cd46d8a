package feedback

import "context"

// Repository persists feedback submissions.
type Repository interface {
	Create(ctx context.Context, fb *Feedback) error
}
