package feedback

import "time"

// Rating bounds. A zero rating means "not rated".
const (
	MinRating         = 1
	MaxRating         = 5
	MaxFeedbackLength = 5000
)

// Feedback is an append-only user submission.
type Feedback struct {
	ID        string    `json:"feedback_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"feedback"`
	Timestamp string    `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitInput is the validated request payload.
type SubmitInput struct {
	Rating    int
	Text      string
	Timestamp string
}
