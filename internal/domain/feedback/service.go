package feedback

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/infrastructure/metrics"
	"github.com/codedrop/relay/internal/utils/feedbackid"
	"github.com/codedrop/relay/internal/utils/platformerrors"
)

// Client-facing messages.
const (
	MsgRequired      = "Rating or feedback text is required"
	MsgRatingRange   = "Rating must be between 1 and 5"
	MsgTooLong       = "Feedback text is too long"
	MsgSubmitFailed  = "Failed to submit feedback"
	MsgSubmitSuccess = "Feedback submitted successfully"
)

const (
	errUUIDRequired    = "9d3e6b1a-44c2-4f7a-8b0e-2a7c5d1f9e01"
	errUUIDRatingRange = "9d3e6b1a-44c2-4f7a-8b0e-2a7c5d1f9e02"
	errUUIDTooLong     = "9d3e6b1a-44c2-4f7a-8b0e-2a7c5d1f9e03"
	errUUIDCreate      = "9d3e6b1a-44c2-4f7a-8b0e-2a7c5d1f9e04"
)

// Service describes the business logic surface for feedback capture.
type Service interface {
	Submit(ctx context.Context, in SubmitInput) (*Feedback, error)
}

type service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

// NewService wires the feedback service with its repository.
func NewService(repo Repository, log zerolog.Logger) Service {
	return &service{
		repo:  repo,
		now:   time.Now,
		newID: feedbackid.New,
		log:   log.With().Str("component", "feedback-service").Logger(),
	}
}

func (s *service) Submit(ctx context.Context, in SubmitInput) (*Feedback, error) {
	text := strings.TrimSpace(in.Text)

	if in.Rating == 0 && text == "" {
		metrics.RecordFeedback("rejected")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, MsgRequired, nil, errUUIDRequired)
	}
	if in.Rating != 0 && (in.Rating < MinRating || in.Rating > MaxRating) {
		metrics.RecordFeedback("rejected")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, MsgRatingRange, nil, errUUIDRatingRange)
	}
	if utf8.RuneCountInString(text) > MaxFeedbackLength {
		metrics.RecordFeedback("rejected")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, MsgTooLong, nil, errUUIDTooLong)
	}

	createdAt := s.now().UTC()
	timestamp := strings.TrimSpace(in.Timestamp)
	if timestamp == "" {
		timestamp = createdAt.Format(time.RFC3339)
	}

	fb := &Feedback{
		ID:        s.newID(),
		Rating:    in.Rating,
		Text:      text,
		Timestamp: timestamp,
		CreatedAt: createdAt,
	}

	if err := s.repo.Create(ctx, fb); err != nil {
		metrics.RecordFeedback("failed")
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError,
			MsgSubmitFailed, err, errUUIDCreate, map[string]any{"feedback_id": fb.ID})
	}

	metrics.RecordFeedback("success")
	s.log.Info().Str("feedback_id", fb.ID).Int("rating", fb.Rating).Msg("feedback stored")
	return fb, nil
}
