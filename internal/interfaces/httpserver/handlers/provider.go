package handlers

import (
	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/domain/feedback"
)

// Provider wires HTTP handlers. Blob is nil unless local storage is in use.
type Provider struct {
	Transfer *TransferHandler
	Feedback *FeedbackHandler
	Blob     *BlobHandler
}

func NewProvider(cfg *config.Config, transferService TransferService, feedbackService feedback.Service, blobs BlobOpener, log zerolog.Logger) *Provider {
	provider := &Provider{
		Transfer: NewTransferHandler(cfg, transferService, log),
		Feedback: NewFeedbackHandler(feedbackService, log),
	}
	if blobs != nil {
		provider.Blob = NewBlobHandler(blobs, log)
	}
	return provider
}
