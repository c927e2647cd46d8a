package requests

import (
	"github.com/codedrop/relay/internal/domain/feedback"
	"github.com/codedrop/relay/internal/domain/transfer"
)

// UploadRequest is the JSON body of an upload.
type UploadRequest struct {
	File     string `json:"file"`
	Filename string `json:"filename"`
	FileType string `json:"filetype"`
	FileSize int64  `json:"filesize"`
}

// ToDomain converts request to domain input.
func (r *UploadRequest) ToDomain() transfer.UploadInput {
	return transfer.UploadInput{
		Data:         r.File,
		Filename:     r.Filename,
		FileType:     r.FileType,
		ReportedSize: r.FileSize,
	}
}

// FeedbackRequest is the JSON body of a feedback submission.
type FeedbackRequest struct {
	Rating    int    `json:"rating"`
	Feedback  string `json:"feedback"`
	Timestamp string `json:"timestamp"`
}

// ToDomain converts request to domain input.
func (r *FeedbackRequest) ToDomain() feedback.SubmitInput {
	return feedback.SubmitInput{
		Rating:    r.Rating,
		Text:      r.Feedback,
		Timestamp: r.Timestamp,
	}
}
