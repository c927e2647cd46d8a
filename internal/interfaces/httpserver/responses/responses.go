package responses

import (
	"fmt"
	"math"
	"time"

	"github.com/codedrop/relay/internal/domain/feedback"
	"github.com/codedrop/relay/internal/domain/transfer"
)

// UploadResponse is returned after a file is stored.
type UploadResponse struct {
	Success         bool   `json:"success"`
	Code            string `json:"code"`
	Filename        string `json:"filename"`
	DisplayDuration int    `json:"display_duration"`
	ExpiryTime      string `json:"expiry_time"`
	Message         string `json:"message"`
}

// BuildUploadResponse creates response from the upload result.
func BuildUploadResponse(res *transfer.UploadResult) *UploadResponse {
	days := int(res.Retention / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return &UploadResponse{
		Success:         true,
		Code:            res.Code,
		Filename:        res.Filename,
		DisplayDuration: int(res.DisplayDuration / time.Second),
		ExpiryTime:      res.ExpiryTime.UTC().Format(time.RFC3339),
		Message:         fmt.Sprintf("File will be available for %d day(s)", days),
	}
}

// DownloadResponse carries a signed, time-limited link.
type DownloadResponse struct {
	Success      bool   `json:"success"`
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	FileType     string `json:"filetype"`
	URLExpiresIn int64  `json:"url_expires_in"`
	Message      string `json:"message"`
}

// BuildDownloadResponse creates response from a resolved link.
func BuildDownloadResponse(link *transfer.Link) *DownloadResponse {
	minutes := int64(math.Ceil(link.ExpiresIn.Minutes()))
	return &DownloadResponse{
		Success:      true,
		URL:          link.URL,
		Filename:     link.Filename,
		FileType:     link.FileType,
		URLExpiresIn: int64(link.ExpiresIn / time.Second),
		Message:      fmt.Sprintf("Download link valid for %d minutes", minutes),
	}
}

// FeedbackResponse acknowledges a stored submission.
type FeedbackResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	FeedbackID string `json:"feedback_id"`
}

// BuildFeedbackResponse creates response from the stored feedback.
func BuildFeedbackResponse(fb *feedback.Feedback) *FeedbackResponse {
	return &FeedbackResponse{
		Success:    true,
		Message:    feedback.MsgSubmitSuccess,
		FeedbackID: fb.ID,
	}
}
