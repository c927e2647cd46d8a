package client

// UploadRequest is the JSON body accepted by POST /v1/upload.
type UploadRequest struct {
	File     string `json:"file" jsonschema:"required,description=Base64 encoded file content"`
	Filename string `json:"filename,omitempty" jsonschema:"description=Original file name,default=uploaded-file"`
	FileType string `json:"filetype,omitempty" jsonschema:"description=Declared MIME type"`
	FileSize int64  `json:"filesize,omitempty" jsonschema:"minimum=0,description=Decoded size in bytes as seen by the sender"`
}

// UploadResponse is returned after a file is stored.
type UploadResponse struct {
	Success         bool   `json:"success"`
	Code            string `json:"code" jsonschema:"minLength=8,maxLength=8,pattern=^[A-Z0-9]{8}$"`
	Filename        string `json:"filename"`
	DisplayDuration int    `json:"display_duration" jsonschema:"description=Seconds the sender UI keeps the code on screen"`
	ExpiryTime      string `json:"expiry_time" jsonschema:"format=date-time"`
	Message         string `json:"message"`
}

// DownloadResponse carries a signed, time-limited link.
type DownloadResponse struct {
	Success      bool   `json:"success"`
	URL          string `json:"url" jsonschema:"format=uri"`
	Filename     string `json:"filename"`
	FileType     string `json:"filetype"`
	URLExpiresIn int64  `json:"url_expires_in" jsonschema:"description=Seconds until the link stops working"`
	Message      string `json:"message"`
}

// FeedbackRequest is the JSON body accepted by POST /v1/feedback.
type FeedbackRequest struct {
	Rating    int    `json:"rating,omitempty" jsonschema:"minimum=0,maximum=5,description=Star rating where 0 means unrated"`
	Feedback  string `json:"feedback,omitempty"`
	Timestamp string `json:"timestamp,omitempty" jsonschema:"description=Client side submission time"`
}

// FeedbackResponse acknowledges a stored submission.
type FeedbackResponse struct {
	Success    bool   `json:"success" yaml:"success"`
	Message    string `json:"message" yaml:"message"`
	FeedbackID string `json:"feedback_id" yaml:"feedback_id"`
}

// ErrorResponse is the envelope every failed request carries.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
