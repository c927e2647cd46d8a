package transfer

import "time"

// Fixed relay policy.
const (
	MaxFileBytes        = 10 * 1024 * 1024
	Retention           = 24 * time.Hour
	LinkLifetime        = time.Hour
	CodeDisplayDuration = 30 * time.Second

	DefaultFilename    = "uploaded-file"
	DefaultContentType = "application/octet-stream"

	fileIDTimeLayout = "20060102_150405"
	keyPrefix        = "uploads/"
)

// FileRecord is the metadata persisted for one issued code.
type FileRecord struct {
	Code                string    `json:"code"`
	FileID              string    `json:"file_id"`
	StorageKey          string    `json:"s3_key"`
	Filename            string    `json:"filename"`
	FileType            string    `json:"filetype"`
	UploadTime          time.Time `json:"upload_time"`
	ExpiryTime          time.Time `json:"expiry_time"`
	TTL                 int64     `json:"ttl"`
	Size                int64     `json:"size"`
	CodeDisplayDuration int       `json:"code_display_duration"`
}

// ExpiresAt is the logical expiry instant. Records written without an
// explicit expiry fall back to the TTL attribute.
func (r *FileRecord) ExpiresAt() time.Time {
	if !r.ExpiryTime.IsZero() {
		return r.ExpiryTime
	}
	return time.Unix(r.TTL, 0).UTC()
}

// Expired reports whether the record is past its retention window at now.
func (r *FileRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt())
}

// UploadInput is the decoded upload request.
type UploadInput struct {
	Data         string
	Filename     string
	FileType     string
	ReportedSize int64
}

// UploadResult is returned to the uploader.
type UploadResult struct {
	Code            string
	Filename        string
	FileType        string
	Size            int64
	DisplayDuration time.Duration
	ExpiryTime      time.Time
	Retention       time.Duration
}

// Link is a resolved, time-limited download link.
type Link struct {
	URL       string
	Filename  string
	FileType  string
	ExpiresIn time.Duration
}

// PutOptions carries the headers stored alongside a blob.
type PutOptions struct {
	ContentType        string
	ContentDisposition string
	Metadata           map[string]string
}

// PresignOptions controls the headers and lifetime of a signed retrieval URL.
type PresignOptions struct {
	ResponseContentType        string
	ResponseContentDisposition string
	TTL                        time.Duration
}
