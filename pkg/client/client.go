// Package client talks to a codedrop relay over HTTP.
package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// MaxFileBytes is the relay's upload limit.
const MaxFileBytes = 10 * 1024 * 1024

const codeLength = 8

var (
	ErrFileTooLarge = errors.New("file exceeds 10 MB limit")
	ErrInvalidCode  = errors.New("code must be 8 letters or digits")
)

// APIError is a non-2xx reply from the relay.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("relay error (%d): %s [request %s]", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("relay error (%d): %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "codedrop-cli/1.0").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the relay root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload encodes data and posts it to the relay.
func (c *Client) Upload(ctx context.Context, filename, fileType string, data []byte) (*UploadResponse, error) {
	if len(data) > MaxFileBytes {
		return nil, ErrFileTooLarge
	}
	req := UploadRequest{
		File:     base64.StdEncoding.EncodeToString(data),
		Filename: filename,
		FileType: fileType,
		FileSize: int64(len(data)),
	}

	var out UploadResponse
	var apiErr ErrorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/upload")
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	if resp.IsError() {
		return nil, newAPIError(resp, &apiErr)
	}
	return &out, nil
}

// Resolve exchanges a code for a signed download link.
func (c *Client) Resolve(ctx context.Context, code string) (*DownloadResponse, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	var out DownloadResponse
	var apiErr ErrorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("code", code).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v1/download")
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	if resp.IsError() {
		return nil, newAPIError(resp, &apiErr)
	}
	return &out, nil
}

// Fetch streams the blob behind a signed link into w and returns the
// number of bytes written together with the filename the link advertises.
func (c *Client) Fetch(ctx context.Context, link string, w io.Writer) (int64, string, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(link)
	if err != nil {
		return 0, "", fmt.Errorf("fetch blob: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(body, 4096))
		return 0, "", &APIError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(string(msg))}
	}

	n, err := io.Copy(w, io.LimitReader(body, MaxFileBytes+1))
	if err != nil {
		return n, "", fmt.Errorf("read blob: %w", err)
	}
	if n > MaxFileBytes {
		return n, "", ErrFileTooLarge
	}
	return n, filenameFromDisposition(resp.Header().Get("Content-Disposition")), nil
}

// SubmitFeedback posts a rating and optional comment.
func (c *Client) SubmitFeedback(ctx context.Context, req FeedbackRequest) (*FeedbackResponse, error) {
	if req.Timestamp == "" {
		req.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	var out FeedbackResponse
	var apiErr ErrorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/feedback")
	if err != nil {
		return nil, fmt.Errorf("feedback request failed: %w", err)
	}
	if resp.IsError() {
		return nil, newAPIError(resp, &apiErr)
	}
	return &out, nil
}

// NormalizeCode trims and upper-cases a code typed by a person.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != codeLength {
		return "", ErrInvalidCode
	}
	for i := 0; i < len(code); i++ {
		ch := code[i]
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			return "", ErrInvalidCode
		}
	}
	return code, nil
}

func newAPIError(resp *resty.Response, body *ErrorResponse) *APIError {
	msg := body.Message
	if msg == "" {
		msg = strings.TrimSpace(resp.String())
	}
	if msg == "" {
		msg = resp.Status()
	}
	return &APIError{
		StatusCode: resp.StatusCode(),
		Message:    msg,
		RequestID:  body.RequestID,
	}
}

func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
