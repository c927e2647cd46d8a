package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	var got UploadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/upload", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"code":"AB12CD34","filename":"a.txt","display_duration":30,"expiry_time":"2024-01-02T03:04:05Z","message":"File will be available for 1 day(s)"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	res, err := c.Upload(context.Background(), "a.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, "AB12CD34", res.Code)
	assert.Equal(t, 30, res.DisplayDuration)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("hello")), got.File)
	assert.Equal(t, int64(5), got.FileSize)
	assert.Equal(t, "text/plain", got.FileType)
}

func TestUploadRejectsLargeFileLocally(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	_, err := c.Upload(context.Background(), "big.bin", "", make([]byte, MaxFileBytes+1))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestResolveNormalizesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AB12CD34", r.URL.Query().Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"url":"http://x/y","filename":"a.txt","filetype":"text/plain","url_expires_in":3600,"message":"Download link valid for 60 minutes"}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).Resolve(context.Background(), " ab12cd34 ")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), res.URLExpiresIn)
	assert.Equal(t, "http://x/y", res.URL)
}

func TestResolveErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGone)
		_, _ = w.Write([]byte(`{"success":false,"message":"File has expired and is no longer available","request_id":"req-1"}`))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)

	_, err := c.Resolve(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = c.Resolve(context.Background(), "AB12CD3!")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = c.Resolve(context.Background(), "AB12CD34")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusGone, apiErr.StatusCode)
	assert.Equal(t, "File has expired and is no longer available", apiErr.Message)
	assert.Equal(t, "req-1", apiErr.RequestID)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "good" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("denied"))
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
		_, _ = w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()
	c := NewClient("http://unused.invalid", time.Second)

	var buf bytes.Buffer
	n, name, err := c.Fetch(context.Background(), srv.URL+"/v1/blobs?token=good", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "report.csv", name)
	assert.Equal(t, "a,b\n1,2\n", buf.String())

	_, _, err = c.Fetch(context.Background(), srv.URL+"/v1/blobs?token=bad", &buf)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestSubmitFeedbackStampsTimestamp(t *testing.T) {
	var got FeedbackRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/feedback", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Feedback submitted successfully","feedback_id":"fb_1"}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).SubmitFeedback(context.Background(), FeedbackRequest{Rating: 4, Feedback: "smooth"})
	require.NoError(t, err)
	assert.Equal(t, "fb_1", res.FeedbackID)
	assert.Equal(t, 4, got.Rating)
	assert.NotEmpty(t, got.Timestamp)
}

func TestWriteSchemas(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "schema")
	paths, err := WriteSchemas(dir)
	require.NoError(t, err)
	require.Len(t, paths, 6)
	assert.Equal(t, filepath.Join(dir, "download_response.schema.json"), paths[0])

	data, err := os.ReadFile(filepath.Join(dir, "upload_request.schema.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc["required"], "file")
}
