package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codedrop/relay/internal/config"
)

func localStackConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ServiceName:          "codedrop-relay",
		Environment:          "test",
		RequestTimeout:       5 * time.Second,
		MaxRequestBytes:      16 << 20,
		CORSAllowOrigins:     []string{"*"},
		StorageBackend:       config.BackendLocal,
		LocalStoragePath:     t.TempDir(),
		LocalStorageBaseURL:  "http://relay.test",
		LocalSigningSecret:   "integration-secret-0123456789",
		RecordStoreBackend:   config.BackendMemory,
		RecordExpiryGrace:    time.Hour,
		CodeIssueAttempts:    3,
		FeedbackStoreBackend: config.BackendMemory,
		JanitorInterval:      time.Minute,
	}
}

func TestLocalStackRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := localStackConfig(t)
	require.NoError(t, cfg.Validate())

	app, cleanup, err := buildApplication(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer cleanup()
	handler := app.httpServer.Handler()

	content := []byte("quarterly numbers\n")
	uploadBody, err := json.Marshal(map[string]any{
		"file":     base64.StdEncoding.EncodeToString(content),
		"filename": "report.csv",
		"filetype": "text/csv",
		"filesize": len(content),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/upload", strings.NewReader(string(uploadBody)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var uploaded struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	require.True(t, uploaded.Success)
	require.Len(t, uploaded.Code, 8)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download?code="+strings.ToLower(uploaded.Code), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resolved struct {
		URL          string `json:"url"`
		Filename     string `json:"filename"`
		FileType     string `json:"filetype"`
		URLExpiresIn int64  `json:"url_expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.Equal(t, "report.csv", resolved.Filename)
	assert.Equal(t, "text/csv", resolved.FileType)
	assert.Equal(t, int64(3600), resolved.URLExpiresIn)

	link, err := url.Parse(resolved.URL)
	require.NoError(t, err)
	assert.Equal(t, "relay.test", link.Host)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, link.RequestURI(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	got, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report.csv"`, w.Header().Get("Content-Disposition"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuildApplicationRejectsUnknownBackend(t *testing.T) {
	cfg := localStackConfig(t)
	cfg.RecordStoreBackend = "cassandra"

	_, _, err := buildApplication(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestProvideJanitorSweepers(t *testing.T) {
	cfg := localStackConfig(t)
	blobs, err := provideBlobBackend(cfg, aws.Config{}, zerolog.Nop())
	require.NoError(t, err)
	records, cleanup, err := provideRecordBackend(context.Background(), cfg, aws.Config{}, zerolog.Nop())
	require.NoError(t, err)
	defer cleanup()

	j := provideJanitor(cfg, blobs, records, zerolog.Nop())
	assert.Zero(t, j.SweepOnce(context.Background()))
}
