package transfer_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/domain/transfer"
	"github.com/codedrop/relay/internal/utils/platformerrors"
)

type fakeRecords struct {
	mu     sync.Mutex
	items  map[string]*transfer.FileRecord
	putErr error
	getErr error
	gets   int
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{items: make(map[string]*transfer.FileRecord)}
}

func (f *fakeRecords) PutIfAbsent(ctx context.Context, rec *transfer.FileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if _, exists := f.items[rec.Code]; exists {
		return transfer.ErrCodeTaken
	}
	copied := *rec
	f.items[rec.Code] = &copied
	return nil
}

func (f *fakeRecords) Get(ctx context.Context, code string) (*transfer.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.items[code]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

type putCall struct {
	key  string
	data []byte
	opts transfer.PutOptions
}

type fakeBlobs struct {
	mu          sync.Mutex
	objects     map[string][]byte
	puts        []putCall
	deleted     []string
	presigned   []transfer.PresignOptions
	putErr      error
	presignErr  error
	presignBase string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte), presignBase: "https://blobs.test/"}
}

func (f *fakeBlobs) Put(ctx context.Context, key string, body io.Reader, size int64, opts transfer.PutOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: %d != %d", len(data), size)
	}
	f.objects[key] = data
	f.puts = append(f.puts, putCall{key: key, data: data, opts: opts})
	return nil
}

func (f *fakeBlobs) PresignGet(ctx context.Context, key string, opts transfer.PresignOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.presignErr != nil {
		return "", f.presignErr
	}
	f.presigned = append(f.presigned, opts)
	return f.presignBase + key, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sequence(codes ...string) transfer.CodeGenerator {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		code := codes[i%len(codes)]
		i++
		return code
	}
}

func newTestService(t *testing.T, records *fakeRecords, blobs *fakeBlobs, opts ...transfer.Option) *transfer.Service {
	t.Helper()
	cfg := &config.Config{CodeIssueAttempts: 3}
	return transfer.NewService(cfg, records, blobs, zerolog.Nop(), opts...)
}

func encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func TestUploadThenResolveRoundTrip(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	clk := &clock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	svc := newTestService(t, records, blobs,
		transfer.WithClock(clk.Now),
		transfer.WithCodeGenerator(sequence("AB12CD34")),
	)

	payload := []byte("%PDF-1.4 quarterly numbers")
	result, err := svc.Upload(context.Background(), transfer.UploadInput{
		Data:         encode(payload),
		Filename:     "report.pdf",
		FileType:     "application/pdf",
		ReportedSize: int64(len(payload)),
	})
	require.NoError(t, err)

	assert.Equal(t, "AB12CD34", result.Code)
	assert.Equal(t, "report.pdf", result.Filename)
	assert.Equal(t, 30*time.Second, result.DisplayDuration)
	assert.Equal(t, clk.Now().Add(24*time.Hour), result.ExpiryTime)

	rec := records.items["AB12CD34"]
	require.NotNil(t, rec)
	assert.Equal(t, "20240102_030405_AB12CD34", rec.FileID)
	assert.Equal(t, "uploads/20240102_030405_AB12CD34/report.pdf", rec.StorageKey)
	assert.Equal(t, "application/pdf", rec.FileType)
	assert.Equal(t, int64(len(payload)), rec.Size)
	assert.Equal(t, rec.ExpiryTime.Unix(), rec.TTL)
	assert.Equal(t, 30, rec.CodeDisplayDuration)

	require.Len(t, blobs.puts, 1)
	put := blobs.puts[0]
	assert.Equal(t, payload, put.data)
	assert.Equal(t, "application/pdf", put.opts.ContentType)
	assert.Equal(t, `attachment; filename="report.pdf"`, put.opts.ContentDisposition)
	assert.Equal(t, "report.pdf", put.opts.Metadata["original-filename"])
	assert.Equal(t, "AB12CD34", put.opts.Metadata["file-code"])
	assert.Equal(t, "2024-01-02T03:04:05Z", put.opts.Metadata["upload-time"])

	clk.Advance(10 * time.Minute)
	link, err := svc.Resolve(context.Background(), " ab12cd34 ")
	require.NoError(t, err)

	assert.Equal(t, "https://blobs.test/uploads/20240102_030405_AB12CD34/report.pdf", link.URL)
	assert.Equal(t, "report.pdf", link.Filename)
	assert.Equal(t, "application/pdf", link.FileType)
	assert.Equal(t, time.Hour, link.ExpiresIn)

	require.Len(t, blobs.presigned, 1)
	assert.Equal(t, transfer.PresignOptions{
		ResponseContentType:        "application/pdf",
		ResponseContentDisposition: `attachment; filename="report.pdf"`,
		TTL:                        time.Hour,
	}, blobs.presigned[0])
}

func TestUploadDefaultsFilenameAndInfersType(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	svc := newTestService(t, records, blobs, transfer.WithCodeGenerator(sequence("ZZZZ9999")))

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	result, err := svc.Upload(context.Background(), transfer.UploadInput{Data: encode(png)})
	require.NoError(t, err)

	assert.Equal(t, transfer.DefaultFilename, result.Filename)
	assert.Equal(t, "image/png", result.FileType)
	assert.True(t, strings.HasSuffix(records.items["ZZZZ9999"].StorageKey, "/"+transfer.DefaultFilename))
}

func TestUploadValidation(t *testing.T) {
	tooBig := make([]byte, transfer.MaxFileBytes+1)

	tests := []struct {
		name    string
		input   transfer.UploadInput
		message string
	}{
		{name: "missing file", input: transfer.UploadInput{Filename: "a.txt"}, message: transfer.MsgNoFile},
		{name: "reported size over limit", input: transfer.UploadInput{Data: encode([]byte("x")), ReportedSize: transfer.MaxFileBytes + 1}, message: transfer.MsgTooLarge},
		{name: "decoded size over limit", input: transfer.UploadInput{Data: encode(tooBig), ReportedSize: 10}, message: transfer.MsgTooLarge},
		{name: "invalid base64", input: transfer.UploadInput{Data: "@@@", Filename: "a.txt"}, message: transfer.MsgInvalidFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := newFakeRecords()
			blobs := newFakeBlobs()
			svc := newTestService(t, records, blobs)

			_, err := svc.Upload(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
			assert.Equal(t, tt.message, platformerrors.GetPlatformError(err).Message)
			assert.Empty(t, blobs.puts, "no blob may be written")
			assert.Empty(t, records.items, "no record may be written")
		})
	}
}

func TestUploadAcceptsExactlyMaxBytes(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	svc := newTestService(t, records, blobs)

	data := make([]byte, transfer.MaxFileBytes)
	result, err := svc.Upload(context.Background(), transfer.UploadInput{
		Data:         encode(data),
		Filename:     "zeros.bin",
		ReportedSize: transfer.MaxFileBytes,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(transfer.MaxFileBytes), result.Size)
}

func TestUploadRetriesOnCodeCollision(t *testing.T) {
	records := newFakeRecords()
	records.items["AAAAAAAA"] = &transfer.FileRecord{Code: "AAAAAAAA"}
	blobs := newFakeBlobs()
	svc := newTestService(t, records, blobs, transfer.WithCodeGenerator(sequence("AAAAAAAA", "BBBBBBBB")))

	result, err := svc.Upload(context.Background(), transfer.UploadInput{Data: encode([]byte("hi")), Filename: "hi.txt"})
	require.NoError(t, err)

	assert.Equal(t, "BBBBBBBB", result.Code)
	require.Len(t, blobs.deleted, 1)
	assert.Contains(t, blobs.deleted[0], "_AAAAAAAA/")
	assert.Len(t, blobs.objects, 1)
}

func TestUploadGivesUpAfterAttempts(t *testing.T) {
	records := newFakeRecords()
	records.items["AAAAAAAA"] = &transfer.FileRecord{Code: "AAAAAAAA"}
	blobs := newFakeBlobs()
	svc := newTestService(t, records, blobs, transfer.WithCodeGenerator(sequence("AAAAAAAA")))

	_, err := svc.Upload(context.Background(), transfer.UploadInput{Data: encode([]byte("hi"))})
	require.Error(t, err)

	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal))
	assert.Equal(t, transfer.MsgUploadFailed, platformerrors.GetPlatformError(err).Message)
	assert.Len(t, blobs.deleted, 3)
	assert.Empty(t, blobs.objects)
}

func TestUploadCompensatesOnRecordFailure(t *testing.T) {
	records := newFakeRecords()
	records.putErr = errors.New("throttled")
	blobs := newFakeBlobs()
	svc := newTestService(t, records, blobs)

	_, err := svc.Upload(context.Background(), transfer.UploadInput{Data: encode([]byte("hi"))})
	require.Error(t, err)

	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError))
	assert.Equal(t, transfer.MsgUploadFailed, platformerrors.GetPlatformError(err).Message)
	assert.Len(t, blobs.deleted, 1)
	assert.Empty(t, blobs.objects)
}

func TestUploadBlobFailure(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	blobs.putErr = errors.New("access denied")
	svc := newTestService(t, records, blobs)

	_, err := svc.Upload(context.Background(), transfer.UploadInput{Data: encode([]byte("hi"))})
	require.Error(t, err)

	assert.Equal(t, transfer.MsgUploadFailed, platformerrors.GetPlatformError(err).Message)
	assert.Empty(t, records.items)
}

func TestUploadIssuesDistinctCodes(t *testing.T) {
	records := newFakeRecords()
	blobs := newFakeBlobs()
	svc := newTestService(t, records, blobs)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		result, err := svc.Upload(context.Background(), transfer.UploadInput{Data: encode([]byte{byte(i)})})
		require.NoError(t, err)
		assert.False(t, seen[result.Code], "code %s issued twice", result.Code)
		seen[result.Code] = true
	}
}

func TestResolve(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	live := &transfer.FileRecord{
		Code:       "LIVE0001",
		StorageKey: "uploads/20240501_120000_LIVE0001/notes.txt",
		Filename:   "notes.txt",
		FileType:   "text/plain",
		UploadTime: base,
		ExpiryTime: base.Add(24 * time.Hour),
		TTL:        base.Add(24 * time.Hour).Unix(),
	}
	ttlOnly := &transfer.FileRecord{
		Code:       "TTLONLY1",
		StorageKey: "uploads/x/legacy.bin",
		Filename:   "legacy.bin",
		FileType:   "application/octet-stream",
		TTL:        base.Add(24 * time.Hour).Unix(),
	}

	tests := []struct {
		name      string
		code      string
		now       time.Time
		wantType  platformerrors.ErrorType
		wantMsg   string
		wantTTL   time.Duration
		wantStore bool
	}{
		{name: "empty code", code: "   ", now: base, wantType: platformerrors.ErrorTypeValidation, wantMsg: transfer.MsgCodeRequired},
		{name: "malformed code skips store", code: "abc", now: base, wantType: platformerrors.ErrorTypeNotFound, wantMsg: transfer.MsgNotFound},
		{name: "unknown code", code: "NOPE0000", now: base, wantType: platformerrors.ErrorTypeNotFound, wantMsg: transfer.MsgNotFound, wantStore: true},
		{name: "live lowercase", code: "live0001", now: base.Add(time.Hour), wantTTL: time.Hour, wantStore: true},
		{name: "link clamped to retention", code: "LIVE0001", now: base.Add(23*time.Hour + 30*time.Minute), wantTTL: 30 * time.Minute, wantStore: true},
		{name: "one second before expiry", code: "LIVE0001", now: base.Add(24*time.Hour - time.Second), wantTTL: time.Second, wantStore: true},
		{name: "expired but present", code: "LIVE0001", now: base.Add(24*time.Hour + time.Second), wantType: platformerrors.ErrorTypeExpired, wantMsg: transfer.MsgExpired, wantStore: true},
		{name: "expiry from ttl attribute", code: "TTLONLY1", now: base.Add(25 * time.Hour), wantType: platformerrors.ErrorTypeExpired, wantMsg: transfer.MsgExpired, wantStore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := newFakeRecords()
			records.items[live.Code] = live
			records.items[ttlOnly.Code] = ttlOnly
			blobs := newFakeBlobs()
			now := tt.now
			svc := newTestService(t, records, blobs, transfer.WithClock(func() time.Time { return now }))

			link, err := svc.Resolve(context.Background(), tt.code)
			assert.Equal(t, tt.wantStore, records.gets > 0)

			if tt.wantType != "" {
				require.Error(t, err)
				assert.True(t, platformerrors.IsErrorType(err, tt.wantType), "got %v", err)
				assert.Equal(t, tt.wantMsg, platformerrors.GetPlatformError(err).Message)
				assert.Empty(t, blobs.presigned)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTTL, link.ExpiresIn)
			assert.Equal(t, "notes.txt", link.Filename)
			assert.Equal(t, "text/plain", link.FileType)
			require.Len(t, blobs.presigned, 1)
			assert.Equal(t, tt.wantTTL, blobs.presigned[0].TTL)
			assert.Equal(t, `attachment; filename="notes.txt"`, blobs.presigned[0].ResponseContentDisposition)
		})
	}
}

func TestResolveStoreFailures(t *testing.T) {
	t.Run("record store error", func(t *testing.T) {
		records := newFakeRecords()
		records.getErr = errors.New("timeout")
		svc := newTestService(t, records, newFakeBlobs())

		_, err := svc.Resolve(context.Background(), "AB12CD34")
		require.Error(t, err)
		assert.Equal(t, transfer.MsgResolveFailed, platformerrors.GetPlatformError(err).Message)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError))
	})

	t.Run("presign error", func(t *testing.T) {
		records := newFakeRecords()
		now := time.Now().UTC()
		records.items["AB12CD34"] = &transfer.FileRecord{Code: "AB12CD34", Filename: "a", ExpiryTime: now.Add(time.Hour)}
		blobs := newFakeBlobs()
		blobs.presignErr = errors.New("no credentials")
		svc := newTestService(t, records, blobs)

		_, err := svc.Resolve(context.Background(), "AB12CD34")
		require.Error(t, err)
		assert.Equal(t, transfer.MsgResolveFailed, platformerrors.GetPlatformError(err).Message)
	})
}
