package transfer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/infrastructure/metrics"
	"github.com/codedrop/relay/internal/utils/platformerrors"
)

// RecordStore persists one FileRecord per code.
type RecordStore interface {
	// PutIfAbsent writes rec unless a record for rec.Code exists, in which
	// case it returns ErrCodeTaken.
	PutIfAbsent(ctx context.Context, rec *FileRecord) error
	// Get returns nil, nil when no record exists for code.
	Get(ctx context.Context, code string) (*FileRecord, error)
}

// BlobStore holds file bytes and mints signed retrieval URLs.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) error
	PresignGet(ctx context.Context, key string, opts PresignOptions) (string, error)
	Delete(ctx context.Context, key string) error
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeGenerator overrides code generation.
func WithCodeGenerator(gen CodeGenerator) Option {
	return func(s *Service) { s.codes = gen }
}

// Service issues codes for uploaded files and resolves them to signed links.
type Service struct {
	records  RecordStore
	blobs    BlobStore
	codes    CodeGenerator
	now      func() time.Time
	attempts int
	log      zerolog.Logger
	tracer   trace.Tracer
}

func NewService(cfg *config.Config, records RecordStore, blobs BlobStore, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		records:  records,
		blobs:    blobs,
		codes:    NewCode,
		now:      time.Now,
		attempts: cfg.CodeIssueAttempts,
		log:      log.With().Str("component", "transfer-service").Logger(),
		tracer:   otel.Tracer("codedrop/transfer"),
	}
	if s.attempts <= 0 {
		s.attempts = 1
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload validates and stores a file, then issues a code for it.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Upload")
	defer span.End()

	data, err := s.validateUpload(ctx, in)
	if err != nil {
		metrics.RecordUpload("rejected", 0)
		return nil, err
	}

	filename := normalizeFilename(in.Filename)
	contentType := ResolveContentType(in.FileType, filename, data)
	uploadTime := s.now().UTC()
	expiry := uploadTime.Add(Retention)
	disposition := ContentDisposition(filename)

	span.SetAttributes(
		attribute.Int64("file.size", int64(len(data))),
		attribute.String("file.content_type", contentType),
	)

	for attempt := 1; attempt <= s.attempts; attempt++ {
		code := s.codes()
		id := fileID(uploadTime, code)
		key := storageKey(id, filename)

		putOpts := PutOptions{
			ContentType:        contentType,
			ContentDisposition: disposition,
			Metadata: map[string]string{
				"original-filename": url.QueryEscape(filename),
				"upload-time":       uploadTime.Format(time.RFC3339),
				"file-code":         code,
			},
		}
		if err := s.blobs.Put(ctx, key, bytes.NewReader(data), int64(len(data)), putOpts); err != nil {
			metrics.RecordUpload("failed", 0)
			span.RecordError(err)
			span.SetStatus(codes.Error, "blob put")
			return nil, internalError(ctx, platformerrors.ErrorTypeExternal, MsgUploadFailed, err, errUUIDBlobPut,
				map[string]any{"storage_key": key})
		}

		rec := &FileRecord{
			Code:                code,
			FileID:              id,
			StorageKey:          key,
			Filename:            filename,
			FileType:            contentType,
			UploadTime:          uploadTime,
			ExpiryTime:          expiry,
			TTL:                 expiry.Unix(),
			Size:                int64(len(data)),
			CodeDisplayDuration: int(CodeDisplayDuration / time.Second),
		}

		err := s.records.PutIfAbsent(ctx, rec)
		if err == nil {
			metrics.RecordUpload("success", rec.Size)
			s.log.Info().
				Str("code", code).
				Str("storage_key", key).
				Int64("bytes", rec.Size).
				Str("content_type", contentType).
				Msg("file uploaded")
			return &UploadResult{
				Code:            code,
				Filename:        filename,
				FileType:        contentType,
				Size:            rec.Size,
				DisplayDuration: CodeDisplayDuration,
				ExpiryTime:      expiry,
				Retention:       Retention,
			}, nil
		}

		s.compensate(ctx, key)

		if errors.Is(err, ErrCodeTaken) {
			metrics.RecordCodeCollision()
			s.log.Warn().Str("code", code).Int("attempt", attempt).Msg("code collision, issuing another")
			continue
		}

		metrics.RecordUpload("failed", 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "record put")
		return nil, internalError(ctx, platformerrors.ErrorTypeDatabaseError, MsgUploadFailed, err, errUUIDRecordPut,
			map[string]any{"code": code})
	}

	metrics.RecordUpload("failed", 0)
	span.SetStatus(codes.Error, "code attempts exhausted")
	return nil, internalError(ctx, platformerrors.ErrorTypeInternal, MsgUploadFailed, ErrCodeTaken, errUUIDCodeExhausted,
		map[string]any{"attempts": s.attempts})
}

func (s *Service) validateUpload(ctx context.Context, in UploadInput) ([]byte, error) {
	if in.Data == "" {
		return nil, validationError(ctx, MsgNoFile, errUUIDNoFile)
	}
	if in.ReportedSize > MaxFileBytes {
		return nil, TooLargeError(ctx)
	}
	// Cheap upper bound before decoding; the slack covers a data URL prefix.
	if len(in.Data) > base64.StdEncoding.EncodedLen(MaxFileBytes)+256 {
		return nil, TooLargeError(ctx)
	}

	data, err := decodeFile(in.Data)
	if err != nil {
		return nil, validationError(ctx, MsgInvalidFile, errUUIDInvalidFile)
	}
	if len(data) == 0 {
		return nil, validationError(ctx, MsgNoFile, errUUIDNoFile)
	}
	if len(data) > MaxFileBytes {
		return nil, TooLargeError(ctx)
	}
	return data, nil
}

// compensate removes a blob whose record never landed. The bucket lifecycle
// or the local janitor collects whatever this misses.
func (s *Service) compensate(ctx context.Context, key string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.Error().Err(err).Str("storage_key", key).Msg("orphaned blob after failed record write")
	}
}

// Resolve exchanges a code for a signed download link.
func (s *Service) Resolve(ctx context.Context, rawCode string) (*Link, error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Resolve")
	defer span.End()

	code := NormalizeCode(rawCode)
	if code == "" {
		metrics.RecordResolve("invalid")
		return nil, validationError(ctx, MsgCodeRequired, errUUIDCodeRequired)
	}
	span.SetAttributes(attribute.String("transfer.code", code))

	if !ValidCode(code) {
		metrics.RecordResolve("not_found")
		return nil, notFoundError(ctx, code)
	}

	rec, err := s.records.Get(ctx, code)
	if err != nil {
		metrics.RecordResolve("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "record get")
		return nil, internalError(ctx, platformerrors.ErrorTypeDatabaseError, MsgResolveFailed, err, errUUIDRecordGet,
			map[string]any{"code": code})
	}
	if rec == nil {
		metrics.RecordResolve("not_found")
		return nil, notFoundError(ctx, code)
	}

	now := s.now().UTC()
	ttl := linkTTL(rec.ExpiresAt().Sub(now))
	if rec.Expired(now) || ttl <= 0 {
		metrics.RecordResolve("expired")
		return nil, expiredError(ctx, code)
	}

	start := time.Now()
	signed, err := s.blobs.PresignGet(ctx, rec.StorageKey, PresignOptions{
		ResponseContentType:        rec.FileType,
		ResponseContentDisposition: ContentDisposition(rec.Filename),
		TTL:                        ttl,
	})
	metrics.RecordPresign(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordResolve("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "presign")
		return nil, internalError(ctx, platformerrors.ErrorTypeExternal, MsgResolveFailed, err, errUUIDPresign,
			map[string]any{"code": code, "storage_key": rec.StorageKey})
	}

	metrics.RecordResolve("ok")
	s.log.Debug().Str("code", code).Dur("ttl", ttl).Msg("download link issued")

	return &Link{
		URL:       signed,
		Filename:  rec.Filename,
		FileType:  rec.FileType,
		ExpiresIn: ttl,
	}, nil
}

// linkTTL clamps LinkLifetime to the remaining retention, in whole seconds.
func linkTTL(remaining time.Duration) time.Duration {
	ttl := LinkLifetime
	if remaining < ttl {
		ttl = remaining
	}
	return ttl.Truncate(time.Second)
}
