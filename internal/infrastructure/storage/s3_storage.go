package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/domain/transfer"
	"github.com/codedrop/relay/internal/infrastructure/metrics"
)

const storeS3 = "s3"

// S3Storage handles uploads and signed downloads against S3-compatible storage.
type S3Storage struct {
	bucket         string
	publicEndpoint string
	client         *s3.Client
	presigner      *s3.PresignClient
	log            zerolog.Logger
}

func NewS3Storage(cfg *config.Config, awsCfg aws.Config, log zerolog.Logger) *S3Storage {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	storage := &S3Storage{
		bucket:         cfg.S3Bucket,
		publicEndpoint: cfg.S3PublicEndpoint,
		client:         client,
		presigner:      s3.NewPresignClient(client),
		log:            log.With().Str("component", "s3-storage").Logger(),
	}

	storage.log.Info().
		Str("bucket", storage.bucket).
		Str("endpoint", cfg.S3Endpoint).
		Bool("path_style", cfg.S3UsePathStyle).
		Msg("s3 storage initialized")

	return storage
}

// Put uploads body with the headers replayed on download.
func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, opts transfer.PutOptions) (err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation(storeS3, "put", start, err) }(time.Now())

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(opts.ContentType),
		Metadata:      opts.Metadata,
	}
	if opts.ContentDisposition != "" {
		input.ContentDisposition = aws.String(opts.ContentDisposition)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a signed GET URL that overrides the response headers.
func (s *S3Storage) PresignGet(ctx context.Context, key string, opts transfer.PresignOptions) (_ string, err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation(storeS3, "presign", start, err) }(time.Now())

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if opts.ResponseContentType != "" {
		input.ResponseContentType = aws.String(opts.ResponseContentType)
	}
	if opts.ResponseContentDisposition != "" {
		input.ResponseContentDisposition = aws.String(opts.ResponseContentDisposition)
	}

	req, err := s.presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(opts.TTL))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return externalizeURL(req.URL, s.publicEndpoint), nil
}

// Delete removes an object. Missing objects are not an error.
func (s *S3Storage) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation(storeS3, "delete", start, err) }(time.Now())

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// Health performs a HeadBucket request.
func (s *S3Storage) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

// externalizeURL rewrites the scheme and host of a signed URL so clients can
// reach an internal endpoint through its public address.
func externalizeURL(raw, publicEndpoint string) string {
	publicEndpoint = strings.TrimSpace(publicEndpoint)
	if publicEndpoint == "" || strings.TrimSpace(raw) == "" {
		return raw
	}

	target, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	external, err := url.Parse(publicEndpoint)
	if err != nil || external.Scheme == "" || external.Host == "" {
		return raw
	}

	target.Scheme = external.Scheme
	target.Host = external.Host

	if path := strings.TrimSpace(external.Path); path != "" && path != "/" {
		target.Path = joinPublicPath(path, target.Path)
		target.RawPath = ""
	}

	return target.String()
}

func joinPublicPath(basePath, objectPath string) string {
	base := strings.TrimSuffix(basePath, "/")
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}

	relative := strings.TrimPrefix(objectPath, "/")
	if relative == "" {
		return base
	}
	return base + "/" + relative
}
