package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/domain/transfer"
	"github.com/codedrop/relay/internal/infrastructure/metrics"
)

const (
	storeLocal = "local"
	// BlobPath is where the HTTP server serves signed local links.
	BlobPath = "/v1/blobs"
	issuer   = "codedrop-relay"
)

// ErrInvalidBlobToken is returned for tampered, expired or dangling links.
var ErrInvalidBlobToken = errors.New("invalid or expired blob token")

// blobClaims is the payload of a signed local link.
type blobClaims struct {
	Key                string `json:"key"`
	ContentType        string `json:"ct,omitempty"`
	ContentDisposition string `json:"cd,omitempty"`
	jwt.RegisteredClaims
}

// BlobObject is an opened local blob ready to be served.
type BlobObject struct {
	File               *os.File
	Size               int64
	ModTime            time.Time
	ContentType        string
	ContentDisposition string
}

// LocalStorage keeps blobs on the local filesystem and issues HS256-signed
// links that the relay itself serves.
type LocalStorage struct {
	basePath string
	baseURL  string
	secret   []byte
	maxAge   time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewLocalStorage creates a new local filesystem storage backend.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if basePath == "" {
		return nil, errors.New("LOCAL_STORAGE_PATH is not set")
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve local storage path: %w", err)
	}
	if err := os.MkdirAll(absBase, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage directory: %w", err)
	}

	storage := &LocalStorage{
		basePath: absBase,
		baseURL:  strings.TrimSuffix(cfg.LocalStorageBaseURL, "/"),
		secret:   []byte(cfg.LocalSigningSecret),
		maxAge:   transfer.Retention + cfg.RecordExpiryGrace,
		now:      time.Now,
		log:      logger,
	}

	logger.Info().
		Str("path", absBase).
		Str("base_url", storage.baseURL).
		Msg("local storage initialized")

	return storage, nil
}

func (l *LocalStorage) resolve(key string) (string, error) {
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.basePath, fullPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes storage root", key)
	}
	return fullPath, nil
}

// Put writes the blob atomically under its key.
func (l *LocalStorage) Put(ctx context.Context, key string, body io.Reader, size int64, opts transfer.PutOptions) (err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation(storeLocal, "put", start, err) }(time.Now())

	fullPath, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	written, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if size >= 0 && written != size {
		err = fmt.Errorf("short write: %d of %d bytes", written, size)
		return err
	}
	if err = os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("commit file: %w", err)
	}

	l.log.Debug().
		Str("key", key).
		Int64("bytes", written).
		Str("content_type", opts.ContentType).
		Msg("file stored")

	return nil
}

// PresignGet returns a link to BlobPath carrying a signed token with the
// key, the response headers and the expiry.
func (l *LocalStorage) PresignGet(ctx context.Context, key string, opts transfer.PresignOptions) (_ string, err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation(storeLocal, "presign", start, err) }(time.Now())

	fullPath, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(fullPath); err != nil {
		return "", fmt.Errorf("stat %s: %w", key, err)
	}

	now := l.now()
	claims := blobClaims{
		Key:                key,
		ContentType:        opts.ResponseContentType,
		ContentDisposition: opts.ResponseContentDisposition,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(opts.TTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		return "", fmt.Errorf("sign blob token: %w", err)
	}

	return l.baseURL + BlobPath + "?token=" + url.QueryEscape(token), nil
}

// Open validates a signed token and opens the blob it names.
func (l *LocalStorage) Open(ctx context.Context, token string) (*BlobObject, error) {
	claims := &blobClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return l.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlobToken, err)
	}

	fullPath, err := l.resolve(claims.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlobToken, err)
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: blob removed", ErrInvalidBlobToken)
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat blob: %w", err)
	}

	contentType := claims.ContentType
	if contentType == "" {
		contentType = transfer.DefaultContentType
	}

	return &BlobObject{
		File:               file,
		Size:               info.Size(),
		ModTime:            info.ModTime(),
		ContentType:        contentType,
		ContentDisposition: claims.ContentDisposition,
	}, nil
}

// Delete removes a blob and its now-empty directory.
func (l *LocalStorage) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation(storeLocal, "delete", start, err) }(time.Now())

	fullPath, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	_ = os.Remove(filepath.Dir(fullPath))
	return nil
}

// Health checks if the storage directory is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}

// Name identifies the sweeper in logs and metrics.
func (l *LocalStorage) Name() string {
	return "local-blobs"
}

// Sweep deletes blobs older than the retention window plus grace. Blobs are
// otherwise never removed because the filesystem has no lifecycle policy.
func (l *LocalStorage) Sweep(ctx context.Context, now time.Time) (int, error) {
	root := filepath.Join(l.basePath, "uploads")
	cutoff := now.Add(-l.maxAge)
	removed := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				removed++
				_ = os.Remove(filepath.Dir(path))
			}
		}
		return nil
	})
	return removed, err
}
