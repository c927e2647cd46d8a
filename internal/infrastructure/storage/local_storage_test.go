package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/domain/transfer"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	cfg := &config.Config{
		LocalStoragePath:    t.TempDir(),
		LocalStorageBaseURL: "http://relay.test/",
		LocalSigningSecret:  "0123456789abcdef-test",
		RecordExpiryGrace:   time.Hour,
	}
	store, err := NewLocalStorage(cfg, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func tokenFrom(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "relay.test", parsed.Host)
	assert.Equal(t, BlobPath, parsed.Path)
	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func TestLocalStoragePutPresignOpen(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()
	key := "uploads/20240102_030405_AB12CD34/notes.txt"
	body := []byte("hello relay")

	require.NoError(t, store.Put(ctx, key, bytes.NewReader(body), int64(len(body)), transfer.PutOptions{ContentType: "text/plain"}))

	link, err := store.PresignGet(ctx, key, transfer.PresignOptions{
		ResponseContentType:        "text/plain",
		ResponseContentDisposition: `attachment; filename="notes.txt"`,
		TTL:                        time.Hour,
	})
	require.NoError(t, err)

	obj, err := store.Open(ctx, tokenFrom(t, link))
	require.NoError(t, err)
	defer obj.File.Close()

	got, err := io.ReadAll(obj.File)
	require.NoError(t, err)
	assert.Equal(t, body, got)
	assert.Equal(t, int64(len(body)), obj.Size)
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.Equal(t, `attachment; filename="notes.txt"`, obj.ContentDisposition)
}

func TestLocalStorageOpenRejectsBadTokens(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()
	key := "uploads/20240102_030405_AB12CD34/a.bin"
	require.NoError(t, store.Put(ctx, key, strings.NewReader("x"), 1, transfer.PutOptions{}))

	link, err := store.PresignGet(ctx, key, transfer.PresignOptions{TTL: time.Minute})
	require.NoError(t, err)
	token := tokenFrom(t, link)

	t.Run("tampered", func(t *testing.T) {
		_, err := store.Open(ctx, token+"x")
		assert.ErrorIs(t, err, ErrInvalidBlobToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := store.Open(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidBlobToken)
	})

	t.Run("expired", func(t *testing.T) {
		store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		defer func() { store.now = time.Now }()
		_, err := store.Open(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidBlobToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := newTestLocalStorage(t)
		_, err := other.Open(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidBlobToken)
	})

	t.Run("blob removed", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))
		_, err := store.Open(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidBlobToken)
	})
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	for _, key := range []string{"../outside.txt", "uploads/../../outside.txt", ".", ""} {
		err := store.Put(ctx, key, strings.NewReader("x"), 1, transfer.PutOptions{})
		assert.Error(t, err, key)
	}
}

func TestLocalStoragePresignMissingBlob(t *testing.T) {
	store := newTestLocalStorage(t)
	_, err := store.PresignGet(context.Background(), "uploads/missing/file.txt", transfer.PresignOptions{TTL: time.Minute})
	assert.Error(t, err)
}

func TestLocalStorageSweep(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	oldKey := "uploads/20240101_000000_OLD00000/old.txt"
	newKey := "uploads/20240102_000000_NEW00000/new.txt"
	require.NoError(t, store.Put(ctx, oldKey, strings.NewReader("old"), 3, transfer.PutOptions{}))
	require.NoError(t, store.Put(ctx, newKey, strings.NewReader("new"), 3, transfer.PutOptions{}))

	now := time.Now()
	stale := now.Add(-(transfer.Retention + 2*time.Hour))
	oldPath := filepath.Join(store.basePath, filepath.FromSlash(oldKey))
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	removed, err := store.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(store.basePath, filepath.FromSlash(newKey)))
	assert.NoError(t, err)
}

func TestLocalStorageSweepEmptyRoot(t *testing.T) {
	store := newTestLocalStorage(t)
	removed, err := store.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestLocalStorageHealth(t *testing.T) {
	store := newTestLocalStorage(t)
	assert.NoError(t, store.Health(context.Background()))
}
