package filerecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	domain "github.com/codedrop/relay/internal/domain/transfer"
	"github.com/codedrop/relay/internal/infrastructure/metrics"
)

const (
	storeRedis    = "redis"
	recordVersion = "v1"
)

// RedisRepository stores each record as a JSON string whose key expires at
// the record's expiry plus grace.
type RedisRepository struct {
	client redis.UniversalClient
	prefix string
	grace  time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// NewRedisClient connects to one or more comma separated Redis URLs or
// host:port addresses.
func NewRedisClient(ctx context.Context, redisURL string) (redis.UniversalClient, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("Redis URL must be provided")
	}

	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no Redis addresses provided")
	}
	return opts, nil
}

func NewRedisRepository(client redis.UniversalClient, prefix string, grace time.Duration, log zerolog.Logger) *RedisRepository {
	return &RedisRepository{
		client: client,
		prefix: prefix,
		grace:  grace,
		now:    time.Now,
		log:    log.With().Str("component", "redis-records").Logger(),
	}
}

func (r *RedisRepository) key(code string) string {
	return fmt.Sprintf("%s%s:%s", r.prefix, recordVersion, code)
}

// PutIfAbsent uses SET NX so only one writer can claim a code.
func (r *RedisRepository) PutIfAbsent(ctx context.Context, rec *domain.FileRecord) (err error) {
	defer func(start time.Time) {
		if errors.Is(err, domain.ErrCodeTaken) {
			metrics.RecordStoreOperation(storeRedis, "put_if_absent", start, nil)
			return
		}
		metrics.RecordStoreOperation(storeRedis, "put_if_absent", start, err)
	}(time.Now())

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal file record: %w", err)
	}

	ttl := rec.ExpiresAt().Add(r.grace).Sub(r.now())
	if ttl < time.Second {
		ttl = time.Second
	}

	err = r.client.SetArgs(ctx, r.key(rec.Code), payload, redis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Err()
	if errors.Is(err, redis.Nil) {
		return domain.ErrCodeTaken
	}
	if err != nil {
		return fmt.Errorf("set file record: %w", err)
	}
	return nil
}

// Get returns nil, nil when the key does not exist.
func (r *RedisRepository) Get(ctx context.Context, code string) (_ *domain.FileRecord, err error) {
	defer func(start time.Time) { metrics.RecordStoreOperation(storeRedis, "get", start, err) }(time.Now())

	payload, err := r.client.Get(ctx, r.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get file record: %w", err)
	}

	var rec domain.FileRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		r.log.Warn().Err(err).Str("code", code).Msg("discarding unreadable file record")
		return nil, fmt.Errorf("unmarshal file record: %w", err)
	}
	return &rec, nil
}

// Health pings the server.
func (r *RedisRepository) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
