package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/domain/feedback"
	"github.com/codedrop/relay/internal/domain/transfer"
	"github.com/codedrop/relay/internal/infrastructure/awsclient"
	"github.com/codedrop/relay/internal/infrastructure/database"
	"github.com/codedrop/relay/internal/infrastructure/janitor"
	feedbackrepo "github.com/codedrop/relay/internal/infrastructure/repository/feedback"
	"github.com/codedrop/relay/internal/infrastructure/repository/filerecord"
	"github.com/codedrop/relay/internal/infrastructure/storage"
	"github.com/codedrop/relay/internal/interfaces/httpserver"
	"github.com/codedrop/relay/internal/interfaces/httpserver/handlers"
)

// blobBackend is the selected blob store. Local is set only for the
// filesystem backend, which also serves its own signed links and needs
// sweeping.
type blobBackend struct {
	Store  transfer.BlobStore
	Local  *storage.LocalStorage
	Health httpserver.HealthCheck
}

// recordBackend is the selected file record store.
type recordBackend struct {
	Store   transfer.RecordStore
	Sweeper janitor.Sweeper
	Health  httpserver.HealthCheck
}

// feedbackBackend is the selected feedback repository.
type feedbackBackend struct {
	Repository feedback.Repository
	Health     httpserver.HealthCheck
}

func provideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if !cfg.UsesAWS() {
		return aws.Config{}, nil
	}
	return awsclient.Load(ctx, cfg)
}

func provideBlobBackend(cfg *config.Config, awsCfg aws.Config, log zerolog.Logger) (*blobBackend, error) {
	switch cfg.StorageBackend {
	case config.BackendLocal:
		local, err := storage.NewLocalStorage(cfg, log)
		if err != nil {
			return nil, err
		}
		return &blobBackend{Store: local, Local: local, Health: local.Health}, nil
	case config.BackendS3:
		s3Storage := storage.NewS3Storage(cfg, awsCfg, log)
		return &blobBackend{Store: s3Storage, Health: s3Storage.Health}, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func provideRecordBackend(ctx context.Context, cfg *config.Config, awsCfg aws.Config, log zerolog.Logger) (*recordBackend, func(), error) {
	switch cfg.RecordStoreBackend {
	case config.BackendDynamoDB:
		repo := filerecord.NewDynamoDBRepository(dynamodb.NewFromConfig(awsCfg), cfg.TableName, cfg.RecordExpiryGrace, log)
		return &recordBackend{Store: repo, Health: repo.Health}, func() {}, nil
	case config.BackendRedis:
		client, err := filerecord.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		repo := filerecord.NewRedisRepository(client, cfg.RedisKeyPrefix, cfg.RecordExpiryGrace, log)
		cleanup := func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("close redis client")
			}
		}
		return &recordBackend{Store: repo, Health: repo.Health}, cleanup, nil
	case config.BackendMemory:
		repo := filerecord.NewInMemoryRepository(cfg.RecordExpiryGrace)
		return &recordBackend{Store: repo, Sweeper: repo, Health: repo.Health}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported record store backend %q", cfg.RecordStoreBackend)
	}
}

func provideFeedbackBackend(ctx context.Context, cfg *config.Config, awsCfg aws.Config, log zerolog.Logger) (*feedbackBackend, func(), error) {
	switch cfg.FeedbackStoreBackend {
	case config.BackendDynamoDB:
		repo := feedbackrepo.NewDynamoDBRepository(dynamodb.NewFromConfig(awsCfg), cfg.FeedbackTableName)
		return &feedbackBackend{Repository: repo, Health: repo.Health}, func() {}, nil
	case config.BackendPostgres:
		db, err := database.Connect(database.ConfigFromApp(cfg))
		if err != nil {
			return nil, nil, err
		}
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		repo := feedbackrepo.NewPostgresRepository(db)
		cleanup := func() {
			if err := database.Close(db); err != nil {
				log.Warn().Err(err).Msg("close database")
			}
		}
		return &feedbackBackend{Repository: repo, Health: repo.Health}, cleanup, nil
	case config.BackendMemory:
		repo := feedbackrepo.NewInMemoryRepository()
		return &feedbackBackend{Repository: repo, Health: repo.Health}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported feedback store backend %q", cfg.FeedbackStoreBackend)
	}
}

func provideTransferService(cfg *config.Config, records *recordBackend, blobs *blobBackend, log zerolog.Logger) *transfer.Service {
	return transfer.NewService(cfg, records.Store, blobs.Store, log)
}

func provideFeedbackService(backend *feedbackBackend, log zerolog.Logger) feedback.Service {
	return feedback.NewService(backend.Repository, log)
}

func provideHandlers(cfg *config.Config, transferService *transfer.Service, feedbackService feedback.Service, blobs *blobBackend, log zerolog.Logger) *handlers.Provider {
	var opener handlers.BlobOpener
	if blobs.Local != nil {
		opener = blobs.Local
	}
	return handlers.NewProvider(cfg, transferService, feedbackService, opener, log)
}

func provideHealthChecks(blobs *blobBackend, records *recordBackend, fb *feedbackBackend) map[string]httpserver.HealthCheck {
	return map[string]httpserver.HealthCheck{
		"blob_store":     blobs.Health,
		"record_store":   records.Health,
		"feedback_store": fb.Health,
	}
}

func provideJanitor(cfg *config.Config, blobs *blobBackend, records *recordBackend, log zerolog.Logger) *janitor.Janitor {
	var sweepers []janitor.Sweeper
	if records.Sweeper != nil {
		sweepers = append(sweepers, records.Sweeper)
	}
	if blobs.Local != nil {
		sweepers = append(sweepers, blobs.Local)
	}
	return janitor.New(cfg.JanitorInterval, log, sweepers...)
}
