//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/infrastructure/logger"
	"github.com/codedrop/relay/internal/interfaces/httpserver"
)

var storeSet = wire.NewSet(
	provideAWSConfig,
	provideBlobBackend,
	provideRecordBackend,
	provideFeedbackBackend,
	provideHealthChecks,
	provideJanitor,
)

var serviceSet = wire.NewSet(
	provideTransferService,
	provideFeedbackService,
	provideHandlers,
)

// BuildApplication assembles the relay with Wire.
func BuildApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		storeSet,
		serviceSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}

