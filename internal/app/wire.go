//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	appconfig "media2text/internal/app/config"
	"media2text/internal/app/repository"
)

var baseSet = wire.NewSet(provideLogger, provideMetrics, provideTranscriptionDAO)

func InitializePipeline(ctx context.Context, cfg *appconfig.Config) (*Pipeline, func(), error) {
	wire.Build(
		baseSet,
		provideAPIKeys,
		provideTranscriber,
		provideTextGenerator,
		provideNormalizer,
		provideArchiver,
		provideConverter,
		wire.Struct(new(Pipeline), "*"),
	)
	return nil, nil, nil
}

func InitializeImporter(ctx context.Context, cfg *appconfig.Config) (*Importer, func(), error) {
	wire.Build(baseSet, provideImportConverter, wire.Struct(new(Importer), "*"))
	return nil, nil, nil
}

func InitializeStore(ctx context.Context, cfg *appconfig.Config) (repository.TranscriptionDAO, func(), error) {
	wire.Build(provideTranscriptionDAO)
	return nil, nil, nil
}
