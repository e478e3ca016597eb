package app

import (
	"context"

	"go.uber.org/zap"

	"media2text/internal/app/api"
	"media2text/internal/app/api/gemini"
	"media2text/internal/app/api/openai"
	"media2text/internal/app/api/openai/chat"
	"media2text/internal/app/api/openai/whisper"
	"media2text/internal/app/api/whisperx"
	appconfig "media2text/internal/app/config"
	"media2text/internal/app/converter"
	"media2text/internal/app/errors"
	"media2text/internal/app/logging"
	"media2text/internal/app/metrics"
	"media2text/internal/app/normalizer"
	"media2text/internal/app/repository"
	"media2text/internal/app/repository/pg"
	"media2text/internal/app/repository/sqlite"
	"media2text/internal/app/storage/archive"
	"media2text/internal/app/transcript"
	"media2text/internal/config"
)

// Pipeline is everything a batch run needs.
type Pipeline struct {
	Converter *converter.Converter
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Importer backfills text transcriptions; it never transcribes or archives.
type Importer struct {
	Converter *converter.Converter
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// LoadConfig loads .env and the YAML file at path (defaults when empty).
// verbose forces debug logging.
func LoadConfig(path string, verbose bool) (*appconfig.Config, error) {
	if _, err := config.LoadEnv(); err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	cfg, err := appconfig.Load(path)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func provideAPIKeys(logger *zap.Logger) (*config.APIKeys, error) {
	keys, err := config.GetAPIKeys()
	if err != nil {
		return nil, err
	}
	logger.Info("api keys loaded", zap.Strings("available", keys.Available()))
	return keys, nil
}

func provideLogger(cfg *appconfig.Config) (*zap.Logger, func(), error) {
	logger, err := logging.NewLogger(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, nil, errors.Kind(errors.ErrInvalidConfig, err, "logging.level")
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideMetrics() *metrics.Metrics {
	return metrics.New()
}

func provideTranscriptionDAO(ctx context.Context, cfg *appconfig.Config) (repository.TranscriptionDAO, func(), error) {
	var dao repository.TranscriptionDAO
	switch cfg.Database.Driver {
	case "postgres":
		db, err := pg.NewPostgresDB(cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		dao = db
	default:
		db, err := sqlite.NewSQLiteDB(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		dao = db
	}

	if err := dao.EnsureSchema(ctx); err != nil {
		_ = dao.Close()
		return nil, nil, err
	}
	return dao, func() { _ = dao.Close() }, nil
}

func provideTranscriber(cfg *appconfig.Config, keys *config.APIKeys, logger *zap.Logger) (api.Transcriber, error) {
	tc := cfg.Transcriber
	formatter := transcript.NewFormatterForLanguage(cfg.Pipeline.Language)

	var transcriber api.Transcriber
	switch tc.Provider {
	case "whisperx":
		token := tc.HuggingFaceToken
		if token == "" {
			token = keys.HuggingFace
		}
		if cfg.Pipeline.Diarization && token == "" {
			return nil, keys.RequireAPIKey("whisperx")
		}
		transcriber = whisperx.NewProvider(whisperx.Config{
			BaseURL:          tc.BaseURL,
			Timeout:          tc.Timeout,
			Language:         cfg.Pipeline.Language,
			HuggingFaceToken: token,
		}, formatter, logger.Named("whisperx"))
	default:
		if err := keys.RequireAPIKey("openai"); err != nil {
			return nil, err
		}
		client, err := openai.NewClient(keys.OpenAI, tc.BaseURL)
		if err != nil {
			return nil, err
		}
		transcriber = whisper.NewRemoteTranscriber(client, whisper.Config{
			Model:  tc.Model,
			Prompt: tc.Prompt,
		}, formatter, logger.Named("whisper"))
	}

	if tc.RequestsPerMinute > 0 {
		transcriber = api.NewRateLimitedTranscriber(transcriber, tc.RequestsPerMinute)
	}
	return transcriber, nil
}

func provideTextGenerator(ctx context.Context, cfg *appconfig.Config, keys *config.APIKeys) (api.TextGenerator, error) {
	gc := cfg.Generator
	switch gc.Provider {
	case "openai":
		if err := keys.RequireAPIKey("openai"); err != nil {
			return nil, err
		}
		client, err := openai.NewClient(keys.OpenAI, gc.BaseURL)
		if err != nil {
			return nil, err
		}
		return chat.NewGenerator(client, gc.Model), nil
	default:
		if err := keys.RequireAPIKey("gemini"); err != nil {
			return nil, err
		}
		client, err := gemini.NewClient(ctx, keys.Gemini)
		if err != nil {
			return nil, err
		}
		return gemini.NewGenerator(client, gc.Model, gc.ThinkingBudget), nil
	}
}

func provideNormalizer(cfg *appconfig.Config, generator api.TextGenerator, logger *zap.Logger, m *metrics.Metrics) (converter.TextNormalizer, error) {
	prompt, err := normalizer.LoadPrompt(cfg.Paths.Prompt)
	if err != nil {
		return nil, err
	}
	return normalizer.New(generator, prompt,
		normalizer.WithMaxChunkChars(cfg.Pipeline.MaxChunkChars),
		normalizer.WithTemperature(cfg.Generator.Temperature),
		normalizer.WithRetry(cfg.Generator.MaxAttempts, cfg.Generator.BaseDelay),
		normalizer.WithLogger(logger.Named("normalizer")),
		normalizer.WithMetrics(m),
	), nil
}

func provideArchiver(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (archive.Archiver, error) {
	if cfg.Archive.Backend == "minio" {
		return archive.NewMinioArchiver(ctx, archive.MinioConfig(cfg.Archive.Minio), logger.Named("archive"))
	}
	return archive.NewFSArchiver(cfg.Paths.Archive, logger.Named("archive")), nil
}

func provideConverter(cfg *appconfig.Config, dao repository.TranscriptionDAO, transcriber api.Transcriber,
	norm converter.TextNormalizer, archiver archive.Archiver, logger *zap.Logger, m *metrics.Metrics) *converter.Converter {
	return converter.NewConverter(converter.Config{
		TempDir:             cfg.Paths.Temp,
		TranscriptionBudget: cfg.Pipeline.TranscriptionBudgetBytes,
		MinSegmentBytes:     cfg.Pipeline.MinSegmentBytes,
		DefaultProject:      cfg.Pipeline.Project,
	}, dao, transcriber, norm, archiver,
		converter.WithLogger(logger),
		converter.WithMetrics(m))
}

func provideImportConverter(cfg *appconfig.Config, dao repository.TranscriptionDAO, logger *zap.Logger, m *metrics.Metrics) *converter.Converter {
	return converter.NewConverter(converter.Config{
		TempDir:        cfg.Paths.Temp,
		DefaultProject: cfg.Pipeline.Project,
	}, dao, nil, nil, nil,
		converter.WithLogger(logger),
		converter.WithMetrics(m))
}
