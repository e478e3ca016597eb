package converter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"media2text/internal/app/api"
	"media2text/internal/app/audio"
	"media2text/internal/app/errors"
	"media2text/internal/app/metrics"
	"media2text/internal/app/model"
	"media2text/internal/app/repository"
	"media2text/internal/app/storage/archive"
	"media2text/internal/app/textchunk"
	"media2text/internal/app/util/files"
)

// TextNormalizer cleans up the merged raw transcript.
type TextNormalizer interface {
	Normalize(ctx context.Context, raw string) (string, error)
}

const (
	// ImportModel is stored as ModelUsed for backfilled transcriptions.
	ImportModel = "text-import"

	DefaultProjectName = "Transcriptions"
)

type Config struct {
	TempDir             string
	TranscriptionBudget int64
	MinSegmentBytes     int64
	DefaultProject      string
}

// FileOptions is the per-file metadata and transcription settings.
type FileOptions struct {
	Project     string
	Description string
	Event       string
	EventDate   *time.Time
	Language    string
	Diarization bool
}

type RunOptions struct {
	InputDir string
	// Limit caps the number of files processed; 0 means all.
	Limit int
	FileOptions
}

type ImportOptions struct {
	Project   string
	Event     string
	EventDate *time.Time
	Language  string
	ModelUsed string
}

// RunReport lists file names by what happened to them.
type RunReport struct {
	Processed []string
	Failed    []string
	Skipped   []string
}

type Converter struct {
	config      Config
	db          repository.TranscriptionDAO
	transcriber api.Transcriber
	normalizer  TextNormalizer
	archiver    archive.Archiver
	media       audio.MediaConverter
	splitter    audio.Splitter
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

type Option func(*Converter)

func WithMediaConverter(m audio.MediaConverter) Option {
	return func(c *Converter) { c.media = m }
}

func WithSplitter(s audio.Splitter) Option {
	return func(c *Converter) { c.splitter = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Converter) { c.metrics = m }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewConverter(config Config, transcriptionDAO repository.TranscriptionDAO, transcriber api.Transcriber,
	normalizer TextNormalizer, archiver archive.Archiver, opts ...Option) *Converter {
	if config.TempDir == "" {
		config.TempDir = filepath.Join(os.TempDir(), "media2text")
	}
	if config.TranscriptionBudget <= 0 {
		config.TranscriptionBudget = 24 * audio.MiB
	}
	if config.DefaultProject == "" {
		config.DefaultProject = DefaultProjectName
	}

	c := &Converter{
		config:      config,
		db:          transcriptionDAO,
		transcriber: transcriber,
		normalizer:  normalizer,
		archiver:    archiver,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.media == nil {
		c.media = audio.NewFFmpegConverter(audio.WithLogger(c.logger))
	}
	if c.splitter == nil {
		c.splitter = audio.NewSegmenter(audio.WithLogger(c.logger))
	}
	return c
}

func (c *Converter) Close() error {
	return c.db.Close()
}

// Candidates returns the files of dir still to process and the names skipped
// because the archive already holds them.
func (c *Converter) Candidates(ctx context.Context, dir string) ([]model.FileInfo, []string, error) {
	archived, err := c.archiver.List(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "list archive")
	}
	all, err := files.ListCandidates(dir)
	if err != nil {
		return nil, nil, err
	}

	todo := lo.Filter(all, func(f model.FileInfo, _ int) bool { return !archived[f.Name] })
	skipped := lo.FilterMap(all, func(f model.FileInfo, _ int) (string, bool) { return f.Name, archived[f.Name] })
	return todo, skipped, nil
}

// Run processes every candidate of opts.InputDir in name order. A failed
// file is recorded and the batch moves on; cancellation is checked between
// files.
func (c *Converter) Run(ctx context.Context, opts RunOptions) (RunReport, error) {
	return c.run(ctx, opts, nil, func(string, error) {})
}

func (c *Converter) run(ctx context.Context, opts RunOptions, start func(total int), done func(name string, err error)) (RunReport, error) {
	var report RunReport

	todo, skipped, err := c.Candidates(ctx, opts.InputDir)
	if err != nil {
		return report, err
	}
	for _, name := range skipped {
		c.logger.Info("already archived, skipping", zap.String("file", name))
		c.metrics.FileOutcome(metrics.OutcomeSkipped)
	}
	report.Skipped = skipped

	if opts.Limit > 0 && len(todo) > opts.Limit {
		todo = todo[:opts.Limit]
	}
	c.logger.Info("found files to process",
		zap.String("input_dir", opts.InputDir),
		zap.Int("count", len(todo)),
		zap.Int("skipped", len(skipped)))
	if start != nil {
		start(len(todo))
	}

	for _, file := range todo {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		_, err := c.ProcessFile(ctx, file.FullPath, opts.FileOptions)
		if err != nil {
			report.Failed = append(report.Failed, file.Name)
		} else {
			report.Processed = append(report.Processed, file.Name)
		}
		done(file.Name, err)
	}
	return report, nil
}

// ProcessFile runs the whole pipeline for one media file and archives it on
// success. On failure the record is marked FAILED and the source stays in
// place.
func (c *Converter) ProcessFile(ctx context.Context, path string, opts FileOptions) (*model.MediaFile, error) {
	started := time.Now()
	name := filepath.Base(path)
	logger := c.logger.With(zap.String("file", name))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound("media file", path)
	}

	project, err := c.db.GetOrCreateProject(ctx, lo.Ternary(opts.Project != "", opts.Project, c.config.DefaultProject))
	if err != nil {
		return nil, err
	}
	mediaType, err := c.media.DetectMediaType(ctx, path)
	if err != nil {
		return nil, err
	}

	media := &model.MediaFile{
		ProjectID:   &project.ID,
		FileName:    name,
		FilePath:    path,
		MediaType:   mediaType,
		Status:      model.StatusPending,
		Description: optional(opts.Description),
		Event:       optional(opts.Event),
		EventDate:   opts.EventDate,
	}
	if err := c.db.CreateMediaFile(ctx, media); err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("media_id", media.ID.String()))
	logger.Info("processing file", zap.String("media_type", string(mediaType)))

	if err := c.transition(ctx, media, model.StatusProcessing); err != nil {
		c.fail(ctx, media, err, logger)
		return media, err
	}

	workspace := filepath.Join(c.config.TempDir, media.ID.String())
	err = c.transcribe(ctx, media, workspace, opts, logger)
	if rmErr := os.RemoveAll(workspace); rmErr != nil {
		logger.Warn("failed to remove workspace", zap.String("workspace", workspace), zap.Error(rmErr))
	}
	if err != nil {
		c.fail(ctx, media, err, logger)
		return media, err
	}

	if err := c.archiver.Archive(ctx, path); err != nil {
		logger.Error("failed to archive source", zap.Error(err))
		c.metrics.FileOutcome(metrics.OutcomeFailed)
		return media, errors.Wrapf(err, "archive %s", name)
	}
	if err := c.transition(ctx, media, model.StatusArchived); err != nil {
		logger.Warn("archived but status not updated", zap.Error(err))
	}

	c.metrics.FileOutcome(metrics.OutcomeCompleted)
	c.metrics.ObserveStage("file", started)
	logger.Info("file completed", zap.Duration("elapsed", time.Since(started)))
	return media, nil
}

func (c *Converter) transcribe(ctx context.Context, media *model.MediaFile, workspace string, opts FileOptions, logger *zap.Logger) error {
	stage := time.Now()
	wavPath, err := c.media.ExtractAudio(ctx, media.FilePath, workspace)
	if err != nil {
		return err
	}
	c.metrics.ObserveStage("extract", stage)

	if seconds, err := c.media.Duration(ctx, wavPath); err != nil {
		logger.Warn("could not read audio duration", zap.Error(err))
	} else if err := c.db.UpdateMediaDuration(ctx, media.ID, seconds); err != nil {
		return err
	} else {
		media.DurationSeconds = &seconds
	}

	stage = time.Now()
	segments, err := c.splitter.Split(ctx, wavPath, filepath.Join(workspace, "segments"), c.config.TranscriptionBudget)
	if err != nil {
		return err
	}
	c.metrics.ObserveStage("split", stage)
	logger.Info("audio split", zap.Int("segments", len(segments)))

	shell, err := c.db.CreateTranscriptionShell(ctx, media.ID, opts.Language, c.transcriber.Name())
	if err != nil {
		return err
	}

	stage = time.Now()
	index := 0
	for i, segment := range segments {
		info, err := os.Stat(segment)
		if err != nil {
			return errors.Wrapf(err, "stat segment %d", i)
		}
		if info.Size() < c.config.MinSegmentBytes {
			logger.Warn("skipping short segment",
				zap.Int("segment", i),
				zap.Int64("bytes", info.Size()))
			c.metrics.Segment("skipped")
			continue
		}

		logger.Info("transcribing segment", zap.Int("segment", i), zap.Int("total", len(segments)))
		text, err := c.transcriber.Transcript(ctx, segment, api.TranscriptOptions{
			Language:    opts.Language,
			Diarization: opts.Diarization,
		})
		if err != nil {
			return errors.Wrapf(err, "transcribe segment %d", i)
		}
		c.metrics.Segment("transcribed")
		if strings.TrimSpace(text) == "" {
			logger.Debug("segment produced no text", zap.Int("segment", i))
			continue
		}
		if err := c.db.AppendChunk(ctx, shell.ID, index, text); err != nil {
			return err
		}
		index++
	}
	c.metrics.ObserveStage("transcribe", stage)

	chunks, err := c.db.ListChunks(ctx, shell.ID)
	if err != nil {
		return err
	}
	raw := textchunk.Join(lo.Map(chunks, func(ch model.TranscriptionChunk, _ int) string { return ch.TextContent }))

	normalized := ""
	if strings.TrimSpace(raw) == "" {
		logger.Warn("no speech transcribed, storing empty text")
	} else {
		stage = time.Now()
		normalized, err = c.normalizer.Normalize(ctx, raw)
		if err != nil {
			return err
		}
		c.metrics.ObserveStage("normalize", stage)
	}

	stage = time.Now()
	if err := c.db.UpdateTranscriptionText(ctx, shell.ID, normalized); err != nil {
		return err
	}
	storage := textchunk.StorageSegments(normalized)
	if err := c.db.ReplaceChunks(ctx, shell.ID, storage); err != nil {
		return err
	}
	c.metrics.ObserveStage("store", stage)
	logger.Info("transcription stored",
		zap.Int("raw_chunks", len(chunks)),
		zap.Int("clean_chunks", len(storage)))

	return c.transition(ctx, media, model.StatusCompleted)
}

func (c *Converter) transition(ctx context.Context, media *model.MediaFile, next model.ProcessingStatus) error {
	if !media.Status.CanTransition(next) {
		return errors.Kind(errors.ErrInvalidInput, nil, "media %s cannot move from %s to %s", media.ID, media.Status, next)
	}
	if err := c.db.UpdateMediaStatus(ctx, media.ID, next); err != nil {
		return err
	}
	media.Status = next
	return nil
}

// fail records FAILED even when ctx was cancelled mid-file.
func (c *Converter) fail(ctx context.Context, media *model.MediaFile, cause error, logger *zap.Logger) {
	logger.Error("processing failed", zap.String("status", string(media.Status)), zap.Error(cause))
	c.metrics.FileOutcome(metrics.OutcomeFailed)

	if !media.Status.CanTransition(model.StatusFailed) {
		return
	}
	if err := c.transition(context.WithoutCancel(ctx), media, model.StatusFailed); err != nil {
		logger.Error("failed to mark file as failed", zap.Error(err))
	}
}

// ImportTexts stores every .txt file of dir as a completed transcription
// without chunking or normalization.
func (c *Converter) ImportTexts(ctx context.Context, dir string, opts ImportOptions) (RunReport, error) {
	var report RunReport

	textFiles, err := files.ListByExtension(dir, ".txt")
	if err != nil {
		return report, err
	}
	project, err := c.db.GetOrCreateProject(ctx, lo.Ternary(opts.Project != "", opts.Project, c.config.DefaultProject))
	if err != nil {
		return report, err
	}
	modelUsed := lo.Ternary(opts.ModelUsed != "", opts.ModelUsed, ImportModel)

	for _, file := range textFiles {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		logger := c.logger.With(zap.String("file", file.Name))

		text, err := files.ReadTextFile(file.FullPath)
		if err != nil {
			logger.Error("failed to read text file", zap.Error(err))
			report.Failed = append(report.Failed, file.Name)
			c.metrics.FileOutcome(metrics.OutcomeFailed)
			continue
		}

		media := &model.MediaFile{
			ProjectID: &project.ID,
			FileName:  file.Name,
			FilePath:  file.FullPath,
			MediaType: model.MediaTypeAudio,
			Status:    model.StatusCompleted,
			Event:     optional(opts.Event),
			EventDate: opts.EventDate,
		}
		if _, err := c.db.CreateTextTranscription(ctx, media, text, opts.Language, modelUsed); err != nil {
			logger.Error("failed to import text", zap.Error(err))
			report.Failed = append(report.Failed, file.Name)
			c.metrics.FileOutcome(metrics.OutcomeFailed)
			continue
		}

		logger.Info("imported transcription", zap.String("media_id", media.ID.String()), zap.Int("chars", len(text)))
		report.Processed = append(report.Processed, file.Name)
		c.metrics.FileOutcome(metrics.OutcomeImported)
	}
	return report, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
