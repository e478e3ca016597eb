package converter

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "media2text/internal/app/errors"
	"media2text/internal/app/metrics"
	"media2text/internal/app/model"
	"media2text/internal/app/normalizer"
	"media2text/internal/app/repository/sqlite"
	"media2text/internal/app/storage/archive"
	apptestutil "media2text/internal/app/testutil"
)

const segmentSize = 20 << 10

type pipeline struct {
	converter   *Converter
	db          *sqlite.SQLiteDB
	transcriber *apptestutil.MockTranscriber
	generator   *apptestutil.MockTextGenerator
	splitter    *apptestutil.FakeSplitter
	metrics     *metrics.Metrics
	inputDir    string
	archiveDir  string
}

func newPipeline(t *testing.T, sizes ...int) *pipeline {
	t.Helper()
	root := t.TempDir()
	p := &pipeline{
		db:          apptestutil.SetupTestSQLite(t),
		transcriber: apptestutil.NewMockTranscriber(),
		generator:   apptestutil.NewMockTextGenerator(),
		splitter:    &apptestutil.FakeSplitter{Sizes: sizes},
		metrics:     metrics.New(),
		inputDir:    filepath.Join(root, "input"),
		archiveDir:  filepath.Join(root, "archive"),
	}
	require.NoError(t, os.MkdirAll(p.inputDir, 0o755))

	p.converter = NewConverter(Config{
		TempDir:         filepath.Join(root, "tmp"),
		MinSegmentBytes: 10 << 10,
	}, p.db, p.transcriber,
		normalizer.New(p.generator, "clean this transcript"),
		archive.NewFSArchiver(p.archiveDir, nil),
		WithMediaConverter(apptestutil.NewFakeMediaConverter()),
		WithSplitter(p.splitter),
		WithMetrics(p.metrics))
	return p
}

func (p *pipeline) mediaFile(t *testing.T, name string) *model.MediaFile {
	t.Helper()
	summaries, err := p.db.ListTranscriptions(context.Background(), "")
	require.NoError(t, err)
	for _, s := range summaries {
		if s.FileName == name {
			media, err := p.db.GetMediaFile(context.Background(), s.MediaFileID)
			require.NoError(t, err)
			return media
		}
	}
	t.Fatalf("no transcription for %s", name)
	return nil
}

func TestConverter_RunEndToEnd(t *testing.T) {
	p := newPipeline(t, segmentSize, segmentSize)
	p.transcriber.
		SetResponseForFile("talk_16khz_000.wav", "Hello world.").
		SetResponseForFile("talk_16khz_001.wav", "Goodbye.")
	apptestutil.WriteFile(t, p.inputDir, "talk.mp3", 4096)

	report, err := p.converter.Run(context.Background(), RunOptions{
		InputDir:    p.inputDir,
		FileOptions: FileOptions{Project: "Podcasts", Event: "Launch", Language: "en"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"talk.mp3"}, report.Processed)
	assert.Empty(t, report.Failed)

	summaries, err := p.db.ListTranscriptions(context.Background(), "Podcasts")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.Equal(t, model.StatusArchived, s.Status)
	require.NotNil(t, s.FullText)
	assert.Equal(t, "Hello world.\n\nGoodbye.", *s.FullText)
	assert.Equal(t, "mock-transcriber", s.ModelUsed)
	assert.Equal(t, "en", s.Language)
	require.NotNil(t, s.Event)
	assert.Equal(t, "Launch", *s.Event)
	require.NotNil(t, s.DurationSeconds)
	assert.InDelta(t, 60.0, *s.DurationSeconds, 0.001)

	tr, err := p.db.GetTranscriptionByMediaFile(context.Background(), s.MediaFileID)
	require.NoError(t, err)
	chunks, err := p.db.ListChunks(context.Background(), tr.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "Hello world.\n\nGoodbye.", chunks[0].TextContent)

	assert.NoFileExists(t, filepath.Join(p.inputDir, "talk.mp3"))
	assert.FileExists(t, filepath.Join(p.archiveDir, "talk.mp3"))
	assert.Equal(t, 1, p.generator.RequestCount())
	assert.Equal(t, "Hello world.\n\nGoodbye.", p.generator.Requests[0].UserText)

	entries, err := os.ReadDir(p.converter.config.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace must be removed")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.Files.WithLabelValues(metrics.OutcomeCompleted)))
}

func TestConverter_SkipsShortSegments(t *testing.T) {
	p := newPipeline(t, segmentSize, 1<<10, segmentSize)
	p.transcriber.
		SetResponseForFile("talk_16khz_000.wav", "First.").
		SetResponseForFile("talk_16khz_002.wav", "Third.")
	path := apptestutil.WriteFile(t, p.inputDir, "talk.mp3", 4096)

	media, err := p.converter.ProcessFile(context.Background(), path, FileOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusArchived, media.Status)
	assert.False(t, p.transcriber.WasCalledWith("talk_16khz_001.wav"))
	assert.Equal(t, 2, p.transcriber.GetCallCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.Segments.WithLabelValues("skipped")))

	tr, err := p.db.GetTranscriptionByMediaFile(context.Background(), media.ID)
	require.NoError(t, err)
	require.NotNil(t, tr.FullText)
	assert.Equal(t, "First.\n\nThird.", *tr.FullText)
}

func TestConverter_EmptyTranscript(t *testing.T) {
	p := newPipeline(t, segmentSize)
	p.transcriber.SetResponseForFile("silence_16khz_000.wav", "  ")
	path := apptestutil.WriteFile(t, p.inputDir, "silence.wav", 4096)

	media, err := p.converter.ProcessFile(context.Background(), path, FileOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusArchived, media.Status)
	assert.Zero(t, p.generator.RequestCount())

	tr, err := p.db.GetTranscriptionByMediaFile(context.Background(), media.ID)
	require.NoError(t, err)
	require.NotNil(t, tr.FullText)
	assert.Empty(t, *tr.FullText)
	chunks, err := p.db.ListChunks(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestConverter_SkipsArchivedFiles(t *testing.T) {
	p := newPipeline(t, segmentSize)
	apptestutil.WriteFile(t, p.archiveDir, "old.mp3", 10)
	apptestutil.WriteFile(t, p.inputDir, "old.mp3", 10)
	apptestutil.WriteFile(t, p.inputDir, "new.mp3", 10)

	report, err := p.converter.Run(context.Background(), RunOptions{InputDir: p.inputDir})
	require.NoError(t, err)
	assert.Equal(t, []string{"old.mp3"}, report.Skipped)
	assert.Equal(t, []string{"new.mp3"}, report.Processed)
	assert.False(t, p.transcriber.WasCalledWith("old_16khz_000.wav"))
	assert.FileExists(t, filepath.Join(p.inputDir, "old.mp3"))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.Files.WithLabelValues(metrics.OutcomeSkipped)))
}

func TestConverter_TranscriptionFailure(t *testing.T) {
	p := newPipeline(t, segmentSize, segmentSize)
	p.transcriber.SetErrorForFile("bad_16khz_001.wav", stderrors.New("quota exceeded"))
	apptestutil.WriteFile(t, p.inputDir, "bad.mp3", 10)
	apptestutil.WriteFile(t, p.inputDir, "good.mp3", 10)

	report, err := p.converter.Run(context.Background(), RunOptions{InputDir: p.inputDir})
	require.NoError(t, err)
	assert.Equal(t, []string{"bad.mp3"}, report.Failed)
	assert.Equal(t, []string{"good.mp3"}, report.Processed)

	assert.Equal(t, model.StatusFailed, p.mediaFile(t, "bad.mp3").Status)
	assert.FileExists(t, filepath.Join(p.inputDir, "bad.mp3"))
	assert.NoFileExists(t, filepath.Join(p.archiveDir, "bad.mp3"))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.Files.WithLabelValues(metrics.OutcomeFailed)))
}

type failingArchiver struct{ err error }

func (a failingArchiver) List(context.Context) (map[string]bool, error) { return map[string]bool{}, nil }
func (a failingArchiver) Archive(context.Context, string) error         { return a.err }

func TestConverter_ArchiveFailure(t *testing.T) {
	p := newPipeline(t, segmentSize)
	p.converter.archiver = failingArchiver{err: stderrors.New("bucket unreachable")}
	apptestutil.WriteFile(t, p.inputDir, "talk.mp3", 10)

	report, err := p.converter.Run(context.Background(), RunOptions{InputDir: p.inputDir})
	require.NoError(t, err)
	assert.Equal(t, []string{"talk.mp3"}, report.Failed)
	assert.Empty(t, report.Processed)

	media := p.mediaFile(t, "talk.mp3")
	assert.Equal(t, model.StatusCompleted, media.Status)
	assert.FileExists(t, filepath.Join(p.inputDir, "talk.mp3"))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.Files.WithLabelValues(metrics.OutcomeFailed)))
	assert.Zero(t, testutil.ToFloat64(p.metrics.Files.WithLabelValues(metrics.OutcomeCompleted)))
}

func TestConverter_RunLimit(t *testing.T) {
	p := newPipeline(t, segmentSize)
	for _, name := range []string{"c.mp3", "a.mp3", "b.mp3"} {
		apptestutil.WriteFile(t, p.inputDir, name, 10)
	}

	report, err := p.converter.Run(context.Background(), RunOptions{InputDir: p.inputDir, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp3", "b.mp3"}, report.Processed)
	assert.FileExists(t, filepath.Join(p.inputDir, "c.mp3"))
}

func TestConverter_RunStopsBetweenFiles(t *testing.T) {
	p := newPipeline(t, segmentSize)
	apptestutil.WriteFile(t, p.inputDir, "a.mp3", 10)
	apptestutil.WriteFile(t, p.inputDir, "b.mp3", 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	report, err := p.converter.run(ctx, RunOptions{InputDir: p.inputDir}, nil, func(string, error) { cancel() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a.mp3"}, report.Processed)
	assert.FileExists(t, filepath.Join(p.inputDir, "b.mp3"))
}

func TestConverter_MissingInput(t *testing.T) {
	p := newPipeline(t)

	_, err := p.converter.ProcessFile(context.Background(), filepath.Join(p.inputDir, "nope.mp3"), FileOptions{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = p.converter.Run(context.Background(), RunOptions{InputDir: filepath.Join(p.inputDir, "missing")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConverter_ImportTexts(t *testing.T) {
	p := newPipeline(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "episode1.txt"), []byte("Imported transcript."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	report, err := p.converter.ImportTexts(context.Background(), dir, ImportOptions{Project: "Archive", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, []string{"episode1.txt"}, report.Processed)

	summaries, err := p.db.ListTranscriptions(context.Background(), "Archive")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, model.StatusCompleted, summaries[0].Status)
	assert.Equal(t, ImportModel, summaries[0].ModelUsed)
	require.NotNil(t, summaries[0].FullText)
	assert.Equal(t, "Imported transcript.", *summaries[0].FullText)

	assert.Zero(t, p.transcriber.GetCallCount())
	assert.Zero(t, p.generator.RequestCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.Files.WithLabelValues(metrics.OutcomeImported)))
}

func TestConverter_ProjectLookupFailure(t *testing.T) {
	dao := apptestutil.NewMockTranscriptionDAO()
	dao.On("GetOrCreateProject", mock.Anything, DefaultProjectName).
		Return(nil, apperrors.Persistence(stderrors.New("disk full"), "insert project"))

	transcriber := apptestutil.NewMockTranscriber()
	c := NewConverter(Config{TempDir: t.TempDir()}, dao, transcriber,
		normalizer.New(apptestutil.NewMockTextGenerator(), ""),
		archive.NewFSArchiver(t.TempDir(), nil),
		WithMediaConverter(apptestutil.NewFakeMediaConverter()),
		WithSplitter(&apptestutil.FakeSplitter{}))

	path := apptestutil.WriteFile(t, t.TempDir(), "a.mp3", 10)
	_, err := c.ProcessFile(context.Background(), path, FileOptions{})
	assert.ErrorIs(t, err, apperrors.ErrPersistenceFailure)
	assert.Zero(t, transcriber.GetCallCount())
	dao.AssertExpectations(t)
	dao.AssertNotCalled(t, "CreateMediaFile", mock.Anything, mock.Anything)
}

func TestProgressAwareConverter_Disabled(t *testing.T) {
	p := newPipeline(t, segmentSize)
	apptestutil.WriteFile(t, p.inputDir, "a.mp3", 10)

	pac := NewProgressAwareConverter(p.converter, ProgressConfig{Enabled: false})
	report, err := pac.Run(context.Background(), RunOptions{InputDir: p.inputDir})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp3"}, report.Processed)
}

func TestProgressAwareConverter_Enabled(t *testing.T) {
	p := newPipeline(t, segmentSize)
	apptestutil.WriteFile(t, p.inputDir, "a.mp3", 10)
	apptestutil.WriteFile(t, p.inputDir, "b.mp3", 10)

	var out bytes.Buffer
	pac := NewProgressAwareConverter(p.converter, ProgressConfig{Enabled: true, Writer: &out})
	report, err := pac.Run(context.Background(), RunOptions{InputDir: p.inputDir, FileOptions: FileOptions{Project: "Talks"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp3", "b.mp3"}, report.Processed)
}

func TestBarLabel(t *testing.T) {
	assert.Equal(t, "Transcribing", barLabel(""))
	assert.Equal(t, "Transcribing (Talks)", barLabel("Talks"))
}
