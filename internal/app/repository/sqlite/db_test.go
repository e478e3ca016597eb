package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "media2text/internal/app/errors"
	"media2text/internal/app/model"
	"media2text/internal/app/repository"
)

func openTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "data", "transcription.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(context.Background()))
	return db
}

func TestSQLiteDB_Interface(t *testing.T) {
	var _ repository.TranscriptionDAO = (*SQLiteDB)(nil)
}

func TestNewSQLiteDB_EmptyPath(t *testing.T) {
	_, err := NewSQLiteDB("")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestSQLiteDB_EnsureSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, db.EnsureSchema(context.Background()))
}

func TestSQLiteDB_GetOrCreateProject(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	first, err := db.GetOrCreateProject(ctx, "summit")
	require.NoError(t, err)
	second, err := db.GetOrCreateProject(ctx, "summit")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := db.GetOrCreateProject(ctx, "other")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestSQLiteDB_MediaLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	project, err := db.GetOrCreateProject(ctx, "summit")
	require.NoError(t, err)

	event := "Keynote"
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	media := &model.MediaFile{
		ProjectID: &project.ID,
		FileName:  "talk.mp4",
		FilePath:  "/in/talk.mp4",
		MediaType: model.MediaTypeVideo,
		Event:     &event,
		EventDate: &date,
	}
	require.NoError(t, db.CreateMediaFile(ctx, media))
	assert.NotEqual(t, uuid.Nil, media.ID)
	assert.Equal(t, model.StatusPending, media.Status)

	require.NoError(t, db.UpdateMediaStatus(ctx, media.ID, model.StatusProcessing))
	require.NoError(t, db.UpdateMediaDuration(ctx, media.ID, 125.5))

	got, err := db.GetMediaFile(ctx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, got.Status)
	assert.Equal(t, model.MediaTypeVideo, got.MediaType)
	require.NotNil(t, got.ProjectID)
	assert.Equal(t, project.ID, *got.ProjectID)
	require.NotNil(t, got.DurationSeconds)
	assert.InDelta(t, 125.5, *got.DurationSeconds, 1e-9)
	require.NotNil(t, got.EventDate)
	assert.True(t, date.Equal(*got.EventDate))
	assert.Nil(t, got.Description)

	err = db.UpdateMediaStatus(ctx, uuid.New(), model.StatusFailed)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = db.GetMediaFile(ctx, uuid.New())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSQLiteDB_DeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	project, err := db.GetOrCreateProject(ctx, "summit")
	require.NoError(t, err)
	media := &model.MediaFile{ProjectID: &project.ID, FileName: "a.mp3", FilePath: "/in/a.mp3"}
	require.NoError(t, db.CreateMediaFile(ctx, media))
	tr, err := db.CreateTranscriptionShell(ctx, media.ID, "en", "whisper-1")
	require.NoError(t, err)
	require.NoError(t, db.AppendChunk(ctx, tr.ID, 0, "raw"))

	_, err = db.DB().ExecContext(ctx, "DELETE FROM projects WHERE id = ?", project.ID)
	require.NoError(t, err)

	for _, table := range []string{"media_files", "transcriptions", "transcription_chunks"} {
		var n int
		require.NoError(t, db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}
	_, err = db.GetMediaFile(ctx, media.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSQLiteDB_ChunkSwap(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	media := &model.MediaFile{FileName: "a.mp3", FilePath: "/in/a.mp3"}
	require.NoError(t, db.CreateMediaFile(ctx, media))
	tr, err := db.CreateTranscriptionShell(ctx, media.ID, "en", "whisper-1")
	require.NoError(t, err)
	assert.False(t, tr.IsComplete())

	require.NoError(t, db.AppendChunk(ctx, tr.ID, 0, "raw one"))
	require.NoError(t, db.AppendChunk(ctx, tr.ID, 1, "raw two"))
	require.NoError(t, db.AppendChunk(ctx, tr.ID, 2, "raw three"))

	require.NoError(t, db.UpdateTranscriptionText(ctx, tr.ID, "clean"))
	require.NoError(t, db.ReplaceChunks(ctx, tr.ID, []string{"clean"}))

	chunks, err := db.ListChunks(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "clean", chunks[0].TextContent)
	assert.Nil(t, chunks[0].Embedding)

	got, err := db.GetTranscriptionByMediaFile(ctx, media.ID)
	require.NoError(t, err)
	require.True(t, got.IsComplete())
	assert.Equal(t, "clean", *got.FullText)

	require.NoError(t, db.DeleteChunks(ctx, tr.ID))
	chunks, err = db.ListChunks(ctx, tr.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSQLiteDB_AppendChunkRejectsDuplicateIndex(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	media := &model.MediaFile{FileName: "a.mp3", FilePath: "/in/a.mp3"}
	require.NoError(t, db.CreateMediaFile(ctx, media))
	tr, err := db.CreateTranscriptionShell(ctx, media.ID, "", "whisper-1")
	require.NoError(t, err)

	require.NoError(t, db.AppendChunk(ctx, tr.ID, 0, "x"))
	err = db.AppendChunk(ctx, tr.ID, 0, "y")
	assert.True(t, errors.Is(err, apperrors.ErrPersistenceFailure))
}

func TestSQLiteDB_ReplaceChunksKeepsOldOnFailure(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	media := &model.MediaFile{FileName: "a.mp3", FilePath: "/in/a.mp3"}
	require.NoError(t, db.CreateMediaFile(ctx, media))
	tr, err := db.CreateTranscriptionShell(ctx, media.ID, "", "whisper-1")
	require.NoError(t, err)
	require.NoError(t, db.AppendChunk(ctx, tr.ID, 0, "raw"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.Error(t, db.ReplaceChunks(cancelled, tr.ID, []string{"new"}))

	chunks, err := db.ListChunks(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "raw", chunks[0].TextContent)
}

func TestSQLiteDB_TextImportAndList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	summit, err := db.GetOrCreateProject(ctx, "summit")
	require.NoError(t, err)
	other, err := db.GetOrCreateProject(ctx, "other")
	require.NoError(t, err)

	_, err = db.CreateTextTranscription(ctx, &model.MediaFile{
		ProjectID: &summit.ID, FileName: "a.txt", FilePath: "/in/a.txt", Status: model.StatusCompleted,
	}, "alpha", "en", "text-import")
	require.NoError(t, err)
	_, err = db.CreateTextTranscription(ctx, &model.MediaFile{
		ProjectID: &other.ID, FileName: "b.txt", FilePath: "/in/b.txt", Status: model.StatusCompleted,
	}, "beta", "fr", "text-import")
	require.NoError(t, err)

	all, err := db.ListTranscriptions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rows, err := db.ListTranscriptions(ctx, "summit")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a.txt", rows[0].FileName)
	assert.Equal(t, model.StatusCompleted, rows[0].Status)
	require.NotNil(t, rows[0].FullText)
	assert.Equal(t, "alpha", *rows[0].FullText)
	assert.Equal(t, "text-import", rows[0].ModelUsed)
}

func TestSQLiteDB_CreateMediaFileRequiresName(t *testing.T) {
	db := openTestDB(t)
	err := db.CreateMediaFile(context.Background(), &model.MediaFile{FilePath: "/x"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
