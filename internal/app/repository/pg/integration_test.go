package pg_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media2text/internal/app/model"
	"media2text/internal/app/testutil"
)

func TestPostgresDB_ChunkSwapIntegration(t *testing.T) {
	db := testutil.SetupTestPostgres(t)
	ctx := context.Background()

	project, err := db.GetOrCreateProject(ctx, "integration")
	require.NoError(t, err)
	media := &model.MediaFile{ProjectID: &project.ID, FileName: "a.mp3", FilePath: "/in/a.mp3"}
	require.NoError(t, db.CreateMediaFile(ctx, media))

	tr, err := db.CreateTranscriptionShell(ctx, media.ID, "en", "whisper-1")
	require.NoError(t, err)
	require.NoError(t, db.AppendChunk(ctx, tr.ID, 0, "raw one"))
	require.NoError(t, db.AppendChunk(ctx, tr.ID, 1, "raw two"))

	require.NoError(t, db.UpdateTranscriptionText(ctx, tr.ID, "clean"))
	require.NoError(t, db.ReplaceChunks(ctx, tr.ID, []string{"clean"}))

	chunks, err := db.ListChunks(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "clean", chunks[0].TextContent)
	assert.Nil(t, chunks[0].Embedding)

	_, err = db.DB().ExecContext(ctx, "DELETE FROM projects WHERE id = $1", project.ID)
	require.NoError(t, err)
	rows, err := db.ListTranscriptions(ctx, "integration")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
