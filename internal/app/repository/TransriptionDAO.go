package repository

import (
	"context"

	"github.com/google/uuid"

	"media2text/internal/app/model"
)

// TranscriptionDAO persists projects, media files, transcriptions and their
// chunks.
type TranscriptionDAO interface {
	Close() error
	EnsureSchema(ctx context.Context) error

	GetOrCreateProject(ctx context.Context, name string) (*model.Project, error)

	CreateMediaFile(ctx context.Context, media *model.MediaFile) error
	UpdateMediaStatus(ctx context.Context, id uuid.UUID, status model.ProcessingStatus) error
	UpdateMediaDuration(ctx context.Context, id uuid.UUID, seconds float64) error
	GetMediaFile(ctx context.Context, id uuid.UUID) (*model.MediaFile, error)

	// CreateTranscriptionShell inserts a transcription with no text yet.
	CreateTranscriptionShell(ctx context.Context, mediaID uuid.UUID, language, modelUsed string) (*model.Transcription, error)
	UpdateTranscriptionText(ctx context.Context, id uuid.UUID, text string) error
	GetTranscription(ctx context.Context, id uuid.UUID) (*model.Transcription, error)
	GetTranscriptionByMediaFile(ctx context.Context, mediaID uuid.UUID) (*model.Transcription, error)

	// CreateTextTranscription stores media and its final text in one step.
	CreateTextTranscription(ctx context.Context, media *model.MediaFile, text, language, modelUsed string) (*model.Transcription, error)

	// ListTranscriptions returns every transcription of a project, or of all
	// projects when project is empty, oldest first.
	ListTranscriptions(ctx context.Context, project string) ([]model.TranscriptionSummary, error)

	AppendChunk(ctx context.Context, transcriptionID uuid.UUID, index int, text string) error
	// ListChunks returns chunks ordered by index.
	ListChunks(ctx context.Context, transcriptionID uuid.UUID) ([]model.TranscriptionChunk, error)
	DeleteChunks(ctx context.Context, transcriptionID uuid.UUID) error
	// ReplaceChunks atomically swaps the whole chunk set. Readers never see
	// a mix of old and new chunks.
	ReplaceChunks(ctx context.Context, transcriptionID uuid.UUID, texts []string) error
}
