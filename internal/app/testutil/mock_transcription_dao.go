package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"media2text/internal/app/model"
	"media2text/internal/app/repository"
)

// MockTranscriptionDAO is a testify mock of repository.TranscriptionDAO.
// Every method must be set up with On before it is called.
type MockTranscriptionDAO struct {
	mock.Mock
}

var _ repository.TranscriptionDAO = (*MockTranscriptionDAO)(nil)

func NewMockTranscriptionDAO() *MockTranscriptionDAO {
	return &MockTranscriptionDAO{}
}

func (m *MockTranscriptionDAO) Close() error {
	return m.Called().Error(0)
}

func (m *MockTranscriptionDAO) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockTranscriptionDAO) GetOrCreateProject(ctx context.Context, name string) (*model.Project, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(*model.Project)
	return p, args.Error(1)
}

func (m *MockTranscriptionDAO) CreateMediaFile(ctx context.Context, media *model.MediaFile) error {
	args := m.Called(ctx, media)
	if args.Error(0) == nil && media.ID == uuid.Nil {
		media.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockTranscriptionDAO) UpdateMediaStatus(ctx context.Context, id uuid.UUID, status model.ProcessingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockTranscriptionDAO) UpdateMediaDuration(ctx context.Context, id uuid.UUID, seconds float64) error {
	return m.Called(ctx, id, seconds).Error(0)
}

func (m *MockTranscriptionDAO) GetMediaFile(ctx context.Context, id uuid.UUID) (*model.MediaFile, error) {
	args := m.Called(ctx, id)
	media, _ := args.Get(0).(*model.MediaFile)
	return media, args.Error(1)
}

func (m *MockTranscriptionDAO) CreateTranscriptionShell(ctx context.Context, mediaID uuid.UUID, language, modelUsed string) (*model.Transcription, error) {
	args := m.Called(ctx, mediaID, language, modelUsed)
	t, _ := args.Get(0).(*model.Transcription)
	return t, args.Error(1)
}

func (m *MockTranscriptionDAO) UpdateTranscriptionText(ctx context.Context, id uuid.UUID, text string) error {
	return m.Called(ctx, id, text).Error(0)
}

func (m *MockTranscriptionDAO) GetTranscription(ctx context.Context, id uuid.UUID) (*model.Transcription, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*model.Transcription)
	return t, args.Error(1)
}

func (m *MockTranscriptionDAO) GetTranscriptionByMediaFile(ctx context.Context, mediaID uuid.UUID) (*model.Transcription, error) {
	args := m.Called(ctx, mediaID)
	t, _ := args.Get(0).(*model.Transcription)
	return t, args.Error(1)
}

func (m *MockTranscriptionDAO) CreateTextTranscription(ctx context.Context, media *model.MediaFile, text, language, modelUsed string) (*model.Transcription, error) {
	args := m.Called(ctx, media, text, language, modelUsed)
	t, _ := args.Get(0).(*model.Transcription)
	return t, args.Error(1)
}

func (m *MockTranscriptionDAO) ListTranscriptions(ctx context.Context, project string) ([]model.TranscriptionSummary, error) {
	args := m.Called(ctx, project)
	rows, _ := args.Get(0).([]model.TranscriptionSummary)
	return rows, args.Error(1)
}

func (m *MockTranscriptionDAO) AppendChunk(ctx context.Context, transcriptionID uuid.UUID, index int, text string) error {
	return m.Called(ctx, transcriptionID, index, text).Error(0)
}

func (m *MockTranscriptionDAO) ListChunks(ctx context.Context, transcriptionID uuid.UUID) ([]model.TranscriptionChunk, error) {
	args := m.Called(ctx, transcriptionID)
	chunks, _ := args.Get(0).([]model.TranscriptionChunk)
	return chunks, args.Error(1)
}

func (m *MockTranscriptionDAO) DeleteChunks(ctx context.Context, transcriptionID uuid.UUID) error {
	return m.Called(ctx, transcriptionID).Error(0)
}

func (m *MockTranscriptionDAO) ReplaceChunks(ctx context.Context, transcriptionID uuid.UUID, texts []string) error {
	return m.Called(ctx, transcriptionID, texts).Error(0)
}
