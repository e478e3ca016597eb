package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// MediaType is the kind of source recording.
type MediaType string

const (
	MediaTypeAudio MediaType = "AUDIO"
	MediaTypeVideo MediaType = "VIDEO"
)

// ProcessingStatus tracks a media file through the pipeline.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "PENDING"
	StatusProcessing ProcessingStatus = "PROCESSING"
	StatusCompleted  ProcessingStatus = "COMPLETED"
	StatusFailed     ProcessingStatus = "FAILED"
	StatusArchived   ProcessingStatus = "ARCHIVED"
)

var statusTransitions = map[ProcessingStatus][]ProcessingStatus{
	StatusPending:    {StatusProcessing, StatusCompleted, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {StatusArchived},
}

// CanTransition reports whether a record in status s may move to next.
// FAILED and ARCHIVED are terminal.
func (s ProcessingStatus) CanTransition(next ProcessingStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusArchived:
		return true
	}
	return false
}

type Project struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// MediaFile is one source recording and its processing state.
type MediaFile struct {
	ID              uuid.UUID
	ProjectID       *uuid.UUID
	FileName        string
	FilePath        string
	MediaType       MediaType
	Status          ProcessingStatus
	DurationSeconds *float64
	CreatedAt       time.Time
	Description     *string
	Event           *string
	EventDate       *time.Time
}

// Transcription holds the text of one media file. FullText stays nil
// between shell creation and the end of normalization.
type Transcription struct {
	ID          uuid.UUID
	MediaFileID uuid.UUID
	FullText    *string
	Language    string
	ModelUsed   string
	CreatedAt   time.Time
}

// IsComplete reports whether normalization has stored the final text.
func (t *Transcription) IsComplete() bool {
	return t != nil && t.FullText != nil
}

type TranscriptionChunk struct {
	ID              uuid.UUID
	TranscriptionID uuid.UUID
	ChunkIndex      int
	TextContent     string
	Embedding       *pgvector.Vector
}

// TranscriptionSummary is a flattened row used by exports.
type TranscriptionSummary struct {
	MediaFileID     uuid.UUID
	FileName        string
	Status          ProcessingStatus
	DurationSeconds *float64
	Event           *string
	EventDate       *time.Time
	Language        string
	ModelUsed       string
	FullText        *string
	CreatedAt       time.Time
}
