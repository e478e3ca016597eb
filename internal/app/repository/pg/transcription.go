package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"media2text/internal/app/errors"
	"media2text/internal/app/repository"
)

// EmbeddingDimensions matches text-embedding-3-small.
const EmbeddingDimensions = 1536

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS media_files (
		id UUID PRIMARY KEY,
		project_id UUID REFERENCES projects(id) ON DELETE CASCADE,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		media_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		duration_seconds DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL,
		description TEXT,
		event TEXT,
		event_date DATE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_media_files_file_name ON media_files(file_name)`,
	`CREATE TABLE IF NOT EXISTS transcriptions (
		id UUID PRIMARY KEY,
		media_file_id UUID NOT NULL REFERENCES media_files(id) ON DELETE CASCADE,
		full_text TEXT,
		language TEXT NOT NULL DEFAULT '',
		model_used TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcriptions_media_file ON transcriptions(media_file_id)`,
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS transcription_chunks (
		id UUID PRIMARY KEY,
		transcription_id UUID NOT NULL REFERENCES transcriptions(id) ON DELETE CASCADE,
		chunk_index INTEGER NOT NULL,
		text_content TEXT NOT NULL,
		embedding vector(%d),
		UNIQUE (transcription_id, chunk_index)
	)`, EmbeddingDimensions),
}

// PostgresDB stores transcriptions in PostgreSQL with pgvector.
type PostgresDB struct {
	*repository.CommonDB
}

var _ repository.TranscriptionDAO = (*PostgresDB)(nil)

func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	if connectionString == "" {
		return nil, errors.RequiredField("postgres dsn")
	}
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, errors.Persistence(err, "open postgres")
	}
	return newPostgresDB(db), nil
}

func newPostgresDB(db *sql.DB) *PostgresDB {
	return &PostgresDB{CommonDB: repository.NewCommonDB(db, "postgres", schema)}
}
