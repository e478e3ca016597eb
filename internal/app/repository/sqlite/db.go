package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"media2text/internal/app/errors"
	"media2text/internal/app/repository"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS media_files (
		id TEXT PRIMARY KEY,
		project_id TEXT REFERENCES projects(id) ON DELETE CASCADE,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		media_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		duration_seconds REAL,
		created_at TIMESTAMP NOT NULL,
		description TEXT,
		event TEXT,
		event_date DATE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_media_files_file_name ON media_files(file_name)`,
	`CREATE TABLE IF NOT EXISTS transcriptions (
		id TEXT PRIMARY KEY,
		media_file_id TEXT NOT NULL REFERENCES media_files(id) ON DELETE CASCADE,
		full_text TEXT,
		language TEXT NOT NULL DEFAULT '',
		model_used TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcriptions_media_file ON transcriptions(media_file_id)`,
	`CREATE TABLE IF NOT EXISTS transcription_chunks (
		id TEXT PRIMARY KEY,
		transcription_id TEXT NOT NULL REFERENCES transcriptions(id) ON DELETE CASCADE,
		chunk_index INTEGER NOT NULL,
		text_content TEXT NOT NULL,
		embedding BLOB,
		UNIQUE (transcription_id, chunk_index)
	)`,
}

// SQLiteDB stores transcriptions in a local SQLite file. Embeddings are
// never populated here.
type SQLiteDB struct {
	*repository.CommonDB
}

var _ repository.TranscriptionDAO = (*SQLiteDB)(nil)

// NewSQLiteDB opens (creating if needed) the database at dbFilePath.
func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	if dbFilePath == "" {
		return nil, errors.RequiredField("sqlite path")
	}
	if dir := filepath.Dir(dbFilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create database directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dbFilePath))
	if err != nil {
		return nil, errors.Persistence(err, "open sqlite")
	}
	// A single connection serializes writers and keeps transactions simple.
	db.SetMaxOpenConns(1)

	return &SQLiteDB{CommonDB: repository.NewCommonDB(db, "sqlite3", schema)}, nil
}
