package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"media2text/internal/app/errors"
	"media2text/internal/app/model"
)

// CommonDB provides shared database functionality
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
	schema       []string
	now          func() time.Time
}

var _ TranscriptionDAO = (*CommonDB)(nil)

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

// NewCommonDB creates a new CommonDB instance. schema holds the DDL run by
// EnsureSchema, one statement per entry.
func NewCommonDB(db *sql.DB, driverName string, schema []string) *CommonDB {
	var placeholders PlaceholderFunc

	switch driverName {
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(n int) string { return "?" }
	}

	return &CommonDB{
		db:           db,
		driverName:   driverName,
		placeholders: placeholders,
		schema:       schema,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// rebind rewrites ? markers into the dialect's placeholders.
func (c *CommonDB) rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(c.placeholders(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connection
func (c *CommonDB) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection
func (c *CommonDB) DB() *sql.DB {
	return c.db
}

func (c *CommonDB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range c.schema {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return errors.Persistence(err, "create schema")
		}
	}
	return nil
}

func (c *CommonDB) GetOrCreateProject(ctx context.Context, name string) (*model.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.RequiredField("project name")
	}

	_, err := c.db.ExecContext(ctx,
		c.rebind(`INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`),
		uuid.New(), name, c.now())
	if err != nil {
		return nil, errors.Persistence(err, "insert project")
	}

	var p model.Project
	err = c.db.QueryRowContext(ctx,
		c.rebind(`SELECT id, name, created_at FROM projects WHERE name = ?`), name,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, errors.Persistence(err, "query project")
	}
	return &p, nil
}

func (c *CommonDB) CreateMediaFile(ctx context.Context, media *model.MediaFile) error {
	return insertMediaFile(ctx, c.db, c.rebind, c.now, media)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertMediaFile(ctx context.Context, db execer, rebind func(string) string, now func() time.Time, media *model.MediaFile) error {
	if media == nil || media.FileName == "" {
		return errors.RequiredField("media file name")
	}
	if media.ID == uuid.Nil {
		media.ID = uuid.New()
	}
	if media.Status == "" {
		media.Status = model.StatusPending
	}
	if media.MediaType == "" {
		media.MediaType = model.MediaTypeAudio
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = now()
	}

	_, err := db.ExecContext(ctx, rebind(
		`INSERT INTO media_files (
			id, project_id, file_name, file_path, media_type, status,
			duration_seconds, created_at, description, event, event_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		media.ID, media.ProjectID, media.FileName, media.FilePath, string(media.MediaType), string(media.Status),
		media.DurationSeconds, media.CreatedAt, media.Description, media.Event, media.EventDate,
	)
	if err != nil {
		return errors.Persistence(err, "insert media file")
	}
	return nil
}

func (c *CommonDB) UpdateMediaStatus(ctx context.Context, id uuid.UUID, status model.ProcessingStatus) error {
	if !status.Valid() {
		return errors.Kind(errors.ErrInvalidInput, nil, "unknown status %q", status)
	}
	res, err := c.db.ExecContext(ctx, c.rebind(`UPDATE media_files SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		return errors.Persistence(err, "update media status")
	}
	return expectAffected(res, "media file", id)
}

func (c *CommonDB) UpdateMediaDuration(ctx context.Context, id uuid.UUID, seconds float64) error {
	res, err := c.db.ExecContext(ctx, c.rebind(`UPDATE media_files SET duration_seconds = ? WHERE id = ?`), seconds, id)
	if err != nil {
		return errors.Persistence(err, "update media duration")
	}
	return expectAffected(res, "media file", id)
}

func (c *CommonDB) GetMediaFile(ctx context.Context, id uuid.UUID) (*model.MediaFile, error) {
	var m model.MediaFile
	var projectID uuid.NullUUID
	err := c.db.QueryRowContext(ctx, c.rebind(
		`SELECT id, project_id, file_name, file_path, media_type, status,
		        duration_seconds, created_at, description, event, event_date
		 FROM media_files WHERE id = ?`), id,
	).Scan(&m.ID, &projectID, &m.FileName, &m.FilePath, &m.MediaType, &m.Status,
		&m.DurationSeconds, &m.CreatedAt, &m.Description, &m.Event, &m.EventDate)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("media file", id.String())
	}
	if err != nil {
		return nil, errors.Persistence(err, "query media file")
	}
	if projectID.Valid {
		m.ProjectID = &projectID.UUID
	}
	return &m, nil
}

func (c *CommonDB) CreateTranscriptionShell(ctx context.Context, mediaID uuid.UUID, language, modelUsed string) (*model.Transcription, error) {
	t := &model.Transcription{
		ID:          uuid.New(),
		MediaFileID: mediaID,
		Language:    language,
		ModelUsed:   modelUsed,
		CreatedAt:   c.now(),
	}
	if err := insertTranscription(ctx, c.db, c.rebind, t); err != nil {
		return nil, err
	}
	return t, nil
}

func insertTranscription(ctx context.Context, db execer, rebind func(string) string, t *model.Transcription) error {
	_, err := db.ExecContext(ctx, rebind(
		`INSERT INTO transcriptions (id, media_file_id, full_text, language, model_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		t.ID, t.MediaFileID, t.FullText, t.Language, t.ModelUsed, t.CreatedAt,
	)
	if err != nil {
		return errors.Persistence(err, "insert transcription")
	}
	return nil
}

func (c *CommonDB) UpdateTranscriptionText(ctx context.Context, id uuid.UUID, text string) error {
	res, err := c.db.ExecContext(ctx, c.rebind(`UPDATE transcriptions SET full_text = ? WHERE id = ?`), text, id)
	if err != nil {
		return errors.Persistence(err, "update transcription text")
	}
	return expectAffected(res, "transcription", id)
}

const transcriptionColumns = `id, media_file_id, full_text, language, model_used, created_at`

func (c *CommonDB) GetTranscription(ctx context.Context, id uuid.UUID) (*model.Transcription, error) {
	return c.getTranscription(ctx, `SELECT `+transcriptionColumns+` FROM transcriptions WHERE id = ?`, id)
}

func (c *CommonDB) GetTranscriptionByMediaFile(ctx context.Context, mediaID uuid.UUID) (*model.Transcription, error) {
	return c.getTranscription(ctx, `SELECT `+transcriptionColumns+` FROM transcriptions WHERE media_file_id = ?`, mediaID)
}

func (c *CommonDB) getTranscription(ctx context.Context, query string, id uuid.UUID) (*model.Transcription, error) {
	var t model.Transcription
	err := c.db.QueryRowContext(ctx, c.rebind(query), id).
		Scan(&t.ID, &t.MediaFileID, &t.FullText, &t.Language, &t.ModelUsed, &t.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("transcription", id.String())
	}
	if err != nil {
		return nil, errors.Persistence(err, "query transcription")
	}
	return &t, nil
}

func (c *CommonDB) CreateTextTranscription(ctx context.Context, media *model.MediaFile, text, language, modelUsed string) (*model.Transcription, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Persistence(err, "begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertMediaFile(ctx, tx, c.rebind, c.now, media); err != nil {
		return nil, err
	}
	t := &model.Transcription{
		ID:          uuid.New(),
		MediaFileID: media.ID,
		FullText:    &text,
		Language:    language,
		ModelUsed:   modelUsed,
		CreatedAt:   c.now(),
	}
	if err := insertTranscription(ctx, tx, c.rebind, t); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Persistence(err, "commit text transcription")
	}
	return t, nil
}

func (c *CommonDB) ListTranscriptions(ctx context.Context, project string) ([]model.TranscriptionSummary, error) {
	query := `SELECT m.id, m.file_name, m.status, m.duration_seconds, m.event, m.event_date,
	                 t.language, t.model_used, t.full_text, t.created_at
	          FROM transcriptions t
	          JOIN media_files m ON m.id = t.media_file_id
	          LEFT JOIN projects p ON p.id = m.project_id`
	var args []interface{}
	if project != "" {
		query += ` WHERE p.name = ?`
		args = append(args, project)
	}
	query += ` ORDER BY t.created_at, m.file_name`

	rows, err := c.db.QueryContext(ctx, c.rebind(query), args...)
	if err != nil {
		return nil, errors.Persistence(err, "query transcriptions")
	}
	defer rows.Close()

	var out []model.TranscriptionSummary
	for rows.Next() {
		var s model.TranscriptionSummary
		if err := rows.Scan(&s.MediaFileID, &s.FileName, &s.Status, &s.DurationSeconds, &s.Event, &s.EventDate,
			&s.Language, &s.ModelUsed, &s.FullText, &s.CreatedAt); err != nil {
			return nil, errors.Persistence(err, "scan transcription")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Persistence(err, "iterate transcriptions")
	}
	return out, nil
}

func (c *CommonDB) AppendChunk(ctx context.Context, transcriptionID uuid.UUID, index int, text string) error {
	_, err := c.db.ExecContext(ctx, c.rebind(
		`INSERT INTO transcription_chunks (id, transcription_id, chunk_index, text_content, embedding)
		 VALUES (?, ?, ?, ?, NULL)`),
		uuid.New(), transcriptionID, index, text,
	)
	if err != nil {
		return errors.Persistence(err, fmt.Sprintf("insert chunk %d", index))
	}
	return nil
}

func (c *CommonDB) ListChunks(ctx context.Context, transcriptionID uuid.UUID) ([]model.TranscriptionChunk, error) {
	rows, err := c.db.QueryContext(ctx, c.rebind(
		`SELECT id, transcription_id, chunk_index, text_content, embedding
		 FROM transcription_chunks WHERE transcription_id = ? ORDER BY chunk_index`), transcriptionID)
	if err != nil {
		return nil, errors.Persistence(err, "query chunks")
	}
	defer rows.Close()

	var chunks []model.TranscriptionChunk
	for rows.Next() {
		var ch model.TranscriptionChunk
		if err := rows.Scan(&ch.ID, &ch.TranscriptionID, &ch.ChunkIndex, &ch.TextContent, &ch.Embedding); err != nil {
			return nil, errors.Persistence(err, "scan chunk")
		}
		chunks = append(chunks, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Persistence(err, "iterate chunks")
	}
	return chunks, nil
}

func (c *CommonDB) DeleteChunks(ctx context.Context, transcriptionID uuid.UUID) error {
	_, err := c.db.ExecContext(ctx, c.rebind(`DELETE FROM transcription_chunks WHERE transcription_id = ?`), transcriptionID)
	if err != nil {
		return errors.Persistence(err, "delete chunks")
	}
	return nil
}

func (c *CommonDB) ReplaceChunks(ctx context.Context, transcriptionID uuid.UUID, texts []string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Persistence(err, "begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, c.rebind(`DELETE FROM transcription_chunks WHERE transcription_id = ?`), transcriptionID); err != nil {
		return errors.Persistence(err, "delete chunks")
	}

	stmt, err := tx.PrepareContext(ctx, c.rebind(
		`INSERT INTO transcription_chunks (id, transcription_id, chunk_index, text_content, embedding)
		 VALUES (?, ?, ?, ?, NULL)`))
	if err != nil {
		return errors.Persistence(err, "prepare chunk insert")
	}
	defer stmt.Close()

	for i, text := range texts {
		if _, err := stmt.ExecContext(ctx, uuid.New(), transcriptionID, i, text); err != nil {
			return errors.Persistence(err, fmt.Sprintf("insert chunk %d", i))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Persistence(err, "commit chunk swap")
	}
	return nil
}

func expectAffected(res sql.Result, item string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Persistence(err, "rows affected")
	}
	if n == 0 {
		return errors.NotFound(item, id.String())
	}
	return nil
}
