package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks devnotes/internal/storage NoteStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// NoteStore defines the interface for note storage operations.
// Every lookup is scoped to the owning user; a note owned by someone else
// behaves exactly like a missing one.
type NoteStore interface {
	// ListByUser returns all notes of userID, most recently created first.
	ListByUser(ctx context.Context, userID string) ([]NoteRecord, error)
	// GetByID returns nil and ErrNotFound if userID has no note id.
	GetByID(ctx context.Context, userID, id string) (*NoteRecord, error)
	// Create inserts a new note, assigning ID and timestamps.
	Create(ctx context.Context, note *NoteRecord) error
	// Update replaces the editable fields and bumps UpdatedAt.
	// Returns ErrNotFound if note.UserID has no note note.ID.
	Update(ctx context.Context, note *NoteRecord) error
	// Delete returns ErrNotFound if userID has no note id.
	Delete(ctx context.Context, userID, id string) error
}

// NoteRepo provides methods for note operations.
// It implements the NoteStore interface.
type NoteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db, now: time.Now}
}

const noteColumns = "id, user_id, title, content, code, language, image, category, tags, color, created_at, updated_at"

func (r *NoteRepo) ListByUser(ctx context.Context, userID string) ([]NoteRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE user_id = ? ORDER BY created_at DESC, id ASC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := []NoteRecord{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepo) GetByID(ctx context.Context, userID, id string) (*NoteRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ? AND user_id = ?",
		id, userID,
	)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return note, err
}

func (r *NoteRepo) Create(ctx context.Context, note *NoteRecord) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	now := r.now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	tags, err := encodeTags(note.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		note.ID, note.UserID, note.Title, note.Content, note.Code, note.Language, note.Image,
		note.Category, tags, note.Color, formatTimestamp(note.CreatedAt), formatTimestamp(note.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

func (r *NoteRepo) Update(ctx context.Context, note *NoteRecord) error {
	tags, err := encodeTags(note.Tags)
	if err != nil {
		return err
	}
	note.UpdatedAt = r.now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, code = ?, language = ?, image = ?,
		 category = ?, tags = ?, color = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		note.Title, note.Content, note.Code, note.Language, note.Image,
		note.Category, tags, note.Color, formatTimestamp(note.UpdatedAt),
		note.ID, note.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NoteRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*NoteRecord, error) {
	var note NoteRecord
	var tags, createdAtStr, updatedAtStr string

	err := row.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.Code, &note.Language,
		&note.Image, &note.Category, &tags, &note.Color, &createdAtStr, &updatedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &note.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of note %s: %w", note.ID, err)
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	if note.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, err
	}
	if note.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return nil, err
	}
	return &note, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}
