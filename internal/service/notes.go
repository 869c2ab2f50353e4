package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_service.go -package=mocks devnotes/internal/service NoteService

import (
	"context"
	"errors"

	"devnotes/internal/contextutil"
	"devnotes/internal/notes"
	"devnotes/internal/storage"
)

// NoteService provides owner-scoped note operations. A note owned by another
// user is reported as ErrNotFound.
type NoteService interface {
	// List returns all notes of userID, most recently created first.
	List(ctx context.Context, userID string) ([]notes.Note, error)
	// Create validates draft and stores it for userID.
	Create(ctx context.Context, userID string, draft notes.Draft) (notes.Note, error)
	// Update replaces the editable fields of note id.
	Update(ctx context.Context, userID, id string, draft notes.Draft) (notes.Note, error)
	// Delete removes note id.
	Delete(ctx context.Context, userID, id string) error
}

// noteService implements NoteService.
type noteService struct {
	store storage.NoteStore
}

// NewNoteService creates a new NoteService.
func NewNoteService(store storage.NoteStore) NoteService {
	return &noteService{
		store: store,
	}
}

func (s *noteService) List(ctx context.Context, userID string) ([]notes.Note, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list notes", "error", err)
		return nil, WrapError(err, "failed to list notes")
	}

	out := make([]notes.Note, 0, len(records))
	for i := range records {
		out = append(out, toNote(&records[i]))
	}
	return out, nil
}

func (s *noteService) Create(ctx context.Context, userID string, draft notes.Draft) (notes.Note, error) {
	logger := contextutil.LoggerFromContext(ctx)

	draft, err := validateDraft(draft)
	if err != nil {
		logger.WarnContext(ctx, "invalid note draft", "error", err)
		return notes.Note{}, err
	}

	record := fromDraft(draft)
	record.UserID = userID
	if err := s.store.Create(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to create note", "error", err)
		return notes.Note{}, WrapError(err, "failed to create note")
	}

	logger.InfoContext(ctx, "note created", "note_id", record.ID)
	return toNote(record), nil
}

func (s *noteService) Update(ctx context.Context, userID, id string, draft notes.Draft) (notes.Note, error) {
	logger := contextutil.LoggerFromContext(ctx)

	draft, err := validateDraft(draft)
	if err != nil {
		logger.WarnContext(ctx, "invalid note draft", "note_id", id, "error", err)
		return notes.Note{}, err
	}

	record := fromDraft(draft)
	record.ID = id
	record.UserID = userID
	if err := s.store.Update(ctx, record); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notes.Note{}, noteNotFound(id)
		}
		logger.ErrorContext(ctx, "failed to update note", "note_id", id, "error", err)
		return notes.Note{}, WrapError(err, "failed to update note")
	}

	// Re-read for the stored created_at.
	stored, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notes.Note{}, noteNotFound(id)
		}
		return notes.Note{}, WrapError(err, "failed to read updated note")
	}

	logger.InfoContext(ctx, "note updated", "note_id", id)
	return toNote(stored), nil
}

func (s *noteService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return noteNotFound(id)
		}
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to delete note", "note_id", id, "error", err)
		return WrapError(err, "failed to delete note")
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "note deleted", "note_id", id)
	return nil
}

// validateDraft normalizes draft and maps a domain validation failure onto
// the service taxonomy.
func validateDraft(draft notes.Draft) (notes.Draft, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return draft, fromDraftError(err)
	}
	return draft, nil
}

func fromDraft(d notes.Draft) *storage.NoteRecord {
	return &storage.NoteRecord{
		Title:    d.Title,
		Content:  d.Content,
		Code:     d.Code,
		Language: d.Language,
		Image:    d.Image,
		Category: d.Category,
		Tags:     d.Tags,
		Color:    d.Color,
	}
}

func toNote(r *storage.NoteRecord) notes.Note {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return notes.Note{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Code:      r.Code,
		Language:  r.Language,
		Image:     r.Image,
		Category:  r.Category,
		Tags:      tags,
		Color:     r.Color,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		UserID:    r.UserID,
	}
}
