package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"devnotes/internal/contextutil"
	"devnotes/internal/notes"
	"devnotes/internal/service"
)

// NoteHandler handles HTTP requests for the authenticated user's notes.
type NoteHandler struct {
	noteService service.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// List handles GET /api/notes.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	list, err := h.noteService.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r.Context(), err, "Failed to list notes")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, list)
}

// Create handles POST /api/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var draft notes.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid note body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.noteService.Create(ctx, userID, draft)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create note")
		return
	}
	writeJSON(w, ctx, http.StatusCreated, note)
}

// Update handles PUT /api/notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var draft notes.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid note body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.noteService.Update(ctx, userID, chi.URLParam(r, "id"), draft)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update note")
		return
	}
	writeJSON(w, ctx, http.StatusOK, note)
}

// Delete handles DELETE /api/notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.noteService.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r.Context(), err, "Failed to delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
