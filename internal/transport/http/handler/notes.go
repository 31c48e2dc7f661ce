package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/notes-api-nosql/internal/application/note"
	"github.com/notes-api-nosql/internal/domain"
	"github.com/notes-api-nosql/internal/pkg/validate"
	"github.com/notes-api-nosql/internal/transport/http/middleware"
)

// NoteHandler serves the authenticated note endpoints. Every operation is
// scoped to the user id placed in the context by middleware.Auth.
type NoteHandler struct {
	svc note.Service
}

func NewNoteHandler(svc note.Service) *NoteHandler { return &NoteHandler{svc: svc} }

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access denied")
		return
	}
	notes, err := h.svc.List(r.Context(), userID)
	if err != nil {
		respondError(w, r, err, noteMessages("Failed to fetch notes"))
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access denied")
		return
	}
	in, ok := decodeNoteInput(w, r)
	if !ok {
		return
	}
	n, err := h.svc.Create(r.Context(), userID, in.Content)
	if err != nil {
		respondError(w, r, err, noteMessages("Failed to create note"))
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access denied")
		return
	}
	in, ok := decodeNoteInput(w, r)
	if !ok {
		return
	}
	n, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), in.Content)
	if err != nil {
		respondError(w, r, err, noteMessages("Failed to update note"))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access denied")
		return
	}
	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, noteMessages("Failed to delete note"))
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Note deleted"})
}

func decodeNoteInput(w http.ResponseWriter, r *http.Request) (domain.NoteInput, bool) {
	var in domain.NoteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return in, false
	}
	if err := validate.Struct(in); err != nil {
		writeError(w, http.StatusBadRequest, "Content is required")
		return in, false
	}
	return in, true
}

func noteMessages(failure string) messages {
	return messages{validation: "Content is required", notFound: "Note not found", failure: failure}
}
