package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkarlsen/notat/internal/apperr"
	"github.com/mkarlsen/notat/internal/index"
	"github.com/mkarlsen/notat/internal/models"
	"github.com/mkarlsen/notat/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	store store.NoteStore
	idx   index.NoteIndex
}

// NewHandler creates a new Handler. idx may be nil when no search index is
// attached; /search then answers 503.
func NewHandler(st store.NoteStore, idx index.NoteIndex) *Handler {
	return &Handler{store: st, idx: idx}
}

// ListNotes handles GET /notes.
//
// The response is a bare JSON array of notes, pinned first, most recently
// updated first. Clients depend on the array shape, so an empty store yields
// [] rather than null.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.store.ListNotes(r.Context())
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	sorted := models.SortedNotes(notes)
	if sorted == nil {
		sorted = []models.Note{}
	}
	writeJSON(w, http.StatusOK, sorted)
}

// CreateNote handles POST /notes.
//
// The body is a full note record with a client-generated id. Missing title,
// color, or timestamps are filled by the store.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var n models.Note
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if n.ID == "" {
		writeError(w, http.StatusBadRequest, "note id is required")
		return
	}
	stored, err := h.store.CreateNote(r.Context(), n)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "note already exists")
		} else {
			slog.Error("create note failed", slog.String("id", n.ID), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// UpdateNote handles PUT /notes/{id}.
//
// The body is a partial patch; absent fields stay untouched. Unknown ids
// answer 404 so clients can distinguish a vanished note from a failed save.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "note id is required")
		return
	}
	var patch models.NotePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stored, err := h.store.UpdateNote(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("update note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// DeleteNote handles DELETE /notes/{id}.
//
// Deletion is idempotent: removing an unknown id still acknowledges success,
// so the response body is always {"ok":true}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "note id is required")
		return
	}
	ack, err := h.store.DeleteNote(r.Context(), id)
	if err != nil {
		slog.Error("delete note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.idx == nil {
		writeError(w, http.StatusServiceUnavailable, "search index unavailable")
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.idx.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}
