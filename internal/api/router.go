package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/mkarlsen/notat/internal/index"
	"github.com/mkarlsen/notat/internal/store"
)

// NewRouter creates a chi router with all API routes mounted.
// The route shapes mirror what the remote store client consumes: a bare
// array from GET /notes and an {"ok":true} acknowledgement from DELETE.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(st store.NoteStore, idx index.NoteIndex, authEnabled bool, token string) chi.Router {
	h := NewHandler(st, idx)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Search.
	r.Get("/search", h.Search)

	return r
}
