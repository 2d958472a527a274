package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mkarlsen/notat/internal/apperr"
	"github.com/mkarlsen/notat/internal/models"
)

// Remote talks to a notes HTTP API. Paths are appended to the base URL,
// whose trailing slash is stripped once at construction.
type Remote struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemote creates a client for the given base URL. An empty token
// disables the Authorization header.
func NewRemote(baseURL, token string) *Remote {
	return &Remote{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		token:   token,
		client:  &http.Client{},
	}
}

// ListNotes fetches GET /notes. The response must be a JSON array of note
// objects; anything else is rejected.
func (r *Remote) ListNotes(ctx context.Context) ([]models.Note, error) {
	body, err := r.do(ctx, http.MethodGet, "/notes", nil)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, apperr.Invalid("Invalid response (expected JSON)")
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, apperr.Invalid("Invalid response for listNotes (expected an array)")
	}
	notes := make([]models.Note, 0, len(arr))
	for _, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, apperr.Invalid("Invalid response for listNotes (expected note objects)")
		}
		n, err := models.NormalizeNote(obj, "")
		if err != nil {
			return nil, apperr.Invalid("Invalid response for listNotes (missing id)")
		}
		notes = append(notes, n)
	}
	models.SortNotes(notes)
	return notes, nil
}

// CreateNote posts the note to POST /notes. If the response omits an id,
// the candidate's client-generated id is kept.
func (r *Remote) CreateNote(ctx context.Context, n models.Note) (models.Note, error) {
	body, err := r.do(ctx, http.MethodPost, "/notes", n)
	if err != nil {
		return models.Note{}, err
	}
	return decodeNote(body, "createNote", n.ID)
}

// UpdateNote sends the patch to PUT /notes/{id}.
func (r *Remote) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (models.Note, error) {
	if err := patch.Validate(); err != nil {
		return models.Note{}, fmt.Errorf("store: update %s: %w", id, err)
	}
	body, err := r.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), patch)
	if err != nil {
		return models.Note{}, err
	}
	return decodeNote(body, "updateNote", id)
}

// DeleteNote calls DELETE /notes/{id}. An empty body or a JSON object with
// ok=true acknowledges the delete; any other body is rejected so a
// misrouted endpoint cannot report silent success.
func (r *Remote) DeleteNote(ctx context.Context, id string) (Ack, error) {
	body, err := r.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil)
	if err != nil {
		return Ack{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Ack{OK: true}, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return Ack{}, apperr.Invalid("Invalid response for deleteNote")
	}
	obj, ok := v.(map[string]any)
	if !ok || obj["ok"] != true {
		return Ack{}, apperr.Invalid("Invalid response for deleteNote")
	}
	return Ack{OK: true}, nil
}

// do runs one request and returns the raw success body. Transport failures
// and non-2xx statuses are classified into the apperr taxonomy. A missing
// base URL fails before any network activity.
func (r *Remote) do(ctx context.Context, verb, path string, payload any) ([]byte, error) {
	if r.baseURL == "" {
		return nil, apperr.ErrNotConfigured
	}
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("store: encode body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, verb, r.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("store: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, apperr.Network(verb, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Network(verb, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Status(verb, resp.StatusCode)
	}
	return body, nil
}

func decodeNote(body []byte, op, fallbackID string) (models.Note, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return models.Note{}, apperr.Invalid("Invalid response (expected JSON)")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return models.Note{}, apperr.Invalid("Invalid response for %s (expected a note object)", op)
	}
	n, err := models.NormalizeNote(obj, fallbackID)
	if err != nil {
		return models.Note{}, apperr.Invalid("Invalid response for %s (missing id)", op)
	}
	return n, nil
}
