// Package notes serves short ephemeral notes. Notes share the
// stories' 24-hour lifecycle and cap their text at 80 characters.
package notes

import (
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	"tangle-backend/apperrors"
	"tangle-backend/controllers/authentication"
	"tangle-backend/controllers/respond"
	"tangle-backend/membership"
	"tangle-backend/models/content"
	"tangle-backend/storage"
)

// Handler serves the /notes endpoints.
type Handler struct {
	store storage.Store
	auth  *authentication.Service
	gate  *membership.Authority
	now   func() time.Time
}

// NewHandler creates the notes handler.
func NewHandler(store storage.Store, auth *authentication.Service, gate *membership.Authority) *Handler {
	return &Handler{
		store: store,
		auth:  auth,
		gate:  gate,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type createNoteRequest struct {
	Content string `json:"content"`
	GroupID string `json:"group_id"`
}

// Create publishes a note. Text is mandatory and at most 80
// characters; expiry is computed server-side.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}

	claims, err := h.auth.Principal(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Validation("invalid input"))
		return
	}
	if req.GroupID == "" {
		respond.Error(w, apperrors.Validation("group_id is required"))
		return
	}

	isMember, err := h.gate.IsMember(r.Context(), claims.UserID, req.GroupID)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	if !isMember {
		respond.Error(w, apperrors.Forbidden("not a member of this group"))
		return
	}

	if req.Content == "" {
		respond.Error(w, apperrors.Validation("note text is required"))
		return
	}
	if utf8.RuneCountInString(req.Content) > content.MaxNoteLength {
		respond.Error(w, apperrors.Validation("note text must be at most 80 characters"))
		return
	}

	now := h.now()
	note := &content.Note{
		GroupID:   req.GroupID,
		Content:   req.Content,
		CreatedAt: now,
		ExpiresAt: now.Add(content.StoryTTL),
	}
	if err := h.store.CreateNote(r.Context(), note); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusOK, note)
}

// List returns unexpired notes, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.Principal(r); err != nil {
		respond.Error(w, err)
		return
	}

	notes, err := h.store.ListNotes(r.Context(), h.now())
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, notes)
}
