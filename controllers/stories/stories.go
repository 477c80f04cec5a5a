// Package stories serves ephemeral story creation and listing.
// Expiry is fixed server-side at creation plus 24 hours and applied
// as a read-time predicate on every listing.
package stories

import (
	"encoding/json"
	"net/http"
	"time"

	"tangle-backend/apperrors"
	"tangle-backend/controllers/authentication"
	"tangle-backend/controllers/respond"
	"tangle-backend/membership"
	"tangle-backend/models/content"
	"tangle-backend/storage"
)

// Handler serves the /stories endpoints.
type Handler struct {
	store storage.Store
	auth  *authentication.Service
	gate  *membership.Authority
	now   func() time.Time
}

// NewHandler creates the stories handler.
func NewHandler(store storage.Store, auth *authentication.Service, gate *membership.Authority) *Handler {
	return &Handler{
		store: store,
		auth:  auth,
		gate:  gate,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type createStoryRequest struct {
	ImageURL string `json:"image_url"`
	GroupID  string `json:"group_id"`
	// Client-supplied expiry is ignored; the server decides it.
	ExpiresAt string `json:"expires_at"`
}

// Create publishes a story. The image is mandatory and the expiry is
// always computed from the serving clock.
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

	var req createStoryRequest
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

	if req.ImageURL == "" {
		respond.Error(w, apperrors.Validation("story image is required"))
		return
	}

	now := h.now()
	story := &content.Story{
		GroupID:   req.GroupID,
		ImageURL:  req.ImageURL,
		CreatedAt: now,
		ExpiresAt: now.Add(content.StoryTTL),
	}
	if err := h.store.CreateStory(r.Context(), story); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusOK, story)
}

// List returns unexpired stories, newest first. The expiry predicate
// is evaluated against the serving clock on every call.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	stories, err := h.store.ListStories(r.Context(), h.now())
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, stories)
}
