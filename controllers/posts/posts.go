// Package posts serves post creation, listing and likes.
package posts

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tangle-backend/apperrors"
	"tangle-backend/controllers/authentication"
	"tangle-backend/controllers/respond"
	"tangle-backend/membership"
	"tangle-backend/models/content"
	"tangle-backend/storage"
)

// Handler serves the /posts endpoints.
type Handler struct {
	store storage.Store
	auth  *authentication.Service
	gate  *membership.Authority
	now   func() time.Time
}

// NewHandler creates the posts handler.
func NewHandler(store storage.Store, auth *authentication.Service, gate *membership.Authority) *Handler {
	return &Handler{
		store: store,
		auth:  auth,
		gate:  gate,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type createPostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	GroupID  string `json:"group_id"`
}

// Create publishes a post on behalf of a group. The caller must be a
// member; a rejected request persists nothing.
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

	var req createPostRequest
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

	if req.Content == "" && req.ImageURL == "" {
		respond.Error(w, apperrors.Validation("post needs text or an image"))
		return
	}

	now := h.now()
	post := &content.Post{
		GroupID:   req.GroupID,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreatePost(r.Context(), post); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusOK, post)
}

// List returns posts newest first, optionally scoped to one group.
// An absent or blank group_id means no filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.Principal(r); err != nil {
		respond.Error(w, err)
		return
	}

	filter := storage.PostFilter{GroupID: r.URL.Query().Get("group_id")}
	posts, err := h.store.ListPosts(r.Context(), filter)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, posts)
}

// Like bumps a post's like counter atomically at the storage layer
// and notifies the owning group.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}

	if _, err := h.auth.Principal(r); err != nil {
		respond.Error(w, err)
		return
	}

	postID := r.URL.Query().Get("id")
	if postID == "" {
		respond.Error(w, apperrors.Validation("id is required"))
		return
	}

	post, err := h.store.IncrementPostLikes(r.Context(), postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, apperrors.NotFound("post not found"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}

	// Best effort; a lost notification does not undo the like.
	notification := &content.Notification{
		RecipientGroupID: post.GroupID,
		Type:             content.NotificationLike,
		Content:          "your post received a like",
		PostID:           post.ID,
		CreatedAt:        h.now(),
	}
	if err := h.store.CreateNotification(r.Context(), notification); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusOK, post)
}
