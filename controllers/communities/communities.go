// Package communities serves community creation and listing.
package communities

import (
	"encoding/json"
	"net/http"
	"time"

	"tangle-backend/apperrors"
	"tangle-backend/controllers/authentication"
	"tangle-backend/controllers/respond"
	"tangle-backend/models/content"
	"tangle-backend/storage"
)

// Handler serves the /communities endpoints.
type Handler struct {
	store storage.Store
	auth  *authentication.Service
	now   func() time.Time
}

// NewHandler creates the communities handler.
func NewHandler(store storage.Store, auth *authentication.Service) *Handler {
	return &Handler{
		store: store,
		auth:  auth,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type createCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatar_url"`
}

// Create founds a community.
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

	var req createCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Validation("invalid input"))
		return
	}
	if req.Name == "" {
		respond.Error(w, apperrors.Validation("community name is required"))
		return
	}

	community := &content.Community{
		Name:        req.Name,
		Description: req.Description,
		AvatarURL:   req.AvatarURL,
		CreatedBy:   claims.UserID,
		CreatedAt:   h.now(),
	}
	if err := h.store.CreateCommunity(r.Context(), community); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusCreated, community)
}

// List returns all communities, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.Principal(r); err != nil {
		respond.Error(w, err)
		return
	}

	communities, err := h.store.ListCommunities(r.Context())
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, communities)
}
