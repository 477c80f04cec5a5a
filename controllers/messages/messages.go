// Package messages serves group-to-group and group-to-community
// messages.
package messages

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

// Handler serves the /messages endpoints.
type Handler struct {
	store storage.Store
	auth  *authentication.Service
	gate  *membership.Authority
	now   func() time.Time
}

// NewHandler creates the messages handler.
func NewHandler(store storage.Store, auth *authentication.Service, gate *membership.Authority) *Handler {
	return &Handler{
		store: store,
		auth:  auth,
		gate:  gate,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type sendMessageRequest struct {
	SenderGroupID    string `json:"sender_group_id"`
	RecipientGroupID string `json:"recipient_group_id"`
	CommunityID      string `json:"community_id"`
	Content          string `json:"content"`
}

// Send delivers a message from the caller's group to another group or
// a community. The caller must be a member of the sending group.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}

	claims, err := h.auth.Principal(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Validation("invalid input"))
		return
	}
	if req.SenderGroupID == "" {
		respond.Error(w, apperrors.Validation("sender_group_id is required"))
		return
	}
	if req.Content == "" {
		respond.Error(w, apperrors.Validation("message content is required"))
		return
	}
	if (req.RecipientGroupID == "") == (req.CommunityID == "") {
		respond.Error(w, apperrors.Validation("exactly one of recipient_group_id and community_id is required"))
		return
	}

	isMember, err := h.gate.IsMember(r.Context(), claims.UserID, req.SenderGroupID)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	if !isMember {
		respond.Error(w, apperrors.Forbidden("not a member of the sending group"))
		return
	}

	if req.RecipientGroupID != "" {
		if _, err := h.store.GetGroup(r.Context(), req.RecipientGroupID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respond.Error(w, apperrors.NotFound("recipient group not found"))
				return
			}
			respond.Error(w, apperrors.Storage(err))
			return
		}
	}

	message := &content.Message{
		SenderGroupID:    req.SenderGroupID,
		RecipientGroupID: req.RecipientGroupID,
		CommunityID:      req.CommunityID,
		Content:          req.Content,
		CreatedAt:        h.now(),
	}
	if err := h.store.CreateMessage(r.Context(), message); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusOK, message)
}

// List returns a group's messages, both directions, oldest first.
// Restricted to members of that group.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims, err := h.auth.Principal(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	groupID := r.URL.Query().Get("group_id")
	if groupID == "" {
		respond.Error(w, apperrors.Validation("group_id is required"))
		return
	}

	isMember, err := h.gate.IsMember(r.Context(), claims.UserID, groupID)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	if !isMember {
		respond.Error(w, apperrors.Forbidden("not a member of this group"))
		return
	}

	messages, err := h.store.ListMessages(r.Context(), groupID)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, messages)
}
