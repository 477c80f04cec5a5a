// Package notifications serves the notification feed of a group.
package notifications

import (
	"errors"
	"net/http"

	"tangle-backend/apperrors"
	"tangle-backend/controllers/authentication"
	"tangle-backend/controllers/respond"
	"tangle-backend/membership"
	"tangle-backend/storage"
)

// Handler serves the /notifications endpoints.
type Handler struct {
	store storage.Store
	auth  *authentication.Service
	gate  *membership.Authority
}

// NewHandler creates the notifications handler.
func NewHandler(store storage.Store, auth *authentication.Service, gate *membership.Authority) *Handler {
	return &Handler{store: store, auth: auth, gate: gate}
}

// requireGroup resolves the principal and checks membership of the
// group named in the query string.
func (h *Handler) requireGroup(r *http.Request) (string, error) {
	claims, err := h.auth.Principal(r)
	if err != nil {
		return "", err
	}
	groupID := r.URL.Query().Get("group_id")
	if groupID == "" {
		return "", apperrors.Validation("group_id is required")
	}
	isMember, err := h.gate.IsMember(r.Context(), claims.UserID, groupID)
	if err != nil {
		return "", apperrors.Storage(err)
	}
	if !isMember {
		return "", apperrors.Forbidden("not a member of this group")
	}
	return groupID, nil
}

// List returns a group's notifications, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := h.requireGroup(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	notifications, err := h.store.ListNotifications(r.Context(), groupID)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, notifications)
}

// MarkRead marks one notification as read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}

	groupID, err := h.requireGroup(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		respond.Error(w, apperrors.Validation("id is required"))
		return
	}

	if err := h.store.MarkNotificationRead(r.Context(), id, groupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, apperrors.NotFound("notification not found"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// Delete removes one notification.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}

	groupID, err := h.requireGroup(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		respond.Error(w, apperrors.Validation("id is required"))
		return
	}

	if err := h.store.DeleteNotification(r.Context(), id, groupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, apperrors.NotFound("notification not found"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
