// Package groups serves group creation, joining and listing. Group
// creation and the founding admin membership are one atomic store
// operation, so a group is never observable without an admin.
package groups

import (
	"encoding/json"
	"errors"
	"net/http"

	"tangle-backend/apperrors"
	"tangle-backend/controllers/authentication"
	"tangle-backend/controllers/respond"
	"tangle-backend/membership"
	groupmodels "tangle-backend/models/groups"
	"tangle-backend/storage"
)

// Handler serves the /groups endpoints.
type Handler struct {
	store storage.Store
	auth  *authentication.Service
	gate  *membership.Authority
}

// NewHandler creates the groups handler.
func NewHandler(store storage.Store, auth *authentication.Service, gate *membership.Authority) *Handler {
	return &Handler{store: store, auth: auth, gate: gate}
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Zones       string `json:"zones"`
	AvatarURL   string `json:"avatar_url"`
	CoverURL    string `json:"cover_url"`
}

type joinGroupRequest struct {
	GroupID string `json:"group_id"`
}

// Create founds a group with the caller as admin.
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

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Validation("invalid input"))
		return
	}
	if req.Name == "" {
		respond.Error(w, apperrors.Validation("group name is required"))
		return
	}

	group := &groupmodels.Group{
		Name:        req.Name,
		Description: req.Description,
		Zones:       req.Zones,
		AvatarURL:   req.AvatarURL,
		CoverURL:    req.CoverURL,
	}
	if err := h.store.CreateGroup(r.Context(), group, claims.UserID); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusCreated, group)
}

// Join adds the caller to a group as a plain member.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}

	claims, err := h.auth.Principal(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var req joinGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Validation("invalid input"))
		return
	}
	if req.GroupID == "" {
		respond.Error(w, apperrors.Validation("group_id is required"))
		return
	}

	if _, err := h.store.GetGroup(r.Context(), req.GroupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, apperrors.NotFound("group not found"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}

	member := &groupmodels.GroupMember{
		GroupID: req.GroupID,
		UserID:  claims.UserID,
		Role:    groupmodels.RoleMember,
	}
	if err := h.store.AddMember(r.Context(), member); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			respond.Error(w, apperrors.Conflict("already a member of this group"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusCreated, member)
}

type groupWithRole struct {
	groupmodels.Group
	Role string `json:"role"`
}

// Mine lists the caller's groups with their roles.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, err := h.auth.Principal(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	result, memberships, err := h.store.ListGroupsForUser(r.Context(), claims.UserID)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	roles := make(map[string]string, len(memberships))
	for _, m := range memberships {
		roles[m.GroupID] = m.Role
	}
	out := make([]groupWithRole, len(result))
	for i, g := range result {
		out[i] = groupWithRole{Group: g, Role: roles[g.ID]}
	}
	respond.JSON(w, http.StatusOK, out)
}

// Get returns one group by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respond.Error(w, apperrors.Validation("id is required"))
		return
	}
	group, err := h.store.GetGroup(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, apperrors.NotFound("group not found"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, group)
}

// Members lists a group's members. Restricted to members of that
// group.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.store.ListMembers(r.Context(), groupID)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, members)
}
