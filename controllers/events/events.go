// Package events serves event creation, listing and the access
// approval flow for request-tier events. Sensitive fields of a
// request event are redacted server-side for viewers who are neither
// members of the owning group nor approved.
package events

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

// Handler serves the /events endpoints.
type Handler struct {
	store storage.Store
	auth  *authentication.Service
	gate  *membership.Authority
	now   func() time.Time
}

// NewHandler creates the events handler.
func NewHandler(store storage.Store, auth *authentication.Service, gate *membership.Authority) *Handler {
	return &Handler{
		store: store,
		auth:  auth,
		gate:  gate,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type createEventRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	EventDate    string `json:"event_date"`
	Location     string `json:"location"`
	LocationLink string `json:"location_link"`
	TicketLink   string `json:"ticket_link"`
	FlyerURL     string `json:"flyer_url"`
	Visibility   string `json:"visibility"`
	GroupID      string `json:"group_id"`
}

// Create publishes an event. Title, description and date are
// mandatory; visibility defaults to open.
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

	var req createEventRequest
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

	if req.Title == "" || req.Description == "" || req.EventDate == "" {
		respond.Error(w, apperrors.Validation("title, description and event_date are required"))
		return
	}
	eventDate, err := time.Parse(time.RFC3339, req.EventDate)
	if err != nil {
		respond.Error(w, apperrors.Validation("event_date must be RFC 3339"))
		return
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = content.VisibilityOpen
	}
	if visibility != content.VisibilityOpen && visibility != content.VisibilityRequest {
		respond.Error(w, apperrors.Validation("visibility must be open or request"))
		return
	}

	now := h.now()
	event := &content.Event{
		GroupID:      req.GroupID,
		Title:        req.Title,
		Description:  req.Description,
		EventDate:    eventDate.UTC(),
		Location:     req.Location,
		LocationLink: req.LocationLink,
		TicketLink:   req.TicketLink,
		FlyerURL:     req.FlyerURL,
		Visibility:   visibility,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.CreateEvent(r.Context(), event); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusOK, event)
}

// List returns events ordered by date ascending, with optional
// group_id and visibility filters. Absent or blank filters mean no
// filter. Request-tier events are redacted unless the viewer may see
// them in full.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := storage.EventFilter{
		GroupID:    r.URL.Query().Get("group_id"),
		Visibility: r.URL.Query().Get("visibility"),
	}
	// An unknown visibility value filters nothing out rather than
	// failing the request.
	if filter.Visibility != content.VisibilityOpen && filter.Visibility != content.VisibilityRequest {
		filter.Visibility = ""
	}

	events, err := h.store.ListEvents(r.Context(), filter)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	// Anonymous viewers always get redacted request events; an
	// authenticated principal may see full fields per event.
	var viewerID string
	if claims, err := h.auth.Principal(r); err == nil {
		viewerID = claims.UserID
	}

	out := make([]content.Event, len(events))
	for i, event := range events {
		if h.mayViewFull(r, viewerID, event) {
			out[i] = event
		} else {
			out[i] = event.Redact()
		}
	}
	respond.JSON(w, http.StatusOK, out)
}

// mayViewFull reports whether the viewer sees a request event's
// location and ticket fields: members of the owning group and
// approved requesters do.
func (h *Handler) mayViewFull(r *http.Request, viewerID string, event content.Event) bool {
	if event.Visibility != content.VisibilityRequest {
		return true
	}
	if viewerID == "" {
		return false
	}
	if isMember, err := h.gate.IsMember(r.Context(), viewerID, event.GroupID); err == nil && isMember {
		return true
	}
	access, err := h.store.GetEventAccess(r.Context(), event.ID, viewerID)
	return err == nil && access.Status == content.AccessApproved
}

// RequestAccess records a pending access request for a request-tier
// event. Repeating the request is a no-op.
func (h *Handler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}

	claims, err := h.auth.Principal(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		respond.Error(w, apperrors.Validation("event_id is required"))
		return
	}
	if _, err := h.store.GetEvent(r.Context(), eventID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, apperrors.NotFound("event not found"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}

	access := &content.EventAccess{
		EventID:   eventID,
		UserID:    claims.UserID,
		Status:    content.AccessPending,
		CreatedAt: h.now(),
	}
	if err := h.store.RequestEventAccess(r.Context(), access); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusAccepted, map[string]string{"status": content.AccessPending})
}

type approveAccessRequest struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

// ApproveAccess grants a pending request. Only admins of the owning
// group may approve.
func (h *Handler) ApproveAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}

	claims, err := h.auth.Principal(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var req approveAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Validation("invalid input"))
		return
	}
	if req.EventID == "" || req.UserID == "" {
		respond.Error(w, apperrors.Validation("event_id and user_id are required"))
		return
	}

	event, err := h.store.GetEvent(r.Context(), req.EventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, apperrors.NotFound("event not found"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}

	isAdmin, err := h.gate.IsAdmin(r.Context(), claims.UserID, event.GroupID)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	if !isAdmin {
		respond.Error(w, apperrors.Forbidden("only group admins may approve access"))
		return
	}

	if err := h.store.ApproveEventAccess(r.Context(), req.EventID, req.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, apperrors.NotFound("access request not found"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": content.AccessApproved})
}
