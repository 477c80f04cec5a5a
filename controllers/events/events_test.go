package events

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tangle-backend/controllers/authentication"
	"tangle-backend/membership"
	"tangle-backend/models/content"
	"tangle-backend/models/groups"
	"tangle-backend/models/users"
	"tangle-backend/storage/memstore"
)

type fixture struct {
	store *memstore.MemStore
	auth  *authentication.Service
	h     *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	auth, err := authentication.New(store, "test-secret", "test-session-key", time.Hour)
	if err != nil {
		t.Fatalf("authentication.New failed: %v", err)
	}
	return &fixture{
		store: store,
		auth:  auth,
		h:     NewHandler(store, auth, membership.NewAuthority(store)),
	}
}

func (f *fixture) register(t *testing.T, email string) (string, string) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": "hunter22"})
	rec := httptest.NewRecorder()
	f.auth.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s status = %d", email, rec.Code)
	}
	var resp struct {
		Token string     `json:"token"`
		User  users.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return resp.Token, resp.User.ID
}

func (f *fixture) foundGroup(t *testing.T, userID, name string) string {
	t.Helper()
	group := &groups.Group{Name: name}
	if err := f.store.CreateGroup(context.Background(), group, userID); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group.ID
}

func (f *fixture) createEvent(t *testing.T, token string, payload map[string]string) content.Event {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.h.Create(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create event status = %d, body %s", rec.Code, rec.Body.String())
	}
	var event content.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	return event
}

func (f *fixture) listEvents(t *testing.T, token, query string) []content.Event {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/events"+query, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.h.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list events status = %d, body %s", rec.Code, rec.Body.String())
	}
	var events []content.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("failed to decode events: %v", err)
	}
	return events
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t)
	token, userID := f.register(t, "ana@example.com")
	groupID := f.foundGroup(t, userID, "Los Vecinos")

	cases := []struct {
		name    string
		payload map[string]string
	}{
		{"missing title", map[string]string{"group_id": groupID, "description": "d", "event_date": "2026-09-01T20:00:00Z"}},
		{"missing description", map[string]string{"group_id": groupID, "title": "t", "event_date": "2026-09-01T20:00:00Z"}},
		{"missing date", map[string]string{"group_id": groupID, "title": "t", "description": "d"}},
		{"bad date", map[string]string{"group_id": groupID, "title": "t", "description": "d", "event_date": "next friday"}},
		{"bad visibility", map[string]string{"group_id": groupID, "title": "t", "description": "d", "event_date": "2026-09-01T20:00:00Z", "visibility": "secret"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.payload)
			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			f.h.Create(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateEventDefaultsToOpen(t *testing.T) {
	f := newFixture(t)
	token, userID := f.register(t, "ana@example.com")
	groupID := f.foundGroup(t, userID, "Los Vecinos")

	event := f.createEvent(t, token, map[string]string{
		"group_id":    groupID,
		"title":       "Concierto",
		"description": "Tocata en la plaza",
		"event_date":  "2026-09-12T20:00:00Z",
	})
	if event.Visibility != content.VisibilityOpen {
		t.Errorf("visibility = %q, want %q", event.Visibility, content.VisibilityOpen)
	}
}

func TestListEventsFilterAndOrder(t *testing.T) {
	f := newFixture(t)
	token, userID := f.register(t, "ana@example.com")
	groupID := f.foundGroup(t, userID, "Los Vecinos")

	// Created out of date order on purpose.
	f.createEvent(t, token, map[string]string{
		"group_id": groupID, "title": "Tarde", "description": "d",
		"event_date": "2026-10-01T20:00:00Z",
	})
	f.createEvent(t, token, map[string]string{
		"group_id": groupID, "title": "Cerrado", "description": "d",
		"event_date": "2026-09-15T20:00:00Z", "visibility": content.VisibilityRequest,
	})
	f.createEvent(t, token, map[string]string{
		"group_id": groupID, "title": "Temprano", "description": "d",
		"event_date": "2026-09-01T20:00:00Z",
	})

	open := f.listEvents(t, token, "?visibility=open")
	if len(open) != 2 {
		t.Fatalf("open events = %d, want 2", len(open))
	}
	if open[0].Title != "Temprano" || open[1].Title != "Tarde" {
		t.Errorf("open ordering = [%s, %s], want date ascending", open[0].Title, open[1].Title)
	}

	all := f.listEvents(t, token, "")
	if len(all) != 3 {
		t.Fatalf("all events = %d, want 3", len(all))
	}
	if !all[0].EventDate.Before(all[1].EventDate) || !all[1].EventDate.Before(all[2].EventDate) {
		t.Errorf("events not ordered ascending by date: %v, %v, %v",
			all[0].EventDate, all[1].EventDate, all[2].EventDate)
	}

	// An unknown visibility value filters nothing out.
	if got := f.listEvents(t, token, "?visibility=secret"); len(got) != 3 {
		t.Errorf("unknown visibility filter returned %d events, want 3", len(got))
	}
}

func TestRequestEventRedaction(t *testing.T) {
	f := newFixture(t)
	memberToken, memberID := f.register(t, "ana@example.com")
	strangerToken, _ := f.register(t, "bruno@example.com")
	groupID := f.foundGroup(t, memberID, "Los Vecinos")

	f.createEvent(t, memberToken, map[string]string{
		"group_id":      groupID,
		"title":         "Fiesta privada",
		"description":   "Solo con pase",
		"event_date":    "2026-09-20T22:00:00Z",
		"visibility":    content.VisibilityRequest,
		"location":      "Calle Falsa 123",
		"location_link": "https://maps.example.com/x",
		"ticket_link":   "https://tickets.example.com/x",
	})

	assertRedacted := func(t *testing.T, e content.Event) {
		t.Helper()
		if e.Location != "" || e.LocationLink != "" || e.TicketLink != "" {
			t.Errorf("expected redacted fields, got location=%q location_link=%q ticket_link=%q",
				e.Location, e.LocationLink, e.TicketLink)
		}
	}

	anon := f.listEvents(t, "", "")
	assertRedacted(t, anon[0])
	if anon[0].Title != "Fiesta privada" {
		t.Errorf("title must survive redaction, got %q", anon[0].Title)
	}

	stranger := f.listEvents(t, strangerToken, "")
	assertRedacted(t, stranger[0])

	member := f.listEvents(t, memberToken, "")
	if member[0].Location != "Calle Falsa 123" {
		t.Errorf("member must see full event, got location %q", member[0].Location)
	}
}

func TestAccessRequestApprovalFlow(t *testing.T) {
	f := newFixture(t)
	adminToken, adminID := f.register(t, "ana@example.com")
	guestToken, guestID := f.register(t, "bruno@example.com")
	outsiderToken, _ := f.register(t, "carla@example.com")
	groupID := f.foundGroup(t, adminID, "Los Vecinos")

	event := f.createEvent(t, adminToken, map[string]string{
		"group_id":    groupID,
		"title":       "Fiesta privada",
		"description": "Solo con pase",
		"event_date":  "2026-09-20T22:00:00Z",
		"visibility":  content.VisibilityRequest,
		"location":    "Calle Falsa 123",
	})

	request := func(token, eventID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/events/access/request?event_id="+eventID, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.h.RequestAccess(rec, req)
		return rec
	}
	approve := func(token, eventID, userID string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"event_id": eventID, "user_id": userID})
		req := httptest.NewRequest(http.MethodPost, "/events/access/approve", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.h.ApproveAccess(rec, req)
		return rec
	}

	if rec := request(guestToken, "no-such-event"); rec.Code != http.StatusNotFound {
		t.Errorf("request for unknown event: status = %d, want 404", rec.Code)
	}
	if rec := request(guestToken, event.ID); rec.Code != http.StatusAccepted {
		t.Fatalf("request status = %d, want 202", rec.Code)
	}
	// Repeating is a no-op, not a conflict.
	if rec := request(guestToken, event.ID); rec.Code != http.StatusAccepted {
		t.Errorf("repeated request status = %d, want 202", rec.Code)
	}

	// A pending request grants nothing yet.
	pending := f.listEvents(t, guestToken, "")
	if pending[0].Location != "" {
		t.Errorf("pending requester must still see redacted event")
	}

	if rec := approve(outsiderToken, event.ID, guestID); rec.Code != http.StatusForbidden {
		t.Errorf("non-admin approval: status = %d, want 403", rec.Code)
	}
	if rec := approve(adminToken, event.ID, "no-such-user"); rec.Code != http.StatusNotFound {
		t.Errorf("approval of missing request: status = %d, want 404", rec.Code)
	}
	if rec := approve(adminToken, event.ID, guestID); rec.Code != http.StatusOK {
		t.Fatalf("approval status = %d, body %s", rec.Code, rec.Body.String())
	}

	approved := f.listEvents(t, guestToken, "")
	if approved[0].Location != "Calle Falsa 123" {
		t.Errorf("approved requester must see full event, got location %q", approved[0].Location)
	}
}
