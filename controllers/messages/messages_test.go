package messages

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

func (f *fixture) send(t *testing.T, token string, payload map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.h.Send(rec, req)
	return rec
}

func TestSendMessageDestinationValidation(t *testing.T) {
	f := newFixture(t)
	token, userID := f.register(t, "ana@example.com")
	senderID := f.foundGroup(t, userID, "Los Vecinos")
	otherID := f.foundGroup(t, userID, "La Banda")

	community := &content.Community{Name: "Barrio Norte"}
	if err := f.store.CreateCommunity(context.Background(), community); err != nil {
		t.Fatalf("CreateCommunity failed: %v", err)
	}

	// No destination at all.
	if rec := f.send(t, token, map[string]string{
		"sender_group_id": senderID, "content": "hola",
	}); rec.Code != http.StatusBadRequest {
		t.Errorf("no destination: status = %d, want 400", rec.Code)
	}

	// Both destinations at once.
	if rec := f.send(t, token, map[string]string{
		"sender_group_id": senderID, "content": "hola",
		"recipient_group_id": otherID, "community_id": community.ID,
	}); rec.Code != http.StatusBadRequest {
		t.Errorf("both destinations: status = %d, want 400", rec.Code)
	}

	if rec := f.send(t, token, map[string]string{
		"sender_group_id": senderID, "content": "hola", "recipient_group_id": otherID,
	}); rec.Code != http.StatusOK {
		t.Errorf("group destination: status = %d, want 200", rec.Code)
	}
	if rec := f.send(t, token, map[string]string{
		"sender_group_id": senderID, "content": "hola", "community_id": community.ID,
	}); rec.Code != http.StatusOK {
		t.Errorf("community destination: status = %d, want 200", rec.Code)
	}

	if rec := f.send(t, token, map[string]string{
		"sender_group_id": senderID, "content": "hola", "recipient_group_id": "no-such-group",
	}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown recipient: status = %d, want 404", rec.Code)
	}
	if rec := f.send(t, token, map[string]string{
		"sender_group_id": senderID, "recipient_group_id": otherID,
	}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty content: status = %d, want 400", rec.Code)
	}
}

func TestSendMessageRequiresSenderMembership(t *testing.T) {
	f := newFixture(t)
	_, anaID := f.register(t, "ana@example.com")
	strangerToken, _ := f.register(t, "bruno@example.com")
	senderID := f.foundGroup(t, anaID, "Los Vecinos")
	otherID := f.foundGroup(t, anaID, "La Banda")

	rec := f.send(t, strangerToken, map[string]string{
		"sender_group_id": senderID, "content": "hola", "recipient_group_id": otherID,
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestListMessagesBothDirectionsOldestFirst(t *testing.T) {
	f := newFixture(t)
	anaToken, anaID := f.register(t, "ana@example.com")
	brunoToken, brunoID := f.register(t, "bruno@example.com")
	carlaToken, _ := f.register(t, "carla@example.com")
	vecinosID := f.foundGroup(t, anaID, "Los Vecinos")
	bandaID := f.foundGroup(t, brunoID, "La Banda")

	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	f.h.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	if rec := f.send(t, anaToken, map[string]string{
		"sender_group_id": vecinosID, "content": "primero", "recipient_group_id": bandaID,
	}); rec.Code != http.StatusOK {
		t.Fatalf("send status = %d", rec.Code)
	}
	if rec := f.send(t, brunoToken, map[string]string{
		"sender_group_id": bandaID, "content": "segundo", "recipient_group_id": vecinosID,
	}); rec.Code != http.StatusOK {
		t.Fatalf("send status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/messages?group_id="+vecinosID, nil)
	req.Header.Set("Authorization", "Bearer "+anaToken)
	rec := httptest.NewRecorder()
	f.h.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body.String())
	}

	var msgs []content.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("failed to decode messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2 (both directions)", len(msgs))
	}
	if msgs[0].Content != "primero" || msgs[1].Content != "segundo" {
		t.Errorf("ordering = [%s, %s], want oldest first", msgs[0].Content, msgs[1].Content)
	}

	// A non-member may not read the conversation.
	req = httptest.NewRequest(http.MethodGet, "/messages?group_id="+vecinosID, nil)
	req.Header.Set("Authorization", "Bearer "+carlaToken)
	rec = httptest.NewRecorder()
	f.h.List(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-member list status = %d, want 403", rec.Code)
	}
}
