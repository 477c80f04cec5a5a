package groups

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

// register creates a user and returns a bearer token for it.
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

func (f *fixture) createGroup(t *testing.T, token, name string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"name": name})
	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.h.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group status = %d, body %s", rec.Code, rec.Body.String())
	}
	var group struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &group); err != nil {
		t.Fatalf("failed to decode group: %v", err)
	}
	return group.ID
}

func TestCreateGroupMakesFounderAdmin(t *testing.T) {
	f := newFixture(t)
	token, userID := f.register(t, "ana@example.com")

	groupID := f.createGroup(t, token, "Los Vecinos")

	member, err := f.store.GetMembership(context.Background(), groupID, userID)
	if err != nil {
		t.Fatalf("expected founding membership, got %v", err)
	}
	if member.Role != "admin" {
		t.Errorf("founder role = %q, want admin", member.Role)
	}

	members, err := f.store.ListMembers(context.Background(), groupID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("expected exactly one founding membership, got %d", len(members))
	}
}

func TestCreateGroupRequiresAuthAndName(t *testing.T) {
	f := newFixture(t)
	token, _ := f.register(t, "ana@example.com")

	body, _ := json.Marshal(map[string]string{"name": "Sin Login"})
	rec := httptest.NewRecorder()
	f.h.Create(rec, httptest.NewRequest(http.MethodPost, "/groups", bytes.NewReader(body)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without principal, got %d", rec.Code)
	}

	body, _ = json.Marshal(map[string]string{"name": ""})
	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	f.h.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty name, got %d", rec.Code)
	}
}

func TestJoinGroup(t *testing.T) {
	f := newFixture(t)
	founderToken, _ := f.register(t, "ana@example.com")
	joinerToken, joinerID := f.register(t, "bruno@example.com")
	groupID := f.createGroup(t, founderToken, "Los Vecinos")

	join := func(token string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"group_id": groupID})
		req := httptest.NewRequest(http.MethodPost, "/groups/join", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.h.Join(rec, req)
		return rec
	}

	if rec := join(joinerToken); rec.Code != http.StatusCreated {
		t.Fatalf("join status = %d, body %s", rec.Code, rec.Body.String())
	}

	member, err := f.store.GetMembership(context.Background(), groupID, joinerID)
	if err != nil {
		t.Fatalf("expected membership after join, got %v", err)
	}
	if member.Role != "member" {
		t.Errorf("joiner role = %q, want member", member.Role)
	}

	// A second join of the same pair violates uniqueness.
	if rec := join(joinerToken); rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate join, got %d", rec.Code)
	}
}

func TestJoinUnknownGroupIsNotFound(t *testing.T) {
	f := newFixture(t)
	token, _ := f.register(t, "ana@example.com")

	body, _ := json.Marshal(map[string]string{"group_id": "no-such-group"})
	req := httptest.NewRequest(http.MethodPost, "/groups/join", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.h.Join(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown group, got %d", rec.Code)
	}
}

func TestMineListsGroupsWithRoles(t *testing.T) {
	f := newFixture(t)
	token, _ := f.register(t, "ana@example.com")
	f.createGroup(t, token, "Los Vecinos")
	f.createGroup(t, token, "Colectivo Norte")

	req := httptest.NewRequest(http.MethodGet, "/groups/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.h.Mine(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("mine status = %d", rec.Code)
	}

	var mine []struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("failed to decode mine: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(mine))
	}
	for _, g := range mine {
		if g.Role != "admin" {
			t.Errorf("group %q role = %q, want admin", g.Name, g.Role)
		}
	}
}

func TestMembersRequiresMembership(t *testing.T) {
	f := newFixture(t)
	founderToken, _ := f.register(t, "ana@example.com")
	strangerToken, _ := f.register(t, "bruno@example.com")
	groupID := f.createGroup(t, founderToken, "Los Vecinos")

	req := httptest.NewRequest(http.MethodGet, "/groups/members?group_id="+groupID, nil)
	req.Header.Set("Authorization", "Bearer "+strangerToken)
	rec := httptest.NewRecorder()
	f.h.Members(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-member, got %d", rec.Code)
	}
}
