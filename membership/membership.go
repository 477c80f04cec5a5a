// Package membership decides whether a principal may act on a
// group's content. It is a pure read over membership rows: absence
// means "not a member", never a failure.
package membership

import (
	"context"
	"errors"

	"tangle-backend/models/groups"
	"tangle-backend/storage"
)

// Authority answers membership questions against the store. Every
// write path gates on it before persisting; read paths use it only
// where a listing is scoped to a caller's group.
type Authority struct {
	store storage.Store
}

// NewAuthority creates an Authority over the given store.
func NewAuthority(store storage.Store) *Authority {
	return &Authority{store: store}
}

// IsMember reports whether the user holds any role in the group.
func (a *Authority) IsMember(ctx context.Context, userID, groupID string) (bool, error) {
	if userID == "" || groupID == "" {
		return false, nil
	}
	_, err := a.store.GetMembership(ctx, groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RoleOf returns the user's role in the group. The second return is
// false when the user is not a member.
func (a *Authority) RoleOf(ctx context.Context, userID, groupID string) (string, bool, error) {
	if userID == "" || groupID == "" {
		return "", false, nil
	}
	member, err := a.store.GetMembership(ctx, groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return member.Role, true, nil
}

// IsAdmin reports whether the user is an admin of the group.
func (a *Authority) IsAdmin(ctx context.Context, userID, groupID string) (bool, error) {
	role, ok, err := a.RoleOf(ctx, userID, groupID)
	if err != nil || !ok {
		return false, err
	}
	return role == groups.RoleAdmin, nil
}
