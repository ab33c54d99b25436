package services

import (
	"context"
	"errors"

	"github.com/Alex20507/tg-card/internal/store"
	"github.com/Alex20507/tg-card/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByIdentity(ctx context.Context, identity int64) (types.User, error)
	Ensure(ctx context.Context, identity int64, displayName string, role types.Role) error
	SetRole(ctx context.Context, identity int64, displayName string, role types.Role) error
	Revoke(ctx context.Context, identity int64) error
}

// Directory maps chat identities to roles and display names. It is
// pure storage: who may call Grant or Revoke is the router's decision.
type Directory struct {
	repo UserRepository
}

func NewDirectory(repo UserRepository) *Directory {
	return &Directory{repo: repo}
}

// RoleOf resolves the identity's role. Unknown identities get RoleNone,
// which every gated operation denies.
func (d *Directory) RoleOf(ctx context.Context, identity int64) (types.Role, error) {
	user, err := d.repo.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.RoleNone, nil
		}
		return types.RoleNone, err
	}
	return user.Role, nil
}

// DisplayNameOf resolves the identity's display name, or "" if unknown.
func (d *Directory) DisplayNameOf(ctx context.Context, identity int64) (string, error) {
	user, err := d.repo.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.DisplayName, nil
}

// EnsureRegistered onboards the identity as a plain user on first
// contact. Idempotent: repeat calls never error and never change an
// existing row.
func (d *Directory) EnsureRegistered(ctx context.Context, identity int64, displayName string) error {
	return d.repo.Ensure(ctx, identity, displayName, types.RoleUser)
}

// GrantAdmin promotes the identity to admin, registering it if needed.
func (d *Directory) GrantAdmin(ctx context.Context, identity int64, displayName string) error {
	return d.repo.SetRole(ctx, identity, displayName, types.RoleAdmin)
}

// Revoke downgrades the identity to a plain user. The row is kept so
// the identity can still be looked up later.
func (d *Directory) Revoke(ctx context.Context, identity int64) error {
	return d.repo.Revoke(ctx, identity)
}
