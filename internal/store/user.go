package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Alex20507/tg-card/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByIdentity(ctx context.Context, identity int64) (types.User, error) {
	const query = `
		SELECT identity, role, display_name, created_at, updated_at
		FROM users
		WHERE identity = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, identity).Scan(
		&user.Identity,
		&user.Role,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// Ensure registers the identity with the given role if it is not known
// yet. Repeat calls are no-ops: an existing row keeps its role and
// display name.
func (r *UserRepository) Ensure(ctx context.Context, identity int64, displayName string, role types.Role) error {
	now := time.Now()

	const query = `
		INSERT INTO users (identity, role, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identity) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, identity, role, displayName, now, now)
	return err
}

// SetRole upserts the identity with the given role. An unknown identity
// is registered on the spot so an admin can be appointed before their
// first contact with the bot.
func (r *UserRepository) SetRole(ctx context.Context, identity int64, displayName string, role types.Role) error {
	now := time.Now()

	const query = `
		INSERT INTO users (identity, role, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identity) DO UPDATE SET role = $2, updated_at = $5`
	_, err := r.db.ExecContext(ctx, query, identity, role, displayName, now, now)
	return err
}

// Revoke downgrades the identity to the plain user role. The row is
// kept so display-name attribution for the action log stays intact.
func (r *UserRepository) Revoke(ctx context.Context, identity int64) error {
	const query = `
		UPDATE users
		SET role = $1,
			updated_at = $2
		WHERE identity = $3`
	result, err := r.db.ExecContext(ctx, query, types.RoleUser, time.Now(), identity)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
