package services

import (
	"context"
	"testing"

	"github.com/Alex20507/tg-card/internal/store"
	"github.com/Alex20507/tg-card/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[int64]types.User
}

func (f *fakeUserRepo) GetByIdentity(_ context.Context, identity int64) (types.User, error) {
	user, ok := f.users[identity]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Ensure(_ context.Context, identity int64, displayName string, role types.Role) error {
	if _, ok := f.users[identity]; ok {
		return nil
	}
	f.users[identity] = types.User{Identity: identity, DisplayName: displayName, Role: role}
	return nil
}

func (f *fakeUserRepo) SetRole(_ context.Context, identity int64, displayName string, role types.Role) error {
	user, ok := f.users[identity]
	if !ok {
		user = types.User{Identity: identity, DisplayName: displayName}
	}
	user.Role = role
	f.users[identity] = user
	return nil
}

func (f *fakeUserRepo) Revoke(_ context.Context, identity int64) error {
	user, ok := f.users[identity]
	if !ok {
		return store.ErrNotFound
	}
	user.Role = types.RoleUser
	f.users[identity] = user
	return nil
}

type fakeLogRepo struct {
	entries []types.LogEntry
}

func (f *fakeLogRepo) Append(_ context.Context, entry types.LogEntry) (types.LogEntry, error) {
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeLogRepo) Recent(_ context.Context, n int) ([]types.LogEntry, error) {
	var out []types.LogEntry
	for i := len(f.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func TestAuditRecordSnapshotsName(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]types.User{
		1: {Identity: 1, DisplayName: "Ann", Role: types.RoleAdmin},
	}}
	logs := &fakeLogRepo{}
	audit := NewAuditLog(logs, NewDirectory(users))
	ctx := context.Background()

	require.NoError(t, audit.Record(ctx, 1, ActionAddCard, "ann"))

	// A later profile change must not rewrite the recorded name.
	user := users.users[1]
	user.DisplayName = "Renamed"
	users.users[1] = user

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, "Ann", entry.ActorName)
	assert.Equal(t, ActionAddCard, entry.Action)
	assert.Equal(t, "ann", entry.Target)
	assert.NotEmpty(t, entry.EventID)
}

func TestAuditRecordUnknownActorFallsBackToIdentity(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]types.User{}}
	logs := &fakeLogRepo{}
	audit := NewAuditLog(logs, NewDirectory(users))

	require.NoError(t, audit.Record(context.Background(), 99, ActionSetStatus, "U1"))

	require.Len(t, logs.entries, 1)
	assert.Equal(t, "99", logs.entries[0].ActorName)
}

func TestAuditRecentClampsLimit(t *testing.T) {
	logs := &fakeLogRepo{}
	audit := NewAuditLog(logs, NewDirectory(&fakeUserRepo{users: map[int64]types.User{}}))
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		require.NoError(t, audit.Record(ctx, 1, ActionAddCard, "x"))
	}

	entries, err := audit.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, defaultRecentEntries)
}
