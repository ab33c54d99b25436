package services

import (
	"context"
	"testing"

	"github.com/Alex20507/tg-card/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryRoleOfUnknown(t *testing.T) {
	directory := NewDirectory(&fakeUserRepo{users: map[int64]types.User{}})

	role, err := directory.RoleOf(context.Background(), 404)
	require.NoError(t, err)
	assert.Equal(t, types.RoleNone, role)
}

func TestDirectoryEnsureRegisteredThenGrant(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]types.User{}}
	directory := NewDirectory(users)
	ctx := context.Background()

	require.NoError(t, directory.EnsureRegistered(ctx, 7, "Ann"))

	role, err := directory.RoleOf(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, types.RoleUser, role)

	require.NoError(t, directory.GrantAdmin(ctx, 7, "Ann"))

	role, err = directory.RoleOf(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, role)

	name, err := directory.DisplayNameOf(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)
}
