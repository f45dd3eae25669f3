package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-portal/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	id := createTestUser(t, s, "abesuni", "Abe@Gym.test", models.RoleGymMember)
	assert.Positive(t, id)

	tests := []struct {
		name    string
		user    models.NewUser
		wantErr error
	}{
		{
			name:    "duplicate login",
			user:    models.NewUser{Login: "abesuni", Email: "other@gym.test", PasswordHash: "h", Role: models.RoleGymMember},
			wantErr: ErrUsernameTaken,
		},
		{
			name:    "duplicate email ignores case",
			user:    models.NewUser{Login: "abesuni2", Email: "abe@gym.test", PasswordHash: "h", Role: models.RoleGymMember},
			wantErr: ErrEmailTaken,
		},
		{
			name: "users without email do not collide",
			user: models.NewUser{Login: "noemail1", PasswordHash: "h", Role: models.RoleSubscriber},
		},
		{
			name: "second user without email",
			user: models.NewUser{Login: "noemail2", PasswordHash: "h", Role: models.RoleSubscriber},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateUser(ctx, tt.user)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStorage_ExistenceChecks(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	id := createTestUser(t, s, "trainer_bob", "bob@gym.test", models.RoleGymTrainer)

	exists, err := s.UsernameExists(ctx, "trainer_bob")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.UsernameExists(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = s.EmailExists(ctx, " BOB@gym.test ")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.UserExists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.UserExists(ctx, id+1000)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStorage_GetUser(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	id := createTestUser(t, s, "headcoach", "coach@gym.test", models.RoleGymAdmin)

	u, err := s.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "headcoach", u.Login)
	assert.Equal(t, "coach@gym.test", u.Email)
	assert.Equal(t, models.RoleGymAdmin, u.Role)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := s.GetUserByLogin(ctx, "COACH@gym.test")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	byLogin, err := s.GetUserByLogin(ctx, "headcoach")
	require.NoError(t, err)
	assert.Equal(t, id, byLogin.ID)

	_, err = s.GetUser(ctx, id+1000)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.GetUserByLogin(ctx, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_Meta(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	id := createTestUser(t, s, "abesuni", "", models.RoleGymMember)

	value, err := s.GetMeta(ctx, id, models.MetaMembershipDuration)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, s.SetMeta(ctx, id, models.MetaMembershipDuration, "20240131"))
	require.NoError(t, s.SetMeta(ctx, id, models.MetaFullName, "Abe Suni"))
	require.NoError(t, s.SetMeta(ctx, id, models.MetaMembershipDuration, "20240301"))

	value, err = s.GetMeta(ctx, id, models.MetaMembershipDuration)
	require.NoError(t, err)
	assert.Equal(t, "20240301", value)

	all, err := s.GetAllMeta(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		models.MetaMembershipDuration: "20240301",
		models.MetaFullName:           "Abe Suni",
	}, all)

	err = s.SetMeta(ctx, id+1000, models.MetaFullName, "Ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}
