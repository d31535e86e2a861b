package usecase

import (
	"context"
	"testing"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestModerationUsecase_SetAccountState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	person, err := f.moderation.SetAccountState(ctx, userA, domain.AccountStateWarned, modUser)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStateWarned, person.State)

	person, err = f.moderation.SetAccountState(ctx, userA, domain.AccountStateActive, modUser)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStateActive, person.State)

	_, err = f.moderation.SetAccountState(ctx, userA, "banned", modUser)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.moderation.SetAccountState(ctx, unknownU, domain.AccountStateDisabled, modUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.pub.AssertCalled(t, "Publish", mock.Anything, SubjectPersonStateChanged, mock.Anything)
}

func TestModerationUsecase_SetRole(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		role      domain.Role
		actorRole domain.Role
		wantErr   error
	}{
		{"admin promotes user to critic", userA, domain.RoleCritic, domain.RoleAdmin, nil},
		{"admin promotes user to admin", userA, domain.RoleAdmin, domain.RoleAdmin, nil},
		{"admin cannot grant superadmin", userA, domain.RoleSuperAdmin, domain.RoleAdmin, domain.ErrForbidden},
		{"moderator cannot change roles", userA, domain.RoleCritic, domain.RoleModerator, domain.ErrForbidden},
		{"admin cannot demote superadmin", superID, domain.RoleUser, domain.RoleAdmin, domain.ErrForbidden},
		{"superadmin demotes admin", adminID, domain.RoleModerator, domain.RoleSuperAdmin, nil},
		{"unknown role", userA, "owner", domain.RoleSuperAdmin, domain.ErrInvalidInput},
		{"unknown user", unknownU, domain.RoleCritic, domain.RoleAdmin, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			person, err := f.moderation.SetRole(context.Background(), tt.target, tt.role, "actor", tt.actorRole)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, person)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, person.Role)
			assert.Equal(t, domain.AccountStateActive, person.State)
		})
	}
}
