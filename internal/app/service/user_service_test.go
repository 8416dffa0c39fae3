package service

import (
	"testing"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	userRepo := repository.NewUserRepository(testDB)
	svc := NewUserService(userRepo)

	amina := &model.User{Username: "amina", Email: "amina@example.com", PasswordHash: "hash", VerificationToken: "tok"}
	juma := &model.User{Username: "juma", Email: "juma@example.com", PasswordHash: "hash"}
	require.NoError(t, userRepo.Create(amina))
	require.NoError(t, userRepo.Create(juma))

	users, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = svc.Get(999)
	assert.ErrorIs(t, err, ErrNotFound)

	admin, verified := true, true
	updated, err := svc.Update(amina.ID, AdminUserInput{IsAdmin: &admin, IsVerified: &verified})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)
	assert.True(t, updated.IsVerified)
	assert.Empty(t, updated.VerificationToken)

	fetched, err := svc.Get(amina.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsAdmin)

	taken := "juma"
	_, err = svc.Update(amina.ID, AdminUserInput{ProfileInput: ProfileInput{Username: &taken}})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	demote := false
	updated, err = svc.Update(amina.ID, AdminUserInput{IsAdmin: &demote})
	require.NoError(t, err)
	assert.False(t, updated.IsAdmin)
}
