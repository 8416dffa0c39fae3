package repository

import (
	"testing"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewUserRepository(testDB)
	return testDB, repo
}

func newTestUser(username, email string) *model.User {
	return &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hashedpassword",
		Name:         "Test User",
		Phone:        "+254700000001",
	}
}

func TestUserRepository_Create(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name: "Valid user",
			user: newTestUser("jdoe", "jdoe@example.com"),
		},
		{
			name:    "Duplicate email",
			user:    newTestUser("other", "jdoe@example.com"),
			wantErr: true,
		},
		{
			name:    "Duplicate username",
			user:    newTestUser("jdoe", "other@example.com"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDuplicateKey)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
			}
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := newTestUser("jdoe", "jdoe@example.com")
	user.VerificationToken = "verify-token"
	user.ResetPasswordToken = "reset-token"
	require.NoError(t, repo.Create(user))

	tests := []struct {
		name    string
		find    func() (*model.User, error)
		wantErr bool
	}{
		{name: "By ID", find: func() (*model.User, error) { return repo.FindByID(user.ID) }},
		{name: "Missing ID", find: func() (*model.User, error) { return repo.FindByID(9999) }, wantErr: true},
		{name: "By email", find: func() (*model.User, error) { return repo.FindByEmail("jdoe@example.com") }},
		{name: "Missing email", find: func() (*model.User, error) { return repo.FindByEmail("nobody@example.com") }, wantErr: true},
		{name: "By username", find: func() (*model.User, error) { return repo.FindByUsername("jdoe") }},
		{name: "By verification token", find: func() (*model.User, error) { return repo.FindByVerificationToken("verify-token") }},
		{name: "By reset token", find: func() (*model.User, error) { return repo.FindByResetToken("reset-token") }},
		{name: "Unknown reset token", find: func() (*model.User, error) { return repo.FindByResetToken("nope") }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := tt.find()

			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				assert.Equal(t, user.ID, found.ID)
			}
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := newTestUser("jdoe", "jdoe@example.com")
	require.NoError(t, repo.Create(user))
	other := newTestUser("other", "other@example.com")
	require.NoError(t, repo.Create(other))

	user.Name = "Updated Name"
	user.IsVerified = true
	require.NoError(t, repo.Update(user))

	updated, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", updated.Name)
	assert.True(t, updated.IsVerified)

	other.Email = "jdoe@example.com"
	assert.ErrorIs(t, repo.Update(other), ErrDuplicateKey)
}

func TestUserRepository_FindAllAndDelete(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	first := newTestUser("first", "first@example.com")
	second := newTestUser("second", "second@example.com")
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	users, err := repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, repo.Delete(first.ID))

	_, err = repo.FindByID(first.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	users, err = repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
