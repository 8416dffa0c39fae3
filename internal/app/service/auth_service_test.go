package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/internal/db"
	"github.com/kcastreetfood/reservation-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemoryRevoker() *memoryRevoker {
	return &memoryRevoker{revoked: make(map[string]time.Duration)}
}

func (m *memoryRevoker) BlacklistToken(_ context.Context, tokenID string, expiry time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiry
	return nil
}

func (m *memoryRevoker) RevokeOnce(_ context.Context, tokenID string, expiry time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.revoked[tokenID]; ok {
		return false, nil
	}
	m.revoked[tokenID] = expiry
	return true, nil
}

func (m *memoryRevoker) IsTokenBlacklisted(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

func setupAuthServiceTest(t *testing.T) (AuthService, repository.UserRepository, *memoryRevoker) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	revoker := newMemoryRevoker()
	authService := NewAuthService(userRepo, revoker, testJWTSecret, 15*time.Minute, 7*24*time.Hour)

	return authService, userRepo, revoker
}

// registerVerified registers a user and verifies the email right away
func registerVerified(t *testing.T, svc AuthService, username, email, password string) *model.User {
	t.Helper()
	_, token, err := svc.Register(RegisterInput{Username: username, Email: email, Password: password, Name: "Test User"})
	require.NoError(t, err)
	user, err := svc.VerifyEmail(token)
	require.NoError(t, err)
	return user
}

func TestAuthService_Register(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name:  "Valid registration",
			input: RegisterInput{Username: "amina", Email: "Amina@Example.com", Password: "password123", Name: "Amina", Phone: "+254700000000"},
		},
		{
			name:    "Duplicate email",
			input:   RegisterInput{Username: "amina2", Email: "amina@example.com", Password: "password123"},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name:    "Duplicate username",
			input:   RegisterInput{Username: "amina", Email: "other@example.com", Password: "password123"},
			wantErr: ErrUsernameTaken,
		},
		{
			name:    "Short password",
			input:   RegisterInput{Username: "juma", Email: "juma@example.com", Password: "12345"},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "Missing username",
			input:   RegisterInput{Email: "juma@example.com", Password: "password123"},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "Malformed email",
			input:   RegisterInput{Username: "juma", Email: "juma", Password: "password123"},
			wantErr: ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := authService.Register(tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Empty(t, token)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.NotEmpty(t, token)
			assert.Equal(t, "amina@example.com", user.Email)
			assert.False(t, user.IsVerified)
			assert.False(t, user.IsAdmin)
			assert.NotEqual(t, tt.input.Password, user.PasswordHash)
			require.NotNil(t, user.VerificationExpires)
			assert.WithinDuration(t, time.Now().Add(util.EmailVerificationTTL), *user.VerificationExpires, time.Minute)
		})
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	authService, userRepo, _ := setupAuthServiceTest(t)

	_, token, err := authService.Register(RegisterInput{Username: "amina", Email: "amina@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = authService.VerifyEmail("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = authService.VerifyEmail("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)

	user, err := authService.VerifyEmail(token)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Empty(t, user.VerificationToken)

	// the token is single use
	_, err = authService.VerifyEmail(token)
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)

	_, err = authService.ResendVerification("amina@example.com")
	assert.ErrorIs(t, err, ErrAlreadyVerified)

	t.Run("expired token", func(t *testing.T) {
		stale, staleToken, err := authService.Register(RegisterInput{Username: "juma", Email: "juma@example.com", Password: "password123"})
		require.NoError(t, err)

		past := time.Now().Add(-time.Hour)
		stale.VerificationExpires = &past
		require.NoError(t, userRepo.Update(stale))

		_, err = authService.VerifyEmail(staleToken)
		assert.ErrorIs(t, err, ErrVerificationExpired)

		fresh, err := authService.ResendVerification("JUMA@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, staleToken, fresh)

		verified, err := authService.VerifyEmail(fresh)
		require.NoError(t, err)
		assert.True(t, verified.IsVerified)
	})

	_, err = authService.ResendVerification("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_Login(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	registerVerified(t, authService, "amina", "amina@example.com", "password123")
	_, _, err := authService.Register(RegisterInput{Username: "pending", Email: "pending@example.com", Password: "password123"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		login    string
		password string
		wantErr  error
	}{
		{name: "Login by username", login: "amina", password: "password123"},
		{name: "Login by email", login: "AMINA@example.com", password: "password123"},
		{name: "Wrong password", login: "amina", password: "wrongpassword", wantErr: ErrInvalidCredentials},
		{name: "Unknown user", login: "nobody", password: "password123", wantErr: ErrInvalidCredentials},
		{name: "Unverified email", login: "pending", password: "password123", wantErr: ErrEmailNotVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.login, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrUnauthenticated)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, tokens)
			assert.Equal(t, "amina", user.Username)

			claims, err := util.ValidateToken(tokens.AccessToken, testJWTSecret)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, "amina", claims.Username)
			assert.False(t, claims.IsAdmin)
			assert.Equal(t, util.TokenTypeAccess, claims.TokenType)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	authService, userRepo, _ := setupAuthServiceTest(t)
	ctx := context.Background()

	user := registerVerified(t, authService, "amina", "amina@example.com", "password123")
	_, tokens, err := authService.Login("amina", "password123")
	require.NoError(t, err)

	_, err = authService.RefreshToken(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid, "access tokens cannot refresh")

	_, err = authService.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

	// promotion shows up in the refreshed claims
	user.IsAdmin = true
	require.NoError(t, userRepo.Update(user))

	refreshed, err := authService.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	claims, err := util.ValidateToken(refreshed.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)

	_, err = authService.RefreshToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid, "a refresh token is single use")
}

func TestAuthService_PasswordReset(t *testing.T) {
	authService, userRepo, _ := setupAuthServiceTest(t)

	user := registerVerified(t, authService, "amina", "amina@example.com", "password123")

	token, err := authService.ForgotPassword("nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = authService.ForgotPassword("amina@example.com")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	assert.ErrorIs(t, authService.ResetPassword(token, "123"), ErrInvalidArgument)
	assert.ErrorIs(t, authService.ResetPassword("wrong-token", "newpassword"), ErrInvalidResetToken)
	assert.ErrorIs(t, authService.ResetPassword("", "newpassword"), ErrInvalidResetToken)

	require.NoError(t, authService.ResetPassword(token, "newpassword"))
	assert.ErrorIs(t, authService.ResetPassword(token, "another"), ErrInvalidResetToken)

	_, _, err = authService.Login("amina", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = authService.Login("amina", "newpassword")
	assert.NoError(t, err)

	t.Run("expired token", func(t *testing.T) {
		token, err := authService.ForgotPassword("amina@example.com")
		require.NoError(t, err)

		stored, err := userRepo.FindByID(user.ID)
		require.NoError(t, err)
		past := time.Now().Add(-time.Minute)
		stored.ResetPasswordExpires = &past
		require.NoError(t, userRepo.Update(stored))

		assert.ErrorIs(t, authService.ResetPassword(token, "newpassword2"), ErrInvalidResetToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	authService, _, revoker := setupAuthServiceTest(t)
	ctx := context.Background()

	registerVerified(t, authService, "amina", "amina@example.com", "password123")
	_, tokens, err := authService.Login("amina", "password123")
	require.NoError(t, err)

	claims, err := util.ValidateToken(tokens.AccessToken, testJWTSecret)
	require.NoError(t, err)
	refreshClaims, err := util.ValidateToken(tokens.RefreshToken, testJWTSecret)
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, claims, tokens.RefreshToken))

	for _, id := range []string{claims.ID, refreshClaims.ID} {
		revoked, err := revoker.IsTokenBlacklisted(ctx, id)
		require.NoError(t, err)
		assert.True(t, revoked)
		assert.Greater(t, revoker.revoked[id], time.Duration(0))
	}

	// the session cannot be resumed
	_, err = authService.RefreshToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

	assert.ErrorIs(t, authService.Logout(ctx, nil, tokens.RefreshToken), ErrUnauthenticated)
}

func TestAuthService_LogoutRejectsForeignRefreshToken(t *testing.T) {
	authService, _, revoker := setupAuthServiceTest(t)
	ctx := context.Background()

	registerVerified(t, authService, "amina", "amina@example.com", "password123")
	registerVerified(t, authService, "baraka", "baraka@example.com", "password123")
	_, amina, err := authService.Login("amina", "password123")
	require.NoError(t, err)
	_, baraka, err := authService.Login("baraka", "password123")
	require.NoError(t, err)

	claims, err := util.ValidateToken(amina.AccessToken, testJWTSecret)
	require.NoError(t, err)

	tests := []struct {
		name    string
		refresh string
	}{
		{"another user's refresh token", baraka.RefreshToken},
		{"an access token", amina.AccessToken},
		{"garbage", "not-a-token"},
		{"missing", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, authService.Logout(ctx, claims, tt.refresh), ErrRefreshTokenInvalid)
		})
	}

	revoked, err := revoker.IsTokenBlacklisted(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestAuthService_LogoutWithoutRevoker(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	authService := NewAuthService(repository.NewUserRepository(testDB), nil, testJWTSecret, time.Minute, time.Hour)
	registerVerified(t, authService, "amina", "amina@example.com", "password123")
	_, tokens, err := authService.Login("amina", "password123")
	require.NoError(t, err)
	claims, err := util.ValidateToken(tokens.AccessToken, testJWTSecret)
	require.NoError(t, err)

	assert.NoError(t, authService.Logout(context.Background(), claims, tokens.RefreshToken))
}

func TestAuthService_ConcurrentRefreshSingleWinner(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)
	ctx := context.Background()

	registerVerified(t, authService, "amina", "amina@example.com", "password123")
	_, tokens, err := authService.Login("amina", "password123")
	require.NoError(t, err)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := authService.RefreshToken(ctx, tokens.RefreshToken); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	amina := registerVerified(t, authService, "amina", "amina@example.com", "password123")
	registerVerified(t, authService, "juma", "juma@example.com", "password123")

	newName := "Amina W."
	phone := "+254711111111"
	updated, err := authService.UpdateProfile(amina.ID, ProfileInput{Name: &newName, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, phone, updated.Phone)

	taken := "juma"
	_, err = authService.UpdateProfile(amina.ID, ProfileInput{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	takenEmail := "JUMA@example.com"
	_, err = authService.UpdateProfile(amina.ID, ProfileInput{Email: &takenEmail})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	same := "amina"
	_, err = authService.UpdateProfile(amina.ID, ProfileInput{Username: &same})
	assert.NoError(t, err, "keeping the current username is not a conflict")

	blank := " "
	_, err = authService.UpdateProfile(amina.ID, ProfileInput{Username: &blank})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = authService.UpdateProfile(9999, ProfileInput{Name: &newName})
	assert.ErrorIs(t, err, ErrNotFound)

	fetched, err := authService.GetUserByID(amina.ID)
	require.NoError(t, err)
	assert.Equal(t, "amina", fetched.Username)
	assert.Equal(t, newName, fetched.Name)
}
