package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"github.com/kcastreetfood/reservation-backend/pkg/util"
	"gorm.io/gorm"
)

// TokenRevoker stores revoked token IDs until they would have expired anyway.
// RevokeOnce reports whether this call was the one that revoked tokenID.
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, tokenID string, expiry time.Duration) error
	RevokeOnce(ctx context.Context, tokenID string, expiry time.Duration) (bool, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Phone    string
}

// ProfileInput carries only the fields being changed
type ProfileInput struct {
	Username *string
	Email    *string
	Name     *string
	Phone    *string
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, string, error)
	VerifyEmail(token string) (*model.User, error)
	ResendVerification(email string) (string, error)
	Login(login, password string) (*model.User, *util.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*util.TokenPair, error)
	ForgotPassword(email string) (string, error)
	ResetPassword(token, newPassword string) error
	Logout(ctx context.Context, claims *util.Claims, refreshToken string) error
	GetUserByID(id uint) (*model.User, error)
	UpdateProfile(userID uint, input ProfileInput) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	revoker       TokenRevoker
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewAuthService builds the auth service; revoker may be nil, which disables logout revocation
func NewAuthService(
	userRepo repository.UserRepository,
	revoker TokenRevoker,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		revoker:       revoker,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(input RegisterInput) (*model.User, string, error) {
	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	logger.Info("Attempting user registration", map[string]interface{}{
		"username": username,
		"email":    email,
	})

	if username == "" || !strings.Contains(email, "@") {
		return nil, "", ErrInvalidArgument
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	if err := s.ensureUnique(0, username, email); err != nil {
		return nil, "", err
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	token, expires := util.GenerateVerificationToken(time.Now())
	user := &model.User{
		Username:            username,
		Email:               email,
		PasswordHash:        hashedPassword,
		Name:                strings.TrimSpace(input.Name),
		Phone:               strings.TrimSpace(input.Phone),
		VerificationToken:   token,
		VerificationExpires: &expires,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// lost a race with a concurrent registration
			return nil, "", ErrEmailAlreadyExists
		}
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, token, nil
}

func (s *authService) ensureUnique(selfID uint, username, email string) error {
	return ensureUniqueUser(s.userRepo, selfID, username, email)
}

// ensureUniqueUser checks username and email against every user except selfID; empty values are skipped
func ensureUniqueUser(users repository.UserRepository, selfID uint, username, email string) error {
	if username != "" {
		existing, err := users.FindByUsername(username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil && existing.ID != selfID {
			logger.Warn("Username already taken", map[string]interface{}{
				"username": username,
			})
			return ErrUsernameTaken
		}
	}

	if email != "" {
		existing, err := users.FindByEmail(email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil && existing.ID != selfID {
			logger.Warn("Email already registered", map[string]interface{}{
				"email": email,
			})
			return ErrEmailAlreadyExists
		}
	}
	return nil
}

func (s *authService) VerifyEmail(token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidVerificationToken
	}

	user, err := s.userRepo.FindByVerificationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Unknown verification token")
			return nil, ErrInvalidVerificationToken
		}
		return nil, err
	}

	if user.VerificationExpires == nil || time.Now().After(*user.VerificationExpires) {
		logger.Warn("Verification token expired", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrVerificationExpired
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.VerificationExpires = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("Email verified", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

func (s *authService) ResendVerification(email string) (string, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if user.IsVerified {
		return "", ErrAlreadyVerified
	}

	token, expires := util.GenerateVerificationToken(time.Now())
	user.VerificationToken = token
	user.VerificationExpires = &expires
	if err := s.userRepo.Update(user); err != nil {
		return "", err
	}

	logger.Info("Verification token reissued", map[string]interface{}{
		"user_id": user.ID,
	})
	return token, nil
}

// Login accepts a username or, when login contains "@", an email address
func (s *authService) Login(login, password string) (*model.User, *util.TokenPair, error) {
	login = strings.TrimSpace(login)
	logger.Info("Login attempt", map[string]interface{}{
		"login": login,
	})

	var (
		user *model.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userRepo.FindByEmail(normalizeEmail(login))
	} else {
		user, err = s.userRepo.FindByUsername(login)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"login": login,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		logger.Warn("Login failed: email not verified", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrEmailNotVerified
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(user.ID, user.Username, user.IsAdmin, s.jwtSecret, s.accessExpiry, s.refreshExpiry)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}

// RefreshToken exchanges a refresh token for a new pair and revokes the old refresh token
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil || claims.TokenType != util.TokenTypeRefresh {
		logger.Warn("Invalid refresh token presented")
		return nil, ErrRefreshTokenInvalid
	}

	// reload so admin flag and username reflect the current account
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, err
	}

	// single check-and-revoke step; a second refresh with the same token loses
	if s.revoker != nil {
		claimed, err := s.revoker.RevokeOnce(ctx, claims.ID, claims.RemainingLifetime(time.Now()))
		if err != nil {
			logger.Error("Failed to revoke refresh token", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
			return nil, err
		}
		if !claimed {
			logger.Warn("Revoked refresh token presented", map[string]interface{}{
				"user_id": claims.UserID,
			})
			return nil, ErrRefreshTokenInvalid
		}
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	logger.Info("Tokens refreshed", map[string]interface{}{
		"user_id": user.ID,
	})
	return tokens, nil
}

// ForgotPassword returns a reset token; for unknown emails it returns "" and no error
func (s *authService) ForgotPassword(email string) (string, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("Password reset requested for unknown email")
			return "", nil
		}
		return "", err
	}

	token, expires, err := util.GeneratePasswordResetToken(time.Now())
	if err != nil {
		logger.Error("Failed to generate reset token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return "", err
	}

	user.ResetPasswordToken = token
	user.ResetPasswordExpires = &expires
	if err := s.userRepo.Update(user); err != nil {
		return "", err
	}

	logger.Info("Password reset token issued", map[string]interface{}{
		"user_id": user.ID,
	})
	return token, nil
}

func (s *authService) ResetPassword(token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidResetToken
	}
	if err := util.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	user, err := s.userRepo.FindByResetToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Unknown password reset token")
			return ErrInvalidResetToken
		}
		return err
	}
	if user.ResetPasswordExpires == nil || time.Now().After(*user.ResetPasswordExpires) {
		logger.Warn("Password reset token expired", map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrInvalidResetToken
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = nil
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	logger.Info("Password reset", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// Logout revokes the presented access token and the session's refresh token
func (s *authService) Logout(ctx context.Context, claims *util.Claims, refreshToken string) error {
	if claims == nil {
		return ErrUnauthenticated
	}

	refreshClaims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil || refreshClaims.TokenType != util.TokenTypeRefresh || refreshClaims.UserID != claims.UserID {
		logger.Warn("Invalid refresh token presented at logout", map[string]interface{}{
			"user_id": claims.UserID,
		})
		return ErrRefreshTokenInvalid
	}

	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	if err := s.revoke(ctx, refreshClaims); err != nil {
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) revoke(ctx context.Context, claims *util.Claims) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.BlacklistToken(ctx, claims.ID, claims.RemainingLifetime(time.Now())); err != nil {
		logger.Error("Failed to revoke token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID uint, input ProfileInput) (*model.User, error) {
	logger.Info("Updating user profile", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}

	if err := applyProfileChanges(user, input, s.ensureUnique); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.Info("User profile updated", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

// applyProfileChanges validates and copies input onto user, checking uniqueness of changed identifiers
func applyProfileChanges(user *model.User, input ProfileInput, unique func(selfID uint, username, email string) error) error {
	var username, email string
	if input.Username != nil {
		username = strings.TrimSpace(*input.Username)
		if username == "" {
			return ErrInvalidArgument
		}
	}
	if input.Email != nil {
		email = normalizeEmail(*input.Email)
		if !strings.Contains(email, "@") {
			return ErrInvalidArgument
		}
	}

	if err := unique(user.ID, username, email); err != nil {
		return err
	}

	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	return nil
}
