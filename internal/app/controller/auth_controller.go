package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcastreetfood/reservation-backend/internal/app/model"
	"github.com/kcastreetfood/reservation-backend/internal/app/service"
	apperrors "github.com/kcastreetfood/reservation-backend/internal/errors"
	"github.com/kcastreetfood/reservation-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
	// exposeTokens returns verification and reset tokens in responses; off in production where they go by email
	exposeTokens bool
}

func NewAuthController(authService service.AuthService, exposeTokens bool) *AuthController {
	return &AuthController{
		authService:  authService,
		exposeTokens: exposeTokens,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"` // username or email
	Password string `json:"password" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
}

func userResponse(user *model.User) gin.H {
	return gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"name":        user.Name,
		"phone":       user.Phone,
		"is_admin":    user.IsAdmin,
		"is_verified": user.IsVerified,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "registration")
		return
	}

	user, token, err := ctrl.authService.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, err, "register user")
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	resp := gin.H{
		"message": "Registration successful, please verify your email",
		"user":    userResponse(user),
	}
	if ctrl.exposeTokens {
		resp["verification_token"] = token
	}
	c.JSON(http.StatusCreated, resp)
}

// VerifyEmail confirms an email address
// GET /api/v1/auth/verify-email?token=
func (ctrl *AuthController) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Verification token is required")
		return
	}

	user, err := ctrl.authService.VerifyEmail(token)
	if err != nil {
		respondError(c, err, "verify email")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified, you can now log in",
		"user":    userResponse(user),
	})
}

// ResendVerification issues a fresh verification token
// POST /api/v1/auth/resend-verification
func (ctrl *AuthController) ResendVerification(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "resend verification")
		return
	}

	token, err := ctrl.authService.ResendVerification(req.Email)
	if err != nil {
		respondError(c, err, "resend verification")
		return
	}

	resp := gin.H{"message": "Verification email sent"}
	if ctrl.exposeTokens {
		resp["verification_token"] = token
	}
	c.JSON(http.StatusOK, resp)
}

// Login handles user login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "login")
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Login, req.Password)
	if err != nil {
		respondError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}

// RefreshToken exchanges a refresh token for a new token pair
// POST /api/v1/auth/refresh
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "refresh token")
		return
	}

	tokens, err := ctrl.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err, "refresh token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// ForgotPassword answers the same way whether or not the email has an account
// POST /api/v1/auth/forgot-password
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "forgot password")
		return
	}

	token, err := ctrl.authService.ForgotPassword(req.Email)
	if err != nil {
		respondError(c, err, "forgot password")
		return
	}

	resp := gin.H{"message": "If that email is registered, a reset link has been sent"}
	if ctrl.exposeTokens && token != "" {
		resp["reset_token"] = token
	}
	c.JSON(http.StatusOK, resp)
}

// ResetPassword sets a new password with a reset token
// POST /api/v1/auth/reset-password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "reset password")
		return
	}

	if err := ctrl.authService.ResetPassword(req.Token, req.Password); err != nil {
		respondError(c, err, "reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

// Logout revokes the presented access token and the session's refresh token
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "logout")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		respondError(c, err, "logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetMe returns current user information
// GET /api/v1/users/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		respondError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// UpdateMe updates the current user's profile
// PUT /api/v1/users/me
func (ctrl *AuthController) UpdateMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "profile update")
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, service.ProfileInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    userResponse(user),
	})
}
