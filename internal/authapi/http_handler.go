package authapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/identity"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
	profileDomain "github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/domain"
	profileRepo "github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/repository"
	profileService "github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/service"
)

// IdentityGateway is the slice of the auth provider client these
// handlers delegate to.
type IdentityGateway interface {
	SignIn(ctx context.Context, email, password string) (*identity.SignInResult, error)
	SignUp(ctx context.Context, email, password, fullName string) (string, error)
	SignOut(ctx context.Context, accessToken string) error
	RequestPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	OAuthRedirectURL(provider string) string
}

type AuthHandler struct {
	gateway  IdentityGateway
	profiles profileService.ProfileService
}

func NewAuthHandler(gateway IdentityGateway, profiles profileService.ProfileService) *AuthHandler {
	return &AuthHandler{gateway: gateway, profiles: profiles}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", identity.RequireAuth(), h.Logout)
		authRoutes.POST("/forgot-password", h.ForgotPassword)
		authRoutes.POST("/reset-password", identity.RequireAuth(), h.ResetPassword)
		authRoutes.POST("/verify-email", h.VerifyEmail)
		authRoutes.GET("/oauth/:provider", h.OAuthRedirect)
	}
	// Deliberately outside the admin-guarded group: the first admin is
	// created before any admin session can exist.
	router.POST("/admin/setup", h.AdminSetup)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
}

// Register creates the auth account (pending email verification) and
// the customer profile keyed by the provider's user id.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	userID, err := h.gateway.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		h.writeAuthError(c, "Register", err)
		return
	}

	_, err = h.profiles.CreateProfile(c.Request.Context(), userID, req.Email, req.FullName, profileDomain.RoleCustomer)
	if err != nil {
		if errors.Is(err, profileRepo.ErrProfileExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Register: profile creation failed for user "+userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id": userID,
		"message": "Verification email sent",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	result, err := h.gateway.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(c, "Login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":      result.UserID,
		"access_token": result.AccessToken,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess := identity.SessionFromContext(c)
	if err := h.gateway.SignOut(c.Request.Context(), sess.AccessToken); err != nil {
		h.writeAuthError(c, "Logout", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if err := h.gateway.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.writeAuthError(c, "ForgotPassword", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPassword completes the recovery flow: the emailed link signed
// the user in, and the new password is set against that session.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	sess := identity.SessionFromContext(c)
	if err := h.gateway.UpdatePassword(c.Request.Context(), sess.AccessToken, req.Password); err != nil {
		h.writeAuthError(c, "ResetPassword", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

type verifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if err := h.gateway.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		h.writeAuthError(c, "VerifyEmail", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

func (h *AuthHandler) OAuthRedirect(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing OAuth provider"})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.gateway.OAuthRedirectURL(provider))
}

type adminSetupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
}

// AdminSetup creates the first admin account. Once any admin profile
// exists the endpoint refuses; further admins would have to be promoted
// out of band.
func (h *AuthHandler) AdminSetup(c *gin.Context) {
	var req adminSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	hasAdmin, err := h.profiles.HasAdmin(c.Request.Context())
	if err != nil {
		logger.Error("AdminSetup: admin existence check failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin account"})
		return
	}
	if hasAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "An admin account already exists"})
		return
	}

	userID, err := h.gateway.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		h.writeAuthError(c, "AdminSetup", err)
		return
	}

	_, err = h.profiles.CreateProfile(c.Request.Context(), userID, req.Email, req.FullName, profileDomain.RoleAdmin)
	if err != nil {
		if errors.Is(err, profileRepo.ErrProfileExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("AdminSetup: profile creation failed for user "+userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin profile"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id": userID,
		"message": "Admin account created",
	})
}

// writeAuthError surfaces the provider's message verbatim with its own
// status; anything else is a transport failure toward the provider.
func (h *AuthHandler) writeAuthError(c *gin.Context, op string, err error) {
	var authErr *identity.AuthError
	if errors.As(err, &authErr) {
		status := authErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": authErr.Message})
		return
	}
	logger.Error(op+": auth provider call failed", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "Auth provider unavailable"})
}
