// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/cartsync"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
)

// AuthHandler handles authentication and account endpoints
type AuthHandler struct {
	users  *user.Service
	merger *cartsync.Merger
	cookie cookieSettings
	logger *logrus.Logger
}

type cookieSettings struct {
	name   string
	maxAge int
	secure bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service, merger *cartsync.Merger, cfg *config.Config, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		merger: merger,
		cookie: cookieSettings{
			name:   cfg.JWT.CookieName,
			maxAge: int(cfg.JWT.AccessTokenExpiry.Seconds()),
			secure: cfg.IsProduction(),
		},
		logger: logger,
	}
}

// loginRequest is the login body. The local collections are optional.
type loginRequest struct {
	user.LoginInput
	cartsync.Request
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, message, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, message, gin.H{"userId": u.ID})
}

// SendVerifyOTP handles POST /auth/send-verify-otp
func (h *AuthHandler) SendVerifyOTP(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.users.SendVerifyOTP(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Verification OTP sent to your email", nil)
}

// VerifyAccount handles POST /auth/verify-account
func (h *AuthHandler) VerifyAccount(c *gin.Context) {
	var req user.VerifyEmailInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.users.VerifyEmail(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Email verified successfully", gin.H{"user": u})
}

// Login handles POST /auth/login. A successful login merges the client's
// local cart and wishlist; merge problems are reported, never fatal.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.users.Authenticate(c.Request.Context(), req.LoginInput)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setAuthCookie(c, result.Token)
	sync := h.merger.Merge(c.Request.Context(), result.User.ID, req.Request)

	response.OK(c, "Login successful", gin.H{
		"user":       result.User,
		"token":      result.Token,
		"expiresIn":  result.ExpiresIn,
		"syncResult": sync,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setAuthCookie(c, "")
	response.OK(c, "Logged out", nil)
}

// IsAuthenticated handles GET /auth/is-auth
func (h *AuthHandler) IsAuthenticated(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.users.Profile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{"user": u})
}

// SendResetOTP handles POST /auth/send-reset-otp
func (h *AuthHandler) SendResetOTP(c *gin.Context) {
	var req user.EmailInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.users.SendResetOTP(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "OTP sent to your email", nil)
}

// VerifyResetOTP handles POST /auth/verify-reset-otp
func (h *AuthHandler) VerifyResetOTP(c *gin.Context) {
	var req user.VerifyResetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.users.VerifyResetOTP(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "OTP verified", nil)
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password has been reset successfully", nil)
}

// Sync handles POST /auth/sync
func (h *AuthHandler) Sync(c *gin.Context) {
	h.sync(c, false)
}

// GoogleSync handles POST /auth/google-sync. The OAuth exchange has already
// produced the session; this merges local data and returns the profile.
func (h *AuthHandler) GoogleSync(c *gin.Context) {
	h.sync(c, true)
}

func (h *AuthHandler) sync(c *gin.Context, withProfile bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req cartsync.Request
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	result := h.merger.Merge(c.Request.Context(), userID, req)
	payload := gin.H{"syncResult": result}

	if withProfile {
		u, err := h.users.Profile(c.Request.Context(), userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		payload["user"] = u
	}

	response.OK(c, "Sync completed", payload)
}

// UpdateProfile handles PUT /auth/profile. It accepts JSON, or a multipart
// form carrying the same fields plus an optional "image" file.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.UpdateProfileInput
	var image *user.ImageUpload

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req = user.UpdateProfileInput{
			Name:         formValue(c, "name"),
			LastName:     formValue(c, "lastName"),
			MobileNumber: formValue(c, "mobileNumber"),
			Address:      formValue(c, "address"),
			City:         formValue(c, "city"),
			PostCode:     formValue(c, "postCode"),
			Country:      formValue(c, "country"),
		}

		if header, err := c.FormFile("image"); err == nil {
			file, err := header.Open()
			if err != nil {
				response.Fail(c, http.StatusBadRequest, "Failed to read uploaded image")
				return
			}
			defer file.Close()
			image = &user.ImageUpload{File: file, Filename: header.Filename}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), userID, req, image)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile updated successfully", gin.H{"user": u})
}

// RemoveProfilePicture handles DELETE /auth/profile/picture
func (h *AuthHandler) RemoveProfilePicture(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.users.RemoveProfilePicture(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile picture removed", gin.H{"user": u})
}

// DeleteAccount handles DELETE /auth/account
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.DeleteAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.users.DeleteAccount(c.Request.Context(), userID, req); err != nil {
		response.Error(c, err)
		return
	}

	h.setAuthCookie(c, "")
	h.logger.WithField("user_id", userID).Info("account deleted")
	response.OK(c, "Account deleted successfully", nil)
}

// setAuthCookie writes the http-only session cookie; an empty token clears it
func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	maxAge := h.cookie.maxAge
	if token == "" {
		maxAge = -1
	}

	if h.cookie.secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteStrictMode)
	}
	c.SetCookie(h.cookie.name, token, maxAge, "/", "", h.cookie.secure, true)
}

// formValue returns a pointer to a posted form field, or nil when absent
func formValue(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}
