// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/domain/upload"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
	"github.com/your-org/bookstore-backend/internal/pkg/auth"
	"github.com/your-org/bookstore-backend/internal/pkg/validation"
)

const (
	verifyOTPTTL  = 24 * time.Hour
	resetOTPTTL   = 10 * time.Minute
	otpDigits     = 6
	profileFolder = "user-profiles"
	profilePrefix = "profile_"
)

// Mailer delivers account emails
type Mailer interface {
	SendVerifyOTP(ctx context.Context, u *User, otp string) error
	SendResetOTP(ctx context.Context, u *User, otp string) error
	SendWelcome(ctx context.Context, u *User) error
}

// ImageStore keeps profile pictures
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, filename, folder, publicID string) (*upload.Result, error)
	Destroy(ctx context.Context, publicID string) error
}

// Service handles user business logic
type Service struct {
	repo            Repository
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	mailer          Mailer
	images          ImageStore
	logger          *logrus.Logger
	now             func() time.Time
}

// NewService creates a new user service
func NewService(repo Repository, passwords *auth.PasswordManager, tokens *auth.JWTManager, mailer Mailer, images ImageStore, logger *logrus.Logger) *Service {
	return &Service{
		repo:            repo,
		passwordManager: passwords,
		jwtManager:      tokens,
		mailer:          mailer,
		images:          images,
		logger:          logger,
		now:             time.Now,
	}
}

// RegisterInput represents user registration data
type RegisterInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	LastName        string `json:"lastName" validate:"omitempty,max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// LoginInput represents user login data
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailInput confirms an account
type VerifyEmailInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// EmailInput names an account by email
type EmailInput struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyResetInput checks a reset OTP
type VerifyResetInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// ResetPasswordInput sets a new password with a reset OTP
type ResetPasswordInput struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// UpdateProfileInput represents a partial profile update
type UpdateProfileInput struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	LastName     *string `json:"lastName" validate:"omitempty,max=100"`
	MobileNumber *string `json:"mobileNumber" validate:"omitempty,max=30"`
	Address      *string `json:"address" validate:"omitempty,max=500"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	PostCode     *string `json:"postCode" validate:"omitempty,max=20"`
	Country      *string `json:"country" validate:"omitempty,max=100"`
}

// ImageUpload is a file sent along with a profile update
type ImageUpload struct {
	File     io.Reader
	Filename string
}

// DeleteAccountInput confirms account deletion
type DeleteAccountInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is a logged-in user and their access token
type AuthResult struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// FindByID returns a user by id
func (s *Service) FindByID(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Register creates an account, or refreshes an unverified one, and mails a
// verification OTP. The returned message tells which of the two happened.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, string, error) {
	if err := validation.Struct(in); err != nil {
		return nil, "", err
	}
	if err := s.passwordManager.ValidatePassword(in.Password); err != nil {
		return nil, "", apperror.Validation(passwordMessage(err))
	}
	if in.Password != in.ConfirmPassword {
		return nil, "", ErrPasswordMismatch
	}

	hash, err := s.passwordManager.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	otp, err := auth.GenerateOTP(otpDigits)
	if err != nil {
		return nil, "", err
	}
	expireAt := s.now().Add(verifyOTPTTL).Unix()
	email := NormalizeEmail(in.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	var u *User
	var message string
	switch {
	case existing != nil && existing.IsAccountVerified:
		return nil, "", ErrEmailInUse
	case existing != nil:
		existing.Name = strings.TrimSpace(in.Name)
		existing.LastName = strings.TrimSpace(in.LastName)
		existing.Password = &hash
		existing.VerifyOTP = otp
		existing.VerifyOTPExpireAt = expireAt
		if err := s.repo.Save(ctx, existing); err != nil {
			return nil, "", fmt.Errorf("failed to update user: %w", err)
		}
		u = existing
		message = "Account exists but is unverified. Details updated and new OTP sent."
	default:
		u = &User{
			Name:              strings.TrimSpace(in.Name),
			LastName:          strings.TrimSpace(in.LastName),
			Email:             email,
			Password:          &hash,
			AuthProvider:      ProviderLocal,
			VerifyOTP:         otp,
			VerifyOTPExpireAt: expireAt,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, "", err
		}
		message = "Registration successful. OTP sent to your email."
	}

	if err := s.mailer.SendVerifyOTP(ctx, u, otp); err != nil {
		// The account exists; the user can ask for a new code
		s.logger.WithError(err).WithField("user_id", u.ID).Warn("failed to send verification otp")
	}

	return u, message, nil
}

// SendVerifyOTP issues a fresh verification code
func (s *Service) SendVerifyOTP(ctx context.Context, userID string) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsAccountVerified {
		return ErrAlreadyVerified
	}

	otp, err := auth.GenerateOTP(otpDigits)
	if err != nil {
		return err
	}
	u.VerifyOTP = otp
	u.VerifyOTPExpireAt = s.now().Add(verifyOTPTTL).Unix()
	if err := s.repo.Save(ctx, u); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.mailer.SendVerifyOTP(ctx, u, otp); err != nil {
		return apperror.Wrap(ErrOTPSendFailed, err)
	}
	return nil
}

// VerifyEmail marks the account verified when the OTP matches and is live
func (s *Service) VerifyEmail(ctx context.Context, in VerifyEmailInput) (*User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidVerifyOTP
		}
		return nil, err
	}
	if u.IsAccountVerified {
		return nil, ErrAlreadyVerified
	}
	if u.VerifyOTP == "" || u.VerifyOTP != strings.TrimSpace(in.OTP) || u.VerifyOTPExpireAt <= s.now().Unix() {
		return nil, ErrInvalidVerifyOTP
	}

	u.IsAccountVerified = true
	u.VerifyOTP = ""
	u.VerifyOTPExpireAt = 0
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}

	if err := s.mailer.SendWelcome(ctx, u); err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Warn("failed to send welcome email")
	}

	return u, nil
}

// Authenticate checks credentials and issues an access token
func (s *Service) Authenticate(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, apperror.Validation("Email and password are required")
	}

	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if err := s.passwordManager.VerifyPassword(in.Password, *u.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.IssueToken(u)
}

// IssueToken creates an access token for an already identified user
func (s *Service) IssueToken(u *User) (*AuthResult, error) {
	token, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &AuthResult{
		User:      u,
		Token:     token,
		ExpiresIn: int64(s.jwtManager.TokenTTL().Seconds()),
	}, nil
}

// SendResetOTP mails a short-lived password reset code
func (s *Service) SendResetOTP(ctx context.Context, in EmailInput) error {
	if err := validation.Struct(in); err != nil {
		return apperror.Validation("Valid email is required")
	}

	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return err
	}
	if !u.IsAccountVerified {
		return ErrNotVerified
	}

	otp, err := auth.GenerateOTP(otpDigits)
	if err != nil {
		return err
	}
	u.ResetOTP = otp
	u.ResetOTPExpireAt = s.now().Add(resetOTPTTL).Unix()
	if err := s.repo.Save(ctx, u); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.mailer.SendResetOTP(ctx, u, otp); err != nil {
		return apperror.Wrap(ErrOTPSendFailed, err)
	}
	return nil
}

// VerifyResetOTP checks a reset code without consuming it
func (s *Service) VerifyResetOTP(ctx context.Context, in VerifyResetInput) error {
	if err := validation.Struct(in); err != nil {
		return apperror.Validation("Email and OTP are required")
	}

	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return err
	}
	return s.checkResetOTP(u, in.OTP)
}

// ResetPassword replaces the password and consumes the reset code
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if err := s.passwordManager.ValidatePassword(in.NewPassword); err != nil {
		return apperror.Validation(passwordMessage(err))
	}
	if in.NewPassword != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return err
	}
	if !u.IsAccountVerified {
		return ErrNotVerified
	}
	if err := s.checkResetOTP(u, in.OTP); err != nil {
		return err
	}

	hash, err := s.passwordManager.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	u.Password = &hash
	u.ResetOTP = ""
	u.ResetOTPExpireAt = 0

	if err := s.repo.Save(ctx, u); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.WithField("user_id", u.ID).Info("password reset")
	return nil
}

// Profile returns the current user
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile applies profile changes and an optional new picture
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput, image *ImageUpload) (*User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	assign(&u.MobileNumber, in.MobileNumber)
	assign(&u.Address, in.Address)
	assign(&u.City, in.City)
	assign(&u.PostCode, in.PostCode)
	assign(&u.Country, in.Country)
	u.ShippingAddress = composeShippingAddress(u)

	if image != nil && image.File != nil {
		stored, err := s.images.Upload(ctx, image.File, image.Filename, profileFolder, profilePrefix+u.ID)
		if err != nil {
			return nil, err
		}
		u.ProfilePicture = &stored.URL
	}

	if err := s.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// RemoveProfilePicture deletes the stored picture
func (s *Service) RemoveProfilePicture(ctx context.Context, userID string) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ProfilePicture == nil {
		return u, nil
	}

	if err := s.images.Destroy(ctx, profileFolder+"/"+profilePrefix+u.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Warn("failed to delete profile picture")
	}

	u.ProfilePicture = nil
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// SaveShippingInfo stores the checkout address block on the profile
func (s *Service) SaveShippingInfo(ctx context.Context, userID string, info ShippingInfo) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.Address = &info.Address
	u.City = &info.City
	u.PostCode = &info.PostCode
	u.Country = &info.Country
	u.MobileNumber = &info.MobileNumber
	full := info.FullAddress()
	u.ShippingAddress = &full

	if err := s.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to save shipping info: %w", err)
	}
	return u, nil
}

// DeleteAccount removes the account after re-checking credentials
func (s *Service) DeleteAccount(ctx context.Context, userID string, in DeleteAccountInput) error {
	if err := validation.Struct(in); err != nil {
		return apperror.Validation("Email and password are required")
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Email != NormalizeEmail(in.Email) {
		return apperror.Unauthorized("Email does not match your account")
	}
	if !u.HasPassword() || s.passwordManager.VerifyPassword(in.Password, *u.Password) != nil {
		return apperror.Unauthorized("Incorrect password")
	}

	if err := s.repo.Delete(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if u.ProfilePicture != nil {
		if err := s.images.Destroy(ctx, profileFolder+"/"+profilePrefix+u.ID); err != nil {
			s.logger.WithError(err).WithField("user_id", u.ID).Warn("failed to delete profile picture")
		}
	}

	s.logger.WithField("user_id", u.ID).Info("account deleted")
	return nil
}

func (s *Service) checkResetOTP(u *User, otp string) error {
	if u.ResetOTP == "" || u.ResetOTP != strings.TrimSpace(otp) {
		return ErrInvalidOTP
	}
	if u.ResetOTPExpireAt < s.now().Unix() {
		return ErrExpiredOTP
	}
	return nil
}

func passwordMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrPasswordTooLong):
		return "Password cannot exceed 50 characters"
	default:
		return "Password must be at least 8 characters and contain at least one letter and one number"
	}
}

func assign(dst **string, v *string) {
	if v == nil {
		return
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		*dst = nil
		return
	}
	*dst = &trimmed
}

func composeShippingAddress(u *User) *string {
	if u.Address == nil || u.City == nil || u.PostCode == nil || u.Country == nil {
		return u.ShippingAddress
	}
	full := ShippingInfo{
		Address:  *u.Address,
		City:     *u.City,
		PostCode: *u.PostCode,
		Country:  *u.Country,
	}.FullAddress()
	return &full
}
