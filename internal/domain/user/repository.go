package user

import (
	"context"

	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("User not found")
	ErrEmailInUse         = apperror.Conflict("Email already in use")
	ErrInvalidCredentials = apperror.Unauthorized("Invalid credentials")
	ErrInvalidOTP         = apperror.Validation("Invalid OTP")
	ErrExpiredOTP         = apperror.Validation("OTP has expired")
	ErrInvalidVerifyOTP   = apperror.Validation("Invalid or expired OTP")
	ErrAlreadyVerified    = apperror.Validation("Account is already verified")
	ErrNotVerified        = apperror.Unauthorized("Please verify your email first")
	ErrPasswordMismatch   = apperror.Validation("Passwords do not match")
	ErrOTPSendFailed      = apperror.New(apperror.KindInternal, "Failed to send OTP")
)

// Repository persists users
type Repository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	// Delete removes the user's reviews, cart and wishlist and detaches
	// their orders before deleting the account, as one unit.
	Delete(ctx context.Context, id string) error
}
