package user_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/upload"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
	"github.com/your-org/bookstore-backend/internal/pkg/auth"
)

const password = "secret123"

type mailbox struct {
	verify  map[string]string
	reset   map[string]string
	welcome []string
}

func (m *mailbox) SendVerifyOTP(ctx context.Context, u *user.User, otp string) error {
	m.verify[u.Email] = otp
	return nil
}

func (m *mailbox) SendResetOTP(ctx context.Context, u *user.User, otp string) error {
	m.reset[u.Email] = otp
	return nil
}

func (m *mailbox) SendWelcome(ctx context.Context, u *user.User) error {
	m.welcome = append(m.welcome, u.Email)
	return nil
}

type images struct {
	destroyed []string
}

func (i *images) Upload(ctx context.Context, r io.Reader, filename, folder, publicID string) (*upload.Result, error) {
	return &upload.Result{URL: "/uploads/" + folder + "/" + publicID + ".jpg", PublicID: folder + "/" + publicID}, nil
}

func (i *images) Destroy(ctx context.Context, publicID string) error {
	i.destroyed = append(i.destroyed, publicID)
	return nil
}

type fixture struct {
	svc    *user.Service
	store  *database.Store
	mail   *mailbox
	images *images
	jwt    *auth.JWTManager
}

func setup(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		App: config.AppConfig{Name: "bookstore-test"},
		JWT: config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
	}

	f := &fixture{
		store:  memory.NewStore(),
		mail:   &mailbox{verify: map[string]string{}, reset: map[string]string{}},
		images: &images{},
		jwt:    auth.NewJWTManager(cfg),
	}
	f.svc = user.NewService(f.store.Users, auth.NewPasswordManager(4), f.jwt, f.mail, f.images, logger)
	return f
}

// verifiedUser registers and verifies an account
func (f *fixture) verifiedUser(t *testing.T, email string) *user.User {
	t.Helper()
	ctx := context.Background()

	_, _, err := f.svc.Register(ctx, user.RegisterInput{
		Name:            "Sara",
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)

	u, err := f.svc.VerifyEmail(ctx, user.VerifyEmailInput{Email: email, OTP: f.mail.verify[strings.ToLower(email)]})
	require.NoError(t, err)
	return u
}

func TestRegisterAndVerify(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u, msg, err := f.svc.Register(ctx, user.RegisterInput{
		Name:            " Sara ",
		Email:           "Sara@Example.com",
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
	assert.Equal(t, "Registration successful. OTP sent to your email.", msg)
	assert.Equal(t, "sara@example.com", u.Email)
	assert.Equal(t, "Sara", u.Name)
	assert.False(t, u.IsAccountVerified)

	otp := f.mail.verify["sara@example.com"]
	require.Len(t, otp, 6)

	_, err = f.svc.VerifyEmail(ctx, user.VerifyEmailInput{Email: "sara@example.com", OTP: "000000x"})
	assert.ErrorIs(t, err, user.ErrInvalidVerifyOTP)

	verified, err := f.svc.VerifyEmail(ctx, user.VerifyEmailInput{Email: "sara@example.com", OTP: otp})
	require.NoError(t, err)
	assert.True(t, verified.IsAccountVerified)
	assert.Equal(t, []string{"sara@example.com"}, f.mail.welcome)

	_, err = f.svc.VerifyEmail(ctx, user.VerifyEmailInput{Email: "sara@example.com", OTP: otp})
	assert.ErrorIs(t, err, user.ErrAlreadyVerified)
}

func TestRegisterUnverifiedAccountAgain(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	in := user.RegisterInput{Name: "Sara", Email: "sara@example.com", Password: password, ConfirmPassword: password}

	first, _, err := f.svc.Register(ctx, in)
	require.NoError(t, err)

	in.Name = "Sarah"
	second, msg, err := f.svc.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Sarah", second.Name)
	assert.Contains(t, msg, "unverified")
}

func TestRegisterRejects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.verifiedUser(t, "sara@example.com")

	_, _, err := f.svc.Register(ctx, user.RegisterInput{Name: "Sara", Email: "sara@example.com", Password: password, ConfirmPassword: password})
	assert.ErrorIs(t, err, user.ErrEmailInUse)

	_, _, err = f.svc.Register(ctx, user.RegisterInput{Name: "Ali", Email: "ali@example.com", Password: password, ConfirmPassword: "secret124"})
	assert.ErrorIs(t, err, user.ErrPasswordMismatch)

	_, _, err = f.svc.Register(ctx, user.RegisterInput{Name: "Ali", Email: "ali@example.com", Password: "short", ConfirmPassword: "short"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestAuthenticate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.verifiedUser(t, "sara@example.com")

	res, err := f.svc.Authenticate(ctx, user.LoginInput{Email: "SARA@example.com", Password: password})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.EqualValues(t, 3600, res.ExpiresIn)

	claims, err := f.jwt.ValidateAccessToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = f.svc.Authenticate(ctx, user.LoginInput{Email: "sara@example.com", Password: "wrong1234"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = f.svc.Authenticate(ctx, user.LoginInput{Email: "nobody@example.com", Password: password})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestPasswordReset(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.verifiedUser(t, "sara@example.com")

	require.NoError(t, f.svc.SendResetOTP(ctx, user.EmailInput{Email: "sara@example.com"}))
	otp := f.mail.reset["sara@example.com"]
	require.Len(t, otp, 6)

	assert.ErrorIs(t, f.svc.VerifyResetOTP(ctx, user.VerifyResetInput{Email: "sara@example.com", OTP: "999999x"}), user.ErrInvalidOTP)
	require.NoError(t, f.svc.VerifyResetOTP(ctx, user.VerifyResetInput{Email: "sara@example.com", OTP: otp}))

	require.NoError(t, f.svc.ResetPassword(ctx, user.ResetPasswordInput{
		Email:           "sara@example.com",
		OTP:             otp,
		NewPassword:     "fresh4567",
		ConfirmPassword: "fresh4567",
	}))

	_, err := f.svc.Authenticate(ctx, user.LoginInput{Email: "sara@example.com", Password: "fresh4567"})
	require.NoError(t, err)

	// The code is single use
	assert.ErrorIs(t, f.svc.VerifyResetOTP(ctx, user.VerifyResetInput{Email: "sara@example.com", OTP: otp}), user.ErrInvalidOTP)
}

func TestResetOTPExpires(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.verifiedUser(t, "sara@example.com")

	stored, err := f.store.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	stored.ResetOTP = "123456"
	stored.ResetOTPExpireAt = time.Now().Add(-time.Minute).Unix()
	require.NoError(t, f.store.Users.Save(ctx, stored))

	err = f.svc.VerifyResetOTP(ctx, user.VerifyResetInput{Email: "sara@example.com", OTP: "123456"})
	assert.ErrorIs(t, err, user.ErrExpiredOTP)
}

func TestSendResetOTPRequiresVerifiedAccount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, _, err := f.svc.Register(ctx, user.RegisterInput{Name: "Sara", Email: "sara@example.com", Password: password, ConfirmPassword: password})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.SendResetOTP(ctx, user.EmailInput{Email: "sara@example.com"}), user.ErrNotVerified)
}

func TestUpdateProfileComposesShippingAddress(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.verifiedUser(t, "sara@example.com")

	address, city, postCode, country := "5 Canal View", "Lahore", "54000", "Pakistan"
	updated, err := f.svc.UpdateProfile(ctx, u.ID, user.UpdateProfileInput{
		Address:  &address,
		City:     &city,
		PostCode: &postCode,
		Country:  &country,
	}, &user.ImageUpload{File: strings.NewReader("jpg"), Filename: "me.jpg"})
	require.NoError(t, err)

	require.NotNil(t, updated.ShippingAddress)
	assert.Equal(t, "5 Canal View, Lahore, 54000, Pakistan", *updated.ShippingAddress)
	require.NotNil(t, updated.ProfilePicture)
	assert.Equal(t, "/uploads/user-profiles/profile_"+u.ID+".jpg", *updated.ProfilePicture)

	cleared, err := f.svc.RemoveProfilePicture(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.ProfilePicture)
	assert.Equal(t, []string{"user-profiles/profile_" + u.ID}, f.images.destroyed)
}

func TestSaveShippingInfo(t *testing.T) {
	f := setup(t)
	u := f.verifiedUser(t, "sara@example.com")

	updated, err := f.svc.SaveShippingInfo(context.Background(), u.ID, user.ShippingInfo{
		Address:      "5 Canal View",
		City:         "Lahore",
		PostCode:     "54000",
		Country:      "Pakistan",
		MobileNumber: "03001234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "03001234567", *updated.MobileNumber)
	assert.Equal(t, "5 Canal View, Lahore, 54000, Pakistan", *updated.ShippingAddress)
}

func TestDeleteAccount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.verifiedUser(t, "sara@example.com")

	err := f.svc.DeleteAccount(ctx, u.ID, user.DeleteAccountInput{Email: "sara@example.com", Password: "wrong1234"})
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	require.NoError(t, f.svc.DeleteAccount(ctx, u.ID, user.DeleteAccountInput{Email: "sara@example.com", Password: password}))

	_, err = f.svc.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
