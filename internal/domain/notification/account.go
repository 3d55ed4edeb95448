package notification

import (
	"context"
	"fmt"

	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/pkg/email"
)

// AccountMailer sends the account lifecycle emails
type AccountMailer struct {
	dispatcher *Dispatcher
	templates  Renderer
	site       Site
}

// NewAccountMailer creates an account mailer
func NewAccountMailer(d *Dispatcher, templates Renderer, site Site) *AccountMailer {
	return &AccountMailer{dispatcher: d, templates: templates, site: site}
}

// SendVerifyOTP mails the account verification code
func (m *AccountMailer) SendVerifyOTP(ctx context.Context, u *user.User, otp string) error {
	return m.send(ctx, u, email.EmailTypeVerifyOTP, "Account Verification OTP", email.OTPData{
		EmailTemplateData: m.base(u),
		Code:              otp,
		ExpiryTime:        "24 hours",
	})
}

// SendResetOTP mails the password reset code
func (m *AccountMailer) SendResetOTP(ctx context.Context, u *user.User, otp string) error {
	return m.send(ctx, u, email.EmailTypeResetOTP, "Password Reset OTP", email.OTPData{
		EmailTemplateData: m.base(u),
		Code:              otp,
		ExpiryTime:        "10 minutes",
	})
}

// SendWelcome greets a freshly verified account
func (m *AccountMailer) SendWelcome(ctx context.Context, u *user.User) error {
	return m.send(ctx, u, email.EmailTypeWelcome, fmt.Sprintf("Welcome to %s!", m.site.Name), email.WelcomeEmailData{
		EmailTemplateData: m.base(u),
		ShopURL:           m.site.BaseURL,
	})
}

func (m *AccountMailer) base(u *user.User) email.EmailTemplateData {
	return email.GetBaseTemplateData(m.site.Name, m.site.BaseURL, u.GetFullName(), u.Email)
}

func (m *AccountMailer) send(ctx context.Context, u *user.User, kind email.EmailType, subject string, data any) error {
	html, err := m.templates.Render(kind, data)
	if err != nil {
		return err
	}

	res := m.dispatcher.Send(ctx, Message{
		To:      u.Email,
		Subject: subject,
		HTML:    html,
		Type:    kind,
	})
	return resultErr(string(kind), res)
}
