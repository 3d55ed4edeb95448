// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth providers
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents the user entity
type User struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"not null;size:100" json:"name"`
	LastName          string    `gorm:"size:100" json:"lastName"`
	Email             string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password          *string   `gorm:"size:255" json:"-"` // nil for OAuth-only accounts
	IsAdmin           bool      `gorm:"not null" json:"isAdmin"`
	IsAccountVerified bool      `gorm:"not null" json:"isAccountVerified"`
	VerifyOTP         string    `gorm:"size:10" json:"-"`
	VerifyOTPExpireAt int64     `gorm:"not null" json:"-"` // epoch seconds
	ResetOTP          string    `gorm:"size:10" json:"-"`
	ResetOTPExpireAt  int64     `gorm:"not null" json:"-"` // epoch seconds
	AuthProvider      string    `gorm:"size:20;not null" json:"authProvider"`
	GoogleID          *string   `gorm:"size:255;uniqueIndex" json:"-"`
	MobileNumber      *string   `gorm:"size:30" json:"mobileNumber"`
	Address           *string   `gorm:"size:500" json:"address"`
	City              *string   `gorm:"size:100" json:"city"`
	PostCode          *string   `gorm:"size:20" json:"postCode"`
	Country           *string   `gorm:"size:100" json:"country"`
	ShippingAddress   *string   `gorm:"type:text" json:"shippingAddress"`
	ProfilePicture    *string   `gorm:"size:500" json:"profilePicture"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.PrepareCreate()
	return nil
}

// PrepareCreate assigns identity and normalizes the email
func (u *User) PrepareCreate() {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	// Email should be lowercase
	u.Email = NormalizeEmail(u.Email)
	if u.AuthProvider == "" {
		u.AuthProvider = ProviderLocal
	}
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}

// HasPassword reports whether the account can log in with a password
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// ShippingInfo is the address block a buyer may keep on the profile
type ShippingInfo struct {
	Address      string
	City         string
	PostCode     string
	Country      string
	MobileNumber string
}

// FullAddress joins the address block into the single-line shipping address
func (s ShippingInfo) FullAddress() string {
	return strings.Join([]string{s.Address, s.City, s.PostCode, s.Country}, ", ")
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
