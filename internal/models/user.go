// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Account is the authentication identity. The profile row in users shares
// its id and is created lazily on the first profile save.
type Account struct {
	BaseModel
	Email            string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash     string     `json:"-" gorm:"size:255;not null"`
	Name             string     `json:"name" gorm:"size:255"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	LastLoginAt      *time.Time `json:"last_login_at"`
}

func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashedPassword)
	return nil
}

func (a *Account) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
}

// User is the profile row. Payout columns are flat in storage; use
// PayoutMethod and SetPayoutMethod to work with them as a tagged variant.
type User struct {
	ID                uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	Name              string      `json:"name" gorm:"size:255;not null"`
	Email             string      `json:"email" gorm:"size:255;index"`
	Role              Role        `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	Status            UserStatus  `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	PayoutType        *PayoutType `json:"payout_type" gorm:"type:varchar(20)"`
	PaypalEmail       *string     `json:"paypal_email" gorm:"size:255"`
	AccountHolderName *string     `json:"account_holder_name" gorm:"size:255"`
	BankName          *string     `json:"bank_name" gorm:"size:255"`
	SwiftBic          *string     `json:"swift_bic" gorm:"size:20"`
	AccountNumberIban *string     `json:"account_number_iban" gorm:"size:64"`
	Country           *string     `json:"country" gorm:"size:100"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// PayoutMethod is either PayPalDetails or BankDetails.
type PayoutMethod interface {
	Method() PayoutType
}

type PayPalDetails struct {
	Email string `json:"email" validate:"required,email"`
}

func (PayPalDetails) Method() PayoutType { return PayoutTypePayPal }

type BankDetails struct {
	AccountHolderName string `json:"account_holder_name" validate:"required"`
	BankName          string `json:"bank_name" validate:"required"`
	SwiftBic          string `json:"swift_bic" validate:"required"`
	AccountNumberIban string `json:"account_number_iban" validate:"required"`
	Country           string `json:"country" validate:"required"`
}

func (BankDetails) Method() PayoutType { return PayoutTypeBank }

// PayoutMethod rebuilds the variant from the flat columns. A paypal row
// without an email has no usable method.
func (u *User) PayoutMethod() PayoutMethod {
	if u.PayoutType == nil {
		return nil
	}
	switch *u.PayoutType {
	case PayoutTypePayPal:
		if u.PaypalEmail == nil || *u.PaypalEmail == "" {
			return nil
		}
		return PayPalDetails{Email: *u.PaypalEmail}
	case PayoutTypeBank:
		return BankDetails{
			AccountHolderName: deref(u.AccountHolderName),
			BankName:          deref(u.BankName),
			SwiftBic:          deref(u.SwiftBic),
			AccountNumberIban: deref(u.AccountNumberIban),
			Country:           deref(u.Country),
		}
	}
	return nil
}

// SetPayoutMethod writes one variant and nulls every column of the other.
// A nil method leaves the payout columns untouched.
func (u *User) SetPayoutMethod(m PayoutMethod) {
	if m == nil {
		return
	}
	kind := m.Method()
	u.PayoutType = &kind

	switch v := m.(type) {
	case PayPalDetails:
		u.PaypalEmail = ptr(v.Email)
		u.AccountHolderName = nil
		u.BankName = nil
		u.SwiftBic = nil
		u.AccountNumberIban = nil
		u.Country = nil
	case BankDetails:
		u.PaypalEmail = nil
		u.AccountHolderName = ptr(v.AccountHolderName)
		u.BankName = ptr(v.BankName)
		u.SwiftBic = ptr(v.SwiftBic)
		u.AccountNumberIban = ptr(v.AccountNumberIban)
		u.Country = ptr(v.Country)
	}
}

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
