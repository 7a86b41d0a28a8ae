// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// DateLayout is the storage format of calendar dates (registration, earning,
// offer dates).
const DateLayout = "2006-01-02"

// Today formats t as a storage calendar date.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

// Enums
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusDeactivated
}

type AgreementStatus string

const (
	AgreementStatusPending  AgreementStatus = "pending"
	AgreementStatusActive   AgreementStatus = "active"
	AgreementStatusRejected AgreementStatus = "rejected"
	AgreementStatusExpired  AgreementStatus = "expired"
)

func (s AgreementStatus) Valid() bool {
	switch s {
	case AgreementStatusPending, AgreementStatusActive, AgreementStatusRejected, AgreementStatusExpired:
		return true
	}
	return false
}

type SyncStatus string

const (
	SyncStatusNone     SyncStatus = "none"
	SyncStatusPending  SyncStatus = "pending"
	SyncStatusActive   SyncStatus = "active"
	SyncStatusRejected SyncStatus = "rejected"
)

func (s SyncStatus) Valid() bool {
	switch s {
	case SyncStatusNone, SyncStatusPending, SyncStatusActive, SyncStatusRejected:
		return true
	}
	return false
}

type DealStatus string

const (
	DealStatusOffered  DealStatus = "offered"
	DealStatusAccepted DealStatus = "accepted"
	DealStatusRejected DealStatus = "rejected"
	DealStatusExpired  DealStatus = "expired"
)

func (s DealStatus) Valid() bool {
	switch s {
	case DealStatusOffered, DealStatusAccepted, DealStatusRejected, DealStatusExpired:
		return true
	}
	return false
}

type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusApproved PayoutStatus = "approved"
	PayoutStatusPaid     PayoutStatus = "paid"
)

func (s PayoutStatus) Valid() bool {
	switch s {
	case PayoutStatusPending, PayoutStatusApproved, PayoutStatusPaid:
		return true
	}
	return false
}

type Platform string

const (
	PlatformSpotify    Platform = "spotify"
	PlatformAppleMusic Platform = "apple_music"
	PlatformYouTube    Platform = "youtube"
	PlatformOther      Platform = "other"
)

var Platforms = []Platform{PlatformSpotify, PlatformAppleMusic, PlatformYouTube, PlatformOther}

type RevenueSource string

const (
	RevenueSourceMechanical        RevenueSource = "mechanical"
	RevenueSourcePerformance       RevenueSource = "performance"
	RevenueSourceSync              RevenueSource = "sync"
	RevenueSourceNeighboringRights RevenueSource = "neighboring_rights"
)

var RevenueSources = []RevenueSource{
	RevenueSourceMechanical,
	RevenueSourcePerformance,
	RevenueSourceSync,
	RevenueSourceNeighboringRights,
}

type SignatureType string

const (
	SignatureTypeDraw SignatureType = "draw"
	SignatureTypeType SignatureType = "type"
)

type PayoutType string

const (
	PayoutTypePayPal PayoutType = "paypal"
	PayoutTypeBank   PayoutType = "bank"
)
