// internal/models/royalty.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Earning struct {
	BaseModel
	SongID      uuid.UUID     `json:"song_id" gorm:"type:uuid;not null;index"`
	Amount      float64       `json:"amount" gorm:"type:decimal(12,2);not null"`
	Platform    Platform      `json:"platform" gorm:"type:varchar(20);not null"`
	Source      RevenueSource `json:"source" gorm:"type:varchar(30);not null"`
	EarningDate string        `json:"earning_date" gorm:"type:varchar(10);not null"`
}

type PayoutRequest struct {
	BaseModel
	UserID      uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount      float64      `json:"amount" gorm:"type:decimal(12,2);not null"`
	RequestDate string       `json:"request_date" gorm:"type:varchar(10);not null"`
	Status      PayoutStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Reference   string       `json:"reference,omitempty" gorm:"size:255"`
	PaidAt      *time.Time   `json:"paid_at"`
}

type SyncDeal struct {
	BaseModel
	SongID     uuid.UUID  `json:"song_id" gorm:"type:uuid;not null;index"`
	Licensee   string     `json:"licensee" gorm:"size:255;not null"`
	DealType   string     `json:"deal_type" gorm:"size:100;not null"`
	Fee        float64    `json:"fee" gorm:"type:decimal(12,2);not null"`
	Terms      string     `json:"terms" gorm:"type:text"`
	Status     DealStatus `json:"status" gorm:"type:varchar(20);not null;default:'offered'"`
	OfferDate  string     `json:"offer_date" gorm:"type:varchar(10);not null"`
	ExpiryDate string     `json:"expiry_date" gorm:"type:varchar(10)"`
}
