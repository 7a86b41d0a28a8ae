// internal/models/song.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DurationCheckConstraint is the storage check that rejects durations not in
// mm:ss form.
const DurationCheckConstraint = "songs_duration_format_chk"

type Song struct {
	BaseModel
	CreatorID        uuid.UUID                   `json:"creator_id" gorm:"type:uuid;not null;index"`
	Title            string                      `json:"title" gorm:"size:255;not null"`
	MainArtist       string                      `json:"main_artist" gorm:"size:255;not null"`
	ArtworkURL       string                      `json:"artwork_url" gorm:"type:text"`
	RegistrationDate string                      `json:"registration_date" gorm:"type:varchar(10);not null"`
	WritersData      datatypes.JSONSlice[Writer] `json:"writers_data"`
	SignatureData    string                      `json:"signature_data" gorm:"type:text"`
	SignatureType    SignatureType               `json:"signature_type" gorm:"type:varchar(10)"`
	Status           AgreementStatus             `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	SyncStatus       SyncStatus                  `json:"sync_status" gorm:"type:varchar(20);not null;default:'none'"`
	Duration         *string                     `json:"duration" gorm:"size:10"`
	ISRC             *string                     `json:"isrc" gorm:"column:isrc;size:12"`
	UPC              *string                     `json:"upc" gorm:"column:upc;size:13"`

	// Never stored; derived from the agreement template by the client.
	AgreementText string `json:"agreement_text,omitempty" gorm:"-"`
}

// Writer is a split entry captured at signing time. Entries are snapshots;
// later edits to the linked ManagedWriter do not rewrite them.
type Writer struct {
	ID              string   `json:"id"`
	WriterID        string   `json:"writer_id,omitempty"`
	Name            string   `json:"name" validate:"required"`
	Role            []string `json:"role" validate:"required,min=1"`
	Split           float64  `json:"split" validate:"gte=0,lte=100"`
	Agreed          bool     `json:"agreed"`
	CollectOnBehalf bool     `json:"collect_on_behalf"`
	DOB             string   `json:"dob" validate:"required,past_date"`
	Society         string   `json:"society" validate:"required"`
	IPI             string   `json:"ipi" validate:"required,ipi"`
}

type ManagedWriter struct {
	BaseModel
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name    string    `json:"name" gorm:"size:255;not null"`
	DOB     string    `json:"dob" gorm:"column:dob;type:varchar(10)"`
	Society string    `json:"society" gorm:"size:255"`
	IPI     string    `json:"ipi" gorm:"column:ipi_cae;size:11"`
}
