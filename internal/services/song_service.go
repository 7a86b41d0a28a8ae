// internal/services/song_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

type SongService struct {
	db  *gorm.DB
	now func() time.Time
}

// CreateSongRequest is a songs row as the client writes it.
type CreateSongRequest struct {
	CreatorID        *uuid.UUID             `json:"creator_id"`
	Title            string                 `json:"title" validate:"required,max=255"`
	MainArtist       string                 `json:"main_artist" validate:"required,max=255"`
	ArtworkURL       string                 `json:"artwork_url" validate:"omitempty,artwork_url"`
	RegistrationDate string                 `json:"registration_date"`
	WritersData      []models.Writer        `json:"writers_data" validate:"required,split_total,dive"`
	SignatureData    string                 `json:"signature_data"`
	SignatureType    models.SignatureType   `json:"signature_type" validate:"omitempty,oneof=draw type"`
	Status           models.AgreementStatus `json:"status"`
	SyncStatus       models.SyncStatus      `json:"sync_status"`
	Duration         *string                `json:"duration"`
	ISRC             *string                `json:"isrc" validate:"omitempty,isrc"`
	UPC              *string                `json:"upc" validate:"omitempty,upc"`
}

type UpdateSongStatusRequest struct {
	Status models.AgreementStatus `json:"status" validate:"required"`
}

type UpdateSyncStatusRequest struct {
	SyncStatus models.SyncStatus `json:"sync_status" validate:"required"`
}

func NewSongService(db *gorm.DB) *SongService {
	return &SongService{db: db, now: time.Now}
}

// scope limits a query to rows the actor may see through column.
func scope(db *gorm.DB, actor Actor, column string) *gorm.DB {
	if actor.IsAdmin() {
		return db
	}
	return db.Where(column+" = ?", actor.ID)
}

func (s *SongService) List(actor Actor) ([]models.Song, error) {
	var songs []models.Song
	if err := scope(s.db, actor, "creator_id").Order("created_at DESC").Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return songs, nil
}

func (s *SongService) Get(actor Actor, id uuid.UUID) (*models.Song, error) {
	var song models.Song
	if err := s.db.First(&song, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !actor.Owns(song.CreatorID) {
		return nil, ErrSongNotFound
	}
	return &song, nil
}

// Create stores a registration. Users always register for themselves and
// start pending; admins may register on behalf of someone and pick a status.
func (s *SongService) Create(actor Actor, req *CreateSongRequest) (*models.Song, error) {
	song := &models.Song{
		CreatorID:        actor.ID,
		Title:            strings.TrimSpace(req.Title),
		MainArtist:       strings.TrimSpace(req.MainArtist),
		ArtworkURL:       req.ArtworkURL,
		RegistrationDate: req.RegistrationDate,
		WritersData:      req.WritersData,
		SignatureData:    req.SignatureData,
		SignatureType:    req.SignatureType,
		Status:           models.AgreementStatusPending,
		SyncStatus:       models.SyncStatusNone,
		Duration:         blankToNil(req.Duration),
		ISRC:             blankToNil(req.ISRC),
		UPC:              blankToNil(req.UPC),
	}
	if song.RegistrationDate == "" {
		song.RegistrationDate = models.Today(s.now().UTC())
	}
	if req.SyncStatus == models.SyncStatusPending {
		song.SyncStatus = models.SyncStatusPending
	}
	if actor.IsAdmin() {
		if req.CreatorID != nil && *req.CreatorID != uuid.Nil {
			song.CreatorID = *req.CreatorID
		}
		if req.Status.Valid() {
			song.Status = req.Status
		}
		if req.SyncStatus.Valid() {
			song.SyncStatus = req.SyncStatus
		}
	}

	if err := s.db.Create(song).Error; err != nil {
		return nil, fmt.Errorf("failed to create song: %w", err)
	}
	return song, nil
}

// UpdateStatus changes the agreement status. Admins may set any status;
// an owner may only resubmit, which puts the song back to pending.
func (s *SongService) UpdateStatus(actor Actor, id uuid.UUID, status models.AgreementStatus) (*models.Song, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	song, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && status != models.AgreementStatusPending {
		return nil, ErrForbidden
	}

	if err := s.db.Model(song).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update song status: %w", err)
	}
	song.Status = status
	return song, nil
}

// UpdateSyncStatus moves a song through the sync catalog. Owners may opt
// in (pending) or out (none); review outcomes are admin only.
func (s *SongService) UpdateSyncStatus(actor Actor, id uuid.UUID, status models.SyncStatus) (*models.Song, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	song, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && status != models.SyncStatusPending && status != models.SyncStatusNone {
		return nil, ErrForbidden
	}

	if err := s.db.Model(song).Update("sync_status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update sync status: %w", err)
	}
	song.SyncStatus = status
	return song, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
