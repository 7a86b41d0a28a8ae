// internal/services/sync_deal_service.go
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

type SyncDealService struct {
	db  *gorm.DB
	now func() time.Time
}

type CreateSyncDealRequest struct {
	SongID     uuid.UUID `json:"song_id" validate:"required"`
	DealType   string    `json:"deal_type" validate:"required,max=100"`
	Licensee   string    `json:"licensee" validate:"required,max=255"`
	Fee        float64   `json:"fee" validate:"gte=0"`
	Terms      string    `json:"terms"`
	ExpiryDate string    `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateSyncDealStatusRequest struct {
	Status models.DealStatus `json:"status" validate:"required"`
}

func NewSyncDealService(db *gorm.DB) *SyncDealService {
	return &SyncDealService{db: db, now: time.Now}
}

func ownSongs(db *gorm.DB, actor Actor) *gorm.DB {
	return db.Model(&models.Song{}).Select("id").Where("creator_id = ?", actor.ID)
}

func (s *SyncDealService) List(actor Actor) ([]models.SyncDeal, error) {
	q := s.db.Model(&models.SyncDeal{})
	if !actor.IsAdmin() {
		q = q.Where("song_id IN (?)", ownSongs(s.db, actor))
	}
	var out []models.SyncDeal
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return out, nil
}

// Create offers a licence on a song. Admin only.
func (s *SyncDealService) Create(actor Actor, req *CreateSyncDealRequest) (*models.SyncDeal, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var count int64
	if err := s.db.Model(&models.Song{}).Where("id = ?", req.SongID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return nil, ErrSongNotFound
	}

	deal := &models.SyncDeal{
		SongID:     req.SongID,
		DealType:   strings.TrimSpace(req.DealType),
		Licensee:   strings.TrimSpace(req.Licensee),
		Fee:        req.Fee,
		Terms:      req.Terms,
		Status:     models.DealStatusOffered,
		OfferDate:  models.Today(s.now().UTC()),
		ExpiryDate: req.ExpiryDate,
	}
	if err := s.db.Create(deal).Error; err != nil {
		return nil, fmt.Errorf("failed to create sync deal: %w", err)
	}
	return deal, nil
}

// UpdateStatus lets the song owner answer an open offer; admins may set any
// status.
func (s *SyncDealService) UpdateStatus(actor Actor, id uuid.UUID, status models.DealStatus) (*models.SyncDeal, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var deal models.SyncDeal
	if err := s.db.First(&deal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.IsAdmin() {
		var song models.Song
		if err := s.db.Select("creator_id").First(&song, "id = ?", deal.SongID).Error; err != nil || song.CreatorID != actor.ID {
			return nil, ErrDealNotFound
		}
		if deal.Status != models.DealStatusOffered {
			return nil, &TransitionError{From: string(deal.Status), To: string(status)}
		}
		if status != models.DealStatusAccepted && status != models.DealStatusRejected {
			return nil, ErrForbidden
		}
	}

	if err := s.db.Model(&deal).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update sync deal: %w", err)
	}
	deal.Status = status
	return &deal, nil
}
