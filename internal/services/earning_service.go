// internal/services/earning_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/realtime"
)

type EarningService struct {
	db        *gorm.DB
	publisher realtime.Publisher
	now       func() time.Time
}

type CreateEarningRequest struct {
	SongID      uuid.UUID            `json:"song_id" validate:"required"`
	Amount      float64              `json:"amount" validate:"gt=0"`
	Platform    models.Platform      `json:"platform" validate:"required,oneof=spotify apple_music youtube other"`
	Source      models.RevenueSource `json:"source" validate:"required,oneof=mechanical performance sync neighboring_rights"`
	EarningDate string               `json:"earning_date" validate:"omitempty,datetime=2006-01-02"`
}

func NewEarningService(db *gorm.DB, publisher realtime.Publisher) *EarningService {
	return &EarningService{db: db, publisher: publisher, now: time.Now}
}

// List returns earnings on songs the actor can see, newest first.
func (s *EarningService) List(actor Actor) ([]models.Earning, error) {
	q := s.db.Model(&models.Earning{})
	if !actor.IsAdmin() {
		q = q.Where("song_id IN (?)", s.db.Model(&models.Song{}).Select("id").Where("creator_id = ?", actor.ID))
	}
	var out []models.Earning
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return out, nil
}

// Create records revenue against a song and pushes it to the song owner.
func (s *EarningService) Create(ctx context.Context, actor Actor, req *CreateEarningRequest) (*models.Earning, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var song models.Song
	if err := s.db.Select("id", "creator_id").First(&song, "id = ?", req.SongID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	earning := &models.Earning{
		SongID:      req.SongID,
		Amount:      req.Amount,
		Platform:    req.Platform,
		Source:      req.Source,
		EarningDate: req.EarningDate,
	}
	if earning.EarningDate == "" {
		earning.EarningDate = models.Today(s.now().UTC())
	}
	if err := s.db.Create(earning).Error; err != nil {
		return nil, fmt.Errorf("failed to record earning: %w", err)
	}

	ev := realtime.Event{Type: realtime.EventInsert, Table: realtime.TableEarnings, Record: earning}
	if err := s.publisher.Publish(ctx, song.CreatorID, ev); err != nil {
		logrus.WithError(err).WithField("earning_id", earning.ID).Warn("Failed to publish earning")
	}
	return earning, nil
}
