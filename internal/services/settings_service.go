// internal/services/settings_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

const (
	templateCacheKey = "settings:" + models.SettingAgreementTemplate
	templateCacheTTL = 10 * time.Minute
	// templateNone caches the absence of a stored template.
	templateNone = "\x00"
)

type SettingsService struct {
	db    *gorm.DB
	cache Cache
}

type UpdateSettingRequest struct {
	Value string `json:"value" validate:"required"`
}

func NewSettingsService(db *gorm.DB, cache Cache) *SettingsService {
	return &SettingsService{db: db, cache: cache}
}

// AgreementTemplate returns the stored template and whether one exists.
// Cache failures fall through to the database.
func (s *SettingsService) AgreementTemplate(ctx context.Context) (string, bool, error) {
	if v, ok, err := s.cache.Get(ctx, templateCacheKey); err != nil {
		logrus.WithError(err).Warn("Template cache read failed")
	} else if ok {
		if v == templateNone {
			return "", false, nil
		}
		return v, true, nil
	}

	var setting models.AppSetting
	err := s.db.First(&setting, "key = ?", models.SettingAgreementTemplate).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.store(ctx, templateNone)
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("database error: %w", err)
	}
	s.store(ctx, setting.Value)
	return setting.Value, true, nil
}

// UpdateAgreementTemplate replaces the template and drops the cached copy.
func (s *SettingsService) UpdateAgreementTemplate(ctx context.Context, actor Actor, value string) (*models.AppSetting, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	by := actor.ID
	setting := &models.AppSetting{
		Key:       models.SettingAgreementTemplate,
		Value:     value,
		UpdatedBy: &by,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(setting).Error; err != nil {
		return nil, fmt.Errorf("failed to save setting: %w", err)
	}
	if err := s.cache.Delete(ctx, templateCacheKey); err != nil {
		logrus.WithError(err).Warn("Template cache invalidation failed")
	}
	return setting, nil
}

func (s *SettingsService) store(ctx context.Context, v string) {
	if err := s.cache.Set(ctx, templateCacheKey, v, templateCacheTTL); err != nil {
		logrus.WithError(err).Warn("Template cache write failed")
	}
}
