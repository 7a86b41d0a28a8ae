// internal/services/audit_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

type AuditService struct {
	db *gorm.DB
}

type AuditFilter struct {
	UserID       *uuid.UUID
	ResourceType string
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record stores an entry and logs instead of failing.
func (s *AuditService) Record(entry *models.AuditLog) {
	if err := s.db.Create(entry).Error; err != nil {
		logrus.WithError(err).WithField("action", entry.Action).Error("Failed to create audit log")
	}
}

func (s *AuditService) List(filter AuditFilter, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	q := s.db.Model(&models.AuditLog{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.ResourceType != "" {
		q = q.Where("resource_type = ?", filter.ResourceType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	var logs []models.AuditLog
	q = utils.ApplySort(q, params, []string{"created_at", "action", "resource_type", "status"})
	if err := utils.ApplyPagination(q, params).Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}
	return logs, total, nil
}
