// internal/services/managed_writer_service.go
package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

type ManagedWriterService struct {
	db *gorm.DB
}

type CreateManagedWriterRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	DOB     string `json:"dob" validate:"omitempty,past_date"`
	Society string `json:"society" validate:"max=255"`
	IPI     string `json:"ipi" validate:"omitempty,ipi"`
}

func NewManagedWriterService(db *gorm.DB) *ManagedWriterService {
	return &ManagedWriterService{db: db}
}

func (s *ManagedWriterService) List(actor Actor) ([]models.ManagedWriter, error) {
	var writers []models.ManagedWriter
	if err := scope(s.db, actor, "user_id").Order("name ASC").Find(&writers).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return writers, nil
}

// Create adds a writer to the caller's library.
func (s *ManagedWriterService) Create(actor Actor, req *CreateManagedWriterRequest) (*models.ManagedWriter, error) {
	w := &models.ManagedWriter{
		UserID:  actor.ID,
		Name:    strings.TrimSpace(req.Name),
		DOB:     req.DOB,
		Society: req.Society,
		IPI:     req.IPI,
	}
	if err := s.db.Create(w).Error; err != nil {
		return nil, fmt.Errorf("failed to create managed writer: %w", err)
	}
	return w, nil
}
