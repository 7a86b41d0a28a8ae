// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

// rosterPageSize is how many accounts are read per query when building the
// roster.
const rosterPageSize = 1000

type UserService struct {
	db *gorm.DB
}

// UpsertProfileRequest carries the flat payout columns. A payout_type of
// paypal or bank replaces the stored method; absent columns are left alone.
type UpsertProfileRequest struct {
	Name              string             `json:"name" validate:"required,max=255"`
	Email             string             `json:"email" validate:"omitempty,email"`
	Role              models.Role        `json:"role"`
	Status            models.UserStatus  `json:"status"`
	PayoutType        *models.PayoutType `json:"payout_type"`
	PaypalEmail       *string            `json:"paypal_email"`
	AccountHolderName *string            `json:"account_holder_name"`
	BankName          *string            `json:"bank_name"`
	SwiftBic          *string            `json:"swift_bic"`
	AccountNumberIban *string            `json:"account_number_iban"`
	Country           *string            `json:"country"`
}

type UpdateAccessRequest struct {
	Role   models.Role       `json:"role" validate:"required"`
	Status models.UserStatus `json:"status" validate:"required"`
}

// RosterEntry is a profile row, or an account without one, plus whether the
// profile exists.
type RosterEntry struct {
	models.User
	HasProfile bool `json:"has_profile"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Profile returns the caller's profile row, or nil when none is saved.
func (s *UserService) Profile(actor Actor) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// UpsertProfile creates or replaces the caller's profile. Only admins may
// set role and status; everyone else keeps what is stored.
func (s *UserService) UpsertProfile(actor Actor, req *UpsertProfileRequest) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", actor.ID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{ID: actor.ID, Role: models.RoleUser, Status: models.UserStatusActive}
	case err != nil:
		return nil, fmt.Errorf("database error: %w", err)
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = actor.Email
	if req.Email != "" {
		user.Email = req.Email
	}
	if actor.IsAdmin() {
		if req.Role.Valid() {
			user.Role = req.Role
		}
		if req.Status.Valid() {
			user.Status = req.Status
		}
	}

	if m := payoutMethodFrom(req); m != nil {
		user.SetPayoutMethod(m)
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return &user, nil
}

func payoutMethodFrom(req *UpsertProfileRequest) models.PayoutMethod {
	if req.PayoutType == nil {
		return nil
	}
	val := func(p *string) string {
		if p == nil {
			return ""
		}
		return strings.TrimSpace(*p)
	}
	switch *req.PayoutType {
	case models.PayoutTypePayPal:
		return models.PayPalDetails{Email: val(req.PaypalEmail)}
	case models.PayoutTypeBank:
		return models.BankDetails{
			AccountHolderName: val(req.AccountHolderName),
			BankName:          val(req.BankName),
			SwiftBic:          val(req.SwiftBic),
			AccountNumberIban: val(req.AccountNumberIban),
			Country:           val(req.Country),
		}
	}
	return nil
}

// AllUsers merges every account with its profile. Accounts without a profile
// appear with has_profile false, the default role and their sign-up name.
func (s *UserService) AllUsers() ([]RosterEntry, error) {
	var profiles []models.User
	if err := s.db.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	byID := make(map[uuid.UUID]models.User, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	roster := make([]RosterEntry, 0, len(profiles))
	for page := 0; ; page++ {
		var accounts []models.Account
		if err := s.db.Order("created_at ASC").
			Offset(page * rosterPageSize).
			Limit(rosterPageSize).
			Find(&accounts).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		for _, a := range accounts {
			if p, ok := byID[a.ID]; ok {
				roster = append(roster, RosterEntry{User: p, HasProfile: true})
				continue
			}
			name := a.Name
			if name == "" {
				name = a.Email
			}
			roster = append(roster, RosterEntry{
				User: models.User{
					ID:        a.ID,
					Name:      name,
					Email:     a.Email,
					Role:      models.RoleUser,
					Status:    models.UserStatusActive,
					CreatedAt: a.CreatedAt,
					UpdatedAt: a.UpdatedAt,
				},
			})
		}
		if len(accounts) < rosterPageSize {
			break
		}
	}
	return roster, nil
}

// UpdateAccess sets another user's role and status, creating the profile
// from the account when it does not exist yet.
func (s *UserService) UpdateAccess(id uuid.UUID, req *UpdateAccessRequest) (*models.User, error) {
	if !req.Role.Valid() || !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var acct models.Account
		if err := s.db.First(&acct, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		user = models.User{ID: acct.ID, Name: acct.Name, Email: acct.Email}
		if user.Name == "" {
			user.Name = acct.Email
		}
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	user.Role = req.Role
	user.Status = req.Status
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// AdminContacts returns the profiles of every active admin.
func (s *UserService) AdminContacts() ([]models.User, error) {
	var admins []models.User
	if err := s.db.Where("role = ? AND status = ?", models.RoleAdmin, models.UserStatusActive).
		Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return admins, nil
}

func (s *UserService) Roles() []models.RoleDefinition {
	return models.Roles
}
