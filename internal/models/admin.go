// internal/models/admin.go
package models

import (
	"time"

	"github.com/google/uuid"
)

const SettingAgreementTemplate = "publishing_agreement_text"

type AppSetting struct {
	Key       string     `json:"key" gorm:"primaryKey;size:100"`
	Value     string     `json:"value" gorm:"type:text;not null"`
	UpdatedBy *uuid.UUID `json:"updated_by" gorm:"type:uuid"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	Status       int        `json:"status"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`
}

type Permissions struct {
	CanViewAgreements bool `json:"can_view_agreements"`
	CanRegisterSongs  bool `json:"can_register_songs"`
	CanManageUsers    bool `json:"can_manage_users"`
	CanApproveSongs   bool `json:"can_approve_songs"`
	CanManageEarnings bool `json:"can_manage_earnings"`
	CanManagePayouts  bool `json:"can_manage_payouts"`
}

type RoleDefinition struct {
	ID          Role        `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Permissions Permissions `json:"permissions"`
}

var Roles = []RoleDefinition{
	{
		ID:          RoleAdmin,
		Name:        "Administrator",
		Description: "Has full access to all features, including user management, approvals, and financial data.",
		Permissions: Permissions{
			CanViewAgreements: true,
			CanRegisterSongs:  true,
			CanManageUsers:    true,
			CanApproveSongs:   true,
			CanManageEarnings: true,
			CanManagePayouts:  true,
		},
	},
	{
		ID:          RoleUser,
		Name:        "User / Writer",
		Description: "Can register songs, view their own agreements, and track their earnings.",
		Permissions: Permissions{
			CanViewAgreements: true,
			CanRegisterSongs:  true,
			CanManageEarnings: true,
		},
	},
}

func PermissionsFor(role Role) Permissions {
	for _, r := range Roles {
		if r.ID == role {
			return r.Permissions
		}
	}
	return Permissions{}
}
