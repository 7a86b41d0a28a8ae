// internal/services/actor.go
package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

// Actor is the authenticated caller. Row access follows one rule: admins
// see everything, users see their own rows.
type Actor struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Owns reports whether the actor may act on a row owned by ownerID.
func (a Actor) Owns(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.ID == ownerID
}

// NewActor builds an Actor from token claims.
func NewActor(id, email, name, role string) (Actor, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Actor{}, fmt.Errorf("invalid user id: %w", err)
	}
	return Actor{ID: uid, Email: email, Name: name, Role: models.Role(role)}, nil
}
