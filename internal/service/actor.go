package service

import (
	"github.com/noah-isme/luct-report-api/internal/models"
)

// Actor is the pre-validated identity performing an operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// NewActor builds an actor from raw identity claims. Unknown roles keep an empty role,
// which every role-gated operation rejects.
func NewActor(id uint, rawRole string) Actor {
	role, _ := models.ParseRole(rawRole)
	return Actor{ID: id, Role: role}
}

// Is reports whether the actor holds one of roles.
func (a Actor) Is(roles ...models.Role) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}
