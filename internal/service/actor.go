package service

import (
	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

// Actor identifies the authenticated caller of a use case.
type Actor struct {
	ID   string
	Role models.UserRole
}

// ActorFromClaims converts validated token claims into an Actor.
func ActorFromClaims(claims *models.JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{ID: claims.UserID, Role: claims.Role}
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// canSeeStudent allows staff everywhere and students only on their own records.
func (a Actor) canSeeStudent(studentID string) error {
	switch a.Role {
	case models.RoleAdmin, models.RoleTeacher:
		return nil
	case models.RoleStudent:
		if a.ID == studentID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "students may only view their own records")
}
