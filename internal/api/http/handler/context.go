package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	pasetotoken "github.com/hirelink/hirelink_backend/pkg/paseto"
)

// employerIDFromLocals extracts the authenticated employer from the verified
// token claims set by the auth middleware.
func employerIDFromLocals(c fiber.Ctx) (uuid.UUID, bool) {
	claims, ok := pasetotoken.ClaimsFromFiber(c)
	if !ok || claims.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
