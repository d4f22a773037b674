package server

import (
	"pixelfeed/internal/middleware"
	"pixelfeed/internal/models"
	"pixelfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	profile, err := s.profileService.GetProfile(c.UserContext(), userID, middleware.Subject(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, profile)
}

// SyncUser handles POST /api/users/sync {name}. It provisions the caller's local
// record from their identity token.
func (s *Server) SyncUser(c *fiber.Ctx) error {
	var req service.SyncUserInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
		}
	}
	req.Subject = middleware.Subject(c)
	req.ClaimName = middleware.SubjectName(c)

	user, err := s.userService.SyncUser(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, user)
}
