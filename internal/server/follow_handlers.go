package server

import (
	"pixelfeed/internal/middleware"
	"pixelfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/follows {following_id}
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseIDField(c, "following_id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	follow, err := s.followService.Follow(c.UserContext(), middleware.Subject(c), targetID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, follow)
}

// UnfollowUser handles DELETE /api/follows?following_id=
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := parseIDField(c, "following_id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.followService.Unfollow(c.UserContext(), middleware.Subject(c), targetID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithSuccess(c)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	users, err := s.followService.ListFollowers(c.UserContext(), userID, middleware.Subject(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, users)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	users, err := s.followService.ListFollowing(c.UserContext(), userID, middleware.Subject(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, users)
}
