package server

import (
	"pixelfeed/internal/middleware"
	"pixelfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/likes {post_id}
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parseIDField(c, "post_id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	like, err := s.likeService.Like(c.UserContext(), middleware.Subject(c), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, like)
}

// UnlikePost handles DELETE /api/likes?post_id=
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := parseIDField(c, "post_id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.likeService.Unlike(c.UserContext(), middleware.Subject(c), postID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithSuccess(c)
}
