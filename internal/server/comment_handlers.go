package server

import (
	"pixelfeed/internal/middleware"
	"pixelfeed/internal/models"
	"pixelfeed/internal/service"
	"pixelfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, comments)
}

// CreateComment handles POST /api/comments {post_id, content}
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		PostID  string `json:"post_id" form:"post_id"`
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}
	postID, err := validation.ParseUUID("post_id", req.PostID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		Subject: middleware.Subject(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/comments?comment_id=
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseIDField(c, "comment_id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.commentService.DeleteComment(c.UserContext(), middleware.Subject(c), commentID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithSuccess(c)
}
