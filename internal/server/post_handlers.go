package server

import (
	"pixelfeed/internal/middleware"
	"pixelfeed/internal/models"
	"pixelfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/posts?page=&limit=&all=
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, err := s.feedService.Feed(c.UserContext(), service.FeedInput{
		Subject: middleware.Subject(c),
		Page:    c.QueryInt("page", 1),
		Limit:   c.QueryInt("limit", 0),
		All:     c.QueryBool("all", false),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithPage(c, page.Posts, page.Pagination)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, middleware.Subject(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}
	req.Subject = middleware.Subject(c)

	post, err := s.postService.CreatePost(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	var req service.UpdatePostInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
		}
	}
	req.Subject = middleware.Subject(c)
	req.PostID = postID

	post, err := s.postService.UpdatePost(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.postService.DeletePost(c.UserContext(), middleware.Subject(c), postID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithSuccess(c)
}
