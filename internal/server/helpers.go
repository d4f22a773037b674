package server

import (
	"pixelfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// parseIDParam reads a UUID route parameter.
func parseIDParam(c *fiber.Ctx, param string) (uuid.UUID, error) {
	return validation.ParseUUID(param, c.Params(param))
}

// idBody carries the identifiers DELETE endpoints accept in a request body.
type idBody struct {
	PostID      string `json:"post_id" form:"post_id"`
	CommentID   string `json:"comment_id" form:"comment_id"`
	FollowingID string `json:"following_id" form:"following_id"`
}

func (b idBody) get(field string) string {
	switch field {
	case "post_id":
		return b.PostID
	case "comment_id":
		return b.CommentID
	case "following_id":
		return b.FollowingID
	default:
		return ""
	}
}

// parseIDField reads a UUID from the query string, falling back to the same field
// of the request body. An unparsable body counts as a missing field.
func parseIDField(c *fiber.Ctx, field string) (uuid.UUID, error) {
	raw := c.Query(field)
	if raw == "" && len(c.Body()) > 0 {
		var body idBody
		if err := c.BodyParser(&body); err == nil {
			raw = body.get(field)
		}
	}
	return validation.ParseUUID(field, raw)
}
