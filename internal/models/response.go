package models

import (
	"github.com/gofiber/fiber/v2"
)

// Pagination describes the window returned by a paginated listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// Envelope is the JSON body shape shared by every endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"`
}

// RespondWithData writes a successful envelope with the given status.
func RespondWithData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

// RespondWithPage writes a successful envelope carrying pagination metadata.
func RespondWithPage(c *fiber.Ctx, data interface{}, page Pagination) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data, Pagination: &page})
}

// RespondWithSuccess writes `{success: true}` with no payload.
func RespondWithSuccess(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true})
}

// RespondWithError creates a standardized error response with an explicit status.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	appErr := AsAppError(err)
	return c.Status(status).JSON(Envelope{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}

// RespondWithAppError derives the status from the error code.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	appErr := AsAppError(err)
	return RespondWithError(c, StatusFor(appErr.Code), appErr)
}
