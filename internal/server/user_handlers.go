package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/users/search?query=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	user, err := s.userService.GetByUsername(c.UserContext(), username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserStats handles GET /api/users/:username/stats
func (s *Server) GetUserStats(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	stats, err := s.userService.ComputeStats(c.UserContext(), username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetCurrentUser handles POST /api/users/current. The body carries the
// caller's external identity; only its owner receives email and externalId.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	var req struct {
		ExternalID string `json:"externalId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.GetCurrentUser(c.UserContext(), req.ExternalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpsertProfile handles POST /api/users/profile
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	var req service.UpsertUserInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Upsert(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
