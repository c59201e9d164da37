package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetRepliesByPost handles GET /api/replies/post/:postId
func (s *Server) GetRepliesByPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId", "post ID")
	if err != nil {
		return nil
	}

	replies, err := s.replyService.ListByPost(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(replies)
}

// CreateReply handles POST /api/replies
func (s *Server) CreateReply(c *fiber.Ctx) error {
	var req struct {
		PostID        uint   `json:"postId"`
		ParentReplyID *uint  `json:"parentReplyId"`
		Content       string `json:"content"`
		ExternalID    string `json:"externalId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("postId is required", "postId"))
	}

	reply, err := s.replyService.Create(c.UserContext(), service.CreateReplyInput{
		PostID:        req.PostID,
		ParentReplyID: req.ParentReplyID,
		ExternalID:    req.ExternalID,
		Content:       req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

// DeleteReply handles DELETE /api/replies/:id
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	replyID, err := s.parseID(c, "id", "reply ID")
	if err != nil {
		return nil
	}

	var req struct {
		ExternalID string `json:"externalId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.replyService.Delete(c.UserContext(), replyID, req.ExternalID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reply deleted successfully"})
}

// ToggleReplyLike handles POST /api/replies/:id/like
func (s *Server) ToggleReplyLike(c *fiber.Ctx) error {
	replyID, err := s.parseID(c, "id", "reply ID")
	if err != nil {
		return nil
	}

	var req struct {
		ExternalID string `json:"externalId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.replyService.ToggleLike(c.UserContext(), replyID, req.ExternalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
