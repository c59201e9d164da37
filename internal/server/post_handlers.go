package server

import (
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts?tag=&search=&page=&limit=
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()

	filter := repository.PostFilter{
		Tag:    c.Query("tag"),
		Search: c.Query("search"),
	}
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	result, err := s.postService.List(ctx, filter, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetTrendingTags handles GET /api/posts/trending-tags
func (s *Server) GetTrendingTags(c *fiber.Ctx) error {
	tags, err := s.postService.TrendingTags(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tags)
}

// GetPostsByTag handles GET /api/posts/tag/:tag
func (s *Server) GetPostsByTag(c *fiber.Ctx) error {
	tag := c.Params("tag")
	if tag == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Tag is required"))
	}

	posts, err := s.postService.ListByTag(c.UserContext(), tag)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPostsByAuthor handles GET /api/posts/author/:username
func (s *Server) GetPostsByAuthor(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	posts, err := s.postService.ListByAuthor(c.UserContext(), username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		Tags       []string `json:"tags"`
		ExternalID string   `json:"externalId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		ExternalID: req.ExternalID,
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	var req struct {
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		Tags       []string `json:"tags"`
		ExternalID string   `json:"externalId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(c.UserContext(), service.UpdatePostInput{
		PostID:     postID,
		ExternalID: req.ExternalID,
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
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

	if err := s.postService.Delete(c.UserContext(), postID, req.ExternalID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// TogglePostLike handles POST /api/posts/:id/like
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
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

	result, err := s.postService.ToggleLike(c.UserContext(), postID, req.ExternalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
