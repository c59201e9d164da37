package service

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

const (
	maxTitleLen   = 200
	maxContentLen = 50000
	maxTagLen     = 30

	wordsPerMinute = 200
	excerptRunes   = 250

	defaultPageSize  = 10
	maxPageSize      = 100
	trendingTagLimit = 20
)

// PostService owns post CRUD, like toggles, and tag aggregation.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	ExternalID string
	Title      string
	Content    string
	Tags       []string
}

type UpdatePostInput struct {
	PostID     uint
	ExternalID string
	Title      string
	Content    string
	Tags       []string
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts       []*models.Post `json:"posts"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Total       int64          `json:"total"`
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

// List returns an offset-paginated page of posts, newest first.
func (s *PostService) List(ctx context.Context, filter repository.PostFilter, page, pageSize int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	posts, err := s.postRepo.List(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &PostPage{
		Posts:       posts,
		TotalPages:  totalPages,
		CurrentPage: page,
		Total:       total,
	}, nil
}

// Get fetches a post by id and bumps its view counter as an observable side
// effect. The increment is deliberately not idempotent.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	if err := s.postRepo.IncrementViews(ctx, id); err != nil {
		return nil, models.NewInternalError(err)
	}
	post.ViewsCount++
	observability.PostViews.Inc()
	return post, nil
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	author, err := s.resolveAuthor(ctx, in.ExternalID)
	if err != nil {
		return nil, err
	}
	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		AuthorID:    author.ID,
		Tags:        tags,
		Excerpt:     deriveExcerpt(in.Content),
		ReadingTime: readingTime(in.Content),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateTrendingTags(ctx)
	return s.reload(ctx, post.ID)
}

// Update rewrites title, content, and tags, and re-derives the excerpt and
// reading time. Only the owning author may update.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}

	author, err := s.resolveAuthor(ctx, in.ExternalID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != author.ID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = in.Content
	post.Tags = tags
	post.Excerpt = deriveExcerpt(in.Content)
	post.ReadingTime = readingTime(in.Content)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateTrendingTags(ctx)
	return s.reload(ctx, post.ID)
}

// reload re-fetches a post after a write so the response carries the author
// and tag rows.
func (s *PostService) reload(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// Delete removes the post and cascades to its entire reply forest. Only the
// owning author may delete.
func (s *PostService) Delete(ctx context.Context, postID uint, externalID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post")
		}
		return models.NewInternalError(err)
	}

	author, err := s.resolveAuthor(ctx, externalID)
	if err != nil {
		return err
	}
	if post.AuthorID != author.ID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateTrendingTags(ctx)
	return nil
}

func (s *PostService) ListByAuthor(ctx context.Context, username string) ([]*models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, models.NewInternalError(err)
	}
	posts, err := s.postRepo.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (s *PostService) ListByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByTag(ctx, strings.ToLower(tag))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ToggleLike flips the caller's like on the post.
func (s *PostService) ToggleLike(ctx context.Context, postID uint, externalID string) (*models.LikeResult, error) {
	user, err := s.resolveAuthor(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}

	result, err := s.postRepo.ToggleLike(ctx, postID, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return result, nil
}

// TrendingTags returns the most used tags, served from cache when possible.
func (s *PostService) TrendingTags(ctx context.Context) ([]models.TagCount, error) {
	tags := make([]models.TagCount, 0, trendingTagLimit)
	err := cache.Aside(ctx, cache.TrendingTagsKey(trendingTagLimit), &tags, cache.TrendingTagsTTL, func() error {
		fetched, err := s.postRepo.TrendingTags(ctx, trendingTagLimit)
		if err != nil {
			return err
		}
		tags = fetched
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if tags == nil {
		tags = []models.TagCount{}
	}
	return tags, nil
}

func (s *PostService) resolveAuthor(ctx context.Context, externalID string) (*models.User, error) {
	if externalID == "" {
		return nil, models.NewValidationError("externalId is required")
	}
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

func validatePostFields(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required", "title")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)", "title")
	}
	if content == "" {
		return models.NewValidationError("Content is required", "content")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)", "content")
	}
	return nil
}

// normalizeTags lowercases, trims, and deduplicates tags, preserving order.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if len(tag) > maxTagLen {
			return nil, models.NewValidationError("Tag too long (max 30 characters)", "tags")
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out, nil
}

// readingTime estimates minutes to read at 200 words per minute, minimum 1.
func readingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// deriveExcerpt takes the first 250 characters of the content, trimmed, with
// a trailing ellipsis.
func deriveExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) > excerptRunes {
		runes = runes[:excerptRunes]
	}
	return strings.TrimSpace(string(runes)) + "..."
}
