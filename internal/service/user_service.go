// Package service implements validation, ownership checks, and derived-field
// computation on top of the repositories.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

const searchLimit = 20

// UserService is the user directory: it maps external auth identities to
// internal users and owns the public-profile boundary.
type UserService struct {
	userRepo repository.UserRepository
}

// UpsertUserInput carries the profile fields written by the auth callback.
type UpsertUserInput struct {
	ExternalID   string `json:"externalId"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	DisplayName  string `json:"displayName"`
	Bio          string `json:"bio"`
	Tagline      string `json:"tagline"`
	ProfilePhoto string `json:"profilePhoto"`
}

// CurrentUser is the self-view: the public profile plus the identity fields
// only their owner may see.
type CurrentUser struct {
	*models.PublicUser
	Email      string `json:"email"`
	ExternalID string `json:"externalId"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ResolveByExternalID translates an external identity into the internal user
// record. Every write path calls this before touching posts or replies.
func (s *UserService) ResolveByExternalID(ctx context.Context, externalID string) (*models.User, error) {
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

// GetByUsername returns the public profile, cached briefly.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.PublicUser, error) {
	var public models.PublicUser
	err := cache.Aside(ctx, cache.ProfileKey(username), &public, cache.ProfileTTL, func() error {
		user, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		public = *user.Public()
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, models.NewInternalError(err)
	}
	return &public, nil
}

// GetCurrentUser returns the caller's own record including identity fields.
func (s *UserService) GetCurrentUser(ctx context.Context, externalID string) (*CurrentUser, error) {
	user, err := s.ResolveByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return &CurrentUser{
		PublicUser: user.Public(),
		Email:      user.Email,
		ExternalID: user.ExternalID,
	}, nil
}

// Upsert creates or overwrites the profile keyed on the external identity.
// A username already owned by a different identity is a conflict.
func (s *UserService) Upsert(ctx context.Context, in UpsertUserInput) (*models.PublicUser, error) {
	if in.ExternalID == "" || in.Email == "" || in.Username == "" || in.DisplayName == "" {
		return nil, models.NewValidationError("externalId, email, username, and displayName are required")
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))
	if len(username) < 3 || len(username) > 20 {
		return nil, models.NewValidationError("Username must be 3-20 characters", "username")
	}
	if !usernamePattern.MatchString(username) {
		return nil, models.NewValidationError("Username may only contain letters, digits, and underscores", "username")
	}
	if len(in.DisplayName) > 50 {
		return nil, models.NewValidationError("Display name too long (max 50 characters)", "displayName")
	}
	if len(in.Bio) > 500 {
		return nil, models.NewValidationError("Bio too long (max 500 characters)", "bio")
	}
	if len(in.Tagline) > 100 {
		return nil, models.NewValidationError("Tagline too long (max 100 characters)", "tagline")
	}

	if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		if existing.ExternalID != in.ExternalID {
			return nil, models.NewConflictError("Username is already taken")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	user, err := s.userRepo.GetByExternalID(ctx, in.ExternalID)
	switch {
	case err == nil:
		cache.InvalidateProfile(ctx, user.Username)
		user.Email = in.Email
		user.Username = username
		user.DisplayName = in.DisplayName
		user.Bio = in.Bio
		user.Tagline = in.Tagline
		user.ProfilePhoto = in.ProfilePhoto
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, translateUniqueError(err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &models.User{
			ExternalID:   in.ExternalID,
			Email:        in.Email,
			Username:     username,
			DisplayName:  in.DisplayName,
			Bio:          in.Bio,
			Tagline:      in.Tagline,
			ProfilePhoto: in.ProfilePhoto,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, translateUniqueError(err)
		}
	default:
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateProfile(ctx, username)
	return user.Public(), nil
}

// Search matches users by substring; queries shorter than two characters are
// rejected.
func (s *UserService) Search(ctx context.Context, query string) ([]*models.PublicUser, error) {
	if len(query) < 2 {
		return nil, models.NewValidationError("Search query must be at least 2 characters")
	}
	users, err := s.userRepo.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	results := make([]*models.PublicUser, 0, len(users))
	for _, u := range users {
		results = append(results, u.Public())
	}
	return results, nil
}

// ComputeStats recomputes the aggregate snapshot from the post and reply
// stores and persists it onto the user record.
func (s *UserService) ComputeStats(ctx context.Context, username string) (*models.UserStats, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, models.NewInternalError(err)
	}

	posts, err := s.userRepo.CountPostsByAuthor(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	replies, err := s.userRepo.CountRepliesByAuthor(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	likes, err := s.userRepo.SumPostLikesByAuthor(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user.Stats = models.UserStats{
		PostsCount:    int(posts),
		RepliesCount:  int(replies),
		LikesReceived: int(likes),
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateProfile(ctx, username)
	stats := user.Stats
	return &stats, nil
}

func translateUniqueError(err error) error {
	if repository.IsUniqueConstraintError(err) {
		return models.NewConflictError("Duplicate entry found")
	}
	return models.NewInternalError(err)
}
