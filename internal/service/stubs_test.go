package service

import (
	"context"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByExternalIDFn      func(context.Context, string) (*models.User, error)
	getByUsernameFn        func(context.Context, string) (*models.User, error)
	createFn               func(context.Context, *models.User) error
	updateFn               func(context.Context, *models.User) error
	searchFn               func(context.Context, string, int) ([]*models.User, error)
	countPostsByAuthorFn   func(context.Context, uint) (int64, error)
	countRepliesByAuthorFn func(context.Context, uint) (int64, error)
	sumPostLikesByAuthorFn func(context.Context, uint) (int64, error)
}

func (s *userRepoStub) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.getByExternalIDFn(ctx, externalID)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	return s.searchFn(ctx, query, limit)
}
func (s *userRepoStub) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countPostsByAuthorFn(ctx, authorID)
}
func (s *userRepoStub) CountRepliesByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countRepliesByAuthorFn(ctx, authorID)
}
func (s *userRepoStub) SumPostLikesByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.sumPostLikesByAuthorFn(ctx, authorID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByExternalIDFn: func(_ context.Context, externalID string) (*models.User, error) {
			return &models.User{ID: 1, ExternalID: externalID, Username: "alice"}, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createFn:               func(_ context.Context, _ *models.User) error { return nil },
		updateFn:               func(_ context.Context, _ *models.User) error { return nil },
		searchFn:               func(_ context.Context, _ string, _ int) ([]*models.User, error) { return nil, nil },
		countPostsByAuthorFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countRepliesByAuthorFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		sumPostLikesByAuthorFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	incrementViewsFn func(context.Context, uint) error
	listFn           func(context.Context, repository.PostFilter, int, int) ([]*models.Post, error)
	countFn          func(context.Context, repository.PostFilter) (int64, error)
	listByAuthorFn   func(context.Context, uint) ([]*models.Post, error)
	listByTagFn      func(context.Context, string) ([]*models.Post, error)
	updateFn         func(context.Context, *models.Post) error
	deleteFn         func(context.Context, uint) error
	toggleLikeFn     func(context.Context, uint, uint) (*models.LikeResult, error)
	trendingTagsFn   func(context.Context, int) ([]models.TagCount, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, filter repository.PostFilter, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, filter, limit, offset)
}
func (s *postRepoStub) Count(ctx context.Context, filter repository.PostFilter) (int64, error) {
	return s.countFn(ctx, filter)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) ListByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	return s.listByTagFn(ctx, tag)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, postID, userID uint) (*models.LikeResult, error) {
	return s.toggleLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) TrendingTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	return s.trendingTagsFn(ctx, limit)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, post *models.Post) error {
			post.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1}, nil
		},
		incrementViewsFn: func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ repository.PostFilter, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		countFn:        func(_ context.Context, _ repository.PostFilter) (int64, error) { return 0, nil },
		listByAuthorFn: func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		listByTagFn:    func(_ context.Context, _ string) ([]*models.Post, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		toggleLikeFn: func(_ context.Context, _, _ uint) (*models.LikeResult, error) {
			return &models.LikeResult{Liked: true, LikesCount: 1}, nil
		},
		trendingTagsFn: func(_ context.Context, _ int) ([]models.TagCount, error) { return nil, nil },
	}
}

// replyRepoStub is a stub for repository.ReplyRepository.
type replyRepoStub struct {
	listByPostFn func(context.Context, uint) ([]*models.Reply, error)
	getByIDFn    func(context.Context, uint) (*models.Reply, error)
	createFn     func(context.Context, *models.Reply) error
	deleteFn     func(context.Context, *models.Reply) error
	toggleLikeFn func(context.Context, uint, uint) (*models.LikeResult, error)
}

func (s *replyRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Reply, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *replyRepoStub) GetByID(ctx context.Context, id uint) (*models.Reply, error) {
	return s.getByIDFn(ctx, id)
}
func (s *replyRepoStub) Create(ctx context.Context, reply *models.Reply) error {
	return s.createFn(ctx, reply)
}
func (s *replyRepoStub) Delete(ctx context.Context, reply *models.Reply) error {
	return s.deleteFn(ctx, reply)
}
func (s *replyRepoStub) ToggleLike(ctx context.Context, replyID, userID uint) (*models.LikeResult, error) {
	return s.toggleLikeFn(ctx, replyID, userID)
}

func noopReplyRepo() *replyRepoStub {
	return &replyRepoStub{
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Reply, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Reply, error) {
			return &models.Reply{ID: id, PostID: 1, AuthorID: 1}, nil
		},
		createFn: func(_ context.Context, reply *models.Reply) error {
			reply.ID = 1
			return nil
		},
		deleteFn: func(_ context.Context, _ *models.Reply) error { return nil },
		toggleLikeFn: func(_ context.Context, _, _ uint) (*models.LikeResult, error) {
			return &models.LikeResult{Liked: true, LikesCount: 1}, nil
		},
	}
}

// requireAppError asserts the error is an AppError carrying the given code.
func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}
