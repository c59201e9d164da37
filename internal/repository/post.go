package repository

import (
	"context"
	"strings"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows post listings. Tag is an exact match; Search is a
// case-insensitive substring over title, content, and tags.
type PostFilter struct {
	Tag    string
	Search string
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	IncrementViews(ctx context.Context, id uint) error
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error)
	ListByTag(ctx context.Context, tag string) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, postID, userID uint) (*models.LikeResult, error)
	TrendingTags(ctx context.Context, limit int) ([]models.TagCount, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create persists the post and its tag rows in one transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author").Create(post).Error; err != nil {
			return err
		}
		return replaceTags(tx, post)
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("TagRows").
		First(&post, id).Error; err != nil {
		return nil, err
	}
	post.FlattenTags()
	return &post, nil
}

// IncrementViews bumps the denormalized view counter by one. Every
// successful fetch-by-id counts; repeated fetches inflate the counter on
// purpose.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

func (r *postRepository) applyFilter(db *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.Tag != "" {
		db = db.Where(
			"EXISTS (SELECT 1 FROM post_tags WHERE post_tags.post_id = posts.id AND post_tags.tag = ?)",
			filter.Tag,
		)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		db = db.Where(
			"LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR EXISTS (SELECT 1 FROM post_tags WHERE post_tags.post_id = posts.id AND LOWER(post_tags.tag) LIKE ?)",
			like, like, like,
		)
	}
	return db
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).
		Preload("Author").
		Preload("TagRows").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.FlattenTags()
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).Count(&count).Error
	return count, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("TagRows").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.FlattenTags()
	}
	return posts, nil
}

func (r *postRepository) ListByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("TagRows").
		Where("EXISTS (SELECT 1 FROM post_tags WHERE post_tags.post_id = posts.id AND post_tags.tag = ?)", tag).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.FlattenTags()
	}
	return posts, nil
}

// Update saves the post and replaces its tag rows in one transaction.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "TagRows").Save(post).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		post.TagRows = nil
		return replaceTags(tx, post)
	})
}

// Delete removes the post and everything hanging off it: reply likes,
// replies, post likes, and tag rows, all in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyIDs []uint
		if err := tx.Model(&models.Reply{}).Where("post_id = ?", id).Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		if len(replyIDs) > 0 {
			if err := tx.Where("reply_id IN ?", replyIDs).Delete(&models.ReplyLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// ToggleLike flips the caller's like on the post and refreshes the
// denormalized count from the like rows inside the same transaction, so
// likes_count always equals the number of like rows.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID uint) (*models.LikeResult, error) {
	var result models.LikeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			like := &models.PostLike{UserID: userID, PostID: postID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
				return err
			}
			result.Liked = true
		}

		var count int64
		if err := tx.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		result.LikesCount = int(count)

		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", count).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TrendingTags groups all tag rows by tag, counts occurrences, and returns
// the most used tags first.
func (r *postRepository) TrendingTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	var tags []models.TagCount
	err := r.db.WithContext(ctx).Model(&models.PostTag{}).
		Select("tag, COUNT(*) AS count").
		Group("tag").
		Order("count DESC").
		Limit(limit).
		Scan(&tags).Error
	return tags, err
}

func replaceTags(tx *gorm.DB, post *models.Post) error {
	if len(post.Tags) == 0 {
		return nil
	}
	rows := make([]models.PostTag, 0, len(post.Tags))
	for _, tag := range post.Tags {
		rows = append(rows, models.PostTag{PostID: post.ID, Tag: tag})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return err
	}
	post.TagRows = rows
	return nil
}
