package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// decrementFloored subtracts one but never goes below zero. Portable across
// postgres and sqlite.
var decrementFloored = gorm.Expr("CASE WHEN replies_count > 0 THEN replies_count - 1 ELSE 0 END")

// ReplyRepository defines the interface for reply data operations.
type ReplyRepository interface {
	// ListByPost returns every reply of the post ordered oldest-first;
	// the service layer assembles the forest.
	ListByPost(ctx context.Context, postID uint) ([]*models.Reply, error)
	GetByID(ctx context.Context, id uint) (*models.Reply, error)
	Create(ctx context.Context, reply *models.Reply) error
	Delete(ctx context.Context, reply *models.Reply) error
	ToggleLike(ctx context.Context, replyID, userID uint) (*models.LikeResult, error)
}

type replyRepository struct {
	db *gorm.DB
}

// NewReplyRepository creates a new reply repository.
func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Reply, error) {
	var replies []*models.Reply
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	return replies, err
}

func (r *replyRepository) GetByID(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).Preload("Author").First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// Create persists the reply and increments the post's reply counter, plus
// the parent reply's when nested, in one transaction so the counters cannot
// desynchronize on partial failure.
func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author").Create(reply).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", reply.PostID).
			UpdateColumn("replies_count", gorm.Expr("replies_count + 1")).Error; err != nil {
			return err
		}
		if reply.ParentReplyID != nil {
			if err := tx.Model(&models.Reply{}).Where("id = ?", *reply.ParentReplyID).
				UpdateColumn("replies_count", gorm.Expr("replies_count + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the reply and its direct children (one level of cascade —
// deeper descendants become unreachable orphans), decrements the post's
// reply counter by exactly one (floored at zero), and the parent's when
// nested. All inside one transaction.
func (r *replyRepository) Delete(ctx context.Context, reply *models.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var childIDs []uint
		if err := tx.Model(&models.Reply{}).
			Where("parent_reply_id = ?", reply.ID).
			Pluck("id", &childIDs).Error; err != nil {
			return err
		}

		likeTargets := append(childIDs, reply.ID)
		if err := tx.Where("reply_id IN ?", likeTargets).Delete(&models.ReplyLike{}).Error; err != nil {
			return err
		}
		if len(childIDs) > 0 {
			if err := tx.Where("parent_reply_id = ?", reply.ID).Delete(&models.Reply{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Reply{}, reply.ID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", reply.PostID).
			UpdateColumn("replies_count", decrementFloored).Error; err != nil {
			return err
		}
		if reply.ParentReplyID != nil {
			if err := tx.Model(&models.Reply{}).Where("id = ?", *reply.ParentReplyID).
				UpdateColumn("replies_count", decrementFloored).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ToggleLike mirrors the post like toggle for replies.
func (r *replyRepository) ToggleLike(ctx context.Context, replyID, userID uint) (*models.LikeResult, error) {
	var result models.LikeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND reply_id = ?", userID, replyID).Delete(&models.ReplyLike{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			like := &models.ReplyLike{UserID: userID, ReplyID: replyID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
				return err
			}
			result.Liked = true
		}

		var count int64
		if err := tx.Model(&models.ReplyLike{}).Where("reply_id = ?", replyID).Count(&count).Error; err != nil {
			return err
		}
		result.LikesCount = int(count)

		return tx.Model(&models.Reply{}).Where("id = ?", replyID).
			UpdateColumn("likes_count", count).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
