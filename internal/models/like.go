package models

import (
	"time"
)

// PostLike records one user's like on a post. The composite unique index
// makes the toggle an atomic keyed upsert/delete instead of a list
// read-modify-write, so concurrent toggles cannot produce duplicates.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user_post" json:"userId"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user_post" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReplyLike records one user's like on a reply, same shape as PostLike.
type ReplyLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reply_likes_user_reply" json:"userId"`
	ReplyID   uint      `gorm:"not null;uniqueIndex:idx_reply_likes_user_reply" json:"replyId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}
