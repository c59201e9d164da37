package models

import (
	"time"
)

// Reply is a threaded comment on a post. A nil ParentReplyID marks a
// top-level reply; nested replies reference exactly one parent.
// RepliesCount counts direct children only.
type Reply struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PostID        uint      `gorm:"not null;index:idx_replies_post_created" json:"postId"`
	ParentReplyID *uint     `gorm:"index" json:"parentReplyId"`
	AuthorID      uint      `gorm:"not null;index" json:"authorId"`
	Author        *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content       string    `gorm:"not null;size:5000" json:"content"`
	LikesCount    int       `json:"likesCount"`
	RepliesCount  int       `json:"repliesCount"`
	CreatedAt     time.Time `gorm:"index:idx_replies_post_created" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
