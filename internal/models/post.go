package models

import (
	"time"
)

// Post is a blog post. LikesCount, RepliesCount and ViewsCount are
// denormalized for cheap reads; likes themselves live in post_likes and the
// count column is refreshed inside the same transaction as every toggle.
type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"not null;size:200" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Excerpt      string    `gorm:"size:300" json:"excerpt"`
	AuthorID     uint      `gorm:"not null;index" json:"authorId"`
	Author       *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags         []string  `gorm:"-" json:"tags"`
	TagRows      []PostTag `gorm:"foreignKey:PostID" json:"-"`
	LikesCount   int       `json:"likesCount"`
	RepliesCount int       `json:"repliesCount"`
	ViewsCount   int       `json:"viewsCount"`
	ReadingTime  int       `gorm:"default:1" json:"readingTime"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PostTag is one tag attached to a post. Tags are stored lowercase.
type PostTag struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	PostID uint   `gorm:"not null;index" json:"-"`
	Tag    string `gorm:"not null;size:30;index" json:"-"`
}

// FlattenTags populates Tags from the loaded tag rows.
func (p *Post) FlattenTags() {
	p.Tags = make([]string, 0, len(p.TagRows))
	for _, row := range p.TagRows {
		p.Tags = append(p.Tags, row.Tag)
	}
}

// TagCount is one entry of the trending-tags aggregation.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}
