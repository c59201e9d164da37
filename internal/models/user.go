// Package models contains the application's domain models.
package models

import (
	"time"
)

// User is the full user record. ExternalID ties the row to the external auth
// provider; it and Email never appear in JSON output — only the owner sees
// them, via the dedicated self view.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ExternalID   string    `gorm:"uniqueIndex;not null;size:128" json:"-"`
	Email        string    `gorm:"uniqueIndex;not null;size:254" json:"-"`
	Username     string    `gorm:"uniqueIndex;not null;size:20" json:"username"`
	DisplayName  string    `gorm:"not null;size:50" json:"displayName"`
	Bio          string    `gorm:"size:500" json:"bio"`
	Tagline      string    `gorm:"size:100" json:"tagline"`
	ProfilePhoto string    `json:"profilePhoto"`
	Stats        UserStats `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserStats is a denormalized aggregate snapshot, recomputed on demand.
type UserStats struct {
	PostsCount    int `json:"postsCount"`
	RepliesCount  int `json:"repliesCount"`
	LikesReceived int `json:"likesReceived"`
}

// PublicUser is the profile shape anyone may see. It is a separate type, not
// a stripped User, so identity fields can never leak through serialization.
type PublicUser struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	Bio          string    `json:"bio"`
	Tagline      string    `json:"tagline"`
	ProfilePhoto string    `json:"profilePhoto"`
	Stats        UserStats `json:"stats"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public projects the user onto its public shape.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		DisplayName:  u.DisplayName,
		Bio:          u.Bio,
		Tagline:      u.Tagline,
		ProfilePhoto: u.ProfilePhoto,
		Stats:        u.Stats,
		CreatedAt:    u.CreatedAt,
	}
}

// Author is the lightweight user projection embedded in posts and replies.
type Author struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"displayName"`
	ProfilePhoto string `json:"profilePhoto"`
}

// TableName maps the Author projection onto the users table.
func (Author) TableName() string {
	return "users"
}
