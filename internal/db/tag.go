package db

import "time"

// Tag is a free-form label attached to posts. PostsCount and FollowerCount
// are computed by queries so they cannot drift from the underlying sets.
type Tag struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	PostsCount    int `gorm:"-"`
	FollowerCount int `gorm:"-"`
}

// TagFollow subscribes a user to a tag for notification fan-out.
type TagFollow struct {
	ID        uint   `gorm:"primaryKey"`
	UserRef   string `gorm:"size:255;not null;uniqueIndex:idx_tag_follow"`
	TagID     uint   `gorm:"not null;index;uniqueIndex:idx_tag_follow"`
	CreatedAt time.Time
}
