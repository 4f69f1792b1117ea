package db

import "time"

// PostFavorite marks a post as favorited by a user; at most one row per pair.
type PostFavorite struct {
	ID        uint   `gorm:"primaryKey"`
	Author    string `gorm:"size:255;not null;uniqueIndex:idx_favorite_author_post"`
	PostID    uint   `gorm:"not null;index;uniqueIndex:idx_favorite_author_post"`
	CreatedAt time.Time
}

// PostView deduplicates view counting per viewer session. The unique pair
// means a session bumps a post's view counter at most once.
type PostView struct {
	ID        uint   `gorm:"primaryKey"`
	PostID    uint   `gorm:"not null;index;uniqueIndex:idx_view_post_viewer"`
	ViewerID  string `gorm:"size:64;not null;uniqueIndex:idx_view_post_viewer"`
	CreatedAt time.Time
}
