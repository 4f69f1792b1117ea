package db

import "time"

// Comment attaches to exactly one post or one answer; the unused parent
// column stays NULL for the comment's whole lifetime.
type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	PostID    *uint  `gorm:"index"`
	AnswerID  *uint  `gorm:"index"`
	Author    string `gorm:"size:255;not null;index"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
