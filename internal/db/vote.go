package db

import "time"

// Vote records a single user's ±1 on a post or an answer. The unique indexes
// give upsert semantics: one row per (author, target), never appended.
type Vote struct {
	ID        uint   `gorm:"primaryKey"`
	Author    string `gorm:"size:255;not null;uniqueIndex:idx_post_vote;uniqueIndex:idx_answer_vote"`
	PostID    *uint  `gorm:"index;uniqueIndex:idx_post_vote"`
	AnswerID  *uint  `gorm:"index;uniqueIndex:idx_answer_vote"`
	Value     int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
