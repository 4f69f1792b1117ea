package db

import "time"

// Answer is a response to a question type post.
type Answer struct {
	ID        uint   `gorm:"primaryKey"`
	PostID    uint   `gorm:"not null;index"`
	Author    string `gorm:"size:255;not null;index"`
	Anonymous bool   `gorm:"default:false"`
	Content   string `gorm:"type:text;not null"`
	Correct   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Comments []Comment `gorm:"foreignKey:AnswerID;constraint:OnDelete:CASCADE"`

	// Filled by queries, not stored.
	Score int `gorm:"-"`
}

// CommentAuthors returns the distinct authors of the answer's comments.
func (a *Answer) CommentAuthors() []string {
	seen := make(map[string]struct{}, len(a.Comments))
	authors := make([]string, 0, len(a.Comments))
	for _, comment := range a.Comments {
		if _, ok := seen[comment.Author]; ok {
			continue
		}
		seen[comment.Author] = struct{}{}
		authors = append(authors, comment.Author)
	}
	return authors
}
