package db

import "time"

// PostType discriminates the top level content kinds.
type PostType string

const (
	PostTypeQuestion PostType = "question"
	PostTypeArticle  PostType = "article"
	PostTypeLink     PostType = "link"
)

// Post is the top level content unit: a question, an article or a link.
// Author holds an opaque user reference such as user:default/alice; resolving
// it to profile data belongs to the catalog, not to this store.
type Post struct {
	ID              uint     `gorm:"primaryKey"`
	Author          string   `gorm:"size:255;not null;index"`
	Anonymous       bool     `gorm:"default:false"`
	Type            PostType `gorm:"size:16;not null;index;default:question"`
	Title           string   `gorm:"size:255;not null"`
	Content         string   `gorm:"type:text;not null"`
	HeaderImage     string   `gorm:"size:512"`
	Views           int      `gorm:"not null;default:0"`
	CorrectAnswerID *uint    `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Tags     []Tag     `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE"`
	Entities []Entity  `gorm:"many2many:post_entities;constraint:OnDelete:CASCADE"`
	Answers  []Answer  `gorm:"constraint:OnDelete:CASCADE"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`

	// Filled by queries, not stored.
	Score        int     `gorm:"-"`
	AnswersCount int     `gorm:"-"`
	Favorite     bool    `gorm:"-"`
	Trend        float64 `gorm:"-"`
}

// TagNames returns the post's tag names in association order.
func (p *Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// EntityRefs returns the post's entity references in association order.
func (p *Post) EntityRefs() []string {
	refs := make([]string, 0, len(p.Entities))
	for _, entity := range p.Entities {
		refs = append(refs, entity.Ref)
	}
	return refs
}

// CommentAuthors returns the distinct authors of the post's comments.
func (p *Post) CommentAuthors() []string {
	seen := make(map[string]struct{}, len(p.Comments))
	authors := make([]string, 0, len(p.Comments))
	for _, comment := range p.Comments {
		if _, ok := seen[comment.Author]; ok {
			continue
		}
		seen[comment.Author] = struct{}{}
		authors = append(authors, comment.Author)
	}
	return authors
}
