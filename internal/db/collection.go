package db

import "time"

// Access levels for collection read and edit rights.
const (
	AccessPrivate = "private"
	AccessPublic  = "public"
)

// Collection is a curated, access controlled, ordered set of posts.
type Collection struct {
	ID          uint   `gorm:"primaryKey"`
	Owner       string `gorm:"size:255;not null;index"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	HeaderImage string `gorm:"size:512"`
	ReadAccess  string `gorm:"size:16;not null;default:private"`
	EditAccess  string `gorm:"size:16;not null;default:private"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Filled by queries, not stored.
	PostIDs []uint `gorm:"-"`
}

// CollectionPost orders a post inside a collection. Rank preserves the
// curator's ordering; the unique pair keeps membership idempotent.
type CollectionPost struct {
	ID           uint `gorm:"primaryKey"`
	CollectionID uint `gorm:"not null;index;uniqueIndex:idx_collection_post"`
	PostID       uint `gorm:"not null;index;uniqueIndex:idx_collection_post"`
	Rank         int  `gorm:"not null;default:0"`
	CreatedAt    time.Time
}
