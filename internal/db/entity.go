package db

import "time"

// Entity is an external catalog reference (component:default/x) a post can be
// associated with. Like tags, the counters are derived by queries.
type Entity struct {
	ID        uint   `gorm:"primaryKey"`
	Ref       string `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time

	PostsCount    int `gorm:"-"`
	FollowerCount int `gorm:"-"`
}

// EntityFollow subscribes a user to an entity for notification fan-out.
type EntityFollow struct {
	ID        uint   `gorm:"primaryKey"`
	UserRef   string `gorm:"size:255;not null;uniqueIndex:idx_entity_follow"`
	EntityID  uint   `gorm:"not null;index;uniqueIndex:idx_entity_follow"`
	CreatedAt time.Time
}
