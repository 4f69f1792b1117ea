package db

import "time"

// Attachment persists upload metadata. The binary itself normally lives in an
// external store; LocationType "database" keeps small images inline.
type Attachment struct {
	ID           uint   `gorm:"primaryKey"`
	UUID         string `gorm:"size:36;not null;uniqueIndex"`
	LocationType string `gorm:"size:32;not null"`
	LocationURI  string `gorm:"size:512"`
	Extension    string `gorm:"size:16"`
	MimeType     string `gorm:"size:64"`
	Path         string `gorm:"size:512"`
	Creator      string `gorm:"size:255;index"`
	Binary       []byte `gorm:"type:blob"`
	CreatedAt    time.Time
}
