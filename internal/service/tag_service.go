package service

import (
	"errors"
	"strings"

	"github.com/qboard/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTagNotFound = errors.New("tag not found")

// TagService wraps tag lookups and tag following. Tags come into existence
// through posts; following an unknown tag is an error.
type TagService struct {
	db *gorm.DB
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// List returns all tags with their derived usage and follower counts.
func (s *TagService) List() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.Order("name asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	if err := s.fillCounts(tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *TagService) fillCounts(tags []db.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}

	type countRow struct {
		TagID uint
		Total int
	}

	var postRows []countRow
	if err := s.db.Table("post_tags").
		Select("tag_id, COUNT(*) AS total").
		Where("tag_id IN ?", ids).
		Group("tag_id").
		Find(&postRows).Error; err != nil {
		return err
	}
	postCounts := make(map[uint]int, len(postRows))
	for _, row := range postRows {
		postCounts[row.TagID] = row.Total
	}

	var followRows []countRow
	if err := s.db.Model(&db.TagFollow{}).
		Select("tag_id, COUNT(*) AS total").
		Where("tag_id IN ?", ids).
		Group("tag_id").
		Find(&followRows).Error; err != nil {
		return err
	}
	followCounts := make(map[uint]int, len(followRows))
	for _, row := range followRows {
		followCounts[row.TagID] = row.Total
	}

	for i := range tags {
		tags[i].PostsCount = postCounts[tags[i].ID]
		tags[i].FollowerCount = followCounts[tags[i].ID]
	}
	return nil
}

// Get fetches one tag by name with derived counts.
func (s *TagService) Get(name string) (*db.Tag, error) {
	var tag db.Tag
	if err := s.db.Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	page := []db.Tag{tag}
	if err := s.fillCounts(page); err != nil {
		return nil, err
	}
	return &page[0], nil
}

// UpdateDescription sets a tag's description.
func (s *TagService) UpdateDescription(name, description string) (*db.Tag, error) {
	result := s.db.Model(&db.Tag{}).Where("name = ?", name).
		Update("description", strings.TrimSpace(description))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTagNotFound
	}
	return s.Get(name)
}

// Follow subscribes the user to a tag; idempotent.
func (s *TagService) Follow(userRef, name string) (bool, error) {
	tag, err := s.Get(name)
	if err != nil {
		return false, err
	}
	follow := db.TagFollow{UserRef: userRef, TagID: tag.ID}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_ref"}, {Name: "tag_id"}},
		DoNothing: true,
	}).Create(&follow)
	return result.RowsAffected > 0, result.Error
}

// Unfollow removes the subscription; idempotent.
func (s *TagService) Unfollow(userRef, name string) (bool, error) {
	tag, err := s.Get(name)
	if err != nil {
		return false, err
	}
	result := s.db.Where("user_ref = ? AND tag_id = ?", userRef, tag.ID).
		Delete(&db.TagFollow{})
	return result.RowsAffected > 0, result.Error
}

// UserTags returns the tag names the user follows.
func (s *TagService) UserTags(userRef string) ([]string, error) {
	var names []string
	err := s.db.Model(&db.TagFollow{}).
		Joins("JOIN tags ON tags.id = tag_follows.tag_id").
		Where("tag_follows.user_ref = ?", userRef).
		Order("tags.name asc").
		Pluck("tags.name", &names).Error
	return names, err
}

// UsersForTags resolves the distinct set of users following any of the given
// tags, for notification fan-out.
func (s *TagService) UsersForTags(names []string) ([]string, error) {
	if len(names) == 0 {
		return []string{}, nil
	}
	var users []string
	err := s.db.Model(&db.TagFollow{}).
		Distinct("tag_follows.user_ref").
		Joins("JOIN tags ON tags.id = tag_follows.tag_id").
		Where("tags.name IN ?", names).
		Order("tag_follows.user_ref asc").
		Pluck("tag_follows.user_ref", &users).Error
	return users, err
}
