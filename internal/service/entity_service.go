package service

import (
	"errors"

	"github.com/qboard/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEntityNotFound = errors.New("entity not found")

// EntityService wraps catalog entity associations and entity following.
// Entities exist here only as references; resolving them is the catalog's
// job.
type EntityService struct {
	db *gorm.DB
}

// NewEntityService creates an EntityService instance.
func NewEntityService(gdb *gorm.DB) *EntityService {
	return &EntityService{db: gdb}
}

// List returns all known entities with derived counts.
func (s *EntityService) List() ([]db.Entity, error) {
	var entities []db.Entity
	if err := s.db.Order("ref asc").Find(&entities).Error; err != nil {
		return nil, err
	}
	if err := s.fillCounts(entities); err != nil {
		return nil, err
	}
	return entities, nil
}

func (s *EntityService) fillCounts(entities []db.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(entities))
	for _, entity := range entities {
		ids = append(ids, entity.ID)
	}

	type countRow struct {
		EntityID uint
		Total    int
	}

	var postRows []countRow
	if err := s.db.Table("post_entities").
		Select("entity_id, COUNT(*) AS total").
		Where("entity_id IN ?", ids).
		Group("entity_id").
		Find(&postRows).Error; err != nil {
		return err
	}
	postCounts := make(map[uint]int, len(postRows))
	for _, row := range postRows {
		postCounts[row.EntityID] = row.Total
	}

	var followRows []countRow
	if err := s.db.Model(&db.EntityFollow{}).
		Select("entity_id, COUNT(*) AS total").
		Where("entity_id IN ?", ids).
		Group("entity_id").
		Find(&followRows).Error; err != nil {
		return err
	}
	followCounts := make(map[uint]int, len(followRows))
	for _, row := range followRows {
		followCounts[row.EntityID] = row.Total
	}

	for i := range entities {
		entities[i].PostsCount = postCounts[entities[i].ID]
		entities[i].FollowerCount = followCounts[entities[i].ID]
	}
	return nil
}

// Get fetches one entity by ref with derived counts.
func (s *EntityService) Get(ref string) (*db.Entity, error) {
	var entity db.Entity
	if err := s.db.Where("ref = ?", ref).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}
	page := []db.Entity{entity}
	if err := s.fillCounts(page); err != nil {
		return nil, err
	}
	return &page[0], nil
}

// Follow subscribes the user to an entity, creating the entity row on first
// use so users can follow components before anything is posted about them.
func (s *EntityService) Follow(userRef, ref string) (bool, error) {
	var entity db.Entity
	if err := s.db.Where(db.Entity{Ref: ref}).FirstOrCreate(&entity).Error; err != nil {
		return false, err
	}
	follow := db.EntityFollow{UserRef: userRef, EntityID: entity.ID}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_ref"}, {Name: "entity_id"}},
		DoNothing: true,
	}).Create(&follow)
	return result.RowsAffected > 0, result.Error
}

// Unfollow removes the subscription; idempotent.
func (s *EntityService) Unfollow(userRef, ref string) (bool, error) {
	var entity db.Entity
	if err := s.db.Where("ref = ?", ref).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrEntityNotFound
		}
		return false, err
	}
	result := s.db.Where("user_ref = ? AND entity_id = ?", userRef, entity.ID).
		Delete(&db.EntityFollow{})
	return result.RowsAffected > 0, result.Error
}

// UserEntities returns the entity refs the user follows.
func (s *EntityService) UserEntities(userRef string) ([]string, error) {
	var refs []string
	err := s.db.Model(&db.EntityFollow{}).
		Joins("JOIN entities ON entities.id = entity_follows.entity_id").
		Where("entity_follows.user_ref = ?", userRef).
		Order("entities.ref asc").
		Pluck("entities.ref", &refs).Error
	return refs, err
}

// UsersForEntities resolves the distinct set of users following any of the
// given entity refs, for notification fan-out.
func (s *EntityService) UsersForEntities(refs []string) ([]string, error) {
	if len(refs) == 0 {
		return []string{}, nil
	}
	var users []string
	err := s.db.Model(&db.EntityFollow{}).
		Distinct("entity_follows.user_ref").
		Joins("JOIN entities ON entities.id = entity_follows.entity_id").
		Where("entities.ref IN ?", refs).
		Order("entity_follows.user_ref asc").
		Pluck("entity_follows.user_ref", &users).Error
	return users, err
}
