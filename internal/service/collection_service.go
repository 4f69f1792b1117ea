package service

import (
	"errors"
	"strings"

	"github.com/qboard/internal/db"
	"github.com/qboard/internal/permission"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCollectionNotFound = errors.New("collection not found")

// CollectionService wraps curated post collections: CRUD plus ordered,
// access gated membership.
type CollectionService struct {
	db *gorm.DB
}

// NewCollectionService creates a CollectionService instance.
func NewCollectionService(gdb *gorm.DB) *CollectionService {
	return &CollectionService{db: gdb}
}

// CollectionListOptions describes filters, ordering and pagination for List.
type CollectionListOptions struct {
	Owner       string
	SearchQuery string
	OrderBy     string
	Order       string
	Limit       int
	Offset      int
}

// CollectionInput represents fields accepted when creating or updating a
// collection.
type CollectionInput struct {
	Owner       string
	Title       string
	Description string
	ReadAccess  string
	EditAccess  string
	HeaderImage string
}

// CollectionFacts extracts the permission facts for a collection; the owner
// plays the author role.
func CollectionFacts(collection *db.Collection) permission.Facts {
	return permission.Facts{Author: collection.Owner}
}

// visibleCollections returns the base visibility condition: public read
// access, or owned by the actor.
func visibleCollections(tx *gorm.DB, actor string) *gorm.DB {
	if actor == "" {
		return tx.Where("collections.read_access = ?", db.AccessPublic)
	}
	return tx.Where("collections.read_access = ? OR collections.owner = ?", db.AccessPublic, actor)
}

// List returns one page of collections visible to the actor, restricted by
// the criteria tree, plus the total match count before pagination.
func (s *CollectionService) List(actor string, opts CollectionListOptions, criteria permission.Criteria) ([]db.Collection, int64, error) {
	query := visibleCollections(s.db.Model(&db.Collection{}), actor)

	if opts.Owner != "" {
		query = query.Where("collections.owner = ?", opts.Owner)
	}
	if opts.SearchQuery != "" {
		like := "%" + opts.SearchQuery + "%"
		query = query.Where("collections.title LIKE ? OR collections.description LIKE ?", like, like)
	}
	query = applyCriteria(query, criteria, collectionCriteria)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "desc"
	if strings.EqualFold(opts.Order, "asc") {
		direction = "asc"
	}
	column := "collections.created_at"
	switch opts.OrderBy {
	case "owner":
		column = "collections.owner"
	case "title":
		column = "collections.title"
	}
	query = query.Order(column + " " + direction).Order("collections.id " + direction)

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var collections []db.Collection
	if err := query.Find(&collections).Error; err != nil {
		return nil, 0, err
	}
	for i := range collections {
		if err := s.fillPostIDs(&collections[i]); err != nil {
			return nil, 0, err
		}
	}
	return collections, total, nil
}

// Get fetches one collection if the actor may see it. A collection hidden by
// access level or criteria reads as absent, not as forbidden, so callers
// cannot probe for existence.
func (s *CollectionService) Get(actor string, id uint, criteria permission.Criteria) (*db.Collection, error) {
	query := visibleCollections(s.db.Model(&db.Collection{}), actor).Where("collections.id = ?", id)
	query = applyCriteria(query, criteria, collectionCriteria)

	var collection db.Collection
	if err := query.First(&collection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	if err := s.fillPostIDs(&collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

func (s *CollectionService) fillPostIDs(collection *db.Collection) error {
	return s.db.Model(&db.CollectionPost{}).
		Where("collection_id = ?", collection.ID).
		Order("rank asc").Order("id asc").
		Pluck("post_id", &collection.PostIDs).Error
}

// Create persists a new collection. Access levels default to private.
func (s *CollectionService) Create(input CollectionInput) (*db.Collection, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEmptyTitle
	}

	collection := db.Collection{
		Owner:       input.Owner,
		Title:       input.Title,
		Description: input.Description,
		HeaderImage: input.HeaderImage,
		ReadAccess:  accessOrDefault(input.ReadAccess),
		EditAccess:  accessOrDefault(input.EditAccess),
	}
	if err := s.db.Create(&collection).Error; err != nil {
		return nil, err
	}
	collection.PostIDs = []uint{}
	return &collection, nil
}

func accessOrDefault(access string) string {
	if access == db.AccessPublic {
		return db.AccessPublic
	}
	return db.AccessPrivate
}

// Update applies changes under the owner-or-criteria discipline.
func (s *CollectionService) Update(id uint, input CollectionInput, criteria permission.Criteria) (*db.Collection, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEmptyTitle
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var collection db.Collection
		if err := tx.First(&collection, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCollectionNotFound
			}
			return err
		}
		if !mutationPermitted(input.Owner, CollectionFacts(&collection), criteria) {
			return ErrForbidden
		}

		updates := map[string]any{
			"title":        input.Title,
			"description":  input.Description,
			"header_image": input.HeaderImage,
		}
		if input.ReadAccess != "" {
			updates["read_access"] = accessOrDefault(input.ReadAccess)
		}
		if input.EditAccess != "" {
			updates["edit_access"] = accessOrDefault(input.EditAccess)
		}
		return tx.Model(&collection).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(input.Owner, id, nil)
}

// Delete removes a collection and its membership rows. Posts survive.
func (s *CollectionService) Delete(actor string, id uint, criteria permission.Criteria) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var collection db.Collection
		if err := tx.First(&collection, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCollectionNotFound
			}
			return err
		}
		if !mutationPermitted(actor, CollectionFacts(&collection), criteria) {
			return ErrForbidden
		}
		if err := tx.Where("collection_id = ?", id).Delete(&db.CollectionPost{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Collection{}, id).Error
	})
}

// editPermitted gates membership changes: the owner always may, public edit
// access opens it to any identified user, and a criteria tree from the
// policy can widen or narrow on top.
func editPermitted(actor string, collection *db.Collection, criteria permission.Criteria) bool {
	if collection.EditAccess == db.AccessPublic && actor != "" {
		return true
	}
	return mutationPermitted(actor, CollectionFacts(collection), criteria)
}

// AddPost appends a post to the collection's ordered membership; idempotent.
func (s *CollectionService) AddPost(actor string, id, postID uint, criteria permission.Criteria) (*db.Collection, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var collection db.Collection
		if err := tx.First(&collection, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCollectionNotFound
			}
			return err
		}
		if !editPermitted(actor, &collection, criteria) {
			return ErrForbidden
		}
		if err := requirePost(tx, postID); err != nil {
			return err
		}

		var maxRank int
		if err := tx.Model(&db.CollectionPost{}).
			Where("collection_id = ?", id).
			Select("COALESCE(MAX(rank), 0)").
			Scan(&maxRank).Error; err != nil {
			return err
		}

		membership := db.CollectionPost{CollectionID: id, PostID: postID, Rank: maxRank + 1}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(actor, id, nil)
}

// RemovePost drops a post from the collection's membership; idempotent.
func (s *CollectionService) RemovePost(actor string, id, postID uint, criteria permission.Criteria) (*db.Collection, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var collection db.Collection
		if err := tx.First(&collection, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCollectionNotFound
			}
			return err
		}
		if !editPermitted(actor, &collection, criteria) {
			return ErrForbidden
		}
		return tx.Where("collection_id = ? AND post_id = ?", id, postID).
			Delete(&db.CollectionPost{}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(actor, id, nil)
}
