package service

import (
	"fmt"
	"strings"

	"github.com/qboard/internal/permission"
	"gorm.io/gorm"
)

// criteriaTarget maps predicate leaves onto one table's columns so a criteria
// tree can be pushed down into SQL instead of filtering rows in application
// code. Leaves a target cannot express fail closed.
type criteriaTarget struct {
	authorColumn string
	entityCond   func(refs []string) (string, []any)
	tagCond      func(tags []string) (string, []any)
}

// postCriteria resolves leaves against the posts table. Entity and tag
// membership require ALL listed refs, via a correlated distinct count.
var postCriteria = criteriaTarget{
	authorColumn: "posts.author",
	entityCond: func(refs []string) (string, []any) {
		return "(SELECT COUNT(DISTINCT entities.ref) FROM post_entities" +
				" JOIN entities ON entities.id = post_entities.entity_id" +
				" WHERE post_entities.post_id = posts.id AND entities.ref IN ?) = ?",
			[]any{refs, len(refs)}
	},
	tagCond: func(tags []string) (string, []any) {
		return "(SELECT COUNT(DISTINCT tags.name) FROM post_tags" +
				" JOIN tags ON tags.id = post_tags.tag_id" +
				" WHERE post_tags.post_id = posts.id AND tags.name IN ?) = ?",
			[]any{tags, len(tags)}
	},
}

// answerCriteria resolves leaves against the answers table. Entity and tag
// membership look at the owning question's associations.
var answerCriteria = criteriaTarget{
	authorColumn: "answers.author",
	entityCond: func(refs []string) (string, []any) {
		return "(SELECT COUNT(DISTINCT entities.ref) FROM post_entities" +
				" JOIN entities ON entities.id = post_entities.entity_id" +
				" WHERE post_entities.post_id = answers.post_id AND entities.ref IN ?) = ?",
			[]any{refs, len(refs)}
	},
	tagCond: func(tags []string) (string, []any) {
		return "(SELECT COUNT(DISTINCT tags.name) FROM post_tags" +
				" JOIN tags ON tags.id = post_tags.tag_id" +
				" WHERE post_tags.post_id = answers.post_id AND tags.name IN ?) = ?",
			[]any{tags, len(tags)}
	},
}

// collectionCriteria resolves the author leaf against the collection owner.
// Entity and tag leaves have no meaning for collections and fail closed.
var collectionCriteria = criteriaTarget{
	authorColumn: "collections.owner",
}

const (
	matchAll  = "1 = 1"
	matchNone = "1 = 0"
)

// criteriaSQL walks the tree once and renders a parenthesized SQL condition
// with positional arguments. Unknown leaf kinds fail closed so a policy
// extension can never widen visibility by accident.
func criteriaSQL(node permission.Criteria, target criteriaTarget) (string, []any) {
	switch c := node.(type) {
	case permission.AllOf:
		return combineSQL(c.Conditions, " AND ", matchAll, target)
	case permission.AnyOf:
		return combineSQL(c.Conditions, " OR ", matchNone, target)
	case permission.AuthorIs:
		if c.UserRef == "" || target.authorColumn == "" {
			return matchNone, nil
		}
		return fmt.Sprintf("%s = ?", target.authorColumn), []any{c.UserRef}
	case permission.HasEntities:
		if len(c.Refs) == 0 || target.entityCond == nil {
			return matchNone, nil
		}
		return target.entityCond(c.Refs)
	case permission.HasTags:
		if len(c.Tags) == 0 || target.tagCond == nil {
			return matchNone, nil
		}
		return target.tagCond(c.Tags)
	default:
		return matchNone, nil
	}
}

func combineSQL(children []permission.Criteria, op, empty string, target criteriaTarget) (string, []any) {
	if len(children) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(children))
	var args []any
	for _, child := range children {
		sql, childArgs := criteriaSQL(child, target)
		parts = append(parts, "("+sql+")")
		args = append(args, childArgs...)
	}
	return strings.Join(parts, op), args
}

// applyCriteria folds a criteria tree into the query. A nil tree means the
// decision was an unconditional allow.
func applyCriteria(tx *gorm.DB, node permission.Criteria, target criteriaTarget) *gorm.DB {
	if node == nil {
		return tx
	}
	sql, args := criteriaSQL(node, target)
	return tx.Where(sql, args...)
}
