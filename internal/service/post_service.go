package service

import (
	"errors"
	"strings"
	"time"

	"github.com/qboard/internal/db"
	"github.com/qboard/internal/permission"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrForbidden           = errors.New("operation not permitted")
	ErrEmptyTitle          = errors.New("title must not be empty")
	ErrEmptyContent        = errors.New("content must not be empty")
	ErrInvalidVote         = errors.New("vote value must be +1 or -1")
	ErrNotQuestion         = errors.New("post is not a question")
	ErrCorrectAnswerExists = errors.New("question already has a correct answer")
	ErrAnswerMismatch      = errors.New("answer does not belong to this question")
)

// Score and count expressions used for ordering and derived fields. Trend is
// an interaction rate discounted by age in hours.
const (
	postScoreExpr   = "COALESCE((SELECT SUM(votes.value) FROM votes WHERE votes.post_id = posts.id), 0)"
	postAnswersExpr = "(SELECT COUNT(*) FROM answers WHERE answers.post_id = posts.id)"
	postTrendExpr   = "(" + postScoreExpr + " * 10.0 + posts.views)" +
		" / ((julianday('now') - julianday(posts.created_at)) * 24.0 + 2.0)"
)

// PostService wraps post related database operations: CRUD, comments, votes,
// favorites and the correct-answer marking on questions.
type PostService struct {
	db *gorm.DB
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// PostListOptions describes filters, ordering and pagination for List.
type PostListOptions struct {
	Type            db.PostType
	Authors         []string
	Tags            []string
	Entity          string
	SearchQuery     string
	FromDate        time.Time
	ToDate          time.Time
	CollectionID    uint
	NoCorrectAnswer bool
	NoAnswers       bool
	NoVotes         bool
	Favorite        bool
	IncludeAnswers  bool
	IncludeEntities bool
	IncludeTrend    bool
	OrderBy         string
	Order           string
	Random          bool
	Limit           int
	Offset          int
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Author      string
	Type        db.PostType
	Title       string
	Content     string
	Tags        []string
	Entities    []string
	Anonymous   bool
	HeaderImage string
}

// PostFacts extracts the attributes the permission criteria leaves evaluate.
func PostFacts(post *db.Post) permission.Facts {
	return permission.Facts{
		Author:   post.Author,
		Entities: post.EntityRefs(),
		Tags:     post.TagNames(),
	}
}

// List returns one page of posts matching the options, restricted by the
// criteria tree, plus the total match count before pagination.
func (s *PostService) List(actor string, opts PostListOptions, criteria permission.Criteria) ([]db.Post, int64, error) {
	query := s.filteredQuery(actor, opts, criteria)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.orderedQuery(query, opts)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	query = query.Preload("Tags").Preload("Comments")
	if opts.IncludeEntities {
		query = query.Preload("Entities")
	}
	if opts.IncludeAnswers {
		query = query.Preload("Answers").Preload("Answers.Comments")
	}

	var posts []db.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	if err := s.fillDerived(actor, posts, opts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *PostService) filteredQuery(actor string, opts PostListOptions, criteria permission.Criteria) *gorm.DB {
	query := s.db.Model(&db.Post{})

	if opts.Type != "" {
		query = query.Where("posts.type = ?", opts.Type)
	}
	if len(opts.Authors) > 0 {
		query = query.Where("posts.author IN ?", opts.Authors)
	}
	if len(opts.Tags) > 0 {
		sql, args := postCriteria.tagCond(opts.Tags)
		query = query.Where(sql, args...)
	}
	if opts.Entity != "" {
		query = query.Where("EXISTS (SELECT 1 FROM post_entities"+
			" JOIN entities ON entities.id = post_entities.entity_id"+
			" WHERE post_entities.post_id = posts.id AND entities.ref = ?)", opts.Entity)
	}
	if opts.SearchQuery != "" {
		like := "%" + opts.SearchQuery + "%"
		query = query.Where("posts.title LIKE ? OR posts.content LIKE ?", like, like)
	}
	if !opts.FromDate.IsZero() {
		query = query.Where("posts.created_at >= ?", opts.FromDate)
	}
	if !opts.ToDate.IsZero() {
		query = query.Where("posts.created_at <= ?", opts.ToDate)
	}
	if opts.CollectionID != 0 {
		query = query.Where("EXISTS (SELECT 1 FROM collection_posts"+
			" WHERE collection_posts.post_id = posts.id AND collection_posts.collection_id = ?)", opts.CollectionID)
	}
	if opts.NoCorrectAnswer {
		query = query.Where("posts.correct_answer_id IS NULL")
	}
	if opts.NoAnswers {
		query = query.Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.post_id = posts.id)")
	}
	if opts.NoVotes {
		query = query.Where("NOT EXISTS (SELECT 1 FROM votes WHERE votes.post_id = posts.id)")
	}
	if opts.Favorite {
		query = query.Where("EXISTS (SELECT 1 FROM post_favorites"+
			" WHERE post_favorites.post_id = posts.id AND post_favorites.author = ?)", actor)
	}

	return applyCriteria(query, criteria, postCriteria)
}

func (s *PostService) orderedQuery(query *gorm.DB, opts PostListOptions) *gorm.DB {
	if opts.Random {
		return query.Order("RANDOM()")
	}

	direction := "desc"
	if strings.EqualFold(opts.Order, "asc") {
		direction = "asc"
	}

	column := ""
	switch opts.OrderBy {
	case "views":
		column = "posts.views"
	case "score":
		column = postScoreExpr
	case "answersCount":
		column = postAnswersExpr
	case "updated":
		column = "posts.updated_at"
	case "trend":
		column = postTrendExpr
	case "created", "":
		column = "posts.created_at"
	default:
		column = "posts.created_at"
	}

	return query.Order(column + " " + direction).Order("posts.id " + direction)
}

// fillDerived populates the query-only fields on a page of posts with a
// fixed number of grouped queries, independent of page size.
func (s *PostService) fillDerived(actor string, posts []db.Post, opts PostListOptions) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	type aggRow struct {
		PostID uint
		Total  int
	}

	scores := make(map[uint]int, len(posts))
	var scoreRows []aggRow
	if err := s.db.Model(&db.Vote{}).
		Select("post_id, COALESCE(SUM(value), 0) AS total").
		Where("post_id IN ?", ids).
		Group("post_id").
		Find(&scoreRows).Error; err != nil {
		return err
	}
	for _, row := range scoreRows {
		scores[row.PostID] = row.Total
	}

	answerCounts := make(map[uint]int, len(posts))
	var answerRows []aggRow
	if err := s.db.Model(&db.Answer{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", ids).
		Group("post_id").
		Find(&answerRows).Error; err != nil {
		return err
	}
	for _, row := range answerRows {
		answerCounts[row.PostID] = row.Total
	}

	favorites := make(map[uint]bool, len(posts))
	if actor != "" {
		var favoriteIDs []uint
		if err := s.db.Model(&db.PostFavorite{}).
			Where("author = ? AND post_id IN ?", actor, ids).
			Pluck("post_id", &favoriteIDs).Error; err != nil {
			return err
		}
		for _, id := range favoriteIDs {
			favorites[id] = true
		}
	}

	answerScores := make(map[uint]int)
	if opts.IncludeAnswers {
		var rows []struct {
			AnswerID uint
			Total    int
		}
		if err := s.db.Model(&db.Vote{}).
			Select("answer_id, COALESCE(SUM(value), 0) AS total").
			Where("answer_id IN (SELECT id FROM answers WHERE post_id IN ?)", ids).
			Group("answer_id").
			Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			answerScores[row.AnswerID] = row.Total
		}
	}

	now := time.Now()
	for i := range posts {
		post := &posts[i]
		post.Score = scores[post.ID]
		post.AnswersCount = answerCounts[post.ID]
		post.Favorite = favorites[post.ID]
		if opts.IncludeTrend {
			age := now.Sub(post.CreatedAt).Hours()
			post.Trend = (float64(post.Score)*10.0 + float64(post.Views)) / (age + 2.0)
		}
		if post.Anonymous {
			post.Author = anonymizeRef(post.Author)
		}
		for j := range post.Answers {
			post.Answers[j].Score = answerScores[post.Answers[j].ID]
			if post.Answers[j].Anonymous {
				post.Answers[j].Author = anonymizeRef(post.Answers[j].Author)
			}
		}
	}
	return nil
}

// Get fetches one post with all associations. When recordView is set the view
// counter is bumped, at most once per (post, viewer session). Absence is
// reported as ErrPostNotFound.
func (s *PostService) Get(actor string, id uint, viewerID string, recordView bool) (*db.Post, error) {
	var post db.Post
	err := s.db.
		Preload("Tags").
		Preload("Entities").
		Preload("Comments").
		Preload("Answers").
		Preload("Answers.Comments").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if recordView {
		if err := s.recordView(post.ID, viewerKey(actor, viewerID)); err != nil {
			return nil, err
		}
		// Reload the counter so the caller sees the bump.
		if err := s.db.Model(&db.Post{}).Select("views").Where("id = ?", post.ID).Scan(&post.Views).Error; err != nil {
			return nil, err
		}
	}

	if err := s.fillOne(actor, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByAnswerID fetches the question owning the given answer.
func (s *PostService) GetByAnswerID(actor string, answerID uint, viewerID string, recordView bool) (*db.Post, error) {
	var answer db.Answer
	if err := s.db.Select("post_id").First(&answer, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return s.Get(actor, answer.PostID, viewerID, recordView)
}

func (s *PostService) fillOne(actor string, post *db.Post) error {
	page := []db.Post{*post}
	if err := s.fillDerived(actor, page, PostListOptions{IncludeAnswers: true}); err != nil {
		return err
	}
	*post = page[0]
	return nil
}

// viewerKey picks the dedup key for view counting: the session id when one
// exists, otherwise the acting user. Empty means the view is not counted.
func viewerKey(actor, viewerID string) string {
	if viewerID != "" {
		return viewerID
	}
	return actor
}

func (s *PostService) recordView(postID uint, viewer string) error {
	if viewer == "" {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		view := db.PostView{PostID: postID, ViewerID: viewer}
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "viewer_id"}},
			DoNothing: true,
		}).Create(&view)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&db.Post{}).Where("id = ?", postID).
			UpdateColumn("views", gorm.Expr("views + 1")).Error
	})
}

// Create persists a post and resolves its tag and entity associations.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrEmptyContent
	}

	postType := input.Type
	if postType == "" {
		postType = db.PostTypeQuestion
	}

	post := db.Post{
		Author:      input.Author,
		Anonymous:   input.Anonymous,
		Type:        postType,
		Title:       input.Title,
		Content:     input.Content,
		HeaderImage: input.HeaderImage,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return s.replaceAssociations(tx, &post, input.Tags, input.Entities)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(input.Author, post.ID, "", false)
}

// Update applies changes to an existing post. When a criteria tree is given
// it is the authority (the policy already encodes ownership); without one the
// author-only rule applies.
func (s *PostService) Update(id uint, input PostInput, criteria permission.Criteria) (*db.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrEmptyContent
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post db.Post
		if err := tx.Preload("Tags").Preload("Entities").First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		if !mutationPermitted(input.Author, PostFacts(&post), criteria) {
			return ErrForbidden
		}

		updates := map[string]any{
			"title":        input.Title,
			"content":      input.Content,
			"header_image": input.HeaderImage,
		}
		if err := tx.Model(&post).Updates(updates).Error; err != nil {
			return err
		}
		return s.replaceAssociations(tx, &post, input.Tags, input.Entities)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(input.Author, id, "", false)
}

// mutationPermitted applies the stricter of the two ownership disciplines:
// the criteria tree when the policy supplied one, the author check otherwise.
func mutationPermitted(actor string, facts permission.Facts, criteria permission.Criteria) bool {
	if criteria != nil {
		return criteria.Matches(facts)
	}
	return actor != "" && actor == facts.Author
}

func (s *PostService) replaceAssociations(tx *gorm.DB, post *db.Post, tagNames, entityRefs []string) error {
	tags := make([]db.Tag, 0, len(tagNames))
	for _, name := range dedupeStrings(tagNames) {
		var tag db.Tag
		if err := tx.Where(db.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
		return err
	}

	entities := make([]db.Entity, 0, len(entityRefs))
	for _, ref := range dedupeStrings(entityRefs) {
		var entity db.Entity
		if err := tx.Where(db.Entity{Ref: ref}).FirstOrCreate(&entity).Error; err != nil {
			return err
		}
		entities = append(entities, entity)
	}
	return tx.Model(post).Association("Entities").Replace(entities)
}

// Delete removes a post and everything hanging off it: answers, comments,
// votes, favorites, view records, collection memberships and association
// rows, all in one transaction so foreign key integrity cannot be observed
// half done.
func (s *PostService) Delete(actor string, id uint, criteria permission.Criteria) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var post db.Post
		if err := tx.Preload("Tags").Preload("Entities").First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		if !mutationPermitted(actor, PostFacts(&post), criteria) {
			return ErrForbidden
		}

		steps := []struct {
			sql  string
			args []any
		}{
			{"DELETE FROM comments WHERE post_id = ? OR answer_id IN (SELECT id FROM answers WHERE post_id = ?)", []any{id, id}},
			{"DELETE FROM votes WHERE post_id = ? OR answer_id IN (SELECT id FROM answers WHERE post_id = ?)", []any{id, id}},
			{"DELETE FROM answers WHERE post_id = ?", []any{id}},
			{"DELETE FROM post_favorites WHERE post_id = ?", []any{id}},
			{"DELETE FROM post_views WHERE post_id = ?", []any{id}},
			{"DELETE FROM collection_posts WHERE post_id = ?", []any{id}},
			{"DELETE FROM post_tags WHERE post_id = ?", []any{id}},
			{"DELETE FROM post_entities WHERE post_id = ?", []any{id}},
		}
		for _, step := range steps {
			if err := tx.Exec(step.sql, step.args...).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&db.Post{}, id).Error
	})
}

// Comment attaches a comment to a post and returns the reloaded post.
func (s *PostService) Comment(postID uint, author, content string) (*db.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}
		comment := db.Comment{PostID: &postID, Author: author, Content: content}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(author, postID, "", false)
}

// DeleteComment removes a post comment; only its author may do so.
func (s *PostService) DeleteComment(postID, commentID uint, author string) (*db.Post, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var comment db.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}
		if comment.PostID == nil || *comment.PostID != postID {
			return ErrCommentNotFound
		}
		if comment.Author != author {
			return ErrForbidden
		}
		return tx.Delete(&db.Comment{}, commentID).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(author, postID, "", false)
}

// Vote upserts the actor's vote on a post and reports whether anything
// changed. Re-casting the same value is a no-op; a different value replaces
// the previous row, never double counting.
func (s *PostService) Vote(actor string, postID uint, value int) (bool, error) {
	if value != 1 && value != -1 {
		return false, ErrInvalidVote
	}

	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}

		var existing db.Vote
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("author = ? AND post_id = ?", actor, postID).
			First(&existing).Error
		if err == nil {
			if existing.Value == value {
				return nil
			}
			changed = true
			existing.Value = value
			return tx.Save(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		changed = true
		vote := db.Vote{Author: actor, PostID: &postID, Value: value}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "author"}, {Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&vote).Error
	})
	return changed, err
}

// Author returns the stored author ref of a post, bypassing the anonymity
// rewrite applied on reads. Ownership checks need the real ref.
func (s *PostService) Author(postID uint) (string, error) {
	var author string
	err := s.db.Model(&db.Post{}).Select("author").Where("id = ?", postID).Scan(&author).Error
	if err != nil {
		return "", err
	}
	if author == "" {
		if err := requirePost(s.db, postID); err != nil {
			return "", err
		}
	}
	return author, nil
}

// RecordView bumps the post's view counter, at most once per viewer key, and
// returns the resulting count.
func (s *PostService) RecordView(actor string, postID uint, viewerID string) (int, error) {
	if err := requirePost(s.db, postID); err != nil {
		return 0, err
	}
	if err := s.recordView(postID, viewerKey(actor, viewerID)); err != nil {
		return 0, err
	}
	var views int
	err := s.db.Model(&db.Post{}).Select("views").Where("id = ?", postID).Scan(&views).Error
	return views, err
}

// Score returns the live algebraic sum of vote values on a post.
func (s *PostService) Score(postID uint) (int, error) {
	var score int
	err := s.db.Model(&db.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("post_id = ?", postID).
		Scan(&score).Error
	return score, err
}

// Favorite adds the post to the actor's favorites; idempotent.
func (s *PostService) Favorite(actor string, postID uint) (bool, error) {
	if err := requirePost(s.db, postID); err != nil {
		return false, err
	}
	favorite := db.PostFavorite{Author: actor, PostID: postID}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "author"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(&favorite)
	return result.RowsAffected > 0, result.Error
}

// Unfavorite removes the post from the actor's favorites; idempotent.
func (s *PostService) Unfavorite(actor string, postID uint) (bool, error) {
	result := s.db.Where("author = ? AND post_id = ?", actor, postID).Delete(&db.PostFavorite{})
	return result.RowsAffected > 0, result.Error
}

// MarkAnswerCorrect records the accepted answer of a question. A question can
// have at most one: marking a second answer fails with ErrCorrectAnswerExists
// until the first is unmarked. Re-marking the same answer is a no-op.
func (s *PostService) MarkAnswerCorrect(postID, answerID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		post, answer, err := questionAndAnswer(tx, postID, answerID)
		if err != nil {
			return err
		}

		if post.CorrectAnswerID != nil {
			if *post.CorrectAnswerID == answerID {
				return nil
			}
			return ErrCorrectAnswerExists
		}

		if err := tx.Model(&db.Post{}).Where("id = ?", postID).
			UpdateColumn("correct_answer_id", answerID).Error; err != nil {
			return err
		}
		return tx.Model(&db.Answer{}).Where("id = ?", answer.ID).
			UpdateColumn("correct", true).Error
	})
}

// MarkAnswerIncorrect clears the accepted answer marking. Clearing an answer
// that is not currently marked is a no-op.
func (s *PostService) MarkAnswerIncorrect(postID, answerID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		post, answer, err := questionAndAnswer(tx, postID, answerID)
		if err != nil {
			return err
		}

		if post.CorrectAnswerID == nil || *post.CorrectAnswerID != answerID {
			return nil
		}

		if err := tx.Model(&db.Post{}).Where("id = ?", postID).
			UpdateColumn("correct_answer_id", nil).Error; err != nil {
			return err
		}
		return tx.Model(&db.Answer{}).Where("id = ?", answer.ID).
			UpdateColumn("correct", false).Error
	})
}

func questionAndAnswer(tx *gorm.DB, postID, answerID uint) (*db.Post, *db.Answer, error) {
	var post db.Post
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPostNotFound
		}
		return nil, nil, err
	}
	if post.Type != db.PostTypeQuestion {
		return nil, nil, ErrNotQuestion
	}

	var answer db.Answer
	if err := tx.First(&answer, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAnswerNotFound
		}
		return nil, nil, err
	}
	if answer.PostID != postID {
		return nil, nil, ErrAnswerMismatch
	}
	return &post, &answer, nil
}

func requirePost(tx *gorm.DB, postID uint) error {
	var count int64
	if err := tx.Model(&db.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

const anonymousRef = "user:default/anonymous"

// anonymizeRef hides the author of anonymous content on the way out while
// the stored row keeps the real ref for ownership checks.
func anonymizeRef(string) string {
	return anonymousRef
}
