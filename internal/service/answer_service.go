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

var ErrAnswerNotFound = errors.New("answer not found")

const answerScoreExpr = "COALESCE((SELECT SUM(votes.value) FROM votes WHERE votes.answer_id = answers.id), 0)"

// AnswerService wraps answer related database operations.
type AnswerService struct {
	db *gorm.DB
}

// NewAnswerService creates an AnswerService instance.
func NewAnswerService(gdb *gorm.DB) *AnswerService {
	return &AnswerService{db: gdb}
}

// AnswerListOptions describes filters, ordering and pagination for List.
type AnswerListOptions struct {
	Author          string
	Tags            []string
	Entity          string
	SearchQuery     string
	FromDate        time.Time
	ToDate          time.Time
	NoCorrectAnswer bool
	NoVotes         bool
	OrderBy         string
	Order           string
	Limit           int
	Offset          int
}

// Create answers a question. The parent post must exist and be a question.
func (s *AnswerService) Create(actor string, postID uint, content string, anonymous bool) (*db.Answer, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	var answer db.Answer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post db.Post
		if err := tx.Select("id", "type").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if post.Type != db.PostTypeQuestion {
			return ErrNotQuestion
		}

		answer = db.Answer{PostID: postID, Author: actor, Anonymous: anonymous, Content: content}
		return tx.Create(&answer).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(actor, answer.ID)
}

// Get fetches one answer with comments and its live score.
func (s *AnswerService) Get(actor string, answerID uint) (*db.Answer, error) {
	var answer db.Answer
	if err := s.db.Preload("Comments").First(&answer, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}

	score, err := s.Score(answer.ID)
	if err != nil {
		return nil, err
	}
	answer.Score = score
	if answer.Anonymous {
		answer.Author = anonymizeRef(answer.Author)
	}
	return &answer, nil
}

// List returns one page of answers matching the options, restricted by the
// criteria tree, plus the total match count before pagination.
func (s *AnswerService) List(actor string, opts AnswerListOptions, criteria permission.Criteria) ([]db.Answer, int64, error) {
	query := s.db.Model(&db.Answer{})

	if opts.Author != "" {
		query = query.Where("answers.author = ?", opts.Author)
	}
	if len(opts.Tags) > 0 {
		sql, args := answerCriteria.tagCond(opts.Tags)
		query = query.Where(sql, args...)
	}
	if opts.Entity != "" {
		query = query.Where("EXISTS (SELECT 1 FROM post_entities"+
			" JOIN entities ON entities.id = post_entities.entity_id"+
			" WHERE post_entities.post_id = answers.post_id AND entities.ref = ?)", opts.Entity)
	}
	if opts.SearchQuery != "" {
		query = query.Where("answers.content LIKE ?", "%"+opts.SearchQuery+"%")
	}
	if !opts.FromDate.IsZero() {
		query = query.Where("answers.created_at >= ?", opts.FromDate)
	}
	if !opts.ToDate.IsZero() {
		query = query.Where("answers.created_at <= ?", opts.ToDate)
	}
	if opts.NoCorrectAnswer {
		query = query.Where("answers.correct = ?", false)
	}
	if opts.NoVotes {
		query = query.Where("NOT EXISTS (SELECT 1 FROM votes WHERE votes.answer_id = answers.id)")
	}

	query = applyCriteria(query, criteria, answerCriteria)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "desc"
	if strings.EqualFold(opts.Order, "asc") {
		direction = "asc"
	}
	column := "answers.created_at"
	switch opts.OrderBy {
	case "score":
		column = answerScoreExpr
	case "updated":
		column = "answers.updated_at"
	}
	query = query.Order(column + " " + direction).Order("answers.id " + direction)

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var answers []db.Answer
	if err := query.Preload("Comments").Find(&answers).Error; err != nil {
		return nil, 0, err
	}

	if err := s.fillScores(answers); err != nil {
		return nil, 0, err
	}
	return answers, total, nil
}

func (s *AnswerService) fillScores(answers []db.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(answers))
	for _, answer := range answers {
		ids = append(ids, answer.ID)
	}

	var rows []struct {
		AnswerID uint
		Total    int
	}
	if err := s.db.Model(&db.Vote{}).
		Select("answer_id, COALESCE(SUM(value), 0) AS total").
		Where("answer_id IN ?", ids).
		Group("answer_id").
		Find(&rows).Error; err != nil {
		return err
	}

	scores := make(map[uint]int, len(rows))
	for _, row := range rows {
		scores[row.AnswerID] = row.Total
	}
	for i := range answers {
		answers[i].Score = scores[answers[i].ID]
		if answers[i].Anonymous {
			answers[i].Author = anonymizeRef(answers[i].Author)
		}
	}
	return nil
}

// Facts extracts the permission facts for an answer: its own author plus the
// owning question's entity and tag associations.
func (s *AnswerService) Facts(answer *db.Answer) (permission.Facts, error) {
	var post db.Post
	err := s.db.Preload("Tags").Preload("Entities").First(&post, answer.PostID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permission.Facts{Author: answer.Author}, nil
		}
		return permission.Facts{}, err
	}
	return permission.Facts{
		Author:   answer.Author,
		Entities: post.EntityRefs(),
		Tags:     post.TagNames(),
	}, nil
}

// Update replaces the answer content under the same ownership discipline as
// posts: the criteria tree rules when present, author-only otherwise.
func (s *AnswerService) Update(actor string, answerID uint, content string, criteria permission.Criteria) (*db.Answer, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var answer db.Answer
		if err := tx.First(&answer, answerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAnswerNotFound
			}
			return err
		}

		facts, err := s.Facts(&answer)
		if err != nil {
			return err
		}
		if !mutationPermitted(actor, facts, criteria) {
			return ErrForbidden
		}

		return tx.Model(&answer).Update("content", content).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(actor, answerID)
}

// Delete removes an answer along with its comments and votes, and clears the
// question's correct answer marker when it pointed at this answer.
func (s *AnswerService) Delete(actor string, answerID uint, criteria permission.Criteria) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var answer db.Answer
		if err := tx.First(&answer, answerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAnswerNotFound
			}
			return err
		}

		facts, err := s.Facts(&answer)
		if err != nil {
			return err
		}
		if !mutationPermitted(actor, facts, criteria) {
			return ErrForbidden
		}

		if err := tx.Where("answer_id = ?", answerID).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id = ?", answerID).Delete(&db.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.Post{}).
			Where("id = ? AND correct_answer_id = ?", answer.PostID, answerID).
			UpdateColumn("correct_answer_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Answer{}, answerID).Error
	})
}

// Comment attaches a comment to an answer and returns the reloaded answer.
func (s *AnswerService) Comment(answerID uint, author, content string) (*db.Answer, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Answer{}).Where("id = ?", answerID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrAnswerNotFound
		}
		comment := db.Comment{AnswerID: &answerID, Author: author, Content: content}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(author, answerID)
}

// DeleteComment removes an answer comment; only its author may do so.
func (s *AnswerService) DeleteComment(answerID, commentID uint, author string) (*db.Answer, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var comment db.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}
		if comment.AnswerID == nil || *comment.AnswerID != answerID {
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
	return s.Get(author, answerID)
}

// Vote upserts the actor's vote on an answer, mirroring PostService.Vote.
func (s *AnswerService) Vote(actor string, answerID uint, value int) (bool, error) {
	if value != 1 && value != -1 {
		return false, ErrInvalidVote
	}

	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Answer{}).Where("id = ?", answerID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrAnswerNotFound
		}

		var existing db.Vote
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("author = ? AND answer_id = ?", actor, answerID).
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
		vote := db.Vote{Author: actor, AnswerID: &answerID, Value: value}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "author"}, {Name: "answer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&vote).Error
	})
	return changed, err
}

// Score returns the live algebraic sum of vote values on an answer.
func (s *AnswerService) Score(answerID uint) (int, error) {
	var score int
	err := s.db.Model(&db.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("answer_id = ?", answerID).
		Scan(&score).Error
	return score, err
}
