package service

import (
	"errors"
	"time"

	"github.com/qboard/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownCountKind = errors.New("unknown count kind")

// Statistic is one leaderboard row: a user and an aggregate value.
type Statistic struct {
	Author string
	Total  int
}

// StatisticsOptions filters and bounds leaderboard queries.
type StatisticsOptions struct {
	Author string
	Type   db.PostType
	Limit  int
}

// UserSummary carries the per-user totals fed into the daily rollup.
type UserSummary struct {
	UserRef       string
	TotalPosts    int
	TotalAnswers  int
	TotalComments int
	TotalVotes    int
	TotalViews    int
}

// StatsService computes aggregate statistics and maintains the append-only
// daily rollup time series.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a StatsService instance.
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{db: gdb}
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}

// MostUpvotedPosts ranks authors by the summed votes on their posts.
func (s *StatsService) MostUpvotedPosts(opts StatisticsOptions) ([]Statistic, error) {
	query := s.db.Model(&db.Post{}).
		Select("posts.author AS author, COALESCE(SUM(votes.value), 0) AS total").
		Joins("LEFT JOIN votes ON votes.post_id = posts.id").
		Group("posts.author").
		Order("total desc").Order("posts.author asc").
		Limit(limitOrDefault(opts.Limit))
	if opts.Author != "" {
		query = query.Where("posts.author = ?", opts.Author)
	}
	if opts.Type != "" {
		query = query.Where("posts.type = ?", opts.Type)
	}

	var stats []Statistic
	err := query.Find(&stats).Error
	return stats, err
}

// MostUpvotedAnswers ranks authors by the summed votes on their answers.
func (s *StatsService) MostUpvotedAnswers(opts StatisticsOptions) ([]Statistic, error) {
	return s.answerLeaderboard(opts, false)
}

// MostUpvotedCorrectAnswers ranks authors by summed votes on accepted
// answers only.
func (s *StatsService) MostUpvotedCorrectAnswers(opts StatisticsOptions) ([]Statistic, error) {
	return s.answerLeaderboard(opts, true)
}

func (s *StatsService) answerLeaderboard(opts StatisticsOptions, correctOnly bool) ([]Statistic, error) {
	query := s.db.Model(&db.Answer{}).
		Select("answers.author AS author, COALESCE(SUM(votes.value), 0) AS total").
		Joins("LEFT JOIN votes ON votes.answer_id = answers.id").
		Group("answers.author").
		Order("total desc").Order("answers.author asc").
		Limit(limitOrDefault(opts.Limit))
	if opts.Author != "" {
		query = query.Where("answers.author = ?", opts.Author)
	}
	if correctOnly {
		query = query.Where("answers.correct = ?", true)
	}

	var stats []Statistic
	err := query.Find(&stats).Error
	return stats, err
}

// TotalPosts ranks authors by post count.
func (s *StatsService) TotalPosts(opts StatisticsOptions) ([]Statistic, error) {
	query := s.db.Model(&db.Post{}).
		Select("posts.author AS author, COUNT(*) AS total").
		Group("posts.author").
		Order("total desc").Order("posts.author asc").
		Limit(limitOrDefault(opts.Limit))
	if opts.Author != "" {
		query = query.Where("posts.author = ?", opts.Author)
	}
	if opts.Type != "" {
		query = query.Where("posts.type = ?", opts.Type)
	}

	var stats []Statistic
	err := query.Find(&stats).Error
	return stats, err
}

// TotalAnswers ranks authors by answer count.
func (s *StatsService) TotalAnswers(opts StatisticsOptions) ([]Statistic, error) {
	query := s.db.Model(&db.Answer{}).
		Select("answers.author AS author, COUNT(*) AS total").
		Group("answers.author").
		Order("total desc").Order("answers.author asc").
		Limit(limitOrDefault(opts.Limit))
	if opts.Author != "" {
		query = query.Where("answers.author = ?", opts.Author)
	}

	var stats []Statistic
	err := query.Find(&stats).Error
	return stats, err
}

// Count returns the number of rows of one content kind, optionally filtered
// by author and, for posts, by post type.
func (s *StatsService) Count(kind string, author string, postType db.PostType) (int64, error) {
	var query *gorm.DB
	switch kind {
	case "posts":
		query = s.db.Model(&db.Post{})
		if postType != "" {
			query = query.Where("type = ?", postType)
		}
	case "answers":
		query = s.db.Model(&db.Answer{})
	case "comments":
		query = s.db.Model(&db.Comment{})
	case "votes":
		query = s.db.Model(&db.Vote{})
	default:
		return 0, ErrUnknownCountKind
	}
	if author != "" {
		query = query.Where("author = ?", author)
	}

	var total int64
	err := query.Count(&total).Error
	return total, err
}

// TotalViews counts recorded views on the user's posts, optionally limited
// to a trailing window and optionally excluding the author's own views.
func (s *StatsService) TotalViews(userRef string, lastDays int, excludeUser bool) (int, error) {
	query := s.db.Model(&db.PostView{}).
		Joins("JOIN posts ON posts.id = post_views.post_id").
		Where("posts.author = ?", userRef)
	if lastDays > 0 {
		query = query.Where("post_views.created_at >= ?", time.Now().AddDate(0, 0, -lastDays))
	}
	if excludeUser {
		query = query.Where("post_views.viewer_id <> ?", userRef)
	}

	var total int64
	err := query.Count(&total).Error
	return int(total), err
}

// UserSummary computes the live totals for one user.
func (s *StatsService) UserSummary(userRef string) (UserSummary, error) {
	summary := UserSummary{UserRef: userRef}

	counts := []struct {
		kind string
		dest *int
	}{
		{"posts", &summary.TotalPosts},
		{"answers", &summary.TotalAnswers},
		{"comments", &summary.TotalComments},
		{"votes", &summary.TotalVotes},
	}
	for _, c := range counts {
		total, err := s.Count(c.kind, userRef, "")
		if err != nil {
			return summary, err
		}
		*c.dest = int(total)
	}

	var views *int
	if err := s.db.Model(&db.Post{}).
		Select("COALESCE(SUM(views), 0)").
		Where("author = ?", userRef).
		Scan(&views).Error; err != nil {
		return summary, err
	}
	if views != nil {
		summary.TotalViews = *views
	}
	return summary, nil
}

// statDate normalizes a timestamp to its calendar date in UTC, the rollup's
// natural key.
func statDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SaveGlobalStats writes the site-wide rollup row for the given date.
// Re-running for the same date overwrites that row in place, so the job is
// safe to repeat.
func (s *StatsService) SaveGlobalStats(date time.Time) error {
	stat := db.GlobalStat{Date: statDate(date)}

	type totalQuery struct {
		model any
		dest  *int
	}
	queries := []totalQuery{
		{&db.Post{}, &stat.TotalPosts},
		{&db.Answer{}, &stat.TotalAnswers},
		{&db.Comment{}, &stat.TotalComments},
		{&db.Vote{}, &stat.TotalVotes},
		{&db.Tag{}, &stat.TotalTags},
	}
	for _, q := range queries {
		var total int64
		if err := s.db.Model(q.model).Count(&total).Error; err != nil {
			return err
		}
		*q.dest = int(total)
	}

	var views *int
	if err := s.db.Model(&db.Post{}).Select("COALESCE(SUM(views), 0)").Scan(&views).Error; err != nil {
		return err
	}
	if views != nil {
		stat.TotalViews = *views
	}

	var users int64
	if err := s.db.Model(&db.Post{}).Distinct("author").Count(&users).Error; err != nil {
		return err
	}
	stat.TotalUsers = int(users)

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_posts", "total_answers", "total_comments",
			"total_votes", "total_views", "total_users", "total_tags",
		}),
	}).Create(&stat).Error
}

// SaveUserStats writes one user's rollup row for the given date; idempotent
// per (user, date) like SaveGlobalStats.
func (s *StatsService) SaveUserStats(summary UserSummary, date time.Time) error {
	stat := db.UserStat{
		UserRef:       summary.UserRef,
		Date:          statDate(date),
		TotalPosts:    summary.TotalPosts,
		TotalAnswers:  summary.TotalAnswers,
		TotalComments: summary.TotalComments,
		TotalVotes:    summary.TotalVotes,
		TotalViews:    summary.TotalViews,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_ref"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_posts", "total_answers", "total_comments",
			"total_votes", "total_views",
		}),
	}).Create(&stat).Error
}

// CleanStats prunes rollup rows older than the retention window, measured
// back from the given date.
func (s *StatsService) CleanStats(days int, asOf time.Time) error {
	cutoff := statDate(asOf).AddDate(0, 0, -days)
	if err := s.db.Where("date < ?", cutoff).Delete(&db.GlobalStat{}).Error; err != nil {
		return err
	}
	return s.db.Where("date < ?", cutoff).Delete(&db.UserStat{}).Error
}

// GlobalStats returns the rollup series, newest first.
func (s *StatsService) GlobalStats() ([]db.GlobalStat, error) {
	var stats []db.GlobalStat
	err := s.db.Order("date desc").Find(&stats).Error
	return stats, err
}

// UserStats returns one user's rollup series, newest first.
func (s *StatsService) UserStats(userRef string) ([]db.UserStat, error) {
	var stats []db.UserStat
	err := s.db.Where("user_ref = ?", userRef).Order("date desc").Find(&stats).Error
	return stats, err
}

// ActiveUsers lists every distinct author seen in posts, answers or
// comments, for the per-user rollup sweep.
func (s *StatsService) ActiveUsers() ([]string, error) {
	var users []string
	err := s.db.Raw(
		"SELECT DISTINCT author FROM posts" +
			" UNION SELECT DISTINCT author FROM answers" +
			" UNION SELECT DISTINCT author FROM comments" +
			" ORDER BY author").Scan(&users).Error
	return users, err
}
