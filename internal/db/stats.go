package db

import "time"

// GlobalStat is one row of the site-wide daily rollup. Rows are written once
// per calendar date by the rollup job and only ever removed by retention
// pruning; re-running the job for a date overwrites that date's row in place.
type GlobalStat struct {
	ID            uint      `gorm:"primaryKey"`
	Date          time.Time `gorm:"not null;uniqueIndex:idx_global_stat_date"`
	TotalPosts    int       `gorm:"not null;default:0"`
	TotalAnswers  int       `gorm:"not null;default:0"`
	TotalComments int       `gorm:"not null;default:0"`
	TotalVotes    int       `gorm:"not null;default:0"`
	TotalViews    int       `gorm:"not null;default:0"`
	TotalUsers    int       `gorm:"not null;default:0"`
	TotalTags     int       `gorm:"not null;default:0"`
	CreatedAt     time.Time
}

// UserStat is the per-user daily rollup counterpart of GlobalStat.
type UserStat struct {
	ID            uint      `gorm:"primaryKey"`
	UserRef       string    `gorm:"size:255;not null;uniqueIndex:idx_user_stat_date"`
	Date          time.Time `gorm:"not null;uniqueIndex:idx_user_stat_date"`
	TotalPosts    int       `gorm:"not null;default:0"`
	TotalAnswers  int       `gorm:"not null;default:0"`
	TotalComments int       `gorm:"not null;default:0"`
	TotalVotes    int       `gorm:"not null;default:0"`
	TotalViews    int       `gorm:"not null;default:0"`
	CreatedAt     time.Time
}
