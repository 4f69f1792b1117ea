package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qboard/internal/db"
	"github.com/qboard/internal/service"
)

// GetLeaderboard serves the ranked author statistics. The kind segment picks
// the aggregate.
func (a *API) GetLeaderboard(c *gin.Context) {
	opts := service.StatisticsOptions{
		Author: c.Query("author"),
		Type:   db.PostType(c.Query("type")),
		Limit:  parseIntQuery(c, "limit", 10),
	}

	var (
		stats []service.Statistic
		err   error
	)
	switch c.Param("kind") {
	case "most-upvoted-posts":
		stats, err = a.stats.MostUpvotedPosts(opts)
	case "most-upvoted-answers":
		stats, err = a.stats.MostUpvotedAnswers(opts)
	case "most-upvoted-correct-answers":
		stats, err = a.stats.MostUpvotedCorrectAnswers(opts)
	case "total-posts":
		stats, err = a.stats.TotalPosts(opts)
	case "total-answers":
		stats, err = a.stats.TotalAnswers(opts)
	default:
		respondError(c, http.StatusNotFound, "unknown leaderboard")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}

// GetGlobalStats serves the site-wide rollup series.
func (a *API) GetGlobalStats(c *gin.Context) {
	stats, err := a.stats.GlobalStats()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}

// GetUserStats serves one user's rollup series plus their live summary.
func (a *API) GetUserStats(c *gin.Context) {
	ref := entityRefParam(c)

	series, err := a.stats.UserStats(ref)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	summary, err := a.stats.UserSummary(ref)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": series, "summary": summary})
}
