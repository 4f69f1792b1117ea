package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type tagDescriptionRequest struct {
	Description string `json:"description"`
}

// GetTags lists all tags with usage and follower counts.
func (a *API) GetTags(c *gin.Context) {
	tags, err := a.tags.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// GetTag fetches one tag by name.
func (a *API) GetTag(c *gin.Context) {
	tag, err := a.tags.Get(c.Param("name"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// UpdateTag sets a tag's description.
func (a *API) UpdateTag(c *gin.Context) {
	var req tagDescriptionRequest
	if !bindJSON(c, &req, "invalid request body") {
		return
	}

	tag, err := a.tags.UpdateDescription(c.Param("name"), req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// FollowTag subscribes the actor to a tag.
func (a *API) FollowTag(c *gin.Context) {
	user := actor(c)
	if user == "" {
		respondError(c, http.StatusUnauthorized, "identity required")
		return
	}
	if _, err := a.tags.Follow(user, c.Param("name")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "following"})
}

// UnfollowTag removes the subscription.
func (a *API) UnfollowTag(c *gin.Context) {
	user := actor(c)
	if user == "" {
		respondError(c, http.StatusUnauthorized, "identity required")
		return
	}
	if _, err := a.tags.Unfollow(user, c.Param("name")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}

// GetFollowedTags lists the tag names the actor follows.
func (a *API) GetFollowedTags(c *gin.Context) {
	names, err := a.tags.UserTags(actor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": names})
}
