package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetEntities lists all known entities with usage and follower counts.
func (a *API) GetEntities(c *gin.Context) {
	entities, err := a.entities.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

// GetEntity fetches one entity by ref. Refs contain slashes, so the route
// binds the remainder of the path.
func (a *API) GetEntity(c *gin.Context) {
	entity, err := a.entities.Get(entityRefParam(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

// FollowEntity subscribes the actor to an entity, creating it on first use.
func (a *API) FollowEntity(c *gin.Context) {
	user := actor(c)
	if user == "" {
		respondError(c, http.StatusUnauthorized, "identity required")
		return
	}
	if _, err := a.entities.Follow(user, entityRefParam(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "following"})
}

// UnfollowEntity removes the subscription.
func (a *API) UnfollowEntity(c *gin.Context) {
	user := actor(c)
	if user == "" {
		respondError(c, http.StatusUnauthorized, "identity required")
		return
	}
	if _, err := a.entities.Unfollow(user, entityRefParam(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}

// GetFollowedEntities lists the entity refs the actor follows.
func (a *API) GetFollowedEntities(c *gin.Context) {
	refs, err := a.entities.UserEntities(actor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": refs})
}

// entityRefParam extracts the entity ref from a wildcard route segment,
// trimming the leading slash gin keeps on *param captures.
func entityRefParam(c *gin.Context) string {
	ref := c.Param("ref")
	if len(ref) > 0 && ref[0] == '/' {
		ref = ref[1:]
	}
	return ref
}
