package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qboard/internal/permission"
	"github.com/qboard/internal/service"
)

type collectionRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ReadAccess  string `json:"readAccess"`
	EditAccess  string `json:"editAccess"`
	HeaderImage string `json:"headerImage"`
}

type collectionPostRequest struct {
	PostID uint `json:"postId" binding:"required"`
}

// GetCollections lists collections visible to the actor.
func (a *API) GetCollections(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionRead, permission.ResourceCollection)
	if !ok {
		return
	}

	opts := service.CollectionListOptions{
		Owner:       c.Query("owner"),
		SearchQuery: c.Query("searchQuery"),
		OrderBy:     c.Query("orderBy"),
		Order:       c.Query("order"),
		Limit:       parseIntQuery(c, "limit", 20),
		Offset:      parseIntQuery(c, "offset", 0),
	}

	collections, total, err := a.collections.List(actor(c), opts, decision.Criteria)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections, "total": total})
}

// GetCollection fetches one collection if the actor may see it.
func (a *API) GetCollection(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionRead, permission.ResourceCollection)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid collection id")
		return
	}

	collection, err := a.collections.Get(actor(c), id, decision.Criteria)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

// CreateCollection creates a collection owned by the actor.
func (a *API) CreateCollection(c *gin.Context) {
	if _, ok := a.decide(c, permission.ActionCreate, permission.ResourceCollection); !ok {
		return
	}

	var req collectionRequest
	if !bindJSON(c, &req, "title is required") {
		return
	}

	collection, err := a.collections.Create(service.CollectionInput{
		Owner:       actor(c),
		Title:       req.Title,
		Description: req.Description,
		ReadAccess:  req.ReadAccess,
		EditAccess:  req.EditAccess,
		HeaderImage: req.HeaderImage,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, collection)
}

// UpdateCollection applies changes under the owner criteria.
func (a *API) UpdateCollection(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionUpdate, permission.ResourceCollection)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid collection id")
		return
	}
	var req collectionRequest
	if !bindJSON(c, &req, "title is required") {
		return
	}

	collection, err := a.collections.Update(id, service.CollectionInput{
		Owner:       actor(c),
		Title:       req.Title,
		Description: req.Description,
		ReadAccess:  req.ReadAccess,
		EditAccess:  req.EditAccess,
		HeaderImage: req.HeaderImage,
	}, decision.Criteria)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

// DeleteCollection removes a collection; member posts survive.
func (a *API) DeleteCollection(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionDelete, permission.ResourceCollection)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid collection id")
		return
	}
	if err := a.collections.Delete(actor(c), id, decision.Criteria); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "collection deleted"})
}

// AddCollectionPost appends a post to the collection.
func (a *API) AddCollectionPost(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionUpdate, permission.ResourceCollection)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid collection id")
		return
	}
	var req collectionPostRequest
	if !bindJSON(c, &req, "postId is required") {
		return
	}

	collection, err := a.collections.AddPost(actor(c), id, req.PostID, decision.Criteria)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

// RemoveCollectionPost drops a post from the collection.
func (a *API) RemoveCollectionPost(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionUpdate, permission.ResourceCollection)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid collection id")
		return
	}
	postID, err := parseUintParam(c, "postId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	collection, err := a.collections.RemovePost(actor(c), id, postID, decision.Criteria)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}
