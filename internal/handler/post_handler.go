package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qboard/internal/db"
	"github.com/qboard/internal/notify"
	"github.com/qboard/internal/permission"
	"github.com/qboard/internal/service"
)

type postRequest struct {
	Type        string   `json:"type"`
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	Tags        []string `json:"tags"`
	Entities    []string `json:"entities"`
	Anonymous   bool     `json:"anonymous"`
	HeaderImage string   `json:"headerImage"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

type voteRequest struct {
	Value int `json:"value" binding:"required"`
}

// GetPosts lists posts with filtering, ordering and pagination.
func (a *API) GetPosts(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionRead, permission.ResourcePost)
	if !ok {
		return
	}

	opts := service.PostListOptions{
		Type:            db.PostType(c.Query("type")),
		Authors:         splitQueryList(c.Query("author")),
		Tags:            splitQueryList(c.Query("tags")),
		Entity:          c.Query("entity"),
		SearchQuery:     c.Query("searchQuery"),
		NoCorrectAnswer: c.Query("noCorrectAnswer") == "true",
		NoAnswers:       c.Query("noAnswers") == "true",
		NoVotes:         c.Query("noVotes") == "true",
		Favorite:        c.Query("favorite") == "true",
		IncludeAnswers:  c.Query("includeAnswers") == "true",
		IncludeEntities: true,
		IncludeTrend:    c.Query("orderBy") == "trend",
		OrderBy:         c.Query("orderBy"),
		Order:           c.Query("order"),
		Random:          c.Query("random") == "true",
		Limit:           parseIntQuery(c, "limit", 20),
		Offset:          parseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("collectionId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			opts.CollectionID = uint(id)
		}
	}
	if raw := c.Query("fromDate"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			opts.FromDate = parsed
		}
	}
	if raw := c.Query("toDate"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			opts.ToDate = parsed.Add(24*time.Hour - time.Nanosecond)
		}
	}

	posts, total, err := a.posts.List(actor(c), opts, decision.Criteria)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "total": total})
}

// GetPost fetches one post and records the view.
func (a *API) GetPost(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionRead, permission.ResourcePost)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := a.posts.Get(actor(c), id, "", false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if decision.Result == permission.ResultConditional && !decision.Satisfied(service.PostFacts(post)) {
		respondError(c, http.StatusNotFound, service.ErrPostNotFound.Error())
		return
	}

	// The view only counts once the post is known to be visible.
	views, err := a.posts.RecordView(actor(c), id, viewerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	post.Views = views
	c.JSON(http.StatusOK, post)
}

// CreatePost creates a post and fans out new-content notifications.
func (a *API) CreatePost(c *gin.Context) {
	if _, ok := a.decide(c, permission.ActionCreate, permission.ResourcePost); !ok {
		return
	}

	var req postRequest
	if !bindJSON(c, &req, "title and content are required") {
		return
	}

	user := actor(c)
	post, err := a.posts.Create(service.PostInput{
		Author:      user,
		Type:        db.PostType(req.Type),
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Entities:    req.Entities,
		Anonymous:   req.Anonymous,
		HeaderImage: req.HeaderImage,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if a.notifier != nil {
		followers := a.followersFor(post.TagNames(), post.EntityRefs())
		sent := a.notifier.OnNewPost(user, post, followers)
		mentions := notify.ExtractMentions(req.Content)
		a.notifier.OnPostMention(user, post, mentions, sent, false)
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost applies changes under the policy's ownership criteria.
func (a *API) UpdatePost(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionUpdate, permission.ResourcePost)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	var req postRequest
	if !bindJSON(c, &req, "title and content are required") {
		return
	}

	post, err := a.posts.Update(id, service.PostInput{
		Author:      actor(c),
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Entities:    req.Entities,
		HeaderImage: req.HeaderImage,
	}, decision.Criteria)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post and all content hanging off it.
func (a *API) DeletePost(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionDelete, permission.ResourcePost)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	if err := a.posts.Delete(actor(c), id, decision.Criteria); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// CommentPost adds a comment and notifies the thread.
func (a *API) CommentPost(c *gin.Context) {
	if _, ok := a.decide(c, permission.ActionCreate, permission.ResourceComment); !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	var req commentRequest
	if !bindJSON(c, &req, "content is required") {
		return
	}

	user := actor(c)
	post, err := a.posts.Comment(id, user, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if a.notifier != nil {
		followers := a.followersFor(post.TagNames(), post.EntityRefs())
		sent := a.notifier.OnNewPostComment(user, post, req.Content, followers)
		mentions := notify.ExtractMentions(req.Content)
		a.notifier.OnPostMention(user, post, mentions, sent, true)
	}

	c.JSON(http.StatusCreated, post)
}

// DeletePostComment removes a comment; only its author may.
func (a *API) DeletePostComment(c *gin.Context) {
	if _, ok := a.decide(c, permission.ActionDelete, permission.ResourceComment); !ok {
		return
	}

	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	commentID, err := parseUintParam(c, "commentId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid comment id")
		return
	}

	post, err := a.posts.DeleteComment(postID, commentID, actor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// VotePost records an up or down vote.
func (a *API) VotePost(c *gin.Context) {
	user := actor(c)
	if user == "" {
		respondError(c, http.StatusUnauthorized, "identity required")
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	var req voteRequest
	if !bindJSON(c, &req, "vote value is required") {
		return
	}

	if _, err := a.posts.Vote(user, id, req.Value); err != nil {
		respondServiceError(c, err)
		return
	}
	score, err := a.posts.Score(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": score})
}

// FavoritePost bookmarks the post for the actor.
func (a *API) FavoritePost(c *gin.Context) {
	user := actor(c)
	if user == "" {
		respondError(c, http.StatusUnauthorized, "identity required")
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	if _, err := a.posts.Favorite(user, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "favorited"})
}

// UnfavoritePost removes the bookmark.
func (a *API) UnfavoritePost(c *gin.Context) {
	user := actor(c)
	if user == "" {
		respondError(c, http.StatusUnauthorized, "identity required")
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	if _, err := a.posts.Unfavorite(user, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unfavorited"})
}

// MarkAnswerCorrect accepts an answer. Only the question author may.
func (a *API) MarkAnswerCorrect(c *gin.Context) {
	a.setAnswerCorrectness(c, true)
}

// MarkAnswerIncorrect retracts an accepted answer. Only the question author
// may.
func (a *API) MarkAnswerIncorrect(c *gin.Context) {
	a.setAnswerCorrectness(c, false)
}

func (a *API) setAnswerCorrectness(c *gin.Context, correct bool) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	answerID, err := parseUintParam(c, "answerId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid answer id")
		return
	}

	user := actor(c)
	// The stored author, not the anonymized read, decides ownership here.
	author, err := a.posts.Author(postID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if user == "" || !strings.EqualFold(user, author) {
		respondError(c, http.StatusForbidden, "only the question author may accept answers")
		return
	}

	if correct {
		err = a.posts.MarkAnswerCorrect(postID, answerID)
	} else {
		err = a.posts.MarkAnswerIncorrect(postID, answerID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if correct && a.notifier != nil {
		post, getErr := a.posts.Get(user, postID, "", false)
		if getErr == nil {
			if answer, aErr := a.answers.Get(user, answerID); aErr == nil {
				a.notifier.OnCorrectAnswer(user, post, answer)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}
