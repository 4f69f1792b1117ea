package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qboard/internal/notify"
	"github.com/qboard/internal/permission"
	"github.com/qboard/internal/service"
)

type answerRequest struct {
	Content   string `json:"content" binding:"required"`
	Anonymous bool   `json:"anonymous"`
}

// GetAnswers lists answers with filtering, ordering and pagination.
func (a *API) GetAnswers(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionRead, permission.ResourceAnswer)
	if !ok {
		return
	}

	opts := service.AnswerListOptions{
		Author:          c.Query("author"),
		Tags:            splitQueryList(c.Query("tags")),
		Entity:          c.Query("entity"),
		SearchQuery:     c.Query("searchQuery"),
		NoCorrectAnswer: c.Query("noCorrectAnswer") == "true",
		NoVotes:         c.Query("noVotes") == "true",
		OrderBy:         c.Query("orderBy"),
		Order:           c.Query("order"),
		Limit:           parseIntQuery(c, "limit", 20),
		Offset:          parseIntQuery(c, "offset", 0),
	}

	answers, total, err := a.answers.List(actor(c), opts, decision.Criteria)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers, "total": total})
}

// GetAnswer fetches one answer.
func (a *API) GetAnswer(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionRead, permission.ResourceAnswer)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "answerId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid answer id")
		return
	}

	answer, err := a.answers.Get(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if decision.Result == permission.ResultConditional {
		facts, err := a.answers.Facts(answer)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if !decision.Satisfied(facts) {
			respondError(c, http.StatusNotFound, service.ErrAnswerNotFound.Error())
			return
		}
	}
	c.JSON(http.StatusOK, answer)
}

// CreateAnswer answers a question and notifies its audience.
func (a *API) CreateAnswer(c *gin.Context) {
	if _, ok := a.decide(c, permission.ActionCreate, permission.ResourceAnswer); !ok {
		return
	}

	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}
	var req answerRequest
	if !bindJSON(c, &req, "content is required") {
		return
	}

	user := actor(c)
	answer, err := a.answers.Create(user, postID, req.Content, req.Anonymous)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if a.notifier != nil {
		if question, getErr := a.posts.Get(user, postID, "", false); getErr == nil {
			followers := a.followersFor(question.TagNames(), question.EntityRefs())
			sent := a.notifier.OnNewAnswer(user, question, answer, followers)
			mentions := notify.ExtractMentions(req.Content)
			a.notifier.OnAnswerMention(user, answer, mentions, sent, false)
		}
	}

	c.JSON(http.StatusCreated, answer)
}

// UpdateAnswer replaces the answer content under the ownership criteria.
func (a *API) UpdateAnswer(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionUpdate, permission.ResourceAnswer)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "answerId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid answer id")
		return
	}
	var req answerRequest
	if !bindJSON(c, &req, "content is required") {
		return
	}

	answer, err := a.answers.Update(actor(c), id, req.Content, decision.Criteria)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// DeleteAnswer removes an answer with its comments and votes.
func (a *API) DeleteAnswer(c *gin.Context) {
	decision, ok := a.decide(c, permission.ActionDelete, permission.ResourceAnswer)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "answerId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid answer id")
		return
	}
	if err := a.answers.Delete(actor(c), id, decision.Criteria); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "answer deleted"})
}

// CommentAnswer adds a comment to an answer and notifies the thread.
func (a *API) CommentAnswer(c *gin.Context) {
	if _, ok := a.decide(c, permission.ActionCreate, permission.ResourceComment); !ok {
		return
	}

	id, err := parseUintParam(c, "answerId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid answer id")
		return
	}
	var req commentRequest
	if !bindJSON(c, &req, "content is required") {
		return
	}

	user := actor(c)
	answer, err := a.answers.Comment(id, user, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if a.notifier != nil {
		if question, getErr := a.posts.GetByAnswerID(user, id, "", false); getErr == nil {
			followers := a.followersFor(question.TagNames(), question.EntityRefs())
			sent := a.notifier.OnAnswerComment(user, question, answer, req.Content, followers)
			mentions := notify.ExtractMentions(req.Content)
			a.notifier.OnAnswerMention(user, answer, mentions, sent, true)
		}
	}

	c.JSON(http.StatusCreated, answer)
}

// DeleteAnswerComment removes an answer comment; only its author may.
func (a *API) DeleteAnswerComment(c *gin.Context) {
	if _, ok := a.decide(c, permission.ActionDelete, permission.ResourceComment); !ok {
		return
	}

	answerID, err := parseUintParam(c, "answerId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid answer id")
		return
	}
	commentID, err := parseUintParam(c, "commentId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid comment id")
		return
	}

	answer, err := a.answers.DeleteComment(answerID, commentID, actor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// VoteAnswer records an up or down vote on an answer.
func (a *API) VoteAnswer(c *gin.Context) {
	user := actor(c)
	if user == "" {
		respondError(c, http.StatusUnauthorized, "identity required")
		return
	}
	id, err := parseUintParam(c, "answerId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid answer id")
		return
	}
	var req voteRequest
	if !bindJSON(c, &req, "vote value is required") {
		return
	}

	if _, err := a.answers.Vote(user, id, req.Value); err != nil {
		respondServiceError(c, err)
		return
	}
	score, err := a.answers.Score(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": score})
}
