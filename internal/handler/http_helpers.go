package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qboard/internal/service"
)

// userRefHeader carries the acting user's identity ref, e.g.
// "user:default/alice". The upstream proxy is trusted to have verified it.
const userRefHeader = "X-User-Ref"

const viewerSessionKey = "viewer_id"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func splitQueryList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// actor returns the acting user's ref, empty for anonymous requests.
func actor(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(userRefHeader))
}

// viewerID returns a stable per-session identifier used only to deduplicate
// view counting. A fresh id is minted and stored on first sight.
func viewerID(c *gin.Context) string {
	session := sessions.Default(c)
	if existing, ok := session.Get(viewerSessionKey).(string); ok && existing != "" {
		return existing
	}
	id := uuid.NewString()
	session.Set(viewerSessionKey, id)
	if err := session.Save(); err != nil {
		// Fall back to per-request dedup; the view may be counted again
		// next time, which is acceptable.
		return id
	}
	return id
}

// respondServiceError translates service sentinels into HTTP statuses. Errors
// no sentinel claims are reported as internal.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrAnswerNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrCollectionNotFound),
		errors.Is(err, service.ErrTagNotFound),
		errors.Is(err, service.ErrEntityNotFound),
		errors.Is(err, service.ErrAttachmentNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrCorrectAnswerExists):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyTitle),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrInvalidVote),
		errors.Is(err, service.ErrNotQuestion),
		errors.Is(err, service.ErrAnswerMismatch),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrUnknownCountKind):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
