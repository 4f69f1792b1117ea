package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qboard/internal/notify"
	"github.com/qboard/internal/permission"
	"github.com/qboard/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	policy      *permission.Policy
	posts       *service.PostService
	answers     *service.AnswerService
	collections *service.CollectionService
	tags        *service.TagService
	entities    *service.EntityService
	stats       *service.StatsService
	attachments *service.AttachmentService
	notifier    *notify.Dispatcher
	logger      *zap.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, policy *permission.Policy, notifier *notify.Dispatcher, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		db:          db,
		policy:      policy,
		posts:       service.NewPostService(db),
		answers:     service.NewAnswerService(db),
		collections: service.NewCollectionService(db),
		tags:        service.NewTagService(db),
		entities:    service.NewEntityService(db),
		stats:       service.NewStatsService(db),
		attachments: service.NewAttachmentService(db),
		notifier:    notifier,
		logger:      logger,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// decide routes the request through the policy. An outright deny is answered
// directly; conditional decisions hand their criteria tree back so the store
// can enforce it.
func (a *API) decide(c *gin.Context, action permission.Action, resource permission.Resource) (permission.Decision, bool) {
	decision := a.policy.Decide(action, resource, actor(c))
	if decision.Result == permission.ResultDeny {
		respondError(c, http.StatusForbidden, "not allowed")
		return decision, false
	}
	return decision, true
}

// followersFor resolves everyone subscribed to any of the post's tags or
// entities, the audience for content events beyond the directly involved.
func (a *API) followersFor(tagNames, entityRefs []string) []string {
	tagUsers, err := a.tags.UsersForTags(tagNames)
	if err != nil {
		a.logger.Warn("resolving tag followers failed", zap.Error(err))
	}
	entityUsers, err := a.entities.UsersForEntities(entityRefs)
	if err != nil {
		a.logger.Warn("resolving entity followers failed", zap.Error(err))
	}
	return append(tagUsers, entityUsers...)
}
