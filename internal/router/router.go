package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/qboard/internal/handler"
)

// Setup configures the gin engine and routes.
func Setup(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("qboard_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	apiGroup := r.Group("/api")
	{
		posts := apiGroup.Group("/posts")
		{
			posts.GET("", api.GetPosts)
			posts.POST("", api.CreatePost)
			posts.GET("/:id", api.GetPost)
			posts.PUT("/:id", api.UpdatePost)
			posts.DELETE("/:id", api.DeletePost)

			posts.POST("/:id/comments", api.CommentPost)
			posts.DELETE("/:id/comments/:commentId", api.DeletePostComment)
			posts.POST("/:id/votes", api.VotePost)
			posts.POST("/:id/favorite", api.FavoritePost)
			posts.DELETE("/:id/favorite", api.UnfavoritePost)

			posts.POST("/:id/answers", api.CreateAnswer)
			posts.POST("/:id/answers/:answerId/correct", api.MarkAnswerCorrect)
			posts.DELETE("/:id/answers/:answerId/correct", api.MarkAnswerIncorrect)
		}

		answers := apiGroup.Group("/answers")
		{
			answers.GET("", api.GetAnswers)
			answers.GET("/:answerId", api.GetAnswer)
			answers.PUT("/:answerId", api.UpdateAnswer)
			answers.DELETE("/:answerId", api.DeleteAnswer)

			answers.POST("/:answerId/comments", api.CommentAnswer)
			answers.DELETE("/:answerId/comments/:commentId", api.DeleteAnswerComment)
			answers.POST("/:answerId/votes", api.VoteAnswer)
		}

		collections := apiGroup.Group("/collections")
		{
			collections.GET("", api.GetCollections)
			collections.POST("", api.CreateCollection)
			collections.GET("/:id", api.GetCollection)
			collections.PUT("/:id", api.UpdateCollection)
			collections.DELETE("/:id", api.DeleteCollection)

			collections.POST("/:id/posts", api.AddCollectionPost)
			collections.DELETE("/:id/posts/:postId", api.RemoveCollectionPost)
		}

		tags := apiGroup.Group("/tags")
		{
			tags.GET("", api.GetTags)
			tags.GET("/:name", api.GetTag)
			tags.PUT("/:name", api.UpdateTag)
			tags.POST("/:name/follow", api.FollowTag)
			tags.DELETE("/:name/follow", api.UnfollowTag)
		}

		// Entity refs contain slashes, so they ride in catch-all segments
		// under static prefixes.
		entities := apiGroup.Group("/entities")
		{
			entities.GET("", api.GetEntities)
			entities.GET("/ref/*ref", api.GetEntity)
			entities.POST("/follow/*ref", api.FollowEntity)
			entities.DELETE("/follow/*ref", api.UnfollowEntity)
		}

		me := apiGroup.Group("/me")
		{
			me.GET("/tags", api.GetFollowedTags)
			me.GET("/entities", api.GetFollowedEntities)
		}

		statistics := apiGroup.Group("/statistics")
		{
			statistics.GET("/global", api.GetGlobalStats)
			statistics.GET("/users/*ref", api.GetUserStats)
			statistics.GET("/leaderboard/:kind", api.GetLeaderboard)
		}

		attachments := apiGroup.Group("/attachments")
		{
			attachments.POST("", api.UploadAttachment)
			attachments.GET("/:uuid", api.GetAttachment)
		}
	}

	return r
}
