package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/usermatch/pkg/logger"
)

type RouterDeps struct {
	UserHandler  *UserHandler
	MatchHandler *MatchHandler
	Logger       logger.Logger
	// RateLimit is optional.
	RateLimit gin.HandlerFunc
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		TracingMiddleware(),
		RequestLoggerMiddleware(d.Logger),
		ErrorMiddleware(d.Logger),
	)
	if d.RateLimit != nil {
		router.Use(d.RateLimit)
	}

	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ping": "pong!"}) })

	users := router.Group("/users")
	{
		users.POST("/", d.UserHandler.CreateUser)
		users.GET("/", d.UserHandler.ListUsers)
		users.GET("/:id", d.UserHandler.GetUser)
		users.PATCH("/:id", d.UserHandler.UpdateUser)
		users.DELETE("/:id", d.UserHandler.DeleteUser)
		users.GET("/:id/matches", d.MatchHandler.FindMatches)
	}

	return router
}
