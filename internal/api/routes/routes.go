package routes

import (
	"github.com/gembotdev/gembot/internal/api/handlers"
	"github.com/gembotdev/gembot/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Chat   *handlers.ChatHandler
	Prompt *handlers.PromptHandler
	WS     *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/chat/message", d.Chat.Message)
	auth.DELETE("/chat/history", d.Chat.ClearHistory)
	auth.GET("/chat/export", d.Chat.Export)

	// WebSocket chat
	auth.GET("/ws/chat", d.WS.ChatWS)

	// Operator-only
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.DELETE("/chat/history", d.Chat.ClearAllHistory)
	admin.GET("/prompt", d.Prompt.Get)
	admin.PUT("/prompt", d.Prompt.Update)
}
