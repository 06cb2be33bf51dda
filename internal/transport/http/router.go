package http

import (
	"github.com/gin-gonic/gin"

	"github.com/iamasit07/connect4-engine/internal/transport/http/middleware"
)

// NewRouter wires the game API. ws may be nil when the websocket channel is
// served elsewhere.
func NewRouter(games *GameHandler, tokens middleware.TokenValidator, ws gin.HandlerFunc, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(allowedOrigins))

	router.GET("/health", games.Health)

	api := router.Group("/api")
	{
		api.GET("/bots", games.ListBots)
		api.POST("/games", games.CreateGame)

		protected := api.Group("/games/:id")
		protected.Use(middleware.GameTokenMiddleware(tokens))
		{
			protected.GET("", games.GetGame)
			protected.POST("/moves", games.MakeMove)
			protected.POST("/reset", games.ResetGame)
			protected.DELETE("", games.DeleteGame)
		}
	}

	if ws != nil {
		router.GET("/ws", ws)
	}

	return router
}
