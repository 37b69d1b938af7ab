package handler

import (
	"github.com/gin-gonic/gin"

	"jira_gateway/internal/logger"
)

// NewRouter builds the gin engine serving the gateway endpoints.
func NewRouter(h *CommandHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinLogMiddleware())

	r.POST("/mcp", h.HandleCommand)
	r.GET("/health", h.HandleHealth)
	r.POST("/setup-personal-token", h.HandleSetupPersonalToken)

	return r
}
