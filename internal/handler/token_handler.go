package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jira_gateway/internal/logger"
)

type TokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Token  string `json:"token" binding:"required"`
}

// HandleSetupPersonalToken handles the POST request to /setup-personal-token.
// Registered tokens let subsequent commands carrying the same user_id run
// against Jira as that user.
func (h *CommandHandler) HandleSetupPersonalToken(c *gin.Context) {
	if h.tokenStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "token store not configured"})
		return
	}

	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := validateToken(req.Token); err != nil {
		logger.GetLogger().Error("invalid token", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Store the token in S3
	if err := h.tokenStore.SetToken(req.UserID, req.Token); err != nil {
		logger.GetLogger().Error("failed to store token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token successfully stored",
	})
}

func validateToken(token string) error {
	if len(token) < 8 {
		return fmt.Errorf("token must be at least 8 characters long")
	}
	return nil
}
