package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jira_gateway/internal/logger"
	"jira_gateway/internal/model"
)

// Dispatch routes a command to its handler and wraps the outcome in the
// response envelope. It never panics and never returns an error: every
// handler failure, including upstream Jira errors, becomes the error variant.
func (h *CommandHandler) Dispatch(ctx context.Context, req model.CommandRequest) (env model.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().Error("panic in command handler", zap.Any("panic", r), zap.String("command", string(req.Command)))
			env = model.Errorf("An unexpected error occurred")
		}
	}()

	if req.Command == "" {
		return model.Errorf("No command specified")
	}

	data := req.Data
	if data == nil {
		data = map[string]any{}
	}

	// resolve the handler before anything else so an unknown command always
	// answers as such, even when the data would fail earlier checks
	var run func(ctx context.Context, api JiraAPI, data map[string]any) (any, error)
	switch req.Command {
	case model.CommandCreateIssue:
		run = h.createIssue
	case model.CommandGetIssue:
		run = h.getIssue
	case model.CommandUpdateIssue:
		run = h.updateIssue
	case model.CommandSearchIssues:
		run = h.searchIssues
	case model.CommandGetEpicWithSubtasks:
		run = h.getEpicWithSubtasks
	case model.CommandGetMyIssues:
		run = h.getMyIssues
	case model.CommandGetTransitions:
		run = h.getTransitions
	default:
		return model.Errorf("Unknown command: %s", req.Command)
	}

	api, err := h.clientFor(data)
	if err != nil {
		logger.GetLogger().Error("failed to resolve jira client", zap.Error(err))
		return model.Errorf("%s", err.Error())
	}

	payload, err := run(ctx, api, data)
	if err != nil {
		logger.GetLogger().Error("command failed", zap.String("command", string(req.Command)), zap.Error(err))
		return model.Errorf("%s", err.Error())
	}
	return model.Success(payload)
}

// HandleCommand is the gin handler for POST /mcp.
func (h *CommandHandler) HandleCommand(c *gin.Context) {
	if ct := c.ContentType(); !strings.HasPrefix(ct, "application/json") {
		c.JSON(http.StatusBadRequest, model.Errorf("Content-Type must be application/json"))
		return
	}

	var req model.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.Errorf("Invalid JSON payload"))
		return
	}

	c.JSON(http.StatusOK, h.Dispatch(c.Request.Context(), req))
}

// HandleHealth reports whether the Jira connection is usable.
func (h *CommandHandler) HandleHealth(c *gin.Context) {
	if _, err := h.jira.Myself(c.Request.Context()); err != nil {
		logger.GetLogger().Error("jira connection test failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"jira_connection": "ok",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
