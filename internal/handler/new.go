package handler

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"jira_gateway/internal/config"
	"jira_gateway/internal/jira"
	"jira_gateway/internal/model"
	"jira_gateway/internal/service/notify"
	"jira_gateway/internal/storage"
)

// JiraAPI is the slice of the Jira client the command handlers need.
type JiraAPI interface {
	Myself(ctx context.Context) (model.JiraUser, error)
	CreateIssue(ctx context.Context, fields map[string]any) (model.JiraCreateResponse, error)
	Issue(ctx context.Context, key string) (model.JiraIssue, error)
	UpdateIssue(ctx context.Context, key string, fields map[string]any) error
	Search(ctx context.Context, jql string, startAt, maxResults int) (model.JiraSearchResponse, error)
	SearchAll(ctx context.Context, jql string, pageSize int) ([]model.JiraIssue, error)
	Transitions(ctx context.Context, key string) ([]model.JiraTransition, error)
	Transition(ctx context.Context, key, transitionID string) error
	WithToken(user, token string) JiraAPI
}

// liveJira adapts *jira.Client to JiraAPI.
type liveJira struct {
	*jira.Client
}

func (l liveJira) WithToken(user, token string) JiraAPI {
	return liveJira{l.Client.WithToken(user, token)}
}

// CommandHandler dispatches gateway commands to Jira and shapes the results.
type CommandHandler struct {
	cfg        *config.Config
	jira       JiraAPI
	tokenStore storage.TokenStore
	notifier   notify.Notifier
}

// New creates a CommandHandler. tokenStore and notifier may be nil, which
// disables personal tokens and notifications respectively.
func New(cfg *config.Config, api JiraAPI, tokenStore storage.TokenStore, notifier notify.Notifier) *CommandHandler {
	return &CommandHandler{
		cfg:        cfg,
		jira:       api,
		tokenStore: tokenStore,
		notifier:   notifier,
	}
}

// Build wires a CommandHandler from configuration: the Jira client, plus the
// S3 token store and Slack notifier when configured.
func Build(ctx context.Context, cfg *config.Config) (*CommandHandler, error) {
	client := jira.NewClient(cfg.JiraServer, cfg.JiraUser, cfg.JiraToken, cfg.JiraTimeout)

	var tokenStore storage.TokenStore
	if cfg.TokenBucketName != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %v", err)
		}
		tokenStore, err = storage.NewS3TokenStore(s3.NewFromConfig(awsCfg), cfg.TokenBucketName, []byte(cfg.TokenEncryptKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create token store: %v", err)
		}
	}

	var notifier notify.Notifier
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		notifier = notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannel, cfg.JiraServer)
	}

	return New(cfg, liveJira{client}, tokenStore, notifier), nil
}

// clientFor resolves the Jira client a request runs with. When the request
// carries a user_id registered in the token store, the call is made with that
// user's personal token; otherwise the service identity is used.
func (h *CommandHandler) clientFor(data map[string]any) (JiraAPI, error) {
	userID := stringField(data, "user_id")
	if userID == "" || h.tokenStore == nil {
		return h.jira, nil
	}
	token, err := h.tokenStore.GetToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get personal token for %s: %v", userID, err)
	}
	return h.jira.WithToken(userID, token), nil
}
