package notify

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"jira_gateway/internal/logger"
	"jira_gateway/internal/model"
)

// Notifier announces issue changes made through the gateway. Implementations
// must never fail the originating request; delivery errors are logged only.
type Notifier interface {
	IssueCreated(issue model.Issue)
	IssueUpdated(issue model.Issue)
}

// SlackNotifier posts one-line notifications to a Slack channel.
type SlackNotifier struct {
	api     *slack.Client
	channel string
	jiraURL string
}

func NewSlackNotifier(token, channel, jiraURL string) *SlackNotifier {
	return &SlackNotifier{
		api:     slack.New(token),
		channel: channel,
		jiraURL: strings.TrimRight(jiraURL, "/"),
	}
}

func (n *SlackNotifier) IssueCreated(issue model.Issue) {
	n.post(fmt.Sprintf("🆕 Created %s: %s", n.issueLink(issue.Key), issue.Summary))
}

func (n *SlackNotifier) IssueUpdated(issue model.Issue) {
	n.post(fmt.Sprintf("✏️ Updated %s: %s (status: %s)", n.issueLink(issue.Key), issue.Summary, issue.Status))
}

// issueLink renders a clickable Jira issue key
func (n *SlackNotifier) issueLink(key string) string {
	return fmt.Sprintf("<%s/browse/%s|%s>", n.jiraURL, key, key)
}

func (n *SlackNotifier) post(message string) {
	_, _, err := n.api.PostMessage(
		n.channel,
		slack.MsgOptionText(message, false))
	if err != nil {
		logger.GetLogger().Error("failed to post slack notification", zap.Error(err))
	}
}
