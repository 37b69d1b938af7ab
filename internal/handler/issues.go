package handler

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"jira_gateway/internal/jira"
	"jira_gateway/internal/model"
)

var issueKeyRe = regexp.MustCompile(`^[A-Z][A-Z0-9]+-\d+$`)

func requireIssueKey(data map[string]any) (string, error) {
	key := stringField(data, "issue_key")
	if key == "" {
		return "", fmt.Errorf("Missing issue key")
	}
	if !issueKeyRe.MatchString(key) {
		return "", fmt.Errorf("Invalid issue key: %s", key)
	}
	return key, nil
}

func (h *CommandHandler) createIssue(ctx context.Context, api JiraAPI, data map[string]any) (any, error) {
	project := stringField(data, "project")
	summary := stringField(data, "summary")
	if project == "" || summary == "" {
		return nil, fmt.Errorf("Missing required fields: project and summary")
	}

	issueType := stringField(data, "issue_type")
	if issueType == "" {
		issueType = "Task"
	}

	fields := map[string]any{
		"project":   map[string]any{"key": project},
		"summary":   summary,
		"issuetype": map[string]any{"name": issueType},
	}
	if desc := stringField(data, "description"); desc != "" {
		fields["description"] = desc
	}
	// Subtasks need a parent link
	if issueType == "Subtask" {
		if parent := stringField(data, "parent_issue"); parent != "" {
			fields["parent"] = map[string]any{"key": parent}
		}
	}

	created, err := api.CreateIssue(ctx, fields)
	if err != nil {
		return nil, err
	}

	raw, err := api.Issue(ctx, created.Key)
	if err != nil {
		return nil, fmt.Errorf("issue %s created but could not be read back: %v", created.Key, err)
	}
	issue := raw.Normalized()
	if h.notifier != nil {
		h.notifier.IssueCreated(issue)
	}
	return issue, nil
}

func (h *CommandHandler) getIssue(ctx context.Context, api JiraAPI, data map[string]any) (any, error) {
	key, err := requireIssueKey(data)
	if err != nil {
		return nil, err
	}

	raw, err := api.Issue(ctx, key)
	if err != nil {
		if jira.IsNotFound(err) {
			return nil, fmt.Errorf("Issue %s not found", key)
		}
		return nil, err
	}
	return raw.Normalized(), nil
}

func (h *CommandHandler) updateIssue(ctx context.Context, api JiraAPI, data map[string]any) (any, error) {
	key, err := requireIssueKey(data)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if _, ok := data["summary"]; ok {
		fields["summary"] = stringField(data, "summary")
	}
	if _, ok := data["description"]; ok {
		fields["description"] = stringField(data, "description")
	}

	if target := stringField(data, "status"); target != "" {
		if err := h.transitionTo(ctx, api, key, target); err != nil {
			return nil, err
		}
	}

	// An update with no fields is a deliberate no-op; nothing is sent to Jira.
	if len(fields) > 0 {
		if err := api.UpdateIssue(ctx, key, fields); err != nil {
			if jira.IsNotFound(err) {
				return nil, fmt.Errorf("Issue %s not found", key)
			}
			return nil, err
		}
	}

	raw, err := api.Issue(ctx, key)
	if err != nil {
		if jira.IsNotFound(err) {
			return nil, fmt.Errorf("Issue %s not found", key)
		}
		return nil, err
	}
	issue := raw.Normalized()
	if h.notifier != nil {
		h.notifier.IssueUpdated(issue)
	}
	return issue, nil
}

// transitionTo moves the issue to the named status, matching case-insensitively
// against the target status of each available transition.
func (h *CommandHandler) transitionTo(ctx context.Context, api JiraAPI, key, target string) error {
	transitions, err := api.Transitions(ctx, key)
	if err != nil {
		if jira.IsNotFound(err) {
			return fmt.Errorf("Issue %s not found", key)
		}
		return err
	}

	var available []string
	for _, t := range transitions {
		available = append(available, t.To.Name)
		if strings.EqualFold(t.To.Name, target) {
			return api.Transition(ctx, key, t.ID)
		}
	}
	return fmt.Errorf("No transition found to status: %s. Available status transitions are: %s",
		target, strings.Join(available, ", "))
}

func (h *CommandHandler) getTransitions(ctx context.Context, api JiraAPI, data map[string]any) (any, error) {
	key, err := requireIssueKey(data)
	if err != nil {
		return nil, err
	}

	raw, err := api.Issue(ctx, key)
	if err != nil {
		if jira.IsNotFound(err) {
			return nil, fmt.Errorf("Issue %s not found", key)
		}
		return nil, err
	}
	transitions, err := api.Transitions(ctx, key)
	if err != nil {
		return nil, err
	}

	current := raw.Fields.Status.Name
	seen := map[string]bool{}
	var next []string
	details := make([]model.TransitionDetail, 0, len(transitions))
	for _, t := range transitions {
		if !seen[t.To.Name] {
			seen[t.To.Name] = true
			next = append(next, t.To.Name)
		}
		details = append(details, model.TransitionDetail{
			ID:         t.ID,
			Name:       t.Name,
			FromStatus: current,
			ToStatus:   t.To.Name,
		})
	}
	sort.Strings(next)

	return model.TransitionList{
		IssueKey:             key,
		CurrentStatus:        current,
		PossibleNextStatuses: next,
		Details:              details,
	}, nil
}
